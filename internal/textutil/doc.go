// Package textutil provides text helpers for preparing uploads: file name and
// tag sanitization plus remote folder normalization.
package textutil
