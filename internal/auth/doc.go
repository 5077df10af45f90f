// Package auth produces the credentials the media service expects from
// clients: short-lived upload signatures and signed delivery URLs.
//
// Both are hex HMAC-SHA1 digests keyed with the account's private key. The
// private key never leaves the process; only tokens, expiries and digests are
// sent over the wire.
package auth
