// Package services defines shared utilities consumed by the upload client,
// the history store and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, component names and
//     file names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent outcomes (rejected vs failed).
//
// Use these helpers when wiring new commands so error handling and
// observability stay uniform across the tool.
package services
