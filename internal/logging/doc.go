// Package logging assembles structured slog loggers used across ikit.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so upload code can tag log lines
// with components, file names and correlation IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
