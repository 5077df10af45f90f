// Package preflight provides readiness checks for the endpoints, credentials
// and local paths ikit depends on.
//
// The CLI "ikit doctor" command runs RunAll and prints one status line per
// check. Checks never fail hard: each produces a Result whose Detail explains
// what was found. The history directory check is skipped when history is
// disabled.
package preflight
