// Package history keeps a local SQLite ledger of upload attempts.
//
// Each attempt, successful or not, becomes one row with the remote file ID,
// delivery URL, request ID and timing, so `ikit history` can show what was
// sent without querying the media library. Schema changes ship as embedded
// migrations applied under a file lock on open.
package history
