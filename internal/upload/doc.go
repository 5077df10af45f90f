// Package upload posts files to the media library's upload API.
//
// Client.Upload validates a Request locally, streams it as multipart form
// data, reports progress while the body is sent and classifies failures as
// invalid requests, server errors, network errors or aborts. Batch drives
// many uploads concurrently with a request-rate cap and fresh signatures per
// file. Nothing is retried or cached.
package upload
