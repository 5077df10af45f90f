// Package urlbuild assembles delivery URLs for media assets.
//
// Build resolves the asset against the configured endpoint (or takes an
// absolute src as-is), appends caller query parameters in order, encodes the
// transformation chain and places it either as a "tr:" path segment or a "tr"
// query parameter. Absolute sources always receive the query form. Invalid
// input yields an empty string and a warning log line rather than an error so
// page rendering never fails on a single bad URL.
//
// ResponsiveAttributes builds src/srcset/sizes values for <img> elements by
// calling Build once per candidate width.
package urlbuild
