// Package transform serializes transformation chains into the compact string
// understood by the media delivery service.
//
// A Transformation is an ordered list of Steps; each Step is an ordered list
// of Params. Encoding resolves semantic names ("width", "aiRemoveBackground")
// to wire codes through a KeyTable, applies the per-key rules (bare effect
// flags, optional-value effects, raw passthrough, default image, streaming
// resolutions, trim) and joins tokens with "," inside a step and ":" between
// steps. Overlays are a closed set of layer types encoded recursively, so a
// layer may carry its own transformation and further layers.
//
// Encoding never fails: values that cannot be emitted are skipped and
// incomplete overlays are dropped, leaving the rest of the string intact.
package transform
