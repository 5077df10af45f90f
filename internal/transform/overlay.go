package transform

import "strings"

// Overlay is a layer composited onto the base asset. The concrete types are
// TextOverlay, ImageOverlay, VideoOverlay, SubtitleOverlay and
// SolidColorOverlay; pointers to them are accepted as well.
type Overlay interface {
	overlayLayer() Layer
}

// Layer holds the fields every overlay variant shares.
type Layer struct {
	Position Position
	Timing   Timing
	// Transformation is applied to the layer itself and may contain further
	// overlays.
	Transformation Transformation
}

func (l Layer) overlayLayer() Layer { return l }

// Position places a layer. X and Y accept numbers or expression strings such
// as "bw_mul_0.5". Zero values are not emitted.
type Position struct {
	X     any
	Y     any
	Focus string
}

// Timing bounds a layer on a video timeline, in seconds or expression
// strings. Zero values are not emitted.
type Timing struct {
	Start    any
	End      any
	Duration any
}

// TextOverlay renders Text as a layer.
type TextOverlay struct {
	Layer
	Text     string
	Encoding Encoding
}

// ImageOverlay composites the image stored at Input.
type ImageOverlay struct {
	Layer
	Input    string
	Encoding Encoding
}

// VideoOverlay composites the video stored at Input.
type VideoOverlay struct {
	Layer
	Input    string
	Encoding Encoding
}

// SubtitleOverlay burns the subtitle file stored at Input into a video.
type SubtitleOverlay struct {
	Layer
	Input    string
	Encoding Encoding
}

// SolidColorOverlay draws a block of Color (hex RGB/RGBA or a color name).
type SolidColorOverlay struct {
	Layer
	Color string
}

const (
	layerText     = "l-text"
	layerImage    = "l-image"
	layerVideo    = "l-video"
	layerSubtitle = "l-subtitle"
	layerEnd      = "l-end"
	canvasInput   = "i-ik_canvas"
)

// EncodeOverlay serializes a single overlay using the default encoder. ok is
// false when the overlay lacks its required field and nothing was emitted.
func EncodeOverlay(o Overlay) (string, bool) {
	return defaultEncoder.EncodeOverlay(o)
}

// EncodeOverlay serializes a single overlay. ok is false when the overlay
// lacks its required field and nothing was emitted.
func (e *Encoder) EncodeOverlay(o Overlay) (string, bool) {
	return e.encodeOverlay(o, 0)
}

func (e *Encoder) encodeOverlay(o Overlay, depth int) (string, bool) {
	o = derefOverlay(o)
	if o == nil || depth >= e.maxDepth {
		return "", false
	}

	tokens := make([]string, 0, 8)
	switch v := o.(type) {
	case TextOverlay:
		if v.Text == "" {
			return "", false
		}
		tokens = append(tokens, layerText, EncodeText(v.Text, v.Encoding))
	case ImageOverlay:
		if v.Input == "" {
			return "", false
		}
		tokens = append(tokens, layerImage, EncodePath(v.Input, v.Encoding))
	case VideoOverlay:
		if v.Input == "" {
			return "", false
		}
		tokens = append(tokens, layerVideo, EncodePath(v.Input, v.Encoding))
	case SubtitleOverlay:
		if v.Input == "" {
			return "", false
		}
		tokens = append(tokens, layerSubtitle, EncodePath(v.Input, v.Encoding))
	case SolidColorOverlay:
		if v.Color == "" {
			return "", false
		}
		tokens = append(tokens, layerImage, canvasInput, "bg"+keyValueDelimiter+v.Color)
	default:
		return "", false
	}

	layer := o.overlayLayer()
	tokens = appendTruthy(tokens, "lx", layer.Position.X)
	tokens = appendTruthy(tokens, "ly", layer.Position.Y)
	tokens = appendTruthy(tokens, "lfo", layer.Position.Focus)
	tokens = appendTruthy(tokens, "lso", layer.Timing.Start)
	tokens = appendTruthy(tokens, "leo", layer.Timing.End)
	tokens = appendTruthy(tokens, "ldu", layer.Timing.Duration)

	if nested := e.encode(layer.Transformation, depth+1); strings.TrimSpace(nested) != "" {
		tokens = append(tokens, nested)
	}
	tokens = append(tokens, layerEnd)
	return strings.Join(tokens, tokenDelimiter), true
}

func appendTruthy(tokens []string, prefix string, value any) []string {
	if !truthy(value) {
		return tokens
	}
	formatted, ok := formatValue(value)
	if !ok {
		return tokens
	}
	return append(tokens, prefix+keyValueDelimiter+formatted)
}

func derefOverlay(o Overlay) Overlay {
	switch v := o.(type) {
	case *TextOverlay:
		if v == nil {
			return nil
		}
		return *v
	case *ImageOverlay:
		if v == nil {
			return nil
		}
		return *v
	case *VideoOverlay:
		if v == nil {
			return nil
		}
		return *v
	case *SubtitleOverlay:
		if v == nil {
			return nil
		}
		return *v
	case *SolidColorOverlay:
		if v == nil {
			return nil
		}
		return *v
	}
	return o
}
