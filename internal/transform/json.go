package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON decodes a transformation written as a JSON array of objects, for
// example [{"width":300,"height":200},{"rotation":90}]. A single object is
// accepted as a one-step chain. Key order inside each object is preserved.
//
// An "overlay" object is decoded into the matching overlay type from its
// "type" field ("text", "image", "video", "subtitle", "solidColor"); overlays
// with a missing or unknown type decode to nil and are skipped on encode.
func ParseJSON(data []byte) (Transformation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("transform: read json: %w", err)
	}

	var out Transformation
	switch tok {
	case json.Delim('['):
		for dec.More() {
			step, err := decodeStep(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, step)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("transform: read json: %w", err)
		}
	case json.Delim('{'):
		step, err := decodeStepBody(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	default:
		return nil, fmt.Errorf("transform: expected array or object, got %v", tok)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("transform: unexpected data after transformation")
	}
	return out, nil
}

func decodeStep(dec *json.Decoder) (Step, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("transform: read step: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("transform: step must be an object, got %v", tok)
	}
	return decodeStepBody(dec)
}

// decodeStepBody reads key/value pairs after the opening brace.
func decodeStepBody(dec *json.Decoder) (Step, error) {
	step := Step{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("transform: read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("transform: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("transform: read %q: %w", key, err)
		}
		value, err := decodeValue(key, raw)
		if err != nil {
			return nil, err
		}
		step = append(step, Param{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("transform: read step end: %w", err)
	}
	return step, nil
}

func decodeValue(key string, raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if key == overlayKey && len(trimmed) > 0 && trimmed[0] == '{' {
		overlay, err := parseOverlay(trimmed)
		if err != nil {
			return nil, err
		}
		if overlay == nil {
			return nil, nil
		}
		return overlay, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("transform: decode %q: %w", key, err)
	}
	return value, nil
}

type overlayJSON struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Input    string `json:"input"`
	Color    string `json:"color"`
	Encoding string `json:"encoding"`
	Position struct {
		X     any    `json:"x"`
		Y     any    `json:"y"`
		Focus string `json:"focus"`
	} `json:"position"`
	Timing struct {
		Start    any `json:"start"`
		End      any `json:"end"`
		Duration any `json:"duration"`
	} `json:"timing"`
	Transformation json.RawMessage `json:"transformation"`
}

func parseOverlay(data []byte) (Overlay, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload overlayJSON
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("transform: decode overlay: %w", err)
	}

	layer := Layer{
		Position: Position{X: payload.Position.X, Y: payload.Position.Y, Focus: payload.Position.Focus},
		Timing:   Timing{Start: payload.Timing.Start, End: payload.Timing.End, Duration: payload.Timing.Duration},
	}
	if nested := bytes.TrimSpace(payload.Transformation); len(nested) > 0 && !bytes.Equal(nested, []byte("null")) {
		tr, err := ParseJSON(nested)
		if err != nil {
			return nil, fmt.Errorf("transform: overlay transformation: %w", err)
		}
		layer.Transformation = tr
	}

	enc := ParseEncoding(payload.Encoding)
	switch payload.Type {
	case "text":
		return TextOverlay{Layer: layer, Text: payload.Text, Encoding: enc}, nil
	case "image":
		return ImageOverlay{Layer: layer, Input: payload.Input, Encoding: enc}, nil
	case "video":
		return VideoOverlay{Layer: layer, Input: payload.Input, Encoding: enc}, nil
	case "subtitle":
		return SubtitleOverlay{Layer: layer, Input: payload.Input, Encoding: enc}, nil
	case "solidColor":
		return SolidColorOverlay{Layer: layer, Color: payload.Color}, nil
	default:
		return nil, nil
	}
}
