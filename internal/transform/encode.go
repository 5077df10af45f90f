package transform

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	stepDelimiter     = ":"
	tokenDelimiter    = ","
	keyValueDelimiter = "-"

	overlayKey = "overlay"
	rawKey     = "raw"
	flagValue  = "-"

	defaultImageCode        = "di"
	streamingResolutionCode = "sr"
	trimCode                = "t"

	// DefaultMaxDepth bounds overlay nesting.
	DefaultMaxDepth = 32
)

// Param is one directive of a step. Value is a string, a number, a bool, a
// slice (for list-valued keys) or, under the "overlay" key, an Overlay.
type Param struct {
	Key   string
	Value any
}

// Step is a set of directives applied together. Order is preserved in the
// output.
type Step []Param

// Transformation is a chain of steps applied left to right.
type Transformation []Step

// Effects that are either on or off. They are only emitted for true, "true"
// or the "-" marker.
var bareFlagCodes = map[string]struct{}{
	"e-grayscale":   {},
	"e-contrast":    {},
	"e-removedotbg": {},
	"e-bgremove":    {},
	"e-upscale":     {},
	"e-retouch":     {},
	"e-genvar":      {},
}

// Effects whose parameter is optional. A true or blank value emits the bare
// code so the service applies its defaults.
var optionalValueCodes = map[string]struct{}{
	"e-sharpen":    {},
	"e-shadow":     {},
	"e-gradient":   {},
	"e-usm":        {},
	"e-dropshadow": {},
}

// Encoder serializes transformations into the delivery service's
// transformation string. An Encoder is immutable and safe for concurrent use.
type Encoder struct {
	keys     *KeyTable
	maxDepth int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithMaxDepth overrides the overlay nesting bound. Values below 1 are
// ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Encoder) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// NewEncoder returns an Encoder resolving keys through keys. A nil table
// falls back to DefaultKeys.
func NewEncoder(keys *KeyTable, opts ...Option) *Encoder {
	if keys == nil {
		keys = DefaultKeys
	}
	e := &Encoder{keys: keys, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEncoder = NewEncoder(DefaultKeys)

// Default returns the shared encoder backed by DefaultKeys.
func Default() *Encoder {
	return defaultEncoder
}

// Keys returns the table the encoder resolves names with.
func (e *Encoder) Keys() *KeyTable {
	return e.keys
}

// Encode serializes t with the default encoder.
func Encode(t Transformation) string {
	return defaultEncoder.Encode(t)
}

// Encode serializes t. Steps that produce no tokens are left out entirely.
func (e *Encoder) Encode(t Transformation) string {
	return e.encode(t, 0)
}

func (e *Encoder) encode(t Transformation, depth int) string {
	if len(t) == 0 {
		return ""
	}
	steps := make([]string, 0, len(t))
	for _, step := range t {
		tokens := e.encodeStep(step, depth)
		if len(tokens) == 0 {
			continue
		}
		steps = append(steps, strings.Join(tokens, tokenDelimiter))
	}
	return strings.Join(steps, stepDelimiter)
}

func (e *Encoder) encodeStep(step Step, depth int) []string {
	tokens := make([]string, 0, len(step))
	for _, param := range step {
		if isNil(param.Value) {
			continue
		}

		if param.Key == overlayKey {
			if overlay, ok := param.Value.(Overlay); ok {
				if encoded, ok := e.encodeOverlay(overlay, depth); ok && strings.TrimSpace(encoded) != "" {
					tokens = append(tokens, encoded)
				}
				continue
			}
			if !isScalar(param.Value) {
				continue
			}
		}

		code := e.keys.Resolve(param.Key)
		if code == "" {
			code = param.Key
		}
		if code == "" {
			continue
		}

		if token, ok := e.encodeParam(param.Key, code, param.Value); ok {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func (e *Encoder) encodeParam(key, code string, value any) (string, bool) {
	if _, ok := bareFlagCodes[code]; ok {
		if isTrue(value) || value == flagValue {
			return code, true
		}
		return "", false
	}

	if _, ok := optionalValueCodes[code]; ok {
		if isTrue(value) {
			return code, true
		}
		if formatted, ok := formatValue(value); ok && strings.TrimSpace(formatted) == "" {
			return code, true
		}
	}

	if key == rawKey {
		formatted, ok := formatValue(value)
		if !ok || formatted == "" {
			return "", false
		}
		return formatted, true
	}

	var formatted string
	switch code {
	case streamingResolutionCode:
		if list, ok := listValues(value); ok {
			formatted = strings.Join(list, "_")
			break
		}
		fallthrough
	default:
		s, ok := formatValue(value)
		if !ok {
			return "", false
		}
		formatted = s
	}

	switch code {
	case defaultImageCode:
		formatted = strings.ReplaceAll(trimSlashes(formatted), "/", pathSeparator)
	case trimCode:
		if strings.TrimSpace(formatted) == "" {
			formatted = "true"
		}
	}
	return code + keyValueDelimiter + formatted, true
}

func isTrue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	return derefOverlayIsNil(value)
}

func derefOverlayIsNil(value any) bool {
	o, ok := value.(Overlay)
	if !ok {
		return false
	}
	return derefOverlay(o) == nil
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// truthy reports whether value would be emitted as an optional layer field.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case float64:
		return v != 0 && !math.IsNaN(v)
	}
	return true
}

// formatValue renders a scalar or list value as it appears on the wire.
// Lists are comma-joined. ok is false for values with no wire form.
func formatValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return formatFloat(float64(v), 32), true
	case float64:
		return formatFloat(v, 64), true
	}
	if list, ok := listValues(value); ok {
		return strings.Join(list, ","), true
	}
	return "", false
}

func formatFloat(v float64, bitSize int) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	case v == 0:
		return "0"
	}
	if abs := math.Abs(v); abs >= 1e21 || abs < 1e-6 {
		return exponentForm(strconv.FormatFloat(v, 'e', -1, bitSize))
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize)
}

// exponentForm rewrites Go's "1.5e-07" as "1.5e-7", the way numbers far
// from 1 are printed in the wire format.
func exponentForm(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || exp == "" {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func listValues(value any) ([]string, bool) {
	var items []any
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = strconv.Itoa(n)
		}
		return out, true
	case []float64:
		out := make([]string, len(v))
		for i, f := range v {
			out[i] = formatFloat(f, 64)
		}
		return out, true
	case []any:
		items = v
	default:
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			out = append(out, "")
			continue
		}
		s, ok := formatValue(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// FormatValue renders a scalar or list the way it appears on the wire. ok is
// false for values with no wire form, such as maps or overlays.
func FormatValue(value any) (string, bool) {
	return formatValue(value)
}
