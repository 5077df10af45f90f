package transform

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tr   Transformation
		want string
	}{
		{name: "nil", tr: nil, want: ""},
		{name: "empty", tr: Transformation{}, want: ""},
		{name: "single step", tr: Transformation{{{"height", 300}, {"width", 400}}}, want: "h-300,w-400"},
		{name: "insertion order kept", tr: Transformation{{{"width", 400}, {"height", 300}}}, want: "w-400,h-300"},
		{name: "chain order kept", tr: Transformation{{{"height", 300}}, {{"rt", 90}}}, want: "h-300:rt-90"},
		{name: "unknown key passes through", tr: Transformation{{{"ot", "hello"}}}, want: "ot-hello"},
		{name: "lowercase fallback", tr: Transformation{{{"WIDTH", 100}, {"Height", 50}}}, want: "w-100,h-50"},
		{name: "mixed case without lowercase entry is verbatim", tr: Transformation{{{"AspectRatio", "4-3"}}}, want: "AspectRatio-4-3"},
		{name: "floats", tr: Transformation{{{"aspectRatio", "4-3"}, {"dpr", 1.5}, {"quality", 80.0}}}, want: "ar-4-3,dpr-1.5,q-80"},
		{name: "large float uses exponent", tr: Transformation{{{"width", 1e21}}}, want: "w-1e+21"},
		{name: "tiny float uses exponent", tr: Transformation{{{"quality", 1.5e-7}}}, want: "q-1.5e-7"},
		{name: "small float stays decimal", tr: Transformation{{{"quality", 0.000001}}}, want: "q-0.000001"},
		{name: "negative zero", tr: Transformation{{{"rotation", math.Copysign(0, -1)}}}, want: "rt-0"},
		{name: "negative number", tr: Transformation{{{"rotation", -90}}}, want: "rt--90"},
		{name: "json number", tr: Transformation{{{"width", json.Number("250")}}}, want: "w-250"},
		{name: "nil values skipped", tr: Transformation{{{"width", nil}, {"height", 10}}}, want: "h-10"},
		{name: "empty key skipped", tr: Transformation{{{"", "x"}, {"height", 10}}}, want: "h-10"},
		{name: "empty steps leave no delimiters", tr: Transformation{{{"height", 300}}, {}, {{"aiUpscale", false}}, {{"width", 400}}}, want: "h-300:w-400"},

		{name: "bare flag true", tr: Transformation{{{"aiRemoveBackground", true}}}, want: "e-bgremove"},
		{name: "bare flag string true", tr: Transformation{{{"grayscale", "true"}}}, want: "e-grayscale"},
		{name: "bare flag dash marker", tr: Transformation{{{"contrastStretch", "-"}}}, want: "e-contrast"},
		{name: "bare flag string false", tr: Transformation{{{"aiRemoveBackground", "false"}}}, want: ""},
		{name: "bare flag false", tr: Transformation{{{"aiRetouch", false}}}, want: ""},
		{name: "bare flag other value", tr: Transformation{{{"aiVariation", 1}}}, want: ""},
		{name: "bare flag external removal", tr: Transformation{{{"aiRemoveBackgroundExternal", true}, {"aiUpscale", true}}}, want: "e-removedotbg,e-upscale"},

		{name: "optional effect true", tr: Transformation{{{"sharpen", true}}}, want: "e-sharpen"},
		{name: "optional effect blank", tr: Transformation{{{"shadow", ""}}}, want: "e-shadow"},
		{name: "optional effect whitespace", tr: Transformation{{{"gradient", "  "}}}, want: "e-gradient"},
		{name: "optional effect value", tr: Transformation{{{"sharpen", 10}}}, want: "e-sharpen-10"},
		{name: "optional effect string value", tr: Transformation{{{"unsharpMask", "2-2-0.8-0.024"}}}, want: "e-usm-2-2-0.8-0.024"},
		{name: "optional effect false is a value", tr: Transformation{{{"aiDropShadow", false}}}, want: "e-dropshadow-false"},
		{name: "optional effect string true", tr: Transformation{{{"aiDropShadow", "true"}}}, want: "e-dropshadow"},

		{name: "raw verbatim", tr: Transformation{{{"width", 100}, {"raw", "l-text,i-Hi,l-end"}}}, want: "w-100,l-text,i-Hi,l-end"},
		{name: "raw empty skipped", tr: Transformation{{{"raw", ""}}, {{"width", 1}}}, want: "w-1"},

		{name: "default image slashes", tr: Transformation{{{"defaultImage", "/folder/sub/img.png/"}}}, want: "di-folder@@sub@@img.png"},
		{name: "default image blank", tr: Transformation{{{"defaultImage", ""}}}, want: "di-"},
		{name: "streaming resolutions strings", tr: Transformation{{{"streamingResolutions", []string{"240", "360", "480"}}}}, want: "sr-240_360_480"},
		{name: "streaming resolutions ints", tr: Transformation{{{"streamingResolutions", []int{240, 1080}}}}, want: "sr-240_1080"},
		{name: "streaming resolutions any", tr: Transformation{{{"streamingResolutions", []any{240, "360"}}}}, want: "sr-240_360"},
		{name: "streaming resolutions scalar", tr: Transformation{{{"streamingResolutions", "240"}}}, want: "sr-240"},
		{name: "other list keys comma join", tr: Transformation{{{"x", []int{1, 2}}}}, want: "x-1,2"},
		{name: "trim blank", tr: Transformation{{{"trim", ""}}}, want: "t-true"},
		{name: "trim whitespace", tr: Transformation{{{"trim", "  "}}}, want: "t-true"},
		{name: "trim value", tr: Transformation{{{"trim", 5}}}, want: "t-5"},
		{name: "trim bool", tr: Transformation{{{"trim", true}}}, want: "t-true"},

		{name: "unsupported value kind skipped", tr: Transformation{{{"width", map[string]int{"a": 1}}, {"height", 2}}}, want: "h-2"},
		{name: "overlay key with scalar passes through", tr: Transformation{{{"overlay", "custom"}}}, want: "overlay-custom"},
		{name: "overlay key with map skipped", tr: Transformation{{{"overlay", map[string]any{"type": "text"}}}}, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Encode(tt.tr); got != tt.want {
				t.Fatalf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeSegmentCountMatchesEmittingSteps(t *testing.T) {
	t.Parallel()

	tr := Transformation{
		{{"width", 100}},
		{{"grayscale", false}},
		{},
		{{"overlay", TextOverlay{}}},
		{{"height", 200}, {"raw", ""}},
		{{"rotation", 90}},
	}
	got := Encode(tr)
	if segments := len(strings.Split(got, stepDelimiter)); segments != 3 {
		t.Fatalf("expected 3 segments in %q, got %d", got, segments)
	}
	if got != "w-100:h-200:rt-90" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEncoderUsesInjectedKeyTable(t *testing.T) {
	t.Parallel()

	keys := NewKeyTable(map[string]string{"width": "wd", "mono": "e-grayscale", "": "ignored"})
	enc := NewEncoder(keys)
	got := enc.Encode(Transformation{{{"width", 10}, {"height", 20}, {"mono", true}}})
	if got != "wd-10,height-20,e-grayscale" {
		t.Fatalf("unexpected output %q", got)
	}
	if keys.Len() != 2 {
		t.Fatalf("expected empty names to be dropped, got %d entries", keys.Len())
	}
	if enc.Keys() != keys {
		t.Fatal("expected encoder to expose its key table")
	}
}

func TestNewEncoderNilTableFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	if got := NewEncoder(nil).Encode(Transformation{{{"width", 1}}}); got != "w-1" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEncodeConcurrentUse(t *testing.T) {
	t.Parallel()

	tr := Transformation{
		{{"width", 300}, {"overlay", ImageOverlay{Input: "logo.png", Layer: Layer{Transformation: Transformation{{{"height", 20}}}}}}},
		{{"rotation", 90}},
	}
	want := Encode(tr)
	done := make(chan string, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- Encode(tr) }()
	}
	for i := 0; i < cap(done); i++ {
		if got := <-done; got != want {
			t.Fatalf("concurrent encode mismatch: %q vs %q", got, want)
		}
	}
}
