package transform

import (
	"sort"
	"strings"
)

// KeyTable maps semantic transformation names to the short wire codes the
// delivery service expects. A table is read-only once constructed and safe for
// concurrent use.
type KeyTable struct {
	codes map[string]string
}

// NewKeyTable copies entries into a new table. Empty names are ignored.
func NewKeyTable(entries map[string]string) *KeyTable {
	codes := make(map[string]string, len(entries))
	for name, code := range entries {
		if name == "" {
			continue
		}
		codes[name] = code
	}
	return &KeyTable{codes: codes}
}

// Resolve returns the wire code for name. The exact name is tried first, then
// its lowercase form. Unknown names resolve to "".
func (t *KeyTable) Resolve(name string) string {
	if t == nil || name == "" {
		return ""
	}
	if code, ok := t.codes[name]; ok {
		return code
	}
	if code, ok := t.codes[strings.ToLower(name)]; ok {
		return code
	}
	return ""
}

// Names returns every semantic name in the table, sorted.
func (t *KeyTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.codes))
	for name := range t.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of entries.
func (t *KeyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}

// DefaultKeys is the built-in table of documented transformation names.
var DefaultKeys = NewKeyTable(map[string]string{
	// sizing and layout
	"width":                "w",
	"height":               "h",
	"aspectRatio":          "ar",
	"background":           "bg",
	"border":               "b",
	"crop":                 "c",
	"cropMode":             "cm",
	"dpr":                  "dpr",
	"focus":                "fo",
	"quality":              "q",
	"x":                    "x",
	"xCenter":              "xc",
	"y":                    "y",
	"yCenter":              "yc",
	"format":               "f",
	"videoCodec":           "vc",
	"audioCodec":           "ac",
	"radius":               "r",
	"rotation":             "rt",
	"blur":                 "bl",
	"named":                "n",
	"defaultImage":         "di",
	"flip":                 "fl",
	"original":             "orig",
	"startOffset":          "so",
	"endOffset":            "eo",
	"duration":             "du",
	"streamingResolutions": "sr",

	// effects
	"grayscale":                  "e-grayscale",
	"aiUpscale":                  "e-upscale",
	"aiRetouch":                  "e-retouch",
	"aiVariation":                "e-genvar",
	"aiDropShadow":               "e-dropshadow",
	"aiChangeBackground":         "e-changebg",
	"aiEdit":                     "e-edit",
	"aiRemoveBackground":         "e-bgremove",
	"aiRemoveBackgroundExternal": "e-removedotbg",
	"contrastStretch":            "e-contrast",
	"shadow":                     "e-shadow",
	"sharpen":                    "e-sharpen",
	"unsharpMask":                "e-usm",
	"gradient":                   "e-gradient",
	"distort":                    "e-distort",

	// finishing
	"progressive":  "pr",
	"lossless":     "lo",
	"colorProfile": "cp",
	"metadata":     "md",
	"opacity":      "o",
	"trim":         "t",
	"zoom":         "z",
	"page":         "pg",
	"colorReplace": "cr",

	// text and subtitle layers
	"fontSize":       "fs",
	"fontFamily":     "ff",
	"fontColor":      "co",
	"innerAlignment": "ia",
	"padding":        "pa",
	"alpha":          "al",
	"typography":     "tg",
	"lineHeight":     "lh",
	"fontOutline":    "fol",
	"fontShadow":     "fsh",
	"color":          "co",

	"raw": "raw",
})
