package transform

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Encoding selects how a layer payload is written into the transformation
// string.
type Encoding string

const (
	// EncodingAuto inlines simple values and base64-encodes everything else.
	EncodingAuto Encoding = "auto"
	// EncodingPlain always inlines the value.
	EncodingPlain Encoding = "plain"
	// EncodingBase64 always base64-encodes the value.
	EncodingBase64 Encoding = "base64"
)

const (
	inlinePrefix  = "i-"
	encodedPrefix = "ie-"
	pathSeparator = "@@"
)

// These character classes were chosen by checking which values survive both
// path and query placement on the delivery service. Keep them literal.
var (
	simplePathPayload = regexp.MustCompile(`^[a-zA-Z0-9-._/ ]*$`)
	simpleTextPayload = regexp.MustCompile(`^[a-zA-Z0-9-._ ]*$`)
)

// ParseEncoding maps a user-supplied name to an Encoding. Unknown or empty
// names fall back to EncodingAuto.
func ParseEncoding(value string) Encoding {
	switch Encoding(strings.ToLower(strings.TrimSpace(value))) {
	case EncodingPlain:
		return EncodingPlain
	case EncodingBase64:
		return EncodingBase64
	default:
		return EncodingAuto
	}
}

// EncodeText serializes overlay text.
func EncodeText(text string, enc Encoding) string {
	switch enc {
	case EncodingPlain:
		return inlinePrefix + EscapeComponent(text)
	case EncodingBase64:
		return encodedPayload(text)
	}
	if simpleTextPayload.MatchString(text) {
		return inlinePrefix + EscapeComponent(text)
	}
	return encodedPayload(text)
}

// EncodePath serializes an overlay input path. One leading and one trailing
// slash are dropped before encoding.
func EncodePath(input string, enc Encoding) string {
	input = trimSlashes(input)
	switch enc {
	case EncodingPlain:
		return inlinePrefix + strings.ReplaceAll(input, "/", pathSeparator)
	case EncodingBase64:
		return encodedPayload(input)
	}
	if simplePathPayload.MatchString(input) {
		return inlinePrefix + strings.ReplaceAll(input, "/", pathSeparator)
	}
	return encodedPayload(input)
}

func encodedPayload(value string) string {
	return encodedPrefix + EscapeComponent(base64.StdEncoding.EncodeToString([]byte(value)))
}

func trimSlashes(value string) string {
	value = strings.TrimPrefix(value, "/")
	return strings.TrimSuffix(value, "/")
}

const upperhex = "0123456789ABCDEF"

// EscapeComponent percent-encodes every byte outside the URI component
// unreserved set: ASCII letters, digits and - _ . ! ~ * ' ( ).
func EscapeComponent(value string) string {
	n := 0
	for i := 0; i < len(value); i++ {
		if !componentSafe(value[i]) {
			n++
		}
	}
	if n == 0 {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 2*n)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if componentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func componentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
