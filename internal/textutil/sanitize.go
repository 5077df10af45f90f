package textutil

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces characters the media library rewrites or rejects
// in file names.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"#", "",
	"%", "",
	"&", "and",
)

// SanitizeFileName prepares a local file name for upload. The name is NFC
// normalized so visually identical names compare equal, unsafe characters are
// replaced, and runs of whitespace collapse to a single underscore.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return ""
	}
	name = fileNameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	return strings.Trim(name, ".-_")
}

// SanitizeTag converts a tag to a lowercase token. Letters are lowercased,
// digits and hyphens/underscores are kept, everything else becomes an
// underscore. Returns "" when nothing usable remains.
func SanitizeTag(value string) string {
	value = strings.TrimSpace(norm.NFC.String(value))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_-")
}

// CleanFolder normalizes a remote folder path to "/a/b" form. Empty input
// and "/" both mean the library root and yield "/".
func CleanFolder(folder string) string {
	folder = strings.TrimSpace(strings.ReplaceAll(folder, "\\", "/"))
	if folder == "" {
		return "/"
	}
	return path.Clean("/" + folder)
}
