package options

import (
	"path"
	"strings"
	"unicode"
)

// Slug normalizes a label into a lowercase code: letters and digits are
// kept, everything else collapses into single dashes
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Mime maps a known image file extension to its mime type. The second
// return value is false for unrecognized extensions; the legacy code left
// that case undefined, callers log and skip the media instead.
func Mime(name string) (string, bool) {
	switch strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".") {
	case "webp":
		return "image/webp", true
	case "jpeg", "jpg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "gif":
		return "image/gif", true
	default:
		return "", false
	}
}
