package util

import (
	"path"
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeFileName reduces a client-supplied upload name to a safe base name.
// Directory components, control characters and path separators are dropped.
// It returns "" when nothing usable is left.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(SanitizeString(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.TrimLeft(name, ".")
}
