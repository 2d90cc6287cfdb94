package text

import (
	"regexp"
	"strings"
)

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a case title into a filesystem-safe identifier: lowered,
// with every non-alphanumeric run replaced by a single underscore.
// Returns "" for titles with no usable characters.
func Slug(caseName string) string {
	s := slugRE.ReplaceAllString(strings.ToLower(caseName), "_")
	return strings.Trim(s, "_")
}
