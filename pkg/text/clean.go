// Package text provides opinion text cleanup: HTML stripping, whitespace
// normalization, and case-title filename slugs.
package text

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// CleanHTML strips markup from an HTML fragment and returns the
// normalized text content. Input that fails to parse is returned with
// whitespace normalized but otherwise untouched.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return NormalizeWhitespace(s)
	}
	return NormalizeWhitespace(doc.Text())
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}
