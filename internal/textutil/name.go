// Package textutil cleans user-supplied text: display names, recipe
// descriptions pasted from the web, and plain text for the search index.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName composes unicode (NFC), collapses internal whitespace runs
// to a single space and trims the ends. "  Sea   salt " -> "Sea salt".
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SameName reports whether two names are equal after normalization,
// ignoring case.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
