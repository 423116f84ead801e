package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeUsername lowercases a username and strips accent marks so lookups
// and the unique index are case-insensitive.
func NormalizeUsername(username string) string {
	t := norm.NFD.String(strings.TrimSpace(username))
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
