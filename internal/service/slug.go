package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify derives the URL-safe company slug: compatibility-decomposed, reduced
// to ASCII, lowercased, stripped of punctuation, with whitespace and hyphen runs
// collapsed to one hyphen. "Acme Inc" becomes "acme-inc".
func Slugify(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	value := slugDisallowed.ReplaceAllString(strings.ToLower(b.String()), "")
	value = slugSeparators.ReplaceAllString(value, "-")
	return strings.Trim(value, "-_")
}
