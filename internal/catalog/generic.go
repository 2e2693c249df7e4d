package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minTitleLength = 5

var genericTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^amazon\s+book\s+link$`),
	regexp.MustCompile(`^buy\s+here$`),
	regexp.MustCompile(`^on\s+amazon$`),
	regexp.MustCompile(`^here$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^click\s+here$`),
	regexp.MustCompile(`^link$`),
	regexp.MustCompile(`^book$`),
	regexp.MustCompile(`^amazon$`),
	// Substring match, unlike the full-match rules above.
	regexp.MustCompile(`amazon\s+link`),
}

// IsGenericTitle reports whether a title is a placeholder that carries no
// information about the book.
func IsGenericTitle(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, re := range genericTitlePatterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return utf8.RuneCountInString(normalized) < minTitleLength
}
