package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// PlaceholderTitle is used when neither anchor text nor nearby prose
// yields a candidate.
const PlaceholderTitle = "Amazon Book Link"

const (
	contextWindow     = 200
	minFragmentLength = 10
	maxFragmentLength = 200
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>|<[^>]*$|^[^<]*>`)
	fragmentSep  = regexp.MustCompile(`[.!?;,\n]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// InferTitle picks a human-readable title for link. The parsed document is
// searched for anchor text first; the raw markup before the link is the
// fallback.
func InferTitle(doc *goquery.Document, htmlText, link string) string {
	if title := anchorTitle(doc, link); title != "" {
		return title
	}
	if title := nearbyTitle(htmlText, link); title != "" {
		return title
	}
	return PlaceholderTitle
}

func anchorTitle(doc *goquery.Document, link string) string {
	if doc == nil {
		return ""
	}
	title := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !hrefMatches(href, link) {
			return true
		}
		if text := normalizeText(s.Text()); text != "" {
			title = text
			return false
		}
		return true
	})
	return title
}

// hrefMatches reports whether href points at link, directly or through a
// redirect whose target unwraps to link.
func hrefMatches(href, link string) bool {
	if strings.Contains(href, link) {
		return true
	}
	if wrapped := redirectRe.FindString(href); wrapped != "" {
		if target, ok := UnwrapRedirect(wrapped); ok {
			return target == link
		}
	}
	return false
}

func nearbyTitle(htmlText, link string) string {
	idx := strings.Index(htmlText, link)
	if idx < 0 {
		return ""
	}
	window := []rune(htmlText[:idx])
	if len(window) > contextWindow {
		window = window[len(window)-contextWindow:]
	}

	text := tagRe.ReplaceAllString(string(window), "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(text) <= minFragmentLength {
		return ""
	}

	fragments := fragmentSep.Split(text, -1)
	for i := len(fragments) - 1; i >= 0; i-- {
		fragment := strings.TrimSpace(fragments[i])
		n := utf8.RuneCountInString(fragment)
		if n > minFragmentLength && n < maxFragmentLength {
			return fragment
		}
	}
	return ""
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
