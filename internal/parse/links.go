package parse

import (
	"html"
	"net/url"
	"regexp"
)

var (
	amazonLinkRe = regexp.MustCompile(`https?://(?:(?:www\.)?amazon\.(?:in|com)|amzn\.(?:in|to)|a\.co)/[^\s<>"&]+`)
	redirectRe   = regexp.MustCompile(`https://www\.google\.com/url\?[^\s<>"']+`)
)

// ExtractLinks returns every distinct Amazon link in the markup, including
// links wrapped in a Google redirect. Order is first discovery: direct links
// before unwrapped ones.
func ExtractLinks(htmlText string) []string {
	seen := map[string]struct{}{}
	links := []string{}
	add := func(link string) {
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	for _, link := range amazonLinkRe.FindAllString(htmlText, -1) {
		add(link)
	}
	for _, wrapped := range redirectRe.FindAllString(htmlText, -1) {
		if link, ok := UnwrapRedirect(wrapped); ok {
			add(link)
		}
	}
	return links
}

// UnwrapRedirect returns the Amazon link carried in the q parameter of a
// Google redirect URL.
func UnwrapRedirect(wrapped string) (string, bool) {
	u, err := url.Parse(html.UnescapeString(wrapped))
	if err != nil {
		return "", false
	}
	target := u.Query().Get("q")
	loc := amazonLinkRe.FindStringIndex(target)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return target[:loc[1]], true
}
