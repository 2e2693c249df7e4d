package parse

import (
	"errors"
	"strings"

	"bookscrape/internal/catalog"

	"github.com/PuerkitoBio/goquery"
)

func NewDocument(htmlText string) (*goquery.Document, error) {
	if strings.TrimSpace(htmlText) == "" {
		return nil, errors.New("empty html")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(htmlText))
}

// ExtractBooks returns one occurrence per distinct Amazon link on the page,
// in discovery order. ep may be nil when the page has no episode provenance.
func ExtractBooks(htmlText string, ep *catalog.Episode) []catalog.Occurrence {
	links := ExtractLinks(htmlText)
	if len(links) == 0 {
		return nil
	}

	doc, err := NewDocument(htmlText)
	if err == nil {
		RemoveSelectors(doc, "script, style, noscript")
	}

	var ref *catalog.EpisodeRef
	if ep != nil {
		r := ep.Ref()
		ref = &r
	}

	occurrences := make([]catalog.Occurrence, 0, len(links))
	for _, link := range links {
		occurrences = append(occurrences, catalog.Occurrence{
			Title:   InferTitle(doc, htmlText, link),
			Link:    link,
			Episode: ref,
		})
	}
	return occurrences
}
