package parse

import "github.com/PuerkitoBio/goquery"

// RemoveSelectors drops every element matching selector from doc.
func RemoveSelectors(doc *goquery.Document, selector string) {
	if doc == nil {
		return
	}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
}
