package catalog

import "regexp"

// Order matters: a URL may satisfy several shapes and the first match wins,
// so the canonical /dp/ path beats the bare-domain form.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`amazon\.[^/]+/([A-Z0-9]{10})/`),
}

// ExtractASIN returns the product identifier embedded in an Amazon URL.
func ExtractASIN(productURL string) (string, bool) {
	for _, re := range asinPatterns {
		if m := re.FindStringSubmatch(productURL); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}
