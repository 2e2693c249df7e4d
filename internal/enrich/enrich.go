// Package enrich replaces placeholder book titles with the title shown on
// the product page. The run pipeline only calls it when asked to.
package enrich

import (
	"context"
	"html"
	"regexp"
	"strings"
	"time"

	"bookscrape/internal/catalog"
	"bookscrape/internal/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultDomain  = "amazon.in"
	DefaultTimeout = 15 * time.Second
	DefaultDelay   = 3 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	minTitleLength   = 5
)

var ErrNoTitle = errors.New("no product title on page")

var (
	jsonTitleRe  = regexp.MustCompile(`"title":"([^"]+)"`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type Options struct {
	// Domain is the storefront host without "www.".
	Domain string
	// BaseURL overrides "https://www.<Domain>".
	BaseURL  string
	Mode     fetch.Mode
	Timeout  time.Duration
	Delay    time.Duration
	Headless bool
	Logger   zerolog.Logger
}

type Enricher struct {
	opts Options
}

func New(opts Options) *Enricher {
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www." + opts.Domain
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Mode == "" {
		opts.Mode = fetch.ModeStatic
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &Enricher{opts: opts}
}

func (e *Enricher) ProductURL(asin string) string {
	return e.opts.BaseURL + "/dp/" + asin
}

func browserHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}

// FetchTitle loads the product page for asin and returns its title.
func (e *Enricher) FetchTitle(ctx context.Context, asin string) (string, error) {
	productURL := e.ProductURL(asin)
	res, err := fetch.Fetch(ctx, fetch.Options{
		URL:       productURL,
		Mode:      e.opts.Mode,
		Timeout:   e.opts.Timeout,
		UserAgent: browserUserAgent,
		Headers:   browserHeaders(),
		Headless:  e.opts.Headless,
	})
	if err != nil {
		return "", errors.Wrapf(err, "fetch product %s", asin)
	}
	title, ok := ParseProductTitle(res.HTML)
	if !ok {
		return "", errors.Wrapf(ErrNoTitle, "product %s", asin)
	}
	return title, nil
}

// ParseProductTitle extracts the product title from a product page.
func ParseProductTitle(htmlText string) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText)); err == nil {
		for _, selector := range []string{"#productTitle", `h1[class*="product-title"]`} {
			if title, ok := cleanTitle(doc.Find(selector).First().Text()); ok {
				return title, true
			}
		}
	}
	if m := jsonTitleRe.FindStringSubmatch(htmlText); m != nil {
		return cleanTitle(m[1])
	}
	return "", false
}

func cleanTitle(raw string) (string, bool) {
	title := html.UnescapeString(raw)
	title = strings.ReplaceAll(title, "\u00a0", " ")
	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
	if len([]rune(title)) <= minTitleLength {
		return "", false
	}
	return title, true
}

type Summary struct {
	Candidates int `json:"candidates"`
	Fixed      int `json:"fixed"`
	Failed     int `json:"failed"`
}

// FixGenericTitles fetches a product title for every book whose title is
// generic. A failed lookup keeps the previous title.
func (e *Enricher) FixGenericTitles(ctx context.Context, books []*catalog.Book) (Summary, error) {
	var summary Summary
	for _, book := range books {
		if !catalog.IsGenericTitle(book.Title) {
			continue
		}
		if summary.Candidates > 0 {
			if err := fetch.Sleep(ctx, e.opts.Delay); err != nil {
				return summary, err
			}
		}
		summary.Candidates++

		title, err := e.FetchTitle(ctx, book.ASIN)
		if err != nil {
			summary.Failed++
			e.opts.Logger.Warn().Err(err).
				Str("asin", book.ASIN).
				Str("url", e.ProductURL(book.ASIN)).
				Msg("Could not fetch product title")
			continue
		}
		e.opts.Logger.Info().
			Str("asin", book.ASIN).
			Str("old_title", book.Title).
			Str("title", title).
			Msg("Fixed generic title")
		book.Title = title
		summary.Fixed++
	}
	return summary, nil
}
