package crawler

import (
	"context"
	"fmt"
	"time"

	"bookscrape/internal/catalog"
	"bookscrape/internal/fetch"

	"github.com/gocolly/colly/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Options configures the episode page visitor. Pages are fetched one at a
// time with Delay observed between consecutive fetches.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Delay     time.Duration
	Logger    zerolog.Logger
}

type Result struct {
	URL        string
	HTML       string
	StatusCode int
	Error      error
	FetchedAt  time.Time
}

type Stats struct {
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	PagesCrawled int       `json:"pages_crawled"`
	PagesFailed  int       `json:"pages_failed"`
	Errors       []string  `json:"errors,omitempty"`
}

// Crawler visits episode pages sequentially. It is not safe for concurrent use.
type Crawler struct {
	collector *colly.Collector
	opts      Options
	last      *Result
	stats     Stats
}

func New(ctx context.Context, opts Options) (*Crawler, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Delay < 0 {
		return nil, errors.Errorf("negative delay: %s", opts.Delay)
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
	}); err != nil {
		return nil, errors.Wrap(err, "configure crawl limit")
	}
	c.SetRequestTimeout(opts.Timeout)

	cr := &Crawler{
		collector: c,
		opts:      opts,
		stats:     Stats{StartedAt: time.Now()},
	}
	c.OnResponse(cr.handleResponse)
	c.OnError(cr.handleError)
	return cr, nil
}

func (cr *Crawler) handleResponse(r *colly.Response) {
	cr.last = &Result{
		URL:        r.Request.URL.String(),
		HTML:       string(r.Body),
		StatusCode: r.StatusCode,
		FetchedAt:  time.Now(),
	}
	cr.stats.PagesCrawled++
}

func (cr *Crawler) handleError(r *colly.Response, err error) {
	cr.last = &Result{
		URL:        r.Request.URL.String(),
		StatusCode: r.StatusCode,
		Error:      err,
		FetchedAt:  time.Now(),
	}
}

// Fetch loads one page. Failures are reported in Result.Error; there are no
// retries.
func (cr *Crawler) Fetch(pageURL string) Result {
	cr.last = nil
	err := cr.collector.Visit(pageURL)

	res := Result{URL: pageURL, FetchedAt: time.Now()}
	if cr.last != nil {
		res = *cr.last
	}
	if err != nil && res.Error == nil {
		res.Error = err
	}
	if res.Error != nil {
		cr.recordError(pageURL, res.Error)
	}
	return res
}

func (cr *Crawler) recordError(pageURL string, err error) {
	cr.stats.PagesFailed++
	cr.stats.Errors = append(cr.stats.Errors, fmt.Sprintf("%s: %v", pageURL, err))
}

// Crawl fetches each episode page in order and hands the result to visit.
// A failed page is passed to visit like any other; only ctx cancellation
// stops the loop early.
func (cr *Crawler) Crawl(ctx context.Context, episodes []catalog.Episode, visit func(catalog.Episode, Result)) (Stats, error) {
	for i, ep := range episodes {
		if err := ctx.Err(); err != nil {
			cr.stats.CompletedAt = time.Now()
			return cr.stats, err
		}
		if i > 0 {
			if err := fetch.Sleep(ctx, cr.opts.Delay); err != nil {
				cr.stats.CompletedAt = time.Now()
				return cr.stats, err
			}
		}
		cr.opts.Logger.Info().
			Int("index", i+1).
			Int("of", len(episodes)).
			Str("episode", ep.Number).
			Str("url", ep.URL).
			Msg("Fetching episode")
		visit(ep, cr.Fetch(ep.URL))
	}
	cr.stats.CompletedAt = time.Now()
	return cr.stats, nil
}

func (cr *Crawler) Stats() Stats {
	return cr.stats
}
