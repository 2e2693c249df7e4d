package app

import (
	"io"
	"os"
	"strings"
	"time"

	"bookscrape/internal/crawler"
	"bookscrape/internal/enrich"
	"bookscrape/internal/fetch"
	"bookscrape/internal/output"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultSitemapURL     = "https://seenunseen.in/sitemap.xml"
	DefaultUserAgent      = crawler.DefaultUserAgent
	DefaultTimeoutSeconds = 30
	DefaultBatchSize      = 500
	DefaultDelay          = 2 * time.Second
)

type Options struct {
	SitemapURL string
	OutputDir  string
	Prefix     string
	Timeout    time.Duration
	UserAgent  string
	StartIndex int
	BatchSize  int
	Delay      time.Duration
	DryRun     bool

	EnrichTitles bool
	ProductPages ProductPageOptions

	Logger zerolog.Logger
	Stdout io.Writer
	Now    func() time.Time
}

// ProductPageOptions configures product page lookups for title enrichment.
type ProductPageOptions struct {
	Mode     fetch.Mode
	Domain   string
	BaseURL  string
	Delay    time.Duration
	Timeout  time.Duration
	Headless bool
}

func (p ProductPageOptions) withDefaults() ProductPageOptions {
	if p.Mode == "" {
		p.Mode = fetch.ModeStatic
	}
	if p.Domain == "" {
		p.Domain = enrich.DefaultDomain
	}
	if p.Timeout <= 0 {
		p.Timeout = enrich.DefaultTimeout
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

func (p ProductPageOptions) enricher(logger zerolog.Logger) *enrich.Enricher {
	return enrich.New(enrich.Options{
		Domain:   p.Domain,
		BaseURL:  p.BaseURL,
		Mode:     p.Mode,
		Timeout:  p.Timeout,
		Delay:    p.Delay,
		Headless: p.Headless,
		Logger:   logger,
	})
}

func normalizeOptions(opts Options) (Options, error) {
	if strings.TrimSpace(opts.SitemapURL) == "" {
		opts.SitemapURL = DefaultSitemapURL
	}
	if opts.OutputDir == "" {
		opts.OutputDir = output.DefaultDir
	}
	if opts.Prefix == "" {
		opts.Prefix = output.DefaultPrefix
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.StartIndex < 0 {
		return opts, errors.Errorf("start index must not be negative, got %d", opts.StartIndex)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Delay < 0 {
		return opts, errors.Errorf("delay must not be negative, got %s", opts.Delay)
	}
	opts.ProductPages = opts.ProductPages.withDefaults()
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts, nil
}
