package cli

import (
	"strings"
	"time"

	"bookscrape/internal/app"
	"bookscrape/internal/config"
	"bookscrape/internal/enrich"
	"bookscrape/internal/fetch"
	"bookscrape/internal/output"

	"github.com/spf13/pflag"
)

// RunFlags holds the flags of the run command. A flag only overrides the
// config file and environment when it was set on the command line.
type RunFlags struct {
	SitemapURL string
	OutputDir  string
	Basename   string
	Timeout    int
	UserAgent  string
	StartIndex int
	BatchSize  int
	Delay      float64
	DryRun     bool

	EnrichTitles bool
	Product      ProductFlags
}

// ProductFlags configure product page lookups. They are shared by run and
// enrich.
type ProductFlags struct {
	Mode     string
	Domain   string
	Delay    float64
	Timeout  int
	Headless bool
}

func BindRunFlags(fs *pflag.FlagSet) *RunFlags {
	f := &RunFlags{}
	fs.StringVar(&f.SitemapURL, "sitemap", app.DefaultSitemapURL, "Sitemap URL listing the episode pages")
	fs.StringVarP(&f.OutputDir, "output-dir", "o", output.DefaultDir, "Directory for the report files")
	fs.StringVar(&f.Basename, "basename", output.DefaultPrefix, "Prefix of the report file names")
	fs.IntVar(&f.Timeout, "timeout", app.DefaultTimeoutSeconds, "Per-request timeout in seconds")
	fs.StringVar(&f.UserAgent, "user-agent", app.DefaultUserAgent, "User-Agent header for site requests")
	fs.IntVar(&f.StartIndex, "start", 0, "Index of the first episode to process")
	fs.IntVar(&f.BatchSize, "batch-size", app.DefaultBatchSize, "Number of episodes to process")
	fs.Float64Var(&f.Delay, "delay", app.DefaultDelay.Seconds(), "Seconds to wait between episode fetches")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Crawl and summarize only; do not write files")
	fs.BoolVar(&f.EnrichTitles, "enrich-titles", false, "Replace generic titles with product page titles")
	bindProductFlags(fs, &f.Product)
	return f
}

func BindProductFlags(fs *pflag.FlagSet) *ProductFlags {
	f := &ProductFlags{}
	bindProductFlags(fs, f)
	return f
}

func bindProductFlags(fs *pflag.FlagSet, f *ProductFlags) {
	fs.StringVar(&f.Mode, "enrich-mode", string(fetch.ModeStatic), "Product page fetch mode: static|dynamic|auto")
	fs.StringVar(&f.Domain, "enrich-domain", enrich.DefaultDomain, "Amazon storefront domain for product pages")
	fs.Float64Var(&f.Delay, "enrich-delay", enrich.DefaultDelay.Seconds(), "Seconds to wait between product page fetches")
	fs.IntVar(&f.Timeout, "enrich-timeout", int(enrich.DefaultTimeout.Seconds()), "Product page timeout in seconds")
	fs.BoolVar(&f.Headless, "headless", true, "Run the browser headless (dynamic mode)")
}

// ApplyRunFlags copies the explicitly set flags over cfg.
func ApplyRunFlags(cfg *config.Config, fs *pflag.FlagSet, f *RunFlags) {
	if fs.Changed("sitemap") {
		cfg.SitemapURL = f.SitemapURL
	}
	if fs.Changed("output-dir") {
		cfg.OutputDir = f.OutputDir
	}
	if fs.Changed("basename") {
		cfg.Basename = f.Basename
	}
	if fs.Changed("timeout") {
		cfg.TimeoutSeconds = f.Timeout
	}
	if fs.Changed("user-agent") {
		cfg.UserAgent = f.UserAgent
	}
	if fs.Changed("start") {
		cfg.StartIndex = f.StartIndex
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize = f.BatchSize
	}
	if fs.Changed("delay") {
		cfg.DelaySeconds = f.Delay
	}
	if fs.Changed("enrich-titles") {
		cfg.EnrichTitles = f.EnrichTitles
	}
	ApplyProductFlags(cfg, fs, &f.Product)
}

func ApplyProductFlags(cfg *config.Config, fs *pflag.FlagSet, f *ProductFlags) {
	if fs.Changed("enrich-mode") {
		cfg.EnrichMode = f.Mode
	}
	if fs.Changed("enrich-domain") {
		cfg.EnrichDomain = f.Domain
	}
	if fs.Changed("enrich-delay") {
		cfg.EnrichDelaySeconds = f.Delay
	}
	if fs.Changed("enrich-timeout") {
		cfg.EnrichTimeoutSeconds = f.Timeout
	}
	if fs.Changed("headless") {
		headless := f.Headless
		cfg.Headless = &headless
	}
}

// RunOptions turns the merged config into app options. Unset values fall
// back to the documented defaults.
func RunOptions(cfg config.Config) (app.Options, error) {
	if cfg.StartIndex < 0 {
		return app.Options{}, usageError("--start must not be negative, got %d", cfg.StartIndex)
	}
	if cfg.BatchSize < 0 {
		return app.Options{}, usageError("--batch-size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.TimeoutSeconds < 0 {
		return app.Options{}, usageError("--timeout must be positive, got %d", cfg.TimeoutSeconds)
	}

	delay := app.DefaultDelay
	if cfg.DelaySeconds < 0 {
		return app.Options{}, usageError("--delay must not be negative, got %g", cfg.DelaySeconds)
	}
	if cfg.DelaySeconds > 0 {
		delay = seconds(cfg.DelaySeconds)
	}

	product, err := ProductOptions(cfg)
	if err != nil {
		return app.Options{}, err
	}

	return app.Options{
		SitemapURL:   strings.TrimSpace(cfg.SitemapURL),
		OutputDir:    cfg.OutputDir,
		Prefix:       cfg.Basename,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent:    cfg.UserAgent,
		StartIndex:   cfg.StartIndex,
		BatchSize:    cfg.BatchSize,
		Delay:        delay,
		EnrichTitles: cfg.EnrichTitles,
		ProductPages: product,
	}, nil
}

func ProductOptions(cfg config.Config) (app.ProductPageOptions, error) {
	mode, err := fetch.ParseMode(strings.ToLower(strings.TrimSpace(cfg.EnrichMode)))
	if err != nil {
		return app.ProductPageOptions{}, ExitError{Code: 2, Err: err}
	}
	if cfg.EnrichDelaySeconds < 0 {
		return app.ProductPageOptions{}, usageError("--enrich-delay must not be negative, got %g", cfg.EnrichDelaySeconds)
	}

	delay := enrich.DefaultDelay
	if cfg.EnrichDelaySeconds > 0 {
		delay = seconds(cfg.EnrichDelaySeconds)
	}
	headless := true
	if cfg.Headless != nil {
		headless = *cfg.Headless
	}
	return app.ProductPageOptions{
		Mode:     mode,
		Domain:   strings.TrimSpace(cfg.EnrichDomain),
		Delay:    delay,
		Timeout:  time.Duration(cfg.EnrichTimeoutSeconds) * time.Second,
		Headless: headless,
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
