package app

import (
	"context"
	"time"

	"bookscrape/internal/catalog"
	"bookscrape/internal/crawler"
	"bookscrape/internal/enrich"
	"bookscrape/internal/output"
	"bookscrape/internal/parse"
	"bookscrape/internal/report"

	"github.com/pkg/errors"
)

// Summary describes one batch run. It is also written as the run's JSON
// summary file.
type Summary struct {
	StartedAt         time.Time            `json:"started_at"`
	SitemapURL        string               `json:"sitemap_url"`
	EpisodesTotal     int                  `json:"episodes_total"`
	BatchStart        int                  `json:"batch_start"`
	BatchEnd          int                  `json:"batch_end"`
	EpisodesProcessed int                  `json:"episodes_processed"`
	EpisodesFailed    int                  `json:"episodes_failed"`
	EpisodesEmpty     int                  `json:"episodes_without_links"`
	NextStartIndex    int                  `json:"next_start_index,omitempty"`
	Crawl             crawler.Stats        `json:"crawl"`
	Report            report.Report        `json:"report"`
	Enrichment        *enrich.Summary      `json:"enrichment,omitempty"`
	Files             *output.Files        `json:"files,omitempty"`
	Books             []*catalog.Book      `json:"books"`
	WithoutASIN       []catalog.Occurrence `json:"without_asin"`
}

// Run crawls one batch of episodes from the sitemap, merges the books they
// link to and writes the reports. Only a sitemap failure aborts the run; a
// failed episode page is logged and skipped.
func Run(ctx context.Context, opts Options) (Summary, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return Summary{}, err
	}
	logger := opts.Logger
	started := opts.Now()

	logger.Info().Str("url", opts.SitemapURL).Msg("Fetching sitemap")
	episodes, err := crawler.ParseEpisodes(ctx, opts.SitemapURL, crawler.SitemapOptions{
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "read sitemap")
	}
	logger.Info().Int("episodes", len(episodes)).Msg("Found episodes")

	start, end := batchBounds(len(episodes), opts.StartIndex, opts.BatchSize)
	batch := episodes[start:end]
	summary := Summary{
		StartedAt:     started,
		SitemapURL:    opts.SitemapURL,
		EpisodesTotal: len(episodes),
		BatchStart:    start,
		BatchEnd:      end,
	}
	if len(batch) == 0 {
		logger.Warn().Int("start_index", opts.StartIndex).Int("episodes", len(episodes)).Msg("Start index is past the last episode")
		return summary, nil
	}
	logger.Info().Int("from", start+1).Int("to", end).Msg("Processing episodes")

	cr, err := crawler.New(ctx, crawler.Options{
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		Delay:     opts.Delay,
		Logger:    logger,
	})
	if err != nil {
		return summary, err
	}

	index := catalog.NewIndex()
	stats, err := cr.Crawl(ctx, batch, func(ep catalog.Episode, res crawler.Result) {
		summary.EpisodesProcessed++
		if res.Error != nil {
			summary.EpisodesFailed++
			logger.Warn().Err(res.Error).Str("episode", ep.Number).Str("url", ep.URL).Msg("Episode fetch failed")
			return
		}
		books := parse.ExtractBooks(res.HTML, &ep)
		if len(books) == 0 {
			summary.EpisodesEmpty++
			logger.Info().Str("episode", ep.Number).Msg("No Amazon links found")
			return
		}
		logger.Info().Str("episode", ep.Number).Int("books", len(books)).Msg("Found books")
		for _, occ := range books {
			index.Add(occ)
		}
	})
	summary.Crawl = stats
	if err != nil {
		return summary, errors.Wrap(err, "crawl interrupted")
	}

	result := index.Result()
	if result.Stats.Total == 0 {
		logger.Warn().Msg("No books found")
		return summary, nil
	}

	if opts.EnrichTitles {
		enriched, err := opts.ProductPages.enricher(logger).FixGenericTitles(ctx, result.Books)
		summary.Enrichment = &enriched
		if err != nil {
			return summary, errors.Wrap(err, "enrich titles")
		}
		logger.Info().Int("fixed", enriched.Fixed).Int("failed", enriched.Failed).Msg("Title enrichment done")
	}

	summary.Books = result.Books
	summary.WithoutASIN = result.WithoutID
	summary.Report = report.Analyze(result)
	if end < len(episodes) {
		summary.NextStartIndex = end
	}

	if !opts.DryRun {
		files := output.FilesFor(opts.OutputDir, output.Basename(opts.Prefix, started))
		if err := writeRunOutputs(files, summary); err != nil {
			return summary, err
		}
		summary.Files = &files
		if err := output.WriteJSON(files.Summary, summary); err != nil {
			return summary, err
		}
	}

	printRunSummary(opts.Stdout, summary)
	if remaining := len(episodes) - end; remaining > 0 {
		logger.Info().
			Int("remaining", remaining).
			Int("next_start_index", end).
			Msg("Episodes left for the next batch")
	}
	return summary, nil
}

func batchBounds(total, start, size int) (int, int) {
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}
