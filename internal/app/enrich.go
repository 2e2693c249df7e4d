package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"bookscrape/internal/catalog"
	"bookscrape/internal/enrich"
	"bookscrape/internal/fetch"
	"bookscrape/internal/output"
	"bookscrape/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const summarySuffix = "_summary.json"

// EnrichOptions configures a standalone title lookup. Either ASINs or
// SummaryPath must be set.
type EnrichOptions struct {
	ASINs        []string
	SummaryPath  string
	ProductPages ProductPageOptions

	Logger zerolog.Logger
	Stdout io.Writer
}

// EnrichResult pairs each looked-up ASIN with the title found, or the error.
type EnrichResult struct {
	ASIN  string
	Title string
	Err   error
}

// RunEnrich looks up product titles. With ASINs it only prints what it finds.
// With SummaryPath it repairs the generic titles of a previous run and
// rewrites that run's reports in place.
func RunEnrich(ctx context.Context, opts EnrichOptions) ([]EnrichResult, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	opts.ProductPages = opts.ProductPages.withDefaults()
	e := opts.ProductPages.enricher(opts.Logger)

	switch {
	case opts.SummaryPath != "":
		return nil, enrichSummary(ctx, e, opts)
	case len(opts.ASINs) > 0:
		return lookupASINs(ctx, e, opts)
	default:
		return nil, errors.New("nothing to enrich: pass ASINs or a summary file")
	}
}

func lookupASINs(ctx context.Context, e *enrich.Enricher, opts EnrichOptions) ([]EnrichResult, error) {
	results := make([]EnrichResult, 0, len(opts.ASINs))
	for i, asin := range opts.ASINs {
		if i > 0 {
			if err := fetch.Sleep(ctx, opts.ProductPages.Delay); err != nil {
				return results, err
			}
		}
		asin = strings.ToUpper(strings.TrimSpace(asin))
		title, err := e.FetchTitle(ctx, asin)
		if err != nil {
			opts.Logger.Warn().Err(err).Str("asin", asin).Msg("Lookup failed")
		}
		results = append(results, EnrichResult{ASIN: asin, Title: title, Err: err})
	}

	t := table.NewWriter()
	t.SetOutputMirror(opts.Stdout)
	t.AppendHeader(table.Row{"ASIN", "Title", "Product page"})
	for _, r := range results {
		title := r.Title
		if r.Err != nil {
			title = "(not found)"
		}
		t.AppendRow(table.Row{r.ASIN, truncate(title, maxTitleWidth), e.ProductURL(r.ASIN)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return results, nil
}

func enrichSummary(ctx context.Context, e *enrich.Enricher, opts EnrichOptions) error {
	var summary Summary
	if err := output.ReadJSON(opts.SummaryPath, &summary); err != nil {
		return err
	}
	if len(summary.Books) == 0 {
		return errors.Errorf("%s lists no books", opts.SummaryPath)
	}

	fixed, err := e.FixGenericTitles(ctx, summary.Books)
	if err != nil {
		return errors.Wrap(err, "enrich titles")
	}
	summary.Enrichment = &fixed
	summary.Report = report.Analyze(catalog.Result{
		Books:     summary.Books,
		WithoutID: summary.WithoutASIN,
		Stats:     summary.Report.Stats,
	})

	files := summaryFiles(opts.SummaryPath)
	if summary.Files != nil {
		files = *summary.Files
	}
	if err := writeRunOutputs(files, summary); err != nil {
		return err
	}
	summary.Files = &files
	if err := output.WriteJSON(opts.SummaryPath, summary); err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "Fixed %d of %d generic titles (%d failed)\n", fixed.Fixed, fixed.Candidates, fixed.Failed)
	return nil
}

// summaryFiles derives the sibling report paths of a summary file written by
// Run.
func summaryFiles(summaryPath string) output.Files {
	base := strings.TrimSuffix(summaryPath, summarySuffix)
	return output.Files{
		Unique:   base + "_unique.csv",
		Expanded: base + "_expanded.csv",
		Raw:      base + ".csv",
		Markdown: base + ".md",
		Summary:  summaryPath,
	}
}
