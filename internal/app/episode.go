package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bookscrape/internal/catalog"
	"bookscrape/internal/crawler"
	"bookscrape/internal/fetch"
	"bookscrape/internal/markdown"
	"bookscrape/internal/output"
	"bookscrape/internal/parse"
	"bookscrape/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EpisodeOptions configures a one-off extraction from a single page.
type EpisodeOptions struct {
	URL       string
	Mode      fetch.Mode
	Headless  bool
	Timeout   time.Duration
	UserAgent string

	// WriteCSV saves the raw occurrences under OutputDir.
	WriteCSV  bool
	OutputDir string
	Prefix    string
	// Markdown prints a markdown table instead of the console table. When
	// WriteCSV is set the markdown is saved next to the CSV.
	Markdown bool

	Logger zerolog.Logger
	Stdout io.Writer
	Now    func() time.Time
}

// EpisodeResult is what RunEpisode found on the page.
type EpisodeResult struct {
	Episode     *catalog.Episode
	Occurrences []catalog.Occurrence
	FetchMode   fetch.Mode
	Files       []string
}

// RunEpisode fetches one page and lists the book links on it without
// deduplication. Pages outside the episode URL pattern are accepted and
// produce the standard (provenance-free) raw layout.
func RunEpisode(ctx context.Context, opts EpisodeOptions) (EpisodeResult, error) {
	if opts.URL == "" {
		return EpisodeResult{}, errors.New("episode url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Prefix == "" {
		opts.Prefix = output.DefaultPrefix
	}

	opts.Logger.Info().Str("url", opts.URL).Str("mode", string(opts.Mode)).Msg("Fetching page")
	page, err := fetch.Fetch(ctx, fetch.Options{
		URL:       opts.URL,
		Mode:      opts.Mode,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		Headless:  opts.Headless,
	})
	if err != nil {
		return EpisodeResult{}, errors.Wrapf(err, "fetch %s", opts.URL)
	}

	res := EpisodeResult{FetchMode: page.FinalMode}
	if ep, ok := crawler.EpisodeFromURL(opts.URL); ok {
		res.Episode = &ep
	}
	res.Occurrences = parse.ExtractBooks(page.HTML, res.Episode)
	opts.Logger.Info().Int("books", len(res.Occurrences)).Str("source", page.SourceInfo).Msg("Extracted links")

	rows := make([]markdown.Row, 0, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		rows = append(rows, markdown.Row{Title: occ.Title, Link: occ.Link})
	}
	md, err := markdown.NewConverter().BooksTable(rows)
	if err != nil {
		return res, errors.Wrap(err, "render markdown")
	}

	if opts.WriteCSV && len(res.Occurrences) > 0 {
		files := output.FilesFor(opts.OutputDir, output.Basename(opts.Prefix, opts.Now()))
		if err := output.WriteText(files.Raw, report.Raw(res.Occurrences).String()); err != nil {
			return res, err
		}
		res.Files = append(res.Files, files.Raw)
		if opts.Markdown {
			if err := output.WriteText(files.Markdown, md); err != nil {
				return res, err
			}
			res.Files = append(res.Files, files.Markdown)
		}
	}

	if opts.Markdown {
		fmt.Fprint(opts.Stdout, md)
	} else {
		printOccurrences(opts.Stdout, res)
	}
	for _, f := range res.Files {
		fmt.Fprintf(opts.Stdout, "Wrote %s\n", filepath.Clean(f))
	}
	return res, nil
}

func printOccurrences(w io.Writer, res EpisodeResult) {
	if len(res.Occurrences) == 0 {
		fmt.Fprintln(w, "No Amazon links found.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if res.Episode != nil {
		t.SetTitle(fmt.Sprintf("Episode %s: %s", res.Episode.Number, res.Episode.Title))
	}
	t.AppendHeader(table.Row{"#", "ASIN", "Title", "Link"})
	for i, occ := range res.Occurrences {
		asin, _ := catalog.ExtractASIN(occ.Link)
		t.AppendRow(table.Row{i + 1, asin, truncate(occ.Title, maxTitleWidth), occ.Link})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
