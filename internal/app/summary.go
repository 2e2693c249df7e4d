package app

import (
	"fmt"
	"io"
	"strings"

	"bookscrape/internal/catalog"
	"bookscrape/internal/markdown"
	"bookscrape/internal/output"
	"bookscrape/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

const (
	maxTitleWidth  = 80
	maxLinkWidth   = 36
	sampleBooks    = 3
	sampleEpisodes = 5
)

func writeRunOutputs(files output.Files, summary Summary) error {
	if err := output.WriteText(files.Unique, report.Unique(summary.Books).String()); err != nil {
		return errors.Wrap(err, "write unique report")
	}
	if err := output.WriteText(files.Expanded, report.Expanded(summary.Books).String()); err != nil {
		return errors.Wrap(err, "write expanded report")
	}
	md, err := markdown.NewConverter().BooksTable(markdownRows(summary.Books))
	if err != nil {
		return errors.Wrap(err, "render markdown")
	}
	if err := output.WriteText(files.Markdown, md); err != nil {
		return errors.Wrap(err, "write markdown")
	}
	return nil
}

func markdownRows(books []*catalog.Book) []markdown.Row {
	rows := make([]markdown.Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, markdown.Row{Title: b.Title, Link: b.Link})
	}
	return rows
}

func printRunSummary(w io.Writer, s Summary) {
	stats := table.NewWriter()
	stats.SetOutputMirror(w)
	stats.SetTitle("Run summary")
	stats.AppendHeader(table.Row{"Metric", "Value"})
	stats.AppendRows([]table.Row{
		{"Episodes in sitemap", s.EpisodesTotal},
		{"Episodes processed", s.EpisodesProcessed},
		{"Episodes failed", s.EpisodesFailed},
		{"Episodes without links", s.EpisodesEmpty},
		{"Links found", s.Report.Stats.Total},
		{"Unique books", s.Report.Stats.Unique},
		{"Links without ASIN", s.Report.Stats.WithoutID},
		{"Duplicates removed", s.Report.Stats.DuplicatesRemoved},
		{"Generic titles", len(s.Report.GenericTitles)},
	})
	if s.Enrichment != nil {
		stats.AppendRow(table.Row{"Titles fixed", s.Enrichment.Fixed})
	}
	stats.SetStyle(table.StyleRounded)
	stats.Render()

	if s.Files != nil {
		fmt.Fprintf(w, "\nUnique books:   %s\n", s.Files.Unique)
		fmt.Fprintf(w, "Expanded books: %s\n", s.Files.Expanded)
		fmt.Fprintf(w, "Markdown:       %s\n", s.Files.Markdown)
		fmt.Fprintf(w, "Summary:        %s\n", s.Files.Summary)
	}

	if len(s.Books) == 0 {
		return
	}
	fmt.Fprintln(w)
	sample := table.NewWriter()
	sample.SetOutputMirror(w)
	sample.SetTitle("Sample")
	sample.AppendHeader(table.Row{"ASIN", "Title", "Link", "Episodes"})
	for i, b := range s.Books {
		if i == sampleBooks {
			break
		}
		sample.AppendRow(table.Row{b.ASIN, truncate(b.Title, maxTitleWidth), truncate(b.Link, maxLinkWidth), sampleEpisodeList(b)})
	}
	sample.SetStyle(table.StyleRounded)
	sample.Render()
}

func sampleEpisodeList(b *catalog.Book) string {
	nums := b.EpisodeNumbers()
	if len(nums) > sampleEpisodes {
		return strings.Join(nums[:sampleEpisodes], ", ") + fmt.Sprintf(" (+%d)", len(nums)-sampleEpisodes)
	}
	return strings.Join(nums, ", ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
