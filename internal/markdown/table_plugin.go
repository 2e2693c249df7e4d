package markdown

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var cellEscaper = strings.NewReplacer(
	`|`, `\|`,
	`[`, `\[`,
	`]`, `\]`,
	"\r\n", " ",
	"\n", " ",
)

// TablePlugin renders tables as pipe tables using the plain text of each
// cell. Pipes and square brackets in cells are escaped so a book title
// cannot break the row or turn into a link.
func TablePlugin() md.Plugin {
	return func(conv *md.Converter) []md.Rule {
		return []md.Rule{{
			Filter: []string{"table"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				rows := tableRows(selec)
				if len(rows) == 0 {
					return nil
				}
				res := renderTable(rows)
				return &res
			},
		}}
	}
}

func tableRows(table *goquery.Selection) [][]string {
	rows := [][]string{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := []string{}
		tr.Children().Filter("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cleanCell(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func renderTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	b.WriteString("\n\n")
	for r, row := range rows {
		writeRow(&b, row, width)
		if r == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", width))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func writeRow(b *strings.Builder, row []string, width int) {
	b.WriteString("|")
	for c := 0; c < width; c++ {
		b.WriteString(" ")
		if c < len(row) {
			b.WriteString(row[c])
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func cleanCell(text string) string {
	return cellEscaper.Replace(strings.TrimSpace(text))
}
