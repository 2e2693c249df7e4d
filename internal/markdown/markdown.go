package markdown

import (
	"html"
	"strconv"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
)

type Converter struct {
	md *htmltomd.Converter
}

func NewConverter() *Converter {
	conv := htmltomd.NewConverter("", true, nil)
	conv.Use(TablePlugin())
	return &Converter{md: conv}
}

// Row is one line of the books table.
type Row struct {
	Title string
	Link  string
}

// BooksTable renders rows as a numbered "| # | Book Title | Amazon Link |"
// table. It returns an empty string when there are no rows.
func (c *Converter) BooksTable(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<table><tr><th>#</th><th>Book Title</th><th>Amazon Link</th></tr>")
	for i, row := range rows {
		b.WriteString("<tr><td>")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(row.Title))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(row.Link))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>")

	out, err := c.md.ConvertString(b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}
