package report

import (
	"sort"
	"strconv"
	"strings"

	"bookscrape/internal/catalog"
)

const (
	UniqueHeader      = "ASIN,Book Title,Amazon Link,Episode Count,Episode Numbers"
	ExpandedHeader    = "Episode Number,Episode Title,Episode Date,ASIN,Book Title,Amazon Link,Episode URL"
	RawEpisodeHeader  = "Episode Number,Episode Title,Episode Date,Book Title,Amazon Link,Episode URL"
	RawStandardHeader = "Number,Book Title,Amazon Link"
)

// Table is a rendered CSV document: a header line and one line per row.
type Table struct {
	Header string
	Rows   []string
}

func (t Table) String() string {
	var b strings.Builder
	b.WriteString(t.Header)
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// Quote wraps s in double quotes, doubling any embedded quote.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Unique renders one row per book.
func Unique(books []*catalog.Book) Table {
	rows := make([]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, strings.Join([]string{
			Quote(b.ASIN),
			Quote(b.Title),
			Quote(b.Link),
			strconv.Itoa(len(b.Episodes)),
			Quote(strings.Join(b.EpisodeNumbers(), ";")),
		}, ","))
	}
	return Table{Header: UniqueHeader, Rows: rows}
}

// Expanded renders one row per book per episode it appears in.
func Expanded(books []*catalog.Book) Table {
	rows := []string{}
	for _, b := range books {
		for _, ep := range b.Episodes {
			rows = append(rows, strings.Join([]string{
				ep.Number,
				Quote(ep.Title),
				ep.Date,
				Quote(b.ASIN),
				Quote(b.Title),
				Quote(b.Link),
				Quote(ep.URL),
			}, ","))
		}
	}
	return Table{Header: ExpandedHeader, Rows: rows}
}

// Raw renders occurrences without deduplication. When no occurrence carries
// episode provenance the rows are numbered instead.
func Raw(occurrences []catalog.Occurrence) Table {
	withEpisode := false
	for _, occ := range occurrences {
		if occ.Episode != nil {
			withEpisode = true
			break
		}
	}

	rows := make([]string, 0, len(occurrences))
	if !withEpisode {
		for i, occ := range occurrences {
			rows = append(rows, strings.Join([]string{strconv.Itoa(i + 1), Quote(occ.Title), Quote(occ.Link)}, ","))
		}
		return Table{Header: RawStandardHeader, Rows: rows}
	}

	for _, occ := range occurrences {
		var ep catalog.EpisodeRef
		if occ.Episode != nil {
			ep = *occ.Episode
		}
		rows = append(rows, strings.Join([]string{
			ep.Number,
			Quote(ep.Title),
			ep.Date,
			Quote(occ.Title),
			Quote(occ.Link),
			Quote(ep.URL),
		}, ","))
	}
	return Table{Header: RawEpisodeHeader, Rows: rows}
}

// Report flags books whose data is likely incomplete.
type Report struct {
	Stats         catalog.Stats `json:"stats"`
	GenericTitles []string      `json:"generic_titles"`
	UnresolvedIDs []string      `json:"unresolved_links"`
	MostCited     []string      `json:"most_cited"`
}

const mostCitedLimit = 10

func Analyze(res catalog.Result) Report {
	generic := []string{}
	for _, b := range res.Books {
		if catalog.IsGenericTitle(b.Title) {
			generic = append(generic, b.ASIN)
		}
	}

	unresolved := []string{}
	seen := map[string]struct{}{}
	for _, occ := range res.WithoutID {
		if _, ok := seen[occ.Link]; ok {
			continue
		}
		seen[occ.Link] = struct{}{}
		unresolved = append(unresolved, occ.Link)
	}

	cited := make([]*catalog.Book, len(res.Books))
	copy(cited, res.Books)
	sort.SliceStable(cited, func(i, j int) bool {
		return len(cited[i].Episodes) > len(cited[j].Episodes)
	})
	mostCited := []string{}
	for _, b := range cited {
		if len(mostCited) == mostCitedLimit || len(b.Episodes) < 2 {
			break
		}
		mostCited = append(mostCited, b.ASIN)
	}

	sort.Strings(generic)
	sort.Strings(unresolved)

	return Report{
		Stats:         res.Stats,
		GenericTitles: generic,
		UnresolvedIDs: unresolved,
		MostCited:     mostCited,
	}
}
