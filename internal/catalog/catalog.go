package catalog

import "strconv"

// Episode is derived once from a sitemap URL and never modified afterwards.
type Episode struct {
	URL    string `json:"url"`
	Year   string `json:"year"`
	Month  string `json:"month"`
	Day    string `json:"day"`
	Number string `json:"episode_num"`
	Title  string `json:"title"`
	Date   string `json:"date"`
}

// NumberInt returns the numeric episode number, or 0 when it is not a number.
func (e Episode) NumberInt() int {
	n, err := strconv.Atoi(e.Number)
	if err != nil {
		return 0
	}
	return n
}

func (e Episode) Ref() EpisodeRef {
	return EpisodeRef{
		Number: e.Number,
		Title:  e.Title,
		Date:   e.Date,
		URL:    e.URL,
	}
}

// EpisodeRef is the provenance attached to an occurrence or a merged book.
type EpisodeRef struct {
	Number string `json:"episode_num"`
	Title  string `json:"episode_title"`
	Date   string `json:"episode_date"`
	URL    string `json:"episode_url"`
}

// Occurrence is one sighting of a product link on one page.
type Occurrence struct {
	Title   string      `json:"title"`
	Link    string      `json:"link"`
	Episode *EpisodeRef `json:"episode,omitempty"`
}

// Book is the merged record for one ASIN across every episode that links it.
type Book struct {
	ASIN     string       `json:"asin"`
	Title    string       `json:"title"`
	Link     string       `json:"link"`
	Episodes []EpisodeRef `json:"episodes"`
}

// EpisodeNumbers lists the non-empty episode numbers in encounter order.
func (b *Book) EpisodeNumbers() []string {
	nums := make([]string, 0, len(b.Episodes))
	for _, ep := range b.Episodes {
		if ep.Number == "" {
			continue
		}
		nums = append(nums, ep.Number)
	}
	return nums
}
