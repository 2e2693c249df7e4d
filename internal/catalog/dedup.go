package catalog

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Stats struct {
	Total             int `json:"total"`
	Unique            int `json:"unique"`
	WithoutID         int `json:"without_asin"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

type Result struct {
	Books     []*Book      `json:"books"`
	WithoutID []Occurrence `json:"without_asin"`
	Stats     Stats        `json:"stats"`
}

// Index merges occurrences into books keyed by ASIN, keeping first-seen order.
// It is owned by a single goroutine.
type Index struct {
	books     *orderedmap.OrderedMap[string, *Book]
	withoutID []Occurrence
	total     int
}

func NewIndex() *Index {
	return &Index{books: orderedmap.New[string, *Book]()}
}

// Add merges one occurrence and returns the ASIN it was filed under.
// Occurrences without an ASIN are kept aside unchanged and never merged.
func (ix *Index) Add(occ Occurrence) (string, bool) {
	ix.total++

	asin, ok := ExtractASIN(occ.Link)
	if !ok {
		ix.withoutID = append(ix.withoutID, occ)
		return "", false
	}

	book, seen := ix.books.Get(asin)
	if !seen {
		book = &Book{ASIN: asin, Title: occ.Title, Link: occ.Link}
		ix.books.Set(asin, book)
	}

	var ref EpisodeRef
	if occ.Episode != nil {
		ref = *occ.Episode
	}
	book.Episodes = append(book.Episodes, ref)

	// One-way: a generic title may be replaced, a real one never is.
	if IsGenericTitle(book.Title) && !IsGenericTitle(occ.Title) {
		book.Title = occ.Title
	}
	return asin, true
}

func (ix *Index) Get(asin string) (*Book, bool) {
	return ix.books.Get(asin)
}

func (ix *Index) Books() []*Book {
	books := make([]*Book, 0, ix.books.Len())
	for pair := ix.books.Oldest(); pair != nil; pair = pair.Next() {
		books = append(books, pair.Value)
	}
	return books
}

func (ix *Index) WithoutID() []Occurrence {
	out := make([]Occurrence, len(ix.withoutID))
	copy(out, ix.withoutID)
	return out
}

func (ix *Index) Stats() Stats {
	unique := ix.books.Len()
	return Stats{
		Total:             ix.total,
		Unique:            unique,
		WithoutID:         len(ix.withoutID),
		DuplicatesRemoved: ix.total - unique - len(ix.withoutID),
	}
}

func (ix *Index) Result() Result {
	return Result{
		Books:     ix.Books(),
		WithoutID: ix.WithoutID(),
		Stats:     ix.Stats(),
	}
}

// Deduplicate merges an ordered occurrence stream into a fresh index.
func Deduplicate(occurrences []Occurrence) Result {
	ix := NewIndex()
	for _, occ := range occurrences {
		ix.Add(occ)
	}
	return ix.Result()
}
