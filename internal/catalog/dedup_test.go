package catalog_test

import (
	"testing"

	"bookscrape/internal/catalog"

	"github.com/stretchr/testify/require"
)

func ep(num string) *catalog.EpisodeRef {
	return &catalog.EpisodeRef{
		Number: num,
		Title:  "Episode " + num,
		Date:   "2024-01-0" + num,
		URL:    "https://seenunseen.in/episodes/2024/1/" + num + "/episode-" + num + "-x/",
	}
}

func TestDeduplicate_MergesByASIN(t *testing.T) {
	occs := []catalog.Occurrence{
		{Title: "Amazon Book Link", Link: "https://www.amazon.in/dp/B0ABCDEFGH", Episode: ep("1")},
		{Title: "Sapiens", Link: "https://www.amazon.in/Sapiens/dp/B0ABCDEFGH?tag=z", Episode: ep("2")},
		{Title: "Poor Economics", Link: "https://www.amazon.com/gp/product/1610390938", Episode: ep("2")},
		{Title: "Short link", Link: "https://amzn.in/XYZ1234567", Episode: ep("3")},
		{Title: "Short link", Link: "https://amzn.in/XYZ1234567", Episode: ep("4")},
	}

	res := catalog.Deduplicate(occs)

	require.Len(t, res.Books, 2)
	require.Equal(t, "B0ABCDEFGH", res.Books[0].ASIN)
	require.Equal(t, "Sapiens", res.Books[0].Title)
	require.Equal(t, "https://www.amazon.in/dp/B0ABCDEFGH", res.Books[0].Link)
	require.Equal(t, []string{"1", "2"}, res.Books[0].EpisodeNumbers())
	require.Equal(t, "1610390938", res.Books[1].ASIN)

	// Identical links without an ASIN stay separate.
	require.Len(t, res.WithoutID, 2)
	require.Equal(t, "4", res.WithoutID[1].Episode.Number)

	require.Equal(t, catalog.Stats{Total: 5, Unique: 2, WithoutID: 2, DuplicatesRemoved: 1}, res.Stats)
}

func TestDeduplicate_TitleUpgradeIsOneWay(t *testing.T) {
	ix := catalog.NewIndex()
	link := "https://www.amazon.in/dp/B0ABCDEFGH"

	ix.Add(catalog.Occurrence{Title: "Sapiens", Link: link, Episode: ep("1")})
	ix.Add(catalog.Occurrence{Title: "Buy here", Link: link, Episode: ep("2")})
	ix.Add(catalog.Occurrence{Title: "Sapiens: A Brief History", Link: link, Episode: ep("3")})

	book, ok := ix.Get("B0ABCDEFGH")
	require.True(t, ok)
	require.Equal(t, "Sapiens", book.Title)
	require.Len(t, book.Episodes, 3)
}

func TestDeduplicate_FeedingTwiceDoublesEpisodesOnly(t *testing.T) {
	occs := []catalog.Occurrence{
		{Title: "1", Link: "https://www.amazon.in/dp/B0ABCDEFGH", Episode: ep("1")},
		{Title: "Sapiens", Link: "https://www.amazon.in/dp/B0ABCDEFGH", Episode: ep("2")},
		{Title: "Poor Economics", Link: "https://www.amazon.in/dp/1610390938", Episode: ep("2")},
		{Title: "click here", Link: "https://www.amazon.in/dp/1610390938", Episode: ep("3")},
	}

	once := catalog.Deduplicate(occs)
	twice := catalog.Deduplicate(append(append([]catalog.Occurrence{}, occs...), occs...))

	require.Len(t, twice.Books, len(once.Books))
	for i := range once.Books {
		require.Equal(t, once.Books[i].ASIN, twice.Books[i].ASIN)
		require.Equal(t, once.Books[i].Title, twice.Books[i].Title)
		require.Len(t, twice.Books[i].Episodes, 2*len(once.Books[i].Episodes))
	}
	require.Equal(t, "Sapiens", twice.Books[0].Title)
}

func TestDeduplicate_MissingProvenance(t *testing.T) {
	res := catalog.Deduplicate([]catalog.Occurrence{
		{Title: "Sapiens", Link: "https://www.amazon.in/dp/B0ABCDEFGH"},
	})
	require.Len(t, res.Books, 1)
	require.Len(t, res.Books[0].Episodes, 1)
	require.Empty(t, res.Books[0].EpisodeNumbers())
}

func TestDeduplicate_Empty(t *testing.T) {
	res := catalog.Deduplicate(nil)
	require.Empty(t, res.Books)
	require.Empty(t, res.WithoutID)
	require.Equal(t, catalog.Stats{}, res.Stats)
}
