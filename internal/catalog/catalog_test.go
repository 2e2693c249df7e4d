package catalog_test

import (
	"testing"

	"bookscrape/internal/catalog"

	"github.com/stretchr/testify/require"
)

func TestExtractASIN(t *testing.T) {
	type Test struct {
		description string
		url         string
		asin        string
		ok          bool
	}

	tests := []Test{
		{
			description: "should read /dp/ path",
			url:         "https://www.amazon.in/Sapiens-Brief-History-Humankind/dp/B0ABCDEFGH?tag=x",
			asin:        "B0ABCDEFGH",
			ok:          true,
		},
		{
			description: "should read /gp/product/ path",
			url:         "https://www.amazon.com/gp/product/0143127799/ref=as_li",
			asin:        "0143127799",
			ok:          true,
		},
		{
			description: "should read /product/ path",
			url:         "https://amazon.in/exec/obidos/product/8129135728",
			asin:        "8129135728",
			ok:          true,
		},
		{
			description: "should read bare domain path with trailing slash",
			url:         "https://www.amazon.in/B00ICN066A/",
			asin:        "B00ICN066A",
			ok:          true,
		},
		{
			description: "should prefer /dp/ over bare domain form",
			url:         "https://www.amazon.in/AAAAAAAAAA/dp/BBBBBBBBBB",
			asin:        "BBBBBBBBBB",
			ok:          true,
		},
		{
			description: "should not resolve short links",
			url:         "https://amzn.in/XYZ1234567",
			ok:          false,
		},
		{
			description: "should not accept lowercase identifiers",
			url:         "https://www.amazon.in/dp/b0abcdefgh",
			ok:          false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			asin, ok := catalog.ExtractASIN(tc.url)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.asin, asin)
		})
	}
}

func TestIsGenericTitle(t *testing.T) {
	generic := []string{
		"1",
		"42",
		"here",
		"Buy Here",
		"  CLICK   here ",
		"Amazon Book Link",
		"Amazon Link to Book",
		"the amazon link",
		"on Amazon",
		"Book",
		"abcd",
		"",
	}
	for _, title := range generic {
		require.True(t, catalog.IsGenericTitle(title), "expected %q to be generic", title)
	}

	specific := []string{
		"The Psychology of Money",
		"Sapiens",
		"Amazon Unbound",
		"Here Comes Everybody",
	}
	for _, title := range specific {
		require.False(t, catalog.IsGenericTitle(title), "expected %q to be specific", title)
	}
}

func TestEpisodeNumberInt(t *testing.T) {
	require.Equal(t, 10, catalog.Episode{Number: "10"}.NumberInt())
	require.Equal(t, 0, catalog.Episode{Number: "x"}.NumberInt())
}

func TestBookEpisodeNumbersSkipsMissing(t *testing.T) {
	book := &catalog.Book{Episodes: []catalog.EpisodeRef{{Number: "3"}, {}, {Number: "9"}}}
	require.Equal(t, []string{"3", "9"}, book.EpisodeNumbers())
}
