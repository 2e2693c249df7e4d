package enrich_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookscrape/internal/catalog"
	"bookscrape/internal/enrich"

	"github.com/stretchr/testify/require"
)

func TestParseProductTitle(t *testing.T) {
	type Test struct {
		description string
		html        string
		title       string
		ok          bool
	}

	tests := []Test{
		{
			description: "should read productTitle span",
			html:        `<html><body><span id="productTitle">  Sapiens:&nbsp;A Brief
				History of Humankind </span></body></html>`,
			title: "Sapiens: A Brief History of Humankind",
			ok:    true,
		},
		{
			description: "should read product-title heading",
			html:        `<h1 class="a-size-large product-title-word-break">Poor Economics</h1>`,
			title:       "Poor Economics",
			ok:          true,
		},
		{
			description: "should fall back to json fragment",
			html:        `<script>var data = {"title":"The Argumentative Indian &amp; Other Essays"};</script>`,
			title:       "The Argumentative Indian & Other Essays",
			ok:          true,
		},
		{
			description: "should reject short titles",
			html:        `<span id="productTitle">Book</span>`,
			ok:          false,
		},
		{
			description: "should fail on bot wall",
			html:        `<html><body>Enter the characters you see below</body></html>`,
			ok:          false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			title, ok := enrich.ParseProductTitle(tc.html)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.title, title)
		})
	}
}

func TestFetchTitle(t *testing.T) {
	var gotPath, gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`<span id="productTitle">Sapiens</span>`))
	}))
	defer srv.Close()

	e := enrich.New(enrich.Options{BaseURL: srv.URL})
	title, err := e.FetchTitle(context.Background(), "B0ABCDEFGH")
	require.NoError(t, err)
	require.Equal(t, "Sapiens", title)
	require.Equal(t, "/dp/B0ABCDEFGH", gotPath)
	require.Contains(t, gotUA, "Chrome/120")
	require.True(t, strings.HasPrefix(gotAccept, "text/html"))
}

func TestFetchTitle_NoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	_, err := enrich.New(enrich.Options{BaseURL: srv.URL}).FetchTitle(context.Background(), "B0ABCDEFGH")
	require.True(t, errors.Is(err, enrich.ErrNoTitle), "got %v", err)
}

func TestProductURL_DefaultDomain(t *testing.T) {
	require.Equal(t, "https://www.amazon.in/dp/B0ABCDEFGH", enrich.New(enrich.Options{}).ProductURL("B0ABCDEFGH"))
	require.Equal(t, "https://www.amazon.com/dp/X", enrich.New(enrich.Options{Domain: "amazon.com"}).ProductURL("X"))
}

func TestFixGenericTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dp/AAAAAAAAAA":
			_, _ = w.Write([]byte(`<span id="productTitle">The Psychology of Money</span>`))
		default:
			http.Error(w, "blocked", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	books := []*catalog.Book{
		{ASIN: "AAAAAAAAAA", Title: "Amazon Book Link"},
		{ASIN: "BBBBBBBBBB", Title: "Sapiens"},
		{ASIN: "CCCCCCCCCC", Title: "here"},
	}

	summary, err := enrich.New(enrich.Options{BaseURL: srv.URL}).FixGenericTitles(context.Background(), books)
	require.NoError(t, err)
	require.Equal(t, enrich.Summary{Candidates: 2, Fixed: 1, Failed: 1}, summary)
	require.Equal(t, "The Psychology of Money", books[0].Title)
	require.Equal(t, "Sapiens", books[1].Title)
	require.Equal(t, "here", books[2].Title)
}
