package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookscrape/internal/fetch"
)

func TestFetch_StaticTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fetch.Fetch(ctx, fetch.Options{URL: srv.URL, Mode: fetch.ModeStatic, Timeout: 10 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetch_StaticSendsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	res, err := fetch.Fetch(context.Background(), fetch.Options{
		URL:       srv.URL,
		Timeout:   time.Second,
		UserAgent: "bookscrape-test",
		Headers:   map[string]string{"Accept-Language": "en-US,en;q=0.5"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HTML != "<html>ok</html>" || res.FinalMode != fetch.ModeStatic {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotUA != "bookscrape-test" {
		t.Fatalf("expected user agent, got %q", gotUA)
	}
	if gotLang != "en-US,en;q=0.5" {
		t.Fatalf("expected accept-language, got %q", gotLang)
	}
}

func TestFetch_StaticStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fetch.Fetch(context.Background(), fetch.Options{URL: srv.URL, Timeout: time.Second})
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", statusErr.Code)
	}
}

func TestFetch_RequiresURL(t *testing.T) {
	if _, err := fetch.Fetch(context.Background(), fetch.Options{}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestFetch_UnknownMode(t *testing.T) {
	if _, err := fetch.Fetch(context.Background(), fetch.Options{URL: "http://x", Mode: "sideways"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]fetch.Mode{
		"":        fetch.ModeStatic,
		"static":  fetch.ModeStatic,
		"Dynamic": fetch.ModeDynamic,
		" auto ":  fetch.ModeAuto,
	}
	for in, want := range cases {
		got, err := fetch.ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := fetch.ParseMode("browser"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestSleep(t *testing.T) {
	if err := fetch.Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fetch.Sleep(ctx, time.Hour); err == nil {
		t.Fatal("expected canceled context error")
	}
}
