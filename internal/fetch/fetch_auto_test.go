package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func withFetchers(staticFn func(context.Context, Options) (string, error), dynamicFn func(context.Context, Options) (string, error), fn func()) {
	prevStatic := staticFetch
	prevDynamic := dynamicFetch
	staticFetch = staticFn
	dynamicFetch = dynamicFn
	defer func() {
		staticFetch = prevStatic
		dynamicFetch = prevDynamic
	}()
	fn()
}

func TestFetch_AutoKeepsStatic(t *testing.T) {
	withFetchers(
		func(_ context.Context, _ Options) (string, error) { return `<span id="productTitle">Sapiens</span>`, nil },
		func(_ context.Context, _ Options) (string, error) {
			t.Fatal("dynamic fetch should not run")
			return "", nil
		},
		func() {
			res, err := Fetch(context.Background(), Options{URL: "https://example.com", Mode: ModeAuto})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.FinalMode != ModeStatic || res.SourceInfo != "auto:static" {
				t.Fatalf("expected auto:static, got %+v", res)
			}
		},
	)
}

func TestFetch_AutoFallsBackOnBotWall(t *testing.T) {
	wall := "<html><body><h4>Enter the characters you see below</h4><form action=\"/errors/validateCaptcha\"></form></body></html>"
	withFetchers(
		func(_ context.Context, _ Options) (string, error) { return wall, nil },
		func(_ context.Context, _ Options) (string, error) { return "<html>dynamic</html>", nil },
		func() {
			res, err := Fetch(context.Background(), Options{URL: "https://example.com", Mode: ModeAuto})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.FinalMode != ModeDynamic || res.SourceInfo != "auto:dynamic" {
				t.Fatalf("expected auto:dynamic, got %+v", res)
			}
			if res.HTML != "<html>dynamic</html>" {
				t.Fatalf("unexpected html: %s", res.HTML)
			}
		},
	)
}

func TestFetch_AutoBothFail(t *testing.T) {
	withFetchers(
		func(_ context.Context, _ Options) (string, error) { return "", errors.New("static down") },
		func(_ context.Context, _ Options) (string, error) { return "", errors.New("dynamic down") },
		func() {
			_, err := Fetch(context.Background(), Options{URL: "https://example.com", Mode: ModeAuto})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "static failed") || !strings.Contains(err.Error(), "dynamic down") {
				t.Fatalf("expected combined error, got %v", err)
			}
		},
	)
}

func TestLooksBlocked(t *testing.T) {
	if !looksBlocked("   ") {
		t.Fatal("expected empty body to look blocked")
	}
	if !looksBlocked("<title>Robot Check</title>") {
		t.Fatal("expected robot check page to look blocked")
	}
	if looksBlocked("<h1 class=\"product-title\">Sapiens</h1>") {
		t.Fatal("expected product page to pass")
	}
}
