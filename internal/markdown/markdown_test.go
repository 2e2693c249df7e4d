package markdown_test

import (
	"strings"
	"testing"

	"bookscrape/internal/markdown"
)

func TestBooksTable(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.BooksTable([]markdown.Row{
		{Title: "Sapiens", Link: "https://www.amazon.in/dp/B0ABCDEFGH"},
		{Title: "Pipes | and [brackets]", Link: "https://amzn.in/XYZ1234567"},
		{Title: "Tom & Jerry <3", Link: "https://a.co/d/x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"| # | Book Title | Amazon Link |",
		"| --- | --- | --- |",
		"| 1 | Sapiens | https://www.amazon.in/dp/B0ABCDEFGH |",
		`| 2 | Pipes \| and \[brackets\] | https://amzn.in/XYZ1234567 |`,
		"| 3 | Tom & Jerry <3 | https://a.co/d/x |",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("expected output to contain %q, got:\n%s", line, out)
		}
	}
	if strings.Count(out, "\n") != len(want) {
		t.Errorf("expected %d lines, got:\n%s", len(want), out)
	}
}

func TestBooksTable_Empty(t *testing.T) {
	out, err := markdown.NewConverter().BooksTable(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
