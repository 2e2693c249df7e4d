package output_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookscrape/internal/output"
)

func TestBasename(t *testing.T) {
	start := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)
	if got := output.Basename("", start); got != "seenunseen_books_20240307_090503" {
		t.Fatalf("unexpected basename: %s", got)
	}
	if got := output.Basename("books", start); got != "books_20240307_090503" {
		t.Fatalf("unexpected basename: %s", got)
	}
}

func TestFilesFor(t *testing.T) {
	files := output.FilesFor("out", "books_20240307_090503")
	want := output.Files{
		Unique:   filepath.Join("out", "books_20240307_090503_unique.csv"),
		Expanded: filepath.Join("out", "books_20240307_090503_expanded.csv"),
		Raw:      filepath.Join("out", "books_20240307_090503.csv"),
		Markdown: filepath.Join("out", "books_20240307_090503.md"),
		Summary:  filepath.Join("out", "books_20240307_090503_summary.json"),
	}
	if files != want {
		t.Fatalf("unexpected files: %+v", files)
	}
	if got := output.FilesFor("", "b").Unique; got != "b_unique.csv" {
		t.Fatalf("expected current dir by default, got %s", got)
	}
}

func TestWriteTextCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "x.csv")
	if err := output.WriteText(path, "a,b\n"); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	type payload struct {
		Unique int      `json:"unique"`
		Links  []string `json:"links"`
	}
	path := filepath.Join(t.TempDir(), "summary.json")
	in := payload{Unique: 2, Links: []string{"https://amzn.to/x"}}
	if err := output.WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	var out payload
	if err := output.ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if out.Unique != 2 || len(out.Links) != 1 || out.Links[0] != "https://amzn.to/x" {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestReadJSON_Missing(t *testing.T) {
	var v map[string]any
	if err := output.ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &v); err == nil {
		t.Fatal("expected error for missing file")
	}
}
