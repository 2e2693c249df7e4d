package output

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	DefaultDir    = "."
	DefaultPrefix = "seenunseen_books"

	timestampLayout = "20060102_150405"
)

// Basename returns "<prefix>_<YYYYmmdd_HHMMSS>" for the run start time.
func Basename(prefix string, start time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "_" + start.Format(timestampLayout)
}

// Files are the paths a run writes to, all derived from one basename.
type Files struct {
	Unique   string `json:"unique_csv"`
	Expanded string `json:"expanded_csv"`
	Raw      string `json:"raw_csv"`
	Markdown string `json:"markdown"`
	Summary  string `json:"summary_json"`
}

func FilesFor(dir, basename string) Files {
	if dir == "" {
		dir = DefaultDir
	}
	base := filepath.Join(dir, basename)
	return Files{
		Unique:   base + "_unique.csv",
		Expanded: base + "_expanded.csv",
		Raw:      base + ".csv",
		Markdown: base + ".md",
		Summary:  base + "_summary.json",
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create output dir for %s", path)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return WriteText(path, string(data)+"\n")
}

func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
