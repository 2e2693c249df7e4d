package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultConfigDir  = "configs"
	DefaultConfigFile = "bookscrape.json"
)

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, DefaultConfigFile)
}

func SearchDirs() []string {
	dirs := []string{".", DefaultConfigDir}
	if home, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "bookscrape"))
	}
	return uniqueDirs(dirs)
}

// Find returns the first config file present in SearchDirs.
func Find() (string, bool) {
	for _, dir := range SearchDirs() {
		path := filepath.Join(dir, DefaultConfigFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func dirOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

func uniqueDirs(dirs []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		normalized := strings.ToLower(filepath.Clean(trimmed))
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
