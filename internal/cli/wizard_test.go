package cli

import (
	"testing"

	"bookscrape/internal/app"
	"bookscrape/internal/config"
)

func TestWizardState_Defaults(t *testing.T) {
	s := newWizardState("", config.Config{})
	if s.path != config.DefaultConfigPath() {
		t.Fatalf("unexpected default path %q", s.path)
	}
	cfg, err := s.config()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SitemapURL != app.DefaultSitemapURL || cfg.BatchSize != app.DefaultBatchSize || cfg.DelaySeconds != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Headless == nil || !*cfg.Headless {
		t.Fatalf("expected headless default")
	}
	if cfg.EnrichDelaySeconds != 3 || cfg.EnrichDomain != "amazon.in" {
		t.Fatalf("unexpected enrichment defaults: %+v", cfg)
	}
}

func TestWizardState_PrefillsExisting(t *testing.T) {
	headless := false
	existing := config.Config{
		SitemapURL:   "https://example.com/sitemap.xml",
		BatchSize:    25,
		DelaySeconds: 1.5,
		EnrichTitles: true,
		EnrichMode:   "dynamic",
		Headless:     &headless,
		LogFormat:    "json",
	}
	s := newWizardState("my.json", existing)
	if s.delayStr != "1.5" || s.batchSizeStr != "25" {
		t.Fatalf("unexpected prefill: %+v", s)
	}
	cfg, err := s.config()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SitemapURL != existing.SitemapURL || !cfg.EnrichTitles || cfg.EnrichMode != "dynamic" || *cfg.Headless || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestWizardState_InvalidNumbers(t *testing.T) {
	s := newWizardState("x.json", config.Config{})
	s.batchSizeStr = "0"
	if _, err := s.config(); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	s.batchSizeStr = "10"
	s.delayStr = "-1"
	if _, err := s.config(); err == nil {
		t.Fatalf("expected error for negative delay")
	}
}

func TestValidators(t *testing.T) {
	if err := validateIntString(1, 10)("11"); err == nil {
		t.Fatalf("expected range error")
	}
	if err := validateIntString(1, 10)("x"); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := validateFloatString(0, 5)("2.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateConfigPath(" "); err == nil {
		t.Fatalf("expected empty path error")
	}
	if err := validateConfigPath("configs/a?.json"); err == nil {
		t.Fatalf("expected invalid characters error")
	}
	if got := ensureJSONExtension("configs/run"); got != "configs/run.json" {
		t.Fatalf("unexpected path %q", got)
	}
}
