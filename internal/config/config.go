package config

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Config mirrors the JSON config file. Zero values mean "use the default".
type Config struct {
	SitemapURL           string  `json:"sitemap_url,omitempty"`
	OutputDir            string  `json:"output_dir,omitempty"`
	Basename             string  `json:"basename,omitempty"`
	TimeoutSeconds       int     `json:"timeout_seconds,omitempty"`
	UserAgent            string  `json:"user_agent,omitempty"`
	StartIndex           int     `json:"start_index,omitempty"`
	BatchSize            int     `json:"batch_size,omitempty"`
	DelaySeconds         float64 `json:"delay_seconds,omitempty"`
	EnrichTitles         bool    `json:"enrich_titles,omitempty"`
	EnrichMode           string  `json:"enrich_mode,omitempty"`
	EnrichDomain         string  `json:"enrich_domain,omitempty"`
	EnrichDelaySeconds   float64 `json:"enrich_delay_seconds,omitempty"`
	EnrichTimeoutSeconds int     `json:"enrich_timeout_seconds,omitempty"`
	Headless             *bool   `json:"headless,omitempty"`
	LogLevel             string  `json:"log_level,omitempty"`
	LogFormat            string  `json:"log_format,omitempty"`
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Marshal(cfg Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// Save writes cfg as indented JSON, creating the parent directory.
func Save(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dirOf(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	return errors.Wrap(os.WriteFile(path, append(data, '\n'), 0644), "write config")
}
