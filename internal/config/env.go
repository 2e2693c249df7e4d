package config

import (
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const EnvPrefix = "BOOKSCRAPE_"

type envSetter func(cfg *Config, value string) error

var envVars = []struct {
	name string
	set  envSetter
}{
	{"SITEMAP_URL", func(c *Config, v string) error { c.SitemapURL = v; return nil }},
	{"OUTPUT_DIR", func(c *Config, v string) error { c.OutputDir = v; return nil }},
	{"BASENAME", func(c *Config, v string) error { c.Basename = v; return nil }},
	{"TIMEOUT_SECONDS", intSetter(func(c *Config, n int) { c.TimeoutSeconds = n })},
	{"USER_AGENT", func(c *Config, v string) error { c.UserAgent = v; return nil }},
	{"START_INDEX", intSetter(func(c *Config, n int) { c.StartIndex = n })},
	{"BATCH_SIZE", intSetter(func(c *Config, n int) { c.BatchSize = n })},
	{"DELAY_SECONDS", floatSetter(func(c *Config, f float64) { c.DelaySeconds = f })},
	{"ENRICH_TITLES", boolSetter(func(c *Config, b bool) { c.EnrichTitles = b })},
	{"ENRICH_MODE", func(c *Config, v string) error { c.EnrichMode = v; return nil }},
	{"ENRICH_DOMAIN", func(c *Config, v string) error { c.EnrichDomain = v; return nil }},
	{"ENRICH_DELAY_SECONDS", floatSetter(func(c *Config, f float64) { c.EnrichDelaySeconds = f })},
	{"ENRICH_TIMEOUT_SECONDS", intSetter(func(c *Config, n int) { c.EnrichTimeoutSeconds = n })},
	{"HEADLESS", boolSetter(func(c *Config, b bool) { c.Headless = &b })},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.LogFormat = v; return nil }},
}

func intSetter(set func(*Config, int)) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(c, n)
		return nil
	}
}

func floatSetter(set func(*Config, float64)) envSetter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		set(c, f)
		return nil
	}
}

func boolSetter(set func(*Config, bool)) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		set(c, b)
		return nil
	}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "load %s", file)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with BOOKSCRAPE_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, ev := range envVars {
		value, ok := lookup(EnvPrefix + ev.name)
		if !ok || value == "" {
			continue
		}
		if err := ev.set(cfg, value); err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, ev.name)
		}
	}
	return nil
}
