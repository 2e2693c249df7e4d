package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookscrape/internal/app"
	"bookscrape/internal/config"
	"bookscrape/internal/enrich"
	"bookscrape/internal/fetch"
	"bookscrape/internal/output"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
)

type wizardState struct {
	path          string
	sitemapURL    string
	outputDir     string
	basename      string
	timeoutStr    string
	batchSizeStr  string
	delayStr      string
	enrichTitles  bool
	enrichMode    string
	enrichDomain  string
	enrichDelay   string
	headless      bool
	logLevel      string
	logFormat     string
	confirmedSave bool
}

func newWizardState(path string, cfg config.Config) *wizardState {
	s := &wizardState{
		path:          path,
		sitemapURL:    app.DefaultSitemapURL,
		outputDir:     output.DefaultDir,
		basename:      output.DefaultPrefix,
		timeoutStr:    strconv.Itoa(app.DefaultTimeoutSeconds),
		batchSizeStr:  strconv.Itoa(app.DefaultBatchSize),
		delayStr:      formatSeconds(app.DefaultDelay.Seconds()),
		enrichMode:    string(fetch.ModeStatic),
		enrichDomain:  enrich.DefaultDomain,
		enrichDelay:   formatSeconds(enrich.DefaultDelay.Seconds()),
		headless:      true,
		logLevel:      "info",
		logFormat:     "console",
		confirmedSave: true,
	}
	if s.path == "" {
		s.path = config.DefaultConfigPath()
	}
	s.apply(cfg)
	return s
}

// apply pre-fills the form from an existing config.
func (s *wizardState) apply(cfg config.Config) {
	if cfg.SitemapURL != "" {
		s.sitemapURL = cfg.SitemapURL
	}
	if cfg.OutputDir != "" {
		s.outputDir = cfg.OutputDir
	}
	if cfg.Basename != "" {
		s.basename = cfg.Basename
	}
	if cfg.TimeoutSeconds > 0 {
		s.timeoutStr = strconv.Itoa(cfg.TimeoutSeconds)
	}
	if cfg.BatchSize > 0 {
		s.batchSizeStr = strconv.Itoa(cfg.BatchSize)
	}
	if cfg.DelaySeconds > 0 {
		s.delayStr = formatSeconds(cfg.DelaySeconds)
	}
	s.enrichTitles = cfg.EnrichTitles
	if cfg.EnrichMode != "" {
		s.enrichMode = cfg.EnrichMode
	}
	if cfg.EnrichDomain != "" {
		s.enrichDomain = cfg.EnrichDomain
	}
	if cfg.EnrichDelaySeconds > 0 {
		s.enrichDelay = formatSeconds(cfg.EnrichDelaySeconds)
	}
	if cfg.Headless != nil {
		s.headless = *cfg.Headless
	}
	if cfg.LogLevel != "" {
		s.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		s.logFormat = cfg.LogFormat
	}
}

func (s *wizardState) config() (config.Config, error) {
	timeout, err := parsePositiveInt(s.timeoutStr, "timeout must be a positive integer")
	if err != nil {
		return config.Config{}, err
	}
	batchSize, err := parsePositiveInt(s.batchSizeStr, "batch size must be a positive integer")
	if err != nil {
		return config.Config{}, err
	}
	delay, err := parseNonNegativeFloat(s.delayStr, "delay must be a number >= 0")
	if err != nil {
		return config.Config{}, err
	}
	enrichDelay, err := parseNonNegativeFloat(s.enrichDelay, "enrich delay must be a number >= 0")
	if err != nil {
		return config.Config{}, err
	}
	headless := s.headless
	return config.Config{
		SitemapURL:         strings.TrimSpace(s.sitemapURL),
		OutputDir:          strings.TrimSpace(s.outputDir),
		Basename:           strings.TrimSpace(s.basename),
		TimeoutSeconds:     timeout,
		BatchSize:          batchSize,
		DelaySeconds:       delay,
		EnrichTitles:       s.enrichTitles,
		EnrichMode:         s.enrichMode,
		EnrichDomain:       strings.TrimSpace(s.enrichDomain),
		EnrichDelaySeconds: enrichDelay,
		Headless:           &headless,
		LogLevel:           s.logLevel,
		LogFormat:          s.logFormat,
	}, nil
}

func buildWizardForm(s *wizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sitemap URL").Description("Sitemap listing the episode pages.").Value(&s.sitemapURL).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("sitemap url is required")
					}
					return nil
				}),
			huh.NewInput().Title("Batch size").Description("Episodes per run.").Value(&s.batchSizeStr).
				Validate(validateIntString(1, 100000)),
			huh.NewInput().Title("Delay (seconds)").Description("Pause between episode fetches.").Value(&s.delayStr).
				Validate(validateFloatString(0, 600)),
			huh.NewInput().Title("Timeout (seconds)").Value(&s.timeoutStr).
				Validate(validateIntString(1, 3600)),
		).Title("Crawl"),
		huh.NewGroup(
			huh.NewInput().Title("Output dir").Value(&s.outputDir),
			huh.NewInput().Title("File name prefix").Value(&s.basename),
		).Title("Output"),
		huh.NewGroup(
			huh.NewConfirm().Title("Enrich titles").Description("Look up generic titles on the product page?").Value(&s.enrichTitles),
			huh.NewSelect[string]().Title("Product page mode").Value(&s.enrichMode).Options(
				huh.NewOption("static", string(fetch.ModeStatic)),
				huh.NewOption("dynamic", string(fetch.ModeDynamic)),
				huh.NewOption("auto", string(fetch.ModeAuto)),
			),
			huh.NewInput().Title("Amazon domain").Value(&s.enrichDomain),
			huh.NewInput().Title("Delay between product pages (seconds)").Value(&s.enrichDelay).
				Validate(validateFloatString(0, 600)),
			huh.NewConfirm().Title("Headless").Description("Hide the browser window (dynamic mode)?").Value(&s.headless),
		).Title("Title enrichment"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Log level").Value(&s.logLevel).Options(
				huh.NewOptions("debug", "info", "warn", "error")...,
			),
			huh.NewSelect[string]().Title("Log format").Value(&s.logFormat).Options(
				huh.NewOptions("console", "json")...,
			),
		).Title("Logging"),
		huh.NewGroup(
			huh.NewInput().Title("Config path").Value(&s.path).Validate(validateConfigPath),
			huh.NewConfirm().Title("Save config?").Value(&s.confirmedSave),
		).Title("Finish"),
	)
}

// RunConfigWizard asks for every config key, starting from existing, and
// writes the result to path.
func RunConfigWizard(path string, existing config.Config, out io.Writer) error {
	state := newWizardState(path, existing)
	if err := buildWizardForm(state).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return err
	}
	if !state.confirmedSave {
		fmt.Fprintln(out, "Config not saved.")
		return nil
	}
	cfg, err := state.config()
	if err != nil {
		return err
	}
	path = ensureJSONExtension(strings.TrimSpace(state.path))
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func validateConfigPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("path cannot be empty")
	}
	if strings.ContainsAny(s, `*?"<>|`) {
		return errors.New("invalid characters")
	}
	return nil
}

func ensureJSONExtension(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return path
	}
	return path + ".json"
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

func parsePositiveInt(s, errMsg string) (int, error) {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || val <= 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseNonNegativeFloat(s, errMsg string) (float64, error) {
	val, err := parseFloat(s)
	if err != nil || val < 0 {
		return 0, errors.New(errMsg)
	}
	return val, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func validateIntString(minVal, maxVal int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.New("must be an integer")
		}
		if v < minVal || v > maxVal {
			return errors.Errorf("must be between %d and %d", minVal, maxVal)
		}
		return nil
	}
}

func validateFloatString(minVal, maxVal float64) func(string) error {
	return func(s string) error {
		v, err := parseFloat(s)
		if err != nil {
			return errors.New("must be a number")
		}
		if v < minVal || v > maxVal {
			return errors.Errorf("must be between %.2f and %.2f", minVal, maxVal)
		}
		return nil
	}
}
