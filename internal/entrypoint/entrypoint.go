// Package entrypoint wires the bookscrape commands.
package entrypoint

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookscrape/internal/app"
	"bookscrape/internal/cli"
	"bookscrape/internal/config"
	"bookscrape/internal/fetch"
	"bookscrape/internal/log"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
}

// env is swapped in tests.
var env = struct {
	lookup func(string) (string, bool)
	stdout io.Writer
	stderr io.Writer
}{os.LookupEnv, os.Stdout, os.Stderr}

// Execute runs the command line in args (args[0] is the program name) and
// returns the process exit code.
func Execute(args []string) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args[1:])
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code, exitErr.Err
		}
		return 1, err
	}
	return 0, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "bookscrape",
		Short:         "Collect the books linked from podcast episode pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a JSON config file (default: first bookscrape.json in the search dirs)")
	pf.StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "Env files with BOOKSCRAPE_* overrides")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: console|json")

	run := newRunCmd(g)
	// Without a subcommand the root behaves like "run".
	root.Flags().AddFlagSet(run.Flags())
	root.RunE = run.RunE

	root.AddCommand(run, newEpisodeCmd(g), newEnrichCmd(g), newInitConfigCmd(g))
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cli.ExitError{Code: 2, Err: err}
	})
	return root
}

// setup loads the layered config and builds the logger.
func setup(g *globalFlags, fs *pflag.FlagSet) (cli.Layers, zerolog.Logger, error) {
	layers, err := cli.LoadConfig(g.configPath, g.envFiles, env.lookup)
	if err != nil {
		return cli.Layers{}, zerolog.Nop(), err
	}
	if fs.Changed("log-level") {
		layers.Config.LogLevel = g.logLevel
	}
	if fs.Changed("log-format") {
		layers.Config.LogFormat = g.logFormat
	}
	logger, err := log.New(log.Options{
		Level:  layers.Config.LogLevel,
		Format: log.Format(layers.Config.LogFormat),
		Writer: env.stderr,
	})
	if err != nil {
		return cli.Layers{}, zerolog.Nop(), cli.ExitError{Code: 2, Err: err}
	}
	if layers.ConfigPath != "" {
		logger.Debug().Str("path", layers.ConfigPath).Msg("Loaded config")
	}
	return layers, logger, nil
}

func newRunCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl a batch of episodes and write the book reports",
		Args:  cobra.NoArgs,
	}
	flags := cli.BindRunFlags(cmd.Flags())
	cmd.RunE = func(c *cobra.Command, _ []string) error {
		layers, logger, err := setup(g, c.Flags())
		if err != nil {
			return err
		}
		cli.ApplyRunFlags(&layers.Config, c.Flags(), flags)
		opts, err := cli.RunOptions(layers.Config)
		if err != nil {
			return err
		}
		opts.DryRun = flags.DryRun
		opts.Logger = logger
		opts.Stdout = c.OutOrStdout()

		_, err = app.Run(c.Context(), opts)
		return err
	}
	return cmd
}

func newEpisodeCmd(g *globalFlags) *cobra.Command {
	var (
		pageURL  string
		mode     string
		writeCSV bool
		asMD     bool
		outDir   string
		prefix   string
		timeout  int
		headless bool
	)
	cmd := &cobra.Command{
		Use:   "episode",
		Short: "Extract the book links from a single page",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if strings.TrimSpace(pageURL) == "" {
				return cli.ExitError{Code: 2, Err: errors.New("--url is required")}
			}
			layers, logger, err := setup(g, c.Flags())
			if err != nil {
				return err
			}
			fetchMode, err := fetch.ParseMode(strings.ToLower(mode))
			if err != nil {
				return cli.ExitError{Code: 2, Err: err}
			}
			cfg := layers.Config
			if !c.Flags().Changed("output-dir") && cfg.OutputDir != "" {
				outDir = cfg.OutputDir
			}
			if !c.Flags().Changed("basename") && cfg.Basename != "" {
				prefix = cfg.Basename
			}
			if !c.Flags().Changed("timeout") && cfg.TimeoutSeconds > 0 {
				timeout = cfg.TimeoutSeconds
			}
			if !c.Flags().Changed("headless") && cfg.Headless != nil {
				headless = *cfg.Headless
			}

			_, err = app.RunEpisode(c.Context(), app.EpisodeOptions{
				URL:       strings.TrimSpace(pageURL),
				Mode:      fetchMode,
				Headless:  headless,
				Timeout:   time.Duration(timeout) * time.Second,
				UserAgent: cfg.UserAgent,
				WriteCSV:  writeCSV,
				OutputDir: outDir,
				Prefix:    prefix,
				Markdown:  asMD,
				Logger:    logger,
				Stdout:    c.OutOrStdout(),
			})
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&pageURL, "url", "", "Page to extract book links from")
	fs.StringVar(&mode, "mode", string(fetch.ModeStatic), "Fetch mode: static|dynamic|auto")
	fs.BoolVar(&writeCSV, "csv", false, "Write the links to a CSV file")
	fs.BoolVar(&asMD, "markdown", false, "Print a markdown table instead of the console table")
	fs.StringVarP(&outDir, "output-dir", "o", ".", "Directory for written files")
	fs.StringVar(&prefix, "basename", "", "Prefix of written file names")
	fs.IntVar(&timeout, "timeout", app.DefaultTimeoutSeconds, "Timeout in seconds")
	fs.BoolVar(&headless, "headless", true, "Run the browser headless (dynamic mode)")
	return cmd
}

func newEnrichCmd(g *globalFlags) *cobra.Command {
	var (
		asins       []string
		summaryPath string
		product     *cli.ProductFlags
	)
	cmd := &cobra.Command{
		Use:   "enrich [ASIN...]",
		Short: "Look up product titles, or repair the generic titles of a previous run",
		RunE: func(c *cobra.Command, args []string) error {
			asins = append(asins, args...)
			if len(asins) == 0 && summaryPath == "" {
				return cli.ExitError{Code: 2, Err: errors.New("pass --asin or --summary")}
			}
			layers, logger, err := setup(g, c.Flags())
			if err != nil {
				return err
			}
			cli.ApplyProductFlags(&layers.Config, c.Flags(), product)
			pages, err := cli.ProductOptions(layers.Config)
			if err != nil {
				return err
			}
			_, err = app.RunEnrich(c.Context(), app.EnrichOptions{
				ASINs:        asins,
				SummaryPath:  summaryPath,
				ProductPages: pages,
				Logger:       logger,
				Stdout:       c.OutOrStdout(),
			})
			return err
		},
	}
	cmd.Flags().StringSliceVar(&asins, "asin", nil, "ASIN to look up (repeatable)")
	cmd.Flags().StringVar(&summaryPath, "summary", "", "Summary JSON of a previous run to repair in place")
	product = cli.BindProductFlags(cmd.Flags())
	return cmd
}

func newInitConfigCmd(g *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			path := out
			var existing config.Config
			if g.configPath != "" {
				if path == "" {
					path = g.configPath
				}
				if cfg, err := config.Load(g.configPath); err == nil {
					existing = cfg
				}
			}
			return cli.RunConfigWizard(path, existing, c.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&out, "path", "", "Where to write the config (default: "+config.DefaultConfigPath()+")")
	return cmd
}
