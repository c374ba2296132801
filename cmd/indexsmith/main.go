package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/indexsmith/internal/config"
	"github.com/amosWeiskopf/indexsmith/internal/logging"
	"github.com/amosWeiskopf/indexsmith/pkg/reporter"
	"github.com/amosWeiskopf/indexsmith/pkg/shell"
	"github.com/amosWeiskopf/indexsmith/pkg/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "indexsmith",
	Short: "IndexSmith - crawl a website and search it by word",
	Long: `IndexSmith crawls every page of a single website, builds an inverted
index of the words on them and answers word lookups and ranked searches,
either from an interactive shell or one command at a time.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	RunE:         runShell,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell (default)",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [URL]",
	Short: "Crawl a website, index it and save the index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if cmd.Flags().Changed("max-pages") {
			a.cfg.Crawler.MaxPages, _ = cmd.Flags().GetInt("max-pages")
		}
		if cmd.Flags().Changed("delay") {
			a.cfg.Crawler.CrawlDelay, _ = cmd.Flags().GetDuration("delay")
		}
		if err := a.cfg.Validate(); err != nil {
			return err
		}
		// a one-shot crawl always replaces the saved index
		a.cfg.Shell.ConfirmOverwrite = false

		var url string
		if len(args) == 1 {
			url = args[0]
		}
		_, err = a.shell.Execute(cmd.Context(), shell.CrawlCommand{URL: url})
		return err
	},
}

var printCmd = &cobra.Command{
	Use:   "print WORD",
	Short: "Show every page of the saved index containing WORD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, shell.PrintCommand{Word: args[0]})
	},
}

var searchCmd = &cobra.Command{
	Use:     "search TERM...",
	Aliases: []string{"find"},
	Short:   "Rank the pages of the saved index by the given words",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, shell.SearchCommand{Terms: args})
	},
}

func init() {
	crawlCmd.Flags().Int("max-pages", 0, "Stop after visiting this many pages (0 = no limit)")
	crawlCmd.Flags().Duration("delay", 0, "Delay between requests")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(searchCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format (text, json, markdown)")
}

// app bundles what every command needs
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     store.Store
	shell     *shell.Shell
	logCloser io.Closer
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	outFormat, err := reporter.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	logger.Debug().Str("store", st.Location()).Str("storage", cfg.Storage.Type).Msg("Opened store")

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		shell:     shell.New(cfg, st, cmd.InOrStdin(), cmd.OutOrStdout(), outFormat, logger),
		logCloser: logCloser,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close store")
	}
	a.logCloser.Close()
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Storage.Autoload {
		if err := a.shell.Autoload(); err != nil {
			a.logger.Warn().Err(err).Str("store", a.store.Location()).Msg("Could not load saved index")
		}
	}

	ctx := cmd.Context()
	stopNotice := context.AfterFunc(ctx, func() {
		a.logger.Info().Msg("Interrupted, press Enter to leave the shell")
	})
	defer stopNotice()

	err = a.shell.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runQuery(cmd *cobra.Command, c shell.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.shell.Autoload(); err != nil {
		return fmt.Errorf("load index from %s: %w", a.store.Location(), err)
	}
	if a.shell.Index().Len() == 0 {
		a.logger.Warn().Str("store", a.store.Location()).Msg("Index is empty, run 'indexsmith crawl' first")
	}
	_, err = a.shell.Execute(cmd.Context(), c)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
