package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/plexlint/internal/catalog"
	"github.com/jfmyers9/plexlint/internal/config"
	"github.com/jfmyers9/plexlint/internal/history"
	"github.com/jfmyers9/plexlint/internal/linter"
	"github.com/jfmyers9/plexlint/internal/report"
	"github.com/jfmyers9/plexlint/internal/tags"
	"github.com/jfmyers9/plexlint/pkg/plex"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	configPath string
	logFile    string
	logLevel   string
)

// Lint flags
var (
	lintLocal     bool
	lintYes       bool
	lintFormat    string
	lintNoHistory bool
)

// rootCmd lints the configured libraries when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "plexlint",
	Short: "Find cataloging problems in a Plex music library",
	Long: `plexlint audits the music libraries on a Plex Media Server.

For every library listed in the config file it reports albums that share a
title, artists that appear more than once, and tracks without titles.

With --local it also reads the tags of every track's file and reports tracks
whose artist tags disagree with the album artist Plex has recorded. This
needs the media files to be readable at the paths Plex reports, so it is
normally run on the server itself.

Nothing on the server or on disk is ever modified.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLint,
}

// errDeclined is returned when the operator does not confirm the library list
var errDeclined = errors.New("aborted")

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errDeclined) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("plexlint (version {{.Version}})\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/plexlint/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path, or - for stderr (default: ~/.local/share/plexlint/plexlint.log)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVarP(&lintLocal, "local", "l", false, "Check file tags for mismatched artists (requires access to media files)")
	rootCmd.Flags().BoolVarP(&lintYes, "yes", "y", false, "Skip the library confirmation prompt")
	rootCmd.Flags().StringVar(&lintFormat, "format", report.FormatText, "Output format (text, json)")
	rootCmd.Flags().BoolVar(&lintNoHistory, "no-history", false, "Do not record this run in the history database")
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logPath, closeLog := setupLogger(logFile, logLevel)
	defer closeLog()

	logger.Info().
		Str("version", version).
		Bool("local", lintLocal).
		Msg("Starting plexlint")

	renderer, err := report.NewRenderer(cmd.OutOrStdout(), lintFormat, logPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Login and confirmation prompts read from the same buffer.
	in := bufferedInput(cmd.InOrStdin())

	cat, err := connect(ctx, in, cmd.ErrOrStderr(), cfg, logger)
	if err != nil {
		return err
	}
	status(cmd, "Server login successful")

	if !lintYes {
		ok, err := confirmLibraries(in, cmd.ErrOrStderr(), cfg)
		if err != nil {
			return err
		}
		if !ok {
			return errDeclined
		}
	}

	var reader tags.Reader
	if lintLocal {
		reader, err = tags.NewReader(cfg.Local.TagReader)
		if err != nil {
			return err
		}
	}

	var store *history.Store
	if cfg.History.Enabled && !lintNoHistory {
		store, err = openHistory(cfg)
		if err != nil {
			// Linting works without history.
			logger.Warn().Err(err).Msg("History disabled for this run")
		} else {
			defer store.Close()
		}
	}

	lintCfg := linter.Config{Local: lintLocal}
	if lintFormat == report.FormatText {
		lintCfg.NewProgress = progressFactory(cmd.ErrOrStderr())
	}

	l, err := linter.New(lintCfg, cat, reader, renderer, store, logger)
	if err != nil {
		return err
	}

	status(cmd, "Starting to lint...")
	if err := l.Run(ctx, cfg.Content.Libraries); err != nil {
		return err
	}
	status(cmd, "Done!")
	return nil
}

// connect returns a catalog for the configured server, running the login
// flow first when no credentials are stored.
func connect(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, logger zerolog.Logger) (*catalog.PlexCatalog, error) {
	if cfg.Server.ClientID == "" {
		cfg.Server.ClientID = newClientID()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save config: %w", err)
		}
	}

	if !cfg.HasCredentials() {
		return login(ctx, in, out, cfg, logger)
	}

	cat, err := catalog.Connect(ctx, plexConfig(cfg), logger)
	if errors.Is(err, plex.ErrUnauthorized) {
		logger.Error().Err(err).Str("url", cfg.Server.URL).Msg("Unauthorized connecting to server")
		return nil, fmt.Errorf("unauthorized connecting to %s, run 'plexlint login' to refresh the token: %w", cfg.Server.URL, err)
	}
	if err != nil {
		logger.Error().Err(err).Str("url", cfg.Server.URL).Msg("Error connecting to server")
		return nil, err
	}
	return cat, nil
}

// plexAccountURL overrides the plex.tv endpoint; empty uses the default
var plexAccountURL string

func plexConfig(cfg *config.Config) plex.Config {
	return plex.Config{
		BaseURL:          cfg.Server.URL,
		Token:            cfg.Server.Token,
		ClientIdentifier: cfg.Server.ClientID,
		AccountURL:       plexAccountURL,
	}
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return history.Open(path)
}

// status prints progress messages that are not part of the report. They go
// to stderr when the report is JSON so stdout stays parseable.
func status(cmd *cobra.Command, msg string) {
	if lintFormat == report.FormatJSON {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}
