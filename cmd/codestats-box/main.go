// Package main is the entry point of codestats-box.
//
// One invocation fetches the user's Code::Stats XP, renders the stats
// card, and republishes it into the configured gist. The gist write is
// idempotent: unchanged content is detected and skipped.
//
// Usage:
//
//	codestats-box                              publish using the environment
//	codestats-box preview <username> <type>    render only, never write
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/codestats-hub/codestats-box/config"
	"github.com/codestats-hub/codestats-box/internal/application/command"
	"github.com/codestats-hub/codestats-box/internal/infrastructure/external/codestats"
	"github.com/codestats-hub/codestats-box/internal/infrastructure/external/gist"
	"github.com/codestats-hub/codestats-box/internal/interface/console"
	"github.com/codestats-hub/codestats-box/internal/presenter"
)

// Exit codes of the process.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		console.NewPrinter(os.Stderr).Errorf("%v", err)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			os.Exit(exitInterrupted)
		}
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}

func run(ctx context.Context, args []string) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// The preview form is recognized before configuration loads so its
	// positional overrides and credential placeholders are in place when
	// validation runs. A preview must work without a configured publisher.
	preview, err := applyPreviewArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cmd, err := buildCommand(cfg, preview)
	if err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg).With("run_id", uuid.NewString())
	log.Info("starting codestats-box",
		"version", cfg.App.Version,
		"username", cmd.Username,
		"stats_type", cmd.Mode.String(),
		"preview", cmd.Preview,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	statsConfig := codestats.DefaultClientConfig(cfg.CodeStats.BaseURL)
	statsConfig.Timeout = cfg.CodeStats.RequestTimeout
	statsConfig.MaxRetries = cfg.CodeStats.MaxRetries
	statsConfig.RetryBaseDelay = cfg.CodeStats.RetryBaseDelay
	statsConfig.RetryMaxDelay = cfg.CodeStats.RetryMaxDelay
	statsConfig.RetryMultiplier = cfg.CodeStats.RetryMultiplier
	statsConfig.Logger = log
	statsConfig.Debug = cfg.App.Debug
	statsClient := codestats.NewClient(statsConfig, &http.Client{Timeout: cfg.CodeStats.RequestTimeout})

	gistConfig := gist.DefaultClientConfig(cfg.Gist.Token, cfg.Gist.GistID)
	gistConfig.BaseURL = cfg.Gist.BaseURL
	gistConfig.Timeout = cfg.Gist.RequestTimeout
	gistConfig.Logger = log
	gistConfig.Debug = cfg.App.Debug
	gistClient := gist.NewClient(gistConfig, &http.Client{Timeout: cfg.Gist.RequestTimeout})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PUBLISH PIPELINE
	// ─────────────────────────────────────────────────────────────────────────
	handler := command.NewPublishStatsHandler(
		statsClient,
		gistClient,
		presenter.NewCardPresenter(cfg.Card.SeparatorRune()),
		console.NewPrinter(os.Stdout),
		log,
	)

	result, err := handler.Handle(ctx, cmd)
	if err != nil {
		log.Error("publish failed", "error", err)
		return err
	}

	log.Info("finished",
		"updated", result.Updated,
		"total_xp", result.TotalXP,
	)
	return nil
}

// applyPreviewArgs recognizes the preview argument form and projects it
// onto the environment before configuration is loaded: the positional
// username and stats type override their variables, and absent gist
// credentials get placeholders since a preview never writes.
func applyPreviewArgs(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	if args[0] != "preview" {
		return false, fmt.Errorf("unknown argument %q (usage: codestats-box [preview <username> <stats-type>])", args[0])
	}

	if len(args) > 1 {
		os.Setenv("CODE_STATS_USERNAME", args[1])
	}
	if len(args) > 2 {
		os.Setenv("STATS_TYPE", args[2])
	}

	for _, key := range []string{"GIST_ID", "GH_TOKEN"} {
		if os.Getenv(key) == "" {
			os.Setenv(key, "preview-only")
		}
	}
	return true, nil
}

// buildCommand derives the publish command from the loaded configuration.
func buildCommand(cfg *config.Config, preview bool) (command.PublishStatsCommand, error) {
	cmd := command.PublishStatsCommand{
		Username:     cfg.CodeStats.Username,
		TopLanguages: cfg.Card.TopLanguages,
		LineWidth:    cfg.Card.MaxLineLength,
		Preview:      preview,
	}

	mode, err := presenter.ParseMode(cfg.Card.StatsType)
	if err != nil {
		return cmd, err
	}
	cmd.Mode = mode

	return cmd, nil
}

// setupLogger builds the structured logger per configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
