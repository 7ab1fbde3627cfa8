// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing externally visible state - here,
// the content of the published stats card.
package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
	"github.com/codestats-hub/codestats-box/internal/domain/stats"
	"github.com/codestats-hub/codestats-box/internal/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH STATS COMMAND
// Fetches the user's statistics, renders the card, and conditionally writes
// it into the snippet store. One invocation performs the whole pipeline.
// ══════════════════════════════════════════════════════════════════════════════

// PublishStatsCommand contains the data needed to publish a stats card.
type PublishStatsCommand struct {
	// Username identifies the user on the stats source.
	Username string

	// Mode selects the display mode of the card.
	Mode presenter.Mode

	// TopLanguages caps how many language lines appear.
	TopLanguages int

	// LineWidth is the target visual width of each card line.
	LineWidth int

	// Preview renders and displays the card without touching the
	// snippet store.
	Preview bool

	// CorrelationID for tracing one run through the logs.
	// Generated when empty.
	CorrelationID string
}

// Validate validates the command.
func (c PublishStatsCommand) Validate() error {
	if c.Username == "" {
		return errors.New("publish_stats: username must be provided")
	}
	if c.TopLanguages < 1 {
		return errors.New("publish_stats: top languages count must be positive")
	}
	if c.LineWidth < 1 {
		return errors.New("publish_stats: line width must be positive")
	}
	return nil
}

// PublishStatsResult contains the result of one publish run.
type PublishStatsResult struct {
	// Title is the rendered card title.
	Title string

	// Content is the rendered card body.
	Content string

	// Updated indicates whether the snippet store was written
	// (false also covers preview runs).
	Updated bool

	// TotalXP is the user's total XP at fetch time.
	TotalXP int64

	// LanguagesCount is how many languages the source reported.
	LanguagesCount int
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// StatsFetcher reads the user's statistics from the stats source.
type StatsFetcher interface {
	GetUserStats(ctx context.Context, username string) (*stats.UserStats, error)
}

// SnippetUpdater conditionally writes the card into the snippet store.
type SnippetUpdater interface {
	UpdateSnippet(ctx context.Context, title, content string) (bool, error)
}

// ConsolePrinter shows run progress to a human.
type ConsolePrinter interface {
	Panel(title, content string)
	Successf(format string, args ...any)
	Infof(format string, args ...any)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// PublishStatsHandler executes PublishStatsCommand.
type PublishStatsHandler struct {
	fetcher   StatsFetcher
	updater   SnippetUpdater
	presenter *presenter.CardPresenter
	console   ConsolePrinter
	logger    *slog.Logger
}

// NewPublishStatsHandler creates the handler with its collaborators.
func NewPublishStatsHandler(
	fetcher StatsFetcher,
	updater SnippetUpdater,
	cardPresenter *presenter.CardPresenter,
	console ConsolePrinter,
	logger *slog.Logger,
) *PublishStatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishStatsHandler{
		fetcher:   fetcher,
		updater:   updater,
		presenter: cardPresenter,
		console:   console,
		logger:    logger,
	}
}

// Handle runs fetch -> format -> preview -> conditional update.
// Errors from the collaborators propagate unchanged; they already carry
// their domain, operation, and cause.
func (h *PublishStatsHandler) Handle(ctx context.Context, cmd PublishStatsCommand) (*PublishStatsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("publish", "Handle", shared.ErrInvalidInput, "invalid command", err)
	}

	if cmd.CorrelationID == "" {
		cmd.CorrelationID = uuid.NewString()
	}
	logger := h.logger.With("correlation_id", cmd.CorrelationID, "username", cmd.Username)

	logger.Info("publishing stats card", "mode", cmd.Mode.String(), "preview", cmd.Preview)

	userStats, err := h.fetcher.GetUserStats(ctx, cmd.Username)
	if err != nil {
		return nil, err
	}

	title := h.presenter.Title(cmd.Mode)
	content := h.presenter.FormatContent(userStats, cmd.Mode, cmd.TopLanguages, cmd.LineWidth)

	h.console.Panel(title, content)

	result := &PublishStatsResult{
		Title:          title,
		Content:        content,
		TotalXP:        userStats.TotalXP.Int64(),
		LanguagesCount: len(userStats.Languages),
	}

	if cmd.Preview {
		h.console.Infof("Preview only - the gist was not touched.")
		logger.Info("preview completed", "total_xp", result.TotalXP)
		return result, nil
	}

	updated, err := h.updater.UpdateSnippet(ctx, title, content)
	if err != nil {
		return nil, err
	}
	result.Updated = updated

	if updated {
		h.console.Successf("Gist updated successfully!")
	} else {
		h.console.Infof("Gist is already up to date. No changes needed.")
	}

	logger.Info("publish completed",
		"updated", updated,
		"total_xp", result.TotalXP,
		"languages_count", result.LanguagesCount,
	)
	return result, nil
}
