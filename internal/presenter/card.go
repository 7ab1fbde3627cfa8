// Package presenter formats domain statistics for display.
// Presenters handle the conversion from domain objects to the fixed-width
// text card that gets published to the snippet store.
package presenter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/codestats-hub/codestats-box/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPLAY MODE
// ══════════════════════════════════════════════════════════════════════════════

// Mode selects which metric drives language selection and which template
// renders each value.
type Mode int

const (
	// ModeLevelXP shows level plus total XP for the top languages.
	ModeLevelXP Mode = iota

	// ModeRecentXP shows only languages with recent activity, sorted by it.
	ModeRecentXP

	// ModeXPOnly shows bare XP amounts for the top languages.
	ModeXPOnly
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRecentXP:
		return "recent-xp"
	case ModeXPOnly:
		return "xp"
	default:
		return "level-xp"
	}
}

// ParseMode parses a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "level-xp":
		return ModeLevelXP, nil
	case "recent-xp":
		return ModeRecentXP, nil
	case "xp":
		return ModeXPOnly, nil
	default:
		return ModeLevelXP, fmt.Errorf("unknown stats type %q", s)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LINE
// ══════════════════════════════════════════════════════════════════════════════

// Line is a single (label, value) pair of the card.
type Line struct {
	// Label is the left-hand text, e.g. "Total XP" or a language name.
	Label string

	// Value is the right-hand rendered metric.
	Value string
}

// Render produces a fixed-width "label ::::: value" display line. The
// separator run is sized so the whole line approximates the given visual
// width, but never drops below one separator character - long label/value
// pairs degrade gracefully instead of being truncated.
// Lengths are counted in runes.
func (l Line) Render(separator rune, width int) string {
	available := width - len([]rune(l.Label)) - len([]rune(l.Value)) - 2
	if available < 1 {
		available = 1
	}
	return l.Label + " " + strings.Repeat(string(separator), available) + " " + l.Value
}

// ══════════════════════════════════════════════════════════════════════════════
// CARD PRESENTER
// ══════════════════════════════════════════════════════════════════════════════

// Fixed card titles keyed by display mode. Two modes share a title.
var cardTitles = map[Mode]string{
	ModeLevelXP:  "🧑🏻‍💻 My Code::Stats XP (Top Languages)",
	ModeRecentXP: "🧑🏻‍💻 My Code::Stats XP (Recent Languages)",
	ModeXPOnly:   "🧑🏻‍💻 My Code::Stats XP (Top Languages)",
}

// noRecentActivity is shown in recent-xp mode when no language has new XP.
var noRecentActivity = []Line{
	{Label: "Not been coding recently", Value: "🙈"},
	{Label: "Probably busy with something else", Value: "🗓"},
	{Label: "Or just taking a break", Value: "🌴"},
	{Label: "But would be back to it soon!", Value: "🤓"},
}

// CardPresenter renders UserStats into the published stats card.
type CardPresenter struct {
	separator rune
}

// NewCardPresenter creates a presenter using the given separator character.
func NewCardPresenter(separator rune) *CardPresenter {
	return &CardPresenter{separator: separator}
}

// Title returns the card title for the given mode.
func (p *CardPresenter) Title(mode Mode) string {
	return cardTitles[mode]
}

// FormatContent renders the card body: the total line first, then the
// mode-selected language lines, one per output line.
func (p *CardPresenter) FormatContent(s *stats.UserStats, mode Mode, topCount, width int) string {
	lines := p.cardLines(s, mode, topCount)

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, line.Render(p.separator, width))
	}
	return strings.Join(rendered, "\n")
}

// cardLines assembles the unrendered card lines.
func (p *CardPresenter) cardLines(s *stats.UserStats, mode Mode, topCount int) []Line {
	lines := make([]Line, 0, topCount+1)
	lines = append(lines, Line{
		Label: "Total XP",
		Value: formatValue(mode, s.TotalXP, s.Level, s.NewXP),
	})
	return append(lines, p.languageLines(s.Languages, mode, topCount)...)
}

// languageLines selects, sorts, and renders the per-language lines.
// Sorting is stable: languages with equal XP keep their source order.
func (p *CardPresenter) languageLines(languages []stats.LanguageStats, mode Mode, topCount int) []Line {
	var selected []stats.LanguageStats

	if mode == ModeRecentXP {
		for _, lang := range languages {
			if lang.NewXP > 0 {
				selected = append(selected, lang)
			}
		}
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].NewXP > selected[j].NewXP
		})
		if len(selected) == 0 {
			return noRecentActivity
		}
	} else {
		selected = make([]stats.LanguageStats, len(languages))
		copy(selected, languages)
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].XP > selected[j].XP
		})
	}

	if len(selected) > topCount {
		selected = selected[:topCount]
	}

	lines := make([]Line, 0, len(selected))
	for _, lang := range selected {
		lines = append(lines, Line{
			Label: lang.Name,
			Value: formatValue(mode, lang.XP, lang.Level, lang.NewXP),
		})
	}
	return lines
}

// formatValue renders one metric value. The same template applies to the
// total line and to each language line, using that line's own numbers.
// Grouping uses a locale-independent comma; alignment pads with spaces and
// never truncates values wider than the field.
func formatValue(mode Mode, xp stats.XP, level stats.Level, newXP stats.XP) string {
	switch mode {
	case ModeXPOnly:
		return fmt.Sprintf("%9s XP", humanize.Comma(xp.Int64()))
	case ModeRecentXP:
		value := fmt.Sprintf("lvl %3d (%9s XP)", level.Int(), humanize.Comma(xp.Int64()))
		if newXP > 0 {
			value += fmt.Sprintf(" (+%6s)", humanize.Comma(newXP.Int64()))
		}
		return value
	default:
		return fmt.Sprintf("lvl %3d (%9s XP)", level.Int(), humanize.Comma(xp.Int64()))
	}
}
