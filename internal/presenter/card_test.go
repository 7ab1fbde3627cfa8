package presenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codestats-hub/codestats-box/internal/domain/stats"
)

func mustStats(t *testing.T, totalXP, newXP stats.XP, languages []stats.LanguageStats) *stats.UserStats {
	t.Helper()
	return &stats.UserStats{
		Username:  "gaearon",
		TotalXP:   totalXP,
		NewXP:     newXP,
		Level:     stats.CalculateLevel(totalXP),
		Languages: languages,
	}
}

func lang(name string, xp, newXP stats.XP) stats.LanguageStats {
	return stats.LanguageStats{Name: name, XP: xp, NewXP: newXP, Level: stats.CalculateLevel(xp)}
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]Mode{
		"level-xp":  ModeLevelXP,
		"recent-xp": ModeRecentXP,
		"xp":        ModeXPOnly,
	} {
		mode, err := ParseMode(input)
		assert.NoError(t, err)
		assert.Equal(t, want, mode)
		assert.Equal(t, input, mode.String())
	}

	_, err := ParseMode("weekly-xp")
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	p := NewCardPresenter(':')

	assert.Equal(t, "🧑🏻‍💻 My Code::Stats XP (Top Languages)", p.Title(ModeLevelXP))
	assert.Equal(t, "🧑🏻‍💻 My Code::Stats XP (Recent Languages)", p.Title(ModeRecentXP))
	// xp mode shares the level-xp title.
	assert.Equal(t, p.Title(ModeLevelXP), p.Title(ModeXPOnly))
}

func TestLineRender_Width(t *testing.T) {
	line := Line{Label: "Total XP", Value: "lvl  26 (1,104,152 XP)"}
	rendered := line.Render(':', 54)

	assert.Equal(t, "Total XP "+strings.Repeat(":", 22)+" lvl  26 (1,104,152 XP)", rendered)

	// Exactly one space on each side of the separator run, and the run
	// length is width - len(label) - len(value) - 2.
	sep := strings.Repeat(":", 54-len([]rune(line.Label))-len([]rune(line.Value))-2)
	assert.Contains(t, rendered, " "+sep+" ")
	assert.Len(t, []rune(rendered), 54)
}

func TestLineRender_NeverFewerThanOneSeparator(t *testing.T) {
	line := Line{Label: "An unreasonably long language name", Value: "lvl 100 (99,999,999 XP)"}
	rendered := line.Render(':', 40)

	assert.Equal(t, line.Label+" : "+line.Value, rendered)
}

func TestFormatContent_LevelXPTopLanguages(t *testing.T) {
	s := mustStats(t, 3000, 0, []stats.LanguageStats{
		lang("A", 500, 0),
		lang("B", 1500, 0),
		lang("C", 1000, 0),
	})

	p := NewCardPresenter(':')
	content := p.FormatContent(s, ModeLevelXP, 2, 54)
	lines := strings.Split(content, "\n")

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Total XP "))
	assert.True(t, strings.HasPrefix(lines[1], "B "))
	assert.True(t, strings.HasPrefix(lines[2], "C "))
	assert.NotContains(t, content, "\nA ")
}

func TestFormatContent_StableTies(t *testing.T) {
	// Equal XP keeps source order.
	s := mustStats(t, 0, 0, []stats.LanguageStats{
		lang("Zig", 100, 0),
		lang("Ada", 100, 0),
		lang("C", 100, 0),
	})

	p := NewCardPresenter(':')
	lines := strings.Split(p.FormatContent(s, ModeXPOnly, 3, 54), "\n")

	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Zig "))
	assert.True(t, strings.HasPrefix(lines[2], "Ada "))
	assert.True(t, strings.HasPrefix(lines[3], "C "))
}

func TestFormatContent_RecentXPSortsByNewXP(t *testing.T) {
	s := mustStats(t, 10_000, 700, []stats.LanguageStats{
		lang("Go", 5_000, 200),
		lang("Rust", 3_000, 500),
		lang("Elixir", 2_000, 0),
	})

	p := NewCardPresenter(':')
	lines := strings.Split(p.FormatContent(s, ModeRecentXP, 10, 54), "\n")

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Rust "))
	assert.True(t, strings.HasPrefix(lines[2], "Go "))
	// Elixir has no recent XP and is filtered out.
	assert.NotContains(t, strings.Join(lines, "\n"), "Elixir")
}

func TestFormatContent_NoRecentActivityPlaceholder(t *testing.T) {
	s := mustStats(t, 1_104_152, 0, []stats.LanguageStats{
		lang("Go", 1_000_000, 0),
		lang("Rust", 104_152, 0),
	})

	p := NewCardPresenter(':')
	content := p.FormatContent(s, ModeRecentXP, 10, 54)
	lines := strings.Split(content, "\n")

	// Total line plus the fixed 4-line placeholder, regardless of total XP.
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "Not been coding recently "))
	assert.True(t, strings.HasPrefix(lines[2], "Probably busy with something else "))
	assert.True(t, strings.HasPrefix(lines[3], "Or just taking a break "))
	assert.True(t, strings.HasPrefix(lines[4], "But would be back to it soon! "))
}

func TestFormatValue_Templates(t *testing.T) {
	assert.Equal(t, "1,104,152 XP", formatValue(ModeXPOnly, 1_104_152, 26, 0))
	assert.Equal(t, "      500 XP", formatValue(ModeXPOnly, 500, 0, 0))

	assert.Equal(t, "lvl  26 (1,104,152 XP)", formatValue(ModeLevelXP, 1_104_152, 26, 99))

	assert.Equal(t, "lvl   0 (    1,500 XP) (+   250)", formatValue(ModeRecentXP, 1_500, 0, 250))
	// new XP suffix is omitted when nothing was gained recently.
	assert.Equal(t, "lvl   0 (    1,500 XP)", formatValue(ModeRecentXP, 1_500, 0, 0))

	// Values wider than the field are never truncated.
	assert.Equal(t, "1,234,567,890 XP", formatValue(ModeXPOnly, 1_234_567_890, 0, 0))
}

func TestFormatContent_DoesNotMutateInput(t *testing.T) {
	languages := []stats.LanguageStats{
		lang("A", 500, 0),
		lang("B", 1500, 0),
	}
	s := mustStats(t, 2000, 0, languages)

	NewCardPresenter(':').FormatContent(s, ModeLevelXP, 2, 54)

	assert.Equal(t, "A", s.Languages[0].Name)
	assert.Equal(t, "B", s.Languages[1].Name)
}
