// Package stats contains the domain model for a user's coding-activity
// statistics. This is the core of the business logic - it has no external
// dependencies and every value object is immutable after construction.
package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP represents experience points earned by writing code.
type XP int64

// IsValid checks that the XP value is non-negative.
func (x XP) IsValid() bool {
	return x >= 0
}

// Int64 returns the underlying int64 value.
func (x XP) Int64() int64 {
	return int64(x)
}

// Level represents a user level derived from XP.
type Level int

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// CalculateLevel computes the level for a given amount of XP using the
// Code::Stats formula: level = floor(0.025 * sqrt(xp)).
// Negative XP is not a valid domain value, but it maps to level 0 rather
// than failing - levels never go below zero.
func CalculateLevel(xp XP) Level {
	if xp <= 0 {
		return 0
	}
	return Level(math.Floor(0.025 * math.Sqrt(float64(xp))))
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// LanguageStats holds the statistics for a single programming language.
// The Level field is always derived from XP, never taken from the source.
type LanguageStats struct {
	// Name is the language name as reported by the stats source.
	Name string

	// XP is the total accumulated experience for the language.
	XP XP

	// NewXP is the experience gained during the source's recent window.
	NewXP XP

	// Level is derived from XP via CalculateLevel.
	Level Level
}

// UserStats holds the complete statistics for one user.
// Languages keeps the source document order; it is not pre-sorted.
type UserStats struct {
	// Username identifies the user on the stats source.
	Username string

	// TotalXP is the accumulated experience across all languages.
	TotalXP XP

	// NewXP is the recently gained experience across all languages.
	NewXP XP

	// Level is derived from TotalXP via CalculateLevel.
	Level Level

	// Languages holds per-language statistics in source order.
	Languages []LanguageStats
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYLOAD CONSTRUCTION
// ══════════════════════════════════════════════════════════════════════════════

// Payload is the loosely typed source document UserStats is built from.
// Values are kept as decoded JSON values (json.Number for numerics); nil
// means the field was absent from the source document.
type Payload struct {
	// TotalXP is the raw "total_xp" value.
	TotalXP any

	// NewXP is the raw "new_xp" value.
	NewXP any

	// Languages holds per-language raw entries in document order.
	Languages []LanguagePayload
}

// LanguagePayload is one raw language entry from the source document.
type LanguagePayload struct {
	// Name is the language name (the object key in the source document).
	Name string

	// XP is the raw "xps" value.
	XP any

	// NewXP is the raw "new_xps" value.
	NewXP any
}

// UserStatsFromPayload builds UserStats from a loosely typed payload.
// Missing fields default to 0. A non-numeric value where a number is
// expected fails with a validation error - a raw type error never leaks
// upward. Level fields are always derived here.
func UserStatsFromPayload(username string, p Payload) (*UserStats, error) {
	totalXP, err := xpFromValue("total_xp", p.TotalXP)
	if err != nil {
		return nil, err
	}

	newXP, err := xpFromValue("new_xp", p.NewXP)
	if err != nil {
		return nil, err
	}

	languages := make([]LanguageStats, 0, len(p.Languages))
	for _, lp := range p.Languages {
		lang, err := languageFromPayload(lp)
		if err != nil {
			return nil, err
		}
		languages = append(languages, lang)
	}

	return &UserStats{
		Username:  username,
		TotalXP:   totalXP,
		NewXP:     newXP,
		Level:     CalculateLevel(totalXP),
		Languages: languages,
	}, nil
}

// languageFromPayload builds a single LanguageStats from its raw entry.
func languageFromPayload(lp LanguagePayload) (LanguageStats, error) {
	xp, err := xpFromValue(lp.Name+".xps", lp.XP)
	if err != nil {
		return LanguageStats{}, err
	}

	newXP, err := xpFromValue(lp.Name+".new_xps", lp.NewXP)
	if err != nil {
		return LanguageStats{}, err
	}

	return LanguageStats{
		Name:  lp.Name,
		XP:    xp,
		NewXP: newXP,
		Level: CalculateLevel(xp),
	}, nil
}

// xpFromValue extracts an XP amount from a decoded JSON value.
func xpFromValue(field string, v any) (XP, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return XP(i), nil
		}
		if f, err := n.Float64(); err == nil {
			return XP(f), nil
		}
		return 0, shared.NewDomainError("stats", "FromPayload", shared.ErrValidation,
			fmt.Sprintf("field %q is not numeric: %q", field, n.String()))
	case int:
		return XP(n), nil
	case int64:
		return XP(n), nil
	case float64:
		return XP(n), nil
	default:
		return 0, shared.NewDomainError("stats", "FromPayload", shared.ErrValidation,
			fmt.Sprintf("field %q has unexpected type %T", field, v))
	}
}
