package codestats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
	"github.com/codestats-hub/codestats-box/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - API document to domain entity transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper transforms stats API documents into domain entities. This is an
// anti-corruption layer: the domain never sees the wire representation.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// UserStatsFromResponse builds domain UserStats from a raw profile body.
// Malformed JSON fails with an invalid-format error; structural or type
// mismatches fail with a validation error. Missing fields default to zero.
func (m *Mapper) UserStatsFromResponse(username string, body []byte) (*stats.UserStats, error) {
	var dto ProfileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, shared.WrapError("codestats", "Parse", shared.ErrInvalidFormat,
			fmt.Sprintf("malformed profile document for user %q", username), err)
	}

	totalXP, err := scalarValue(dto.TotalXP)
	if err != nil {
		return nil, err
	}

	newXP, err := scalarValue(dto.NewXP)
	if err != nil {
		return nil, err
	}

	languages, err := languagesFromRaw(dto.Languages)
	if err != nil {
		return nil, err
	}

	return stats.UserStatsFromPayload(username, stats.Payload{
		TotalXP:   totalXP,
		NewXP:     newXP,
		Languages: languages,
	})
}

// scalarValue decodes a raw JSON scalar, keeping numerics as json.Number.
// An absent field decodes to nil, which the domain treats as zero.
func scalarValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, shared.WrapError("codestats", "Parse", shared.ErrInvalidFormat,
			"malformed profile field", err)
	}
	return v, nil
}

// languagesFromRaw walks the "languages" object token by token so the
// resulting payload keeps the document order of the language names.
// json.Unmarshal into a map would lose it.
func languagesFromRaw(raw json.RawMessage) ([]stats.LanguagePayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, shared.WrapError("codestats", "Parse", shared.ErrInvalidFormat,
			"malformed languages object", err)
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, shared.NewDomainError("codestats", "Parse", shared.ErrValidation,
			fmt.Sprintf("languages is not an object (got %v)", tok))
	}

	var languages []stats.LanguagePayload
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, shared.WrapError("codestats", "Parse", shared.ErrInvalidFormat,
				"malformed languages object", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, shared.NewDomainError("codestats", "Parse", shared.ErrInvalidFormat,
				"languages object has a non-string key")
		}

		var entry any
		if err := dec.Decode(&entry); err != nil {
			return nil, shared.WrapError("codestats", "Parse", shared.ErrInvalidFormat,
				fmt.Sprintf("malformed entry for language %q", name), err)
		}

		record, ok := entry.(map[string]any)
		if !ok {
			return nil, shared.NewDomainError("codestats", "Parse", shared.ErrValidation,
				fmt.Sprintf("language %q is not a record", name))
		}

		languages = append(languages, stats.LanguagePayload{
			Name:  name,
			XP:    record["xps"],
			NewXP: record["new_xps"],
		})
	}

	return languages, nil
}
