// Package codestats implements the Code::Stats API client.
// This package handles all communication with the stats source, including
// fetching a user's profile and mapping it into the domain model.
package codestats

import "encoding/json"

// ProfileDTO mirrors the raw profile document returned by the stats API.
// Numeric fields are kept as raw JSON so that a type mismatch surfaces as a
// domain validation error during mapping instead of a decode error here.
type ProfileDTO struct {
	// User is the username echoed back by the API.
	User string `json:"user"`

	// TotalXP is the raw "total_xp" value.
	TotalXP json.RawMessage `json:"total_xp"`

	// NewXP is the raw "new_xp" value.
	NewXP json.RawMessage `json:"new_xp"`

	// Languages is the raw "languages" object. It is traversed token by
	// token during mapping to preserve the document order of its keys.
	Languages json.RawMessage `json:"languages"`
}
