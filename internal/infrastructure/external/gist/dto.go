// Package gist implements the GitHub Gist API client. The gist acts as the
// snippet store that the formatted stats card is published into.
package gist

import "encoding/json"

// GistDTO mirrors the gist document returned by the API.
// Files is kept raw: the first content section is whichever file appears
// first in the document, so key order has to survive decoding.
type GistDTO struct {
	// ID is the gist identifier.
	ID string `json:"id"`

	// Files is the raw "files" object (filename -> file record).
	Files json.RawMessage `json:"files"`
}

// FileDTO is one named content section of a gist.
type FileDTO struct {
	// Filename is the section label.
	Filename string `json:"filename"`

	// Content is the section body.
	Content string `json:"content"`
}

// updateFileDTO is the write-side representation of one file change.
type updateFileDTO struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// updateRequestDTO is the PATCH body replacing file sections.
type updateRequestDTO struct {
	Files map[string]updateFileDTO `json:"files"`
}
