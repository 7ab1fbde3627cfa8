package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the gist client.
type ClientConfig struct {
	// BaseURL is the GitHub API base URL (default: https://api.github.com)
	BaseURL string

	// Token is a GitHub access token with the gist scope
	Token string

	// GistID identifies the gist holding the published card
	GistID string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token, gistID string) ClientConfig {
	return ClientConfig{
		BaseURL: "https://api.github.com",
		Token:   token,
		GistID:  gistID,
		Timeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the gist snippet-store client. It performs at most two
// sequential remote calls per update and never retries: the whole run is
// re-triggered externally, so a failed write simply surfaces.
type Client struct {
	config     ClientConfig
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewClient creates a new gist client. A nil httpClient falls back to a
// net/http client with the configured timeout.
func NewClient(config ClientConfig, httpClient HTTPClient) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE OPERATION
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSnippet publishes (title, content) into the configured gist.
// It reads the first content section of the current gist; when both the
// label and the body already match, it returns false without writing, so
// repeated runs leave no no-op entries in the gist history. Otherwise it
// replaces that section and returns true.
func (c *Client) UpdateSnippet(ctx context.Context, title, content string) (bool, error) {
	if c.config.Debug {
		c.logger.Debug("updating gist",
			"gist_id", c.config.GistID,
			"title", title,
			"content_length", len(content),
		)
	}

	current, err := c.getGist(ctx)
	if err != nil {
		return false, err
	}

	name, file, err := firstFile(current.Files)
	if err != nil {
		return false, shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("reading sections of gist %s", c.config.GistID), err)
	}
	if name == "" {
		return false, shared.NewDomainError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("gist %s has no files", c.config.GistID))
	}

	if file.Content == content && name == title {
		c.logger.Info("gist unchanged", "gist_id", c.config.GistID, "title", title)
		return false, nil
	}

	if err := c.editGist(ctx, name, title, content); err != nil {
		return false, err
	}

	c.logger.Info("gist updated",
		"gist_id", c.config.GistID,
		"old_title", name,
		"new_title", title,
		"content_length", len(content),
	)
	return true, nil
}

// getGist fetches the current gist document.
func (c *Client) getGist(ctx context.Context) (*GistDTO, error) {
	fullURL := c.config.BaseURL + "/gists/" + c.config.GistID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("creating request for gist %s", c.config.GistID), err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("fetching gist %s", c.config.GistID), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("reading gist %s", c.config.GistID), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewDomainError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("fetching gist %s: HTTP %d", c.config.GistID, resp.StatusCode))
	}

	var dto GistDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("decoding gist %s", c.config.GistID), err)
	}
	return &dto, nil
}

// editGist replaces one file section's name and content.
func (c *Client) editGist(ctx context.Context, oldName, title, content string) error {
	payload := updateRequestDTO{
		Files: map[string]updateFileDTO{
			oldName: {Filename: title, Content: content},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("encoding update for gist %s", c.config.GistID), err)
	}

	fullURL := c.config.BaseURL + "/gists/" + c.config.GistID
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fullURL, bytes.NewReader(body))
	if err != nil {
		return shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("creating update request for gist %s", c.config.GistID), err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.WrapError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("updating gist %s", c.config.GistID), err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return shared.NewDomainError("gist", "UpdateSnippet", shared.ErrRemoteWrite,
			fmt.Sprintf("updating gist %s: HTTP %d", c.config.GistID, resp.StatusCode))
	}
	return nil
}

// setHeaders applies the common GitHub API headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
}

// firstFile returns the name and record of the first file in document
// order. An empty name with a nil error means the gist has no files.
func firstFile(raw json.RawMessage) (string, FileDTO, error) {
	if len(raw) == 0 {
		return "", FileDTO{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return "", FileDTO{}, err
	}
	if tok == nil {
		return "", FileDTO{}, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", FileDTO{}, fmt.Errorf("files is not an object (got %v)", tok)
	}

	if !dec.More() {
		return "", FileDTO{}, nil
	}

	keyTok, err := dec.Token()
	if err != nil {
		return "", FileDTO{}, err
	}
	name, ok := keyTok.(string)
	if !ok {
		return "", FileDTO{}, fmt.Errorf("files object has a non-string key")
	}

	var file FileDTO
	if err := dec.Decode(&file); err != nil {
		return "", FileDTO{}, fmt.Errorf("decoding file %q: %w", name, err)
	}
	return name, file, nil
}
