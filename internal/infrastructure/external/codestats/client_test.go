package codestats

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
	"github.com/codestats-hub/codestats-box/internal/domain/stats"
)

// fakeHTTPClient counts requests and plays back a canned response or error.
type fakeHTTPClient struct {
	calls  int
	status int
	body   string
	err    error
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

// timeoutError mimics a transport-level timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func testConfig() ClientConfig {
	cfg := DefaultClientConfig("https://codestats.net/api/users")
	cfg.MaxRetries = 3
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

const profileBody = `{
	"user": "gaearon",
	"total_xp": 1104152,
	"new_xp": 450,
	"languages": {
		"Go":     {"xps": 1000000, "new_xps": 300},
		"Elixir": {"xps": 104152, "new_xps": 150},
		"Make":   {"xps": 0}
	}
}`

func TestGetUserStats_Success(t *testing.T) {
	httpClient := &fakeHTTPClient{status: http.StatusOK, body: profileBody}
	client := NewClient(testConfig(), httpClient)

	result, err := client.GetUserStats(context.Background(), "gaearon")
	require.NoError(t, err)

	assert.Equal(t, 1, httpClient.calls)
	assert.Equal(t, "gaearon", result.Username)
	assert.Equal(t, stats.XP(1_104_152), result.TotalXP)
	assert.Equal(t, stats.XP(450), result.NewXP)
	assert.Equal(t, stats.Level(26), result.Level)

	// Language order follows the profile document, not any sort.
	require.Len(t, result.Languages, 3)
	assert.Equal(t, "Go", result.Languages[0].Name)
	assert.Equal(t, "Elixir", result.Languages[1].Name)
	assert.Equal(t, "Make", result.Languages[2].Name)
	assert.Equal(t, stats.Level(25), result.Languages[0].Level)
	assert.Equal(t, stats.XP(150), result.Languages[1].NewXP)
}

func TestGetUserStats_HTTPErrorIsNotRetried(t *testing.T) {
	httpClient := &fakeHTTPClient{status: http.StatusNotFound, body: `{"error":"not found"}`}
	client := NewClient(testConfig(), httpClient)

	_, err := client.GetUserStats(context.Background(), "nobody")
	require.Error(t, err)

	assert.Equal(t, 1, httpClient.calls)
	assert.True(t, shared.IsRemoteService(err))
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "nobody")
}

func TestGetUserStats_TimeoutIsRetriedToExhaustion(t *testing.T) {
	httpClient := &fakeHTTPClient{err: timeoutError{}}
	client := NewClient(testConfig(), httpClient)

	_, err := client.GetUserStats(context.Background(), "gaearon")
	require.Error(t, err)

	// MaxRetries=3 means exactly 3 attempts in total.
	assert.Equal(t, 3, httpClient.calls)
	assert.True(t, shared.IsRemoteService(err))
}

func TestGetUserStats_MalformedBody(t *testing.T) {
	httpClient := &fakeHTTPClient{status: http.StatusOK, body: `{"total_xp": `}
	client := NewClient(testConfig(), httpClient)

	_, err := client.GetUserStats(context.Background(), "gaearon")
	require.Error(t, err)

	assert.Equal(t, 1, httpClient.calls)
	assert.True(t, shared.IsRemoteService(err))
}

func TestGetUserStats_TypeMismatchKeepsValidationCause(t *testing.T) {
	httpClient := &fakeHTTPClient{status: http.StatusOK, body: `{"total_xp": "a lot"}`}
	client := NewClient(testConfig(), httpClient)

	_, err := client.GetUserStats(context.Background(), "gaearon")
	require.Error(t, err)

	// Collapsed to the remote-service kind, but the validation cause
	// stays inspectable through the chain.
	assert.True(t, shared.IsRemoteService(err))
	assert.True(t, shared.IsValidation(err))
}

func TestGetUserStats_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	httpClient := &fakeHTTPClient{err: timeoutError{}}
	client := NewClient(testConfig(), httpClient)

	_, err := client.GetUserStats(ctx, "gaearon")
	require.Error(t, err)
	assert.LessOrEqual(t, httpClient.calls, 1)
}
