package codestats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
	"github.com/codestats-hub/codestats-box/internal/domain/stats"
	"github.com/codestats-hub/codestats-box/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the stats API client.
type ClientConfig struct {
	// BaseURL is the profile endpoint base, e.g. https://codestats.net/api/users
	BaseURL string

	// Timeout is the per-attempt HTTP request timeout
	Timeout time.Duration

	// MaxRetries is the total number of attempts (including the first)
	// for transient transport failures
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the delay between retries
	RetryMaxDelay time.Duration

	// RetryMultiplier is the exponential backoff factor
	RetryMultiplier float64

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryBaseDelay:  2 * time.Second,
		RetryMaxDelay:   10 * time.Second,
		RetryMultiplier: 2.0,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the Code::Stats API client.
type Client struct {
	config     ClientConfig
	httpClient HTTPClient
	logger     *slog.Logger
	mapper     *Mapper
	retrier    *retry.Retrier
}

// NewClient creates a new stats API client. A nil httpClient falls back to
// a net/http client with the configured per-attempt timeout.
func NewClient(config ClientConfig, httpClient HTTPClient) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	logger := config.Logger

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		mapper:     NewMapper(),
		retrier: retry.New(
			retry.WithMaxAttempts(config.MaxRetries),
			retry.WithInitialDelay(config.RetryBaseDelay),
			retry.WithMaxDelay(config.RetryMaxDelay),
			retry.WithMultiplier(config.RetryMultiplier),
			retry.WithRetryIf(shared.IsTransient),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				logger.Warn("retrying stats fetch",
					"attempt", attempt,
					"delay", delay.String(),
					"error", err.Error(),
				)
			}),
		),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FETCH OPERATION
// ══════════════════════════════════════════════════════════════════════════════

// GetUserStats fetches a user's profile and maps it into domain UserStats.
// Transient transport failures (timeout, connectivity) are retried with
// exponential backoff; a non-2xx status and parse failures are not retried.
// Every failure mode surfaces as a remote-service error; the underlying
// cause stays inspectable through the error chain.
func (c *Client) GetUserStats(ctx context.Context, username string) (*stats.UserStats, error) {
	if c.config.Debug {
		c.logger.Debug("fetching stats", "username", username, "base_url", c.config.BaseURL)
	}

	var result *stats.UserStats
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		s, err := c.fetchOnce(ctx, username)
		if err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		if shared.IsRemoteService(err) {
			return nil, err
		}
		return nil, shared.WrapError("codestats", "GetUserStats", shared.ErrRemoteService,
			fmt.Sprintf("fetching stats for user %q", username), err)
	}

	c.logger.Info("stats fetched",
		"username", username,
		"total_xp", result.TotalXP.Int64(),
		"languages_count", len(result.Languages),
	)
	return result, nil
}

// fetchOnce performs a single profile request.
func (c *Client) fetchOnce(ctx context.Context, username string) (*stats.UserStats, error) {
	fullURL := strings.TrimRight(c.config.BaseURL, "/") + "/" + url.PathEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, shared.WrapError("codestats", "GetUserStats", shared.ErrRemoteService,
			fmt.Sprintf("creating request for user %q", username), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(username, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(username, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, shared.NewDomainError("codestats", "GetUserStats", shared.ErrRemoteService,
			fmt.Sprintf("stats API returned HTTP %d for user %q", resp.StatusCode, username))
	}

	s, err := c.mapper.UserStatsFromResponse(username, body)
	if err != nil {
		return nil, shared.WrapError("codestats", "GetUserStats", shared.ErrRemoteService,
			fmt.Sprintf("parsing profile for user %q", username), err)
	}
	return s, nil
}

// transportError classifies a network-level failure. Timeouts and
// connectivity failures are the only transient conditions; an interrupted
// context is passed through so callers can recognize the cancellation.
func transportError(username string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind := shared.ErrServiceUnavailable
	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		kind = shared.ErrTimeout
	}

	return shared.WrapError("codestats", "GetUserStats", kind,
		fmt.Sprintf("request for user %q failed", username), err)
}
