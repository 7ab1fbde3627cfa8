// Package config loads and validates application configuration from
// environment variables. A .env file is honored when present so local
// runs do not need exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/codestats-hub/codestats-box/internal/domain/shared"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Code::Stats API
	CodeStats CodeStatsConfig

	// GitHub Gist
	Gist GistConfig

	// Stats card rendering
	Card CardConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string
}

// CodeStatsConfig holds Code::Stats API settings.
type CodeStatsConfig struct {
	// Username on codestats.net whose XP is published.
	Username string `validate:"required"`

	// Base URL of the users endpoint.
	BaseURL string `validate:"required,url"`

	// Per-request timeout.
	RequestTimeout time.Duration `validate:"gt=0"`

	// Retry policy for transport failures. MaxRetries counts total
	// attempts, not extra attempts after the first.
	MaxRetries      int           `validate:"min=1,max=10"`
	RetryBaseDelay  time.Duration `validate:"gt=0"`
	RetryMaxDelay   time.Duration `validate:"gt=0"`
	RetryMultiplier float64       `validate:"min=1,max=10"`
}

// GistConfig holds GitHub gist settings.
type GistConfig struct {
	// ID of the gist that holds the published card.
	GistID string `validate:"required"`

	// Personal access token with the gist scope.
	Token string `validate:"required"`

	// Base URL of the GitHub REST API.
	BaseURL string `validate:"required,url"`

	// Per-request timeout.
	RequestTimeout time.Duration `validate:"gt=0"`
}

// CardConfig holds stats card rendering settings.
type CardConfig struct {
	// StatsType selects the display mode: level-xp, recent-xp, or xp.
	StatsType string `validate:"oneof=level-xp recent-xp xp"`

	// TopLanguages caps how many language lines appear on the card.
	TopLanguages int `validate:"min=1,max=50"`

	// MaxLineLength is the target visual width of each card line.
	MaxLineLength int `validate:"min=40,max=100"`

	// Separator fills the gap between label and value.
	Separator string `validate:"len=1"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Load loads configuration from the environment, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	// Missing .env is the normal case in CI; only real variables matter.
	_ = godotenv.Load()

	cfg := &Config{
		App:           loadAppConfig(),
		CodeStats:     loadCodeStatsConfig(),
		Gist:          loadGistConfig(),
		Card:          loadCardConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "production"))

	return AppConfig{
		Name:        getEnv("APP_NAME", "codestats-box"),
		Environment: env,
		Debug:       env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:     getEnv("APP_VERSION", "0.1.0"),
	}
}

func loadCodeStatsConfig() CodeStatsConfig {
	return CodeStatsConfig{
		Username:        getEnv("CODE_STATS_USERNAME", ""),
		BaseURL:         getEnv("CODE_STATS_BASE_URL", "https://codestats.net/api/users"),
		RequestTimeout:  getEnvDuration("CODE_STATS_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("CODE_STATS_MAX_RETRIES", 3),
		RetryBaseDelay:  getEnvDuration("CODE_STATS_RETRY_BASE_DELAY", 2*time.Second),
		RetryMaxDelay:   getEnvDuration("CODE_STATS_RETRY_MAX_DELAY", 10*time.Second),
		RetryMultiplier: getEnvFloat("CODE_STATS_RETRY_MULTIPLIER", 2.0),
	}
}

func loadGistConfig() GistConfig {
	return GistConfig{
		GistID:         getEnv("GIST_ID", ""),
		Token:          getEnv("GH_TOKEN", ""),
		BaseURL:        getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),
		RequestTimeout: getEnvDuration("GITHUB_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func loadCardConfig() CardConfig {
	return CardConfig{
		StatsType:     getEnv("STATS_TYPE", "level-xp"),
		TopLanguages:  getEnvInt("TOP_LANGUAGES_COUNT", 10),
		MaxLineLength: getEnvInt("MAX_LINE_LENGTH", 54),
		Separator:     getEnv("CARD_SEPARATOR", ":"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks if the configuration is valid. All violations are
// collected so one run reports every problem at once.
func (c *Config) Validate() error {
	v := validator.New()

	var errs []string
	for section, value := range map[string]any{
		"codestats": c.CodeStats,
		"gist":      c.Gist,
		"card":      c.Card,
		"log":       c.Observability,
	} {
		if err := v.Struct(value); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				errs = append(errs, fmt.Sprintf("%s: %v", section, err))
				continue
			}
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s: %s failed %q validation", section, fe.Field(), fe.Tag()))
			}
		}
	}

	if c.CodeStats.RetryMaxDelay < c.CodeStats.RetryBaseDelay {
		errs = append(errs, "codestats: CODE_STATS_RETRY_MAX_DELAY must be >= CODE_STATS_RETRY_BASE_DELAY")
	}

	if len(errs) > 0 {
		return shared.NewDomainError("config", "Validate", shared.ErrConfiguration,
			strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// SeparatorRune returns the card separator as a rune.
func (c *CardConfig) SeparatorRune() rune {
	return []rune(c.Separator)[0]
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
