package config

import (
	"os"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOpenAIModel  = "OPENAI_MODEL"
	EnvDisableAI    = "DISABLE_AI"
	EnvOddsAPIKey   = "ODDS_API_KEY"
	EnvAPISportsKey = "APISPORTS_API_KEY"
	EnvSeason       = "NBA_SEASON"
	EnvTimezone     = "NBA_TIMEZONE"
	EnvEnableTrends = "ENABLE_TRENDS_IN_NARRATIVE"
	EnvTrendsPath   = "TRENDS_DATA_PATH"
	EnvHTTPAddr     = "HTTP_ADDR"
)

// Config is the service configuration, loaded once at startup. The AI
// gate is not a field here: AIAllowed reads the environment per call.
type Config struct {
	OpenAIAPIKey string
	OpenAIModel  string
	OddsAPIKey   string
	APISportsKey string
	Season       string
	Timezone     string
	EnableTrends bool
	TrendsPath   string
	HTTPAddr     string
}

// FromEnv loads the configuration from the environment. Values may
// reference other variables with ${VAR}; a referenced variable that is
// missing is an error.
func FromEnv() (*Config, error) {
	cfg := &Config{
		OpenAIModel: "gpt-4o",
		Season:      "2025-2026",
		Timezone:    "America/Los_Angeles",
		HTTPAddr:    ":8000",
	}

	fields := []struct {
		env string
		dst *string
	}{
		{EnvOpenAIAPIKey, &cfg.OpenAIAPIKey},
		{EnvOpenAIModel, &cfg.OpenAIModel},
		{EnvOddsAPIKey, &cfg.OddsAPIKey},
		{EnvAPISportsKey, &cfg.APISportsKey},
		{EnvSeason, &cfg.Season},
		{EnvTimezone, &cfg.Timezone},
		{EnvTrendsPath, &cfg.TrendsPath},
		{EnvHTTPAddr, &cfg.HTTPAddr},
	}
	for _, f := range fields {
		raw, ok := os.LookupEnv(f.env)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		expanded, err := ExpandEnvStrict(raw)
		if err != nil {
			return nil, err
		}
		*f.dst = strings.TrimSpace(expanded)
	}

	// Trends are opt-in: the default stays disabled until the operator
	// sets ENABLE_TRENDS_IN_NARRATIVE=1. A per-request trends override
	// can still enable them for a single response.
	cfg.EnableTrends = strings.TrimSpace(os.Getenv(EnvEnableTrends)) == "1"

	return cfg, nil
}

// AIAllowed reports whether AI generation may run right now. It reads
// the environment on every call so the gate tracks live key rotation
// and the DISABLE_AI kill switch without a restart.
func AIAllowed() bool {
	if strings.TrimSpace(os.Getenv(EnvDisableAI)) == "1" {
		return false
	}
	return strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)) != ""
}

// Location resolves the configured timezone, falling back to UTC when
// the zone name does not resolve.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
