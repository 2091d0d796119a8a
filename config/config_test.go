package config

import (
	"strings"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, env := range []string{
		EnvOpenAIAPIKey, EnvOpenAIModel, EnvOddsAPIKey, EnvAPISportsKey,
		EnvSeason, EnvTimezone, EnvEnableTrends, EnvTrendsPath, EnvHTTPAddr,
	} {
		t.Setenv(env, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", cfg.OpenAIModel)
	}
	if cfg.Season != "2025-2026" {
		t.Errorf("Season = %q, want 2025-2026", cfg.Season)
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.EnableTrends {
		t.Error("EnableTrends should default to false")
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvOpenAIModel, "gpt-4o-mini")
	t.Setenv(EnvSeason, "2024-2025")
	t.Setenv(EnvEnableTrends, "1")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q, want gpt-4o-mini", cfg.OpenAIModel)
	}
	if cfg.Season != "2024-2025" {
		t.Errorf("Season = %q, want 2024-2025", cfg.Season)
	}
	if !cfg.EnableTrends {
		t.Error("EnableTrends should be true when env is 1")
	}
}

func TestFromEnv_EnableTrends(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"0", false},
		{"", false},
		{"true", false},
		{" 1 ", true},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv(EnvEnableTrends, tt.value)
			cfg, err := FromEnv()
			if err != nil {
				t.Fatalf("FromEnv: %v", err)
			}
			if cfg.EnableTrends != tt.want {
				t.Errorf("EnableTrends = %v, want %v", cfg.EnableTrends, tt.want)
			}
		})
	}
}

func TestFromEnv_ExpandsReferences(t *testing.T) {
	t.Setenv("VAULT_OPENAI_KEY", "sk-test-123")
	t.Setenv(EnvOpenAIAPIKey, "${VAULT_OPENAI_KEY}")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test-123" {
		t.Errorf("OpenAIAPIKey = %q, want sk-test-123", cfg.OpenAIAPIKey)
	}
}

func TestFromEnv_MissingReferenceErrors(t *testing.T) {
	t.Setenv(EnvOddsAPIKey, "${NOT_SET_ANYWHERE_XYZ}")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for missing referenced variable")
	}
}

func TestAIAllowed(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		disableAI string
		want      bool
	}{
		{"key present", "sk-abc", "", true},
		{"key missing", "", "", false},
		{"key whitespace only", "   ", "", false},
		{"kill switch", "sk-abc", "1", false},
		{"kill switch off", "sk-abc", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOpenAIAPIKey, tt.key)
			t.Setenv(EnvDisableAI, tt.disableAI)
			if got := AIAllowed(); got != tt.want {
				t.Errorf("AIAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING}")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("expected missing var name in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if loc := cfg.Location(); loc.String() != "UTC" {
		t.Errorf("Location() = %s, want UTC", loc)
	}
}
