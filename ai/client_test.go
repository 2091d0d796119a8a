package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Jayprox/ai-agent-nba/narrative"
	"github.com/Jayprox/ai-agent-nba/source"
)

func testInputs() *narrative.Inputs {
	return &narrative.Inputs{
		DateGenerated: "2026-01-15 18:00 UTC",
		GamesToday: []source.Game{
			{ID: 1, HomeTeam: source.TeamRef{Name: "Lakers"}, AwayTeam: source.TeamRef{Name: "Celtics"}},
		},
		PlayerTrends: []source.PlayerTrend{},
		TeamTrends:   []source.TeamTrend{},
		PlayerProps:  []source.PlayerProp{},
		Odds:         &source.OddsBoard{Games: []source.GameOdds{}},
	}
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", req.Model)
		}
		if req.Temperature != 0.6 || req.MaxTokens != 900 {
			t.Errorf("temperature/max_tokens = %v/%d", req.Temperature, req.MaxTokens)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("messages = %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "Celtics @ Lakers") {
			t.Error("user prompt should contain the slate matchup")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": validSummaryJSON}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	s, err := c.Generate(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(s.MacroSummary) == 0 {
		t.Error("expected non-empty macro summary")
	}
}

func TestClient_GenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Generate(context.Background(), testInputs())
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
	if !strings.Contains(err.Error(), "openai API 429") {
		t.Errorf("err = %v", err)
	}
}

func TestClient_GenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := c.Generate(context.Background(), testInputs()); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestBuildSlateBlock_EmptySlate(t *testing.T) {
	in := testInputs()
	in.GamesToday = nil

	got := buildSlateBlock(in)
	want := "Today's NBA slate: 0 games returned from API-Basketball."
	if got != want {
		t.Errorf("buildSlateBlock = %q, want %q", got, want)
	}
}

func TestBuildCoverageBlock(t *testing.T) {
	got := buildCoverageBlock(testInputs())
	for _, want := range []string{
		"games_today_count: 1",
		"odds_games_count: 0",
		"player_trends_count: 0",
		"player_props_count: 0",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("coverage block missing %q:\n%s", want, got)
		}
	}
}
