package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const apisportsGamesResponse = `{
  "get": "games",
  "parameters": {"league": "12", "season": "2025-2026", "date": "2026-01-15"},
  "errors": [],
  "results": 1,
  "response": [
    {
      "id": 414321,
      "date": "2026-01-15T19:00:00-08:00",
      "timestamp": 1768532400,
      "timezone": "America/Los_Angeles",
      "venue": "Crypto.com Arena",
      "status": {"long": "Not Started", "short": "NS"},
      "teams": {
        "home": {"id": 145, "name": "Los Angeles Lakers", "logo": "https://example.com/lal.png"},
        "away": {"id": 133, "name": "Boston Celtics", "logo": "https://example.com/bos.png"}
      }
    }
  ]
}`

func TestAPISports_TodayGames(t *testing.T) {
	fixed := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-apisports-key"); got != "test-key" {
			t.Errorf("x-apisports-key = %q, want test-key", got)
		}
		q := r.URL.Query()
		if got := q.Get("league"); got != "12" {
			t.Errorf("league = %q, want 12", got)
		}
		if got := q.Get("season"); got != "2025-2026" {
			t.Errorf("season = %q, want 2025-2026", got)
		}
		if got := q.Get("date"); got != "2026-01-15" {
			t.Errorf("date = %q, want 2026-01-15", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(apisportsGamesResponse))
	}))
	defer srv.Close()

	a, err := NewAPISports(APISportsConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Clock:   func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("NewAPISports: %v", err)
	}

	games, err := a.TodayGames(context.Background())
	if err != nil {
		t.Fatalf("TodayGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	g := games[0]
	if g.ID != 414321 {
		t.Errorf("ID = %d, want 414321", g.ID)
	}
	if g.HomeTeam.Name != "Los Angeles Lakers" || g.AwayTeam.Name != "Boston Celtics" {
		t.Errorf("teams = %q vs %q", g.AwayTeam.Name, g.HomeTeam.Name)
	}
	if g.Status.Short != "NS" || g.Status.Label() != "NS" {
		t.Errorf("status = %+v", g.Status)
	}
	if g.Venue != "Crypto.com Arena" {
		t.Errorf("venue = %q", g.Venue)
	}
}

func TestAPISports_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a, err := NewAPISports(APISportsConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAPISports: %v", err)
	}

	if _, err := a.TodayGames(context.Background()); err == nil {
		t.Error("expected error for HTTP 429, got nil")
	}
}

func TestNewAPISports_RequiresKey(t *testing.T) {
	if _, err := NewAPISports(APISportsConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
}
