package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Jayprox/ai-agent-nba/source"
)

// API-Basketball defaults.
const (
	DefaultAPISportsBaseURL = "https://v1.basketball.api-sports.io"
	DefaultSeason           = "2025-2026"
	DefaultTimezone         = "America/Los_Angeles"

	// NBALeagueID is API-Basketball's league id for the NBA.
	NBALeagueID = 12
)

// APISportsConfig configures the schedule provider.
type APISportsConfig struct {
	APIKey     string
	BaseURL    string // defaults to DefaultAPISportsBaseURL
	Season     string // defaults to DefaultSeason
	Timezone   string // affects game times only, defaults to DefaultTimezone
	HTTPClient *http.Client
	Clock      func() time.Time
}

// APISports fetches today's NBA schedule from API-Basketball.
type APISports struct {
	apiKey   string
	baseURL  string
	season   string
	timezone string
	client   *http.Client
	now      func() time.Time
}

var _ source.GamesFetcher = (*APISports)(nil)

// NewAPISports creates the schedule provider. The API key is required.
func NewAPISports(cfg APISportsConfig) (*APISports, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providers: API-Basketball key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPISportsBaseURL
	}
	if cfg.Season == "" {
		cfg.Season = DefaultSeason
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &APISports{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		season:   cfg.Season,
		timezone: cfg.Timezone,
		client:   cfg.HTTPClient,
		now:      cfg.Clock,
	}, nil
}

// apisportsEnvelope is the standard API-Basketball response wrapper:
// {"get": ..., "parameters": ..., "errors": [], "results": N, "response": [...]}
type apisportsEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response []apisportsGame `json:"response"`
}

type apisportsGame struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
	Timezone  string `json:"timezone"`
	Venue     string `json:"venue"`
	Status    struct {
		Long  string `json:"long"`
		Short string `json:"short"`
	} `json:"status"`
	Teams struct {
		Home apisportsTeam `json:"home"`
		Away apisportsTeam `json:"away"`
	} `json:"teams"`
}

type apisportsTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// TodayGames fetches the NBA schedule for today's UTC date. The
// configured timezone shifts displayed game times, not the date window.
func (a *APISports) TodayGames(ctx context.Context) ([]source.Game, error) {
	q := url.Values{}
	q.Set("league", strconv.Itoa(NBALeagueID))
	q.Set("season", a.season)
	q.Set("date", a.now().UTC().Format("2006-01-02"))
	q.Set("timezone", a.timezone)

	var envelope apisportsEnvelope
	if err := a.getJSON(ctx, "/games", q, &envelope); err != nil {
		return nil, err
	}

	games := make([]source.Game, 0, len(envelope.Response))
	for _, g := range envelope.Response {
		games = append(games, source.Game{
			ID:        g.ID,
			Date:      g.Date,
			Timestamp: g.Timestamp,
			Timezone:  g.Timezone,
			Venue:     g.Venue,
			Status: source.GameStatus{
				Long:  g.Status.Long,
				Short: g.Status.Short,
			},
			HomeTeam: source.TeamRef{ID: g.Teams.Home.ID, Name: g.Teams.Home.Name, Logo: g.Teams.Home.Logo},
			AwayTeam: source.TeamRef{ID: g.Teams.Away.ID, Name: g.Teams.Away.Name, Logo: g.Teams.Away.Logo},
		})
	}
	return games, nil
}

func (a *APISports) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	// API-Basketball accepts both header styles; send both like the docs
	// suggest so the provider works behind RapidAPI too.
	req.Header.Set("x-apisports-key", a.apiKey)
	req.Header.Set("x-rapidapi-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("api-basketball: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api-basketball: HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api-basketball: decode: %w", err)
	}
	return nil
}
