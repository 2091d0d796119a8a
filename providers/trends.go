package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Jayprox/ai-agent-nba/cache"
	"github.com/Jayprox/ai-agent-nba/source"
)

// File-backed trends defaults.
const (
	DefaultTrendsMaxPlayers = 3
	DefaultTrendsLastNGames = 5
	DefaultTrendsTTL        = 5 * time.Minute

	trendsCacheKey = "trends:file"
)

// FileTrendsConfig configures the file-backed trends provider.
type FileTrendsConfig struct {
	Path       string        // JSON file with player performance rows, required
	MaxPlayers int           // defaults to DefaultTrendsMaxPlayers
	LastNGames int           // defaults to DefaultTrendsLastNGames
	TTL        time.Duration // defaults to DefaultTrendsTTL
	Clock      func() time.Time
}

// FileTrends reads player performance rows from a local JSON file and
// derives points trends from them. Parsed results are cached so a hot
// narrative path does not reread the file on every request.
type FileTrends struct {
	path       string
	maxPlayers int
	lastN      int
	ttl        time.Duration
	store      *cache.MemoryStore
	now        func() time.Time
}

var _ source.TrendsFetcher = (*FileTrends)(nil)

// NewFileTrends creates the provider. The data path is required.
func NewFileTrends(cfg FileTrendsConfig) (*FileTrends, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("providers: trends data path is required")
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultTrendsMaxPlayers
	}
	if cfg.LastNGames <= 0 {
		cfg.LastNGames = DefaultTrendsLastNGames
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTrendsTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &FileTrends{
		path:       cfg.Path,
		maxPlayers: cfg.MaxPlayers,
		lastN:      cfg.LastNGames,
		ttl:        cfg.TTL,
		store:      cache.NewMemoryStore(),
		now:        cfg.Clock,
	}, nil
}

// trendRow tolerates the field spellings seen across exported
// performance files.
type trendRow struct {
	PlayerName   string   `json:"player_name"`
	Name         string   `json:"name"`
	PPG          *float64 `json:"ppg"`
	Points       *float64 `json:"points"`
	Avg          *float64 `json:"avg"`
	SeasonPPG    *float64 `json:"season_ppg"`
	SeasonPoints *float64 `json:"season_points"`
	Trend        string   `json:"trend"`
	TrendDir     string   `json:"trend_direction"`
}

// Trends returns points trends for the top players in the data file.
func (f *FileTrends) Trends(ctx context.Context) (*source.TrendsData, error) {
	if entry, ok := f.store.Get(ctx, trendsCacheKey); ok {
		if data, ok := entry.Payload.(*source.TrendsData); ok {
			return data, nil
		}
	}

	rows, err := f.loadRows()
	if err != nil {
		return nil, err
	}

	data := &source.TrendsData{
		DateGenerated: f.now().UTC().Format("2006-01-02"),
		PlayerTrends:  f.buildPlayerTrends(rows),
		TeamTrends:    []source.TeamTrend{},
	}

	if err := f.store.Set(ctx, trendsCacheKey, data, f.ttl); err != nil {
		return nil, err
	}
	return data, nil
}

// loadRows accepts either a bare JSON list of rows or an object wrapping
// the list under "players", "data", or "results".
func (f *FileTrends) loadRows() ([]trendRow, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("trends: read %s: %w", f.path, err)
	}

	var rows []trendRow
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("trends: parse %s: %w", f.path, err)
	}
	for _, key := range []string{"players", "data", "results"} {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &rows); err != nil {
			return nil, fmt.Errorf("trends: parse %s[%q]: %w", f.path, key, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("trends: %s has no player rows", f.path)
}

func (f *FileTrends) buildPlayerTrends(rows []trendRow) []source.PlayerTrend {
	trends := make([]source.PlayerTrend, 0, len(rows))
	for _, row := range rows {
		name := firstNonEmpty(row.PlayerName, row.Name)
		avg := firstFloat(row.PPG, row.Points, row.Avg)
		if name == "" || avg == nil {
			continue
		}

		trend := source.PlayerTrend{
			PlayerName:     name,
			StatType:       "points",
			LastNGames:     f.lastN,
			Average:        *avg,
			TrendDirection: normalizeTrendDirection(firstNonEmpty(row.Trend, row.TrendDir)),
		}
		if season := firstFloat(row.SeasonPPG, row.SeasonPoints); season != nil {
			variance := math.Abs(*avg - *season)
			trend.Variance = &variance
		}
		trends = append(trends, trend)
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].Average > trends[j].Average
	})
	if len(trends) > f.maxPlayers {
		trends = trends[:f.maxPlayers]
	}
	return trends
}

// normalizeTrendDirection maps the spellings seen in exported files onto
// the canonical up/down/neutral values.
func normalizeTrendDirection(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up", "uparrow", "rising", "increase", "increasing":
		return "up"
	case "down", "downarrow", "falling", "decrease", "decreasing":
		return "down"
	default:
		return "neutral"
	}
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
