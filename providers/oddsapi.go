package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Jayprox/ai-agent-nba/source"
)

// The Odds API defaults.
const (
	DefaultOddsBaseURL    = "https://api.the-odds-api.com"
	DefaultRegions        = "us"
	DefaultBookmakers     = "draftkings,fanduel"
	DefaultPropsMarkets   = "player_points,player_rebounds,player_assists"
	DefaultMaxPropEvents  = 6
	DefaultMaxTotalProps  = 30
	oddsSport             = "basketball_nba"
	moneylineMarket       = "h2h"
	americanOddsClamp     = 100000
)

// OddsAPIConfig configures the odds and player-props provider.
type OddsAPIConfig struct {
	APIKey        string
	BaseURL       string // defaults to DefaultOddsBaseURL
	Regions       string // defaults to DefaultRegions
	Bookmakers    string // defaults to DefaultBookmakers
	PropsMarkets  string // defaults to DefaultPropsMarkets
	Timezone      string // local date used for event filtering, defaults to DefaultTimezone
	MaxPropEvents int    // defaults to DefaultMaxPropEvents
	MaxTotalProps int    // defaults to DefaultMaxTotalProps
	HTTPClient    *http.Client
	Clock         func() time.Time
}

// OddsAPI fetches moneyline boards and player props from The Odds API.
type OddsAPI struct {
	apiKey        string
	baseURL       string
	regions       string
	bookmakers    string
	propsMarkets  string
	timezone      string
	maxPropEvents int
	maxTotalProps int
	client        *http.Client
	now           func() time.Time
}

var (
	_ source.OddsFetcher  = (*OddsAPI)(nil)
	_ source.PropsFetcher = (*OddsAPI)(nil)
)

// NewOddsAPI creates the odds provider. The API key is required.
func NewOddsAPI(cfg OddsAPIConfig) (*OddsAPI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providers: Odds API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOddsBaseURL
	}
	if cfg.Regions == "" {
		cfg.Regions = DefaultRegions
	}
	if cfg.Bookmakers == "" {
		cfg.Bookmakers = DefaultBookmakers
	}
	if cfg.PropsMarkets == "" {
		cfg.PropsMarkets = DefaultPropsMarkets
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.MaxPropEvents <= 0 {
		cfg.MaxPropEvents = DefaultMaxPropEvents
	}
	if cfg.MaxTotalProps <= 0 {
		cfg.MaxTotalProps = DefaultMaxTotalProps
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &OddsAPI{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		regions:       cfg.Regions,
		bookmakers:    cfg.Bookmakers,
		propsMarkets:  cfg.PropsMarkets,
		timezone:      cfg.Timezone,
		maxPropEvents: cfg.MaxPropEvents,
		maxTotalProps: cfg.MaxTotalProps,
		client:        cfg.HTTPClient,
		now:           cfg.Clock,
	}, nil
}

// ToAmerican converts decimal odds to American odds. Degenerate prices
// at or below 1.0 pin to the negative clamp; everything else is clamped
// to +/-100000.
func ToAmerican(decimal float64) int {
	if decimal <= 1.0 {
		return -americanOddsClamp
	}
	var val float64
	if decimal >= 2.0 {
		val = (decimal - 1.0) * 100.0
	} else {
		val = -100.0 / (decimal - 1.0)
	}
	val = math.Max(math.Min(val, americanOddsClamp), -americanOddsClamp)
	return int(math.Round(val))
}

type oddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point"`
}

// TodayOdds fetches the moneyline board, keeping the best available
// price per side across the configured bookmakers.
func (o *OddsAPI) TodayOdds(ctx context.Context) (*source.OddsBoard, error) {
	q := url.Values{}
	q.Set("apiKey", o.apiKey)
	q.Set("regions", o.regions)
	q.Set("markets", moneylineMarket)
	q.Set("oddsFormat", "decimal")
	q.Set("bookmakers", o.bookmakers)

	var events []oddsEvent
	if err := o.getJSON(ctx, "/v4/sports/"+oddsSport+"/odds", q, &events); err != nil {
		return nil, err
	}

	board := &source.OddsBoard{
		Date:  o.localDate(o.now()),
		Games: []source.GameOdds{},
	}

	for _, event := range events {
		if event.HomeTeam == "" || event.AwayTeam == "" || len(event.Bookmakers) == 0 {
			continue
		}

		var bestHome, bestAway *source.Moneyline
		bookmakerSet := map[string]bool{}

		for _, bm := range event.Bookmakers {
			if bm.Key != "" {
				bookmakerSet[bm.Key] = true
			}
			for _, market := range bm.Markets {
				if market.Key != moneylineMarket {
					continue
				}
				for _, outcome := range market.Outcomes {
					if outcome.Price <= 0 {
						continue
					}
					ml := &source.Moneyline{
						Team:      outcome.Name,
						Price:     outcome.Price,
						American:  ToAmerican(outcome.Price),
						Bookmaker: bm.Key,
					}
					switch outcome.Name {
					case event.HomeTeam:
						if bestHome == nil || ml.Price > bestHome.Price {
							bestHome = ml
						}
					case event.AwayTeam:
						if bestAway == nil || ml.Price > bestAway.Price {
							bestAway = ml
						}
					}
				}
			}
		}

		if bestHome == nil || bestAway == nil {
			continue
		}

		all := make([]string, 0, len(bookmakerSet))
		for k := range bookmakerSet {
			all = append(all, k)
		}
		sort.Strings(all)

		board.Games = append(board.Games, source.GameOdds{
			SportKey:      event.SportKey,
			CommenceTime:  event.CommenceTime,
			HomeTeam:      event.HomeTeam,
			AwayTeam:      event.AwayTeam,
			Moneyline:     map[string]source.Moneyline{"home": *bestHome, "away": *bestAway},
			AllBookmakers: all,
		})
	}

	return board, nil
}

// PlayerProps fetches posted player markets for today's events,
// bounded by the event and record caps to keep quota use small.
func (o *OddsAPI) PlayerProps(ctx context.Context) ([]source.PlayerProp, error) {
	q := url.Values{}
	q.Set("apiKey", o.apiKey)

	var events []oddsEvent
	if err := o.getJSON(ctx, "/v4/sports/"+oddsSport+"/events", q, &events); err != nil {
		return nil, err
	}

	today := o.localDate(o.now())
	var todayEvents []oddsEvent
	for _, event := range events {
		if o.eventDate(event.CommenceTime) == today {
			todayEvents = append(todayEvents, event)
		}
	}
	// If the strict local-date filter yields nothing, fall back to the
	// available events. This avoids timezone boundary misses while the
	// caps keep the request volume small.
	candidates := todayEvents
	if len(candidates) == 0 {
		candidates = events
	}
	if len(candidates) > o.maxPropEvents {
		candidates = candidates[:o.maxPropEvents]
	}

	props := []source.PlayerProp{}
	for _, event := range candidates {
		if event.ID == "" {
			continue
		}

		oq := url.Values{}
		oq.Set("apiKey", o.apiKey)
		oq.Set("regions", o.regions)
		oq.Set("markets", o.propsMarkets)
		oq.Set("oddsFormat", "decimal")
		oq.Set("bookmakers", o.bookmakers)

		var eventOdds oddsEvent
		if err := o.getJSON(ctx, "/v4/sports/"+oddsSport+"/events/"+event.ID+"/odds", oq, &eventOdds); err != nil {
			return nil, err
		}

		home := firstNonEmpty(eventOdds.HomeTeam, event.HomeTeam)
		away := firstNonEmpty(eventOdds.AwayTeam, event.AwayTeam)
		commence := firstNonEmpty(eventOdds.CommenceTime, event.CommenceTime)
		matchup := ""
		if home != "" && away != "" {
			matchup = away + " @ " + home
		}

		for _, bm := range eventOdds.Bookmakers {
			for _, market := range bm.Markets {
				if !strings.HasPrefix(market.Key, "player_") {
					continue
				}
				for _, outcome := range market.Outcomes {
					player := firstNonEmpty(outcome.Description, outcome.Name)
					if player == "" {
						continue
					}
					props = append(props, source.PlayerProp{
						EventID:      event.ID,
						Matchup:      matchup,
						HomeTeam:     home,
						AwayTeam:     away,
						PlayerName:   player,
						Market:       market.Key,
						Selection:    outcome.Name,
						Line:         outcome.Point,
						Price:        outcome.Price,
						Bookmaker:    bm.Key,
						CommenceTime: commence,
					})
					if len(props) >= o.maxTotalProps {
						return props, nil
					}
				}
			}
		}
	}

	return props, nil
}

func (o *OddsAPI) localDate(t time.Time) string {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

func (o *OddsAPI) eventDate(commenceTime string) string {
	if commenceTime == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, commenceTime)
	if err != nil {
		return ""
	}
	return o.localDate(t)
}

func (o *OddsAPI) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("odds-api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odds-api: HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("odds-api: decode: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
