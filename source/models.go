package source

// TeamRef identifies one side of a matchup.
type TeamRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// GameStatus mirrors the schedule feed's status pair.
type GameStatus struct {
	Long  string `json:"long,omitempty"`
	Short string `json:"short,omitempty"`
}

// Label returns the short status, falling back to the long form, then
// to "Scheduled" when the feed supplied neither.
func (s GameStatus) Label() string {
	if s.Short != "" {
		return s.Short
	}
	if s.Long != "" {
		return s.Long
	}
	return "Scheduled"
}

// Game is one scheduled NBA game for the current window.
type Game struct {
	ID        int64      `json:"id"`
	Date      string     `json:"date,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`
	Venue     string     `json:"venue,omitempty"`
	Status    GameStatus `json:"status"`
	HomeTeam  TeamRef    `json:"home_team"`
	AwayTeam  TeamRef    `json:"away_team"`
}

// Matchup returns display names for both sides, with placeholders when
// the feed omitted a team name.
func (g Game) Matchup() (away, home string) {
	away, home = g.AwayTeam.Name, g.HomeTeam.Name
	if away == "" {
		away = "Away"
	}
	if home == "" {
		home = "Home"
	}
	return away, home
}

// Moneyline is the best available moneyline price for one team.
type Moneyline struct {
	Team      string  `json:"team"`
	Price     float64 `json:"price"`    // decimal odds
	American  int     `json:"american"` // converted American odds
	Bookmaker string  `json:"bookmaker"`
}

// GameOdds carries moneyline context for one game. The Moneyline map is
// keyed "home" and "away"; a missing key means no price was posted for
// that side.
type GameOdds struct {
	SportKey      string               `json:"sport_key,omitempty"`
	CommenceTime  string               `json:"commence_time,omitempty"`
	HomeTeam      string               `json:"home_team"`
	AwayTeam      string               `json:"away_team"`
	Moneyline     map[string]Moneyline `json:"moneyline"`
	AllBookmakers []string             `json:"all_bookmakers,omitempty"`
}

// OddsBoard is the odds feed's response for the current slate.
type OddsBoard struct {
	Date  string     `json:"date,omitempty"`
	Games []GameOdds `json:"games"`
}

// PlayerTrend is a recent-form signal for one player.
type PlayerTrend struct {
	PlayerName     string   `json:"player_name"`
	StatType       string   `json:"stat_type"`
	LastNGames     int      `json:"last_n_games"`
	Average        float64  `json:"average"`
	TrendDirection string   `json:"trend_direction"` // "up", "down", "neutral"
	Variance       *float64 `json:"variance,omitempty"`
	WeightedAvg    *float64 `json:"weighted_avg,omitempty"`
}

// TeamTrend is a recent-form signal for one team.
type TeamTrend struct {
	TeamName       string  `json:"team_name"`
	StatType       string  `json:"stat_type"`
	HomeAwaySplit  string  `json:"home_away_split,omitempty"`
	LastNGames     int     `json:"last_n_games"`
	Average        float64 `json:"average"`
	TrendDirection string  `json:"trend_direction"`
}

// TrendsData bundles both trend families from one fetch.
type TrendsData struct {
	DateGenerated string        `json:"date_generated"`
	PlayerTrends  []PlayerTrend `json:"player_trends"`
	TeamTrends    []TeamTrend   `json:"team_trends"`
}

// PlayerProp is one posted player market outcome, flattened for
// narrative grounding.
type PlayerProp struct {
	EventID      string   `json:"event_id"`
	Matchup      string   `json:"matchup,omitempty"`
	HomeTeam     string   `json:"home_team,omitempty"`
	AwayTeam     string   `json:"away_team,omitempty"`
	PlayerName   string   `json:"player_name"`
	Market       string   `json:"market"`
	Selection    string   `json:"selection,omitempty"`
	Line         *float64 `json:"line,omitempty"`
	Price        float64  `json:"price,omitempty"`
	Bookmaker    string   `json:"bookmaker,omitempty"`
	CommenceTime string   `json:"commence_time,omitempty"`
}
