package source

// Status classifies how a source contributed to a response.
type Status string

const (
	StatusOK       Status = "ok"       // fetched, at least one record
	StatusNoData   Status = "no_data"  // fetched, empty
	StatusError    Status = "error"    // fetch failed
	StatusDisabled Status = "disabled" // intentionally skipped
)

// SourceStatus is the per-source entry in response metadata.
type SourceStatus struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
	Error  string `json:"error"`
}

// Counts summarizes record volume per source for response metadata.
func (r *Results) Counts() map[string]int {
	oddsGames := 0
	if r.Odds != nil {
		oddsGames = len(r.Odds.Games)
	}
	playerTrends, teamTrends := 0, 0
	if r.Trends != nil {
		playerTrends = len(r.Trends.PlayerTrends)
		teamTrends = len(r.Trends.TeamTrends)
	}
	return map[string]int{
		"games_today":   len(r.Games),
		"odds_games":    oddsGames,
		"player_trends": playerTrends,
		"team_trends":   teamTrends,
		"player_props":  len(r.Props),
	}
}

// BuildStatus derives per-source status blocks from fan-out results.
// trendsEnabled distinguishes a disabled trends feed from a broken one:
// a trends error with trends disabled reports "disabled", not "error".
func (r *Results) BuildStatus(trendsEnabled bool) map[string]SourceStatus {
	counts := r.Counts()

	trendsCount := counts["player_trends"] + counts["team_trends"]
	trendsStatus := StatusOK
	switch {
	case r.TrendsErr != "":
		if trendsEnabled {
			trendsStatus = StatusError
		} else {
			trendsStatus = StatusDisabled
		}
	case trendsCount == 0:
		trendsStatus = StatusNoData
	}

	return map[string]SourceStatus{
		LabelGames:  fetchedStatus(counts["games_today"], r.GamesErr),
		LabelOdds:   fetchedStatus(counts["odds_games"], r.OddsErr),
		LabelTrends: {Status: trendsStatus, Count: trendsCount, Error: r.TrendsErr},
		LabelProps:  fetchedStatus(counts["player_props"], r.PropsErr),
	}
}

func fetchedStatus(count int, errStr string) SourceStatus {
	s := StatusOK
	switch {
	case errStr != "":
		s = StatusError
	case count == 0:
		s = StatusNoData
	}
	return SourceStatus{Status: s, Count: count, Error: errStr}
}
