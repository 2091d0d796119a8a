package source

import "context"

// GamesFetcher returns today's scheduled games.
//
// Contract: implementations respect ctx cancellation, return a nil or
// empty slice (not an error) when the slate is simply empty, and never
// retain the returned slice after returning it.
type GamesFetcher interface {
	TodayGames(ctx context.Context) ([]Game, error)
}

// OddsFetcher returns the moneyline board for today's slate.
//
// Contract: a board with zero games is a valid "no data" result, not an
// error.
type OddsFetcher interface {
	TodayOdds(ctx context.Context) (*OddsBoard, error)
}

// TrendsFetcher returns player and team trend signals.
type TrendsFetcher interface {
	Trends(ctx context.Context) (*TrendsData, error)
}

// PropsFetcher returns posted player prop outcomes for today's events.
type PropsFetcher interface {
	PlayerProps(ctx context.Context) ([]PlayerProp, error)
}

// Fetchers wires the four feeds into one value for the coordinator. Any
// field may be nil; a nil feed reports "fetcher not configured" instead
// of being fetched. Trends is additionally subject to the caller's
// enable flag.
type Fetchers struct {
	Games  GamesFetcher
	Odds   OddsFetcher
	Trends TrendsFetcher
	Props  PropsFetcher
}
