package source

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultFetchTimeout bounds the whole fan-out. A narrative request
// should degrade to partial data rather than wait on a slow upstream.
const DefaultFetchTimeout = 10 * time.Second

// Soft-error labels, one per feed. These strings prefix the per-source
// error messages and double as keys in the response's soft_errors map.
const (
	LabelGames  = "games_today"
	LabelOdds   = "odds"
	LabelTrends = "trends"
	LabelProps  = "player_props"
)

// Results carries the outcome of one fan-out. Each source has its own
// error string; an empty string means the fetch succeeded (possibly
// with no data). Trends stays nil with an empty TrendsErr when the
// caller asked to skip trends.
type Results struct {
	Games    []Game
	GamesErr string

	Odds    *OddsBoard
	OddsErr string

	Trends    *TrendsData
	TrendsErr string

	Props    []PlayerProp
	PropsErr string

	Duration time.Duration
}

// Coordinator fetches all configured feeds concurrently. A panic or
// error in one feed is captured as that feed's error string and never
// disturbs the others.
type Coordinator struct {
	fetchers Fetchers
	timeout  time.Duration
}

// NewCoordinator creates a Coordinator over the given feeds. A
// non-positive timeout falls back to DefaultFetchTimeout.
func NewCoordinator(f Fetchers, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Coordinator{fetchers: f, timeout: timeout}
}

// Fetch runs all feeds in parallel and waits for every one to resolve
// or for the shared deadline to pass. includeTrends gates the trends
// feed; when false the feed is skipped entirely and Results.Trends is
// nil with no error.
func (c *Coordinator) Fetch(ctx context.Context, includeTrends bool) *Results {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := &Results{}
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if c.fetchers.Games == nil {
			res.GamesErr = notConfigured(LabelGames)
			return
		}
		res.Games, res.GamesErr = safeFetch(ctx, LabelGames, c.fetchers.Games.TodayGames)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if c.fetchers.Odds == nil {
			res.OddsErr = notConfigured(LabelOdds)
			return
		}
		res.Odds, res.OddsErr = safeFetch(ctx, LabelOdds, c.fetchers.Odds.TodayOdds)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if c.fetchers.Props == nil {
			res.PropsErr = notConfigured(LabelProps)
			return
		}
		res.Props, res.PropsErr = safeFetch(ctx, LabelProps, c.fetchers.Props.PlayerProps)
	}()

	if includeTrends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.fetchers.Trends == nil {
				res.TrendsErr = notConfigured(LabelTrends)
				return
			}
			res.Trends, res.TrendsErr = safeFetch(ctx, LabelTrends, c.fetchers.Trends.Trends)
		}()
	}

	wg.Wait()
	res.Duration = time.Since(start)
	return res
}

func notConfigured(label string) string {
	return label + ": fetcher not configured"
}

// safeFetch runs fn in its own goroutine so a panic or deadline in one
// feed cannot take down the request. The returned error string is empty
// on success and "<label>: <cause>" otherwise.
func safeFetch[T any](ctx context.Context, label string, fn func(context.Context) (T, error)) (T, string) {
	type outcome struct {
		v   T
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- outcome{zero, fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- outcome{v, err}
	}()

	var zero T
	select {
	case out := <-ch:
		if out.err != nil {
			return zero, fmt.Sprintf("%s: %v", label, out.err)
		}
		return out.v, ""
	case <-ctx.Done():
		return zero, fmt.Sprintf("%s: %v", label, ctx.Err())
	}
}
