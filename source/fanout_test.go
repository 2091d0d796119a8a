package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubGames struct {
	games []Game
	err   error
	delay time.Duration
	panic bool
}

func (s *stubGames) TodayGames(ctx context.Context) ([]Game, error) {
	if s.panic {
		panic("schedule decode blew up")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.games, s.err
}

type stubOdds struct {
	board *OddsBoard
	err   error
}

func (s *stubOdds) TodayOdds(ctx context.Context) (*OddsBoard, error) { return s.board, s.err }

type stubTrends struct {
	data *TrendsData
	err  error
}

func (s *stubTrends) Trends(ctx context.Context) (*TrendsData, error) { return s.data, s.err }

type stubProps struct {
	props []PlayerProp
	err   error
}

func (s *stubProps) PlayerProps(ctx context.Context) ([]PlayerProp, error) { return s.props, s.err }

func sampleGame() Game {
	return Game{
		ID:     101,
		Status: GameStatus{Short: "NS", Long: "Not Started"},
		HomeTeam: TeamRef{Name: "Boston Celtics"},
		AwayTeam: TeamRef{Name: "Denver Nuggets"},
	}
}

func TestCoordinator_AllSourcesSucceed(t *testing.T) {
	c := NewCoordinator(Fetchers{
		Games:  &stubGames{games: []Game{sampleGame()}},
		Odds:   &stubOdds{board: &OddsBoard{Games: []GameOdds{{HomeTeam: "Boston Celtics", AwayTeam: "Denver Nuggets"}}}},
		Trends: &stubTrends{data: &TrendsData{PlayerTrends: []PlayerTrend{{PlayerName: "Jayson Tatum"}}}},
		Props:  &stubProps{props: []PlayerProp{{PlayerName: "Nikola Jokic", Market: "player_points"}}},
	}, time.Second)

	res := c.Fetch(context.Background(), true)

	for name, errStr := range map[string]string{
		"games": res.GamesErr, "odds": res.OddsErr,
		"trends": res.TrendsErr, "props": res.PropsErr,
	} {
		if errStr != "" {
			t.Errorf("%s error = %q, want empty", name, errStr)
		}
	}
	if len(res.Games) != 1 || res.Odds == nil || res.Trends == nil || len(res.Props) != 1 {
		t.Errorf("unexpected results: %+v", res)
	}
	if res.Duration <= 0 {
		t.Error("Duration should be recorded")
	}
}

func TestCoordinator_OneSourceFailsOthersSurvive(t *testing.T) {
	c := NewCoordinator(Fetchers{
		Games: &stubGames{err: errors.New("upstream 502")},
		Odds:  &stubOdds{board: &OddsBoard{Games: []GameOdds{{}}}},
		Props: &stubProps{},
	}, time.Second)

	res := c.Fetch(context.Background(), false)

	if want := "games_today: upstream 502"; res.GamesErr != want {
		t.Errorf("GamesErr = %q, want %q", res.GamesErr, want)
	}
	if res.OddsErr != "" {
		t.Errorf("OddsErr = %q, want empty", res.OddsErr)
	}
	if res.Odds == nil || len(res.Odds.Games) != 1 {
		t.Error("odds result should survive a games failure")
	}
}

func TestCoordinator_PanicBecomesSoftError(t *testing.T) {
	c := NewCoordinator(Fetchers{
		Games: &stubGames{panic: true},
		Odds:  &stubOdds{},
		Props: &stubProps{},
	}, time.Second)

	res := c.Fetch(context.Background(), false)

	if !strings.HasPrefix(res.GamesErr, "games_today: panic: ") {
		t.Errorf("GamesErr = %q, want panic soft error", res.GamesErr)
	}
	if res.OddsErr != "" || res.PropsErr != "" {
		t.Errorf("other sources disturbed: odds=%q props=%q", res.OddsErr, res.PropsErr)
	}
}

func TestCoordinator_SlowSourceHitsDeadline(t *testing.T) {
	c := NewCoordinator(Fetchers{
		Games: &stubGames{delay: time.Second},
		Odds:  &stubOdds{},
		Props: &stubProps{},
	}, 50*time.Millisecond)

	start := time.Now()
	res := c.Fetch(context.Background(), false)

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Fetch took %v, deadline did not bound the wait", elapsed)
	}
	if !strings.HasPrefix(res.GamesErr, "games_today: ") {
		t.Errorf("GamesErr = %q, want deadline soft error", res.GamesErr)
	}
}

func TestCoordinator_TrendsSkippedWhenDisabled(t *testing.T) {
	c := NewCoordinator(Fetchers{
		Games:  &stubGames{},
		Odds:   &stubOdds{},
		Props:  &stubProps{},
		Trends: &stubTrends{err: errors.New("should never run")},
	}, time.Second)

	res := c.Fetch(context.Background(), false)
	if res.Trends != nil || res.TrendsErr != "" {
		t.Errorf("trends should be skipped: data=%v err=%q", res.Trends, res.TrendsErr)
	}
}

func TestCoordinator_NilFetcherReported(t *testing.T) {
	c := NewCoordinator(Fetchers{Odds: &stubOdds{}}, time.Second)

	res := c.Fetch(context.Background(), true)
	if want := "games_today: fetcher not configured"; res.GamesErr != want {
		t.Errorf("GamesErr = %q, want %q", res.GamesErr, want)
	}
	if want := "trends: fetcher not configured"; res.TrendsErr != want {
		t.Errorf("TrendsErr = %q, want %q", res.TrendsErr, want)
	}
}
