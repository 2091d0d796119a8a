// Command nba-narrative serves the NBA narrative API.
//
// Configuration is environment-driven; see the config package for the
// recognized variables. The service starts with whatever sources are
// configured and reports the rest as soft errors per request.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jayprox/ai-agent-nba/ai"
	"github.com/Jayprox/ai-agent-nba/api"
	"github.com/Jayprox/ai-agent-nba/config"
	"github.com/Jayprox/ai-agent-nba/markdown"
	"github.com/Jayprox/ai-agent-nba/narrative"
	"github.com/Jayprox/ai-agent-nba/observe"
	"github.com/Jayprox/ai-agent-nba/providers"
	"github.com/Jayprox/ai-agent-nba/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("nba-narrative: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "nba-narrative",
		Version:     "2.7",
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	log := obs.Logger()

	fetchers, err := buildFetchers(ctx, cfg, log)
	if err != nil {
		return err
	}

	var generator narrative.Generator
	if cfg.OpenAIAPIKey != "" {
		client, err := ai.NewClient(ai.ClientConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		if err != nil {
			return err
		}
		generator = client
	}

	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return err
	}

	orch := narrative.New(narrative.Config{
		Fetchers:      fetchers,
		Generator:     generator,
		AIAllowed:     config.AIAllowed,
		TrendsDefault: cfg.EnableTrends,
		Render:        markdown.Render,
		Logger:        log,
		Metrics:       metrics,
		Tracer:        observe.NewTracer(obs.Tracer()),
	})

	mux := http.NewServeMux()
	api.RegisterHandlers(mux, api.NewHandler(orch))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server.listening", observe.Field{Key: "addr", Value: cfg.HTTPAddr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info(context.Background(), "server.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildFetchers wires whichever data sources have keys configured. An
// unconfigured source stays nil and surfaces as a per-request soft
// error instead of blocking startup.
func buildFetchers(ctx context.Context, cfg *config.Config, log observe.Logger) (source.Fetchers, error) {
	var fetchers source.Fetchers

	if cfg.APISportsKey != "" {
		games, err := providers.NewAPISports(providers.APISportsConfig{
			APIKey:   cfg.APISportsKey,
			Season:   cfg.Season,
			Timezone: cfg.Timezone,
		})
		if err != nil {
			return fetchers, err
		}
		fetchers.Games = games
	} else {
		log.Warn(ctx, "source.games_unconfigured")
	}

	if cfg.OddsAPIKey != "" {
		odds, err := providers.NewOddsAPI(providers.OddsAPIConfig{
			APIKey:   cfg.OddsAPIKey,
			Timezone: cfg.Timezone,
		})
		if err != nil {
			return fetchers, err
		}
		fetchers.Odds = odds
		fetchers.Props = odds
	} else {
		log.Warn(ctx, "source.odds_unconfigured")
	}

	if cfg.TrendsPath != "" {
		trends, err := providers.NewFileTrends(providers.FileTrendsConfig{Path: cfg.TrendsPath})
		if err != nil {
			return fetchers, err
		}
		fetchers.Trends = trends
	} else {
		log.Warn(ctx, "source.trends_unconfigured")
	}

	return fetchers, nil
}
