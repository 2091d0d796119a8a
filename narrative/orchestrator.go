package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Jayprox/ai-agent-nba/cache"
	"github.com/Jayprox/ai-agent-nba/observe"
	"github.com/Jayprox/ai-agent-nba/source"
)

// DefaultFlightWait bounds how long a request waits on another
// request's in-flight regeneration before degrading to the fallback
// envelope.
const DefaultFlightWait = 15 * time.Second

// RenderFunc renders a summary to markdown. Injected so this package
// does not depend on the renderer.
type RenderFunc func(s *Summary, compact bool) string

// Request carries the per-request parameters for both endpoints.
type Request struct {
	Mode     string // "template" (default) or "ai"
	CacheTTL int    // requested cache lifetime in seconds, capped by policy
	Format   string // "markdown" embeds rendered markdown (today endpoint)
	Trends   *bool  // nil means use the server default
	Compact  bool   // compact markdown form (markdown endpoint)
}

// Config wires an Orchestrator. Zero values get safe defaults; only
// Fetchers has no useful default.
type Config struct {
	Store         cache.Store
	Policy        cache.Policy
	Fetchers      source.Fetchers
	FetchTimeout  time.Duration
	Generator     Generator
	AIAllowed     func() bool // resolved fresh per request
	TrendsDefault bool
	Render        RenderFunc
	FlightWait    time.Duration
	Logger        observe.Logger
	Metrics       observe.Metrics
	Tracer        observe.Tracer
	Clock         func() time.Time
}

// Orchestrator serves cached, soft-error-tolerant narrative envelopes.
type Orchestrator struct {
	store         cache.Store
	policy        cache.Policy
	coord         *source.Coordinator
	gate          Gate
	aiAllowed     func() bool
	trendsDefault bool
	trendsWired   bool
	render        RenderFunc
	flight        *cache.Flight
	flightWait    time.Duration
	log           observe.Logger
	metrics       observe.Metrics
	mw            *observe.Middleware
	now           func() time.Time
}

// New creates an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.Store == nil {
		cfg.Store = cache.NewMemoryStore()
	}
	if cfg.Policy.MaxTTL == 0 {
		cfg.Policy = cache.DefaultPolicy()
	}
	if cfg.AIAllowed == nil {
		cfg.AIAllowed = func() bool { return false }
	}
	if cfg.FlightWait <= 0 {
		cfg.FlightWait = DefaultFlightWait
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NewNopMetrics()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observe.NewNopTracer()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Orchestrator{
		store:         cfg.Store,
		policy:        cfg.Policy,
		coord:         source.NewCoordinator(cfg.Fetchers, cfg.FetchTimeout),
		gate:          Gate{Generator: cfg.Generator, Clock: cfg.Clock},
		aiAllowed:     cfg.AIAllowed,
		trendsDefault: cfg.TrendsDefault,
		trendsWired:   cfg.Fetchers.Trends != nil,
		render:        cfg.Render,
		flight:        cache.NewFlight(),
		flightWait:    cfg.FlightWait,
		log:           cfg.Logger,
		metrics:       cfg.Metrics,
		mw:            observe.NewMiddleware(cfg.Tracer, cfg.Metrics, cfg.Logger),
		now:           cfg.Clock,
	}
}

// Today serves the narrative envelope for today's slate.
func (o *Orchestrator) Today(ctx context.Context, req Request) *Envelope {
	req.Compact = false
	return o.handle(ctx, "today", req)
}

// Markdown serves the envelope with a rendered markdown field. It has
// its own cache partition because the compact flag changes the body.
func (o *Orchestrator) Markdown(ctx context.Context, req Request) *Envelope {
	req.Format = "markdown"
	return o.handle(ctx, "markdown", req)
}

// handle routes every request through the observability middleware so
// each one gets a span, a duration sample, and a completion log line.
func (o *Orchestrator) handle(ctx context.Context, scope string, req Request) *Envelope {
	start := o.now()
	meta := observe.RequestMeta{
		ID:       shortRequestID(),
		Endpoint: scope,
		Mode:     NormalizeMode(req.Mode),
	}

	fn := o.mw.Wrap(func(ctx context.Context, meta observe.RequestMeta) (any, error) {
		return o.serve(ctx, meta, req, start)
	})
	v, _ := fn(ctx, meta)
	return v.(*Envelope)
}

// serve runs one request: cache probe, flight-guarded regeneration, and
// the shared-result overlay. A flight-wait timeout returns the fallback
// envelope together with the timeout error so the middleware records
// the degradation; the envelope is still served.
func (o *Orchestrator) serve(ctx context.Context, meta observe.RequestMeta, req Request, start time.Time) (*Envelope, error) {
	requestID := meta.ID
	scope := meta.Endpoint
	mode := meta.Mode
	log := o.log.WithRequest(meta)

	ttl := o.policy.EffectiveTTL(time.Duration(req.CacheTTL) * time.Second)
	ttlSec := int(ttl / time.Second)

	log.Info(ctx, "narrative.request_start",
		observe.Field{Key: "mode", Value: mode},
		observe.Field{Key: "trends", Value: req.Trends},
		observe.Field{Key: "cache_ttl", Value: ttlSec},
	)

	effectiveTrends := o.trendsDefault
	if req.Trends != nil {
		effectiveTrends = *req.Trends
	}

	// AI allowance is resolved fresh for every request: key rotation or
	// a kill switch must take effect without restart.
	aiAllowed := o.aiAllowed()
	if mode == ModeAI && !aiAllowed {
		log.Warn(ctx, "narrative.ai_blocked",
			observe.Field{Key: "reason", Value: "OPENAI_API_KEY missing or DISABLE_AI=1"})
	} else {
		log.Info(ctx, "narrative.ai_gating", observe.Field{Key: "ai_allowed", Value: aiAllowed})
	}

	key := cache.BuildKey(cache.KeyParams{
		Mode:            mode,
		TTLSeconds:      ttlSec,
		Scope:           scope,
		Format:          req.Format,
		TrendsOverride:  req.Trends,
		EffectiveTrends: effectiveTrends,
		AIAllowed:       aiAllowed,
		Compact:         req.Compact,
	})

	if entry, ok := o.store.Get(ctx, key); ok {
		if env, isEnv := entry.Payload.(*Envelope); isEnv {
			expiresIn := entry.ExpiresIn(o.now())
			log.Info(ctx, "narrative.cache_hit",
				observe.Field{Key: "cache_key", Value: key},
				observe.Field{Key: "expires_in_s", Value: round2(expiresIn.Seconds())},
			)
			o.metrics.RecordCacheEvent(ctx, meta, "hit")
			return overlayCacheHit(env, requestID, key, ttlSec, expiresIn), nil
		}
	}

	log.Info(ctx, "narrative.cache_miss",
		observe.Field{Key: "cache_key", Value: key},
		observe.Field{Key: "will_cache", Value: ttlSec > 0},
	)
	o.metrics.RecordCacheEvent(ctx, meta, "miss")

	// The regeneration runs detached from this request's cancellation:
	// other waiters on the same flight still need the result.
	workCtx := context.WithoutCancel(ctx)
	flightCtx, cancel := context.WithTimeout(ctx, o.flightWait)
	defer cancel()

	// The store write happens inside the flight function because its
	// executor is the flight leader. Checking the Shared flag instead
	// would skip the write whenever the flight coalesced: Shared is true
	// for every caller of a shared flight, the executor included.
	v, shared, err := o.flight.Do(flightCtx, key, func() (any, error) {
		env := o.build(workCtx, buildParams{
			requestID:       requestID,
			scope:           scope,
			mode:            mode,
			format:          req.Format,
			compact:         req.Compact,
			trendsOverride:  req.Trends,
			effectiveTrends: effectiveTrends,
			aiAllowed:       aiAllowed,
			ttlSec:          ttlSec,
			key:             key,
			start:           start,
			meta:            meta,
			log:             log,
		})
		if ttlSec > 0 {
			if err := o.store.Set(workCtx, key, env, ttl); err != nil {
				log.Warn(workCtx, "narrative.cache_store_failed", observe.Field{Key: "error", Value: err.Error()})
			} else {
				log.Info(workCtx, "narrative.cache_store",
					observe.Field{Key: "cache_key", Value: key},
					observe.Field{Key: "ttl_s", Value: ttlSec},
				)
				o.metrics.RecordCacheEvent(workCtx, meta, "store")
			}
		}
		return env, nil
	})
	if err != nil {
		// Bounded wait expired while another request was regenerating.
		// Degrade to the canonical fallback envelope instead of hanging.
		log.Warn(ctx, "narrative.flight_timeout", observe.Field{Key: "cache_key", Value: key})
		return o.timeoutEnvelope(requestID, scope, mode, key, ttlSec, req.Trends, effectiveTrends, start), err
	}

	env := v.(*Envelope)
	if shared {
		env = env.Clone()
		env.Raw.Meta.RequestID = requestID
		env.Raw.Meta.LatencyMS = round2(float64(o.now().Sub(start).Microseconds()) / 1000)
	}

	return env, nil
}

type buildParams struct {
	requestID       string
	scope           string
	mode            string
	format          string
	compact         bool
	trendsOverride  *bool
	effectiveTrends bool
	aiAllowed       bool
	ttlSec          int
	key             string
	start           time.Time
	meta            observe.RequestMeta
	log             observe.Logger
}

// build performs one full regeneration: fan-out, generation gate,
// sanitization, and envelope assembly.
func (o *Orchestrator) build(ctx context.Context, p buildParams) *Envelope {
	fetchStart := o.now()
	results := o.coord.Fetch(ctx, p.effectiveTrends && o.trendsWired)
	fetchMS := float64(o.now().Sub(fetchStart).Microseconds()) / 1000
	o.metrics.RecordStage(ctx, p.meta, "fetch", o.now().Sub(fetchStart))

	// Trends that never ran still need a contract-visible reason.
	if !p.effectiveTrends {
		results.TrendsErr = "Disabled (trends=0 override or ENABLE_TRENDS_IN_NARRATIVE=0)."
	} else if !o.trendsWired {
		results.TrendsErr = "Trends source unavailable (not configured)."
	}

	soft := map[string]string{}
	if results.GamesErr != "" {
		soft[SoftErrGames] = results.GamesErr
	}
	if results.OddsErr != "" {
		soft[SoftErrOdds] = results.OddsErr
	}
	if results.TrendsErr != "" {
		soft[SoftErrTrends] = results.TrendsErr
	}
	if results.PropsErr != "" {
		soft[SoftErrProps] = results.PropsErr
	}

	o.logFetches(ctx, p.log, results)
	if results.TrendsErr != "" {
		p.log.Warn(ctx, "narrative.trends_disabled",
			observe.Field{Key: "enabled", Value: p.effectiveTrends},
			observe.Field{Key: "override", Value: p.trendsOverride},
			observe.Field{Key: "reason", Value: results.TrendsErr},
		)
	} else {
		p.log.Info(ctx, "narrative.trends_status",
			observe.Field{Key: "enabled", Value: p.effectiveTrends},
			observe.Field{Key: "override", Value: p.trendsOverride},
		)
	}

	inputs := buildInputs(o.now(), results)

	genStart := o.now()
	summary, aiUsed := o.gate.Run(ctx, p.mode, p.aiAllowed, inputs, soft)
	o.metrics.RecordStage(ctx, p.meta, "generate", o.now().Sub(genStart))

	if reason, ok := soft[SoftErrAI]; ok {
		p.log.Warn(ctx, "narrative.ai_fallback", observe.Field{Key: "reason", Value: reason})
	}

	dropWarn := func(key, value string) {
		p.log.Warn(ctx, "narrative.soft_error_filtered",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "value", Value: value},
		)
	}
	sanitized := SanitizeSoftErrors(soft, dropWarn)

	totalMS := float64(o.now().Sub(p.start).Microseconds()) / 1000

	env := &Envelope{
		OK:      true,
		Summary: summary,
		Raw: Raw{
			Inputs: *inputs,
			Meta: Meta{
				ContractVersion: ContractVersion,
				RequestID:       p.requestID,
				LatencyMS:       round2(totalMS),
				LatencyBreakdown: LatencyBreakdown{
					FetchMS: round2(fetchMS),
					TotalMS: round2(totalMS),
				},
				SourceCounts:    results.Counts(),
				SourceStatus:    results.BuildStatus(p.effectiveTrends),
				CacheUsed:       false,
				CacheTTLSeconds: p.ttlSec,
				CacheKey:        p.key,
				CacheExpiresInS: float64(p.ttlSec),
				SoftErrors:      sanitized,
				Mode:            p.mode,
				TrendsEnabled:   p.effectiveTrends,
				TrendsOverride:  p.trendsOverride,
			},
		},
		Mode: p.mode,
	}

	if p.format == "markdown" && o.render != nil {
		renderStart := o.now()
		env.Markdown = o.renderGuarded(summary, p.compact, soft)
		o.metrics.RecordStage(ctx, p.meta, "render", o.now().Sub(renderStart))
		if reason, ok := soft[SoftErrMarkdown]; ok {
			env.Raw.Meta.SoftErrors = SanitizeSoftErrors(soft, dropWarn)
			p.log.Warn(ctx, "narrative.markdown_fallback", observe.Field{Key: "reason", Value: reason})
		}
	}

	o.metrics.RecordSoftErrors(ctx, p.meta, len(env.Raw.Meta.SoftErrors))
	p.log.Info(ctx, "narrative.response_ready",
		observe.Field{Key: "latency_ms", Value: env.Raw.Meta.LatencyMS},
		observe.Field{Key: "cache_used", Value: false},
		observe.Field{Key: "ai_used", Value: aiUsed},
		observe.Field{Key: "soft_errors", Value: len(env.Raw.Meta.SoftErrors)},
	)

	return env
}

// renderGuarded renders markdown without ever failing the request. A
// renderer panic records a soft error and renders the fallback summary
// instead.
func (o *Orchestrator) renderGuarded(s *Summary, compact bool, soft map[string]string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			soft[SoftErrMarkdown] = fmt.Sprintf("Markdown render failed: %v", r)
			out = o.render(FallbackSummary(soft[SoftErrMarkdown]), compact)
		}
	}()
	return o.render(s, compact)
}

// timeoutEnvelope is served when the bounded wait on a shared flight
// expires. It carries the canonical fallback summary and empty inputs.
func (o *Orchestrator) timeoutEnvelope(requestID, scope, mode, key string, ttlSec int, override *bool, effectiveTrends bool, start time.Time) *Envelope {
	reason := "Generation timed out waiting for an in-flight request."
	summary := FallbackSummary(reason)
	harden(summary)
	o.gate.stampMetadata(summary, nil, mode == ModeAI, false, false)

	results := &source.Results{}
	totalMS := round2(float64(o.now().Sub(start).Microseconds()) / 1000)

	return &Envelope{
		OK:      true,
		Summary: summary,
		Raw: Raw{
			Inputs: *buildInputs(o.now(), results),
			Meta: Meta{
				ContractVersion: ContractVersion,
				RequestID:       requestID,
				LatencyMS:       totalMS,
				LatencyBreakdown: LatencyBreakdown{
					TotalMS: totalMS,
				},
				SourceCounts:    results.Counts(),
				SourceStatus:    results.BuildStatus(effectiveTrends),
				CacheUsed:       false,
				CacheTTLSeconds: ttlSec,
				CacheKey:        key,
				CacheExpiresInS: 0,
				SoftErrors:      map[string]string{},
				Mode:            mode,
				TrendsEnabled:   effectiveTrends,
				TrendsOverride:  override,
			},
		},
		Mode: mode,
	}
}

// buildInputs normalizes fan-out results into the grounding snapshot.
// Nil slices become empty so the JSON contract always shows arrays.
func buildInputs(now time.Time, results *source.Results) *Inputs {
	games := results.Games
	if games == nil {
		games = []source.Game{}
	}
	props := results.Props
	if props == nil {
		props = []source.PlayerProp{}
	}

	playerTrends := []source.PlayerTrend{}
	teamTrends := []source.TeamTrend{}
	if results.Trends != nil {
		if results.Trends.PlayerTrends != nil {
			playerTrends = results.Trends.PlayerTrends
		}
		if results.Trends.TeamTrends != nil {
			teamTrends = results.Trends.TeamTrends
		}
	}

	odds := results.Odds
	if odds == nil {
		odds = &source.OddsBoard{Games: []source.GameOdds{}}
	} else if odds.Games == nil {
		odds.Games = []source.GameOdds{}
	}

	return &Inputs{
		DateGenerated: now.UTC().Format("2006-01-02 15:04 UTC"),
		GamesToday:    games,
		PlayerTrends:  playerTrends,
		TeamTrends:    teamTrends,
		PlayerProps:   props,
		Odds:          odds,
	}
}

func (o *Orchestrator) logFetches(ctx context.Context, log observe.Logger, results *source.Results) {
	fetches := []struct {
		label string
		err   string
		count int
	}{
		{source.LabelGames, results.GamesErr, len(results.Games)},
		{source.LabelOdds, results.OddsErr, 0},
		{source.LabelProps, results.PropsErr, len(results.Props)},
	}
	for _, f := range fetches {
		if f.err != "" {
			log.Warn(ctx, "narrative.fetch_failed",
				observe.Field{Key: "source", Value: f.label},
				observe.Field{Key: "error", Value: f.err},
			)
		} else {
			log.Debug(ctx, "narrative.fetch_ok",
				observe.Field{Key: "source", Value: f.label},
				observe.Field{Key: "count", Value: f.count},
			)
		}
	}
}

// overlayCacheHit clones a cached envelope and overlays the metadata
// that is request-specific rather than payload-specific.
func overlayCacheHit(env *Envelope, requestID, key string, ttlSec int, expiresIn time.Duration) *Envelope {
	out := env.Clone()
	out.Raw.Meta.RequestID = requestID
	out.Raw.Meta.LatencyMS = 0
	out.Raw.Meta.CacheUsed = true
	out.Raw.Meta.CacheKey = key
	out.Raw.Meta.CacheTTLSeconds = ttlSec
	out.Raw.Meta.CacheExpiresInS = round2(expiresIn.Seconds())
	return out
}

func shortRequestID() string {
	id := uuid.NewString()
	return id[:8]
}
