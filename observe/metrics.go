package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records request-level measurements for narrative handling.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records a completed narrative request.
	RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error)

	// RecordCacheEvent records a cache hit, miss, or store.
	RecordCacheEvent(ctx context.Context, meta RequestMeta, event string)

	// RecordStage records the duration of one pipeline stage (fetch, generate, render).
	RecordStage(ctx context.Context, meta RequestMeta, stage string, duration time.Duration)

	// RecordSoftErrors records how many soft errors a response carried.
	RecordSoftErrors(ctx context.Context, meta RequestMeta, count int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheEvents  metric.Int64Counter
	stageHist    metric.Float64Histogram
	softErrors   metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"narrative.requests.total",
		metric.WithDescription("Total number of narrative requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"narrative.requests.errors",
		metric.WithDescription("Total number of narrative request errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"narrative.request.duration_ms",
		metric.WithDescription("Narrative request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheEvents, err := meter.Int64Counter(
		"narrative.cache.events",
		metric.WithDescription("Narrative cache events by type (hit, miss, store)"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	stageHist, err := meter.Float64Histogram(
		"narrative.stage.duration_ms",
		metric.WithDescription("Per-stage narrative pipeline duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	softErrors, err := meter.Int64Counter(
		"narrative.soft_errors.total",
		metric.WithDescription("Total soft errors carried in narrative responses"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheEvents:  cacheEvents,
		stageHist:    stageHist,
		softErrors:   softErrors,
	}, nil
}

func (m *metricsImpl) requestAttrs(meta RequestMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("request.endpoint", meta.Endpoint),
	}
	if meta.Mode != "" {
		attrs = append(attrs, attribute.String("request.mode", meta.Mode))
	}
	return metric.WithAttributes(attrs...)
}

// RecordRequest records counters and the duration histogram for one request.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error) {
	opt := m.requestAttrs(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheEvent(ctx context.Context, meta RequestMeta, event string) {
	m.cacheEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("request.endpoint", meta.Endpoint),
		attribute.String("cache.event", event),
	))
}

func (m *metricsImpl) RecordStage(ctx context.Context, meta RequestMeta, stage string, duration time.Duration) {
	m.stageHist.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("request.endpoint", meta.Endpoint),
		attribute.String("stage", stage),
	))
}

func (m *metricsImpl) RecordSoftErrors(ctx context.Context, meta RequestMeta, count int) {
	if count <= 0 {
		return
	}
	m.softErrors.Add(ctx, int64(count), m.requestAttrs(meta))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNopMetrics returns a Metrics that discards all measurements.
func NewNopMetrics() Metrics { return &noopMetrics{} }

func (m *noopMetrics) RecordRequest(ctx context.Context, meta RequestMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheEvent(ctx context.Context, meta RequestMeta, event string)  {}
func (m *noopMetrics) RecordStage(ctx context.Context, meta RequestMeta, stage string, duration time.Duration) {
}
func (m *noopMetrics) RecordSoftErrors(ctx context.Context, meta RequestMeta, count int) {}
