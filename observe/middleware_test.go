package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func newTestMiddleware(buf *bytes.Buffer) *Middleware {
	return NewMiddleware(NewNopTracer(), NewNopMetrics(), NewLoggerWithWriter("info", buf))
}

func TestMiddleware_WrapSuccess(t *testing.T) {
	var buf bytes.Buffer
	mw := newTestMiddleware(&buf)

	fn := mw.Wrap(func(ctx context.Context, meta RequestMeta) (any, error) {
		return "envelope", nil
	})

	meta := RequestMeta{ID: "req12345", Endpoint: "today", Mode: "template"}
	result, err := fn(context.Background(), meta)
	if err != nil {
		t.Fatalf("wrapped fn error = %v", err)
	}
	if result != "envelope" {
		t.Errorf("result = %v, want passthrough", result)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if entry["msg"] != "narrative request completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["request.id"] != "req12345" {
		t.Errorf("request.id = %v", entry["request.id"])
	}
	if _, ok := entry["duration_ms"].(float64); !ok {
		t.Errorf("duration_ms = %v", entry["duration_ms"])
	}
	if _, ok := entry["error"]; ok {
		t.Error("success log should not carry an error field")
	}
}

func TestMiddleware_WrapError(t *testing.T) {
	var buf bytes.Buffer
	mw := newTestMiddleware(&buf)

	wantErr := errors.New("fan-out failed")
	fn := mw.Wrap(func(ctx context.Context, meta RequestMeta) (any, error) {
		return nil, wantErr
	})

	_, err := fn(context.Background(), RequestMeta{ID: "req99999", Endpoint: "markdown"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want propagated unchanged", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if entry["msg"] != "narrative request failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["error"] != "fan-out failed" {
		t.Errorf("error field = %v", entry["error"])
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "nba-narrative"})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	defer obs.Shutdown(context.Background())

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver: %v", err)
	}

	fn := mw.Wrap(func(ctx context.Context, meta RequestMeta) (any, error) {
		return 42, nil
	})
	result, err := fn(context.Background(), RequestMeta{ID: "x", Endpoint: "today"})
	if err != nil || result != 42 {
		t.Errorf("result = %v, err = %v", result, err)
	}
}
