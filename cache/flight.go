package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Flight coalesces concurrent regeneration of the same cache key so
// that at most one expensive fan-out and generation runs per key at any
// time. Flight entries are removed when the in-flight call completes,
// so the guard table does not grow with key cardinality.
type Flight struct {
	group singleflight.Group
}

// NewFlight creates an empty Flight.
func NewFlight() *Flight {
	return &Flight{}
}

// Do runs fn for key, sharing its result with concurrent callers of the
// same key. shared reports whether this caller received a result
// produced by another caller's flight.
//
// The wait is bounded by ctx: on cancellation or deadline this caller
// returns ctx.Err() while the in-flight work keeps running for the
// remaining waiters.
func (f *Flight) Do(ctx context.Context, key string, fn func() (any, error)) (v any, shared bool, err error) {
	ch := f.group.DoChan(key, fn)
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
