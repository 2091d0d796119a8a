package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Entry is a cached payload together with its expiry deadline.
type Entry struct {
	Payload   any
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime of the entry at the given instant.
// Negative durations mean the entry is already expired.
func (e *Entry) ExpiresIn(now time.Time) time.Duration {
	return e.ExpiresAt.Sub(now)
}

// Store is the interface for caching assembled narrative responses.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
// - Expiry: entries are evicted lazily on read; there is no background sweeper.
type Store interface {
	// Get retrieves a live entry. Returns (nil, false) on miss or expiry.
	Get(ctx context.Context, key string) (*Entry, bool)

	// Set stores a payload with the given TTL. TTL<=0 means no caching.
	Set(ctx context.Context, key string, payload any, ttl time.Duration) error

	// Delete removes a cached entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
