// Package cache provides the narrative response cache: deterministic
// multi-dimensional keys, a TTL store with lazy on-read eviction, and
// per-key coalescing of cache-miss regeneration (stampede protection).
package cache
