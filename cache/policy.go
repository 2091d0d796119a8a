package cache

import "time"

// MaxNarrativeTTL is the default hard ceiling on how long a narrative
// response may be cached, regardless of what the caller requested.
const MaxNarrativeTTL = 120 * time.Second

// Policy bounds caching behavior for narrative responses.
type Policy struct {
	// MaxTTL is the hard ceiling. Requested TTLs above it are clamped.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy (120s ceiling).
func DefaultPolicy() Policy {
	return Policy{MaxTTL: MaxNarrativeTTL}
}

// EffectiveTTL clamps a caller-requested TTL into [0, MaxTTL].
// A non-positive request disables caching for that call.
func (p Policy) EffectiveTTL(requested time.Duration) time.Duration {
	if requested <= 0 {
		return 0
	}
	if p.MaxTTL > 0 && requested > p.MaxTTL {
		return p.MaxTTL
	}
	return requested
}
