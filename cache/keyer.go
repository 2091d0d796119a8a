package cache

import (
	"fmt"
	"strings"
)

// KeyParams are the request dimensions that partition the narrative
// cache. Every dimension that can change the response body must appear
// here; omitting one would serve stale data to a differently-configured
// request.
type KeyParams struct {
	Mode            string // generation path: "ai" or "template"
	TTLSeconds      int    // effective (already clamped) cache lifetime
	Scope           string // logical endpoint identity: "today" or "markdown"
	Format          string // output-shape modifier, e.g. "markdown"
	TrendsOverride  *bool  // nil means "use server default"
	EffectiveTrends bool   // the resolved trends setting
	AIAllowed       bool   // AI gate state at request time
	Compact         bool   // compact rendering (markdown scope only)
}

// BuildKey maps KeyParams to a deterministic string key.
//
// An explicit trends override and the server default are encoded
// distinctly even when they resolve to the same effective value: the two
// populations are conceptually different and must not share a slot.
func BuildKey(p KeyParams) string {
	var tr string
	if p.TrendsOverride == nil {
		tr = fmt.Sprintf("tr:env=%d", boolInt(p.EffectiveTrends))
	} else {
		tr = fmt.Sprintf("tr:ovr=%d|eff=%d", boolInt(*p.TrendsOverride), boolInt(p.EffectiveTrends))
	}

	return fmt.Sprintf("m=%s|ttl=%d|sc=%s|fmt=%s|%s|ai=%d|cmp=%d",
		p.Mode, p.TTLSeconds, p.Scope, normalizeFormat(p.Format), tr,
		boolInt(p.AIAllowed), boolInt(p.Compact))
}

// normalizeFormat folds the format parameter into a stable key segment.
func normalizeFormat(format string) string {
	v := strings.ToLower(strings.TrimSpace(format))
	if v == "" {
		return "none"
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
