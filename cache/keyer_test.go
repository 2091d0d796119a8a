package cache

import (
	"strings"
	"testing"
)

func baseParams() KeyParams {
	return KeyParams{
		Mode:            "template",
		TTLSeconds:      30,
		Scope:           "today",
		Format:          "",
		TrendsOverride:  nil,
		EffectiveTrends: false,
		AIAllowed:       false,
		Compact:         false,
	}
}

func TestBuildKey_Deterministic(t *testing.T) {
	p := baseParams()
	first := BuildKey(p)
	for i := 0; i < 10; i++ {
		if got := BuildKey(p); got != first {
			t.Fatalf("BuildKey not deterministic: %q != %q", got, first)
		}
	}
}

func TestBuildKey_Format(t *testing.T) {
	p := baseParams()
	key := BuildKey(p)
	want := "m=template|ttl=30|sc=today|fmt=none|tr:env=0|ai=0|cmp=0"
	if key != want {
		t.Errorf("BuildKey = %q, want %q", key, want)
	}
}

// Changing any single dimension must change the key.
func TestBuildKey_Separation(t *testing.T) {
	on, off := true, false

	mutations := map[string]func(*KeyParams){
		"mode":            func(p *KeyParams) { p.Mode = "ai" },
		"ttl":             func(p *KeyParams) { p.TTLSeconds = 60 },
		"scope":           func(p *KeyParams) { p.Scope = "markdown" },
		"format":          func(p *KeyParams) { p.Format = "markdown" },
		"trends override": func(p *KeyParams) { p.TrendsOverride = &on; p.EffectiveTrends = true },
		"effective":       func(p *KeyParams) { p.EffectiveTrends = true },
		"ai allowed":      func(p *KeyParams) { p.AIAllowed = true },
		"compact":         func(p *KeyParams) { p.Compact = true },
	}

	base := BuildKey(baseParams())
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := baseParams()
			mutate(&p)
			if got := BuildKey(p); got == base {
				t.Errorf("mutating %s did not change the key: %q", name, got)
			}
		})
	}

	// An explicit override=false must not collide with the default-off
	// population even though the effective value is identical.
	explicitOff := baseParams()
	explicitOff.TrendsOverride = &off
	if got := BuildKey(explicitOff); got == base {
		t.Errorf("explicit trends=0 collided with env default: %q", got)
	}
}

func TestBuildKey_FormatNormalization(t *testing.T) {
	p := baseParams()
	p.Format = "  Markdown  "
	key := BuildKey(p)
	if !strings.Contains(key, "fmt=markdown") {
		t.Errorf("format not normalized: %q", key)
	}
}
