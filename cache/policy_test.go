package cache

import (
	"testing"
	"time"
)

func TestPolicy_EffectiveTTL(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		requested time.Duration
		want      time.Duration
	}{
		{"zero disables", 0, 0},
		{"negative disables", -10 * time.Second, 0},
		{"within ceiling", 30 * time.Second, 30 * time.Second},
		{"at ceiling", 120 * time.Second, 120 * time.Second},
		{"above ceiling clamped", 99999 * time.Second, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.requested); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

func TestPolicy_NoCeiling(t *testing.T) {
	p := Policy{MaxTTL: 0}
	if got := p.EffectiveTTL(time.Hour); got != time.Hour {
		t.Errorf("EffectiveTTL with no ceiling = %v, want %v", got, time.Hour)
	}
}
