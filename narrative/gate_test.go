package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Jayprox/ai-agent-nba/source"
)

type stubGenerator struct {
	summary *Summary
	err     error
	panics  bool
}

func (s *stubGenerator) Generate(context.Context, *Inputs) (*Summary, error) {
	if s.panics {
		panic("generator exploded")
	}
	return s.summary, s.err
}

func emptyInputs() *Inputs {
	return &Inputs{
		GamesToday:   []source.Game{},
		PlayerTrends: []source.PlayerTrend{},
		TeamTrends:   []source.TeamTrend{},
		PlayerProps:  []source.PlayerProp{},
		Odds:         &source.OddsBoard{Games: []source.GameOdds{}},
	}
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "template"},
		{"ai", "ai"},
		{"AI", "ai"},
		{"  Template  ", "template"},
		{"markdown", "markdown"},
	}
	for _, tt := range tests {
		if got := NormalizeMode(tt.in); got != tt.want {
			t.Errorf("NormalizeMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGate_AIBlocked(t *testing.T) {
	g := Gate{Generator: &stubGenerator{}}
	soft := map[string]string{}

	s, aiUsed := g.Run(context.Background(), ModeAI, false, emptyInputs(), soft)

	if aiUsed {
		t.Error("aiUsed should be false when blocked")
	}
	want := "AI mode requested but not allowed (OPENAI_API_KEY missing/disabled)."
	if soft[SoftErrAI] != want {
		t.Errorf("soft[ai] = %q, want %q", soft[SoftErrAI], want)
	}
	if s.Metadata.Model != FallbackModel {
		t.Errorf("model = %q, want %q", s.Metadata.Model, FallbackModel)
	}
	if s.Metadata.AIAllowed {
		t.Error("AIAllowed should be stamped false")
	}
	if s.MacroSummary[0] != "NBA narrative is available in fallback mode." {
		t.Errorf("macro = %v", s.MacroSummary)
	}
}

func TestGate_AIGeneratorError(t *testing.T) {
	g := Gate{Generator: &stubGenerator{err: errors.New("rate limited")}}
	soft := map[string]string{}

	s, aiUsed := g.Run(context.Background(), ModeAI, true, emptyInputs(), soft)

	if aiUsed {
		t.Error("aiUsed should be false on generator error")
	}
	if soft[SoftErrAI] != "AI generation threw: rate limited" {
		t.Errorf("soft[ai] = %q", soft[SoftErrAI])
	}
	if s.MicroSummary.RiskRationale != "AI generation threw: rate limited" {
		t.Errorf("rationale = %q", s.MicroSummary.RiskRationale)
	}
}

func TestGate_AIGeneratorPanic(t *testing.T) {
	g := Gate{Generator: &stubGenerator{panics: true}}
	soft := map[string]string{}

	_, aiUsed := g.Run(context.Background(), ModeAI, true, emptyInputs(), soft)

	if aiUsed {
		t.Error("aiUsed should be false on panic")
	}
	if !strings.HasPrefix(soft[SoftErrAI], "AI generation threw: panic: ") {
		t.Errorf("soft[ai] = %q", soft[SoftErrAI])
	}
}

func TestGate_AINilSummary(t *testing.T) {
	g := Gate{Generator: &stubGenerator{}}
	soft := map[string]string{}

	s, aiUsed := g.Run(context.Background(), ModeAI, true, emptyInputs(), soft)

	if aiUsed {
		t.Error("aiUsed should be false for nil summary")
	}
	if soft[SoftErrAI] != "AI: AI output invalid type: nil" {
		t.Errorf("soft[ai] = %q", soft[SoftErrAI])
	}
	if s == nil {
		t.Fatal("fallback summary expected")
	}
}

func TestGate_AISuccess(t *testing.T) {
	g := Gate{Generator: &stubGenerator{summary: &Summary{
		MacroSummary: []string{"AI macro."},
	}}}
	soft := map[string]string{}

	s, aiUsed := g.Run(context.Background(), ModeAI, true, emptyInputs(), soft)

	if !aiUsed {
		t.Error("aiUsed should be true")
	}
	if len(soft) != 0 {
		t.Errorf("soft errors = %v, want none", soft)
	}
	if s.Metadata.Model != DefaultAIModel {
		t.Errorf("unset model should default to %q, got %q", DefaultAIModel, s.Metadata.Model)
	}
	if !s.Metadata.AIUsed || !s.Metadata.AIAllowed {
		t.Errorf("metadata flags = %+v", s.Metadata)
	}
	if s.Metadata.PromptVersion != PromptVersion {
		t.Errorf("prompt version = %q", s.Metadata.PromptVersion)
	}
	if !strings.HasPrefix(s.Metadata.InputsDigest, "sha1:") {
		t.Errorf("inputs digest = %q", s.Metadata.InputsDigest)
	}
}

func TestGate_TemplatePath(t *testing.T) {
	g := Gate{}
	soft := map[string]string{}

	s, aiUsed := g.Run(context.Background(), "", false, emptyInputs(), soft)

	if aiUsed {
		t.Error("template path should not report AI use")
	}
	if s.Metadata.Model != TemplateModel {
		t.Errorf("model = %q, want %q", s.Metadata.Model, TemplateModel)
	}
	if s.Metadata.AIError != "mode=template (AI not requested)." {
		t.Errorf("ai_error = %q", s.Metadata.AIError)
	}
}

func TestHarden(t *testing.T) {
	s := &Summary{}
	harden(s)

	if s.MacroSummary == nil {
		t.Error("macro should be non-nil")
	}
	if s.MicroSummary.KeyEdges == nil {
		t.Error("key edges should be non-nil")
	}
	if s.MicroSummary.RiskRationale != "Narrative generated with guardrails." {
		t.Errorf("rationale = %q", s.MicroSummary.RiskRationale)
	}
	if s.MicroSummary.RiskScore != 0.5 {
		t.Errorf("risk score = %v, want 0.5", s.MicroSummary.RiskScore)
	}
	if len(s.ConfidenceSummary) != 1 || s.ConfidenceSummary[0] != "Medium" {
		t.Errorf("confidence = %v", s.ConfidenceSummary)
	}
}

func TestHarden_KeepsExplicitRisk(t *testing.T) {
	s := &Summary{MicroSummary: MicroSummary{RiskScore: 0.1, RiskRationale: "thin data"}}
	harden(s)

	if s.MicroSummary.RiskScore != 0.1 {
		t.Errorf("risk score = %v, want 0.1 untouched", s.MicroSummary.RiskScore)
	}
	if s.MicroSummary.RiskRationale != "thin data" {
		t.Errorf("rationale = %q, want untouched", s.MicroSummary.RiskRationale)
	}
}
