package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Generation modes.
const (
	ModeAI       = "ai"
	ModeTemplate = "template"
)

// DefaultAIModel is stamped when an AI summary arrives without a model
// name of its own.
const DefaultAIModel = "gpt-4o"

// Generator produces a narrative summary from grounding inputs.
//
// Contract:
// - Context: Generate must honor cancellation/deadlines.
// - Errors: a nil summary with a nil error is treated as invalid output.
// - Ownership: the returned summary belongs to the caller.
type Generator interface {
	Generate(ctx context.Context, in *Inputs) (*Summary, error)
}

// NormalizeMode lowercases and trims the mode parameter, defaulting to
// template. Any value other than "ai" selects the template path.
func NormalizeMode(mode string) string {
	m := strings.ToLower(strings.TrimSpace(mode))
	if m == "" {
		return ModeTemplate
	}
	return m
}

// Gate decides which generation path runs and guarantees a usable
// summary regardless of how that path fails. AI is gated per request:
// the caller resolves allowance fresh each time, never from cached
// state.
type Gate struct {
	Generator Generator        // nil means AI can never run
	Clock     func() time.Time // nil means time.Now
}

// Run executes the selected generation path and returns the hardened,
// metadata-stamped summary plus whether AI actually produced it.
// Failures are recorded in soft under the "ai" or "template" key and
// degrade to the canonical fallback summary.
func (g *Gate) Run(ctx context.Context, mode string, aiAllowed bool, in *Inputs, soft map[string]string) (*Summary, bool) {
	requested := NormalizeMode(mode)
	aiRequested := requested == ModeAI

	var summary *Summary
	aiUsed := false

	switch {
	case aiRequested && !aiAllowed:
		soft[SoftErrAI] = "AI mode requested but not allowed (OPENAI_API_KEY missing/disabled)."
		summary = FallbackSummary(soft[SoftErrAI])

	case aiRequested:
		s, err := g.generate(ctx, in)
		switch {
		case err != nil:
			soft[SoftErrAI] = fmt.Sprintf("AI generation threw: %v", err)
			summary = FallbackSummary(soft[SoftErrAI])
		case s == nil:
			soft[SoftErrAI] = "AI: AI output invalid type: nil"
			summary = FallbackSummary(soft[SoftErrAI])
		default:
			summary = s
			aiUsed = true
		}

	default:
		s, err := buildTemplateGuarded(in)
		if err != nil {
			soft[SoftErrTemplate] = fmt.Sprintf("Template generation threw: %v", err)
			summary = FallbackSummary(soft[SoftErrTemplate])
		} else {
			summary = s
		}
	}

	harden(summary)
	g.stampMetadata(summary, in, aiRequested, aiUsed, aiAllowed)
	return summary, aiUsed
}

// generate invokes the AI generator with panic isolation.
func (g *Gate) generate(ctx context.Context, in *Inputs) (s *Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	if g.Generator == nil {
		return nil, errors.New("generator not configured")
	}
	return g.Generator.Generate(ctx, in)
}

// buildTemplateGuarded wraps the template builder with panic isolation.
// The builder only reads fetched data, but a malformed record must
// degrade softly rather than fail the request.
func buildTemplateGuarded(in *Inputs) (s *Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return BuildTemplateSummary(in), nil
}

// harden fills structural minimums so the markdown renderer and the
// response contract never see a half-built summary.
func harden(s *Summary) {
	if s.MacroSummary == nil {
		s.MacroSummary = []string{}
	}
	if s.MicroSummary.KeyEdges == nil {
		s.MicroSummary.KeyEdges = []KeyEdge{}
	}
	if s.MicroSummary.RiskRationale == "" {
		s.MicroSummary.RiskRationale = "Narrative generated with guardrails."
		if s.MicroSummary.RiskScore == 0 {
			s.MicroSummary.RiskScore = 0.5
		}
	}
	if len(s.ConfidenceSummary) == 0 {
		s.ConfidenceSummary = []string{"Medium"}
	}
}

// stampMetadata overlays generation provenance onto the summary.
func (g *Gate) stampMetadata(s *Summary, in *Inputs, aiRequested, aiUsed, aiAllowed bool) {
	now := time.Now
	if g.Clock != nil {
		now = g.Clock
	}

	meta := &s.Metadata
	if meta.Model == "" {
		if aiRequested {
			meta.Model = DefaultAIModel
		} else {
			meta.Model = ModeTemplate
		}
	}
	meta.GeneratedAt = now().UTC().Format(time.RFC3339)
	meta.PromptVersion = PromptVersion
	meta.InputsDigest = InputsDigest(in)
	if in != nil {
		meta.GamesTodayCount = len(in.GamesToday)
	}
	meta.AIUsed = aiUsed
	meta.AIAllowed = aiAllowed
}
