package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jayprox/ai-agent-nba/narrative"
)

// ParseModel marks summaries whose model name the AI omitted.
const ParseModel = "NBA_Data_Analyst-v1.1"

// ErrEmptyOutput indicates the model returned no text at all.
var ErrEmptyOutput = errors.New("ai: empty AI output")

// aiSummary mirrors the schema the model is asked to produce.
// macro_summary is raw because models sometimes return a single string
// instead of the requested sentence list.
type aiSummary struct {
	MacroSummary      json.RawMessage `json:"macro_summary"`
	MicroSummary      aiMicro         `json:"micro_summary"`
	AnalystTakeaway   string          `json:"analyst_takeaway"`
	ConfidenceSummary []string        `json:"confidence_summary"`
	Metadata          aiMetadata      `json:"metadata"`
}

type aiMicro struct {
	KeyEdges      []narrative.KeyEdge `json:"key_edges"`
	RiskScore     *float64            `json:"risk_score"`
	RiskRationale string              `json:"risk_rationale"`
}

type aiMetadata struct {
	Model string `json:"model"`
}

// ParseSummary parses model output into a Summary, tolerating the usual
// model misbehavior: code fences around the JSON, or prose wrapped
// around a single JSON object.
func ParseSummary(text string) (*narrative.Summary, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var parsed aiSummary
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("ai: decode summary: %w", err)
	}

	summary := &narrative.Summary{
		MacroSummary: decodeMacro(parsed.MacroSummary),
		MicroSummary: narrative.MicroSummary{
			KeyEdges:      parsed.MicroSummary.KeyEdges,
			RiskScore:     0.5,
			RiskRationale: parsed.MicroSummary.RiskRationale,
		},
		AnalystTakeaway:   parsed.AnalystTakeaway,
		ConfidenceSummary: parsed.ConfidenceSummary,
	}

	if parsed.MicroSummary.RiskScore != nil {
		summary.MicroSummary.RiskScore = *parsed.MicroSummary.RiskScore
	}
	if summary.MicroSummary.KeyEdges == nil {
		summary.MicroSummary.KeyEdges = []narrative.KeyEdge{}
	}
	if summary.MicroSummary.RiskRationale == "" {
		summary.MicroSummary.RiskRationale = "Generated with schedule-grounding constraints."
	}
	if len(summary.ConfidenceSummary) == 0 {
		summary.ConfidenceSummary = []string{"Medium"}
	}

	summary.Metadata = narrative.SummaryMetadata{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Model:       parsed.Metadata.Model,
		AIUsed:      true,
	}
	if summary.Metadata.Model == "" {
		summary.Metadata.Model = ParseModel
	}

	return summary, nil
}

// decodeMacro accepts either a string or a list of strings.
func decodeMacro(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if t := strings.TrimSpace(s); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if t := strings.TrimSpace(single); t != "" {
			return []string{t}
		}
	}
	return []string{}
}

// extractJSON recovers the JSON object from model output:
// 1) direct parse
// 2) strip markdown code fences
// 3) extract the substring between the first '{' and the last '}'
func extractJSON(text string) (json.RawMessage, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, ErrEmptyOutput
	}

	if isJSONObject(raw) {
		return json.RawMessage(raw), nil
	}

	cleaned := raw
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.Trim(cleaned, "`")
		cleaned = strings.TrimPrefix(cleaned, "json\n")
		cleaned = strings.TrimPrefix(cleaned, "JSON\n")
		cleaned = strings.TrimSpace(cleaned)
	}
	if isJSONObject(cleaned) {
		return json.RawMessage(cleaned), nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		snippet := cleaned[start : end+1]
		if isJSONObject(snippet) {
			return json.RawMessage(snippet), nil
		}
	}

	return nil, errors.New("ai: could not parse valid JSON from AI output")
}

// isJSONObject reports whether s parses as a JSON object (not just any
// JSON value).
func isJSONObject(s string) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &m) == nil
}
