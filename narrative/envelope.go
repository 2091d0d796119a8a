package narrative

import (
	"github.com/Jayprox/ai-agent-nba/source"
)

// ContractVersion tags the response metadata shape. Bump it when a
// meta field changes meaning, not when new optional fields appear.
const ContractVersion = "2.7"

// PromptVersion identifies the prompt revision stamped into summary
// metadata for traceability across AI and template output alike.
const PromptVersion = "v3.10-structured-logging"

// KeyEdge is one actionable observation in the micro summary.
type KeyEdge struct {
	ValueLabel string  `json:"value_label"`
	EdgeScore  float64 `json:"edge_score"`
	Text       string  `json:"text"`
}

// MicroSummary carries the edge list and risk framing.
type MicroSummary struct {
	KeyEdges      []KeyEdge `json:"key_edges"`
	RiskScore     float64   `json:"risk_score"`
	RiskRationale string    `json:"risk_rationale"`
}

// SummaryMetadata records how and from what the summary was produced.
type SummaryMetadata struct {
	GeneratedAt     string `json:"generated_at"`
	Model           string `json:"model"`
	PromptVersion   string `json:"prompt_version"`
	InputsDigest    string `json:"inputs_digest"`
	GamesTodayCount int    `json:"games_today_count"`
	AIUsed          bool   `json:"ai_used"`
	AIAllowed       bool   `json:"ai_allowed"`
	AIError         string `json:"ai_error,omitempty"`
}

// Summary is the narrative body, produced by the AI generator, the
// grounded template builder, or the route-owned fallback.
type Summary struct {
	MacroSummary      []string        `json:"macro_summary"`
	MicroSummary      MicroSummary    `json:"micro_summary"`
	AnalystTakeaway   string          `json:"analyst_takeaway"`
	ConfidenceSummary []string        `json:"confidence_summary"`
	Metadata          SummaryMetadata `json:"metadata"`
}

// Inputs is the grounding snapshot handed to generators. Nil slices
// marshal as empty arrays via the orchestrator's normalization.
type Inputs struct {
	DateGenerated string               `json:"date_generated"`
	GamesToday    []source.Game        `json:"games_today"`
	PlayerTrends  []source.PlayerTrend `json:"player_trends"`
	TeamTrends    []source.TeamTrend   `json:"team_trends"`
	PlayerProps   []source.PlayerProp  `json:"player_props"`
	Odds          *source.OddsBoard    `json:"odds"`
}

// LatencyBreakdown splits request latency by stage.
type LatencyBreakdown struct {
	FetchMS float64 `json:"fetch_ms"`
	TotalMS float64 `json:"total_ms"`
}

// Meta is the response metadata block under raw.meta.
type Meta struct {
	ContractVersion  string                         `json:"contract_version"`
	RequestID        string                         `json:"request_id"`
	LatencyMS        float64                        `json:"latency_ms"`
	LatencyBreakdown LatencyBreakdown               `json:"latency_breakdown"`
	SourceCounts     map[string]int                 `json:"source_counts"`
	SourceStatus     map[string]source.SourceStatus `json:"source_status"`
	CacheUsed        bool                           `json:"cache_used"`
	CacheTTLSeconds  int                            `json:"cache_ttl_s"`
	CacheKey         string                         `json:"cache_key"`
	CacheExpiresInS  float64                        `json:"cache_expires_in_s"`
	SoftErrors       map[string]string              `json:"soft_errors"`
	Mode             string                         `json:"mode"`
	TrendsEnabled    bool                           `json:"trends_enabled_in_narrative"`
	TrendsOverride   *bool                          `json:"trends_override"`
}

// Raw bundles the grounding inputs with response metadata.
type Raw struct {
	Inputs
	Meta Meta `json:"meta"`
}

// Envelope is the full response contract for both endpoints. OK is
// always true: upstream failures surface as soft errors, never as a
// failed envelope.
type Envelope struct {
	OK       bool     `json:"ok"`
	Summary  *Summary `json:"summary"`
	Raw      Raw      `json:"raw"`
	Mode     string   `json:"mode"`
	Markdown string   `json:"markdown,omitempty"`
}

// Clone returns a copy safe for per-request metadata overlay. The
// summary and meta maps are duplicated; the grounding input slices are
// shared because callers treat them as read-only.
func (e *Envelope) Clone() *Envelope {
	out := *e

	if e.Summary != nil {
		s := *e.Summary
		out.Summary = &s
	}

	if e.Raw.Meta.SourceCounts != nil {
		counts := make(map[string]int, len(e.Raw.Meta.SourceCounts))
		for k, v := range e.Raw.Meta.SourceCounts {
			counts[k] = v
		}
		out.Raw.Meta.SourceCounts = counts
	}
	if e.Raw.Meta.SourceStatus != nil {
		status := make(map[string]source.SourceStatus, len(e.Raw.Meta.SourceStatus))
		for k, v := range e.Raw.Meta.SourceStatus {
			status[k] = v
		}
		out.Raw.Meta.SourceStatus = status
	}
	if e.Raw.Meta.SoftErrors != nil {
		soft := make(map[string]string, len(e.Raw.Meta.SoftErrors))
		for k, v := range e.Raw.Meta.SoftErrors {
			soft[k] = v
		}
		out.Raw.Meta.SoftErrors = soft
	}

	return &out
}
