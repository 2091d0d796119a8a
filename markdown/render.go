package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jayprox/ai-agent-nba/narrative"
)

// compactLimit caps the compact rendering, which is meant for chat or
// notification surfaces with tight length budgets.
const compactLimit = 1000

// Render renders a summary to markdown. The compact form collapses
// everything onto one line, drops the edge and risk sections, and
// truncates to compactLimit characters.
func Render(s *narrative.Summary, compact bool) string {
	if s == nil {
		return ""
	}

	meta := s.Metadata
	lines := []string{
		fmt.Sprintf("**NBA Narrative**  \n_Generated: %s • Model: %s_", meta.GeneratedAt, meta.Model),
	}

	if len(s.MacroSummary) > 0 {
		items := make([]string, 0, len(s.MacroSummary))
		for _, m := range s.MacroSummary {
			if t := strings.TrimSpace(m); t != "" {
				items = append(items, "- "+t)
			}
		}
		if len(items) > 0 {
			lines = append(lines, "\n### Macro Summary", strings.Join(items, "\n"))
		}
	}

	edges := s.MicroSummary.KeyEdges
	if len(edges) > 0 && !compact {
		lines = append(lines, "\n### Key Edges")
		for i, e := range edges {
			lines = append(lines,
				fmt.Sprintf("%d. **%s** (score: %s)", i+1, e.ValueLabel, formatScore(e.EdgeScore)),
				fmt.Sprintf("   %s", e.Text),
			)
		}
	}

	if !compact {
		lines = append(lines, "\n### Risk & Confidence")
		lines = append(lines, fmt.Sprintf("- **Risk Score:** %s", formatScore(s.MicroSummary.RiskScore)))
		if s.MicroSummary.RiskRationale != "" {
			lines = append(lines, fmt.Sprintf("- **Risk Rationale:** %s", s.MicroSummary.RiskRationale))
		}
		if conf := confidenceText(s.ConfidenceSummary); conf != "" {
			lines = append(lines, fmt.Sprintf("- **Confidence:** %s", conf))
		}
	}

	if analyst := strings.TrimSpace(s.AnalystTakeaway); analyst != "" {
		lines = append(lines, "\n### Analyst Takeaway")
		if strings.Contains(analyst, ". ") {
			for _, sentence := range strings.Split(analyst, ". ") {
				sentence = strings.TrimSpace(sentence)
				if sentence == "" {
					continue
				}
				if !strings.HasSuffix(sentence, ".") {
					sentence += "."
				}
				lines = append(lines, "- "+sentence)
			}
		} else {
			lines = append(lines, analyst)
		}
	}

	if compact {
		out := strings.Join(lines, " ")
		if len(out) > compactLimit {
			out = out[:compactLimit]
		}
		return out
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func confidenceText(confidence []string) string {
	parts := make([]string, 0, len(confidence))
	for _, c := range confidence {
		if t := strings.TrimSpace(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
