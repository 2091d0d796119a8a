package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Jayprox/ai-agent-nba/narrative"
)

// maxSlateGames caps how many matchups appear in the grounding block.
const maxSlateGames = 15

const systemRules = "You are an expert NBA analyst producing a schedule-grounded narrative.\n" +
	"Rules:\n" +
	"1) Use ONLY the provided inputs.\n" +
	"2) Do NOT invent injuries, betting lines, rumors, player statistics, or outcomes.\n" +
	"3) If a source is absent/sparse, explicitly state that limitation in the narrative.\n" +
	"4) Ground analysis in concrete available data: matchups, schedule status, trends, odds, and props coverage.\n" +
	"5) Keep tone concise and decision-useful; avoid generic filler.\n" +
	"6) Output MUST be valid JSON ONLY (no markdown, no code fences).\n"

// responseSchema describes the expected output shape; it is embedded in
// the prompt verbatim so the model mirrors the field names exactly.
var responseSchema = map[string]any{
	"macro_summary": "string (3-6 sentences). Structure: " +
		"(a) slate overview, (b) strongest available signals, (c) explicit missing-data limitations.",
	"micro_summary": map[string]any{
		"key_edges": []map[string]any{
			{
				"value_label": "string (e.g., Market Context / Trend Signal / Props Availability)",
				"edge_score":  "number 0-10",
				"text":        "string (1 sentence, grounded in specific provided input)",
			},
		},
		"risk_score":     "number 0.0-1.0",
		"risk_rationale": "string (1 sentence naming concrete limitations from the input)",
	},
	"analyst_takeaway": "string (2-4 sentences): " +
		"prioritize where data is strongest, and caution where data is missing.",
	"confidence_summary": []string{"string"},
	"metadata":           map[string]any{"model": "string"},
}

// buildSlateBlock lists today's matchups so the model grounds the
// narrative in the actual schedule.
func buildSlateBlock(in *narrative.Inputs) string {
	games := in.GamesToday
	if len(games) == 0 {
		return "Today's NBA slate: 0 games returned from API-Basketball."
	}

	lines := []string{fmt.Sprintf("Today's NBA slate (API-Basketball): %d games", len(games))}
	if len(games) > maxSlateGames {
		games = games[:maxSlateGames]
	}
	for _, g := range games {
		away, home := g.Matchup()
		venue := g.Venue
		if venue == "" {
			venue = "Venue TBD"
		}
		timeVal := g.Date
		if timeVal == "" {
			timeVal = "TBD"
		}
		lines = append(lines, fmt.Sprintf("- %s @ %s | %s %s | %s | Status: %s",
			away, home, timeVal, g.Timezone, venue, g.Status.Label()))
	}
	return strings.Join(lines, "\n")
}

// buildCoverageBlock summarizes input volume so the model can handle
// sparse data explicitly instead of inventing filler.
func buildCoverageBlock(in *narrative.Inputs) string {
	oddsGames := 0
	if in.Odds != nil {
		oddsGames = len(in.Odds.Games)
	}
	return "Input coverage snapshot:\n" +
		fmt.Sprintf("- games_today_count: %d\n", len(in.GamesToday)) +
		fmt.Sprintf("- odds_games_count: %d\n", oddsGames) +
		fmt.Sprintf("- player_trends_count: %d\n", len(in.PlayerTrends)) +
		fmt.Sprintf("- team_trends_count: %d\n", len(in.TeamTrends)) +
		fmt.Sprintf("- player_props_count: %d", len(in.PlayerProps))
}

func buildUserPrompt(in *narrative.Inputs) (string, error) {
	inputJSON, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", err
	}
	schemaJSON, err := json.MarshalIndent(responseSchema, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(buildSlateBlock(in))
	b.WriteString("\n\n")
	b.WriteString(buildCoverageBlock(in))
	b.WriteString("\n\n")
	b.WriteString("Generate an NBA slate narrative.\n\n")
	b.WriteString("Quality requirements:\n")
	b.WriteString("- Be explicit about what is known vs unavailable.\n")
	b.WriteString("- Prefer short, concrete statements tied to provided inputs.\n")
	b.WriteString("- Keep key_edges focused on the most actionable 2-5 signals.\n\n")
	b.WriteString("Return JSON matching this schema exactly:\n")
	b.Write(schemaJSON)
	b.WriteString("\n\nINPUT JSON:\n")
	b.Write(inputJSON)
	b.WriteString("\n")
	return b.String(), nil
}
