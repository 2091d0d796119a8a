package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TemplateModel marks summaries built by the grounded template path.
const TemplateModel = "TEMPLATE_GROUNDED_V1"

// BuildTemplateSummary builds a grounded non-AI narrative from the
// fetched inputs. It never invents stats or injuries: every line is
// derived from data that actually arrived, and missing sources raise
// the risk score instead of being papered over.
func BuildTemplateSummary(in *Inputs) *Summary {
	games := in.GamesToday
	oddsGames := 0
	if in.Odds != nil {
		oddsGames = len(in.Odds.Games)
	}

	var macro []string
	if len(games) > 0 {
		macro = append(macro, fmt.Sprintf("Slate overview: %d NBA game(s) were returned for the current window.", len(games)))
		sampled := games
		if len(sampled) > 3 {
			sampled = sampled[:3]
		}
		sample := make([]string, 0, len(sampled))
		for _, g := range sampled {
			away, home := g.Matchup()
			sample = append(sample, fmt.Sprintf("%s @ %s (%s)", away, home, g.Status.Label()))
		}
		macro = append(macro, "Sample matchups: "+strings.Join(sample, "; ")+".")
	} else {
		macro = append(macro, "Slate overview: no games were returned for the current window.")
	}
	macro = append(macro, fmt.Sprintf(
		"Data coverage: odds_games=%d, player_trends=%d, team_trends=%d, player_props=%d.",
		oddsGames, len(in.PlayerTrends), len(in.TeamTrends), len(in.PlayerProps)))

	edges := templateEdges(in)

	var missing []string
	if len(games) == 0 {
		missing = append(missing, "games_today")
	}
	if oddsGames == 0 {
		missing = append(missing, "odds")
	}
	if len(in.PlayerTrends) == 0 {
		missing = append(missing, "player_trends")
	}
	if len(in.PlayerProps) == 0 {
		missing = append(missing, "player_props")
	}

	risk := math.Min(0.95, round2(0.35+0.12*float64(len(missing))))
	var rationale string
	if len(missing) > 0 {
		rationale = "Higher uncertainty due to limited inputs: " + strings.Join(missing, ", ") + "."
	} else {
		rationale = "Core inputs were available; uncertainty remains because this is a template-mode summary."
	}

	confidence := "Low"
	switch {
	case risk <= 0.45:
		confidence = "High"
	case risk <= 0.65:
		confidence = "Medium"
	}

	return &Summary{
		MacroSummary: macro,
		MicroSummary: MicroSummary{
			KeyEdges:      edges,
			RiskScore:     risk,
			RiskRationale: rationale,
		},
		AnalystTakeaway: "Use this summary as a grounded slate snapshot. " +
			"Prioritize matchups with both odds and trend signals, and treat games without those inputs as lower-conviction.",
		ConfidenceSummary: []string{confidence},
		Metadata: SummaryMetadata{
			Model:   TemplateModel,
			AIUsed:  false,
			AIError: "mode=template (AI not requested).",
		},
	}
}

// templateEdges derives up to six key edges from odds, player trends,
// and player props, in that priority order.
func templateEdges(in *Inputs) []KeyEdge {
	edges := []KeyEdge{}

	if in.Odds != nil {
		oddsGames := in.Odds.Games
		if len(oddsGames) > 3 {
			oddsGames = oddsGames[:3]
		}
		for _, g := range oddsGames {
			away, home := g.AwayTeam, g.HomeTeam
			if away == "" {
				away = "Away"
			}
			if home == "" {
				home = "Home"
			}
			awayML, awayOK := g.Moneyline["away"]
			homeML, homeOK := g.Moneyline["home"]
			var text string
			if awayOK && homeOK {
				text = fmt.Sprintf("%s @ %s: moneyline context shows away %d and home %d.",
					away, home, awayML.American, homeML.American)
			} else {
				text = fmt.Sprintf("%s @ %s: moneyline context available with partial pricing detail.", away, home)
			}
			edges = append(edges, KeyEdge{ValueLabel: "Market Context", EdgeScore: 5.0, Text: text})
		}
	}

	trends := in.PlayerTrends
	if len(trends) > 2 {
		trends = trends[:2]
	}
	for _, t := range trends {
		player := t.PlayerName
		if player == "" {
			player = "Player"
		}
		stat := t.StatType
		if stat == "" {
			stat = "stat"
		}
		direction := t.TrendDirection
		if direction == "" {
			direction = "neutral"
		}
		edges = append(edges, KeyEdge{
			ValueLabel: "Trend Signal",
			EdgeScore:  5.5,
			Text:       fmt.Sprintf("%s %s trend is %s with average=%s.", player, stat, direction, trimFloat(t.Average)),
		})
	}

	props := in.PlayerProps
	if len(props) > 2 {
		props = props[:2]
	}
	for _, p := range props {
		player := p.PlayerName
		if player == "" {
			player = "Player"
		}
		market := p.Market
		if market == "" {
			market = "player market"
		}
		line := "n/a"
		if p.Line != nil {
			line = trimFloat(*p.Line)
		}
		edges = append(edges, KeyEdge{
			ValueLabel: "Props Availability",
			EdgeScore:  5.0,
			Text:       fmt.Sprintf("%s has %s posted with line=%s.", player, market, line),
		})
	}

	if len(edges) > 6 {
		edges = edges[:6]
	}
	return edges
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
