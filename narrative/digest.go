package narrative

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// maxDigestGames caps how many games feed the digest. The digest is a
// traceability aid, not a full content hash.
const maxDigestGames = 30

// prunedGame and prunedInputs declare fields in lexical key order so
// the canonical JSON is stable across runs.
type prunedGame struct {
	Away   string `json:"away"`
	Home   string `json:"home"`
	ID     int64  `json:"id"`
	Status string `json:"status"`
	TS     int64  `json:"ts"`
}

type prunedInputs struct {
	GamesToday      []prunedGame `json:"games_today"`
	OddsLen         int          `json:"odds_len"`
	PlayerPropsLen  int          `json:"player_props_len"`
	PlayerTrendsLen int          `json:"player_trends_len"`
	TeamTrendsLen   int          `json:"team_trends_len"`
}

// InputsDigest returns a deterministic "sha1:<hex>" digest over a
// pruned view of the grounding inputs, for debugging and traceability.
func InputsDigest(in *Inputs) string {
	pruned := prunedInputs{GamesToday: []prunedGame{}}
	if in != nil {
		games := in.GamesToday
		if len(games) > maxDigestGames {
			games = games[:maxDigestGames]
		}
		for _, g := range games {
			status := g.Status.Short
			if status == "" {
				status = g.Status.Long
			}
			pruned.GamesToday = append(pruned.GamesToday, prunedGame{
				Away:   g.AwayTeam.Name,
				Home:   g.HomeTeam.Name,
				ID:     g.ID,
				Status: status,
				TS:     g.Timestamp,
			})
		}
		if in.Odds != nil {
			pruned.OddsLen = len(in.Odds.Games)
		}
		pruned.PlayerPropsLen = len(in.PlayerProps)
		pruned.PlayerTrendsLen = len(in.PlayerTrends)
		pruned.TeamTrendsLen = len(in.TeamTrends)
	}

	data, err := json.Marshal(pruned)
	if err != nil {
		// Marshal of the fixed pruned shape cannot fail, but keep the
		// digest total regardless.
		data = []byte(fmt.Sprintf("%+v", pruned))
	}
	sum := sha1.Sum(data)
	return "sha1:" + hex.EncodeToString(sum[:])
}
