package narrative

import (
	"strings"
	"testing"

	"github.com/Jayprox/ai-agent-nba/source"
)

func TestInputsDigest_Deterministic(t *testing.T) {
	in := fullInputs()

	first := InputsDigest(in)
	for i := 0; i < 20; i++ {
		if got := InputsDigest(in); got != first {
			t.Fatalf("digest changed across runs: %q vs %q", got, first)
		}
	}
	if !strings.HasPrefix(first, "sha1:") {
		t.Errorf("digest = %q, want sha1: prefix", first)
	}
	if len(first) != len("sha1:")+40 {
		t.Errorf("digest length = %d", len(first))
	}
}

func TestInputsDigest_SensitiveToGames(t *testing.T) {
	a := fullInputs()
	b := fullInputs()
	b.GamesToday = append(b.GamesToday, source.Game{ID: 99})

	if InputsDigest(a) == InputsDigest(b) {
		t.Error("digest should change when the slate changes")
	}
}

func TestInputsDigest_SensitiveToCounts(t *testing.T) {
	a := fullInputs()
	b := fullInputs()
	b.PlayerProps = append(b.PlayerProps, source.PlayerProp{PlayerName: "X"})

	if InputsDigest(a) == InputsDigest(b) {
		t.Error("digest should change when props count changes")
	}
}

func TestInputsDigest_NilInputs(t *testing.T) {
	got := InputsDigest(nil)
	if !strings.HasPrefix(got, "sha1:") {
		t.Errorf("digest of nil inputs = %q", got)
	}
	if got != InputsDigest(nil) {
		t.Error("nil digest should be stable")
	}
}

func TestInputsDigest_CapsGames(t *testing.T) {
	a := &Inputs{}
	b := &Inputs{}
	for i := 0; i < 35; i++ {
		a.GamesToday = append(a.GamesToday, source.Game{ID: int64(i)})
		b.GamesToday = append(b.GamesToday, source.Game{ID: int64(i)})
	}
	// A mutation past the 30-game cap must not move the digest.
	b.GamesToday[34].HomeTeam.Name = "Changed"

	if InputsDigest(a) != InputsDigest(b) {
		t.Error("games beyond the cap should not affect the digest")
	}
}
