package engine

import (
	"sort"

	"github.com/bigdog/serpent/game"
)

// Options bounds the flood-fill horizons. Callers under a tight move
// deadline shrink the depths; correctness checks are never skipped.
type Options struct {
	NearDepth     int32
	ExtendedDepth int32
}

// DefaultOptions returns the standard depth horizons.
func DefaultOptions() Options {
	return Options{NearDepth: DefaultNearDepth, ExtendedDepth: DefaultExtendedDepth}
}

// Decision is the full outcome of one turn: the chosen move plus enough
// context to trace why it won.
type Decision struct {
	Move game.Move
	Mode Mode

	// Candidates holds every safe candidate, ranked by descending score.
	Candidates []Candidate

	// Fallback is set when no candidate passed the safety filter and the
	// documented fallback move was returned.
	Fallback bool

	// ForcedRisk is set when the validation pass found every candidate
	// contested and kept the top choice anyway.
	ForcedRisk bool
}

// Decide runs the whole pipeline over one snapshot: safety filter, threat
// model, mode-gated scoring, and the final validation pass. It is a pure
// function; the snapshot is never mutated.
func Decide(state *game.GameState, opts Options) Decision {
	if opts.NearDepth <= 0 {
		opts.NearDepth = DefaultNearDepth
	}
	if opts.ExtendedDepth < opts.NearDepth {
		opts.ExtendedDepth = opts.NearDepth
	}

	you := state.You()
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return Decision{Move: FallbackMove, Mode: ModeSurvival, Fallback: true}
	}

	oppLens := make([]int, 0, len(state.Snakes))
	for _, opp := range state.Opponents() {
		oppLens = append(oppLens, opp.Length())
	}
	mode := SelectMode(you.Health, you.Length(), oppLens)

	safe := SafeMoves(state)
	if len(safe) == 0 {
		// No safe move exists. This is a documented terminal branch, not
		// an error: return the fixed fallback and let the game end.
		return Decision{Move: FallbackMove, Mode: mode, Fallback: true}
	}

	occ := newOccupancy(state)
	head := you.Head()

	candidates := make([]Candidate, 0, len(safe))
	for _, m := range safe {
		c := Candidate{Move: m, Next: m.Apply(head)}

		threatScore, fatal := HeadToHead(c.Next, you.Length(), state)
		if fatal || hitsOpponentBody(c.Next, state) {
			c.Fatal = true
			c.Score = FatalScore
			c.Breakdown.Threat = FatalScore
		} else {
			scoreCandidate(&c, threatScore, you, state, occ, mode, opts)
		}

		candidates = append(candidates, c)
	}

	// Stable sort: candidates were built in the fixed move order, so equal
	// scores resolve identically every run.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	d := Decision{Mode: mode, Candidates: candidates}

	// Validation pass: re-check the winner against the threat model, in
	// case other factors ranked a contested cell on top. Walk down the
	// ranking to the first candidate that passes; if none do, keep the
	// original winner and flag the decision as forced risk.
	chosen := -1
	for i := range candidates {
		if !fatalAt(candidates[i].Next, you.Length(), state) {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		chosen = 0
		d.ForcedRisk = true
	}

	d.Move = candidates[chosen].Move
	return d
}
