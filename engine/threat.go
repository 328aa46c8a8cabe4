package engine

import (
	"github.com/bigdog/serpent/game"
)

// FatalScore is the instant-loss sentinel. A candidate flagged fatal gets
// exactly this score, overriding every other sub-score.
const FatalScore = -1000.0

// HeadToHead predicts one-step opponent reachability at next and scores the
// engagement. fatal is true when an opponent at least as long as the ego
// snake has next among its own in-bounds one-step neighbors: a head-to-head
// there is at best a draw, so the candidate is a guaranteed loss risk.
// Contested cells against strictly shorter opponents score positively, as
// does closing to within two cells of a shorter head.
func HeadToHead(next game.Point, youLen int, state *game.GameState) (float64, bool) {
	score := 0.0
	fatal := false

	for _, opp := range state.Opponents() {
		oppHead := opp.Head()
		oppLen := opp.Length()

		for _, m := range game.Moves {
			reach := m.Apply(oppHead)
			if reach != next || !state.InBounds(reach) {
				continue
			}
			if oppLen >= youLen {
				fatal = true
			} else {
				// We strictly win the exchange.
				score += 50.0
			}
		}

		// Hunting pressure: reward proximity to strictly shorter heads.
		if youLen > oppLen {
			if d := next.Dist(oppHead); d < 3 {
				score += float64(3-d) * 10.0
			}
		}
	}

	return score, fatal
}

// hitsOpponentBody reports whether next lands on an opponent segment still
// occupied after this turn, applying the per-snake tail-vacate rule.
func hitsOpponentBody(next game.Point, state *game.GameState) bool {
	for _, opp := range state.Opponents() {
		if hitsBody(opp, next, state.Food) {
			return true
		}
	}
	return false
}

// fatalAt is the full guaranteed-loss check used both during scoring and by
// the final validation pass: an occupied opponent cell or a losing
// head-to-head.
func fatalAt(next game.Point, youLen int, state *game.GameState) bool {
	if hitsOpponentBody(next, state) {
		return true
	}
	_, fatal := HeadToHead(next, youLen, state)
	return fatal
}
