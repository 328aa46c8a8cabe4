// Package engine implements the per-turn decision pipeline: a safety
// filter over the four cardinal moves, one-step opponent threat
// prediction, bounded flood-fill space analysis, strategy classification
// and mode-gated composite scoring, finished by a validation pass over the
// top-ranked candidate.
//
// Everything here is a pure function of the snapshot handed in. Decisions
// for different turns or games can run concurrently without coordination.
package engine

import (
	"github.com/bigdog/serpent/game"
)

// FallbackMove is returned when every candidate fails the safety filter.
// There is no good answer at that point; picking a fixed move keeps the
// terminal branch deterministic.
const FallbackMove = game.MoveDown

// SafeMoves returns the subset of moves that are not immediately fatal for
// the ego snake: in bounds, not a reversal onto the neck, and not a
// still-occupied segment of its own body. Opponent collisions are handled
// by the threat model, not here.
func SafeMoves(state *game.GameState) []game.Move {
	you := state.You()
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return nil
	}

	head := you.Head()
	moves := make([]game.Move, 0, 4)

	for _, m := range game.Moves {
		next := m.Apply(head)
		if !state.InBounds(next) {
			continue
		}
		// Reversal is illegal even when the neck cell is about to vacate.
		if len(you.Body) > 1 && next == you.Body[1] {
			continue
		}
		if hitsSelfBody(you, next, state.Food) {
			continue
		}
		moves = append(moves, m)
	}

	return moves
}

// hitsSelfBody reports whether next lands on a segment of the ego snake
// that is still occupied after this turn. The candidate move is known
// here, so the tail vacates unless next itself is a food cell: only an
// actual eat keeps the tail in place.
func hitsSelfBody(s *game.Snake, next game.Point, food []game.Point) bool {
	last := len(s.Body) - 1
	for i, seg := range s.Body {
		if i == last && last > 0 && !isFood(next, food) {
			continue
		}
		if seg == next {
			return true
		}
	}
	return false
}

func isFood(p game.Point, food []game.Point) bool {
	for _, f := range food {
		if f == p {
			return true
		}
	}
	return false
}

// hitsBody reports whether next lands on a segment of s that is still
// occupied after this turn. The tail vacates unless the snake looks about
// to eat. Used for opponents, whose move this turn is unknown.
func hitsBody(s *game.Snake, next game.Point, food []game.Point) bool {
	last := len(s.Body) - 1
	for i, seg := range s.Body {
		if i == last && last > 0 && !willGrow(s, food) {
			continue
		}
		if seg == next {
			return true
		}
	}
	return false
}

// willGrow approximates the eat-this-turn check for a snake whose move is
// not known: food adjacent to the head means the tail may not vacate, so
// occupancy errs on the occupied side.
func willGrow(s *game.Snake, food []game.Point) bool {
	head := s.Head()
	for _, f := range food {
		if head.Dist(f) == 1 {
			return true
		}
	}
	return false
}
