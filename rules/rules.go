// Package rules implements the full simultaneous game transition used by
// self-play and replay. The decision engine never simulates whole turns;
// this package exists so the agent can play complete games against itself.
package rules

import (
	"math/rand"

	"github.com/bigdog/serpent/game"
)

// LegalMoves returns the moves the snake identified by YouId could make
// without an immediate wall or body collision. Conservative: every body
// segment counts, tails included, since other snakes' moves are unknown.
func LegalMoves(state *game.GameState) []game.Move {
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
		if len(you.Body) > 1 && next == you.Body[1] {
			continue
		}
		blocked := false
		for i := range state.Snakes {
			s := &state.Snakes[i]
			if s.Health <= 0 {
				continue
			}
			for _, seg := range s.Body {
				if seg == next {
					blocked = true
					break
				}
			}
			if blocked {
				break
			}
		}
		if !blocked {
			moves = append(moves, m)
		}
	}

	return moves
}

// Step advances the game one turn with a move for every live snake. Snakes
// without a move die. Food rules run after movement and death resolution.
// Pass a nil rng for deterministic food decisions derived from the state.
func Step(state *game.GameState, moves map[string]game.Move, rng *rand.Rand, settings FoodSettings) *game.GameState {
	next := state.Clone()
	next.Turn++

	// New head positions for every live snake with a move.
	newHeads := make(map[string]game.Point, len(next.Snakes))
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		m, ok := moves[s.Id]
		if !ok {
			continue
		}
		newHeads[s.Id] = m.Apply(s.Head())
	}

	// Food consumption is resolved before bodies move so that two heads
	// arriving on the same food both grow.
	eaten := make(map[int]bool, len(next.Food))
	ate := make(map[string]bool, len(newHeads))
	for id, head := range newHeads {
		for i, f := range next.Food {
			if f == head {
				eaten[i] = true
				ate[id] = true
			}
		}
	}

	remaining := next.Food[:0]
	for i, f := range next.Food {
		if !eaten[i] {
			remaining = append(remaining, f)
		}
	}
	next.Food = remaining

	// Move bodies: push the new head, then either drop the tail or keep it
	// (growth) depending on whether the snake ate.
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		head, ok := newHeads[s.Id]
		if !ok {
			s.Health = 0
			continue
		}

		// Normal move first (tail advances), then growth duplicates the
		// new tail in place.
		body := make([]game.Point, 0, len(s.Body)+1)
		body = append(body, head)
		body = append(body, s.Body[:len(s.Body)-1]...)
		if ate[s.Id] {
			s.Health = 100
			body = append(body, body[len(body)-1])
		} else {
			s.Health--
		}
		s.Body = body
	}

	resolveDeaths(next)
	applyFoodRules(next, rng, settings, 0x464F4F445F535450) // "FOOD_STP" salt

	return next
}

// resolveDeaths removes snakes that starved, left the board, ran into a
// body, or lost a head-to-head. All collisions are evaluated against
// post-move bodies; identity is always the snake id.
func resolveDeaths(state *game.GameState) {
	dead := make(map[string]bool, len(state.Snakes))

	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			dead[s.Id] = true
			continue
		}
		head := s.Head()

		if !state.InBounds(head) {
			dead[s.Id] = true
			continue
		}

		for j := range state.Snakes {
			other := &state.Snakes[j]
			if other.Health <= 0 {
				continue
			}
			for k, seg := range other.Body {
				if k == 0 {
					// Head cells resolve separately below.
					continue
				}
				if seg == head {
					dead[s.Id] = true
				}
			}
		}
	}

	// Head-to-head: the strictly shorter snake dies, equals both die.
	for i := 0; i < len(state.Snakes); i++ {
		s1 := &state.Snakes[i]
		if dead[s1.Id] || s1.Health <= 0 {
			continue
		}
		for j := i + 1; j < len(state.Snakes); j++ {
			s2 := &state.Snakes[j]
			if dead[s2.Id] || s2.Health <= 0 {
				continue
			}
			if s1.Head() != s2.Head() {
				continue
			}
			switch {
			case len(s1.Body) > len(s2.Body):
				dead[s2.Id] = true
			case len(s2.Body) > len(s1.Body):
				dead[s1.Id] = true
			default:
				dead[s1.Id] = true
				dead[s2.Id] = true
			}
		}
	}

	alive := make([]game.Snake, 0, len(state.Snakes))
	for _, s := range state.Snakes {
		if dead[s.Id] {
			continue
		}
		alive = append(alive, s)
	}
	state.Snakes = alive
}

// IsGameOver reports whether one snake or fewer remains alive.
func IsGameOver(state *game.GameState) bool {
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
		}
	}
	return living <= 1
}
