package engine

import (
	"testing"

	"github.com/bigdog/serpent/game"
)

// occupiedAfterMove mirrors the safety contract for verification: every
// self segment counts except the tail, which vacates unless the move
// itself lands on food.
func occupiedAfterMove(s *game.Snake, next game.Point, food []game.Point) bool {
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

func TestSafeMoves_NeverOutOfBoundsOrOntoSelf(t *testing.T) {
	states := []*game.GameState{
		{
			Width: 11, Height: 11, YouId: "me",
			Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}}},
		},
		{
			Width: 11, Height: 11, YouId: "me",
			Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 10, Y: 10}, {X: 10, Y: 9}, {X: 9, Y: 9}, {X: 9, Y: 10}}}},
		},
		{
			Width: 5, Height: 5, YouId: "me",
			Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 2, Y: 3}}}},
			Food:   []game.Point{{X: 3, Y: 2}},
		},
		{
			Width: 3, Height: 3, YouId: "me",
			Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}}},
		},
	}

	for i, state := range states {
		you := state.You()
		for _, m := range SafeMoves(state) {
			next := m.Apply(you.Head())
			if !state.InBounds(next) {
				t.Fatalf("state %d: move %s leaves the board: %v", i, m, next)
			}
			if occupiedAfterMove(you, next, state.Food) {
				t.Fatalf("state %d: move %s lands on still-occupied segment %v", i, m, next)
			}
		}
	}
}

func TestSafeMoves_RejectsReversal(t *testing.T) {
	// The neck cell vacates next turn, but reversing onto it is illegal
	// regardless.
	state := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}}}},
	}

	for _, m := range SafeMoves(state) {
		if m == game.MoveDown {
			t.Fatalf("reversal onto neck allowed")
		}
	}
}

func TestSafeMoves_TailVacates(t *testing.T) {
	// Head chases its own tail around a 2x2 loop. The tail cell frees up
	// this turn, so moving onto it is safe.
	state := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{
			{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 5},
		}}},
	}

	moves := SafeMoves(state)
	hasLeft := false
	for _, m := range moves {
		if m == game.MoveLeft {
			hasLeft = true
		}
	}
	if !hasLeft {
		t.Fatalf("tail cell not treated as vacating, moves=%v", moves)
	}
}

func TestSafeMoves_TailVacatesDespiteAdjacentFood(t *testing.T) {
	// Food sits next to the head but not on the tail cell. The candidate
	// move is known, so only a move that eats holds the tail; the tail
	// cell stays reachable.
	state := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{
			{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 5},
		}}},
		Food: []game.Point{{X: 5, Y: 6}},
	}

	hasLeft := false
	for _, m := range SafeMoves(state) {
		if m == game.MoveLeft {
			hasLeft = true
		}
	}
	if !hasLeft {
		t.Fatalf("tail cell held because of food elsewhere, moves=%v", SafeMoves(state))
	}
}

func TestSafeMoves_TailHeldWhenMoveLandsOnFood(t *testing.T) {
	// Food on the tail cell itself: moving there eats, the snake grows
	// and the tail stays, so the move is a self collision.
	state := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{
			{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 5},
		}}},
		Food: []game.Point{{X: 4, Y: 5}},
	}

	for _, m := range SafeMoves(state) {
		if m == game.MoveLeft {
			t.Fatalf("tail cell treated as free while the move eats")
		}
	}
}
