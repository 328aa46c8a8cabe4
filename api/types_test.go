package api

import (
	"encoding/json"
	"testing"

	"github.com/bigdog/serpent/game"
)

const sampleMoveRequest = `{
  "game": {"id": "g1", "ruleset": {"name": "standard", "settings": {"foodSpawnChance": 15, "minimumFood": 1}}, "timeout": 500},
  "turn": 4,
  "board": {
    "height": 11,
    "width": 11,
    "food": [{"x": 5, "y": 8}],
    "snakes": [
      {"id": "you", "health": 90, "head": {"x": 5, "y": 5}, "body": [{"x": 5, "y": 5}, {"x": 5, "y": 4}]},
      {"id": "opp", "health": 70, "head": {"x": 0, "y": 0}, "body": [{"x": 0, "y": 0}, {"x": 1, "y": 0}, {"x": 2, "y": 0}]}
    ]
  },
  "you": {"id": "you", "health": 90, "head": {"x": 5, "y": 5}, "body": [{"x": 5, "y": 5}, {"x": 5, "y": 4}]}
}`

func TestToGameState(t *testing.T) {
	var req GameRequest
	if err := json.Unmarshal([]byte(sampleMoveRequest), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	state := req.ToGameState()

	if state.Width != 11 || state.Height != 11 {
		t.Errorf("dims = %dx%d, want 11x11", state.Width, state.Height)
	}
	if state.Turn != 4 {
		t.Errorf("turn = %d, want 4", state.Turn)
	}
	if state.YouId != "you" {
		t.Errorf("youId = %q, want %q", state.YouId, "you")
	}
	if len(state.Food) != 1 || (state.Food[0] != game.Point{X: 5, Y: 8}) {
		t.Errorf("food = %v, want [(5,8)]", state.Food)
	}
	if len(state.Snakes) != 2 {
		t.Fatalf("snakes = %d, want 2", len(state.Snakes))
	}

	you := state.You()
	if you == nil {
		t.Fatal("You() returned nil")
	}
	if you.Health != 90 || you.Length() != 2 {
		t.Errorf("you health=%d len=%d, want 90/2", you.Health, you.Length())
	}
	if you.Head() != (game.Point{X: 5, Y: 5}) {
		t.Errorf("you head = %v, want (5,5)", you.Head())
	}

	opps := state.Opponents()
	if len(opps) != 1 || opps[0].Id != "opp" {
		t.Fatalf("opponents = %v, want one opp", opps)
	}
	if opps[0].Length() != 3 {
		t.Errorf("opp length = %d, want 3", opps[0].Length())
	}
}
