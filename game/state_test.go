package game

import "testing"

func TestDist(t *testing.T) {
	cases := []struct {
		a, b Point
		want int32
	}{
		{Point{X: 0, Y: 0}, Point{X: 0, Y: 0}, 0},
		{Point{X: 2, Y: 3}, Point{X: 5, Y: 1}, 5},
		{Point{X: 5, Y: 1}, Point{X: 2, Y: 3}, 5},
		{Point{X: 0, Y: 10}, Point{X: 10, Y: 0}, 20},
	}
	for _, tc := range cases {
		if got := tc.a.Dist(tc.b); got != tc.want {
			t.Errorf("Dist(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOpponentsSkipsYouAndDead(t *testing.T) {
	state := &GameState{
		Width:  11,
		Height: 11,
		YouId:  "you",
		Snakes: []Snake{
			{Id: "you", Health: 90, Body: []Point{{X: 5, Y: 5}}},
			{Id: "alive", Health: 50, Body: []Point{{X: 1, Y: 1}}},
			{Id: "dead", Health: 0, Body: []Point{{X: 9, Y: 9}}},
		},
	}

	opps := state.Opponents()
	if len(opps) != 1 || opps[0].Id != "alive" {
		t.Errorf("Opponents = %v, want just alive", opps)
	}

	you := state.You()
	if you == nil || you.Id != "you" {
		t.Fatalf("You = %v", you)
	}

	state.YouId = "missing"
	if state.You() != nil {
		t.Error("You should be nil when the ego id is absent")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	state := &GameState{
		Width:  11,
		Height: 11,
		YouId:  "you",
		Turn:   4,
		Food:   []Point{{X: 3, Y: 3}},
		Snakes: []Snake{
			{Id: "you", Health: 90, Body: []Point{{X: 5, Y: 5}, {X: 5, Y: 4}}},
		},
	}

	clone := state.Clone()
	clone.Food[0] = Point{X: 9, Y: 9}
	clone.Snakes[0].Body[0] = Point{X: 0, Y: 0}
	clone.Snakes[0].Health = 1
	clone.Turn = 99

	if state.Food[0] != (Point{X: 3, Y: 3}) {
		t.Error("clone shares food slice with original")
	}
	if state.Snakes[0].Body[0] != (Point{X: 5, Y: 5}) {
		t.Error("clone shares body slice with original")
	}
	if state.Snakes[0].Health != 90 || state.Turn != 4 {
		t.Error("clone mutation leaked into original")
	}

	var nilState *GameState
	if nilState.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
