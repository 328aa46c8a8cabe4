package eval

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/game"
	"github.com/bigdog/serpent/replay/db"
	"github.com/bigdog/serpent/replay/download"
)

func frameJSON(t *testing.T, f download.FrameData) string {
	t.Helper()
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return string(b)
}

func coords(ps ...[2]int) []download.Coord {
	out := make([]download.Coord, len(ps))
	for i, p := range ps {
		out[i] = download.Coord{X: p[0], Y: p[1]}
	}
	return out
}

func TestFrameToGameState(t *testing.T) {
	frame := &download.FrameData{
		Turn: 3,
		Food: coords([2]int{5, 8}),
		Snakes: []download.SnakeData{
			{ID: "b", Health: 70, Body: coords([2]int{0, 0}, [2]int{1, 0})},
			{ID: "a", Health: 90, Body: coords([2]int{5, 5}, [2]int{5, 4})},
			{ID: "dead", Health: 0, Body: coords([2]int{9, 9}), Death: &download.Death{Cause: "wall", Turn: 2}},
		},
		Board: download.BoardData{Width: 11, Height: 11},
	}

	state := frameToGameState(frame)
	if state == nil {
		t.Fatal("frameToGameState returned nil")
	}
	if state.Turn != 3 {
		t.Errorf("turn = %d, want 3", state.Turn)
	}
	if len(state.Snakes) != 2 {
		t.Fatalf("snakes = %d, want 2 (dead dropped)", len(state.Snakes))
	}
	// Sorted by ID.
	if state.Snakes[0].Id != "a" || state.Snakes[1].Id != "b" {
		t.Errorf("snake order = %s,%s, want a,b", state.Snakes[0].Id, state.Snakes[1].Id)
	}
}

func TestActualMove(t *testing.T) {
	snake := &game.Snake{Id: "s", Body: []game.Point{{X: 5, Y: 5}}}

	cases := []struct {
		next [2]int
		want game.Move
		ok   bool
	}{
		{[2]int{5, 6}, game.MoveUp, true},
		{[2]int{5, 4}, game.MoveDown, true},
		{[2]int{4, 5}, game.MoveLeft, true},
		{[2]int{6, 5}, game.MoveRight, true},
		{[2]int{7, 5}, 0, false}, // teleport, not a legal step
	}

	for _, tc := range cases {
		got, ok := actualMove(snake, map[string]download.Coord{
			"s": {X: tc.next[0], Y: tc.next[1]},
		})
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("actualMove to %v = %v/%v, want %v/%v", tc.next, got, ok, tc.want, tc.ok)
		}
	}

	if _, ok := actualMove(snake, map[string]download.Coord{}); ok {
		t.Error("missing next head should not produce a move")
	}
}

func TestRunCountsAgreement(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "replays.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer database.Close()

	// One snake, food straight up. The engine agrees with the recorded
	// "up" move on turn 0.
	f0 := download.FrameData{
		Turn: 0,
		Food: coords([2]int{5, 8}),
		Snakes: []download.SnakeData{
			{ID: "a", Health: 90, Body: coords([2]int{5, 5}, [2]int{5, 4}, [2]int{5, 3})},
		},
		Board: download.BoardData{Width: 11, Height: 11},
	}
	f1 := download.FrameData{
		Turn: 1,
		Food: coords([2]int{5, 8}),
		Snakes: []download.SnakeData{
			{ID: "a", Health: 89, Body: coords([2]int{5, 6}, [2]int{5, 5}, [2]int{5, 4})},
		},
		Board: download.BoardData{Width: 11, Height: 11},
	}

	err = database.InsertGame(db.Game{ID: "g1", Ruleset: "standard"}, []db.Frame{
		{GameID: "g1", Turn: 0, RawJSON: frameJSON(t, f0)},
		{GameID: "g1", Turn: 1, RawJSON: frameJSON(t, f1)},
	})
	if err != nil {
		t.Fatalf("InsertGame: %v", err)
	}

	e := NewEvaluator(database, engine.DefaultOptions())
	report, err := e.Run(10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Games != 1 {
		t.Errorf("Games = %d, want 1", report.Games)
	}
	if report.Decisions != 1 {
		t.Fatalf("Decisions = %d, want 1", report.Decisions)
	}
	if report.Agreed != 1 {
		t.Errorf("Agreed = %d, want 1", report.Agreed)
	}
	if report.AgreementRate() != 1.0 {
		t.Errorf("AgreementRate = %v, want 1.0", report.AgreementRate())
	}
	if len(report.ByMode) == 0 {
		t.Error("ByMode is empty")
	}

	// Second run sees nothing new.
	report, err = e.Run(10)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Games != 0 || report.Decisions != 0 {
		t.Errorf("second run games/decisions = %d/%d, want 0/0", report.Games, report.Decisions)
	}
}
