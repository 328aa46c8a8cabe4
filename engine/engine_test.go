package engine

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/bigdog/serpent/game"
)

func dumpState(state *game.GameState) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d You=%s\n", state.Turn, state.Width, state.Height, state.YouId)

	fmt.Fprintf(&b, "Food(%d):", len(state.Food))
	for _, f := range state.Food {
		fmt.Fprintf(&b, " (%d,%d)", f.X, f.Y)
	}
	b.WriteString("\n")

	snakes := make([]game.Snake, len(state.Snakes))
	copy(snakes, state.Snakes)
	sort.Slice(snakes, func(i, j int) bool { return snakes[i].Id < snakes[j].Id })
	for _, s := range snakes {
		fmt.Fprintf(&b, "Snake %s Health=%d Len=%d Body:", s.Id, s.Health, len(s.Body))
		for _, p := range s.Body {
			fmt.Fprintf(&b, " (%d,%d)", p.X, p.Y)
		}
		b.WriteString("\n")
	}

	w, h := int(state.Width), int(state.Height)
	if w > 0 && h > 0 && w <= 40 && h <= 40 {
		food := make(map[game.Point]bool, len(state.Food))
		for _, f := range state.Food {
			food[f] = true
		}
		occ := make(map[game.Point]bool, 64)
		head := make(map[game.Point]bool, 8)
		for _, s := range state.Snakes {
			for i, p := range s.Body {
				occ[p] = true
				if i == 0 {
					head[p] = true
				}
			}
		}

		b.WriteString("Board:\n")
		for y := h - 1; y >= 0; y-- {
			for x := 0; x < w; x++ {
				p := game.Point{X: int32(x), Y: int32(y)}
				switch {
				case head[p]:
					b.WriteByte('H')
				case food[p]:
					b.WriteByte('F')
				case occ[p]:
					b.WriteByte('o')
				default:
					b.WriteByte('.')
				}
			}
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func logDecision(t *testing.T, name string, state *game.GameState, d Decision) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n%sMode=%s Move=%s Fallback=%v ForcedRisk=%v\n",
		name, dumpState(state), d.Mode, d.Move, d.Fallback, d.ForcedRisk)
	for _, c := range d.Candidates {
		fmt.Fprintf(&b, "  %-5s next=(%d,%d) fatal=%v score=%.2f\n", c.Move, c.Next.X, c.Next.Y, c.Fatal, c.Score)
	}
	t.Log(b.String())
}

func TestDecide_SeeksFoodStraightAhead(t *testing.T) {
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body:   []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}},
		}},
		Food: []game.Point{{X: 5, Y: 8}},
	}

	d := Decide(state, DefaultOptions())
	logDecision(t, "food straight ahead", state, d)

	if d.Mode != ModeDominant {
		t.Fatalf("mode=%s want=dominant", d.Mode)
	}
	if d.Move != game.MoveUp {
		t.Fatalf("move=%s want=up", d.Move)
	}
	if d.Fallback || d.ForcedRisk {
		t.Fatalf("unexpected fallback=%v forcedRisk=%v", d.Fallback, d.ForcedRisk)
	}
}

func TestDecide_ExcludesLosingHeadToHead(t *testing.T) {
	// Moving up to (0,6) walks into the one-step reach of an equal-length
	// opponent with head (0,7). That candidate must be marked fatal and
	// must not be chosen.
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 0, Y: 5}, {X: 0, Y: 4}, {X: 0, Y: 3}}},
			{Id: "opp", Health: 50, Body: []game.Point{{X: 0, Y: 7}, {X: 0, Y: 8}, {X: 0, Y: 9}}},
		},
	}

	d := Decide(state, DefaultOptions())
	logDecision(t, "losing head-to-head", state, d)

	if d.Move == game.MoveUp {
		t.Fatalf("move=up despite guaranteed-loss head-to-head")
	}
	found := false
	for _, c := range d.Candidates {
		if c.Move == game.MoveUp {
			found = true
			if !c.Fatal {
				t.Fatalf("up candidate not marked fatal")
			}
			if c.Score != FatalScore {
				t.Fatalf("up score=%v want sentinel %v", c.Score, FatalScore)
			}
		}
	}
	if !found {
		t.Fatalf("up candidate missing from ranking")
	}
}

func TestDecide_EscapesOntoVacatingTail(t *testing.T) {
	// Food next to the head does not pin the tail: only a move that itself
	// eats holds the tail in place. Both open cells sit in the reach of a
	// longer opponent, so the vacating tail is the one safe move and the
	// decision must not be a forced risk.
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{
				{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 5},
			}},
			{Id: "opp", Health: 50, Body: []game.Point{
				{X: 6, Y: 6}, {X: 7, Y: 6}, {X: 8, Y: 6}, {X: 8, Y: 5}, {X: 8, Y: 4},
			}},
		},
		Food: []game.Point{{X: 5, Y: 6}},
	}

	d := Decide(state, DefaultOptions())
	logDecision(t, "escape onto tail", state, d)

	if d.Move != game.MoveLeft {
		t.Fatalf("move=%s want=left onto the vacating tail", d.Move)
	}
	if d.Fallback || d.ForcedRisk {
		t.Fatalf("tail escape flagged fallback=%v forcedRisk=%v", d.Fallback, d.ForcedRisk)
	}
}

func TestDecide_NoSafeMoveReturnsFallback(t *testing.T) {
	// Head boxed in by its own body on a 3x3 board: up is the neck, every
	// other neighbor is a still-occupied segment.
	state := &game.GameState{
		Width:  3,
		Height: 3,
		YouId:  "me",
		Snakes: []game.Snake{{
			Id:     "me",
			Health: 50,
			Body: []game.Point{
				{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0},
				{X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2},
			},
		}},
	}

	d := Decide(state, DefaultOptions())
	logDecision(t, "boxed in", state, d)

	if !d.Fallback {
		t.Fatalf("expected fallback decision")
	}
	if d.Move != FallbackMove {
		t.Fatalf("move=%s want=%s", d.Move, FallbackMove)
	}
}

func TestDecide_AllCandidatesFatalIsForcedRisk(t *testing.T) {
	// Both remaining safe moves walk into the reach of longer opponents.
	// The engine must keep the top-ranked candidate and flag the decision.
	state := &game.GameState{
		Width:  3,
		Height: 5,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 50, Body: []game.Point{{X: 1, Y: 0}, {X: 1, Y: 1}}},
			{Id: "a", Health: 50, Body: []game.Point{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3}}},
			{Id: "b", Health: 50, Body: []game.Point{{X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3}}},
		},
	}

	d := Decide(state, DefaultOptions())
	logDecision(t, "all fatal", state, d)

	if d.Fallback {
		t.Fatalf("unexpected fallback: safe moves existed")
	}
	if !d.ForcedRisk {
		t.Fatalf("expected forced-risk decision")
	}
	if len(d.Candidates) == 0 || d.Move != d.Candidates[0].Move {
		t.Fatalf("forced-risk move=%s does not match top candidate", d.Move)
	}
}

func TestDecide_DeterministicAcrossRuns(t *testing.T) {
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 70, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}, {X: 5, Y: 2}}},
			{Id: "opp", Health: 70, Body: []game.Point{{X: 8, Y: 8}, {X: 8, Y: 7}, {X: 8, Y: 6}}},
		},
		Food: []game.Point{{X: 2, Y: 5}, {X: 9, Y: 2}},
	}

	first := Decide(state, DefaultOptions())
	for i := 0; i < 10; i++ {
		again := Decide(state, DefaultOptions())
		if again.Move != first.Move || again.Mode != first.Mode {
			t.Fatalf("run %d diverged: move=%s mode=%s want move=%s mode=%s",
				i, again.Move, again.Mode, first.Move, first.Mode)
		}
		for j := range again.Candidates {
			if again.Candidates[j] != first.Candidates[j] {
				t.Fatalf("run %d candidate %d diverged: %+v vs %+v",
					i, j, again.Candidates[j], first.Candidates[j])
			}
		}
	}
}

func TestDecide_DoesNotMutateSnapshot(t *testing.T) {
	state := &game.GameState{
		Width:  7,
		Height: 7,
		YouId:  "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 40, Body: []game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}}},
			{Id: "opp", Health: 40, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}}},
		},
		Food: []game.Point{{X: 1, Y: 1}},
	}
	before := state.Clone()

	Decide(state, DefaultOptions())

	if state.Width != before.Width || state.Height != before.Height || state.YouId != before.YouId {
		t.Fatalf("board fields mutated")
	}
	for i := range before.Snakes {
		for j := range before.Snakes[i].Body {
			if state.Snakes[i].Body[j] != before.Snakes[i].Body[j] {
				t.Fatalf("snake %s body mutated at %d", before.Snakes[i].Id, j)
			}
		}
	}
	for i := range before.Food {
		if state.Food[i] != before.Food[i] {
			t.Fatalf("food mutated at %d", i)
		}
	}
}
