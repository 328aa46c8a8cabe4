package engine

import (
	"github.com/bigdog/serpent/game"
)

// Space evaluation depth horizons. The bounds exist to cap worst-case work
// at O(depth x grid); callers under a tight deadline shrink them rather
// than skip the evaluation.
const (
	DefaultNearDepth     = 3
	DefaultExtendedDepth = 7
)

// SpaceReport is the result of the bounded flood fill from a candidate head.
// Near counts unoccupied cells reachable within the near horizon, including
// the start cell itself at depth zero; Extended counts the cells between the
// near and extended horizons. OpenDirections counts unoccupied in-bounds
// cells among the four immediate neighbors; it catches single-exit traps a
// raw cell count misses.
type SpaceReport struct {
	Near           int
	Extended       int
	OpenDirections int
}

// Score folds the report into the composite space term. Near space is
// weighted well above extended space, and fewer than two exits is treated
// as a trap.
func (r SpaceReport) Score() float64 {
	score := float64(r.Near)*4.0 + float64(r.Extended)*1.5 + float64(r.OpenDirections)*8.0
	if r.OpenDirections < 2 {
		score -= 20.0
	}
	if r.OpenDirections >= 3 {
		score += 15.0
	}
	return score
}

// occupancy is a flat next-turn occupancy grid built once per decision.
// Cells hold snake segments that remain occupied after this turn: every
// body segment of every live snake minus vacating tails.
type occupancy struct {
	w, h  int32
	cells []bool
}

func newOccupancy(state *game.GameState) *occupancy {
	occ := &occupancy{
		w:     state.Width,
		h:     state.Height,
		cells: make([]bool, int(state.Width)*int(state.Height)),
	}

	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Health <= 0 || len(s.Body) == 0 {
			continue
		}
		last := len(s.Body) - 1
		for j, seg := range s.Body {
			if j == last && last > 0 && !willGrow(s, state.Food) {
				continue
			}
			occ.set(seg)
		}
	}

	return occ
}

func (o *occupancy) idx(p game.Point) int {
	return int(p.Y)*int(o.w) + int(p.X)
}

func (o *occupancy) set(p game.Point) {
	if p.X >= 0 && p.X < o.w && p.Y >= 0 && p.Y < o.h {
		o.cells[o.idx(p)] = true
	}
}

// blocked treats out-of-bounds as occupied.
func (o *occupancy) blocked(p game.Point) bool {
	if p.X < 0 || p.X >= o.w || p.Y < 0 || p.Y >= o.h {
		return true
	}
	return o.cells[o.idx(p)]
}

// EvaluateSpace runs a bounded breadth-first flood fill from start and
// splits the reachable free cells across the two depth horizons. The
// traversal never revisits a cell, expands the four directions uniformly,
// and is fully deterministic.
func EvaluateSpace(start game.Point, occ *occupancy, nearDepth, extendedDepth int32) SpaceReport {
	var report SpaceReport

	for _, m := range game.Moves {
		if !occ.blocked(m.Apply(start)) {
			report.OpenDirections++
		}
	}

	type cell struct {
		p     game.Point
		depth int32
	}

	visited := make([]bool, len(occ.cells))
	queue := make([]cell, 0, 64)
	queue = append(queue, cell{p: start})

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if c.depth >= extendedDepth {
			continue
		}
		if occ.blocked(c.p) {
			continue
		}
		i := occ.idx(c.p)
		if visited[i] {
			continue
		}
		visited[i] = true

		if c.depth < nearDepth {
			report.Near++
		} else {
			report.Extended++
		}

		for _, m := range game.Moves {
			queue = append(queue, cell{p: m.Apply(c.p), depth: c.depth + 1})
		}
	}

	return report
}

// reachableWithin counts free cells reachable from start within maxDepth
// steps. skipStart lets callers measure from a currently-occupied cell,
// such as an opponent's head.
func reachableWithin(start game.Point, occ *occupancy, maxDepth int32, skipStart bool) int {
	type cell struct {
		p     game.Point
		depth int32
	}

	visited := make([]bool, len(occ.cells))
	count := 0
	queue := []cell{{p: start}}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if c.depth >= maxDepth {
			continue
		}
		if c.p.X < 0 || c.p.X >= occ.w || c.p.Y < 0 || c.p.Y >= occ.h {
			continue
		}
		if occ.blocked(c.p) && !(skipStart && c.p == start) {
			continue
		}
		i := occ.idx(c.p)
		if visited[i] {
			continue
		}
		visited[i] = true

		if !(skipStart && c.p == start) {
			count++
		}

		for _, m := range game.Moves {
			queue = append(queue, cell{p: m.Apply(c.p), depth: c.depth + 1})
		}
	}

	return count
}
