package engine

import (
	"github.com/bigdog/serpent/game"
)

// Breakdown holds the individual sub-scores of a candidate, pre-weighting.
// Keeping them as named fields makes each factor independently testable
// and keeps decision traces readable.
type Breakdown struct {
	Straight float64
	Threat   float64
	Food     float64
	Hunt     float64
	Avoid    float64
	Block    float64
	Space    float64
	Center   float64
	Coverage float64
}

// Candidate is one evaluated move: the move itself, the resulting head
// cell, the fatality verdict and the weighted composite score.
type Candidate struct {
	Move      game.Move
	Next      game.Point
	Fatal     bool
	Score     float64
	Breakdown Breakdown
}

// weights gates the scoring factors per mode. A zero weight means the
// factor is skipped entirely, not computed and discarded.
type weights struct {
	straight float64
	food     float64
	hunt     float64
	avoid    float64
	block    float64
	space    float64
	center   float64
	coverage float64
}

// modeWeights returns the fixed factor weighting for a mode. Positional
// factors (straight line, space, center, coverage) stay active in every
// mode; the food/hunt/avoid/block mix is what changes posture.
func modeWeights(m Mode, health int32) weights {
	w := weights{straight: 1.0, space: 2.5, center: 3.0, coverage: 2.0}

	switch m {
	case ModeCritical:
		w.food = 5.0
	case ModeClosingGap:
		w.food = 4.0
		w.avoid = 2.5
	case ModeOvergrown:
		w.food = 0.5
		w.hunt = 2.0
		w.block = 2.5
	case ModeConservative:
		w.food = 1.0
		w.avoid = 2.0
	case ModeUnderdog:
		// Health-graduated: a healthy underdog grows aggressively and
		// keeps its distance; a weak one just chases food.
		if health >= 20 {
			w.food = 4.0
			w.avoid = 2.5
		} else {
			w.food = 3.0
		}
	case ModeCompetitive:
		w.food = 0.5
		w.hunt = 3.0
		w.block = 2.0
	case ModeSurvival, ModeDominant:
		w.food = 2.0
	}

	return w
}

// scoreCandidate fills in the breakdown and composite score for a safe,
// non-fatal candidate. threatScore is the head-to-head engagement score
// already computed when the candidate passed the fatality check.
func scoreCandidate(c *Candidate, threatScore float64, you *game.Snake, state *game.GameState, occ *occupancy, mode Mode, opts Options) {
	w := modeWeights(mode, you.Health)
	score := 0.0

	if w.straight != 0 {
		if heading, ok := you.Heading(); ok && heading == c.Move {
			c.Breakdown.Straight = 8.0
			score += c.Breakdown.Straight * w.straight
		}
	}

	if mode != ModeDominant {
		c.Breakdown.Threat = threatScore
		score += threatScore
	}

	if w.food != 0 {
		c.Breakdown.Food = foodSeeking(c.Next, you.Head(), state, you.Length())
		score += c.Breakdown.Food * w.food
	}

	if w.hunt != 0 {
		c.Breakdown.Hunt = hunting(c.Next, you.Length(), state)
		score += c.Breakdown.Hunt * w.hunt
	}

	if w.avoid != 0 {
		c.Breakdown.Avoid = underdogAvoidance(c.Next, you.Head(), you.Length(), state)
		score += c.Breakdown.Avoid * w.avoid
	}

	if w.block != 0 {
		c.Breakdown.Block = blocking(c.Next, you, state, occ)
		score += c.Breakdown.Block * w.block
	}

	if w.space != 0 {
		c.Breakdown.Space = EvaluateSpace(c.Next, occ, opts.NearDepth, opts.ExtendedDepth).Score()
		score += c.Breakdown.Space * w.space
	}

	if w.center != 0 {
		c.Breakdown.Center = centerControl(c.Next, you.Length(), state.Width, state.Height)
		score += c.Breakdown.Center * w.center
	}

	if w.coverage != 0 {
		c.Breakdown.Coverage = areaCoverage(c.Next, you, state)
		score += c.Breakdown.Coverage * w.coverage
	}

	c.Score = score
}

// foodSeeking rewards moves that strictly reduce the Manhattan distance to
// the nearest food, heavily so at distance 0 and 1, and penalizes moving
// away. Food a closer equal-or-larger opponent contests is discounted, and
// switching toward an uncontested alternative earns the difference back.
// With no food on the board the contribution is exactly zero.
func foodSeeking(next, head game.Point, state *game.GameState, youLen int) float64 {
	if len(state.Food) == 0 {
		return 0.0
	}

	nearest := state.Food[0]
	for _, f := range state.Food[1:] {
		if head.Dist(f) < head.Dist(nearest) {
			nearest = f
		}
	}

	newDist := next.Dist(nearest)
	curDist := head.Dist(nearest)
	score := 0.0

	switch {
	case newDist < curDist:
		score += 25.0
		if curDist-newDist == 1 {
			score += 10.0
		}
		if newDist == 0 {
			score += 100.0
		} else if newDist == 1 {
			score += 40.0
		}
	case newDist > curDist:
		score -= 10.0
	}

	contested := false
	for _, opp := range state.Opponents() {
		oppDist := opp.Head().Dist(nearest)
		if oppDist >= newDist {
			continue
		}
		if opp.Length() >= youLen {
			score -= 20.0
			contested = true
		} else {
			score -= 5.0
		}
	}

	if contested && len(state.Food) > 1 {
		alt, altOk := game.Point{}, false
		for _, f := range state.Food {
			if f == nearest {
				continue
			}
			if !altOk || head.Dist(f) < head.Dist(alt) {
				alt, altOk = f, true
			}
		}
		if altOk && next.Dist(alt) < head.Dist(alt) {
			score += 15.0
		}
	}

	return score
}

// hunting rewards closing on strictly shorter opponents within a short
// radius.
func hunting(next game.Point, youLen int, state *game.GameState) float64 {
	score := 0.0
	for _, opp := range state.Opponents() {
		if youLen <= opp.Length() {
			continue
		}
		d := next.Dist(opp.Head())
		switch {
		case d <= 3:
			score += float64(4-d) * 15.0
		case d <= 5:
			score += float64(6-d) * 5.0
		}
	}
	return score
}

// underdogAvoidance penalizes proximity to strictly longer opponents in
// graduated distance bands and adds a flat penalty for closing on them.
func underdogAvoidance(next, head game.Point, youLen int, state *game.GameState) float64 {
	score := 0.0
	for _, opp := range state.Opponents() {
		if opp.Length() <= youLen {
			continue
		}
		oppHead := opp.Head()
		d := next.Dist(oppHead)
		switch {
		case d <= 2:
			score -= 30.0
		case d <= 4:
			score -= float64(5-d) * 8.0
		case d >= 6:
			score += 5.0
		}
		if d < head.Dist(oppHead) {
			score -= 15.0
		}
	}
	return score
}

// blockHealthFloor gates the blocking factor: sustaining a blockade burns
// turns, so it is only worth starting with a health reserve.
const blockHealthFloor = 30

// blocking rewards positioning adjacent to cells a constrained opponent can
// move into, when the ego snake is at least as long as the opponent.
func blocking(next game.Point, you *game.Snake, state *game.GameState, occ *occupancy) float64 {
	if you.Health < blockHealthFloor {
		return 0.0
	}

	youLen := you.Length()
	score := 0.0

	for _, opp := range state.Opponents() {
		oppHead := opp.Head()
		oppLen := opp.Length()

		for _, m := range game.Moves {
			reach := m.Apply(oppHead)
			if !state.InBounds(reach) {
				continue
			}
			if next.Dist(reach) <= 1 {
				if youLen > oppLen {
					score += 20.0
				} else if youLen == oppLen {
					score += 5.0
				}
			}
		}

		// Close in further on an opponent that is already cramped.
		if youLen > oppLen && next.Dist(oppHead) <= 2 {
			if reachableWithin(oppHead, occ, 6, true) < 15 {
				score += 15.0
			}
		}
	}

	return score
}

// centerControl rewards proximity to the board center and penalizes edge
// hugging. Long snakes get an extra bonus for holding the center.
func centerControl(next game.Point, youLen int, width, height int32) float64 {
	cx := float64(width) / 2
	cy := float64(height) / 2
	score := 0.0

	fromCenter := absf(float64(next.X)-cx) + absf(float64(next.Y)-cy)
	maxDist := cx + cy
	score += (maxDist - fromCenter) * 5.0

	if fromCenter <= 2 {
		score += 25.0
	} else if fromCenter <= 4 {
		score += 10.0
	}

	edge := min32(min32(next.X, next.Y), min32(width-1-next.X, height-1-next.Y))
	if edge == 0 {
		score -= 15.0
	} else if edge == 1 {
		score -= 8.0
	}

	if youLen > 8 && fromCenter <= 3 {
		score += float64(youLen) * 1.5
	}

	return score
}

// areaCoverage rewards territorial posture for long, healthy snakes:
// multi-quadrant body coverage, long contiguous segments bisecting the
// board, and overall body spread. Short or weak snakes contribute zero.
func areaCoverage(next game.Point, you *game.Snake, state *game.GameState) float64 {
	if you.Health < 20 || you.Length() < 5 {
		return 0.0
	}

	cx := float64(state.Width) / 2
	cy := float64(state.Height) / 2
	score := 0.0

	quadrant := func(p game.Point) [2]bool {
		return [2]bool{float64(p.X) >= cx, float64(p.Y) >= cy}
	}

	covered := make(map[[2]bool]bool, 4)
	for _, seg := range you.Body {
		covered[quadrant(seg)] = true
	}
	score += float64(len(covered)) * 8.0

	if !covered[quadrant(next)] {
		score += 20.0
	}

	if you.Length() >= 8 {
		score += bodyWalls(you, state, cx, cy)
	}

	score += bodySpread(you, state.Width, state.Height) * 3.0

	return score
}

// bodyWalls scores long straight body lines and barriers between opponents
// and the center.
func bodyWalls(you *game.Snake, state *game.GameState, cx, cy float64) float64 {
	score := 0.0

	rows := make(map[int32]int)
	cols := make(map[int32]int)
	for _, seg := range you.Body {
		rows[seg.Y]++
		cols[seg.X]++
	}
	for _, n := range rows {
		if n >= 4 {
			score += float64(n) * 3.0
		}
	}
	for _, n := range cols {
		if n >= 4 {
			score += float64(n) * 3.0
		}
	}

	if you.Length() >= 10 {
		for _, seg := range you.Body {
			if absf(float64(seg.X)-cx) <= 1 || absf(float64(seg.Y)-cy) <= 1 {
				score += 15.0
				break
			}
		}
	}

	for _, opp := range state.Opponents() {
		oppHead := opp.Head()
		between := 0
		for _, seg := range you.Body {
			x, y := float64(seg.X), float64(seg.Y)
			ox, oy := float64(oppHead.X), float64(oppHead.Y)
			betweenX := (ox < x && x < cx) || (cx < x && x < ox)
			betweenY := (oy < y && y < cy) || (cy < y && y < oy)
			if betweenX && betweenY {
				between++
			}
		}
		if between >= 3 {
			score += 12.0
		}
	}

	return score
}

// bodySpread is the body's bounding-box area as a fraction of the board,
// scaled. A spread body controls more territory than a coiled one.
func bodySpread(you *game.Snake, width, height int32) float64 {
	if you.Length() < 4 {
		return 0.0
	}

	minX, maxX := you.Body[0].X, you.Body[0].X
	minY, maxY := you.Body[0].Y, you.Body[0].Y
	for _, seg := range you.Body[1:] {
		minX = min32(minX, seg.X)
		maxX = max32(maxX, seg.X)
		minY = min32(minY, seg.Y)
		maxY = max32(maxY, seg.Y)
	}

	area := float64(maxX-minX+1) * float64(maxY-minY+1)
	return area / (float64(width) * float64(height)) * 50.0
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
