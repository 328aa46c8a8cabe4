// Package eval replays downloaded games through the decision engine and
// measures how often it agrees with the moves real snakes made.
package eval

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/game"
	"github.com/bigdog/serpent/replay/db"
	"github.com/bigdog/serpent/replay/download"
)

// Report aggregates agreement statistics across evaluated games.
type Report struct {
	Games     int
	Decisions int

	// Agreed counts decisions where the engine picked the same move the
	// snake actually made.
	Agreed int

	// FatalPicks counts actual moves the engine had ranked fatal. A snake
	// that made such a move and survived is evidence the threat model is
	// too pessimistic.
	FatalPicks int

	ByMode map[string]*ModeStats
}

type ModeStats struct {
	Decisions int
	Agreed    int
}

func (r *Report) AgreementRate() float64 {
	if r.Decisions == 0 {
		return 0
	}
	return float64(r.Agreed) / float64(r.Decisions)
}

// Evaluator re-runs stored replays through the engine.
type Evaluator struct {
	db   *db.DB
	opts engine.Options
}

func NewEvaluator(database *db.DB, opts engine.Options) *Evaluator {
	return &Evaluator{db: database, opts: opts}
}

// Run evaluates up to limit unevaluated games and marks them done.
func (e *Evaluator) Run(limit int) (*Report, error) {
	games, err := e.db.GetUnevaluatedGames(limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	report := &Report{ByMode: make(map[string]*ModeStats)}

	for _, g := range games {
		frames, err := e.db.GetGameFrames(g.ID)
		if err != nil {
			return nil, fmt.Errorf("frames for %s: %w", g.ID, err)
		}

		if err := e.evaluateGame(report, frames); err != nil {
			log.Warn().Err(err).Str("game", g.ID).Msg("skipping game")
		} else {
			report.Games++
		}

		if err := e.db.MarkGameEvaluated(g.ID); err != nil {
			return nil, fmt.Errorf("mark evaluated %s: %w", g.ID, err)
		}
	}

	return report, nil
}

func (e *Evaluator) evaluateGame(report *Report, frames []db.Frame) error {
	parsed := make([]download.FrameData, 0, len(frames))
	for _, f := range frames {
		var data download.FrameData
		if err := json.Unmarshal([]byte(f.RawJSON), &data); err != nil {
			return fmt.Errorf("parse frame %d: %w", f.Turn, err)
		}
		parsed = append(parsed, data)
	}
	if len(parsed) < 2 {
		return fmt.Errorf("not enough frames")
	}

	for i := 0; i < len(parsed)-1; i++ {
		e.evaluateTurn(report, &parsed[i], &parsed[i+1])
	}
	return nil
}

func (e *Evaluator) evaluateTurn(report *Report, current, next *download.FrameData) {
	state := frameToGameState(current)
	if state == nil {
		return
	}

	nextHeads := make(map[string]download.Coord)
	for _, s := range next.Snakes {
		if len(s.Body) > 0 {
			nextHeads[s.ID] = s.Body[0]
		}
	}

	for i := range state.Snakes {
		snake := &state.Snakes[i]
		actual, ok := actualMove(snake, nextHeads)
		if !ok {
			continue
		}

		localState := state.Clone()
		localState.YouId = snake.Id
		d := engine.Decide(localState, e.opts)
		if d.Fallback {
			continue
		}

		report.Decisions++
		stats := report.ByMode[d.Mode.String()]
		if stats == nil {
			stats = &ModeStats{}
			report.ByMode[d.Mode.String()] = stats
		}
		stats.Decisions++

		if d.Move == actual {
			report.Agreed++
			stats.Agreed++
		}
		for _, c := range d.Candidates {
			if c.Move == actual && c.Fatal {
				report.FatalPicks++
			}
		}
	}
}

// actualMove derives the move a snake made from its head delta.
func actualMove(snake *game.Snake, nextHeads map[string]download.Coord) (game.Move, bool) {
	nextHead, ok := nextHeads[snake.Id]
	if !ok {
		return 0, false
	}
	head := snake.Head()

	dx := int32(nextHead.X) - head.X
	dy := int32(nextHead.Y) - head.Y

	switch {
	case dy == 1 && dx == 0:
		return game.MoveUp, true
	case dy == -1 && dx == 0:
		return game.MoveDown, true
	case dx == -1 && dy == 0:
		return game.MoveLeft, true
	case dx == 1 && dy == 0:
		return game.MoveRight, true
	}
	return 0, false
}

// frameToGameState converts a scraped frame to an engine state. Dead snakes
// are dropped; snakes are sorted by ID for deterministic iteration.
func frameToGameState(frame *download.FrameData) *game.GameState {
	state := &game.GameState{
		Width:  11,
		Height: 11,
		Turn:   int32(frame.Turn),
	}
	if frame.Board.Width > 0 {
		state.Width = int32(frame.Board.Width)
	}
	if frame.Board.Height > 0 {
		state.Height = int32(frame.Board.Height)
	}

	for _, f := range frame.Food {
		state.Food = append(state.Food, game.Point{X: int32(f.X), Y: int32(f.Y)})
	}

	sortedSnakes := make([]download.SnakeData, len(frame.Snakes))
	copy(sortedSnakes, frame.Snakes)
	sort.Slice(sortedSnakes, func(i, j int) bool {
		return sortedSnakes[i].ID < sortedSnakes[j].ID
	})

	for _, s := range sortedSnakes {
		if s.Death != nil || s.Health <= 0 || len(s.Body) == 0 {
			continue
		}

		snake := game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
		}
		for _, p := range s.Body {
			snake.Body = append(snake.Body, game.Point{X: int32(p.X), Y: int32(p.Y)})
		}
		state.Snakes = append(state.Snakes, snake)
	}

	if len(state.Snakes) == 0 {
		return nil
	}
	return state
}
