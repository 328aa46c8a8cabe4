package selfplay

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/game"
	"github.com/bigdog/serpent/rules"
	"github.com/bigdog/serpent/store"
)

type GameResult struct {
	WinnerId string
	Steps    int
}

type PlayGameOutcome struct {
	Completed bool
	Rows      []store.TurnRow
	Result    GameResult
}

// PlayGame runs one full heuristic-vs-heuristic game and returns one archive
// row per turn plus a terminal row. Every living snake gets its own decision
// by cloning the state with its id as the ego snake, so both players run the
// same engine without sharing mutable state.
//
// If the context is cancelled mid-game, the partial game is discarded and
// Completed is false.
func PlayGame(ctx context.Context, workerId int, opts engine.Options, verbose bool, onStep func()) PlayGameOutcome {
	rngSeed := time.Now().UnixNano() + int64(workerId)*1000003
	rng := rand.New(rand.NewSource(rngSeed))

	state := createInitialState(rng)
	gameID := "selfplay_" + uuid.NewString()

	rows := make([]store.TurnRow, 0, 256)

	for {
		select {
		case <-ctx.Done():
			return PlayGameOutcome{Completed: false, Result: GameResult{Steps: int(state.Turn)}}
		default:
		}

		if rules.IsGameOver(state) {
			break
		}

		row := store.NewTurnRow(gameID, state, "selfplay")

		moves := make(map[string]game.Move)
		decisions := make(map[string]engine.Decision)
		var mu sync.Mutex
		var wg sync.WaitGroup

		for i := range state.Snakes {
			snake := &state.Snakes[i]
			if snake.Health <= 0 {
				continue
			}

			wg.Add(1)
			go func(id string) {
				defer wg.Done()

				localState := state.Clone()
				localState.YouId = id

				d := engine.Decide(localState, opts)

				mu.Lock()
				moves[id] = d.Move
				decisions[id] = d
				mu.Unlock()
			}(snake.Id)
		}
		wg.Wait()

		for id, d := range decisions {
			d := d
			row.SetDecision(id, &d)
			if verbose {
				logDecision(workerId, state.Turn, id, &d)
			}
		}
		if verbose {
			PrintBoard(state)
		}

		rows = append(rows, row)

		if onStep != nil {
			onStep()
		}

		state = rules.Step(state, moves, rng, rules.DefaultFoodSettings)
	}

	winnerId := ""
	living := 0
	for i := range state.Snakes {
		if state.Snakes[i].Health > 0 {
			living++
			winnerId = state.Snakes[i].Id
		}
	}
	if living != 1 {
		winnerId = ""
	}

	// Record the terminal state as a final row. The per-turn loop records
	// snapshots before applying moves; without this, completed games appear
	// to stop in a non-terminal position.
	rows = append(rows, store.NewTurnRow(gameID, state, "selfplay"))

	for i := range rows {
		rows[i].WinnerID = winnerId
	}

	return PlayGameOutcome{
		Completed: true,
		Rows:      rows,
		Result:    GameResult{WinnerId: winnerId, Steps: int(state.Turn)},
	}
}

func createInitialState(rng *rand.Rand) *game.GameState {
	state := &game.GameState{
		Width:  11,
		Height: 11,
		YouId:  "snake1",
		Snakes: []game.Snake{
			{
				Id:     "snake1",
				Health: 100,
				Body: []game.Point{
					{X: 1, Y: 1},
					{X: 1, Y: 1},
					{X: 1, Y: 1},
				},
			},
			{
				Id:     "snake2",
				Health: 100,
				Body: []game.Point{
					{X: 9, Y: 9},
					{X: 9, Y: 9},
					{X: 9, Y: 9},
				},
			},
		},
		Food: nil,
		Turn: 0,
	}

	// Enforce minimum food at game start; chance=0 so only the minimum spawns.
	rules.ApplyFoodSettings(state, rng, rules.FoodSettings{MinimumFood: 1, FoodSpawnChance: 0})
	return state
}

func logDecision(workerId int, turn int32, snakeID string, d *engine.Decision) {
	evt := log.Info().
		Int("worker", workerId).
		Int32("turn", turn).
		Str("snake", snakeID).
		Str("move", d.Move.String()).
		Str("mode", d.Mode.String())
	if len(d.Candidates) > 0 {
		evt = evt.Float64("score", d.Candidates[0].Score)
	}
	if d.Fallback {
		evt = evt.Bool("fallback", true)
	}
	if d.ForcedRisk {
		evt = evt.Bool("forced_risk", true)
	}
	evt.Msg("decision")
}
