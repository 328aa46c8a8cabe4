// Console visualization for debugging self-play games.
package selfplay

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/game"
)

// PrintBoard outputs an ASCII representation of the game board.
func PrintBoard(state *game.GameState) {
	grid := make([][]string, state.Height)
	for y := range grid {
		grid[y] = make([]string, state.Width)
		for x := range grid[y] {
			grid[y][x] = "."
		}
	}

	for _, f := range state.Food {
		if isBounds(state, int(f.X), int(f.Y)) {
			grid[f.Y][f.X] = "F"
		}
	}

	for _, s := range state.Snakes {
		char := "s"     // enemy body
		headChar := "S" // enemy head
		if s.Id == state.YouId {
			char = "o"
			headChar = "O"
		}

		for i, p := range s.Body {
			if !isBounds(state, int(p.X), int(p.Y)) {
				continue
			}
			if i == 0 {
				grid[p.Y][p.X] = headChar
			} else {
				grid[p.Y][p.X] = char
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n=== Turn %d (you_id=%s) ===\n", state.Turn, state.YouId))
	for y := state.Height - 1; y >= 0; y-- {
		for x := 0; x < int(state.Width); x++ {
			sb.WriteString(grid[y][x] + " ")
		}
		sb.WriteString("\n")
	}
	log.Info().Msg(sb.String())
}

// FormatCandidates renders the ranked candidate table for one decision.
func FormatCandidates(d *engine.Decision) string {
	var sb strings.Builder
	for i, c := range d.Candidates {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		if c.Fatal {
			sb.WriteString(fmt.Sprintf("%s %-5s  FATAL\n", mark, c.Move))
			continue
		}
		b := c.Breakdown
		sb.WriteString(fmt.Sprintf(
			"%s %-5s  total=%7.1f  straight=%5.1f threat=%6.1f food=%6.1f hunt=%6.1f avoid=%6.1f block=%5.1f space=%6.1f center=%6.1f coverage=%6.1f\n",
			mark, c.Move, c.Score,
			b.Straight, b.Threat, b.Food, b.Hunt, b.Avoid, b.Block, b.Space, b.Center, b.Coverage,
		))
	}
	return sb.String()
}

func isBounds(state *game.GameState, x, y int) bool {
	return x >= 0 && x < int(state.Width) && y >= 0 && y < int(state.Height)
}
