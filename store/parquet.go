// Package store persists self-play turn archives as Parquet.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/game"
)

// TurnRow is a single (game, turn) snapshot intended for long-term storage.
//
// It is optimized for compression:
// - one row per turn (no duplication of food across snakes)
// - nested/repeated snake data
//
// Move is the action each snake took on this turn: 0=Up, 1=Down, 2=Left,
// 3=Right. If unknown or not applicable, Move is -1.
type TurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	FoodX []int32 `parquet:"food_x"`
	FoodY []int32 `parquet:"food_y"`

	Snakes []SnakeRow `parquet:"snakes"`

	// WinnerID is the id of the surviving snake, empty on a draw. The same
	// value repeats on every row of a game so each row is self-contained.
	WinnerID string `parquet:"winner_id,dict"`

	Source string `parquet:"source,dict"`
}

type SnakeRow struct {
	ID     string `parquet:"id,dict"`
	Alive  bool   `parquet:"alive"`
	Health int32  `parquet:"health"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	Move int32 `parquet:"move"`

	// Mode is the strategy the engine selected when choosing Move.
	Mode string `parquet:"mode,dict"`

	// Score is the winning candidate's total. Fallback and ForcedRisk
	// record degraded decisions so they can be filtered during analysis.
	Score      float64 `parquet:"score"`
	Fallback   bool    `parquet:"fallback"`
	ForcedRisk bool    `parquet:"forced_risk"`
}

// NewTurnRow captures a board snapshot before any decisions are attached.
func NewTurnRow(gameID string, state *game.GameState, source string) TurnRow {
	row := TurnRow{
		GameID: gameID,
		Turn:   state.Turn,
		Width:  state.Width,
		Height: state.Height,
		Source: source,
	}
	for _, f := range state.Food {
		row.FoodX = append(row.FoodX, f.X)
		row.FoodY = append(row.FoodY, f.Y)
	}
	for i := range state.Snakes {
		s := &state.Snakes[i]
		sr := SnakeRow{
			ID:     s.Id,
			Alive:  s.Health > 0,
			Health: s.Health,
			Move:   -1,
		}
		for _, b := range s.Body {
			sr.BodyX = append(sr.BodyX, b.X)
			sr.BodyY = append(sr.BodyY, b.Y)
		}
		row.Snakes = append(row.Snakes, sr)
	}
	return row
}

// SetDecision records the engine output for one snake on this row.
func (r *TurnRow) SetDecision(snakeID string, d *engine.Decision) {
	for i := range r.Snakes {
		if r.Snakes[i].ID != snakeID {
			continue
		}
		r.Snakes[i].Move = int32(d.Move)
		r.Snakes[i].Mode = d.Mode.String()
		if len(d.Candidates) > 0 && !d.Fallback {
			r.Snakes[i].Score = d.Candidates[0].Score
		}
		r.Snakes[i].Fallback = d.Fallback
		r.Snakes[i].ForcedRisk = d.ForcedRisk
		return
	}
}

// WriteBatchParquetAtomic writes a Parquet file into outDir/tmp and then
// atomically moves it into outDir.
//
// This is useful for long-running writers (like self-play) that want to
// ensure readers never observe partially-written Parquet files.
func WriteBatchParquetAtomic(outDir string, rows []TurnRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "turn_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}

// ReadBatchParquet loads every row from a batch file.
func ReadBatchParquet(path string) ([]TurnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[TurnRow](f)
	defer reader.Close()

	rows := make([]TurnRow, 0, reader.NumRows())
	buf := make([]TurnRow, 256)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
	return rows, nil
}
