// Package db stores downloaded game replays in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection with thread-safe operations.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// Game is one downloaded replay.
type Game struct {
	ID          string
	Winner      string
	Ruleset     string
	CrawledAt   time.Time
	IsEvaluated bool
}

// Frame is the raw JSON for a single turn.
type Frame struct {
	GameID  string
	Turn    int
	RawJSON string
}

// New opens the database and initializes the schema.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	// SQLite only supports one writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		winner TEXT,
		ruleset TEXT,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		is_evaluated BOOLEAN DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS frames (
		game_id TEXT,
		turn INTEGER,
		raw_json TEXT,
		PRIMARY KEY (game_id, turn),
		FOREIGN KEY(game_id) REFERENCES games(id)
	);

	CREATE INDEX IF NOT EXISTS idx_games_is_evaluated ON games(is_evaluated);
	CREATE INDEX IF NOT EXISTS idx_frames_game_id ON frames(game_id);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GameExists checks if a game has already been downloaded.
func (db *DB) GameExists(gameID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var exists int
	err := db.conn.QueryRow("SELECT 1 FROM games WHERE id = ?", gameID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertGame inserts a game and all its frames in a single transaction.
func (db *DB) InsertGame(game Game, frames []Frame) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO games (id, winner, ruleset) VALUES (?, ?, ?)",
		game.ID, game.Winner, game.Ruleset,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO frames (game_id, turn, raw_json) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare frame statement: %w", err)
	}
	defer stmt.Close()

	for _, frame := range frames {
		if _, err := stmt.Exec(frame.GameID, frame.Turn, frame.RawJSON); err != nil {
			return fmt.Errorf("insert frame %d: %w", frame.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetUnevaluatedGames returns games that haven't been replayed through the
// engine yet.
func (db *DB) GetUnevaluatedGames(limit int) ([]Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		"SELECT id, winner, ruleset, crawled_at, is_evaluated FROM games WHERE is_evaluated = 0 LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Winner, &g.Ruleset, &g.CrawledAt, &g.IsEvaluated); err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// GetGameFrames returns all frames for a specific game in turn order.
func (db *DB) GetGameFrames(gameID string) ([]Frame, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		"SELECT game_id, turn, raw_json FROM frames WHERE game_id = ? ORDER BY turn",
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.GameID, &f.Turn, &f.RawJSON); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, rows.Err()
}

// MarkGameEvaluated flags a game so it is skipped on the next run.
func (db *DB) MarkGameEvaluated(gameID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec("UPDATE games SET is_evaluated = 1 WHERE id = ?", gameID)
	return err
}

// Stats returns counts for logging.
func (db *DB) Stats() (totalGames, evaluatedGames, totalFrames int64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	err = db.conn.QueryRow("SELECT COUNT(*) FROM games").Scan(&totalGames)
	if err != nil {
		return
	}

	err = db.conn.QueryRow("SELECT COUNT(*) FROM games WHERE is_evaluated = 1").Scan(&evaluatedGames)
	if err != nil {
		return
	}

	err = db.conn.QueryRow("SELECT COUNT(*) FROM frames").Scan(&totalFrames)
	return
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
