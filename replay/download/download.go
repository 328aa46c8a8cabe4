// Package download fetches game replays over the engine WebSocket and
// stores the raw frames.
package download

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/replay/db"
)

type Config struct {
	NumWorkers     int
	EngineURL      string // WebSocket URL template, %s is the game ID
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		NumWorkers:     4,
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

type Stats struct {
	GamesDownloaded int64
	GamesSkipped    int64
	GamesFailed     int64
	FramesTotal     int64
}

// Worker manages a pool of game downloaders.
type Worker struct {
	config Config
	db     *db.DB
	stats  Stats
}

func NewWorker(config Config, database *db.DB) *Worker {
	return &Worker{
		config: config,
		db:     database,
	}
}

// Start consumes game IDs from the channel until it closes, then closes done.
func (w *Worker) Start(gameIDChan <-chan string, done chan<- struct{}) {
	var wg sync.WaitGroup

	for i := 0; i < w.config.NumWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.worker(workerID, gameIDChan)
		}(i)
	}

	wg.Wait()
	close(done)
}

func (w *Worker) worker(id int, gameIDChan <-chan string) {
	for gameID := range gameIDChan {
		exists, err := w.db.GameExists(gameID)
		if err != nil {
			log.Error().Err(err).Int("worker", id).Str("game", gameID).Msg("exists check failed")
			continue
		}
		if exists {
			atomic.AddInt64(&w.stats.GamesSkipped, 1)
			continue
		}

		game, frames, err := w.downloadGame(gameID)
		if err != nil {
			log.Error().Err(err).Int("worker", id).Str("game", gameID).Msg("download failed")
			atomic.AddInt64(&w.stats.GamesFailed, 1)
			continue
		}

		if err := w.db.InsertGame(game, frames); err != nil {
			log.Error().Err(err).Int("worker", id).Str("game", gameID).Msg("store failed")
			atomic.AddInt64(&w.stats.GamesFailed, 1)
			continue
		}

		atomic.AddInt64(&w.stats.GamesDownloaded, 1)
		atomic.AddInt64(&w.stats.FramesTotal, int64(len(frames)))
		log.Info().Int("worker", id).Str("game", gameID).Int("turns", len(frames)).Str("winner", game.Winner).Msg("downloaded")
	}
}

// GameEvent represents an event from the WebSocket stream.
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo from the "game_info" event.
type GameInfo struct {
	Game    GameDetails `json:"game"`
	Ruleset RulesetInfo `json:"ruleset"`
}

type GameDetails struct {
	ID      string `json:"id"`
	Timeout int    `json:"timeout"`
}

type RulesetInfo struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings json.RawMessage `json:"settings"`
}

// FrameData from "frame" events.
type FrameData struct {
	Turn   int         `json:"turn"`
	Snakes []SnakeData `json:"snakes"`
	Food   []Coord     `json:"food"`
	Board  BoardData   `json:"board,omitempty"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type BoardData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

func (w *Worker) downloadGame(gameID string) (db.Game, []db.Frame, error) {
	url := fmt.Sprintf(w.config.EngineURL, gameID)

	dialer := websocket.Dialer{
		HandshakeTimeout: w.config.ConnectTimeout,
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return db.Game{}, nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	var frames []db.Frame
	var gameInfo GameInfo
	var lastFrame *FrameData

readLoop:
	for {
		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			// Timeout or unexpected close; keep what we already have.
			if len(frames) > 0 {
				break
			}
			return db.Game{}, nil, fmt.Errorf("read: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Warn().Err(err).Msg("unparseable event")
			continue
		}

		switch event.Type {
		case "game_info":
			if err := json.Unmarshal(event.Data, &gameInfo); err != nil {
				log.Warn().Err(err).Msg("unparseable game_info")
			}

		case "frame":
			var frameData FrameData
			if err := json.Unmarshal(event.Data, &frameData); err != nil {
				log.Warn().Err(err).Msg("unparseable frame")
				continue
			}

			frames = append(frames, db.Frame{
				GameID:  gameID,
				Turn:    frameData.Turn,
				RawJSON: string(event.Data),
			})
			lastFrame = &frameData

		case "game_end":
			break readLoop
		}
	}

	game := db.Game{
		ID:      gameID,
		Winner:  determineWinner(lastFrame),
		Ruleset: gameInfo.Ruleset.Name,
	}

	return game, frames, nil
}

// determineWinner analyzes the final frame to find the winner.
func determineWinner(frame *FrameData) string {
	if frame == nil {
		return "unknown"
	}

	var alive []SnakeData
	for _, snake := range frame.Snakes {
		if snake.Death == nil && snake.Health > 0 {
			alive = append(alive, snake)
		}
	}

	if len(alive) == 1 {
		return alive[0].Name
	}
	// Zero alive, or multiple alive at max turns: call it a draw.
	return "draw"
}

func (w *Worker) GetStats() Stats {
	return Stats{
		GamesDownloaded: atomic.LoadInt64(&w.stats.GamesDownloaded),
		GamesSkipped:    atomic.LoadInt64(&w.stats.GamesSkipped),
		GamesFailed:     atomic.LoadInt64(&w.stats.GamesFailed),
		FramesTotal:     atomic.LoadInt64(&w.stats.FramesTotal),
	}
}
