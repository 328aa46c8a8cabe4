// Package main implements the Battlesnake API server.
//
// The server responds to the Battlesnake API endpoints and runs the
// heuristic decision engine to pick a move within the per-game time limit.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/api"
	"github.com/bigdog/serpent/config"
	"github.com/bigdog/serpent/engine"
)

// Server holds configuration shared across handlers.
type Server struct {
	cfg         *config.Config
	moveTimeout time.Duration
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:         cfg,
		moveTimeout: time.Duration(cfg.Server.MoveTimeoutMs) * time.Millisecond,
	}
}

// handleIndex returns the Battlesnake info.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	response := api.InfoResponse{
		APIVersion: "1",
		Author:     "serpent",
		Color:      s.cfg.Appearance.Color,
		Head:       s.cfg.Appearance.Head,
		Tail:       s.cfg.Appearance.Tail,
		Version:    "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleStart is called when a game starts.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req api.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().
		Str("game", req.Game.ID).
		Int("turn", req.Turn).
		Str("you", req.You.Name).
		Msg("game started")
	w.WriteHeader(http.StatusOK)
}

// handleMove runs the decision engine and responds with the chosen move.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req api.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := req.ToGameState()
	opts := s.engineOptions(&req)

	decision := engine.Decide(state, opts)

	elapsed := time.Since(startTime)
	evt := log.Info().
		Str("game", req.Game.ID).
		Int("turn", req.Turn).
		Str("move", decision.Move.String()).
		Str("mode", decision.Mode.String()).
		Dur("elapsed", elapsed)
	if decision.Fallback {
		evt = evt.Bool("fallback", true)
	}
	if decision.ForcedRisk {
		evt = evt.Bool("forced_risk", true)
	}
	evt.Msg("move")

	response := api.MoveResponse{Move: decision.Move.String()}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// engineOptions sizes the flood fill to the time budget the game allows.
// Short timeouts get a shallower extended pass to stay inside the limit.
func (s *Server) engineOptions(req *api.GameRequest) engine.Options {
	opts := engine.Options{
		NearDepth:     int32(s.cfg.Engine.NearDepth),
		ExtendedDepth: int32(s.cfg.Engine.ExtendedDepth),
	}

	timeout := s.moveTimeout
	if req.Game.Timeout > 0 {
		timeout = time.Duration(req.Game.Timeout) * time.Millisecond
	}
	// Reserve 200ms for overhead and network latency.
	computeTime := timeout - 200*time.Millisecond
	if computeTime < 100*time.Millisecond {
		opts.ExtendedDepth = opts.NearDepth + 1
	}

	return opts
}

// handleEnd is called when a game ends.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req api.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}

	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	log.Info().
		Str("game", req.Game.ID).
		Int("turn", req.Turn).
		Str("result", result).
		Msg("game ended")
	w.WriteHeader(http.StatusOK)
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "serpent.toml", "Path to TOML config file")
	listen := fs.String("listen", "", "HTTP listen address (overrides config)")
	pretty := fs.Bool("pretty", false, "Human-readable log output")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("flag parse")
	}

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	server := NewServer(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.handleIndex)
	mux.HandleFunc("/start", server.handleStart)
	mux.HandleFunc("/move", server.handleMove)
	mux.HandleFunc("/end", server.handleEnd)

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("listen", cfg.Server.Listen).Msg("battlesnake server listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
