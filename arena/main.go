// Package main runs heuristic self-play games in parallel and archives
// every turn to Parquet batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/config"
	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/selfplay"
	"github.com/bigdog/serpent/store"
)

var totalMoves atomic.Int64
var totalGames atomic.Int64

type GameUpdate struct {
	WorkerID int
	Result   selfplay.GameResult
	Rows     int
}

type gameWriteRequest struct {
	rows []store.TurnRow
}

type model struct {
	gamesPlayed int
	totalRows   int
	moves       int64
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
}

func initialModel(updates chan GameUpdate) model {
	return model{
		startTime: time.Now(),
		updates:   updates,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalRows += msg.Rows
		logMsg := fmt.Sprintf("Worker %d: Winner %s, Steps %d, Rows %d", msg.WorkerID, msg.Result.WinnerId, msg.Result.Steps, msg.Rows)
		m.recentGames = append([]string{logMsg}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := float64(m.gamesPlayed) / duration.Seconds()
	movesPerSec := float64(m.moves) / duration.Seconds()
	if duration.Seconds() < 1 {
		gamesPerSec = 0
		movesPerSec = 0
	}

	s := fmt.Sprintf("Games Played: %d\n", m.gamesPlayed)
	s += fmt.Sprintf("Total Rows:   %d\n", m.totalRows)
	s += fmt.Sprintf("Total Moves:  %d\n", m.moves)
	s += fmt.Sprintf("Duration:     %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Games/Sec:    %.2f\n", gamesPerSec)
	s += fmt.Sprintf("Moves/Sec:    %.2f\n\n", movesPerSec)

	s += "Recent Games:\n"
	for _, g := range m.recentGames {
		s += g + "\n"
	}

	s += "\nPress q to quit.\n"
	return s
}

func main() {
	outDir := flag.String("out-dir", "data/selfplay", "Output directory for archived parquet batches")
	workers := flag.Int("workers", 8, "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Number of games to buffer per parquet flush")
	maxGames := flag.Int64("max-games", 0, "If > 0, stop after this many games (across all workers)")
	configPath := flag.String("config", "serpent.toml", "Path to TOML config file")
	logPath := flag.String("log", "arena.log", "Log file (stderr is owned by the TUI)")
	flag.Parse()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	// Logs go to a file so they don't fight the TUI for the terminal.
	logFile, err := os.OpenFile(*logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	opts := engine.Options{
		NearDepth:     int32(cfg.Engine.NearDepth),
		ExtendedDepth: int32(cfg.Engine.ExtendedDepth),
	}

	log.Info().Int("workers", *workers).Msg("starting self-play")

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan gameWriteRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(*outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	var workerWG sync.WaitGroup

	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerId int) {
			defer workerWG.Done()
			log.Info().Int("worker", workerId).Msg("worker started")
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				onStep := func() {
					totalMoves.Add(1)
				}
				out := selfplay.PlayGame(ctx, workerId, opts, false, onStep)
				if !out.Completed {
					continue
				}

				total := totalGames.Add(1)
				if *maxGames > 0 && total >= *maxGames {
					// Cancel the whole run after the target number of games.
					cancel()
				}

				writeReqs <- gameWriteRequest{rows: out.Rows}

				// Avoid blocking shutdown if the UI loop stops consuming.
				select {
				case updates <- GameUpdate{WorkerID: workerId, Result: out.Result, Rows: len(out.Rows)}:
				default:
				}
			}
		}(i)
	}

	// The TUI owns the terminal until q/ctrl+c or the run hits max-games.
	p := tea.NewProgram(initialModel(updates), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("tui")
	}
	cancel()

	log.Info().Msg("shutdown requested; waiting for workers to finish current games")
	workerWG.Wait()
	close(writeReqs)
	<-writerDone
	log.Info().Int64("games", totalGames.Load()).Msg("shutdown complete; final parquet flush done")
}

func parquetWriterLoop(outDir string, gamesPerFlush int, in <-chan gameWriteRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	pendingRows := make([]store.TurnRow, 0, 256*gamesPerFlush)
	pendingGames := 0

	flush := func(final bool) {
		if pendingGames == 0 || len(pendingRows) == 0 {
			return
		}
		outPath, err := store.WriteBatchParquetAtomic(outDir, pendingRows)
		if err != nil {
			log.Error().Err(err).Int("games", pendingGames).Int("rows", len(pendingRows)).Bool("final", final).Msg("parquet flush failed")
		} else {
			log.Info().Str("path", outPath).Int("games", pendingGames).Int("rows", len(pendingRows)).Bool("final", final).Msg("parquet flush ok")
		}
		pendingRows = pendingRows[:0]
		pendingGames = 0
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}
		pendingRows = append(pendingRows, req.rows...)
		pendingGames++

		if pendingGames >= gamesPerFlush {
			flush(false)
		}
	}

	flush(true)
}
