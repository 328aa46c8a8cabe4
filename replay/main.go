// Package main crawls public replays, stores them in SQLite, and replays
// them through the decision engine to measure agreement with real games.
package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bigdog/serpent/config"
	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/replay/db"
	"github.com/bigdog/serpent/replay/discovery"
	"github.com/bigdog/serpent/replay/download"
	"github.com/bigdog/serpent/replay/eval"
	"github.com/bigdog/serpent/store"
)

func main() {
	dbPath := flag.String("db", getEnvOrDefault("REPLAY_DB", "data/replays.db"), "SQLite database path")
	logPath := flag.String("log-path", getEnvOrDefault("WRITTEN_LOG", "data/written_games.log"), "Append-only log of game IDs already stored")
	maxPlayers := flag.Int("max-players", getEnvIntOrDefault("MAX_PLAYERS", 50), "Maximum number of players to check per leaderboard")
	requestDelay := flag.Duration("delay", 500*time.Millisecond, "Delay between HTTP requests")
	downloaders := flag.Int("downloaders", 4, "Number of download workers")
	evalGames := flag.Int("eval-games", 100, "Games to evaluate after downloading (0 = skip)")
	configPath := flag.String("config", "serpent.toml", "Path to TOML config file")
	pretty := flag.Bool("pretty", true, "Human-readable log output")
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer database.Close()

	seen, err := store.OpenSeenLog(*logPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open seen log")
	}
	defer seen.Close()

	log.Info().
		Str("db", *dbPath).
		Int("known_games", seen.Count()).
		Int("max_players", *maxPlayers).
		Msg("starting replay collector")

	// Discovery feeds the download pool through a buffered channel; the run
	// ends when the crawl finishes and the downloaders drain the queue.
	discConfig := discovery.DefaultConfig()
	discConfig.RequestDelay = *requestDelay
	discConfig.MaxPlayers = *maxPlayers

	// The crawl checks the log itself, so game IDs recorded on earlier runs
	// never reach the queue.
	discWorker := discovery.NewWorker(discConfig, seen)

	gameIDChan := make(chan string, 1000)
	go func() {
		defer close(gameIDChan)
		if err := discWorker.Discover(gameIDChan); err != nil {
			log.Error().Err(err).Msg("discovery")
		}
	}()

	dlConfig := download.DefaultConfig()
	dlConfig.NumWorkers = *downloaders
	dlWorker := download.NewWorker(dlConfig, database)

	// Record queued ids so the next crawl skips them up front. A game that
	// fails to download is not retried on later runs.
	tracked := make(chan string, 1000)
	go func() {
		defer close(tracked)
		for id := range gameIDChan {
			tracked <- id
			if err := seen.Add(id); err != nil {
				log.Error().Err(err).Str("game", id).Msg("seen log append failed")
			}
		}
	}()

	done := make(chan struct{})
	dlWorker.Start(tracked, done)
	<-done

	stats := dlWorker.GetStats()
	log.Info().
		Int64("downloaded", stats.GamesDownloaded).
		Int64("skipped", stats.GamesSkipped).
		Int64("failed", stats.GamesFailed).
		Int64("frames", stats.FramesTotal).
		Msg("download complete")

	totalGames, evaluated, totalFrames, err := database.Stats()
	if err == nil {
		log.Info().Int64("games", totalGames).Int64("evaluated", evaluated).Int64("frames", totalFrames).Msg("database")
	}

	if *evalGames <= 0 {
		return
	}

	opts := engine.Options{
		NearDepth:     int32(cfg.Engine.NearDepth),
		ExtendedDepth: int32(cfg.Engine.ExtendedDepth),
	}
	evaluator := eval.NewEvaluator(database, opts)
	report, err := evaluator.Run(*evalGames)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation")
	}

	log.Info().
		Int("games", report.Games).
		Int("decisions", report.Decisions).
		Int("agreed", report.Agreed).
		Float64("agreement", report.AgreementRate()).
		Int("fatal_picks", report.FatalPicks).
		Msg("evaluation complete")
	for mode, s := range report.ByMode {
		rate := 0.0
		if s.Decisions > 0 {
			rate = float64(s.Agreed) / float64(s.Decisions)
		}
		log.Info().Str("mode", mode).Int("decisions", s.Decisions).Float64("agreement", rate).Msg("mode agreement")
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
