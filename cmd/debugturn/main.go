// debugturn replays a single /move request through the decision engine and
// prints the board plus the ranked candidate table. Feed it a request body
// captured from server logs or a replay frame.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bigdog/serpent/api"
	"github.com/bigdog/serpent/config"
	"github.com/bigdog/serpent/engine"
	"github.com/bigdog/serpent/selfplay"
)

func main() {
	inPath := flag.String("in", "-", "Path to a /move request JSON file, or - for stdin")
	configPath := flag.String("config", "serpent.toml", "Path to TOML config file")
	flag.Parse()

	var reader io.Reader = os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
	}

	var req api.GameRequest
	if err := json.NewDecoder(reader).Decode(&req); err != nil {
		fmt.Fprintf(os.Stderr, "decode request: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	state := req.ToGameState()
	opts := engine.Options{
		NearDepth:     int32(cfg.Engine.NearDepth),
		ExtendedDepth: int32(cfg.Engine.ExtendedDepth),
	}

	d := engine.Decide(state, opts)

	selfplay.PrintBoard(state)

	fmt.Printf("turn %d  mode %s\n", state.Turn, d.Mode)
	if d.Fallback {
		fmt.Println("no safe moves; falling back")
	}
	if d.ForcedRisk {
		fmt.Println("all candidates fatal; taking the least bad one")
	}
	fmt.Print(selfplay.FormatCandidates(&d))
	fmt.Printf("-> %s\n", d.Move)
}
