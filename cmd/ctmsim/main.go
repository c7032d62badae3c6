// Command ctmsim runs a Coding Theorem Method simulation campaign: it
// enumerates every (n,2) Turing machine, simulates each under a step
// budget, and writes the empirical output-frequency distribution.
//
// Usage:
//
//	ctmsim --n-states=4 [flags]
//
// Example:
//
//	# Full raw enumeration for n=3
//	ctmsim --n-states=3 --max-steps=200 --output-file=d3.json
//
//	# Reduced enumeration with checkpointing, resumable after
//	# interruption
//	ctmsim --n-states=4 --use-reduced-enum \
//	    --checkpoint-file=ckpt.json --checkpoint-interval=1000000
//
// Exit codes: 0 on success, 2 on bad arguments, 1 on runtime error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/sarchlab/ctmsim/driver"
	"github.com/sarchlab/ctmsim/tm"
)

var (
	nStates            = flag.Int("n-states", 0, "Number of non-halting TM states (required)")
	maxSteps           = flag.Int("max-steps", 500, "Maximum steps to run each TM")
	useReducedEnum     = flag.Bool("use-reduced-enum", false, "Use reduced enumeration (exploit symmetries)")
	blankSymbol        = flag.String("blank-symbol", "0", "Blank tape symbol (0 or 1)")
	outputFile         = flag.String("output-file", "distribution.json", "Path to save the final distribution")
	checkpointFile     = flag.String("checkpoint-file", "checkpoint.json", "Filepath for saving/loading checkpoints (empty disables)")
	checkpointInterval = flag.Uint64("checkpoint-interval", 100000, "Number of TMs to process between checkpoints")
	workers            = flag.Int("workers", 0, "Number of simulation workers (default: GOMAXPROCS)")
	batchSize          = flag.Uint64("batch-size", 1000, "Number of machine indices per work chunk")
	limit              = flag.Uint64("limit", 0, "Cap on machines processed this run (0 = no cap)")
	verbose            = flag.Bool("v", false, "Verbose (debug) logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "CTM Simulation Driver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ctmsim --n-states=N [options]\n\n")
		fmt.Fprintf(os.Stderr, "Enumerates all (n,2) Turing machines and estimates D(n,2).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	os.Exit(run())
}

func run() int {
	logger := newLogger()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		return 2
	}
	cfg.Logger = logger

	campaign, err := driver.New(cfg)
	if err != nil {
		if errors.Is(err, driver.ErrConfig) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			flag.Usage()
			return 2
		}
		logger.Error().Err(err).Msg("creating campaign")
		return 1
	}

	// SIGINT/SIGTERM cancel cooperatively; the campaign checkpoints
	// before returning.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := campaign.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted; progress saved to checkpoint")
		} else {
			logger.Error().Err(err).Msg("campaign failed")
		}
		return 1
	}

	logger.Info().Str("output", *outputFile).Msg("simulation completed")
	return 0
}

func buildConfig() (driver.Config, error) {
	cfg := driver.DefaultConfig()

	if *nStates == 0 {
		return cfg, errors.New("--n-states is required")
	}
	cfg.NumStates = *nStates
	cfg.MaxSteps = *maxSteps
	cfg.UseReducedEnum = *useReducedEnum
	cfg.Limit = *limit
	cfg.BatchSize = *batchSize
	cfg.OutputPath = *outputFile
	cfg.CheckpointPath = *checkpointFile
	cfg.CheckpointInterval = *checkpointInterval
	if *workers > 0 {
		cfg.Workers = *workers
	}

	switch *blankSymbol {
	case "0":
		cfg.BlankSymbol = tm.Zero
	case "1":
		cfg.BlankSymbol = tm.One
	default:
		return cfg, fmt.Errorf("--blank-symbol must be 0 or 1, got %q", *blankSymbol)
	}
	return cfg, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
