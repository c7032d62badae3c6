// Package driver runs CTM simulation campaigns: it partitions the
// enumeration space across workers, merges their tallies, and
// checkpoints progress.
package driver

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/sarchlab/ctmsim/emu"
	"github.com/sarchlab/ctmsim/tm"
)

// ErrConfig indicates an invalid campaign configuration.
var ErrConfig = errors.New("invalid campaign configuration")

// Config holds the parameters of a simulation campaign. Workers
// receive an immutable snapshot of it at spawn.
type Config struct {
	// NumStates is the number of non-halting machine states, in
	// [1, tm.MaxStates].
	NumStates int

	// MaxSteps is the per-machine step budget.
	MaxSteps int

	// UseReducedEnum selects the reduced enumeration with post-hoc
	// completion rules instead of the raw space.
	UseReducedEnum bool

	// BlankSymbol initialises the tape.
	BlankSymbol tm.Symbol

	// RuntimeFilters names the runtime non-halting detectors applied
	// after each step, in order.
	RuntimeFilters []string

	// Workers is the number of simulation goroutines.
	Workers int

	// BatchSize is the number of machine indices per work chunk.
	BatchSize uint64

	// Limit caps the number of machines processed this run; 0 means
	// no cap. Applied after resume skipping.
	Limit uint64

	// CheckpointPath is where progress checkpoints are written and
	// resumed from. Empty disables checkpointing.
	CheckpointPath string

	// CheckpointInterval is the number of processed machines between
	// checkpoints.
	CheckpointInterval uint64

	// OutputPath is where the final distribution is written. Empty
	// disables the final write.
	OutputPath string

	// Logger receives campaign progress and milestones.
	Logger zerolog.Logger
}

// DefaultConfig returns a campaign configuration with the standard
// filter stack and one worker per CPU.
func DefaultConfig() Config {
	return Config{
		NumStates:          5,
		MaxSteps:           500,
		BlankSymbol:        tm.Zero,
		RuntimeFilters:     []string{emu.ReasonEscapee, emu.ReasonCycleTwo},
		Workers:            runtime.GOMAXPROCS(0),
		BatchSize:          1000,
		CheckpointInterval: 100000,
		Logger:             zerolog.Nop(),
	}
}

func (c *Config) validate() error {
	if c.NumStates < 1 || c.NumStates > tm.MaxStates {
		return fmt.Errorf("%w: n-states must be in [1, %d], got %d",
			ErrConfig, tm.MaxStates, c.NumStates)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max-steps must be non-negative, got %d", ErrConfig, c.MaxSteps)
	}
	if c.BlankSymbol > tm.One {
		return fmt.Errorf("%w: blank symbol must be 0 or 1", ErrConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfig, c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch-size must be positive, got %d", ErrConfig, c.BatchSize)
	}
	if c.CheckpointPath != "" && c.CheckpointInterval < 1 {
		return fmt.Errorf("%w: checkpoint-interval must be positive, got %d",
			ErrConfig, c.CheckpointInterval)
	}
	for _, name := range c.RuntimeFilters {
		switch name {
		case emu.ReasonEscapee, emu.ReasonCycleTwo:
		default:
			return fmt.Errorf("%w: unknown runtime filter %q", ErrConfig, name)
		}
	}
	return nil
}
