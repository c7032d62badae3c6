package driver

import (
	"fmt"

	"github.com/sarchlab/ctmsim/dist"
	"github.com/sarchlab/ctmsim/emu"
	"github.com/sarchlab/ctmsim/enum"
	"github.com/sarchlab/ctmsim/tm"
)

// worker simulates chunks of machine indices. Each worker owns a
// reusable machine so tape buffers are amortised across runs; all
// other per-run state is recreated per machine.
type worker struct {
	cfg     *Config
	machine *emu.Machine
}

func newWorker(cfg *Config) *worker {
	return &worker{cfg: cfg}
}

// process decodes and simulates every index in the chunk, returning
// the chunk's tally. The tally depends only on the chunk and the
// config snapshot.
func (w *worker) process(chunk enum.Range) (*dist.Tally, error) {
	tally := dist.NewTally()
	for index := chunk.Lo; index < chunk.Hi; index++ {
		table, err := tm.Decode(index, w.cfg.NumStates)
		if err != nil {
			return nil, fmt.Errorf("decoding machine %d: %w", index, err)
		}
		tally.Record(w.simulate(table))
	}
	return tally, nil
}

func (w *worker) simulate(table *tm.Table) emu.RunResult {
	if emu.HasNoHaltTransition(table) {
		return emu.RunResult{Status: emu.StatusFiltered, Reason: emu.ReasonNoHaltTransition}
	}
	if w.machine == nil {
		w.machine = emu.NewMachine(table, emu.WithBlankSymbol(w.cfg.BlankSymbol))
	} else {
		w.machine.Reset(table)
	}
	return w.machine.Run(w.cfg.MaxSteps, w.runtimeFilters())
}

// runtimeFilters builds fresh filter state for one run.
func (w *worker) runtimeFilters() []emu.Filter {
	filters := make([]emu.Filter, 0, len(w.cfg.RuntimeFilters))
	for _, name := range w.cfg.RuntimeFilters {
		switch name {
		case emu.ReasonEscapee:
			filters = append(filters, emu.NewEscapeeFilter())
		case emu.ReasonCycleTwo:
			filters = append(filters, emu.NewCycleTwoFilter())
		}
	}
	return filters
}
