package dist

import "github.com/sarchlab/ctmsim/emu"

// ReasonTimeout is the non-halting reason recorded for runs that
// exhaust their step budget.
const ReasonTimeout = "timeout"

// Tally is a worker-local partial count over a chunk of machines. A
// chunk's tally is a pure function of the chunk; tallies are merged
// whole into the campaign aggregator.
type Tally struct {
	// OutputCounts counts halted machines by output string.
	OutputCounts map[string]uint64

	// NonHaltingReasons counts non-halting machines by reason,
	// including ReasonTimeout.
	NonHaltingReasons map[string]uint64

	// Processed is the number of machines recorded.
	Processed uint64

	// Halting is the number of halted machines recorded.
	Halting uint64
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{
		OutputCounts:      make(map[string]uint64),
		NonHaltingReasons: make(map[string]uint64),
	}
}

// Record adds a single run outcome to the tally.
func (t *Tally) Record(r emu.RunResult) {
	t.Processed++
	switch r.Status {
	case emu.StatusHalted:
		t.Halting++
		t.OutputCounts[r.Output]++
	case emu.StatusTimeout:
		t.NonHaltingReasons[ReasonTimeout]++
	case emu.StatusFiltered:
		t.NonHaltingReasons[r.Reason]++
	}
}
