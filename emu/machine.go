package emu

import "github.com/sarchlab/ctmsim/tm"

// Status classifies the result of a run. Every run ends in exactly one
// of the three states.
type Status int

// Run statuses.
const (
	StatusHalted Status = iota
	StatusTimeout
	StatusFiltered
)

// String returns the status name as used in reason maps and logs.
func (s Status) String() string {
	switch s {
	case StatusHalted:
		return "halted"
	case StatusTimeout:
		return "timeout"
	case StatusFiltered:
		return "filtered"
	}
	return "unknown"
}

// RunResult represents the result of running a machine under a step
// budget.
type RunResult struct {
	// Status is how the run ended.
	Status Status

	// Output is the produced tape string if Status is StatusHalted.
	Output string

	// Reason is the name of the filter that fired if Status is
	// StatusFiltered.
	Reason string
}

// Machine simulates one Turing machine on an initially blank tape.
// The transition table is immutable during a run; all per-run state
// lives on the machine, which may be reused via Reset.
type Machine struct {
	table *tm.Table
	tape  *Tape
	blank tm.Symbol

	state      tm.State
	head       int
	steps      int
	minVisited int
	maxVisited int
}

// MachineOption is a functional option for configuring a Machine.
type MachineOption func(*Machine)

// WithBlankSymbol sets the blank tape symbol. Defaults to 0.
func WithBlankSymbol(blank tm.Symbol) MachineOption {
	return func(m *Machine) {
		m.blank = blank
	}
}

// NewMachine creates a machine for the given transition table, in the
// initial state with the head at position zero.
func NewMachine(table *tm.Table, opts ...MachineOption) *Machine {
	m := &Machine{table: table, blank: tm.Zero}
	for _, opt := range opts {
		opt(m)
	}
	m.tape = NewTape(m.blank)
	m.reset()
	return m
}

// Reset prepares the machine to run a different table, reusing the
// tape buffer.
func (m *Machine) Reset(table *tm.Table) {
	m.table = table
	m.tape.Reset(m.blank)
	m.reset()
}

func (m *Machine) reset() {
	m.state = tm.StartState
	m.head = 0
	m.steps = 0
	m.minVisited = 0
	m.maxVisited = 0
}

// State returns the current machine state.
func (m *Machine) State() tm.State { return m.state }

// Head returns the current head position.
func (m *Machine) Head() int { return m.head }

// StepCount returns the number of steps taken so far.
func (m *Machine) StepCount() int { return m.steps }

// NumStates returns the number of non-halting states of the table.
func (m *Machine) NumStates() int { return m.table.NumStates() }

// Blank returns the blank symbol.
func (m *Machine) Blank() tm.Symbol { return m.blank }

// ReadTape returns the tape symbol at pos.
func (m *Machine) ReadTape(pos int) tm.Symbol { return m.tape.Read(pos) }

// Window exposes the tape's non-blank extent for filters. The slice
// aliases the tape and must not be retained across steps.
func (m *Machine) Window() (left int, cells []tm.Symbol, ok bool) {
	return m.tape.Window()
}

// MinVisited returns the leftmost head position visited.
func (m *Machine) MinVisited() int { return m.minVisited }

// MaxVisited returns the rightmost head position visited.
func (m *Machine) MaxVisited() int { return m.maxVisited }

// Step performs one transition. It returns false once the machine has
// halted: on entry to the halt state (after the write), or immediately
// when no transition is defined for the current configuration.
func (m *Machine) Step() bool {
	if m.state == tm.HaltState {
		return false
	}

	sym := m.tape.Read(m.head)
	tr, ok := m.table.Lookup(m.state, sym)
	if !ok {
		// Missing entry: implicit halt, nothing written.
		m.state = tm.HaltState
		return false
	}

	m.tape.Write(m.head, tr.Write)
	m.state = tr.Next
	m.head += int(tr.Move)
	if m.head < m.minVisited {
		m.minVisited = m.head
	}
	if m.head > m.maxVisited {
		m.maxVisited = m.head
	}
	m.steps++

	return m.state != tm.HaltState
}

// Run executes the machine for at most maxSteps steps. After each
// step the runtime filters are consulted in order; the first one to
// fire ends the run. Filters read but never mutate machine state.
func (m *Machine) Run(maxSteps int, filters []Filter) RunResult {
	for m.steps < maxSteps {
		if !m.Step() {
			return RunResult{Status: StatusHalted, Output: m.Output()}
		}
		for _, f := range filters {
			if f.Observe(m) {
				return RunResult{Status: StatusFiltered, Reason: f.Name()}
			}
		}
	}
	return RunResult{Status: StatusTimeout}
}

// Output extracts the tape string between the extreme non-blank
// cells. Interior blanks are included literally; an all-blank tape
// yields the empty string.
func (m *Machine) Output() string {
	_, cells, ok := m.tape.Window()
	if !ok {
		return ""
	}
	out := make([]byte, len(cells))
	for i, c := range cells {
		out[i] = c.Rune()
	}
	return string(out)
}
