package emu

import (
	"github.com/sarchlab/ctmsim/tm"
)

// Filter reason names. These are the keys recorded by the aggregator
// for runs stopped early.
const (
	ReasonNoHaltTransition = "no_halt_transition"
	ReasonEscapee          = "escapee"
	ReasonCycleTwo         = "cycle_two"
)

// Filter is a runtime non-halting detector. A filter is constructed
// per run, owns its own bookkeeping, and is consulted after every
// step. Observe must not mutate the machine.
type Filter interface {
	// Name identifies the filter in recorded outcomes.
	Name() string

	// Observe inspects the machine after a step and reports whether
	// the run should stop.
	Observe(m *Machine) bool
}

// HasNoHaltTransition is the pre-run filter: a table with no
// transition into the halt state can never halt and is rejected
// without simulation.
func HasNoHaltTransition(table *tm.Table) bool {
	return !table.HasHaltTransition()
}

// escapeeFilter detects machines running away over fresh blank tape:
// it fires once the head has crossed more than NumStates consecutive
// never-visited blank cells. The head moves one cell per step, so the
// visited positions form a contiguous range; the only exception is
// the start cell, which the filter never saw if the first observation
// happened after the head had already moved off it.
type escapeeFilter struct {
	seeded    bool
	seenMin   int
	seenMax   int
	startHole bool // position 0 visited before seeding, not yet counted
	blankRun  int
}

// NewEscapeeFilter creates an escapee detector for a single run.
func NewEscapeeFilter() Filter {
	return &escapeeFilter{}
}

func (f *escapeeFilter) Name() string {
	return ReasonEscapee
}

func (f *escapeeFilter) Observe(m *Machine) bool {
	pos := m.Head()

	// The first observation only seeds the seen range; the first
	// step's move is deliberately not counted.
	if !f.seeded {
		f.seeded = true
		f.seenMin, f.seenMax = pos, pos
		f.startHole = pos != 0
		return false
	}

	isNew := pos < f.seenMin || pos > f.seenMax || (pos == 0 && f.startHole)
	if isNew && m.ReadTape(pos) == m.Blank() {
		f.blankRun++
		if pos == 0 {
			f.startHole = false
		}
		if pos < f.seenMin {
			f.seenMin = pos
		}
		if pos > f.seenMax {
			f.seenMax = pos
		}
	} else {
		f.blankRun = 0
	}

	return f.blankRun > m.NumStates()
}

// tapeSnapshot captures a machine configuration for cycle detection.
// Only non-blank cells participate: the extent bounds plus the window
// contents determine the written-cell set, so equality is independent
// of write order and of explicitly written blanks.
type tapeSnapshot struct {
	state tm.State
	head  int
	left  int
	cells []byte
}

func (s *tapeSnapshot) capture(m *Machine) {
	s.state = m.State()
	s.head = m.Head()
	left, window, ok := m.Window()
	s.cells = s.cells[:0]
	if !ok {
		s.left = 0
		return
	}
	s.left = left
	for _, c := range window {
		s.cells = append(s.cells, byte(c))
	}
}

func (s *tapeSnapshot) equal(o *tapeSnapshot) bool {
	if s.state != o.state || s.head != o.head || s.left != o.left ||
		len(s.cells) != len(o.cells) {
		return false
	}
	for i, c := range s.cells {
		if c != o.cells[i] {
			return false
		}
	}
	return true
}

// cycleTwoFilter detects period-two configuration repeats by keeping
// the last three configurations and firing when the first and third
// are equal. Period-one loops are a subcase and fire too.
type cycleTwoFilter struct {
	history [3]tapeSnapshot
	filled  int
}

// NewCycleTwoFilter creates a period-two cycle detector for a single
// run.
func NewCycleTwoFilter() Filter {
	return &cycleTwoFilter{}
}

func (f *cycleTwoFilter) Name() string {
	return ReasonCycleTwo
}

func (f *cycleTwoFilter) Observe(m *Machine) bool {
	if f.filled < 3 {
		f.history[f.filled].capture(m)
		f.filled++
	} else {
		// Slide the window, recycling the evicted snapshot's buffer.
		evicted := f.history[0]
		f.history[0] = f.history[1]
		f.history[1] = f.history[2]
		f.history[2] = evicted
		f.history[2].capture(m)
	}
	return f.filled == 3 && f.history[0].equal(&f.history[2])
}
