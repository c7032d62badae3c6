// Package tm defines binary Turing machine transition tables and their
// canonical integer encoding.
package tm

import (
	"errors"
	"fmt"
)

// Symbol is a tape symbol. The alphabet is exactly {0, 1}.
type Symbol uint8

// The two tape symbols.
const (
	Zero Symbol = 0
	One  Symbol = 1
)

// Complement returns the other symbol.
func (s Symbol) Complement() Symbol {
	return s ^ 1
}

// Rune returns the character form of the symbol ('0' or '1').
func (s Symbol) Rune() byte {
	return '0' + byte(s)
}

// State identifies a machine state. State 0 is the dedicated halt
// state; state 1 is the initial state.
type State int

// Distinguished states.
const (
	HaltState  State = 0
	StartState State = 1
)

// Move is a head movement. MoveNone is only legal on transitions into
// the halt state.
type Move int8

// Head movements.
const (
	MoveLeft  Move = -1
	MoveNone  Move = 0
	MoveRight Move = 1
)

// MaxStates is the largest supported number of non-halting states.
// Machine indices live in [0, (4n+2)^(2n)), which exceeds uint64 for
// n > 6.
const MaxStates = 6

// Errors reported by table construction and the codec.
var (
	ErrInvalidTable    = errors.New("invalid transition table")
	ErrIndexOutOfRange = errors.New("machine index out of range")
)

// Transition is one entry of a transition table.
type Transition struct {
	// Next is the state entered after the transition.
	Next State

	// Write is the symbol written before moving.
	Write Symbol

	// Move is the head movement. Must be MoveNone iff Next is the
	// halt state.
	Move Move
}

// Table is a transition table over states 1..n and symbols {0, 1}. A
// table used with the codec must be total (all 2n entries defined);
// the simulator treats missing entries as implicit halts.
type Table struct {
	numStates int
	entries   []Transition
	defined   []bool
}

// NewTable creates an empty table for the given number of non-halting
// states.
func NewTable(numStates int) *Table {
	return &Table{
		numStates: numStates,
		entries:   make([]Transition, 2*numStates),
		defined:   make([]bool, 2*numStates),
	}
}

// NumStates returns the number of non-halting states.
func (t *Table) NumStates() int {
	return t.numStates
}

func (t *Table) slot(state State, read Symbol) (int, bool) {
	if state < 1 || int(state) > t.numStates || read > One {
		return 0, false
	}
	return (int(state)-1)*2 + int(read), true
}

// Set defines the transition taken in the given state when reading the
// given symbol, replacing any previous entry.
func (t *Table) Set(state State, read Symbol, tr Transition) error {
	i, ok := t.slot(state, read)
	if !ok {
		return fmt.Errorf("%w: no slot for state %d symbol %d", ErrInvalidTable, state, read)
	}
	t.entries[i] = tr
	t.defined[i] = true
	return nil
}

// Lookup returns the transition for (state, read), if defined.
func (t *Table) Lookup(state State, read Symbol) (Transition, bool) {
	i, ok := t.slot(state, read)
	if !ok || !t.defined[i] {
		return Transition{}, false
	}
	return t.entries[i], true
}

// Defined reports whether an entry exists for (state, read).
func (t *Table) Defined(state State, read Symbol) bool {
	i, ok := t.slot(state, read)
	return ok && t.defined[i]
}

// HasHaltTransition reports whether any defined entry targets the halt
// state. A machine without one can never halt.
func (t *Table) HasHaltTransition() bool {
	for i, tr := range t.entries {
		if t.defined[i] && tr.Next == HaltState {
			return true
		}
	}
	return false
}

// SpaceSize returns the size of the raw enumeration space,
// (4n+2)^(2n). numStates must be in [1, MaxStates].
func SpaceSize(numStates int) (uint64, error) {
	if numStates < 1 || numStates > MaxStates {
		return 0, fmt.Errorf("%w: numStates must be in [1, %d], got %d",
			ErrIndexOutOfRange, MaxStates, numStates)
	}
	base := uint64(4*numStates + 2)
	size := uint64(1)
	for i := 0; i < 2*numStates; i++ {
		size *= base
	}
	return size, nil
}
