package tm

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTransitions builds a table from hand-written transition rows.
// Each row has five whitespace-separated fields:
//
//	<state> <read> <next> <write> <move>
//
// where state/next are integers, read/write are '0' or '1', and move
// is one of L, R, N. Duplicate (state, read) pairs are rejected. The
// resulting table need not be total; the simulator halts implicitly on
// missing entries.
func ParseTransitions(rows []string, numStates int) (*Table, error) {
	t := NewTable(numStates)
	for _, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: row %q needs 5 fields (state read next write move)",
				ErrInvalidTable, row)
		}

		state, err := parseState(fields[0], numStates)
		if err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", ErrInvalidTable, row, err)
		}
		if state == HaltState {
			return nil, fmt.Errorf("%w: row %q: halt state has no outgoing transitions",
				ErrInvalidTable, row)
		}
		read, err := parseSymbol(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", ErrInvalidTable, row, err)
		}
		next, err := parseState(fields[2], numStates)
		if err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", ErrInvalidTable, row, err)
		}
		write, err := parseSymbol(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", ErrInvalidTable, row, err)
		}
		move, err := parseMove(fields[4])
		if err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", ErrInvalidTable, row, err)
		}

		if next == HaltState && move != MoveNone {
			return nil, fmt.Errorf("%w: row %q: halt transition must use move N",
				ErrInvalidTable, row)
		}
		if next != HaltState && move == MoveNone {
			return nil, fmt.Errorf("%w: row %q: active transition must move L or R",
				ErrInvalidTable, row)
		}
		if t.Defined(state, read) {
			return nil, fmt.Errorf("%w: duplicate transition for state %d symbol %c",
				ErrInvalidTable, state, read.Rune())
		}
		if err := t.Set(state, read, Transition{Next: next, Write: write, Move: move}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseState(s string, numStates int) (State, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad state %q", s)
	}
	if v < 0 || v > numStates {
		return 0, fmt.Errorf("state %d out of range [0, %d]", v, numStates)
	}
	return State(v), nil
}

func parseSymbol(s string) (Symbol, error) {
	switch s {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	}
	return 0, fmt.Errorf("bad symbol %q", s)
}

func parseMove(s string) (Move, error) {
	switch s {
	case "L":
		return MoveLeft, nil
	case "R":
		return MoveRight, nil
	case "N":
		return MoveNone, nil
	}
	return 0, fmt.Errorf("bad move %q", s)
}
