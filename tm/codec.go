package tm

import "fmt"

// The codec maps tables to integers in [0, (4n+2)^(2n)) and back. A
// table is read as a base-(4n+2) numeral with one digit per entry,
// most significant first, entries ordered state-major (1..n) with
// symbol 0 before symbol 1.
//
// Digit values:
//
//	0, 1              halt transitions, writing symbol 0 or 1
//	2 .. 4n+1         active transitions: 2 + 4(next-1) + 2*write + move
//
// where move is 0 for Left and 1 for Right.

// Encode converts a total transition table into its machine index.
func Encode(t *Table) (uint64, error) {
	base := uint64(4*t.numStates + 2)
	var index uint64
	for state := StartState; int(state) <= t.numStates; state++ {
		for read := Zero; read <= One; read++ {
			tr, ok := t.Lookup(state, read)
			if !ok {
				return 0, fmt.Errorf("%w: missing transition for state %d symbol %d",
					ErrInvalidTable, state, read)
			}
			digit, err := encodeTransition(tr, t.numStates)
			if err != nil {
				return 0, fmt.Errorf("%w (state %d symbol %d)", err, state, read)
			}
			index = index*base + digit
		}
	}
	return index, nil
}

func encodeTransition(tr Transition, numStates int) (uint64, error) {
	if tr.Write > One {
		return 0, fmt.Errorf("%w: bad write symbol %d", ErrInvalidTable, tr.Write)
	}
	if tr.Next == HaltState {
		if tr.Move != MoveNone {
			return 0, fmt.Errorf("%w: halt transition must not move", ErrInvalidTable)
		}
		return uint64(tr.Write), nil
	}
	if tr.Next < 1 || int(tr.Next) > numStates {
		return 0, fmt.Errorf("%w: next state %d out of range", ErrInvalidTable, tr.Next)
	}
	var moveIdx uint64
	switch tr.Move {
	case MoveLeft:
		moveIdx = 0
	case MoveRight:
		moveIdx = 1
	default:
		return 0, fmt.Errorf("%w: active transition must move left or right", ErrInvalidTable)
	}
	return 2 + uint64(tr.Next-1)*4 + uint64(tr.Write)*2 + moveIdx, nil
}

// Decode converts a machine index back into its transition table.
func Decode(index uint64, numStates int) (*Table, error) {
	size, err := SpaceSize(numStates)
	if err != nil {
		return nil, err
	}
	if index >= size {
		return nil, fmt.Errorf("%w: index %d >= %d", ErrIndexOutOfRange, index, size)
	}

	base := uint64(4*numStates + 2)
	entries := 2 * numStates
	digits := make([]uint64, entries)
	for i := entries - 1; i >= 0; i-- {
		digits[i] = index % base
		index /= base
	}

	t := NewTable(numStates)
	i := 0
	for state := StartState; int(state) <= numStates; state++ {
		for read := Zero; read <= One; read++ {
			_ = t.Set(state, read, decodeTransition(digits[i]))
			i++
		}
	}
	return t, nil
}

func decodeTransition(digit uint64) Transition {
	if digit < 2 {
		return Transition{Next: HaltState, Write: Symbol(digit), Move: MoveNone}
	}
	offset := digit - 2
	move := MoveLeft
	if offset%2 == 1 {
		move = MoveRight
	}
	return Transition{
		Next:  State(offset/4) + 1,
		Write: Symbol(offset / 2 % 2),
		Move:  move,
	}
}
