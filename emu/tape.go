// Package emu provides functional simulation of binary Turing
// machines on a blank tape.
package emu

import "github.com/sarchlab/ctmsim/tm"

const initialTapeCells = 16

// Tape is a bi-infinite binary tape. Storage is a dense cell buffer
// with a dynamic origin that doubles on under/overflow; positions
// outside the buffer read as blank.
type Tape struct {
	blank  tm.Symbol
	cells  []tm.Symbol
	origin int
}

// NewTape creates a tape that is blank everywhere.
func NewTape(blank tm.Symbol) *Tape {
	return &Tape{blank: blank}
}

// Blank returns the tape's blank symbol.
func (t *Tape) Blank() tm.Symbol {
	return t.blank
}

// Read returns the symbol at pos.
func (t *Tape) Read(pos int) tm.Symbol {
	if pos < t.origin || pos >= t.origin+len(t.cells) {
		return t.blank
	}
	return t.cells[pos-t.origin]
}

// Write stores a symbol at pos, growing the buffer if needed.
func (t *Tape) Write(pos int, sym tm.Symbol) {
	if len(t.cells) == 0 {
		t.cells = make([]tm.Symbol, initialTapeCells)
		t.fill(t.cells)
		t.origin = pos - initialTapeCells/2
	}
	for pos < t.origin || pos >= t.origin+len(t.cells) {
		t.grow(pos < t.origin)
	}
	t.cells[pos-t.origin] = sym
}

// Reset makes the tape blank everywhere again, keeping the buffer for
// reuse, and adopts the given blank symbol.
func (t *Tape) Reset(blank tm.Symbol) {
	t.blank = blank
	t.fill(t.cells)
}

// Window returns the tape contents between the leftmost and rightmost
// non-blank cells, and the position of the leftmost one. The returned
// slice aliases the tape buffer and is only valid until the next
// write. ok is false when the tape is all blank.
func (t *Tape) Window() (left int, cells []tm.Symbol, ok bool) {
	lo, hi := -1, -1
	for i, c := range t.cells {
		if c != t.blank {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return 0, nil, false
	}
	return t.origin + lo, t.cells[lo : hi+1], true
}

func (t *Tape) fill(cells []tm.Symbol) {
	for i := range cells {
		cells[i] = t.blank
	}
}

func (t *Tape) grow(left bool) {
	cells := make([]tm.Symbol, 2*len(t.cells))
	t.fill(cells)
	if left {
		copy(cells[len(t.cells):], t.cells)
		t.origin -= len(t.cells)
	} else {
		copy(cells, t.cells)
	}
	t.cells = cells
}
