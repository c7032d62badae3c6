// Package enum defines the raw and reduced machine enumeration spaces
// and partitions them into index ranges for parallel simulation.
package enum

import (
	"math"

	"github.com/sarchlab/ctmsim/tm"
)

// Range is a half-open interval [Lo, Hi) of machine indices.
type Range struct {
	Lo uint64
	Hi uint64
}

// Len returns the number of indices in the range.
func (r Range) Len() uint64 {
	return r.Hi - r.Lo
}

// RawSize returns the size of the raw enumeration space, (4n+2)^(2n).
func RawSize(numStates int) (uint64, error) {
	return tm.SpaceSize(numStates)
}

// RawRange returns the raw space as a single range [0, (4n+2)^(2n)).
func RawRange(numStates int) (Range, error) {
	size, err := tm.SpaceSize(numStates)
	if err != nil {
		return Range{}, err
	}
	return Range{Lo: 0, Hi: size}, nil
}

// SubspaceSize returns (4n+2)^(2n-1), the number of machines sharing
// one value of the initial-transition digit.
func SubspaceSize(numStates int) (uint64, error) {
	size, err := tm.SpaceSize(numStates)
	if err != nil {
		return 0, err
	}
	return size / uint64(4*numStates+2), nil
}

// ReducedRanges returns the reduced enumeration set as a list of
// contiguous index ranges in ascending order. The reduced set keeps
// only machines whose initial transition (state 1 reading symbol 0,
// the default blank) writes either symbol, moves right, and targets a
// state in 2..n; that transition is the most significant digit, so
// each allowed digit value contributes one contiguous sub-range.
// Empty for n=1.
func ReducedRanges(numStates int) ([]Range, error) {
	sub, err := SubspaceSize(numStates)
	if err != nil {
		return nil, err
	}
	var ranges []Range
	for next := 2; next <= numStates; next++ {
		for write := 0; write < 2; write++ {
			// Digit for (next, write, Right); Right has move index 1.
			code := uint64(2 + (next-1)*4 + write*2 + 1)
			ranges = append(ranges, Range{Lo: code * sub, Hi: (code + 1) * sub})
		}
	}
	return ranges, nil
}

// ReducedSize returns 2(n-1)(4n+2)^(2n-1), the cardinality of the
// reduced set.
func ReducedSize(numStates int) (uint64, error) {
	sub, err := SubspaceSize(numStates)
	if err != nil {
		return 0, err
	}
	return 2 * uint64(numStates-1) * sub, nil
}

// TotalLen sums the lengths of the given ranges.
func TotalLen(ranges []Range) uint64 {
	var total uint64
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}

// Chunks partitions an ordered range list into work chunks of at most
// batchSize indices, after skipping the first skip indices of the
// concatenated sequence and capping the remainder at limit (0 means
// no cap). Skipping is applied before the limit, so a resumed run
// continues exactly where the checkpoint left off. Chunks never span
// range boundaries.
func Chunks(ranges []Range, skip, limit, batchSize uint64) []Range {
	if batchSize == 0 {
		batchSize = 1
	}
	remaining := limit
	if limit == 0 {
		remaining = math.MaxUint64
	}

	var chunks []Range
	for _, r := range ranges {
		if skip >= r.Len() {
			skip -= r.Len()
			continue
		}
		lo := r.Lo + skip
		skip = 0
		for lo < r.Hi && remaining > 0 {
			size := r.Hi - lo
			if size > batchSize {
				size = batchSize
			}
			if size > remaining {
				size = remaining
			}
			chunks = append(chunks, Range{Lo: lo, Hi: lo + size})
			lo += size
			remaining -= size
		}
		if remaining == 0 {
			break
		}
	}
	return chunks
}
