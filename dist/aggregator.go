package dist

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ctmsim/emu"
)

// Errors reported by aggregation and persistence.
var (
	ErrEmptyDistribution = errors.New("no halting machines to calculate distribution")
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

// Aggregator holds the campaign-wide outcome counts and, after
// completion, the effective counts and the D(n,2) distribution.
// Raw counters are monotone non-decreasing during enumeration and
// satisfy
//
//	TotalProcessedRaw = TotalHaltingRaw + sum(NonHaltingReasons)
//	sum(OutputCounts) = TotalHaltingRaw
type Aggregator struct {
	NumStates int

	OutputCounts      map[string]uint64
	NonHaltingReasons map[string]uint64
	TotalProcessedRaw uint64
	TotalHaltingRaw   uint64

	// Set by ApplyCompletionRules (reduced enumeration only).
	EffectiveOutputCounts map[string]uint64
	EffectiveHalting      uint64
	EffectiveNonHalting   uint64
	EffectiveTotal        uint64

	// Set by CalculateD.
	DDistribution map[string]float64
}

// NewAggregator creates an empty aggregator for machines with the
// given number of non-halting states.
func NewAggregator(numStates int) *Aggregator {
	return &Aggregator{
		NumStates:         numStates,
		OutputCounts:      make(map[string]uint64),
		NonHaltingReasons: make(map[string]uint64),
	}
}

// Record adds a single run outcome.
func (a *Aggregator) Record(r emu.RunResult) {
	a.TotalProcessedRaw++
	switch r.Status {
	case emu.StatusHalted:
		a.TotalHaltingRaw++
		a.OutputCounts[r.Output]++
	case emu.StatusTimeout:
		a.NonHaltingReasons[ReasonTimeout]++
	case emu.StatusFiltered:
		a.NonHaltingReasons[r.Reason]++
	}
}

// Merge adds a worker tally into the aggregator. Merging is
// associative and commutative, so chunk tallies may arrive in any
// order.
func (a *Aggregator) Merge(t *Tally) {
	a.TotalProcessedRaw += t.Processed
	a.TotalHaltingRaw += t.Halting
	for s, c := range t.OutputCounts {
		a.OutputCounts[s] += c
	}
	for reason, c := range t.NonHaltingReasons {
		a.NonHaltingReasons[reason] += c
	}
}

// NonHaltingTotal sums the non-halting reason counts.
func (a *Aggregator) NonHaltingTotal() uint64 {
	var total uint64
	for _, c := range a.NonHaltingReasons {
		total += c
	}
	return total
}

// ApplyCompletionRules reconstructs full-set tallies from a
// reduced-set run of mRed machines. The four rules run in order:
//
//  1. Right-left reflection: mirror every output, double non-halting.
//  2. Trivial initial halts: one subspace of machines halting
//     immediately on each written symbol.
//  3. Initial self-transitions: four subspaces that can never halt.
//  4. Blank-symbol complement: complement every output (including the
//     step 2 additions), double non-halting.
func (a *Aggregator) ApplyCompletionRules(mRed uint64) error {
	if a.NumStates < 2 {
		return fmt.Errorf("completion rules need at least 2 states, got %d", a.NumStates)
	}
	subspace := mRed / uint64(2*(a.NumStates-1))

	counts := make(map[string]uint64, 4*len(a.OutputCounts))
	for s, c := range a.OutputCounts {
		counts[s] += c
	}
	for s, c := range a.OutputCounts {
		counts[Reverse(s)] += c
	}
	nonHalting := a.NonHaltingTotal() * 2

	counts["0"] += subspace
	counts["1"] += subspace

	nonHalting += 4 * subspace

	complemented := make(map[string]uint64, len(counts))
	for s, c := range counts {
		complemented[Complement(s)] += c
	}
	for s, c := range complemented {
		counts[s] += c
	}
	nonHalting *= 2

	a.EffectiveOutputCounts = counts
	a.EffectiveNonHalting = nonHalting
	a.EffectiveHalting = 0
	for _, c := range counts {
		a.EffectiveHalting += c
	}
	a.EffectiveTotal = a.EffectiveHalting + a.EffectiveNonHalting
	return nil
}

// CalculateD computes D(s) = count(s) / halting, using effective
// counts when completion rules have run and raw counts otherwise.
func (a *Aggregator) CalculateD() error {
	counts := a.OutputCounts
	denom := a.TotalHaltingRaw
	if a.EffectiveOutputCounts != nil {
		counts = a.EffectiveOutputCounts
		denom = a.EffectiveHalting
	}
	if denom == 0 {
		return ErrEmptyDistribution
	}
	a.DDistribution = make(map[string]float64, len(counts))
	for s, c := range counts {
		a.DDistribution[s] = float64(c) / float64(denom)
	}
	return nil
}
