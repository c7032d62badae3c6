// Package estimator turns an output-frequency distribution into CTM
// complexity estimates via the Coding Theorem: K(s) = -log2 D(s).
package estimator

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Ranked pairs an output string with its complexity estimate.
type Ranked struct {
	Output string
	K      float64
}

// Estimator answers complexity queries against a fixed distribution.
type Estimator struct {
	k map[string]float64
}

// FromDistribution builds an estimator from an in-memory D map.
// Entries with zero (or negative) probability get +Inf.
func FromDistribution(d map[string]float64) *Estimator {
	k := make(map[string]float64, len(d))
	for s, p := range d {
		if p <= 0 {
			k[s] = math.Inf(1)
		} else {
			k[s] = -math.Log2(p)
		}
	}
	return &Estimator{k: k}
}

// FromFile builds an estimator from a distribution file: either a
// full campaign export carrying a D_distribution field, or a bare
// JSON object mapping strings to probabilities.
func FromFile(path string) (*Estimator, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var export struct {
		DDistribution map[string]float64 `json:"D_distribution"`
	}
	if err := json.Unmarshal(buf, &export); err == nil && export.DDistribution != nil {
		return FromDistribution(export.DDistribution), nil
	}

	var d map[string]float64
	if err := json.Unmarshal(buf, &d); err != nil {
		return nil, fmt.Errorf("parsing distribution %s: %w", path, err)
	}
	return FromDistribution(d), nil
}

// Estimate returns K(s), or +Inf for strings outside the
// distribution's support.
func (e *Estimator) Estimate(s string) float64 {
	if k, ok := e.k[s]; ok {
		return k
	}
	return math.Inf(1)
}

// Ranked returns the known strings sorted by increasing complexity,
// ties broken by string for determinism. A positive topN truncates
// the list.
func (e *Estimator) Ranked(topN int) []Ranked {
	ranked := make([]Ranked, 0, len(e.k))
	for s, k := range e.k {
		ranked = append(ranked, Ranked{Output: s, K: k})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].K != ranked[j].K {
			return ranked[i].K < ranked[j].K
		}
		return ranked[i].Output < ranked[j].Output
	})
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked
}
