package dist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// fileData is the checkpoint/distribution JSON schema. Effective
// fields are present only after completion rules; missing fields
// default to zero values on load. The empty string is a legal output
// key.
type fileData struct {
	NumStates         int               `json:"num_states"`
	TotalProcessedRaw uint64            `json:"total_processed_raw"`
	TotalHaltingRaw   uint64            `json:"total_halting_raw"`
	NonHaltingReasons map[string]uint64 `json:"non_halting_reasons"`

	OutputCounts map[string]uint64 `json:"output_counts,omitempty"`

	EffectiveOutputCounts map[string]uint64  `json:"effective_output_counts,omitempty"`
	EffectiveHalting      *uint64            `json:"effective_halting,omitempty"`
	EffectiveNonHalting   *uint64            `json:"effective_non_halting,omitempty"`
	EffectiveTotal        *uint64            `json:"effective_total,omitempty"`
	DDistribution         map[string]float64 `json:"D_distribution,omitempty"`
}

// SaveFile writes the aggregator state to path atomically (write
// temp, fsync, rename). With raw set, or before completion rules have
// run, only the raw counts are written; otherwise the effective
// counts and the distribution are written.
func (a *Aggregator) SaveFile(path string, raw bool) error {
	data := fileData{
		NumStates:         a.NumStates,
		TotalProcessedRaw: a.TotalProcessedRaw,
		TotalHaltingRaw:   a.TotalHaltingRaw,
		NonHaltingReasons: a.NonHaltingReasons,
	}
	if raw || a.EffectiveOutputCounts == nil {
		data.OutputCounts = a.OutputCounts
	} else {
		data.EffectiveOutputCounts = a.EffectiveOutputCounts
		data.EffectiveHalting = &a.EffectiveHalting
		data.EffectiveNonHalting = &a.EffectiveNonHalting
		data.EffectiveTotal = &a.EffectiveTotal
		data.DDistribution = a.DDistribution
	}

	buf, err := json.Marshal(&data)
	if err != nil {
		return fmt.Errorf("encoding distribution: %w", err)
	}
	if err := renameio.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadFile reads aggregator state from a checkpoint or distribution
// file. With raw set, or when the file holds no effective counts, the
// raw output counts are loaded; otherwise the effective counts and
// distribution are loaded alongside the raw scalars.
func LoadFile(path string, raw bool) (*Aggregator, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var data fileData
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCheckpoint, path, err)
	}

	a := NewAggregator(data.NumStates)
	a.TotalProcessedRaw = data.TotalProcessedRaw
	a.TotalHaltingRaw = data.TotalHaltingRaw
	if data.NonHaltingReasons != nil {
		a.NonHaltingReasons = data.NonHaltingReasons
	}
	if raw || data.EffectiveOutputCounts == nil {
		if data.OutputCounts != nil {
			a.OutputCounts = data.OutputCounts
		}
		return a, nil
	}

	a.EffectiveOutputCounts = data.EffectiveOutputCounts
	if data.EffectiveHalting != nil {
		a.EffectiveHalting = *data.EffectiveHalting
	}
	if data.EffectiveNonHalting != nil {
		a.EffectiveNonHalting = *data.EffectiveNonHalting
	}
	if data.EffectiveTotal != nil {
		a.EffectiveTotal = *data.EffectiveTotal
	}
	a.DDistribution = data.DDistribution
	return a, nil
}
