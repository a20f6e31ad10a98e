package model

import (
	"slices"
	"time"
)

// Params records the inputs of a sweep so that it can be reproduced.
type Params struct {
	// Dims are the dimensions swept, in sweep order.
	Dims []int `json:"dims"`

	// MinPower and MaxPower bound the sample counts N = 2^p, inclusive.
	MinPower int `json:"pmin"`
	MaxPower int `json:"pmax"`

	// Radius is the ball radius.
	Radius float64 `json:"r"`

	// Seed is the seed of the random source.
	Seed uint64 `json:"seed"`

	// Source is the generator kind, e.g. "pcg".
	Source string `json:"source"`

	// Replicates is the number of independent sweeps, 1 for a single sweep.
	Replicates int `json:"replicates"`
}

// SampleCounts returns the sample counts 2^MinPower … 2^MaxPower.
func (p Params) SampleCounts() []int {
	if p.MaxPower < p.MinPower {
		return nil
	}
	counts := make([]int, 0, p.MaxPower-p.MinPower+1)
	for e := p.MinPower; e <= p.MaxPower; e++ {
		counts = append(counts, 1<<e)
	}
	return counts
}

// Combinations returns the number of (dimension, sample count) points in one
// sweep.
func (p Params) Combinations() int {
	return len(p.Dims) * len(p.SampleCounts())
}

// SweepReport is the complete result of one sweep run.
type SweepReport struct {
	// ID identifies the run in the run store. Empty until saved.
	ID string `json:"id,omitempty"`

	// CreatedAt is when the sweep started.
	CreatedAt time.Time `json:"created_at"`

	// Elapsed is the wall time the sweep took.
	Elapsed time.Duration `json:"elapsed"`

	// Params are the sweep inputs.
	Params Params `json:"params"`

	// Rows holds one row per (dimension, sample count) in sweep order:
	// dimension-major, sample count ascending.
	Rows []Row `json:"rows"`

	// Replicates holds per-point error statistics when Params.Replicates > 1.
	Replicates []ReplicateStat `json:"replicates,omitempty"`

	// Fits holds one convergence fit per dimension.
	Fits []Fit `json:"fits,omitempty"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Error contains any error message if the sweep stopped early.
	Error string `json:"error,omitempty"`
}

// NewSweepReport returns an empty report for the given parameters.
func NewSweepReport(params Params) *SweepReport {
	return &SweepReport{
		CreatedAt: time.Now(),
		Params:    params,
	}
}

// AddRow appends a row.
func (r *SweepReport) AddRow(row Row) {
	r.Rows = append(r.Rows, row)
}

// Dims returns the distinct dimensions present in Rows, sorted ascending.
func (r *SweepReport) Dims() []int {
	var dims []int
	for _, row := range r.Rows {
		if !slices.Contains(dims, row.D) {
			dims = append(dims, row.D)
		}
	}
	slices.Sort(dims)
	return dims
}

// RowsFor returns the rows of dimension d in sweep order.
func (r *SweepReport) RowsFor(d int) []Row {
	var rows []Row
	for _, row := range r.Rows {
		if row.D == d {
			rows = append(rows, row)
		}
	}
	return rows
}

// LargestRow returns the row of dimension d with the most samples.
func (r *SweepReport) LargestRow(d int) (Row, bool) {
	var best Row
	found := false
	for _, row := range r.Rows {
		if row.D == d && (!found || row.N > best.N) {
			best, found = row, true
		}
	}
	return best, found
}

// ReplicatesFor returns the replicate statistics of dimension d.
func (r *SweepReport) ReplicatesFor(d int) []ReplicateStat {
	var stats []ReplicateStat
	for _, s := range r.Replicates {
		if s.D == d {
			stats = append(stats, s)
		}
	}
	return stats
}

// FitFor returns the convergence fit of dimension d.
func (r *SweepReport) FitFor(d int) (Fit, bool) {
	for _, f := range r.Fits {
		if f.D == d {
			return f, true
		}
	}
	return Fit{}, false
}

// HasPoorFits reports whether any fit needs attention.
func (r *SweepReport) HasPoorFits() bool {
	for _, f := range r.Fits {
		if f.NeedsAttention() {
			return true
		}
	}
	return false
}

// TotalSamples returns the sum of N over all rows.
func (r *SweepReport) TotalSamples() int {
	total := 0
	for _, row := range r.Rows {
		total += row.N
	}
	return total
}
