package model

import (
	"fmt"
	"math"
)

// ExpectedSlope is the slope of log(error) against log(N) for a Monte Carlo
// estimator whose error falls as 1/√N.
const ExpectedSlope = -0.5

// SlopeTolerance is the largest deviation from ExpectedSlope that is still
// reported as acceptable convergence.
const SlopeTolerance = 0.25

// Verdict grades how closely a fitted convergence slope follows 1/√N.
type Verdict int

const (
	// VerdictUnknown means the fit had too few usable points.
	VerdictUnknown Verdict = iota

	// VerdictGood means the slope is within 0.1 of -0.5.
	VerdictGood

	// VerdictFair means the slope is within SlopeTolerance of -0.5.
	VerdictFair

	// VerdictPoor means the slope deviates from -0.5 by more than
	// SlopeTolerance. Sweeps with few samples per point commonly land here
	// because a single run's error is itself noisy.
	VerdictPoor
)

// String returns a human-readable representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictUnknown:
		return "UNKNOWN"
	case VerdictGood:
		return "GOOD"
	case VerdictFair:
		return "FAIR"
	case VerdictPoor:
		return "POOR"
	default:
		return "INVALID"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	parsed, err := ParseVerdict(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVerdict converts the String form back into a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	for _, v := range []Verdict{VerdictUnknown, VerdictGood, VerdictFair, VerdictPoor} {
		if v.String() == s {
			return v, nil
		}
	}
	return VerdictUnknown, fmt.Errorf("unknown verdict %q", s)
}

// ClassifySlope grades a fitted slope. Non-finite slopes are VerdictUnknown.
func ClassifySlope(slope float64) Verdict {
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return VerdictUnknown
	}
	dev := math.Abs(slope - ExpectedSlope)
	switch {
	case dev <= 0.1:
		return VerdictGood
	case dev <= SlopeTolerance:
		return VerdictFair
	default:
		return VerdictPoor
	}
}

// Fit is a least-squares line through (log N, log error) for one dimension.
type Fit struct {
	// D is the dimension the fit belongs to.
	D int `json:"d"`

	// Points is the number of rows used. Rows with zero error are skipped
	// because their logarithm is undefined.
	Points int `json:"points"`

	// Slope of log(fractional error) against log(N).
	Slope float64 `json:"slope"`

	// Intercept of the same line.
	Intercept float64 `json:"intercept"`

	// RSquared is the coefficient of determination of the line.
	RSquared float64 `json:"r_squared"`

	// SigmaSlope is the slope of log(sigma_frac) against log(N). It should be
	// close to -0.5 regardless of sampling noise.
	SigmaSlope float64 `json:"sigma_slope"`

	// UsedReplicates is true when the fit used replicate-averaged errors.
	UsedReplicates bool `json:"used_replicates"`

	// Verdict grades Slope.
	Verdict Verdict `json:"verdict"`
}

// Deviation returns |Slope - ExpectedSlope|.
func (f Fit) Deviation() float64 {
	return math.Abs(f.Slope - ExpectedSlope)
}

// NeedsAttention reports whether the fit should be flagged in reports.
func (f Fit) NeedsAttention() bool {
	return f.Verdict == VerdictPoor
}
