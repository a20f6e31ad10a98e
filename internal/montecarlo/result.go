package montecarlo

import "fmt"

// Result is the outcome of one hit-or-miss estimate. It is a plain value and
// is never modified after Estimate returns it.
type Result struct {
	// Dim is the dimension d that was sampled.
	Dim int `json:"d"`
	// Samples is the number of points N that were drawn.
	Samples int `json:"n"`
	// Radius is the ball radius r.
	Radius float64 `json:"r"`
	// Volume is the estimated ball volume (2r)^d · p̂.
	Volume float64 `json:"volume"`
	// StdErr is the one-sigma statistical uncertainty of Volume.
	StdErr float64 `json:"stderr"`
	// RelError is |Volume - Exact| / Exact.
	RelError float64 `json:"relative_error"`
	// Inside is the number of points whose squared norm is <= r².
	Inside int `json:"inside"`
	// Exact is the analytic volume the estimate was scored against.
	Exact float64 `json:"exact"`
}

// HitRate returns p̂, the fraction of samples that fell inside the ball.
func (r Result) HitRate() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Inside) / float64(r.Samples)
}

// Outside returns the number of samples that missed the ball.
func (r Result) Outside() int {
	return r.Samples - r.Inside
}

// RelStdErr returns StdErr expressed as a fraction of the exact volume.
func (r Result) RelStdErr() float64 {
	if r.Exact == 0 {
		return 0
	}
	return r.StdErr / r.Exact
}

// String returns a one-line summary suitable for logs.
func (r Result) String() string {
	return fmt.Sprintf("d=%d N=%d r=%g volume=%g±%g rel=%g inside=%d",
		r.Dim, r.Samples, r.Radius, r.Volume, r.StdErr, r.RelError, r.Inside)
}
