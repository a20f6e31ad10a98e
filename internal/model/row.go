package model

// Row is one point of a convergence sweep: a single hit-or-miss estimate at
// dimension D with N samples. The JSON names match the CSV column names.
type Row struct {
	// D is the dimension.
	D int `json:"d"`

	// N is the number of samples.
	N int `json:"N"` //nolint:tagliatelle // matches the CSV header

	// SqrtN is √N, the x axis of the convergence plot.
	SqrtN float64 `json:"sqrtN"` //nolint:tagliatelle // matches the CSV header

	// Estimate is the Monte Carlo volume estimate.
	Estimate float64 `json:"estimate"`

	// True is the analytic volume.
	True float64 `json:"true"`

	// FractionalError is |Estimate - True| / True.
	FractionalError float64 `json:"fractional_error"`

	// Sigma is the one-sigma statistical uncertainty of Estimate.
	Sigma float64 `json:"sigma"`

	// SigmaFrac is Sigma / True.
	SigmaFrac float64 `json:"sigma_frac"`

	// Inside is the number of samples that fell inside the ball.
	Inside int `json:"inside"`

	// R is the radius.
	R float64 `json:"r"`
}

// Outside returns the number of samples that missed the ball.
func (r Row) Outside() int {
	return r.N - r.Inside
}

// HitRate returns Inside / N.
func (r Row) HitRate() float64 {
	if r.N == 0 {
		return 0
	}
	return float64(r.Inside) / float64(r.N)
}

// WithinSigma reports whether the estimate lies within k standard errors of
// the analytic volume.
func (r Row) WithinSigma(k float64) bool {
	diff := r.Estimate - r.True
	if diff < 0 {
		diff = -diff
	}
	return diff <= k*r.Sigma
}
