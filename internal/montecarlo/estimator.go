package montecarlo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nao1215/ndsphere/internal/volume"
)

// Estimate draws n points uniformly from [-r, r]^d using src and returns the
// hit-or-miss estimate of the d-ball volume.
//
// All arguments are validated before any value is drawn, so a rejected call
// leaves src untouched. On success src has been advanced by exactly n·d draws.
func Estimate(src rand.Source, d, n int, r float64) (Result, error) {
	if err := validate(src, d, n, r); err != nil {
		return Result{}, err
	}

	exact, err := volume.Ball(d, r)
	if err != nil {
		return Result{}, err
	}
	cube, err := volume.Cube(d, r)
	if err != nil {
		return Result{}, err
	}

	inside := countInside(src, d, n, r)

	p := float64(inside) / float64(n)
	est := cube * p
	sigma := cube * math.Sqrt(math.Max(p*(1-p)/float64(n), 0))

	return Result{
		Dim:      d,
		Samples:  n,
		Radius:   r,
		Volume:   est,
		StdErr:   sigma,
		RelError: math.Abs(est-exact) / exact,
		Inside:   inside,
		Exact:    exact,
	}, nil
}

// countInside samples n points coordinate by coordinate and counts those with
// squared norm <= r².
func countInside(src rand.Source, d, n int, r float64) int {
	u := distuv.Uniform{Min: -r, Max: r, Src: src}
	r2 := r * r
	inside := 0
	for i := 0; i < n; i++ {
		sq := 0.0
		for j := 0; j < d; j++ {
			x := u.Rand()
			sq += x * x
		}
		if sq <= r2 {
			inside++
		}
	}
	return inside
}

func validate(src rand.Source, d, n int, r float64) error {
	if n < 1 {
		return volume.NewArgumentError("samples", n, "must be >= 1")
	}
	if err := volume.ValidateDimension(d); err != nil {
		return err
	}
	if err := volume.ValidateRadius(r); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrNilSource)
	}
	return nil
}

// Estimator binds a random source so that consecutive estimates continue the
// same stream. A sweep that uses one Estimator is reproducible from the seed
// of its source. An Estimator is not safe for concurrent use.
type Estimator struct {
	src rand.Source
}

// NewEstimator returns an Estimator drawing from src.
func NewEstimator(src rand.Source) *Estimator {
	return &Estimator{src: src}
}

// Estimate runs one hit-or-miss estimate on the bound source.
func (e *Estimator) Estimate(d, n int, r float64) (Result, error) {
	return Estimate(e.src, d, n, r)
}
