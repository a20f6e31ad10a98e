package volume

import (
	"errors"
	"math"
	"testing"
)

// closeTo reports whether got is within rel relative error of want.
func closeTo(want, got, rel float64) bool {
	return math.Abs(got-want) <= rel*math.Abs(want)
}

// TestBall tests the closed form against known volumes.
func TestBall(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		d    int
		r    float64
		want float64
	}{
		{"1-ball of radius 2 is the interval [-2, 2]", 1, 2, 4},
		{"unit disc", 2, 1, math.Pi},
		{"disc of radius 3", 2, 3, 9 * math.Pi},
		{"unit 3-ball", 3, 1, 4.0 / 3.0 * math.Pi},
		{"unit 4-ball", 4, 1, math.Pi * math.Pi / 2},
		{"unit 5-ball", 5, 1, 8 * math.Pi * math.Pi / 15},
		{"unit 10-ball", 10, 1, math.Pow(math.Pi, 5) / 120},
		{"3-ball of radius 0.5", 3, 0.5, math.Pi / 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Ball(tc.d, tc.r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !closeTo(tc.want, got, 1e-14) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

// TestBallExactForOneDimension tests that d=1 is exactly 2r.
func TestBallExactForOneDimension(t *testing.T) {
	t.Parallel()

	got, err := Ball(1, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.0 {
		t.Errorf("expected exactly 4, got %v", got)
	}
}

// TestBallAgreesWithGammaForm tests the recurrence against the gamma function form.
func TestBallAgreesWithGammaForm(t *testing.T) {
	t.Parallel()

	for d := 1; d <= 40; d++ {
		for _, r := range []float64{0.25, 1, 1.5, 3} {
			exact, err := Ball(d, r)
			if err != nil {
				t.Fatalf("d=%d r=%v: unexpected error: %v", d, r, err)
			}
			gamma, err := BallReal(float64(d), r)
			if err != nil {
				t.Fatalf("d=%d r=%v: unexpected error: %v", d, r, err)
			}
			if !closeTo(gamma, exact, 1e-11) {
				t.Errorf("d=%d r=%v: expected %v, got %v", d, r, gamma, exact)
			}
		}
	}
}

// TestBallIsPositiveAndIncreasingInRadius tests monotonicity in r.
func TestBallIsPositiveAndIncreasingInRadius(t *testing.T) {
	t.Parallel()

	for d := 1; d <= 12; d++ {
		prev := 0.0
		for _, r := range []float64{1e-3, 0.1, 0.5, 1, 2, 5, 10} {
			v, err := Ball(d, r)
			if err != nil {
				t.Fatalf("d=%d r=%v: unexpected error: %v", d, r, err)
			}
			if v <= prev {
				t.Errorf("d=%d r=%v: expected %v > %v", d, r, v, prev)
			}
			prev = v
		}
	}
}

// TestBallRejectsInvalidArguments tests argument validation.
func TestBallRejectsInvalidArguments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		d     int
		r     float64
		param string
	}{
		{"zero dimension", 0, 1, "dimension"},
		{"negative dimension", -3, 1, "dimension"},
		{"zero radius", 3, 0, "radius"},
		{"negative radius", 3, -1, "radius"},
		{"NaN radius", 3, math.NaN(), "radius"},
		{"infinite radius", 3, math.Inf(1), "radius"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Ball(tc.d, tc.r)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("expected *ArgumentError, got %T", err)
			}
			if argErr.Param != tc.param {
				t.Errorf("expected param %q, got %q", tc.param, argErr.Param)
			}
		})
	}
}

// TestBallReal tests the real-dimension form.
func TestBallReal(t *testing.T) {
	t.Parallel()

	t.Run("zero dimension is a point of volume 1", func(t *testing.T) {
		t.Parallel()
		v, err := BallReal(0, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(v-1) > 1e-15 {
			t.Errorf("expected 1, got %v", v)
		}
	})

	t.Run("half-integer dimension lies between its neighbours", func(t *testing.T) {
		t.Parallel()
		var v [3]float64
		for i, d := range []float64{2, 2.5, 3} {
			var err error
			if v[i], err = BallReal(d, 2); err != nil {
				t.Fatalf("d=%v: unexpected error: %v", d, err)
			}
		}
		if v[1] <= v[0] || v[1] >= v[2] {
			t.Errorf("expected %v < %v < %v", v[0], v[1], v[2])
		}
	})

	t.Run("negative dimension is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := BallReal(-0.5, 1); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("large dimension decays towards zero", func(t *testing.T) {
		t.Parallel()
		v, err := BallReal(400, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v < 0 || v >= 1e-200 {
			t.Errorf("expected a tiny non-negative volume, got %v", v)
		}
	})
}

// TestCube tests the bounding hypercube volume.
func TestCube(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		d    int
		r    float64
		want float64
	}{
		{3, 1, 8},
		{10, 0.5, 1},
	}
	for _, tc := range testCases {
		v, err := Cube(tc.d, tc.r)
		if err != nil {
			t.Fatalf("d=%d r=%v: unexpected error: %v", tc.d, tc.r, err)
		}
		if v != tc.want {
			t.Errorf("d=%d r=%v: expected %v, got %v", tc.d, tc.r, tc.want, v)
		}
	}

	if _, err := Cube(0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

// TestHitProbability tests the ball to cube volume ratio.
func TestHitProbability(t *testing.T) {
	t.Parallel()

	p, err := HitProbability(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !closeTo(math.Pi/4, p, 1e-15) {
		t.Errorf("expected pi/4, got %v", p)
	}

	prev := 1.0
	for d := 1; d <= 15; d++ {
		p, err := HitProbability(d)
		if err != nil {
			t.Fatalf("d=%d: unexpected error: %v", d, err)
		}
		if p > prev {
			t.Errorf("d=%d: expected %v <= %v", d, p, prev)
		}
		prev = p
	}
}

// TestArgumentErrorMessage tests the error text.
func TestArgumentErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewArgumentError("samples", 0, "must be >= 1")
	if got, want := err.Error(), "invalid argument: samples must be >= 1, got 0"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
