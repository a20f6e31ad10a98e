package report

import (
	"math"
	"testing"
)

// TestFormatFloat tests the classic float representation.
func TestFormatFloat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		value    float64
		expected string
	}{
		{"integral value keeps a decimal point", 4, "4.0"},
		{"radius one", 1, "1.0"},
		{"simple fraction", 0.1, "0.1"},
		{"shortest round trip", 4.1887902047863905, "4.1887902047863905"},
		{"square root of 128", math.Sqrt(128), "11.313708498984761"},
		{"small but not exponent", 0.0001, "0.0001"},
		{"below 1e-4 switches to exponent", 0.00001, "1e-05"},
		{"fractional mantissa with exponent", 0.000015, "1.5e-05"},
		{"just below 1e16", 1e15, "1000000000000000.0"},
		{"1e16 switches to exponent", 1e16, "1e+16"},
		{"large exponent", 1.5e300, "1.5e+300"},
		{"negative value", -2.5, "-2.5"},
		{"zero", 0, "0.0"},
		{"negative zero", math.Copysign(0, -1), "-0.0"},
		{"positive infinity", math.Inf(1), "inf"},
		{"negative infinity", math.Inf(-1), "-inf"},
		{"not a number", math.NaN(), "nan"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatFloat(tc.value); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestFormatCount tests thousands grouping.
func TestFormatCount(t *testing.T) {
	t.Parallel()

	testCases := map[int]string{
		64:      "64",
		1024:    "1,024",
		262144:  "262,144",
		1 << 24: "16,777,216",
	}
	for n, want := range testCases {
		if got := FormatCount(n); got != want {
			t.Errorf("FormatCount(%d) = %q, expected %q", n, got, want)
		}
	}
}
