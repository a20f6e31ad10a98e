package report

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatFloat formats v the way the classic tool printed floats: the shortest
// representation that round-trips, with a trailing ".0" on integral values and
// exponent notation when the decimal exponent is below -4 or at least 16.
//
//	FormatFloat(4)       == "4.0"
//	FormatFloat(0.1)     == "0.1"
//	FormatFloat(1e16)    == "1e+16"
//	FormatFloat(0.00001) == "1e-05"
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

var printer = message.NewPrinter(language.English)

// FormatCount formats an integer with thousands separators, e.g. 262,144.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatFixed formats v with the given number of significant digits for
// tables meant for people.
func formatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatFloat(v)
	}
	return strconv.FormatFloat(v, 'g', digits, 64)
}
