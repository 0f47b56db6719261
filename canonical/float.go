package canonical

import (
	"math"
	"strconv"
	"strings"
)

// Scientific notation is used below 1e-4 and from 1e16 up.
const (
	minFixedExponent = -4
	maxFixedExponent = 16
)

// FormatFloat formats f with the shortest digits that round-trip, using
// fixed notation with a mandatory fractional part for decimal exponents in
// [-4, 16) and d.ddde±XX otherwise. NaN and infinities are rejected.
func FormatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrUnsupportedValue
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)

	exp, err := decimalExponent(sci)
	if err != nil {
		return "", err
	}

	if exp < minFixedExponent || exp >= maxFixedExponent {
		return sci, nil
	}

	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}

	return fixed, nil
}

// decimalExponent extracts the exponent from strconv's 'e' format output.
func decimalExponent(sci string) (int, error) {
	idx := strings.LastIndexByte(sci, 'e')
	if idx < 0 {
		return 0, ErrInvalidNumber
	}

	return strconv.Atoi(sci[idx+1:])
}
