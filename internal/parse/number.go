package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyNumber is returned by Number for blank input.
var ErrEmptyNumber = errors.New("value is required")

// Number parses user-entered numeric text. Thousands separators, currency symbols
// and a trailing percent sign are tolerated; anything else must be a plain decimal.
func Number(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmptyNumber
	}
	s = strings.TrimSuffix(s, "%")
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return v, nil
}

// Int parses user-entered whole numbers.
func Int(raw string) (int, error) {
	v, err := Number(raw)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(v), nil
}
