package model

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor units (cents). The store keeps numeric(25,2).
type Money int64

// Times returns m multiplied by n, or ErrTotalOutOfRange if the product does not fit in int64.
func (m Money) Times(n int) (Money, error) {
	if m == 0 || n == 0 {
		return 0, nil
	}
	a, b := int64(m), int64(n)
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrTotalOutOfRange
	}
	r := a * b
	if r/b != a {
		return 0, ErrTotalOutOfRange
	}
	return Money(r), nil
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number and rounds it to cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", data, err)
	}
	if f < 0 {
		*m = Money(f*100 - 0.5)
	} else {
		*m = Money(f*100 + 0.5)
	}
	return nil
}
