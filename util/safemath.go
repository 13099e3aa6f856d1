package util

import (
	"math"

	"github.com/pkg/errors"
)

// Every balance and counter mutation in the accounting engine must go
// through these helpers. Wrapping on overflow would silently corrupt the
// pot/stake bookkeeping, so out-of-range results are rejected instead.
var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
)

func CheckedAdd(a, b uint64) (uint64, error) {

	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}

	return a + b, nil
}

func CheckedSub(a, b uint64) (uint64, error) {

	if b > a {
		return 0, ErrUnderflow
	}

	return a - b, nil
}

func CheckedMul(a, b uint64) (uint64, error) {

	if a == 0 || b == 0 {
		return 0, nil
	}

	if a > math.MaxUint64/b {
		return 0, ErrOverflow
	}

	return a * b, nil
}

// CheckedAddInt64 guards timestamp arithmetic; both operands are expected
// to be non-negative Unix seconds or interval lengths.
func CheckedAddInt64(a, b int64) (int64, error) {

	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}

	if b < 0 && a < math.MinInt64-b {
		return 0, ErrUnderflow
	}

	return a + b, nil
}
