package util

import (
	"math"
	"testing"
)

func TestCheckedAdd(t *testing.T) {

	sum, err := CheckedAdd(2, 3)
	if err != nil || sum != 5 {
		t.Errorf("CheckedAdd(2,3) = %d, %v", sum, err)
	}

	if _, err := CheckedAdd(math.MaxUint64, 1); err != ErrOverflow {
		t.Errorf("Expected overflow, got %v", err)
	}

	sum, err = CheckedAdd(math.MaxUint64, 0)
	if err != nil || sum != math.MaxUint64 {
		t.Errorf("CheckedAdd(max,0) = %d, %v", sum, err)
	}
}

func TestCheckedSub(t *testing.T) {

	diff, err := CheckedSub(5, 3)
	if err != nil || diff != 2 {
		t.Errorf("CheckedSub(5,3) = %d, %v", diff, err)
	}

	if _, err := CheckedSub(3, 5); err != ErrUnderflow {
		t.Errorf("Expected underflow, got %v", err)
	}

	diff, err = CheckedSub(3, 3)
	if err != nil || diff != 0 {
		t.Errorf("CheckedSub(3,3) = %d, %v", diff, err)
	}
}

func TestCheckedMul(t *testing.T) {

	product, err := CheckedMul(6, 7)
	if err != nil || product != 42 {
		t.Errorf("CheckedMul(6,7) = %d, %v", product, err)
	}

	if _, err := CheckedMul(math.MaxUint64, 2); err != ErrOverflow {
		t.Errorf("Expected overflow, got %v", err)
	}

	product, err = CheckedMul(math.MaxUint64, 0)
	if err != nil || product != 0 {
		t.Errorf("CheckedMul(max,0) = %d, %v", product, err)
	}

	product, err = CheckedMul(0, math.MaxUint64)
	if err != nil || product != 0 {
		t.Errorf("CheckedMul(0,max) = %d, %v", product, err)
	}
}

func TestCheckedAddInt64(t *testing.T) {

	sum, err := CheckedAddInt64(100, 3600)
	if err != nil || sum != 3700 {
		t.Errorf("CheckedAddInt64(100,3600) = %d, %v", sum, err)
	}

	if _, err := CheckedAddInt64(math.MaxInt64, 1); err != ErrOverflow {
		t.Errorf("Expected overflow, got %v", err)
	}

	if _, err := CheckedAddInt64(math.MinInt64, -1); err != ErrUnderflow {
		t.Errorf("Expected underflow, got %v", err)
	}
}
