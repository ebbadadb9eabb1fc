// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package linearrange

import (
	"errors"
	"testing"
)

// The nPM1300 termination voltage group, in µV.
var voltRanges = []Range{
	{Base: 3500000, Step: 50000, Min: 0, Max: 3},
	{Base: 4000000, Step: 50000, Min: 4, Max: 13},
}

func TestValue(t *testing.T) {
	r := Range{Base: 32000, Step: 2000, Min: 16, Max: 400}
	tests := []struct {
		code  uint16
		value int64
		ok    bool
	}{
		{16, 32000, true},
		{17, 34000, true},
		{400, 800000, true},
		{15, 0, false},
		{401, 0, false},
	}
	for _, test := range tests {
		v, ok := r.Value(test.code)
		if ok != test.ok || v != test.value {
			t.Errorf("Value(%d) = %d, %t; want %d, %t", test.code, v, ok, test.value, test.ok)
		}
	}
	if max := r.MaxValue(); max != 800000 {
		t.Errorf("MaxValue() = %d, want 800000", max)
	}
}

func TestFindCodeExact(t *testing.T) {
	tests := []struct {
		value int64
		code  uint16
	}{
		{3500000, 0},
		{3650000, 3}, // last code of the first range
		{4000000, 4}, // first code of the second range
		{4150000, 7},
		{4450000, 13},
	}
	for _, test := range tests {
		code, err := FindCode(voltRanges, test.value, test.value)
		if err != nil {
			t.Errorf("FindCode(%d): %v", test.value, err)
			continue
		}
		if code != test.code {
			t.Errorf("FindCode(%d) = %d, want %d", test.value, code, test.code)
		}
	}
}

func TestFindCodeNoFit(t *testing.T) {
	tests := []int64{
		10000000, // 10V against a 3.5-4.45V group
		3499999,  // just below the group
		3700000,  // inside the gap between the ranges
		4025000,  // off-step within a range
	}
	for _, value := range tests {
		if _, err := FindCode(voltRanges, value, value); !errors.Is(err, ErrNoFit) {
			t.Errorf("FindCode(%d) = %v, want ErrNoFit", value, err)
		}
	}
	// A window entirely above the group.
	if _, err := FindCode(voltRanges, 5000000, 6000000); !errors.Is(err, ErrNoFit) {
		t.Errorf("FindCode(5V, 6V) = %v, want ErrNoFit", err)
	}
}

func TestFindCodeRoundDown(t *testing.T) {
	// The charger rounds its current target down to the closest supported
	// value using a window one step wide.
	r := []Range{{Base: 32000, Step: 2000, Min: 16, Max: 400}}
	tests := []struct {
		target int64
		code   uint16
		value  int64
	}{
		{150000, 75, 150000}, // exact
		{151000, 75, 150000}, // rounds down
		{149999, 74, 148000},
	}
	for _, test := range tests {
		code, err := FindCode(r, test.target-2000+1, test.target)
		if err != nil {
			t.Errorf("FindCode(target %d): %v", test.target, err)
			continue
		}
		if code != test.code {
			t.Errorf("FindCode(target %d) = %d, want %d", test.target, code, test.code)
		}
		if v, _ := r[0].Value(code); v != test.value {
			t.Errorf("Value(%d) = %d, want %d", code, v, test.value)
		}
	}
}

func TestFindCodeBoundaryPrefersEarlierRange(t *testing.T) {
	// Contiguous ranges that both represent the shared boundary value must
	// resolve to the earlier range's code.
	group := []Range{
		{Base: 0, Step: 100, Min: 0, Max: 4},   // codes 0..4, values 0..400
		{Base: 400, Step: 100, Min: 5, Max: 9}, // code 5 also represents 400
	}
	code, err := FindCode(group, 400, 400)
	if err != nil {
		t.Fatal(err)
	}
	if code != 4 {
		t.Errorf("FindCode(400) = %d, want 4 from the first range", code)
	}
}
