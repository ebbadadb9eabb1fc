// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package linearrange maps physical values to discrete register codes over
// one or more monotonic linear ranges.
//
// A device quantity is often representable as base + step*(code-min) for
// codes in [min, max]. Some quantities need more than one such segment, for
// example a charger termination voltage with a gap between 3.65V and 4.0V.
// A slice of Range values describes such a group; the ranges are expected to
// be ordered and jointly monotonic.
package linearrange

import "errors"

// ErrNoFit is returned when no code in any range decodes to a value inside
// the requested window.
var ErrNoFit = errors.New("linearrange: no code in range")

// Range is a monotonic linear mapping between register codes and values.
// The value of code c is Base + Step*(c-Min), valid for Min <= c <= Max.
type Range struct {
	// Base is the value represented by code Min.
	Base int64
	// Step is the value increment per code.
	Step int64
	// Min is the lowest valid code.
	Min uint16
	// Max is the highest valid code.
	Max uint16
}

// Value returns the decoded value of code. ok is false if code lies outside
// [Min, Max].
func (r Range) Value(code uint16) (value int64, ok bool) {
	if code < r.Min || code > r.Max {
		return 0, false
	}
	return r.Base + r.Step*int64(code-r.Min), true
}

// MaxValue returns the value represented by code Max.
func (r Range) MaxValue() int64 {
	return r.Base + r.Step*int64(r.Max-r.Min)
}

// winCode returns the highest code whose value does not exceed high,
// provided that value is not below low.
func (r Range) winCode(low, high int64) (uint16, bool) {
	if high < r.Base || low > r.MaxValue() {
		return 0, false
	}
	code := r.Max
	if high < r.MaxValue() {
		code = r.Min + uint16((high-r.Base)/r.Step)
	}
	if v, _ := r.Value(code); v < low {
		return 0, false
	}
	return code, true
}

// FindCode returns the code whose decoded value lies within [low, high],
// searching ranges in order and returning the first hit. With low == high it
// degenerates to an exact-value lookup. With low < high it returns the
// highest valid value not exceeding high and not below low, which callers
// use to round a target down to the nearest supported value.
//
// ErrNoFit is returned when the window misses every range. Callers must
// treat that as a configuration error rather than clamp.
func FindCode(ranges []Range, low, high int64) (uint16, error) {
	for _, r := range ranges {
		if code, ok := r.winCode(low, high); ok {
			return code, nil
		}
	}
	return 0, ErrNoFit
}
