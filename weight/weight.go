// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package weight - fixed point fractions of an amount
//
// A Weight is an unsigned integer with an implicit denominator of
// 100,000,000 so that Denominator represents 100%.
package weight

import (
	"math/bits"
	"strconv"

	"github.com/ballast-fi/robo-advisor/fault"
)

// Denominator - the value of a 100% weight
const Denominator = Weight(100000000)

// Weight - fraction of Denominator
type Weight uint64

// Percent - convenience constructor for whole percentages
func Percent(p uint64) Weight {
	return Weight(p * uint64(Denominator) / 100)
}

// Validate - a single weight cannot exceed 100%
func (w Weight) Validate() error {
	if w > Denominator {
		return fault.ErrWeightExceedsDenominator
	}
	return nil
}

// Min - the smaller of two weights
func Min(a Weight, b Weight) Weight {
	if a < b {
		return a
	}
	return b
}

// String - decimal percentage with eight fractional digits trimmed
func (w Weight) String() string {
	whole := uint64(w) / (uint64(Denominator) / 100)
	frac := uint64(w) % (uint64(Denominator) / 100)
	if 0 == frac {
		return strconv.FormatUint(whole, 10) + "%"
	}
	s := strconv.FormatUint(frac+uint64(Denominator)/100, 10)[1:]
	for '0' == s[len(s)-1] {
		s = s[:len(s)-1]
	}
	return strconv.FormatUint(whole, 10) + "." + s + "%"
}

// Sum - total of a vector, failing if it would exceed Denominator
func Sum(weights []Weight) (Weight, error) {
	total := Weight(0)
	for _, w := range weights {
		if w > Denominator || total > Denominator-w {
			return 0, fault.ErrWeightSumExceedsDenominator
		}
		total += w
	}
	return total, nil
}

// ValidateVector - the vector must have exactly n items summing to no
// more than Denominator
func ValidateVector(weights []Weight, n int) error {
	if len(weights) != n {
		return fault.ErrWeightCountMismatch
	}
	_, err := Sum(weights)
	return err
}

// Portion - amount * w / Denominator rounded down
//
// the product is computed in 128 bits so that no valid weight can
// overflow
func Portion(amount uint64, w Weight) (uint64, error) {
	if w > Denominator {
		return 0, fault.ErrWeightExceedsDenominator
	}
	hi, lo := bits.Mul64(amount, uint64(w))
	q, _ := bits.Div64(hi, lo, uint64(Denominator))
	return q, nil
}

// Split - distribute amount by weights, returning each share and the
// undistributed remainder
func Split(amount uint64, weights []Weight) ([]uint64, uint64, error) {
	if _, err := Sum(weights); nil != err {
		return nil, 0, err
	}
	shares := make([]uint64, len(weights))
	remainder := amount
	for i, w := range weights {
		p, err := Portion(amount, w)
		if nil != err {
			return nil, 0, err
		}
		shares[i] = p
		remainder -= p
	}
	return shares, remainder, nil
}

// Add - overflow checked addition of two amounts
func Add(a uint64, b uint64) (uint64, error) {
	s, carry := bits.Add64(a, b, 0)
	if 0 != carry {
		return 0, fault.ErrAmountOverflow
	}
	return s, nil
}

// MulDiv - a * b / c rounded down, failing if the result does not fit
func MulDiv(a uint64, b uint64, c uint64) (uint64, error) {
	if 0 == c {
		return 0, fault.ErrAmountOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, fault.ErrAmountOverflow
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}
