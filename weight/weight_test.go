// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package weight_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/weight"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, weight.Weight(90000000), weight.Percent(90))
	assert.Equal(t, weight.Denominator, weight.Percent(100))
	assert.Equal(t, "90%", weight.Percent(90).String())
	assert.Equal(t, "0.5%", weight.Weight(500000).String())
	assert.Equal(t, "12.345678%", weight.Weight(12345678).String())
}

func TestSum(t *testing.T) {
	tests := []struct {
		weights []weight.Weight
		total   weight.Weight
		err     error
	}{
		{nil, 0, nil},
		{[]weight.Weight{60000000, 40000000}, weight.Denominator, nil},
		{[]weight.Weight{20000000, 30000000}, 50000000, nil},
		{[]weight.Weight{60000000, 40000001}, 0, fault.ErrWeightSumExceedsDenominator},
		{[]weight.Weight{math.MaxUint64, 1}, 0, fault.ErrWeightSumExceedsDenominator},
	}

	for i, item := range tests {
		total, err := weight.Sum(item.weights)
		assert.Equal(t, item.err, err, "%d: error", i)
		assert.Equal(t, item.total, total, "%d: total", i)
	}
}

func TestValidateVector(t *testing.T) {
	assert.Nil(t, weight.ValidateVector([]weight.Weight{1, 2}, 2))
	assert.Equal(t, fault.ErrWeightCountMismatch, weight.ValidateVector([]weight.Weight{1}, 2))
	assert.True(t, fault.IsErrInvariant(weight.ValidateVector([]weight.Weight{weight.Denominator, 1}, 2)))
}

func TestPortion(t *testing.T) {
	tests := []struct {
		amount   uint64
		w        weight.Weight
		expected uint64
	}{
		{1000, 60000000, 600},
		{1000, 40000000, 400},
		{1000000, 90000000, 900000},
		{999, 33333333, 332},
		{0, weight.Denominator, 0},
		{math.MaxUint64, weight.Denominator, math.MaxUint64},
		{math.MaxUint64, 50000000, math.MaxUint64 / 2},
	}

	for i, item := range tests {
		p, err := weight.Portion(item.amount, item.w)
		assert.Nil(t, err, "%d: error", i)
		assert.Equal(t, item.expected, p, "%d: portion", i)
	}

	_, err := weight.Portion(1, weight.Denominator+1)
	assert.Equal(t, fault.ErrWeightExceedsDenominator, err)
}

func TestSplit(t *testing.T) {
	shares, idle, err := weight.Split(1000, []weight.Weight{60000000, 40000000})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{600, 400}, shares)
	assert.Equal(t, uint64(0), idle)

	shares, idle, err = weight.Split(900000, []weight.Weight{20000000, 70000000})
	assert.Nil(t, err)
	assert.Equal(t, []uint64{180000, 630000}, shares)
	assert.Equal(t, uint64(90000), idle)

	_, _, err = weight.Split(1, []weight.Weight{weight.Denominator, 1})
	assert.Equal(t, fault.ErrWeightSumExceedsDenominator, err)
}

func TestArithmetic(t *testing.T) {
	s, err := weight.Add(1, 2)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), s)

	_, err = weight.Add(math.MaxUint64, 1)
	assert.Equal(t, fault.ErrAmountOverflow, err)

	q, err := weight.MulDiv(math.MaxUint64, 10, 20)
	assert.Nil(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), q)

	_, err = weight.MulDiv(math.MaxUint64, 2, 1)
	assert.Equal(t, fault.ErrAmountOverflow, err)

	_, err = weight.MulDiv(1, 1, 0)
	assert.Equal(t, fault.ErrAmountOverflow, err)
}
