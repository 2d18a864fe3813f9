// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/weight"
)

func makeAddress(b byte) address.Address {
	a := address.Address{}
	for i := range a {
		a[i] = b
	}
	return a
}

func TestPackPoolLayout(t *testing.T) {
	r := instruction.PoolRebalance{
		Target: 90000000,
	}
	packed, err := r.Pack()
	require.Nil(t, err)

	expected := instruction.Packed{
		0x01,                   // tag
		0x80, 0x95, 0xf5, 0x2a, // target
		0x00, // manager
		0x00, // continuation
	}
	assert.Equal(t, expected, packed)
	assert.Equal(t, instruction.PoolRebalanceTag, packed.Type())
}

// each level decodes its own record and passes the rest on unchanged
func TestLayeredInstruction(t *testing.T) {
	leaf, err := (&instruction.StrategyRebalance{}).Pack()
	require.Nil(t, err)

	manager := instruction.ManagerRebalance{
		Weights:  []weight.Weight{20000000, 80000000},
		Children: [][]byte{leaf, {}},
	}
	managerPacked, err := manager.Pack()
	require.Nil(t, err)

	pool := instruction.PoolRebalance{
		Target:       90000000,
		Manager:      makeAddress(0x42),
		Continuation: managerPacked,
	}
	poolPacked, err := pool.Pack()
	require.Nil(t, err)

	p, err := instruction.UnpackPool(poolPacked)
	require.Nil(t, err)
	assert.Equal(t, weight.Weight(90000000), p.Target)
	assert.Equal(t, makeAddress(0x42), p.Manager)
	assert.Equal(t, []byte(managerPacked), p.Continuation)

	m, err := instruction.UnpackManager(p.Continuation)
	require.Nil(t, err)
	assert.Equal(t, manager.Weights, m.Weights)
	require.Equal(t, 2, len(m.Children))
	assert.Equal(t, []byte(leaf), m.Children[0])
	assert.Equal(t, 0, len(m.Children[1]))

	_, err = instruction.UnpackStrategy(m.Children[0])
	assert.Nil(t, err)
}

// the pool does not look inside its continuation
func TestOpaqueContinuation(t *testing.T) {
	junk := []byte{0xff, 0xfe, 0x00, 0x13}
	pool := instruction.PoolRebalance{
		Target:       1,
		Continuation: junk,
	}
	packed, err := pool.Pack()
	require.Nil(t, err)

	p, err := instruction.UnpackPool(packed)
	require.Nil(t, err)
	assert.Equal(t, junk, p.Continuation)
	assert.True(t, p.Manager.IsZero())

	// decoded continuation is a copy
	packed[len(packed)-1] = 0x00
	assert.Equal(t, byte(0x13), p.Continuation[3])
}

func TestEmptyManagerInstruction(t *testing.T) {
	packed, err := (&instruction.ManagerRebalance{}).Pack()
	require.Nil(t, err)
	assert.Equal(t, instruction.Packed{0x02, 0x00, 0x00}, packed)

	m, err := instruction.UnpackManager(packed)
	require.Nil(t, err)
	assert.Equal(t, 0, len(m.Weights))
	assert.Equal(t, 0, len(m.Children))
}

func TestInitData(t *testing.T) {
	tests := []instruction.Record{
		&instruction.ManagerInit{
			Weights:    []weight.Weight{60000000, 40000000},
			Strategies: []address.Address{makeAddress(1), makeAddress(2)},
		},
		&instruction.CompoundInit{
			CToken:      makeAddress(3),
			CompToken:   makeAddress(4),
			Comptroller: makeAddress(5),
			Router:      makeAddress(6),
		},
		&instruction.AaveInit{
			AToken:          makeAddress(7),
			AddressProvider: makeAddress(8),
		},
	}

	for i, item := range tests {
		packed, err := item.Pack()
		require.Nil(t, err, "%d: pack", i)

		r, n, err := packed.Unpack()
		require.Nil(t, err, "%d: unpack", i)
		assert.Equal(t, len(packed), n, "%d: length", i)
		assert.Equal(t, item, r, "%d: record", i)

		name, ok := instruction.RecordName(r)
		assert.True(t, ok, "%d: name", i)
		assert.NotEqual(t, "*unknown*", name, "%d: name", i)
	}
}

func TestPackErrors(t *testing.T) {
	_, err := (&instruction.PoolRebalance{Target: weight.Denominator + 1}).Pack()
	assert.Equal(t, fault.ErrWeightExceedsDenominator, err)

	_, err = (&instruction.ManagerRebalance{Weights: []weight.Weight{60000000, 60000000}}).Pack()
	assert.Equal(t, fault.ErrWeightSumExceedsDenominator, err)

	_, err = (&instruction.ManagerInit{Weights: []weight.Weight{1}}).Pack()
	assert.Equal(t, fault.ErrWeightCountMismatch, err)

	_, err = (&instruction.CompoundInit{}).Pack()
	assert.Equal(t, fault.ErrMissingVenue, err)

	_, err = (&instruction.AaveInit{}).Pack()
	assert.Equal(t, fault.ErrMissingVenue, err)
}

func TestUnpackErrors(t *testing.T) {
	good, err := (&instruction.PoolRebalance{Target: 5, Continuation: []byte{1, 2, 3}}).Pack()
	require.Nil(t, err)

	// every truncation is rejected
	for i := 0; i < len(good); i += 1 {
		_, err := instruction.UnpackPool(good[:i])
		assert.NotNil(t, err, "truncated at: %d", i)
		assert.True(t, fault.IsErrInvalid(err), "truncated at: %d", i)
	}

	_, err = instruction.UnpackPool(append(good, 0x00))
	assert.Equal(t, fault.ErrTrailingData, err)

	_, err = instruction.UnpackManager(good)
	assert.Equal(t, fault.ErrInvalidTag, err)

	_, _, err = instruction.Packed{0x7f}.Unpack()
	assert.Equal(t, fault.ErrInvalidTag, err)

	// address of the wrong length
	_, _, err = instruction.Packed{0x01, 0x05, 0x03, 0xaa, 0xbb, 0xcc, 0x00}.Unpack()
	assert.Equal(t, fault.ErrInvalidAddressLength, err)

	// target above 100%
	_, _, err = instruction.Packed{0x01, 0x81, 0xc2, 0xd7, 0x2f, 0x00, 0x00}.Unpack()
	assert.Equal(t, fault.ErrWeightExceedsDenominator, err)

	// manager init whose weights do not match its strategies
	_, _, err = instruction.Packed{0x10, 0x01, 0x05, 0x00}.Unpack()
	assert.Equal(t, fault.ErrWeightCountMismatch, err)
}
