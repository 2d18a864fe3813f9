// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package instruction

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/util"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Unpack - turn a byte slice into a record
//
// returns the record and the number of bytes it occupied, any bytes
// after that are not examined
//
// must cast result to correct type
//
// e.g.
//   switch r := result.(type) {
//   case *instruction.PoolRebalance:
func (record Packed) Unpack() (r Record, n int, e error) {

	defer func() {
		if p := recover(); nil != p {
			r = nil
			n = 0
			e = fault.ErrNotPackedRecord
		}
	}()

	recordType, n := util.FromVarint64(record)
	if 0 == n {
		return nil, 0, fault.ErrNotPackedRecord
	}

unpack_switch:
	switch TagType(recordType) {

	case PoolRebalanceTag:

		target, targetLength, err := readWeight(record[n:])
		if nil != err {
			return nil, 0, err
		}
		if 0 == targetLength {
			break unpack_switch
		}
		n += targetLength

		manager, managerLength, err := readAddress(record[n:])
		if nil != err {
			return nil, 0, err
		}
		if 0 == managerLength {
			break unpack_switch
		}
		n += managerLength

		continuation, continuationLength := readBytes(record[n:])
		if 0 == continuationLength {
			break unpack_switch
		}
		n += continuationLength

		r := &PoolRebalance{
			Target:       target,
			Manager:      manager,
			Continuation: continuation,
		}
		return r, n, nil

	case ManagerRebalanceTag:

		weights, weightsLength, err := readWeights(record[n:])
		if nil != err {
			return nil, 0, err
		}
		if 0 == weightsLength {
			break unpack_switch
		}
		n += weightsLength

		count, countLength := util.ClippedVarint64(record[n:], 0, maxListCount)
		if 0 == countLength {
			break unpack_switch
		}
		n += countLength

		children := make([][]byte, 0, count)
		for i := 0; i < count; i += 1 {
			child, childLength := readBytes(record[n:])
			if 0 == childLength {
				break unpack_switch
			}
			n += childLength
			children = append(children, child)
		}

		r := &ManagerRebalance{
			Weights:  weights,
			Children: children,
		}
		return r, n, nil

	case StrategyRebalanceTag:

		return &StrategyRebalance{}, n, nil

	case ManagerInitTag:

		weights, weightsLength, err := readWeights(record[n:])
		if nil != err {
			return nil, 0, err
		}
		if 0 == weightsLength {
			break unpack_switch
		}
		n += weightsLength

		count, countLength := util.ClippedVarint64(record[n:], 0, maxListCount)
		if 0 == countLength {
			break unpack_switch
		}
		n += countLength

		strategies := make([]address.Address, 0, count)
		for i := 0; i < count; i += 1 {
			a, addressLength, err := readAddress(record[n:])
			if nil != err {
				return nil, 0, err
			}
			if 0 == addressLength {
				break unpack_switch
			}
			n += addressLength
			strategies = append(strategies, a)
		}

		if err := weight.ValidateVector(weights, len(strategies)); nil != err {
			return nil, 0, err
		}

		r := &ManagerInit{
			Weights:    weights,
			Strategies: strategies,
		}
		return r, n, nil

	case CompoundInitTag:

		addresses, length, err := readAddresses(record[n:], 4)
		if nil != err {
			return nil, 0, err
		}
		if 0 == length {
			break unpack_switch
		}
		n += length

		r := &CompoundInit{
			CToken:      addresses[0],
			CompToken:   addresses[1],
			Comptroller: addresses[2],
			Router:      addresses[3],
		}
		return r, n, nil

	case AaveInitTag:

		addresses, length, err := readAddresses(record[n:], 3)
		if nil != err {
			return nil, 0, err
		}
		if 0 == length {
			break unpack_switch
		}
		n += length

		r := &AaveInit{
			AToken:          addresses[0],
			AddressProvider: addresses[1],
			Router:          addresses[2],
		}
		return r, n, nil

	default: // also NullTag
		return nil, 0, fault.ErrInvalidTag
	}
	return nil, 0, fault.ErrNotPackedRecord
}

// UnpackExact - unpack a record that must fill the whole buffer and be
// of the expected type
func (record Packed) UnpackExact(tag TagType) (Record, error) {
	if 0 == len(record) {
		return nil, fault.ErrNotPackedRecord
	}
	if record.Type() != tag {
		return nil, fault.ErrInvalidTag
	}
	r, n, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	if n != len(record) {
		return nil, fault.ErrTrailingData
	}
	return r, nil
}

// UnpackPool - decode the pool level of a rebalance instruction
func UnpackPool(buffer []byte) (*PoolRebalance, error) {
	r, err := Packed(buffer).UnpackExact(PoolRebalanceTag)
	if nil != err {
		return nil, err
	}
	return r.(*PoolRebalance), nil
}

// UnpackManager - decode the manager level of a rebalance instruction
func UnpackManager(buffer []byte) (*ManagerRebalance, error) {
	r, err := Packed(buffer).UnpackExact(ManagerRebalanceTag)
	if nil != err {
		return nil, err
	}
	return r.(*ManagerRebalance), nil
}

// UnpackStrategy - decode the strategy level of a rebalance instruction
func UnpackStrategy(buffer []byte) (*StrategyRebalance, error) {
	r, err := Packed(buffer).UnpackExact(StrategyRebalanceTag)
	if nil != err {
		return nil, err
	}
	return r.(*StrategyRebalance), nil
}

// read a Varint64 weight and check its range
func readWeight(buffer []byte) (weight.Weight, int, error) {
	value, n := util.FromVarint64(buffer)
	if 0 == n {
		return 0, 0, nil
	}
	w := weight.Weight(value)
	if err := w.Validate(); nil != err {
		return 0, 0, err
	}
	return w, n, nil
}

// read a counted list of weights
func readWeights(buffer []byte) ([]weight.Weight, int, error) {
	count, n := util.ClippedVarint64(buffer, 0, maxListCount)
	if 0 == n {
		return nil, 0, nil
	}
	weights := make([]weight.Weight, 0, count)
	for i := 0; i < count; i += 1 {
		w, wLength, err := readWeight(buffer[n:])
		if nil != err || 0 == wLength {
			return nil, 0, err
		}
		n += wLength
		weights = append(weights, w)
	}
	return weights, n, nil
}

// read a length prefixed address, length zero gives the zero address
func readAddress(buffer []byte) (address.Address, int, error) {
	length, n := util.ClippedVarint64(buffer, 0, address.Length)
	if 0 == n {
		return address.Zero, 0, nil
	}
	if 0 == length {
		return address.Zero, n, nil
	}
	if address.Length != length || len(buffer) < n+length {
		return address.Zero, 0, fault.ErrInvalidAddressLength
	}
	a, err := address.FromBytes(buffer[n : n+length])
	if nil != err {
		return address.Zero, 0, err
	}
	return a, n + length, nil
}

// read a fixed number of addresses
func readAddresses(buffer []byte, count int) ([]address.Address, int, error) {
	n := 0
	addresses := make([]address.Address, count)
	for i := 0; i < count; i += 1 {
		a, length, err := readAddress(buffer[n:])
		if nil != err || 0 == length {
			return nil, 0, err
		}
		addresses[i] = a
		n += length
	}
	return addresses, n, nil
}

// read a length prefixed byte string, the result is a copy
func readBytes(buffer []byte) ([]byte, int) {
	length, n := util.ClippedVarint64(buffer, 0, maxBytes)
	if 0 == n || len(buffer) < n+length {
		return nil, 0
	}
	data := make([]byte, length)
	copy(data, buffer[n:n+length])
	return data, n + length
}
