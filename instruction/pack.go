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

// Pack - pool level instruction
func (pool *PoolRebalance) Pack() (Packed, error) {
	if err := pool.Target.Validate(); nil != err {
		return nil, err
	}
	if len(pool.Continuation) > maxBytes {
		return nil, fault.ErrInvalidRecord
	}

	message := createPacked(PoolRebalanceTag)
	message = appendUint64(message, uint64(pool.Target))
	message = appendAddress(message, pool.Manager)
	message = appendBytes(message, pool.Continuation)
	return message, nil
}

// Pack - manager level instruction
func (manager *ManagerRebalance) Pack() (Packed, error) {
	if len(manager.Weights) > maxListCount || len(manager.Children) > maxListCount {
		return nil, fault.ErrInvalidCount
	}
	if _, err := weight.Sum(manager.Weights); nil != err {
		return nil, err
	}

	message := createPacked(ManagerRebalanceTag)
	message = appendWeights(message, manager.Weights)
	message = appendUint64(message, uint64(len(manager.Children)))
	for _, child := range manager.Children {
		if len(child) > maxBytes {
			return nil, fault.ErrInvalidRecord
		}
		message = appendBytes(message, child)
	}
	return message, nil
}

// Pack - strategy level instruction
func (strategy *StrategyRebalance) Pack() (Packed, error) {
	return createPacked(StrategyRebalanceTag), nil
}

// Pack - strategy manager constructor data
func (data *ManagerInit) Pack() (Packed, error) {
	if len(data.Weights) > maxListCount || len(data.Strategies) > maxListCount {
		return nil, fault.ErrInvalidCount
	}
	if err := weight.ValidateVector(data.Weights, len(data.Strategies)); nil != err {
		return nil, err
	}

	message := createPacked(ManagerInitTag)
	message = appendWeights(message, data.Weights)
	message = appendUint64(message, uint64(len(data.Strategies)))
	for _, a := range data.Strategies {
		message = appendAddress(message, a)
	}
	return message, nil
}

// Pack - compound strategy constructor data
func (data *CompoundInit) Pack() (Packed, error) {
	if data.CToken.IsZero() {
		return nil, fault.ErrMissingVenue
	}
	message := createPacked(CompoundInitTag)
	message = appendAddress(message, data.CToken)
	message = appendAddress(message, data.CompToken)
	message = appendAddress(message, data.Comptroller)
	message = appendAddress(message, data.Router)
	return message, nil
}

// Pack - aave strategy constructor data
func (data *AaveInit) Pack() (Packed, error) {
	if data.AToken.IsZero() {
		return nil, fault.ErrMissingVenue
	}
	message := createPacked(AaveInitTag)
	message = appendAddress(message, data.AToken)
	message = appendAddress(message, data.AddressProvider)
	message = appendAddress(message, data.Router)
	return message, nil
}

// start a record with its tag
func createPacked(tag TagType) Packed {
	return util.ToVarint64(uint64(tag))
}

// append an address to a buffer
//
// the field is prefixed by Varint64(length), a zero address is written
// with length zero
func appendAddress(buffer Packed, a address.Address) Packed {
	if a.IsZero() {
		return appendUint64(buffer, 0)
	}
	return appendBytes(buffer, a[:])
}

// append a list of weights prefixed by Varint64(count)
func appendWeights(buffer Packed, weights []weight.Weight) Packed {
	buffer = appendUint64(buffer, uint64(len(weights)))
	for _, w := range weights {
		buffer = appendUint64(buffer, uint64(w))
	}
	return buffer
}

// append a bytes to a buffer
//
// the field is prefixed by Varint64(length)
func appendBytes(buffer Packed, data []byte) Packed {
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	return append(buffer, data...)
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	return append(buffer, util.ToVarint64(value)...)
}
