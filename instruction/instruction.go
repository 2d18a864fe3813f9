// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package instruction

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/util"
	"github.com/ballast-fi/robo-advisor/weight"
)

// TagType - type code for records
type TagType uint64

// enumerate the possible record types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// rebalance levels
	PoolRebalanceTag     = TagType(iota)
	ManagerRebalanceTag  = TagType(iota)
	StrategyRebalanceTag = TagType(iota)

	// constructor data
	ManagerInitTag  = TagType(16)
	CompoundInitTag = TagType(17)
	AaveInitTag     = TagType(18)
)

// limits on decoded fields
const (
	maxListCount = 256
	maxBytes     = 65536
)

// Packed - packed records are just a byte slice
type Packed []byte

// Record - generic record interface
type Record interface {
	Pack() (Packed, error)
}

// PoolRebalance - the outermost level of a rebalance instruction
type PoolRebalance struct {
	Target       weight.Weight   `json:"target"`
	Manager      address.Address `json:"manager"` // zero: use the bound manager
	Continuation []byte          `json:"continuation"`
}

// ManagerRebalance - allocation across the strategies of a manager
//
// an empty weight list keeps the current allocation; children is either
// empty or has one, possibly empty, slice per strategy
type ManagerRebalance struct {
	Weights  []weight.Weight `json:"weights"`
	Children [][]byte        `json:"children"`
}

// StrategyRebalance - a leaf instruction, carries no parameters in
// this version
type StrategyRebalance struct {
}

// ManagerInit - constructor data for a strategy manager
type ManagerInit struct {
	Weights    []weight.Weight   `json:"weights"`
	Strategies []address.Address `json:"strategies"`
}

// CompoundInit - constructor data for a compound style strategy
type CompoundInit struct {
	CToken      address.Address `json:"cToken"`
	CompToken   address.Address `json:"compToken"`
	Comptroller address.Address `json:"comptroller"`
	Router      address.Address `json:"router"`
}

// AaveInit - constructor data for an aave style strategy
type AaveInit struct {
	AToken          address.Address `json:"aToken"`
	AddressProvider address.Address `json:"addressProvider"`
	Router          address.Address `json:"router"`
}

// Type - returns the record type code
func (record Packed) Type() TagType {
	recordType, n := util.FromVarint64(record)
	if 0 == n {
		return NullTag
	}
	return TagType(recordType)
}

// RecordName - returns the name of a record
func RecordName(record interface{}) (string, bool) {
	switch record.(type) {
	case *PoolRebalance, PoolRebalance:
		return "PoolRebalance", true
	case *ManagerRebalance, ManagerRebalance:
		return "ManagerRebalance", true
	case *StrategyRebalance, StrategyRebalance:
		return "StrategyRebalance", true
	case *ManagerInit, ManagerInit:
		return "ManagerInit", true
	case *CompoundInit, CompoundInit:
		return "CompoundInit", true
	case *AaveInit, AaveInit:
		return "AaveInit", true
	default:
		return "*unknown*", false
	}
}
