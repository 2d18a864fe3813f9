// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/util"
)

// Code - what is deployed at an address
//
// a zero Implementation means the address holds the implementation
// itself, otherwise it is a proxy instance running Implementation's
// kind with its own state
type Code struct {
	Kind           Kind            `json:"kind"`
	Version        uint64          `json:"version"`
	Implementation address.Address `json:"implementation"`
	Deployer       address.Address `json:"deployer"`
}

// IsProxy - true for a clone instance
func (code Code) IsProxy() bool {
	return !code.Implementation.IsZero()
}

// pack a code record
//
// kind(len ++ bytes) ++ version(varint) ++ implementation(len ++ bytes) ++ deployer(len ++ bytes)
func (code Code) pack() []byte {
	buffer := util.ToVarint64(uint64(len(code.Kind)))
	buffer = append(buffer, code.Kind...)
	buffer = append(buffer, util.ToVarint64(code.Version)...)
	buffer = appendAddress(buffer, code.Implementation)
	return appendAddress(buffer, code.Deployer)
}

func appendAddress(buffer []byte, a address.Address) []byte {
	if a.IsZero() {
		return append(buffer, 0)
	}
	buffer = append(buffer, util.ToVarint64(address.Length)...)
	return append(buffer, a[:]...)
}

func unpackCode(buffer []byte) (Code, error) {
	code := Code{}

	kindLength, n := util.ClippedVarint64(buffer, 1, maxKindLength)
	if 0 == n || len(buffer) < n+kindLength {
		return code, fault.ErrInvalidRecord
	}
	code.Kind = Kind(buffer[n : n+kindLength])
	n += kindLength

	version, versionLength := util.FromVarint64(buffer[n:])
	if 0 == versionLength {
		return code, fault.ErrInvalidRecord
	}
	code.Version = version
	n += versionLength

	impl, implLength, err := readAddress(buffer[n:])
	if nil != err {
		return code, err
	}
	code.Implementation = impl
	n += implLength

	deployer, deployerLength, err := readAddress(buffer[n:])
	if nil != err {
		return code, err
	}
	code.Deployer = deployer
	n += deployerLength

	if n != len(buffer) {
		return code, fault.ErrTrailingData
	}
	return code, nil
}

func readAddress(buffer []byte) (address.Address, int, error) {
	length, n := util.ClippedVarint64(buffer, 0, address.Length)
	if 0 == n {
		return address.Zero, 0, fault.ErrInvalidRecord
	}
	if 0 == length {
		return address.Zero, n, nil
	}
	if len(buffer) < n+length {
		return address.Zero, 0, fault.ErrInvalidRecord
	}
	a, err := address.FromBytes(buffer[n : n+length])
	return a, n + length, err
}
