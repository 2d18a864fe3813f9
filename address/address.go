// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"
	"strings"

	"github.com/ballast-fi/robo-advisor/fault"
)

// Length - number of bytes in an address
const Length = 20

// Address - a contract or account address
type Address [Length]byte

// Zero - the null address
var Zero = Address{}

// FromBytes - convert and validate a byte slice to an address
func FromBytes(buffer []byte) (Address, error) {
	a := Address{}
	if Length != len(buffer) {
		return a, fault.ErrInvalidAddressLength
	}
	copy(a[:], buffer)
	return a, nil
}

// FromHex - convert a hex string, with or without 0x prefix, to an address
func FromHex(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hex.EncodedLen(Length) != len(s) {
		return Zero, fault.ErrInvalidAddressLength
	}
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return Zero, fault.ErrInvalidAddress
	}
	return FromBytes(buffer)
}

// IsZero - true for the null address
func (a Address) IsZero() bool {
	return Zero == a
}

// Bytes - copy of the address bytes
func (a Address) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, a[:])
	return b
}

// String - 0x prefixed lower case hex
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// GoString - for %#v
func (a Address) GoString() string {
	return "<address:" + a.String() + ">"
}

// MarshalText - convert address to 0x hex text
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - convert 0x hex text to an address
func (a *Address) UnmarshalText(s []byte) error {
	result, err := FromHex(string(s))
	if nil != err {
		return err
	}
	*a = result
	return nil
}
