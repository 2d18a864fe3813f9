// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/ballast-fi/robo-advisor/fault"
)

// HashLength - number of bytes in a digest
const HashLength = 32

// Hash - a Keccak-256 digest
type Hash [HashLength]byte

// Label - identifier of a role derived from its name
type Label Hash

// Keccak256 - digest of the concatenation of all items
func Keccak256(items ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, item := range items {
		h.Write(item)
	}
	var result Hash
	copy(result[:], h.Sum(nil))
	return result
}

// NewLabel - derive the label of a role name
func NewLabel(name string) Label {
	return Label(Keccak256([]byte(name)))
}

// StrategyKey - the combined key for an (asset, role) pair
func StrategyKey(asset Address, label Label) Hash {
	return Keccak256(asset[:], label[:])
}

// String - 0x prefixed hex
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText - convert digest to 0x hex text
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText - convert 0x hex text to a digest
func (h *Hash) UnmarshalText(s []byte) error {
	return hashFromHex(h[:], string(s))
}

// String - 0x prefixed hex
func (l Label) String() string {
	return Hash(l).String()
}

// MarshalText - convert label to 0x hex text
func (l Label) MarshalText() ([]byte, error) {
	return Hash(l).MarshalText()
}

// UnmarshalText - convert 0x hex text to a label
func (l *Label) UnmarshalText(s []byte) error {
	return hashFromHex(l[:], string(s))
}

// LabelFromBytes - convert and validate a byte slice to a label
func LabelFromBytes(label *Label, buffer []byte) error {
	if HashLength != len(buffer) {
		return fault.ErrInvalidLabel
	}
	copy(label[:], buffer)
	return nil
}

func hashFromHex(result []byte, s string) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hex.EncodedLen(HashLength) != len(s) {
		return fault.ErrInvalidLabel
	}
	_, err := hex.Decode(result, []byte(s))
	if nil != err {
		return fault.ErrInvalidLabel
	}
	return nil
}
