// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// Varint64MaximumBytes - maximum possible number of bytes in Varint64
const Varint64MaximumBytes = 9

// ToVarint64 - convert a 64 bit unsigned integer to Varint64
//
// seven bits per byte, least significant group first, the top bit of
// each byte set when more follow; the ninth byte carries the last
// eight bits whole
func ToVarint64(value uint64) []byte {
	return AppendVarint64(make([]byte, 0, Varint64MaximumBytes), value)
}

// AppendVarint64 - append the Varint64 form of a value to a buffer
func AppendVarint64(buffer []byte, value uint64) []byte {
	for i := 1; i < Varint64MaximumBytes && value >= 0x80; i += 1 {
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

// FromVarint64 - decode a Varint64 from the start of a buffer
//
// also return the number of bytes used as second value
// returns 0, 0 if the buffer is truncated or the encoding is not the
// shortest one, so every value has exactly one packed form
func FromVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)

	for i := 0; i < len(buffer) && i < Varint64MaximumBytes; i += 1 {
		b := buffer[i]
		last := Varint64MaximumBytes-1 == i || 0 == b&0x80
		if !last {
			result |= uint64(b&0x7f) << (7 * uint(i))
			continue
		}
		if i > 0 && 0 == b {
			return 0, 0
		}
		return result | uint64(b)<<(7*uint(i)), i + 1
	}
	return 0, 0
}

// ClippedVarint64 - return a positive clipped value as an int
// any value outside the range minimum..maximum is an error
func ClippedVarint64(buffer []byte, minimum int, maximum int) (int, int) {
	if minimum < 0 || maximum < 0 || minimum >= maximum {
		return 0, 0
	}

	value, count := FromVarint64(buffer)
	if 0 == count || value > uint64(maximum) || value < uint64(minimum) {
		return 0, 0
	}
	return int(value), count
}
