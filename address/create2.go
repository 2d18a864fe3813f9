// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

// minimal proxy creation code, the implementation address goes between
// the prefix and the suffix
var (
	cloneCodePrefix = []byte{
		0x3d, 0x60, 0x2d, 0x80, 0x60, 0x0a, 0x3d, 0x39, 0x81, 0xf3,
		0x36, 0x3d, 0x3d, 0x37, 0x3d, 0x3d, 0x3d, 0x36, 0x3d, 0x73,
	}
	cloneCodeSuffix = []byte{
		0x5a, 0xf4, 0x3d, 0x82, 0x80, 0x3e, 0x90, 0x3d, 0x91, 0x60,
		0x2b, 0x57, 0xfd, 0x5b, 0xf3,
	}
)

// Create2 - the address of code deployed by deployer with salt
func Create2(deployer Address, salt Hash, initCodeHash Hash) Address {
	digest := Keccak256([]byte{0xff}, deployer[:], salt[:], initCodeHash[:])
	a := Address{}
	copy(a[:], digest[HashLength-Length:])
	return a
}

// CloneCode - creation code of a proxy that forwards to implementation
func CloneCode(implementation Address) []byte {
	code := make([]byte, 0, len(cloneCodePrefix)+Length+len(cloneCodeSuffix))
	code = append(code, cloneCodePrefix...)
	code = append(code, implementation[:]...)
	return append(code, cloneCodeSuffix...)
}

// PredictClone - the address a clone of implementation will occupy
func PredictClone(deployer Address, salt Hash, implementation Address) Address {
	return Create2(deployer, salt, Keccak256(CloneCode(implementation)))
}
