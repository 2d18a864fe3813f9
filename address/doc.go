// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address - identifiers used across the ledger
//
// Address: 20 byte contract or account address, printed as 0x hex
// Label:   Keccak-256 of a human readable role name e.g. "Pool"
// Hash:    any other 32 byte digest (strategy keys, salts, code hashes)
//
// Deployment addresses are derived with the CREATE2 rule:
//
//   address = Keccak-256(0xff ++ deployer ++ salt ++ Keccak-256(initCode))[12:]
//
// so an address can be computed before anything is deployed there.
package address
