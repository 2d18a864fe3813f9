// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// maintain the on-disk ledger state
//
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the avaiable tables.
//
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. number       = big endian uint64 (8 bytes)
// 4. address      = 20 byte contract address
// 5. *others*     = byte values of various length
//
// Code:
//
//   C ++ address               - deployed code at an address
//                                data: kind(varint) ++ version(varint) ++ implementation address
//
// State:
//
//   S ++ address ++ key        - contract storage, each contract only sees its own address
//                                data: contract defined
//
// Receipts:
//
//   R ++ number                - receipt of each committed transaction
//                                data: JSON encoded receipt
//
// Metadata:
//
//   M ++ name                  - ledger counters e.g. transaction count
//                                data: number
package storage
