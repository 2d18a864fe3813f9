// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package instruction - packed rebalance instructions and constructor data
//
// every record starts with Varint64(tag) followed by its fields:
//
//   integer:  Varint64(value)
//   address:  Varint64(length) ++ bytes   (length 0 = not specified)
//   bytes:    Varint64(length) ++ bytes
//   list:     Varint64(count) ++ items
//
// a rebalance instruction is layered: the pool record carries the
// manager record as an opaque byte field and the manager record carries
// one opaque slice per strategy.  Each level decodes only its own record
// and hands the nested bytes on unchanged.
package instruction
