// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pool - the vault an asset's depositors share
//
// a pool holds one asset, issues shares for deposits and delegates at
// most its investment cap to a single strategy manager.  The pool owner
// drives rebalancing with a layered instruction buffer: the pool level
// header gives the invested percentage and the rest of the buffer is
// handed unread to the manager.
package pool
