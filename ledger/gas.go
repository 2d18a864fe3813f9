// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// cost of each metered operation
const (
	GasRead   = 200
	GasWrite  = 5000
	GasCall   = 700
	GasDeploy = 32000
	GasEvent  = 375
)

// limits
const (
	MaxCallDepth   = 32
	DefaultGas     = 8000000
	UnlimitedGas   = ^uint64(0)
	maxKindLength  = 64
	maxStateKeyLen = 256
)
