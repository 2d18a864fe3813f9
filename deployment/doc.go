// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package deployment - the operator's sequences
//
// bootstrap installs the implementations, the factory, its registry
// and the price oracle; the create operations then build an asset's
// chain bottom-up: leaf strategies controlled by the predicted
// manager, the manager controlled by the predicted pool and finally
// the pool itself.  Every sequence runs as one ledger transaction.
package deployment
