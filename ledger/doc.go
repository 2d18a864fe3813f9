// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the execution substrate for contracts
//
// All state changes happen inside Execute which runs one transaction
// at a time.  Every nested call, state write and event of the
// transaction is buffered in a single storage transaction and is either
// committed completely (with a receipt) or discarded completely.
//
// A contract is a kind of code deployed at an address; its behaviour is
// Go code that receives a *Context whose Self is the contract address
// and whose Sender is the immediate caller.  Storage seen through the
// context is private to Self.
//
// Execution is metered: each operation consumes gas from a budget set by
// the caller and running out aborts the whole transaction.
package ledger
