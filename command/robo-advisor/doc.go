// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Operator program for the allocation pools
//
// This program opens the ledger database named in its Lua
// configuration and runs one operator sequence per invocation:
// bootstrap the factory, create the strategies, manager and pool of an
// asset bottom up, then rebalance and inspect the pools.
//
// a local test chain:
//
//   robo-advisor -c robo-advisor.conf bootstrap --local=DAI --mint=1000000
//   robo-advisor -c robo-advisor.conf create-comp-strategy -a DAI
//   robo-advisor -c robo-advisor.conf create-aave-strategy -a DAI
//   robo-advisor -c robo-advisor.conf create-strategy-manager -a DAI -w 60,40
//   robo-advisor -c robo-advisor.conf create-pool -a DAI
//   robo-advisor -c robo-advisor.conf deposit -a DAI --amount=1000000
//   robo-advisor -c robo-advisor.conf rebalance-pool -a DAI -t 90 -w 20,80
//   robo-advisor -c robo-advisor.conf pool-stats -a DAI
package main
