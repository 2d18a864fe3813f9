// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package strategy - capability shared by every allocation target
//
// a strategy holds funds for its controller and reports their value
// and yield.  Leaf adapters wrap one lending venue; a strategy manager
// is itself a strategy whose funds are split over child strategies, so
// chains of any depth can be built.
//
// Each kind registers an Adapter; callers use the functions of this
// package which look up the kind deployed at the target and run the
// matching Adapter method in the target's frame.
package strategy

import (
	"sync"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Params - constructor arguments supplied by the factory
type Params struct {
	Asset      address.Address
	Registry   address.Address
	Controller address.Address
	Operator   address.Address
	InitData   []byte
}

// Adapter - behaviour of one kind of strategy
//
// every method runs in the strategy's own frame
type Adapter interface {
	Construct(ctx *ledger.Context, params Params) error
	Invest(ctx *ledger.Context, amount uint64, continuation []byte) error
	Withdraw(ctx *ledger.Context, amount uint64) error
	WithdrawAll(ctx *ledger.Context) error
	InvestedUnderlyingBalance(ctx *ledger.Context) (uint64, error)
	GetAPR(ctx *ledger.Context) (weight.Weight, error)
}

var adapters struct {
	sync.RWMutex
	byKind map[ledger.Kind]Adapter
}

// Register - make a kind deployable as a strategy
func Register(kind ledger.Kind, adapter Adapter) {
	adapters.Lock()
	defer adapters.Unlock()
	if nil == adapters.byKind {
		adapters.byKind = make(map[ledger.Kind]Adapter)
	}
	adapters.byKind[kind] = adapter
	ledger.Register(kind)
}

// AdapterOf - the adapter of a kind
func AdapterOf(kind ledger.Kind) (Adapter, bool) {
	adapters.RLock()
	defer adapters.RUnlock()
	a, ok := adapters.byKind[kind]
	return a, ok
}

// run method of the adapter for the code at target
func dispatch(ctx *ledger.Context, target address.Address, method string, fn func(Adapter, *ledger.Context) error) error {
	code, found, err := ctx.CodeAt(target)
	if nil != err {
		return fault.NewCallError(target.String(), method, err)
	}
	if !found {
		return fault.NewCallError(target.String(), method, fault.ErrNoCode)
	}
	adapter, ok := AdapterOf(code.Kind)
	if !ok {
		return fault.NewCallError(target.String(), method, fault.ErrUnknownCodeKind)
	}
	return ctx.Call(target, code.Kind, method, func(ctx *ledger.Context) error {
		return fn(adapter, ctx)
	})
}

// Construct - initialise a freshly deployed strategy
func Construct(ctx *ledger.Context, target address.Address, params Params) error {
	return dispatch(ctx, target, "constructor", func(a Adapter, ctx *ledger.Context) error {
		return a.Construct(ctx, params)
	})
}

// Invest - the strategy puts amount, already transferred to it, to work
func Invest(ctx *ledger.Context, target address.Address, amount uint64, continuation []byte) error {
	return dispatch(ctx, target, "Invest", func(a Adapter, ctx *ledger.Context) error {
		return a.Invest(ctx, amount, continuation)
	})
}

// Withdraw - the strategy returns amount to its controller
func Withdraw(ctx *ledger.Context, target address.Address, amount uint64) error {
	return dispatch(ctx, target, "Withdraw", func(a Adapter, ctx *ledger.Context) error {
		return a.Withdraw(ctx, amount)
	})
}

// WithdrawAll - the strategy returns everything to its controller
func WithdrawAll(ctx *ledger.Context, target address.Address) error {
	return dispatch(ctx, target, "WithdrawAll", func(a Adapter, ctx *ledger.Context) error {
		return a.WithdrawAll(ctx)
	})
}

// InvestedUnderlyingBalance - value held by the strategy in asset units
func InvestedUnderlyingBalance(ctx *ledger.Context, target address.Address) (uint64, error) {
	balance := uint64(0)
	err := dispatch(ctx, target, "InvestedUnderlyingBalance", func(a Adapter, ctx *ledger.Context) error {
		var err error
		balance, err = a.InvestedUnderlyingBalance(ctx)
		return err
	})
	return balance, err
}

// GetAPR - annual yield of the strategy
func GetAPR(ctx *ledger.Context, target address.Address) (weight.Weight, error) {
	apr := weight.Weight(0)
	err := dispatch(ctx, target, "GetAPR", func(a Adapter, ctx *ledger.Context) error {
		var err error
		apr, err = a.GetAPR(ctx)
		return err
	})
	return apr, err
}
