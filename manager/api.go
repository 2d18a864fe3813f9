// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// all entry points check that the target really is a manager

var impl = &adapter{}

// Rebalance - recall all children and distribute amount of the
// manager's funds according to the continuation
//
// an empty continuation keeps the current weights
func Rebalance(ctx *ledger.Context, m address.Address, amount uint64, continuation []byte) error {
	return ctx.Call(m, Kind, "Rebalance", func(ctx *ledger.Context) error {
		return impl.Invest(ctx, amount, continuation)
	})
}

// RebalanceAll - recall all children and distribute everything the
// manager holds with the current weights
func RebalanceAll(ctx *ledger.Context, m address.Address) error {
	return ctx.Call(m, Kind, "RebalanceAll", func(ctx *ledger.Context) error {
		if err := strategy.OnlyControllerOrOperator(ctx); nil != err {
			return err
		}
		allocation, err := loadAllocation(ctx)
		if nil != err {
			return err
		}
		if err := recall(ctx, allocation.Strategies); nil != err {
			return err
		}
		asset, err := strategy.OwnAsset(ctx)
		if nil != err {
			return err
		}
		balance, err := token.BalanceOf(ctx, asset, ctx.Self())
		if nil != err {
			return err
		}
		return rebalance(ctx, balance, nil)
	})
}

// SetAllocation - replace the weight vector
//
// fails unless there is one weight per child and the sum does not
// exceed weight.Denominator
func SetAllocation(ctx *ledger.Context, m address.Address, weights []weight.Weight) error {
	return ctx.Call(m, Kind, "SetAllocation", func(ctx *ledger.Context) error {
		if err := strategy.OnlyControllerOrOperator(ctx); nil != err {
			return err
		}
		allocation, err := loadAllocation(ctx)
		if nil != err {
			return err
		}
		if err := weight.ValidateVector(weights, len(allocation.Strategies)); nil != err {
			return err
		}
		allocation.Weights = weights
		if err := storeAllocation(ctx, allocation); nil != err {
			return err
		}
		return ctx.Emit("AllocationSet", AllocationEvent{Weights: weights})
	})
}

// Withdraw - return amount to the controller
func Withdraw(ctx *ledger.Context, m address.Address, amount uint64) error {
	return ctx.Call(m, Kind, "Withdraw", func(ctx *ledger.Context) error {
		return impl.Withdraw(ctx, amount)
	})
}

// WithdrawAll - return everything to the controller
func WithdrawAll(ctx *ledger.Context, m address.Address) error {
	return ctx.Call(m, Kind, "WithdrawAll", func(ctx *ledger.Context) error {
		return impl.WithdrawAll(ctx)
	})
}

// InvestedUnderlyingBalance - idle funds plus all children's balances
func InvestedUnderlyingBalance(ctx *ledger.Context, m address.Address) (uint64, error) {
	balance := uint64(0)
	err := ctx.Call(m, Kind, "InvestedUnderlyingBalance", func(ctx *ledger.Context) error {
		var err error
		balance, err = impl.InvestedUnderlyingBalance(ctx)
		return err
	})
	return balance, err
}

// GetAPR - balance weighted average APR of the children
func GetAPR(ctx *ledger.Context, m address.Address) (weight.Weight, error) {
	apr := weight.Weight(0)
	err := ctx.Call(m, Kind, "GetAPR", func(ctx *ledger.Context) error {
		var err error
		apr, err = impl.GetAPR(ctx)
		return err
	})
	return apr, err
}

// Strategies - the ordered children
func Strategies(ctx *ledger.Context, m address.Address) ([]address.Address, error) {
	var result []address.Address
	err := ctx.Call(m, Kind, "Strategies", func(ctx *ledger.Context) error {
		allocation, err := loadAllocation(ctx)
		if nil != err {
			return err
		}
		result = allocation.Strategies
		return nil
	})
	return result, err
}

// Weights - the current weight vector
func Weights(ctx *ledger.Context, m address.Address) ([]weight.Weight, error) {
	var result []weight.Weight
	err := ctx.Call(m, Kind, "Weights", func(ctx *ledger.Context) error {
		allocation, err := loadAllocation(ctx)
		if nil != err {
			return err
		}
		result = allocation.Weights
		return nil
	})
	return result, err
}

// Controller - the address the manager works for
func Controller(ctx *ledger.Context, m address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(m, Kind, "Controller", func(ctx *ledger.Context) error {
		var err error
		result, err = strategy.OwnController(ctx)
		if nil == err && result.IsZero() {
			return fault.ErrNotInitialised
		}
		return err
	})
	return result, err
}

// Asset - the asset the manager allocates
func Asset(ctx *ledger.Context, m address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(m, Kind, "Asset", func(ctx *ledger.Context) error {
		var err error
		result, err = strategy.OwnAsset(ctx)
		return err
	})
	return result, err
}
