// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package manager - splits its controller's funds over child strategies
//
// the manager holds an ordered list of child strategies and a parallel
// weight vector whose sum never exceeds weight.Denominator.  On
// rebalance each child i receives amount * w[i] / Denominator together
// with its own slice of the instruction; whatever is not allocated
// stays idle in the manager.
//
// A manager is registered as a strategy kind so managers can be nested.
package manager

import (
	"math/big"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Name - role name of the strategy manager
const Name = "StrategyManager"

// Kind - code kind of a strategy manager
const Kind = ledger.Kind(Name)

const allocationKey = "allocation"

func init() {
	strategy.Register(Kind, &adapter{})
}

// AllocationEvent - the weight vector changed
type AllocationEvent struct {
	Weights []weight.Weight `json:"weights"`
}

// RebalanceEvent - funds were redistributed
type RebalanceEvent struct {
	Amount uint64   `json:"amount"`
	Shares []uint64 `json:"shares"`
	Idle   uint64   `json:"idle"`
}

type adapter struct{}

// the allocation is stored in its constructor data form
func loadAllocation(ctx *ledger.Context) (*instruction.ManagerInit, error) {
	buffer, err := ctx.Get(allocationKey)
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrNotInitialised
	}
	r, err := instruction.Packed(buffer).UnpackExact(instruction.ManagerInitTag)
	if nil != err {
		return nil, err
	}
	return r.(*instruction.ManagerInit), nil
}

func storeAllocation(ctx *ledger.Context, allocation *instruction.ManagerInit) error {
	packed, err := allocation.Pack()
	if nil != err {
		return err
	}
	return ctx.Put(allocationKey, packed)
}

func (m *adapter) Construct(ctx *ledger.Context, params strategy.Params) error {
	r, err := instruction.Packed(params.InitData).UnpackExact(instruction.ManagerInitTag)
	if nil != err {
		return err
	}
	allocation := r.(*instruction.ManagerInit)

	if err := strategy.StoreCommon(ctx, params); nil != err {
		return err
	}

	for _, child := range allocation.Strategies {
		controller, err := strategy.Controller(ctx, child)
		if nil != err {
			return err
		}
		if controller != ctx.Self() {
			return fault.ErrControllerMismatch
		}
		asset, err := strategy.Asset(ctx, child)
		if nil != err {
			return err
		}
		if asset != params.Asset {
			return fault.ErrAssetMismatch
		}
	}

	return storeAllocation(ctx, allocation)
}

func (m *adapter) Invest(ctx *ledger.Context, amount uint64, continuation []byte) error {
	if err := strategy.OnlyControllerOrOperator(ctx); nil != err {
		return err
	}
	return rebalance(ctx, amount, continuation)
}

func (m *adapter) Withdraw(ctx *ledger.Context, amount uint64) error {
	if err := strategy.OnlyController(ctx); nil != err {
		return err
	}
	allocation, err := loadAllocation(ctx)
	if nil != err {
		return err
	}
	asset, err := strategy.OwnAsset(ctx)
	if nil != err {
		return err
	}
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return err
	}

	// idle funds first, then children in order
	for _, child := range allocation.Strategies {
		if idle >= amount {
			break
		}
		available, err := strategy.InvestedUnderlyingBalance(ctx, child)
		if nil != err {
			return err
		}
		take := amount - idle
		if available < take {
			take = available
		}
		if 0 == take {
			continue
		}
		if err := strategy.Withdraw(ctx, child, take); nil != err {
			return err
		}
		idle += take
	}
	if idle < amount {
		return fault.ErrInsufficientBalance
	}
	return pay(ctx, asset, amount)
}

func (m *adapter) WithdrawAll(ctx *ledger.Context) error {
	if err := strategy.OnlyController(ctx); nil != err {
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
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return err
	}
	return pay(ctx, asset, idle)
}

// idle funds plus every child's balance, always recomputed
func (m *adapter) InvestedUnderlyingBalance(ctx *ledger.Context) (uint64, error) {
	allocation, err := loadAllocation(ctx)
	if nil != err {
		return 0, err
	}
	asset, err := strategy.OwnAsset(ctx)
	if nil != err {
		return 0, err
	}
	total, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return 0, err
	}
	for _, child := range allocation.Strategies {
		balance, err := strategy.InvestedUnderlyingBalance(ctx, child)
		if nil != err {
			return 0, err
		}
		total, err = weight.Add(total, balance)
		if nil != err {
			return 0, err
		}
	}
	return total, nil
}

// average of child rates weighted by child balance
func (m *adapter) GetAPR(ctx *ledger.Context) (weight.Weight, error) {
	allocation, err := loadAllocation(ctx)
	if nil != err {
		return 0, err
	}

	weighted := new(big.Int)
	total := new(big.Int)
	for _, child := range allocation.Strategies {
		balance, err := strategy.InvestedUnderlyingBalance(ctx, child)
		if nil != err {
			return 0, err
		}
		if 0 == balance {
			continue
		}
		apr, err := strategy.GetAPR(ctx, child)
		if nil != err {
			return 0, err
		}
		b := new(big.Int).SetUint64(balance)
		total.Add(total, b)
		weighted.Add(weighted, b.Mul(b, new(big.Int).SetUint64(uint64(apr))))
	}
	if 0 == total.Sign() {
		return 0, nil
	}
	return weight.Weight(weighted.Div(weighted, total).Uint64()), nil
}

// pull every child's funds back into the manager
func recall(ctx *ledger.Context, children []address.Address) error {
	for _, child := range children {
		if err := strategy.WithdrawAll(ctx, child); nil != err {
			return err
		}
	}
	return nil
}

func rebalance(ctx *ledger.Context, amount uint64, continuation []byte) error {
	allocation, err := loadAllocation(ctx)
	if nil != err {
		return err
	}
	n := len(allocation.Strategies)

	var slices [][]byte
	if 0 != len(continuation) {
		header, err := instruction.UnpackManager(continuation)
		if nil != err {
			return err
		}
		if 0 != len(header.Weights) {
			if err := weight.ValidateVector(header.Weights, n); nil != err {
				return err
			}
			allocation.Weights = header.Weights
			if err := storeAllocation(ctx, allocation); nil != err {
				return err
			}
			if err := ctx.Emit("AllocationSet", AllocationEvent{Weights: header.Weights}); nil != err {
				return err
			}
		}
		if 0 != len(header.Children) {
			if n != len(header.Children) {
				return fault.ErrChildCountMismatch
			}
			slices = header.Children
		}
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
	if amount > balance {
		return fault.ErrInsufficientBalance
	}

	shares, unallocated, err := weight.Split(amount, allocation.Weights)
	if nil != err {
		return err
	}
	for i, child := range allocation.Strategies {
		var slice []byte
		if nil != slices {
			slice = slices[i]
		}
		if 0 == shares[i] && 0 == len(slice) {
			continue
		}
		if 0 != shares[i] {
			if err := token.Transfer(ctx, asset, child, shares[i]); nil != err {
				return err
			}
		}
		if err := strategy.Invest(ctx, child, shares[i], slice); nil != err {
			return err
		}
	}

	idle := balance - amount + unallocated
	ctx.Log().Debugf("manager: %s  rebalance: %d  idle: %d", ctx.Self(), amount, idle)
	return ctx.Emit("Rebalanced", RebalanceEvent{Amount: amount, Shares: shares, Idle: idle})
}

// send amount to the controller
func pay(ctx *ledger.Context, asset address.Address, amount uint64) error {
	if 0 == amount {
		return nil
	}
	controller, err := strategy.OwnController(ctx)
	if nil != err {
		return err
	}
	return token.Transfer(ctx, asset, controller, amount)
}
