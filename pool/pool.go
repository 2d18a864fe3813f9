// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pool

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Name - role name of a pool
const Name = "Pool"

// Kind - code kind of a pool
const Kind = ledger.Kind(Name)

// DefaultMaxInvestmentPerc - cap of a new pool
const DefaultMaxInvestmentPerc = weight.Denominator * 9 / 10

func init() {
	ledger.Register(Kind)
}

const (
	assetKey      = "asset"
	ownerKey      = "owner"
	managerKey    = "manager"
	capKey        = "maxInvestmentPerc"
	lastKey       = "lastInvestedPerc"
	feeKey        = "withdrawalFee"
	totalShareKey = "totalShares"
	sharePre      = "share:"
)

// Params - constructor arguments
type Params struct {
	Asset   address.Address
	Owner   address.Address
	Manager address.Address // may be zero and set later
	Fee     weight.Weight   // withdrawal fee kept for the owner
}

// RebalanceEvent - funds were delegated to the manager
type RebalanceEvent struct {
	Target   weight.Weight   `json:"target"`
	Manager  address.Address `json:"manager"`
	Invested uint64          `json:"invested"`
	Idle     uint64          `json:"idle"`
}

// ShareEvent - shares were issued or redeemed
type ShareEvent struct {
	Holder address.Address `json:"holder"`
	Amount uint64          `json:"amount"`
	Shares uint64          `json:"shares"`
	Fee    uint64          `json:"fee,omitempty"`
}

// ManagerEvent - a manager was bound to the pool
type ManagerEvent struct {
	Manager address.Address `json:"manager"`
}

// CapEvent - the investment cap changed
type CapEvent struct {
	MaxInvestmentPerc weight.Weight `json:"maxInvestmentPerc"`
}

func shareKey(holder address.Address) string {
	return sharePre + string(holder[:])
}

// Construct - initialise a freshly deployed pool
func Construct(ctx *ledger.Context, p address.Address, params Params) error {
	return ctx.Call(p, Kind, "constructor", func(ctx *ledger.Context) error {
		owner, err := ctx.GetAddress(ownerKey)
		if nil != err {
			return err
		}
		if !owner.IsZero() {
			return fault.ErrAlreadyInitialised
		}
		if params.Asset.IsZero() {
			return fault.ErrMissingAsset
		}
		if params.Owner.IsZero() {
			return fault.ErrMissingOwner
		}
		if err := params.Fee.Validate(); nil != err {
			return err
		}

		if err := ctx.PutAddress(assetKey, params.Asset); nil != err {
			return err
		}
		if err := ctx.PutAddress(ownerKey, params.Owner); nil != err {
			return err
		}
		if err := ctx.PutN(capKey, uint64(DefaultMaxInvestmentPerc)); nil != err {
			return err
		}
		if err := ctx.PutN(feeKey, uint64(params.Fee)); nil != err {
			return err
		}
		if params.Manager.IsZero() {
			return nil
		}
		return bind(ctx, params.Asset, params.Manager)
	})
}

// SetManager - bind a strategy manager, owner only
//
// the manager must already be controlled by the pool
func SetManager(ctx *ledger.Context, p address.Address, m address.Address) error {
	return ctx.Call(p, Kind, "SetManager", func(ctx *ledger.Context) error {
		if err := onlyOwner(ctx); nil != err {
			return err
		}
		if m.IsZero() {
			return fault.ErrMissingAddress
		}
		asset, err := ctx.GetAddress(assetKey)
		if nil != err {
			return err
		}
		return bind(ctx, asset, m)
	})
}

func bind(ctx *ledger.Context, asset address.Address, m address.Address) error {
	controller, err := manager.Controller(ctx, m)
	if nil != err {
		return err
	}
	if controller != ctx.Self() {
		return fault.ErrControllerMismatch
	}
	managerAsset, err := manager.Asset(ctx, m)
	if nil != err {
		return err
	}
	if managerAsset != asset {
		return fault.ErrAssetMismatch
	}
	if err := ctx.PutAddress(managerKey, m); nil != err {
		return err
	}
	return ctx.Emit("ManagerSet", ManagerEvent{Manager: m})
}

// Rebalance - recall everything from the manager and delegate the
// target percentage of the pool's funds again
//
// an empty buffer repeats the last target, limited by the current cap,
// and lets the manager keep its weights
func Rebalance(ctx *ledger.Context, p address.Address, buffer []byte) error {
	return ctx.Call(p, Kind, "Rebalance", func(ctx *ledger.Context) error {
		if err := onlyOwner(ctx); nil != err {
			return err
		}
		m, err := ctx.GetAddress(managerKey)
		if nil != err {
			return err
		}
		if m.IsZero() {
			return fault.ErrManagerNotSet
		}
		limit, err := ctx.GetN(capKey)
		if nil != err {
			return err
		}
		maxPerc := weight.Weight(limit)

		var target weight.Weight
		var continuation []byte
		if 0 == len(buffer) {
			last, err := ctx.GetN(lastKey)
			if nil != err {
				return err
			}
			target = weight.Min(weight.Weight(last), maxPerc)
		} else {
			header, err := instruction.UnpackPool(buffer)
			if nil != err {
				return err
			}
			if !header.Manager.IsZero() && header.Manager != m {
				return fault.ErrManagerMismatch
			}
			if header.Target > maxPerc {
				return fault.ErrTargetExceedsCap
			}
			target = header.Target
			continuation = header.Continuation
		}

		if err := manager.WithdrawAll(ctx, m); nil != err {
			return err
		}
		asset, err := ctx.GetAddress(assetKey)
		if nil != err {
			return err
		}
		total, err := token.BalanceOf(ctx, asset, ctx.Self())
		if nil != err {
			return err
		}
		invest, err := weight.Portion(total, target)
		if nil != err {
			return err
		}
		if 0 != invest {
			if err := token.Transfer(ctx, asset, m, invest); nil != err {
				return err
			}
		}
		if err := manager.Rebalance(ctx, m, invest, continuation); nil != err {
			return err
		}
		if err := ctx.PutN(lastKey, uint64(target)); nil != err {
			return err
		}

		ctx.Log().Infof("pool: %s  target: %s  invested: %d  idle: %d", ctx.Self(), target, invest, total-invest)
		return ctx.Emit("Rebalanced", RebalanceEvent{
			Target:   target,
			Manager:  m,
			Invested: invest,
			Idle:     total - invest,
		})
	})
}

// SetMaxInvestmentPerc - change the investment cap, owner only
//
// funds already delegated are not recalled until the next rebalance
func SetMaxInvestmentPerc(ctx *ledger.Context, p address.Address, w weight.Weight) error {
	return ctx.Call(p, Kind, "SetMaxInvestmentPerc", func(ctx *ledger.Context) error {
		if err := onlyOwner(ctx); nil != err {
			return err
		}
		if err := w.Validate(); nil != err {
			return err
		}
		if err := ctx.PutN(capKey, uint64(w)); nil != err {
			return err
		}
		return ctx.Emit("MaxInvestmentPercSet", CapEvent{MaxInvestmentPerc: w})
	})
}

// SetWithdrawalFee - change the fee kept on withdrawal, owner only
func SetWithdrawalFee(ctx *ledger.Context, p address.Address, fee weight.Weight) error {
	return ctx.Call(p, Kind, "SetWithdrawalFee", func(ctx *ledger.Context) error {
		if err := onlyOwner(ctx); nil != err {
			return err
		}
		if err := fee.Validate(); nil != err {
			return err
		}
		return ctx.PutN(feeKey, uint64(fee))
	})
}

func onlyOwner(ctx *ledger.Context) error {
	owner, err := ctx.GetAddress(ownerKey)
	if nil != err {
		return err
	}
	if owner.IsZero() {
		return fault.ErrNotInitialised
	}
	if ctx.Sender() != owner {
		return fault.ErrCallerNotOwner
	}
	return nil
}
