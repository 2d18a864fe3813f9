// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pool

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Deposit - move amount from the caller into the pool for new shares
//
// the caller must have approved the pool for amount; shares are issued
// in proportion to the value of the pool including its strategies
func Deposit(ctx *ledger.Context, p address.Address, amount uint64) error {
	return ctx.Call(p, Kind, "Deposit", func(ctx *ledger.Context) error {
		if 0 == amount {
			return fault.ErrZeroAmount
		}
		asset, err := ctx.GetAddress(assetKey)
		if nil != err {
			return err
		}
		if asset.IsZero() {
			return fault.ErrNotInitialised
		}
		total, err := balanceInclStrategy(ctx)
		if nil != err {
			return err
		}
		supply, err := ctx.GetN(totalShareKey)
		if nil != err {
			return err
		}

		shares := amount
		if 0 != supply && 0 != total {
			shares, err = weight.MulDiv(amount, supply, total)
			if nil != err {
				return err
			}
		}
		if 0 == shares {
			return fault.ErrZeroAmount
		}

		holder := ctx.Sender()
		if err := token.TransferFrom(ctx, asset, holder, ctx.Self(), amount); nil != err {
			return err
		}
		if err := adjustShares(ctx, holder, shares, true); nil != err {
			return err
		}
		return ctx.Emit("Deposited", ShareEvent{Holder: holder, Amount: amount, Shares: shares})
	})
}

// Withdraw - redeem shares of the caller for their value less the fee
//
// idle funds are used first and the shortfall is requested from the
// manager
func Withdraw(ctx *ledger.Context, p address.Address, shares uint64) error {
	return ctx.Call(p, Kind, "Withdraw", func(ctx *ledger.Context) error {
		if 0 == shares {
			return fault.ErrZeroAmount
		}
		holder := ctx.Sender()
		held, err := ctx.GetN(shareKey(holder))
		if nil != err {
			return err
		}
		if held < shares {
			return fault.ErrInsufficientShares
		}
		supply, err := ctx.GetN(totalShareKey)
		if nil != err {
			return err
		}
		total, err := balanceInclStrategy(ctx)
		if nil != err {
			return err
		}
		amount, err := weight.MulDiv(shares, total, supply)
		if nil != err {
			return err
		}

		asset, err := ctx.GetAddress(assetKey)
		if nil != err {
			return err
		}
		idle, err := token.BalanceOf(ctx, asset, ctx.Self())
		if nil != err {
			return err
		}
		if idle < amount {
			m, err := ctx.GetAddress(managerKey)
			if nil != err {
				return err
			}
			if m.IsZero() {
				return fault.ErrInsufficientBalance
			}
			if err := manager.Withdraw(ctx, m, amount-idle); nil != err {
				return err
			}
		}

		rate, err := ctx.GetN(feeKey)
		if nil != err {
			return err
		}
		fee, err := weight.Portion(amount, weight.Weight(rate))
		if nil != err {
			return err
		}
		if err := adjustShares(ctx, holder, shares, false); nil != err {
			return err
		}
		if 0 != fee {
			owner, err := ctx.GetAddress(ownerKey)
			if nil != err {
				return err
			}
			if err := token.Transfer(ctx, asset, owner, fee); nil != err {
				return err
			}
		}
		if amount > fee {
			if err := token.Transfer(ctx, asset, holder, amount-fee); nil != err {
				return err
			}
		}
		return ctx.Emit("Withdrawn", ShareEvent{Holder: holder, Amount: amount - fee, Shares: shares, Fee: fee})
	})
}

func adjustShares(ctx *ledger.Context, holder address.Address, shares uint64, issue bool) error {
	held, err := ctx.GetN(shareKey(holder))
	if nil != err {
		return err
	}
	supply, err := ctx.GetN(totalShareKey)
	if nil != err {
		return err
	}
	if issue {
		if held, err = weight.Add(held, shares); nil != err {
			return err
		}
		if supply, err = weight.Add(supply, shares); nil != err {
			return err
		}
	} else {
		held -= shares
		supply -= shares
	}
	if err := ctx.PutN(shareKey(holder), held); nil != err {
		return err
	}
	return ctx.PutN(totalShareKey, supply)
}

func balanceInclStrategy(ctx *ledger.Context) (uint64, error) {
	asset, err := ctx.GetAddress(assetKey)
	if nil != err {
		return 0, err
	}
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return 0, err
	}
	m, err := ctx.GetAddress(managerKey)
	if nil != err {
		return 0, err
	}
	if m.IsZero() {
		return idle, nil
	}
	invested, err := manager.InvestedUnderlyingBalance(ctx, m)
	if nil != err {
		return 0, err
	}
	return weight.Add(idle, invested)
}
