// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pool

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Stats - summary of a pool's position
type Stats struct {
	Asset             address.Address `json:"asset"`
	Manager           address.Address `json:"manager"`
	InPool            uint64          `json:"underlyingBalanceInPool"`
	InclStrategy      uint64          `json:"underlyingBalanceInclStrategy"`
	MaxInvestmentPerc weight.Weight   `json:"maxInvestmentPerc"`
	LastInvestedPerc  weight.Weight   `json:"lastInvestedPerc"`
	APR               weight.Weight   `json:"apr"`
	TotalShares       uint64          `json:"totalShares"`
}

// UnderlyingBalanceInPool - idle funds held by the pool itself
func UnderlyingBalanceInPool(ctx *ledger.Context, p address.Address) (uint64, error) {
	balance := uint64(0)
	err := ctx.Call(p, Kind, "UnderlyingBalanceInPool", func(ctx *ledger.Context) error {
		asset, err := ctx.GetAddress(assetKey)
		if nil != err {
			return err
		}
		balance, err = token.BalanceOf(ctx, asset, ctx.Self())
		return err
	})
	return balance, err
}

// UnderlyingBalanceInclStrategy - idle funds plus the manager's value
func UnderlyingBalanceInclStrategy(ctx *ledger.Context, p address.Address) (uint64, error) {
	balance := uint64(0)
	err := ctx.Call(p, Kind, "UnderlyingBalanceInclStrategy", func(ctx *ledger.Context) error {
		var err error
		balance, err = balanceInclStrategy(ctx)
		return err
	})
	return balance, err
}

// GetAPR - yield of the bound manager, zero without one
func GetAPR(ctx *ledger.Context, p address.Address) (weight.Weight, error) {
	apr := weight.Weight(0)
	err := ctx.Call(p, Kind, "GetAPR", func(ctx *ledger.Context) error {
		m, err := ctx.GetAddress(managerKey)
		if nil != err || m.IsZero() {
			return err
		}
		apr, err = manager.GetAPR(ctx, m)
		return err
	})
	return apr, err
}

// Manager - the bound manager, zero if none
func Manager(ctx *ledger.Context, p address.Address) (address.Address, error) {
	return readAddress(ctx, p, "Manager", managerKey)
}

// Asset - the pooled asset
func Asset(ctx *ledger.Context, p address.Address) (address.Address, error) {
	return readAddress(ctx, p, "Asset", assetKey)
}

// Owner - the account that drives rebalancing
func Owner(ctx *ledger.Context, p address.Address) (address.Address, error) {
	return readAddress(ctx, p, "Owner", ownerKey)
}

// MaxInvestmentPerc - the investment cap
func MaxInvestmentPerc(ctx *ledger.Context, p address.Address) (weight.Weight, error) {
	n, err := readN(ctx, p, "MaxInvestmentPerc", capKey)
	return weight.Weight(n), err
}

// LastInvestedPerc - target of the last rebalance
func LastInvestedPerc(ctx *ledger.Context, p address.Address) (weight.Weight, error) {
	n, err := readN(ctx, p, "LastInvestedPerc", lastKey)
	return weight.Weight(n), err
}

// WithdrawalFee - fraction of each withdrawal kept for the owner
func WithdrawalFee(ctx *ledger.Context, p address.Address) (weight.Weight, error) {
	n, err := readN(ctx, p, "WithdrawalFee", feeKey)
	return weight.Weight(n), err
}

// ShareBalance - shares held by an account
func ShareBalance(ctx *ledger.Context, p address.Address, holder address.Address) (uint64, error) {
	return readN(ctx, p, "ShareBalance", shareKey(holder))
}

// TotalShares - all issued shares
func TotalShares(ctx *ledger.Context, p address.Address) (uint64, error) {
	return readN(ctx, p, "TotalShares", totalShareKey)
}

// GetStats - all of the views in one call
func GetStats(ctx *ledger.Context, p address.Address) (*Stats, error) {
	s := &Stats{}
	var err error
	if s.Asset, err = Asset(ctx, p); nil != err {
		return nil, err
	}
	if s.Manager, err = Manager(ctx, p); nil != err {
		return nil, err
	}
	if s.InPool, err = UnderlyingBalanceInPool(ctx, p); nil != err {
		return nil, err
	}
	if s.InclStrategy, err = UnderlyingBalanceInclStrategy(ctx, p); nil != err {
		return nil, err
	}
	if s.MaxInvestmentPerc, err = MaxInvestmentPerc(ctx, p); nil != err {
		return nil, err
	}
	if s.LastInvestedPerc, err = LastInvestedPerc(ctx, p); nil != err {
		return nil, err
	}
	if s.APR, err = GetAPR(ctx, p); nil != err {
		return nil, err
	}
	if s.TotalShares, err = TotalShares(ctx, p); nil != err {
		return nil, err
	}
	return s, nil
}

func readAddress(ctx *ledger.Context, p address.Address, method string, key string) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(p, Kind, method, func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(key)
		return err
	})
	return result, err
}

func readN(ctx *ledger.Context, p address.Address, method string, key string) (uint64, error) {
	result := uint64(0)
	err := ctx.Call(p, Kind, method, func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetN(key)
		return err
	})
	return result, err
}
