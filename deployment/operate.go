// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package deployment

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/factory"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/pool"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

// RebalanceRequest - the layered instruction for one pool
type RebalanceRequest struct {
	Asset    address.Address
	Target   weight.Weight
	Weights  []weight.Weight // empty: keep the manager's weights
	Estimate bool            // only report the gas
}

// RebalanceResult - outcome of a rebalance
type RebalanceResult struct {
	Pool    address.Address `json:"pool"`
	GasUsed uint64          `json:"gasUsed"`
	Receipt *ledger.Receipt `json:"receipt,omitempty"`
}

// StrategyStats - position of one strategy
type StrategyStats struct {
	Address  address.Address `json:"address"`
	Balance  uint64          `json:"investedUnderlyingBalance"`
	APR      weight.Weight   `json:"apr"`
	Idle     uint64          `json:"idle"`
	Supplied uint64          `json:"venueUnits"`
}

// PoolStats - position of a pool and its whole chain
type PoolStats struct {
	Pool           address.Address           `json:"pool"`
	Stats          *pool.Stats               `json:"stats"`
	ManagerIdle    uint64                    `json:"balanceInManager"`
	ManagerWeights []weight.Weight           `json:"weights"`
	Strategies     map[string]*StrategyStats `json:"strategies"`
}

// BuildRebalance - pack the pool level instruction, the manager level
// is included only when weights are given
func BuildRebalance(target weight.Weight, m address.Address, weights []weight.Weight) ([]byte, error) {
	var continuation []byte
	if 0 != len(weights) {
		managerData, err := (&instruction.ManagerRebalance{Weights: weights}).Pack()
		if nil != err {
			return nil, err
		}
		continuation = managerData
	}
	return (&instruction.PoolRebalance{
		Target:       target,
		Manager:      m,
		Continuation: continuation,
	}).Pack()
}

// PoolOf - the current pool of an asset
func (o *Operator) PoolOf(asset address.Address) (address.Address, error) {
	f, err := o.Factory()
	if nil != err {
		return address.Zero, err
	}
	p := address.Zero
	err = o.l.View(func(ctx *ledger.Context) error {
		var err error
		p, err = factory.PoolAddresses(ctx, f, asset)
		if nil == err && p.IsZero() {
			return fault.ErrNotFound
		}
		return err
	})
	return p, err
}

// Rebalance - rebalance the asset's pool as its owner
func (o *Operator) Rebalance(request RebalanceRequest) (*RebalanceResult, error) {
	p, err := o.PoolOf(request.Asset)
	if nil != err {
		return nil, err
	}

	run := func(ctx *ledger.Context) error {
		m, err := pool.Manager(ctx, p)
		if nil != err {
			return err
		}
		buffer, err := BuildRebalance(request.Target, m, request.Weights)
		if nil != err {
			return err
		}
		return pool.Rebalance(ctx, p, buffer)
	}

	result := &RebalanceResult{Pool: p}
	gas, err := o.l.Estimate(o.account, o.gas, run)
	result.GasUsed = gas
	if nil != err || request.Estimate {
		return result, err
	}

	result.Receipt, err = o.execute(run)
	if nil != err {
		return nil, err
	}
	result.GasUsed = result.Receipt.GasUsed
	return result, nil
}

// SetAllocation - replace the weights of the asset's manager
func (o *Operator) SetAllocation(asset address.Address, weights []weight.Weight) error {
	p, err := o.PoolOf(asset)
	if nil != err {
		return err
	}
	_, err = o.execute(func(ctx *ledger.Context) error {
		m, err := pool.Manager(ctx, p)
		if nil != err {
			return err
		}
		return manager.SetAllocation(ctx, m, weights)
	})
	return err
}

// SetMaxInvestmentPerc - change the asset pool's cap
func (o *Operator) SetMaxInvestmentPerc(asset address.Address, w weight.Weight) error {
	p, err := o.PoolOf(asset)
	if nil != err {
		return err
	}
	_, err = o.execute(func(ctx *ledger.Context) error {
		return pool.SetMaxInvestmentPerc(ctx, p, w)
	})
	return err
}

// Deposit - approve and deposit amount from account into the asset's
// pool
func (o *Operator) Deposit(account address.Address, asset address.Address, amount uint64) error {
	p, err := o.PoolOf(asset)
	if nil != err {
		return err
	}
	_, err = o.l.Execute(account, o.gas, func(ctx *ledger.Context) error {
		if err := token.Approve(ctx, asset, p, amount); nil != err {
			return err
		}
		return pool.Deposit(ctx, p, amount)
	})
	return err
}

// Withdraw - redeem shares of account from the asset's pool
func (o *Operator) Withdraw(account address.Address, asset address.Address, shares uint64) error {
	p, err := o.PoolOf(asset)
	if nil != err {
		return err
	}
	_, err = o.l.Execute(account, o.gas, func(ctx *ledger.Context) error {
		return pool.Withdraw(ctx, p, shares)
	})
	return err
}

// Stats - the position of the asset's pool and every strategy below it
func (o *Operator) Stats(asset address.Address) (*PoolStats, error) {
	f, err := o.Factory()
	if nil != err {
		return nil, err
	}
	p, err := o.PoolOf(asset)
	if nil != err {
		return nil, err
	}

	result := &PoolStats{
		Pool:       p,
		Strategies: make(map[string]*StrategyStats),
	}
	err = o.l.View(func(ctx *ledger.Context) error {
		var err error
		if result.Stats, err = pool.GetStats(ctx, p); nil != err {
			return err
		}
		m := result.Stats.Manager
		if m.IsZero() {
			return nil
		}
		if result.ManagerIdle, err = token.BalanceOf(ctx, asset, m); nil != err {
			return err
		}
		if result.ManagerWeights, err = manager.Weights(ctx, m); nil != err {
			return err
		}

		for _, role := range []string{strategy.CompoundName, strategy.AaveName} {
			s, err := factory.PoolStrategies(ctx, f, address.StrategyKey(asset, address.NewLabel(role)))
			if nil != err {
				return err
			}
			if s.IsZero() {
				continue
			}
			stats, err := strategyStats(ctx, asset, s)
			if nil != err {
				return err
			}
			result.Strategies[role] = stats
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}

func strategyStats(ctx *ledger.Context, asset address.Address, s address.Address) (*StrategyStats, error) {
	stats := &StrategyStats{Address: s}
	var err error
	if stats.Balance, err = strategy.InvestedUnderlyingBalance(ctx, s); nil != err {
		return nil, err
	}
	if stats.APR, err = strategy.GetAPR(ctx, s); nil != err {
		return nil, err
	}
	if stats.Idle, err = token.BalanceOf(ctx, asset, s); nil != err {
		return nil, err
	}
	v, err := strategy.Venue(ctx, s)
	if nil != err {
		return nil, err
	}
	if stats.Supplied, err = venue.BalanceOf(ctx, v, s); nil != err {
		return nil, err
	}
	return stats, nil
}

// History - committed receipts starting at a block number
func (o *Operator) History(start uint64, count int) ([]ledger.Receipt, error) {
	return o.l.History(start, count)
}
