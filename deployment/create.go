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
	"github.com/ballast-fi/robo-advisor/weight"
)

// DefaultWeights - initial allocation of a new manager: compound, aave
var DefaultWeights = []weight.Weight{60000000, 40000000}

// CreateCompoundStrategy - a compound strategy controlled by the
// manager that will be created next for the asset
func (o *Operator) CreateCompoundStrategy(asset *Asset, replace bool) (address.Address, error) {
	if asset.CToken.IsZero() {
		return address.Zero, fault.ErrMissingVenue
	}
	data, err := (&instruction.CompoundInit{
		CToken:      asset.CToken,
		CompToken:   asset.Comp,
		Comptroller: asset.Comptroller,
		Router:      asset.Router,
	}).Pack()
	if nil != err {
		return address.Zero, err
	}
	return o.createLeaf(asset, factory.CompoundLabel, data, replace)
}

// CreateAaveStrategy - an aave strategy controlled by the manager that
// will be created next for the asset
func (o *Operator) CreateAaveStrategy(asset *Asset, replace bool) (address.Address, error) {
	if asset.AToken.IsZero() {
		return address.Zero, fault.ErrMissingVenue
	}
	data, err := (&instruction.AaveInit{
		AToken:          asset.AToken,
		AddressProvider: asset.AaveProvider,
		Router:          asset.Router,
	}).Pack()
	if nil != err {
		return address.Zero, err
	}
	return o.createLeaf(asset, factory.AaveLabel, data, replace)
}

func (o *Operator) createLeaf(asset *Asset, label address.Label, data []byte, replace bool) (address.Address, error) {
	if asset.Token.IsZero() {
		return address.Zero, fault.ErrMissingAsset
	}
	f, err := o.Factory()
	if nil != err {
		return address.Zero, err
	}

	result := address.Zero
	_, err = o.execute(func(ctx *ledger.Context) error {
		controller, err := factory.GetStrategyAddress(ctx, f, factory.ManagerLabel)
		if nil != err {
			return err
		}
		result, err = factory.CreateStrategy(ctx, f, factory.StrategyRequest{
			Asset:      asset.Token,
			Label:      label,
			Controller: controller,
			InitData:   data,
			Replace:    replace,
		})
		return err
	})
	if nil != err {
		return address.Zero, err
	}
	o.log.Infof("strategy: %s  label: %s  asset: %s", result, label, asset.Token)
	return result, nil
}

// CreateStrategyManager - a manager over the asset's current compound
// and aave strategies, controlled by the pool that will be created next
func (o *Operator) CreateStrategyManager(asset address.Address, weights []weight.Weight, replace bool) (address.Address, error) {
	if asset.IsZero() {
		return address.Zero, fault.ErrMissingAsset
	}
	if 0 == len(weights) {
		weights = DefaultWeights
	}
	f, err := o.Factory()
	if nil != err {
		return address.Zero, err
	}

	result := address.Zero
	_, err = o.execute(func(ctx *ledger.Context) error {
		children := make([]address.Address, 0, 2)
		for _, label := range []address.Label{factory.CompoundLabel, factory.AaveLabel} {
			child, err := factory.PoolStrategies(ctx, f, address.StrategyKey(asset, label))
			if nil != err {
				return err
			}
			if child.IsZero() {
				return fault.ErrNotFound
			}
			children = append(children, child)
		}
		data, err := (&instruction.ManagerInit{
			Weights:    weights,
			Strategies: children,
		}).Pack()
		if nil != err {
			return err
		}
		controller, err := factory.GetStrategyAddress(ctx, f, factory.PoolLabel)
		if nil != err {
			return err
		}
		result, err = factory.CreateStrategy(ctx, f, factory.StrategyRequest{
			Asset:      asset,
			Label:      factory.ManagerLabel,
			Controller: controller,
			InitData:   data,
			Replace:    replace,
		})
		return err
	})
	if nil != err {
		return address.Zero, err
	}
	o.log.Infof("manager: %s  asset: %s  weights: %v", result, asset, weights)
	return result, nil
}

// CreatePool - a pool over the asset's current manager
func (o *Operator) CreatePool(asset address.Address, owner address.Address, fee weight.Weight, replace bool) (address.Address, error) {
	if owner.IsZero() {
		owner = o.account
	}
	f, err := o.Factory()
	if nil != err {
		return address.Zero, err
	}

	result := address.Zero
	_, err = o.execute(func(ctx *ledger.Context) error {
		m, err := factory.PoolStrategies(ctx, f, address.StrategyKey(asset, factory.ManagerLabel))
		if nil != err {
			return err
		}
		result, err = factory.CreatePool(ctx, f, factory.PoolRequest{
			Asset:   asset,
			Label:   factory.PoolLabel,
			Owner:   owner,
			Fee:     fee,
			Manager: m,
			Replace: replace,
		})
		return err
	})
	if nil != err {
		return address.Zero, err
	}
	o.log.Infof("pool: %s  asset: %s  owner: %s", result, asset, owner)
	return result, nil
}

// CreateChain - the full sequence for one asset: both leaves, the
// manager and the pool
func (o *Operator) CreateChain(asset *Asset, weights []weight.Weight, fee weight.Weight) (address.Address, error) {
	if _, err := o.CreateCompoundStrategy(asset, false); nil != err {
		return address.Zero, err
	}
	if _, err := o.CreateAaveStrategy(asset, false); nil != err {
		return address.Zero, err
	}
	if _, err := o.CreateStrategyManager(asset.Token, weights, false); nil != err {
		return address.Zero, err
	}
	return o.CreatePool(asset.Token, o.account, fee, false)
}
