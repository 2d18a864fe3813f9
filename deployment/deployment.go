// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package deployment

import (
	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/factory"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/oracle"
	"github.com/ballast-fi/robo-advisor/registry"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

// ImplementationVersion - version of the implementations installed by
// Bootstrap
const ImplementationVersion = 1

// Asset - the external addresses an asset's strategies are wired to
type Asset struct {
	Token        address.Address `json:"token"`
	CToken       address.Address `json:"cToken"`
	AToken       address.Address `json:"aToken"`
	Comp         address.Address `json:"comp"`
	Comptroller  address.Address `json:"comptroller"`
	AaveProvider address.Address `json:"aaveProvider"`
	Router       address.Address `json:"router"`
}

// Addresses - the contracts installed by Bootstrap
type Addresses struct {
	Factory         address.Address            `json:"factory"`
	Registry        address.Address            `json:"registry"`
	Oracle          address.Address            `json:"oracle"`
	Implementations map[string]address.Address `json:"implementations"`
}

// Operator - runs sequences on a ledger as one account
type Operator struct {
	l       *ledger.Ledger
	account address.Address
	gas     uint64
	log     *logger.L
}

// New - an operator acting as account with a per transaction gas limit
func New(l *ledger.Ledger, account address.Address, gas uint64) *Operator {
	if 0 == gas {
		gas = ledger.DefaultGas
	}
	return &Operator{
		l:       l,
		account: account,
		gas:     gas,
		log:     logger.New("deployment"),
	}
}

// Account - the operator's account
func (o *Operator) Account() address.Address {
	return o.account
}

// Ledger - the ledger the operator acts on
func (o *Operator) Ledger() *ledger.Ledger {
	return o.l
}

func (o *Operator) execute(fn func(*ledger.Context) error) (*ledger.Receipt, error) {
	return o.l.Execute(o.account, o.gas, fn)
}

// Bootstrap - install implementations, factory, registry and oracle
//
// each implementation is registered under its role label and the
// factory and oracle are imported into the registry
func (o *Operator) Bootstrap() (*Addresses, error) {
	if _, found := o.l.Name(registry.FactoryName); found {
		return nil, fault.ErrAlreadyDeployed
	}

	result := &Addresses{
		Implementations: make(map[string]address.Address),
	}
	_, err := o.execute(func(ctx *ledger.Context) error {
		for _, role := range factory.Roles {
			impl, err := ctx.DeployCode(role.Kind, ImplementationVersion)
			if nil != err {
				return err
			}
			result.Implementations[role.Name] = impl
		}

		var err error
		if result.Factory, err = factory.Deploy(ctx); nil != err {
			return err
		}
		if result.Registry, err = factory.Registry(ctx, result.Factory); nil != err {
			return err
		}
		if result.Oracle, err = oracle.Deploy(ctx); nil != err {
			return err
		}

		for _, role := range factory.Roles {
			label := address.NewLabel(role.Name)
			if err := factory.UpgradeTo(ctx, result.Factory, label, result.Implementations[role.Name]); nil != err {
				return err
			}
			if err := ctx.SetName(role.Name, result.Implementations[role.Name]); nil != err {
				return err
			}
		}
		if err := factory.ImportContracts(ctx, result.Factory, []address.Address{result.Factory, result.Oracle}); nil != err {
			return err
		}

		if err := ctx.SetName(registry.FactoryName, result.Factory); nil != err {
			return err
		}
		if err := ctx.SetName(registry.Name, result.Registry); nil != err {
			return err
		}
		return ctx.SetName(oracle.Name, result.Oracle)
	})
	if nil != err {
		return nil, err
	}
	o.log.Infof("bootstrap: factory: %s  registry: %s  oracle: %s", result.Factory, result.Registry, result.Oracle)
	return result, nil
}

// Upgrade - install a new version of a role's implementation and point
// the factory at it
func (o *Operator) Upgrade(role factory.Role, version uint64) (address.Address, error) {
	f, err := o.Factory()
	if nil != err {
		return address.Zero, err
	}
	impl := address.Zero
	_, err = o.execute(func(ctx *ledger.Context) error {
		var err error
		impl, err = ctx.DeployCode(role.Kind, version)
		if nil != err {
			return err
		}
		if err := factory.UpgradeTo(ctx, f, address.NewLabel(role.Name), impl); nil != err {
			return err
		}
		return ctx.SetName(role.Name, impl)
	})
	return impl, err
}

// Factory - the bootstrapped factory
func (o *Operator) Factory() (address.Address, error) {
	f, found := o.l.Name(registry.FactoryName)
	if !found {
		return address.Zero, fault.ErrNotFound
	}
	return f, nil
}

// LocalMarket - for a local chain: deploy a token with a compound style
// and an aave style venue and mint balances
func (o *Operator) LocalMarket(symbol string, compoundAPR weight.Weight, aaveAPR weight.Weight, mint map[address.Address]uint64) (*Asset, error) {
	asset := &Asset{}
	_, err := o.execute(func(ctx *ledger.Context) error {
		var err error
		if asset.Token, err = token.Deploy(ctx, symbol); nil != err {
			return err
		}
		if asset.CToken, err = venue.Deploy(ctx, asset.Token, compoundAPR); nil != err {
			return err
		}
		if asset.AToken, err = venue.Deploy(ctx, asset.Token, aaveAPR); nil != err {
			return err
		}
		for to, amount := range mint {
			if err := token.Mint(ctx, asset.Token, to, amount); nil != err {
				return err
			}
		}
		if err := ctx.SetName(symbol, asset.Token); nil != err {
			return err
		}
		if err := ctx.SetName("c"+symbol, asset.CToken); nil != err {
			return err
		}
		return ctx.SetName("a"+symbol, asset.AToken)
	})
	if nil != err {
		return nil, err
	}
	o.log.Infof("local market: %s  token: %s  cToken: %s  aToken: %s", symbol, asset.Token, asset.CToken, asset.AToken)
	return asset, nil
}
