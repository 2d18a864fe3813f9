// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package factory - deploys pools and strategies as clones of the
// registered implementations
//
// every instance address is fixed before deployment: the salt of the
// next clone for a label is keccak(label ‖ be64(nonce)) and the nonce
// only advances when an instance is created.  This lets an operator
// wire a chain bottom-up, giving each strategy the address of the
// manager that will be created after it.
package factory

import (
	"encoding/binary"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/pool"
	"github.com/ballast-fi/robo-advisor/registry"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Kind - code kind of the factory
const Kind = ledger.Kind(registry.FactoryName)

// labels of the deployable roles
var (
	PoolLabel     = address.NewLabel(pool.Name)
	ManagerLabel  = address.NewLabel(manager.Name)
	CompoundLabel = address.NewLabel(strategy.CompoundName)
	AaveLabel     = address.NewLabel(strategy.AaveName)
)

// Role - a deployable role and the kind implementing it
type Role struct {
	Name string
	Kind ledger.Kind
}

// Roles - every role the factory can clone
var Roles = []Role{
	{Name: pool.Name, Kind: pool.Kind},
	{Name: manager.Name, Kind: manager.Kind},
	{Name: strategy.CompoundName, Kind: strategy.CompoundKind},
	{Name: strategy.AaveName, Kind: strategy.AaveKind},
}

func init() {
	ledger.Register(Kind)
}

const (
	operatorKey = "operator"
	registryKey = "registry"
	noncePre    = "nonce:"
	poolPre     = "pool:"
)

// PoolRequest - arguments of CreatePool
type PoolRequest struct {
	Asset   address.Address
	Label   address.Label // zero: PoolLabel
	Owner   address.Address
	Fee     weight.Weight
	Manager address.Address
	Replace bool
}

// StrategyRequest - arguments of CreateStrategy
type StrategyRequest struct {
	Asset      address.Address
	Label      address.Label
	Registry   address.Address // zero: the factory's registry
	Controller address.Address
	InitData   []byte
	Replace    bool
}

// CreatedEvent - a pool or strategy instance was deployed
type CreatedEvent struct {
	Asset      address.Address `json:"asset"`
	Label      address.Label   `json:"label"`
	Instance   address.Address `json:"instance"`
	Controller address.Address `json:"controller"`
	Manager    address.Address `json:"manager"`
	Nonce      uint64          `json:"nonce"`
}

func nonceKey(label address.Label) string {
	return noncePre + string(label[:])
}

func poolKey(asset address.Address) string {
	return poolPre + string(asset[:])
}

// Deploy - create a factory operated by the caller together with its
// registry
func Deploy(ctx *ledger.Context) (address.Address, error) {
	f, err := ctx.Create(Kind)
	if nil != err {
		return address.Zero, err
	}
	err = ctx.Call(f, Kind, "constructor", func(ctx *ledger.Context) error {
		operator := ctx.Sender()
		if err := ctx.PutAddress(operatorKey, operator); nil != err {
			return err
		}
		r, err := registry.Deploy(ctx, operator)
		if nil != err {
			return err
		}
		ctx.Log().Infof("factory: %s  registry: %s  operator: %s", ctx.Self(), r, operator)
		return ctx.PutAddress(registryKey, r)
	})
	if nil != err {
		return address.Zero, err
	}
	return f, nil
}

// UpgradeTo - point a label at a new implementation
//
// existing instances keep running the implementation they were
// cloned from
func UpgradeTo(ctx *ledger.Context, f address.Address, label address.Label, implementation address.Address) error {
	return ctx.Call(f, Kind, "UpgradeTo", func(ctx *ledger.Context) error {
		r, err := operatorRegistry(ctx)
		if nil != err {
			return err
		}
		if implementation.IsZero() {
			return fault.ErrMissingAddress
		}
		if _, found, err := ctx.CodeAt(implementation); nil != err {
			return err
		} else if !found {
			return fault.ErrNoCode
		}
		return registry.UpgradeTo(ctx, r, label, implementation)
	})
}

// ImportContracts - record the shared contracts in the registry
func ImportContracts(ctx *ledger.Context, f address.Address, addresses []address.Address) error {
	return ctx.Call(f, Kind, "ImportContracts", func(ctx *ledger.Context) error {
		r, err := operatorRegistry(ctx)
		if nil != err {
			return err
		}
		return registry.ImportContracts(ctx, r, addresses)
	})
}

// GetStrategyAddress - where the next instance of a label will be
// deployed
func GetStrategyAddress(ctx *ledger.Context, f address.Address, label address.Label) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "GetStrategyAddress", func(ctx *ledger.Context) error {
		r, err := ctx.GetAddress(registryKey)
		if nil != err {
			return err
		}
		result, _, _, err = next(ctx, r, label)
		return err
	})
	return result, err
}

// CreatePool - clone the pool implementation for an asset
//
// the manager must already be controlled by the address the pool is
// about to occupy
func CreatePool(ctx *ledger.Context, f address.Address, request PoolRequest) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "CreatePool", func(ctx *ledger.Context) error {
		r, err := operatorRegistry(ctx)
		if nil != err {
			return err
		}
		if request.Asset.IsZero() {
			return fault.ErrMissingAsset
		}
		if request.Owner.IsZero() {
			return fault.ErrMissingOwner
		}
		if request.Manager.IsZero() {
			return fault.ErrManagerNotSet
		}
		label := request.Label
		if label == (address.Label{}) {
			label = PoolLabel
		}

		existing, err := ctx.GetAddress(poolKey(request.Asset))
		if nil != err {
			return err
		}
		if !existing.IsZero() && !request.Replace {
			return fault.ErrInstanceExists
		}

		predicted, salt, implementation, err := next(ctx, r, label)
		if nil != err {
			return err
		}
		controller, err := manager.Controller(ctx, request.Manager)
		if nil != err {
			return err
		}
		if controller != predicted {
			return fault.ErrControllerMismatch
		}

		p, err := ctx.Clone(implementation, salt)
		if nil != err {
			return err
		}
		err = pool.Construct(ctx, p, pool.Params{
			Asset:   request.Asset,
			Owner:   request.Owner,
			Manager: request.Manager,
			Fee:     request.Fee,
		})
		if nil != err {
			return err
		}
		nonce, err := record(ctx, r, request.Asset, label, p)
		if nil != err {
			return err
		}
		if err := ctx.PutAddress(poolKey(request.Asset), p); nil != err {
			return err
		}

		if !existing.IsZero() {
			ctx.Log().Warnf("pool replaced: %s -> %s  funds are not migrated", existing, p)
		}
		result = p
		return ctx.Emit("PoolCreated", CreatedEvent{
			Asset:    request.Asset,
			Label:    label,
			Instance: p,
			Manager:  request.Manager,
			Nonce:    nonce,
		})
	})
	return result, err
}

// CreateStrategy - clone the implementation of a strategy label for an
// asset and construct it with InitData
func CreateStrategy(ctx *ledger.Context, f address.Address, request StrategyRequest) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "CreateStrategy", func(ctx *ledger.Context) error {
		r, err := operatorRegistry(ctx)
		if nil != err {
			return err
		}
		if request.Asset.IsZero() {
			return fault.ErrMissingAsset
		}
		if request.Controller.IsZero() {
			return fault.ErrMissingController
		}

		existing, err := registry.Instance(ctx, r, request.Asset, request.Label)
		if nil != err {
			return err
		}
		if !existing.IsZero() && !request.Replace {
			return fault.ErrInstanceExists
		}

		_, salt, implementation, err := next(ctx, r, request.Label)
		if nil != err {
			return err
		}
		operator, err := ctx.GetAddress(operatorKey)
		if nil != err {
			return err
		}
		strategyRegistry := request.Registry
		if strategyRegistry.IsZero() {
			strategyRegistry = r
		}

		s, err := ctx.Clone(implementation, salt)
		if nil != err {
			return err
		}
		err = strategy.Construct(ctx, s, strategy.Params{
			Asset:      request.Asset,
			Registry:   strategyRegistry,
			Controller: request.Controller,
			Operator:   operator,
			InitData:   request.InitData,
		})
		if nil != err {
			return err
		}
		nonce, err := record(ctx, r, request.Asset, request.Label, s)
		if nil != err {
			return err
		}

		result = s
		return ctx.Emit("StrategyCreated", CreatedEvent{
			Asset:      request.Asset,
			Label:      request.Label,
			Instance:   s,
			Controller: request.Controller,
			Nonce:      nonce,
		})
	})
	return result, err
}

// PoolAddresses - the live pool of an asset, zero if none
func PoolAddresses(ctx *ledger.Context, f address.Address, asset address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "PoolAddresses", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(poolKey(asset))
		return err
	})
	return result, err
}

// PoolStrategies - the live instance for address.StrategyKey(asset,
// label), zero if none
func PoolStrategies(ctx *ledger.Context, f address.Address, key address.Hash) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "PoolStrategies", func(ctx *ledger.Context) error {
		r, err := ctx.GetAddress(registryKey)
		if nil != err {
			return err
		}
		result, err = registry.InstanceByKey(ctx, r, key)
		return err
	})
	return result, err
}

// Registry - the registry deployed by the factory
func Registry(ctx *ledger.Context, f address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "Registry", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(registryKey)
		return err
	})
	return result, err
}

// Operator - the account allowed to create instances
func Operator(ctx *ledger.Context, f address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(f, Kind, "Operator", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(operatorKey)
		return err
	})
	return result, err
}

// Nonce - number of instances created for a label
func Nonce(ctx *ledger.Context, f address.Address, label address.Label) (uint64, error) {
	result := uint64(0)
	err := ctx.Call(f, Kind, "Nonce", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetN(nonceKey(label))
		return err
	})
	return result, err
}

// check the caller and return the registry
func operatorRegistry(ctx *ledger.Context) (address.Address, error) {
	operator, err := ctx.GetAddress(operatorKey)
	if nil != err {
		return address.Zero, err
	}
	if ctx.Sender() != operator {
		return address.Zero, fault.ErrCallerNotOperator
	}
	return ctx.GetAddress(registryKey)
}

// the address, salt and implementation of the next clone of a label
func next(ctx *ledger.Context, r address.Address, label address.Label) (address.Address, address.Hash, address.Address, error) {
	implementation, err := registry.Lookup(ctx, r, label)
	if fault.ErrNotFound == fault.Cause(err) {
		ctx.Log().Debugf("label: %s  has no implementation", label)
		return address.Zero, address.Hash{}, address.Zero, fault.ErrUnsetImplementation
	}
	if nil != err {
		return address.Zero, address.Hash{}, address.Zero, err
	}

	// clones always forward to the underlying implementation
	code, found, err := ctx.CodeAt(implementation)
	if nil != err {
		return address.Zero, address.Hash{}, address.Zero, err
	}
	if !found {
		return address.Zero, address.Hash{}, address.Zero, fault.ErrNoCode
	}
	if code.IsProxy() {
		implementation = code.Implementation
	}

	nonce, err := ctx.GetN(nonceKey(label))
	if nil != err {
		return address.Zero, address.Hash{}, address.Zero, err
	}
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, nonce)
	salt := address.Keccak256(label[:], n)

	return address.PredictClone(ctx.Self(), salt, implementation), salt, implementation, nil
}

// register the instance and advance the label's nonce
func record(ctx *ledger.Context, r address.Address, asset address.Address, label address.Label, instance address.Address) (uint64, error) {
	if err := registry.SetInstance(ctx, r, asset, label, instance); nil != err {
		return 0, err
	}
	nonce, err := ctx.GetN(nonceKey(label))
	if nil != err {
		return 0, err
	}
	return nonce, ctx.PutN(nonceKey(label), nonce+1)
}
