// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package factory_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/factory"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/ledger/ledgertest"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/pool"
	"github.com/ballast-fi/robo-advisor/registry"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

var (
	operator = ledgertest.Operator
	alice    = ledgertest.Account(1)
)

func TestMain(m *testing.M) {
	ledgertest.Main(m)
}

type fixture struct {
	l       *ledger.Ledger
	factory address.Address
	dai     address.Address
	usdc    address.Address
	cDai    address.Address
	aDai    address.Address
	impl    map[ledger.Kind]address.Address
	close   func()
}

func setup(t *testing.T) *fixture {
	l, done := ledgertest.New(t)
	f := &fixture{l: l, close: done, impl: make(map[ledger.Kind]address.Address)}

	ledgertest.MustExecute(t, l, operator, func(ctx *ledger.Context) error {
		var err error
		for _, role := range factory.Roles {
			if f.impl[role.Kind], err = ctx.DeployCode(role.Kind, 1); nil != err {
				return err
			}
		}
		if f.factory, err = factory.Deploy(ctx); nil != err {
			return err
		}
		for _, role := range factory.Roles {
			if err := factory.UpgradeTo(ctx, f.factory, address.NewLabel(role.Name), f.impl[role.Kind]); nil != err {
				return err
			}
		}
		if f.dai, err = token.Deploy(ctx, "DAI"); nil != err {
			return err
		}
		if f.usdc, err = token.Deploy(ctx, "USDC"); nil != err {
			return err
		}
		if f.cDai, err = venue.Deploy(ctx, f.dai, weight.Percent(4)); nil != err {
			return err
		}
		f.aDai, err = venue.Deploy(ctx, f.dai, weight.Percent(6))
		return err
	})
	return f
}

func pack(t *testing.T, r instruction.Record) []byte {
	packed, err := r.Pack()
	require.Nil(t, err)
	return packed
}

func (f *fixture) predict(t *testing.T, label address.Label) address.Address {
	result := address.Zero
	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		var err error
		result, err = factory.GetStrategyAddress(ctx, f.factory, label)
		return err
	})
	return result
}

func (f *fixture) compound(t *testing.T, controller address.Address, replace bool) (address.Address, error) {
	result := address.Zero
	_, err := f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		var err error
		result, err = factory.CreateStrategy(ctx, f.factory, factory.StrategyRequest{
			Asset:      f.dai,
			Label:      factory.CompoundLabel,
			Controller: controller,
			InitData:   pack(t, &instruction.CompoundInit{CToken: f.cDai}),
			Replace:    replace,
		})
		return err
	})
	return result, err
}

func TestDeploy(t *testing.T) {
	f := setup(t)
	defer f.close()

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		r, err := factory.Registry(ctx, f.factory)
		require.Nil(t, err)

		owner, err := registry.Owner(ctx, r)
		require.Nil(t, err)
		assert.Equal(t, f.factory, owner)

		op, err := factory.Operator(ctx, f.factory)
		require.Nil(t, err)
		assert.Equal(t, operator, op)

		impl, err := registry.Lookup(ctx, r, factory.PoolLabel)
		require.Nil(t, err)
		assert.Equal(t, f.impl[pool.Kind], impl)
		return nil
	})

	// the operator is the registry admin
	ledgertest.MustExecute(t, f.l, operator, func(ctx *ledger.Context) error {
		r, err := factory.Registry(ctx, f.factory)
		if nil != err {
			return err
		}
		return registry.UpgradeTo(ctx, r, address.NewLabel("Extra"), f.dai)
	})
}

func TestGetStrategyAddress(t *testing.T) {
	f := setup(t)
	defer f.close()

	// keccak(label ‖ be64(nonce)) salted clone of the implementation
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, 0)
	salt := address.Keccak256(factory.CompoundLabel[:], nonce)
	expected := address.PredictClone(f.factory, salt, f.impl[strategy.CompoundKind])

	predicted := f.predict(t, factory.CompoundLabel)
	assert.Equal(t, expected, predicted)

	// a view does not advance anything
	assert.Equal(t, predicted, f.predict(t, factory.CompoundLabel))

	created, err := f.compound(t, alice, false)
	require.Nil(t, err)
	assert.Equal(t, predicted, created)

	next := f.predict(t, factory.CompoundLabel)
	assert.NotEqual(t, created, next)

	binary.BigEndian.PutUint64(nonce, 1)
	assert.Equal(t, address.PredictClone(f.factory, address.Keccak256(factory.CompoundLabel[:], nonce), f.impl[strategy.CompoundKind]), next)

	// other labels have their own sequence
	assert.NotEqual(t, next, f.predict(t, factory.AaveLabel))

	err = f.l.View(func(ctx *ledger.Context) error {
		_, err := factory.GetStrategyAddress(ctx, f.factory, address.NewLabel("Unknown"))
		return err
	})
	assert.Equal(t, fault.ErrUnsetImplementation, fault.Cause(err))
	assert.True(t, fault.IsErrConfiguration(err))
}

func TestCreateStrategy(t *testing.T) {
	f := setup(t)
	defer f.close()

	s, err := f.compound(t, alice, false)
	require.Nil(t, err)

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		found, err := factory.PoolStrategies(ctx, f.factory, address.StrategyKey(f.dai, factory.CompoundLabel))
		require.Nil(t, err)
		assert.Equal(t, s, found)

		r, err := strategy.Registry(ctx, s)
		require.Nil(t, err)
		expected, err := factory.Registry(ctx, f.factory)
		assert.Equal(t, expected, r, "defaults to the factory registry")

		nonce, err := factory.Nonce(ctx, f.factory, factory.CompoundLabel)
		assert.Equal(t, uint64(1), nonce)
		return err
	})

	_, err = f.compound(t, alice, false)
	assert.Equal(t, fault.ErrInstanceExists, fault.Cause(err))
	assert.True(t, fault.IsErrExists(err))

	replacement, err := f.compound(t, alice, true)
	require.Nil(t, err)
	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		found, err := factory.PoolStrategies(ctx, f.factory, address.StrategyKey(f.dai, factory.CompoundLabel))
		assert.Equal(t, replacement, found)
		return err
	})

	tests := []struct {
		name    string
		sender  address.Address
		request factory.StrategyRequest
		err     error
	}{
		{
			name:    "not operator",
			sender:  alice,
			request: factory.StrategyRequest{Asset: f.dai, Label: factory.AaveLabel, Controller: alice},
			err:     fault.ErrCallerNotOperator,
		},
		{
			name:    "no asset",
			sender:  operator,
			request: factory.StrategyRequest{Label: factory.AaveLabel, Controller: alice},
			err:     fault.ErrMissingAsset,
		},
		{
			name:    "no controller",
			sender:  operator,
			request: factory.StrategyRequest{Asset: f.dai, Label: factory.AaveLabel},
			err:     fault.ErrMissingController,
		},
		{
			name:   "venue for another asset",
			sender: operator,
			request: factory.StrategyRequest{
				Asset:      f.usdc,
				Label:      factory.AaveLabel,
				Controller: alice,
				InitData:   pack(t, &instruction.AaveInit{AToken: f.aDai}),
			},
			err: fault.ErrAssetMismatch,
		},
		{
			name:   "unset label",
			sender: operator,
			request: factory.StrategyRequest{
				Asset:      f.dai,
				Label:      address.NewLabel("YearnStrategy"),
				Controller: alice,
			},
			err: fault.ErrUnsetImplementation,
		},
	}
	for i, test := range tests {
		_, err := f.l.Execute(test.sender, ledger.DefaultGas, func(ctx *ledger.Context) error {
			_, err := factory.CreateStrategy(ctx, f.factory, test.request)
			return err
		})
		assert.Equal(t, test.err, fault.Cause(err), "%d: %s", i, test.name)
	}

	// failures do not consume a nonce
	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		nonce, err := factory.Nonce(ctx, f.factory, factory.AaveLabel)
		assert.Equal(t, uint64(0), nonce)
		return err
	})
}

// the bottom-up sequence: leaves, manager, pool
func TestCreatePool(t *testing.T) {
	f := setup(t)
	defer f.close()

	managerAddress := f.predict(t, factory.ManagerLabel)
	compound, err := f.compound(t, managerAddress, false)
	require.Nil(t, err)

	var aave, m, p address.Address
	ledgertest.MustExecute(t, f.l, operator, func(ctx *ledger.Context) error {
		var err error
		aave, err = factory.CreateStrategy(ctx, f.factory, factory.StrategyRequest{
			Asset:      f.dai,
			Label:      factory.AaveLabel,
			Controller: managerAddress,
			InitData:   pack(t, &instruction.AaveInit{AToken: f.aDai}),
		})
		if nil != err {
			return err
		}
		poolAddress, err := factory.GetStrategyAddress(ctx, f.factory, factory.PoolLabel)
		if nil != err {
			return err
		}
		m, err = factory.CreateStrategy(ctx, f.factory, factory.StrategyRequest{
			Asset:      f.dai,
			Label:      factory.ManagerLabel,
			Controller: poolAddress,
			InitData: pack(t, &instruction.ManagerInit{
				Weights:    []weight.Weight{weight.Percent(60), weight.Percent(40)},
				Strategies: []address.Address{compound, aave},
			}),
		})
		if nil != err {
			return err
		}
		p, err = factory.CreatePool(ctx, f.factory, factory.PoolRequest{
			Asset:   f.dai,
			Owner:   operator,
			Manager: m,
		})
		return err
	})
	assert.Equal(t, managerAddress, m)

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		found, err := factory.PoolAddresses(ctx, f.factory, f.dai)
		require.Nil(t, err)
		assert.Equal(t, p, found)

		bound, err := pool.Manager(ctx, p)
		require.Nil(t, err)
		assert.Equal(t, m, bound)

		controller, err := manager.Controller(ctx, m)
		assert.Equal(t, p, controller)
		return err
	})

	// the manager is not controlled by the next pool address
	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := factory.CreatePool(ctx, f.factory, factory.PoolRequest{
			Asset:   f.dai,
			Owner:   operator,
			Manager: m,
			Replace: true,
		})
		return err
	})
	assert.Equal(t, fault.ErrControllerMismatch, fault.Cause(err))

	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := factory.CreatePool(ctx, f.factory, factory.PoolRequest{
			Asset:   f.dai,
			Owner:   operator,
			Manager: m,
		})
		return err
	})
	assert.Equal(t, fault.ErrInstanceExists, fault.Cause(err))

	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := factory.CreatePool(ctx, f.factory, factory.PoolRequest{Asset: f.usdc, Manager: m})
		return err
	})
	assert.Equal(t, fault.ErrMissingOwner, fault.Cause(err))

	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := factory.CreatePool(ctx, f.factory, factory.PoolRequest{Asset: f.usdc, Owner: operator, Manager: compound})
		return err
	})
	assert.Equal(t, fault.ErrCodeKindMismatch, fault.Cause(err), "a leaf is not a manager")
}

func TestUpgradeTo(t *testing.T) {
	f := setup(t)
	defer f.close()

	first, err := f.compound(t, alice, false)
	require.Nil(t, err)

	var impl address.Address
	ledgertest.MustExecute(t, f.l, operator, func(ctx *ledger.Context) error {
		var err error
		impl, err = ctx.DeployCode(strategy.CompoundKind, 2)
		if nil != err {
			return err
		}
		return factory.UpgradeTo(ctx, f.factory, factory.CompoundLabel, impl)
	})

	predicted := f.predict(t, factory.CompoundLabel)
	second, err := f.compound(t, alice, true)
	require.Nil(t, err)
	assert.Equal(t, predicted, second)

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		code, _, err := ctx.CodeAt(second)
		require.Nil(t, err)
		assert.Equal(t, impl, code.Implementation)

		old, _, err := ctx.CodeAt(first)
		require.Nil(t, err)
		assert.Equal(t, f.impl[strategy.CompoundKind], old.Implementation)
		return nil
	})

	_, err = f.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return factory.UpgradeTo(ctx, f.factory, factory.CompoundLabel, impl)
	})
	assert.Equal(t, fault.ErrCallerNotOperator, fault.Cause(err))

	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return factory.UpgradeTo(ctx, f.factory, factory.CompoundLabel, alice)
	})
	assert.Equal(t, fault.ErrNoCode, fault.Cause(err))

	_, err = f.l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return factory.UpgradeTo(ctx, f.factory, factory.CompoundLabel, address.Zero)
	})
	assert.Equal(t, fault.ErrMissingAddress, fault.Cause(err))
}
