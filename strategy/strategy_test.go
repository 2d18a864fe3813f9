// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/ledger/ledgertest"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

// alice plays the controller of every strategy in these tests
var (
	alice = ledgertest.Account(1)
	bob   = ledgertest.Account(2)
)

func TestMain(m *testing.M) {
	ledgertest.Main(m)
}

type fixture struct {
	l        *ledger.Ledger
	dai      address.Address
	usdc     address.Address
	cDai     address.Address
	aDai     address.Address
	compound address.Address
	aave     address.Address
	close    func()
}

func deployStrategy(ctx *ledger.Context, kind ledger.Kind, salt string, params strategy.Params) (address.Address, error) {
	impl := ledger.ImplementationAddress(ctx.Self(), kind, 1)
	if _, found, err := ctx.CodeAt(impl); nil != err {
		return address.Zero, err
	} else if !found {
		if _, err := ctx.DeployCode(kind, 1); nil != err {
			return address.Zero, err
		}
	}
	s, err := ctx.Clone(impl, address.Keccak256([]byte(salt)))
	if nil != err {
		return address.Zero, err
	}
	return s, strategy.Construct(ctx, s, params)
}

func compoundData(t *testing.T, cToken address.Address) []byte {
	data, err := (&instruction.CompoundInit{CToken: cToken}).Pack()
	require.Nil(t, err)
	return data
}

func aaveData(t *testing.T, aToken address.Address) []byte {
	data, err := (&instruction.AaveInit{AToken: aToken}).Pack()
	require.Nil(t, err)
	return data
}

func setup(t *testing.T) *fixture {
	l, done := ledgertest.New(t)
	f := &fixture{l: l, close: done}

	ledgertest.MustExecute(t, l, ledgertest.Operator, func(ctx *ledger.Context) error {
		var err error
		if f.dai, err = token.Deploy(ctx, "DAI"); nil != err {
			return err
		}
		if f.usdc, err = token.Deploy(ctx, "USDC"); nil != err {
			return err
		}
		if f.cDai, err = venue.Deploy(ctx, f.dai, weight.Percent(4)); nil != err {
			return err
		}
		if f.aDai, err = venue.Deploy(ctx, f.dai, weight.Percent(6)); nil != err {
			return err
		}
		return token.Mint(ctx, f.dai, alice, 10000)
	})

	ledgertest.MustExecute(t, l, ledgertest.Operator, func(ctx *ledger.Context) error {
		var err error
		f.compound, err = deployStrategy(ctx, strategy.CompoundKind, "compound", strategy.Params{
			Asset:      f.dai,
			Controller: alice,
			Operator:   ledgertest.Operator,
			InitData:   compoundData(t, f.cDai),
		})
		if nil != err {
			return err
		}
		f.aave, err = deployStrategy(ctx, strategy.AaveKind, "aave", strategy.Params{
			Asset:      f.dai,
			Controller: alice,
			Operator:   ledgertest.Operator,
			InitData:   aaveData(t, f.aDai),
		})
		return err
	})
	return f
}

// controller hands amount to s and asks it to invest
func (f *fixture) fund(ctx *ledger.Context, s address.Address, amount uint64, continuation []byte) error {
	if err := token.Transfer(ctx, f.dai, s, amount); nil != err {
		return err
	}
	return strategy.Invest(ctx, s, amount, continuation)
}

func TestConstruct(t *testing.T) {
	f := setup(t)
	defer f.close()

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		controller, err := strategy.Controller(ctx, f.compound)
		require.Nil(t, err)
		assert.Equal(t, alice, controller)

		asset, err := strategy.Asset(ctx, f.aave)
		require.Nil(t, err)
		assert.Equal(t, f.dai, asset)

		v, err := strategy.Venue(ctx, f.aave)
		require.Nil(t, err)
		assert.Equal(t, f.aDai, v)

		code, found, err := ctx.CodeAt(f.compound)
		require.Nil(t, err)
		require.True(t, found)
		assert.Equal(t, strategy.CompoundKind, code.Kind)
		assert.True(t, code.IsProxy())
		return nil
	})

	_, err := f.l.Execute(ledgertest.Operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return strategy.Construct(ctx, f.compound, strategy.Params{
			Asset:      f.dai,
			Controller: bob,
			InitData:   compoundData(t, f.cDai),
		})
	})
	assert.Equal(t, fault.ErrAlreadyInitialised, fault.Cause(err), "second construct")
}

func TestConstructErrors(t *testing.T) {
	f := setup(t)
	defer f.close()

	tests := []struct {
		name   string
		kind   ledger.Kind
		params strategy.Params
		err    error
	}{
		{
			name:   "asset mismatch",
			kind:   strategy.CompoundKind,
			params: strategy.Params{Asset: f.usdc, Controller: alice, InitData: compoundData(t, f.cDai)},
			err:    fault.ErrAssetMismatch,
		},
		{
			name:   "missing venue",
			kind:   strategy.AaveKind,
			params: strategy.Params{Asset: f.dai, Controller: alice, InitData: []byte{byte(instruction.AaveInitTag), 0, 0, 0}},
			err:    fault.ErrMissingVenue,
		},
		{
			name:   "missing controller",
			kind:   strategy.CompoundKind,
			params: strategy.Params{Asset: f.dai, InitData: compoundData(t, f.cDai)},
			err:    fault.ErrMissingController,
		},
		{
			name:   "wrong init data",
			kind:   strategy.CompoundKind,
			params: strategy.Params{Asset: f.dai, Controller: alice, InitData: aaveData(t, f.aDai)},
			err:    fault.ErrInvalidTag,
		},
	}

	for i, test := range tests {
		_, err := f.l.Execute(ledgertest.Operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
			_, err := deployStrategy(ctx, test.kind, test.name, test.params)
			return err
		})
		assert.Equal(t, test.err, fault.Cause(err), "%d: %s", i, test.name)
	}
}

func TestInvestAndWithdraw(t *testing.T) {
	f := setup(t)
	defer f.close()

	ledgertest.MustExecute(t, f.l, alice, func(ctx *ledger.Context) error {
		if err := f.fund(ctx, f.compound, 600, nil); nil != err {
			return err
		}
		return f.fund(ctx, f.aave, 400, []byte{byte(instruction.StrategyRebalanceTag)})
	})

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		balance, err := strategy.InvestedUnderlyingBalance(ctx, f.compound)
		require.Nil(t, err)
		assert.Equal(t, uint64(600), balance)

		supplied, err := venue.BalanceOfUnderlying(ctx, f.aDai, f.aave)
		require.Nil(t, err)
		assert.Equal(t, uint64(400), supplied)

		apr, err := strategy.GetAPR(ctx, f.aave)
		require.Nil(t, err)
		assert.Equal(t, weight.Percent(6), apr)
		return nil
	})

	ledgertest.MustExecute(t, f.l, alice, func(ctx *ledger.Context) error {
		return strategy.Withdraw(ctx, f.compound, 250)
	})

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		balance, err := strategy.InvestedUnderlyingBalance(ctx, f.compound)
		require.Nil(t, err)
		assert.Equal(t, uint64(350), balance)

		held, err := token.BalanceOf(ctx, f.dai, alice)
		require.Nil(t, err)
		assert.Equal(t, uint64(10000-1000+250), held)
		return nil
	})

	receipt := ledgertest.MustExecute(t, f.l, alice, func(ctx *ledger.Context) error {
		if err := strategy.WithdrawAll(ctx, f.compound); nil != err {
			return err
		}
		return strategy.WithdrawAll(ctx, f.aave)
	})
	_, found := receipt.Find("Returned")
	assert.True(t, found, "returned event")

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		held, err := token.BalanceOf(ctx, f.dai, alice)
		require.Nil(t, err)
		assert.Equal(t, uint64(10000), held)
		return nil
	})
}

func TestInvestRejectsForeignInstruction(t *testing.T) {
	f := setup(t)
	defer f.close()

	manager, err := (&instruction.ManagerRebalance{}).Pack()
	require.Nil(t, err)

	_, err = f.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return f.fund(ctx, f.compound, 100, manager)
	})
	assert.Equal(t, fault.ErrInvalidTag, fault.Cause(err))

	ledgertest.MustView(t, f.l, func(ctx *ledger.Context) error {
		held, err := token.BalanceOf(ctx, f.dai, alice)
		assert.Equal(t, uint64(10000), held, "transfer rolled back")
		return err
	})
}

func TestOnlyController(t *testing.T) {
	f := setup(t)
	defer f.close()

	ledgertest.MustExecute(t, f.l, alice, func(ctx *ledger.Context) error {
		return f.fund(ctx, f.compound, 100, nil)
	})

	_, err := f.l.Execute(bob, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return strategy.WithdrawAll(ctx, f.compound)
	})
	assert.Equal(t, fault.ErrCallerNotController, fault.Cause(err))
	assert.True(t, fault.IsErrAuthorisation(err))
}

func TestVenueFailurePropagates(t *testing.T) {
	f := setup(t)
	defer f.close()

	ledgertest.MustExecute(t, f.l, ledgertest.Operator, func(ctx *ledger.Context) error {
		return venue.SetPaused(ctx, f.cDai, true)
	})

	_, err := f.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return f.fund(ctx, f.compound, 100, nil)
	})
	assert.Equal(t, fault.ErrVenuePaused, fault.Cause(err))
}

func TestUnknownTarget(t *testing.T) {
	f := setup(t)
	defer f.close()

	err := f.l.View(func(ctx *ledger.Context) error {
		_, err := strategy.InvestedUnderlyingBalance(ctx, f.dai)
		return err
	})
	assert.Equal(t, fault.ErrUnknownCodeKind, fault.Cause(err), "a token is not a strategy")

	err = f.l.View(func(ctx *ledger.Context) error {
		_, err := strategy.GetAPR(ctx, bob)
		return err
	})
	assert.Equal(t, fault.ErrNoCode, fault.Cause(err))
}
