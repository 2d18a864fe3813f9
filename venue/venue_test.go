// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package venue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/ledger/ledgertest"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

var alice = ledgertest.Account(1)

func TestMain(m *testing.M) {
	ledgertest.Main(m)
}

type market struct {
	l     *ledger.Ledger
	dai   address.Address
	cDai  address.Address
	close func()
}

func setupMarket(t *testing.T) *market {
	l, done := ledgertest.New(t)
	m := &market{l: l, close: done}
	ledgertest.MustExecute(t, l, ledgertest.Operator, func(ctx *ledger.Context) error {
		var err error
		m.dai, err = token.Deploy(ctx, "DAI")
		if nil != err {
			return err
		}
		m.cDai, err = venue.Deploy(ctx, m.dai, weight.Percent(5))
		if nil != err {
			return err
		}
		return token.Mint(ctx, m.dai, alice, 1000)
	})
	return m
}

func (m *market) supply(ctx *ledger.Context, amount uint64) error {
	if err := token.Approve(ctx, m.dai, m.cDai, amount); nil != err {
		return err
	}
	return venue.Supply(ctx, m.cDai, amount)
}

func TestSupplyAndRedeem(t *testing.T) {
	m := setupMarket(t)
	defer m.close()

	ledgertest.MustExecute(t, m.l, alice, func(ctx *ledger.Context) error {
		return m.supply(ctx, 400)
	})

	ledgertest.MustView(t, m.l, func(ctx *ledger.Context) error {
		units, err := venue.BalanceOf(ctx, m.cDai, alice)
		require.Nil(t, err)
		assert.Equal(t, uint64(400), units)

		apr, err := venue.APR(ctx, m.cDai)
		assert.Equal(t, weight.Percent(5), apr)

		underlying, _ := venue.Underlying(ctx, m.cDai)
		assert.Equal(t, m.dai, underlying)
		return err
	})

	// interest: each unit is now worth 1.5 tokens, the operator funds it
	ledgertest.MustExecute(t, m.l, ledgertest.Operator, func(ctx *ledger.Context) error {
		if err := token.Mint(ctx, m.dai, m.cDai, 200); nil != err {
			return err
		}
		return venue.SetRate(ctx, m.cDai, venue.InitialRate*3/2)
	})

	ledgertest.MustView(t, m.l, func(ctx *ledger.Context) error {
		value, err := venue.BalanceOfUnderlying(ctx, m.cDai, alice)
		assert.Equal(t, uint64(600), value)
		return err
	})

	ledgertest.MustExecute(t, m.l, alice, func(ctx *ledger.Context) error {
		if err := venue.RedeemUnderlying(ctx, m.cDai, 150); nil != err {
			return err
		}
		return venue.Redeem(ctx, m.cDai, 300)
	})

	ledgertest.MustView(t, m.l, func(ctx *ledger.Context) error {
		units, err := venue.BalanceOf(ctx, m.cDai, alice)
		assert.Equal(t, uint64(0), units)
		balance, _ := token.BalanceOf(ctx, m.dai, alice)
		assert.Equal(t, uint64(600+600), balance)
		return err
	})
}

func TestPausedVenue(t *testing.T) {
	m := setupMarket(t)
	defer m.close()

	ledgertest.MustExecute(t, m.l, ledgertest.Operator, func(ctx *ledger.Context) error {
		return venue.SetPaused(ctx, m.cDai, true)
	})

	_, err := m.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return m.supply(ctx, 100)
	})
	assert.Equal(t, fault.ErrVenuePaused, fault.Cause(err))
	assert.True(t, fault.IsErrDependency(err))

	ledgertest.MustView(t, m.l, func(ctx *ledger.Context) error {
		allowed, err := token.Allowance(ctx, m.dai, alice, m.cDai)
		assert.Equal(t, uint64(0), allowed, "approve rolled back with the failed supply")
		return err
	})
}

func TestOperatorOnly(t *testing.T) {
	m := setupMarket(t)
	defer m.close()

	_, err := m.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return venue.SetAPR(ctx, m.cDai, weight.Percent(50))
	})
	assert.Equal(t, fault.ErrCallerNotOperator, fault.Cause(err))
	assert.True(t, fault.IsErrAuthorisation(err))

	_, err = m.l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return venue.Redeem(ctx, m.cDai, 1)
	})
	assert.Equal(t, fault.ErrInsufficientBalance, fault.Cause(err))
}
