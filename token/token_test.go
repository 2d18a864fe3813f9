// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package token_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/ledger/ledgertest"
	"github.com/ballast-fi/robo-advisor/token"
)

var (
	alice = ledgertest.Account(1)
	bob   = ledgertest.Account(2)
)

func TestMain(m *testing.M) {
	ledgertest.Main(m)
}

func setupToken(t *testing.T) (*ledger.Ledger, address.Address, func()) {
	l, done := ledgertest.New(t)
	var dai address.Address
	ledgertest.MustExecute(t, l, ledgertest.Operator, func(ctx *ledger.Context) error {
		var err error
		dai, err = token.Deploy(ctx, "DAI")
		if nil != err {
			return err
		}
		return token.Mint(ctx, dai, alice, 1000)
	})
	return l, dai, done
}

func balances(t *testing.T, l *ledger.Ledger, dai address.Address, who ...address.Address) []uint64 {
	result := make([]uint64, len(who))
	ledgertest.MustView(t, l, func(ctx *ledger.Context) error {
		for i, a := range who {
			b, err := token.BalanceOf(ctx, dai, a)
			if nil != err {
				return err
			}
			result[i] = b
		}
		return nil
	})
	return result
}

func TestMintAndTransfer(t *testing.T) {
	l, dai, done := setupToken(t)
	defer done()

	receipt := ledgertest.MustExecute(t, l, alice, func(ctx *ledger.Context) error {
		return token.Transfer(ctx, dai, bob, 300)
	})
	e, found := receipt.Find("Transfer")
	assert.True(t, found)
	var transfer token.TransferEvent
	assert.Nil(t, e.Decode(&transfer))
	assert.Equal(t, token.TransferEvent{From: alice, To: bob, Amount: 300}, transfer)

	assert.Equal(t, []uint64{700, 300}, balances(t, l, dai, alice, bob))

	ledgertest.MustView(t, l, func(ctx *ledger.Context) error {
		supply, err := token.TotalSupply(ctx, dai)
		assert.Equal(t, uint64(1000), supply)
		symbol, _ := token.Symbol(ctx, dai)
		assert.Equal(t, "DAI", symbol)
		return err
	})
}

func TestTransferErrors(t *testing.T) {
	l, dai, done := setupToken(t)
	defer done()

	_, err := l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return token.Transfer(ctx, dai, bob, 1001)
	})
	assert.Equal(t, fault.ErrInsufficientBalance, fault.Cause(err))

	_, err = l.Execute(alice, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return token.Mint(ctx, dai, alice, 1)
	})
	assert.Equal(t, fault.ErrCallerNotOwner, fault.Cause(err))

	_, err = l.Execute(ledgertest.Operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return token.Mint(ctx, dai, bob, math.MaxUint64)
	})
	assert.Equal(t, fault.ErrAmountOverflow, fault.Cause(err))

	assert.Equal(t, []uint64{1000, 0}, balances(t, l, dai, alice, bob))
}

func TestAllowance(t *testing.T) {
	l, dai, done := setupToken(t)
	defer done()

	ledgertest.MustExecute(t, l, alice, func(ctx *ledger.Context) error {
		return token.Approve(ctx, dai, bob, 500)
	})

	_, err := l.Execute(bob, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return token.TransferFrom(ctx, dai, alice, bob, 501)
	})
	assert.Equal(t, fault.ErrInsufficientAllowance, fault.Cause(err))

	ledgertest.MustExecute(t, l, bob, func(ctx *ledger.Context) error {
		return token.TransferFrom(ctx, dai, alice, bob, 200)
	})
	assert.Equal(t, []uint64{800, 200}, balances(t, l, dai, alice, bob))

	ledgertest.MustView(t, l, func(ctx *ledger.Context) error {
		allowed, err := token.Allowance(ctx, dai, alice, bob)
		assert.Equal(t, uint64(300), allowed)
		return err
	})
}
