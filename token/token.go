// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package token - a fungible asset
//
// balances are plain uint64 amounts and every change is overflow
// checked; only the deployer may mint
package token

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Kind - code kind of a token
const Kind = ledger.Kind("Token")

func init() {
	ledger.Register(Kind)
}

// state keys
const (
	ownerKey     = "owner"
	symbolKey    = "symbol"
	supplyKey    = "supply"
	balancePre   = "balance:"
	allowancePre = "allowance:"
)

// TransferEvent - emitted for every movement including mint
type TransferEvent struct {
	From   address.Address `json:"from"`
	To     address.Address `json:"to"`
	Amount uint64          `json:"amount"`
}

// ApprovalEvent - emitted when an allowance is set
type ApprovalEvent struct {
	Owner   address.Address `json:"owner"`
	Spender address.Address `json:"spender"`
	Amount  uint64          `json:"amount"`
}

func balanceKey(a address.Address) string {
	return balancePre + string(a[:])
}

func allowanceKey(owner address.Address, spender address.Address) string {
	return allowancePre + string(owner[:]) + string(spender[:])
}

// Deploy - create a new token owned by the caller
func Deploy(ctx *ledger.Context, symbol string) (address.Address, error) {
	t, err := ctx.Create(Kind)
	if nil != err {
		return address.Zero, err
	}
	err = ctx.Call(t, Kind, "constructor", func(ctx *ledger.Context) error {
		if err := ctx.PutAddress(ownerKey, ctx.Sender()); nil != err {
			return err
		}
		return ctx.Put(symbolKey, []byte(symbol))
	})
	if nil != err {
		return address.Zero, err
	}
	return t, nil
}

// Mint - create new tokens, owner only
func Mint(ctx *ledger.Context, t address.Address, to address.Address, amount uint64) error {
	return ctx.Call(t, Kind, "Mint", func(ctx *ledger.Context) error {
		owner, err := ctx.GetAddress(ownerKey)
		if nil != err {
			return err
		}
		if ctx.Sender() != owner {
			return fault.ErrCallerNotOwner
		}
		if to.IsZero() {
			return fault.ErrMissingAddress
		}

		supply, err := ctx.GetN(supplyKey)
		if nil != err {
			return err
		}
		supply, err = weight.Add(supply, amount)
		if nil != err {
			return err
		}
		if err := credit(ctx, to, amount); nil != err {
			return err
		}
		if err := ctx.PutN(supplyKey, supply); nil != err {
			return err
		}
		return ctx.Emit("Transfer", TransferEvent{To: to, Amount: amount})
	})
}

// Transfer - move amount from the caller to another address
func Transfer(ctx *ledger.Context, t address.Address, to address.Address, amount uint64) error {
	return ctx.Call(t, Kind, "Transfer", func(ctx *ledger.Context) error {
		return move(ctx, ctx.Sender(), to, amount)
	})
}

// Approve - allow spender to take up to amount from the caller
func Approve(ctx *ledger.Context, t address.Address, spender address.Address, amount uint64) error {
	return ctx.Call(t, Kind, "Approve", func(ctx *ledger.Context) error {
		if spender.IsZero() {
			return fault.ErrMissingAddress
		}
		if err := ctx.PutN(allowanceKey(ctx.Sender(), spender), amount); nil != err {
			return err
		}
		return ctx.Emit("Approval", ApprovalEvent{Owner: ctx.Sender(), Spender: spender, Amount: amount})
	})
}

// TransferFrom - the caller moves amount out of an approving account
func TransferFrom(ctx *ledger.Context, t address.Address, from address.Address, to address.Address, amount uint64) error {
	return ctx.Call(t, Kind, "TransferFrom", func(ctx *ledger.Context) error {
		key := allowanceKey(from, ctx.Sender())
		allowed, err := ctx.GetN(key)
		if nil != err {
			return err
		}
		if allowed < amount {
			return fault.ErrInsufficientAllowance
		}
		if err := ctx.PutN(key, allowed-amount); nil != err {
			return err
		}
		return move(ctx, from, to, amount)
	})
}

// BalanceOf - amount held by an address
func BalanceOf(ctx *ledger.Context, t address.Address, who address.Address) (uint64, error) {
	balance := uint64(0)
	err := ctx.Call(t, Kind, "BalanceOf", func(ctx *ledger.Context) error {
		var err error
		balance, err = ctx.GetN(balanceKey(who))
		return err
	})
	return balance, err
}

// Allowance - amount spender may still take from owner
func Allowance(ctx *ledger.Context, t address.Address, owner address.Address, spender address.Address) (uint64, error) {
	allowed := uint64(0)
	err := ctx.Call(t, Kind, "Allowance", func(ctx *ledger.Context) error {
		var err error
		allowed, err = ctx.GetN(allowanceKey(owner, spender))
		return err
	})
	return allowed, err
}

// TotalSupply - all minted tokens
func TotalSupply(ctx *ledger.Context, t address.Address) (uint64, error) {
	supply := uint64(0)
	err := ctx.Call(t, Kind, "TotalSupply", func(ctx *ledger.Context) error {
		var err error
		supply, err = ctx.GetN(supplyKey)
		return err
	})
	return supply, err
}

// Symbol - short name of the token
func Symbol(ctx *ledger.Context, t address.Address) (string, error) {
	symbol := ""
	err := ctx.Call(t, Kind, "Symbol", func(ctx *ledger.Context) error {
		buffer, err := ctx.Get(symbolKey)
		symbol = string(buffer)
		return err
	})
	return symbol, err
}

func move(ctx *ledger.Context, from address.Address, to address.Address, amount uint64) error {
	if to.IsZero() {
		return fault.ErrMissingAddress
	}
	balance, err := ctx.GetN(balanceKey(from))
	if nil != err {
		return err
	}
	if balance < amount {
		return fault.ErrInsufficientBalance
	}
	if from != to {
		if err := ctx.PutN(balanceKey(from), balance-amount); nil != err {
			return err
		}
		if err := credit(ctx, to, amount); nil != err {
			return err
		}
	}
	return ctx.Emit("Transfer", TransferEvent{From: from, To: to, Amount: amount})
}

func credit(ctx *ledger.Context, to address.Address, amount uint64) error {
	balance, err := ctx.GetN(balanceKey(to))
	if nil != err {
		return err
	}
	balance, err = weight.Add(balance, amount)
	if nil != err {
		return err
	}
	return ctx.PutN(balanceKey(to), balance)
}
