// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package venue - a lending market for one underlying token
//
// suppliers receive receipt units; the value of a unit in underlying
// tokens is the exchange rate scaled by weight.Denominator.  The
// operator sets the rate, the advertised APR and can pause the market
// to simulate a venue that refuses deposits and withdrawals.
package venue

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/weight"
)

// Kind - code kind of a lending venue
const Kind = ledger.Kind("LendingVenue")

// InitialRate - one unit is worth one underlying token
const InitialRate = uint64(weight.Denominator)

func init() {
	ledger.Register(Kind)
}

// state keys
const (
	operatorKey   = "operator"
	underlyingKey = "underlying"
	rateKey       = "rate"
	aprKey        = "apr"
	pausedKey     = "paused"
	unitsKey      = "units"
	unitsPre      = "units:"
)

// SupplyEvent - emitted on supply and redeem
type SupplyEvent struct {
	Account address.Address `json:"account"`
	Amount  uint64          `json:"amount"`
	Units   uint64          `json:"units"`
}

func unitsKeyOf(a address.Address) string {
	return unitsPre + string(a[:])
}

// Deploy - create a venue for an underlying token, operated by the caller
func Deploy(ctx *ledger.Context, underlying address.Address, apr weight.Weight) (address.Address, error) {
	if underlying.IsZero() {
		return address.Zero, fault.ErrMissingAsset
	}
	v, err := ctx.Create(Kind)
	if nil != err {
		return address.Zero, err
	}
	err = ctx.Call(v, Kind, "constructor", func(ctx *ledger.Context) error {
		if err := ctx.PutAddress(operatorKey, ctx.Sender()); nil != err {
			return err
		}
		if err := ctx.PutAddress(underlyingKey, underlying); nil != err {
			return err
		}
		if err := ctx.PutN(rateKey, InitialRate); nil != err {
			return err
		}
		return ctx.PutN(aprKey, uint64(apr))
	})
	if nil != err {
		return address.Zero, err
	}
	return v, nil
}

// Supply - the caller deposits amount of underlying, which it must have
// approved, and receives units
func Supply(ctx *ledger.Context, v address.Address, amount uint64) error {
	return ctx.Call(v, Kind, "Supply", func(ctx *ledger.Context) error {
		if err := notPaused(ctx); nil != err {
			return err
		}
		if 0 == amount {
			return fault.ErrZeroAmount
		}
		underlying, rate, err := market(ctx)
		if nil != err {
			return err
		}
		units, err := weight.MulDiv(amount, uint64(weight.Denominator), rate)
		if nil != err {
			return err
		}
		err = token.TransferFrom(ctx, underlying, ctx.Sender(), ctx.Self(), amount)
		if nil != err {
			return err
		}
		if err := addUnits(ctx, ctx.Sender(), units); nil != err {
			return err
		}
		return ctx.Emit("Supply", SupplyEvent{Account: ctx.Sender(), Amount: amount, Units: units})
	})
}

// Redeem - the caller returns units and receives underlying
func Redeem(ctx *ledger.Context, v address.Address, units uint64) error {
	return ctx.Call(v, Kind, "Redeem", func(ctx *ledger.Context) error {
		if err := notPaused(ctx); nil != err {
			return err
		}
		_, rate, err := market(ctx)
		if nil != err {
			return err
		}
		amount, err := weight.MulDiv(units, rate, uint64(weight.Denominator))
		if nil != err {
			return err
		}
		return redeem(ctx, units, amount)
	})
}

// RedeemUnderlying - the caller receives exactly amount of underlying
// for as many units as that costs, rounded up
func RedeemUnderlying(ctx *ledger.Context, v address.Address, amount uint64) error {
	return ctx.Call(v, Kind, "RedeemUnderlying", func(ctx *ledger.Context) error {
		if err := notPaused(ctx); nil != err {
			return err
		}
		_, rate, err := market(ctx)
		if nil != err {
			return err
		}
		units, err := weight.MulDiv(amount, uint64(weight.Denominator), rate)
		if nil != err {
			return err
		}
		value, err := weight.MulDiv(units, rate, uint64(weight.Denominator))
		if nil != err {
			return err
		}
		if value < amount {
			units += 1
		}
		return redeem(ctx, units, amount)
	})
}

func redeem(ctx *ledger.Context, units uint64, amount uint64) error {
	key := unitsKeyOf(ctx.Sender())
	held, err := ctx.GetN(key)
	if nil != err {
		return err
	}
	if held < units {
		return fault.ErrInsufficientBalance
	}
	total, err := ctx.GetN(unitsKey)
	if nil != err {
		return err
	}
	if err := ctx.PutN(key, held-units); nil != err {
		return err
	}
	if err := ctx.PutN(unitsKey, total-units); nil != err {
		return err
	}
	underlying, err := ctx.GetAddress(underlyingKey)
	if nil != err {
		return err
	}
	if 0 != amount {
		err = token.Transfer(ctx, underlying, ctx.Sender(), amount)
		if nil != err {
			return err
		}
	}
	return ctx.Emit("Redeem", SupplyEvent{Account: ctx.Sender(), Amount: amount, Units: units})
}

// BalanceOf - units held by an account
func BalanceOf(ctx *ledger.Context, v address.Address, who address.Address) (uint64, error) {
	units := uint64(0)
	err := ctx.Call(v, Kind, "BalanceOf", func(ctx *ledger.Context) error {
		var err error
		units, err = ctx.GetN(unitsKeyOf(who))
		return err
	})
	return units, err
}

// BalanceOfUnderlying - current underlying value of an account's units
func BalanceOfUnderlying(ctx *ledger.Context, v address.Address, who address.Address) (uint64, error) {
	amount := uint64(0)
	err := ctx.Call(v, Kind, "BalanceOfUnderlying", func(ctx *ledger.Context) error {
		units, err := ctx.GetN(unitsKeyOf(who))
		if nil != err {
			return err
		}
		_, rate, err := market(ctx)
		if nil != err {
			return err
		}
		amount, err = weight.MulDiv(units, rate, uint64(weight.Denominator))
		return err
	})
	return amount, err
}

// Underlying - the token this venue lends
func Underlying(ctx *ledger.Context, v address.Address) (address.Address, error) {
	underlying := address.Zero
	err := ctx.Call(v, Kind, "Underlying", func(ctx *ledger.Context) error {
		var err error
		underlying, err = ctx.GetAddress(underlyingKey)
		return err
	})
	return underlying, err
}

// ExchangeRate - underlying per unit scaled by weight.Denominator
func ExchangeRate(ctx *ledger.Context, v address.Address) (uint64, error) {
	rate := uint64(0)
	err := ctx.Call(v, Kind, "ExchangeRate", func(ctx *ledger.Context) error {
		var err error
		_, rate, err = market(ctx)
		return err
	})
	return rate, err
}

// APR - the advertised annual rate
func APR(ctx *ledger.Context, v address.Address) (weight.Weight, error) {
	apr := uint64(0)
	err := ctx.Call(v, Kind, "APR", func(ctx *ledger.Context) error {
		var err error
		apr, err = ctx.GetN(aprKey)
		return err
	})
	return weight.Weight(apr), err
}

// SetRate - operator changes the exchange rate
//
// raising the rate accrues interest to every holder, the operator must
// fund the venue with enough underlying to pay it out
func SetRate(ctx *ledger.Context, v address.Address, rate uint64) error {
	return ctx.Call(v, Kind, "SetRate", func(ctx *ledger.Context) error {
		if err := onlyOperator(ctx); nil != err {
			return err
		}
		if 0 == rate {
			return fault.ErrZeroAmount
		}
		return ctx.PutN(rateKey, rate)
	})
}

// SetAPR - operator changes the advertised rate
func SetAPR(ctx *ledger.Context, v address.Address, apr weight.Weight) error {
	return ctx.Call(v, Kind, "SetAPR", func(ctx *ledger.Context) error {
		if err := onlyOperator(ctx); nil != err {
			return err
		}
		return ctx.PutN(aprKey, uint64(apr))
	})
}

// SetPaused - operator stops or restarts supply and redeem
func SetPaused(ctx *ledger.Context, v address.Address, paused bool) error {
	return ctx.Call(v, Kind, "SetPaused", func(ctx *ledger.Context) error {
		if err := onlyOperator(ctx); nil != err {
			return err
		}
		return ctx.PutBool(pausedKey, paused)
	})
}

func onlyOperator(ctx *ledger.Context) error {
	operator, err := ctx.GetAddress(operatorKey)
	if nil != err {
		return err
	}
	if ctx.Sender() != operator {
		return fault.ErrCallerNotOperator
	}
	return nil
}

func notPaused(ctx *ledger.Context) error {
	paused, err := ctx.GetBool(pausedKey)
	if nil != err {
		return err
	}
	if paused {
		return fault.ErrVenuePaused
	}
	return nil
}

func market(ctx *ledger.Context) (address.Address, uint64, error) {
	underlying, err := ctx.GetAddress(underlyingKey)
	if nil != err {
		return address.Zero, 0, err
	}
	rate, err := ctx.GetN(rateKey)
	if nil != err {
		return address.Zero, 0, err
	}
	return underlying, rate, nil
}

func addUnits(ctx *ledger.Context, who address.Address, units uint64) error {
	key := unitsKeyOf(who)
	held, err := ctx.GetN(key)
	if nil != err {
		return err
	}
	held, err = weight.Add(held, units)
	if nil != err {
		return err
	}
	total, err := ctx.GetN(unitsKey)
	if nil != err {
		return err
	}
	total, err = weight.Add(total, units)
	if nil != err {
		return err
	}
	if err := ctx.PutN(key, held); nil != err {
		return err
	}
	return ctx.PutN(unitsKey, total)
}
