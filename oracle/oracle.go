// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package oracle - operator maintained asset prices
package oracle

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
)

// Name - role name of the price oracle in the registry
const Name = "PriceOracle"

// Kind - code kind of a price oracle
const Kind = ledger.Kind(Name)

func init() {
	ledger.Register(Kind)
}

const (
	operatorKey = "operator"
	pricePre    = "price:"
)

// PriceEvent - emitted when a price is set
type PriceEvent struct {
	Asset address.Address `json:"asset"`
	Price uint64          `json:"price"`
}

// Deploy - create an oracle operated by the caller
func Deploy(ctx *ledger.Context) (address.Address, error) {
	o, err := ctx.Create(Kind)
	if nil != err {
		return address.Zero, err
	}
	err = ctx.Call(o, Kind, "constructor", func(ctx *ledger.Context) error {
		return ctx.PutAddress(operatorKey, ctx.Sender())
	})
	if nil != err {
		return address.Zero, err
	}
	return o, nil
}

// SetPrice - operator records the price of an asset
func SetPrice(ctx *ledger.Context, o address.Address, asset address.Address, price uint64) error {
	return ctx.Call(o, Kind, "SetPrice", func(ctx *ledger.Context) error {
		operator, err := ctx.GetAddress(operatorKey)
		if nil != err {
			return err
		}
		if ctx.Sender() != operator {
			return fault.ErrCallerNotOperator
		}
		if asset.IsZero() {
			return fault.ErrMissingAsset
		}
		if err := ctx.PutN(pricePre+string(asset[:]), price); nil != err {
			return err
		}
		return ctx.Emit("PriceSet", PriceEvent{Asset: asset, Price: price})
	})
}

// Price - the last price set for an asset
func Price(ctx *ledger.Context, o address.Address, asset address.Address) (uint64, error) {
	price := uint64(0)
	err := ctx.Call(o, Kind, "Price", func(ctx *ledger.Context) error {
		buffer, err := ctx.Get(pricePre + string(asset[:]))
		if nil != err {
			return err
		}
		if nil == buffer {
			return fault.ErrNotFound
		}
		price, err = ctx.GetN(pricePre + string(asset[:]))
		return err
	})
	return price, err
}
