// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package strategy

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/instruction"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/token"
	"github.com/ballast-fi/robo-advisor/venue"
	"github.com/ballast-fi/robo-advisor/weight"
)

// role names of the leaf adapters
const (
	CompoundName = "CompoundStrategy"
	AaveName     = "AaveStrategy"
)

// kinds of the leaf adapters
const (
	CompoundKind = ledger.Kind(CompoundName)
	AaveKind     = ledger.Kind(AaveName)
)

const (
	venueKey     = "venue"
	rewardKey    = "reward"
	governorKey  = "governor"
	routerKey    = "router"
	providerKey  = "provider"
	investedName = "Invested"
	returnedName = "Returned"
)

func init() {
	Register(CompoundKind, &lending{decode: decodeCompound})
	Register(AaveKind, &lending{decode: decodeAave})
}

// the venue specific part of the constructor data, as state to store
type lendingInit struct {
	venue address.Address
	extra map[string]address.Address
}

// a strategy that supplies everything it receives to one venue
type lending struct {
	decode func([]byte) (lendingInit, error)
}

// MovementEvent - funds entered or left a strategy
type MovementEvent struct {
	Amount uint64 `json:"amount"`
}

func decodeCompound(data []byte) (lendingInit, error) {
	r, err := instruction.Packed(data).UnpackExact(instruction.CompoundInitTag)
	if nil != err {
		return lendingInit{}, err
	}
	c := r.(*instruction.CompoundInit)
	return lendingInit{
		venue: c.CToken,
		extra: map[string]address.Address{
			rewardKey:   c.CompToken,
			governorKey: c.Comptroller,
			routerKey:   c.Router,
		},
	}, nil
}

func decodeAave(data []byte) (lendingInit, error) {
	r, err := instruction.Packed(data).UnpackExact(instruction.AaveInitTag)
	if nil != err {
		return lendingInit{}, err
	}
	a := r.(*instruction.AaveInit)
	return lendingInit{
		venue: a.AToken,
		extra: map[string]address.Address{
			providerKey: a.AddressProvider,
			routerKey:   a.Router,
		},
	}, nil
}

func (s *lending) Construct(ctx *ledger.Context, params Params) error {
	data, err := s.decode(params.InitData)
	if nil != err {
		return err
	}
	if data.venue.IsZero() {
		return fault.ErrMissingVenue
	}
	if err := StoreCommon(ctx, params); nil != err {
		return err
	}

	underlying, err := venue.Underlying(ctx, data.venue)
	if nil != err {
		return err
	}
	if underlying != params.Asset {
		return fault.ErrAssetMismatch
	}

	if err := ctx.PutAddress(venueKey, data.venue); nil != err {
		return err
	}
	for k, a := range data.extra {
		if err := ctx.PutAddress(k, a); nil != err {
			return err
		}
	}
	return nil
}

func (s *lending) Invest(ctx *ledger.Context, amount uint64, continuation []byte) error {
	if err := OnlyController(ctx); nil != err {
		return err
	}
	if 0 != len(continuation) {
		if _, err := instruction.UnpackStrategy(continuation); nil != err {
			return err
		}
	}
	if 0 == amount {
		return nil
	}

	asset, v, err := s.market(ctx)
	if nil != err {
		return err
	}
	if err := token.Approve(ctx, asset, v, amount); nil != err {
		return err
	}
	if err := venue.Supply(ctx, v, amount); nil != err {
		return err
	}
	return ctx.Emit(investedName, MovementEvent{Amount: amount})
}

func (s *lending) Withdraw(ctx *ledger.Context, amount uint64) error {
	if err := OnlyController(ctx); nil != err {
		return err
	}
	asset, v, err := s.market(ctx)
	if nil != err {
		return err
	}
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return err
	}
	if idle < amount {
		if err := venue.RedeemUnderlying(ctx, v, amount-idle); nil != err {
			return err
		}
	}
	return s.pay(ctx, asset, amount)
}

func (s *lending) WithdrawAll(ctx *ledger.Context) error {
	if err := OnlyController(ctx); nil != err {
		return err
	}
	asset, v, err := s.market(ctx)
	if nil != err {
		return err
	}
	units, err := venue.BalanceOf(ctx, v, ctx.Self())
	if nil != err {
		return err
	}
	if 0 != units {
		if err := venue.Redeem(ctx, v, units); nil != err {
			return err
		}
	}
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return err
	}
	return s.pay(ctx, asset, idle)
}

// idle tokens plus the value supplied to the venue
func (s *lending) InvestedUnderlyingBalance(ctx *ledger.Context) (uint64, error) {
	asset, v, err := s.market(ctx)
	if nil != err {
		return 0, err
	}
	idle, err := token.BalanceOf(ctx, asset, ctx.Self())
	if nil != err {
		return 0, err
	}
	supplied, err := venue.BalanceOfUnderlying(ctx, v, ctx.Self())
	if nil != err {
		return 0, err
	}
	return weight.Add(idle, supplied)
}

func (s *lending) GetAPR(ctx *ledger.Context) (weight.Weight, error) {
	v, err := ctx.GetAddress(venueKey)
	if nil != err {
		return 0, err
	}
	return venue.APR(ctx, v)
}

func (s *lending) market(ctx *ledger.Context) (address.Address, address.Address, error) {
	asset, err := OwnAsset(ctx)
	if nil != err {
		return address.Zero, address.Zero, err
	}
	v, err := ctx.GetAddress(venueKey)
	if nil != err {
		return address.Zero, address.Zero, err
	}
	if v.IsZero() {
		return address.Zero, address.Zero, fault.ErrNotInitialised
	}
	return asset, v, nil
}

// send amount to the controller
func (s *lending) pay(ctx *ledger.Context, asset address.Address, amount uint64) error {
	if 0 == amount {
		return nil
	}
	controller, err := OwnController(ctx)
	if nil != err {
		return err
	}
	if err := token.Transfer(ctx, asset, controller, amount); nil != err {
		return err
	}
	return ctx.Emit(returnedName, MovementEvent{Amount: amount})
}

// Venue - the lending venue a leaf adapter supplies to
func Venue(ctx *ledger.Context, target address.Address) (address.Address, error) {
	return readAddress(ctx, target, "Venue", venueKey)
}
