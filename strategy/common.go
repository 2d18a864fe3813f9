// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package strategy

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
)

// state keys common to all strategies
const (
	assetKey       = "asset"
	registryKey    = "registry"
	controllerKey  = "controller"
	operatorKey    = "operator"
	initialisedKey = "initialised"
)

// StoreCommon - validate and record the common constructor arguments
//
// must be the first thing a Construct does
func StoreCommon(ctx *ledger.Context, params Params) error {
	initialised, err := ctx.GetBool(initialisedKey)
	if nil != err {
		return err
	}
	if initialised {
		return fault.ErrAlreadyInitialised
	}
	if params.Asset.IsZero() {
		return fault.ErrMissingAsset
	}
	if params.Controller.IsZero() {
		return fault.ErrMissingController
	}

	if err := ctx.PutAddress(assetKey, params.Asset); nil != err {
		return err
	}
	if err := ctx.PutAddress(registryKey, params.Registry); nil != err {
		return err
	}
	if err := ctx.PutAddress(controllerKey, params.Controller); nil != err {
		return err
	}
	if err := ctx.PutAddress(operatorKey, params.Operator); nil != err {
		return err
	}
	return ctx.PutBool(initialisedKey, true)
}

// OwnAsset - asset of the running strategy
func OwnAsset(ctx *ledger.Context) (address.Address, error) {
	return ctx.GetAddress(assetKey)
}

// OwnController - controller of the running strategy
func OwnController(ctx *ledger.Context) (address.Address, error) {
	return ctx.GetAddress(controllerKey)
}

// OnlyController - the sender must be the controller
func OnlyController(ctx *ledger.Context) error {
	controller, err := ctx.GetAddress(controllerKey)
	if nil != err {
		return err
	}
	if controller.IsZero() {
		return fault.ErrNotInitialised
	}
	if ctx.Sender() != controller {
		return fault.ErrCallerNotController
	}
	return nil
}

// OnlyControllerOrOperator - the sender must be the controller or the
// operator
func OnlyControllerOrOperator(ctx *ledger.Context) error {
	operator, err := ctx.GetAddress(operatorKey)
	if nil != err {
		return err
	}
	if !operator.IsZero() && ctx.Sender() == operator {
		return nil
	}
	err = OnlyController(ctx)
	if fault.ErrCallerNotController == err {
		return fault.ErrCallerNotOperator
	}
	return err
}

// Controller - the address allowed to move a strategy's funds
func Controller(ctx *ledger.Context, target address.Address) (address.Address, error) {
	return readAddress(ctx, target, "Controller", controllerKey)
}

// Asset - the underlying asset of a strategy
func Asset(ctx *ledger.Context, target address.Address) (address.Address, error) {
	return readAddress(ctx, target, "Asset", assetKey)
}

// Registry - the registry a strategy was wired to
func Registry(ctx *ledger.Context, target address.Address) (address.Address, error) {
	return readAddress(ctx, target, "Registry", registryKey)
}

func readAddress(ctx *ledger.Context, target address.Address, method string, key string) (address.Address, error) {
	result := address.Zero
	err := dispatch(ctx, target, method, func(_ Adapter, ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(key)
		return err
	})
	return result, err
}
