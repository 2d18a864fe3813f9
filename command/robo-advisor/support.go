// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/weight"
)

// common errors - keep in alphabetic order
var (
	ErrRequiredAmount  = fault.InvalidError("amount is required")
	ErrRequiredAsset   = fault.InvalidError("asset symbol is required")
	ErrRequiredCap     = fault.InvalidError("cap is required")
	ErrRequiredShares  = fault.InvalidError("shares is required")
	ErrRequiredWeights = fault.InvalidError("weights are required")
	ErrUnknownAsset    = fault.NotFoundError("asset is not in the configuration")
	ErrUnknownName     = fault.NotFoundError("name is not recorded on the ledger")
)

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}

// symbol must be present in the configuration
func checkAsset(symbol string, config *Configuration, l *ledger.Ledger) (*deployment.Asset, error) {
	if "" == symbol {
		return nil, ErrRequiredAsset
	}
	symbol = strings.ToUpper(symbol)
	a, ok := config.Assets[symbol]
	if !ok {
		return nil, ErrUnknownAsset
	}

	asset := &deployment.Asset{}
	items := []struct {
		value    string
		fallback string
		result   *address.Address
	}{
		{a.Token, symbol, &asset.Token},
		{a.CToken, "c" + symbol, &asset.CToken},
		{a.AToken, "a" + symbol, &asset.AToken},
		{a.Comp, "", &asset.Comp},
		{a.Comptroller, "", &asset.Comptroller},
		{a.AaveProvider, "", &asset.AaveProvider},
		{a.Router, "", &asset.Router},
	}
	for _, item := range items {
		if "" != item.value {
			r, err := resolveAddress(item.value, l)
			if nil != err {
				return nil, fmt.Errorf("asset: %s: %q: %s", symbol, item.value, err)
			}
			*item.result = r
		} else if "" != item.fallback {
			// names recorded by bootstrap --local
			*item.result, _ = l.Name(item.fallback)
		}
	}
	if asset.Token.IsZero() {
		return nil, fault.ErrMissingAsset
	}
	return asset, nil
}

// a hex address, or a name recorded on the ledger
func resolveAddress(value string, l *ledger.Ledger) (address.Address, error) {
	if a, err := address.FromHex(value); nil == err {
		return a, nil
	}
	a, found := l.Name(value)
	if !found {
		return address.Zero, ErrUnknownName
	}
	return a, nil
}

// account is optional and defaults to the operator
func checkAccount(value string, m *metadata) (address.Address, error) {
	if "" == value {
		return m.operator.Account(), nil
	}
	return resolveAddress(value, m.operator.Ledger())
}

// weights are optional unless required is set
func checkWeights(value string, required bool) ([]weight.Weight, error) {
	weights, err := weight.ParseList(value)
	if nil != err {
		return nil, err
	}
	if required && 0 == len(weights) {
		return nil, ErrRequiredWeights
	}
	return weights, nil
}
