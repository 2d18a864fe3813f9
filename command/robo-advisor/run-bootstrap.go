// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/weight"
)

type bootstrapReply struct {
	Addresses *deployment.Addresses `json:"addresses"`
	Symbol    string                `json:"symbol,omitempty"`
	Market    *deployment.Asset     `json:"market,omitempty"`
}

func runBootstrap(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	symbol := strings.ToUpper(c.String("local"))

	compoundAPR, err := weight.Parse(c.String("compound-apr"))
	if nil != err {
		return err
	}
	aaveAPR, err := weight.Parse(c.String("aave-apr"))
	if nil != err {
		return err
	}
	mint := c.Uint64("mint")

	if m.verbose {
		fmt.Fprintf(m.e, "operator: %s\n", m.operator.Account())
		if "" != symbol {
			fmt.Fprintf(m.e, "local market: %s  compound: %s  aave: %s  mint: %d\n", symbol, compoundAPR, aaveAPR, mint)
		}
	}

	addresses, err := m.operator.Bootstrap()
	if nil != err {
		return err
	}
	reply := bootstrapReply{
		Addresses: addresses,
	}

	if "" != symbol {
		balances := map[address.Address]uint64{}
		if 0 != mint {
			balances[m.operator.Account()] = mint
		}
		reply.Symbol = symbol
		reply.Market, err = m.operator.LocalMarket(symbol, compoundAPR, aaveAPR, balances)
		if nil != err {
			return err
		}
	}

	printJson(m.w, reply)

	return nil
}
