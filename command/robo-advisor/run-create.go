// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/manager"
	"github.com/ballast-fi/robo-advisor/pool"
	"github.com/ballast-fi/robo-advisor/strategy"
	"github.com/ballast-fi/robo-advisor/weight"
)

type createReply struct {
	Asset   address.Address `json:"asset"`
	Role    string          `json:"role"`
	Address address.Address `json:"address"`
}

func runCreateCompoundStrategy(c *cli.Context) error {
	return createLeaf(c, strategy.CompoundName, (*deployment.Operator).CreateCompoundStrategy)
}

func runCreateAaveStrategy(c *cli.Context) error {
	return createLeaf(c, strategy.AaveName, (*deployment.Operator).CreateAaveStrategy)
}

func createLeaf(c *cli.Context, role string, create func(*deployment.Operator, *deployment.Asset, bool) (address.Address, error)) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	replace := c.Bool("replace")

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "replace: %t\n", replace)
	}

	s, err := create(m.operator, asset, replace)
	if nil != err {
		return err
	}

	printJson(m.w, createReply{
		Asset:   asset.Token,
		Role:    role,
		Address: s,
	})

	return nil
}

func runCreateStrategyManager(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	weights, err := checkWeights(c.String("weights"), true)
	if nil != err {
		return err
	}
	replace := c.Bool("replace")

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "weights: %v\n", weights)
		fmt.Fprintf(m.e, "replace: %t\n", replace)
	}

	s, err := m.operator.CreateStrategyManager(asset.Token, weights, replace)
	if nil != err {
		return err
	}

	printJson(m.w, createReply{
		Asset:   asset.Token,
		Role:    manager.Name,
		Address: s,
	})

	return nil
}

func runCreatePool(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	owner, err := checkAccount(c.String("owner"), m)
	if nil != err {
		return err
	}
	fee, err := weight.Parse(c.String("fee"))
	if nil != err {
		return err
	}
	replace := c.Bool("replace")

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "owner: %s\n", owner)
		fmt.Fprintf(m.e, "fee: %s\n", fee)
		fmt.Fprintf(m.e, "replace: %t\n", replace)
	}

	p, err := m.operator.CreatePool(asset.Token, owner, fee, replace)
	if nil != err {
		return err
	}

	printJson(m.w, createReply{
		Asset:   asset.Token,
		Role:    pool.Name,
		Address: p,
	})

	return nil
}
