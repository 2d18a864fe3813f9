// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/weight"
)

func runRebalancePool(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	target, err := weight.Parse(c.String("target"))
	if nil != err {
		return err
	}
	weights, err := checkWeights(c.String("weights"), false)
	if nil != err {
		return err
	}
	estimate := c.Bool("estimate")

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "target: %s\n", target)
		fmt.Fprintf(m.e, "weights: %v\n", weights)
		fmt.Fprintf(m.e, "estimate: %t\n", estimate)
	}

	response, err := m.operator.Rebalance(deployment.RebalanceRequest{
		Asset:    asset.Token,
		Target:   target,
		Weights:  weights,
		Estimate: estimate,
	})
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}

func runSetAllocation(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	weights, err := checkWeights(c.String("weights"), true)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "weights: %v\n", weights)
	}

	err = m.operator.SetAllocation(asset.Token, weights)
	if nil != err {
		return err
	}

	printJson(m.w, struct {
		Weights []weight.Weight `json:"weights"`
	}{
		Weights: weights,
	})

	return nil
}

func runSetCap(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	if "" == c.String("cap") {
		return ErrRequiredCap
	}
	limit, err := weight.Parse(c.String("cap"))
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "cap: %s\n", limit)
	}

	err = m.operator.SetMaxInvestmentPerc(asset.Token, limit)
	if nil != err {
		return err
	}

	printJson(m.w, struct {
		MaxInvestmentPerc weight.Weight `json:"maxInvestmentPerc"`
	}{
		MaxInvestmentPerc: limit,
	})

	return nil
}
