// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func runPoolStats(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
	}

	response, err := m.operator.Stats(asset.Token)
	if nil != err {
		return err
	}

	printJson(m.w, response)

	return nil
}

func runDeposit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	account, err := checkAccount(c.String("account"), m)
	if nil != err {
		return err
	}
	amount := c.Uint64("amount")
	if 0 == amount {
		return ErrRequiredAmount
	}

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "account: %s\n", account)
		fmt.Fprintf(m.e, "amount: %d\n", amount)
	}

	err = m.operator.Deposit(account, asset.Token, amount)
	if nil != err {
		return err
	}

	response, err := m.operator.Stats(asset.Token)
	if nil != err {
		return err
	}

	printJson(m.w, response.Stats)

	return nil
}

func runWithdraw(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	asset, err := checkAsset(c.String("asset"), m.config, m.operator.Ledger())
	if nil != err {
		return err
	}
	account, err := checkAccount(c.String("account"), m)
	if nil != err {
		return err
	}
	shares := c.Uint64("shares")
	if 0 == shares {
		return ErrRequiredShares
	}

	if m.verbose {
		fmt.Fprintf(m.e, "asset: %s\n", asset.Token)
		fmt.Fprintf(m.e, "account: %s\n", account)
		fmt.Fprintf(m.e, "shares: %d\n", shares)
	}

	err = m.operator.Withdraw(account, asset.Token, shares)
	if nil != err {
		return err
	}

	response, err := m.operator.Stats(asset.Token)
	if nil != err {
		return err
	}

	printJson(m.w, response.Stats)

	return nil
}
