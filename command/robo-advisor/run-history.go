// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func runHistory(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	start := c.Uint64("start")
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("invalid count: %d", count)
	}

	if m.verbose {
		fmt.Fprintf(m.e, "start: %d\n", start)
		fmt.Fprintf(m.e, "count: %d\n", count)
	}

	receipts, err := m.operator.History(start, count)
	if nil != err {
		return err
	}

	printJson(m.w, receipts)

	return nil
}

func runNames(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	names, err := m.operator.Ledger().Names()
	if nil != err {
		return err
	}

	printJson(m.w, names)

	return nil
}
