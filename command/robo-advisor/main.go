// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/storage"
)

type metadata struct {
	file     string
	config   *Configuration
	store    *storage.Store
	operator *deployment.Operator
	log      *logger.L
	verbose  bool
	e        io.Writer
	w        io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "robo-advisor"
	app.Usage = "deploy and operate allocation pools"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "robo-advisor.conf",
			Usage: " configuration `FILE`",
		},
		cli.Uint64Flag{
			Name:  "gas, g",
			Value: 0,
			Usage: " per transaction gas `LIMIT` [default from configuration]",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "bootstrap",
			Usage:     "install implementations, factory, registry and oracle",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "local, l",
					Value: "",
					Usage: " also create a local market for asset `SYMBOL`",
				},
				cli.StringFlag{
					Name:  "compound-apr",
					Value: "4",
					Usage: " local compound venue APR `PERCENT`",
				},
				cli.StringFlag{
					Name:  "aave-apr",
					Value: "6",
					Usage: " local aave venue APR `PERCENT`",
				},
				cli.Uint64Flag{
					Name:  "mint, m",
					Value: 0,
					Usage: " local tokens minted to the operator `AMOUNT`",
				},
			},
			Action: runBootstrap,
		},
		{
			Name:      "create-comp-strategy",
			Usage:     "create the compound strategy of an asset",
			ArgsUsage: "\n   (* = required)",
			Flags:     createFlags(),
			Action:    runCreateCompoundStrategy,
		},
		{
			Name:      "create-aave-strategy",
			Usage:     "create the aave strategy of an asset",
			ArgsUsage: "\n   (* = required)",
			Flags:     createFlags(),
			Action:    runCreateAaveStrategy,
		},
		{
			Name:      "create-strategy-manager",
			Usage:     "create the strategy manager of an asset over its strategies",
			ArgsUsage: "\n   (* = required)",
			Flags: append(createFlags(),
				cli.StringFlag{
					Name:  "weights, w",
					Value: "60,40",
					Usage: " compound,aave allocation `PERCENTS`",
				},
			),
			Action: runCreateStrategyManager,
		},
		{
			Name:      "create-pool",
			Usage:     "create the pool of an asset over its strategy manager",
			ArgsUsage: "\n   (* = required)",
			Flags: append(createFlags(),
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: " pool owner `ADDRESS` [default operator]",
				},
				cli.StringFlag{
					Name:  "fee, f",
					Value: "0",
					Usage: " withdrawal fee `PERCENT`",
				},
			),
			Action: runCreatePool,
		},
		{
			Name:      "rebalance-pool",
			Usage:     "rebalance an asset's pool and its strategies",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag(),
				cli.StringFlag{
					Name:  "target, t",
					Value: "90",
					Usage: " invested `PERCENT` of the pool",
				},
				cli.StringFlag{
					Name:  "weights, w",
					Value: "",
					Usage: " new compound,aave allocation `PERCENTS` [default keep]",
				},
				cli.BoolFlag{
					Name:  "estimate, e",
					Usage: " only report the gas that would be used",
				},
			},
			Action: runRebalancePool,
		},
		{
			Name:      "set-allocation",
			Usage:     "replace the weights of an asset's strategy manager",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag(),
				cli.StringFlag{
					Name:  "weights, w",
					Value: "",
					Usage: "*compound,aave allocation `PERCENTS`",
				},
			},
			Action: runSetAllocation,
		},
		{
			Name:      "set-cap",
			Usage:     "change the maximum invested percentage of an asset's pool",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag(),
				cli.StringFlag{
					Name:  "cap",
					Value: "",
					Usage: "*maximum invested `PERCENT`",
				},
			},
			Action: runSetCap,
		},
		{
			Name:      "pool-stats",
			Usage:     "display the position of an asset's pool and strategies",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{assetFlag()},
			Action:    runPoolStats,
		},
		{
			Name:      "deposit",
			Usage:     "deposit into an asset's pool",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag(),
				accountFlag(),
				cli.Uint64Flag{
					Name:  "amount",
					Value: 0,
					Usage: "*underlying `AMOUNT`",
				},
			},
			Action: runDeposit,
		},
		{
			Name:      "withdraw",
			Usage:     "redeem shares of an asset's pool",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				assetFlag(),
				accountFlag(),
				cli.Uint64Flag{
					Name:  "shares, n",
					Value: 0,
					Usage: "*`SHARES` to redeem",
				},
			},
			Action: runWithdraw,
		},
		{
			Name:      "history",
			Usage:     "list committed transactions",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " first block `NUMBER`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum records to output `COUNT`",
				},
			},
			Action: runHistory,
		},
		{
			Name:   "names",
			Usage:  "list the addresses recorded by bootstrap",
			Action: runNames,
		},
		{
			Name:  "version",
			Usage: "display robo-advisor version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration and open the ledger
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		file := c.GlobalString("config")
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		configuration, err := getConfiguration(file)
		if nil != err {
			return err
		}

		if err := logger.Initialise(configuration.Logging); nil != err {
			return err
		}
		log := logger.New("main")

		if verbose {
			fmt.Fprintf(e, "database: %s\n", configuration.Database)
		}
		store, err := storage.Open(configuration.Database, storage.ReadWrite)
		if nil != err {
			logger.Finalise()
			return err
		}

		account, err := address.FromHex(configuration.Operator)
		if nil != err {
			store.Close()
			logger.Finalise()
			return err
		}

		gas := c.GlobalUint64("gas")
		if 0 == gas {
			gas = configuration.GasLimit
		}

		log.Infof("command: %s  operator: %s  gas: %d", command, account, gas)

		c.App.Metadata["config"] = &metadata{
			file:     file,
			config:   configuration,
			store:    store,
			operator: deployment.New(ledger.New(store), account, gas),
			log:      log,
			verbose:  verbose,
			e:        e,
			w:        w,
		}
		return nil
	}

	// close the ledger
	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		if m.verbose {
			fmt.Fprintf(m.e, "closing database: %s\n", m.config.Database)
		}
		m.log.Info("finished")
		m.store.Close()
		logger.Finalise()
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

// flags shared by the create commands
func createFlags() []cli.Flag {
	return []cli.Flag{
		assetFlag(),
		cli.BoolFlag{
			Name:  "replace, r",
			Usage: " replace an existing instance",
		},
	}
}

func assetFlag() cli.Flag {
	return cli.StringFlag{
		Name:  "asset, a",
		Value: "",
		Usage: "*asset `SYMBOL` from the configuration",
	}
}

func accountFlag() cli.Flag {
	return cli.StringFlag{
		Name:  "account",
		Value: "",
		Usage: " acting `ADDRESS` [default operator]",
	}
}
