// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/configuration"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file
	defaultDatabase      = "robo-advisor.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "robo-advisor.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// AssetConfiguration - the external contracts of one asset
//
// each value is either a hex address or a name recorded on the ledger
// (bootstrap --local records the names of the market it creates)
type AssetConfiguration struct {
	Token        string `gluamapper:"token" json:"token"`
	CToken       string `gluamapper:"ctoken" json:"ctoken"`
	AToken       string `gluamapper:"atoken" json:"atoken"`
	Comp         string `gluamapper:"comp" json:"comp"`
	Comptroller  string `gluamapper:"comptroller" json:"comptroller"`
	AaveProvider string `gluamapper:"aave_provider" json:"aave_provider"`
	Router       string `gluamapper:"uniswap_router" json:"uniswap_router"`
}

type Configuration struct {
	DataDirectory string                        `gluamapper:"data_directory" json:"data_directory"`
	Database      string                        `gluamapper:"database" json:"database"`
	Operator      string                        `gluamapper:"operator" json:"operator"`
	GasLimit      uint64                        `gluamapper:"gas_limit" json:"gas_limit"`
	Assets        map[string]AssetConfiguration `gluamapper:"assets" json:"assets"`
	Logging       logger.Configuration          `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		Database:      defaultDatabase,
		GasLimit:      ledger.DefaultGas,
		Assets:        make(map[string]AssetConfiguration),

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if _, err := address.FromHex(options.Operator); nil != err {
		return nil, fmt.Errorf("operator: %q is not a valid address: %s", options.Operator, err)
	}

	if 0 == options.GasLimit {
		options.GasLimit = ledger.DefaultGas
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// asset symbols are case insensitive
	assets := make(map[string]AssetConfiguration, len(options.Assets))
	for symbol, asset := range options.Assets {
		assets[strings.ToUpper(symbol)] = asset
	}
	options.Assets = assets

	return options, nil
}
