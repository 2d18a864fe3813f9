// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/deployment"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/ledger/ledgertest"
	"github.com/ballast-fi/robo-advisor/weight"
)

const testOperator = "0x0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a"

func TestMain(m *testing.M) {
	ledgertest.Main(m)
}

func writeConfiguration(t *testing.T, text string) (string, func()) {
	dir, err := ioutil.TempDir("", "robo-advisor-conf")
	require.NoError(t, err, "temp dir")

	file := filepath.Join(dir, "robo-advisor.conf")
	err = ioutil.WriteFile(file, []byte(text), 0600)
	require.NoError(t, err, "write configuration")

	return file, func() {
		os.RemoveAll(dir)
	}
}

func TestGetConfiguration(t *testing.T) {
	file, cleanup := writeConfiguration(t, `
local M = {}
M.data_directory = "."
M.operator = "`+testOperator+`"
M.gas_limit = 1000000
M.assets = {
    dai = {
        token = "0x6b175474e89094c44da98b954eedeac495271d0f",
        ctoken = "cDAI",
        uniswap_router = os.getenv("ROBO_TEST_ROUTER") or "",
    },
}
M.logging = {
    size = 20000,
    count = 3,
    levels = {
        DEFAULT = "info",
        ledger = "debug",
    },
}
return M
`)
	defer cleanup()

	config, err := getConfiguration(file)
	require.NoError(t, err, "getConfiguration")

	dir := filepath.Dir(file)
	assert.Equal(t, filepath.Clean(dir), config.DataDirectory, "data directory")
	assert.Equal(t, filepath.Join(dir, defaultDatabase), config.Database, "database")
	assert.Equal(t, filepath.Join(dir, defaultLogDirectory), config.Logging.Directory, "log directory")
	assert.Equal(t, defaultLogFile, config.Logging.File, "log file")
	assert.Equal(t, 20000, config.Logging.Size, "log size")
	assert.Equal(t, 3, config.Logging.Count, "log count")
	assert.Equal(t, "debug", config.Logging.Levels["ledger"], "ledger level")
	assert.Equal(t, testOperator, config.Operator, "operator")
	assert.Equal(t, uint64(1000000), config.GasLimit, "gas limit")

	require.Contains(t, config.Assets, "DAI", "symbols are upper cased")
	dai := config.Assets["DAI"]
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", dai.Token, "token")
	assert.Equal(t, "cDAI", dai.CToken, "ctoken")
	assert.Equal(t, "", dai.AToken, "atoken")
}

func TestGetConfigurationDefaults(t *testing.T) {
	file, cleanup := writeConfiguration(t, `
return {
    data_directory = ".",
    operator = "`+testOperator+`",
}
`)
	defer cleanup()

	config, err := getConfiguration(file)
	require.NoError(t, err, "getConfiguration")

	assert.Equal(t, uint64(ledger.DefaultGas), config.GasLimit, "gas limit")
	assert.Equal(t, defaultLogSize, config.Logging.Size, "log size")
	assert.Equal(t, defaultLogCount, config.Logging.Count, "log count")
	assert.Equal(t, 0, len(config.Assets), "assets")
}

func TestGetConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no data directory", `return { operator = "` + testOperator + `" }`},
		{"missing data directory", `return { data_directory = "/no/such/directory", operator = "` + testOperator + `" }`},
		{"no operator", `return { data_directory = "." }`},
		{"bad operator", `return { data_directory = ".", operator = "0x1234" }`},
		{"lua error", `return { data_directory = `},
	}

	for _, item := range tests {
		file, cleanup := writeConfiguration(t, item.text)
		_, err := getConfiguration(file)
		assert.Error(t, err, item.name)
		cleanup()
	}
}

func TestCheckAsset(t *testing.T) {
	l, closer := ledgertest.New(t)
	defer closer()

	o := deployment.New(l, ledgertest.Operator, 0)
	market, err := o.LocalMarket("DAI", weight.Percent(4), weight.Percent(6), nil)
	require.NoError(t, err, "local market")

	router := ledgertest.Account(0x77)
	config := &Configuration{
		Assets: map[string]AssetConfiguration{
			"DAI": {
				Router: router.String(),
			},
			"USDC": {
				Token: "USDC",
			},
			"USDT": {},
		},
	}

	asset, err := checkAsset("dai", config, l)
	require.NoError(t, err, "recorded names")
	assert.Equal(t, market.Token, asset.Token, "token")
	assert.Equal(t, market.CToken, asset.CToken, "ctoken")
	assert.Equal(t, market.AToken, asset.AToken, "atoken")
	assert.Equal(t, router, asset.Router, "router")
	assert.Equal(t, address.Zero, asset.Comptroller, "optional")

	_, err = checkAsset("", config, l)
	assert.Equal(t, ErrRequiredAsset, err, "blank")

	_, err = checkAsset("WBTC", config, l)
	assert.Equal(t, ErrUnknownAsset, err, "not configured")

	_, err = checkAsset("USDC", config, l)
	assert.Error(t, err, "unrecorded explicit name")

	_, err = checkAsset("USDT", config, l)
	assert.Equal(t, fault.ErrMissingAsset, err, "no token")
}

func TestCheckWeights(t *testing.T) {
	weights, err := checkWeights("20,80", true)
	assert.NoError(t, err)
	assert.Equal(t, []weight.Weight{20000000, 80000000}, weights)

	weights, err = checkWeights("", false)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(weights))

	_, err = checkWeights("", true)
	assert.Equal(t, ErrRequiredWeights, err)
}
