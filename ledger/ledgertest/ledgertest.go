// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgertest - helpers for tests that run contracts
package ledgertest

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/storage"
)

const testingDirName = "testing"

// Operator - the account used to deploy and administer in tests
var Operator = Account(0x0a)

// Account - a recognisable account address
func Account(b byte) address.Address {
	return address.Address{0xac, 0xc0, 0x00, b}
}

// Main - run the tests of a package with logging sent to a temporary
// directory
//
// use as:  func TestMain(m *testing.M) { ledgertest.Main(m) }
func Main(m *testing.M) {
	os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	rc := m.Run()

	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(rc)
}

// New - a ledger over an in-memory store, call the returned function
// to release it
func New(t *testing.T) (*ledger.Ledger, func()) {
	s, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("open memory store error: %s", err)
	}
	return ledger.New(s), s.Close
}

// MustExecute - run a transaction that is expected to succeed
func MustExecute(t *testing.T, l *ledger.Ledger, sender address.Address, fn func(*ledger.Context) error) *ledger.Receipt {
	t.Helper()
	receipt, err := l.Execute(sender, ledger.DefaultGas, fn)
	if nil != err {
		t.Fatalf("execute error: %s", err)
	}
	return receipt
}

// MustView - run a read only call that is expected to succeed
func MustView(t *testing.T, l *ledger.Ledger, fn func(*ledger.Context) error) {
	t.Helper()
	if err := l.View(fn); nil != err {
		t.Fatalf("view error: %s", err)
	}
}
