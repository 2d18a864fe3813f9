// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/storage"
)

var heightKey = []byte("height")

// Ledger - serialised transaction execution over a store
type Ledger struct {
	sync.Mutex
	store *storage.Store
	log   *logger.L
}

// New - create a ledger over an open store
func New(store *storage.Store) *Ledger {
	return &Ledger{
		store: store,
		log:   logger.New("ledger"),
	}
}

// Store - the underlying store
func (l *Ledger) Store() *storage.Store {
	return l.store
}

// Execute - run fn as a transaction sent by sender
//
// if fn fails or the gas limit is reached nothing is written, otherwise
// all writes are committed together with a receipt
func (l *Ledger) Execute(sender address.Address, gasLimit uint64, fn func(*Context) error) (*Receipt, error) {
	l.Lock()
	defer l.Unlock()

	ctx, err := l.begin(sender, gasLimit)
	if nil != err {
		return nil, err
	}
	e := ctx.exec

	err = fn(ctx)
	if nil == err && e.exhausted {
		err = fault.ErrBudgetExhausted
	}
	if nil != err {
		e.trx.Abort()
		l.log.Warnf("abort: sender: %s  gas: %d  error: %s", sender, e.gasUsed, err)
		return nil, err
	}

	number := l.Height() + 1
	receipt := &Receipt{
		Number:  number,
		TxId:    address.Keccak256([]byte("tx"), beUint64(number), sender[:]),
		Sender:  sender,
		GasUsed: e.gasUsed,
		Events:  e.events,
	}
	if nil == receipt.Events {
		receipt.Events = []Event{}
	}

	data, err := json.Marshal(receipt)
	if nil != err {
		e.trx.Abort()
		return nil, err
	}
	e.trx.Put(l.store.Pool.Receipts, receiptKey(number), data)
	e.trx.PutN(l.store.Pool.Meta, heightKey, number)

	err = e.trx.Commit()
	if nil != err {
		l.log.Criticalf("commit: %d  error: %s", number, err)
		return nil, err
	}

	l.log.Infof("commit: %d  txId: %s  sender: %s  events: %d", number, receipt.TxId, sender, len(receipt.Events))
	l.log.Debugf("gas used: %d of %d", e.gasUsed, gasLimit)
	return receipt, nil
}

// Estimate - run fn as Execute would but discard the result
//
// returns the gas used; the gas used is also returned when fn fails so
// a caller can see how far it got
func (l *Ledger) Estimate(sender address.Address, gasLimit uint64, fn func(*Context) error) (uint64, error) {
	l.Lock()
	defer l.Unlock()

	ctx, err := l.begin(sender, gasLimit)
	if nil != err {
		return 0, err
	}
	e := ctx.exec
	defer e.trx.Abort()

	err = fn(ctx)
	if nil == err && e.exhausted {
		err = fault.ErrBudgetExhausted
	}
	return e.gasUsed, err
}

// View - run a read only function, any writes are discarded
func (l *Ledger) View(fn func(*Context) error) error {
	_, err := l.Estimate(address.Zero, UnlimitedGas, fn)
	return err
}

// CodeAt - committed code at an address
func (l *Ledger) CodeAt(a address.Address) (Code, bool, error) {
	buffer := l.store.Pool.Code.Get(a[:])
	if nil == buffer {
		return Code{}, false, nil
	}
	code, err := unpackCode(buffer)
	if nil != err {
		return Code{}, false, err
	}
	return code, true, nil
}

func (l *Ledger) begin(sender address.Address, gasLimit uint64) (*Context, error) {
	trx, err := l.store.NewDBTransaction()
	if nil != err {
		return nil, err
	}

	e := &execution{
		store:    l.store,
		trx:      trx,
		log:      l.log,
		origin:   sender,
		gasLimit: gasLimit,
	}
	ctx := &Context{
		exec:   e,
		self:   sender,
		sender: address.Zero,
		depth:  0,
	}
	return ctx, nil
}
