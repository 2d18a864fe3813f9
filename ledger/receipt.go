// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
)

// Event - a record emitted by a contract during a transaction
type Event struct {
	Contract address.Address `json:"contract"`
	Name     string          `json:"name"`
	Fields   json.RawMessage `json:"fields,omitempty"`
}

// Receipt - the outcome of a committed transaction
type Receipt struct {
	Number  uint64          `json:"number"`
	TxId    address.Hash    `json:"txId"`
	Sender  address.Address `json:"sender"`
	GasUsed uint64          `json:"gasUsed"`
	Events  []Event         `json:"events"`
}

// Decode - unmarshal the fields of an event
func (e Event) Decode(fields interface{}) error {
	if 0 == len(e.Fields) {
		return fault.ErrNotFound
	}
	return json.Unmarshal(e.Fields, fields)
}

// Find - the first event with a given name
func (r *Receipt) Find(name string) (Event, bool) {
	for _, e := range r.Events {
		if name == e.Name {
			return e, true
		}
	}
	return Event{}, false
}

// key of a receipt in the receipts pool
func receiptKey(number uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, number)
	return key
}

// History - committed receipts starting from a number
func (l *Ledger) History(start uint64, count int) ([]Receipt, error) {
	cursor := l.store.Pool.Receipts.NewFetchCursor().Seek(receiptKey(start))
	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, err
	}

	receipts := make([]Receipt, 0, len(elements))
	for _, e := range elements {
		var r Receipt
		err := json.Unmarshal(e.Value, &r)
		if nil != err {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// Height - number of committed transactions
func (l *Ledger) Height() uint64 {
	n, _ := l.store.Pool.Meta.GetN(heightKey)
	return n
}
