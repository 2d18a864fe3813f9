// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"math/big"

	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ballast-fi/robo-advisor/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	maxRange util.Range
}

// NewFetchCursor - initialise a cursor to the start of a key range
func (p *PoolHandle) NewFetchCursor() *FetchCursor {

	return &FetchCursor{
		pool: p,
		maxRange: util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		},
	}
}

// Seek - move cursor to specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.pool.prefixKey(key)
	return cursor
}

// to increment the key
var one = big.NewInt(1)

// Fetch - return some elements starting from key
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	results := make([]Element, 0, count)
	err := cursor.iterate(func(key []byte, value []byte) bool {
		results = append(results, Element{
			Key:   key,
			Value: value,
		})
		return len(results) < count
	})

	if n := len(results); n > 0 {
		keyLen := len(results[n-1].Key)
		if len(cursor.maxRange.Start) != keyLen+1 {
			cursor.maxRange.Start = make([]byte, keyLen+1)
		}
		cursor.maxRange.Start[0] = cursor.pool.prefix
		b := big.Int{}
		next := b.SetBytes(results[n-1].Key).Add(&b, one).Bytes()

		if len(next) > keyLen {
			// key was all 0xff, nothing can follow it
			cursor.maxRange.Start = cursor.pool.limit
		} else {
			// keep the key width, leading zero bytes are lost by big.Int
			for i := range cursor.maxRange.Start[1:] {
				cursor.maxRange.Start[1+i] = 0
			}
			copy(cursor.maxRange.Start[1+keyLen-len(next):], next)
		}
	}
	return results, err
}

// Map - run a function on all elements in the range
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrInvalidCursor
	}

	var err error
	iterErr := cursor.iterate(func(key []byte, value []byte) bool {
		err = f(key, value)
		return nil == err
	})
	if nil == err {
		err = iterErr
	}
	return err
}

// visit copies of each element until f returns false
func (cursor *FetchCursor) iterate(f func(key []byte, value []byte) bool) error {
	cursor.pool.store.RLock()
	defer cursor.pool.store.RUnlock()

	db := cursor.pool.database()
	if nil == db {
		return fault.ErrDatabaseIsNotSet
	}

	iter := db.NewIterator(&cursor.maxRange, nil)

iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		if !f(dataKey, dataValue) {
			break iterating
		}
	}
	iter.Release()
	return iter.Error()
}
