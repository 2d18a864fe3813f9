// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/ballast-fi/robo-advisor/fault"
)

type accessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newTransaction(db *leveldb.DB, cache Cache) Transaction {
	return &accessData{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
	}
}

func (d *accessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.ErrTransactionAlreadyInUse
	}
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = true
	return nil
}

func (d *accessData) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}

func (d *accessData) Put(p *PoolHandle, key []byte, value []byte) {
	d.mustBeOpen("Put")

	prefixedKey := p.prefixKey(key)
	stored := make([]byte, len(value))
	copy(stored, value)

	d.cache.Set(dbPut, string(prefixedKey), stored)
	d.batch.Put(prefixedKey, stored)
}

func (d *accessData) PutN(p *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	d.Put(p, key, buffer)
}

func (d *accessData) Delete(p *PoolHandle, key []byte) {
	d.mustBeOpen("Delete")

	prefixedKey := p.prefixKey(key)
	d.cache.Set(dbDelete, string(prefixedKey), []byte{})
	d.batch.Delete(prefixedKey)
}

// Get - read through the overlay
//
// returns nil if the key is absent or was deleted in this transaction
func (d *accessData) Get(p *PoolHandle, key []byte) []byte {
	prefixedKey := p.prefixKey(key)

	value, op, found := d.cache.Get(string(prefixedKey))
	if found {
		if dbDelete == op {
			return nil
		}
		return value
	}

	value, err := d.db.Get(prefixedKey, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("transaction.Get", err)
	return value
}

// GetN - read a record and decode it as a big endian uint64
func (d *accessData) GetN(p *PoolHandle, key []byte) (uint64, bool) {
	buffer := d.Get(p, key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("transaction.GetN truncated record for: %x: %x", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

func (d *accessData) Has(p *PoolHandle, key []byte) bool {
	prefixedKey := p.prefixKey(key)

	_, op, found := d.cache.Get(string(prefixedKey))
	if found {
		return dbPut == op
	}

	value, err := d.db.Has(prefixedKey, nil)
	logger.PanicIfError("transaction.Has", err)
	return value
}

// Size - number of keys touched so far
func (d *accessData) Size() int {
	return d.cache.Count()
}

func (d *accessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	if !d.inUse {
		return fault.ErrNotTransactionOpen
	}

	err := d.db.Write(d.batch, nil)
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
	return err
}

func (d *accessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

func (d *accessData) mustBeOpen(operation string) {
	d.Lock()
	defer d.Unlock()
	if !d.inUse {
		logger.Panicf("transaction.%s: %s", operation, fault.ErrNotTransactionOpen)
	}
}
