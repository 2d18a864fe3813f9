// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/ballast-fi/robo-advisor/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Code     *PoolHandle `prefix:"C"`
	State    *PoolHandle `prefix:"S"`
	Receipts *PoolHandle `prefix:"R"`
	Meta     *PoolHandle `prefix:"M"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Store - an open ledger database
type Store struct {
	sync.RWMutex
	db   *leveldb.DB
	trx  Transaction
	Pool pools
}

// Open - open or create a database directory
func Open(database string, readOnly bool) (*Store, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(database, opt)
	if nil != err {
		return nil, err
	}
	return setup(db, readOnly)
}

// OpenMemory - a database that is discarded on Close
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return setup(db, ReadWrite)
}

func setup(db *leveldb.DB, readOnly bool) (*Store, error) {
	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	version, err := getVersion(db)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		logger.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}

	if 0 == version && !readOnly {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}
	} else if version != currentDBVersion {
		logger.Criticalf("database is inconsistent: %d  current: %d", version, currentDBVersion)
		return nil, fmt.Errorf("database is inconsistent: %d  current: %d", version, currentDBVersion)
	}

	s := &Store{
		db:  db,
		trx: newTransaction(db, newCache()),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(s.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&s.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			store:  s,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	ok = true // prevent db close
	return s, nil
}

// Close - close the database connection
func (s *Store) Close() {
	s.Lock()
	defer s.Unlock()
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// NewDBTransaction - start the single read/write transaction
//
// fails if the previous transaction has not been committed or aborted
func (s *Store) NewDBTransaction() (Transaction, error) {
	s.RLock()
	defer s.RUnlock()
	if nil == s.db {
		return nil, fault.ErrDatabaseIsNotSet
	}
	err := s.trx.Begin()
	if nil != err {
		return nil, err
	}
	return s.trx, nil
}

// Dump - visit every raw key/value in the database, prefixes included
func (s *Store) Dump(f func(key []byte, value []byte) error) error {
	s.RLock()
	defer s.RUnlock()
	if nil == s.db {
		return fault.ErrDatabaseIsNotSet
	}

	iter := s.db.NewIterator(nil, nil)
	var err error
	for iter.Next() {
		err = f(iter.Key(), iter.Value())
		if nil != err {
			break
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return err
}

// return the version number, 0 for an empty database
func getVersion(db *leveldb.DB) (int, error) {
	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	} else if nil != err {
		return 0, err
	}

	if 4 != len(versionValue) {
		return 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	return int(binary.BigEndian.Uint32(versionValue)), nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
