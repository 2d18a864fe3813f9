// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	cache "github.com/patrickmn/go-cache"
)

// Cache - the write overlay of an open transaction
type Cache interface {
	Get(string) ([]byte, int, bool)
	Set(int, string, []byte)
	Count() int
	Clear()
}

// overlay operations
const (
	dbPut = iota
	dbDelete
)

type dbCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    int
	value []byte
}

// items stay until the transaction ends
func newCache() Cache {
	return &dbCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get - returns value, operation and whether the key was touched
//
// a deleted key is found with op == dbDelete and an empty value
func (c *dbCache) Get(key string) ([]byte, int, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return []byte{}, dbPut, false
	}

	data := obj.(cacheData)
	return data.value, data.op, true
}

func (c *dbCache) Set(op int, key string, value []byte) {
	cached := cacheData{
		op:    op,
		value: value,
	}
	c.cache.Set(key, cached, cache.NoExpiration)
}

func (c *dbCache) Count() int {
	return c.cache.ItemCount()
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
