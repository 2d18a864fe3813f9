// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// Transaction - buffered atomic update of the pools
//
// writes are collected in a LevelDB batch and mirrored in a cache so
// that reads inside the transaction see them; nothing reaches the
// database until Commit
type Transaction interface {
	Abort()
	Begin() error
	Commit() error
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	InUse() bool
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Size() int
}
