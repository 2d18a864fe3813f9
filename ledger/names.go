// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
)

// well known addresses are kept in the meta pool so that tools can
// find a deployment without scanning receipts
var namePrefix = []byte("name:")

func nameKey(name string) []byte {
	return append(append([]byte{}, namePrefix...), name...)
}

// SetName - publish an address under a name, committed with the
// transaction
func (c *Context) SetName(name string, a address.Address) error {
	if "" == name {
		return fault.ErrInvalidLabel
	}
	if err := c.charge(GasWrite); nil != err {
		return err
	}
	c.exec.trx.Put(c.exec.store.Pool.Meta, nameKey(name), a[:])
	c.exec.log.Debugf("name: %q  address: %s", name, a)
	return nil
}

// Name - address published under a name, including uncommitted writes
func (c *Context) Name(name string) (address.Address, bool, error) {
	if err := c.charge(GasRead); nil != err {
		return address.Zero, false, err
	}
	buffer := c.exec.trx.Get(c.exec.store.Pool.Meta, nameKey(name))
	if nil == buffer {
		return address.Zero, false, nil
	}
	a, err := address.FromBytes(buffer)
	return a, nil == err, err
}

// Name - committed address published under a name
func (l *Ledger) Name(name string) (address.Address, bool) {
	buffer := l.store.Pool.Meta.Get(nameKey(name))
	if nil == buffer {
		return address.Zero, false
	}
	a, err := address.FromBytes(buffer)
	if nil != err {
		l.log.Errorf("name: %q  invalid address: %x", name, buffer)
		return address.Zero, false
	}
	return a, true
}

// errEndOfNames stops the scan at the end of the name keys
var errEndOfNames = fault.NotFoundError("end of names")

// Names - all committed names
func (l *Ledger) Names() (map[string]address.Address, error) {
	names := make(map[string]address.Address)
	cursor := l.store.Pool.Meta.NewFetchCursor().Seek(namePrefix)
	err := cursor.Map(func(key []byte, value []byte) error {
		if !bytes.HasPrefix(key, namePrefix) {
			return errEndOfNames
		}
		a, err := address.FromBytes(value)
		if nil != err {
			return err
		}
		names[string(key[len(namePrefix):])] = a
		return nil
	})
	if errEndOfNames == err {
		err = nil
	}
	return names, err
}
