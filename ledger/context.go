// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"
	"encoding/json"

	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/storage"
)

// state shared by every frame of one transaction
type execution struct {
	store     *storage.Store
	trx       storage.Transaction
	log       *logger.L
	origin    address.Address
	gasLimit  uint64
	gasUsed   uint64
	exhausted bool
	events    []Event
}

// Context - a single call frame
type Context struct {
	exec   *execution
	self   address.Address
	sender address.Address
	kind   Kind
	depth  int
}

// Self - the address whose code is running
func (c *Context) Self() address.Address {
	return c.self
}

// Sender - the immediate caller
func (c *Context) Sender() address.Address {
	return c.sender
}

// Origin - the account that started the transaction
func (c *Context) Origin() address.Address {
	return c.exec.origin
}

// Kind - kind of code running in this frame, empty for the outer account
func (c *Context) Kind() Kind {
	return c.kind
}

// Log - the ledger's log channel
func (c *Context) Log() *logger.L {
	return c.exec.log
}

// GasUsed - gas consumed so far by the transaction
func (c *Context) GasUsed() uint64 {
	return c.exec.gasUsed
}

func (c *Context) charge(cost uint64) error {
	e := c.exec
	if e.exhausted || e.gasLimit-e.gasUsed < cost {
		e.exhausted = true
		e.gasUsed = e.gasLimit
		return fault.ErrBudgetExhausted
	}
	e.gasUsed += cost
	return nil
}

// state key is the contract address followed by the contract's key
func (c *Context) stateKey(key string) []byte {
	if len(key) > maxStateKeyLen {
		logger.Panicf("ledger: state key too long: %q", key)
	}
	k := make([]byte, 0, address.Length+len(key))
	k = append(k, c.self[:]...)
	return append(k, key...)
}

// Get - read a value from the contract's own storage
//
// returns nil for a missing key
func (c *Context) Get(key string) ([]byte, error) {
	if err := c.charge(GasRead); nil != err {
		return nil, err
	}
	return c.exec.trx.Get(c.exec.store.Pool.State, c.stateKey(key)), nil
}

// Put - write a value to the contract's own storage
func (c *Context) Put(key string, value []byte) error {
	if err := c.charge(GasWrite); nil != err {
		return err
	}
	c.exec.trx.Put(c.exec.store.Pool.State, c.stateKey(key), value)
	return nil
}

// Delete - remove a key from the contract's own storage
func (c *Context) Delete(key string) error {
	if err := c.charge(GasWrite); nil != err {
		return err
	}
	c.exec.trx.Delete(c.exec.store.Pool.State, c.stateKey(key))
	return nil
}

// GetN - read a big endian uint64, zero if missing
func (c *Context) GetN(key string) (uint64, error) {
	buffer, err := c.Get(key)
	if nil != err || nil == buffer {
		return 0, err
	}
	if 8 != len(buffer) {
		return 0, fault.ErrInvalidRecord
	}
	return binary.BigEndian.Uint64(buffer), nil
}

// PutN - write a big endian uint64
func (c *Context) PutN(key string, value uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return c.Put(key, buffer)
}

// GetAddress - read an address, zero if missing
func (c *Context) GetAddress(key string) (address.Address, error) {
	buffer, err := c.Get(key)
	if nil != err || nil == buffer {
		return address.Zero, err
	}
	return address.FromBytes(buffer)
}

// PutAddress - write an address
func (c *Context) PutAddress(key string, a address.Address) error {
	return c.Put(key, a.Bytes())
}

// GetBool - read a flag, false if missing
func (c *Context) GetBool(key string) (bool, error) {
	buffer, err := c.Get(key)
	if nil != err {
		return false, err
	}
	return 1 == len(buffer) && 1 == buffer[0], nil
}

// PutBool - write a flag
func (c *Context) PutBool(key string, flag bool) error {
	if flag {
		return c.Put(key, []byte{1})
	}
	return c.Put(key, []byte{0})
}

// Emit - record an event in the transaction receipt
func (c *Context) Emit(name string, fields interface{}) error {
	if err := c.charge(GasEvent); nil != err {
		return err
	}
	var raw json.RawMessage
	if nil != fields {
		buffer, err := json.Marshal(fields)
		if nil != err {
			return err
		}
		raw = buffer
	}
	c.exec.events = append(c.exec.events, Event{
		Contract: c.self,
		Name:     name,
		Fields:   raw,
	})
	return nil
}

// CodeAt - what is deployed at an address
func (c *Context) CodeAt(a address.Address) (Code, bool, error) {
	if err := c.charge(GasRead); nil != err {
		return Code{}, false, err
	}
	buffer := c.exec.trx.Get(c.exec.store.Pool.Code, a[:])
	if nil == buffer {
		return Code{}, false, nil
	}
	code, err := unpackCode(buffer)
	if nil != err {
		return Code{}, false, err
	}
	return code, true, nil
}

// Call - run fn as the code at target
//
// the new frame has Self = target and Sender = the current Self; target
// must hold code of the expected kind.  Any error is wrapped so the
// caller can see which call failed.
func (c *Context) Call(target address.Address, kind Kind, method string, fn func(*Context) error) error {
	err := c.call(target, kind, fn)
	if nil != err {
		return fault.NewCallError(target.String(), method, err)
	}
	return nil
}

func (c *Context) call(target address.Address, kind Kind, fn func(*Context) error) error {
	if c.depth >= MaxCallDepth {
		return fault.ErrCallDepthExceeded
	}
	if err := c.charge(GasCall); nil != err {
		return err
	}

	code, found, err := c.CodeAt(target)
	if nil != err {
		return err
	}
	if !found {
		return fault.ErrNoCode
	}
	if code.Kind != kind {
		return fault.ErrCodeKindMismatch
	}

	frame := &Context{
		exec:   c.exec,
		self:   target,
		sender: c.self,
		kind:   kind,
		depth:  c.depth + 1,
	}
	return fn(frame)
}

// Create - deploy new code of a kind at an address derived from the
// deployer's creation count
func (c *Context) Create(kind Kind) (address.Address, error) {
	if !IsRegistered(kind) {
		return address.Zero, fault.ErrUnknownCodeKind
	}

	nonceKey := append([]byte("nonce:"), c.self[:]...)
	nonce, _ := c.exec.trx.GetN(c.exec.store.Pool.Meta, nonceKey)

	salt := address.Keccak256(beUint64(nonce))
	a := address.Create2(c.self, salt, address.Keccak256([]byte(kind)))

	err := c.deploy(a, Code{Kind: kind, Deployer: c.self})
	if nil != err {
		return address.Zero, err
	}
	c.exec.trx.PutN(c.exec.store.Pool.Meta, nonceKey, nonce+1)
	return a, nil
}

// DeployCode - deploy an implementation of a kind and version
//
// the address depends only on the deployer, kind and version so a
// second deployment of the same version fails
func (c *Context) DeployCode(kind Kind, version uint64) (address.Address, error) {
	if !IsRegistered(kind) {
		return address.Zero, fault.ErrUnknownCodeKind
	}
	a := ImplementationAddress(c.self, kind, version)
	err := c.deploy(a, Code{Kind: kind, Version: version, Deployer: c.self})
	if nil != err {
		return address.Zero, err
	}
	return a, nil
}

// Clone - deploy a proxy instance of an implementation
//
// the address is address.PredictClone(Self, salt, implementation)
func (c *Context) Clone(implementation address.Address, salt address.Hash) (address.Address, error) {
	impl, found, err := c.CodeAt(implementation)
	if nil != err {
		return address.Zero, err
	}
	if !found {
		return address.Zero, fault.ErrNoCode
	}

	// a clone of a clone forwards to the same implementation
	if impl.IsProxy() {
		implementation = impl.Implementation
	}

	a := address.PredictClone(c.self, salt, implementation)
	code := Code{
		Kind:           impl.Kind,
		Version:        impl.Version,
		Implementation: implementation,
		Deployer:       c.self,
	}
	err = c.deploy(a, code)
	if nil != err {
		return address.Zero, err
	}
	return a, nil
}

func (c *Context) deploy(a address.Address, code Code) error {
	if err := c.charge(GasDeploy); nil != err {
		return err
	}
	if c.exec.trx.Has(c.exec.store.Pool.Code, a[:]) {
		return fault.ErrAlreadyDeployed
	}
	c.exec.trx.Put(c.exec.store.Pool.Code, a[:], code.pack())
	c.exec.log.Debugf("deploy: %s  kind: %s  version: %d  proxy: %t", a, code.Kind, code.Version, code.IsProxy())
	return nil
}

// ImplementationAddress - where DeployCode puts an implementation
func ImplementationAddress(deployer address.Address, kind Kind, version uint64) address.Address {
	salt := address.Keccak256([]byte(kind), beUint64(version))
	return address.Create2(deployer, salt, salt)
}

func beUint64(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}
