// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - current addresses of every role
//
// two mappings are kept:
//
//   version:   label -> implementation address (asset independent)
//   instance:  Keccak-256(asset ++ label) -> live instance for an asset
//
// writes overwrite, an overwritten address is only reachable through
// ledger history.  The owner (the factory that deployed the registry)
// may write both; the admin may only set versions and import contracts.
package registry

import (
	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/oracle"
)

// Name - role name of the registry
const Name = "ContractRegistry"

// FactoryName - role name of the factory
const FactoryName = "PoolFactory"

// Kind - code kind of a registry
const Kind = ledger.Kind(Name)

// ImportNames - the well known roles set by ImportContracts, in order
var ImportNames = []string{FactoryName, oracle.Name}

func init() {
	ledger.Register(Kind)
}

const (
	ownerKey    = "owner"
	adminKey    = "admin"
	versionPre  = "version:"
	instancePre = "instance:"
)

// UpgradedEvent - a version entry was written
type UpgradedEvent struct {
	Label   address.Label   `json:"label"`
	Address address.Address `json:"address"`
}

// InstanceEvent - an instance entry was written
type InstanceEvent struct {
	Asset   address.Address `json:"asset"`
	Label   address.Label   `json:"label"`
	Key     address.Hash    `json:"key"`
	Address address.Address `json:"address"`
}

func versionKey(label address.Label) string {
	return versionPre + string(label[:])
}

func instanceKey(key address.Hash) string {
	return instancePre + string(key[:])
}

// Deploy - create a registry owned by the caller
func Deploy(ctx *ledger.Context, admin address.Address) (address.Address, error) {
	if admin.IsZero() {
		return address.Zero, fault.ErrMissingAddress
	}
	r, err := ctx.Create(Kind)
	if nil != err {
		return address.Zero, err
	}
	err = ctx.Call(r, Kind, "constructor", func(ctx *ledger.Context) error {
		if err := ctx.PutAddress(ownerKey, ctx.Sender()); nil != err {
			return err
		}
		return ctx.PutAddress(adminKey, admin)
	})
	if nil != err {
		return address.Zero, err
	}
	return r, nil
}

// UpgradeTo - set the current address of a role
func UpgradeTo(ctx *ledger.Context, r address.Address, label address.Label, a address.Address) error {
	return ctx.Call(r, Kind, "UpgradeTo", func(ctx *ledger.Context) error {
		if err := ownerOrAdmin(ctx); nil != err {
			return err
		}
		return setVersion(ctx, label, a)
	})
}

// ImportContracts - set the addresses of the roles in ImportNames
//
// nothing is written unless every address is valid
func ImportContracts(ctx *ledger.Context, r address.Address, addresses []address.Address) error {
	return ctx.Call(r, Kind, "ImportContracts", func(ctx *ledger.Context) error {
		if err := ownerOrAdmin(ctx); nil != err {
			return err
		}
		if len(addresses) != len(ImportNames) {
			return fault.ErrImportLengthMismatch
		}
		for _, a := range addresses {
			if a.IsZero() {
				return fault.ErrMissingAddress
			}
		}
		for i, name := range ImportNames {
			if err := setVersion(ctx, address.NewLabel(name), addresses[i]); nil != err {
				return err
			}
		}
		return nil
	})
}

// Lookup - current address of a role
func Lookup(ctx *ledger.Context, r address.Address, label address.Label) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(r, Kind, "Lookup", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(versionKey(label))
		if nil == err && result.IsZero() {
			return fault.ErrNotFound
		}
		return err
	})
	return result, err
}

// SetInstance - record the live instance of a role for an asset
func SetInstance(ctx *ledger.Context, r address.Address, asset address.Address, label address.Label, a address.Address) error {
	return ctx.Call(r, Kind, "SetInstance", func(ctx *ledger.Context) error {
		owner, err := ctx.GetAddress(ownerKey)
		if nil != err {
			return err
		}
		if ctx.Sender() != owner {
			return fault.ErrCallerNotOwner
		}
		if asset.IsZero() {
			return fault.ErrMissingAsset
		}
		if a.IsZero() {
			return fault.ErrMissingAddress
		}
		key := address.StrategyKey(asset, label)
		if err := ctx.PutAddress(instanceKey(key), a); nil != err {
			return err
		}
		return ctx.Emit("InstanceSet", InstanceEvent{Asset: asset, Label: label, Key: key, Address: a})
	})
}

// Instance - live instance of a role for an asset, zero if none
func Instance(ctx *ledger.Context, r address.Address, asset address.Address, label address.Label) (address.Address, error) {
	return InstanceByKey(ctx, r, address.StrategyKey(asset, label))
}

// InstanceByKey - live instance for a combined asset/role key, zero if none
func InstanceByKey(ctx *ledger.Context, r address.Address, key address.Hash) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(r, Kind, "Instance", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(instanceKey(key))
		return err
	})
	return result, err
}

// Owner - the account allowed to write instances
func Owner(ctx *ledger.Context, r address.Address) (address.Address, error) {
	result := address.Zero
	err := ctx.Call(r, Kind, "Owner", func(ctx *ledger.Context) error {
		var err error
		result, err = ctx.GetAddress(ownerKey)
		return err
	})
	return result, err
}

func ownerOrAdmin(ctx *ledger.Context) error {
	owner, err := ctx.GetAddress(ownerKey)
	if nil != err {
		return err
	}
	admin, err := ctx.GetAddress(adminKey)
	if nil != err {
		return err
	}
	if ctx.Sender() != owner && ctx.Sender() != admin {
		return fault.ErrCallerNotOperator
	}
	return nil
}

func setVersion(ctx *ledger.Context, label address.Label, a address.Address) error {
	if a.IsZero() {
		return fault.ErrMissingAddress
	}
	if err := ctx.PutAddress(versionKey(label), a); nil != err {
		return err
	}
	return ctx.Emit("Upgraded", UpgradedEvent{Label: label, Address: a})
}
