// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type AuthorisationError GenericError
type ConfigurationError GenericError
type ExistsError GenericError
type InvalidError GenericError
type InvariantError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyDeployed             = ExistsError("address already has code")
	ErrAlreadyInitialised          = InvalidError("already initialised")
	ErrAmountOverflow              = InvariantError("amount overflow")
	ErrAssetMismatch               = ConfigurationError("asset mismatch")
	ErrBudgetExhausted             = ProcessError("execution budget exhausted")
	ErrCallDepthExceeded           = ProcessError("call depth exceeded")
	ErrCallerNotController         = AuthorisationError("caller is not the controller")
	ErrCallerNotOperator           = AuthorisationError("caller is not the operator")
	ErrCallerNotOwner              = AuthorisationError("caller is not the owner")
	ErrChildCountMismatch          = InvariantError("instruction slices do not match strategies")
	ErrCodeKindMismatch            = ConfigurationError("code kind mismatch")
	ErrControllerMismatch          = ConfigurationError("controller does not match")
	ErrDatabaseIsNotSet            = ProcessError("database is not set")
	ErrImportLengthMismatch        = InvariantError("import length does not match label set")
	ErrInsufficientAllowance       = InvariantError("insufficient allowance")
	ErrInsufficientBalance         = InvariantError("insufficient balance")
	ErrInsufficientShares          = InvariantError("insufficient shares")
	ErrInstanceExists              = ExistsError("instance already exists")
	ErrInvalidAddress              = InvalidError("invalid address")
	ErrInvalidAddressLength        = InvalidError("invalid address length")
	ErrInvalidConfiguration        = InvalidError("configuration did not return a table")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidCursor               = InvalidError("invalid cursor")
	ErrInvalidLabel                = InvalidError("invalid label")
	ErrInvalidRecord               = InvalidError("invalid record")
	ErrInvalidStructPointer        = InvalidError("invalid struct pointer")
	ErrInvalidTag                  = InvalidError("invalid record tag")
	ErrInvalidWeight               = InvalidError("invalid weight")
	ErrManagerMismatch             = ConfigurationError("strategy manager does not match pool binding")
	ErrManagerNotSet               = ConfigurationError("strategy manager is not set")
	ErrMissingAddress              = ConfigurationError("address is required")
	ErrMissingAsset                = ConfigurationError("asset is required")
	ErrMissingController           = ConfigurationError("controller is required")
	ErrMissingOwner                = ConfigurationError("owner is required")
	ErrMissingVenue                = ConfigurationError("venue is required")
	ErrNoCode                      = NotFoundError("no code at address")
	ErrNotInitialised              = InvalidError("not initialised")
	ErrNotPackedRecord             = InvalidError("not a packed record")
	ErrNotFound                    = NotFoundError("not found")
	ErrNotTransactionOpen          = ProcessError("no transaction is open")
	ErrTargetExceedsCap            = InvariantError("target invested percentage exceeds cap")
	ErrTrailingData                = InvalidError("trailing data after record")
	ErrTransactionAlreadyInUse     = ProcessError("transaction already in use")
	ErrUnknownCodeKind             = ConfigurationError("unknown code kind")
	ErrUnsetImplementation         = ConfigurationError("implementation is not registered")
	ErrVenuePaused                 = ProcessError("venue is paused")
	ErrWeightCountMismatch         = InvariantError("weight count does not match strategies")
	ErrWeightExceedsDenominator    = InvariantError("weight exceeds denominator")
	ErrWeightSumExceedsDenominator = InvariantError("weight sum exceeds denominator")
	ErrZeroAmount                  = InvalidError("amount must be greater than zero")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorisationError) Error() string { return string(e) }
func (e ConfigurationError) Error() string { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e InvariantError) Error() string     { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }

// determine the class of an error
//
// wrapped errors are unwrapped so a failure deep inside a nested call
// keeps its class
func IsErrAuthorisation(e error) bool { var t AuthorisationError; return errors.As(e, &t) }
func IsErrConfiguration(e error) bool { var t ConfigurationError; return errors.As(e, &t) }
func IsErrExists(e error) bool        { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool       { var t InvalidError; return errors.As(e, &t) }
func IsErrInvariant(e error) bool     { var t InvariantError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool      { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool       { var t ProcessError; return errors.As(e, &t) }
