// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
)

// CallError - failure of a nested contract call
//
// the original error is kept so its class can still be determined
type CallError struct {
	Target string
	Method string
	Err    error
}

// NewCallError - wrap the failure of a call to target.method
func NewCallError(target string, method string, err error) error {
	return &CallError{
		Target: target,
		Method: method,
		Err:    err,
	}
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %s.%s: %s", e.Target, e.Method, e.Err)
}

// Unwrap - access the wrapped error
func (e *CallError) Unwrap() error { return e.Err }

// IsErrDependency - true if a nested call failed
func IsErrDependency(e error) bool {
	var t *CallError
	return errors.As(e, &t)
}

// Cause - the innermost error of a chain of nested call failures
func Cause(e error) error {
	for {
		var t *CallError
		if !errors.As(e, &t) {
			return e
		}
		e = t.Err
	}
}
