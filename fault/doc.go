// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// Errors are grouped into classes so that callers can decide how to
// react without knowing the specific instance:
//
//   ConfigurationError - a parameter or registry entry is missing or wrong
//   InvariantError     - an operation would break a numeric invariant
//   AuthorisationError - caller is not allowed to perform the operation
//   CallError          - a nested contract call failed (dependency failure)
package fault
