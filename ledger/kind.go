// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"
	"sync"
)

// Kind - the type of code deployed at an address
type Kind string

var kinds struct {
	sync.RWMutex
	registered map[Kind]struct{}
}

// Register - make a kind of code deployable
//
// contract packages call this from init
func Register(kind Kind) {
	kinds.Lock()
	defer kinds.Unlock()
	if nil == kinds.registered {
		kinds.registered = make(map[Kind]struct{})
	}
	kinds.registered[kind] = struct{}{}
}

// IsRegistered - true if the kind can be deployed
func IsRegistered(kind Kind) bool {
	kinds.RLock()
	defer kinds.RUnlock()
	_, ok := kinds.registered[kind]
	return ok
}

// RegisteredKinds - sorted list of all deployable kinds
func RegisteredKinds() []Kind {
	kinds.RLock()
	defer kinds.RUnlock()
	result := make([]Kind, 0, len(kinds.registered))
	for k := range kinds.registered {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
