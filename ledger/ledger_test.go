// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"errors"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballast-fi/robo-advisor/address"
	"github.com/ballast-fi/robo-advisor/fault"
	"github.com/ballast-fi/robo-advisor/ledger"
	"github.com/ballast-fi/robo-advisor/storage"
)

const (
	testingDirName = "testing"
	counterKind    = ledger.Kind("Counter")
	otherKind      = ledger.Kind("Other")
)

var operator = address.Address{0x0a}

func init() {
	ledger.Register(counterKind)
	ledger.Register(otherKind)
}

func TestMain(m *testing.M) {
	os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	rc := m.Run()

	logger.Finalise()
	os.RemoveAll(testingDirName)
	os.Exit(rc)
}

func setupLedger(t *testing.T) (*ledger.Ledger, func()) {
	s, err := storage.OpenMemory()
	require.Nil(t, err)
	return ledger.New(s), s.Close
}

// a minimal contract: increments a stored counter
func increment(ctx *ledger.Context, target address.Address) error {
	return ctx.Call(target, counterKind, "Increment", func(ctx *ledger.Context) error {
		n, err := ctx.GetN("count")
		if nil != err {
			return err
		}
		err = ctx.PutN("count", n+1)
		if nil != err {
			return err
		}
		return ctx.Emit("Incremented", map[string]uint64{"count": n + 1})
	})
}

func count(ctx *ledger.Context, target address.Address) (uint64, error) {
	n := uint64(0)
	err := ctx.Call(target, counterKind, "Count", func(ctx *ledger.Context) error {
		var err error
		n, err = ctx.GetN("count")
		return err
	})
	return n, err
}

func TestExecuteCommits(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	var counter address.Address
	receipt, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		var err error
		counter, err = ctx.Create(counterKind)
		if nil != err {
			return err
		}
		return increment(ctx, counter)
	})
	require.Nil(t, err)

	assert.Equal(t, uint64(1), receipt.Number)
	assert.Equal(t, operator, receipt.Sender)
	assert.Equal(t, uint64(ledger.GasDeploy+ledger.GasCall+ledger.GasRead+ledger.GasRead+ledger.GasWrite+ledger.GasEvent), receipt.GasUsed)

	e, found := receipt.Find("Incremented")
	require.True(t, found)
	assert.Equal(t, counter, e.Contract)
	fields := map[string]uint64{}
	require.Nil(t, e.Decode(&fields))
	assert.Equal(t, uint64(1), fields["count"])

	code, found, err := l.CodeAt(counter)
	require.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, counterKind, code.Kind)
	assert.Equal(t, operator, code.Deployer)
	assert.False(t, code.IsProxy())

	assert.Equal(t, uint64(1), l.Height())

	history, err := l.History(1, 10)
	require.Nil(t, err)
	require.Equal(t, 1, len(history))
	assert.Equal(t, receipt.TxId, history[0].TxId)
}

func TestFailureHasNoEffect(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	var counter address.Address
	_, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		var err error
		counter, err = ctx.Create(counterKind)
		return err
	})
	require.Nil(t, err)

	failure := errors.New("stop")
	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		if err := increment(ctx, counter); nil != err {
			return err
		}
		if _, err := ctx.Create(otherKind); nil != err {
			return err
		}
		return failure
	})
	assert.Equal(t, failure, err)
	assert.Equal(t, uint64(1), l.Height(), "no receipt for a failed transaction")

	err = l.View(func(ctx *ledger.Context) error {
		n, err := count(ctx, counter)
		assert.Equal(t, uint64(0), n)
		return err
	})
	assert.Nil(t, err)
}

func TestGasExhaustion(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	_, err := l.Execute(operator, ledger.GasDeploy-1, func(ctx *ledger.Context) error {
		_, err := ctx.Create(counterKind)
		return err
	})
	assert.Equal(t, fault.ErrBudgetExhausted, err)
	assert.True(t, fault.IsErrProcess(err))

	// a swallowed exhaustion still aborts
	_, err = l.Execute(operator, ledger.GasDeploy+ledger.GasCall, func(ctx *ledger.Context) error {
		counter, err := ctx.Create(counterKind)
		if nil != err {
			return err
		}
		_ = increment(ctx, counter)
		return nil
	})
	assert.Equal(t, fault.ErrBudgetExhausted, err)
	assert.Equal(t, uint64(0), l.Height())
}

func TestEstimateDoesNotCommit(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	var counter address.Address
	gas, err := l.Estimate(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		var err error
		counter, err = ctx.Create(counterKind)
		return err
	})
	require.Nil(t, err)
	assert.Equal(t, uint64(ledger.GasDeploy), gas)

	_, found, err := l.CodeAt(counter)
	assert.Nil(t, err)
	assert.False(t, found)
	assert.Equal(t, uint64(0), l.Height())
}

func TestCallFrames(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	_, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		outer, err := ctx.Create(otherKind)
		if nil != err {
			return err
		}
		inner, err := ctx.Create(counterKind)
		if nil != err {
			return err
		}

		return ctx.Call(outer, otherKind, "Outer", func(octx *ledger.Context) error {
			assert.Equal(t, outer, octx.Self())
			assert.Equal(t, operator, octx.Sender())
			assert.Equal(t, operator, octx.Origin())
			assert.Equal(t, otherKind, octx.Kind())

			return octx.Call(inner, counterKind, "Inner", func(ictx *ledger.Context) error {
				assert.Equal(t, inner, ictx.Self())
				assert.Equal(t, outer, ictx.Sender())
				assert.Equal(t, operator, ictx.Origin())
				return nil
			})
		})
	})
	assert.Nil(t, err)
}

func TestCallErrors(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	_, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		return increment(ctx, address.Address{0x99})
	})
	assert.True(t, fault.IsErrDependency(err))
	assert.Equal(t, fault.ErrNoCode, fault.Cause(err))

	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		other, err := ctx.Create(otherKind)
		if nil != err {
			return err
		}
		return increment(ctx, other)
	})
	assert.Equal(t, fault.ErrCodeKindMismatch, fault.Cause(err))

	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		counter, err := ctx.Create(counterKind)
		if nil != err {
			return err
		}
		var recurse func(*ledger.Context) error
		recurse = func(c *ledger.Context) error {
			return c.Call(counter, counterKind, "Recurse", recurse)
		}
		return recurse(ctx)
	})
	assert.Equal(t, fault.ErrCallDepthExceeded, fault.Cause(err))

	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := ctx.Create(ledger.Kind("NotRegistered"))
		return err
	})
	assert.Equal(t, fault.ErrUnknownCodeKind, err)
}

func TestDeployAndClone(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	salt := address.Keccak256([]byte("instance"))
	var impl, instance address.Address
	_, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		var err error
		impl, err = ctx.DeployCode(counterKind, 1)
		if nil != err {
			return err
		}
		instance, err = ctx.Clone(impl, salt)
		if nil != err {
			return err
		}
		return increment(ctx, instance)
	})
	require.Nil(t, err)

	assert.Equal(t, ledger.ImplementationAddress(operator, counterKind, 1), impl)
	assert.Equal(t, address.PredictClone(operator, salt, impl), instance)

	code, found, err := l.CodeAt(instance)
	require.Nil(t, err)
	require.True(t, found)
	assert.True(t, code.IsProxy())
	assert.Equal(t, impl, code.Implementation)
	assert.Equal(t, counterKind, code.Kind)
	assert.Equal(t, uint64(1), code.Version)

	// the instance has its own storage
	err = l.View(func(ctx *ledger.Context) error {
		n, err := count(ctx, instance)
		assert.Equal(t, uint64(1), n)
		if nil != err {
			return err
		}
		n, err = count(ctx, impl)
		assert.Equal(t, uint64(0), n)
		return err
	})
	assert.Nil(t, err)

	// same version cannot be deployed twice, nor the same clone salt reused
	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := ctx.DeployCode(counterKind, 1)
		return err
	})
	assert.Equal(t, fault.ErrAlreadyDeployed, err)

	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := ctx.Clone(impl, salt)
		return err
	})
	assert.Equal(t, fault.ErrAlreadyDeployed, err)

	_, err = l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
		_, err := ctx.Clone(address.Address{0x77}, salt)
		return err
	})
	assert.Equal(t, fault.ErrNoCode, err)
}

func TestCreateUsesDistinctAddresses(t *testing.T) {
	l, done := setupLedger(t)
	defer done()

	seen := map[address.Address]bool{}
	for i := 0; i < 3; i += 1 {
		_, err := l.Execute(operator, ledger.DefaultGas, func(ctx *ledger.Context) error {
			a, err := ctx.Create(counterKind)
			seen[a] = true
			return err
		})
		require.Nil(t, err)
	}
	assert.Equal(t, 3, len(seen))
	assert.Equal(t, []ledger.Kind{counterKind, otherKind}, filterKinds(ledger.RegisteredKinds()))
}

func filterKinds(all []ledger.Kind) []ledger.Kind {
	result := []ledger.Kind{}
	for _, k := range all {
		if counterKind == k || otherKind == k {
			result = append(result, k)
		}
	}
	return result
}
