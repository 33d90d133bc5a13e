// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/view"
)

// change a, erase b, create d
func makeChanges(t *testing.T, v *view.ApplyView) {
	a, err := v.Peek(keyOf("a"))
	require.Nil(t, err, "peek a")
	require.NotNil(t, a, "a")
	a.SetData([]byte("ALPHA"))
	v.Update(a)

	b, err := v.Peek(keyOf("b"))
	require.Nil(t, err, "peek b")
	require.NotNil(t, b, "b")
	v.Erase(b.Key())

	v.Insert(entryOf("d", "delta"))
}

func TestApplyViewDiscard(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)
	makeChanges(t, v)

	assert.Equal(t, "ALPHA", readData(t, v, "a"), "sandbox a")
	assert.Equal(t, "", readData(t, v, "b"), "sandbox b")
	assert.Equal(t, "delta", readData(t, v, "d"), "sandbox d")

	v.Discard()
	assert.Equal(t, view.Discarded, v.State(), "state")

	assert.Equal(t, "alpha", readData(t, open, "a"), "open a")
	assert.Equal(t, "beta", readData(t, open, "b"), "open b")
	assert.Equal(t, "", readData(t, open, "d"), "open d")

	assert.Panics(t, func() { v.Apply() }, "apply after discard")
	assert.Panics(t, func() { _, _ = v.Peek(keyOf("a")) }, "peek after discard")
}

func TestApplyViewApply(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)
	makeChanges(t, v)
	v.Apply()
	assert.Equal(t, view.Applied, v.State(), "state")

	assert.Equal(t, "ALPHA", readData(t, open, "a"), "open a")
	assert.Equal(t, "", readData(t, open, "b"), "open b")
	assert.Equal(t, "delta", readData(t, open, "d"), "open d")

	assert.Panics(t, func() { v.Discard() }, "discard after apply")
}

func TestPeekIsPrivate(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)

	a, err := v.Peek(keyOf("a"))
	require.Nil(t, err, "peek")
	a.SetData([]byte("changed but not updated"))
	assert.Equal(t, "alpha", readData(t, open, "a"), "parent unchanged")

	// an unchanged peek produces no change
	v2 := view.NewApplyView(open)
	_, err = v2.Peek(keyOf("c"))
	require.Nil(t, err, "peek c")
	changes, err := v2.Changes()
	require.Nil(t, err, "changes")
	assert.Equal(t, 0, len(changes), "changes")

	missing, err := v2.Peek(keyOf("missing"))
	assert.Nil(t, err, "peek missing")
	assert.Nil(t, missing, "missing entry")
}

func TestNestedApplyViews(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	outer := view.NewApplyView(open)
	outer.Insert(entryOf("d", "delta"))

	inner := view.NewApplyView(outer)
	assert.Equal(t, "delta", readData(t, inner, "d"), "inner sees outer")

	c, err := inner.Peek(keyOf("c"))
	require.Nil(t, err, "peek c")
	c.SetData([]byte("GAMMA"))
	inner.Update(c)

	d, err := inner.Peek(keyOf("d"))
	require.Nil(t, err, "peek d")
	inner.Erase(d.Key())
	inner.Apply()

	// only the immediate parent is affected
	assert.Equal(t, "GAMMA", readData(t, outer, "c"), "outer c")
	assert.Equal(t, "", readData(t, outer, "d"), "outer d")
	assert.Equal(t, "gamma", readData(t, open, "c"), "open c")

	outer.Discard()
	assert.Equal(t, "gamma", readData(t, open, "c"), "open c after discard")
	assert.Equal(t, "", readData(t, open, "d"), "open d after discard")
}

func TestInvalidApplyTransitionsPanic(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)

	assert.Panics(t, func() { v.Update(entryOf("a", "x")) }, "update without peek")
	assert.Panics(t, func() { v.Erase(keyOf("a")) }, "erase without peek")

	a, err := v.Peek(keyOf("a"))
	require.Nil(t, err, "peek")
	assert.Panics(t, func() { v.Insert(a) }, "insert of cached")

	v.Erase(a.Key())
	assert.Panics(t, func() { v.Update(a) }, "update after erase")
	assert.Panics(t, func() { v.Erase(a.Key()) }, "erase after erase")

	// insert after erase is a modification
	v.Insert(entryOf("a", "again"))
	changes, err := v.Changes()
	require.Nil(t, err, "changes")
	require.Equal(t, 1, len(changes), "changes")
	assert.Equal(t, view.Modified, changes[0].Type, "type")
	assert.Equal(t, []byte("alpha"), changes[0].Before, "before")
	assert.Equal(t, []byte("again"), changes[0].After, "after")

	v.Apply()
	assertFinished(t, v, "applied")

	d := view.NewApplyView(open)
	d.Credit(alice, bob, usd, 10, 100)
	d.RawDestroyDrops(5)
	d.Discard()
	assertFinished(t, d, "discarded")
}

// every operation on a finished view is a contract violation
func assertFinished(t *testing.T, v *view.ApplyView, title string) {
	assert.Panics(t, func() { _, _ = v.Read(keyOf("a")) }, "%s: read", title)
	assert.Panics(t, func() { _, _ = v.Exists(keyOf("a")) }, "%s: exists", title)
	assert.Panics(t, func() { _, _, _ = v.Succ(keyOf("a")) }, "%s: succ", title)
	assert.Panics(t, func() { v.Info() }, "%s: info", title)
	assert.Panics(t, func() { v.Fees() }, "%s: fees", title)
	assert.Panics(t, func() { v.Rules() }, "%s: rules", title)
	assert.Panics(t, func() { v.Open() }, "%s: open", title)
	assert.Panics(t, func() { _, _ = v.TxExists(keyOf("tx")) }, "%s: transaction exists", title)
	assert.Panics(t, func() { v.BalanceHook(alice, usd, 100) }, "%s: balance hook", title)
	assert.Panics(t, func() { _, _ = v.Changes() }, "%s: changes", title)
	assert.Panics(t, func() { v.RawDestroyDrops(1) }, "%s: destroy drops", title)
}

func TestChanges(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)
	makeChanges(t, v)

	// insert then erase leaves no trace
	v.Insert(entryOf("e", "epsilon"))
	e, err := v.Peek(keyOf("e"))
	require.Nil(t, err, "peek e")
	v.Erase(e.Key())

	changes, err := v.Changes()
	require.Nil(t, err, "changes")
	require.Equal(t, 3, len(changes), "changes")

	byKey := make(map[string]view.Change)
	for i, c := range changes {
		if i > 0 {
			assert.True(t, changes[i-1].Key.Compare(c.Key) < 0, "order at: %d", i)
		}
		for _, name := range []string{"a", "b", "d"} {
			if keyOf(name) == c.Key {
				byKey[name] = c
			}
		}
	}
	assert.Equal(t, view.Modified, byKey["a"].Type, "a")
	assert.Equal(t, []byte("alpha"), byKey["a"].Before, "a before")
	assert.Equal(t, []byte("ALPHA"), byKey["a"].After, "a after")
	assert.Equal(t, view.Deleted, byKey["b"].Type, "b")
	assert.Equal(t, []byte("beta"), byKey["b"].Before, "b before")
	assert.Equal(t, view.Created, byKey["d"].Type, "d")
	assert.Equal(t, []byte("delta"), byKey["d"].After, "d after")
}

func TestApplyTx(t *testing.T) {
	base := newBaseLedger(t)
	open := view.NewOpenView(base)

	for i, name := range []string{"first", "second"} {
		v := view.NewApplyView(open)
		v.Insert(entryOf(name, name))
		v.RawDestroyDrops(10)
		err := v.ApplyTx(keyOf("tx-"+name), []byte("tx "+name))
		require.Nil(t, err, "apply tx: %d", i)
		assert.Equal(t, view.Applied, v.State(), "state: %d", i)
	}
	assert.Equal(t, 2, open.TxCount(), "transactions")

	nested := view.NewApplyView(view.NewApplyView(open))
	err := nested.ApplyTx(keyOf("tx-nested"), nil)
	assert.Equal(t, fault.ErrNotTransactionView, err, "nested apply tx")

	l, err := open.Close(5000, 0)
	require.Nil(t, err, "close")
	assert.Equal(t, base.Info().Drops-20, l.Info().Drops, "drops")
	assert.NotEqual(t, ledger.Info{}.TxHash, l.Info().TxHash, "transaction tree hash")

	exists, err := l.TxExists(keyOf("tx-second"))
	assert.Nil(t, err, "tx exists")
	assert.True(t, exists, "second transaction")

	tx, meta, found, err := l.TxRead(keyOf("tx-second"))
	require.Nil(t, err, "tx read")
	require.True(t, found, "found")
	assert.Equal(t, []byte("tx second"), tx, "tx")

	m, err := view.UnpackMetadata(meta)
	require.Nil(t, err, "metadata")
	assert.Equal(t, uint32(1), m.Index, "index")
	if assert.Equal(t, 1, len(m.Changes), "changes") {
		assert.Equal(t, view.Created, m.Changes[0].Type, "created")
		assert.Equal(t, keyOf("second"), m.Changes[0].Key, "key")
		assert.Equal(t, []byte("second"), m.Changes[0].After, "after")
	}
	assert.Equal(t, "first", readData(t, l, "first"), "first entry")
}

func TestApplyViewSucc(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)
	makeChanges(t, v)

	seen := make(map[string]bool)
	key := merkle.ZeroDigest
	for {
		next, found, err := v.Succ(key)
		require.Nil(t, err, "succ")
		if !found {
			break
		}
		for _, name := range []string{"a", "b", "c", "d"} {
			if keyOf(name) == next {
				seen[name] = true
			}
		}
		var ok bool
		if key, ok = next.Next(); !ok {
			break
		}
	}
	assert.Equal(t, map[string]bool{"a": true, "c": true, "d": true}, seen, "visible keys")
}
