// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/ledgerd/background"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
	"github.com/bitmark-inc/ledgerd/storage"
	"github.com/bitmark-inc/ledgerd/view"
)

func genesisParameters() *ledger.GenesisParameters {
	return &ledger.GenesisParameters{
		CloseTime: 5000,
		Fees:      ledger.Fees{Base: 10, Reserve: 200, Increment: 50},
		Entries: []*ledger.Entry{
			ledger.NewEntry(merkle.SHA512Half([]byte("alpha")), []byte("one")),
			ledger.NewEntry(merkle.SHA512Half([]byte("beta")), []byte("two")),
		},
	}
}

func newGenesis(t *testing.T, backend storage.Backend, family *shamap.Family) *ledger.Ledger {
	l, err := createGenesis(backend, family, genesisParameters())
	require.Nil(t, err, "genesis")
	return l
}

func TestCreateGenesis(t *testing.T) {
	backend, family := newStore(t)

	_, err := lastClosed(backend, family)
	assert.Equal(t, fault.ErrLedgerNotFound, err, "no ledger yet")

	l := newGenesis(t, backend, family)
	assert.Equal(t, uint32(ledger.GenesisSeq), l.Info().Seq, "seq")

	last, err := lastClosed(backend, family)
	require.Nil(t, err, "last closed")
	assert.Equal(t, l.Hash(), last.Hash(), "recorded hash")

	_, err = createGenesis(backend, family, genesisParameters())
	assert.Equal(t, fault.ErrAlreadyInitialised, err, "second genesis")
}

func TestCloseLedger(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)

	c, err := newCloser(backend, family, time.Second)
	require.Nil(t, err, "closer")

	first, err := c.closeLedger(time.Unix(5100, 0))
	require.Nil(t, err, "first close")
	second, err := c.closeLedger(time.Unix(5100, 0))
	require.Nil(t, err, "second close")

	assert.Equal(t, genesis.Info().Seq+1, first.Info().Seq, "first seq")
	assert.Equal(t, genesis.Hash(), first.Info().ParentHash, "first parent")
	assert.Equal(t, genesis.Info().StateHash, first.Info().StateHash, "unchanged state")
	assert.True(t, first.Info().CloseTime > genesis.Info().CloseTime, "first close time")

	assert.Equal(t, first.Hash(), second.Info().ParentHash, "second parent")
	assert.True(t, second.Info().CloseTime > first.Info().CloseTime, "close time advances")

	// a new closer resumes from the recorded ledger
	family.ClearCaches()
	resumed, err := newCloser(backend, family, time.Second)
	require.Nil(t, err, "resumed closer")
	assert.Equal(t, second.Hash(), resumed.last.Hash(), "resumed from")
}

func TestCloserRun(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)

	c, err := newCloser(backend, family, 10*time.Millisecond)
	require.Nil(t, err, "closer")

	p := background.Start(background.Processes{c}, nil)
	time.Sleep(100 * time.Millisecond)
	p.Stop()

	last, err := lastClosed(backend, family)
	require.Nil(t, err, "last closed")
	assert.True(t, last.Info().Seq > genesis.Info().Seq, "ledgers were closed")
	assert.Equal(t, c.last.Hash(), last.Hash(), "recorded hash")
}

// a saved ledger after the genesis with one change of each kind
func changedLedger(t *testing.T, genesis *ledger.Ledger) *ledger.Ledger {
	open := view.NewOpenView(genesis)
	open.RawInsert(ledger.NewEntry(merkle.SHA512Half([]byte("gamma")), []byte("three")))
	open.RawReplace(ledger.NewEntry(merkle.SHA512Half([]byte("alpha")), []byte("uno")))
	open.RawErase(merkle.SHA512Half([]byte("beta")))
	open.RawTxInsert(merkle.SHA512Half([]byte("tx")), []byte("transaction"), []byte("metadata"))

	l, err := open.Close(6000, 0)
	require.Nil(t, err, "close")
	_, err = l.Save()
	require.Nil(t, err, "save")
	return l
}

func TestDumpLedger(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)

	var out bytes.Buffer
	err := dumpLedger(&out, genesis)
	require.Nil(t, err, "dump")

	s := out.String()
	assert.True(t, strings.Contains(s, genesis.Hash().String()), "header hash")
	assert.True(t, strings.Contains(s, merkle.SHA512Half([]byte("alpha")).String()), "alpha key")
	assert.True(t, strings.Contains(s, `"data":"6f6e65"`), "alpha data")
	assert.True(t, strings.Contains(s, ledger.FeesKey.String()), "fees key")
}

func TestDiffLedgers(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)
	next := changedLedger(t, genesis)

	var out bytes.Buffer
	err := diffLedgers(&out, genesis, next)
	require.Nil(t, err, "diff")

	types := map[string]int{}
	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var e diffEntry
		require.Nil(t, decoder.Decode(&e), "decode")
		types[e.Type] += 1
	}
	assert.Equal(t, map[string]int{"added": 1, "modified": 1, "removed": 1}, types, "differences")

	out.Reset()
	err = diffLedgers(&out, next, next)
	assert.Nil(t, err, "same ledger")
	assert.Equal(t, 0, out.Len(), "no differences")
}

func TestVerifyLedger(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)
	next := changedLedger(t, genesis)

	family.ClearCaches()
	loaded, err := ledger.Load(family, next.Hash())
	require.Nil(t, err, "load")

	result, err := verifyLedger(loaded)
	require.Nil(t, err, "verify")
	assert.Equal(t, next.Hash(), result.Hash, "hash")
	assert.Equal(t, 4, result.State.Leaves, "state leaves")
	assert.Equal(t, 1, result.Transactions.Leaves, "transaction leaves")
}

func TestReplicate(t *testing.T) {
	backend, family := newStore(t)
	genesis := newGenesis(t, backend, family)
	next := changedLedger(t, genesis)

	targetBackend, targetFamily := newStore(t)
	n, err := replicate(logger.New("test"), next, targetBackend, targetFamily)
	require.Nil(t, err, "replicate")
	assert.True(t, n > 0, "nodes added")

	targetFamily.ClearCaches()
	copied, err := lastClosed(targetBackend, targetFamily)
	require.Nil(t, err, "last closed in target")
	assert.Equal(t, next.Hash(), copied.Hash(), "hash")

	result, err := verifyLedger(copied)
	require.Nil(t, err, "verify copy")
	assert.Equal(t, 4, result.State.Leaves, "state leaves")
	assert.Equal(t, 1, result.Transactions.Leaves, "transaction leaves")

	// a second copy finds nothing missing
	n, err = replicate(logger.New("test"), next, targetBackend, shamap.NewFamily(targetBackend, 0, 0))
	require.Nil(t, err, "replicate again")
	assert.Equal(t, 0, n, "nothing added")
}
