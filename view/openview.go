// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/avl"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
)

// OpenState - life cycle of an OpenView
type OpenState int

// open view states
const (
	Building OpenState = iota
	Closing
	Closed
)

func (s OpenState) String() string {
	switch s {
	case Building:
		return "building"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

type txEntry struct {
	tx   []byte
	meta []byte
}

// OpenView - the ledger under construction
//
// reads see the overlay first, then the base; all changes stay in the
// overlay until Close or Apply
type OpenView struct {
	base   ReadView
	ledger *ledger.Ledger // set when the base is a sealed ledger
	info   ledger.Info
	items  *table
	txs    *avl.Tree[merkle.Digest, txEntry]
	state  OpenState
	log    *logger.L
}

// NewOpenView - start a view over a base
//
// over a sealed ledger the view describes the next ledger; over an
// open view it continues the same one
func NewOpenView(base ReadView) *OpenView {
	info := base.Info()
	if !base.Open() {
		info = ledger.Info{
			Seq:                 info.Seq + 1,
			ParentHash:          info.Hash,
			Drops:               info.Drops,
			ParentCloseTime:     info.CloseTime,
			CloseTimeResolution: info.CloseTimeResolution,
		}
	}

	v := &OpenView{
		base:  base,
		info:  info,
		items: newTable(),
		txs:   avl.New[merkle.Digest, txEntry](),
		state: Building,
		log:   logger.New("view"),
	}
	if l, ok := base.(*ledger.Ledger); ok {
		v.ledger = l
	}
	return v
}

// State - the current life cycle stage
func (v *OpenView) State() OpenState {
	return v.state
}

func (v *OpenView) mustBeBuilding(operation string) {
	if Building != v.state {
		v.log.Criticalf("%s on %s view: %d", operation, v.state, v.info.Seq)
		fault.Panicf("open view: %s when %s", operation, v.state)
	}
}

// Info - header of the ledger being built
//
// the hashes and close time are not known until it closes
func (v *OpenView) Info() ledger.Info {
	info := v.info
	info.Drops -= v.items.destroyed
	return info
}

// Fees - fee schedule of the base
func (v *OpenView) Fees() ledger.Fees {
	return v.base.Fees()
}

// Rules - amendments of the base
func (v *OpenView) Rules() ledger.Rules {
	return v.base.Rules()
}

// Open - always true
func (v *OpenView) Open() bool {
	return true
}

// Read - the entry for a key, nil if absent
func (v *OpenView) Read(key merkle.Digest) (*ledger.Entry, error) {
	if entry, decided := v.items.read(key); decided {
		return entry, nil
	}
	return v.base.Read(key)
}

// Exists - true if the key is present
func (v *OpenView) Exists(key merkle.Digest) (bool, error) {
	if entry, decided := v.items.read(key); decided {
		return nil != entry, nil
	}
	return v.base.Exists(key)
}

// Succ - the first key >= key
func (v *OpenView) Succ(key merkle.Digest) (merkle.Digest, bool, error) {
	return v.items.succThrough(v.base, key)
}

// TxExists - true if the transaction was recorded in this view
func (v *OpenView) TxExists(id merkle.Digest) (bool, error) {
	return nil != v.txs.Search(id), nil
}

// TxCount - number of transactions recorded
func (v *OpenView) TxCount() int {
	return v.txs.Count()
}

// RawInsert - add an entry
func (v *OpenView) RawInsert(entry *ledger.Entry) {
	v.mustBeBuilding("insert")
	v.items.rawInsert(entry)
}

// RawReplace - change an entry
func (v *OpenView) RawReplace(entry *ledger.Entry) {
	v.mustBeBuilding("replace")
	v.items.rawReplace(entry)
}

// RawErase - remove an entry
func (v *OpenView) RawErase(key merkle.Digest) {
	v.mustBeBuilding("erase")
	v.items.rawErase(key)
}

// RawDestroyDrops - burn fees
func (v *OpenView) RawDestroyDrops(drops uint64) {
	v.mustBeBuilding("destroy drops")
	if drops > v.Info().Drops {
		fault.Panicf("open view: destroy: %d drops exceeds total: %d", drops, v.Info().Drops)
	}
	v.items.destroyed += drops
}

// RawTxInsert - record a transaction and its metadata
func (v *OpenView) RawTxInsert(id merkle.Digest, tx []byte, meta []byte) {
	v.mustBeBuilding("transaction insert")
	if nil != v.txs.Search(id) {
		fault.Panicf("open view: duplicate transaction: %s", id)
	}
	v.txs.Insert(id, txEntry{tx: tx, meta: meta})
}

// Apply - push all changes and transactions into another view
//
// the view is closed afterwards
func (v *OpenView) Apply(to TxsRawView) {
	v.mustBeBuilding("apply")
	v.state = Closing

	v.items.apply(to)
	v.txs.Each(func(id merkle.Digest, t txEntry) bool {
		to.RawTxInsert(id, t.tx, t.meta)
		return true
	})
	v.state = Closed
}

// Close - build the next sealed ledger
//
// the overlay is applied in key order to a copy of the base state
// tree so the result depends only on the set of changes
func (v *OpenView) Close(closeTime uint32, closeFlags uint8) (*ledger.Ledger, error) {
	v.mustBeBuilding("close")
	if nil == v.ledger {
		return nil, fault.ErrNotLedgerBase
	}
	// a view left in Closing by an error below cannot be used again
	v.state = Closing

	state := v.ledger.StateTree().Snapshot(true)
	if err := v.applyToTree(state); nil != err {
		v.log.Criticalf("close: %d  state error: %s", v.info.Seq, err)
		return nil, err
	}

	txs := shamap.New(state.Family(), shamap.TransactionTree)
	var err error
	v.txs.Each(func(id merkle.Digest, t txEntry) bool {
		err = txs.SetWithType(shamap.TransactionWithMeta, id, ledger.PackTransaction(t.tx, t.meta))
		return nil == err
	})
	if nil != err {
		v.log.Criticalf("close: %d  transaction error: %s", v.info.Seq, err)
		return nil, err
	}

	info := v.Info()
	info.CloseFlags = closeFlags
	info.CloseTime = ledger.RoundCloseTime(closeTime, info.CloseTimeResolution)
	if info.CloseTime <= info.ParentCloseTime {
		info.CloseTime = info.ParentCloseTime + 1
	}

	l, err := ledger.New(info, state, txs)
	if nil != err {
		return nil, err
	}
	v.state = Closed
	v.log.Infof("closed ledger: %d  hash: %s  transactions: %d", info.Seq, l.Hash(), v.txs.Count())
	return l, nil
}

func (v *OpenView) applyToTree(state *shamap.Tree) error {
	var err error
	v.items.items.Each(func(key merkle.Digest, c *change) bool {
		switch c.action {
		case actionInsert, actionModify:
			var exists bool
			exists, err = state.Has(key)
			if nil != err {
				return false
			}
			if exists != (actionModify == c.action) {
				fault.Panicf("open view: close: %s of key: %s  present: %t", c.action, key, exists)
			}
			err = state.Set(key, c.entry.Data())
		case actionErase:
			var erased bool
			erased, err = state.Erase(key)
			if nil == err && !erased {
				fault.Panicf("open view: close: erase of missing key: %s", key)
			}
		}
		return nil == err
	})
	return err
}
