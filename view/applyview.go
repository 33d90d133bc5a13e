// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view

import (
	"bytes"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// ApplyState - life cycle of an ApplyView
type ApplyState int

// apply view states
const (
	Pending ApplyState = iota
	Applied
	Discarded
)

func (s ApplyState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// ApplyView - a sandbox for one transaction
//
// nothing is visible to the parent until Apply; Discard drops every
// change.  Either ends the view.
type ApplyView struct {
	parent  ReadRawView
	items   *table
	credits *deferredCredits
	state   ApplyState
}

// NewApplyView - a sandbox over an OpenView or another ApplyView
func NewApplyView(parent ReadRawView) *ApplyView {
	return &ApplyView{
		parent:  parent,
		items:   newTable(),
		credits: newDeferredCredits(),
		state:   Pending,
	}
}

// State - the current life cycle stage
func (v *ApplyView) State() ApplyState {
	return v.state
}

func (v *ApplyView) mustBePending(operation string) {
	if Pending != v.state {
		fault.Panicf("apply view: %s when %s", operation, v.state)
	}
}

// Info - header of the parent
func (v *ApplyView) Info() ledger.Info {
	v.mustBePending("info")
	info := v.parent.Info()
	info.Drops -= v.items.destroyed
	return info
}

// Fees - fee schedule of the parent
func (v *ApplyView) Fees() ledger.Fees {
	v.mustBePending("fees")
	return v.parent.Fees()
}

// Rules - amendments of the parent
func (v *ApplyView) Rules() ledger.Rules {
	v.mustBePending("rules")
	return v.parent.Rules()
}

// Open - same as the parent
func (v *ApplyView) Open() bool {
	v.mustBePending("open")
	return v.parent.Open()
}

// Read - the entry for a key, nil if absent
func (v *ApplyView) Read(key merkle.Digest) (*ledger.Entry, error) {
	v.mustBePending("read")
	if entry, decided := v.items.read(key); decided {
		return entry, nil
	}
	return v.parent.Read(key)
}

// Exists - true if the key is present
func (v *ApplyView) Exists(key merkle.Digest) (bool, error) {
	v.mustBePending("exists")
	if entry, decided := v.items.read(key); decided {
		return nil != entry, nil
	}
	return v.parent.Exists(key)
}

// Succ - the first key >= key
func (v *ApplyView) Succ(key merkle.Digest) (merkle.Digest, bool, error) {
	v.mustBePending("succ")
	return v.items.succThrough(v.parent, key)
}

// TxExists - as the parent
func (v *ApplyView) TxExists(id merkle.Digest) (bool, error) {
	v.mustBePending("transaction exists")
	return v.parent.TxExists(id)
}

// Peek - an entry that may be changed and passed to Update
//
// nil if absent
func (v *ApplyView) Peek(key merkle.Digest) (*ledger.Entry, error) {
	v.mustBePending("peek")
	if entry, decided := v.items.read(key); decided {
		return entry, nil
	}
	entry, err := v.parent.Read(key)
	if nil != err || nil == entry {
		return nil, err
	}
	entry = entry.Copy()
	v.items.cache(entry)
	return entry, nil
}

// Insert - create an entry that does not exist
func (v *ApplyView) Insert(entry *ledger.Entry) {
	v.mustBePending("insert")
	v.items.rawInsert(entry)
}

// Update - store a changed entry obtained from Peek
func (v *ApplyView) Update(entry *ledger.Entry) {
	v.mustBePending("update")
	v.items.update(entry)
}

// Erase - remove an entry obtained from Peek
func (v *ApplyView) Erase(key merkle.Digest) {
	v.mustBePending("erase")
	v.items.erase(key)
}

// RawInsert - used by a child view
func (v *ApplyView) RawInsert(entry *ledger.Entry) {
	v.mustBePending("raw insert")
	v.items.rawInsert(entry)
}

// RawReplace - used by a child view
func (v *ApplyView) RawReplace(entry *ledger.Entry) {
	v.mustBePending("raw replace")
	v.items.rawReplace(entry)
}

// RawErase - used by a child view
func (v *ApplyView) RawErase(key merkle.Digest) {
	v.mustBePending("raw erase")
	v.items.rawErase(key)
}

// RawDestroyDrops - burn fees
func (v *ApplyView) RawDestroyDrops(drops uint64) {
	v.mustBePending("destroy drops")
	if drops > v.Info().Drops {
		fault.Panicf("apply view: destroy: %d drops exceeds total: %d", drops, v.Info().Drops)
	}
	v.items.destroyed += drops
}

// Changes - the effect of this view on its parent in key order
//
// entries read for modification but left unchanged are not included
func (v *ApplyView) Changes() ([]Change, error) {
	v.mustBePending("changes")
	changes := make([]Change, 0, v.items.items.Count())
	var err error
	v.items.items.Each(func(key merkle.Digest, c *change) bool {
		var before *ledger.Entry
		switch c.action {
		case actionInsert:
			changes = append(changes, Change{Type: Created, Key: key, After: c.entry.Data()})
		case actionModify:
			before, err = v.parent.Read(key)
			if nil != err {
				return false
			}
			if nil != before && bytes.Equal(before.Data(), c.entry.Data()) {
				return true
			}
			ch := Change{Type: Modified, Key: key, After: c.entry.Data()}
			if nil != before {
				ch.Before = before.Data()
			}
			changes = append(changes, ch)
		case actionErase:
			before, err = v.parent.Read(key)
			if nil != err {
				return false
			}
			ch := Change{Type: Deleted, Key: key}
			if nil != before {
				ch.Before = before.Data()
			}
			changes = append(changes, ch)
		}
		return true
	})
	if nil != err {
		return nil, err
	}
	return changes, nil
}

// Apply - merge every change into the parent and end the view
//
// deferred credits move to a parent ApplyView and are dropped
// otherwise
func (v *ApplyView) Apply() {
	v.mustBePending("apply")
	v.items.apply(v.parent)
	if p, ok := v.parent.(*ApplyView); ok {
		v.credits.mergeInto(p.credits)
	}
	v.state = Applied
}

// Discard - drop every change and end the view
func (v *ApplyView) Discard() {
	v.mustBePending("discard")
	v.items = newTable()
	v.credits = newDeferredCredits()
	v.state = Discarded
}

// ApplyTx - record a transaction with metadata built from this view's
// changes, then apply the changes
//
// the parent must be able to record transactions
func (v *ApplyView) ApplyTx(id merkle.Digest, tx []byte) error {
	v.mustBePending("apply transaction")
	target, ok := v.parent.(TxsRawView)
	if !ok {
		return fault.ErrNotTransactionView
	}
	changes, err := v.Changes()
	if nil != err {
		return err
	}
	meta := &Metadata{
		Index:   uint32(target.TxCount()),
		Changes: changes,
	}
	v.Apply()
	target.RawTxInsert(id, tx, meta.Pack())
	return nil
}

// Credit - record an amount sent within this transaction
//
// preCreditSenderBalance is the sender's balance before this amount
// left it
func (v *ApplyView) Credit(sender AccountID, receiver AccountID, asset Asset, amount Amount, preCreditSenderBalance Amount) {
	v.mustBePending("credit")
	v.credits.credit(sender, receiver, asset, amount, preCreditSenderBalance)
}

// BalanceHook - the part of a balance the transaction may spend
//
// amounts received during the transaction are excluded, and so is
// anything beyond the balance the account held before it first sent
func (v *ApplyView) BalanceHook(account AccountID, asset Asset, amount Amount) Amount {
	v.mustBePending("balance hook")
	received := Amount(0)
	debits := Amount(0)
	lastBalance := amount
	minBalance := amount
	known := false

	for current := v; nil != current; {
		if adj, ok := current.credits.adjustment(account, asset); ok {
			received += adj.credits
			debits += adj.debits
			if adj.hasOrig {
				known = true
				lastBalance = adj.origBalance
				if lastBalance < minBalance {
					minBalance = lastBalance
				}
			}
		}
		p, ok := current.parent.(*ApplyView)
		if !ok {
			break
		}
		current = p
	}

	adjusted := amount
	if amount-received < adjusted {
		adjusted = amount - received
	}
	if known {
		if lastBalance-debits < adjusted {
			adjusted = lastBalance - debits
		}
		if minBalance < adjusted {
			adjusted = minBalance
		}
	}
	return adjusted
}
