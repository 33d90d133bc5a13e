// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view

import (
	"github.com/bitmark-inc/ledgerd/avl"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// what a view has done to one key
type action int

const (
	actionCache  action = iota // read for modification, unchanged
	actionInsert               // created here
	actionModify               // existed before, changed here
	actionErase                // existed before, removed here
)

func (a action) String() string {
	switch a {
	case actionCache:
		return "cache"
	case actionInsert:
		return "insert"
	case actionModify:
		return "modify"
	case actionErase:
		return "erase"
	default:
		return "unknown"
	}
}

type change struct {
	action action
	entry  *ledger.Entry // nil for erase
}

// the overlay of changes held by a view, ordered by key
type table struct {
	items     *avl.Tree[merkle.Digest, *change]
	destroyed uint64
}

func newTable() *table {
	return &table{
		items: avl.New[merkle.Digest, *change](),
	}
}

func (t *table) lookup(key merkle.Digest) (*change, bool) {
	node := t.items.Search(key)
	if nil == node {
		return nil, false
	}
	return node.Value(), true
}

func (t *table) set(key merkle.Digest, a action, entry *ledger.Entry) {
	t.items.Insert(key, &change{action: a, entry: entry})
}

func violation(operation string, a action, key merkle.Digest) {
	fault.Panicf("view: %s after %s for key: %s", operation, a, key)
}

// the overlay's answer for a key
//
// decided is false if the key must be read from the parent
func (t *table) read(key merkle.Digest) (*ledger.Entry, bool) {
	c, ok := t.lookup(key)
	if !ok {
		return nil, false
	}
	if actionErase == c.action {
		return nil, true
	}
	return c.entry, true
}

// the first key >= key that is present in the overlay
func (t *table) succ(key merkle.Digest) (merkle.Digest, bool) {
	for node := t.items.Ceiling(key); nil != node; node = node.Next() {
		if actionErase != node.Value().action {
			return node.Key(), true
		}
	}
	return merkle.Digest{}, false
}

// the first key >= key visible through the overlay over a parent
func (t *table) succThrough(parent ReadView, key merkle.Digest) (merkle.Digest, bool, error) {
	next := key
	var fromParent merkle.Digest
	found := false
	for {
		k, ok, err := parent.Succ(next)
		if nil != err {
			return merkle.Digest{}, false, err
		}
		if !ok {
			break
		}
		if c, here := t.lookup(k); !here || actionErase != c.action {
			fromParent = k
			found = true
			break
		}
		if next, ok = k.Next(); !ok {
			break
		}
	}

	fromTable, ok := t.succ(key)
	if !ok {
		return fromParent, found, nil
	}
	if !found || fromTable.Compare(fromParent) < 0 {
		return fromTable, true, nil
	}
	return fromParent, true, nil
}

func (t *table) rawInsert(entry *ledger.Entry) {
	key := entry.Key()
	c, ok := t.lookup(key)
	if !ok {
		t.set(key, actionInsert, entry)
		return
	}
	switch c.action {
	case actionErase:
		c.action = actionModify
		c.entry = entry
	default:
		violation("insert", c.action, key)
	}
}

func (t *table) rawReplace(entry *ledger.Entry) {
	key := entry.Key()
	c, ok := t.lookup(key)
	if !ok {
		t.set(key, actionModify, entry)
		return
	}
	switch c.action {
	case actionErase:
		violation("replace", c.action, key)
	case actionCache:
		c.action = actionModify
		c.entry = entry
	default:
		c.entry = entry
	}
}

func (t *table) rawErase(key merkle.Digest) {
	c, ok := t.lookup(key)
	if !ok {
		t.set(key, actionErase, nil)
		return
	}
	switch c.action {
	case actionErase:
		violation("erase", c.action, key)
	case actionInsert:
		t.items.Delete(key)
	default:
		c.action = actionErase
		c.entry = nil
	}
}

// record an unchanged entry read for modification
func (t *table) cache(entry *ledger.Entry) {
	t.set(entry.Key(), actionCache, entry)
}

// change an entry previously obtained from the table
func (t *table) update(entry *ledger.Entry) {
	key := entry.Key()
	c, ok := t.lookup(key)
	if !ok {
		fault.Panicf("view: update of key: %s that was not peeked", key)
	}
	switch c.action {
	case actionErase:
		violation("update", c.action, key)
	case actionCache:
		c.action = actionModify
		c.entry = entry
	default:
		c.entry = entry
	}
}

// remove an entry previously obtained from the table
func (t *table) erase(key merkle.Digest) {
	if _, ok := t.lookup(key); !ok {
		fault.Panicf("view: erase of key: %s that was not peeked", key)
	}
	t.rawErase(key)
}

// push every change into a RawView in key order
func (t *table) apply(to RawView) {
	t.items.Each(func(key merkle.Digest, c *change) bool {
		switch c.action {
		case actionInsert:
			to.RawInsert(c.entry)
		case actionModify:
			to.RawReplace(c.entry)
		case actionErase:
			to.RawErase(key)
		}
		return true
	})
	if 0 != t.destroyed {
		to.RawDestroyDrops(t.destroyed)
	}
}
