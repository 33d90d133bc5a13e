// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// ForEach - visit every item in ascending key order
//
// stops early without error if f returns false
func (t *Tree) ForEach(f func(item *Item) bool) error {
	if nil == t.root {
		return fault.ErrMissingRoot
	}
	_, err := t.forEach(t.root, f)
	return err
}

func (t *Tree) forEach(n *innerNode, f func(item *Item) bool) (bool, error) {
	for i := 0; i < BranchFactor; i += 1 {
		child, err := t.descend(n, i)
		if nil != err {
			return false, err
		}
		switch c := child.(type) {
		case *leafNode:
			if !f(c.item) {
				return false, nil
			}
		case *innerNode:
			more, err := t.forEach(c, f)
			if nil != err || !more {
				return false, err
			}
		}
	}
	return true, nil
}

// Items - all items in key order
func (t *Tree) Items() ([]*Item, error) {
	items := make([]*Item, 0)
	err := t.ForEach(func(item *Item) bool {
		items = append(items, item)
		return true
	})
	return items, err
}

// Succ - the first item with a key >= key
func (t *Tree) Succ(key merkle.Digest) (*Item, bool, error) {
	return t.bound(key, true)
}

// UpperBound - the first item with a key > key
func (t *Tree) UpperBound(key merkle.Digest) (*Item, bool, error) {
	return t.bound(key, false)
}

func (t *Tree) bound(key merkle.Digest, inclusive bool) (*Item, bool, error) {
	if nil == t.root {
		return nil, false, fault.ErrMissingRoot
	}
	leaf, err := t.lowerBound(t.root, 0, key, inclusive)
	if nil != err || nil == leaf {
		return nil, false, err
	}
	return leaf.item, true, nil
}

// every key below a branch greater than the key's own branch at this
// depth is greater than the key
func (t *Tree) lowerBound(n *innerNode, depth int, key merkle.Digest, inclusive bool) (*leafNode, error) {
	branch := key.Nibble(depth)
	for i := branch; i < BranchFactor; i += 1 {
		child, err := t.descend(n, i)
		if nil != err {
			return nil, err
		}
		switch c := child.(type) {
		case nil:
			continue
		case *leafNode:
			cmp := c.item.key.Compare(key)
			if cmp > 0 || (inclusive && 0 == cmp) {
				return c, nil
			}
		case *innerNode:
			if i == branch {
				leaf, err := t.lowerBound(c, depth+1, key, inclusive)
				if nil != err || nil != leaf {
					return leaf, err
				}
				continue
			}
			return t.firstBelow(c)
		}
	}
	return nil, nil
}

// the leaf with the lowest key below n
func (t *Tree) firstBelow(n *innerNode) (*leafNode, error) {
	for i := 0; i < BranchFactor; i += 1 {
		child, err := t.descend(n, i)
		if nil != err {
			return nil, err
		}
		switch c := child.(type) {
		case *leafNode:
			return c, nil
		case *innerNode:
			return t.firstBelow(c)
		}
	}
	return nil, nil
}
