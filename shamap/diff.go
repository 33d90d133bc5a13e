// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"sort"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// DifferenceType - how an item changed between two trees
type DifferenceType int

// kinds of difference
const (
	Added DifferenceType = iota
	Removed
	Modified
)

func (d DifferenceType) String() string {
	switch d {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Difference - one changed key
//
// Old is nil for Added and New is nil for Removed
type Difference struct {
	Key  merkle.Digest
	Type DifferenceType
	Old  *Item
	New  *Item
}

// Diff - every difference from this tree to other, in key order
func (t *Tree) Diff(other *Tree) ([]Difference, error) {
	differences, _, err := t.Compare(other, 0)
	return differences, err
}

// Compare - differences from this tree (old) to other (new) in key
// order
//
// stops when more than maxCount differences are found and returns
// complete == false; maxCount <= 0 means no limit.  Subtrees with
// equal hashes are skipped without being read.
func (t *Tree) Compare(other *Tree, maxCount int) ([]Difference, bool, error) {
	if nil == t.root || nil == other.root {
		return nil, false, fault.ErrMissingRoot
	}
	c := &comparison{
		old:      t,
		new:      other,
		maxCount: maxCount,
	}
	if t.Hash() != other.Hash() {
		err := c.compareInner(t.root, other.root)
		if errTooMany == err {
			return c.sorted(), false, nil
		}
		if nil != err {
			return nil, false, err
		}
	}
	return c.sorted(), true, nil
}

type comparisonLimit struct{}

func (comparisonLimit) Error() string { return "too many differences" }

var errTooMany error = comparisonLimit{}

type comparison struct {
	old         *Tree
	new         *Tree
	maxCount    int
	differences []Difference
}

func (c *comparison) sorted() []Difference {
	sort.Slice(c.differences, func(i, j int) bool {
		return c.differences[i].Key.Compare(c.differences[j].Key) < 0
	})
	return c.differences
}

func (c *comparison) add(d Difference) error {
	c.differences = append(c.differences, d)
	if c.maxCount > 0 && len(c.differences) > c.maxCount {
		return errTooMany
	}
	return nil
}

func (c *comparison) compareInner(a *innerNode, b *innerNode) error {
	for i := 0; i < BranchFactor; i += 1 {
		ca, err := c.old.descend(a, i)
		if nil != err {
			return err
		}
		cb, err := c.new.descend(b, i)
		if nil != err {
			return err
		}
		if err := c.compareNodes(ca, cb); nil != err {
			return err
		}
	}
	return nil
}

func (c *comparison) compareNodes(a node, b node) error {
	if nil == a && nil == b {
		return nil
	}
	if nil != a && nil != b && a.hash() == b.hash() {
		return nil
	}

	switch na := a.(type) {
	case nil:
		return c.addAll(c.new, b, Added)

	case *leafNode:
		switch nb := b.(type) {
		case nil:
			return c.add(Difference{Key: na.item.key, Type: Removed, Old: na.item})
		case *leafNode:
			if na.item.key == nb.item.key {
				return c.add(Difference{Key: na.item.key, Type: Modified, Old: na.item, New: nb.item})
			}
			if err := c.add(Difference{Key: na.item.key, Type: Removed, Old: na.item}); nil != err {
				return err
			}
			return c.add(Difference{Key: nb.item.key, Type: Added, New: nb.item})
		case *innerNode:
			return c.walkBranch(c.new, nb, na.item, false)
		}

	case *innerNode:
		switch nb := b.(type) {
		case nil:
			return c.addAll(c.old, na, Removed)
		case *leafNode:
			return c.walkBranch(c.old, na, nb.item, true)
		case *innerNode:
			return c.compareInner(na, nb)
		}
	}
	return nil
}

// every item below n is only on one side
func (c *comparison) addAll(t *Tree, n node, typ DifferenceType) error {
	switch x := n.(type) {
	case *leafNode:
		d := Difference{Key: x.item.key, Type: typ}
		if Added == typ {
			d.New = x.item
		} else {
			d.Old = x.item
		}
		return c.add(d)
	case *innerNode:
		for i := 0; i < BranchFactor; i += 1 {
			child, err := t.descend(x, i)
			if nil != err {
				return err
			}
			if nil == child {
				continue
			}
			if err := c.addAll(t, child, typ); nil != err {
				return err
			}
		}
	}
	return nil
}

// a subtree on one side against a single leaf on the other
//
// subtreeIsOld selects which side the subtree came from
func (c *comparison) walkBranch(t *Tree, n *innerNode, leaf *Item, subtreeIsOld bool) error {
	matched := false
	var walkErr error
	_, err := t.forEach(n, func(item *Item) bool {
		if item.key == leaf.key {
			matched = true
			if !item.Equal(leaf) {
				if subtreeIsOld {
					walkErr = c.add(Difference{Key: item.key, Type: Modified, Old: item, New: leaf})
				} else {
					walkErr = c.add(Difference{Key: item.key, Type: Modified, Old: leaf, New: item})
				}
			}
		} else if subtreeIsOld {
			walkErr = c.add(Difference{Key: item.key, Type: Removed, Old: item})
		} else {
			walkErr = c.add(Difference{Key: item.key, Type: Added, New: item})
		}
		return nil == walkErr
	})
	if nil != err {
		return err
	}
	if nil != walkErr {
		return walkErr
	}
	if matched {
		return nil
	}
	if subtreeIsOld {
		return c.add(Difference{Key: leaf.key, Type: Added, New: leaf})
	}
	return c.add(Difference{Key: leaf.key, Type: Removed, Old: leaf})
}
