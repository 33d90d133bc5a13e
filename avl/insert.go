// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Insert - insert a new node into the tree, an existing key has its
// value replaced
//
// returns true if a new node was added
func (tree *Tree[K, V]) Insert(key K, value V) bool {
	added := false
	tree.root, added, _ = insert(key, value, tree.root)
	if added {
		tree.count += 1
	}
	return added
}

// internal routine for insert
// returns: subtree root, node was added, subtree height grew
func insert[K Key[K], V any](key K, value V, p *Node[K, V]) (*Node[K, V], bool, bool) {
	if nil == p { // insert new node
		return &Node[K, V]{key: key, value: value}, true, true
	}

	h := false
	added := false
	switch p.key.Compare(key) {
	case +1: // p.key > key
		p.left, added, h = insert(key, value, p.left)
		if h {
			p.left.up = p
			p, h = grownLeft(p)
		}
	case -1: // p.key < key
		p.right, added, h = insert(key, value, p.right)
		if h {
			p.right.up = p
			p, h = grownRight(p)
		}
	default:
		p.value = value
	}
	return p, added, h
}

// left branch has grown
func grownLeft[K Key[K], V any](p *Node[K, V]) (*Node[K, V], bool) {
	switch p.balance {
	case 1:
		p.balance = 0
		return p, false
	case 0:
		p.balance = -1
		return p, true
	}

	// balance == -1, rebalance
	p1 := p.left
	if -1 == p1.balance {
		// single LL rotation
		p.left = p1.right
		p1.right = p
		p.balance = 0
		p1.up = p.up
		p.up = p1
		if nil != p.left {
			p.left.up = p
		}
		p = p1
	} else {
		// double LR rotation
		p2 := p1.right
		p1.right = p2.left
		p2.left = p1
		p.left = p2.right
		p2.right = p
		if -1 == p2.balance {
			p.balance = 1
		} else {
			p.balance = 0
		}
		if +1 == p2.balance {
			p1.balance = -1
		} else {
			p1.balance = 0
		}
		if nil != p.left {
			p.left.up = p
		}
		if nil != p1.right {
			p1.right.up = p1
		}
		p2.up = p.up
		p.up = p2
		p1.up = p2
		p = p2
	}
	p.balance = 0
	return p, false
}

// right branch has grown
func grownRight[K Key[K], V any](p *Node[K, V]) (*Node[K, V], bool) {
	switch p.balance {
	case -1:
		p.balance = 0
		return p, false
	case 0:
		p.balance = 1
		return p, true
	}

	// balance == +1, rebalance
	p1 := p.right
	if 1 == p1.balance {
		// single RR rotation
		p.right = p1.left
		p1.left = p
		p.balance = 0
		p1.up = p.up
		p.up = p1
		if nil != p.right {
			p.right.up = p
		}
		p = p1
	} else {
		// double RL rotation
		p2 := p1.left
		p1.left = p2.right
		p2.right = p1
		p.right = p2.left
		p2.left = p
		if +1 == p2.balance {
			p.balance = -1
		} else {
			p.balance = 0
		}
		if -1 == p2.balance {
			p1.balance = 1
		} else {
			p1.balance = 0
		}
		if nil != p.right {
			p.right.up = p
		}
		if nil != p1.left {
			p1.left.up = p1
		}
		p2.up = p.up
		p.up = p2
		p1.up = p2
		p = p2
	}
	p.balance = 0
	return p, false
}
