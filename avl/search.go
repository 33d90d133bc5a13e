// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Search - find a specific item
func (tree *Tree[K, V]) Search(key K) *Node[K, V] {
	p := tree.root
	for nil != p {
		switch p.key.Compare(key) {
		case +1: // p.key > key
			p = p.left
		case -1: // p.key < key
			p = p.right
		default:
			return p
		}
	}
	return nil
}

// Ceiling - the node with the lowest key that is >= key
func (tree *Tree[K, V]) Ceiling(key K) *Node[K, V] {
	return tree.bound(key, true)
}

// Higher - the node with the lowest key that is > key
func (tree *Tree[K, V]) Higher(key K) *Node[K, V] {
	return tree.bound(key, false)
}

func (tree *Tree[K, V]) bound(key K, inclusive bool) *Node[K, V] {
	var candidate *Node[K, V]
	p := tree.root
	for nil != p {
		c := p.key.Compare(key)
		if 0 == c && inclusive {
			return p
		}
		if c > 0 {
			candidate = p
			p = p.left
		} else {
			p = p.right
		}
	}
	return candidate
}
