// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Key - a key item must implement the Compare function
//
// Compare returns -1, 0, +1 for receiver <, ==, > argument
type Key[K any] interface {
	Compare(K) int
}

// Node - a node in the tree
type Node[K Key[K], V any] struct {
	left    *Node[K, V] // left sub-tree
	right   *Node[K, V] // right sub-tree
	up      *Node[K, V] // points to parent node
	key     K           // key part for ordering
	value   V           // value part for data storage
	balance int         // -1, 0, +1
}

// Tree - type to hold the root node of a tree
type Tree[K Key[K], V any] struct {
	root  *Node[K, V]
	count int
}

// New - create an initially empty tree
func New[K Key[K], V any]() *Tree[K, V] {
	return &Tree[K, V]{}
}

// IsEmpty - true if tree contains no data
func (tree *Tree[K, V]) IsEmpty() bool {
	return nil == tree.root
}

// Count - number of nodes currently in the tree
func (tree *Tree[K, V]) Count() int {
	return tree.count
}

// Key - read the key from a node item
func (p *Node[K, V]) Key() K {
	return p.key
}

// Value - read the value from a node item
func (p *Node[K, V]) Value() V {
	return p.value
}

// SetValue - replace the value of a node in place
func (p *Node[K, V]) SetValue(value V) {
	p.value = value
}
