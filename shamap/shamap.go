// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"github.com/bitmark-inc/ledgerd/counter"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// Type - what a tree holds
type Type int

// tree types
const (
	StateTree Type = iota
	TransactionTree
)

func (t Type) String() string {
	switch t {
	case StateTree:
		return "state"
	case TransactionTree:
		return "transaction"
	default:
		return "unknown"
	}
}

// State - the life cycle stage of a tree
type State int

// tree states
const (
	Modifying State = iota // may be changed
	Immutable              // sealed, can be shared
	Synching               // being filled from peers
	Invalid                // abandoned after an error
)

func (s State) String() string {
	switch s {
	case Modifying:
		return "modifying"
	case Immutable:
		return "immutable"
	case Synching:
		return "synching"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// source of copy on write ids, zero is reserved for stored nodes
var cowIDs counter.Counter

func nextCowID() uint32 {
	for {
		id := uint32(cowIDs.Increment())
		if 0 != id {
			return id
		}
	}
}

// Tree - a SHAMap
type Tree struct {
	family   *Family
	root     *innerNode
	cowid    uint32
	state    State
	treeType Type
	expected merkle.Digest // root hash while synching
}

// New - an empty mutable tree
func New(family *Family, treeType Type) *Tree {
	cowid := nextCowID()
	return &Tree{
		family:   family,
		root:     newInner(cowid),
		cowid:    cowid,
		state:    Modifying,
		treeType: treeType,
	}
}

// NewFromRoot - an immutable tree whose root is read from the store
func NewFromRoot(family *Family, treeType Type, rootHash merkle.Digest) (*Tree, error) {
	t := &Tree{
		family:   family,
		cowid:    nextCowID(),
		state:    Immutable,
		treeType: treeType,
	}
	if rootHash.IsZero() {
		t.root = newInner(0)
		return t, nil
	}

	n, err := family.fetchRequired(rootHash)
	if nil != err {
		return nil, err
	}
	root, ok := n.(*innerNode)
	if !ok {
		family.log.Criticalf("root: %s is not an inner node", rootHash)
		return nil, fault.ErrInvalidNodeType
	}
	t.root = root
	return t, nil
}

// Family - the family the tree belongs to
func (t *Tree) Family() *Family {
	return t.family
}

// Type - state or transaction tree
func (t *Tree) Type() Type {
	return t.treeType
}

// State - current life cycle stage
func (t *Tree) State() State {
	return t.state
}

// IsMutable - true if the tree may be changed
func (t *Tree) IsMutable() bool {
	return Modifying == t.state
}

// Hash - the root hash, zero for an empty tree
func (t *Tree) Hash() merkle.Digest {
	if nil == t.root {
		return t.expected
	}
	return t.root.hash()
}

// IsEmpty - true if the tree holds no items
func (t *Tree) IsEmpty() bool {
	return nil == t.root || t.root.isEmpty()
}

// Snapshot - an O(1) copy of the tree
//
// the copy shares every node with the original; after this neither
// tree owns the shared nodes so both clone them before any change
func (t *Tree) Snapshot(mutable bool) *Tree {
	n := &Tree{
		family:   t.family,
		root:     t.root,
		cowid:    nextCowID(),
		state:    Immutable,
		treeType: t.treeType,
	}
	if mutable {
		n.state = Modifying
	}
	if Modifying == t.state {
		t.cowid = nextCowID()
	}
	return n
}

// Seal - compute every hash and make the tree immutable
func (t *Tree) Seal() merkle.Digest {
	h := t.Hash()
	if Modifying == t.state {
		t.state = Immutable
	}
	return h
}

// Invalidate - mark a tree unusable after a fatal error
func (t *Tree) Invalidate() {
	t.state = Invalid
}

// leaf type for items added with Set
func (t *Tree) leafType() NodeType {
	if TransactionTree == t.treeType {
		return TransactionWithMeta
	}
	return AccountState
}

func (t *Tree) mustBeMutable(operation string) {
	if Modifying != t.state {
		t.family.log.Criticalf("%s on %s tree", operation, t.state)
		fault.PanicWithError(operation, fault.ErrImmutableTree)
	}
}

// a node this tree may modify in place
func (t *Tree) unshare(n *innerNode) *innerNode {
	if n.cowID() == t.cowid {
		return n
	}
	return n.clone(t.cowid)
}

// return the child in a slot, reading a stub from the store
func (t *Tree) descend(parent *innerNode, branch int) (node, error) {
	child, h := parent.slot(branch)
	if nil != child || h.IsZero() {
		return child, nil
	}
	// the lock is not held while fetching
	n, err := t.family.fetchRequired(h)
	if nil != err {
		return nil, err
	}
	return parent.canonicalise(branch, n), nil
}

// Get - find the item with a key
//
// found is false if the key is absent; an error means the tree could
// not be read
func (t *Tree) Get(key merkle.Digest) (*Item, bool, error) {
	leaf, err := t.findLeaf(key)
	if nil != err || nil == leaf {
		return nil, false, err
	}
	return leaf.item, true, nil
}

// Has - true if the key is present
func (t *Tree) Has(key merkle.Digest) (bool, error) {
	leaf, err := t.findLeaf(key)
	return nil != leaf, err
}

func (t *Tree) findLeaf(key merkle.Digest) (*leafNode, error) {
	if nil == t.root {
		return nil, fault.ErrMissingRoot
	}
	n := t.root
	for depth := 0; depth < merkle.NibbleCount; depth += 1 {
		child, err := t.descend(n, key.Nibble(depth))
		if nil != err {
			return nil, err
		}
		switch c := child.(type) {
		case nil:
			return nil, nil
		case *leafNode:
			if c.item.key == key {
				return c, nil
			}
			return nil, nil
		case *innerNode:
			n = c
		}
	}
	return nil, nil
}

// Set - insert or replace an item using the tree's leaf type
func (t *Tree) Set(key merkle.Digest, data []byte) error {
	return t.SetWithType(t.leafType(), key, data)
}

// SetWithType - insert or replace an item with an explicit leaf type
//
// for TransactionNoMeta the key must be the transaction id, the
// prefixed hash of the data
func (t *Tree) SetWithType(typ NodeType, key merkle.Digest, data []byte) error {
	t.mustBeMutable("set")
	if InnerNode == typ {
		return fault.ErrInvalidNodeType
	}
	item := NewItem(key, data)
	if TransactionNoMeta == typ && key != merkle.NewDigest(merkle.PrefixTransactionID, data) {
		return fault.ErrInvalidNodeData
	}
	leaf := newLeaf(typ, item, t.cowid)

	root, _, err := t.set(t.root, 0, leaf)
	if nil != err {
		t.Invalidate()
		return err
	}
	t.root = root
	return nil
}

// recursive insert, returns the replacement for n
func (t *Tree) set(n *innerNode, depth int, leaf *leafNode) (*innerNode, bool, error) {
	key := leaf.item.key
	branch := key.Nibble(depth)
	child, err := t.descend(n, branch)
	if nil != err {
		return n, false, err
	}

	var replacement node
	switch c := child.(type) {
	case nil:
		replacement = leaf

	case *innerNode:
		sub, changed, err := t.set(c, depth+1, leaf)
		if nil != err || !changed {
			return n, false, err
		}
		replacement = sub

	case *leafNode:
		if c.item.key == key {
			if c.h == leaf.h {
				return n, false, nil
			}
			replacement = leaf
		} else {
			replacement = t.split(depth+1, c, leaf)
		}
	}

	n = t.unshare(n)
	n.setChild(branch, replacement)
	return n, true, nil
}

// build the chain of inner nodes that separates two leaves
func (t *Tree) split(depth int, a *leafNode, b *leafNode) *innerNode {
	n := newInner(t.cowid)
	ba := a.item.key.Nibble(depth)
	bb := b.item.key.Nibble(depth)
	if ba != bb {
		n.setChild(ba, a)
		n.setChild(bb, b)
	} else {
		n.setChild(ba, t.split(depth+1, a, b))
	}
	return n
}

// Erase - remove an item
//
// returns false if the key was not present
func (t *Tree) Erase(key merkle.Digest) (bool, error) {
	t.mustBeMutable("erase")

	replacement, found, err := t.erase(t.root, 0, key)
	if nil != err {
		t.Invalidate()
		return false, err
	}
	if !found {
		return false, nil
	}
	root, ok := replacement.(*innerNode)
	if !ok {
		// the root itself never collapses
		fault.Panicf("erase: root replaced by: %T", replacement)
	}
	t.root = root
	return true, nil
}

// recursive erase, returns the replacement for n which can be nil, a
// leaf or an inner node
func (t *Tree) erase(n *innerNode, depth int, key merkle.Digest) (node, bool, error) {
	branch := key.Nibble(depth)
	child, err := t.descend(n, branch)
	if nil != err {
		return n, false, err
	}

	var replacement node
	switch c := child.(type) {
	case nil:
		return n, false, nil

	case *leafNode:
		if c.item.key != key {
			return n, false, nil
		}
		replacement = nil

	case *innerNode:
		sub, found, err := t.erase(c, depth+1, key)
		if nil != err || !found {
			return n, false, err
		}
		replacement = sub
	}

	n = t.unshare(n)
	n.setChild(branch, replacement)

	if 0 == depth {
		return n, true, nil
	}

	switch n.branchCount() {
	case 0:
		return nil, true, nil
	case 1:
		leaf, err := t.onlyBelow(n)
		if nil != err {
			return n, false, err
		}
		if nil != leaf {
			return leaf, true, nil
		}
	}
	return n, true, nil
}

// the leaf if exactly one leaf exists below n, nil otherwise
func (t *Tree) onlyBelow(n *innerNode) (*leafNode, error) {
	for {
		var next node
		for i := 0; i < BranchFactor; i += 1 {
			if n.isEmptyBranch(i) {
				continue
			}
			if nil != next {
				return nil, nil
			}
			child, err := t.descend(n, i)
			if nil != err {
				return nil, err
			}
			next = child
		}
		switch c := next.(type) {
		case *leafNode:
			return c, nil
		case *innerNode:
			n = c
		default:
			return nil, nil
		}
	}
}
