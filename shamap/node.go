// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"sync"
	"sync/atomic"

	"github.com/bitmark-inc/ledgerd/merkle"
)

// BranchFactor - number of children of an inner node
const BranchFactor = 16

// NodeType - the kind of a tree node
type NodeType int

// node kinds
const (
	InnerNode NodeType = iota
	TransactionNoMeta
	TransactionWithMeta
	AccountState
)

func (t NodeType) String() string {
	switch t {
	case InnerNode:
		return "inner"
	case TransactionNoMeta:
		return "transaction"
	case TransactionWithMeta:
		return "transaction+meta"
	case AccountState:
		return "account-state"
	default:
		return "unknown"
	}
}

// common operations of inner and leaf nodes
type node interface {
	nodeType() NodeType
	hash() merkle.Digest
	cowID() uint32
	setCowID(uint32)
	serialise() []byte
}

type leafNode struct {
	cowid uint32
	typ   NodeType
	item  *Item
	h     merkle.Digest
}

// leaves are never changed after creation, a new leaf replaces an old one
func newLeaf(typ NodeType, item *Item, cowid uint32) *leafNode {
	return &leafNode{
		cowid: cowid,
		typ:   typ,
		item:  item,
		h:     leafHash(typ, item),
	}
}

func leafHash(typ NodeType, item *Item) merkle.Digest {
	switch typ {
	case TransactionNoMeta:
		return merkle.NewDigest(merkle.PrefixTransactionID, item.data)
	case TransactionWithMeta:
		return merkle.NewDigest(merkle.PrefixTxNode, item.data, item.key[:])
	default:
		return merkle.NewDigest(merkle.PrefixLeafNode, item.data, item.key[:])
	}
}

func (l *leafNode) nodeType() NodeType   { return l.typ }
func (l *leafNode) hash() merkle.Digest  { return l.h }
func (l *leafNode) cowID() uint32        { return atomic.LoadUint32(&l.cowid) }
func (l *leafNode) setCowID(cowid uint32) { atomic.StoreUint32(&l.cowid, cowid) }

// the mutex guards materialisation of stub slots and the cached hash
// since both can change on a node shared by several trees
type innerNode struct {
	cowid    uint32
	mu       sync.Mutex
	children [BranchFactor]node
	hashes   [BranchFactor]merkle.Digest
	h        merkle.Digest
	valid    bool
}

func newInner(cowid uint32) *innerNode {
	return &innerNode{
		cowid: cowid,
		valid: true, // empty node hashes to zero
	}
}

func (n *innerNode) nodeType() NodeType    { return InnerNode }
func (n *innerNode) cowID() uint32         { return atomic.LoadUint32(&n.cowid) }
func (n *innerNode) setCowID(cowid uint32) { atomic.StoreUint32(&n.cowid, cowid) }

// a copy that shares all children
func (n *innerNode) clone(cowid uint32) *innerNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := &innerNode{
		cowid:    cowid,
		children: n.children,
		hashes:   n.hashes,
		h:        n.h,
		valid:    n.valid,
	}
	return c
}

// hash - compute on demand, children first
func (n *innerNode) hash() merkle.Digest {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.valid {
		return n.h
	}
	empty := true
	for i, child := range n.children {
		if nil != child {
			n.hashes[i] = child.hash()
		}
		if !n.hashes[i].IsZero() {
			empty = false
		}
	}
	if empty {
		n.h = merkle.ZeroDigest
	} else {
		n.h = merkle.NewDigest(merkle.PrefixInnerNode, n.hashBytes()...)
	}
	n.valid = true
	return n.h
}

// caller must hold the lock and have up to date hashes
func (n *innerNode) hashBytes() [][]byte {
	parts := make([][]byte, BranchFactor)
	for i := range n.hashes {
		parts[i] = n.hashes[i][:]
	}
	return parts
}

// child slot contents; nil child with non-zero hash is a stub
func (n *innerNode) slot(branch int) (node, merkle.Digest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.children[branch], n.hashes[branch]
}

// fill a stub slot unless another reader already did
func (n *innerNode) canonicalise(branch int, child node) node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if existing := n.children[branch]; nil != existing {
		return existing
	}
	n.children[branch] = child
	return child
}

// only for nodes owned by the calling tree
func (n *innerNode) setChild(branch int, child node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children[branch] = child
	n.hashes[branch] = merkle.ZeroDigest
	n.valid = false
}

func (n *innerNode) isEmptyBranch(branch int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return nil == n.children[branch] && n.hashes[branch].IsZero()
}

func (n *innerNode) branchCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for i := range n.children {
		if nil != n.children[i] || !n.hashes[i].IsZero() {
			count += 1
		}
	}
	return count
}

func (n *innerNode) isEmpty() bool {
	return 0 == n.branchCount()
}
