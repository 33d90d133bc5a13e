// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/storage"
)

// Flush - write every node not yet in the store
//
// nodes become shareable (copy on write id zero) only after the write
// succeeds; returns the number of nodes written
func (t *Tree) Flush() (int, error) {
	if nil == t.root {
		return 0, fault.ErrMissingRoot
	}
	if Invalid == t.state {
		return 0, fault.ErrImmutableTree
	}

	t.root.hash()

	pending := make([]node, 0)
	collectUnstored(t.root, &pending)
	if 0 == len(pending) {
		return 0, nil
	}

	// the empty root is never stored
	if t.root.isEmpty() && 1 == len(pending) {
		t.root.setCowID(0)
		return 0, nil
	}

	written := 0
	if batcher, ok := t.family.store.(storage.Batcher); ok {
		batch := batcher.Begin()
		for _, n := range pending {
			if isEmptyInner(n) {
				continue
			}
			batch.Store(n.hash(), n.serialise())
		}
		written = batch.Count()
		if err := batch.Commit(); nil != err {
			t.family.log.Criticalf("flush: %d nodes  error: %s", written, err)
			return 0, err
		}
	} else {
		for _, n := range pending {
			if isEmptyInner(n) {
				continue
			}
			if err := t.family.store.Store(n.hash(), n.serialise()); nil != err {
				t.family.log.Criticalf("flush node: %s  error: %s", n.hash(), err)
				return written, err
			}
			written += 1
		}
	}

	for _, n := range pending {
		n.setCowID(0)
		if !isEmptyInner(n) {
			t.family.nodes.Put(n.hash(), n)
		}
	}
	t.family.writes.Add(uint64(written))
	t.family.log.Debugf("flush: %s tree: %s  nodes: %d", t.treeType, t.Hash(), written)
	return written, nil
}

// post order so that children precede parents
//
// a node with a zero copy on write id is stored and so is everything
// below it
func collectUnstored(n node, pending *[]node) {
	if 0 == n.cowID() {
		return
	}
	if inner, ok := n.(*innerNode); ok {
		for i := 0; i < BranchFactor; i += 1 {
			child, _ := inner.slot(i)
			if nil != child {
				collectUnstored(child, pending)
			}
		}
	}
	*pending = append(*pending, n)
}

func isEmptyInner(n node) bool {
	inner, ok := n.(*innerNode)
	return ok && inner.isEmpty()
}

// NodeInfo - a node as seen by Walk
type NodeInfo struct {
	ID   NodeID
	Type NodeType
	Hash merkle.Digest
	Key  merkle.Digest // leaves only
}

// Walk - visit every node, parents before children
//
// returning false from f skips the children of that node
func (t *Tree) Walk(f func(info NodeInfo) bool) error {
	if nil == t.root {
		return fault.ErrMissingRoot
	}
	return t.walk(t.root, RootID, f)
}

func (t *Tree) walk(n node, id NodeID, f func(info NodeInfo) bool) error {
	info := NodeInfo{
		ID:   id,
		Type: n.nodeType(),
		Hash: n.hash(),
	}
	leaf, isLeaf := n.(*leafNode)
	if isLeaf {
		info.Key = leaf.item.key
	}
	if !f(info) || isLeaf {
		return nil
	}

	inner := n.(*innerNode)
	for i := 0; i < BranchFactor; i += 1 {
		child, err := t.descend(inner, i)
		if nil != err {
			return err
		}
		if nil == child {
			continue
		}
		childID, err := id.Child(i)
		if nil != err {
			return err
		}
		if err := t.walk(child, childID, f); nil != err {
			return err
		}
	}
	return nil
}

// Counts - the result of Verify
type Counts struct {
	InnerNodes int `json:"innerNodes"`
	Leaves     int `json:"leaves"`
}

// Verify - read the whole tree and check that it is canonical
//
// every leaf lies on the path of its key, every inner node except the
// root has at least two leaves below it and every stored hash matches
// the recomputed one
func (t *Tree) Verify() (Counts, error) {
	counts := Counts{}
	if nil == t.root {
		return counts, fault.ErrMissingRoot
	}
	_, err := t.verify(t.root, RootID, &counts)
	if nil != err {
		t.family.log.Criticalf("verify: %s tree: %s  error: %s", t.treeType, t.Hash(), err)
	}
	return counts, err
}

// returns the number of leaves below n
func (t *Tree) verify(n *innerNode, id NodeID, counts *Counts) (int, error) {
	counts.InnerNodes += 1
	leaves := 0
	parts := make([][]byte, BranchFactor)
	for i := 0; i < BranchFactor; i += 1 {
		child, err := t.descend(n, i)
		if nil != err {
			return 0, err
		}
		if nil == child {
			parts[i] = merkle.ZeroDigest[:]
			continue
		}
		childID, err := id.Child(i)
		if nil != err {
			return 0, err
		}
		switch c := child.(type) {
		case *leafNode:
			if !onPath(c.item.key, childID) {
				return 0, fault.ErrUnexpectedNode
			}
			if c.h != leafHash(c.typ, c.item) {
				return 0, fault.ErrHashMismatch
			}
			counts.Leaves += 1
			leaves += 1
		case *innerNode:
			below, err := t.verify(c, childID, counts)
			if nil != err {
				return 0, err
			}
			leaves += below
		}
		h := child.hash()
		parts[i] = h[:]
	}

	if 0 != id.Depth && leaves < 2 {
		return 0, fault.ErrUnexpectedNode
	}
	if 0 == leaves {
		if !n.hash().IsZero() {
			return 0, fault.ErrHashMismatch
		}
		return 0, nil
	}
	if merkle.NewDigest(merkle.PrefixInnerNode, parts...) != n.hash() {
		return 0, fault.ErrHashMismatch
	}
	return leaves, nil
}

// true if key starts with the prefix of id
func onPath(key merkle.Digest, id NodeID) bool {
	for d := 0; d < id.Depth; d += 1 {
		if key.Nibble(d) != id.Prefix.Nibble(d) {
			return false
		}
	}
	return true
}
