// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"fmt"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/util"
)

// NodeID - position of a node: depth and the key prefix leading to it
//
// nibbles of Prefix at or beyond Depth are always zero
type NodeID struct {
	Depth  int
	Prefix merkle.Digest
}

// RootID - position of the root node
var RootID = NodeID{}

// Child - the position below a branch
func (id NodeID) Child(branch int) (NodeID, error) {
	if id.Depth >= merkle.NibbleCount || branch < 0 || branch >= BranchFactor {
		return id, fault.ErrNodeDepthExceeded
	}
	child := id
	b := id.Depth / 2
	if 0 == id.Depth&1 {
		child.Prefix[b] |= byte(branch << 4)
	} else {
		child.Prefix[b] |= byte(branch)
	}
	child.Depth += 1
	return child, nil
}

// IsValid - depth in range and no bits set beyond the depth
func (id NodeID) IsValid() bool {
	if id.Depth < 0 || id.Depth > merkle.NibbleCount {
		return false
	}
	for d := id.Depth; d < merkle.NibbleCount; d += 1 {
		if 0 != id.Prefix.Nibble(d) {
			return false
		}
	}
	return true
}

func (id NodeID) String() string {
	return fmt.Sprintf("%d:%s", id.Depth, id.Prefix)
}

// MissingNode - a node the local store lacks
type MissingNode struct {
	ID   NodeID
	Hash merkle.Digest
}

// SyncNode - a node as sent between peers
type SyncNode struct {
	ID   NodeID
	Hash merkle.Digest
	Data []byte
}

// NewSynching - a tree that will be filled node by node until it
// matches rootHash
//
// a root already in the store is used, so only nodes the store lacks
// are reported missing
func NewSynching(family *Family, treeType Type, rootHash merkle.Digest) *Tree {
	t := &Tree{
		family:   family,
		cowid:    nextCowID(),
		state:    Synching,
		treeType: treeType,
		expected: rootHash,
	}
	if rootHash.IsZero() {
		t.root = newInner(0)
	} else if n, found, err := family.fetch(rootHash); nil == err && found {
		if root, ok := n.(*innerNode); ok {
			t.root = root
		}
	}
	return t
}

// AddRootNode - supply the root of a synching tree
func (t *Tree) AddRootNode(data []byte) error {
	if Synching != t.state {
		return fault.ErrNotSyncing
	}
	if nil != t.root {
		return fault.ErrRootAlreadyPresent
	}
	n, err := decodeNode(data, t.expected)
	if nil != err {
		return err
	}
	root, ok := n.(*innerNode)
	if !ok {
		return fault.ErrInvalidNodeType
	}
	if err := t.family.storeNode(t.expected, data, root); nil != err {
		return err
	}
	t.root = root
	return nil
}

// AddKnownNode - supply a node below the root of a synching tree
//
// the data must hash to the stub in the parent slot; returns false if
// the node was already present
func (t *Tree) AddKnownNode(id NodeID, data []byte) (bool, error) {
	if Synching != t.state {
		return false, fault.ErrNotSyncing
	}
	if !id.IsValid() || 0 == id.Depth {
		return false, fault.ErrInvalidNodeID
	}
	if nil == t.root {
		return false, fault.ErrMissingRoot
	}

	parent := t.root
	for depth := 0; depth < id.Depth-1; depth += 1 {
		child, found, err := t.descendIfPresent(parent, id.Prefix.Nibble(depth))
		if nil != err {
			return false, err
		}
		inner, ok := child.(*innerNode)
		if !found || !ok {
			return false, fault.ErrUnexpectedNode
		}
		parent = inner
	}

	branch := id.Prefix.Nibble(id.Depth - 1)
	child, h := parent.slot(branch)
	if h.IsZero() && nil == child {
		return false, fault.ErrUnexpectedNode
	}
	if nil != child {
		return false, nil
	}

	n, err := decodeNode(data, h)
	if nil != err {
		t.family.log.Warnf("node: %s  hash: %s  error: %s", id, h, err)
		return false, err
	}
	if err := t.family.storeNode(h, data, n); nil != err {
		return false, err
	}
	parent.canonicalise(branch, n)
	return true, nil
}

// like descend, but a node absent from the store is not an error
func (t *Tree) descendIfPresent(parent *innerNode, branch int) (node, bool, error) {
	child, h := parent.slot(branch)
	if nil != child {
		return child, true, nil
	}
	if h.IsZero() {
		return nil, false, nil
	}
	n, found, err := t.family.fetch(h)
	if nil != err || !found {
		return nil, false, err
	}
	return parent.canonicalise(branch, n), true, nil
}

// GetMissingNodes - up to max nodes that must be fetched from peers
//
// subtrees already known to be complete are skipped; an empty result
// means the tree is complete
func (t *Tree) GetMissingNodes(max int) ([]MissingNode, error) {
	if nil == t.root {
		return []MissingNode{{ID: RootID, Hash: t.expected}}, nil
	}
	missing := make([]MissingNode, 0)
	_, err := t.gatherMissing(t.root, RootID, max, &missing)
	return missing, err
}

// returns true if nothing is missing below n
func (t *Tree) gatherMissing(n *innerNode, id NodeID, max int, missing *[]MissingNode) (bool, error) {
	h := n.hash()
	if t.family.fullBelow.Contains(h) {
		return true, nil
	}

	complete := true
	for i := 0; i < BranchFactor; i += 1 {
		if max > 0 && len(*missing) >= max {
			return false, nil
		}
		child, found, err := t.descendIfPresent(n, i)
		if nil != err {
			return false, err
		}
		childID, err := id.Child(i)
		if nil != err {
			return false, err
		}
		if !found {
			if _, stub := n.slot(i); !stub.IsZero() {
				*missing = append(*missing, MissingNode{ID: childID, Hash: stub})
				complete = false
			}
			continue
		}
		if inner, ok := child.(*innerNode); ok {
			done, err := t.gatherMissing(inner, childID, max, missing)
			if nil != err {
				return false, err
			}
			if !done {
				complete = false
			}
		}
	}
	if complete {
		t.family.fullBelow.Put(h)
	}
	return complete, nil
}

// FinishSync - make a complete synching tree immutable
func (t *Tree) FinishSync() error {
	if Synching != t.state {
		return fault.ErrNotSyncing
	}
	missing, err := t.GetMissingNodes(1)
	if nil != err {
		return err
	}
	if 0 != len(missing) {
		return fault.ErrNodeNotFound
	}
	t.state = Immutable
	return nil
}

// GetNodeFat - the node at id followed by its descendants down to
// depth further levels, breadth first
func (t *Tree) GetNodeFat(id NodeID, depth int) ([]SyncNode, error) {
	if !id.IsValid() {
		return nil, fault.ErrInvalidNodeID
	}
	if nil == t.root {
		return nil, fault.ErrMissingRoot
	}

	var n node = t.root
	for d := 0; d < id.Depth; d += 1 {
		inner, ok := n.(*innerNode)
		if !ok {
			return nil, fault.ErrUnexpectedNode
		}
		child, err := t.descend(inner, id.Prefix.Nibble(d))
		if nil != err {
			return nil, err
		}
		if nil == child {
			return nil, fault.ErrUnexpectedNode
		}
		n = child
	}

	type entry struct {
		id    NodeID
		n     node
		level int
	}
	result := make([]SyncNode, 0)
	queue := []entry{{id: id, n: n}}
	for 0 != len(queue) {
		e := queue[0]
		queue = queue[1:]
		result = append(result, SyncNode{
			ID:   e.id,
			Hash: e.n.hash(),
			Data: e.n.serialise(),
		})
		inner, ok := e.n.(*innerNode)
		if !ok || e.level >= depth {
			continue
		}
		for i := 0; i < BranchFactor; i += 1 {
			child, err := t.descend(inner, i)
			if nil != err {
				return nil, err
			}
			if nil == child {
				continue
			}
			childID, err := e.id.Child(i)
			if nil != err {
				return nil, err
			}
			queue = append(queue, entry{id: childID, n: child, level: e.level + 1})
		}
	}
	return result, nil
}

// PackSyncNodes - encode a node list
//
//   count ++ [ depth ++ prefix ++ hash ++ length ++ data ]
//
// count, depth and length are varints
func PackSyncNodes(nodes []SyncNode) []byte {
	buffer := util.PackUint64(nil, uint64(len(nodes)))
	for _, n := range nodes {
		buffer = util.PackUint64(buffer, uint64(n.ID.Depth))
		buffer = append(buffer, n.ID.Prefix[:]...)
		buffer = append(buffer, n.Hash[:]...)
		buffer = util.PackBytes(buffer, n.Data)
	}
	return buffer
}

// UnpackSyncNodes - decode a node list, checking every hash
func UnpackSyncNodes(buffer []byte) ([]SyncNode, error) {
	count, n, err := util.UnpackInt(buffer)
	if nil != err {
		return nil, fault.ErrInvalidSyncPayload
	}
	buffer = buffer[n:]

	if count > len(buffer) {
		return nil, fault.ErrInvalidSyncPayload
	}
	nodes := make([]SyncNode, 0, count)
	for i := 0; i < count; i += 1 {
		depth, n, err := util.UnpackInt(buffer)
		if nil != err || depth > merkle.NibbleCount {
			return nil, fault.ErrInvalidSyncPayload
		}
		buffer = buffer[n:]

		if len(buffer) < 2*merkle.DigestLength {
			return nil, fault.ErrInvalidSyncPayload
		}
		s := SyncNode{ID: NodeID{Depth: depth}}
		copy(s.ID.Prefix[:], buffer)
		copy(s.Hash[:], buffer[merkle.DigestLength:])
		buffer = buffer[2*merkle.DigestLength:]

		s.Data, n, err = util.UnpackBytes(buffer)
		if nil != err {
			return nil, fault.ErrInvalidSyncPayload
		}
		buffer = buffer[n:]

		if !s.ID.IsValid() {
			return nil, fault.ErrInvalidNodeID
		}
		if merkle.SHA512Half(s.Data) != s.Hash {
			return nil, fault.ErrHashMismatch
		}
		nodes = append(nodes, s)
	}
	if 0 != len(buffer) {
		return nil, fault.ErrInvalidSyncPayload
	}
	return nodes, nil
}
