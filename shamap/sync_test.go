// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

func TestNodeID(t *testing.T) {
	id, err := RootID.Child(0xa)
	assert.Nil(t, err, "child")
	id, err = id.Child(0x5)
	assert.Nil(t, err, "grandchild")

	assert.Equal(t, 2, id.Depth, "depth")
	assert.Equal(t, byte(0xa5), id.Prefix[0], "prefix")
	assert.True(t, id.IsValid(), "valid")

	bad := NodeID{Depth: 1, Prefix: keyOf(0xa5)}
	assert.False(t, bad.IsValid(), "nibble beyond depth")

	deepest := NodeID{Depth: merkle.NibbleCount}
	_, err = deepest.Child(0)
	assert.Equal(t, fault.ErrNodeDepthExceeded, err, "too deep")
}

// fetch nodes for a synching tree from a complete one
func syncFrom(t *testing.T, source *Tree, target *Tree, batch int) int {
	rounds := 0
	for {
		missing, err := target.GetMissingNodes(batch)
		assert.Nil(t, err, "missing nodes")
		if 0 == len(missing) {
			return rounds
		}
		rounds += 1

		for _, m := range missing {
			nodes, err := source.GetNodeFat(m.ID, 1)
			assert.Nil(t, err, "get node: %s", m.ID)

			received, err := UnpackSyncNodes(PackSyncNodes(nodes))
			assert.Nil(t, err, "unpack")

			for _, n := range received {
				if 0 == n.ID.Depth {
					err := target.AddRootNode(n.Data)
					if fault.ErrRootAlreadyPresent != err {
						assert.Nil(t, err, "add root")
					}
					continue
				}
				_, err := target.AddKnownNode(n.ID, n.Data)
				assert.Nil(t, err, "add node: %s", n.ID)
			}
		}
	}
}

func TestSync(t *testing.T) {
	source := New(newTestFamily(t), StateTree)
	fill(t, source, sequence(0, 500)...)
	h := source.Seal()

	target := NewSynching(newTestFamily(t), StateTree, h)
	assert.Equal(t, Synching, target.State(), "state")
	assert.Equal(t, h, target.Hash(), "expected hash")

	err := target.FinishSync()
	assert.Equal(t, fault.ErrNodeNotFound, err, "finish without nodes")

	rounds := syncFrom(t, source, target, 64)
	assert.True(t, rounds > 1, "rounds: %d", rounds)

	err = target.FinishSync()
	assert.Nil(t, err, "finish")
	assert.Equal(t, Immutable, target.State(), "state")
	assert.Equal(t, h, target.Hash(), "synced hash")

	differences, err := source.Diff(target)
	assert.Nil(t, err, "diff")
	assert.Equal(t, 0, len(differences), "differences")

	// complete trees can be reloaded from the target store
	target.Family().ClearCaches()
	loaded, err := NewFromRoot(target.Family(), StateTree, h)
	assert.Nil(t, err, "load")
	counts, err := loaded.Verify()
	assert.Nil(t, err, "verify")
	assert.Equal(t, 500, counts.Leaves, "leaves")
}

func TestSyncRejectsBadNodes(t *testing.T) {
	source := New(newTestFamily(t), StateTree)
	fill(t, source, sequence(0, 50)...)
	h := source.Seal()

	target := NewSynching(newTestFamily(t), StateTree, h)

	_, err := target.AddKnownNode(NodeID{Depth: 1}, []byte("early"))
	assert.Equal(t, fault.ErrMissingRoot, err, "node before root")

	err = target.AddRootNode([]byte("not the root"))
	assert.Equal(t, fault.ErrHashMismatch, err, "wrong root")

	root, err := source.GetNodeFat(RootID, 1)
	assert.Nil(t, err, "root")
	assert.Nil(t, target.AddRootNode(root[0].Data), "add root")
	assert.Equal(t, fault.ErrRootAlreadyPresent, target.AddRootNode(root[0].Data), "second root")

	child := root[1]
	_, err = target.AddKnownNode(child.ID, []byte("tampered"))
	assert.Equal(t, fault.ErrHashMismatch, err, "tampered node")

	added, err := target.AddKnownNode(child.ID, child.Data)
	assert.Nil(t, err, "add node")
	assert.True(t, added, "added")

	added, err = target.AddKnownNode(child.ID, child.Data)
	assert.Nil(t, err, "duplicate node")
	assert.False(t, added, "added twice")

	_, err = target.AddKnownNode(NodeID{Depth: 0}, child.Data)
	assert.Equal(t, fault.ErrInvalidNodeID, err, "root id")

	_, err = source.AddKnownNode(child.ID, child.Data)
	assert.Equal(t, fault.ErrNotSyncing, err, "not synching")
}

func TestSyncEmptyTree(t *testing.T) {
	target := NewSynching(newTestFamily(t), StateTree, merkle.ZeroDigest)
	missing, err := target.GetMissingNodes(10)
	assert.Nil(t, err, "missing")
	assert.Equal(t, 0, len(missing), "missing nodes")
	assert.Nil(t, target.FinishSync(), "finish")
}

func TestUnpackSyncNodesRejectsTampering(t *testing.T) {
	source := New(newTestFamily(t), StateTree)
	fill(t, source, sequence(0, 10)...)

	nodes, err := source.GetNodeFat(RootID, 1)
	assert.Nil(t, err, "fat root")
	assert.True(t, len(nodes) > 1, "node count")

	packed := PackSyncNodes(nodes)
	packed[len(packed)-1] ^= 0xff
	_, err = UnpackSyncNodes(packed)
	assert.Equal(t, fault.ErrHashMismatch, err, "tampered payload")

	packed = PackSyncNodes(nodes)
	_, err = UnpackSyncNodes(packed[:len(packed)-3])
	assert.NotNil(t, err, "truncated payload")
}

func TestSyncResumesFromStore(t *testing.T) {
	source := New(newTestFamily(t), StateTree)
	fill(t, source, sequence(0, 200)...)
	h := source.Seal()
	_, err := source.Flush()
	assert.Nil(t, err, "flush")

	// everything is already in the source store
	complete := NewSynching(source.Family(), StateTree, h)
	missing, err := complete.GetMissingNodes(0)
	assert.Nil(t, err, "missing")
	assert.Equal(t, 0, len(missing), "nothing missing")
	assert.Nil(t, complete.FinishSync(), "finish")

	// a partial copy continues after the caches are lost
	family := newTestFamily(t)
	partial := NewSynching(family, StateTree, h)
	root, err := source.GetNodeFat(RootID, 0)
	assert.Nil(t, err, "root")
	assert.Nil(t, partial.AddRootNode(root[0].Data), "add root")

	family.ClearCaches()
	resumed := NewSynching(family, StateTree, h)
	missing, err = resumed.GetMissingNodes(0)
	assert.Nil(t, err, "missing")
	assert.True(t, len(missing) > 0, "children missing")
	for _, m := range missing {
		assert.NotEqual(t, 0, m.ID.Depth, "root is not missing")
	}

	syncFrom(t, source, resumed, 32)
	assert.Nil(t, resumed.FinishSync(), "finish")
	assert.Equal(t, h, resumed.Hash(), "hash")
}
