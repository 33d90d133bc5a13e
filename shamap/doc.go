// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shamap - authenticated, versioned 16-way radix tree over
// 256 bit keys
//
// Each level of the tree consumes one nibble of the key (high nibble
// of a byte first) so a key is a path of 64 branches.  Inner nodes
// have sixteen slots, each of which is empty, a hash stub for a
// subtree still held in the node store, or a live child.  Leaves
// hold one item.
//
// Every node is identified by the SHA512Half of its serialised form
// so the root hash commits to the complete content.  For a given set
// of items there is exactly one tree shape:
//
//   - insert pushes a leaf down only as far as needed to separate it
//     from an existing leaf
//   - erase pulls a single remaining leaf up to replace the inner
//     nodes that only led to it
//
// Trees share nodes.  Every tree has a copy on write id and every
// node records the id of the tree that may modify it in place; any
// other tree clones a node before changing it.  Id zero marks a node
// that has been written to the store and can be shared freely.
//
// A sealed (immutable) tree may be read by any number of goroutines.
// A mutable tree must only be used from one goroutine at a time.
package shamap
