// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"github.com/bitmark-inc/logger"
	"github.com/decred/dcrd/container/lru"

	"github.com/bitmark-inc/ledgerd/counter"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/storage"
)

// default cache limits
const (
	DefaultNodeCacheSize = 65536
	DefaultFullBelowSize = 524288
)

// Family - resources shared by all trees backed by the same store
type Family struct {
	store     storage.NodeStore
	nodes     *lru.Map[merkle.Digest, node]
	fullBelow *lru.Set[merkle.Digest]
	log       *logger.L

	fetches counter.Counter
	misses  counter.Counter
	writes  counter.Counter
}

// Statistics - node traffic of a family
type Statistics struct {
	Fetches uint64 `json:"fetches"`
	Misses  uint64 `json:"misses"`
	Writes  uint64 `json:"writes"`
}

// NewFamily - create a family over a node store
//
// zero sizes select the defaults
func NewFamily(store storage.NodeStore, nodeCacheSize uint32, fullBelowSize uint32) *Family {
	if 0 == nodeCacheSize {
		nodeCacheSize = DefaultNodeCacheSize
	}
	if 0 == fullBelowSize {
		fullBelowSize = DefaultFullBelowSize
	}
	return &Family{
		store:     store,
		nodes:     lru.NewMap[merkle.Digest, node](nodeCacheSize),
		fullBelow: lru.NewSet[merkle.Digest](fullBelowSize),
		log:       logger.New("shamap"),
	}
}

// Store - the underlying node store
func (f *Family) Store() storage.NodeStore {
	return f.store
}

// Statistics - current counters
func (f *Family) Statistics() Statistics {
	return Statistics{
		Fetches: f.fetches.Uint64(),
		Misses:  f.misses.Uint64(),
		Writes:  f.writes.Uint64(),
	}
}

// ClearCaches - drop all cached nodes and full below marks
func (f *Family) ClearCaches() {
	f.nodes.Clear()
	f.fullBelow.Clear()
}

// fetch a node by hash from cache or store
//
// a hash that is not in the store returns found == false so that
// callers decide if that is fatal
func (f *Family) fetch(hash merkle.Digest) (node, bool, error) {
	if n, ok := f.nodes.Get(hash); ok {
		return n, true, nil
	}

	f.fetches.Increment()
	data, found, err := f.store.Fetch(hash)
	if nil != err {
		f.log.Criticalf("fetch node: %s  error: %s", hash, err)
		return nil, false, err
	}
	if !found {
		f.misses.Increment()
		return nil, false, nil
	}

	n, err := decodeNode(data, hash)
	if nil != err {
		f.log.Criticalf("decode node: %s  error: %s", hash, err)
		return nil, false, err
	}
	f.nodes.Put(hash, n)
	return n, true, nil
}

// fetch a node that must exist
func (f *Family) fetchRequired(hash merkle.Digest) (node, error) {
	n, found, err := f.fetch(hash)
	if nil != err {
		return nil, err
	}
	if !found {
		f.log.Criticalf("missing node: %s", hash)
		return nil, fault.ErrNodeNotFound
	}
	return n, nil
}

// store verified node data received from elsewhere
func (f *Family) storeNode(hash merkle.Digest, data []byte, n node) error {
	err := f.store.Store(hash, data)
	if nil != err {
		f.log.Criticalf("store node: %s  error: %s", hash, err)
		return err
	}
	f.writes.Increment()
	f.nodes.Put(hash, n)
	return nil
}
