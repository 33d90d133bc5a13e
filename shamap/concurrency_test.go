// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	concurrentItems   = 2000
	concurrentReaders = 8
	concurrentWriters = 8
	writerChanges     = 100
)

// run with -race: readers materialise stubs of a shared sealed tree
// while writers change, flush and compare their own snapshots of it
func TestConcurrentReadersAndSnapshots(t *testing.T) {
	family := newTestFamily(t)

	source := New(family, StateTree)
	fill(t, source, sequence(0, concurrentItems)...)
	h := source.Seal()
	_, err := source.Flush()
	assert.Nil(t, err, "flush")

	// force every node below the root to be read from the store
	family.ClearCaches()
	loaded, err := NewFromRoot(family, StateTree, h)
	assert.Nil(t, err, "load")

	wg := sync.WaitGroup{}

	for r := 0; r < concurrentReaders; r += 1 {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for k := 0; k < concurrentItems; k += 1 {
				// each reader starts at a different key
				i := (k + r*concurrentItems/concurrentReaders) % concurrentItems
				item, found, err := loaded.Get(hashKey(i))
				if !assert.Nil(t, err, "reader: %d  get: %d", r, i) {
					return
				}
				if !assert.True(t, found, "reader: %d  missing: %d", r, i) {
					return
				}
				assert.Equal(t, dataOf(i), item.Data(), "reader: %d  data: %d", r, i)
			}
		}(r)
	}

	for w := 0; w < concurrentWriters; w += 1 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			snap := loaded.Snapshot(true)
			for k := 0; k < writerChanges; k += 1 {
				i := w + concurrentWriters*k
				if k < writerChanges/2 {
					err := snap.Set(hashKey(i), []byte(fmt.Sprintf("writer-%d-%d", w, i)))
					assert.Nil(t, err, "writer: %d  set: %d", w, i)
				} else {
					erased, err := snap.Erase(hashKey(i))
					assert.Nil(t, err, "writer: %d  erase: %d", w, i)
					assert.True(t, erased, "writer: %d  erased: %d", w, i)
				}
			}
			assert.NotEqual(t, h, snap.Seal(), "writer: %d  hash", w)

			_, err := snap.Flush()
			assert.Nil(t, err, "writer: %d  flush", w)

			differences, err := loaded.Diff(snap)
			assert.Nil(t, err, "writer: %d  diff", w)
			assert.Equal(t, writerChanges, len(differences), "writer: %d  differences", w)
			for _, d := range differences {
				if nil == d.New {
					assert.Equal(t, Removed, d.Type, "writer: %d  key: %s", w, d.Key)
				} else {
					assert.Equal(t, Modified, d.Type, "writer: %d  key: %s", w, d.Key)
				}
			}
		}(w)
	}

	wg.Wait()

	assert.Equal(t, h, loaded.Hash(), "shared tree hash")
	counts, err := loaded.Verify()
	assert.Nil(t, err, "verify")
	assert.Equal(t, concurrentItems, counts.Leaves, "leaves")

	reloaded, err := NewFromRoot(family, StateTree, h)
	assert.Nil(t, err, "reload")
	items, err := reloaded.Items()
	assert.Nil(t, err, "items")
	assert.Equal(t, concurrentItems, len(items), "items after concurrent flushes")
}
