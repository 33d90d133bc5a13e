// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/storage"
)

func TestMemoryBackend(t *testing.T) {
	backend, err := storage.NewMemory()
	require.Nil(t, err, "memory backend")
	defer backend.Close()

	checkBackend(t, backend)
}

func TestLevelDBBackend(t *testing.T) {
	directory, err := ioutil.TempDir("", "ledgerd-leveldb")
	require.Nil(t, err)
	defer os.RemoveAll(directory)

	conf := &storage.Configuration{
		Backend:     storage.LevelDBBackend,
		Directory:   directory,
		Name:        "nodes",
		CacheExpiry: "0s",
	}

	backend, err := storage.Open(conf, storage.ReadWrite)
	require.Nil(t, err, "open")
	checkBackend(t, backend)

	hash := merkle.SHA512Half([]byte("persist"))
	err = backend.Store(hash, []byte("persist"))
	assert.Nil(t, err)
	assert.Nil(t, backend.Close())

	// reopen read only and find the same node
	backend, err = storage.Open(conf, storage.ReadOnly)
	require.Nil(t, err, "reopen")
	defer backend.Close()

	data, found, err := backend.Fetch(hash)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("persist"), data)
}

func TestBadgerBackend(t *testing.T) {
	directory, err := ioutil.TempDir("", "ledgerd-badger")
	require.Nil(t, err)
	defer os.RemoveAll(directory)

	conf := &storage.Configuration{
		Backend:   storage.BadgerBackend,
		Directory: directory,
		Name:      "nodes",
	}

	backend, err := storage.Open(conf, storage.ReadWrite)
	require.Nil(t, err, "open")
	checkBackend(t, backend)
	assert.Nil(t, backend.Close())

	// reopen read only: reads work and nothing can be written
	backend, err = storage.Open(conf, storage.ReadOnly)
	require.Nil(t, err, "reopen")
	defer backend.Close()

	one := []byte("node one")
	data, found, err := backend.Fetch(merkle.SHA512Half(one))
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, one, data)

	value, found, err := backend.GetState("last")
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{1, 2, 3}, value)

	extra := []byte("extra")
	assert.Equal(t, fault.ErrReadOnlyBackend, backend.Store(merkle.SHA512Half(extra), extra), "store")
	assert.Equal(t, fault.ErrReadOnlyBackend, backend.PutState("last", extra), "put state")

	batch := backend.Begin()
	batch.Store(merkle.SHA512Half(extra), extra)
	assert.Equal(t, fault.ErrReadOnlyBackend, batch.Commit(), "batch")

	_, found, err = backend.Fetch(merkle.SHA512Half(extra))
	assert.Nil(t, err)
	assert.False(t, found, "read only write visible")
}

func TestBadgerReadOnlyMissing(t *testing.T) {
	directory, err := ioutil.TempDir("", "ledgerd-badger")
	require.Nil(t, err)
	defer os.RemoveAll(directory)

	conf := &storage.Configuration{
		Backend:   storage.BadgerBackend,
		Directory: directory,
		Name:      "absent",
	}
	_, err = storage.Open(conf, storage.ReadOnly)
	assert.NotNil(t, err, "read only open of a missing database")

	_, err = os.Stat(filepath.Join(directory, "absent.badger"))
	assert.True(t, os.IsNotExist(err), "directory created")
}

func TestInvalidBackend(t *testing.T) {
	conf := &storage.Configuration{
		Backend: "no-such-backend",
	}
	_, err := storage.Open(conf, storage.ReadWrite)
	assert.Equal(t, fault.ErrInvalidBackend, err)
}

func TestClosedBackend(t *testing.T) {
	backend, err := storage.NewMemory()
	require.Nil(t, err)
	assert.Nil(t, backend.Close())

	_, _, err = backend.Fetch(merkle.Digest{})
	assert.Equal(t, fault.ErrBackendNotOpen, err)
	assert.Equal(t, fault.ErrBackendNotOpen, backend.Close())
}

// common operations that every backend must support
func checkBackend(t *testing.T, backend storage.Backend) {
	missing := merkle.SHA512Half([]byte("missing"))
	data, found, err := backend.Fetch(missing)
	assert.Nil(t, err, "fetch missing")
	assert.False(t, found, "missing node found")
	assert.Nil(t, data)

	one := []byte("node one")
	hashOne := merkle.SHA512Half(one)
	assert.Nil(t, backend.Store(hashOne, one))

	data, found, err = backend.Fetch(hashOne)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, one, data)

	// batched writes are invisible until commit
	batch := backend.Begin()
	nodes := [][]byte{[]byte("two"), []byte("three"), []byte("four")}
	for _, n := range nodes {
		batch.Store(merkle.SHA512Half(n), n)
	}
	assert.Equal(t, 3, batch.Count())

	_, found, _ = backend.Fetch(merkle.SHA512Half(nodes[0]))
	assert.False(t, found, "uncommitted node visible")

	assert.Nil(t, batch.Commit())
	for _, n := range nodes {
		data, found, err = backend.Fetch(merkle.SHA512Half(n))
		assert.Nil(t, err)
		assert.True(t, found)
		assert.Equal(t, n, data)
	}

	aborted := backend.Begin()
	aborted.Store(missing, []byte("missing"))
	aborted.Abort()
	_, found, _ = backend.Fetch(missing)
	assert.False(t, found, "aborted node visible")

	// named state
	_, found, err = backend.GetState("last")
	assert.Nil(t, err)
	assert.False(t, found)

	assert.Nil(t, backend.PutState("last", []byte{1, 2, 3}))
	value, found, err := backend.GetState("last")
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{1, 2, 3}, value)
}
