// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/bitmark-inc/ledgerd/merkle"
)

// NodeStore - the hash addressed store that trees page nodes from
//
// Fetch returns found == false for a hash that was never stored; any
// other failure is returned as an error
type NodeStore interface {
	Fetch(hash merkle.Digest) (data []byte, found bool, err error)
	Store(hash merkle.Digest, data []byte) error
}

// Batch - a group of node writes committed together
type Batch interface {
	Store(hash merkle.Digest, data []byte)
	Count() int
	Commit() error
	Abort()
}

// Batcher - a node store that can group writes
type Batcher interface {
	Begin() Batch
}

// Backend - an open database
type Backend interface {
	NodeStore
	Batcher
	GetState(name string) ([]byte, bool, error)
	PutState(name string, value []byte) error
	Close() error
}

// key prefixes
const (
	nodePrefix  = 'N'
	statePrefix = 'S'
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// prepend the prefix onto the key
func prefixKey(prefix byte, key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = prefix
	return append(prefixedKey, key...)
}

func nodeKey(hash merkle.Digest) []byte {
	return prefixKey(nodePrefix, hash[:])
}

func stateKey(name string) []byte {
	return prefixKey(statePrefix, []byte(name))
}
