// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/dgraph-io/badger"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

type badgerDB struct {
	sync.RWMutex
	db       *badger.DB
	readOnly bool
	log      *logger.L
}

// open a Badger database directory and check its version
func newBadger(directory string, readOnly bool, log *logger.L) (*badgerDB, error) {
	if !readOnly {
		err := os.MkdirAll(directory, 0700)
		if nil != err {
			return nil, fmt.Errorf("open badger: create %q: %w", directory, err)
		}
	}

	opts := badger.DefaultOptions(directory).
		WithReadOnly(readOnly).
		WithLogger(badgerLogger{log: log})

	db, err := badger.Open(opts)
	if nil != err {
		return nil, err
	}

	b := &badgerDB{
		db:       db,
		readOnly: readOnly,
		log:      log,
	}
	if err := checkVersion(b.get, b.put, readOnly, log); nil != err {
		db.Close()
		return nil, err
	}
	return b, nil
}

// read a raw key, nil for absent
func (b *badgerDB) get(key []byte) ([]byte, error) {
	b.RLock()
	defer b.RUnlock()
	if nil == b.db {
		return nil, fault.ErrBackendNotOpen
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if nil != err {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if badger.ErrKeyNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, err
	}
	if nil == value {
		value = []byte{}
	}
	return value, nil
}

func (b *badgerDB) put(key []byte, value []byte) error {
	b.RLock()
	defer b.RUnlock()
	if nil == b.db {
		return fault.ErrBackendNotOpen
	}
	if b.readOnly {
		return fault.ErrReadOnlyBackend
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Fetch - read a node by hash
func (b *badgerDB) Fetch(hash merkle.Digest) ([]byte, bool, error) {
	value, err := b.get(nodeKey(hash))
	if nil != err {
		b.log.Errorf("fetch: %s  error: %s", hash, err)
		return nil, false, err
	}
	return value, nil != value, nil
}

// Store - write a node under its hash
func (b *badgerDB) Store(hash merkle.Digest, data []byte) error {
	return b.put(nodeKey(hash), data)
}

// GetState - read a named record
func (b *badgerDB) GetState(name string) ([]byte, bool, error) {
	value, err := b.get(stateKey(name))
	if nil != err {
		return nil, false, err
	}
	return value, nil != value, nil
}

// PutState - write a named record
func (b *badgerDB) PutState(name string, value []byte) error {
	return b.put(stateKey(name), value)
}

// Begin - start a write batch
func (b *badgerDB) Begin() Batch {
	return &badgerBatch{
		owner: b,
	}
}

// Close - close the database
func (b *badgerDB) Close() error {
	b.Lock()
	defer b.Unlock()
	if nil == b.db {
		return fault.ErrBackendNotOpen
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// badger transactions have a size limit so the writes are buffered
// and split into as many transactions as needed at commit
type badgerBatch struct {
	owner *badgerDB
	keys  [][]byte
	data  [][]byte
}

func (bb *badgerBatch) Store(hash merkle.Digest, data []byte) {
	bb.keys = append(bb.keys, nodeKey(hash))
	bb.data = append(bb.data, data)
}

func (bb *badgerBatch) Count() int {
	return len(bb.keys)
}

func (bb *badgerBatch) Commit() error {
	bb.owner.RLock()
	defer bb.owner.RUnlock()
	if nil == bb.owner.db {
		return fault.ErrBackendNotOpen
	}
	if bb.owner.readOnly {
		return fault.ErrReadOnlyBackend
	}

	txn := bb.owner.db.NewTransaction(true)
	for i, key := range bb.keys {
		err := txn.Set(key, bb.data[i])
		if badger.ErrTxnTooBig == err {
			if err := txn.Commit(); nil != err {
				return err
			}
			txn = bb.owner.db.NewTransaction(true)
			err = txn.Set(key, bb.data[i])
		}
		if nil != err {
			txn.Discard()
			return err
		}
	}
	err := txn.Commit()
	bb.Abort()
	return err
}

func (bb *badgerBatch) Abort() {
	bb.keys = nil
	bb.data = nil
}

// route badger's internal messages to a logger channel
type badgerLogger struct {
	log *logger.L
}

func (l badgerLogger) format(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	return strings.TrimRight(s, "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(l.format(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(l.format(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Info(l.format(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(l.format(format, args...))
}
