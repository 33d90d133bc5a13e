// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

type levelDB struct {
	sync.RWMutex
	db  *leveldb.DB
	log *logger.L
}

// open a LevelDB file database and check its version
func newLevelDB(name string, readOnly bool, log *logger.L) (*levelDB, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, err
	}
	return setupLevelDB(db, readOnly, log)
}

// NewMemory - an empty LevelDB held entirely in memory
func NewMemory() (Backend, error) {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return setupLevelDB(db, ReadWrite, logger.New("nodestore"))
}

func setupLevelDB(db *leveldb.DB, readOnly bool, log *logger.L) (*levelDB, error) {
	l := &levelDB{
		db:  db,
		log: log,
	}
	if err := checkVersion(l.get, l.put, readOnly, log); nil != err {
		db.Close()
		return nil, err
	}
	return l, nil
}

// read a raw key, nil for absent
func (l *levelDB) get(key []byte) ([]byte, error) {
	l.RLock()
	defer l.RUnlock()
	if nil == l.db {
		return nil, fault.ErrBackendNotOpen
	}
	value, err := l.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

func (l *levelDB) put(key []byte, value []byte) error {
	l.RLock()
	defer l.RUnlock()
	if nil == l.db {
		return fault.ErrBackendNotOpen
	}
	return l.db.Put(key, value, nil)
}

// Fetch - read a node by hash
func (l *levelDB) Fetch(hash merkle.Digest) ([]byte, bool, error) {
	value, err := l.get(nodeKey(hash))
	if nil != err {
		l.log.Errorf("fetch: %s  error: %s", hash, err)
		return nil, false, err
	}
	return value, nil != value, nil
}

// Store - write a node under its hash
func (l *levelDB) Store(hash merkle.Digest, data []byte) error {
	return l.put(nodeKey(hash), data)
}

// GetState - read a named record
func (l *levelDB) GetState(name string) ([]byte, bool, error) {
	value, err := l.get(stateKey(name))
	if nil != err {
		return nil, false, err
	}
	return value, nil != value, nil
}

// PutState - write a named record
func (l *levelDB) PutState(name string, value []byte) error {
	return l.put(stateKey(name), value)
}

// Begin - start a write batch
func (l *levelDB) Begin() Batch {
	return &levelDBBatch{
		owner: l,
		batch: new(leveldb.Batch),
	}
}

// Close - close the database
func (l *levelDB) Close() error {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return fault.ErrBackendNotOpen
	}
	err := l.db.Close()
	l.db = nil
	return err
}

type levelDBBatch struct {
	owner *levelDB
	batch *leveldb.Batch
}

func (b *levelDBBatch) Store(hash merkle.Digest, data []byte) {
	b.batch.Put(nodeKey(hash), data)
}

func (b *levelDBBatch) Count() int {
	return b.batch.Len()
}

func (b *levelDBBatch) Commit() error {
	b.owner.RLock()
	defer b.owner.RUnlock()
	if nil == b.owner.db {
		return fault.ErrBackendNotOpen
	}
	err := b.owner.db.Write(b.batch, nil)
	b.batch.Reset()
	return err
}

func (b *levelDBBatch) Abort() {
	b.batch.Reset()
}
