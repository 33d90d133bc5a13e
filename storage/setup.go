// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/fault"
)

// backend names
const (
	LevelDBBackend = "leveldb"
	BadgerBackend  = "badger"
	MemoryBackend  = "memory"
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Configuration - node store setup
type Configuration struct {
	Backend     string `gluamapper:"backend" json:"backend"`
	Directory   string `gluamapper:"directory" json:"directory"`
	Name        string `gluamapper:"name" json:"name"`
	CacheExpiry string `gluamapper:"cache_expiry" json:"cache_expiry"`
}

// Open - open up the configured database
//
// the result is wrapped in a read cache unless the cache expiry is
// zero
func Open(conf *Configuration, readOnly bool) (Backend, error) {
	log := logger.New("nodestore")

	var backend Backend
	var err error
	switch conf.Backend {
	case "", LevelDBBackend:
		name := filepath.Join(conf.Directory, conf.Name+".leveldb")
		backend, err = newLevelDB(name, readOnly, log)
	case BadgerBackend:
		name := filepath.Join(conf.Directory, conf.Name+".badger")
		backend, err = newBadger(name, readOnly, log)
	case MemoryBackend:
		backend, err = NewMemory()
	default:
		return nil, fault.ErrInvalidBackend
	}
	if nil != err {
		log.Errorf("open %s backend error: %s", conf.Backend, err)
		return nil, err
	}

	expiry := defaultExpiration
	if "" != conf.CacheExpiry {
		expiry, err = time.ParseDuration(conf.CacheExpiry)
		if nil != err {
			backend.Close()
			return nil, err
		}
	}
	if 0 == expiry {
		return backend, nil
	}

	log.Infof("open %s backend with cache expiry: %s", conf.Backend, expiry)
	return NewCached(backend, expiry), nil
}

// version checking shared by the backends
//
// getter returns nil, nil for absent version
func checkVersion(get func([]byte) ([]byte, error), put func([]byte, []byte) error, readOnly bool, log *logger.L) error {
	versionValue, err := get(versionKey)
	if nil != err {
		return err
	}

	if nil == versionValue {
		if readOnly {
			return nil
		}
		currentVersion := make([]byte, 4)
		binary.BigEndian.PutUint32(currentVersion, uint32(currentDBVersion))
		return put(versionKey, currentVersion)
	}

	if 4 != len(versionValue) {
		log.Criticalf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
		return fault.ErrDatabaseVersion
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	if version != currentDBVersion {
		log.Criticalf("database version: %d  current version: %d", version, currentDBVersion)
		return fault.ErrDatabaseVersion
	}
	return nil
}
