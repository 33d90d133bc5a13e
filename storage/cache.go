// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/ledgerd/merkle"
)

const (
	defaultCleanup    = 1 * time.Minute
	defaultExpiration = 2 * time.Minute
)

// node values never change so a cached value never needs to be
// invalidated, only expired
type cachedBackend struct {
	Backend
	cache      *cache.Cache
	expiration time.Duration
}

// NewCached - wrap a backend with an expiring read cache of node data
func NewCached(backend Backend, expiration time.Duration) Backend {
	return &cachedBackend{
		Backend:    backend,
		cache:      cache.New(expiration, defaultCleanup),
		expiration: expiration,
	}
}

// Fetch - read through the cache
func (c *cachedBackend) Fetch(hash merkle.Digest) ([]byte, bool, error) {
	if obj, found := c.cache.Get(string(hash[:])); found {
		return obj.([]byte), true, nil
	}
	data, found, err := c.Backend.Fetch(hash)
	if nil != err || !found {
		return data, found, err
	}
	c.cache.Set(string(hash[:]), data, c.expiration)
	return data, true, nil
}

// Store - write through the cache
func (c *cachedBackend) Store(hash merkle.Digest, data []byte) error {
	err := c.Backend.Store(hash, data)
	if nil != err {
		return err
	}
	c.cache.Set(string(hash[:]), data, c.expiration)
	return nil
}

// Begin - batched writes only enter the cache once committed
func (c *cachedBackend) Begin() Batch {
	return &cachedBatch{
		Batch: c.Backend.Begin(),
		owner: c,
	}
}

// Close - drop the cache and close the database
func (c *cachedBackend) Close() error {
	c.cache.Flush()
	return c.Backend.Close()
}

type cachedBatch struct {
	Batch
	owner   *cachedBackend
	pending map[merkle.Digest][]byte
}

func (b *cachedBatch) Store(hash merkle.Digest, data []byte) {
	if nil == b.pending {
		b.pending = make(map[merkle.Digest][]byte)
	}
	b.pending[hash] = data
	b.Batch.Store(hash, data)
}

func (b *cachedBatch) Commit() error {
	err := b.Batch.Commit()
	if nil != err {
		return err
	}
	for hash, data := range b.pending {
		b.owner.cache.Set(string(hash[:]), data, b.owner.expiration)
	}
	b.pending = nil
	return nil
}

func (b *cachedBatch) Abort() {
	b.pending = nil
	b.Batch.Abort()
}
