// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
	"github.com/bitmark-inc/ledgerd/storage"
	"github.com/bitmark-inc/ledgerd/view"
)

// state name holding the hash of the last closed ledger
const lastClosedState = "last-closed"

// closer - close a ledger at each interval in standalone mode
type closer struct {
	log      *logger.L
	backend  storage.Backend
	family   *shamap.Family
	interval time.Duration
	last     *ledger.Ledger
}

func newCloser(backend storage.Backend, family *shamap.Family, interval time.Duration) (*closer, error) {
	last, err := lastClosed(backend, family)
	if nil != err {
		return nil, err
	}
	return &closer{
		log:      logger.New("closer"),
		backend:  backend,
		family:   family,
		interval: interval,
		last:     last,
	}, nil
}

// Run - background process loop
func (c *closer) Run(args interface{}, shutdown <-chan struct{}) {

	log := c.log
	log.Infof("starting from ledger: %d  hash: %s", c.last.Info().Seq, c.last.Hash())

	delay := time.NewTicker(c.interval)
	defer delay.Stop()

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case now := <-delay.C:
			if _, err := c.closeLedger(now); nil != err {
				log.Criticalf("close ledger error: %s", err)
				fault.PanicIfError("closer", err)
			}
		}
	}
	log.Info("shutting down…")
	log.Flush()
}

// closeLedger - close, persist and record the next ledger
func (c *closer) closeLedger(now time.Time) (*ledger.Ledger, error) {
	open := view.NewOpenView(c.last)
	l, err := open.Close(uint32(now.Unix()), 0)
	if nil != err {
		return nil, err
	}
	if _, err := l.Save(); nil != err {
		return nil, err
	}
	hash := l.Hash()
	if err := c.backend.PutState(lastClosedState, hash[:]); nil != err {
		return nil, err
	}
	c.last = l
	return l, nil
}

// lastClosed - load the ledger recorded as last closed
func lastClosed(backend storage.Backend, family *shamap.Family) (*ledger.Ledger, error) {
	value, found, err := backend.GetState(lastClosedState)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrLedgerNotFound
	}
	var hash merkle.Digest
	if err := merkle.DigestFromBytes(&hash, value); nil != err {
		return nil, err
	}
	return ledger.Load(family, hash)
}

// createGenesis - build, persist and record the first ledger
//
// fails if a ledger was already recorded
func createGenesis(backend storage.Backend, family *shamap.Family, parameters *ledger.GenesisParameters) (*ledger.Ledger, error) {
	_, found, err := backend.GetState(lastClosedState)
	if nil != err {
		return nil, err
	}
	if found {
		return nil, fault.ErrAlreadyInitialised
	}

	l, err := ledger.Genesis(family, parameters)
	if nil != err {
		return nil, err
	}
	if _, err := l.Save(); nil != err {
		return nil, err
	}
	hash := l.Hash()
	if err := backend.PutState(lastClosedState, hash[:]); nil != err {
		return nil, err
	}
	return l, nil
}
