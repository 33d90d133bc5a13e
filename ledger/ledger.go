// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - sealed ledgers: a header over a state tree and a
// transaction tree
package ledger

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
	"github.com/bitmark-inc/ledgerd/util"
)

// Ledger - an immutable ledger
type Ledger struct {
	info  Info
	fees  Fees
	rules Rules
	state *shamap.Tree
	txs   *shamap.Tree
}

// New - seal both trees and build a ledger over them
//
// the tree and ledger hashes in info are recomputed; fees and rules
// are read from their state entries
func New(info Info, state *shamap.Tree, txs *shamap.Tree) (*Ledger, error) {
	if shamap.StateTree != state.Type() || shamap.TransactionTree != txs.Type() {
		return nil, fault.ErrInvalidNodeType
	}
	info.StateHash = state.Seal()
	info.TxHash = txs.Seal()
	info.Hash = info.CalculateHash()

	l := &Ledger{
		info:  info,
		state: state,
		txs:   txs,
	}
	if err := l.readSettings(); nil != err {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) readSettings() error {
	l.rules = NewRules()

	item, found, err := l.state.Get(FeesKey)
	if nil != err {
		return err
	}
	if found {
		l.fees, err = UnpackFees(item.Data())
		if nil != err {
			return err
		}
	}

	item, found, err = l.state.Get(AmendmentsKey)
	if nil != err {
		return err
	}
	if found {
		l.rules, err = UnpackRules(item.Data())
		if nil != err {
			return err
		}
	}
	return nil
}

// Info - the header
func (l *Ledger) Info() Info {
	return l.info
}

// Hash - the ledger hash
func (l *Ledger) Hash() merkle.Digest {
	return l.info.Hash
}

// Fees - the fee schedule in force
func (l *Ledger) Fees() Fees {
	return l.fees
}

// Rules - the enabled amendments
func (l *Ledger) Rules() Rules {
	return l.rules
}

// Open - a sealed ledger is never open
func (l *Ledger) Open() bool {
	return false
}

// StateTree - the account state
func (l *Ledger) StateTree() *shamap.Tree {
	return l.state
}

// TxTree - the transactions
func (l *Ledger) TxTree() *shamap.Tree {
	return l.txs
}

// Read - the entry for a key, nil if absent
func (l *Ledger) Read(key merkle.Digest) (*Entry, error) {
	item, found, err := l.state.Get(key)
	if nil != err || !found {
		return nil, err
	}
	return &Entry{key: key, data: item.Data()}, nil
}

// Exists - true if the key is present
func (l *Ledger) Exists(key merkle.Digest) (bool, error) {
	return l.state.Has(key)
}

// Succ - the first key >= key
func (l *Ledger) Succ(key merkle.Digest) (merkle.Digest, bool, error) {
	item, found, err := l.state.Succ(key)
	if nil != err || !found {
		return merkle.Digest{}, false, err
	}
	return item.Key(), true, nil
}

// TxExists - true if the transaction is in this ledger
func (l *Ledger) TxExists(id merkle.Digest) (bool, error) {
	return l.txs.Has(id)
}

// TxRead - a transaction and its metadata
func (l *Ledger) TxRead(id merkle.Digest) ([]byte, []byte, bool, error) {
	item, found, err := l.txs.Get(id)
	if nil != err || !found {
		return nil, nil, false, err
	}
	tx, meta, err := UnpackTransaction(item.Data())
	if nil != err {
		return nil, nil, false, err
	}
	return tx, meta, true, nil
}

// ForEach - visit every entry in key order
func (l *Ledger) ForEach(f func(entry *Entry) bool) error {
	return l.state.ForEach(func(item *shamap.Item) bool {
		return f(&Entry{key: item.Key(), data: item.Data()})
	})
}

// Save - write both trees and the header to the store
//
// returns the number of tree nodes written
func (l *Ledger) Save() (int, error) {
	log := logger.New("ledger")

	stateCount, err := l.state.Flush()
	if nil != err {
		log.Errorf("ledger: %d  flush state error: %s", l.info.Seq, err)
		return 0, err
	}
	txCount, err := l.txs.Flush()
	if nil != err {
		log.Errorf("ledger: %d  flush transactions error: %s", l.info.Seq, err)
		return 0, err
	}

	err = l.state.Family().Store().Store(l.info.Hash, l.info.Pack())
	if nil != err {
		log.Errorf("ledger: %d  store header error: %s", l.info.Seq, err)
		return 0, err
	}
	log.Infof("saved ledger: %d  hash: %s  nodes: %d", l.info.Seq, l.info.Hash, stateCount+txCount)
	return stateCount + txCount, nil
}

// Load - read a saved ledger
func Load(family *shamap.Family, hash merkle.Digest) (*Ledger, error) {
	data, found, err := family.Store().Fetch(hash)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrLedgerNotFound
	}
	if merkle.SHA512Half(data) != hash {
		logger.New("ledger").Criticalf("ledger header: %s  hash mismatch", hash)
		return nil, fault.ErrHashMismatch
	}
	info, err := UnpackInfo(data)
	if nil != err {
		return nil, err
	}

	state, err := shamap.NewFromRoot(family, shamap.StateTree, info.StateHash)
	if nil != err {
		return nil, err
	}
	txs, err := shamap.NewFromRoot(family, shamap.TransactionTree, info.TxHash)
	if nil != err {
		return nil, err
	}

	l := &Ledger{
		info:  *info,
		state: state,
		txs:   txs,
	}
	if err := l.readSettings(); nil != err {
		return nil, err
	}
	return l, nil
}

// PackTransaction - transaction tree item data
//
//   length ++ tx ++ length ++ meta
func PackTransaction(tx []byte, meta []byte) []byte {
	buffer := make([]byte, 0, len(tx)+len(meta)+2*util.Varint64MaximumBytes)
	buffer = util.PackBytes(buffer, tx)
	return util.PackBytes(buffer, meta)
}

// UnpackTransaction - split transaction tree item data
func UnpackTransaction(buffer []byte) ([]byte, []byte, error) {
	tx, n, err := util.UnpackBytes(buffer)
	if nil != err {
		return nil, nil, fault.ErrInvalidTransactionBlob
	}
	meta, m, err := util.UnpackBytes(buffer[n:])
	if nil != err || n+m != len(buffer) {
		return nil, nil, fault.ErrInvalidTransactionBlob
	}
	return tx, meta, nil
}
