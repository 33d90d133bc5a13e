// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package view - layered read and write access to ledger state
//
// a sealed ledger.Ledger is a ReadView; an OpenView collects the
// changes that will become the next ledger; an ApplyView is a sandbox
// for a single transaction over an OpenView or another ApplyView
package view

import (
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// ReadView - consistent read only access to one version of the state
//
// entries returned by Read are shared and must not be changed
type ReadView interface {
	Info() ledger.Info
	Fees() ledger.Fees
	Rules() ledger.Rules
	Open() bool
	Read(key merkle.Digest) (*ledger.Entry, error)
	Exists(key merkle.Digest) (bool, error)
	Succ(key merkle.Digest) (merkle.Digest, bool, error)
	TxExists(id merkle.Digest) (bool, error)
}

// RawView - unchecked changes to state
//
// inserting a present key, or replacing or erasing an absent one, is a
// contract violation and panics
type RawView interface {
	RawInsert(entry *ledger.Entry)
	RawReplace(entry *ledger.Entry)
	RawErase(key merkle.Digest)
	RawDestroyDrops(drops uint64)
}

// TxsRawView - a RawView that also records transactions
type TxsRawView interface {
	RawView
	RawTxInsert(id merkle.Digest, tx []byte, meta []byte)
	TxCount() int
}

// ReadRawView - what an ApplyView needs from its parent
type ReadRawView interface {
	ReadView
	RawView
}

// check interface compliance
var (
	_ ReadView    = (*ledger.Ledger)(nil)
	_ ReadRawView = (*OpenView)(nil)
	_ TxsRawView  = (*OpenView)(nil)
	_ ReadRawView = (*ApplyView)(nil)
)
