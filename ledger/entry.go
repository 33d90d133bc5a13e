// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"

	"github.com/bitmark-inc/ledgerd/merkle"
)

// Entry - a serialised ledger object stored in the state tree
//
// entries returned by a read are shared and must not be changed, use
// Copy to obtain one that may be
type Entry struct {
	key  merkle.Digest
	data []byte
}

// NewEntry - create an entry from a copy of the data
func NewEntry(key merkle.Digest, data []byte) *Entry {
	e := &Entry{key: key}
	e.SetData(data)
	return e
}

// Key - the state tree key
func (e *Entry) Key() merkle.Digest {
	return e.key
}

// Data - the serialised object
func (e *Entry) Data() []byte {
	return e.data
}

// SetData - replace the serialised object
func (e *Entry) SetData(data []byte) {
	e.data = make([]byte, len(data))
	copy(e.data, data)
}

// Copy - an independent duplicate
func (e *Entry) Copy() *Entry {
	return NewEntry(e.key, e.data)
}

// Equal - same key and same data
func (e *Entry) Equal(other *Entry) bool {
	if nil == e || nil == other {
		return e == other
	}
	return e.key == other.key && bytes.Equal(e.data, other.data)
}
