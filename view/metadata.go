// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view

import (
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/util"
)

// ChangeType - the effect of a transaction on an entry
type ChangeType byte

// change types
const (
	Created ChangeType = iota + 1
	Modified
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change - one entry affected by a transaction
//
// Before is empty for Created and After is empty for Deleted
type Change struct {
	Type   ChangeType    `json:"type"`
	Key    merkle.Digest `json:"key"`
	Before []byte        `json:"before,omitempty"`
	After  []byte        `json:"after,omitempty"`
}

// Metadata - what a transaction did, stored with it in the
// transaction tree
type Metadata struct {
	Index   uint32   `json:"index"`
	Changes []Change `json:"changes"`
}

// Pack - binary form
//
//   index ++ count ++ [ type ++ key ++ length ++ before ++ length ++ after ]
func (m *Metadata) Pack() []byte {
	buffer := util.PackUint64(nil, uint64(m.Index))
	buffer = util.PackUint64(buffer, uint64(len(m.Changes)))
	for _, c := range m.Changes {
		buffer = append(buffer, byte(c.Type))
		buffer = append(buffer, c.Key[:]...)
		buffer = util.PackBytes(buffer, c.Before)
		buffer = util.PackBytes(buffer, c.After)
	}
	return buffer
}

// UnpackMetadata - decode the binary form
func UnpackMetadata(buffer []byte) (*Metadata, error) {
	index, n, err := util.UnpackUint64(buffer)
	if nil != err || index > 0xffffffff {
		return nil, fault.ErrInvalidTransactionBlob
	}
	buffer = buffer[n:]

	count, n, err := util.UnpackInt(buffer)
	if nil != err || count > len(buffer) {
		return nil, fault.ErrInvalidTransactionBlob
	}
	buffer = buffer[n:]

	m := &Metadata{
		Index:   uint32(index),
		Changes: make([]Change, 0, count),
	}
	for i := 0; i < count; i += 1 {
		if len(buffer) < 1+merkle.DigestLength {
			return nil, fault.ErrInvalidTransactionBlob
		}
		c := Change{Type: ChangeType(buffer[0])}
		if c.Type < Created || c.Type > Deleted {
			return nil, fault.ErrInvalidTransactionBlob
		}
		copy(c.Key[:], buffer[1:])
		buffer = buffer[1+merkle.DigestLength:]

		c.Before, n, err = util.UnpackBytes(buffer)
		if nil != err {
			return nil, fault.ErrInvalidTransactionBlob
		}
		buffer = buffer[n:]
		c.After, n, err = util.UnpackBytes(buffer)
		if nil != err {
			return nil, fault.ErrInvalidTransactionBlob
		}
		buffer = buffer[n:]
		m.Changes = append(m.Changes, c)
	}
	if 0 != len(buffer) {
		return nil, fault.ErrInvalidTransactionBlob
	}
	return m, nil
}
