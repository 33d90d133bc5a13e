// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"bytes"

	"github.com/bitmark-inc/ledgerd/merkle"
)

// Item - an immutable key and payload stored at a leaf
type Item struct {
	key  merkle.Digest
	data []byte
}

// NewItem - create an item from a copy of the data
func NewItem(key merkle.Digest, data []byte) *Item {
	d := make([]byte, len(data))
	copy(d, data)
	return &Item{
		key:  key,
		data: d,
	}
}

// Key - the item's key
func (item *Item) Key() merkle.Digest {
	return item.key
}

// Data - the item's payload
//
// the result is shared and must not be modified
func (item *Item) Data() []byte {
	return item.data
}

// Size - payload length in bytes
func (item *Item) Size() int {
	return len(item.data)
}

// Equal - same key and same payload
func (item *Item) Equal(other *Item) bool {
	if nil == item || nil == other {
		return item == other
	}
	return item.key == other.key && bytes.Equal(item.data, other.data)
}
