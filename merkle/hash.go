// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"crypto/sha512"
	"encoding/binary"
)

// HashPrefix - four byte domain separation tag placed in front of
// every hashed object
type HashPrefix uint32

// domain tags, the values spell out three ASCII characters and a zero
const (
	PrefixTransactionID HashPrefix = 0x54584E00 // TXN
	PrefixTxNode        HashPrefix = 0x534E4400 // SND
	PrefixLeafNode      HashPrefix = 0x4D4C4E00 // MLN
	PrefixInnerNode     HashPrefix = 0x4D494E00 // MIN
	PrefixLedgerMaster  HashPrefix = 0x4C575200 // LWR
)

// PrefixLength - bytes occupied by a prefix in a serialised object
const PrefixLength = 4

// Bytes - big endian form of the tag
func (p HashPrefix) Bytes() []byte {
	b := make([]byte, PrefixLength)
	binary.BigEndian.PutUint32(b, uint32(p))
	return b
}

// PrefixFromBytes - read the tag at the start of a serialised object
//
// second value is false if the buffer is too short
func PrefixFromBytes(buffer []byte) (HashPrefix, bool) {
	if len(buffer) < PrefixLength {
		return 0, false
	}
	return HashPrefix(binary.BigEndian.Uint32(buffer)), true
}

// SHA512Half - first half of the SHA-512 of the concatenated parts
func SHA512Half(parts ...[]byte) Digest {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// NewDigest - hash a prefixed object
func NewDigest(prefix HashPrefix, parts ...[]byte) Digest {
	all := make([][]byte, 0, len(parts)+1)
	all = append(all, prefix.Bytes())
	all = append(all, parts...)
	return SHA512Half(all...)
}
