// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/bitmark-inc/ledgerd/fault"
)

// DigestLength - number of bytes in the digest
const DigestLength = 32

// NibbleCount - number of 4 bit path elements in a digest
const NibbleCount = 2 * DigestLength

// Digest - type for a 256 bit key or node hash
//
// stored as big endian byte array so that byte order is key order
// represented as big endian hex value for print and JSON encoding
// to convert to bytes just use d[:]
type Digest [DigestLength]byte

// ZeroDigest - the hash of an empty subtree
var ZeroDigest Digest

// IsZero - true if all bits are zero
func (digest Digest) IsZero() bool {
	return digest == ZeroDigest
}

// Compare - three way comparison in key order
func (digest Digest) Compare(other Digest) int {
	return bytes.Compare(digest[:], other[:])
}

// Nibble - the branch number of the key at a given depth
//
// even depths select the high nibble of byte depth/2
func (digest Digest) Nibble(depth int) int {
	b := digest[depth/2]
	if 0 == depth&1 {
		return int(b >> 4)
	}
	return int(b & 0x0f)
}

// Next - the digest that immediately follows this one in key order
//
// second value is false if the digest was all ones
func (digest Digest) Next() (Digest, bool) {
	for i := DigestLength - 1; i >= 0; i -= 1 {
		digest[i] += 1
		if 0 != digest[i] {
			return digest, true
		}
	}
	return digest, false
}

// convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA512Half:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	if len(token) != hex.EncodedLen(DigestLength) {
		return fault.ErrInvalidDigest
	}

	_, err = hex.Decode(digest[:], token)
	return err
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if DigestLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidDigest
	}
	buffer := make([]byte, DigestLength)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.ErrDigestLength
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromHex - parse a 64 character hex string
func DigestFromHex(s string) (Digest, error) {
	var digest Digest
	err := digest.UnmarshalText([]byte(s))
	return digest, err
}
