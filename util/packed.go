// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"math"

	"github.com/bitmark-inc/ledgerd/fault"
)

// MaximumPackedLength - largest single field accepted by UnpackBytes
const MaximumPackedLength = 64 * 1024 * 1024

// PackBytes - append a varint length followed by the data
func PackBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// PackUint64 - append a varint value
func PackUint64(buffer []byte, value uint64) []byte {
	return append(buffer, ToVarint64(value)...)
}

// UnpackBytes - extract one length prefixed field
//
// returns a copy of the field and the total number of bytes consumed
func UnpackBytes(buffer []byte) ([]byte, int, error) {
	length, n := ClippedVarint64(buffer, 0, MaximumPackedLength)
	if 0 == n {
		return nil, 0, fault.ErrInvalidCount
	}
	if len(buffer)-n < length {
		return nil, 0, fault.ErrInvalidCount
	}
	data := make([]byte, length)
	copy(data, buffer[n:n+length])
	return data, n + length, nil
}

// UnpackUint64 - extract a varint value
func UnpackUint64(buffer []byte) (uint64, int, error) {
	value, n := FromVarint64(buffer)
	if 0 == n {
		return 0, 0, fault.ErrInvalidCount
	}
	return value, n, nil
}

// UnpackInt - extract a varint value that must fit an int
func UnpackInt(buffer []byte) (int, int, error) {
	value, n, err := UnpackUint64(buffer)
	if nil != err {
		return 0, 0, err
	}
	if value > math.MaxInt32 {
		return 0, 0, fault.ErrInvalidCount
	}
	return int(value), n, nil
}
