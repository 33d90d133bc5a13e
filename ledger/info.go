// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// close flags
const (
	// consensus could not agree on a close time
	NoConsensusTime uint8 = 0x01
)

// Info - the ledger header
//
// times are seconds since 2000-01-01T00:00:00Z
type Info struct {
	Seq                 uint32        `json:"seq"`
	ParentHash          merkle.Digest `json:"parentHash"`
	Hash                merkle.Digest `json:"hash"`
	TxHash              merkle.Digest `json:"txHash"`
	StateHash           merkle.Digest `json:"stateHash"`
	Drops               uint64        `json:"drops"`
	ParentCloseTime     uint32        `json:"parentCloseTime"`
	CloseTime           uint32        `json:"closeTime"`
	CloseTimeResolution uint8         `json:"closeTimeResolution"`
	CloseFlags          uint8         `json:"closeFlags"`
}

// header layout
//
//   LWR\0 ++ seq ++ drops ++ parent ++ tx ++ state ++
//   parent close ++ close ++ resolution ++ flags
//
// integers are big endian, the hash of these bytes is the ledger hash
const headerSize = merkle.PrefixLength + 4 + 8 + 3*merkle.DigestLength + 4 + 4 + 1 + 1

// Pack - the stored form of the header
func (info *Info) Pack() []byte {
	buffer := make([]byte, 0, headerSize)
	buffer = append(buffer, merkle.PrefixLedgerMaster.Bytes()...)
	buffer = binary.BigEndian.AppendUint32(buffer, info.Seq)
	buffer = binary.BigEndian.AppendUint64(buffer, info.Drops)
	buffer = append(buffer, info.ParentHash[:]...)
	buffer = append(buffer, info.TxHash[:]...)
	buffer = append(buffer, info.StateHash[:]...)
	buffer = binary.BigEndian.AppendUint32(buffer, info.ParentCloseTime)
	buffer = binary.BigEndian.AppendUint32(buffer, info.CloseTime)
	buffer = append(buffer, info.CloseTimeResolution, info.CloseFlags)
	return buffer
}

// CalculateHash - the ledger hash of this header
func (info *Info) CalculateHash() merkle.Digest {
	return merkle.SHA512Half(info.Pack())
}

// UnpackInfo - decode a stored header, filling in its hash
func UnpackInfo(buffer []byte) (*Info, error) {
	if headerSize != len(buffer) {
		return nil, fault.ErrLedgerHeaderLength
	}
	prefix, _ := merkle.PrefixFromBytes(buffer)
	if merkle.PrefixLedgerMaster != prefix {
		return nil, fault.ErrInvalidLedgerHeader
	}

	info := &Info{
		Hash: merkle.SHA512Half(buffer),
	}
	n := merkle.PrefixLength
	info.Seq = binary.BigEndian.Uint32(buffer[n:])
	n += 4
	info.Drops = binary.BigEndian.Uint64(buffer[n:])
	n += 8
	n += copy(info.ParentHash[:], buffer[n:])
	n += copy(info.TxHash[:], buffer[n:])
	n += copy(info.StateHash[:], buffer[n:])
	info.ParentCloseTime = binary.BigEndian.Uint32(buffer[n:])
	n += 4
	info.CloseTime = binary.BigEndian.Uint32(buffer[n:])
	n += 4
	info.CloseTimeResolution = buffer[n]
	info.CloseFlags = buffer[n+1]
	return info, nil
}

// RoundCloseTime - round a close time to the nearest multiple of the
// resolution, zero stays zero
func RoundCloseTime(closeTime uint32, resolution uint8) uint32 {
	if 0 == closeTime || 0 == resolution {
		return closeTime
	}
	r := uint32(resolution)
	closeTime += r / 2
	return closeTime - closeTime%r
}
