// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamap

import (
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
)

// stored node format ("prefix format")
//
//   inner:               MIN\0 ++ 16 × child hash
//   account state:       MLN\0 ++ data ++ key
//   transaction + meta:  SND\0 ++ data ++ key
//   transaction:         TXN\0 ++ data            (key = node hash)
//
// the node hash is SHA512Half of exactly these bytes

const innerNodeSize = merkle.PrefixLength + BranchFactor*merkle.DigestLength

func (l *leafNode) serialise() []byte {
	data := l.item.data
	switch l.typ {
	case TransactionNoMeta:
		buffer := make([]byte, 0, merkle.PrefixLength+len(data))
		buffer = append(buffer, merkle.PrefixTransactionID.Bytes()...)
		return append(buffer, data...)
	case TransactionWithMeta:
		buffer := make([]byte, 0, merkle.PrefixLength+len(data)+merkle.DigestLength)
		buffer = append(buffer, merkle.PrefixTxNode.Bytes()...)
		buffer = append(buffer, data...)
		return append(buffer, l.item.key[:]...)
	default:
		buffer := make([]byte, 0, merkle.PrefixLength+len(data)+merkle.DigestLength)
		buffer = append(buffer, merkle.PrefixLeafNode.Bytes()...)
		buffer = append(buffer, data...)
		return append(buffer, l.item.key[:]...)
	}
}

func (n *innerNode) serialise() []byte {
	n.hash() // bring child hashes up to date

	n.mu.Lock()
	defer n.mu.Unlock()
	buffer := make([]byte, 0, innerNodeSize)
	buffer = append(buffer, merkle.PrefixInnerNode.Bytes()...)
	for i := range n.hashes {
		buffer = append(buffer, n.hashes[i][:]...)
	}
	return buffer
}

// decode a node in prefix format and verify that it matches the
// expected hash
//
// the decoded node is shareable (copy on write id zero)
func decodeNode(data []byte, expected merkle.Digest) (node, error) {
	actual := merkle.SHA512Half(data)
	if actual != expected {
		return nil, fault.ErrHashMismatch
	}
	return decode(data, actual)
}

// decode without verification, h is the hash of data
func decode(data []byte, h merkle.Digest) (node, error) {
	prefix, ok := merkle.PrefixFromBytes(data)
	if !ok {
		return nil, fault.ErrInvalidNodeData
	}
	body := data[merkle.PrefixLength:]

	switch prefix {
	case merkle.PrefixInnerNode:
		if len(data) != innerNodeSize {
			return nil, fault.ErrInvalidNodeData
		}
		n := newInner(0)
		empty := true
		for i := 0; i < BranchFactor; i += 1 {
			copy(n.hashes[i][:], body[i*merkle.DigestLength:])
			if !n.hashes[i].IsZero() {
				empty = false
			}
		}
		if empty {
			return nil, fault.ErrInvalidNodeData
		}
		n.h = h
		n.valid = true
		return n, nil

	case merkle.PrefixTransactionID:
		item := NewItem(h, body)
		return &leafNode{typ: TransactionNoMeta, item: item, h: h}, nil

	case merkle.PrefixTxNode, merkle.PrefixLeafNode:
		if len(body) < merkle.DigestLength {
			return nil, fault.ErrInvalidNodeData
		}
		split := len(body) - merkle.DigestLength
		var key merkle.Digest
		copy(key[:], body[split:])
		typ := AccountState
		if merkle.PrefixTxNode == prefix {
			typ = TransactionWithMeta
		}
		item := NewItem(key, body[:split])
		return &leafNode{typ: typ, item: item, h: h}, nil

	default:
		return nil, fault.ErrInvalidNodeType
	}
}
