// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/ledgerd/merkle"
)

func TestScanFmt(t *testing.T) {

	stringDigest := "00000000440b921e1b77c6c0487ae5616de67f788f44ae2a5af6e2194d16b6f8"

	var d merkle.Digest
	n, err := fmt.Sscan(stringDigest, &d)
	if nil != err {
		t.Fatalf("hex to digest error: %v", err)
	}

	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}

	expected := merkle.Digest{
		0x00, 0x00, 0x00, 0x00,
		0x44, 0x0b, 0x92, 0x1e,
		0x1b, 0x77, 0xc6, 0xc0,
		0x48, 0x7a, 0xe5, 0x61,
		0x6d, 0xe6, 0x7f, 0x78,
		0x8f, 0x44, 0xae, 0x2a,
		0x5a, 0xf6, 0xe2, 0x19,
		0x4d, 0x16, 0xb6, 0xf8,
	}

	if d != expected {
		t.Errorf("digest = %#v expected %#v", d, expected)
	}

	s := fmt.Sprintf("%s", d)
	if s != stringDigest {
		t.Errorf("string: digest = %s expected %s", s, stringDigest)
	}

	s = fmt.Sprintf("%#v", d)
	if s != "<SHA512Half:"+stringDigest+">" {
		t.Errorf("hash-v: digest = %s expected %s", s, stringDigest)
	}
}

func TestSHA512Half(t *testing.T) {
	d := merkle.SHA512Half()
	assert.Equal(t, "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce", d.String(), "empty input")

	d = merkle.NewDigest(merkle.PrefixTransactionID, []byte("hello"))
	assert.Equal(t, "23f7d9e07fb930ead4d00e0a6042c7d751fd0f2e86e87a7bc333a430868c78f3", d.String(), "prefixed input")

	split := merkle.NewDigest(merkle.PrefixTransactionID, []byte("he"), []byte("llo"))
	assert.Equal(t, d, split, "parts are concatenated")
}

func TestPrefixBytes(t *testing.T) {
	assert.Equal(t, []byte("MIN\x00"), merkle.PrefixInnerNode.Bytes())
	assert.Equal(t, []byte("MLN\x00"), merkle.PrefixLeafNode.Bytes())
	assert.Equal(t, []byte("SND\x00"), merkle.PrefixTxNode.Bytes())
	assert.Equal(t, []byte("TXN\x00"), merkle.PrefixTransactionID.Bytes())
	assert.Equal(t, []byte("LWR\x00"), merkle.PrefixLedgerMaster.Bytes())

	p, ok := merkle.PrefixFromBytes([]byte("MIN\x00rest"))
	assert.True(t, ok)
	assert.Equal(t, merkle.PrefixInnerNode, p)

	_, ok = merkle.PrefixFromBytes([]byte("MI"))
	assert.False(t, ok, "short buffer")
}

func TestNibble(t *testing.T) {
	d := merkle.Digest{0xa5, 0x3c}
	assert.Equal(t, 0x0a, d.Nibble(0))
	assert.Equal(t, 0x05, d.Nibble(1))
	assert.Equal(t, 0x03, d.Nibble(2))
	assert.Equal(t, 0x0c, d.Nibble(3))
	assert.Equal(t, 0x00, d.Nibble(merkle.NibbleCount-1))
}

func TestCompareAndNext(t *testing.T) {
	a := merkle.Digest{0x01}
	b := merkle.Digest{0x02}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))

	n, ok := merkle.Digest{0x00, 0x00}.Next()
	assert.True(t, ok)
	assert.Equal(t, byte(1), n[merkle.DigestLength-1])

	var max merkle.Digest
	for i := range max {
		max[i] = 0xff
	}
	n, ok = max.Next()
	assert.False(t, ok, "all ones has no successor")
	assert.True(t, n.IsZero())

	carry := merkle.Digest{}
	carry[merkle.DigestLength-1] = 0xff
	n, ok = carry.Next()
	assert.True(t, ok)
	assert.Equal(t, byte(1), n[merkle.DigestLength-2])
	assert.Equal(t, byte(0), n[merkle.DigestLength-1])
}

func TestJSON(t *testing.T) {
	d := merkle.SHA512Half([]byte("json"))
	buffer, err := json.Marshal(d)
	assert.Nil(t, err)
	assert.Equal(t, `"`+d.String()+`"`, string(buffer))

	var r merkle.Digest
	err = json.Unmarshal(buffer, &r)
	assert.Nil(t, err)
	assert.Equal(t, d, r)

	err = json.Unmarshal([]byte(`"abcd"`), &r)
	assert.Equal(t, err.Error(), "invalid digest")
}

func TestDigestFromBytes(t *testing.T) {
	var d merkle.Digest
	err := merkle.DigestFromBytes(&d, []byte{1, 2, 3})
	assert.Equal(t, err.Error(), "digest length is invalid")

	b := make([]byte, merkle.DigestLength)
	b[0] = 0x77
	err = merkle.DigestFromBytes(&d, b)
	assert.Nil(t, err)
	assert.Equal(t, byte(0x77), d[0])
}
