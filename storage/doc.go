// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk, hash addressed node store
//
// Every tree node and every ledger header is written once under its
// own hash and is never modified afterwards.  A value fetched by hash
// can be verified by hashing it again: all values are held in
// "prefix format" (four byte domain tag followed by the body) so the
// node hash is SHA512Half of the stored bytes.
//
// Key layout (same for every backend):
//
//   0x00 ++ "VERSION"          - database version
//                                data: big endian uint32
//   N ++ hash                  - tree node or ledger header
//                                data: prefix format bytes
//   S ++ name                  - named state record
//                                data: backend user defined
//
// Notes:
// 1. ++   = concatenation of byte data
// 2. hash = 32 byte SHA512Half(data)
package storage
