// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/util"
)

// well known state keys, hashes of a two byte name space
var (
	FeesKey       = merkle.SHA512Half([]byte{0x00, 'e'})
	AmendmentsKey = merkle.SHA512Half([]byte{0x00, 'f'})
)

// Fees - the fee schedule in drops
type Fees struct {
	Base      uint64 `json:"base"`
	Reserve   uint64 `json:"reserve"`
	Increment uint64 `json:"increment"`
}

// AccountReserve - drops an account owning ownerCount objects must hold
func (f Fees) AccountReserve(ownerCount uint32) uint64 {
	return f.Reserve + uint64(ownerCount)*f.Increment
}

// Pack - the state entry data
func (f Fees) Pack() []byte {
	buffer := util.PackUint64(nil, f.Base)
	buffer = util.PackUint64(buffer, f.Reserve)
	return util.PackUint64(buffer, f.Increment)
}

// UnpackFees - decode the fees state entry
func UnpackFees(buffer []byte) (Fees, error) {
	f := Fees{}
	values := []*uint64{&f.Base, &f.Reserve, &f.Increment}
	for _, v := range values {
		value, n, err := util.UnpackUint64(buffer)
		if nil != err {
			return f, fault.ErrInvalidEntry
		}
		*v = value
		buffer = buffer[n:]
	}
	if 0 != len(buffer) {
		return f, fault.ErrInvalidEntry
	}
	return f, nil
}

// Rules - the set of enabled amendments
type Rules struct {
	enabled map[merkle.Digest]struct{}
}

// NewRules - rules with the given amendments enabled
func NewRules(amendments ...merkle.Digest) Rules {
	r := Rules{
		enabled: make(map[merkle.Digest]struct{}, len(amendments)),
	}
	for _, a := range amendments {
		r.enabled[a] = struct{}{}
	}
	return r
}

// Enabled - true if the amendment is active
func (r Rules) Enabled(amendment merkle.Digest) bool {
	_, ok := r.enabled[amendment]
	return ok
}

// Amendments - enabled amendments in ascending order
func (r Rules) Amendments() []merkle.Digest {
	list := make([]merkle.Digest, 0, len(r.enabled))
	for a := range r.enabled {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Compare(list[j]) < 0
	})
	return list
}

// Pack - the state entry data
//
//   count ++ [ amendment ]
func (r Rules) Pack() []byte {
	amendments := r.Amendments()
	buffer := util.PackUint64(nil, uint64(len(amendments)))
	for _, a := range amendments {
		buffer = append(buffer, a[:]...)
	}
	return buffer
}

// UnpackRules - decode the amendments state entry
func UnpackRules(buffer []byte) (Rules, error) {
	count, n, err := util.UnpackInt(buffer)
	if nil != err {
		return Rules{}, fault.ErrInvalidEntry
	}
	buffer = buffer[n:]
	if len(buffer) != count*merkle.DigestLength {
		return Rules{}, fault.ErrInvalidEntry
	}
	amendments := make([]merkle.Digest, count)
	for i := range amendments {
		copy(amendments[i][:], buffer[i*merkle.DigestLength:])
	}
	return NewRules(amendments...), nil
}
