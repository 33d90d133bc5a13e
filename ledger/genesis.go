// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
)

// genesis constants
const (
	GenesisSeq                 = 1
	DefaultCloseTimeResolution = 30
	DefaultDrops               = 100000000000000000
)

// GenesisParameters - contents of the first ledger
type GenesisParameters struct {
	CloseTime           uint32
	CloseTimeResolution uint8
	Drops               uint64
	Fees                Fees
	Amendments          []merkle.Digest
	Entries             []*Entry
}

// Genesis - build the first ledger
//
// the state tree holds the fee schedule, the amendments and the
// supplied entries; the transaction tree is empty
func Genesis(family *shamap.Family, parameters *GenesisParameters) (*Ledger, error) {
	state := shamap.New(family, shamap.StateTree)

	if err := state.Set(FeesKey, parameters.Fees.Pack()); nil != err {
		return nil, err
	}
	rules := NewRules(parameters.Amendments...)
	if err := state.Set(AmendmentsKey, rules.Pack()); nil != err {
		return nil, err
	}
	for _, e := range parameters.Entries {
		if err := state.Set(e.Key(), e.Data()); nil != err {
			return nil, err
		}
	}

	info := Info{
		Seq:                 GenesisSeq,
		Drops:               parameters.Drops,
		CloseTime:           parameters.CloseTime,
		CloseTimeResolution: parameters.CloseTimeResolution,
	}
	if 0 == info.Drops {
		info.Drops = DefaultDrops
	}
	if 0 == info.CloseTimeResolution {
		info.CloseTimeResolution = DefaultCloseTimeResolution
	}
	return New(info, state, shamap.New(family, shamap.TransactionTree))
}
