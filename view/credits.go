// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view

import (
	"encoding/hex"
)

// AccountID - identifies an account
type AccountID [20]byte

func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// Currency - a currency code
type Currency [20]byte

// Asset - a currency and the account that issues it
type Asset struct {
	Currency Currency
	Issuer   AccountID
}

// Amount - a signed quantity of an asset
type Amount int64

type creditKey struct {
	account AccountID
	asset   Asset
}

// what one account has sent and received inside a view
//
// origBalance is the balance before the first amount it sent and is
// only known if hasOrig
type creditValue struct {
	debits      Amount
	credits     Amount
	origBalance Amount
	hasOrig     bool
}

// deferred credits: amounts received within a transaction that must
// not be spent by the same transaction
type deferredCredits struct {
	values map[creditKey]*creditValue
}

func newDeferredCredits() *deferredCredits {
	return &deferredCredits{
		values: make(map[creditKey]*creditValue),
	}
}

func (d *deferredCredits) get(account AccountID, asset Asset) *creditValue {
	k := creditKey{account: account, asset: asset}
	v, ok := d.values[k]
	if !ok {
		v = &creditValue{}
		d.values[k] = v
	}
	return v
}

func (d *deferredCredits) credit(sender AccountID, receiver AccountID, asset Asset, amount Amount, preCreditSenderBalance Amount) {
	s := d.get(sender, asset)
	if !s.hasOrig {
		s.origBalance = preCreditSenderBalance
		s.hasOrig = true
	}
	s.debits += amount

	r := d.get(receiver, asset)
	r.credits += amount
}

func (d *deferredCredits) adjustment(account AccountID, asset Asset) (*creditValue, bool) {
	v, ok := d.values[creditKey{account: account, asset: asset}]
	return v, ok
}

// add this set into a parent set; a balance already known to the
// parent is older and wins
func (d *deferredCredits) mergeInto(parent *deferredCredits) {
	for k, v := range d.values {
		p, ok := parent.values[k]
		if !ok {
			c := *v
			parent.values[k] = &c
			continue
		}
		p.debits += v.debits
		p.credits += v.credits
		if !p.hasOrig && v.hasOrig {
			p.origBalance = v.origBalance
			p.hasOrig = true
		}
	}
}
