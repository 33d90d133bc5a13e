// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/ledgerd/view"
)

var (
	alice = view.AccountID{0x01}
	bob   = view.AccountID{0x02}
	carol = view.AccountID{0x03}
	usd   = view.Asset{Currency: view.Currency{'U', 'S', 'D'}, Issuer: view.AccountID{0xff}}
	eur   = view.Asset{Currency: view.Currency{'E', 'U', 'R'}, Issuer: view.AccountID{0xff}}
)

func TestDeferredCredits(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	v := view.NewApplyView(open)

	assert.Equal(t, view.Amount(50), v.BalanceHook(alice, usd, 50), "no credits")

	// alice held 100 and sends 30 to bob
	v.Credit(alice, bob, usd, 30, 100)
	assert.Equal(t, view.Amount(70), v.BalanceHook(alice, usd, 70), "sender")
	assert.Equal(t, view.Amount(0), v.BalanceHook(bob, usd, 30), "receiver cannot spend")
	assert.Equal(t, view.Amount(5), v.BalanceHook(bob, eur, 5), "other asset")

	// a balance above the original is capped
	assert.Equal(t, view.Amount(70), v.BalanceHook(alice, usd, 500), "capped")
}

func TestDeferredCreditsNesting(t *testing.T) {
	open := view.NewOpenView(newBaseLedger(t))
	outer := view.NewApplyView(open)
	outer.Credit(alice, bob, usd, 30, 100)

	inner := view.NewApplyView(outer)
	inner.Credit(bob, carol, usd, 10, 30)
	assert.Equal(t, view.Amount(-10), inner.BalanceHook(bob, usd, 20), "inner sees outer credits")
	assert.Equal(t, view.Amount(0), outer.BalanceHook(bob, usd, 30), "outer before apply")

	discarded := view.NewApplyView(outer)
	discarded.Credit(alice, carol, usd, 50, 70)
	discarded.Discard()
	assert.Equal(t, view.Amount(70), outer.BalanceHook(alice, usd, 70), "discarded credit")

	inner.Apply()
	assert.Equal(t, view.Amount(-10), outer.BalanceHook(bob, usd, 20), "merged into parent")
	assert.Equal(t, view.Amount(0), outer.BalanceHook(carol, usd, 10), "carol")

	// credits do not survive into the open view
	outer.Apply()
	next := view.NewApplyView(open)
	assert.Equal(t, view.Amount(20), next.BalanceHook(bob, usd, 20), "after apply to open view")
}
