// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
	"github.com/bitmark-inc/ledgerd/storage"
)

// nodes requested per round
const replicateBatchSize = 256

// replicate - copy a ledger into another store node by node
//
// the target fetches only what it lacks, and every node passes through
// the packed sync encoding, as it would between peers
func replicate(log *logger.L, source *ledger.Ledger, backend storage.Backend, family *shamap.Family) (int, error) {
	total := 0
	info := source.Info()
	for _, pair := range []struct {
		from *shamap.Tree
		hash merkle.Digest
	}{
		{source.StateTree(), info.StateHash},
		{source.TxTree(), info.TxHash},
	} {
		target := shamap.NewSynching(family, pair.from.Type(), pair.hash)
		n, err := syncTree(log, pair.from, target)
		if nil != err {
			return total, err
		}
		total += n
		if err := target.FinishSync(); nil != err {
			return total, err
		}
	}

	if err := backend.Store(info.Hash, info.Pack()); nil != err {
		return total, err
	}
	hash := info.Hash
	if err := backend.PutState(lastClosedState, hash[:]); nil != err {
		return total, err
	}
	return total, nil
}

// returns the number of nodes added to target
func syncTree(log *logger.L, source *shamap.Tree, target *shamap.Tree) (int, error) {
	added := 0
	for round := 1; ; round += 1 {
		missing, err := target.GetMissingNodes(replicateBatchSize)
		if nil != err {
			return added, err
		}
		if 0 == len(missing) {
			return added, nil
		}
		log.Debugf("%s tree round: %d  missing: %d", source.Type(), round, len(missing))

		for _, m := range missing {
			nodes, err := source.GetNodeFat(m.ID, 1)
			if nil != err {
				return added, err
			}
			received, err := shamap.UnpackSyncNodes(shamap.PackSyncNodes(nodes))
			if nil != err {
				return added, err
			}
			for _, n := range received {
				if 0 == n.ID.Depth {
					err := target.AddRootNode(n.Data)
					if fault.ErrRootAlreadyPresent == err {
						continue
					}
					if nil != err {
						return added, err
					}
					added += 1
					continue
				}
				ok, err := target.AddKnownNode(n.ID, n.Data)
				if nil != err {
					return added, err
				}
				if ok {
					added += 1
				}
			}
		}
	}
}
