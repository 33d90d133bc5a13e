// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/shamap"
	"github.com/bitmark-inc/ledgerd/storage"
)

// setup command handler
//
// commands that do not need the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "genesis", "info", "dump", "diff", "verify", "replicate":
		return false // defer processing until database is opened

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version string\n\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  genesis                             - create the first ledger from the configuration\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - close a ledger at every close interval\n")
		fmt.Printf("                                        until CTRL-C or SIGTERM\n")
		fmt.Printf("\n")

		fmt.Printf("  info [HASH]                         - display a ledger header as JSON\n")
		fmt.Printf("  dump [HASH]                         - display every state entry of a ledger\n")
		fmt.Printf("  diff HASH1 [HASH2]                  - display the state changes between two ledgers\n")
		fmt.Printf("  verify [HASH]                       - read every node of a ledger checking all hashes\n")
		fmt.Printf("                                        HASH defaults to the last closed ledger\n")
		fmt.Printf("\n")

		fmt.Printf("  replicate DIR                       - copy the last closed ledger to a database in DIR\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		printJSON(os.Stdout, options)

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
//
// the node store is open so these commands can read and change it
func processDataCommand(log *logger.L, arguments []string, options *Configuration, backend storage.Backend, family *shamap.Family) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "genesis":
		parameters, err := options.genesisParameters()
		if nil != err {
			exitwithstatus.Message("genesis configuration error: %s", err)
		}
		l, err := createGenesis(backend, family, parameters)
		if nil != err {
			log.Errorf("genesis error: %s", err)
			exitwithstatus.Message("genesis error: %s", err)
		}
		log.Infof("genesis ledger: %s", l.Hash())
		printJSON(os.Stdout, l.Info())

	case "info":
		l := loadLedger(backend, family, arguments, 0)
		printJSON(os.Stdout, struct {
			Info  ledger.Info       `json:"info"`
			Fees  ledger.Fees       `json:"fees"`
			Rules []merkle.Digest   `json:"amendments"`
			Stats shamap.Statistics `json:"nodes"`
		}{
			Info:  l.Info(),
			Fees:  l.Fees(),
			Rules: l.Rules().Amendments(),
			Stats: family.Statistics(),
		})

	case "dump":
		l := loadLedger(backend, family, arguments, 0)
		if err := dumpLedger(os.Stdout, l); nil != err {
			exitwithstatus.Message("dump error: %s", err)
		}

	case "diff":
		if len(arguments) < 1 {
			exitwithstatus.Message("missing ledger hash argument")
		}
		from := loadLedger(backend, family, arguments, 0)
		to := loadLedger(backend, family, arguments, 1)
		if err := diffLedgers(os.Stdout, from, to); nil != err {
			exitwithstatus.Message("diff error: %s", err)
		}

	case "verify":
		l := loadLedger(backend, family, arguments, 0)
		result, err := verifyLedger(l)
		if nil != err {
			log.Criticalf("verify ledger: %s  error: %s", l.Hash(), err)
			exitwithstatus.Message("verify error: %s", err)
		}
		printJSON(os.Stdout, result)

	case "replicate":
		if len(arguments) < 1 {
			exitwithstatus.Message("missing directory argument")
		}
		l := loadLedger(backend, family, nil, 0)

		conf := options.Database
		conf.Directory = ensureAbsolute(options.DataDirectory, arguments[0])
		if filepath.Clean(conf.Directory) == filepath.Clean(options.Database.Directory) {
			exitwithstatus.Message("error: replicate to the same database")
		}
		if err := os.MkdirAll(conf.Directory, 0700); nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		target, err := storage.Open(&conf, storage.ReadWrite)
		if nil != err {
			exitwithstatus.Message("open: %q  error: %s", conf.Directory, err)
		}
		defer target.Close()

		n, err := replicate(log, l, target, shamap.NewFamily(target, options.Sync.NodeCacheSize, options.Sync.FullBelowSize))
		if nil != err {
			log.Errorf("replicate ledger: %s  error: %s", l.Hash(), err)
			exitwithstatus.Message("replicate error: %s", err)
		}
		fmt.Printf("replicated ledger: %d  hash: %s  nodes: %d\n", l.Info().Seq, l.Hash(), n)

	default:
		exitwithstatus.Message("error: no such command: %s", command)

	}

	// indicate processing complete and perform normal exit from main
	return true
}

// the ledger named by arguments[n] or, if absent, the last closed
func loadLedger(backend storage.Backend, family *shamap.Family, arguments []string, n int) *ledger.Ledger {
	if len(arguments) <= n {
		l, err := lastClosed(backend, family)
		if nil != err {
			exitwithstatus.Message("last closed ledger error: %s", err)
		}
		return l
	}

	hash, err := merkle.DigestFromHex(arguments[n])
	if nil != err {
		exitwithstatus.Message("error in ledger hash: %q  error: %s", arguments[n], err)
	}
	l, err := ledger.Load(family, hash)
	if nil != err {
		exitwithstatus.Message("load ledger: %s  error: %s", hash, err)
	}
	return l
}

type dumpEntry struct {
	Key  merkle.Digest `json:"key"`
	Data string        `json:"data"`
}

// dumpLedger - header followed by one entry per line in key order
func dumpLedger(w io.Writer, l *ledger.Ledger) error {
	printJSON(w, l.Info())
	encoder := json.NewEncoder(w)
	var err error
	e := l.ForEach(func(entry *ledger.Entry) bool {
		err = encoder.Encode(dumpEntry{
			Key:  entry.Key(),
			Data: hex.EncodeToString(entry.Data()),
		})
		return nil == err
	})
	if nil != e {
		return e
	}
	return err
}

type diffEntry struct {
	Type   string        `json:"type"`
	Key    merkle.Digest `json:"key"`
	Before string        `json:"before,omitempty"`
	After  string        `json:"after,omitempty"`
}

// diffLedgers - one line for each state change from one ledger to the next
func diffLedgers(w io.Writer, from *ledger.Ledger, to *ledger.Ledger) error {
	differences, err := from.StateTree().Diff(to.StateTree())
	if nil != err {
		return err
	}
	encoder := json.NewEncoder(w)
	for _, d := range differences {
		e := diffEntry{
			Type: d.Type.String(),
			Key:  d.Key,
		}
		if nil != d.Old {
			e.Before = hex.EncodeToString(d.Old.Data())
		}
		if nil != d.New {
			e.After = hex.EncodeToString(d.New.Data())
		}
		if err := encoder.Encode(e); nil != err {
			return err
		}
	}
	return nil
}

type verifyResult struct {
	Seq          uint32        `json:"seq"`
	Hash         merkle.Digest `json:"hash"`
	State        shamap.Counts `json:"state"`
	Transactions shamap.Counts `json:"transactions"`
}

// verifyLedger - read and check every node of both trees
func verifyLedger(l *ledger.Ledger) (*verifyResult, error) {
	result := &verifyResult{
		Seq:  l.Info().Seq,
		Hash: l.Hash(),
	}
	var err error
	if result.State, err = l.StateTree().Verify(); nil != err {
		return nil, err
	}
	if result.Transactions, err = l.TxTree().Verify(); nil != err {
		return nil, err
	}
	return result, nil
}

func printJSON(w io.Writer, item interface{}) {
	b, err := json.MarshalIndent(item, "", "  ")
	if nil != err {
		exitwithstatus.Message("error: %s", err)
	}
	fmt.Fprintf(w, "%s\n", b)
}
