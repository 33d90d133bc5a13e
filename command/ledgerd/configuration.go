// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/ledgerd/configuration"
	"github.com/bitmark-inc/ledgerd/fault"
	"github.com/bitmark-inc/ledgerd/ledger"
	"github.com/bitmark-inc/ledgerd/merkle"
	"github.com/bitmark-inc/ledgerd/storage"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "ledgerd"
	defaultCacheExpiry       = "10m"

	defaultCloseInterval   = "10s"
	defaultMinimumInterval = time.Second

	defaultBaseFee   = 10
	defaultReserve   = 20000000
	defaultIncrement = 5000000

	defaultLogDirectory = "log"
	defaultLogFile      = "ledgerd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// FeesType - fee schedule written into the genesis ledger
type FeesType struct {
	Base      uint64 `gluamapper:"base" json:"base"`
	Reserve   uint64 `gluamapper:"reserve" json:"reserve"`
	Increment uint64 `gluamapper:"increment" json:"increment"`
}

// EntryType - a state entry written into the genesis ledger
//
// the key is a hex digest or, if not, a name whose hash is used
type EntryType struct {
	Key  string `gluamapper:"key" json:"key"`
	Data string `gluamapper:"data" json:"data"`
}

// GenesisType - contents of the first ledger
type GenesisType struct {
	CloseTime uint32      `gluamapper:"close_time" json:"close_time"`
	Drops     uint64      `gluamapper:"drops" json:"drops"`
	Entries   []EntryType `gluamapper:"entries" json:"entries"`
}

// LedgerType - ledger close settings
type LedgerType struct {
	CloseInterval   string      `gluamapper:"close_interval" json:"close_interval"`
	CloseResolution uint8       `gluamapper:"close_resolution" json:"close_resolution"`
	Fees            FeesType    `gluamapper:"fees" json:"fees"`
	Amendments      []string    `gluamapper:"amendments" json:"amendments"`
	Genesis         GenesisType `gluamapper:"genesis" json:"genesis"`
}

// SyncType - tree cache limits
type SyncType struct {
	NodeCacheSize uint32 `gluamapper:"node_cache_size" json:"node_cache_size"`
	FullBelowSize uint32 `gluamapper:"full_below_size" json:"full_below_size"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string                `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                `gluamapper:"pidfile" json:"pidfile"`
	Database      storage.Configuration `gluamapper:"database" json:"database"`
	Ledger        LedgerType            `gluamapper:"ledger" json:"ledger"`
	Sync          SyncType              `gluamapper:"sync" json:"sync"`
	Logging       logger.Configuration  `gluamapper:"logging" json:"logging"`

	closeInterval time.Duration
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: storage.Configuration{
			Backend:     storage.LevelDBBackend,
			Directory:   defaultDatabaseDirectory,
			Name:        defaultDatabaseName,
			CacheExpiry: defaultCacheExpiry,
		},

		Ledger: LedgerType{
			CloseInterval:   defaultCloseInterval,
			CloseResolution: ledger.DefaultCloseTimeResolution,
			Fees: FeesType{
				Base:      defaultBaseFee,
				Reserve:   defaultReserve,
				Increment: defaultIncrement,
			},
			Genesis: GenesisType{
				Drops: ledger.DefaultDrops,
			},
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	options.closeInterval, err = time.ParseDuration(options.Ledger.CloseInterval)
	if nil != err || options.closeInterval < defaultMinimumInterval {
		return nil, fault.ErrInvalidCloseInterval
	}
	if 0 == options.Ledger.CloseResolution {
		options.Ledger.CloseResolution = ledger.DefaultCloseTimeResolution
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = ensureAbsolute(options.DataDirectory, options.PidFile)
	}

	// the database and log names must be plain file names
	for _, f := range []string{options.Database.Name, options.Logging.File} {
		switch filepath.Dir(f) {
		case "", ".":
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// genesisParameters - convert the genesis section for ledger.Genesis
func (options *Configuration) genesisParameters() (*ledger.GenesisParameters, error) {
	parameters := &ledger.GenesisParameters{
		CloseTime:           options.Ledger.Genesis.CloseTime,
		CloseTimeResolution: options.Ledger.CloseResolution,
		Drops:               options.Ledger.Genesis.Drops,
		Fees: ledger.Fees{
			Base:      options.Ledger.Fees.Base,
			Reserve:   options.Ledger.Fees.Reserve,
			Increment: options.Ledger.Fees.Increment,
		},
	}
	if 0 == parameters.CloseTime {
		parameters.CloseTime = uint32(time.Now().Unix())
	}

	for _, name := range options.Ledger.Amendments {
		parameters.Amendments = append(parameters.Amendments, nameToDigest(name))
	}

	seen := make(map[merkle.Digest]struct{})
	for _, e := range options.Ledger.Genesis.Entries {
		key := nameToDigest(e.Key)
		if key == ledger.FeesKey || key == ledger.AmendmentsKey {
			return nil, fmt.Errorf("genesis entry: %q uses a reserved key", e.Key)
		}
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("genesis entry: %q is duplicated", e.Key)
		}
		seen[key] = struct{}{}
		parameters.Entries = append(parameters.Entries, ledger.NewEntry(key, []byte(e.Data)))
	}
	return parameters, nil
}

// a hex digest is used as is; anything else is hashed
func nameToDigest(name string) merkle.Digest {
	if d, err := merkle.DigestFromHex(name); nil == err {
		return d
	}
	return merkle.SHA512Half([]byte(name))
}

// if a file is not an absolute path make it relative to the directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
