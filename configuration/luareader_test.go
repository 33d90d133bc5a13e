// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/ledgerd/configuration"
	"github.com/bitmark-inc/ledgerd/fault"
)

type storeType struct {
	Backend string `gluamapper:"backend"`
	Name    string `gluamapper:"name"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Interval      string            `gluamapper:"close_interval"`
	Count         int               `gluamapper:"count"`
	Enabled       bool              `gluamapper:"enabled"`
	Amendments    []string          `gluamapper:"amendments"`
	Store         storeType         `gluamapper:"store"`
	Levels        map[string]string `gluamapper:"levels"`
}

const testFile = `
local M = {}

M.data_directory = arg["directory"]
M.close_interval = "5s"
M.count = 2 * 21
M.enabled = true
M.amendments = { "one", "two" }
M.store = {
    backend = "memory",
    name = "test-" .. arg[0]:match("[^/]*$"),
}
M.levels = {
    main = "info",
    shamap = "debug",
}

return M
`

func writeFile(t *testing.T, content string) string {
	fileName := filepath.Join(t.TempDir(), "test.conf")
	err := os.WriteFile(fileName, []byte(content), 0600)
	require.Nil(t, err, "write configuration")
	return fileName
}

func TestParseConfigurationFile(t *testing.T) {
	fileName := writeFile(t, testFile)

	variables := map[string]string{
		"directory": "/var/lib/ledgerd",
	}
	options := &testConfiguration{
		Count: 1,
	}
	err := configuration.ParseConfigurationFile(fileName, options, variables)
	require.Nil(t, err, "parse")

	assert.Equal(t, "/var/lib/ledgerd", options.DataDirectory, "data directory")
	assert.Equal(t, "5s", options.Interval, "interval")
	assert.Equal(t, 42, options.Count, "count")
	assert.True(t, options.Enabled, "enabled")
	assert.Equal(t, []string{"one", "two"}, options.Amendments, "amendments")
	assert.Equal(t, storeType{Backend: "memory", Name: "test-test.conf"}, options.Store, "store")
	assert.Equal(t, map[string]string{"main": "info", "shamap": "debug"}, options.Levels, "levels")
}

func TestParseConfigurationKeepsDefaults(t *testing.T) {
	fileName := writeFile(t, `return { count = 7 }`)

	options := &testConfiguration{
		DataDirectory: ".",
		Store:         storeType{Backend: "leveldb"},
	}
	err := configuration.ParseConfigurationFile(fileName, options, nil)
	require.Nil(t, err, "parse")

	assert.Equal(t, ".", options.DataDirectory, "default data directory")
	assert.Equal(t, "leveldb", options.Store.Backend, "default backend")
	assert.Equal(t, 7, options.Count, "count")
}

func TestParseConfigurationErrors(t *testing.T) {
	good := writeFile(t, `return { count = 1 }`)

	var notStruct int
	err := configuration.ParseConfigurationFile(good, &notStruct, nil)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "pointer to int")

	err = configuration.ParseConfigurationFile(good, testConfiguration{}, nil)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "struct value")

	err = configuration.ParseConfigurationFile(writeFile(t, `return 5`), &testConfiguration{}, nil)
	assert.Equal(t, fault.ErrInvalidConfiguration, err, "number result")

	err = configuration.ParseConfigurationFile(writeFile(t, `M = {`), &testConfiguration{}, nil)
	assert.NotNil(t, err, "syntax error")

	err = configuration.ParseConfigurationFile(filepath.Join(t.TempDir(), "absent.conf"), &testConfiguration{}, nil)
	assert.NotNil(t, err, "missing file")
}
