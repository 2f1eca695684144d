// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chihaya/incstats/format"
)

const testConfig = `
incstats:
  log_level: warn
  metrics_addr: 0.0.0.0:6881
  report:
    format: json
    precision: 3
    prefix: "> "
  ingest:
    workers: 2
    skip_invalid: true
  http:
    addr: 0.0.0.0:6880
    read_timeout: 5s
  storage:
    name: memory
    config:
      shard_count: 4
`

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseConfigFile(t *testing.T) {
	path := writeFile(t, "incstats.yaml", testConfig)

	cfgFile, err := ParseConfigFile(path)
	require.NoError(t, err)

	cfg := cfgFile.Incstats
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "0.0.0.0:6881", cfg.MetricsAddr)
	require.Equal(t, format.JSON, cfg.Report.Format)
	require.Equal(t, 3, cfg.Report.Precision)
	require.Equal(t, "> ", cfg.Report.Prefix)
	require.Equal(t, 2, cfg.Ingest.Workers)
	require.True(t, cfg.Ingest.SkipInvalid)
	require.Equal(t, "0.0.0.0:6880", cfg.HTTPConfig.Addr)
	require.Equal(t, 5*time.Second, cfg.HTTPConfig.ReadTimeout)
	require.Equal(t, "memory", cfg.Storage.Name)
	require.NotNil(t, cfg.Storage.Config)

	// Unset values keep their defaults.
	require.Equal(t, DefaultConfig.Namespace, cfg.Namespace)
}

func TestParseConfigFileExpandsEnv(t *testing.T) {
	path := writeFile(t, "incstats.yaml", "incstats:\n  namespace: custom\n")
	os.Setenv("INCSTATS_TEST_DIR", filepath.Dir(path))
	defer os.Unsetenv("INCSTATS_TEST_DIR")

	cfgFile, err := ParseConfigFile("$INCSTATS_TEST_DIR/incstats.yaml")
	require.NoError(t, err)
	require.Equal(t, "custom", cfgFile.Incstats.Namespace)
}

func TestParseConfigFileDefaults(t *testing.T) {
	cfgFile, err := ParseConfigFile("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig, cfgFile.Incstats)
}

func TestParseConfigFileErrors(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = ParseConfigFile(writeFile(t, "broken.yaml", "incstats: ["))
	require.Error(t, err)
}
