// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/chihaya/incstats/format"
	"github.com/chihaya/incstats/ingest"
)

func TestRunReportStdin(t *testing.T) {
	cfg := DefaultConfig
	cfg.Report.Options = format.Options{Precision: 2, Terminator: "; "}

	var out bytes.Buffer
	err := runReport(context.Background(), cfg, nil, strings.NewReader("1 2\n3,4\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "Count: 4; Mean: 2.5; Standard deviation: 1.12; Variance: 1.25; Median: 2.5; "+
		"First quartile: 1.75; Third quartile: 3.25; Minimum: 1; Maximum: 4; ", out.String())
}

func TestRunReportFiles(t *testing.T) {
	a := writeFile(t, "a.txt", "1\n2\n")
	b := writeFile(t, "b.txt", "# more\n3 4\n")

	cfg := DefaultConfig
	cfg.Report.Format = format.JSON

	var out bytes.Buffer
	err := runReport(context.Background(), cfg, []string{a, "-", b}, strings.NewReader("10"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), `"count":5`)
	require.Contains(t, out.String(), `"max":10`)
}

func TestRunReportEmpty(t *testing.T) {
	cfg := DefaultConfig
	cfg.Report.Format = format.YAML

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), cfg, nil, strings.NewReader(""), &out))
	require.Contains(t, out.String(), "count: 0\n")
	require.Contains(t, out.String(), "median: null\n")
}

func TestRunReportErrors(t *testing.T) {
	cfg := DefaultConfig

	err := runReport(context.Background(), cfg, nil, strings.NewReader("1 two"), &bytes.Buffer{})
	var perr *ingest.ParseError
	require.True(t, errors.As(err, &perr))

	err = runReport(context.Background(), cfg, []string{"/nonexistent/samples"}, nil, &bytes.Buffer{})
	require.Error(t, err)

	cfg.Report.Format = "xml"
	err = runReport(context.Background(), cfg, nil, strings.NewReader("1"), &bytes.Buffer{})
	require.True(t, errors.Is(err, format.ErrUnknownFormat))
}

func TestServerLifecycle(t *testing.T) {
	cfg := DefaultConfig
	cfg.HTTPConfig.Addr = "127.0.0.1:0"

	reg := prometheus.NewRegistry()
	s, err := NewServer(cfg, reg, reg)
	require.NoError(t, err)
	require.Empty(t, s.Stop())
}

func TestNewServerUnknownStorage(t *testing.T) {
	cfg := DefaultConfig
	cfg.Storage.Name = "nonexistent"

	reg := prometheus.NewRegistry()
	_, err := NewServer(cfg, reg, reg)
	require.Error(t, err)
}

func TestRootCommandReport(t *testing.T) {
	path := writeFile(t, "samples.txt", "5 5 5\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"report", "--format", "yaml", path})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "median: 5\n")
}
