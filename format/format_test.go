// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/chihaya/incstats/stats"
)

func report(values ...float64) stats.Report {
	a := stats.New()
	a.Add(values...)
	return a.Report()
}

func TestLabelsCoverReportKeys(t *testing.T) {
	for _, key := range stats.ReportKeys {
		require.NotEmpty(t, Labels[key], key)
	}
	require.Len(t, Labels, len(stats.ReportKeys))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteText(&buf, report(1, 2, 3, 4), Options{Precision: 3, Prefix: "> "})
	require.NoError(t, err)

	expected := strings.Join([]string{
		"> Count: 4",
		"> Mean: 2.5",
		"> Standard deviation: 1.118",
		"> Variance: 1.25",
		"> Median: 2.5",
		"> First quartile: 1.75",
		"> Third quartile: 3.25",
		"> Minimum: 1",
		"> Maximum: 4",
		"",
	}, "\n")
	require.Equal(t, expected, buf.String())
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, stats.Report{}, Options{Precision: -1, Terminator: ";", Missing: "n/a"}))
	require.Equal(t, "Count: 0;Mean: n/a;Standard deviation: n/a;Variance: n/a;Median: n/a;"+
		"First quartile: n/a;Third quartile: n/a;Minimum: n/a;Maximum: n/a;", buf.String())
}

func TestWriteTextGroupDigits(t *testing.T) {
	a := stats.New()
	for i := 0; i < 1234; i++ {
		a.AddOne(1)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a.Report(), Options{Precision: -1, GroupDigits: true}))
	require.True(t, strings.HasPrefix(buf.String(), "Count: 1,234\n"))
}

func TestValue(t *testing.T) {
	table := []struct {
		v         float64
		precision int
		expected  string
	}{
		{2.5, -1, "2.5"},
		{2.5, 0, "2"},
		{1.0 / 3, 2, "0.33"},
		{1.0 / 3, -1, "0.3333333333333333"},
		{-0.0001, 2, "0"},
		{100, 2, "100"},
		{-12.3456, 1, "-12.3"},
	}

	for _, tt := range table {
		v := tt.v
		require.Equal(t, tt.expected, Value(&v, Options{Precision: tt.precision}), "%v@%d", tt.v, tt.precision)
	}

	require.Equal(t, "-", Value(nil, DefaultOptions))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report(1, 2, 3)))
	require.JSONEq(t, `{"count":3,"mean":2,"std":0.816496580927726,"var":0.6666666666666666,`+
		`"median":2,"q1":1.5,"q3":2.5,"min":1,"max":3}`, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, stats.Report{}))
	require.JSONEq(t, `{"count":0,"mean":null,"std":null,"var":null,"median":null,`+
		`"q1":null,"q3":null,"min":null,"max":null}`, buf.String())

	// Keys keep report order.
	require.True(t, strings.HasPrefix(buf.String(), `{"count":0,"mean":null,"std":null,"var"`))
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, report(5)))
	require.Equal(t, "count: 1\nmean: 5\nstd: 0\nvar: 0\nmedian: 5\nq1: 5\nq3: 5\nmin: 5\nmax: 5\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteYAML(&buf, stats.Report{}))
	require.Contains(t, buf.String(), "mean: null\n")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", report(1), DefaultOptions)
	require.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWriteDispatch(t *testing.T) {
	for _, name := range []string{Text, JSON, YAML, ""} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, name, report(1, 2), DefaultOptions), name)
		require.NotZero(t, buf.Len(), name)
	}
}
