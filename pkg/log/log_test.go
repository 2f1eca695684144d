// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetFormatter(&logrus.TextFormatter{})
		SetDebug(false)
	})
	return &buf
}

func TestFieldsMerged(t *testing.T) {
	buf := capture(t)

	Warn("skipping token", Fields{"line": 3}, Err(errors.New("bad number")))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "skipping token", out["msg"])
	require.Equal(t, "warning", out["level"])
	require.Equal(t, float64(3), out["line"])
	require.Equal(t, "bad number", out["error"])
	require.Equal(t, "*errors.errorString", out["type"])
}

func TestDebugGated(t *testing.T) {
	buf := capture(t)

	Debug("hidden")
	require.Zero(t, buf.Len())

	SetDebug(true)
	Debug("shown", nil)
	require.Contains(t, buf.String(), "shown")
}

func TestSetLevel(t *testing.T) {
	buf := capture(t)

	require.NoError(t, SetLevel("error"))
	Info("hidden")
	require.Zero(t, buf.Len())

	require.Error(t, SetLevel("loud"))
}
