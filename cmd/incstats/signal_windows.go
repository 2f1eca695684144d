// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

//go:build windows
// +build windows

package main

import (
	"os"
)

// ShutdownSignals stop a running command.
var ShutdownSignals = []os.Signal{
	os.Interrupt,
}
