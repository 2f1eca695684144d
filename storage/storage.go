// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package storage defines the interface of a concurrency-safe home for an
// accumulated distribution and a registry of its implementations.
package storage

import (
	"errors"
	"sync"

	"github.com/chihaya/incstats/pkg/stop"
	"github.com/chihaya/incstats/stats"
)

var (
	driversM sync.RWMutex
	drivers  = make(map[string]Driver)
)

// Driver is the interface used to initialize a new type of Store.
type Driver interface {
	NewStore(cfg interface{}) (Store, error)
}

// ErrDriverDoesNotExist is the error returned by NewStore when a store driver
// with that name does not exist.
var ErrDriverDoesNotExist = errors.New("store driver with that name does not exist")

// Store wraps an accumulated distribution so that it can be fed and queried
// from many goroutines at once.
type Store interface {
	// Merge absorbs the distribution of acc. acc is not retained.
	Merge(acc *stats.Accumulator)

	// Clear discards every sample.
	Clear()

	// Snapshot returns a private copy of the accumulated distribution.
	Snapshot() *stats.Accumulator

	// Report returns the report of the accumulated distribution.
	Report() stats.Report

	// Quantile returns the q-quantile of the accumulated distribution, with
	// the same semantics as (*stats.Accumulator).Quantile.
	Quantile(q float64) (float64, bool, error)

	// Count returns the number of samples held without building a snapshot.
	Count() int64

	// Distinct returns the number of distinct values held.
	Distinct() int

	// Stopper releases the Store. Using a stopped Store panics.
	stop.Stopper
}

// RegisterDriver makes a Driver available by the provided name.
//
// If called twice with the same name, the name is blank, or if the provided
// Driver is nil, this function panics.
func RegisterDriver(name string, d Driver) {
	if name == "" {
		panic("storage: could not register a Driver with an empty name")
	}
	if d == nil {
		panic("storage: could not register a nil Driver")
	}

	driversM.Lock()
	defer driversM.Unlock()

	if _, dup := drivers[name]; dup {
		panic("storage: RegisterDriver called twice for " + name)
	}

	drivers[name] = d
}

// NewStore attempts to initialize a new Store given a name from the list of
// registered Drivers.
//
// If a driver does not exist, returns ErrDriverDoesNotExist.
func NewStore(name string, cfg interface{}) (Store, error) {
	driversM.RLock()
	defer driversM.RUnlock()

	d, ok := drivers[name]
	if !ok {
		return nil, ErrDriverDoesNotExist
	}

	return d.NewStore(cfg)
}
