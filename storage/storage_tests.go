// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chihaya/incstats/stats"
)

// TestStore tests a Store implementation against the interface. The Store is
// stopped when the test returns.
func TestStore(t *testing.T, s Store) {
	defer func() {
		require.Empty(t, s.Stop().Wait())
	}()

	require.Equal(t, stats.Report{}, s.Report())
	require.Equal(t, int64(0), s.Count())
	_, ok, err := s.Quantile(0.5)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = s.Quantile(2)
	require.Equal(t, stats.ErrInvalidQuantile, err)

	// Concurrent writers each merge a private accumulator.
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				acc := stats.New()
				acc.AddInt(int64(w))
				s.Merge(acc)
			}
		}(w)
	}
	wg.Wait()

	r := s.Report()
	require.Equal(t, int64(800), r.Count)
	require.Equal(t, int64(800), s.Count())
	require.Equal(t, 8, s.Distinct())
	require.Equal(t, 0.0, *r.Min)
	require.Equal(t, 7.0, *r.Max)
	require.InDelta(t, 3.5, *r.Mean, 1e-9)

	median, ok, err := s.Quantile(0.5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3.5, median)

	// A snapshot is detached from the Store.
	snap := s.Snapshot()
	snap.AddOne(100)
	require.Equal(t, int64(800), s.Report().Count)

	s.Merge(nil)
	s.Merge(stats.New())
	require.Equal(t, int64(800), s.Report().Count)

	s.Clear()
	require.Equal(t, stats.Report{}, s.Report())
	require.Equal(t, int64(0), s.Count())
	require.Equal(t, 0, s.Distinct())
}
