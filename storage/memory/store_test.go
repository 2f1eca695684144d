// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	s "github.com/chihaya/incstats/storage"
	"github.com/chihaya/incstats/stats"
)

func createNew(shards int) s.Store {
	st, err := New(Config{ShardCount: shards})
	if err != nil {
		panic(err)
	}
	return st
}

func TestStore(t *testing.T) {
	for _, shards := range []int{1, 4, 64} {
		s.TestStore(t, createNew(shards))
	}
}

func TestStoreFromRegistry(t *testing.T) {
	st, err := s.NewStore(Name, map[string]interface{}{"shard_count": 2})
	require.NoError(t, err)
	s.TestStore(t, st)

	_, err = s.NewStore("nonexistent", nil)
	require.Equal(t, s.ErrDriverDoesNotExist, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{ShardCount: -1})
	require.Equal(t, ErrInvalidShardCount, err)

	cfg, err := Config{}.Validate()
	require.NoError(t, err)
	require.True(t, cfg.ShardCount > 0)
}

func TestStoppedStorePanics(t *testing.T) {
	st := createNew(2)
	require.Empty(t, st.Stop().Wait())
	require.Empty(t, st.Stop().Wait())

	require.Panics(t, func() { st.Merge(stats.New()) })
}

func TestStopWhileMerging(t *testing.T) {
	st := createNew(4)
	acc := stats.New()
	acc.Add(1, 2, 3)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { recover() }()
			for j := 0; j < 1000; j++ {
				st.Merge(acc)
				st.Snapshot()
			}
		}()
	}

	require.Empty(t, st.Stop().Wait())
	wg.Wait()
	require.Panics(t, func() { st.Count() })
}

func BenchmarkMergeSingle(b *testing.B) { s.Merge(b, createNew(0)) }
func BenchmarkMerge1k(b *testing.B) { s.Merge1k(b, createNew(0)) }
func BenchmarkMergeBatch(b *testing.B) { s.MergeBatch(b, createNew(0)) }
func BenchmarkParallelMerge1k(b *testing.B) { s.ParallelMerge1k(b, createNew(0)) }
func BenchmarkReport(b *testing.B) { s.Report(b, createNew(0)) }
func BenchmarkQuantile(b *testing.B) { s.Quantile(b, createNew(0)) }
func BenchmarkMergeReport(b *testing.B) { s.MergeReport(b, createNew(0)) }
