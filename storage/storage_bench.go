// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/chihaya/incstats/stats"
)

type benchData struct {
	singles  [1000]*stats.Accumulator
	batches  [100]*stats.Accumulator
	quantile [5]float64
}

func generateSingles() (a [1000]*stats.Accumulator) {
	for i := range a {
		a[i] = stats.New()
		a[i].AddInt(int64(i))
	}
	return
}

func generateBatches() (a [100]*stats.Accumulator) {
	for i := range a {
		a[i] = stats.New()
		for j := 0; j < 1000; j++ {
			a[i].AddInt(int64((i*1000 + j) % 997))
		}
	}
	return
}

type executionFunc func(int, Store, *benchData)
type setupFunc func(Store, *benchData)

func runBenchmark(b *testing.B, s Store, sf setupFunc, ef executionFunc) {
	bd := &benchData{
		singles:  generateSingles(),
		batches:  generateBatches(),
		quantile: [5]float64{0, 0.25, 0.5, 0.75, 1},
	}
	if sf != nil {
		sf(s, bd)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ef(i, s, bd)
	}
	b.StopTimer()
}

func runParallelBenchmark(b *testing.B, s Store, sf setupFunc, ef executionFunc) {
	bd := &benchData{singles: generateSingles(), batches: generateBatches()}
	if sf != nil {
		sf(s, bd)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			ef(i, s, bd)
			i++
		}
	})
	b.StopTimer()
}

func fill(s Store, bd *benchData) {
	for _, acc := range bd.batches {
		s.Merge(acc)
	}
}

// Merge benchmarks merging a single sample.
func Merge(b *testing.B, s Store) {
	runBenchmark(b, s, nil, func(i int, s Store, bd *benchData) {
		s.Merge(bd.singles[0])
	})
}

// Merge1k benchmarks merging single samples out of 1000 distinct values.
func Merge1k(b *testing.B, s Store) {
	runBenchmark(b, s, nil, func(i int, s Store, bd *benchData) {
		s.Merge(bd.singles[i%1000])
	})
}

// MergeBatch benchmarks merging accumulators of 1000 samples.
func MergeBatch(b *testing.B, s Store) {
	runBenchmark(b, s, nil, func(i int, s Store, bd *benchData) {
		s.Merge(bd.batches[i%100])
	})
}

// ParallelMerge1k is Merge1k from concurrent goroutines.
func ParallelMerge1k(b *testing.B, s Store) {
	runParallelBenchmark(b, s, nil, func(i int, s Store, bd *benchData) {
		s.Merge(bd.singles[i%1000])
	})
}

// Report benchmarks building a report over 997 distinct values.
func Report(b *testing.B, s Store) {
	runBenchmark(b, s, fill, func(i int, s Store, bd *benchData) {
		s.Report()
	})
}

// Quantile benchmarks quantile queries over 997 distinct values.
func Quantile(b *testing.B, s Store) {
	runBenchmark(b, s, fill, func(i int, s Store, bd *benchData) {
		s.Quantile(bd.quantile[i%5])
	})
}

// MergeReport benchmarks interleaved writes and reads.
func MergeReport(b *testing.B, s Store) {
	runBenchmark(b, s, fill, func(i int, s Store, bd *benchData) {
		s.Merge(bd.singles[i%1000])
		s.Report()
	})
}
