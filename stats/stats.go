// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package stats implements an incremental accumulator of descriptive
// statistics over a stream of numeric samples.
//
// An Accumulator stores how many times each distinct value has been observed
// rather than the samples themselves, so its memory grows with the number of
// distinct values and not with the number of samples. Mean, minimum and
// maximum are maintained on every mutation; variance and quantiles are
// computed on demand from the frequency map.
//
// An Accumulator is not safe for concurrent use. Callers ingesting in parallel
// should keep one Accumulator per goroutine and combine them with Merge.
package stats

import "math"

// Accumulator holds the distribution of every sample added to it.
//
// The zero value is an empty Accumulator ready to use.
type Accumulator struct {
	frequencies map[float64]int64

	// keys holds the distinct values in first-seen order so that every walk
	// over the distribution sums in the same order.
	keys []float64

	count int64
	sum   float64

	// min and max are only meaningful when count > 0.
	min float64
	max float64
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{frequencies: make(map[float64]int64)}
}

// observe records n occurrences of value. NaN is not an observation and is
// dropped.
func (a *Accumulator) observe(value float64, n int64) {
	if math.IsNaN(value) {
		return
	}

	if a.frequencies == nil {
		a.frequencies = make(map[float64]int64)
	}

	if a.count == 0 {
		a.min, a.max = value, value
	} else {
		a.min = math.Min(a.min, value)
		a.max = math.Max(a.max, value)
	}

	if _, seen := a.frequencies[value]; !seen {
		a.keys = append(a.keys, value)
	}
	a.frequencies[value] += n
	a.sum += value * float64(n)
	a.count += n
}

// AddOne adds a single sample.
func (a *Accumulator) AddOne(value float64) {
	a.observe(value, 1)
}

// Add adds every sample in values, in order.
func (a *Accumulator) Add(values ...float64) {
	for _, v := range values {
		a.observe(v, 1)
	}
}

// AddInt adds a single integer sample.
func (a *Accumulator) AddInt(value int64) {
	a.observe(float64(value), 1)
}

// AddInts adds every integer sample in values, in order.
func (a *Accumulator) AddInts(values ...int64) {
	for _, v := range values {
		a.observe(float64(v), 1)
	}
}

// Merge absorbs the distribution of other, as if every sample that was added
// to other had been added to a. other is left unmodified.
//
// Merging an Accumulator into itself doubles every multiplicity.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other.count == 0 {
		return
	}

	if a == other {
		for _, v := range a.keys {
			a.frequencies[v] *= 2
		}
		a.sum *= 2
		a.count *= 2
		return
	}

	for _, v := range other.keys {
		a.observe(v, other.frequencies[v])
	}
}

// Clear resets a to the empty state.
func (a *Accumulator) Clear() {
	a.frequencies = make(map[float64]int64)
	a.keys = nil
	a.count = 0
	a.sum = 0
	a.min = 0
	a.max = 0
}

// Count returns the number of samples added so far.
func (a *Accumulator) Count() int64 {
	return a.count
}

// Sum returns the sum of every sample added so far.
func (a *Accumulator) Sum() float64 {
	return a.sum
}

// Distinct returns the number of distinct values observed, which bounds the
// memory held by a.
func (a *Accumulator) Distinct() int {
	return len(a.keys)
}

// Frequency returns how many times value has been added.
func (a *Accumulator) Frequency(value float64) int64 {
	return a.frequencies[value]
}

// Min returns the smallest sample, or false if a is empty.
func (a *Accumulator) Min() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.min, true
}

// Max returns the largest sample, or false if a is empty.
func (a *Accumulator) Max() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.max, true
}

// Mean returns the arithmetic mean, or false if a is empty.
func (a *Accumulator) Mean() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.sum / float64(a.count), true
}

// Variance returns the population variance, or false if a is empty.
//
// It visits each distinct value once, weighting its squared deviation by its
// multiplicity.
func (a *Accumulator) Variance() (float64, bool) {
	mean, ok := a.Mean()
	if !ok {
		return 0, false
	}

	var acc float64
	for _, v := range a.keys {
		d := v - mean
		acc += d * d * float64(a.frequencies[v])
	}

	return acc / float64(a.count), true
}

// Std returns the population standard deviation, or false if a is empty.
func (a *Accumulator) Std() (float64, bool) {
	variance, ok := a.Variance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(variance), true
}

// Median returns the 0.5 quantile, or false if a is empty.
func (a *Accumulator) Median() (float64, bool) {
	m, ok, _ := a.Quantile(0.5)
	return m, ok
}

// Values materializes every sample added so far, grouped by distinct value in
// the order each value was first seen.
//
// Values is O(Count) in time and memory.
func (a *Accumulator) Values() []float64 {
	values := make([]float64, 0, a.count)
	for _, v := range a.keys {
		for i, n := int64(0), a.frequencies[v]; i < n; i++ {
			values = append(values, v)
		}
	}
	return values
}

// Each calls fn once for every distinct value and its multiplicity, in
// ascending order of value.
func (a *Accumulator) Each(fn func(value float64, n int64)) {
	for _, v := range a.sortedValues(false) {
		fn(v, a.frequencies[v])
	}
}

// String returns a one-line rendering of a's report.
func (a *Accumulator) String() string {
	return a.Report().String()
}
