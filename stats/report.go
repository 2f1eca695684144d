// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package stats

import (
	"strconv"
	"strings"
)

// Keys of a Report, in the order they are reported.
const (
	KeyCount  = "count"
	KeyMean   = "mean"
	KeyStd    = "std"
	KeyVar    = "var"
	KeyMedian = "median"
	KeyQ1     = "q1"
	KeyQ3     = "q3"
	KeyMin    = "min"
	KeyMax    = "max"
)

// ReportKeys lists every key of a Report in reporting order.
var ReportKeys = []string{
	KeyCount,
	KeyMean,
	KeyStd,
	KeyVar,
	KeyMedian,
	KeyQ1,
	KeyQ3,
	KeyMin,
	KeyMax,
}

// Report is a snapshot of every statistic of an Accumulator.
//
// Statistics that are undefined because no sample was added are nil.
type Report struct {
	Count  int64    `json:"count" yaml:"count"`
	Mean   *float64 `json:"mean" yaml:"mean"`
	Std    *float64 `json:"std" yaml:"std"`
	Var    *float64 `json:"var" yaml:"var"`
	Median *float64 `json:"median" yaml:"median"`
	Q1     *float64 `json:"q1" yaml:"q1"`
	Q3     *float64 `json:"q3" yaml:"q3"`
	Min    *float64 `json:"min" yaml:"min"`
	Max    *float64 `json:"max" yaml:"max"`
}

// Field is a single named statistic of a Report.
type Field struct {
	Key   string
	Value *float64
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func quantile(a *Accumulator, q float64) *float64 {
	v, ok, _ := a.Quantile(q)
	return optional(v, ok)
}

// Report builds a Report of the current state of a.
func (a *Accumulator) Report() Report {
	if a.count == 0 {
		return Report{}
	}

	return Report{
		Count:  a.count,
		Mean:   optional(a.Mean()),
		Std:    optional(a.Std()),
		Var:    optional(a.Variance()),
		Median: optional(a.Median()),
		Q1:     quantile(a, 0.25),
		Q3:     quantile(a, 0.75),
		Min:    optional(a.Min()),
		Max:    optional(a.Max()),
	}
}

// Empty reports whether r was built from an Accumulator without samples.
func (r Report) Empty() bool {
	return r.Count == 0
}

// Fields returns the statistics of r in ReportKeys order. The count is
// included as a float.
func (r Report) Fields() []Field {
	count := float64(r.Count)
	return []Field{
		{KeyCount, &count},
		{KeyMean, r.Mean},
		{KeyStd, r.Std},
		{KeyVar, r.Var},
		{KeyMedian, r.Median},
		{KeyQ1, r.Q1},
		{KeyQ3, r.Q3},
		{KeyMin, r.Min},
		{KeyMax, r.Max},
	}
}

// Get returns the statistic stored under key. The second return value is
// false for an unknown key.
func (r Report) Get(key string) (*float64, bool) {
	for _, f := range r.Fields() {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String renders r on a single line, e.g. "{count: 2, mean: 1.5, ...}".
func (r Report) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Key)
		b.WriteString(": ")
		if f.Value == nil {
			b.WriteString("none")
			continue
		}
		b.WriteString(strconv.FormatFloat(*f.Value, 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}
