// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidQuantile is returned when a requested quantile is outside of
// [0, 1].
var ErrInvalidQuantile = errors.New("stats: q must be within the range from 0 to 1")

// InvariantError is the value Quantile panics with when its internal
// bookkeeping is inconsistent. It is never returned as an error.
type InvariantError struct {
	Q     float64
	Count int64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("stats: quantile %v did not bracket its rank among %d samples", e.Q, e.Count)
}

// Quantile returns the q-quantile of the samples, linearly interpolated
// between the two order statistics surrounding rank (Count-1)*q. The second
// return value is false if a is empty.
//
// The distinct values are walked from whichever end is closer to q and the walk
// stops as soon as both order statistics are found.
func (a *Accumulator) Quantile(q float64) (float64, bool, error) {
	if !(q >= 0 && q <= 1) {
		return 0, false, ErrInvalidQuantile
	}

	if a.count == 0 {
		return 0, false, nil
	}

	switch q {
	case 0:
		return a.min, true, nil
	case 1:
		return a.max, true, nil
	}

	eq := q
	descending := q > 0.5
	if descending {
		eq = 1 - q
	}

	pos := float64(a.count-1) * eq
	lo := math.Floor(pos)
	hi := math.Ceil(pos)

	var (
		cum          int64
		lower, upper float64
		foundLower   bool
		foundUpper   bool
	)
	for _, v := range a.sortedValues(descending) {
		cum += a.frequencies[v]
		rank := float64(cum - 1)

		if !foundLower && rank >= lo {
			lower, foundLower = v, true
		}
		if !foundUpper && rank >= hi {
			upper, foundUpper = v, true
		}
		if foundLower && foundUpper {
			return lower + (pos-lo)*(upper-lower), true, nil
		}
	}

	panic(&InvariantError{Q: q, Count: a.count})
}

// Quantiles returns the quantile for every q in qs. It fails on the first
// value of qs outside of [0, 1].
func (a *Accumulator) Quantiles(qs ...float64) ([]float64, bool, error) {
	results := make([]float64, len(qs))
	for i, q := range qs {
		v, ok, err := a.Quantile(q)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		results[i] = v
	}
	return results, true, nil
}

// sortedValues returns the distinct values of a, sorted ascending or
// descending.
func (a *Accumulator) sortedValues(descending bool) []float64 {
	values := make([]float64, len(a.keys))
	copy(values, a.keys)

	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	} else {
		sort.Float64s(values)
	}

	return values
}
