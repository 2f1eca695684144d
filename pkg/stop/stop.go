// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package stop implements asynchronous shutdown for the long running parts of
// incstats: the HTTP server and the standalone metrics server.
package stop

import "sync"

// Channel carries the errors of a single shutdown. Call Done exactly once.
type Channel chan []error

// Result is the receiving side of a Channel. Call Wait exactly once.
type Result <-chan []error

// Done reports errs, ignoring nil ones, and closes the Channel.
func (ch Channel) Done(errs ...error) {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) > 0 {
		ch <- nonNil
	}
	close(ch)
}

// Result converts a Channel to a Result.
func (ch Channel) Result() <-chan []error {
	return ch
}

// Wait blocks until Done is called on the underlying Channel and returns the
// reported errors.
func (r Result) Wait() []error {
	return <-r
}

// AlreadyStopped is a Result for something that has nothing left to stop.
var AlreadyStopped Result

func init() {
	closed := make(Channel)
	close(closed)
	AlreadyStopped = closed.Result()
}

// Stopper is implemented by anything that can be shut down.
//
// Stop must return immediately and shut down in the background; the Result
// yields any errors once the shutdown completed.
type Stopper interface {
	Stop() Result
}

// Func adapts a function to the Stopper interface.
type Func func() Result

// Stop calls f.
func (f Func) Stop() Result {
	return f()
}

// Group stops a set of Stoppers concurrently.
type Group struct {
	mu       sync.Mutex
	stoppers []Stopper
}

// NewGroup allocates a new Group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends s to the Group.
func (g *Group) Add(s Stopper) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stoppers = append(g.stoppers, s)
}

// Stop stops every member of the Group and returns a Result yielding all of
// their errors.
func (g *Group) Stop() Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	pending := make([]Result, 0, len(g.stoppers))
	for _, s := range g.stoppers {
		r := s.Stop()
		if r == nil {
			panic("stop: received a nil Result from Stop")
		}
		pending = append(pending, r)
	}

	done := make(Channel)
	go func() {
		var errs []error
		for _, r := range pending {
			errs = append(errs, r.Wait()...)
		}
		done.Done(errs...)
	}()

	return done.Result()
}
