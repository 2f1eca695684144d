// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package ingest reads numeric samples from text streams into accumulators.
//
// Samples are separated by whitespace or by any of the configured separator
// runes. Blank lines and lines starting with '#' are ignored.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/stats"
)

// DefaultSeparators are the runes besides whitespace that split samples.
const DefaultSeparators = ",;"

// maxLineSize bounds the length of a single input line.
const maxLineSize = 1 << 20

// ErrInvalidWorkers is returned for a negative number of workers.
var ErrInvalidWorkers = errors.New("invalid number of ingestion workers")

// Config holds the configuration of the ingestion layer.
type Config struct {
	// Workers bounds the number of sources scanned concurrently by ScanAll.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// SkipInvalid logs and drops tokens that are not numbers instead of
	// failing.
	SkipInvalid bool `yaml:"skip_invalid"`

	// Separators lists the runes besides whitespace that split samples.
	// Empty means DefaultSeparators.
	Separators string `yaml:"separators"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"workers":     cfg.Workers,
		"skipInvalid": cfg.SkipInvalid,
		"separators":  cfg.Separators,
	}
}

// Validate sanity checks values set in a config and returns a new config with
// default values replacing anything that is unset.
func (cfg Config) Validate() (Config, error) {
	if cfg.Workers < 0 {
		return cfg, ErrInvalidWorkers
	}

	validcfg := cfg
	if validcfg.Workers == 0 {
		validcfg.Workers = runtime.NumCPU()
	}
	if validcfg.Separators == "" {
		validcfg.Separators = DefaultSeparators
	}

	return validcfg, nil
}

// ParseError describes a token that is not a finite number.
type ParseError struct {
	Source string
	Line   int
	Token  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %q is not a finite number", e.Source, e.Line, e.Token)
}

// LogFields implements log.Fielder for ParseError.
func (e *ParseError) LogFields() log.Fields {
	return log.Fields{
		"source": e.Source,
		"line":   e.Line,
		"token":  e.Token,
	}
}

// Source is a named stream of samples.
type Source struct {
	Name   string
	Reader io.Reader
}

func parse(token string) (float64, bool) {
	v, err := cast.ToFloat64E(token)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Scan adds every sample read from src to acc and returns how many samples
// were added. The context is checked between lines.
func Scan(ctx context.Context, src Source, acc *stats.Accumulator, cfg Config) (int64, error) {
	seps := cfg.Separators
	if seps == "" {
		seps = DefaultSeparators
	}
	split := func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(seps, r)
	}

	scanner := bufio.NewScanner(src.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var added int64
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		for _, token := range strings.FieldsFunc(text, split) {
			v, ok := parse(token)
			if !ok {
				perr := &ParseError{Source: src.Name, Line: line, Token: token}
				if !cfg.SkipInvalid {
					return added, perr
				}
				log.Warn("ingest: skipping invalid sample", perr)
				continue
			}

			acc.AddOne(v)
			added++
		}
	}

	if err := scanner.Err(); err != nil {
		return added, errors.Wrapf(err, "failed to read %s", src.Name)
	}

	log.Debug("ingest: scanned source", log.Fields{"source": src.Name, "samples": added})
	return added, nil
}

// ScanAll scans every source into its own worker's accumulator and merges the
// results once all workers are done. At most cfg.Workers sources are scanned
// concurrently. The first error cancels the remaining workers.
func ScanAll(ctx context.Context, sources []Source, cfg Config) (*stats.Accumulator, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers > len(sources) {
		workers = len(sources)
	}

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan Source)
	partials := make([]*stats.Accumulator, workers)

	g.Go(func() error {
		defer close(queue)
		for _, src := range sources {
			select {
			case queue <- src:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		acc := stats.New()
		partials[i] = acc
		g.Go(func() error {
			for src := range queue {
				if _, err := Scan(ctx, src, acc, cfg); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := stats.New()
	for _, partial := range partials {
		result.Merge(partial)
	}

	log.Debug("ingest: merged sources", log.Fields{
		"sources":  len(sources),
		"workers":  workers,
		"samples":  result.Count(),
		"distinct": result.Distinct(),
	})
	return result, nil
}
