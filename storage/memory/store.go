// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package memory implements a storage.Store that keeps the distribution in
// memory, split across independently locked shards.
package memory

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v2"

	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/pkg/stop"
	"github.com/chihaya/incstats/stats"
	"github.com/chihaya/incstats/storage"
)

// Name is the name by which this store is registered.
const Name = "memory"

func init() {
	prometheus.MustRegister(promSnapshotDurationMilliseconds)
	storage.RegisterDriver(Name, driver{})
}

var promSnapshotDurationMilliseconds = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "incstats_storage_snapshot_duration_milliseconds",
	Help:    "The time it takes to merge every shard into a snapshot",
	Buckets: prometheus.ExponentialBuckets(0.0625, 2, 12),
})

// recordSnapshotDuration records the duration of building a snapshot.
func recordSnapshotDuration(duration time.Duration) {
	promSnapshotDurationMilliseconds.Observe(float64(duration.Nanoseconds()) / float64(time.Millisecond))
}

// ErrInvalidShardCount is returned for a negative ShardCount.
var ErrInvalidShardCount = errors.New("invalid shard count")

type driver struct{}

func (d driver) NewStore(icfg interface{}) (storage.Store, error) {
	// Marshal the config back into bytes.
	bytes, err := yaml.Marshal(icfg)
	if err != nil {
		return nil, err
	}

	// Unmarshal the bytes into the proper config type.
	var cfg Config
	err = yaml.Unmarshal(bytes, &cfg)
	if err != nil {
		return nil, err
	}

	return New(cfg)
}

// Config holds the configuration of a memory Store.
type Config struct {
	ShardCount int `yaml:"shard_count"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"name":       Name,
		"shardCount": cfg.ShardCount,
	}
}

// Validate sanity checks values set in a config and returns a new config with
// default values replacing anything that is invalid.
func (cfg Config) Validate() (Config, error) {
	if cfg.ShardCount < 0 {
		return cfg, ErrInvalidShardCount
	}

	validcfg := cfg
	if cfg.ShardCount == 0 {
		validcfg.ShardCount = runtime.NumCPU()
		log.Debug("falling back to default configuration", log.Fields{
			"name":     Name + ".ShardCount",
			"provided": cfg.ShardCount,
			"default":  validcfg.ShardCount,
		})
	}

	return validcfg, nil
}

// New creates a new Store backed by memory.
func New(provided Config) (storage.Store, error) {
	cfg, err := provided.Validate()
	if err != nil {
		return nil, err
	}

	s := &store{
		shards:  make([]*shard, cfg.ShardCount),
		closing: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &shard{acc: stats.New()}
	}

	return s, nil
}

type shard struct {
	acc *stats.Accumulator
	sync.Mutex
}

type store struct {
	shards  []*shard
	next    uint32
	closing chan struct{}
}

var _ storage.Store = &store{}

func (s *store) checkOpen() {
	select {
	case <-s.closing:
		panic("attempted to interact with stopped memory store")
	default:
	}
}

// Merge spreads writers across shards round robin so that concurrent merges
// rarely contend for the same lock.
func (s *store) Merge(acc *stats.Accumulator) {
	s.checkOpen()
	if acc == nil || acc.Count() == 0 {
		return
	}

	sh := s.shards[atomic.AddUint32(&s.next, 1)%uint32(len(s.shards))]
	sh.Lock()
	sh.acc.Merge(acc)
	sh.Unlock()
}

func (s *store) Clear() {
	s.checkOpen()
	for _, sh := range s.shards {
		sh.Lock()
		sh.acc.Clear()
		sh.Unlock()
	}
}

func (s *store) Snapshot() *stats.Accumulator {
	s.checkOpen()
	start := time.Now()

	snap := stats.New()
	for _, sh := range s.shards {
		sh.Lock()
		snap.Merge(sh.acc)
		sh.Unlock()
	}

	recordSnapshotDuration(time.Since(start))
	return snap
}

func (s *store) Report() stats.Report {
	return s.Snapshot().Report()
}

func (s *store) Quantile(q float64) (float64, bool, error) {
	return s.Snapshot().Quantile(q)
}

func (s *store) Count() int64 {
	s.checkOpen()

	var n int64
	for _, sh := range s.shards {
		sh.Lock()
		n += sh.acc.Count()
		sh.Unlock()
	}
	return n
}

func (s *store) Distinct() int {
	return s.Snapshot().Distinct()
}

func (s *store) Stop() stop.Result {
	select {
	case <-s.closing:
		return stop.AlreadyStopped
	default:
	}

	c := make(stop.Channel)
	go func() {
		close(s.closing)
		c.Done()
	}()

	return c.Result()
}
