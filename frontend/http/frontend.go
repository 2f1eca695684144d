// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

// Package http implements an HTTP API for feeding samples into a
// storage.Store and querying its statistics.
package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chihaya/incstats/ingest"
	"github.com/chihaya/incstats/pkg/log"
	"github.com/chihaya/incstats/pkg/metrics"
	"github.com/chihaya/incstats/pkg/stop"
	"github.com/chihaya/incstats/stats"
	"github.com/chihaya/incstats/storage"
)

// Default config constants.
const (
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 2 * time.Second
	defaultMaxBodySize  = 8 << 20
)

// Config represents all of the configurable options for the HTTP API.
type Config struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodySize  int64         `yaml:"max_body_size"`
	Ingest       ingest.Config `yaml:"ingest"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"addr":         cfg.Addr,
		"readTimeout":  cfg.ReadTimeout,
		"writeTimeout": cfg.WriteTimeout,
		"maxBodySize":  cfg.MaxBodySize,
		"skipInvalid":  cfg.Ingest.SkipInvalid,
		"separators":   cfg.Ingest.Separators,
	}
}

// Validate sanity checks values set in a config and returns a new config with
// default values replacing anything that is invalid.
func (cfg Config) Validate() Config {
	validcfg := cfg

	if cfg.ReadTimeout <= 0 {
		validcfg.ReadTimeout = defaultReadTimeout
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.ReadTimeout",
			"provided": cfg.ReadTimeout,
			"default":  validcfg.ReadTimeout,
		})
	}

	if cfg.WriteTimeout <= 0 {
		validcfg.WriteTimeout = defaultWriteTimeout
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.WriteTimeout",
			"provided": cfg.WriteTimeout,
			"default":  validcfg.WriteTimeout,
		})
	}

	if cfg.MaxBodySize <= 0 {
		validcfg.MaxBodySize = defaultMaxBodySize
	}

	return validcfg
}

// Frontend holds the state of the HTTP API.
type Frontend struct {
	srv      *http.Server
	store    storage.Store
	gatherer prometheus.Gatherer

	Config
}

// NewFrontend creates a new instance of an HTTP Frontend that asynchronously
// serves requests. Metrics gathered by g are served on /metrics.
func NewFrontend(store storage.Store, g prometheus.Gatherer, provided Config) (*Frontend, error) {
	cfg := provided.Validate()

	f := &Frontend{
		store:    store,
		gatherer: g,
		Config:   cfg,
	}

	ln, err := net.Listen("tcp", f.Addr)
	if err != nil {
		return nil, err
	}

	f.srv = &http.Server{
		Addr:         f.Addr,
		Handler:      f.handler(),
		ReadTimeout:  f.ReadTimeout,
		WriteTimeout: f.WriteTimeout,
	}

	go func() {
		if err := f.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed while serving http", log.Err(err))
		}
	}()

	log.Info("started serving HTTP", f.Config)
	return f, nil
}

// Stop provides a thread-safe way to shutdown a currently running Frontend.
func (f *Frontend) Stop() stop.Result {
	c := make(stop.Channel)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), f.WriteTimeout)
		defer cancel()
		c.Done(f.srv.Shutdown(ctx))
	}()

	return c.Result()
}

func (f *Frontend) handler() http.Handler {
	router := httprouter.New()
	router.POST("/samples", f.ingestRoute)
	router.DELETE("/samples", f.clearRoute)
	router.GET("/report", f.reportRoute)
	router.GET("/quantile/:q", f.quantileRoute)
	if f.gatherer != nil {
		router.Handler("GET", "/metrics", metrics.Handler(f.gatherer))
	}
	return router
}

// ingestRoute parses the request body as samples and merges them into the
// store. A body with any invalid sample is rejected as a whole unless the
// ingestion config skips invalid samples.
func (f *Frontend) ingestRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("ingest", err, time.Since(start)) }()

	body := http.MaxBytesReader(w, r.Body, f.MaxBodySize)
	defer body.Close()

	scratch := stats.New()
	var added int64
	added, err = ingest.Scan(r.Context(), ingest.Source{Name: "request", Reader: body}, scratch, f.Ingest)
	if err != nil {
		var perr *ingest.ParseError
		switch {
		case errors.As(err, &perr):
			err = ClientError(perr.Error())
		case errors.Is(err, bufio.ErrTooLong), isBodyTooLarge(err):
			err = ClientError("request body too large")
		}
		WriteError(w, err)
		return
	}

	f.store.Merge(scratch)

	err = WriteIngestResponse(w, IngestResponse{Added: added, Count: f.store.Count()})
}

// isBodyTooLarge reports whether err was caused by http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	return strings.Contains(err.Error(), "http: request body too large")
}

func (f *Frontend) clearRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := time.Now()
	defer func() { recordResponseDuration("clear", nil, time.Since(start)) }()

	f.store.Clear()
	log.Info("http: cleared samples", log.Fields{"remote": r.RemoteAddr})
	w.WriteHeader(http.StatusNoContent)
}

func (f *Frontend) reportRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("report", err, time.Since(start)) }()

	err = WriteReport(w, f.store.Report())
}

func (f *Frontend) quantileRoute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("quantile", err, time.Since(start)) }()

	raw := ps.ByName("q")
	q, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		err = ClientError(fmt.Sprintf("invalid quantile %q", raw))
		WriteError(w, err)
		return
	}

	v, ok, err := f.store.Quantile(q)
	if err != nil {
		if errors.Is(err, stats.ErrInvalidQuantile) {
			err = ClientError(err.Error())
		}
		WriteError(w, err)
		return
	}

	resp := QuantileResponse{Q: q}
	if ok {
		resp.Value = &v
	}
	err = WriteQuantileResponse(w, resp)
}
