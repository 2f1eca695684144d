// Copyright 2014 The Chihaya Authors. All rights reserved.
// Use of this source code is governed by the BSD 2-Clause license,
// which can be found in the LICENSE file.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chihaya/incstats/stats"
)

// ReportSource provides consistent snapshots of an accumulator. It must be
// safe to call from the goroutine serving a scrape.
type ReportSource interface {
	Report() stats.Report
	Distinct() int
}

// Collector exports the report of a ReportSource as gauges. Statistics
// without a value are left out of a scrape.
type Collector struct {
	src ReportSource

	count    *prometheus.Desc
	distinct *prometheus.Desc
	mean     *prometheus.Desc
	std      *prometheus.Desc
	variance *prometheus.Desc
	quantile *prometheus.Desc
}

var _ prometheus.Collector = &Collector{}

// NewCollector returns a Collector naming its metrics under namespace.
func NewCollector(namespace string, src ReportSource) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "", n)
	}

	return &Collector{
		src:      src,
		count:    prometheus.NewDesc(name("count"), "Number of samples accumulated.", nil, nil),
		distinct: prometheus.NewDesc(name("distinct_values"), "Number of distinct sample values held in memory.", nil, nil),
		mean:     prometheus.NewDesc(name("mean"), "Mean of the accumulated samples.", nil, nil),
		std:      prometheus.NewDesc(name("std"), "Population standard deviation of the accumulated samples.", nil, nil),
		variance: prometheus.NewDesc(name("variance"), "Population variance of the accumulated samples.", nil, nil),
		quantile: prometheus.NewDesc(name("quantile"), "Quantiles of the accumulated samples.", []string{"quantile"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.count
	ch <- c.distinct
	ch <- c.mean
	ch <- c.std
	ch <- c.variance
	ch <- c.quantile
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	r := c.src.Report()

	ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(r.Count))
	ch <- prometheus.MustNewConstMetric(c.distinct, prometheus.GaugeValue, float64(c.src.Distinct()))

	gauge := func(desc *prometheus.Desc, v *float64, labels ...string) {
		if v == nil {
			return
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, *v, labels...)
	}

	gauge(c.mean, r.Mean)
	gauge(c.std, r.Std)
	gauge(c.variance, r.Var)
	gauge(c.quantile, r.Min, "0")
	gauge(c.quantile, r.Q1, "0.25")
	gauge(c.quantile, r.Median, "0.5")
	gauge(c.quantile, r.Q3, "0.75")
	gauge(c.quantile, r.Max, "1")
}
