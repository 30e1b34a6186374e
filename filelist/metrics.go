// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package filelist

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// LoaderMetrics holds the metrics recorded while loading entries.
type LoaderMetrics struct {
	// LoadLatency records the time taken to read an entry's file, in
	// nanoseconds. Failed loads are recorded as well.
	LoadLatency prometheus.Histogram
}

// NewLoaderMetrics returns LoaderMetrics with histograms named after prefix.
func NewLoaderMetrics(prefix string) LoaderMetrics {
	return LoaderMetrics{
		LoadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_load_latency",
			Help:    "Latency of reading a file list entry, in nanoseconds.",
			Buckets: prometheus.ExponentialBuckets(1e3, 10, 7),
		}),
	}
}

// RegisterMetrics registers gauges describing the list with reg, named after
// prefix. The list's LoadLatency histogram, if any, is registered too.
func (l *List) RegisterMetrics(reg prometheus.Registerer, prefix string) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_entries",
			Help: "Number of entries in the list.",
		}, func() float64 { return float64(l.Metrics().Tree.Count) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_tree_height",
			Help: "Height of the tree holding the list.",
		}, func() float64 { return float64(l.Metrics().Tree.Height) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_detached_entries",
			Help: "Entries removed from the list but still referenced.",
		}, func() float64 { return float64(l.Metrics().Tree.Detached) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: prefix + "_loaded_bytes",
			Help: "Bytes of entry payloads currently loaded.",
		}, func() float64 { return float64(l.loadedBytes.Load()) }),
	}
	if h := l.opts.Metrics.LoadLatency; h != nil {
		collectors = append(collectors, h)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return errors.Wrapf(err, "registering %s metrics", prefix)
		}
	}
	return nil
}
