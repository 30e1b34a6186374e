// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

// namedHistogram records the latencies of one kind of operation.
type namedHistogram struct {
	name string
	mu   struct {
		sync.Mutex
		current *hdrhistogram.Histogram
	}
}

func newNamedHistogram(name string) *namedHistogram {
	w := &namedHistogram{name: name}
	w.mu.current = newHistogram()
	return w
}

func (w *namedHistogram) Record(elapsed time.Duration) {
	if elapsed < minLatency {
		elapsed = minLatency
	} else if elapsed > maxLatency {
		elapsed = maxLatency
	}

	w.mu.Lock()
	err := w.mu.current.RecordValue(elapsed.Nanoseconds())
	w.mu.Unlock()

	if err != nil {
		// Note that a histogram only drops recorded values that are out of range,
		// but we clamp the latency value to the configured range to prevent such
		// drops. This code path should never happen.
		panic(fmt.Sprintf(`%s: recording value: %s`, w.name, err))
	}
}

func (w *namedHistogram) snapshot() *hdrhistogram.Histogram {
	w.mu.Lock()
	defer w.mu.Unlock()
	return hdrhistogram.Import(w.mu.current.Export())
}

// histogramRegistry hands out named histograms. Histograms registered under
// the same name are merged when read.
type histogramRegistry struct {
	mu struct {
		sync.Mutex
		registered []*namedHistogram
	}
}

func newHistogramRegistry() *histogramRegistry {
	return &histogramRegistry{}
}

func (w *histogramRegistry) Register(name string) *namedHistogram {
	hist := newNamedHistogram(name)

	w.mu.Lock()
	w.mu.registered = append(w.mu.registered, hist)
	w.mu.Unlock()

	return hist
}

// Each calls fn with the merged histogram of every registered name, in name
// order.
func (w *histogramRegistry) Each(fn func(name string, h *hdrhistogram.Histogram)) {
	w.mu.Lock()
	registered := slices.Clone(w.mu.registered)
	w.mu.Unlock()

	merged := make(map[string]*hdrhistogram.Histogram)
	var names []string
	for _, hist := range registered {
		h := hist.snapshot()
		if m, ok := merged[hist.name]; ok {
			m.Merge(h)
		} else {
			merged[hist.name] = h
			names = append(names, hist.name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		fn(name, merged[name])
	}
}
