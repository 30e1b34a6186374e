// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// sampledMetric holds a metric that is sampled at various points of a
// benchmark run. Each sample is tagged with the number of operations applied
// when it was taken.
type sampledMetric struct {
	samples []sample
}

type sample struct {
	at    int64
	value int64
}

func (m *sampledMetric) record(at, v int64) {
	m.samples = append(m.samples, sample{at: at, value: v})
}

// Plot returns an ASCII graph plot of the metric over the run, with the
// provided width and height determining the size of the graph and the number
// of representable discrete x and y points.
func (m *sampledMetric) Plot(width, height int) string {
	values := m.Values(width)
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values, asciigraph.Height(height))
}

// Mean calculates the mean value of the metric.
func (m *sampledMetric) Mean() float64 {
	var sum float64
	if len(m.samples) == 0 {
		return 0.0
	}
	for _, s := range m.samples {
		sum += float64(s.value)
	}
	return sum / float64(len(m.samples))
}

// Min calculates the mininum value of the metric.
func (m *sampledMetric) Min() int64 {
	min := int64(math.MaxInt64)
	for _, s := range m.samples {
		if min > s.value {
			min = s.value
		}
	}
	return min
}

// Max calculates the maximum value of the metric.
func (m *sampledMetric) Max() int64 {
	var max int64
	for _, s := range m.samples {
		if max < s.value {
			max = s.value
		}
	}
	return max
}

// Values returns the values of the metric, distributed across n discrete
// buckets that are equally spaced over the run. If multiple values fall within
// a bucket, the latest recorded value is used. If no values fall within a
// bucket, the next recorded value is used.
func (m *sampledMetric) Values(buckets int) []float64 {
	if len(m.samples) == 0 || buckets < 1 {
		return nil
	}

	values := make([]float64, buckets)
	total := m.samples[len(m.samples)-1].at + 1
	for i, b := 0, 0; i < len(m.samples); i++ {
		bi := int(m.samples[i].at * int64(buckets) / total)
		if bi >= buckets {
			bi = buckets - 1
		}
		// Fill any buckets that precede this value with this value.
		if b < bi {
			b++
			for ; b < bi; b++ {
				values[b] = float64(m.samples[i].value)
			}
		}
		values[bi] = float64(m.samples[i].value)
		b = bi
	}
	return values
}
