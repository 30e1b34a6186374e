// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/ostree/filelist"
	"github.com/cockroachdb/ostree/internal/base"
	"github.com/cockroachdb/ostree/vfs"
	"github.com/stretchr/testify/require"
)

func TestSampledMetric(t *testing.T) {
	var m sampledMetric
	require.Nil(t, m.Values(4))
	require.Equal(t, 0.0, m.Mean())

	for i, v := range []int64{1, 2, 2, 3, 3, 3, 4, 4} {
		m.record(int64(i), v)
	}
	require.Equal(t, int64(1), m.Min())
	require.Equal(t, int64(4), m.Max())
	require.Equal(t, 2.75, m.Mean())
	require.Equal(t, []float64{2, 3, 3, 4}, m.Values(4))
	require.NotEmpty(t, m.Plot(8, 4))
}

func TestHistogramRegistry(t *testing.T) {
	reg := newHistogramRegistry()
	a1 := reg.Register("a")
	a2 := reg.Register("a")
	b := reg.Register("b")
	a1.Record(100)
	a2.Record(200)
	a2.Record(maxLatency * 2)
	b.Record(0)

	counts := map[string]int64{}
	var names []string
	reg.Each(func(name string, h *hdrhistogram.Histogram) {
		names = append(names, name)
		counts[name] = h.TotalCount()
	})
	require.Equal(t, []string{"a", "b"}, names)
	require.Equal(t, map[string]int64{"a": 3, "b": 1}, counts)
}

func TestRunBench(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runBench(&buf, benchOptions{
		initial:     500,
		ops:         5000,
		seed:        7,
		readPercent: 50,
		plot:        true,
	}))
	out := buf.String()
	for _, op := range []string{"select", "rank", "lookup", "next", "insert", "remove"} {
		require.Contains(t, out, op)
	}
	require.Contains(t, out, "height: min")
}

func TestRunLs(t *testing.T) {
	fs := vfs.NewMem()
	require.NoError(t, fs.MkdirAll("pics"))
	require.NoError(t, fs.WriteFile("pics/img10.png", bytes.Repeat([]byte("x"), 2048)))
	require.NoError(t, fs.WriteFile("pics/img2.png", []byte("x")))
	require.NoError(t, fs.WriteFile("pics/readme.txt", []byte("x")))

	var buf bytes.Buffer
	require.NoError(t, runLs(&buf, "pics", lsOptions{
		fs:         fs,
		sort:       filelist.SortNatural,
		extensions: []string{".png"},
		preload:    1,
		metrics:    true,
		logger:     &base.InMemLogger{},
	}))
	out := buf.String()
	require.Less(t, bytes.Index(buf.Bytes(), []byte("img2.png")), bytes.Index(buf.Bytes(), []byte("img10.png")))
	require.NotContains(t, out, "readme.txt")
	require.Contains(t, out, "ostree_filelist_entries 2")
	require.Contains(t, out, "ostree_filelist_loaded_bytes 2049")
}
