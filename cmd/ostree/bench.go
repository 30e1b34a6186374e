// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ostree"
	"github.com/cockroachdb/tokenbucket"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

var benchConfig = benchOptions{
	initial:     100000,
	ops:         1000000,
	seed:        1,
	readPercent: 50,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run a random mix of operations against a tree",
	Long: `
Builds a tree of random keys, then runs a mix of reads (select, rank, lookup,
next) and writes (insert, remove) against it, reporting per-operation
latencies and the height of the tree over the run.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchConfig.readPercent < 0 || benchConfig.readPercent > 100 {
			return errors.Newf("--read-percent must be in [0, 100], got %d", benchConfig.readPercent)
		}
		return runBench(os.Stdout, benchConfig)
	},
}

type benchOptions struct {
	initial      int
	ops          int
	seed         uint64
	readPercent  int
	maxOpsPerSec float64
	plot         bool
}

// benchState is the tree under test along with the handles of its members,
// which writes pick from.
type benchState struct {
	rng   *rand.Rand
	tree  *ostree.Tree[uint64, struct{}]
	nodes []*ostree.Node[uint64, struct{}]
}

func (s *benchState) insert() {
	s.nodes = append(s.nodes, s.tree.Insert(s.rng.Uint64(), struct{}{}))
}

func (s *benchState) remove() {
	if len(s.nodes) == 0 {
		return
	}
	i := s.rng.Intn(len(s.nodes))
	n := s.nodes[i]
	s.nodes[i] = s.nodes[len(s.nodes)-1]
	s.nodes = s.nodes[:len(s.nodes)-1]
	s.tree.Remove(n)
}

func (s *benchState) randomNode() *ostree.Node[uint64, struct{}] {
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[s.rng.Intn(len(s.nodes))]
}

func runBench(w io.Writer, opts benchOptions) error {
	s := &benchState{
		rng:  rand.New(rand.NewSource(opts.seed)),
		tree: ostree.New(ostree.OrderedOptions[uint64, struct{}]()),
	}
	for i := 0; i < opts.initial; i++ {
		s.insert()
	}

	var limiter *tokenbucket.TokenBucket
	if opts.maxOpsPerSec > 0 {
		limiter = &tokenbucket.TokenBucket{}
		limiter.Init(tokenbucket.TokensPerSecond(opts.maxOpsPerSec), tokenbucket.Tokens(opts.maxOpsPerSec))
	}

	reg := newHistogramRegistry()
	type op struct {
		hist *namedHistogram
		fn   func()
	}
	reads := []op{
		{reg.Register("select"), func() {
			if n := s.tree.Len(); n > 0 {
				s.tree.Select(s.rng.Intn(n))
			}
		}},
		{reg.Register("rank"), func() {
			if n := s.randomNode(); n != nil {
				n.Rank()
			}
		}},
		{reg.Register("lookup"), func() {
			if n := s.randomNode(); n != nil {
				s.tree.Lookup(n.Key())
			}
		}},
		{reg.Register("next"), func() {
			if n := s.randomNode(); n != nil {
				n.Next()
			}
		}},
	}
	insertOp := op{reg.Register("insert"), s.insert}
	removeOp := op{reg.Register("remove"), s.remove}

	var height sampledMetric
	sampleEvery := max(opts.ops/1000, 1)
	start := crtime.NowMono()
	for i := 0; i < opts.ops; i++ {
		if limiter != nil {
			for {
				ok, d := limiter.TryToFulfill(1)
				if ok {
					break
				}
				time.Sleep(d)
			}
		}
		var o op
		switch {
		case s.rng.Intn(100) < opts.readPercent:
			o = reads[s.rng.Intn(len(reads))]
		case s.rng.Intn(2) == 0 || s.tree.Len() == 0:
			o = insertOp
		default:
			o = removeOp
		}
		opStart := crtime.NowMono()
		o.fn()
		o.hist.Record(opStart.Elapsed())
		if i%sampleEvery == 0 {
			height.record(int64(i), int64(s.tree.Height()))
		}
	}
	elapsed := start.Elapsed()

	if err := s.tree.CheckInvariants(); err != nil {
		return errors.Wrap(err, "tree invariants violated")
	}

	fmt.Fprintf(w, "%d ops in %s (%.0f ops/sec)\n\n",
		opts.ops, elapsed.Round(time.Millisecond), float64(opts.ops)/elapsed.Seconds())
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"op", "count", "mean(ns)", "p50(ns)", "p99(ns)", "max(ns)"})
	reg.Each(func(name string, h *hdrhistogram.Histogram) {
		tbl.Append([]string{
			name,
			fmt.Sprintf("%d", h.TotalCount()),
			fmt.Sprintf("%.0f", h.Mean()),
			fmt.Sprintf("%d", h.ValueAtQuantile(50)),
			fmt.Sprintf("%d", h.ValueAtQuantile(99)),
			fmt.Sprintf("%d", h.Max()),
		})
	})
	tbl.Render()

	fmt.Fprintf(w, "\n%s", s.tree.Metrics())
	if len(height.samples) > 0 {
		fmt.Fprintf(w, "height: min %d  mean %.1f  max %d\n", height.Min(), height.Mean(), height.Max())
		if opts.plot {
			fmt.Fprintf(w, "%s\n", height.Plot(60, 10))
		}
	}
	return nil
}
