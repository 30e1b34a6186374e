// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import (
	"sync/atomic"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// treeMetrics holds the tree's internal counters. The plain fields are only
// touched by mutations, which are serialized; the atomic ones are also
// updated by Node.Unref from arbitrary goroutines.
type treeMetrics struct {
	inserts   uint64
	removes   uint64
	rotations uint64
	// detached counts nodes that have left the tree but are still allocated.
	detached atomic.Int64
	freed    atomic.Uint64
}

// Metrics holds a point-in-time summary of a tree.
type Metrics struct {
	// Count is the number of nodes in the tree.
	Count int
	// Height is the height of the tree.
	Height int
	// Inserts and Removes are the number of Insert and Remove calls.
	Inserts uint64
	Removes uint64
	// Rotations is the number of single rotations performed while
	// rebalancing. A double rotation counts twice.
	Rotations uint64
	// Detached is the number of nodes that are no longer members of the tree
	// but are kept allocated by outstanding references.
	Detached int64
	// Freed is the number of nodes whose last reference was released.
	Freed uint64
}

// Metrics returns the tree's metrics. Like other reads, it must not run
// concurrently with a mutation.
func (t *Tree[K, V]) Metrics() Metrics {
	return Metrics{
		Count:     t.Len(),
		Height:    t.Height(),
		Inserts:   t.metrics.inserts,
		Removes:   t.metrics.removes,
		Rotations: t.metrics.rotations,
		Detached:  t.metrics.detached.Load(),
		Freed:     t.metrics.freed.Load(),
	}
}

// String implements fmt.Stringer.
func (m Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

// SafeFormat implements redact.SafeFormatter.
func (m Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("count: %s  height: %d\n", crhumanize.Count(uint64(m.Count), crhumanize.Compact), redact.Safe(m.Height))
	w.Printf("inserts: %s  removes: %s  rotations: %s\n",
		crhumanize.Count(m.Inserts, crhumanize.Compact),
		crhumanize.Count(m.Removes, crhumanize.Compact),
		crhumanize.Count(m.Rotations, crhumanize.Compact))
	w.Printf("detached: %d  freed: %s\n", redact.Safe(m.Detached), crhumanize.Count(m.Freed, crhumanize.Compact))
}
