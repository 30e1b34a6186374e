// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package filelist

import (
	"context"
	"sync"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ostree/vfs"
	"golang.org/x/sync/errgroup"
)

// Preload loads the payloads of the current entry and of up to radius
// entries on either side of it. The list's lock is only held while the
// entries are picked; the files are read concurrently without it, so the list
// can be browsed and modified while a preload is in flight. An entry removed
// during its load has its payload dropped as soon as the load completes.
// Entries that fail to load are logged and removed from the list.
//
// Preload returns the number of entries loaded, and an error only if ctx was
// canceled.
func (l *List) Preload(ctx context.Context, radius int) (int, error) {
	handles := l.pickForLoad(radius)

	var mu sync.Mutex
	var failed []string
	loaded := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.LoadConcurrency)
	for _, h := range handles {
		g.Go(func() error {
			defer func() {
				if !h.Release() {
					// The entry left the list while it was being loaded.
					h.entry.unload()
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.load(h.entry); err != nil {
				l.opts.Logger.Errorf("filelist: %v", err)
				mu.Lock()
				failed = append(failed, h.entry.path)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	if len(failed) > 0 {
		l.mu.Lock()
		if !l.mu.closed {
			for _, p := range failed {
				l.removeLocked(p)
			}
		}
		l.mu.Unlock()
	}
	return loaded, err
}

// pickForLoad acquires handles on the entries within radius of the cursor
// that are not loaded yet.
func (l *List) pickForLoad(radius int) []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	cur := l.mu.cur
	if cur == nil {
		return nil
	}
	var handles []*Handle
	pick := func(n *node) {
		if _, ok := n.Value().Data(); !ok {
			handles = append(handles, l.acquireLocked(n))
		}
	}
	pick(cur)
	next, prev := cur.Next(), cur.Prev()
	for i := 0; i < radius && (next != nil || prev != nil); i++ {
		if next != nil {
			pick(next)
			next = next.Next()
		}
		if prev != nil {
			pick(prev)
			prev = prev.Prev()
		}
	}
	return handles
}

// load reads an entry's file and installs it as the entry's payload.
func (l *List) load(e *Entry) error {
	start := crtime.NowMono()
	data, err := vfs.ReadAll(l.opts.FS, e.path)
	if l.opts.Metrics.LoadLatency != nil {
		l.opts.Metrics.LoadLatency.Observe(float64(start.Elapsed()))
	}
	if err != nil {
		return errors.Wrapf(err, "loading %s", e.path)
	}
	e.setData(data)
	return nil
}
