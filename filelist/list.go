// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package filelist maintains an ordered, cursor-addressed list of files on top
// of an order-statistic tree. Entries are found by position in O(log n), can be
// added and removed while the list is being browsed, and can be loaded in the
// background through weak references that survive their removal.
package filelist

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ostree"
	"github.com/cockroachdb/ostree/internal/invariants"
	"github.com/cockroachdb/swiss"
)

// key orders entries. Only one of its fields is compared, depending on the
// list's SortMode.
type key struct {
	path string
	seq  uint64
}

type node = ostree.Node[key, *Entry]

// Entry is a file in a List.
type Entry struct {
	path string
	seq  uint64

	// loadedBytes is the owning list's counter of loaded payload bytes.
	loadedBytes *atomic.Int64
	mu          struct {
		sync.Mutex
		data   []byte
		loaded bool
	}
}

// Path returns the entry's path.
func (e *Entry) Path() string { return e.path }

// Data returns the entry's payload and whether it is loaded.
func (e *Entry) Data() ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mu.data, e.mu.loaded
}

func (e *Entry) setData(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.loaded {
		e.loadedBytes.Add(-int64(len(e.mu.data)))
	}
	e.mu.data, e.mu.loaded = data, true
	e.loadedBytes.Add(int64(len(data)))
}

// unload drops the entry's payload. It is the tree's Free function and may
// also be called directly when a loaded entry turns out to have left the list.
func (e *Entry) unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mu.loaded {
		return
	}
	e.loadedBytes.Add(-int64(len(e.mu.data)))
	e.mu.data, e.mu.loaded = nil, false
}

// List is an ordered list of files with a cursor. All methods are safe for
// concurrent use.
type List struct {
	opts *Options

	loadedBytes atomic.Int64

	mu struct {
		sync.Mutex
		tree *ostree.Tree[key, *Entry]
		// index maps paths to their nodes and rejects duplicates.
		index swiss.Map[string, *node]
		// cur is the entry under the cursor. The list holds a reference on it
		// in addition to the tree's.
		cur     *node
		nextSeq uint64
		closed  bool
	}
}

// Open returns an empty list.
func Open(opts *Options) *List {
	l := &List{opts: opts.EnsureDefaults()}
	var cmp ostree.Compare[key]
	switch l.opts.Sort {
	case SortName:
		cmp = func(a, b key) int { return strings.Compare(a.path, b.path) }
	case SortNatural:
		cmp = func(a, b key) int { return naturalCompare(a.path, b.path) }
	default:
		cmp = func(a, b key) int {
			switch {
			case a.seq < b.seq:
				return -1
			case a.seq > b.seq:
				return +1
			}
			return 0
		}
	}
	l.mu.tree = ostree.New(ostree.Options[key, *Entry]{
		Compare: cmp,
		Free:    func(_ key, e *Entry) { e.unload() },
	})
	l.mu.index.Init(16)
	return l
}

// Close releases every entry. Payloads held alive by outstanding handles are
// released when those handles are.
func (l *List) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mu.closed {
		return errors.New("filelist: list already closed")
	}
	l.mu.closed = true
	if l.mu.cur != nil {
		l.mu.cur.Unref()
		l.mu.cur = nil
	}
	l.mu.tree.Destroy()
	l.mu.index.Close()
	return nil
}

func (l *List) checkOpen() {
	if l.mu.closed {
		panic(errors.AssertionFailedf("filelist: use of closed list"))
	}
}

// Add appends path to the list and returns its entry. If path is already
// present, the existing entry is returned with false. The first entry added
// to an empty list becomes current.
func (l *List) Add(path string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	if n, ok := l.mu.index.Get(path); ok {
		return n.Value(), false
	}
	e := &Entry{path: path, seq: l.mu.nextSeq, loadedBytes: &l.loadedBytes}
	l.mu.nextSeq++
	n := l.mu.tree.Insert(key{path: path, seq: e.seq}, e)
	l.mu.index.Put(path, n)
	if l.mu.cur == nil {
		l.mu.cur = n.Ref()
	}
	return e, true
}

// Remove removes path from the list and reports whether it was present. If
// it was the current entry, the cursor moves to its successor, or to its
// predecessor if it was the last entry.
func (l *List) Remove(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	return l.removeLocked(path)
}

func (l *List) removeLocked(path string) bool {
	n, ok := l.mu.index.Get(path)
	if !ok {
		return false
	}
	if n == l.mu.cur {
		next := n.Next()
		if next == nil {
			next = n.Prev()
		}
		l.setCursorLocked(next)
	}
	l.mu.index.Delete(path)
	l.mu.tree.Remove(n)
	return true
}

// setCursorLocked moves the cursor to n, which may be nil.
func (l *List) setCursorLocked(n *node) {
	if n == l.mu.cur {
		return
	}
	if n != nil {
		n.Ref()
	}
	if old := l.mu.cur; old != nil {
		old.Unref()
	}
	l.mu.cur = n
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mu.tree.Len()
}

// Current returns the entry under the cursor and its position, or nil and -1
// if the list is empty.
func (l *List) Current() (*Entry, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	return l.currentLocked()
}

func (l *List) currentLocked() (*Entry, int) {
	if l.mu.cur == nil {
		return nil, -1
	}
	return l.mu.cur.Value(), l.mu.cur.Rank()
}

// Next advances the cursor, wrapping from the last entry to the first, and
// returns the new current entry and its position.
func (l *List) Next() (*Entry, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	if l.mu.cur != nil {
		n := l.mu.cur.Next()
		if n == nil {
			n = l.mu.tree.First()
		}
		l.setCursorLocked(n)
	}
	return l.currentLocked()
}

// Prev moves the cursor back, wrapping from the first entry to the last, and
// returns the new current entry and its position.
func (l *List) Prev() (*Entry, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	if l.mu.cur != nil {
		n := l.mu.cur.Prev()
		if n == nil {
			n = l.mu.tree.Last()
		}
		l.setCursorLocked(n)
	}
	return l.currentLocked()
}

// Jump moves the cursor to position i. Positions wrap around in both
// directions, so -1 is the last entry.
func (l *List) Jump(i int) (*Entry, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	if n := l.mu.tree.Len(); n > 0 {
		l.setCursorLocked(l.mu.tree.Select(wrap(i, n)))
	}
	return l.currentLocked()
}

func wrap(i, n int) int {
	j := ((i % n) + n) % n
	invariants.CheckBounds(j, n)
	return j
}

// Seek moves the cursor to the first entry whose path sorts at or after
// prefix. In insertion order it moves to the first entry whose path starts
// with prefix. If no entry qualifies the cursor does not move and Seek
// returns nil and -1.
func (l *List) Seek(prefix string) (*Entry, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	var n *node
	if l.opts.Sort == SortInsertion {
		for m := range l.mu.tree.All() {
			if strings.HasPrefix(m.Key().path, prefix) {
				n = m
				break
			}
		}
	} else {
		n = l.mu.tree.SeekGE(key{path: prefix})
	}
	if n == nil {
		return nil, -1
	}
	l.setCursorLocked(n)
	return l.currentLocked()
}

// Entries returns the entries in list order.
func (l *List) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	res := make([]*Entry, 0, l.mu.tree.Len())
	for n := range l.mu.tree.All() {
		res = append(res, n.Value())
	}
	return res
}

// Handle is a reference to an entry that can be used without holding the
// list's lock. The entry's payload stays alive until the handle is released,
// even if the entry is removed from the list in the meantime.
type Handle struct {
	n     *node
	entry *Entry
}

// Acquire returns a handle on the entry at position i, which wraps around
// like Jump. It returns nil if the list is empty.
func (l *List) Acquire(i int) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checkOpen()
	n := l.mu.tree.Len()
	if n == 0 {
		return nil
	}
	return l.acquireLocked(l.mu.tree.Select(wrap(i, n)))
}

func (l *List) acquireLocked(n *node) *Handle {
	return &Handle{n: n.Ref(), entry: n.Value()}
}

// Entry returns the handle's entry.
func (h *Handle) Entry() *Entry { return h.entry }

// Release releases the handle and reports whether its entry is still in the
// list. The handle must not be used afterwards.
func (h *Handle) Release() bool {
	if h.n == nil {
		panic(errors.AssertionFailedf("filelist: handle released twice"))
	}
	n := h.n
	h.n = nil
	return n.Unref() != nil
}

// Metrics holds a point-in-time summary of a list.
type Metrics struct {
	Tree        ostree.Metrics
	LoadedBytes int64
}

// Metrics returns the list's metrics.
func (l *List) Metrics() Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Metrics{
		Tree:        l.mu.tree.Metrics(),
		LoadedBytes: l.loadedBytes.Load(),
	}
}
