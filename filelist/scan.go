// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package filelist

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// listDir returns the sorted paths of the regular files in dir that pass the
// extension filter. Files that cannot be stat'ed are logged and skipped.
func (l *List) listDir(dir string) ([]string, error) {
	fs := l.opts.FS
	names, err := fs.List(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "filelist: listing %s", dir)
	}
	slices.Sort(names)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		if !l.opts.matchesExtension(name) {
			continue
		}
		p := fs.PathJoin(dir, name)
		fi, err := fs.Stat(p)
		if err != nil {
			l.opts.Logger.Infof("filelist: skipping %s: %v", p, err)
			continue
		}
		if fi.IsDir() {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Scan adds the files in dir to the list and returns the number of entries
// added. Files already in the list are left alone.
func (l *List) Scan(dir string) (int, error) {
	paths, err := l.listDir(dir)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, p := range paths {
		if _, ok := l.Add(p); ok {
			added++
		}
	}
	return added, nil
}

// Rescan brings the list's view of dir up to date: new files are added and
// entries whose files are gone are removed. It returns the number of entries
// added and removed.
func (l *List) Rescan(dir string) (added, removed int, _ error) {
	paths, err := l.listDir(dir)
	if err != nil {
		return 0, 0, err
	}
	var present swiss.Map[string, struct{}]
	present.Init(len(paths))
	defer present.Close()
	for _, p := range paths {
		present.Put(p, struct{}{})
	}

	l.mu.Lock()
	l.checkOpen()
	fs := l.opts.FS
	var stale []string
	for n := range l.mu.tree.All() {
		p := n.Key().path
		if fs.PathJoin(dir, fs.PathBase(p)) != p {
			continue
		}
		if _, ok := present.Get(p); !ok {
			stale = append(stale, p)
		}
	}
	for _, p := range stale {
		if l.removeLocked(p) {
			removed++
		}
	}
	l.mu.Unlock()

	for _, p := range paths {
		if _, ok := l.Add(p); ok {
			added++
		}
	}
	return added, removed, nil
}
