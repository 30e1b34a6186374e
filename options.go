// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import "cmp"

// Compare returns -1, 0, or +1 depending on whether a is 'less than', 'equal
// to' or 'greater than' b. The tree only requires the sign of the result.
type Compare[K any] func(a, b K) int

// FreeFunc is invoked on a node's key and value when the last reference to
// the node is released.
type FreeFunc[K, V any] func(key K, value V)

// Options holds the parameters for a Tree.
type Options[K, V any] struct {
	// Compare defines a total order over keys. It is required.
	Compare Compare[K]

	// Free, if set, is called once per node when its last reference is
	// released. It is the place to release resources owned by the value.
	// Free may run on any goroutine that calls Node.Unref.
	Free FreeFunc[K, V]
}

// OrderedOptions returns Options that order keys with cmp.Compare.
func OrderedOptions[K cmp.Ordered, V any]() Options[K, V] {
	return Options[K, V]{Compare: cmp.Compare[K]}
}
