// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import "github.com/cockroachdb/errors"

// MaxRefs is the maximum number of simultaneous references to a single node,
// counting the tree's own reference. Exceeding it is a programming error.
const MaxRefs = 127

// Ref acquires an additional reference to the node and returns it. The node
// stays allocated (its key and value remain readable) until every reference
// has been released with Unref, even if the node is removed from the tree in
// the meantime.
//
// Ref may be called from any goroutine, concurrently with tree mutations, but
// only by a caller that already owns a reference or holds the lock that
// serializes the tree (so that the node cannot be freed underneath it).
func (n *Node[K, V]) Ref() *Node[K, V] {
	switch prev := n.refs.acquire(MaxRefs); {
	case prev <= 0:
		panic(errors.AssertionFailedf("ref of freed node %s\n%s", n, n.refs.traces()))
	case prev >= MaxRefs:
		panic(errors.AssertionFailedf("node %s has reached the maximum of %d references\n%s",
			n, errors.Safe(MaxRefs), n.refs.traces()))
	}
	return n
}

// Unref releases a reference to the node. When the last reference is
// released the tree's Free function (if any) is invoked on the node's key and
// value, both are cleared, and Unref returns nil. Otherwise Unref returns the
// node if it is still a member of the tree and nil if it has been removed: in
// that case the node is still allocated but the handle no longer refers to an
// element of the list.
//
// Unref may be called from any goroutine, concurrently with tree mutations.
func (n *Node[K, V]) Unref() *Node[K, V] {
	valid := n.valid.Load()
	switch refs := n.refs.release(); {
	case refs < 0:
		panic(errors.AssertionFailedf("unref of freed node %s\n%s", n, n.refs.traces()))
	case refs == 0:
		n.free()
		return nil
	}
	if !valid {
		return nil
	}
	return n
}

// free releases the node's key and value. It is called exactly once, by the
// goroutine that dropped the last reference.
func (n *Node[K, V]) free() {
	if n.valid.Load() {
		// The tree's own reference was released by someone other than the
		// tree. The node is still linked into the tree, which is now corrupt.
		panic(errors.AssertionFailedf("node %s freed while still a member of its tree", n))
	}
	t := n.tree
	if t.opts.Free != nil {
		t.opts.Free(n.key, n.value)
	}
	var (
		k K
		v V
	)
	n.key, n.value = k, v
	t.metrics.detached.Add(-1)
	t.metrics.freed.Add(1)
}
