// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ostree/internal/invariants"
)

// Tree is an order-statistic AVL tree. Every node records the sizes of its
// subtrees, which allows Select and Rank to run in O(log n) alongside the
// usual O(log n) Insert, Remove and Lookup.
//
// Tree does no locking. Mutations (Insert, Remove, Destroy) must be
// serialized by the caller, and must not run concurrently with reads (Lookup,
// Select, Rank, Next, Prev, ...). Reads may run concurrently with each other.
// Node.Ref and Node.Unref are the exception: they are safe to call from any
// goroutine at any time.
type Tree[K, V any] struct {
	root      *Node[K, V]
	opts      Options[K, V]
	destroyed bool
	metrics   treeMetrics
}

// New returns an empty tree.
func New[K, V any](opts Options[K, V]) *Tree[K, V] {
	if opts.Compare == nil {
		panic(errors.AssertionFailedf("ostree: Options.Compare is required"))
	}
	return &Tree[K, V]{opts: opts}
}

func (t *Tree[K, V]) checkAlive() {
	if t.destroyed {
		panic(errors.AssertionFailedf("ostree: use of destroyed tree"))
	}
}

// Len returns the number of nodes in the tree.
func (t *Tree[K, V]) Len() int {
	return t.root.size()
}

// Height returns the height of the tree: 0 for an empty tree, 1 for a tree
// with a single node.
func (t *Tree[K, V]) Height() int {
	return int(t.root.getHeight())
}

// Insert adds a node holding key and value to the tree and returns it. A key
// that compares equal to keys already present is placed after all of them.
//
// The returned node carries a single reference, which belongs to the tree and
// is released by Remove or Destroy. Callers that need the node to outlive its
// membership must acquire their own reference with Ref.
func (t *Tree[K, V]) Insert(key K, value V) *Node[K, V] {
	t.checkAlive()
	n := newNode(t, key, value)
	if t.root == nil {
		t.root = n
	} else {
		cur := t.root
		for {
			d := right
			if t.opts.Compare(key, cur.key) < 0 {
				d = left
			}
			cur.counts[d]++
			if cur.children[d] == nil {
				cur.children[d] = n
				n.parent = cur
				break
			}
			cur = cur.children[d]
		}
	}

	// Retrace: walk up recomputing heights and rotating where needed. The
	// subtree counts along the path were already incremented on the way down,
	// so once a subtree's height is unchanged nothing above it needs fixing.
	for p := n.parent; p != nil; {
		oldHeight := p.height
		p.fix()
		p = t.rebalance(p)
		if p.height == oldHeight {
			break
		}
		p = p.parent
	}

	t.metrics.inserts++
	if invariants.Enabled && (t.Len() < 1024 || invariants.Sometimes(1)) {
		t.verifyInvariants()
	}
	return n
}

// Remove removes n from the tree and releases the tree's reference to it. If
// no other references remain, the node is freed. n must be a member of t.
func (t *Tree[K, V]) Remove(n *Node[K, V]) {
	t.checkAlive()
	if n.tree != t {
		panic(errors.AssertionFailedf("ostree: removing node %s that belongs to a different tree", n))
	}
	if !n.valid.Load() {
		panic(errors.AssertionFailedf("ostree: removing node %s which is not in the tree", n))
	}

	var start *Node[K, V]
	l, r := n.children[left], n.children[right]
	if l == nil || r == nil {
		child := l
		if child == nil {
			child = r
		}
		t.replaceChild(n.parent, n, child)
		if child != nil {
			child.parent = n.parent
		}
		start = n.parent
	} else {
		// Take the replacement from the taller subtree, which is the side that
		// can best afford to lose a node. The replacement is the extreme node
		// of that subtree in the direction of n: the in-order predecessor when
		// taken from the left, the successor when taken from the right.
		d := left
		if r.height > l.height {
			d = right
		}
		o := d.opposite()
		repl := n.children[d].extreme(o)
		// repl has no child on side o, at most one on side d.
		if repl.parent == n {
			start = repl
		} else {
			rp := repl.parent
			rc := repl.children[d]
			rp.children[o] = rc
			if rc != nil {
				rc.parent = rp
			}
			repl.children[d] = n.children[d]
			repl.children[d].parent = repl
			start = rp
		}
		repl.children[o] = n.children[o]
		repl.children[o].parent = repl
		repl.parent = n.parent
		t.replaceChild(n.parent, n, repl)
	}

	// Retrace all the way up to the root. Unlike insertion, every ancestor's
	// subtree count changed, so the walk cannot stop early.
	for p := start; p != nil; p = p.parent {
		p.fix()
		p = t.rebalance(p)
	}

	n.detach()
	n.valid.Store(false)
	t.metrics.removes++
	t.metrics.detached.Add(1)
	if invariants.Enabled && (t.Len() < 1024 || invariants.Sometimes(1)) {
		t.verifyInvariants()
	}
	n.Unref()
}

// Destroy releases the tree's reference to every remaining node, children
// before parents. Nodes that are still referenced elsewhere stay allocated
// until those references are released, but are no longer members of any tree.
// The tree must not be used afterwards.
func (t *Tree[K, V]) Destroy() {
	t.checkAlive()
	n := t.root
	t.root = nil
	t.destroyed = true
	// Iterative post-order walk: descend to a leaf, release it, and continue
	// from its parent, which becomes a leaf once all its children are gone.
	for n != nil {
		if c := n.children[left]; c != nil {
			n = c
			continue
		}
		if c := n.children[right]; c != nil {
			n = c
			continue
		}
		p := n.parent
		if p != nil {
			p.children[n.childDir()] = nil
		}
		n.detach()
		n.valid.Store(false)
		t.metrics.detached.Add(1)
		n.Unref()
		n = p
	}
}

// Lookup returns a node whose key compares equal to key, or nil if there is
// none. When several nodes have equal keys, which one is returned is
// unspecified.
func (t *Tree[K, V]) Lookup(key K) *Node[K, V] {
	n := t.root
	for n != nil {
		c := t.opts.Compare(key, n.key)
		if c == 0 {
			return n
		}
		if c < 0 {
			n = n.children[left]
		} else {
			n = n.children[right]
		}
	}
	return nil
}

// Select returns the node at 0-based position i of the in-order sequence, or
// nil if i is out of range.
func (t *Tree[K, V]) Select(i int) *Node[K, V] {
	if i < 0 {
		return nil
	}
	n := t.root
	for n != nil {
		switch lc := n.counts[left]; {
		case i < lc:
			n = n.children[left]
		case i == lc:
			return n
		default:
			i -= lc + 1
			n = n.children[right]
		}
	}
	return nil
}

// SeekGE returns the first node whose key is greater than or equal to key, or
// nil if there is none.
func (t *Tree[K, V]) SeekGE(key K) *Node[K, V] {
	var res *Node[K, V]
	for n := t.root; n != nil; {
		if t.opts.Compare(n.key, key) >= 0 {
			res = n
			n = n.children[left]
		} else {
			n = n.children[right]
		}
	}
	return res
}

// SeekLT returns the last node whose key is less than key, or nil if there is
// none.
func (t *Tree[K, V]) SeekLT(key K) *Node[K, V] {
	var res *Node[K, V]
	for n := t.root; n != nil; {
		if t.opts.Compare(n.key, key) < 0 {
			res = n
			n = n.children[right]
		} else {
			n = n.children[left]
		}
	}
	return res
}

// First returns the first node in the tree, or nil if the tree is empty.
func (t *Tree[K, V]) First() *Node[K, V] {
	if t.root == nil {
		return nil
	}
	return t.root.extreme(left)
}

// Last returns the last node in the tree, or nil if the tree is empty.
func (t *Tree[K, V]) Last() *Node[K, V] {
	if t.root == nil {
		return nil
	}
	return t.root.extreme(right)
}

// All returns an iterator over the tree's nodes in order. The tree must not be
// mutated during iteration.
func (t *Tree[K, V]) All() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		for n := t.First(); n != nil; n = n.Next() {
			if !yield(n) {
				return
			}
		}
	}
}
