// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// dir selects one of a node's two children. Operations that are mirror images
// of each other (rotations, successor/predecessor) are written once in terms
// of a dir and its opposite.
type dir int8

const (
	left  dir = 0
	right dir = 1
)

func (d dir) opposite() dir { return 1 - d }

func (d dir) String() string {
	if d == left {
		return "left"
	}
	return "right"
}

// Node is an element of a Tree. A *Node doubles as a handle: it may be held
// across tree mutations (for example by a goroutine decoding the image the
// node describes) as long as the holder owns a reference acquired with Ref.
//
// The tree owns its nodes through the children edges; parent is a
// back-reference used only for retracing and traversal.
type Node[K, V any] struct {
	key   K
	value V

	// tree is the tree the node was inserted into. It never changes.
	tree *Tree[K, V]

	parent   *Node[K, V]
	children [2]*Node[K, V]
	// counts holds the number of nodes in the left and right subtrees.
	counts [2]int
	// height is 1 + the height of the taller child. A nil child has height 0.
	height int32

	// refs and valid are the only fields that may be accessed concurrently
	// with tree mutations. refs counts outstanding references, including the
	// tree's own reference while the node is a member. valid is true while the
	// node is a member of the tree.
	refs  refcnt
	valid atomic.Bool
}

func newNode[K, V any](t *Tree[K, V], key K, value V) *Node[K, V] {
	n := &Node[K, V]{
		key:    key,
		value:  value,
		tree:   t,
		height: 1,
	}
	n.refs.init(1)
	n.valid.Store(true)
	return n
}

// Key returns the node's key. The key is cleared once the node is freed.
func (n *Node[K, V]) Key() K { return n.key }

// Value returns the node's value. The value is cleared once the node is freed.
func (n *Node[K, V]) Value() V { return n.value }

// Valid returns true if the node is still a member of its tree.
func (n *Node[K, V]) Valid() bool { return n.valid.Load() }

// Refs returns the number of outstanding references to the node, including
// the tree's own reference while the node is a member.
func (n *Node[K, V]) Refs() int { return int(n.refs.refs()) }

func (n *Node[K, V]) size() int {
	if n == nil {
		return 0
	}
	return 1 + n.counts[left] + n.counts[right]
}

func (n *Node[K, V]) getHeight() int32 {
	if n == nil {
		return 0
	}
	return n.height
}

// balance returns height(right) - height(left).
func (n *Node[K, V]) balance() int32 {
	return n.children[right].getHeight() - n.children[left].getHeight()
}

// childDir returns which child of its parent n is. n must have a parent.
func (n *Node[K, V]) childDir() dir {
	if n.parent.children[left] == n {
		return left
	}
	return right
}

// fix recomputes the node's height and subtree counts from its children.
func (n *Node[K, V]) fix() {
	l, r := n.children[left], n.children[right]
	n.counts[left], n.counts[right] = l.size(), r.size()
	n.height = 1 + max(l.getHeight(), r.getHeight())
}

// extreme returns the last node reached by following d edges from n.
func (n *Node[K, V]) extreme(d dir) *Node[K, V] {
	for n.children[d] != nil {
		n = n.children[d]
	}
	return n
}

// step returns the in-order neighbour of n in direction d: the successor for
// right and the predecessor for left.
func (n *Node[K, V]) step(d dir) *Node[K, V] {
	if c := n.children[d]; c != nil {
		return c.extreme(d.opposite())
	}
	for n.parent != nil {
		if n.parent.children[d.opposite()] == n {
			return n.parent
		}
		n = n.parent
	}
	return nil
}

// Next returns the node following n in in-order traversal, or nil if n is
// the last node. A node that is no longer a member of its tree has no
// neighbours.
func (n *Node[K, V]) Next() *Node[K, V] {
	return n.step(right)
}

// Prev returns the node preceding n in in-order traversal, or nil if n is the
// first node.
func (n *Node[K, V]) Prev() *Node[K, V] {
	return n.step(left)
}

// Rank returns the 0-based position of n within the in-order sequence of its
// tree. It panics if n is not a member of a tree.
//
// For every member n, n.tree.Select(n.Rank()) == n.
func (n *Node[K, V]) Rank() int {
	if !n.valid.Load() {
		panic(errors.AssertionFailedf("rank of node %s which is not in the tree", n))
	}
	rank := n.counts[left]
	for ; n.parent != nil; n = n.parent {
		if n.parent.children[right] == n {
			rank += n.parent.counts[left] + 1
		}
	}
	return rank
}

// detach clears the node's structural links once it has left the tree.
func (n *Node[K, V]) detach() {
	n.parent = nil
	n.children = [2]*Node[K, V]{}
	n.counts = [2]int{}
	n.height = 0
}
