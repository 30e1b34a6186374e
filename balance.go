// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

// replaceChild makes newChild take oldChild's place below parent, or at the
// root if parent is nil. It does not touch newChild.parent.
func (t *Tree[K, V]) replaceChild(parent, oldChild, newChild *Node[K, V]) {
	switch {
	case parent == nil:
		t.root = newChild
	case parent.children[left] == oldChild:
		parent.children[left] = newChild
	default:
		parent.children[right] = newChild
	}
}

// rotate rotates the subtree rooted at x in direction d, raising x's child on
// the opposite side, and returns the new subtree root. For d == right:
//
//	      x              y
//	     / \            / \
//	    y   c    ->    a   x
//	   / \                / \
//	  a   b              b   c
//
// Heights and subtree counts of x and y are recomputed; those of x's former
// ancestors are unchanged because the subtree keeps its size.
func (t *Tree[K, V]) rotate(x *Node[K, V], d dir) *Node[K, V] {
	o := d.opposite()
	y := x.children[o]
	b := y.children[d]
	p := x.parent

	x.children[o] = b
	if b != nil {
		b.parent = x
	}
	x.parent = y
	x.fix()

	y.children[d] = x
	y.parent = p
	y.fix()

	t.replaceChild(p, x, y)
	t.metrics.rotations++
	return y
}

// rebalance restores the AVL balance at n, whose children must be balanced
// and whose height and counts must be current. It returns the node that now
// roots n's former subtree, which is n itself if no rotation was needed.
func (t *Tree[K, V]) rebalance(n *Node[K, V]) *Node[K, V] {
	var heavy dir
	switch b := n.balance(); {
	case b < -1:
		heavy = left
	case b > 1:
		heavy = right
	default:
		return n
	}
	o := heavy.opposite()
	c := n.children[heavy]
	if c.children[o].getHeight() > c.children[heavy].getHeight() {
		// Inner grandchild is taller (left-right or right-left): rotate it up
		// into the child's position first.
		t.rotate(c, heavy)
	}
	return t.rotate(n, o)
}
