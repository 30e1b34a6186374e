// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import "github.com/cockroachdb/errors"

// CheckInvariants walks the whole tree and returns an error describing the
// first structural violation found: out-of-order keys, an unbalanced node, a
// stale height or subtree count, a broken parent link, or a node that is
// marked removed or belongs to another tree. It runs in O(n).
func (t *Tree[K, V]) CheckInvariants() error {
	if t.root == nil {
		return nil
	}
	if t.root.parent != nil {
		return errors.AssertionFailedf("root %s has parent %s", t.root, t.root.parent)
	}

	// Iterative pre-order walk. Each frame carries the in-order neighbours
	// that bound the keys of its subtree.
	type frame struct {
		n      *Node[K, V]
		lo, hi *Node[K, V]
	}
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.n

		if n.tree != t {
			return errors.AssertionFailedf("node %s belongs to a different tree", n)
		}
		if !n.valid.Load() {
			return errors.AssertionFailedf("node %s is reachable but marked removed", n)
		}
		if refs := n.refs.refs(); refs <= 0 {
			return errors.AssertionFailedf("node %s is reachable with %d references", n, errors.Safe(refs))
		}
		// Equal keys may appear on either side after rotations, so bounds are
		// inclusive.
		if f.lo != nil && t.opts.Compare(f.lo.key, n.key) > 0 {
			return errors.AssertionFailedf("node %s sorts before its left bound %s", n, f.lo)
		}
		if f.hi != nil && t.opts.Compare(n.key, f.hi.key) > 0 {
			return errors.AssertionFailedf("node %s sorts after its right bound %s", n, f.hi)
		}
		for _, d := range [2]dir{left, right} {
			if c := n.children[d]; c != nil && c.parent != n {
				return errors.AssertionFailedf("%s child %s of %s has parent %s", d, c, n, c.parent)
			}
		}
		if b := n.balance(); b < -1 || b > 1 {
			return errors.AssertionFailedf("node %s has balance factor %d", n, errors.Safe(b))
		}
		if l, r := n.children[left], n.children[right]; n.height != 1+max(l.getHeight(), r.getHeight()) {
			return errors.AssertionFailedf("node %s has height %d, children have heights %d and %d",
				n, errors.Safe(n.height), errors.Safe(l.getHeight()), errors.Safe(r.getHeight()))
		}

		if l := n.children[left]; l != nil {
			stack = append(stack, frame{n: l, lo: f.lo, hi: n})
		}
		if r := n.children[right]; r != nil {
			stack = append(stack, frame{n: r, lo: n, hi: f.hi})
		}
	}

	// Subtree counts are verified bottom-up. The recursion depth is bounded
	// by the height, which the walk above has shown to be balanced.
	var check func(n *Node[K, V]) (int, error)
	check = func(n *Node[K, V]) (int, error) {
		if n == nil {
			return 0, nil
		}
		l, err := check(n.children[left])
		if err != nil {
			return 0, err
		}
		r, err := check(n.children[right])
		if err != nil {
			return 0, err
		}
		if n.counts[left] != l || n.counts[right] != r {
			return 0, errors.AssertionFailedf("node %s has counts (%d,%d), subtrees have sizes (%d,%d)",
				n, errors.Safe(n.counts[left]), errors.Safe(n.counts[right]), errors.Safe(l), errors.Safe(r))
		}
		return l + r + 1, nil
	}
	_, err := check(t.root)
	return err
}

// verifyInvariants panics if CheckInvariants finds a violation. It is only
// called in invariant builds.
func (t *Tree[K, V]) verifyInvariants() {
	if err := t.CheckInvariants(); err != nil {
		panic(err)
	}
}
