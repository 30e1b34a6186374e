// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package ostree implements an order-statistic AVL tree whose nodes can be
// held by reference past their removal from the tree.
//
// Every node records the sizes of its left and right subtrees. Besides the
// usual O(log n) Insert, Remove and Lookup, this allows Select (the i'th node
// in order) and Rank (the position of a node) in O(log n).
//
// # Node lifetime
//
// A node carries a reference count and a membership flag, tracked
// independently. Insert creates a node with a single reference owned by the
// tree. Remove (and Destroy) clears the membership flag and releases that
// reference. Code that needs a node to outlive its membership, such as a
// goroutine decoding the file a node describes, acquires its own reference
// with Node.Ref and releases it with Node.Unref. The node is freed, and the
// tree's Free function called on its key and value, when the last reference
// is released. Unref reports whether the node is still a member:
//
//	n := list.Select(i).Ref() // under the list's lock
//	go func() {
//		load(n.Value())
//		if n.Unref() == nil {
//			// n was removed (and possibly freed) while loading.
//		}
//	}()
//
// # Concurrency
//
// The tree does no locking. Mutations must be serialized by the caller and
// must not overlap with reads. Ref and Unref may be called from any goroutine
// at any time.
//
// # Misuse
//
// Contract violations, such as removing a node twice, exceeding MaxRefs
// references to a node or releasing a freed node, panic with an assertion
// failure rather than corrupt the tree.
package ostree
