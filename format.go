// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/redact"
)

// String implements fmt.Stringer.
func (n *Node[K, V]) String() string {
	return redact.StringWithoutMarkers(n)
}

// SafeFormat implements redact.SafeFormatter. Keys are user data and are
// redactable.
func (n *Node[K, V]) SafeFormat(w redact.SafePrinter, _ rune) {
	if n == nil {
		w.SafeString("<nil>")
		return
	}
	w.Printf("%v", n.key)
	if !n.valid.Load() {
		w.SafeString(" (removed)")
	}
}

// String returns a string description of the tree. The format is similar to
// the https://en.wikipedia.org/wiki/Newick_format: every subtree is wrapped in
// parentheses and followed (left) or preceded (right) by its parent's key. A
// tree holding 1..5 inserted in order prints as (1)2((3)4(5)).
func (t *Tree[K, V]) String() string {
	if t.root == nil {
		return ";"
	}
	var b strings.Builder
	t.root.writeString(&b)
	return b.String()
}

func (n *Node[K, V]) writeString(b *strings.Builder) {
	if l := n.children[left]; l != nil {
		b.WriteString("(")
		l.writeString(b)
		b.WriteString(")")
	}
	fmt.Fprint(b, n.key)
	if r := n.children[right]; r != nil {
		b.WriteString("(")
		r.writeString(b)
		b.WriteString(")")
	}
}
