// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ostree

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/metamorphic"
	"github.com/cockroachdb/ostree/internal/invariants"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

func newIntTree() *Tree[int, int] {
	return New(OrderedOptions[int, int]())
}

func keys[V any](t *Tree[int, V]) []int {
	var res []int
	for n := range t.All() {
		res = append(res, n.Key())
	}
	return res
}

// verify checks the structural invariants and the rank/select round trip for
// every node.
func verify[K, V any](tt *testing.T, t *Tree[K, V]) {
	tt.Helper()
	require.NoError(tt, t.CheckInvariants())
	i := 0
	for n := range t.All() {
		require.Equal(tt, i, n.Rank())
		require.Same(tt, n, t.Select(i))
		i++
	}
	require.Equal(tt, t.Len(), i)
	require.Nil(tt, t.Select(i))
}

func TestTreeDataDriven(t *testing.T) {
	var tree *Tree[int, int]
	var freed []int
	handles := map[int]*Node[int, int]{}
	reset := func() {
		freed = nil
		clear(handles)
		tree = New(Options[int, int]{
			Compare: func(a, b int) int { return a - b },
			Free:    func(k, _ int) { freed = append(freed, k) },
		})
	}
	reset()

	datadriven.RunTest(t, "testdata/tree", func(t *testing.T, d *datadriven.TestData) string {
		var key int
		d.MaybeScanArgs(t, "key", &key)
		lookup := func() *Node[int, int] {
			n := tree.Lookup(key)
			if n == nil {
				d.Fatalf(t, "key %d not found", key)
			}
			return n
		}

		switch d.Cmd {
		case "reset":
			reset()
			return ""

		case "insert":
			for _, line := range strings.Fields(d.Input) {
				k, err := strconv.Atoi(line)
				require.NoError(t, err)
				tree.Insert(k, k)
			}
			verify(t, tree)
			return tree.String()

		case "remove":
			tree.Remove(lookup())
			verify(t, tree)
			return tree.String()

		case "print":
			var b strings.Builder
			for n := range tree.All() {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				fmt.Fprint(&b, n.Key())
			}
			return b.String()

		case "select":
			var i int
			d.ScanArgs(t, "i", &i)
			return tree.Select(i).String()

		case "lookup":
			return tree.Lookup(key).String()

		case "rank":
			return strconv.Itoa(lookup().Rank())

		case "ref":
			n := lookup().Ref()
			handles[key] = n
			return fmt.Sprintf("refs=%d", n.Refs())

		case "unref":
			n, ok := handles[key]
			if !ok {
				d.Fatalf(t, "no handle for key %d", key)
			}
			return fmt.Sprintf("%s refs=%d", n.Unref(), n.Refs())

		case "freed":
			return fmt.Sprint(freed)

		case "metrics":
			m := tree.Metrics()
			return fmt.Sprintf("count=%d height=%d inserts=%d removes=%d rotations=%d",
				m.Count, m.Height, m.Inserts, m.Removes, m.Rotations)

		case "destroy":
			tree.Destroy()
			return fmt.Sprint(freed)

		default:
			d.Fatalf(t, "unknown command %q", d.Cmd)
			return ""
		}
	})
}

func TestTreeSelectRank(t *testing.T) {
	tree := newIntTree()
	nodes := map[int]*Node[int, int]{}
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		nodes[k] = tree.Insert(k, k*10)
	}
	verify(t, tree)
	require.Equal(t, []int{1, 3, 4, 5, 7, 8, 9}, keys(tree))
	require.Equal(t, 1, tree.Select(0).Key())
	require.Equal(t, 9, tree.Select(6).Key())
	require.Nil(t, tree.Select(7))
	require.Nil(t, tree.Select(-1))
	// 7 is preceded by 1, 3, 4 and 5.
	require.Equal(t, 4, nodes[7].Rank())
	require.Same(t, nodes[7], tree.Select(nodes[7].Rank()))
	require.Equal(t, 70, nodes[7].Value())
	require.Equal(t, 7, tree.Len())
	require.Equal(t, 3, tree.Height())
}

func TestTreeRemoveEvens(t *testing.T) {
	tree := newIntTree()
	nodes := make([]*Node[int, int], 100)
	for i := range nodes {
		nodes[i] = tree.Insert(i, i)
	}
	verify(t, tree)
	for i := 0; i < len(nodes); i += 2 {
		tree.Remove(nodes[i])
		require.NoError(t, tree.CheckInvariants())
	}
	verify(t, tree)

	var odds []int
	for i := 1; i < 100; i += 2 {
		odds = append(odds, i)
	}
	require.Equal(t, odds, keys(tree))
	bound := int(math.Ceil(1.44 * math.Log2(51)))
	require.LessOrEqual(t, tree.Height(), bound)
}

func TestTreeDuplicates(t *testing.T) {
	tree := newIntTree()
	var nodes []*Node[int, int]
	for i := 0; i < 3; i++ {
		nodes = append(nodes, tree.Insert(2, i))
	}
	verify(t, tree)
	require.Equal(t, 3, tree.Len())
	require.NotSame(t, nodes[0], nodes[1])
	require.NotSame(t, nodes[1], nodes[2])

	n := tree.Lookup(2)
	require.NotNil(t, n)
	require.Equal(t, 2, n.Key())

	// Equal keys keep their insertion order.
	var values []int
	for n := range tree.All() {
		values = append(values, n.Value())
	}
	require.Equal(t, []int{0, 1, 2}, values)

	tree.Remove(nodes[0])
	tree.Remove(nodes[2])
	verify(t, tree)
	n = tree.Lookup(2)
	require.Same(t, nodes[1], n)
	require.Nil(t, tree.Lookup(3))
}

func TestTreeRoundTrip(t *testing.T) {
	const n = 500
	rng := rand.New(rand.NewSource(1))
	freed := map[int]int{}
	tree := New(Options[int, string]{
		Compare: func(a, b int) int { return a - b },
		Free: func(k int, v string) {
			require.Equal(t, strconv.Itoa(k), v)
			freed[k]++
		},
	})
	nodes := make([]*Node[int, string], n)
	for i, k := range rng.Perm(n) {
		nodes[i] = tree.Insert(k, strconv.Itoa(k))
	}
	verify(t, tree)
	rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	for i, nd := range nodes {
		k := nd.Key()
		tree.Remove(nd)
		require.Equal(t, 1, freed[k])
		require.False(t, nd.Valid())
		require.Equal(t, n-i-1, tree.Len())
		if i%50 == 0 {
			verify(t, tree)
		}
	}
	require.Nil(t, tree.root)
	require.Equal(t, 0, tree.Len())
	require.Equal(t, 0, tree.Height())
	require.Len(t, freed, n)

	m := tree.Metrics()
	require.Equal(t, uint64(n), m.Freed)
	require.Equal(t, int64(0), m.Detached)
}

func TestTreeRefKeepsRemovedNode(t *testing.T) {
	var freed []string
	tree := New(Options[string, []byte]{
		Compare: strings.Compare,
		Free:    func(k string, _ []byte) { freed = append(freed, k) },
	})
	tree.Insert("a.png", []byte("a"))
	b := tree.Insert("b.png", []byte("b"))
	tree.Insert("c.png", []byte("c"))

	h := b.Ref()
	require.Equal(t, 2, h.Refs())
	tree.Remove(b)
	require.False(t, h.Valid())
	require.Empty(t, freed)
	require.Equal(t, int64(1), tree.Metrics().Detached)
	// The payload is still there.
	require.Equal(t, []byte("b"), h.Value())
	require.Equal(t, "b.png", h.Key())
	require.Nil(t, h.Next())
	require.Nil(t, h.Prev())

	require.Nil(t, h.Unref())
	require.Equal(t, []string{"b.png"}, freed)
	require.Nil(t, h.Value())
	require.Equal(t, int64(0), tree.Metrics().Detached)

	// A reference to a member reports the node on release.
	a := tree.Lookup("a.png").Ref()
	require.Same(t, a, a.Unref())
	require.Equal(t, []string{"a.png", "c.png"}, keysOf(tree))
}

func keysOf[K, V any](t *Tree[K, V]) []K {
	var res []K
	for n := range t.All() {
		res = append(res, n.Key())
	}
	return res
}

func TestTreeRefLimit(t *testing.T) {
	tree := newIntTree()
	n := tree.Insert(1, 1)
	for i := 1; i < MaxRefs; i++ {
		n.Ref()
	}
	require.Equal(t, MaxRefs, n.Refs())
	require.Panics(t, func() { n.Ref() })
	require.Equal(t, MaxRefs, n.Refs())
	for i := 1; i < MaxRefs; i++ {
		require.Same(t, n, n.Unref())
	}
	require.Equal(t, 1, n.Refs())
}

func TestTreeMisuse(t *testing.T) {
	tree := newIntTree()
	a := tree.Insert(1, 1)
	b := tree.Insert(2, 2)

	other := newIntTree()
	c := other.Insert(3, 3)
	require.Panics(t, func() { tree.Remove(c) })

	h := a.Ref()
	tree.Remove(a)
	require.Panics(t, func() { tree.Remove(a) })
	require.Panics(t, func() { a.Rank() })
	require.Nil(t, h.Unref())
	require.Panics(t, func() { h.Ref() })
	require.Panics(t, func() { h.Unref() })

	// Releasing the tree's own reference frees a node that is still linked.
	require.Panics(t, func() { b.Unref() })

	require.Panics(t, func() { New(Options[int, int]{}) })

	other.Destroy()
	require.Panics(t, func() { other.Insert(4, 4) })
	require.Panics(t, func() { other.Destroy() })
}

func TestTreeDestroy(t *testing.T) {
	var freed []int
	tree := New(Options[int, int]{
		Compare: func(a, b int) int { return a - b },
		Free:    func(k, _ int) { freed = append(freed, k) },
	})
	nodes := map[int]*Node[int, int]{}
	for i := 0; i < 64; i++ {
		nodes[i] = tree.Insert(i, i)
	}
	// Record the parent of every node before the tree is torn down.
	parents := map[int]int{}
	for n := range tree.All() {
		if n.parent != nil {
			parents[n.Key()] = n.parent.Key()
		}
	}
	held := nodes[10].Ref()

	tree.Destroy()
	require.Len(t, freed, 63)
	require.NotContains(t, freed, 10)
	pos := map[int]int{}
	for i, k := range freed {
		pos[k] = i
	}
	for child, parent := range parents {
		if child == 10 || parent == 10 {
			continue
		}
		require.Less(t, pos[child], pos[parent], "child %d released after parent %d", child, parent)
	}
	for _, n := range nodes {
		require.False(t, n.Valid())
	}
	require.Equal(t, 10, held.Key())
	require.Nil(t, held.Unref())
	require.Len(t, freed, 64)
}

func TestTreeNavigation(t *testing.T) {
	tree := newIntTree()
	require.Nil(t, tree.First())
	require.Nil(t, tree.Last())
	require.Nil(t, tree.SeekGE(0))
	require.Nil(t, tree.SeekLT(0))
	require.Equal(t, ";", tree.String())

	for i := 0; i < 20; i++ {
		tree.Insert(i*10, i)
	}
	require.Equal(t, 0, tree.First().Key())
	require.Equal(t, 190, tree.Last().Key())
	require.Nil(t, tree.First().Prev())
	require.Nil(t, tree.Last().Next())

	require.Equal(t, 50, tree.SeekGE(45).Key())
	require.Equal(t, 50, tree.SeekGE(50).Key())
	require.Nil(t, tree.SeekGE(191))
	require.Equal(t, 40, tree.SeekLT(45).Key())
	require.Equal(t, 40, tree.SeekLT(50).Key())
	require.Nil(t, tree.SeekLT(0))

	var fwd, bwd []int
	for n := tree.First(); n != nil; n = n.Next() {
		fwd = append(fwd, n.Key())
	}
	for n := tree.Last(); n != nil; n = n.Prev() {
		bwd = append(bwd, n.Key())
	}
	slices.Reverse(bwd)
	require.Equal(t, fwd, bwd)
	require.Equal(t, keys(tree), fwd)

	// Early termination of All.
	var first3 []int
	for n := range tree.All() {
		first3 = append(first3, n.Key())
		if len(first3) == 3 {
			break
		}
	}
	require.Equal(t, []int{0, 10, 20}, first3)
}

func TestTreeMetricsString(t *testing.T) {
	tree := newIntTree()
	for i := 1; i <= 3; i++ {
		tree.Insert(i, i)
	}
	m := tree.Metrics()
	require.Equal(t, uint64(1), m.Rotations)
	require.Equal(t, 3, m.Count)
	require.Equal(t, 2, m.Height)
	s := m.String()
	require.Contains(t, s, "height: 2")
	require.Contains(t, s, "detached: 0")
}

type modelEntry struct {
	key, id int
}

// TestTreeRandomized runs a random mix of operations against the tree and a
// sorted slice, checking after every operation that both agree and that the
// tree's invariants hold.
func TestTreeRandomized(t *testing.T) {
	for _, seed := range []int64{0, 1, 2, 3} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			freed := map[int]bool{}
			tree := New(Options[int, int]{
				Compare: func(a, b int) int { return a - b },
				Free: func(_, id int) {
					require.False(t, freed[id], "id %d freed twice", id)
					freed[id] = true
				},
			})
			var model []modelEntry
			var held []*Node[int, int]
			removed := map[int]bool{}
			nextID := 0

			ops := metamorphic.Weighted[func()]{
				{Weight: 10, Item: func() {
					// A small key space produces plenty of duplicates.
					k := rng.Intn(64)
					tree.Insert(k, nextID)
					i := sort.Search(len(model), func(i int) bool { return model[i].key > k })
					model = slices.Insert(model, i, modelEntry{key: k, id: nextID})
					nextID++
				}},
				{Weight: 6, Item: func() {
					if len(model) == 0 {
						return
					}
					i := rng.Intn(len(model))
					n := tree.Select(i)
					require.Equal(t, model[i].id, n.Value())
					tree.Remove(n)
					removed[model[i].id] = true
					model = slices.Delete(model, i, i+1)
				}},
				{Weight: 3, Item: func() {
					if len(model) == 0 {
						return
					}
					held = append(held, tree.Select(rng.Intn(len(model))).Ref())
				}},
				{Weight: 3, Item: func() {
					if len(held) == 0 {
						return
					}
					i := rng.Intn(len(held))
					h := held[i]
					id := h.Value()
					held = slices.Delete(held, i, i+1)
					res := h.Unref()
					if removed[id] {
						require.Nil(t, res)
					} else {
						require.Same(t, h, res)
					}
				}},
				{Weight: 2, Item: func() {
					if len(model) == 0 {
						return
					}
					k := model[rng.Intn(len(model))].key
					n := tree.Lookup(k)
					require.NotNil(t, n)
					require.Equal(t, k, n.Key())
				}},
			}.RandomDeck(rng)

			n := 2000
			if invariants.RaceEnabled {
				n = 500
			}
			for i := 0; i < n; i++ {
				ops()()
				require.NoError(t, tree.CheckInvariants())
				var got []int
				for n := range tree.All() {
					got = append(got, n.Value())
				}
				want := make([]int, 0, len(model))
				for _, e := range model {
					want = append(want, e.id)
				}
				if !slices.Equal(want, got) {
					t.Fatalf("after op %d:\n%s", i, strings.Join(pretty.Diff(want, got), "\n"))
				}
			}
			verify(t, tree)

			for _, h := range held {
				h.Unref()
			}
			tree.Destroy()
			require.Len(t, freed, nextID)
		})
	}
}
