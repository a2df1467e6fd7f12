// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package broadphase

import "sort"

// Pair is a candidate overlap between two proxies, reported in a
// deterministic (A < B) order so that duplicate pairs merge naturally.
type Pair struct {
	ProxyA, ProxyB ProxyID
}

// moveBuffer accumulates the proxies that moved since the last
// UpdatePairs call, mirroring Box2D's b2BroadPhase move-buffer pattern:
// rather than re-querying the whole tree, only proxies that actually
// changed AABB get queried against their neighbors.
type moveBuffer struct {
	proxies []ProxyID
}

func (m *moveBuffer) push(id ProxyID) {
	for _, p := range m.proxies {
		if p == id {
			return
		}
	}
	m.proxies = append(m.proxies, id)
}

func (m *moveBuffer) clear() {
	m.proxies = m.proxies[:0]
}

// PairSet turns a Tree plus a record of recently moved proxies into a
// deduplicated, sorted list of candidate collision pairs.
type PairSet struct {
	tree *Tree
	move moveBuffer
}

// NewPairSet returns a pair set driven by tree.
func NewPairSet(tree *Tree) *PairSet {
	return &PairSet{tree: tree}
}

// BufferMove records that proxy's AABB changed this step and should be
// re-queried the next time UpdatePairs runs.
func (ps *PairSet) BufferMove(id ProxyID) {
	ps.move.push(id)
}

// UpdatePairs queries every moved proxy against the tree, returning the
// deduplicated set of (A, B) pairs with A < B. Self-pairs are skipped.
// The move buffer is cleared on return.
func (ps *PairSet) UpdatePairs() []Pair {
	seen := map[Pair]bool{}
	var pairs []Pair
	for _, queryID := range ps.move.proxies {
		fat := ps.tree.FatAABB(queryID)
		ps.tree.Query(fat, func(other ProxyID) bool {
			if other == queryID {
				return true
			}
			a, b := queryID, other
			if a > b {
				a, b = b, a
			}
			pair := Pair{a, b}
			if !seen[pair] {
				seen[pair] = true
				pairs = append(pairs, pair)
			}
			return true
		})
	}
	ps.move.clear()
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ProxyA != pairs[j].ProxyA {
			return pairs[i].ProxyA < pairs[j].ProxyA
		}
		return pairs[i].ProxyB < pairs[j].ProxyB
	})
	return pairs
}
