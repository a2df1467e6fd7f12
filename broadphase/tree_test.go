// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package broadphase

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func box(x, y, hx, hy float64) shape.AABB {
	return shape.AABB{
		LowerBound: math2d.Vec2{X: x - hx, Y: y - hy},
		UpperBound: math2d.Vec2{X: x + hx, Y: y + hy},
	}
}

func TestTreeQueryFindsOverlap(t *testing.T) {
	tree := NewTree()
	a := tree.CreateProxy(box(0, 0, 1, 1), "a")
	b := tree.CreateProxy(box(10, 10, 1, 1), "b")

	var hits []ProxyID
	tree.Query(box(0, 0, 2, 2), func(id ProxyID) bool {
		hits = append(hits, id)
		return true
	})
	if len(hits) != 1 || hits[0] != a {
		t.Fatalf("expected only proxy a in query, got %v", hits)
	}
	_ = b
}

func TestTreeDestroyProxy(t *testing.T) {
	tree := NewTree()
	a := tree.CreateProxy(box(0, 0, 1, 1), "a")
	tree.DestroyProxy(a)
	var hits []ProxyID
	tree.Query(box(0, 0, 5, 5), func(id ProxyID) bool {
		hits = append(hits, id)
		return true
	})
	if len(hits) != 0 {
		t.Fatalf("expected no proxies after destroy, got %v", hits)
	}
}

func TestTreeManyInsertsStayBalanced(t *testing.T) {
	tree := NewTree()
	for i := 0; i < 200; i++ {
		x := float64(i)
		tree.CreateProxy(box(x, 0, 0.4, 0.4), i)
	}
	// A reasonably balanced tree over 200 leaves should not be a straight
	// line; height should stay within a small constant factor of log2(200).
	if tree.Height() > 30 {
		t.Errorf("tree height %d looks unbalanced for 200 leaves", tree.Height())
	}
}

func TestPairSetDedup(t *testing.T) {
	tree := NewTree()
	a := tree.CreateProxy(box(0, 0, 1, 1), "a")
	b := tree.CreateProxy(box(0.5, 0, 1, 1), "b")
	c := tree.CreateProxy(box(100, 100, 1, 1), "c")

	ps := NewPairSet(tree)
	ps.BufferMove(a)
	ps.BufferMove(b)
	ps.BufferMove(c)

	pairs := ps.UpdatePairs()
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one pair, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].ProxyA != a || pairs[0].ProxyB != b {
		t.Errorf("unexpected pair %+v", pairs[0])
	}
}

func TestRayCastHitsLeaf(t *testing.T) {
	tree := NewTree()
	tree.CreateProxy(box(5, 0, 1, 1), "target")

	var hit bool
	tree.RayCast(shape.RayCastInput{
		P1: math2d.Vec2{X: -10, Y: 0}, P2: math2d.Vec2{X: 10, Y: 0}, MaxFraction: 1,
	}, func(id ProxyID, in shape.RayCastInput) float64 {
		hit = true
		return 0
	})
	if !hit {
		t.Error("expected ray to hit the target proxy")
	}
}
