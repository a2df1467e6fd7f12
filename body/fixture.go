// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package body

import (
	"math"

	"github.com/gazed/rigid2d/broadphase"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// Filter is the collision category/mask/group test, matching Box2D's
// b2Filter: two fixtures sharing the same nonzero group index always
// collide if that index is positive and never collide if it is negative;
// otherwise they collide if each one's category bits are present in the
// other's mask bits.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}

// ShouldCollide applies the category/mask/group rule above.
func (f Filter) ShouldCollide(other Filter) bool {
	if f.GroupIndex == other.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.CategoryBits&other.MaskBits != 0 && f.MaskBits&other.CategoryBits != 0
}

// Proxy is the broad-phase registration of one shape child of a fixture —
// Box2D's b2FixtureProxy. The tree's userData for a leaf is always a
// *Proxy, letting the contact package recover (fixture, child index) from
// a bare ProxyID without the broadphase package knowing fixtures exist.
type Proxy struct {
	Fixture    *Fixture
	ChildIndex int
	ProxyID    broadphase.ProxyID
	AABB       shape.AABB
}

// Fixture binds a Shape to a Body with material properties, a collision
// filter, and one broad-phase proxy per shape child.
type Fixture struct {
	Body *Body

	Shape       shape.Shape
	Friction    float64
	Restitution float64
	Density     float64
	Filter      Filter
	IsSensor    bool

	Proxies []*Proxy

	UserData interface{}
}

// NewFixture returns a fixture with Box2D's usual defaults (friction 0.2,
// restitution 0, the default filter) for the caller to override.
func NewFixture(s shape.Shape, density float64) *Fixture {
	return &Fixture{
		Shape:    s,
		Friction: 0.2,
		Density:  density,
		Filter:   DefaultFilter,
	}
}

// CreateProxies registers one broad-phase proxy per shape child, fattened
// by margin (Box2D's b2_aabbExtension-equivalent caller-supplied slack).
func (f *Fixture) CreateProxies(tree *broadphase.Tree, xf math2d.Transform, margin float64) {
	n := f.Shape.ChildCount()
	f.Proxies = make([]*Proxy, n)
	for i := 0; i < n; i++ {
		aabb := f.Shape.ComputeAABB(xf, i)
		fat := aabb.Extend(margin)
		p := &Proxy{Fixture: f, ChildIndex: i, AABB: aabb}
		p.ProxyID = tree.CreateProxy(fat, p)
		f.Proxies[i] = p
	}
}

// DestroyProxies removes every proxy this fixture registered.
func (f *Fixture) DestroyProxies(tree *broadphase.Tree) {
	for _, p := range f.Proxies {
		tree.DestroyProxy(p.ProxyID)
	}
	f.Proxies = nil
}

// Synchronize updates each child's AABB for the fixture's new pose,
// buffering a move in the tree (and the pair set) only when the child has
// drifted outside its previously fattened AABB. Returns how many of the
// fixture's proxies actually triggered a tree reinsertion, so callers can
// aggregate a per-step broad-phase move count.
func (f *Fixture) Synchronize(tree *broadphase.Tree, pairs *broadphase.PairSet, xf math2d.Transform, displacement math2d.Vec2, margin float64) int {
	moved := 0
	for _, p := range f.Proxies {
		aabb := f.Shape.ComputeAABB(xf, p.ChildIndex)
		p.AABB = aabb
		fat := aabb.Extend(margin)
		if tree.MoveProxy(p.ProxyID, fat, displacement) {
			pairs.BufferMove(p.ProxyID)
			moved++
		}
	}
	return moved
}

// MixFriction is the geometric-mean friction mixing law (Box2D's
// MixFriction): either fixture can drive the result to zero, e.g. ice.
func MixFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// MixRestitution takes the larger of the two (Box2D's MixRestitution): a
// superball bounces no matter what it hits.
func MixRestitution(a, b float64) float64 {
	return math.Max(a, b)
}
