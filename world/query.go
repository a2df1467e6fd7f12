// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/broadphase"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// QueryAABB invokes cb for every fixture whose fattened broad-phase proxy
// overlaps aabb, Box2D's b2World::QueryAABB. cb returning false stops the
// query early.
func (w *World) QueryAABB(aabb shape.AABB, cb QueryCallback) {
	w.tree.Query(aabb, func(id broadphase.ProxyID) bool {
		p, ok := w.tree.UserData(id).(*body.Proxy)
		if !ok {
			return true
		}
		return cb(p.Fixture)
	})
}

// RayCast casts the segment p1->p2 against the broad-phase tree, then
// tests each surviving candidate's tight child AABB with the slab method,
// Box2D's b2World::RayCast. No per-shape exact ray intersection exists in
// this module (shape.Shape has no RayCast method, unlike Box2D's
// b2Shape::RayCast), so this reports the point/fraction of the segment's
// entry into the fixture child's axis-aligned bounds rather than its exact
// silhouette — a known simplification, precise for Disk/Edge/Polygon only
// to the extent their AABB approximates their outline.
func (w *World) RayCast(p1, p2 math2d.Vec2, cb RayCastCallback) {
	input := shape.RayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	w.tree.RayCast(input, func(id broadphase.ProxyID, segInput shape.RayCastInput) float64 {
		p, ok := w.tree.UserData(id).(*body.Proxy)
		if !ok {
			return segInput.MaxFraction
		}
		tight := p.Fixture.Shape.ComputeAABB(p.Fixture.Body.Transform, p.ChildIndex)
		out := tight.RayCast(segInput)
		if !out.Hit {
			return segInput.MaxFraction
		}
		point := math2d.Plus(segInput.P1, math2d.Mul(math2d.Minus(segInput.P2, segInput.P1), out.Fraction))
		return cb(p.Fixture, point, out.Normal, out.Fraction)
	})
}
