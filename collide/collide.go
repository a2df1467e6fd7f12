// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// childShape extracts child i of s as the concrete shape the manifold
// functions below know how to collide; a Chain's children are edges, every
// other shape type has exactly one child and returns itself.
func childShape(s shape.Shape, child int) shape.Shape {
	if c, ok := s.(*shape.ChainShape); ok {
		e := c.ChildEdge(child)
		return &e
	}
	return s
}

// flip swaps a manifold's A/B roles: FaceA becomes FaceB (and vice versa)
// and every ContactFeature has its A and B sides exchanged. Circles
// manifolds are symmetric in type but still need their single point's
// local frame and feature swapped.
func flip(m Manifold) Manifold {
	switch m.Type {
	case FaceA:
		m.Type = FaceB
	case FaceB:
		m.Type = FaceA
	case Circles:
		m.LocalPoint, m.Points[0].LocalPoint = m.Points[0].LocalPoint, m.LocalPoint
	}
	for i := 0; i < m.PointCount; i++ {
		f := m.Points[i].Feature
		m.Points[i].Feature = ContactFeature{TypeA: f.TypeB, IndexA: f.IndexB, TypeB: f.TypeA, IndexB: f.IndexA}
	}
	return m
}

// Collide dispatches to the manifold function matching the concrete types
// of childA of shapeA and childB of shapeB, generalizing Box2D's
// b2ContactRegister table of per-type-pair collision callbacks: shape pairs
// without a direct implementation are collided with A and B swapped, then
// the result is flipped back.
func Collide(shapeA shape.Shape, childA int, xfA math2d.Transform, shapeB shape.Shape, childB int, xfB math2d.Transform) Manifold {
	a := childShape(shapeA, childA)
	b := childShape(shapeB, childB)

	switch sa := a.(type) {
	case *shape.DiskShape:
		switch sb := b.(type) {
		case *shape.DiskShape:
			return CollideCircles(sa, xfA, sb, xfB)
		case *shape.PolygonShape:
			return flip(PolygonCircle(sb, xfB, sa, xfA))
		case *shape.EdgeShape:
			return flip(EdgeCircle(sb, xfB, sa, xfA))
		}
	case *shape.PolygonShape:
		switch sb := b.(type) {
		case *shape.DiskShape:
			return PolygonCircle(sa, xfA, sb, xfB)
		case *shape.PolygonShape:
			return Polygons(sa, xfA, sb, xfB)
		case *shape.EdgeShape:
			return flip(EdgePolygon(sb, xfB, sa, xfA))
		}
	case *shape.EdgeShape:
		switch sb := b.(type) {
		case *shape.DiskShape:
			return EdgeCircle(sa, xfA, sb, xfB)
		case *shape.PolygonShape:
			return EdgePolygon(sa, xfA, sb, xfB)
		case *shape.EdgeShape:
			// two static boundary edges never need a manifold between them
			return Manifold{}
		}
	}
	return Manifold{}
}
