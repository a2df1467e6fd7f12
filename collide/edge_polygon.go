// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// edgePolygonRelativeTolerance and edgePolygonAbsoluteSlopFraction are
// named after the axis-choice hysteresis constants of Box2D's
// b2EPCollider (a relative factor and a divisor of linearSlop). EdgePolygon
// below does not read them: it picks the reference face through Polygons,
// which applies no edge-versus-polygon hysteresis.
const (
	edgePolygonRelativeTolerance = 0.98
	edgePolygonAbsoluteSlopFraction = 5
)

// edgeAsPolygon treats a (possibly ghosted) edge as a degenerate,
// two-sided polygon so the existing polygon-polygon clipper can run
// unmodified; the two face normals point in opposite directions, one
// per "side" of the segment.
func edgeAsPolygon(e *shape.EdgeShape) *shape.PolygonShape {
	n := math2d.RPerp(math2d.Minus(e.V2, e.V1))
	unit, _ := n.Unit()
	return &shape.PolygonShape{
		Vertices: []math2d.Vec2{e.V1, e.V2},
		Normals:  []math2d.Vec2{unit, math2d.Mul(unit, -1)},
		Centroid: math2d.Mul(math2d.Plus(e.V1, e.V2), 0.5),
		Radius:   e.Radius,
	}
}

// isFrontSide reports whether point lies on the side of edge e that its
// two-vertex-polygon face-0 normal points toward.
func isFrontSide(e *shape.EdgeShape, point math2d.Vec2) bool {
	n := math2d.RPerp(math2d.Minus(e.V2, e.V1))
	return math2d.Dot(n, math2d.Minus(point, e.V1)) >= 0
}

// EdgePolygon computes the manifold between an edge (with optional ghost
// vertices) and a convex polygon. The edge is collided as a zero-area
// polygon via the shared clipper; then, when the polygon's centroid lies
// behind the edge's face-0 normal, each present ghost vertex may reject
// the whole manifold if the centroid falls in that neighboring edge's
// region, so a box at an edge's shared vertex is not reported against
// both edges at once. No normal cone is derived from the neighboring
// edges, and individual manifold points are never filtered.
func EdgePolygon(edge *shape.EdgeShape, xfA math2d.Transform, poly *shape.PolygonShape, xfB math2d.Transform) Manifold {
	pseudo := edgeAsPolygon(edge)
	m := Polygons(pseudo, xfA, poly, xfB)
	if m.PointCount == 0 {
		return m
	}

	centroidWorld := math2d.MulT2(xfB, poly.Centroid)
	centroidLocal := math2d.MulTT2(xfA, centroidWorld)
	front := isFrontSide(edge, centroidLocal)

	if edge.HasVertex0 && !front {
		a1, b1 := edge.V0, edge.V1
		e1 := math2d.Minus(b1, a1)
		u1 := math2d.Dot(e1, math2d.Minus(b1, centroidLocal))
		if u1 > 0 {
			return Manifold{}
		}
	}
	if edge.HasVertex3 && !front {
		a2, b2 := edge.V2, edge.V3
		e2 := math2d.Minus(b2, a2)
		v2 := math2d.Dot(e2, math2d.Minus(centroidLocal, a2))
		if v2 > 0 {
			return Manifold{}
		}
	}

	return m
}
