// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// EdgeCircle computes the manifold between an edge and a disk, using the
// edge's ghost vertices (ties to a chain's neighboring edges) to suppress
// a vertex contact when the circle is really resting against the
// neighboring edge instead — without this check, a ball rolling over a
// chain of edges would catch on every interior vertex.
func EdgeCircle(edge *shape.EdgeShape, xfA math2d.Transform, circle *shape.DiskShape, xfB math2d.Transform) Manifold {
	var m Manifold

	q := math2d.MulTT2(xfA, math2d.MulT2(xfB, circle.Position))

	a, b := edge.V1, edge.V2
	e := math2d.Minus(b, a)

	u := math2d.Dot(e, math2d.Minus(b, q))
	v := math2d.Dot(e, math2d.Minus(q, a))

	totalRadius := edge.Radius + circle.Radius

	if v <= 0 {
		p := a
		d := math2d.Minus(q, p)
		if d.LenSqr() > totalRadius*totalRadius {
			return m
		}
		if edge.HasVertex0 {
			a1, b1 := edge.V0, a
			e1 := math2d.Minus(b1, a1)
			u1 := math2d.Dot(e1, math2d.Minus(b1, q))
			if u1 > 0 {
				return m
			}
		}
		m.Type = Circles
		m.LocalNormal = math2d.Zero2
		m.LocalPoint = p
		m.PointCount = 1
		m.Points[0] = ManifoldPoint{
			LocalPoint: circle.Position,
			Feature:    ContactFeature{TypeA: VertexFeature, IndexA: 0, TypeB: VertexFeature, IndexB: 0},
		}
		return m
	}

	if u <= 0 {
		p := b
		d := math2d.Minus(q, p)
		if d.LenSqr() > totalRadius*totalRadius {
			return m
		}
		if edge.HasVertex3 {
			a2, b2 := b, edge.V3
			e2 := math2d.Minus(b2, a2)
			v2 := math2d.Dot(e2, math2d.Minus(q, a2))
			if v2 > 0 {
				return m
			}
		}
		m.Type = Circles
		m.LocalNormal = math2d.Zero2
		m.LocalPoint = p
		m.PointCount = 1
		m.Points[0] = ManifoldPoint{
			LocalPoint: circle.Position,
			Feature:    ContactFeature{TypeA: VertexFeature, IndexA: 1, TypeB: VertexFeature, IndexB: 0},
		}
		return m
	}

	den := math2d.Dot(e, e)
	p := math2d.Mul(math2d.Plus(math2d.Mul(a, u), math2d.Mul(b, v)), 1/den)
	d := math2d.Minus(q, p)
	if d.LenSqr() > totalRadius*totalRadius {
		return m
	}

	n := math2d.Vec2{X: -e.Y, Y: e.X}
	if math2d.Dot(n, math2d.Minus(q, a)) < 0 {
		n = math2d.Mul(n, -1)
	}
	unit, _ := n.Unit()

	m.Type = FaceA
	m.LocalNormal = unit
	m.LocalPoint = a
	m.PointCount = 1
	m.Points[0] = ManifoldPoint{
		LocalPoint: circle.Position,
		Feature:    ContactFeature{TypeA: FaceFeature, IndexA: 0, TypeB: VertexFeature, IndexB: 0},
	}
	return m
}
