// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// CollideCircles computes the manifold between two disks, each placed by its
// own transform. Reports zero points if the centers are farther apart
// than the sum of the radii.
func CollideCircles(a *shape.DiskShape, xfA math2d.Transform, b *shape.DiskShape, xfB math2d.Transform) Manifold {
	var m Manifold

	pA := math2d.MulT2(xfA, a.Position)
	pB := math2d.MulT2(xfB, b.Position)
	d := math2d.Minus(pB, pA)
	distSqr := d.LenSqr()
	rA, rB := a.Radius, b.Radius
	radius := rA + rB

	if distSqr > radius*radius {
		return m
	}

	m.Type = Circles
	m.LocalPoint = a.Position
	m.LocalNormal = math2d.Zero2
	m.PointCount = 1
	m.Points[0] = ManifoldPoint{
		LocalPoint: b.Position,
		Feature:    ContactFeature{TypeA: VertexFeature, IndexA: 0, TypeB: VertexFeature, IndexB: 0},
	}
	return m
}

// PolygonCircle computes the manifold between a polygon and a disk,
// classifying the circle's center against the polygon's Voronoi regions
// (face interior vs. the two vertices bounding the closest face) to pick
// the correct separating axis.
func PolygonCircle(poly *shape.PolygonShape, xfA math2d.Transform, circle *shape.DiskShape, xfB math2d.Transform) Manifold {
	var m Manifold

	c := math2d.MulT2(xfB, circle.Position)
	cLocal := math2d.MulTT2(xfA, c)

	normalIndex := 0
	separation := -1e300
	vertexCount := len(poly.Vertices)
	for i := 0; i < vertexCount; i++ {
		s := math2d.Dot(poly.Normals[i], math2d.Minus(cLocal, poly.Vertices[i]))
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	radius := poly.Radius + circle.Radius
	if separation > radius {
		return m
	}

	v1 := poly.Vertices[normalIndex]
	v2 := poly.Vertices[(normalIndex+1)%vertexCount]

	if separation < math2d.Epsilon {
		m.Type = FaceA
		m.LocalNormal = poly.Normals[normalIndex]
		m.LocalPoint = math2d.Mul(math2d.Plus(v1, v2), 0.5)
		m.PointCount = 1
		m.Points[0] = ManifoldPoint{
			LocalPoint: circle.Position,
			Feature:    ContactFeature{TypeA: FaceFeature, IndexA: normalIndex, TypeB: VertexFeature, IndexB: 0},
		}
		return m
	}

	u1 := math2d.Dot(math2d.Minus(cLocal, v1), math2d.Minus(v2, v1))
	u2 := math2d.Dot(math2d.Minus(cLocal, v2), math2d.Minus(v1, v2))

	var localNormal math2d.Vec2
	var localVertex math2d.Vec2
	switch {
	case u1 <= 0:
		if math2d.DistanceSqr(cLocal, v1) > radius*radius {
			return m
		}
		localNormal, _ = math2d.Minus(cLocal, v1).Unit()
		localVertex = v1
	case u2 <= 0:
		if math2d.DistanceSqr(cLocal, v2) > radius*radius {
			return m
		}
		localNormal, _ = math2d.Minus(cLocal, v2).Unit()
		localVertex = v2
	default:
		faceCenter := math2d.Mul(math2d.Plus(v1, v2), 0.5)
		s := math2d.Dot(math2d.Minus(cLocal, faceCenter), poly.Normals[normalIndex])
		if s > radius {
			return m
		}
		localNormal = poly.Normals[normalIndex]
		m.Type = FaceA
		m.LocalNormal = localNormal
		m.LocalPoint = faceCenter
		m.PointCount = 1
		m.Points[0] = ManifoldPoint{
			LocalPoint: circle.Position,
			Feature:    ContactFeature{TypeA: FaceFeature, IndexA: normalIndex, TypeB: VertexFeature, IndexB: 0},
		}
		return m
	}

	m.Type = FaceA
	m.LocalNormal = localNormal
	m.LocalPoint = localVertex
	m.PointCount = 1
	m.Points[0] = ManifoldPoint{
		LocalPoint: circle.Position,
		Feature:    ContactFeature{TypeA: VertexFeature, IndexA: normalIndex, TypeB: VertexFeature, IndexB: 0},
	}
	return m
}
