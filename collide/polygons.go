// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// findMaxSeparation returns the edge of poly1 with the largest separation
// from poly2 — the best candidate separating axis contributed by poly1's
// face normals. Both polygons stay in their own local vertex arrays; the
// comparison happens in poly2's local frame via the relative transform
// xf2^-1 * xf1, exactly as the two polygons would be positioned if xf2
// were the identity.
func findMaxSeparation(poly1 *shape.PolygonShape, xf1 math2d.Transform, poly2 *shape.PolygonShape, xf2 math2d.Transform) (edge int, separation float64) {
	count1 := len(poly1.Vertices)
	count2 := len(poly2.Vertices)
	xf := math2d.MulTTransforms(xf2, xf1)

	bestIndex := 0
	maxSeparation := -1e300
	for i := 0; i < count1; i++ {
		n := math2d.RotateVec(xf.Q, poly1.Normals[i])
		v1 := math2d.MulT2(xf, poly1.Vertices[i])

		si := 1e300
		for j := 0; j < count2; j++ {
			s := math2d.Dot(n, math2d.Minus(poly2.Vertices[j], v1))
			if s < si {
				si = s
			}
		}
		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return bestIndex, maxSeparation
}

// findIncidentEdge returns the two vertices (and the face index) of
// poly2's face whose normal is most anti-parallel to edge1 of poly1 —
// the face poly2 presents to poly1's chosen reference edge.
func findIncidentEdge(poly1 *shape.PolygonShape, xf1 math2d.Transform, edge1 int, poly2 *shape.PolygonShape, xf2 math2d.Transform) [2]clipVertex {
	normal1 := math2d.InvRotateVec(xf2.Q, math2d.RotateVec(xf1.Q, poly1.Normals[edge1]))

	count2 := len(poly2.Vertices)
	index := 0
	minDot := 1e300
	for i := 0; i < count2; i++ {
		d := math2d.Dot(normal1, poly2.Normals[i])
		if d < minDot {
			minDot = d
			index = i
		}
	}

	i1 := index
	i2 := (index + 1) % count2
	return [2]clipVertex{
		{v: math2d.MulT2(xf2, poly2.Vertices[i1]), feature: ContactFeature{TypeA: FaceFeature, TypeB: VertexFeature, IndexB: i1}},
		{v: math2d.MulT2(xf2, poly2.Vertices[i2]), feature: ContactFeature{TypeA: FaceFeature, TypeB: VertexFeature, IndexB: i2}},
	}
}

// Polygons computes the manifold between two convex polygons by picking
// whichever of the two shapes offers the larger separating-axis margin
// as the reference face, then clipping the other shape's incident edge
// against that face's two side planes (Sutherland-Hodgman restricted to
// a single reference edge, the classic SAT+clip approach).
func Polygons(polyA *shape.PolygonShape, xfA math2d.Transform, polyB *shape.PolygonShape, xfB math2d.Transform) Manifold {
	var m Manifold
	totalRadius := polyA.Radius + polyB.Radius

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return m
	}
	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return m
	}

	var ref, inc *shape.PolygonShape
	var xfRef, xfInc math2d.Transform
	var edge1 int
	var flip bool
	const tol = 0.1 * math2d.Epsilon

	if separationB > separationA+tol {
		ref, inc = polyB, polyA
		xfRef, xfInc = xfB, xfA
		edge1 = edgeB
		flip = true
	} else {
		ref, inc = polyA, polyB
		xfRef, xfInc = xfA, xfB
		edge1 = edgeA
		flip = false
	}

	incidentEdge := findIncidentEdge(ref, xfRef, edge1, inc, xfInc)

	count1 := len(ref.Vertices)
	iv1 := edge1
	iv2 := (edge1 + 1) % count1

	v11 := ref.Vertices[iv1]
	v12 := ref.Vertices[iv2]

	localTangent, _ := math2d.Minus(v12, v11).Unit()
	localNormal := math2d.RPerp(localTangent)
	planePoint := math2d.Mul(math2d.Plus(v11, v12), 0.5)

	tangent := math2d.RotateVec(xfRef.Q, localTangent)
	normal := math2d.RPerp(tangent)

	v11w := math2d.MulT2(xfRef, v11)
	v12w := math2d.MulT2(xfRef, v12)

	frontOffset := math2d.Dot(normal, v11w)
	sideOffset1 := -math2d.Dot(tangent, v11w) + ref.Radius
	sideOffset2 := math2d.Dot(tangent, v12w) + ref.Radius

	clipPoints1, np1 := clipSegmentToLine(incidentEdge, math2d.Mul(tangent, -1), sideOffset1, iv1)
	if np1 < 2 {
		return m
	}
	clipPoints2, np2 := clipSegmentToLine(clipPoints1, tangent, sideOffset2, iv2)
	if np2 < 2 {
		return m
	}

	m.LocalNormal = localNormal
	m.LocalPoint = planePoint
	if flip {
		m.Type = FaceB
	} else {
		m.Type = FaceA
	}

	pointCount := 0
	for i := 0; i < 2; i++ {
		separation := math2d.Dot(normal, clipPoints2[i].v) - frontOffset
		if separation <= totalRadius {
			localPoint := math2d.MulTT2(xfInc, clipPoints2[i].v)
			feature := clipPoints2[i].feature
			if flip {
				feature = ContactFeature{TypeA: feature.TypeB, IndexA: feature.IndexB, TypeB: feature.TypeA, IndexB: feature.IndexA}
			}
			m.Points[pointCount] = ManifoldPoint{LocalPoint: localPoint, Feature: feature}
			pointCount++
		}
	}
	m.PointCount = pointCount
	return m
}
