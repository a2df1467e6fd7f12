// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"github.com/gazed/rigid2d/math2d"
)

// WorldManifold is a Manifold's points and normal expressed in world
// space, with each point's penetration separation and the radii of both
// shapes already folded in. The solver consumes this, never the raw
// local-space Manifold.
type WorldManifold struct {
	Normal      math2d.Vec2
	Points      [MaxManifoldPoints]math2d.Vec2
	Separations [MaxManifoldPoints]float64
	PointCount  int
}

// Evaluate derives the world-space manifold from m, given the two body
// transforms and the radii of the shapes that produced m.
func Evaluate(m *Manifold, xfA math2d.Transform, radiusA float64, xfB math2d.Transform, radiusB float64) WorldManifold {
	var w WorldManifold
	if m.PointCount == 0 {
		return w
	}

	switch m.Type {
	case Circles:
		pointA := math2d.MulT2(xfA, m.LocalPoint)
		pointB := math2d.MulT2(xfB, m.Points[0].LocalPoint)
		normal, _ := math2d.Minus(pointB, pointA).Unit()
		if pointA.Aeq(pointB) {
			normal = math2d.Vec2{X: 1}
		}

		cA := math2d.Plus(pointA, math2d.Mul(normal, radiusA))
		cB := math2d.Minus(pointB, math2d.Mul(normal, radiusB))

		w.Normal = normal
		w.PointCount = 1
		w.Points[0] = math2d.Mul(math2d.Plus(cA, cB), 0.5)
		w.Separations[0] = math2d.Dot(math2d.Minus(cB, cA), normal)

	case FaceA, FaceB:
		normal := math2d.RotateVec(xfA.Q, m.LocalNormal)
		planePoint := math2d.MulT2(xfA, m.LocalPoint)
		incXf, refRadius, incRadius := xfB, radiusA, radiusB
		if m.Type == FaceB {
			normal = math2d.RotateVec(xfB.Q, m.LocalNormal)
			planePoint = math2d.MulT2(xfB, m.LocalPoint)
			incXf, refRadius, incRadius = xfA, radiusB, radiusA
		}

		w.PointCount = m.PointCount
		for i := 0; i < m.PointCount; i++ {
			clip := math2d.MulT2(incXf, m.Points[i].LocalPoint)
			cRef := math2d.Plus(clip, math2d.Mul(normal, refRadius-math2d.Dot(math2d.Minus(clip, planePoint), normal)))
			cInc := math2d.Minus(clip, math2d.Mul(normal, incRadius))
			cA, cB := cRef, cInc
			if m.Type == FaceB {
				cA, cB = cInc, cRef
			}
			w.Points[i] = math2d.Mul(math2d.Plus(cA, cB), 0.5)
			w.Separations[i] = math2d.Dot(math2d.Minus(cInc, cRef), normal)
		}

		// normal was built from the reference face's own outward direction;
		// for FaceB that points from B toward A, so flip it back to the A->B
		// convention every other case already reports.
		if m.Type == FaceB {
			normal = math2d.Mul(normal, -1)
		}
		w.Normal = normal
	}

	return w
}
