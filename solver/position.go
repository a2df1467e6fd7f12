// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package solver

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/collide"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
)

// PositionConstraint holds the local-space manifold geometry a contact
// needs to re-derive its separation at arbitrary body poses during the
// non-linear Gauss-Seidel position pass of spec.md §4.10 — unlike the
// velocity constraint, this one is re-evaluated fresh every iteration
// rather than computed once.
type PositionConstraint struct {
	BodyA, BodyB *body.Body
	InvMassA, InvMassB float64
	InvIA, InvIB       float64
	LocalCenterA, LocalCenterB math2d.Vec2

	Type        collide.ManifoldType
	LocalNormal math2d.Vec2
	LocalPoint  math2d.Vec2
	LocalPoints [2]math2d.Vec2
	PointCount  int
	RadiusA, RadiusB float64
}

func newPositionConstraint(c *contact.Contact) PositionConstraint {
	bA, bB := c.FixtureA.Body, c.FixtureB.Body
	m := &c.Manifold
	pc := PositionConstraint{
		BodyA:        bA,
		BodyB:        bB,
		InvMassA:     bA.InvMass,
		InvMassB:     bB.InvMass,
		InvIA:        bA.InvI,
		InvIB:        bB.InvI,
		LocalCenterA: bA.Sweep.LocalCenter,
		LocalCenterB: bB.Sweep.LocalCenter,
		Type:         m.Type,
		LocalNormal:  m.LocalNormal,
		LocalPoint:   m.LocalPoint,
		PointCount:   m.PointCount,
		RadiusA:      c.FixtureA.Shape.GetRadius(),
		RadiusB:      c.FixtureB.Shape.GetRadius(),
	}
	for i := 0; i < m.PointCount; i++ {
		pc.LocalPoints[i] = m.Points[i].LocalPoint
	}
	return pc
}

// positionManifold is one point's world-space normal/point/separation,
// recomputed from the constraint's local data and the bodies' current
// poses — the position-solver analogue of collide.WorldManifold.
type positionManifold struct {
	normal     math2d.Vec2
	point      math2d.Vec2
	separation float64
}

func (pc *PositionConstraint) evaluate(xfA, xfB math2d.Transform, index int) positionManifold {
	switch pc.Type {
	case collide.Circles:
		pointA := math2d.MulT2(xfA, pc.LocalPoint)
		pointB := math2d.MulT2(xfB, pc.LocalPoints[0])
		normal, _ := math2d.Minus(pointB, pointA).Unit()
		if pointA.Aeq(pointB) {
			normal = math2d.Vec2{X: 1}
		}
		point := math2d.Mul(math2d.Plus(pointA, pointB), 0.5)
		separation := math2d.Dot(math2d.Minus(pointB, pointA), normal) - pc.RadiusA - pc.RadiusB
		return positionManifold{normal: normal, point: point, separation: separation}

	case collide.FaceB:
		normal := math2d.RotateVec(xfB.Q, pc.LocalNormal)
		planePoint := math2d.MulT2(xfB, pc.LocalPoint)
		clipPoint := math2d.MulT2(xfA, pc.LocalPoints[index])
		separation := math2d.Dot(math2d.Minus(clipPoint, planePoint), normal) - pc.RadiusA - pc.RadiusB
		return positionManifold{normal: math2d.Mul(normal, -1), point: clipPoint, separation: separation}

	default: // FaceA
		normal := math2d.RotateVec(xfA.Q, pc.LocalNormal)
		planePoint := math2d.MulT2(xfA, pc.LocalPoint)
		clipPoint := math2d.MulT2(xfB, pc.LocalPoints[index])
		separation := math2d.Dot(math2d.Minus(clipPoint, planePoint), normal) - pc.RadiusA - pc.RadiusB
		return positionManifold{normal: normal, point: clipPoint, separation: separation}
	}
}

// SolvePositionConstraints runs one non-linear Gauss-Seidel position
// correction pass over every contact and returns the worst (most
// negative) separation found, which callers use as the convergence test:
// spec.md §4.10 stops iterating once minSeparation clears
// -3*linearSlop.
func (cs *ContactSolver) SolvePositionConstraints() float64 {
	minSeparation := 0.0
	for i := range cs.position {
		pc := &cs.position[i]

		cA, aA := pc.BodyA.Sweep.C1, pc.BodyA.Sweep.A1
		cB, aB := pc.BodyB.Sweep.C1, pc.BodyB.Sweep.A1

		for j := 0; j < pc.PointCount; j++ {
			xfA := poseTransform(cA, aA, pc.LocalCenterA)
			xfB := poseTransform(cB, aB, pc.LocalCenterB)

			pm := pc.evaluate(xfA, xfB, j)
			rA := math2d.Minus(pm.point, cA)
			rB := math2d.Minus(pm.point, cB)

			if pm.separation < minSeparation {
				minSeparation = pm.separation
			}

			c := math2d.ClampF(cs.cfg.Baumgarte*(pm.separation+cs.cfg.LinearSlop), -cs.cfg.MaxLinearCorrection, 0)

			rnA := math2d.Cross(rA, pm.normal)
			rnB := math2d.Cross(rB, pm.normal)
			k := pc.InvMassA + pc.InvMassB + pc.InvIA*rnA*rnA + pc.InvIB*rnB*rnB

			impulse := 0.0
			if k > 0 {
				impulse = -c / k
			}
			p := math2d.Mul(pm.normal, impulse)

			cA = math2d.Minus(cA, math2d.Mul(p, pc.InvMassA))
			aA -= pc.InvIA * math2d.Cross(rA, p)
			cB = math2d.Plus(cB, math2d.Mul(p, pc.InvMassB))
			aB += pc.InvIB * math2d.Cross(rB, p)
		}

		pc.BodyA.Sweep.C1, pc.BodyA.Sweep.A1 = cA, aA
		pc.BodyB.Sweep.C1, pc.BodyB.Sweep.A1 = cB, aB
	}
	return minSeparation
}

// FinalizePositions writes the solved sweep centers/angles back into each
// body's cached Transform, once position iteration has converged.
func (cs *ContactSolver) FinalizePositions() {
	seen := map[*body.Body]bool{}
	for i := range cs.position {
		pc := &cs.position[i]
		for _, b := range [2]*body.Body{pc.BodyA, pc.BodyB} {
			if seen[b] {
				continue
			}
			seen[b] = true
			b.SynchronizeTransform()
		}
	}
}

func poseTransform(center math2d.Vec2, angle float64, localCenter math2d.Vec2) math2d.Transform {
	q := math2d.NewRot(angle)
	t := math2d.Transform{Q: q}
	t.P = math2d.Minus(center, math2d.RotateVec(q, localCenter))
	return t
}
