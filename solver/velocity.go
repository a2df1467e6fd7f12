// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package solver

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
)

// VelocityConstraintPoint is the per-point precomputed state spec.md §4.9
// asks for: contact-point lever arms and effective masses.
type VelocityConstraintPoint struct {
	RA, RB         math2d.Vec2
	NormalMass     float64
	TangentMass    float64
	VelocityBias   float64
	NormalImpulse  float64
	TangentImpulse float64
}

// VelocityConstraint is one contact's velocity-level constraint: a
// friction constraint along Tangent and a normal constraint along Normal,
// one or two points, plus (for two points) the block-solve K matrix.
type VelocityConstraint struct {
	source *contact.Contact

	BodyA, BodyB *body.Body
	InvMassA, InvMassB float64
	InvIA, InvIB       float64

	Normal, Tangent math2d.Vec2
	Friction        float64
	Restitution     float64
	TangentSpeed    float64

	Points     [2]VelocityConstraintPoint
	PointCount int

	K          math2d.Mat22
	NormalMass math2d.Mat22
}

func newVelocityConstraint(c *contact.Contact) VelocityConstraint {
	bA, bB := c.FixtureA.Body, c.FixtureB.Body
	vc := VelocityConstraint{
		source:       c,
		BodyA:        bA,
		BodyB:        bB,
		InvMassA:     bA.InvMass,
		InvMassB:     bB.InvMass,
		InvIA:        bA.InvI,
		InvIB:        bB.InvI,
		Friction:     c.Friction,
		Restitution:  c.Restitution,
		TangentSpeed: c.TangentSpeed,
	}
	return vc
}

// Initialize computes rA/rB, effective masses, and the restitution
// velocity bias for every point, then seeds warm-start impulses from the
// contact's manifold — scaled by dtRatio (the ratio of this step's Δt to
// the previous one) when warmStarting is enabled, matching Box2D's
// b2ContactSolver::InitializeVelocityConstraints.
func (cs *ContactSolver) Initialize(warmStarting bool, dtRatio float64) {
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		c := cs.contacts[i]
		wm := c.WorldManifold()

		vc.Normal = wm.Normal
		vc.Tangent = math2d.CrossVS(vc.Normal, 1)
		vc.PointCount = c.Manifold.PointCount

		vA, wA := bodyVelocity(vc.BodyA)
		vB, wB := bodyVelocity(vc.BodyB)
		cA, cB := vc.BodyA.WorldCenter(), vc.BodyB.WorldCenter()

		for j := 0; j < vc.PointCount; j++ {
			p := &vc.Points[j]
			p.RA = math2d.Minus(wm.Points[j], cA)
			p.RB = math2d.Minus(wm.Points[j], cB)

			rnA := math2d.Cross(p.RA, vc.Normal)
			rnB := math2d.Cross(p.RB, vc.Normal)
			kNormal := vc.InvMassA + vc.InvMassB + vc.InvIA*rnA*rnA + vc.InvIB*rnB*rnB
			p.NormalMass = 0
			if kNormal > 0 {
				p.NormalMass = 1 / kNormal
			}

			rtA := math2d.Cross(p.RA, vc.Tangent)
			rtB := math2d.Cross(p.RB, vc.Tangent)
			kTangent := vc.InvMassA + vc.InvMassB + vc.InvIA*rtA*rtA + vc.InvIB*rtB*rtB
			p.TangentMass = 0
			if kTangent > 0 {
				p.TangentMass = 1 / kTangent
			}

			p.VelocityBias = 0
			relVel := math2d.Dot(vc.Normal, relativeVelocity(vA, wA, p.RA, vB, wB, p.RB))
			if relVel < -cs.cfg.VelocityThreshold {
				p.VelocityBias = -vc.Restitution * relVel
			}

			if warmStarting {
				p.NormalImpulse = dtRatio * c.Manifold.Points[j].NormalImpulse
				p.TangentImpulse = dtRatio * c.Manifold.Points[j].TangentImpulse
			} else {
				p.NormalImpulse, p.TangentImpulse = 0, 0
			}
		}

		if vc.PointCount == 2 {
			rA1, rB1 := vc.Points[0].RA, vc.Points[0].RB
			rA2, rB2 := vc.Points[1].RA, vc.Points[1].RB
			rn1A, rn1B := math2d.Cross(rA1, vc.Normal), math2d.Cross(rB1, vc.Normal)
			rn2A, rn2B := math2d.Cross(rA2, vc.Normal), math2d.Cross(rB2, vc.Normal)

			k11 := vc.InvMassA + vc.InvMassB + vc.InvIA*rn1A*rn1A + vc.InvIB*rn1B*rn1B
			k22 := vc.InvMassA + vc.InvMassB + vc.InvIA*rn2A*rn2A + vc.InvIB*rn2B*rn2B
			k12 := vc.InvMassA + vc.InvMassB + vc.InvIA*rn1A*rn2A + vc.InvIB*rn1B*rn2B

			// A poorly conditioned effective mass matrix (nearly-parallel
			// normals) breaks the block solver; fall back to solving only
			// the first point, sequentially, by dropping PointCount to 1.
			const maxConditionNumber = 1000.0
			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.K = math2d.Mat22{Col1: math2d.Vec2{X: k11, Y: k12}, Col2: math2d.Vec2{X: k12, Y: k22}}
				vc.NormalMass = vc.K.Inverse()
			} else {
				vc.PointCount = 1
			}
		}
	}
}

// WarmStart applies each constraint's seeded impulses to the bodies'
// velocities before the first solve iteration.
func (cs *ContactSolver) WarmStart() {
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		vA, wA := bodyVelocity(vc.BodyA)
		vB, wB := bodyVelocity(vc.BodyB)

		for j := 0; j < vc.PointCount; j++ {
			p := vc.Points[j]
			impulse := math2d.Plus(math2d.Mul(vc.Normal, p.NormalImpulse), math2d.Mul(vc.Tangent, p.TangentImpulse))
			vA = math2d.Minus(vA, math2d.Mul(impulse, vc.InvMassA))
			wA -= vc.InvIA * math2d.Cross(p.RA, impulse)
			vB = math2d.Plus(vB, math2d.Mul(impulse, vc.InvMassB))
			wB += vc.InvIB * math2d.Cross(p.RB, impulse)
		}
		bodySetVelocity(vc.BodyA, vA, wA)
		bodySetVelocity(vc.BodyB, vB, wB)
	}
}

// SolveVelocityConstraints runs one friction-then-normal iteration over
// every contact, per spec.md §4.9.
func (cs *ContactSolver) SolveVelocityConstraints() {
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		solveTangentConstraints(vc)
		if vc.PointCount == 2 {
			solveBlockNormalConstraints(vc)
		} else {
			solveSequentialNormalConstraints(vc)
		}
	}
}

func solveTangentConstraints(vc *VelocityConstraint) {
	vA, wA := bodyVelocity(vc.BodyA)
	vB, wB := bodyVelocity(vc.BodyB)

	for j := 0; j < vc.PointCount; j++ {
		p := &vc.Points[j]
		dv := relativeVelocity(vA, wA, p.RA, vB, wB, p.RB)
		vt := math2d.Dot(dv, vc.Tangent) - vc.TangentSpeed

		lambda := p.TangentMass * -vt
		maxFriction := vc.Friction * p.NormalImpulse
		newImpulse := math2d.ClampF(p.TangentImpulse+lambda, -maxFriction, maxFriction)
		lambda = newImpulse - p.TangentImpulse
		p.TangentImpulse = newImpulse

		impulse := math2d.Mul(vc.Tangent, lambda)
		vA = math2d.Minus(vA, math2d.Mul(impulse, vc.InvMassA))
		wA -= vc.InvIA * math2d.Cross(p.RA, impulse)
		vB = math2d.Plus(vB, math2d.Mul(impulse, vc.InvMassB))
		wB += vc.InvIB * math2d.Cross(p.RB, impulse)
	}

	bodySetVelocity(vc.BodyA, vA, wA)
	bodySetVelocity(vc.BodyB, vB, wB)
}

func solveSequentialNormalConstraints(vc *VelocityConstraint) {
	vA, wA := bodyVelocity(vc.BodyA)
	vB, wB := bodyVelocity(vc.BodyB)

	for j := 0; j < vc.PointCount; j++ {
		p := &vc.Points[j]
		dv := relativeVelocity(vA, wA, p.RA, vB, wB, p.RB)
		vn := math2d.Dot(dv, vc.Normal)

		lambda := -p.NormalMass * (vn - p.VelocityBias)
		newImpulse := math.Max(p.NormalImpulse+lambda, 0)
		lambda = newImpulse - p.NormalImpulse
		p.NormalImpulse = newImpulse

		impulse := math2d.Mul(vc.Normal, lambda)
		vA = math2d.Minus(vA, math2d.Mul(impulse, vc.InvMassA))
		wA -= vc.InvIA * math2d.Cross(p.RA, impulse)
		vB = math2d.Plus(vB, math2d.Mul(impulse, vc.InvMassB))
		wB += vc.InvIB * math2d.Cross(p.RB, impulse)
	}

	bodySetVelocity(vc.BodyA, vA, wA)
	bodySetVelocity(vc.BodyB, vB, wB)
}

// solveBlockNormalConstraints is Box2D's two-point LCP block solver,
// tried as the "total enumeration method" over the four
// Karush-Kuhn-Tucker cases (both free, point 1 free, point 2 free, both
// zero), accepting the first case whose resulting impulses and normal
// velocities are both non-negative.
func solveBlockNormalConstraints(vc *VelocityConstraint) {
	p1, p2 := &vc.Points[0], &vc.Points[1]

	a := math2d.Vec2{X: p1.NormalImpulse, Y: p2.NormalImpulse}

	vA, wA := bodyVelocity(vc.BodyA)
	vB, wB := bodyVelocity(vc.BodyB)

	dv1 := relativeVelocity(vA, wA, p1.RA, vB, wB, p1.RB)
	dv2 := relativeVelocity(vA, wA, p2.RA, vB, wB, p2.RB)

	vn1 := math2d.Dot(dv1, vc.Normal)
	vn2 := math2d.Dot(dv2, vc.Normal)

	b := math2d.Vec2{X: vn1 - p1.VelocityBias, Y: vn2 - p2.VelocityBias}
	b = math2d.Minus(b, math2d.MulMat22(vc.K, a))

	const errorTol = -0.001

	// case 1: both points active (vn1 = vn2 = 0)
	x := math2d.Mul(math2d.MulMat22(vc.NormalMass, b), -1)
	if x.X >= 0 && x.Y >= 0 {
		applyBlockImpulses(vc, a, x)
		return
	}

	// case 2: point 1 active, point 2 clamped to zero
	x = math2d.Vec2{X: -p1.NormalMass * b.X, Y: 0}
	vn2 = vc.K.Col1.Y*x.X + b.Y
	if x.X >= 0 && vn2 >= errorTol {
		applyBlockImpulses(vc, a, x)
		return
	}

	// case 3: point 2 active, point 1 clamped to zero
	x = math2d.Vec2{X: 0, Y: -p2.NormalMass * b.Y}
	vn1 = vc.K.Col2.X*x.Y + b.X
	if x.Y >= 0 && vn1 >= errorTol {
		applyBlockImpulses(vc, a, x)
		return
	}

	// case 4: both clamped to zero
	x = math2d.Vec2{}
	vn1 = b.X
	vn2 = b.Y
	if vn1 >= errorTol && vn2 >= errorTol {
		applyBlockImpulses(vc, a, x)
		return
	}
	// no valid solution: leave impulses unchanged, matching Box2D's
	// "this is hit sometimes, but it doesn't seem to matter" fallback.
}

func applyBlockImpulses(vc *VelocityConstraint, oldImpulse, newImpulse math2d.Vec2) {
	p1, p2 := &vc.Points[0], &vc.Points[1]
	d := math2d.Minus(newImpulse, oldImpulse)

	p1Impulse := math2d.Mul(vc.Normal, d.X)
	p2Impulse := math2d.Mul(vc.Normal, d.Y)
	totalImpulse := math2d.Plus(p1Impulse, p2Impulse)

	vA, wA := bodyVelocity(vc.BodyA)
	vB, wB := bodyVelocity(vc.BodyB)

	vA = math2d.Minus(vA, math2d.Mul(totalImpulse, vc.InvMassA))
	wA -= vc.InvIA * (math2d.Cross(p1.RA, p1Impulse) + math2d.Cross(p2.RA, p2Impulse))
	vB = math2d.Plus(vB, math2d.Mul(totalImpulse, vc.InvMassB))
	wB += vc.InvIB * (math2d.Cross(p1.RB, p1Impulse) + math2d.Cross(p2.RB, p2Impulse))

	bodySetVelocity(vc.BodyA, vA, wA)
	bodySetVelocity(vc.BodyB, vB, wB)

	p1.NormalImpulse, p2.NormalImpulse = newImpulse.X, newImpulse.Y
}

// StoreImpulses writes each constraint's final normal/tangent impulses
// back onto the owning contact's manifold points, where they become next
// step's warm-start seed by ContactFeature identity.
func (cs *ContactSolver) StoreImpulses() {
	for i := range cs.velocity {
		vc := &cs.velocity[i]
		m := &cs.contacts[i].Manifold
		for j := 0; j < vc.PointCount; j++ {
			m.Points[j].NormalImpulse = vc.Points[j].NormalImpulse
			m.Points[j].TangentImpulse = vc.Points[j].TangentImpulse
		}
	}
}
