// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Pulley links two bodies over a pair of fixed ground anchors so that
// lengthA + Ratio*lengthB stays constant — grounded by analogy on
// Box2D's classic b2PulleyJoint (no retrieved source file): a single
// scalar constraint along each body's own anchor-to-ground direction,
// coupled through Ratio the same way Gear couples two joint
// coordinates.
type Pulley struct {
	Base

	GroundAnchorA, GroundAnchorB math2d.Vec2
	LocalAnchorA, LocalAnchorB   math2d.Vec2
	LengthA, LengthB             float64
	Ratio                        float64

	constant float64

	uA, uB math2d.Vec2
	rA, rB math2d.Vec2
	mass   float64

	impulse float64
}

// NewPulley anchors a at anchorA (rope to groundA) and b at anchorB
// (rope to groundB), fixing lengthA+ratio*lengthB at the bodies'
// current combined rope length.
func NewPulley(a, b *body.Body, groundA, groundB, anchorA, anchorB math2d.Vec2, ratio float64, collideConnected bool) *Pulley {
	j := &Pulley{
		Base:          NewBase(a, b, collideConnected),
		GroundAnchorA: groundA,
		GroundAnchorB: groundB,
		LocalAnchorA:  a.LocalPoint(anchorA),
		LocalAnchorB:  b.LocalPoint(anchorB),
		LengthA:       math2d.Distance(anchorA, groundA),
		LengthB:       math2d.Distance(anchorB, groundB),
		Ratio:         ratio,
	}
	j.constant = j.LengthA + ratio*j.LengthB
	return j
}

func (j *Pulley) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	pA := math2d.Plus(a.Sweep.C1, j.rA)
	pB := math2d.Plus(b.Sweep.C1, j.rB)

	j.uA = math2d.Minus(pA, j.GroundAnchorA)
	j.uB = math2d.Minus(pB, j.GroundAnchorB)

	lengthA := j.uA.Len()
	lengthB := j.uB.Len()

	if lengthA > 10*linearSlopDefault {
		j.uA = math2d.Mul(j.uA, 1/lengthA)
	} else {
		j.uA = math2d.Vec2{}
	}
	if lengthB > 10*linearSlopDefault {
		j.uB = math2d.Mul(j.uB, 1/lengthB)
	} else {
		j.uB = math2d.Vec2{}
	}

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	ruA := math2d.Cross(j.rA, j.uA)
	ruB := math2d.Cross(j.rB, j.uB)
	mAcoef := mA + iA*ruA*ruA
	mBcoef := mB + iB*ruB*ruB

	invMass := mAcoef + j.Ratio*j.Ratio*mBcoef
	if invMass > 0 {
		j.mass = 1 / invMass
	} else {
		j.mass = 0
	}

	if warmStarting {
		j.impulse *= dtRatio
		pA := math2d.Mul(j.uA, -j.impulse)
		pB := math2d.Mul(j.uB, -j.Ratio*j.impulse)
		a.LinearVelocity = math2d.Plus(a.LinearVelocity, math2d.Mul(pA, mA))
		a.AngularVelocity += iA * math2d.Cross(j.rA, pA)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(pB, mB))
		b.AngularVelocity += iB * math2d.Cross(j.rB, pB)
	} else {
		j.impulse = 0
	}
}

func (j *Pulley) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	vpA := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	vpB := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))

	cdot := -math2d.Dot(j.uA, vpA) - j.Ratio*math2d.Dot(j.uB, vpB)
	impulse := -j.mass * cdot
	j.impulse += impulse

	pA := math2d.Mul(j.uA, -impulse)
	pB := math2d.Mul(j.uB, -j.Ratio*impulse)
	a.LinearVelocity = math2d.Plus(a.LinearVelocity, math2d.Mul(pA, mA))
	a.AngularVelocity += iA * math2d.Cross(j.rA, pA)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(pB, mB))
	b.AngularVelocity += iB * math2d.Cross(j.rB, pB)
}

func (j *Pulley) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	pA := math2d.Plus(a.Sweep.C1, rA)
	pB := math2d.Plus(b.Sweep.C1, rB)

	uA := math2d.Minus(pA, j.GroundAnchorA)
	uB := math2d.Minus(pB, j.GroundAnchorB)
	lengthA := uA.Len()
	lengthB := uB.Len()

	if lengthA > 10*linearSlopDefault {
		uA = math2d.Mul(uA, 1/lengthA)
	} else {
		uA = math2d.Vec2{}
	}
	if lengthB > 10*linearSlopDefault {
		uB = math2d.Mul(uB, 1/lengthB)
	} else {
		uB = math2d.Vec2{}
	}

	ruA := math2d.Cross(rA, uA)
	ruB := math2d.Cross(rB, uB)
	mAcoef := mA + iA*ruA*ruA
	mBcoef := mB + iB*ruB*ruB

	invMass := mAcoef + j.Ratio*j.Ratio*mBcoef
	mass := 0.0
	if invMass > 0 {
		mass = 1 / invMass
	}

	c := j.constant - lengthA - j.Ratio*lengthB
	linearError := math.Abs(c)

	impulse := -mass * c
	pAimpulse := math2d.Mul(uA, -impulse)
	pBimpulse := math2d.Mul(uB, -j.Ratio*impulse)

	a.Sweep.C1 = math2d.Plus(a.Sweep.C1, math2d.Mul(pAimpulse, mA))
	a.Sweep.A1 += iA * math2d.Cross(rA, pAimpulse)
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(pBimpulse, mB))
	b.Sweep.A1 += iB * math2d.Cross(rB, pBimpulse)
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return linearError < conf.LinearSlop
}

func (j *Pulley) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.uB, invH*j.impulse)
}

func (j *Pulley) ReactionTorque(invH float64) float64 { return 0 }
