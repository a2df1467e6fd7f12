// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Distance holds two anchor points at a fixed length apart — a single
// scalar equality constraint along the line between them. Grounded by
// analogy on Box2D's classic b2DistanceJoint sequential-impulse
// pattern (no retrieved source file); the soft spring/damper mode is
// dropped for the same reason as Weld's: this joint always enforces a
// rigid Length.
type Distance struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	Length                     float64

	rA, rB math2d.Vec2
	u      math2d.Vec2
	mass   float64

	impulse float64
}

// NewDistance anchors a and b at anchorA/anchorB (world points) and
// fixes the distance between them at their current separation.
func NewDistance(a, b *body.Body, anchorA, anchorB math2d.Vec2, collideConnected bool) *Distance {
	return &Distance{
		Base:         NewBase(a, b, collideConnected),
		LocalAnchorA: a.LocalPoint(anchorA),
		LocalAnchorB: b.LocalPoint(anchorB),
		Length:       math2d.Distance(anchorA, anchorB),
	}
}

func (j *Distance) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	d := math2d.Minus(math2d.Plus(b.Sweep.C1, j.rB), math2d.Plus(a.Sweep.C1, j.rA))
	j.u, _ = d.Unit()

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	crA := math2d.Cross(j.rA, j.u)
	crB := math2d.Cross(j.rB, j.u)
	invMass := mA + mB + iA*crA*crA + iB*crB*crB
	if invMass > 0 {
		j.mass = 1 / invMass
	} else {
		j.mass = 0
	}

	if warmStarting {
		j.impulse *= dtRatio
		p := math2d.Mul(j.u, j.impulse)
		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * math2d.Cross(j.rA, p)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * math2d.Cross(j.rB, p)
	} else {
		j.impulse = 0
	}
}

func (j *Distance) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	vpA := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	vpB := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	cdot := math2d.Dot(j.u, math2d.Minus(vpB, vpA))

	impulse := -j.mass * cdot
	j.impulse += impulse

	p := math2d.Mul(j.u, impulse)
	a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
	a.AngularVelocity -= iA * math2d.Cross(j.rA, p)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
	b.AngularVelocity += iB * math2d.Cross(j.rB, p)
}

func (j *Distance) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	d := math2d.Minus(math2d.Plus(b.Sweep.C1, rB), math2d.Plus(a.Sweep.C1, rA))
	length := d.Len()
	var u math2d.Vec2
	if length > 0 {
		u = math2d.Mul(d, 1/length)
	}
	c := length - j.Length

	impulse := -j.mass * math2d.ClampF(c, -conf.MaxLinearCorrection, conf.MaxLinearCorrection)
	p := math2d.Mul(u, impulse)

	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * math2d.Cross(rA, p)
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * math2d.Cross(rB, p)
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return math.Abs(c) <= conf.LinearSlop
}

func (j *Distance) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.u, invH*j.impulse)
}

func (j *Distance) ReactionTorque(invH float64) float64 { return 0 }
