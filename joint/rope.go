// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Rope caps the distance between two anchor points at MaxLength without
// pulling them together — a unilateral version of Distance, grounded by
// analogy on Box2D's classic b2RopeJoint (no retrieved source file):
// same Jacobian as Distance, but the accumulated impulse is clamped to
// be never positive, so the rope only pulls the anchors toward each
// other and never pushes them apart. It is active once the anchors are
// at least MaxLength apart.
type Rope struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	MaxLength                  float64

	rA, rB math2d.Vec2
	u      math2d.Vec2
	mass   float64

	state   limitState
	impulse float64
}

// NewRope anchors a and b at anchorA/anchorB (world points), capping
// their separation at maxLength.
func NewRope(a, b *body.Body, anchorA, anchorB math2d.Vec2, maxLength float64, collideConnected bool) *Rope {
	return &Rope{
		Base:         NewBase(a, b, collideConnected),
		LocalAnchorA: a.LocalPoint(anchorA),
		LocalAnchorB: b.LocalPoint(anchorB),
		MaxLength:    maxLength,
	}
}

func (j *Rope) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	d := math2d.Minus(math2d.Plus(b.Sweep.C1, j.rB), math2d.Plus(a.Sweep.C1, j.rA))
	length := d.Len()

	c := length - j.MaxLength
	if c >= 0 {
		j.state = limitAtUpper
	} else {
		j.state = limitInactive
	}

	if length > linearSlopDefault {
		j.u = math2d.Mul(d, 1/length)
	} else {
		j.u = math2d.Vec2{}
		j.mass = 0
		j.impulse = 0
		return
	}

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

func (j *Rope) SolveVelocityConstraints(h float64) {
	if j.state != limitAtUpper {
		return
	}
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	vpA := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	vpB := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	cdot := math2d.Dot(j.u, math2d.Minus(vpB, vpA))

	impulse := -j.mass * cdot
	old := j.impulse
	if j.impulse+impulse < 0 {
		j.impulse += impulse
	} else {
		j.impulse = 0
	}
	impulse = j.impulse - old

	p := math2d.Mul(j.u, impulse)
	a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
	a.AngularVelocity -= iA * math2d.Cross(j.rA, p)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
	b.AngularVelocity += iB * math2d.Cross(j.rB, p)
}

func (j *Rope) SolvePositionConstraints(conf SolverConf) bool {
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
	c := math2d.ClampF(length-j.MaxLength, 0, conf.MaxLinearCorrection)

	crA := math2d.Cross(rA, u)
	crB := math2d.Cross(rB, u)
	invMass := mA + mB + iA*crA*crA + iB*crB*crB
	mass := 0.0
	if invMass > 0 {
		mass = 1 / invMass
	}

	impulse := -mass * c
	p := math2d.Mul(u, impulse)

	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * math2d.Cross(rA, p)
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * math2d.Cross(rB, p)
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return (length - j.MaxLength) < conf.LinearSlop
}

func (j *Rope) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.u, invH*j.impulse)
}

func (j *Rope) ReactionTorque(invH float64) float64 { return 0 }
