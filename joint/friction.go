// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Friction resists relative linear and angular velocity between two
// bodies up to MaxForce/MaxTorque, with no positional constraint at
// all — grounded by analogy on Box2D's classic b2FrictionJoint (no
// retrieved source file). Used to damp small parts resting against
// each other without a separate contact pair.
type Friction struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	MaxForce                   float64
	MaxTorque                  float64

	rA, rB      math2d.Vec2
	linearMass  math2d.Mat22
	angularMass float64

	linearImpulse  math2d.Vec2
	angularImpulse float64
}

// NewFriction anchors a and b at the shared world point anchor.
func NewFriction(a, b *body.Body, anchor math2d.Vec2, collideConnected bool) *Friction {
	return &Friction{
		Base:         NewBase(a, b, collideConnected),
		LocalAnchorA: a.LocalPoint(anchor),
		LocalAnchorB: b.LocalPoint(anchor),
	}
}

func (j *Friction) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	j.angularMass = iA + iB
	if j.angularMass > 0 {
		j.angularMass = 1 / j.angularMass
	}

	exx := mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	exy := -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	eyy := mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X
	k := math2d.Mat22{Col1: math2d.Vec2{X: exx, Y: exy}, Col2: math2d.Vec2{X: exy, Y: eyy}}
	j.linearMass = k.Inverse()

	if warmStarting {
		j.linearImpulse = math2d.Mul(j.linearImpulse, dtRatio)
		j.angularImpulse *= dtRatio

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(j.linearImpulse, mA))
		a.AngularVelocity -= iA * (math2d.Cross(j.rA, j.linearImpulse) + j.angularImpulse)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(j.linearImpulse, mB))
		b.AngularVelocity += iB * (math2d.Cross(j.rB, j.linearImpulse) + j.angularImpulse)
	} else {
		j.linearImpulse = math2d.Vec2{}
		j.angularImpulse = 0
	}
}

func (j *Friction) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	cdotAngular := b.AngularVelocity - a.AngularVelocity
	angularImpulse := -j.angularMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := h * j.MaxTorque
	j.angularImpulse = math2d.ClampF(j.angularImpulse+angularImpulse, -maxImpulse, maxImpulse)
	angularImpulse = j.angularImpulse - old
	a.AngularVelocity -= iA * angularImpulse
	b.AngularVelocity += iB * angularImpulse

	vb := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	va := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	cdot := math2d.Minus(vb, va)

	impulse := math2d.MulMat22(j.linearMass, math2d.Mul(cdot, -1))
	oldLinear := j.linearImpulse
	j.linearImpulse = math2d.Plus(j.linearImpulse, impulse)

	maxLinearImpulse := h * j.MaxForce
	if j.linearImpulse.Len() > maxLinearImpulse {
		unit, _ := j.linearImpulse.Unit()
		j.linearImpulse = math2d.Mul(unit, maxLinearImpulse)
	}
	impulse = math2d.Minus(j.linearImpulse, oldLinear)

	a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(impulse, mA))
	a.AngularVelocity -= iA * math2d.Cross(j.rA, impulse)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(impulse, mB))
	b.AngularVelocity += iB * math2d.Cross(j.rB, impulse)
}

// SolvePositionConstraints is a no-op: friction has no position drift
// to correct, only a velocity limit.
func (j *Friction) SolvePositionConstraints(conf SolverConf) bool { return true }

func (j *Friction) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.linearImpulse, invH)
}

func (j *Friction) ReactionTorque(invH float64) float64 { return invH * j.angularImpulse }
