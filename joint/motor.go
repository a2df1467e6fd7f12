// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Motor drives body B toward a target linear offset and angle relative
// to body A, purely by velocity servo (no anchors, no position pass) —
// grounded by analogy on Box2D's classic b2MotorJoint (no retrieved
// source file). Typically used to puppet a character's body with a
// kinematic or player-controlled reference frame.
type Motor struct {
	Base

	LinearOffset     math2d.Vec2
	AngularOffset    float64
	MaxForce         float64
	MaxTorque        float64
	CorrectionFactor float64

	rA, rB       math2d.Vec2
	linearError  math2d.Vec2
	angularError float64
	linearMass   math2d.Mat22
	angularMass  float64

	linearImpulse  math2d.Vec2
	angularImpulse float64
}

// NewMotor servos b toward a's current pose offset by LinearOffset and
// AngularOffset, which the caller should set afterward.
func NewMotor(a, b *body.Body) *Motor {
	return &Motor{
		Base:             NewBase(a, b, true),
		CorrectionFactor: 0.3,
	}
}

func (j *Motor) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Mul(a.Sweep.LocalCenter, -1))
	j.rB = math2d.RotateVec(qB, math2d.Mul(b.Sweep.LocalCenter, -1))

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	exx := mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	exy := -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	eyy := mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X
	k := math2d.Mat22{Col1: math2d.Vec2{X: exx, Y: exy}, Col2: math2d.Vec2{X: exy, Y: eyy}}
	j.linearMass = k.Inverse()

	j.angularMass = iA + iB
	if j.angularMass > 0 {
		j.angularMass = 1 / j.angularMass
	}

	j.linearError = math2d.Minus(math2d.Minus(math2d.Plus(b.Sweep.C1, j.rB), math2d.Plus(a.Sweep.C1, j.rA)), j.LinearOffset)
	j.angularError = b.Sweep.A1 - a.Sweep.A1 - j.AngularOffset

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

func (j *Motor) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	invH := 1 / h

	cdotAngular := b.AngularVelocity - a.AngularVelocity + invH*j.CorrectionFactor*j.angularError
	angularImpulse := -j.angularMass * cdotAngular
	old := j.angularImpulse
	maxImpulse := h * j.MaxTorque
	j.angularImpulse = math2d.ClampF(j.angularImpulse+angularImpulse, -maxImpulse, maxImpulse)
	angularImpulse = j.angularImpulse - old
	a.AngularVelocity -= iA * angularImpulse
	b.AngularVelocity += iB * angularImpulse

	vb := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	va := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	cdot := math2d.Plus(math2d.Minus(vb, va), math2d.Mul(j.linearError, invH*j.CorrectionFactor))

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

// SolvePositionConstraints is a no-op: the position error is corrected
// by the velocity servo's CorrectionFactor term, same as the source.
func (j *Motor) SolvePositionConstraints(conf SolverConf) bool { return true }

func (j *Motor) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.linearImpulse, invH)
}

func (j *Motor) ReactionTorque(invH float64) float64 { return invH * j.angularImpulse }
