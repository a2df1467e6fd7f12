// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Wheel constrains a body to slide along an axis fixed in another body
// (the same perpendicular point-to-line constraint and Jacobian terms as
// Prismatic's, computed in this file) plus an axis motor, grounded by analogy
// on Box2D's classic b2WheelJoint (no retrieved source file). The
// source's suspension spring (Frequency/DampingRatio along the axis)
// is dropped for the same reason Weld/Mouse drop their soft modes:
// the axis is left unconstrained rather than spring-loaded, so callers
// wanting suspension behavior should pair this with an external force.
type Wheel struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	LocalAxisA                 math2d.Vec2

	EnableMotor    bool
	MotorSpeed     float64
	MaxMotorTorque float64

	localYAxisA math2d.Vec2

	ax, ay             math2d.Vec2
	sAx, sBx, sAy, sBy float64

	mass        float64
	angularMass float64
	motorMass   float64

	impulse       float64
	springImpulse float64
	motorImpulse  float64
}

// NewWheel anchors a and b at anchor with the body-local sliding axis
// axis (given in world space at construction time).
func NewWheel(a, b *body.Body, anchor, axis math2d.Vec2, collideConnected bool) *Wheel {
	localAxis, _ := math2d.InvRotateVec(math2d.NewRot(a.Sweep.A1), axis).Unit()
	return &Wheel{
		Base:         NewBase(a, b, collideConnected),
		LocalAnchorA: a.LocalPoint(anchor),
		LocalAnchorB: b.LocalPoint(anchor),
		LocalAxisA:   localAxis,
		localYAxisA:  math2d.RPerp(localAxis),
	}
}

func (j *Wheel) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))
	d := math2d.Minus(math2d.Plus(math2d.Minus(b.Sweep.C1, a.Sweep.C1), rB), rA)

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	j.ay = math2d.RotateVec(qA, j.localYAxisA)
	j.sAy = math2d.Cross(math2d.Plus(d, rA), j.ay)
	j.sBy = math2d.Cross(rB, j.ay)

	invMass := mA + mB + iA*j.sAy*j.sAy + iB*j.sBy*j.sBy
	if invMass > 0 {
		j.mass = 1 / invMass
	} else {
		j.mass = 0
	}

	j.ax = math2d.RotateVec(qA, j.LocalAxisA)
	j.sAx = math2d.Cross(math2d.Plus(d, rA), j.ax)
	j.sBx = math2d.Cross(rB, j.ax)

	invMotorMass := mA + mB + iA*j.sAx*j.sAx + iB*j.sBx*j.sBx
	if invMotorMass > 0 {
		j.motorMass = 1 / invMotorMass
	} else {
		j.motorMass = 0
	}

	j.angularMass = iA + iB
	if j.angularMass > 0 {
		j.angularMass = 1 / j.angularMass
	}

	if !j.EnableMotor {
		j.motorImpulse = 0
	}

	if warmStarting {
		j.impulse *= dtRatio
		j.springImpulse *= dtRatio
		j.motorImpulse *= dtRatio

		p := math2d.Plus(math2d.Mul(j.ay, j.impulse), math2d.Mul(j.ax, j.springImpulse))
		lA := j.impulse*j.sAy + j.springImpulse*j.sAx + j.motorImpulse
		lB := j.impulse*j.sBy + j.springImpulse*j.sBx + j.motorImpulse

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * lA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * lB
	} else {
		j.impulse = 0
		j.springImpulse = 0
		j.motorImpulse = 0
	}
}

func (j *Wheel) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	if j.EnableMotor {
		cdot := b.AngularVelocity - a.AngularVelocity - j.MotorSpeed
		impulse := -j.angularMass * cdot
		old := j.motorImpulse
		maxImpulse := h * j.MaxMotorTorque
		j.motorImpulse = math2d.ClampF(j.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		a.AngularVelocity -= iA * impulse
		b.AngularVelocity += iB * impulse
	}

	cdot1 := math2d.Dot(j.ay, math2d.Minus(b.LinearVelocity, a.LinearVelocity)) + j.sBy*b.AngularVelocity - j.sAy*a.AngularVelocity
	impulse := -j.mass * cdot1
	j.impulse += impulse

	p := math2d.Mul(j.ay, impulse)
	la := impulse * j.sAy
	lb := impulse * j.sBy

	a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
	a.AngularVelocity -= iA * la
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
	b.AngularVelocity += iB * lb
}

func (j *Wheel) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))
	d := math2d.Minus(math2d.Plus(math2d.Minus(b.Sweep.C1, a.Sweep.C1), rB), rA)

	ay := math2d.RotateVec(qA, j.localYAxisA)
	sAy := math2d.Cross(math2d.Plus(d, rA), ay)
	sBy := math2d.Cross(rB, ay)

	c := math2d.Dot(d, ay)

	invMass := mA + mB + iA*sAy*sAy + iB*sBy*sBy
	impulse := 0.0
	if invMass > 0 {
		impulse = -c / invMass
	}

	p := math2d.Mul(ay, impulse)
	la := impulse * sAy
	lb := impulse * sBy

	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * la
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * lb
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return (c < 0 && -c <= conf.LinearSlop) || (c >= 0 && c <= conf.LinearSlop)
}

func (j *Wheel) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(math2d.Plus(math2d.Mul(j.ay, j.impulse), math2d.Mul(j.ax, j.springImpulse)), invH)
}

func (j *Wheel) ReactionTorque(invH float64) float64 { return invH * j.motorImpulse }
