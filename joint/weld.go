// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Weld locks two bodies into a fixed relative pose — a combined
// point-to-point and angle constraint solved as one 3x3 system, ported
// from `original_source/PlayRho/Dynamics/Joints/WeldJoint.cpp`. The
// source's soft spring/damper angular mode (active when Frequency>0) is
// dropped: this joint is always rigid.
type Weld struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	ReferenceAngle             float64

	rA, rB  math2d.Vec2
	mass    math2d.Mat33
	impulse math2d.Vec3
}

// NewWeld rigidly locks a and b at their current relative pose, anchored
// at the shared world point anchor.
func NewWeld(a, b *body.Body, anchor math2d.Vec2, collideConnected bool) *Weld {
	return &Weld{
		Base:           NewBase(a, b, collideConnected),
		LocalAnchorA:   a.LocalPoint(anchor),
		LocalAnchorB:   b.LocalPoint(anchor),
		ReferenceAngle: b.Sweep.A1 - a.Sweep.A1,
	}
}

func (j *Weld) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	exx := mA + j.rA.Y*j.rA.Y*iA + mB + j.rB.Y*j.rB.Y*iB
	eyx := -j.rA.Y*j.rA.X*iA - j.rB.Y*j.rB.X*iB
	ezx := -j.rA.Y*iA - j.rB.Y*iB
	eyy := mA + j.rA.X*j.rA.X*iA + mB + j.rB.X*j.rB.X*iB
	ezy := j.rA.X*iA + j.rB.X*iB
	ezz := iA + iB
	K := math2d.Mat33{
		Col1: math2d.Vec3{X: exx, Y: eyx, Z: ezx},
		Col2: math2d.Vec3{X: eyx, Y: eyy, Z: ezy},
		Col3: math2d.Vec3{X: ezx, Y: ezy, Z: ezz},
	}

	if ezz > 0 {
		j.mass = K.GetSymInverse33()
	} else {
		j.mass = K.GetInverse22()
	}

	if warmStarting {
		j.impulse = math2d.Vec3{X: j.impulse.X * dtRatio, Y: j.impulse.Y * dtRatio, Z: j.impulse.Z * dtRatio}

		p := math2d.Vec2{X: j.impulse.X, Y: j.impulse.Y}
		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * (math2d.Cross(j.rA, p) + j.impulse.Z)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * (math2d.Cross(j.rB, p) + j.impulse.Z)
	} else {
		j.impulse = math2d.Vec3{}
	}
}

func (j *Weld) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	vb := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	va := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	cdot1 := math2d.Minus(vb, va)
	cdot2 := b.AngularVelocity - a.AngularVelocity
	cdot := math2d.Vec3{X: cdot1.X, Y: cdot1.Y, Z: cdot2}

	impulse := math2d.MulMat33(j.mass, cdot)
	impulse = math2d.Vec3{X: -impulse.X, Y: -impulse.Y, Z: -impulse.Z}
	j.impulse = addVec3(j.impulse, impulse)

	p := math2d.Vec2{X: impulse.X, Y: impulse.Y}
	a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
	a.AngularVelocity -= iA * (math2d.Cross(j.rA, p) + impulse.Z)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
	b.AngularVelocity += iB * (math2d.Cross(j.rB, p) + impulse.Z)
}

func (j *Weld) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	exx := mA + rA.Y*rA.Y*iA + mB + rB.Y*rB.Y*iB
	eyx := -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	ezx := -rA.Y*iA - rB.Y*iB
	eyy := mA + rA.X*rA.X*iA + mB + rB.X*rB.X*iB
	ezy := rA.X*iA + rB.X*iB
	ezz := iA + iB
	K := math2d.Mat33{
		Col1: math2d.Vec3{X: exx, Y: eyx, Z: ezx},
		Col2: math2d.Vec3{X: eyx, Y: eyy, Z: ezy},
		Col3: math2d.Vec3{X: ezx, Y: ezy, Z: ezz},
	}

	c1 := math2d.Minus(math2d.Plus(b.Sweep.C1, rB), math2d.Plus(a.Sweep.C1, rA))
	c2 := b.Sweep.A1 - a.Sweep.A1 - j.ReferenceAngle

	positionError := c1.Len()
	angularError := math.Abs(c2)

	var impulse math2d.Vec3
	if ezz > 0 {
		c := math2d.Vec3{X: c1.X, Y: c1.Y, Z: c2}
		solved := math2d.Solve33(K, c)
		impulse = math2d.Vec3{X: -solved.X, Y: -solved.Y, Z: -solved.Z}
	} else {
		solved2 := math2d.Solve22Of33(K, c1)
		impulse = math2d.Vec3{X: -solved2.X, Y: -solved2.Y, Z: 0}
	}

	p := math2d.Vec2{X: impulse.X, Y: impulse.Y}
	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * (math2d.Cross(rA, p) + impulse.Z)
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * (math2d.Cross(rB, p) + impulse.Z)
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return positionError <= conf.LinearSlop && angularError <= conf.AngularSlop
}

func (j *Weld) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(math2d.Vec2{X: j.impulse.X, Y: j.impulse.Y}, invH)
}

func (j *Weld) ReactionTorque(invH float64) float64 { return invH * j.impulse.Z }
