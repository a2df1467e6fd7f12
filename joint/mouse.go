// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Mouse drags a single point on one body toward a moving world target,
// clamped to MaxForce — grounded by analogy on Box2D's classic
// b2MouseJoint (no retrieved source file). Only one body participates;
// BodyA is a fixed anchor of convenience (typically the static ground
// body, per the source's own constructor comment) and all the actual
// constraint math acts on BodyB. The source's soft spring/damper
// correction (Frequency/DampingRatio turned into gamma/beta terms) is
// dropped in favor of a plain `C/h` Baumgarte term, for the same
// reason Weld drops its soft angular mode: one fewer tunable, at the
// cost of a stiffer drag than a hand-tuned spring would give.
type Mouse struct {
	Base

	Target   math2d.Vec2
	MaxForce float64

	localAnchor math2d.Vec2
	rB          math2d.Vec2
	mass        math2d.Mat22

	impulse math2d.Vec2
	c0      math2d.Vec2
}

// NewMouse drags b's point currently at target toward wherever Target
// is later set to, using a as the (conventionally static) frame of
// reference the source's constructor expects.
func NewMouse(a, b *body.Body, target math2d.Vec2) *Mouse {
	return &Mouse{
		Base:        NewBase(a, b, false),
		Target:      target,
		localAnchor: b.LocalPoint(target),
	}
}

func (j *Mouse) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	b := j.B
	qB := math2d.NewRot(b.Sweep.A1)

	j.rB = math2d.RotateVec(qB, math2d.Minus(j.localAnchor, b.Sweep.LocalCenter))

	mB, iB := b.InvMass, b.InvI

	exx := mB + iB*j.rB.Y*j.rB.Y
	exy := -iB * j.rB.X * j.rB.Y
	eyy := mB + iB*j.rB.X*j.rB.X
	k := math2d.Mat22{Col1: math2d.Vec2{X: exx, Y: exy}, Col2: math2d.Vec2{X: exy, Y: eyy}}
	j.mass = k.Inverse()

	j.c0 = math2d.Minus(math2d.Plus(b.Sweep.C1, j.rB), j.Target)

	if warmStarting {
		j.impulse = math2d.Mul(j.impulse, dtRatio)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(j.impulse, mB))
		b.AngularVelocity += iB * math2d.Cross(j.rB, j.impulse)
	} else {
		j.impulse = math2d.Vec2{}
	}
}

func (j *Mouse) SolveVelocityConstraints(h float64) {
	b := j.B
	mB, iB := b.InvMass, b.InvI

	vB := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	cdot := math2d.Plus(vB, math2d.Mul(j.c0, 1/h))

	impulse := math2d.MulMat22(j.mass, math2d.Mul(cdot, -1))

	old := j.impulse
	j.impulse = math2d.Plus(j.impulse, impulse)
	maxImpulse := h * j.MaxForce
	if j.impulse.Len() > maxImpulse {
		unit, _ := j.impulse.Unit()
		j.impulse = math2d.Mul(unit, maxImpulse)
	}
	impulse = math2d.Minus(j.impulse, old)

	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(impulse, mB))
	b.AngularVelocity += iB * math2d.Cross(j.rB, impulse)
}

// SolvePositionConstraints is a no-op: the source treats this joint as
// a velocity-only soft constraint with no baumgarte position pass.
func (j *Mouse) SolvePositionConstraints(conf SolverConf) bool { return true }

func (j *Mouse) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.impulse, invH)
}

func (j *Mouse) ReactionTorque(invH float64) float64 { return 0 }
