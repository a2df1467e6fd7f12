// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Prismatic constrains two bodies to slide along a shared axis — a
// point-to-line constraint plus an along-axis motor/limit, ported from
// `original_source/Box2D/Box2D/Dynamics/Joints/PrismaticJoint.cpp`.
type Prismatic struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	LocalAxisA                 math2d.Vec2 // unit
	localYAxisA                math2d.Vec2 // RPerp(LocalAxisA), derived
	ReferenceAngle             float64

	EnableMotor   bool
	MotorSpeed    float64
	MaxMotorForce float64

	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64

	axis, perp     math2d.Vec2
	s1, s2, a1, a2 float64
	motorMass      float64
	k              math2d.Mat33

	state        limitState
	impulse      math2d.Vec3
	motorImpulse float64
}

// NewPrismatic anchors a and b at the shared world point anchor, sliding
// along the world-space direction axis.
func NewPrismatic(a, b *body.Body, anchor, axis math2d.Vec2, collideConnected bool) *Prismatic {
	localAxis, _ := math2d.InvRotateVec(math2d.NewRot(a.Sweep.A1), axis).Unit()
	return &Prismatic{
		Base:           NewBase(a, b, collideConnected),
		LocalAnchorA:   a.LocalPoint(anchor),
		LocalAnchorB:   b.LocalPoint(anchor),
		LocalAxisA:     localAxis,
		localYAxisA:    math2d.RPerp(localAxis),
		ReferenceAngle: b.Sweep.A1 - a.Sweep.A1,
	}
}

func (j *Prismatic) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))
	d := math2d.Plus(math2d.Minus(math2d.Plus(b.Sweep.C1, rB), a.Sweep.C1), math2d.Mul(rA, -1))

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	j.axis = math2d.RotateVec(qA, j.LocalAxisA)
	j.a1 = math2d.Cross(math2d.Plus(d, rA), j.axis)
	j.a2 = math2d.Cross(rB, j.axis)
	j.motorMass = mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	if j.motorMass > 0 {
		j.motorMass = 1 / j.motorMass
	}

	j.perp = math2d.RotateVec(qA, j.localYAxisA)
	j.s1 = math2d.Cross(math2d.Plus(d, rA), j.perp)
	j.s2 = math2d.Cross(rB, j.perp)

	k11 := mA + mB + iA*j.s1*j.s1 + iB*j.s2*j.s2
	k12 := iA*j.s1 + iB*j.s2
	k13 := iA*j.s1*j.a1 + iB*j.s2*j.a2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1
	}
	k23 := iA*j.a1 + iB*j.a2
	k33 := mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	j.k = math2d.Mat33{
		Col1: math2d.Vec3{X: k11, Y: k12, Z: k13},
		Col2: math2d.Vec3{X: k12, Y: k22, Z: k23},
		Col3: math2d.Vec3{X: k13, Y: k23, Z: k33},
	}

	if j.EnableLimit {
		translation := math2d.Dot(j.axis, d)
		switch {
		case math.Abs(j.UpperTranslation-j.LowerTranslation) < 2*linearSlopDefault:
			j.state = limitEqual
		case translation <= j.LowerTranslation:
			if j.state != limitAtLower {
				j.state = limitAtLower
				j.impulse.Z = 0
			}
		case translation >= j.UpperTranslation:
			if j.state != limitAtUpper {
				j.state = limitAtUpper
				j.impulse.Z = 0
			}
		default:
			j.state = limitInactive
			j.impulse.Z = 0
		}
	} else {
		j.state = limitInactive
		j.impulse.Z = 0
	}

	if !j.EnableMotor {
		j.motorImpulse = 0
	}

	if warmStarting {
		j.impulse = math2d.Vec3{X: j.impulse.X * dtRatio, Y: j.impulse.Y * dtRatio, Z: j.impulse.Z * dtRatio}
		j.motorImpulse *= dtRatio

		axial := j.motorImpulse + j.impulse.Z
		p := math2d.Plus(math2d.Mul(j.perp, j.impulse.X), math2d.Mul(j.axis, axial))
		lA := j.impulse.X*j.s1 + j.impulse.Y + axial*j.a1
		lB := j.impulse.X*j.s2 + j.impulse.Y + axial*j.a2

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * lA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * lB
	} else {
		j.impulse = math2d.Vec3{}
		j.motorImpulse = 0
	}
}

func (j *Prismatic) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	vDelta := math2d.Minus(b.LinearVelocity, a.LinearVelocity)

	if j.EnableMotor && j.state != limitEqual {
		cdot := math2d.Dot(j.axis, vDelta) + j.a2*b.AngularVelocity - j.a1*a.AngularVelocity
		impulse := j.motorMass * (j.MotorSpeed - cdot)
		old := j.motorImpulse
		maxImpulse := h * j.MaxMotorForce
		j.motorImpulse = math2d.ClampF(j.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old

		p := math2d.Mul(j.axis, impulse)
		lA := impulse * j.a1
		lB := impulse * j.a2

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * lA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * lB

		vDelta = math2d.Minus(b.LinearVelocity, a.LinearVelocity)
	}

	cdot1 := math2d.Vec2{
		X: math2d.Dot(j.perp, vDelta) + j.s2*b.AngularVelocity - j.s1*a.AngularVelocity,
		Y: b.AngularVelocity - a.AngularVelocity,
	}

	if j.EnableLimit && j.state != limitInactive {
		cdot2 := math2d.Dot(j.axis, vDelta) + j.a2*b.AngularVelocity - j.a1*a.AngularVelocity
		cdot := math2d.Vec3{X: cdot1.X, Y: cdot1.Y, Z: cdot2}

		f1 := j.impulse
		solved := math2d.Solve33(j.k, math2d.Vec3{X: -cdot.X, Y: -cdot.Y, Z: -cdot.Z})
		j.impulse = addVec3(j.impulse, solved)

		switch j.state {
		case limitAtLower:
			j.impulse.Z = math.Max(j.impulse.Z, 0)
		case limitAtUpper:
			j.impulse.Z = math.Min(j.impulse.Z, 0)
		}

		bb := math2d.Minus(math2d.Mul(cdot1, -1), math2d.Mul(math2d.Vec2{X: j.k.Col3.X, Y: j.k.Col3.Y}, j.impulse.Z-f1.Z))
		f2r := math2d.Plus(math2d.Solve22Of33(j.k, bb), math2d.Vec2{X: f1.X, Y: f1.Y})
		j.impulse.X, j.impulse.Y = f2r.X, f2r.Y

		df := math2d.Vec3{X: j.impulse.X - f1.X, Y: j.impulse.Y - f1.Y, Z: j.impulse.Z - f1.Z}

		p := math2d.Plus(math2d.Mul(j.perp, df.X), math2d.Mul(j.axis, df.Z))
		lA := df.X*j.s1 + df.Y + df.Z*j.a1
		lB := df.X*j.s2 + df.Y + df.Z*j.a2

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * lA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * lB
	} else {
		df := math2d.Solve22Of33(j.k, math2d.Mul(cdot1, -1))
		j.impulse.X += df.X
		j.impulse.Y += df.Y

		p := math2d.Mul(j.perp, df.X)
		lA := df.X*j.s1 + df.Y
		lB := df.X*j.s2 + df.Y

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * lA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * lB
	}
}

func (j *Prismatic) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))
	d := math2d.Minus(math2d.Plus(b.Sweep.C1, rB), math2d.Plus(a.Sweep.C1, rA))

	axis := math2d.RotateVec(qA, j.LocalAxisA)
	a1 := math2d.Cross(math2d.Plus(d, rA), axis)
	a2 := math2d.Cross(rB, axis)
	perp := math2d.RotateVec(qA, j.localYAxisA)

	s1 := math2d.Cross(math2d.Plus(d, rA), perp)
	s2 := math2d.Cross(rB, perp)

	c1 := math2d.Vec2{X: math2d.Dot(perp, d), Y: b.Sweep.A1 - a.Sweep.A1 - j.ReferenceAngle}

	linearError := math.Abs(c1.X)
	angularError := math.Abs(c1.Y)

	active := false
	c2 := 0.0
	if j.EnableLimit {
		translation := math2d.Dot(axis, d)
		switch {
		case math.Abs(j.UpperTranslation-j.LowerTranslation) < 2*conf.LinearSlop:
			c2 = math2d.ClampF(translation, -conf.MaxLinearCorrection, conf.MaxLinearCorrection)
			linearError = math.Max(linearError, math.Abs(translation))
			active = true
		case translation <= j.LowerTranslation:
			c2 = math2d.ClampF(translation-j.LowerTranslation+conf.LinearSlop, -conf.MaxLinearCorrection, 0)
			linearError = math.Max(linearError, j.LowerTranslation-translation)
			active = true
		case translation >= j.UpperTranslation:
			c2 = math2d.ClampF(translation-j.UpperTranslation-conf.LinearSlop, 0, conf.MaxLinearCorrection)
			linearError = math.Max(linearError, translation-j.UpperTranslation)
			active = true
		}
	}

	var impulse math2d.Vec3
	k11 := mA + mB + iA*s1*s1 + iB*s2*s2
	k12 := iA*s1 + iB*s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1
	}

	if active {
		k13 := iA*s1*a1 + iB*s2*a2
		k23 := iA*a1 + iB*a2
		k33 := mA + mB + iA*a1*a1 + iB*a2*a2
		k := math2d.Mat33{
			Col1: math2d.Vec3{X: k11, Y: k12, Z: k13},
			Col2: math2d.Vec3{X: k12, Y: k22, Z: k23},
			Col3: math2d.Vec3{X: k13, Y: k23, Z: k33},
		}
		c := math2d.Vec3{X: c1.X, Y: c1.Y, Z: c2}
		impulse = math2d.Solve33(k, math2d.Vec3{X: -c.X, Y: -c.Y, Z: -c.Z})
	} else {
		k := math2d.Mat22{Col1: math2d.Vec2{X: k11, Y: k12}, Col2: math2d.Vec2{X: k12, Y: k22}}
		impulse1 := math2d.Solve22(k, math2d.Mul(c1, -1))
		impulse = math2d.Vec3{X: impulse1.X, Y: impulse1.Y, Z: 0}
	}

	p := math2d.Plus(math2d.Mul(perp, impulse.X), math2d.Mul(axis, impulse.Z))
	lA := impulse.X*s1 + impulse.Y + impulse.Z*a1
	lB := impulse.X*s2 + impulse.Y + impulse.Z*a2

	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * lA
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * lB
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return linearError <= conf.LinearSlop && angularError <= conf.AngularSlop
}

func (j *Prismatic) ReactionForce(invH float64) math2d.Vec2 {
	p := math2d.Plus(math2d.Mul(j.perp, j.impulse.X), math2d.Mul(j.axis, j.motorImpulse+j.impulse.Z))
	return math2d.Mul(p, invH)
}

func (j *Prismatic) ReactionTorque(invH float64) float64 { return invH * j.impulse.Y }

// linearSlopDefault mirrors Box2D's b2_linearSlop. Prismatic uses it to
// decide whether lower/upper translation limits have collapsed to one
// value; Pulley and Rope use it as their near-zero rope length guard.
const linearSlopDefault = 0.005
