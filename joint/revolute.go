// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// limitState mirrors Box2D's RevoluteJoint::LimitState: which side (if
// any) of the angular limit is currently active.
type limitState int

const (
	limitInactive limitState = iota
	limitAtLower
	limitAtUpper
	limitEqual
)

// Revolute pins two bodies together at a shared point and optionally
// constrains or motors the angle between them — a point-to-point
// constraint plus an angular motor/limit, ported from
// `original_source/PlayRho/Dynamics/Joints/RevoluteJoint.cpp`.
type Revolute struct {
	Base

	LocalAnchorA, LocalAnchorB math2d.Vec2
	ReferenceAngle             float64

	EnableMotor    bool
	MotorSpeed     float64
	MaxMotorTorque float64

	EnableLimit bool
	LowerAngle  float64
	UpperAngle  float64

	rA, rB    math2d.Vec2
	mass      math2d.Mat33 // point-to-point (2x2) plus angle row/col
	motorMass float64

	state        limitState
	impulse      math2d.Vec3
	motorImpulse float64
}

// NewRevolute anchors a and b at the shared world point anchor.
func NewRevolute(a, b *body.Body, anchor math2d.Vec2, collideConnected bool) *Revolute {
	return &Revolute{
		Base:           NewBase(a, b, collideConnected),
		LocalAnchorA:   a.LocalPoint(anchor),
		LocalAnchorB:   b.LocalPoint(anchor),
		ReferenceAngle: b.Sweep.A1 - a.Sweep.A1,
	}
}

func (j *Revolute) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b := j.A, j.B
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)

	j.rA = math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	j.rB = math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	fixedRotation := iA+iB == 0

	exx := mA + j.rA.Y*j.rA.Y*iA + mB + j.rB.Y*j.rB.Y*iB
	eyx := -j.rA.Y*j.rA.X*iA - j.rB.Y*j.rB.X*iB
	ezx := -j.rA.Y*iA - j.rB.Y*iB
	eyy := mA + j.rA.X*j.rA.X*iA + mB + j.rB.X*j.rB.X*iB
	ezy := j.rA.X*iA + j.rB.X*iB
	ezz := iA + iB
	j.mass = math2d.Mat33{
		Col1: math2d.Vec3{X: exx, Y: eyx, Z: ezx},
		Col2: math2d.Vec3{X: eyx, Y: eyy, Z: ezy},
		Col3: math2d.Vec3{X: ezx, Y: ezy, Z: ezz},
	}

	if ezz > 0 {
		j.motorMass = 1 / ezz
	} else {
		j.motorMass = 0
	}
	if !j.EnableMotor || fixedRotation {
		j.motorImpulse = 0
	}

	if j.EnableLimit && !fixedRotation {
		angle := b.Sweep.A1 - a.Sweep.A1 - j.ReferenceAngle
		switch {
		case math.Abs(j.UpperAngle-j.LowerAngle) < 2*angularSlopDefault:
			j.state = limitEqual
		case angle <= j.LowerAngle:
			if j.state != limitAtLower {
				j.impulse.Z = 0
			}
			j.state = limitAtLower
		case angle >= j.UpperAngle:
			if j.state != limitAtUpper {
				j.impulse.Z = 0
			}
			j.state = limitAtUpper
		default:
			j.state = limitInactive
			j.impulse.Z = 0
		}
	} else {
		j.state = limitInactive
	}

	if warmStarting {
		j.impulse = math2d.Vec3{X: j.impulse.X * dtRatio, Y: j.impulse.Y * dtRatio, Z: j.impulse.Z * dtRatio}
		j.motorImpulse *= dtRatio

		p := math2d.Vec2{X: j.impulse.X, Y: j.impulse.Y}
		l := j.motorImpulse + j.impulse.Z
		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * (math2d.Cross(j.rA, p) + l)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * (math2d.Cross(j.rB, p) + l)
	} else {
		j.impulse = math2d.Vec3{}
		j.motorImpulse = 0
	}
}

func (j *Revolute) SolveVelocityConstraints(h float64) {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	fixedRotation := iA+iB == 0

	if j.EnableMotor && j.state != limitEqual && !fixedRotation {
		cdot := b.AngularVelocity - a.AngularVelocity - j.MotorSpeed
		impulse := -j.motorMass * cdot
		old := j.motorImpulse
		maxImpulse := h * j.MaxMotorTorque
		j.motorImpulse = math2d.ClampF(j.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - old
		a.AngularVelocity -= iA * impulse
		b.AngularVelocity += iB * impulse
	}

	vb := math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, j.rB))
	va := math2d.Plus(a.LinearVelocity, math2d.CrossSV(a.AngularVelocity, j.rA))
	vDelta := math2d.Minus(vb, va)

	if j.EnableLimit && j.state != limitInactive && !fixedRotation {
		cdot := math2d.Vec3{X: vDelta.X, Y: vDelta.Y, Z: b.AngularVelocity - a.AngularVelocity}
		solved := math2d.Solve33(j.mass, cdot)
		impulse := math2d.Vec3{X: -solved.X, Y: -solved.Y, Z: -solved.Z}

		switch j.state {
		case limitEqual:
			j.impulse = addVec3(j.impulse, impulse)
		case limitAtLower:
			newImpulse := j.impulse.Z + impulse.Z
			if newImpulse < 0 {
				impulse = j.reducedLimitImpulse(vDelta)
			} else {
				j.impulse = addVec3(j.impulse, impulse)
			}
		case limitAtUpper:
			newImpulse := j.impulse.Z + impulse.Z
			if newImpulse > 0 {
				impulse = j.reducedLimitImpulse(vDelta)
			} else {
				j.impulse = addVec3(j.impulse, impulse)
			}
		}

		p := math2d.Vec2{X: impulse.X, Y: impulse.Y}
		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(p, mA))
		a.AngularVelocity -= iA * (math2d.Cross(j.rA, p) + impulse.Z)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(p, mB))
		b.AngularVelocity += iB * (math2d.Cross(j.rB, p) + impulse.Z)
	} else {
		impulse := math2d.Solve22Of33(j.mass, math2d.Mul(vDelta, -1))
		j.impulse.X += impulse.X
		j.impulse.Y += impulse.Y

		a.LinearVelocity = math2d.Minus(a.LinearVelocity, math2d.Mul(impulse, mA))
		a.AngularVelocity -= iA * math2d.Cross(j.rA, impulse)
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(impulse, mB))
		b.AngularVelocity += iB * math2d.Cross(j.rB, impulse)
	}
}

// reducedLimitImpulse solves the point-to-point rows only, forcing the
// limit row's contribution to zero — Box2D's "UpdateImpulseProc" for when
// the naive 3x3 solve would pull the limit impulse the wrong way.
func (j *Revolute) reducedLimitImpulse(vDelta math2d.Vec2) math2d.Vec3 {
	col3xy := math2d.Mul(math2d.Vec2{X: j.mass.Col3.X, Y: j.mass.Col3.Y}, j.impulse.Z)
	rhs := math2d.Plus(math2d.Mul(vDelta, -1), col3xy)
	reduced := math2d.Solve22Of33(j.mass, rhs)
	old := j.impulse.Z
	j.impulse.X += reduced.X
	j.impulse.Y += reduced.Y
	j.impulse.Z = 0
	return math2d.Vec3{X: reduced.X, Y: reduced.Y, Z: -old}
}

func (j *Revolute) SolvePositionConstraints(conf SolverConf) bool {
	a, b := j.A, j.B
	mA, mB := a.InvMass, b.InvMass
	iA, iB := a.InvI, b.InvI
	fixedRotation := iA+iB == 0

	angularError := 0.0
	if j.EnableLimit && j.state != limitInactive && !fixedRotation {
		angle := b.Sweep.A1 - a.Sweep.A1 - j.ReferenceAngle
		limitImpulse := 0.0

		switch j.state {
		case limitEqual:
			c := math2d.ClampF(angle-j.LowerAngle, -conf.MaxAngularCorrection, conf.MaxAngularCorrection)
			limitImpulse = -j.motorMass * c
			angularError = math.Abs(c)
		case limitAtLower:
			c := angle - j.LowerAngle
			angularError = -c
			c = math2d.ClampF(c+conf.AngularSlop, -conf.MaxAngularCorrection, 0)
			limitImpulse = -j.motorMass * c
		case limitAtUpper:
			c := angle - j.UpperAngle
			angularError = c
			c = math2d.ClampF(c-conf.AngularSlop, 0, conf.MaxAngularCorrection)
			limitImpulse = -j.motorMass * c
		}
		a.Sweep.A1 -= iA * limitImpulse
		b.Sweep.A1 += iB * limitImpulse
	}

	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	rA := math2d.RotateVec(qA, math2d.Minus(j.LocalAnchorA, a.Sweep.LocalCenter))
	rB := math2d.RotateVec(qB, math2d.Minus(j.LocalAnchorB, b.Sweep.LocalCenter))

	c := math2d.Minus(math2d.Plus(b.Sweep.C1, rB), math2d.Plus(a.Sweep.C1, rA))
	positionError := c.Len()

	exx := mA + rA.Y*rA.Y*iA + mB + rB.Y*rB.Y*iB
	exy := -rA.X*rA.Y*iA - rB.X*rB.Y*iB
	eyy := mA + rA.X*rA.X*iA + mB + rB.X*rB.X*iB
	k := math2d.Mat22{Col1: math2d.Vec2{X: exx, Y: exy}, Col2: math2d.Vec2{X: exy, Y: eyy}}
	p := math2d.Mul(math2d.Solve22(k, c), -1)

	a.Sweep.C1 = math2d.Minus(a.Sweep.C1, math2d.Mul(p, mA))
	a.Sweep.A1 -= iA * math2d.Cross(rA, p)
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(p, mB))
	b.Sweep.A1 += iB * math2d.Cross(rB, p)
	a.SynchronizeTransform()
	b.SynchronizeTransform()

	return positionError <= conf.LinearSlop && angularError <= conf.AngularSlop
}

func (j *Revolute) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(math2d.Vec2{X: j.impulse.X, Y: j.impulse.Y}, invH)
}

func (j *Revolute) ReactionTorque(invH float64) float64 { return invH * j.impulse.Z }

// angularSlopDefault mirrors Box2D's 2°-in-radians constant used only to
// decide whether the limit's lower/upper bounds have collapsed to one
// value; the real slop used for convergence comes from SolverConf.
const angularSlopDefault = 2.0 / 180.0 * math.Pi

func addVec3(a, b math2d.Vec3) math2d.Vec3 {
	return math2d.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}
