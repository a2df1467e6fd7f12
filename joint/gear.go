// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Gear ties the coordinates of two existing revolute or prismatic joints
// together with a ratio: coordinateA + ratio*coordinateB stays constant,
// ported from `original_source/Box2D/Dynamics/Joints/GearJoint.cpp`. It
// touches four bodies — BodyA/BodyB are joint1/joint2's second body
// (the pair the shared Joint interface exposes), while bodyC/bodyD are
// joint1/joint2's first body, reached only through the two sub-joints'
// own edges for island purposes.
type Gear struct {
	Base

	Joint1, Joint2 Joint
	Ratio          float64

	bodyC, bodyD               *body.Body
	localAnchorA, localAnchorC math2d.Vec2
	localAnchorB, localAnchorD math2d.Vec2
	referenceAngleA            float64
	referenceAngleB            float64
	localAxisC, localAxisD     math2d.Vec2 // zero for a revolute sub-joint
	revoluteA, revoluteB       bool
	constant                   float64

	jvAC, jvBD         math2d.Vec2
	jwA, jwB, jwC, jwD float64
	mass               float64
	impulse            float64
}

// NewGear couples joint1 and joint2 at their current coordinates with the
// given ratio. Both sub-joints must be a *Revolute or *Prismatic.
func NewGear(joint1, joint2 Joint, ratio float64) *Gear {
	g := &Gear{
		Base:   NewBase(joint1.BodyB(), joint2.BodyB(), false),
		Joint1: joint1,
		Joint2: joint2,
		Ratio:  ratio,
		bodyC:  joint1.BodyA(),
		bodyD:  joint2.BodyA(),
	}

	a, c := g.A, g.bodyC
	var coordinateA float64
	switch j1 := joint1.(type) {
	case *Revolute:
		g.revoluteA = true
		g.localAnchorC = j1.LocalAnchorA
		g.localAnchorA = j1.LocalAnchorB
		g.referenceAngleA = j1.ReferenceAngle
		coordinateA = a.Sweep.A1 - c.Sweep.A1 - g.referenceAngleA
	case *Prismatic:
		g.localAnchorC = j1.LocalAnchorA
		g.localAnchorA = j1.LocalAnchorB
		g.referenceAngleA = j1.ReferenceAngle
		g.localAxisC = j1.LocalAxisA
		pA := c.LocalPoint(a.WorldPoint(g.localAnchorA))
		coordinateA = math2d.Dot(math2d.Minus(pA, g.localAnchorC), g.localAxisC)
	}

	b, d := g.B, g.bodyD
	var coordinateB float64
	switch j2 := joint2.(type) {
	case *Revolute:
		g.revoluteB = true
		g.localAnchorD = j2.LocalAnchorA
		g.localAnchorB = j2.LocalAnchorB
		g.referenceAngleB = j2.ReferenceAngle
		coordinateB = b.Sweep.A1 - d.Sweep.A1 - g.referenceAngleB
	case *Prismatic:
		g.localAnchorD = j2.LocalAnchorA
		g.localAnchorB = j2.LocalAnchorB
		g.referenceAngleB = j2.ReferenceAngle
		g.localAxisD = j2.LocalAxisA
		pB := d.LocalPoint(b.WorldPoint(g.localAnchorB))
		coordinateB = math2d.Dot(math2d.Minus(pB, g.localAnchorD), g.localAxisD)
	}

	g.constant = coordinateA + ratio*coordinateB
	return g
}

func (j *Gear) InitVelocityConstraints(h, dtRatio float64, warmStarting bool) {
	a, b, c, d := j.A, j.B, j.bodyC, j.bodyD
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	qC, qD := math2d.NewRot(c.Sweep.A1), math2d.NewRot(d.Sweep.A1)

	invMass := 0.0

	if j.revoluteA {
		j.jvAC = math2d.Vec2{}
		j.jwA, j.jwC = 1, 1
		invMass += a.InvI + c.InvI
	} else {
		u := math2d.RotateVec(qC, j.localAxisC)
		rC := math2d.RotateVec(qC, math2d.Minus(j.localAnchorC, c.Sweep.LocalCenter))
		rA := math2d.RotateVec(qA, math2d.Minus(j.localAnchorA, a.Sweep.LocalCenter))
		j.jvAC = u
		j.jwC = math2d.Cross(rC, u)
		j.jwA = math2d.Cross(rA, u)
		invMass += c.InvMass + a.InvMass + c.InvI*j.jwC*j.jwC + a.InvI*j.jwA*j.jwA
	}

	if j.revoluteB {
		j.jvBD = math2d.Vec2{}
		j.jwB, j.jwD = j.Ratio, j.Ratio
		invMass += j.Ratio * j.Ratio * (b.InvI + d.InvI)
	} else {
		u := math2d.RotateVec(qD, j.localAxisD)
		rD := math2d.RotateVec(qD, math2d.Minus(j.localAnchorD, d.Sweep.LocalCenter))
		rB := math2d.RotateVec(qB, math2d.Minus(j.localAnchorB, b.Sweep.LocalCenter))
		j.jvBD = math2d.Mul(u, j.Ratio)
		j.jwD = j.Ratio * math2d.Cross(rD, u)
		j.jwB = j.Ratio * math2d.Cross(rB, u)
		invMass += j.Ratio*j.Ratio*(d.InvMass+b.InvMass) + d.InvI*j.jwD*j.jwD + b.InvI*j.jwB*j.jwB
	}

	if invMass > 0 {
		j.mass = 1 / invMass
	} else {
		j.mass = 0
	}

	if warmStarting {
		j.impulse *= dtRatio
		a.LinearVelocity = math2d.Plus(a.LinearVelocity, math2d.Mul(j.jvAC, a.InvMass*j.impulse))
		a.AngularVelocity += a.InvI * j.impulse * j.jwA
		b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(j.jvBD, b.InvMass*j.impulse))
		b.AngularVelocity += b.InvI * j.impulse * j.jwB
		c.LinearVelocity = math2d.Minus(c.LinearVelocity, math2d.Mul(j.jvAC, c.InvMass*j.impulse))
		c.AngularVelocity -= c.InvI * j.impulse * j.jwC
		d.LinearVelocity = math2d.Minus(d.LinearVelocity, math2d.Mul(j.jvBD, d.InvMass*j.impulse))
		d.AngularVelocity -= d.InvI * j.impulse * j.jwD
	} else {
		j.impulse = 0
	}
}

func (j *Gear) SolveVelocityConstraints(h float64) {
	a, b, c, d := j.A, j.B, j.bodyC, j.bodyD

	acDot := math2d.Dot(j.jvAC, math2d.Minus(a.LinearVelocity, c.LinearVelocity))
	bdDot := math2d.Dot(j.jvBD, math2d.Minus(b.LinearVelocity, d.LinearVelocity))
	cdot := acDot + bdDot + j.jwA*a.AngularVelocity - j.jwC*c.AngularVelocity + j.jwB*b.AngularVelocity - j.jwD*d.AngularVelocity

	impulse := -j.mass * cdot
	j.impulse += impulse

	a.LinearVelocity = math2d.Plus(a.LinearVelocity, math2d.Mul(j.jvAC, a.InvMass*impulse))
	a.AngularVelocity += a.InvI * impulse * j.jwA
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(j.jvBD, b.InvMass*impulse))
	b.AngularVelocity += b.InvI * impulse * j.jwB
	c.LinearVelocity = math2d.Minus(c.LinearVelocity, math2d.Mul(j.jvAC, c.InvMass*impulse))
	c.AngularVelocity -= c.InvI * impulse * j.jwC
	d.LinearVelocity = math2d.Minus(d.LinearVelocity, math2d.Mul(j.jvBD, d.InvMass*impulse))
	d.AngularVelocity -= d.InvI * impulse * j.jwD
}

func (j *Gear) SolvePositionConstraints(conf SolverConf) bool {
	a, b, c, d := j.A, j.B, j.bodyC, j.bodyD
	qA, qB := math2d.NewRot(a.Sweep.A1), math2d.NewRot(b.Sweep.A1)
	qC, qD := math2d.NewRot(c.Sweep.A1), math2d.NewRot(d.Sweep.A1)

	var jvAC, jvBD math2d.Vec2
	var jwA, jwB, jwC, jwD float64
	var coordinateA, coordinateB, invMass float64

	if j.revoluteA {
		jwA, jwC = 1, 1
		invMass += a.InvI + c.InvI
		coordinateA = a.Sweep.A1 - c.Sweep.A1 - j.referenceAngleA
	} else {
		u := math2d.RotateVec(qC, j.localAxisC)
		rC := math2d.RotateVec(qC, math2d.Minus(j.localAnchorC, c.Sweep.LocalCenter))
		rA := math2d.RotateVec(qA, math2d.Minus(j.localAnchorA, a.Sweep.LocalCenter))
		jvAC = u
		jwC = math2d.Cross(rC, u)
		jwA = math2d.Cross(rA, u)
		invMass += c.InvMass + a.InvMass + c.InvI*jwC*jwC + a.InvI*jwA*jwA

		pC := math2d.Minus(j.localAnchorC, c.Sweep.LocalCenter)
		pA := math2d.InvRotateVec(qC, math2d.Plus(rA, math2d.Minus(a.Sweep.C1, c.Sweep.C1)))
		coordinateA = math2d.Dot(math2d.Minus(pA, pC), j.localAxisC)
	}

	if j.revoluteB {
		jwB, jwD = j.Ratio, j.Ratio
		invMass += j.Ratio * j.Ratio * (b.InvI + d.InvI)
		coordinateB = b.Sweep.A1 - d.Sweep.A1 - j.referenceAngleB
	} else {
		u := math2d.RotateVec(qD, j.localAxisD)
		rD := math2d.RotateVec(qD, math2d.Minus(j.localAnchorD, d.Sweep.LocalCenter))
		rB := math2d.RotateVec(qB, math2d.Minus(j.localAnchorB, b.Sweep.LocalCenter))
		jvBD = math2d.Mul(u, j.Ratio)
		jwD = j.Ratio * math2d.Cross(rD, u)
		jwB = j.Ratio * math2d.Cross(rB, u)
		invMass += j.Ratio*j.Ratio*(d.InvMass+b.InvMass) + d.InvI*jwD*jwD + b.InvI*jwB*jwB

		pD := math2d.Minus(j.localAnchorD, d.Sweep.LocalCenter)
		pB := math2d.InvRotateVec(qD, math2d.Plus(rB, math2d.Minus(b.Sweep.C1, d.Sweep.C1)))
		coordinateB = math2d.Dot(math2d.Minus(pB, pD), j.localAxisD)
	}

	c3 := (coordinateA + j.Ratio*coordinateB) - j.constant

	impulse := 0.0
	if invMass > 0 {
		impulse = -c3 / invMass
	}

	a.Sweep.C1 = math2d.Plus(a.Sweep.C1, math2d.Mul(jvAC, a.InvMass*impulse))
	a.Sweep.A1 += a.InvI * impulse * jwA
	b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(jvBD, b.InvMass*impulse))
	b.Sweep.A1 += b.InvI * impulse * jwB
	c.Sweep.C1 = math2d.Minus(c.Sweep.C1, math2d.Mul(jvAC, c.InvMass*impulse))
	c.Sweep.A1 -= c.InvI * impulse * jwC
	d.Sweep.C1 = math2d.Minus(d.Sweep.C1, math2d.Mul(jvBD, d.InvMass*impulse))
	d.Sweep.A1 -= d.InvI * impulse * jwD
	a.SynchronizeTransform()
	b.SynchronizeTransform()
	c.SynchronizeTransform()
	d.SynchronizeTransform()

	return math.Abs(c3) <= conf.LinearSlop
}

func (j *Gear) ReactionForce(invH float64) math2d.Vec2 {
	return math2d.Mul(j.jvAC, invH*j.impulse)
}

func (j *Gear) ReactionTorque(invH float64) float64 { return invH * j.impulse * j.jwA }
