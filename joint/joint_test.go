// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package joint

import (
	"math"
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func diskBody(t body.Type, x, y float64) *body.Body {
	b := body.New(t, math2d.Vec2{X: x, Y: y}, 0)
	if t == body.Dynamic {
		f := body.NewFixture(shape.NewDisk(0.5), 1)
		f.Body = b
		b.Fixtures = append(b.Fixtures, f)
		b.ResetMassData()
	}
	return b
}

const testH = 1.0 / 60.0

func TestRevoluteSolveVelocityRemovesAnchorRelativeVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{Y: 5}

	j := NewRevolute(a, b, math2d.Vec2{X: 0, Y: 0}, false)
	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	v := b.VelocityAtWorldPoint(math2d.Vec2{X: 0, Y: 0})
	if math.Abs(v.X) > 1e-6 || math.Abs(v.Y) > 1e-6 {
		t.Fatalf("expected the pinned point's velocity to vanish, got %+v", v)
	}
}

func TestRevoluteMotorDrivesTowardTargetSpeed(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)

	j := NewRevolute(a, b, math2d.Vec2{X: 0, Y: 0}, false)
	j.EnableMotor = true
	j.MotorSpeed = 3
	j.MaxMotorTorque = 1000

	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	// The motor and the point constraint are solved in turn. For a disk
	// pivoted one unit from its center, InvI is 8*InvMass, so each
	// iteration closes 1/9 of the remaining gap to MotorSpeed.
	want := j.MotorSpeed * (1 - math.Pow(8.0/9.0, 8))
	if math.Abs(b.AngularVelocity-want) > 1e-6 {
		t.Fatalf("expected the motor to drive angular velocity toward %v, reaching %v after 8 iterations, got %v", j.MotorSpeed, want, b.AngularVelocity)
	}
}

func TestRevoluteLimitStopsAtUpperAngle(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.AngularVelocity = 10

	j := NewRevolute(a, b, math2d.Vec2{X: 0, Y: 0}, false)
	j.EnableLimit = true
	j.LowerAngle = -0.1
	j.UpperAngle = 0.1

	for step := 0; step < 30; step++ {
		j.InitVelocityConstraints(testH, 1, true)
		for i := 0; i < 4; i++ {
			j.SolveVelocityConstraints(testH)
		}
		b.Sweep.A1 += b.AngularVelocity * testH
		b.SynchronizeTransform()
		for i := 0; i < 4; i++ {
			j.SolvePositionConstraints(SolverConf{LinearSlop: 0.005, AngularSlop: 2.0 / 180.0 * math.Pi, MaxLinearCorrection: 0.2, MaxAngularCorrection: 0.2})
		}
	}

	if b.Sweep.A1 > j.UpperAngle+0.05 {
		t.Fatalf("expected the limit to stop rotation near %v, got angle %v", j.UpperAngle, b.Sweep.A1)
	}
}

func TestWeldLocksRelativeVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{Y: 5}
	b.AngularVelocity = 2

	j := NewWeld(a, b, math2d.Vec2{X: 0.5, Y: 0}, false)
	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if math.Abs(b.AngularVelocity) > 1e-6 {
		t.Fatalf("expected weld to zero relative angular velocity, got %v", b.AngularVelocity)
	}
	v := b.VelocityAtWorldPoint(math2d.Vec2{X: 0.5, Y: 0})
	if math.Abs(v.X) > 1e-6 || math.Abs(v.Y) > 1e-6 {
		t.Fatalf("expected weld to zero the anchor point's velocity, got %+v", v)
	}
}

func TestPrismaticRemovesPerpendicularVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{X: 2, Y: 5}

	j := NewPrismatic(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 1, Y: 0}, false)
	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if math.Abs(b.LinearVelocity.Y) > 1e-6 {
		t.Fatalf("expected prismatic joint to remove velocity off its axis, got Y=%v", b.LinearVelocity.Y)
	}
	if math.Abs(b.LinearVelocity.X-2) > 1e-6 {
		t.Fatalf("expected prismatic joint to leave on-axis velocity alone, got X=%v", b.LinearVelocity.X)
	}
}

func TestPrismaticMotorDrivesAlongAxis(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)

	j := NewPrismatic(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 1, Y: 0}, false)
	j.EnableMotor = true
	j.MotorSpeed = 4
	j.MaxMotorForce = 1000

	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if math.Abs(b.LinearVelocity.X-j.MotorSpeed) > 1e-6 {
		t.Fatalf("expected the motor to drive axis velocity to %v, got %v", j.MotorSpeed, b.LinearVelocity.X)
	}
}

func TestGearCouplesTwoRevoluteCoordinates(t *testing.T) {
	c := diskBody(body.Static, 0, 0)
	a := diskBody(body.Dynamic, 1, 0)
	d := diskBody(body.Static, 5, 0)
	bb := diskBody(body.Dynamic, 6, 0)

	j1 := NewRevolute(c, a, math2d.Vec2{X: 0, Y: 0}, false)
	j2 := NewRevolute(d, bb, math2d.Vec2{X: 5, Y: 0}, false)
	ratio := 1.5

	a.AngularVelocity = 2

	g := NewGear(j1, j2, ratio)
	g.InitVelocityConstraints(testH, 1, false)
	g.SolveVelocityConstraints(testH)

	residual := a.AngularVelocity + ratio*bb.AngularVelocity
	if math.Abs(residual) > 1e-6 {
		t.Fatalf("expected wA+ratio*wB to settle near 0, got %v (wA=%v wB=%v)", residual, a.AngularVelocity, bb.AngularVelocity)
	}
}

func TestDistanceRemovesStretchingVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 2, 0)
	b.LinearVelocity = math2d.Vec2{X: 3}

	j := NewDistance(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 2, Y: 0}, false)
	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if math.Abs(b.LinearVelocity.X) > 1e-6 {
		t.Fatalf("expected the rigid distance constraint to remove stretching velocity, got %v", b.LinearVelocity.X)
	}
}

func TestRopeIgnoresSlackVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{X: 3}

	j := NewRope(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 1, Y: 0}, 5, false)
	j.InitVelocityConstraints(testH, 1, false)
	if j.state != limitInactive {
		t.Fatalf("expected a slack rope well under MaxLength to be inactive, got state %v", j.state)
	}

	before := b.LinearVelocity
	j.SolveVelocityConstraints(testH)
	if b.LinearVelocity != before {
		t.Fatalf("expected an inactive rope to leave velocity untouched, got %+v want %+v", b.LinearVelocity, before)
	}
}

func TestRopeResistsStretchingPastMaxLength(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 5, 0)
	b.LinearVelocity = math2d.Vec2{X: 3}

	j := NewRope(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 5, Y: 0}, 5, false)
	j.InitVelocityConstraints(testH, 1, false)
	if j.state != limitAtUpper {
		t.Fatalf("expected a taut rope at MaxLength to be active, got state %v", j.state)
	}
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if b.LinearVelocity.X > 1e-6 {
		t.Fatalf("expected the taut rope to stop further stretching, got %v", b.LinearVelocity.X)
	}
}

func TestFrictionDampsRelativeVelocity(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{X: 0.05}

	j := NewFriction(a, b, math2d.Vec2{X: 0.5, Y: 0}, false)
	j.MaxForce = 1000
	j.MaxTorque = 1000

	j.InitVelocityConstraints(testH, 1, false)
	for i := 0; i < 8; i++ {
		j.SolveVelocityConstraints(testH)
	}

	if b.LinearVelocity.Len() > 1e-6 {
		t.Fatalf("expected friction well under its force cap to fully damp velocity, got %+v", b.LinearVelocity)
	}
}

func TestMouseDragsBodyTowardTarget(t *testing.T) {
	ground := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 0, 0)

	j := NewMouse(ground, b, math2d.Vec2{X: 0, Y: 0})
	j.Target = math2d.Vec2{X: 1, Y: 0}
	j.MaxForce = 1000

	j.InitVelocityConstraints(testH, 1, false)
	j.SolveVelocityConstraints(testH)

	if b.LinearVelocity.X <= 0 {
		t.Fatalf("expected the mouse joint to pull the body toward its target, got %+v", b.LinearVelocity)
	}
}

func TestReactionForceScalesWithInverseTimestep(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)
	b.LinearVelocity = math2d.Vec2{Y: 5}

	j := NewRevolute(a, b, math2d.Vec2{X: 0, Y: 0}, false)
	j.InitVelocityConstraints(testH, 1, false)
	j.SolveVelocityConstraints(testH)

	f := j.ReactionForce(1 / testH)
	if f.Len() == 0 {
		t.Fatalf("expected a nonzero reaction force while the joint is absorbing velocity")
	}
}
