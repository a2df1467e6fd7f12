// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package solver

import (
	"math"
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func diskBody(t body.Type, x, y float64) (*body.Body, *body.Fixture) {
	b := body.New(t, math2d.Vec2{X: x, Y: y}, 0)
	f := body.NewFixture(shape.NewDisk(0.5), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	return b, f
}

func boxBody(t body.Type, x, y float64) (*body.Body, *body.Fixture) {
	b := body.New(t, math2d.Vec2{X: x, Y: y}, 0)
	f := body.NewFixture(shape.NewBox(0.5, 0.5, 0), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	return b, f
}

func touchingCircleContact(ax, ay, bx, by float64) (*contact.Contact, *body.Body, *body.Body) {
	ba, fa := diskBody(body.Dynamic, ax, ay)
	bb, fb := diskBody(body.Dynamic, bx, by)
	c := contact.New(fa, 0, fb, 0)
	c.Update(nil)
	return c, ba, bb
}

func normalComponent(c *contact.Contact, bA, bB *body.Body) float64 {
	wm := c.WorldManifold()
	rel := math2d.Minus(bB.LinearVelocity, bA.LinearVelocity)
	return math2d.Dot(rel, wm.Normal)
}

func TestWarmStartAppliesSeededImpulse(t *testing.T) {
	c, bA, bB := touchingCircleContact(0, 0, 0.9, 0)
	if c.Manifold.PointCount == 0 {
		t.Fatalf("expected touching circles to produce a manifold point")
	}
	c.Manifold.Points[0].NormalImpulse = 1.0

	cs := New(DefaultConfig(), []*contact.Contact{c})
	cs.Initialize(true, 1)
	cs.WarmStart()

	if bA.LinearVelocity.X >= 0 {
		t.Fatalf("expected warm start to push body A backward along the normal, got %+v", bA.LinearVelocity)
	}
	if bB.LinearVelocity.X <= 0 {
		t.Fatalf("expected warm start to push body B forward along the normal, got %+v", bB.LinearVelocity)
	}
}

func TestSolveRemovesClosingVelocityBetweenCircles(t *testing.T) {
	c, bA, bB := touchingCircleContact(0, 0, 0.9, 0)
	bA.LinearVelocity = math2d.Vec2{X: 2}
	bB.LinearVelocity = math2d.Vec2{X: -2}

	before := normalComponent(c, bA, bB)
	if before >= 0 {
		t.Fatalf("expected the bodies to be closing before solving, got %v", before)
	}

	cs := New(DefaultConfig(), []*contact.Contact{c})
	cs.Solve(false, 1)

	after := normalComponent(c, bA, bB)
	if after < -1e-6 {
		t.Fatalf("expected the solver to remove closing velocity along the normal, got %v", after)
	}
}

func TestSolveSeparatesRestitutiveBounceAboveThreshold(t *testing.T) {
	c, bA, bB := touchingCircleContact(0, 0, 0.9, 0)
	bA.Fixtures[0].Restitution, bB.Fixtures[0].Restitution = 0.5, 0.5
	c.Restitution = body.MixRestitution(0.5, 0.5)
	bA.LinearVelocity = math2d.Vec2{X: 4}
	bB.LinearVelocity = math2d.Vec2{X: -4}

	cfg := DefaultConfig()
	cfg.VelocityThreshold = 0.5
	cs := New(cfg, []*contact.Contact{c})
	cs.Solve(false, 1)

	after := normalComponent(c, bA, bB)
	if after <= 0 {
		t.Fatalf("expected a bounce (separating velocity) above the restitution threshold, got %v", after)
	}
}

func TestSolveZeroesRestitutionBelowThreshold(t *testing.T) {
	c, bA, bB := touchingCircleContact(0, 0, 0.9, 0)
	bA.Fixtures[0].Restitution, bB.Fixtures[0].Restitution = 0.9, 0.9
	c.Restitution = body.MixRestitution(0.9, 0.9)
	bA.LinearVelocity = math2d.Vec2{X: 0.1}
	bB.LinearVelocity = math2d.Vec2{X: -0.1}

	cfg := DefaultConfig()
	cfg.VelocityThreshold = 1.0
	cs := New(cfg, []*contact.Contact{c})
	cs.Solve(false, 1)

	after := normalComponent(c, bA, bB)
	if after > 1e-6 {
		t.Fatalf("expected no bounce for a closing speed under the restitution threshold, got %v", after)
	}
}

func TestSolvePositionConstraintsReducesPenetration(t *testing.T) {
	floor, ff := boxBody(body.Static, 0, 0)
	box, fb := boxBody(body.Dynamic, 0, 0.92)
	_ = floor

	c := contact.New(ff, 0, fb, 0)
	c.Update(nil)
	if c.Manifold.PointCount == 0 {
		t.Fatalf("expected the overlapping boxes to produce a manifold")
	}

	cfg := DefaultConfig()
	cs := New(cfg, []*contact.Contact{c})
	before := cs.SolvePositionConstraints()
	for i := 0; i < cfg.PositionIterations-1; i++ {
		sep := cs.SolvePositionConstraints()
		if sep >= -3*cfg.LinearSlop {
			break
		}
	}
	cs.FinalizePositions()

	afterGap := box.Sweep.C1.Y - 0.5 - 0.5
	if math.IsNaN(afterGap) {
		t.Fatalf("expected a real post-solve separation")
	}
	if before >= 0 {
		t.Fatalf("expected an initial negative separation (penetration), got %v", before)
	}
	if box.Sweep.C1.Y <= 0.92 {
		t.Fatalf("expected the position solver to push the box upward out of the floor, got center %+v", box.Sweep.C1)
	}
}
