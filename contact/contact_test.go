// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/collide"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func boxBody(x, y float64) (*body.Body, *body.Fixture) {
	b := body.New(body.Dynamic, math2d.Vec2{X: x, Y: y}, 0)
	f := body.NewFixture(shape.NewBox(0.5, 0.5, 0), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	return b, f
}

func TestNewContactMixesFrictionAndRestitution(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(1, 0)
	fa.Friction, fb.Friction = 0.4, 0.9
	fa.Restitution, fb.Restitution = 0.1, 0.6

	c := New(fa, 0, fb, 0)
	want := body.MixFriction(0.4, 0.9)
	if c.Friction != want {
		t.Fatalf("expected mixed friction %v, got %v", want, c.Friction)
	}
	if c.Restitution != 0.6 {
		t.Fatalf("expected mixed restitution 0.6, got %v", c.Restitution)
	}
}

func TestUpdateDetectsTouchingOverlappingBoxes(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(0.9, 0)
	c := New(fa, 0, fb, 0)

	c.Update(nil)
	if !c.IsTouching() {
		t.Fatalf("expected overlapping boxes to touch")
	}
	if c.Manifold.PointCount == 0 {
		t.Fatalf("expected a nonempty manifold")
	}
}

func TestUpdateSeparatedBoxesNotTouching(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(10, 0)
	c := New(fa, 0, fb, 0)

	c.Update(nil)
	if c.IsTouching() {
		t.Fatalf("expected far-apart boxes to not touch")
	}
}

func TestUpdateCarriesWarmStartImpulseByFeature(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(0.9, 0)
	c := New(fa, 0, fb, 0)
	c.Update(nil)
	if c.Manifold.PointCount == 0 {
		t.Fatalf("expected contact points to seed warm-start test")
	}
	c.Manifold.Points[0].NormalImpulse = 5

	// nudge fb slightly; the manifold's points should keep the same
	// features and therefore keep the accumulated impulse.
	fb.Body.SetTransform(math2d.Vec2{X: 0.92}, 0)
	c.Update(nil)
	if c.Manifold.Points[0].NormalImpulse != 5 {
		t.Fatalf("expected warm-started impulse to survive a small pose change, got %v", c.Manifold.Points[0].NormalImpulse)
	}
}

type recordingListener struct {
	began, ended, presolved int
}

func (r *recordingListener) BeginContact(c *Contact)                           { r.began++ }
func (r *recordingListener) EndContact(c *Contact)                             { r.ended++ }
func (r *recordingListener) PreSolve(c *Contact, old *collide.Manifold)        { r.presolved++ }

func TestListenerFiresBeginOnNewTouch(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(5, 0)
	c := New(fa, 0, fb, 0)
	l := &recordingListener{}

	c.Update(l)
	if l.began != 0 || l.ended != 0 {
		t.Fatalf("expected no callbacks while separated, got began=%d ended=%d", l.began, l.ended)
	}

	fb.Body.SetTransform(math2d.Vec2{X: 0.9}, 0)
	c.Update(l)
	if l.began != 1 || l.presolved != 1 {
		t.Fatalf("expected BeginContact+PreSolve once touching starts, got began=%d presolve=%d", l.began, l.presolved)
	}

	fb.Body.SetTransform(math2d.Vec2{X: 10}, 0)
	c.Update(l)
	if l.ended != 1 {
		t.Fatalf("expected EndContact once separated again, got ended=%d", l.ended)
	}
}

func TestSensorTouchesWithoutManifoldPoints(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(0.9, 0)
	fa.IsSensor = true
	c := New(fa, 0, fb, 0)

	c.Update(nil)
	if !c.IsTouching() {
		t.Fatalf("expected overlapping sensor to report touching")
	}
	if c.Manifold.PointCount != 0 {
		t.Fatalf("expected a sensor contact to carry no manifold points, got %d", c.Manifold.PointCount)
	}
}

func TestSetEnabledDisablesContact(t *testing.T) {
	_, fa := boxBody(0, 0)
	_, fb := boxBody(0.9, 0)
	c := New(fa, 0, fb, 0)
	if !c.IsEnabled() {
		t.Fatalf("expected a new contact to be enabled")
	}
	c.SetEnabled(false)
	if c.IsEnabled() {
		t.Fatalf("expected SetEnabled(false) to disable the contact")
	}
}
