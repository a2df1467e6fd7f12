// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package body

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func TestNewBodyDefaults(t *testing.T) {
	b := New(Dynamic, math2d.Vec2{X: 1, Y: 2}, 0)
	if !b.IsAwake() || !b.IsEnabled() {
		t.Fatalf("expected a new dynamic body to be awake and enabled")
	}
	if b.IsInIsland() || b.IsBullet() {
		t.Fatalf("expected no island/bullet flags by default")
	}
}

func TestStaticBodyNeverAwake(t *testing.T) {
	b := New(Static, math2d.Zero2, 0)
	if b.IsAwake() {
		t.Fatalf("expected a static body to start asleep")
	}
	b.SetAwake(true)
	if b.IsAwake() {
		t.Fatalf("a static body should never wake")
	}
}

func TestResetMassDataBox(t *testing.T) {
	b := New(Dynamic, math2d.Zero2, 0)
	f := NewFixture(shape.NewBox(1, 1, 0), 2)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()

	wantMass := 2.0 * 4.0 // density * area(2x2 box)
	if gotMass := 1 / b.InvMass; gotMass < wantMass-1e-9 || gotMass > wantMass+1e-9 {
		t.Fatalf("expected mass %v, got %v", wantMass, gotMass)
	}
	if b.InvI <= 0 {
		t.Fatalf("expected nonzero rotational inertia for a box")
	}
}

func TestResetMassDataStaticBodyStaysMassless(t *testing.T) {
	b := New(Static, math2d.Zero2, 0)
	f := NewFixture(shape.NewBox(1, 1, 0), 2)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	if b.InvMass != 0 || b.InvI != 0 {
		t.Fatalf("expected a static body to remain massless")
	}
}

func TestApplyLinearImpulseWakesBody(t *testing.T) {
	b := New(Dynamic, math2d.Zero2, 0)
	f := NewFixture(shape.NewDisk(1), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	b.SetAwake(false)

	b.ApplyLinearImpulse(math2d.Vec2{X: 1}, b.WorldCenter())
	if !b.IsAwake() {
		t.Fatalf("expected an applied impulse to wake the body")
	}
	if b.LinearVelocity.X <= 0 {
		t.Fatalf("expected positive linear velocity after the impulse, got %+v", b.LinearVelocity)
	}
}

func TestVelocityAtWorldPointIncludesSpin(t *testing.T) {
	b := New(Dynamic, math2d.Zero2, 0)
	b.Sweep.C1 = math2d.Zero2
	b.AngularVelocity = 1
	v := b.VelocityAtWorldPoint(math2d.Vec2{X: 1, Y: 0})
	if v.Y < 1-1e-9 || v.Y > 1+1e-9 {
		t.Fatalf("expected spin at (1,0) to produce +Y velocity, got %+v", v)
	}
}

func TestFilterShouldCollide(t *testing.T) {
	a := DefaultFilter
	b := DefaultFilter
	if !a.ShouldCollide(b) {
		t.Fatalf("expected default filters to collide")
	}
	a.GroupIndex, b.GroupIndex = -1, -1
	if a.ShouldCollide(b) {
		t.Fatalf("expected a shared negative group index to force non-collision")
	}
}
