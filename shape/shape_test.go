// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
)

func TestDiskMass(t *testing.T) {
	d := NewDisk(2)
	md := d.ComputeMass(1)
	want := 4 * 3.14159265358979
	if diff := md.Mass - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("disk mass = %v, want %v", md.Mass, want)
	}
}

func TestDiskAabb(t *testing.T) {
	d := NewDisk(1)
	ab := d.ComputeAABB(math2d.IdentityTransform, 0)
	if ab.LowerBound.X != -1 || ab.LowerBound.Y != -1 || ab.UpperBound.X != 1 || ab.UpperBound.Y != 1 {
		t.Errorf("unexpected disk aabb %+v", ab)
	}
}

func TestBoxVertexCount(t *testing.T) {
	b := NewBox(1, 2, 0)
	if len(b.Vertices) != 4 {
		t.Fatalf("box vertex count = %d, want 4", len(b.Vertices))
	}
	if len(b.Normals) != 4 {
		t.Fatalf("box normal count = %d, want 4", len(b.Normals))
	}
}

func TestPolygonDegenerate(t *testing.T) {
	_, err := NewPolygon([]math2d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0)
	if err != ErrDegenerateGeometry {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestPolygonBoxMass(t *testing.T) {
	b := NewBox(1, 1, 0)
	md := b.ComputeMass(1)
	if diff := md.Mass - 4; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("box mass = %v, want 4", md.Mass)
	}
	if !md.Center.Aeq(math2d.Zero2) {
		t.Errorf("box centroid = %+v, want origin", md.Center)
	}
}

func TestEdgeZeroLengthIsDisk(t *testing.T) {
	e, err := NewEdge(math2d.Vec2{X: 1, Y: 1}, math2d.Vec2{X: 1, Y: 1.0000001}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := e.ComputeMass(1)
	want := 0.25 * 3.14159265358979
	if diff := md.Mass - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("zero-length edge mass = %v, want disk mass %v", md.Mass, want)
	}
	if !md.Center.Aeq(e.V1) {
		t.Errorf("zero-length edge center = %+v, want %+v", md.Center, e.V1)
	}
}

func TestEdgeDegenerate(t *testing.T) {
	_, err := NewEdge(math2d.Vec2{X: 1, Y: 1}, math2d.Vec2{X: 1, Y: 1}, 0)
	if err != ErrDegenerateGeometry {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestChainChildCountAndGhosts(t *testing.T) {
	c, err := NewChain([]math2d.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ChildCount() != 3 {
		t.Fatalf("chain child count = %d, want 3", c.ChildCount())
	}
	mid := c.edgeAt(1)
	if !mid.HasVertex0 || !mid.HasVertex3 {
		t.Errorf("interior edge should have both ghost vertices: %+v", mid)
	}
	first := c.edgeAt(0)
	if first.HasVertex0 {
		t.Errorf("first edge should have no ghost vertex0 without SetPrevVertex")
	}
	c.SetPrevVertex(math2d.Vec2{X: -1, Y: 0})
	first = c.edgeAt(0)
	if !first.HasVertex0 {
		t.Errorf("first edge should pick up ghost vertex0 after SetPrevVertex")
	}
}

func TestAABBOverlap(t *testing.T) {
	a := AABB{LowerBound: math2d.Vec2{X: 0, Y: 0}, UpperBound: math2d.Vec2{X: 1, Y: 1}}
	b := AABB{LowerBound: math2d.Vec2{X: 0.5, Y: 0.5}, UpperBound: math2d.Vec2{X: 1.5, Y: 1.5}}
	c := AABB{LowerBound: math2d.Vec2{X: 2, Y: 2}, UpperBound: math2d.Vec2{X: 3, Y: 3}}
	if !Overlaps(a, b) {
		t.Error("expected a and b to overlap")
	}
	if Overlaps(a, c) {
		t.Error("expected a and c not to overlap")
	}
}

func TestAABBRayCast(t *testing.T) {
	box := AABB{LowerBound: math2d.Vec2{X: -1, Y: -1}, UpperBound: math2d.Vec2{X: 1, Y: 1}}
	out := box.RayCast(RayCastInput{P1: math2d.Vec2{X: -5, Y: 0}, P2: math2d.Vec2{X: 5, Y: 0}, MaxFraction: 1})
	if !out.Hit {
		t.Fatal("expected ray to hit")
	}
	if out.Normal.X != -1 || out.Normal.Y != 0 {
		t.Errorf("unexpected hit normal %+v", out.Normal)
	}
}
