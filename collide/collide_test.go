// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package collide

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func identity() math2d.Transform { return math2d.IdentityTransform }

func at(x, y float64) math2d.Transform {
	return math2d.NewTransform(math2d.Vec2{X: x, Y: y}, 0)
}

func TestCirclesTouching(t *testing.T) {
	a := shape.NewDisk(1)
	b := shape.NewDisk(1)
	m := CollideCircles(a, identity(), b, at(1.5, 0))
	if m.Type != Circles || m.PointCount != 1 {
		t.Fatalf("expected one circle contact, got %+v", m)
	}
}

func TestCirclesSeparated(t *testing.T) {
	a := shape.NewDisk(1)
	b := shape.NewDisk(1)
	m := CollideCircles(a, identity(), b, at(5, 0))
	if m.PointCount != 0 {
		t.Fatalf("expected no contact, got %+v", m)
	}
}

func box(hx, hy float64) *shape.PolygonShape {
	return shape.NewBox(hx, hy, 0)
}

func TestPolygonCircleFaceRegion(t *testing.T) {
	p := box(1, 1)
	c := shape.NewDisk(0.5)
	m := PolygonCircle(p, identity(), c, at(0, 1.3))
	if m.PointCount != 1 || m.Type != FaceA {
		t.Fatalf("expected face contact, got %+v", m)
	}
}

func TestPolygonCircleVertexRegion(t *testing.T) {
	p := box(1, 1)
	c := shape.NewDisk(0.5)
	m := PolygonCircle(p, identity(), c, at(1.3, 1.3))
	if m.PointCount != 1 {
		t.Fatalf("expected vertex contact, got %+v", m)
	}
}

func TestPolygonCircleNoContact(t *testing.T) {
	p := box(1, 1)
	c := shape.NewDisk(0.5)
	m := PolygonCircle(p, identity(), c, at(5, 5))
	if m.PointCount != 0 {
		t.Fatalf("expected no contact, got %+v", m)
	}
}

func TestPolygonsBoxOnBox(t *testing.T) {
	a := box(1, 1)
	b := box(1, 1)
	m := Polygons(a, identity(), b, at(0, 1.9))
	if m.PointCount != 2 {
		t.Fatalf("expected a two-point face manifold, got %+v", m)
	}
	if m.Type != FaceA && m.Type != FaceB {
		t.Fatalf("expected a face manifold type, got %v", m.Type)
	}
}

func TestPolygonsNoOverlap(t *testing.T) {
	a := box(1, 1)
	b := box(1, 1)
	m := Polygons(a, identity(), b, at(0, 5))
	if m.PointCount != 0 {
		t.Fatalf("expected no contact, got %+v", m)
	}
}

func TestEdgeCircleFaceRegion(t *testing.T) {
	e, err := shape.NewEdge(math2d.Vec2{X: -2}, math2d.Vec2{X: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	c := shape.NewDisk(0.5)
	m := EdgeCircle(e, identity(), c, at(0, 0.3))
	if m.PointCount != 1 || m.Type != FaceA {
		t.Fatalf("expected face contact, got %+v", m)
	}
}

func TestEdgeCircleVertexRegionSuppressedByGhost(t *testing.T) {
	// Two colinear edges sharing a vertex at x=2; a disk resting just past
	// that shared vertex on the second edge's side should not also report a
	// contact against the first edge's endpoint.
	e1, err := shape.NewEdge(math2d.Vec2{X: -2}, math2d.Vec2{X: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	e1.HasVertex3 = true
	e1.V3 = math2d.Vec2{X: 6}

	c := shape.NewDisk(0.5)
	// circle sits beyond e1's v2 along the shared tangent direction, so the
	// neighboring edge (e1.V3) owns this contact instead.
	m := EdgeCircle(e1, identity(), c, at(2.3, 0))
	if m.PointCount != 0 {
		t.Fatalf("expected ghost vertex to suppress this contact, got %+v", m)
	}
}

func TestEdgePolygonRestsFlat(t *testing.T) {
	e, err := shape.NewEdge(math2d.Vec2{X: -2}, math2d.Vec2{X: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	p := box(1, 1)
	m := EdgePolygon(e, identity(), p, at(0, 0.9))
	if m.PointCount == 0 {
		t.Fatalf("expected the box to touch the edge, got %+v", m)
	}
}

func TestWorldManifoldCircles(t *testing.T) {
	a := shape.NewDisk(1)
	b := shape.NewDisk(1)
	m := CollideCircles(a, identity(), b, at(1.5, 0))
	wm := Evaluate(&m, identity(), a.Radius, at(1.5, 0), b.Radius)
	if wm.PointCount != 1 {
		t.Fatalf("expected one world point, got %+v", wm)
	}
	if wm.Separations[0] >= 0 {
		t.Fatalf("expected negative (penetrating) separation, got %v", wm.Separations[0])
	}
	if wm.Normal.X <= 0 {
		t.Fatalf("expected normal pointing from A to B (+X), got %+v", wm.Normal)
	}
}

func TestWorldManifoldNormalPointsAToBRegardlessOfReferenceFace(t *testing.T) {
	a := box(1, 1)
	b := box(1, 1)
	xfA := at(0, 1.5)
	xfB := identity()
	m := Polygons(a, xfA, b, xfB)
	if m.PointCount == 0 {
		t.Fatalf("expected overlap, got %+v", m)
	}
	wm := Evaluate(&m, xfA, a.Radius, xfB, b.Radius)
	// A sits above B, so the A->B displacement points in -Y.
	if wm.Normal.Y >= 0 {
		t.Fatalf("expected normal pointing from A (above) to B (below), got %+v (manifold type %v)", wm.Normal, m.Type)
	}
}

func TestCollideDispatchSwapsDiskPolygon(t *testing.T) {
	p := box(1, 1)
	c := shape.NewDisk(0.5)
	m := Collide(c, 0, at(0, 1.3), p, 0, identity())
	if m.PointCount == 0 {
		t.Fatalf("expected a contact, got %+v", m)
	}
	// shapeA was the disk, so after flip() the contact feature's A side
	// should describe the disk (a vertex feature).
	if m.Points[0].Feature.TypeA != VertexFeature {
		t.Fatalf("expected disk side to remain a vertex feature after flip, got %+v", m.Points[0].Feature)
	}
}

func TestCollideDispatchChainEdge(t *testing.T) {
	chain, err := shape.NewChain([]math2d.Vec2{{X: -2}, {X: 0}, {X: 2}})
	if err != nil {
		t.Fatal(err)
	}
	c := shape.NewDisk(0.5)
	m := Collide(chain, 0, identity(), c, 0, at(-1, 0.3))
	if m.PointCount == 0 {
		t.Fatalf("expected a contact against the chain's first child edge, got %+v", m)
	}
}

func TestCollideDispatchEdgeEdgeIsAlwaysEmpty(t *testing.T) {
	e1, _ := shape.NewEdge(math2d.Vec2{X: -2}, math2d.Vec2{X: 2}, 0)
	e2, _ := shape.NewEdge(math2d.Vec2{X: -2}, math2d.Vec2{X: 2}, 0)
	m := Collide(e1, 0, identity(), e2, 0, identity())
	if m.PointCount != 0 {
		t.Fatalf("two static edges should never collide, got %+v", m)
	}
}
