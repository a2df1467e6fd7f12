// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package island

import (
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/joint"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func diskBody(t body.Type, x, y float64) *body.Body {
	b := body.New(t, math2d.Vec2{X: x, Y: y}, 0)
	f := body.NewFixture(shape.NewDisk(0.5), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	return b
}

func linkContact(a, b *body.Body) *contact.Contact {
	c := contact.New(a.Fixtures[0], 0, b.Fixtures[0], 0)
	c.Update(nil)
	a.ContactEdges = append(a.ContactEdges, &body.ContactEdge{Other: b, Contact: c})
	b.ContactEdges = append(b.ContactEdges, &body.ContactEdge{Other: a, Contact: c})
	return c
}

func linkJoint(j joint.Joint) {
	a, b := j.BodyA(), j.BodyB()
	a.JointEdges = append(a.JointEdges, &body.JointEdge{Other: b, Joint: j})
	b.JointEdges = append(b.JointEdges, &body.JointEdge{Other: a, Joint: j})
}

func TestBuildGroupsTouchingBodiesIntoOneIsland(t *testing.T) {
	a := diskBody(body.Dynamic, 0, 0)
	b := diskBody(body.Dynamic, 0.9, 0)
	c := linkContact(a, b)
	if !c.IsTouching() {
		t.Fatalf("expected overlapping disks to report touching")
	}

	islands := Build([]*body.Body{a, b}, []*contact.Contact{c})
	if len(islands) != 1 {
		t.Fatalf("expected one island, got %d", len(islands))
	}
	if len(islands[0].Bodies) != 2 || len(islands[0].Contacts) != 1 {
		t.Fatalf("expected the island to carry both bodies and their contact, got %+v", islands[0])
	}
}

func TestBuildSplitsUnconnectedBodiesIntoSeparateIslands(t *testing.T) {
	a := diskBody(body.Dynamic, 0, 0)
	b := diskBody(body.Dynamic, 50, 0)

	islands := Build([]*body.Body{a, b}, nil)
	if len(islands) != 2 {
		t.Fatalf("expected two independent islands, got %d", len(islands))
	}
}

func TestBuildSkipsSleepingBodies(t *testing.T) {
	a := diskBody(body.Dynamic, 0, 0)
	a.SetAwake(false)

	islands := Build([]*body.Body{a}, nil)
	if len(islands) != 0 {
		t.Fatalf("expected a sleeping body to seed no island, got %d", len(islands))
	}
}

func TestBuildHaltsTraversalAtStaticBodies(t *testing.T) {
	ground := diskBody(body.Static, 0, 0)
	a := diskBody(body.Dynamic, 0.9, 0)
	b := diskBody(body.Dynamic, -0.9, 0)
	c1 := linkContact(ground, a)
	c2 := linkContact(ground, b)

	islands := Build([]*body.Body{ground, a, b}, []*contact.Contact{c1, c2})
	if len(islands) != 2 {
		t.Fatalf("expected the static ground to not merge a and b into one island, got %d", len(islands))
	}
}

func TestBuildFollowsJointEdgesAcrossNonTouchingBodies(t *testing.T) {
	a := diskBody(body.Dynamic, 0, 0)
	b := diskBody(body.Dynamic, 5, 0)
	j := joint.NewDistance(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 5, Y: 0}, false)
	linkJoint(j)

	islands := Build([]*body.Body{a, b}, nil)
	if len(islands) != 1 {
		t.Fatalf("expected the joint to merge a and b into one island, got %d", len(islands))
	}
	if len(islands[0].Joints) != 1 {
		t.Fatalf("expected the island to carry the joint, got %+v", islands[0].Joints)
	}
}

func TestSolveSettlesTwoBodiesJoinedByADistanceJoint(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 2, 0)
	b.LinearVelocity = math2d.Vec2{Y: 3}

	j := joint.NewDistance(a, b, math2d.Vec2{X: 0, Y: 0}, math2d.Vec2{X: 2, Y: 0}, false)
	linkJoint(j)

	isl := &Island{Bodies: []*body.Body{a, b}, Joints: []joint.Joint{j}}
	cfg := DefaultConfig()
	for i := 0; i < 30; i++ {
		isl.Solve(cfg, 1.0/60.0, 1, true)
	}

	dist := math2d.Distance(a.Sweep.C1, b.Sweep.C1)
	if dist > 2.05 || dist < 1.95 {
		t.Fatalf("expected the distance joint to keep separation near 2, got %v", dist)
	}
}

func TestSolvePutsAQuietIslandToSleep(t *testing.T) {
	a := diskBody(body.Static, 0, 0)
	b := diskBody(body.Dynamic, 1, 0)

	isl := &Island{Bodies: []*body.Body{a, b}}
	cfg := DefaultConfig()
	cfg.MinStillTimeToSleep = 0.01

	for i := 0; i < 3; i++ {
		isl.Solve(cfg, 1.0/60.0, 1, true)
	}

	if b.IsAwake() {
		t.Fatalf("expected a body at rest under tolerance for long enough to fall asleep")
	}
}

func TestSolveResetsForceAccumulatorsEachStep(t *testing.T) {
	a := diskBody(body.Dynamic, 0, 0)
	a.LinearAcceleration = math2d.Vec2{X: 5}
	a.AngularAcceleration = 2

	isl := &Island{Bodies: []*body.Body{a}}
	isl.Solve(DefaultConfig(), 1.0/60.0, 1, true)

	if a.LinearAcceleration != (math2d.Vec2{}) || a.AngularAcceleration != 0 {
		t.Fatalf("expected force accumulators to be cleared after solving, got %+v / %v", a.LinearAcceleration, a.AngularAcceleration)
	}
}
