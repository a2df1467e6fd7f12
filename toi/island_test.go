// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package toi

import (
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func newTouchingBullet(t *testing.T, ax, bx float64) (*body.Body, *body.Body, *contact.Contact) {
	t.Helper()
	a := body.New(body.Dynamic, math2d.Vec2{X: ax, Y: 0}, 0)
	b := body.New(body.Dynamic, math2d.Vec2{X: bx, Y: 0}, 0)
	a.SetBullet(true)

	fa := body.NewFixture(shape.NewDisk(0.5), 1)
	fa.Body = a
	a.Fixtures = append(a.Fixtures, fa)
	a.ResetMassData()

	fb := body.NewFixture(shape.NewDisk(0.5), 1)
	fb.Body = b
	b.Fixtures = append(b.Fixtures, fb)
	b.ResetMassData()

	a.LinearVelocity = math2d.Vec2{X: 10, Y: 0}

	c := contact.New(fa, 0, fb, 0)
	c.Flags |= contact.FlagTouching
	edgeAB := &body.ContactEdge{Other: b, Contact: c}
	edgeBA := &body.ContactEdge{Other: a, Contact: c}
	a.ContactEdges = append(a.ContactEdges, edgeAB)
	b.ContactEdges = append(b.ContactEdges, edgeBA)

	return a, b, c
}

func TestBuildSubIslandPullsInBothContactBodies(t *testing.T) {
	a, b, c := newTouchingBullet(t, 0, 1)

	sub := BuildSubIsland(c, 0.5, 64)
	if len(sub.Bodies) != 2 {
		t.Fatalf("expected exactly the two seed bodies in the sub-island, got %d", len(sub.Bodies))
	}
	if len(sub.Contacts) != 1 || sub.Contacts[0] != c {
		t.Fatalf("expected the sub-island to carry the seed contact")
	}
	found := map[*body.Body]bool{}
	for _, bd := range sub.Bodies {
		found[bd] = true
	}
	if !found[a] || !found[b] {
		t.Fatalf("expected both seed bodies present in the sub-island")
	}
}

func TestBuildSubIslandRespectsMaxBodies(t *testing.T) {
	_, b, c := newTouchingBullet(t, 0, 1)
	chain := body.New(body.Dynamic, math2d.Vec2{X: 2, Y: 0}, 0)
	fChain := body.NewFixture(shape.NewDisk(0.5), 1)
	fChain.Body = chain
	chain.Fixtures = append(chain.Fixtures, fChain)
	chain.ResetMassData()

	c2 := contact.New(b.Fixtures[0], 0, fChain, 0)
	c2.Flags |= contact.FlagTouching
	edgeBC := &body.ContactEdge{Other: chain, Contact: c2}
	edgeCB := &body.ContactEdge{Other: b, Contact: c2}
	b.ContactEdges = append(b.ContactEdges, edgeBC)
	chain.ContactEdges = append(chain.ContactEdges, edgeCB)

	sub := BuildSubIsland(c, 0.5, 2)
	if len(sub.Bodies) > 2 {
		t.Fatalf("expected maxBodies=2 to stop the walk before pulling in the third body, got %d", len(sub.Bodies))
	}
}

func TestSubIslandSolveIntegratesRemainingTime(t *testing.T) {
	a, b, c := newTouchingBullet(t, 0, 0.9)
	c.Manifold.PointCount = 0

	sub := BuildSubIsland(c, 0.5, 64)
	before := a.Sweep.C1
	sub.Solve(DefaultSolveConfig(), 1.0/120)
	if sub.Bodies[0].Sweep.C1 == before && a.LinearVelocity.X != 0 {
		t.Fatalf("expected Solve to integrate a's position forward by the remaining time")
	}
	_ = b
}
