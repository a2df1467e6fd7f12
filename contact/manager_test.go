// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/broadphase"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

const margin = 0.1

func newManagedBox(t *testing.T, tree *broadphase.Tree, pairs *broadphase.PairSet, x, y float64) *body.Fixture {
	t.Helper()
	b := body.New(body.Dynamic, math2d.Vec2{X: x, Y: y}, 0)
	f := body.NewFixture(shape.NewBox(0.5, 0.5, 0), 1)
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	b.ResetMassData()
	f.CreateProxies(tree, b.Transform, margin)
	for _, p := range f.Proxies {
		pairs.BufferMove(p.ProxyID)
	}
	return f
}

func TestManagerCreatesContactForOverlappingProxies(t *testing.T) {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)
	m := NewManager(tree, pairs)

	newManagedBox(t, tree, pairs, 0, 0)
	newManagedBox(t, tree, pairs, 0.5, 0)

	m.Step(nil)
	if len(m.Contacts()) != 1 {
		t.Fatalf("expected exactly one contact, got %d", len(m.Contacts()))
	}
	c := m.Contacts()[0]
	if !c.IsTouching() {
		t.Fatalf("expected the overlapping boxes to be touching after Step")
	}
	if len(c.FixtureA.Body.ContactEdges) != 1 || len(c.FixtureB.Body.ContactEdges) != 1 {
		t.Fatalf("expected both bodies to receive a contact edge")
	}
}

func TestManagerSkipsFixturesOnTheSameBody(t *testing.T) {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)
	m := NewManager(tree, pairs)

	b := body.New(body.Dynamic, math2d.Zero2, 0)
	f1 := body.NewFixture(shape.NewBox(0.5, 0.5, 0), 1)
	f2 := body.NewFixture(shape.NewBox(0.5, 0.5, 0), 1)
	f1.Body, f2.Body = b, b
	b.Fixtures = append(b.Fixtures, f1, f2)
	b.ResetMassData()
	f1.CreateProxies(tree, b.Transform, margin)
	f2.CreateProxies(tree, b.Transform, margin)
	for _, p := range f1.Proxies {
		pairs.BufferMove(p.ProxyID)
	}
	for _, p := range f2.Proxies {
		pairs.BufferMove(p.ProxyID)
	}

	m.Step(nil)
	if len(m.Contacts()) != 0 {
		t.Fatalf("expected no self-contacts on a single body, got %d", len(m.Contacts()))
	}
}

func TestManagerDoesNotDuplicateContactsAcrossSteps(t *testing.T) {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)
	m := NewManager(tree, pairs)

	fa := newManagedBox(t, tree, pairs, 0, 0)
	fb := newManagedBox(t, tree, pairs, 0.5, 0)
	_ = fa
	_ = fb

	m.Step(nil)
	m.Step(nil)
	if len(m.Contacts()) != 1 {
		t.Fatalf("expected a single contact to persist across steps, got %d", len(m.Contacts()))
	}
}

func TestManagerPurgesContactWhenBoxesSeparate(t *testing.T) {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)
	m := NewManager(tree, pairs)

	fa := newManagedBox(t, tree, pairs, 0, 0)
	fb := newManagedBox(t, tree, pairs, 0.5, 0)
	m.Step(nil)
	if len(m.Contacts()) != 1 {
		t.Fatalf("expected a contact before separating")
	}

	fb.Body.SetTransform(math2d.Vec2{X: 20}, 0)
	fb.Synchronize(tree, pairs, fb.Body.Transform, math2d.Vec2{X: 19.5}, margin)

	m.Step(nil)
	if len(m.Contacts()) != 0 {
		t.Fatalf("expected the contact to be purged once AABBs stop overlapping, got %d", len(m.Contacts()))
	}
	if len(fa.Body.ContactEdges) != 0 || len(fb.Body.ContactEdges) != 0 {
		t.Fatalf("expected contact edges to be removed from both bodies")
	}
}

type filterVeto struct{ veto *body.Fixture }

func (f filterVeto) ShouldCollide(fa, fb *body.Fixture) bool {
	return fa != f.veto && fb != f.veto
}

func TestManagerHonorsCustomFilter(t *testing.T) {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)
	m := NewManager(tree, pairs)

	fa := newManagedBox(t, tree, pairs, 0, 0)
	_ = newManagedBox(t, tree, pairs, 0.5, 0)
	m.Filter = filterVeto{veto: fa}

	m.Step(nil)
	if len(m.Contacts()) != 0 {
		t.Fatalf("expected the custom filter to veto the pair, got %d contacts", len(m.Contacts()))
	}
}
