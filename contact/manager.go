// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"reflect"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/broadphase"
	"github.com/gazed/rigid2d/shape"
)

// pairKey uniquely identifies a candidate contact by its (fixture, child)
// pair, canonicalized so (A, B) and (B, A) collapse to the same key —
// spec.md §3's "at most one contact per unordered key" invariant.
type pairKey struct {
	fa, fb         *body.Fixture
	childA, childB int
}

func newPairKey(fa *body.Fixture, ia int, fb *body.Fixture, ib int) pairKey {
	if reflect.ValueOf(fa).Pointer() > reflect.ValueOf(fb).Pointer() || (fa == fb && ia > ib) {
		fa, fb, ia, ib = fb, fa, ib, ia
	}
	return pairKey{fa, fb, ia, ib}
}

// Manager is Box2D's b2ContactManager: it owns every live Contact and
// runs the three-step per-step lifecycle from spec.md §4.7.
type Manager struct {
	Tree   *broadphase.Tree
	Pairs  *broadphase.PairSet
	Filter Filter

	contacts map[pairKey]*Contact
}

// NewManager returns a contact manager driven by tree/pairs, with the
// default category/mask filter.
func NewManager(tree *broadphase.Tree, pairs *broadphase.PairSet) *Manager {
	return &Manager{
		Tree:     tree,
		Pairs:    pairs,
		Filter:   DefaultFilter{},
		contacts: map[pairKey]*Contact{},
	}
}

// Contacts returns every currently live contact, in no particular order.
func (m *Manager) Contacts() []*Contact {
	out := make([]*Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, c)
	}
	return out
}

// FindNewContacts is spec.md §4.7 step 1: query the broad-phase move
// buffer for newly overlapping proxy pairs and create a Contact (plus its
// two ContactEdges) for each one that passes filtering and isn't already
// tracked.
func (m *Manager) FindNewContacts() {
	for _, p := range m.Pairs.UpdatePairs() {
		proxyA, ok := m.Tree.UserData(p.ProxyA).(*body.Proxy)
		if !ok {
			continue
		}
		proxyB, ok := m.Tree.UserData(p.ProxyB).(*body.Proxy)
		if !ok {
			continue
		}
		m.addPair(proxyA.Fixture, proxyA.ChildIndex, proxyB.Fixture, proxyB.ChildIndex)
	}
}

func (m *Manager) addPair(fa *body.Fixture, ia int, fb *body.Fixture, ib int) {
	if fa.Body == fb.Body {
		return
	}
	key := newPairKey(fa, ia, fb, ib)
	if _, exists := m.contacts[key]; exists {
		return
	}
	if !shouldCollideBodies(key.fa.Body, key.fb.Body) {
		return
	}
	if !m.Filter.ShouldCollide(key.fa, key.fb) {
		return
	}

	c := New(key.fa, key.childA, key.fb, key.childB)
	m.contacts[key] = c

	edgeAB := &body.ContactEdge{Other: key.fb.Body, Contact: c}
	edgeBA := &body.ContactEdge{Other: key.fa.Body, Contact: c}
	key.fa.Body.ContactEdges = append(key.fa.Body.ContactEdges, edgeAB)
	key.fb.Body.ContactEdges = append(key.fb.Body.ContactEdges, edgeBA)
}

// shouldCollideBodies rejects pairs where neither body can move (no
// solver work to do) or where a joint between them has collideConnected
// set to false.
func shouldCollideBodies(a, b *body.Body) bool {
	if !a.IsAccelerable() && !b.IsAccelerable() {
		return false
	}
	for _, je := range a.JointEdges {
		if je.Other != b {
			continue
		}
		if !je.Joint.CollideConnected() {
			return false
		}
	}
	return true
}

// Purge is spec.md §4.7 step 2: destroy any contact whose fixtures no
// longer pass filtering, whose bodies can no longer collide, or whose
// fattened AABBs no longer overlap.
func (m *Manager) Purge(listener Listener) {
	for key, c := range m.contacts {
		fa, fb := c.FixtureA, c.FixtureB
		destroy := false

		if !shouldCollideBodies(fa.Body, fb.Body) {
			destroy = true
		} else if c.needsFiltering() {
			c.Flags &^= FlagFilter
			if !m.Filter.ShouldCollide(fa, fb) {
				destroy = true
			}
		}

		if !destroy {
			aabbA := m.fatAABB(fa, c.ChildA)
			aabbB := m.fatAABB(fb, c.ChildB)
			if !shape.Overlaps(aabbA, aabbB) {
				destroy = true
			}
		}

		if destroy {
			m.destroy(key, c, listener)
		}
	}
}

// fatAABB returns the tree's fattened AABB for fixture f's child, per
// spec.md §4.7's "fattened AABBs no longer overlap" destroy condition
// (Box2D checks this via b2BroadPhase::TestOverlap on the tree nodes,
// not the shape's tight AABB).
func (m *Manager) fatAABB(f *body.Fixture, child int) shape.AABB {
	for _, p := range f.Proxies {
		if p.ChildIndex == child {
			return m.Tree.FatAABB(p.ProxyID)
		}
	}
	return shape.AABB{}
}

func (m *Manager) destroy(key pairKey, c *Contact, listener Listener) {
	if listener != nil && c.IsTouching() && !c.IsSensor() {
		listener.EndContact(c)
	}
	removeEdge(c.FixtureA.Body, c)
	removeEdge(c.FixtureB.Body, c)
	delete(m.contacts, key)
}

func removeEdge(b *body.Body, c *Contact) {
	for i, e := range b.ContactEdges {
		if e.Contact == body.Contact(c) {
			b.ContactEdges[i] = b.ContactEdges[len(b.ContactEdges)-1]
			b.ContactEdges = b.ContactEdges[:len(b.ContactEdges)-1]
			return
		}
	}
}

// Update is spec.md §4.7 step 3: recompute every live contact's manifold,
// dispatching listener callbacks as touching state changes.
func (m *Manager) Update(listener Listener) {
	for _, c := range m.contacts {
		c.Update(listener)
	}
}

// DestroyFixtureContacts removes every contact referencing f, e.g. when
// the world destroys a fixture out from under an active simulation.
func (m *Manager) DestroyFixtureContacts(f *body.Fixture, listener Listener) {
	for key, c := range m.contacts {
		if c.FixtureA == f || c.FixtureB == f {
			m.destroy(key, c, listener)
		}
	}
}

// Step runs the full find/purge/update cycle for one simulation step.
func (m *Manager) Step(listener Listener) {
	m.FindNewContacts()
	m.Purge(listener)
	m.Update(listener)
}
