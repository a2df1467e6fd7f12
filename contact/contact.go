// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package contact owns the candidate-pair lifecycle: creating a Contact
// when two fixtures' broad-phase proxies start overlapping, filtering it
// out again when the fixtures or bodies say they shouldn't collide,
// recomputing its manifold every step with warm-start impulses carried
// across by ContactFeature identity, and destroying it once the proxies
// stop overlapping.
package contact

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/collide"
	"github.com/gazed/rigid2d/distance"
	"github.com/gazed/rigid2d/shape"
)

// Flags mirrors Box2D's Contact::m_flags (Contact.h): packed booleans
// rather than one bool field apiece.
type Flags uint32

const (
	FlagTouching Flags = 1 << iota
	FlagEnabled
	FlagFilter // needs a fresh ShouldCollide check before the next update
	FlagInIsland
	FlagTOI // m_toi is valid for this step
)

// Contact is one candidate collision between two fixture children, per
// spec.md §3: an ordered (FixtureA, iA, FixtureB, iB) pair plus the
// lifecycle state a step needs to decide whether it is touching and, if
// so, with what manifold.
type Contact struct {
	FixtureA, FixtureB *body.Fixture
	ChildA, ChildB     int

	Flags Flags

	Manifold collide.Manifold

	Friction, Restitution float64
	TangentSpeed          float64

	TOI          float64
	ToiCount     int
	simplexCache distance.Cache
}

// New returns a contact between the two fixture children, enabled and
// not yet touching, with friction/restitution mixed from the fixtures.
func New(fa *body.Fixture, ia int, fb *body.Fixture, ib int) *Contact {
	return &Contact{
		FixtureA: fa, ChildA: ia,
		FixtureB: fb, ChildB: ib,
		Flags:       FlagEnabled,
		Friction:    body.MixFriction(fa.Friction, fb.Friction),
		Restitution: body.MixRestitution(fa.Restitution, fb.Restitution),
	}
}

// IsTouching reports whether the last Update found at least one contact
// point (or, for a sensor, nonpositive GJK distance). Implements
// body.Contact.
func (c *Contact) IsTouching() bool { return c.Flags&FlagTouching != 0 }

// IsEnabled reports whether the contact currently participates in the
// solver. Implements body.Contact.
func (c *Contact) IsEnabled() bool { return c.Flags&FlagEnabled != 0 }

// SetEnabled lets a ContactFilter or listener veto this contact for the
// rest of the step (Box2D's b2Contact::SetEnabled).
func (c *Contact) SetEnabled(v bool) {
	if v {
		c.Flags |= FlagEnabled
	} else {
		c.Flags &^= FlagEnabled
	}
}

// IsSensor reports whether either fixture is a sensor: sensor contacts
// report touching but never carry manifold points into the solver.
func (c *Contact) IsSensor() bool {
	return c.FixtureA.IsSensor || c.FixtureB.IsSensor
}

func (c *Contact) IsInIsland() bool { return c.Flags&FlagInIsland != 0 }
func (c *Contact) SetInIsland(v bool) {
	if v {
		c.Flags |= FlagInIsland
	} else {
		c.Flags &^= FlagInIsland
	}
}

func (c *Contact) HasValidTOI() bool { return c.Flags&FlagTOI != 0 }
func (c *Contact) SetTOI(toi float64) {
	c.TOI = toi
	c.Flags |= FlagTOI
}
func (c *Contact) ResetTOI() {
	c.Flags &^= FlagTOI
	c.ToiCount = 0
}

// FlagForFiltering marks the contact as needing a fresh ShouldCollide
// check before its next Update, e.g. after a joint's collideConnected
// flag or a fixture's filter changed (Box2D's b2Contact::FlagForFiltering).
func (c *Contact) FlagForFiltering() { c.Flags |= FlagFilter }

func (c *Contact) needsFiltering() bool { return c.Flags&FlagFilter != 0 }

// proxy returns the DistanceProxy for the fixture's child shape, for the
// sensor-only GJK touching test.
func proxy(f *body.Fixture, child int) shape.DistanceProxy {
	return childShapeOf(f.Shape, child).DistanceProxy(0)
}

// childShapeOf mirrors collide's unexported childShape: Chain children
// are edges, every other shape has exactly one child.
func childShapeOf(s shape.Shape, child int) shape.Shape {
	if c, ok := s.(*shape.ChainShape); ok {
		e := c.ChildEdge(child)
		return &e
	}
	return s
}

// Listener receives begin/end/pre-solve notifications as a contact's
// touching state changes, matching Box2D's b2ContactListener.
type Listener interface {
	BeginContact(c *Contact)
	EndContact(c *Contact)
	PreSolve(c *Contact, oldManifold *collide.Manifold)
}

// Filter decides whether two fixtures should ever generate a contact,
// matching Box2D's b2ContactFilter. ShouldCollide is consulted both when
// a candidate pair first overlaps and again whenever FlagForFiltering
// has been called.
type Filter interface {
	ShouldCollide(fa, fb *body.Fixture) bool
}

// DefaultFilter applies only the fixtures' collision Filter bitmasks,
// Box2D's b2ContactFilter default implementation.
type DefaultFilter struct{}

func (DefaultFilter) ShouldCollide(fa, fb *body.Fixture) bool {
	return fa.Filter.ShouldCollide(fb.Filter)
}

// Update recomputes the contact's manifold for the fixtures' current
// transforms, carries warm-start impulses forward by ContactFeature, and
// fires the listener's callbacks itself, handing PreSolve the previous
// manifold (spec.md §4.7 step 3).
func (c *Contact) Update(listener Listener) {
	oldManifold := c.Manifold
	wasTouching := c.IsTouching()

	xfA, xfB := c.FixtureA.Body.Transform, c.FixtureB.Body.Transform

	var touching bool
	if c.IsSensor() {
		touching = sensorOverlap(c)
		c.Manifold = collide.Manifold{}
	} else {
		c.Manifold = collide.Collide(c.FixtureA.Shape, c.ChildA, xfA, c.FixtureB.Shape, c.ChildB, xfB)
		touching = c.Manifold.PointCount > 0
		warmStart(&c.Manifold, &oldManifold)
	}

	if touching {
		c.Flags |= FlagTouching
	} else {
		c.Flags &^= FlagTouching
	}

	if listener == nil {
		return
	}
	switch {
	case !wasTouching && touching:
		listener.BeginContact(c)
	case wasTouching && !touching:
		listener.EndContact(c)
	}
	if touching && !c.IsSensor() {
		listener.PreSolve(c, &oldManifold)
	}
}

// sensorOverlap reports whether the two shapes' GJK distance is
// nonpositive (i.e. the padded proxies overlap), the touching test
// spec.md §4.7 prescribes for sensors in place of a manifold.
func sensorOverlap(c *Contact) bool {
	out := distance.Distance(&c.simplexCache, distance.Input{
		ProxyA:     proxy(c.FixtureA, c.ChildA),
		TransformA: c.FixtureA.Body.Transform,
		ProxyB:     proxy(c.FixtureB, c.ChildB),
		TransformB: c.FixtureB.Body.Transform,
		UseRadii:   true,
	})
	return out.Distance <= 0
}

// warmStart copies each surviving point's accumulated impulses from the
// old manifold into the new one by matching ContactFeature identity — a
// point with no matching feature in oldManifold is a brand-new contact
// point and starts at zero (spec.md §4.7).
func warmStart(m, old *collide.Manifold) {
	for i := 0; i < m.PointCount; i++ {
		feature := m.Points[i].Feature
		for j := 0; j < old.PointCount; j++ {
			if old.Points[j].Feature == feature {
				m.Points[i].NormalImpulse = old.Points[j].NormalImpulse
				m.Points[i].TangentImpulse = old.Points[j].TangentImpulse
				break
			}
		}
	}
}

// WorldManifold derives the world-space manifold for the solver, folding
// in both shapes' vertex radii.
func (c *Contact) WorldManifold() collide.WorldManifold {
	ra := c.FixtureA.Shape.GetRadius()
	rb := c.FixtureB.Shape.GetRadius()
	return collide.Evaluate(&c.Manifold, c.FixtureA.Body.Transform, ra, c.FixtureB.Body.Transform, rb)
}
