// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/collide"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/joint"
	"github.com/gazed/rigid2d/math2d"
)

// ContactListener receives the contact lifecycle notifications spec.md
// §4.7/§5 describes but never names as a Go type: begin/end fire during
// the Update phase as a contact's touching state changes, pre-solve fires
// for each touching contact before the velocity solver runs, and
// post-solve fires once per solved contact after its island has been
// solved, reporting the impulses the solver applied. Its first three
// methods match contact.Listener exactly, so a ContactListener value can
// be handed straight to a contact.Manager.
type ContactListener interface {
	BeginContact(c *contact.Contact)
	EndContact(c *contact.Contact)
	PreSolve(c *contact.Contact, oldManifold *collide.Manifold)
	PostSolve(c *contact.Contact, impulse ContactImpulse)
}

// ContactImpulse reports the per-point impulses a solved contact applied
// this step, Box2D's b2ContactImpulse.
type ContactImpulse struct {
	NormalImpulses, TangentImpulses [2]float64
	Count                           int
}

func impulseOf(c *contact.Contact) ContactImpulse {
	var imp ContactImpulse
	imp.Count = c.Manifold.PointCount
	for i := 0; i < imp.Count; i++ {
		imp.NormalImpulses[i] = c.Manifold.Points[i].NormalImpulse
		imp.TangentImpulses[i] = c.Manifold.Points[i].TangentImpulse
	}
	return imp
}

// ContactFilter decides whether two fixtures should ever generate a
// contact. Matches contact.Filter exactly.
type ContactFilter interface {
	ShouldCollide(fa, fb *body.Fixture) bool
}

// DestructionListener is notified when a fixture or joint is destroyed
// implicitly, as a side effect of destroying the body or joint that owns
// it — spec.md §6 lists destruction callbacks among the engine's listener
// callbacks without naming the interface; Box2D's b2DestructionListener
// supplies the shape here. Destroying a fixture or joint directly through
// World.DestroyFixture/DestroyJoint does not invoke this listener: the
// caller already knows.
type DestructionListener interface {
	SayGoodbyeFixture(f *body.Fixture)
	SayGoodbyeJoint(j joint.Joint)
}

// QueryCallback is invoked once per fixture whose fattened proxy overlaps
// a World.QueryAABB call. Returning false stops the query early.
type QueryCallback func(f *body.Fixture) bool

// RayCastCallback is invoked once per fixture a World.RayCast call hits,
// Box2D's b2RayCastCallback: returning a fraction in [0,1] clips the
// remaining search to that fraction, 0 stops the cast entirely, and
// returning the input fraction unchanged continues the cast unclipped.
type RayCastCallback func(f *body.Fixture, point, normal math2d.Vec2, fraction float64) float64
