// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/joint"
	"github.com/gazed/rigid2d/math2d"
)

// BodyDef describes a body to create, Box2D's b2BodyDef. Position/Angle
// set the initial pose; the velocity/damping/flag fields all have the
// same defaults body.New itself would give a freshly constructed body.
type BodyDef struct {
	Type     body.Type
	Position math2d.Vec2
	Angle    float64

	LinearVelocity  math2d.Vec2
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64

	FixedRotation bool
	Bullet        bool

	// Awake and Enabled default to true; set explicitly to false to
	// create a body that starts asleep or disabled.
	Awake, Enabled *bool

	UserData interface{}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// CreateBody adds a new body to the World, per spec.md §6's create_body.
// Fails with ErrWorldLocked if called from within a Step callback, or
// ErrCapacityExceeded if the World's configured MaxBodies would be
// exceeded.
func (w *World) CreateBody(def BodyDef) (BodyID, error) {
	if w.locked {
		return BodyID{}, ErrWorldLocked
	}
	if w.cfg.MaxBodies > 0 && len(w.bodies) >= w.cfg.MaxBodies {
		return BodyID{}, ErrCapacityExceeded
	}
	if math.IsNaN(def.Position.X) || math.IsNaN(def.Position.Y) || math.IsInf(def.Angle, 0) {
		return BodyID{}, ErrInvalidArgument
	}

	b := body.New(def.Type, def.Position, def.Angle)
	b.LinearVelocity = def.LinearVelocity
	b.AngularVelocity = def.AngularVelocity
	b.LinearDamping = def.LinearDamping
	b.AngularDamping = def.AngularDamping
	b.UserData = def.UserData

	if def.FixedRotation {
		b.SetFixedRotation(true)
	}
	if def.Bullet {
		b.SetBullet(true)
	}
	if !boolOr(def.Awake, true) {
		b.SetAwake(false)
	}
	if !boolOr(def.Enabled, true) {
		b.Flags &^= body.FlagEnabled
	}

	id := newBodyID()
	w.bodies[id] = b
	w.bodyIDs[b] = id
	return id, nil
}

// DestroyBody removes a body and, as a side effect, every fixture and
// joint attached to it: fixtures destroy their broad-phase proxies and
// contacts first, joints are unlinked from their other endpoint, and
// DestructionListener (if set) is notified for each. Fails with
// ErrWorldLocked if called from within a Step callback, or
// ErrInvalidArgument if id does not name a live body.
func (w *World) DestroyBody(id BodyID) error {
	if w.locked {
		return ErrWorldLocked
	}
	b, ok := w.bodies[id]
	if !ok {
		return ErrInvalidArgument
	}

	for _, je := range append([]*body.JointEdge(nil), b.JointEdges...) {
		jID, ok := w.jointIDs[je.Joint.(joint.Joint)]
		if !ok {
			continue
		}
		_ = w.destroyJoint(jID, true)
	}

	for _, f := range append([]*body.Fixture(nil), b.Fixtures...) {
		fID, ok := w.fixtureIDs[f]
		if !ok {
			continue
		}
		w.destroyFixture(fID, true)
	}

	delete(w.bodies, id)
	delete(w.bodyIDs, b)
	return nil
}

// SetBodyTransform teleports a body to position/angle, Box2D's
// b2Body::SetTransform, immediately re-synchronizing its fixtures' broad-
// phase proxies.
func (w *World) SetBodyTransform(id BodyID, position math2d.Vec2, angle float64) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrInvalidArgument
	}
	b.SetTransform(position, angle)
	for _, f := range b.Fixtures {
		f.Synchronize(w.tree, w.pairs, b.Transform, math2d.Vec2{}, w.cfg.AABBExtension)
	}
	return nil
}

// SetBodyAwake wakes or sleeps a body directly.
func (w *World) SetBodyAwake(id BodyID, awake bool) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrInvalidArgument
	}
	b.SetAwake(awake)
	return nil
}

// SetBodyEnabled toggles whether a body (and its fixtures/contacts)
// participates in simulation at all.
func (w *World) SetBodyEnabled(id BodyID, enabled bool) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrInvalidArgument
	}
	if enabled {
		b.Flags |= body.FlagEnabled
	} else {
		b.Flags &^= body.FlagEnabled
		b.SetAwake(false)
	}
	return nil
}

// Body returns the live *body.Body for id, or nil if id is stale.
func (w *World) Body(id BodyID) *body.Body { return w.bodies[id] }

// BodyIDOf returns the handle a previously created body was given, or the
// zero BodyID and false if b is not owned by this World.
func (w *World) BodyIDOf(b *body.Body) (BodyID, bool) {
	id, ok := w.bodyIDs[b]
	return id, ok
}
