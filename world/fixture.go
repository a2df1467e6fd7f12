// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"math"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/shape"
)

// FixtureDef describes a fixture to attach to a body, Box2D's
// b2FixtureDef. Friction/Density default to body.NewFixture's usual
// 0.2/density-as-given; Filter defaults to body.DefaultFilter.
type FixtureDef struct {
	Shape    shape.Shape
	Density  float64
	Friction *float64
	Restitution float64
	Filter   *body.Filter
	IsSensor bool
	UserData interface{}
}

// CreateFixture attaches a new fixture to bodyID and registers its broad-
// phase proxies, per spec.md §6's create_fixture. Fails with
// ErrWorldLocked mid-Step, ErrInvalidArgument for an unknown body, a nil
// shape, or a negative density/friction, or ErrCapacityExceeded if the
// World's configured MaxFixtures would be exceeded.
func (w *World) CreateFixture(bodyID BodyID, def FixtureDef) (FixtureID, error) {
	if w.locked {
		return FixtureID{}, ErrWorldLocked
	}
	b, ok := w.bodies[bodyID]
	if !ok {
		return FixtureID{}, ErrInvalidArgument
	}
	if def.Shape == nil || def.Density < 0 || math.IsNaN(def.Density) {
		return FixtureID{}, ErrInvalidArgument
	}
	if def.Friction != nil && *def.Friction < 0 {
		return FixtureID{}, ErrInvalidArgument
	}
	if w.cfg.MaxFixtures > 0 && len(w.fixtures) >= w.cfg.MaxFixtures {
		return FixtureID{}, ErrCapacityExceeded
	}

	f := body.NewFixture(def.Shape, def.Density)
	if def.Friction != nil {
		f.Friction = *def.Friction
	}
	f.Restitution = def.Restitution
	if def.Filter != nil {
		f.Filter = *def.Filter
	}
	f.IsSensor = def.IsSensor
	f.UserData = def.UserData
	f.Body = b

	b.Fixtures = append(b.Fixtures, f)
	f.CreateProxies(w.tree, b.Transform, w.cfg.AABBExtension)
	for _, p := range f.Proxies {
		w.pairs.BufferMove(p.ProxyID)
		w.proxyCount++
		w.proxiesCreatedSinceStep++
	}
	b.ResetMassData()

	id := newFixtureID()
	w.fixtures[id] = f
	w.fixtureIDs[f] = id
	return id, nil
}

// DestroyFixture removes a fixture, its broad-phase proxies and any
// contacts referencing it. Fails with ErrWorldLocked mid-Step or
// ErrInvalidArgument for an unknown id.
func (w *World) DestroyFixture(id FixtureID) error {
	if w.locked {
		return ErrWorldLocked
	}
	if _, ok := w.fixtures[id]; !ok {
		return ErrInvalidArgument
	}
	w.destroyFixture(id, false)
	return nil
}

// destroyFixture is the shared teardown DestroyFixture and DestroyBody's
// cascade both use. cascade is true when the owning body is also being
// destroyed this call; only then is the DestructionListener notified.
func (w *World) destroyFixture(id FixtureID, cascade bool) {
	f := w.fixtures[id]
	b := f.Body

	w.contacts.DestroyFixtureContacts(f, w.contactListener)
	w.proxyCount -= len(f.Proxies)
	f.DestroyProxies(w.tree)

	for i, bf := range b.Fixtures {
		if bf == f {
			b.Fixtures[i] = b.Fixtures[len(b.Fixtures)-1]
			b.Fixtures = b.Fixtures[:len(b.Fixtures)-1]
			break
		}
	}
	b.ResetMassData()

	delete(w.fixtures, id)
	delete(w.fixtureIDs, f)

	if cascade && w.destructionListener != nil {
		w.destructionListener.SayGoodbyeFixture(f)
	}
}

// Fixture returns the live *body.Fixture for id, or nil if id is stale.
func (w *World) Fixture(id FixtureID) *body.Fixture { return w.fixtures[id] }
