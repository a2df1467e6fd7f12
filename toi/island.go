// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package toi

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/solver"
)

// SolveConfig bundles the solver tunables a sub-island solve needs, a
// smaller sibling of island.Config (no joint solving and no sleep
// management — spec.md §4.11's sub-islands only ever settle contacts).
type SolveConfig struct {
	Solver             solver.Config
	PositionIterations int
	VelocityIterations int
}

// DefaultSolveConfig runs 4 velocity iterations, fewer than the discrete
// island solve's default of 8, and up to 20 position iterations, more than
// its default of 3.
func DefaultSolveConfig() SolveConfig {
	cfg := SolveConfig{Solver: solver.DefaultConfig(), PositionIterations: 20, VelocityIterations: 4}
	cfg.Solver.PositionIterations = cfg.PositionIterations
	cfg.Solver.VelocityIterations = cfg.VelocityIterations
	return cfg
}

// SubIsland is the step-local subgraph a single TOI event resolves, per
// spec.md §4.11 step 3: the two contact bodies that triggered the event,
// plus every body pulled in transitively through a touching, enabled,
// non-sensor contact. Unlike island.Island it carries no joints — Box2D's
// b2World::SolveTOI only ever walks contact edges when assembling the
// sub-island.
type SubIsland struct {
	Bodies   []*body.Body
	Contacts []*contact.Contact
}

// BuildSubIsland seeds a sub-island from the two bodies of seed (already
// advanced to toi by the caller, per step 2) and breadth-first walks their
// contact graphs, advancing every newly pulled-in accelerable body's sweep
// to toi before adding it. Static and kinematic bodies halt traversal on
// that branch but still contribute their fixed geometry as an immovable
// constraint. maxBodies bounds the walk so one TOI event can never pull in
// an unbounded chunk of the world.
func BuildSubIsland(seed *contact.Contact, toi float64, maxBodies int) *SubIsland {
	si := &SubIsland{}
	seen := map[*body.Body]bool{}
	contactSeen := map[*contact.Contact]bool{seed: true}

	add := func(b *body.Body) {
		seen[b] = true
		si.Bodies = append(si.Bodies, b)
	}

	a, b := seed.FixtureA.Body, seed.FixtureB.Body
	add(a)
	add(b)
	si.Contacts = append(si.Contacts, seed)

	frontier := []*body.Body{a, b}
	for len(frontier) > 0 && len(si.Bodies) < maxBodies {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur.Type != body.Dynamic {
			continue
		}

		for _, ce := range cur.ContactEdges {
			c, ok := ce.Contact.(*contact.Contact)
			if !ok || contactSeen[c] {
				continue
			}
			if !c.IsEnabled() || !c.IsTouching() || c.IsSensor() {
				continue
			}
			contactSeen[c] = true
			si.Contacts = append(si.Contacts, c)

			other := ce.Other
			if seen[other] {
				continue
			}
			if other.IsAccelerable() {
				other.Sweep.Advance(toi)
				other.SynchronizeTransform()
			}
			add(other)
			frontier = append(frontier, other)
		}
	}

	return si
}

// Solve runs spec.md §4.11 step 4: position-only correction over the
// sub-island's contacts (a non-linear Gauss-Seidel pass identical in kind
// to the discrete island's, though this implementation — lacking the
// solver's partial-mass weighting machinery Box2D's b2Island::SolveTOI
// uses to bias correction toward the two seed bodies — applies it evenly
// across every sub-island body), then a fresh velocity solve with no
// warm-starting, followed by position integration over the remaining
// (1-toi) fraction of the step expressed as remaining seconds.
func (si *SubIsland) Solve(cfg SolveConfig, remaining float64) {
	if len(si.Contacts) == 0 {
		return
	}

	positions := solver.New(cfg.Solver, si.Contacts)
	target := -3 * cfg.Solver.LinearSlop
	for i := 0; i < cfg.PositionIterations; i++ {
		if positions.SolvePositionConstraints() >= target {
			break
		}
	}
	positions.FinalizePositions()

	velocities := solver.New(cfg.Solver, si.Contacts)
	velocities.Initialize(false, 1)
	for i := 0; i < cfg.VelocityIterations; i++ {
		velocities.SolveVelocityConstraints()
	}
	velocities.StoreImpulses()

	for _, b := range si.Bodies {
		if b.Type != body.Dynamic {
			continue
		}
		b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(b.LinearVelocity, remaining))
		b.Sweep.A1 += remaining * b.AngularVelocity
		b.SynchronizeTransform()
	}
}
