// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package world assembles every lower layer — broadphase, contact, island,
// joint, solver, toi — into the single engine entry point spec.md §6
// calls World: the owner of every body, fixture and joint, and the thing
// whose Step method advances the simulation. Grounded on
// `original_source/Box2D/Box2D/Dynamics/World.h`'s public surface (New,
// Step, CreateBody/DestroyBody, CreateJoint/DestroyJoint, QueryAABB,
// RayCast, the locked-world guard) and on
// `reference/physics_teacher/physics.go`'s Simulate for the
// gravity-then-solve-then-clear-forces step shape, adapted from that
// package's package-level slice-of-bodies design to an ID-addressed,
// instance-owned World so that spec.md §9's "no shared mutable
// configuration singleton" requirement holds.
package world

import (
	"log/slog"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/broadphase"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/internal/arena"
	"github.com/gazed/rigid2d/joint"
	"github.com/gazed/rigid2d/math2d"
)

// World owns every body, fixture and joint in a simulation and advances
// them together with Step. The zero value is not usable; construct one
// with New.
type World struct {
	cfg    Config
	logger *slog.Logger

	gravity math2d.Vec2

	tree     *broadphase.Tree
	pairs    *broadphase.PairSet
	contacts *contact.Manager

	bodies   map[BodyID]*body.Body
	fixtures map[FixtureID]*body.Fixture
	joints   map[JointID]joint.Joint

	bodyIDs    map[*body.Body]BodyID
	fixtureIDs map[*body.Fixture]FixtureID
	jointIDs   map[joint.Joint]JointID

	proxyCount              int
	proxiesCreatedSinceStep int

	locked bool

	contactListener     ContactListener
	contactFilter       ContactFilter
	destructionListener DestructionListener

	// arena holds every step-local scratch pool; bodiesBuf is the one
	// World.Step itself fills each step (the snapshot of every body handed
	// to island.Build), reset along with the rest of arena at the top of Step.
	arena     *arena.Arena
	bodiesBuf *arena.Pool[*body.Body]

	// invDt0 is Box2D's m_inv_dt0: the reciprocal of the previous step's
	// dt, used to compute dtRatio so that warm-started impulses scale
	// correctly across variable timesteps (spec.md §4.9).
	invDt0 float64
}

// New returns an empty World with the given constant gravity. Options
// override the default tunables and diagnostics sink.
func New(gravity math2d.Vec2, opts ...ConfigOption) *World {
	tree := broadphase.NewTree()
	pairs := broadphase.NewPairSet(tree)

	w := &World{
		cfg:     NewDefaultConfig(),
		logger:  slog.Default(),
		gravity: gravity,

		tree:     tree,
		pairs:    pairs,
		contacts: contact.NewManager(tree, pairs),

		bodies:   map[BodyID]*body.Body{},
		fixtures: map[FixtureID]*body.Fixture{},
		joints:   map[JointID]joint.Joint{},

		bodyIDs:    map[*body.Body]BodyID{},
		fixtureIDs: map[*body.Fixture]FixtureID{},
		jointIDs:   map[joint.Joint]JointID{},

		arena: arena.New(),
	}
	w.bodiesBuf = arena.Register(w.arena, &arena.Pool[*body.Body]{})
	for _, opt := range opts {
		opt(w)
	}
	if w.contactFilter != nil {
		w.contacts.Filter = w.contactFilter
	}
	return w
}

// IsLocked reports whether the World is mid-Step: true for the duration of
// every ContactListener/ContactFilter callback. DestructionListener
// callbacks fire only from DestroyBody, which cannot run mid-Step, so they
// always see false.
func (w *World) IsLocked() bool { return w.locked }

// SetContactListener installs the callback notified of contact lifecycle
// events during Step. Pass nil to stop receiving callbacks.
func (w *World) SetContactListener(l ContactListener) { w.contactListener = l }

// SetContactFilter installs the predicate deciding whether two fixtures
// may ever collide. Pass nil to restore the default category/mask/group
// filter.
func (w *World) SetContactFilter(f ContactFilter) {
	w.contactFilter = f
	if f != nil {
		w.contacts.Filter = f
	} else {
		w.contacts.Filter = contact.DefaultFilter{}
	}
}

// SetDestructionListener installs the callback notified when a fixture or
// joint is destroyed implicitly as a side effect of DestroyBody.
func (w *World) SetDestructionListener(l DestructionListener) { w.destructionListener = l }

// SetGravity replaces the constant gravity vector applied to every
// dynamic body each Step.
func (w *World) SetGravity(g math2d.Vec2) { w.gravity = g }

// GetGravity returns the current gravity vector.
func (w *World) GetGravity() math2d.Vec2 { return w.gravity }

// SetAllowSleeping toggles whether quiet islands are put to sleep.
func (w *World) SetAllowSleeping(v bool) { w.cfg.AllowSleeping = v }

// SetWarmStarting toggles carrying impulses forward between steps.
func (w *World) SetWarmStarting(v bool) { w.cfg.WarmStarting = v }

// SetContinuousPhysics toggles the TOI sub-stepping pass.
func (w *World) SetContinuousPhysics(v bool) { w.cfg.ContinuousPhysics = v }

// SetSubStepping toggles stopping after a single TOI event per Step
// rather than resolving every event the pass finds (spec.md §4.11's
// debugging aid: single-stepping continuous collisions one at a time).
func (w *World) SetSubStepping(v bool) { w.cfg.SubStepping = v }

// SetAutoClearForces toggles whether force/torque accumulators left on
// non-simulated (sleeping, disabled, or static) bodies are zeroed at the
// end of Step. Accelerable bodies that actually reach the solver always
// have their accumulators consumed and cleared by island.Solve regardless
// of this setting; this flag only governs the bodies Solve never visits.
func (w *World) SetAutoClearForces(v bool) { w.cfg.AutoClearForces = v }

// GetAutoClearForces reports the current AutoClearForces setting.
func (w *World) GetAutoClearForces() bool { return w.cfg.AutoClearForces }

// BodyCount, FixtureCount, JointCount and ContactCount report current
// World population, for diagnostics and spec.md §6's "getters for
// body/contact/joint lists" requirement.
func (w *World) BodyCount() int    { return len(w.bodies) }
func (w *World) FixtureCount() int { return len(w.fixtures) }
func (w *World) JointCount() int   { return len(w.joints) }
func (w *World) ContactCount() int { return len(w.contacts.Contacts()) }

// ProxyCount reports the number of live broad-phase proxies. Tracked as a
// plain counter rather than queried from the tree, since broadphase.Tree's
// internal node count also includes non-leaf AVL-split nodes.
func (w *World) ProxyCount() int { return w.proxyCount }

// TreeHeight reports the broad-phase tree's current height, spec.md §6's
// "tree height/balance/quality" metric.
func (w *World) TreeHeight() int { return w.tree.Height() }

// ShiftOrigin re-centers every broad-phase AABB on newOrigin, for
// long-running simulations that periodically recenter their coordinate
// system to control floating point error far from the world origin.
func (w *World) ShiftOrigin(newOrigin math2d.Vec2) { w.tree.ShiftOrigin(newOrigin) }

// Bodies returns every body currently in the World, in no particular
// order.
func (w *World) Bodies() []*body.Body {
	out := make([]*body.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	return out
}

// Joints returns every joint currently in the World, in no particular
// order.
func (w *World) Joints() []joint.Joint {
	out := make([]joint.Joint, 0, len(w.joints))
	for _, j := range w.joints {
		out = append(out, j)
	}
	return out
}
