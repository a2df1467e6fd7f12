// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package island partitions awake bodies into disjoint connected
// subgraphs over contact/joint edges and drives each subgraph through
// one velocity+position solve, per spec.md §4.8. Grounded on
// `original_source/Box2D/Box2D/Dynamics/b2Island.cpp`'s Solve function
// and `reference/physics_teacher/contact.go`'s edge-list walking style.
package island

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/joint"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/solver"
)

// Config bundles the tunables spec.md §4.8/§6 name for island solving,
// on top of the per-contact/per-joint tuning already carried by
// solver.Config and joint.SolverConf.
type Config struct {
	Solver solver.Config
	Joint  joint.SolverConf

	MaxTranslation float64
	MaxRotation    float64

	AllowSleep            bool
	MinStillTimeToSleep   float64
	LinearSleepTolerance  float64
	AngularSleepTolerance float64
}

// DefaultConfig matches Box2D's b2_maxTranslation/b2_maxRotation/
// b2_timeToSleep/b2_linearSleepTolerance/b2_angularSleepTolerance.
func DefaultConfig() Config {
	return Config{
		Solver:                solver.DefaultConfig(),
		Joint:                 joint.SolverConf{LinearSlop: 0.005, AngularSlop: 2.0 / 180.0 * 3.14159265358979, MaxLinearCorrection: 0.2, MaxAngularCorrection: 8.0 / 180.0 * 3.14159265358979},
		MaxTranslation:        2.0,
		MaxRotation:           0.5 * 3.14159265358979,
		AllowSleep:            true,
		MinStillTimeToSleep:   0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * 3.14159265358979,
	}
}

// Island is a step-local set of bodies, contacts and joints known to be
// connected, ready to solve as one unit.
type Island struct {
	Bodies   []*body.Body
	Contacts []*contact.Contact
	Joints   []joint.Joint
}

// Build runs spec.md §4.8's DFS over every body in bodies: clears every
// body's and contact's in-island flag, then seeds a new Island from each
// awake, enabled, accelerable body not yet claimed by an earlier island.
// Static bodies halt traversal and have their in-island flag cleared
// again as soon as the island is assembled, so they can be pulled into a
// later island; dynamic bodies stay marked for the rest of the step.
func Build(bodies []*body.Body, allContacts []*contact.Contact) []*Island {
	for _, b := range bodies {
		b.SetInIsland(false)
	}
	for _, c := range allContacts {
		c.SetInIsland(false)
	}

	var islands []*Island
	stack := make([]*body.Body, 0, len(bodies))

	for _, seed := range bodies {
		if seed.IsInIsland() || !seed.IsAwake() || !seed.IsEnabled() || !seed.IsAccelerable() {
			continue
		}

		isl := &Island{}
		stack = stack[:0]
		stack = append(stack, seed)
		seed.SetInIsland(true)

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			isl.Bodies = append(isl.Bodies, b)

			if !b.IsAwake() {
				b.SetAwake(true)
			}

			if b.Type == body.Static {
				continue
			}

			for _, ce := range b.ContactEdges {
				c, ok := ce.Contact.(*contact.Contact)
				if !ok || c.IsInIsland() {
					continue
				}
				if !c.IsEnabled() || !c.IsTouching() || c.IsSensor() {
					continue
				}
				c.SetInIsland(true)
				isl.Contacts = append(isl.Contacts, c)

				other := ce.Other
				if !other.IsInIsland() {
					other.SetInIsland(true)
					stack = append(stack, other)
				}
			}

			for _, je := range b.JointEdges {
				j, ok := je.Joint.(joint.Joint)
				if !ok || !j.IsEnabled() {
					continue
				}
				if seenJoint(isl.Joints, j) {
					continue
				}
				isl.Joints = append(isl.Joints, j)

				other := je.Other
				if !other.IsInIsland() {
					other.SetInIsland(true)
					stack = append(stack, other)
				}
			}
		}

		islands = append(islands, isl)

		for _, b := range isl.Bodies {
			if b.Type == body.Static {
				b.SetInIsland(false)
			}
		}
	}

	return islands
}

func seenJoint(js []joint.Joint, j joint.Joint) bool {
	for _, existing := range js {
		if existing == j {
			return true
		}
	}
	return false
}

// Solve runs spec.md §4.8's per-island pipeline: integrate accelerations
// into velocities with Padé damping, init+warm-start joint/contact
// velocity constraints, cfg.Solver.VelocityIterations of joint-then-
// contact velocity solving, integrate velocities to clamped positions,
// then up to cfg.Solver.PositionIterations of contact-then-joint
// position solving, finishing with sleep aggregation if allowSleep.
func (isl *Island) Solve(cfg Config, h float64, dtRatio float64, warmStarting bool) {
	for _, b := range isl.Bodies {
		b.Sweep.C0, b.Sweep.A0 = b.Sweep.C1, b.Sweep.A1

		if b.Type == body.Dynamic {
			b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(b.LinearAcceleration, h))
			b.AngularVelocity += h * b.AngularAcceleration
			b.LinearVelocity = math2d.Mul(b.LinearVelocity, 1/(1+h*b.LinearDamping))
			b.AngularVelocity *= 1 / (1 + h*b.AngularDamping)
		}
		b.LinearAcceleration = math2d.Vec2{}
		b.AngularAcceleration = 0
	}

	cs := solver.New(cfg.Solver, isl.Contacts)
	cs.Initialize(warmStarting, dtRatio)
	if warmStarting {
		cs.WarmStart()
	}
	for _, j := range isl.Joints {
		j.InitVelocityConstraints(h, dtRatio, warmStarting)
	}

	for i := 0; i < cfg.Solver.VelocityIterations; i++ {
		for _, j := range isl.Joints {
			j.SolveVelocityConstraints(h)
		}
		cs.SolveVelocityConstraints()
	}
	cs.StoreImpulses()

	for _, b := range isl.Bodies {
		translation := math2d.Mul(b.LinearVelocity, h)
		if translation.Len() > cfg.MaxTranslation {
			ratio := cfg.MaxTranslation / translation.Len()
			b.LinearVelocity = math2d.Mul(b.LinearVelocity, ratio)
			translation = math2d.Mul(b.LinearVelocity, ratio)
		}
		rotation := h * b.AngularVelocity
		if rotation < 0 {
			rotation = -rotation
		}
		if rotation > cfg.MaxRotation {
			ratio := cfg.MaxRotation / rotation
			b.AngularVelocity *= ratio
		}

		b.Sweep.C1 = math2d.Plus(b.Sweep.C1, math2d.Mul(b.LinearVelocity, h))
		b.Sweep.A1 += h * b.AngularVelocity
		b.SynchronizeTransform()
	}

	positionSolved := false
	for i := 0; i < cfg.Solver.PositionIterations; i++ {
		contactsOK := cs.SolvePositionConstraints() >= -3*cfg.Solver.LinearSlop

		jointsOK := true
		for _, j := range isl.Joints {
			if !j.SolvePositionConstraints(cfg.Joint) {
				jointsOK = false
			}
		}

		if contactsOK && jointsOK {
			positionSolved = true
			break
		}
	}
	cs.FinalizePositions()

	if cfg.AllowSleep {
		isl.sleep(cfg, h, positionSolved)
	}
}

// sleep implements spec.md §4.8(g): accumulate sleep time for every
// non-static body under both tolerances; put the whole island to sleep once
// the minimum accumulated time clears minStillTimeToSleep and the
// position pass actually converged this step.
func (isl *Island) sleep(cfg Config, h float64, positionSolved bool) {
	minSleepTime := -1.0
	linTolSqr := cfg.LinearSleepTolerance * cfg.LinearSleepTolerance
	angTolSqr := cfg.AngularSleepTolerance * cfg.AngularSleepTolerance

	for _, b := range isl.Bodies {
		if b.Type == body.Static {
			continue
		}
		speedSqr := math2d.Dot(b.LinearVelocity, b.LinearVelocity)
		if speedSqr > linTolSqr || b.AngularVelocity*b.AngularVelocity > angTolSqr {
			b.SleepTime = 0
			minSleepTime = 0
			continue
		}
		b.SleepTime += h
		if minSleepTime < 0 || b.SleepTime < minSleepTime {
			minSleepTime = b.SleepTime
		}
	}

	if minSleepTime >= cfg.MinStillTimeToSleep && positionSolved {
		for _, b := range isl.Bodies {
			if b.Type != body.Static {
				b.SetAwake(false)
			}
		}
	}
}
