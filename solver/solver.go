// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package solver turns a set of touching contacts into velocity and
// position corrections: a sequential-impulse velocity pass (friction then
// normal, falling back to a 2x2 block solve for two-point manifolds) and
// a non-linear Gauss-Seidel position pass, per spec.md §4.9/§4.10. It
// mutates body.Body velocities/transforms directly rather than copying
// them into island-local arrays first — islands hand this package the
// set of bodies/contacts to solve, not a separate data layout.
package solver

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/math2d"
)

// Config is the tuning knobs spec.md §4.9/§4.10 names explicitly.
type Config struct {
	VelocityThreshold   float64 // restitution is zeroed below this closing speed
	Baumgarte           float64 // position-error bleed-off rate (erp)
	LinearSlop          float64
	MaxLinearCorrection float64

	VelocityIterations int
	PositionIterations int
}

// DefaultConfig matches Box2D's b2_velocityThreshold/b2_baumgarte/
// b2_linearSlop/b2_maxLinearCorrection defaults, and spec.md §4's typical
// 8 velocity / 3 position iteration counts.
func DefaultConfig() Config {
	return Config{
		VelocityThreshold:   1.0,
		Baumgarte:           0.2,
		LinearSlop:          0.005,
		MaxLinearCorrection: 0.2,
		VelocityIterations:  8,
		PositionIterations:  3,
	}
}

// ContactSolver holds the per-contact constraints built for one island
// solve: a velocity constraint and a position constraint per contact,
// indexed in parallel with the input contact slice.
type ContactSolver struct {
	cfg       Config
	contacts  []*contact.Contact
	velocity  []VelocityConstraint
	position  []PositionConstraint
}

// New builds constraints for every touching, non-sensor contact in
// contacts. Sensor and non-touching contacts are skipped entirely — they
// never reach the solver.
func New(cfg Config, contacts []*contact.Contact) *ContactSolver {
	cs := &ContactSolver{cfg: cfg}
	for _, c := range contacts {
		if !c.IsTouching() || c.IsSensor() {
			continue
		}
		cs.contacts = append(cs.contacts, c)
		cs.velocity = append(cs.velocity, newVelocityConstraint(c))
		cs.position = append(cs.position, newPositionConstraint(c))
	}
	return cs
}

// bodyVelocity/bodySetVelocity centralize the (linear, angular) velocity
// pair read/write every constraint routine needs.
func bodyVelocity(b *body.Body) (math2d.Vec2, float64) {
	return b.LinearVelocity, b.AngularVelocity
}

func bodySetVelocity(b *body.Body, v math2d.Vec2, w float64) {
	b.LinearVelocity, b.AngularVelocity = v, w
}

// relativeVelocity is v_B + ω_B×r_B - (v_A + ω_A×r_A), the closing
// velocity of the two bodies' material points at a contact point.
func relativeVelocity(vA math2d.Vec2, wA float64, rA math2d.Vec2, vB math2d.Vec2, wB float64, rB math2d.Vec2) math2d.Vec2 {
	pointVelB := math2d.Plus(vB, math2d.CrossSV(wB, rB))
	pointVelA := math2d.Plus(vA, math2d.CrossSV(wA, rA))
	return math2d.Minus(pointVelB, pointVelA)
}

// targetSeparation is the NGS position pass's convergence threshold,
// spec.md §4.10's "-3*linearSlop": a small amount of residual overlap is
// left deliberately so contacts don't jitter between touching/separated.
func (cs *ContactSolver) targetSeparation() float64 {
	return -3 * cs.cfg.LinearSlop
}

// Solve runs the full velocity-then-position pipeline for this island's
// contacts: warm-start, cfg.VelocityIterations velocity passes, impulse
// store-back, then up to cfg.PositionIterations position passes stopping
// early once every contact clears targetSeparation. warmStarting/dtRatio
// feed Initialize's impulse-scaling per spec.md's warm-start carry-over.
func (cs *ContactSolver) Solve(warmStarting bool, dtRatio float64) {
	cs.Initialize(warmStarting, dtRatio)
	if warmStarting {
		cs.WarmStart()
	}
	for i := 0; i < cs.cfg.VelocityIterations; i++ {
		cs.SolveVelocityConstraints()
	}
	cs.StoreImpulses()

	target := cs.targetSeparation()
	for i := 0; i < cs.cfg.PositionIterations; i++ {
		if cs.SolvePositionConstraints() >= target {
			break
		}
	}
	cs.FinalizePositions()
}
