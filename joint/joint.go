// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package joint implements the eleven constraint types spec.md §9 calls
// "joint polymorphism": revolute, prismatic, distance, rope, pulley,
// gear, weld, friction, motor, mouse and wheel, all behind one shared
// interface so the island solver can drive any of them without a type
// switch. Every joint follows the same three-phase lifecycle as a
// contact (init, velocity solve, position solve), per
// `original_source/PlayRho/Dynamics/Joints/RevoluteJoint.cpp` and
// `original_source/Box2D/Box2D/Dynamics/Joints/PrismaticJoint.cpp`.
package joint

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
)

// Joint is the shared interface spec.md §9 names:
// {init_velocity_constraints, solve_velocity_constraints,
// solve_position_constraints, reaction_force, reaction_torque}, plus the
// body.Joint subset (IsEnabled/CollideConnected) the body package's edge
// lists already depend on.
type Joint interface {
	body.Joint

	BodyA() *body.Body
	BodyB() *body.Body

	// InitVelocityConstraints computes effective masses/Jacobians from the
	// bodies' current poses and, if warmStarting, applies last step's
	// impulses scaled by dtRatio.
	InitVelocityConstraints(h float64, dtRatio float64, warmStarting bool)

	// SolveVelocityConstraints runs one sequential-impulse iteration.
	SolveVelocityConstraints(h float64)

	// SolvePositionConstraints runs one non-linear Gauss-Seidel position
	// correction directly against the bodies' sweeps, returning true once
	// the joint's positional error is within slop.
	SolvePositionConstraints(conf SolverConf) bool

	ReactionForce(invH float64) math2d.Vec2
	ReactionTorque(invH float64) float64
}

// SolverConf bundles the slop/correction tuning spec.md §4.10 and §9
// name for joint position solving (mirrors solver.Config's linear side,
// plus the angular terms joints additionally need).
type SolverConf struct {
	LinearSlop           float64
	AngularSlop          float64
	MaxLinearCorrection  float64
	MaxAngularCorrection float64
}

// Base is the embeddable common state every joint variant shares: the two
// bodies, whether the joint currently participates in solving, and
// whether it inhibits contacts between A and B.
type Base struct {
	A, B                 *body.Body
	Enabled              bool
	collideConnectedFlag bool
}

func NewBase(a, b *body.Body, collideConnected bool) Base {
	return Base{A: a, B: b, Enabled: true, collideConnectedFlag: collideConnected}
}

func (b *Base) BodyA() *body.Body       { return b.A }
func (b *Base) BodyB() *body.Body       { return b.B }
func (b *Base) IsEnabled() bool         { return b.Enabled }
func (b *Base) SetEnabled(v bool)       { b.Enabled = v }
func (b *Base) CollideConnected() bool  { return b.collideConnectedFlag }

// wake marks both endpoint bodies awake, matching every Box2D joint
// setter's "changing my configuration means both bodies must resolve
// again" convention.
func (b *Base) wake() {
	b.A.SetAwake(true)
	b.B.SetAwake(true)
}
