// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package body holds the mutable per-body and per-fixture state shared by
// every higher layer (contact, joint, solver, island, world). It knows
// nothing about manifolds, constraints or islands itself — those live in
// their own packages — which keeps this package at the bottom of the
// import graph. ContactEdge and JointEdge reference the owning contact or
// joint only through the minimal Contact/Joint interfaces declared here,
// so contact.Contact and joint types can implement them without body
// importing contact or joint back.
package body

import (
	"github.com/gazed/rigid2d/math2d"
)

// Type is a body's motion category, matching spec.md §3.
type Type int

const (
	Static Type = iota
	Kinematic
	Dynamic
)

func (t Type) String() string {
	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Flags is a bitfield of boolean body state, mirroring the flags Box2D
// packs into Body::m_flags (b2Body.h) rather than one bool field apiece.
type Flags uint32

const (
	FlagAwake Flags = 1 << iota
	FlagEnabled
	FlagFixedRotation
	FlagBullet // impenetrable: swept against the whole world every step
	FlagInIsland
	FlagMassDirty
)

// Contact is the subset of contact.Contact that body needs to walk a
// body's contact graph without importing the contact package.
type Contact interface {
	IsEnabled() bool
	IsTouching() bool
}

// ContactEdge links a body to one contact it participates in. Bodies keep
// their own slice of edges rather than Box2D's intrusive doubly-linked
// list, since Go has no equivalent to an embedded list node and a slice
// with swap-remove is the idiomatic substitute.
type ContactEdge struct {
	Other   *Body
	Contact Contact
}

// Joint is the subset of a concrete joint type that body needs to walk a
// body's joint graph without importing the joint package.
type Joint interface {
	IsEnabled() bool
	CollideConnected() bool
}

// JointEdge links a body to one joint it participates in.
type JointEdge struct {
	Other *Body
	Joint Joint
}

// Body is a rigid body: a sweep (for continuous collision), cached
// transform, velocities, mass properties and the fixtures attached to it.
type Body struct {
	Type  Type
	Flags Flags

	Sweep     math2d.Sweep
	Transform math2d.Transform

	LinearVelocity      math2d.Vec2
	AngularVelocity     float64
	LinearAcceleration  math2d.Vec2 // gravity already folded in for Dynamic bodies
	AngularAcceleration float64

	InvMass float64
	InvI    float64 // inverse rotational inertia about the center of mass

	LinearDamping  float64
	AngularDamping float64

	SleepTime float64

	Fixtures []*Fixture

	ContactEdges []*ContactEdge
	JointEdges   []*JointEdge

	UserData interface{}
}

// New returns a body of the given type, positioned at position/angle with
// zero velocity and enabled; Kinematic and Dynamic bodies start awake,
// Static bodies start asleep.
func New(t Type, position math2d.Vec2, angle float64) *Body {
	b := &Body{
		Type:      t,
		Flags:     FlagEnabled,
		Transform: math2d.NewTransform(position, angle),
	}
	b.Sweep.C0, b.Sweep.C1 = position, position
	b.Sweep.A0, b.Sweep.A1 = angle, angle
	if t != Static {
		b.Flags |= FlagAwake
	}
	return b
}

func (b *Body) hasFlag(f Flags) bool { return b.Flags&f != 0 }

func (b *Body) setFlag(f Flags, on bool) {
	if on {
		b.Flags |= f
	} else {
		b.Flags &^= f
	}
}

func (b *Body) IsAwake() bool         { return b.hasFlag(FlagAwake) }
func (b *Body) IsEnabled() bool       { return b.hasFlag(FlagEnabled) }
func (b *Body) IsFixedRotation() bool { return b.hasFlag(FlagFixedRotation) }
func (b *Body) IsBullet() bool        { return b.hasFlag(FlagBullet) }
func (b *Body) IsInIsland() bool      { return b.hasFlag(FlagInIsland) }
func (b *Body) IsMassDirty() bool     { return b.hasFlag(FlagMassDirty) }

func (b *Body) SetInIsland(v bool)  { b.setFlag(FlagInIsland, v) }
func (b *Body) SetBullet(v bool)    { b.setFlag(FlagBullet, v) }
func (b *Body) SetFixedRotation(v bool) {
	b.setFlag(FlagFixedRotation, v)
	b.ResetMassData()
}

// IsSpeedable reports whether the body may carry nonzero velocity or be
// awake, per spec.md §3 ("only speedable (non-static) bodies can be awake
// or have nonzero velocity").
func (b *Body) IsSpeedable() bool { return b.Type != Static }

// IsAccelerable reports whether the body may carry nonzero mass, inertia,
// acceleration or sleep time — only Dynamic bodies.
func (b *Body) IsAccelerable() bool { return b.Type == Dynamic }

// SetAwake wakes the body (resetting its sleep timer) or puts it to sleep
// (zeroing its velocities), enforcing that static bodies never wake.
func (b *Body) SetAwake(awake bool) {
	if !b.IsSpeedable() {
		awake = false
	}
	if awake {
		b.SleepTime = 0
		b.Flags |= FlagAwake
	} else {
		b.Flags &^= FlagAwake
		b.LinearVelocity = math2d.Zero2
		b.AngularVelocity = 0
		b.SleepTime = 0
	}
}

// SynchronizeTransform recomputes Transform from Sweep at beta=1 (the end
// of the current step), the cached pose every other package reads.
func (b *Body) SynchronizeTransform() {
	b.Transform = b.Sweep.Transform(1)
}

// SetTransform forcibly repositions the body, bypassing integration. Both
// sweep keyframes collapse to the new pose (alpha0 resets to 0).
func (b *Body) SetTransform(position math2d.Vec2, angle float64) {
	b.Transform = math2d.NewTransform(position, angle)
	localCenter := b.Sweep.LocalCenter
	center := math2d.MulT2(b.Transform, localCenter)
	b.Sweep.C0, b.Sweep.C1 = center, center
	b.Sweep.A0, b.Sweep.A1 = angle, angle
	b.Sweep.Alpha0 = 0
}

// WorldCenter returns the body's center of mass in world space.
func (b *Body) WorldCenter() math2d.Vec2 { return b.Sweep.C1 }

// WorldPoint transforms a body-local point into world space.
func (b *Body) WorldPoint(local math2d.Vec2) math2d.Vec2 {
	return math2d.MulT2(b.Transform, local)
}

// LocalPoint transforms a world point into body-local space.
func (b *Body) LocalPoint(world math2d.Vec2) math2d.Vec2 {
	return math2d.MulTT2(b.Transform, world)
}

// VelocityAtWorldPoint returns the linear velocity of the material point
// of the body currently at the given world position: v + ω × (p - c).
func (b *Body) VelocityAtWorldPoint(worldPoint math2d.Vec2) math2d.Vec2 {
	r := math2d.Minus(worldPoint, b.WorldCenter())
	return math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, r))
}

// ApplyForce accumulates a force at a world point into LinearAcceleration
// and AngularAcceleration for the current step (F=ma, τ=Iα already divided
// through by mass/inertia since only InvMass/InvI are stored).
func (b *Body) ApplyForce(force, worldPoint math2d.Vec2) {
	if !b.IsAccelerable() {
		return
	}
	b.LinearAcceleration = math2d.Plus(b.LinearAcceleration, math2d.Mul(force, b.InvMass))
	r := math2d.Minus(worldPoint, b.WorldCenter())
	b.AngularAcceleration += b.InvI * math2d.Cross(r, force)
}

// ApplyForceToCenter applies force at the center of mass, producing no
// torque.
func (b *Body) ApplyForceToCenter(force math2d.Vec2) {
	if !b.IsAccelerable() {
		return
	}
	b.LinearAcceleration = math2d.Plus(b.LinearAcceleration, math2d.Mul(force, b.InvMass))
}

// ApplyTorque accumulates angular acceleration directly.
func (b *Body) ApplyTorque(torque float64) {
	if !b.IsAccelerable() {
		return
	}
	b.AngularAcceleration += b.InvI * torque
}

// ApplyLinearImpulse adds an instantaneous impulse at a world point,
// waking the body since a sleeping body should not silently absorb it.
func (b *Body) ApplyLinearImpulse(impulse, worldPoint math2d.Vec2) {
	if !b.IsAccelerable() {
		return
	}
	b.SetAwake(true)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.Mul(impulse, b.InvMass))
	r := math2d.Minus(worldPoint, b.WorldCenter())
	b.AngularVelocity += b.InvI * math2d.Cross(r, impulse)
}

// ApplyAngularImpulse adds an instantaneous angular impulse.
func (b *Body) ApplyAngularImpulse(impulse float64) {
	if !b.IsAccelerable() {
		return
	}
	b.SetAwake(true)
	b.AngularVelocity += b.InvI * impulse
}

// ResetMassData recomputes InvMass/InvI and the sweep's local center from
// the attached fixtures' densities, per spec.md §3's mass-dirty flag.
// Static and kinematic bodies always carry zero mass.
func (b *Body) ResetMassData() {
	b.setFlag(FlagMassDirty, false)
	b.InvMass, b.InvI = 0, 0
	b.Sweep.LocalCenter = math2d.Zero2

	if !b.IsAccelerable() {
		b.Sweep.C0, b.Sweep.C1 = b.Transform.P, b.Transform.P
		return
	}

	mass, i := 0.0, 0.0
	localCenter := math2d.Zero2
	for _, f := range b.Fixtures {
		if f.Density == 0 {
			continue
		}
		md := f.Shape.ComputeMass(f.Density)
		mass += md.Mass
		localCenter = math2d.Plus(localCenter, math2d.Mul(md.Center, md.Mass))
		i += md.I
	}

	if mass > 0 {
		b.InvMass = 1 / mass
		localCenter = math2d.Mul(localCenter, b.InvMass)
	} else {
		// a dynamic body with no fixture mass still needs to move.
		b.InvMass = 1
	}

	if i > 0 && !b.IsFixedRotation() {
		// shift I from about the origin to about the local center (parallel
		// axis theorem, subtracting the mass*center^2 term each fixture's
		// ComputeMass added when it was measured about the shape's own origin).
		i -= mass * math2d.Dot(localCenter, localCenter)
		b.InvI = 1 / i
	}

	oldCenter := b.Sweep.C1
	b.Sweep.LocalCenter = localCenter
	b.Sweep.C1 = math2d.MulT2(b.Transform, localCenter)
	b.Sweep.C0 = b.Sweep.C1

	// keep velocity consistent with the COM having moved.
	delta := math2d.Minus(b.Sweep.C1, oldCenter)
	b.LinearVelocity = math2d.Plus(b.LinearVelocity, math2d.CrossSV(b.AngularVelocity, delta))
}
