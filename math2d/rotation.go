// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package math2d

import "math"

// Rot represents a rotation as a unit-length (cos, sin) pair, avoiding the
// wraparound and trig-per-use costs of storing a bare angle.
type Rot struct {
	C float64 // cos(angle)
	S float64 // sin(angle)
}

// IdentityRot is the zero rotation.
var IdentityRot = Rot{C: 1, S: 0}

// NewRot builds a Rot from an angle in radians.
func NewRot(angle float64) Rot {
	if angle == 0 {
		return IdentityRot
	}
	return Rot{C: math.Cos(angle), S: math.Sin(angle)}
}

// Angle returns the angle in radians represented by q.
func (q Rot) Angle() float64 { return math.Atan2(q.S, q.C) }

// XAxis returns the rotated local x-axis, i.e. (cos, sin).
func (q Rot) XAxis() Vec2 { return Vec2{q.C, q.S} }

// YAxis returns the rotated local y-axis, i.e. (-sin, cos).
func (q Rot) YAxis() Vec2 { return Vec2{-q.S, q.C} }

// MulRot composes two rotations: q * r.
func MulRot(q, r Rot) Rot {
	return Rot{C: q.C*r.C - q.S*r.S, S: q.S*r.C + q.C*r.S}
}

// MulTRot composes the inverse of q with r: qT * r.
func MulTRot(q, r Rot) Rot {
	return Rot{C: q.C*r.C + q.S*r.S, S: q.C*r.S - q.S*r.C}
}

// RotateVec rotates v by q.
func RotateVec(q Rot, v Vec2) Vec2 {
	return Vec2{q.C*v.X - q.S*v.Y, q.S*v.X + q.C*v.Y}
}

// InvRotateVec rotates v by the inverse of q.
func InvRotateVec(q Rot, v Vec2) Vec2 {
	return Vec2{q.C*v.X + q.S*v.Y, -q.S*v.X + q.C*v.Y}
}

// Transform is a rigid transform: a position plus a rotation.
type Transform struct {
	P Vec2
	Q Rot
}

// IdentityTransform is the identity transform.
var IdentityTransform = Transform{Q: IdentityRot}

// NewTransform builds a Transform from a position and an angle.
func NewTransform(position Vec2, angle float64) Transform {
	return Transform{P: position, Q: NewRot(angle)}
}

// MulT2 transforms a local point v by transform t into world space:
// t.Q*v + t.P.
func MulT2(t Transform, v Vec2) Vec2 {
	return Plus(RotateVec(t.Q, v), t.P)
}

// MulTT2 transforms a world point v by the inverse of t into t's local
// space: t.Q^-1 * (v - t.P).
func MulTT2(t Transform, v Vec2) Vec2 {
	return InvRotateVec(t.Q, Minus(v, t.P))
}

// MulTransforms composes two transforms: the result maps a point first by
// b, then by a (a.Q*(b.Q*v+b.P) + a.P).
func MulTransforms(a, b Transform) Transform {
	return Transform{
		Q: MulRot(a.Q, b.Q),
		P: Plus(RotateVec(a.Q, b.P), a.P),
	}
}

// MulTTransforms composes the inverse of a with b: a^-1 * b.
func MulTTransforms(a, b Transform) Transform {
	return Transform{
		Q: MulTRot(a.Q, b.Q),
		P: InvRotateVec(a.Q, Minus(b.P, a.P)),
	}
}

// Sweep describes a body's motion over a single time step for continuous
// collision: two keyframe poses about a local center, plus the fraction of
// the step already consumed.
type Sweep struct {
	LocalCenter Vec2    // local center of mass
	C0, C1      Vec2    // center of mass at alpha0 and 1
	A0, A1      float64 // angle at alpha0 and 1
	Alpha0      float64 // fraction of the step already advanced, in [0,1]
}

// Transform returns the interpolated world transform of the sweep at beta,
// a fraction in [0,1] of the remaining interval: 0 is the pose at Alpha0
// (C0/A0) and 1 the pose at the end of the step (C1/A1).
func (s Sweep) Transform(beta float64) Transform {
	var t Transform
	t.P.Add(Mul(s.C0, 1-beta), Mul(s.C1, beta))
	angle := (1-beta)*s.A0 + beta*s.A1
	t.Q = NewRot(angle)
	localOffset := RotateVec(t.Q, s.LocalCenter)
	t.P.Sub(t.P, localOffset)
	return t
}

// Advance moves the sweep's starting point to time alpha (in [0,1] of the
// whole step): C0/A0 move to the interpolated pose and Alpha0 becomes
// alpha, while C1/A1 are left unchanged, so the remaining fraction
// (1-alpha) of the step is yet to be simulated.
func (s *Sweep) Advance(alpha float64) {
	if s.Alpha0 >= alpha {
		return
	}
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0.Add(Mul(s.C0, 1-beta), Mul(s.C1, beta))
	s.A0 = (1-beta)*s.A0 + beta*s.A1
	s.Alpha0 = alpha
}

// Normalize wraps A0 into [0, 2pi) and shifts A1 by the same multiple of
// 2pi, so the swept rotation A1-A0 is unchanged.
func (s *Sweep) Normalize() {
	twoPi := 2 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A1 -= d
}
