// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package shape implements the convex shape library: disks, polygons,
// edges and chains, each exposing the geometry queries the broad-phase,
// distance engine and narrow-phase need (AABB, distance proxy, mass data).
package shape

import "github.com/gazed/rigid2d/math2d"

// AABB is an axis-aligned bounding box.
type AABB struct {
	LowerBound math2d.Vec2
	UpperBound math2d.Vec2
}

// Valid reports whether the box is well formed (lower <= upper).
func (a AABB) Valid() bool {
	return a.LowerBound.X <= a.UpperBound.X && a.LowerBound.Y <= a.UpperBound.Y
}

// Center returns the AABB's center point.
func (a AABB) Center() math2d.Vec2 {
	return math2d.Mul(math2d.Plus(a.LowerBound, a.UpperBound), 0.5)
}

// Extents returns the half-widths of the AABB.
func (a AABB) Extents() math2d.Vec2 {
	return math2d.Mul(math2d.Minus(a.UpperBound, a.LowerBound), 0.5)
}

// Perimeter returns twice the sum of the box's width and height, used as
// the SAH-style cost metric by the broad-phase tree.
func (a AABB) Perimeter() float64 {
	w := a.UpperBound.X - a.LowerBound.X
	h := a.UpperBound.Y - a.LowerBound.Y
	return 2 * (w + h)
}

// Combine returns the smallest AABB enclosing both a and b.
func Combine(a, b AABB) AABB {
	return AABB{
		LowerBound: math2d.Min(a.LowerBound, b.LowerBound),
		UpperBound: math2d.Max(a.UpperBound, b.UpperBound),
	}
}

// Contains reports whether a fully contains b.
func (a AABB) Contains(b AABB) bool {
	return a.LowerBound.X <= b.LowerBound.X && a.LowerBound.Y <= b.LowerBound.Y &&
		b.UpperBound.X <= a.UpperBound.X && b.UpperBound.Y <= a.UpperBound.Y
}

// Overlaps reports whether a and b intersect.
func Overlaps(a, b AABB) bool {
	d1 := math2d.Minus(b.LowerBound, a.UpperBound)
	d2 := math2d.Minus(a.LowerBound, b.UpperBound)
	if d1.X > 0 || d1.Y > 0 {
		return false
	}
	if d2.X > 0 || d2.Y > 0 {
		return false
	}
	return true
}

// Extend returns a grown by margin on every side.
func (a AABB) Extend(margin float64) AABB {
	m := math2d.Vec2{X: margin, Y: margin}
	return AABB{LowerBound: math2d.Minus(a.LowerBound, m), UpperBound: math2d.Plus(a.UpperBound, m)}
}

// RayCastInput describes a segment to cast from p1 to p1+maxFraction*(p2-p1).
type RayCastInput struct {
	P1, P2      math2d.Vec2
	MaxFraction float64
}

// RayCastOutput reports where a ray hit, if it did.
type RayCastOutput struct {
	Normal   math2d.Vec2
	Fraction float64
	Hit      bool
}

// RayCast intersects input against the AABB using the slab method.
func (a AABB) RayCast(input RayCastInput) RayCastOutput {
	tmin := -1e300
	tmax := 1e300
	p := input.P1
	d := math2d.Minus(input.P2, input.P1)
	absD := math2d.Abs(d)
	var normal math2d.Vec2

	axes := [2]struct {
		p, d, absD, lower, upper float64
		n                        math2d.Vec2
	}{
		{p.X, d.X, absD.X, a.LowerBound.X, a.UpperBound.X, math2d.Vec2{X: 1}},
		{p.Y, d.Y, absD.Y, a.LowerBound.Y, a.UpperBound.Y, math2d.Vec2{Y: 1}},
	}

	for _, ax := range axes {
		if ax.absD < math2d.Epsilon {
			if ax.p < ax.lower || ax.upper < ax.p {
				return RayCastOutput{}
			}
			continue
		}
		inv := 1.0 / ax.d
		t1 := (ax.lower - ax.p) * inv
		t2 := (ax.upper - ax.p) * inv
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tmin {
			normal = math2d.Mul(ax.n, s)
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RayCastOutput{}
		}
	}

	if tmin < 0 || input.MaxFraction < tmin {
		return RayCastOutput{}
	}
	return RayCastOutput{Normal: normal, Fraction: tmin, Hit: true}
}
