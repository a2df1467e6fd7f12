// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// DiskShape is a circle of a given radius centered at Position (in the
// shape's local frame, usually the origin).
type DiskShape struct {
	Position math2d.Vec2
	Radius   float64
}

// NewDisk returns a disk of the given radius centered at the origin.
func NewDisk(radius float64) *DiskShape {
	return &DiskShape{Radius: radius}
}

func (d *DiskShape) ShapeType() Type  { return Disk }
func (d *DiskShape) ChildCount() int  { return 1 }
func (d *DiskShape) GetRadius() float64 { return d.Radius }

func (d *DiskShape) DistanceProxy(child int) DistanceProxy {
	return DistanceProxy{Vertices: []math2d.Vec2{d.Position}, Radius: d.Radius}
}

func (d *DiskShape) ComputeAABB(xf math2d.Transform, child int) AABB {
	center := math2d.MulT2(xf, d.Position)
	r := math2d.Vec2{X: d.Radius, Y: d.Radius}
	return AABB{LowerBound: math2d.Minus(center, r), UpperBound: math2d.Plus(center, r)}
}

// ComputeMass implements m = rho*pi*r^2, I = 1/2*m*r^2 + m*|c|^2 (parallel
// axis theorem about the origin, since the body's COM need not be the
// shape's local center).
func (d *DiskShape) ComputeMass(density float64) MassData {
	mass := density * math.Pi * d.Radius * d.Radius
	i := mass * (0.5*d.Radius*d.Radius + math2d.Dot(d.Position, d.Position))
	return MassData{Mass: mass, Center: d.Position, I: i}
}
