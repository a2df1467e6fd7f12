// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// EdgeShape is a line segment from V1 to V2 with an optional rounding
// radius. V0 and V3 are "ghost" vertices from the neighboring edges of a
// chain, used by the narrow phase to suppress duplicate or spurious
// vertex contacts at shared endpoints; HasVertex0/HasVertex3 report
// whether they are present.
type EdgeShape struct {
	V0, V1, V2, V3         math2d.Vec2
	HasVertex0, HasVertex3 bool
	Radius                 float64
}

// NewEdge returns a standalone edge (no ghost vertices) between v1 and v2.
func NewEdge(v1, v2 math2d.Vec2, radius float64) (*EdgeShape, error) {
	if math2d.DistanceSqr(v1, v2) < math2d.Epsilon*math2d.Epsilon && radius == 0 {
		return nil, ErrDegenerateGeometry
	}
	return &EdgeShape{V1: v1, V2: v2, Radius: radius}, nil
}

func (e *EdgeShape) ShapeType() Type    { return Edge }
func (e *EdgeShape) ChildCount() int    { return 1 }
func (e *EdgeShape) GetRadius() float64 { return e.Radius }

func (e *EdgeShape) DistanceProxy(child int) DistanceProxy {
	return DistanceProxy{Vertices: []math2d.Vec2{e.V1, e.V2}, Radius: e.Radius}
}

func (e *EdgeShape) ComputeAABB(xf math2d.Transform, child int) AABB {
	v1 := math2d.MulT2(xf, e.V1)
	v2 := math2d.MulT2(xf, e.V2)
	lower := math2d.Min(v1, v2)
	upper := math2d.Max(v1, v2)
	r := math2d.Vec2{X: e.Radius, Y: e.Radius}
	return AABB{LowerBound: math2d.Minus(lower, r), UpperBound: math2d.Plus(upper, r)}
}

// ComputeMass follows spec.md §4.2: a zero-length edge with nonzero radius
// is a disk at that point; otherwise the edge is modeled as a capsule of
// mass density*(2*r*L + pi*r^2) with the matching polar moment of a thin
// rod of length L plus a ring contribution from its rounded ends.
func (e *EdgeShape) ComputeMass(density float64) MassData {
	length := math2d.Distance(e.V1, e.V2)
	center := math2d.Mul(math2d.Plus(e.V1, e.V2), 0.5)
	if length < math2d.Epsilon {
		mass := density * math.Pi * e.Radius * e.Radius
		i := mass * 0.5 * e.Radius * e.Radius
		return MassData{Mass: mass, Center: e.V1, I: i + mass*math2d.Dot(e.V1, e.V1)}
	}
	mass := density * (2*e.Radius*length + math.Pi*e.Radius*e.Radius)
	// thin rod about its own center plus a disk-at-each-end approximation
	rodMass := density * 2 * e.Radius * length
	rodI := rodMass * length * length / 12
	capMass := density * math.Pi * e.Radius * e.Radius
	capI := capMass*0.5*e.Radius*e.Radius + capMass*(length/2)*(length/2)
	i := rodI + capI
	i += mass * math2d.Dot(center, center)
	return MassData{Mass: mass, Center: center, I: i}
}
