// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import (
	"errors"
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// ErrDegenerateGeometry is returned by shape constructors when the given
// vertices cannot form a valid convex primitive (too few vertices,
// collinear vertices, a zero-length edge with no radius).
var ErrDegenerateGeometry = errors.New("rigid2d: degenerate geometry")

// MaxPolygonVertices bounds the vertex count of a convex polygon, matching
// Box2D's b2_maxPolygonVertices.
const MaxPolygonVertices = 254

// PolygonShape is a convex polygon with a small rounding radius, the "skin"
// used to soften contacts and improve solver robustness.
type PolygonShape struct {
	Vertices []math2d.Vec2
	Normals  []math2d.Vec2
	Centroid math2d.Vec2
	Radius   float64
}

// NewPolygon builds a convex polygon from a convex-hull vertex set (CCW or
// CW accepted; the hull is rebuilt and re-wound CCW) using the given skin
// radius. Returns ErrDegenerateGeometry for fewer than 3 vertices or a
// degenerate (zero-area) hull.
func NewPolygon(points []math2d.Vec2, radius float64) (*PolygonShape, error) {
	hull, err := computeHull(points)
	if err != nil {
		return nil, err
	}
	n := len(hull)
	normals := make([]math2d.Vec2, n)
	for i := 0; i < n; i++ {
		edge := math2d.Minus(hull[(i+1)%n], hull[i])
		if edge.LenSqr() < math2d.Epsilon*math2d.Epsilon {
			return nil, ErrDegenerateGeometry
		}
		unit, _ := math2d.RPerp(edge).Unit()
		normals[i] = unit
	}
	return &PolygonShape{
		Vertices: hull,
		Normals:  normals,
		Centroid: computeCentroid(hull),
		Radius:   radius,
	}, nil
}

// NewBox returns an axis-aligned rectangular polygon of the given
// half-width and half-height, centered at the origin, with the given
// skin radius.
func NewBox(hx, hy, radius float64) *PolygonShape {
	p, err := NewPolygon([]math2d.Vec2{
		{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy},
	}, radius)
	if err != nil {
		panic(err) // a well-formed axis-aligned box is never degenerate
	}
	return p
}

func computeHull(points []math2d.Vec2) ([]math2d.Vec2, error) {
	if len(points) < 3 {
		return nil, ErrDegenerateGeometry
	}
	if len(points) > MaxPolygonVertices {
		return nil, ErrDegenerateGeometry
	}
	// Gift-wrapping (Jarvis march): simple, stable for the small vertex
	// counts this engine expects, and naturally produces a CCW hull.
	n := len(points)
	start := 0
	for i := 1; i < n; i++ {
		if points[i].X < points[start].X ||
			(points[i].X == points[start].X && points[i].Y < points[start].Y) {
			start = i
		}
	}
	hull := make([]math2d.Vec2, 0, n)
	used := make([]bool, n)
	current := start
	for {
		hull = append(hull, points[current])
		used[current] = true
		next := -1
		for i := 0; i < n; i++ {
			if i == current {
				continue
			}
			if next == -1 {
				next = i
				continue
			}
			e1 := math2d.Minus(points[next], points[current])
			e2 := math2d.Minus(points[i], points[current])
			cr := math2d.Cross(e1, e2)
			if cr < 0 || (cr == 0 && e2.LenSqr() > e1.LenSqr()) {
				next = i
			}
		}
		if next == start || next == -1 {
			break
		}
		current = next
		if len(hull) > n {
			return nil, ErrDegenerateGeometry
		}
	}
	if len(hull) < 3 {
		return nil, ErrDegenerateGeometry
	}
	// Drop collinear vertices the march can leave behind.
	cleaned := make([]math2d.Vec2, 0, len(hull))
	m := len(hull)
	for i := 0; i < m; i++ {
		prev := hull[(i-1+m)%m]
		cur := hull[i]
		next := hull[(i+1)%m]
		e1 := math2d.Minus(cur, prev)
		e2 := math2d.Minus(next, cur)
		if math.Abs(math2d.Cross(e1, e2)) > math2d.Epsilon {
			cleaned = append(cleaned, cur)
		}
	}
	if len(cleaned) < 3 {
		return nil, ErrDegenerateGeometry
	}
	return cleaned, nil
}

func computeCentroid(vs []math2d.Vec2) math2d.Vec2 {
	var c math2d.Vec2
	area := 0.0
	origin := vs[0]
	for i := 1; i+1 < len(vs); i++ {
		e1 := math2d.Minus(vs[i], origin)
		e2 := math2d.Minus(vs[i+1], origin)
		d := math2d.Cross(e1, e2)
		triArea := 0.5 * d
		area += triArea
		c.Add(c, math2d.Mul(math2d.Plus(math2d.Plus(origin, vs[i]), vs[i+1]), triArea/3))
	}
	if area > math2d.Epsilon {
		c = math2d.Mul(c, 1/area)
	}
	return c
}

func (p *PolygonShape) ShapeType() Type    { return Polygon }
func (p *PolygonShape) ChildCount() int    { return 1 }
func (p *PolygonShape) GetRadius() float64 { return p.Radius }

func (p *PolygonShape) DistanceProxy(child int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.Radius}
}

func (p *PolygonShape) ComputeAABB(xf math2d.Transform, child int) AABB {
	lower := math2d.MulT2(xf, p.Vertices[0])
	upper := lower
	for i := 1; i < len(p.Vertices); i++ {
		v := math2d.MulT2(xf, p.Vertices[i])
		lower = math2d.Min(lower, v)
		upper = math2d.Max(upper, v)
	}
	r := math2d.Vec2{X: p.Radius, Y: p.Radius}
	return AABB{LowerBound: math2d.Minus(lower, r), UpperBound: math2d.Plus(upper, r)}
}

// ComputeMass decomposes the polygon into a triangle fan from its first
// vertex, integrating area/centroid/inertia per triangle, then adds the
// skin-disk contribution at each vertex described by spec.md §4.2: one
// disk of mass density*pi*radius^2, split evenly across the vertices and
// placed at each vertex; the radius*perimeter band along the edges is
// not added (an approximation the spec explicitly allows by name, not an
// exact closed form — PlayRho's own polygon mass routine uses the same
// triangle-fan core and does not attempt an exact skin integral either).
func (p *PolygonShape) ComputeMass(density float64) MassData {
	origin := p.Vertices[0]
	var center math2d.Vec2
	area := 0.0
	i2 := 0.0
	const k1, k2 = 1.0 / 3.0, 1.0 / 4.0

	for i := 1; i+1 < len(p.Vertices); i++ {
		e1 := math2d.Minus(p.Vertices[i], origin)
		e2 := math2d.Minus(p.Vertices[i+1], origin)
		d := math2d.Cross(e1, e2)
		triArea := 0.5 * d
		area += triArea
		center.Add(center, math2d.Mul(math2d.Plus(e1, e2), triArea*k1))

		intx2 := e1.X*e1.X + e1.X*e2.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e1.Y*e2.Y + e2.Y*e2.Y
		i2 += (k2 * d) * (intx2 + inty2)
	}

	mass := density * area
	if area > math2d.Epsilon {
		center = math2d.Mul(center, 1/area)
	}
	absoluteCenter := math2d.Plus(center, origin)

	// I accumulated above is about the first vertex; shift it to be about
	// the centroid, then back out to be about the shape's local origin.
	i := density * i2
	i += mass * (math2d.Dot(absoluteCenter, absoluteCenter) - math2d.Dot(center, center))
	center = absoluteCenter

	for _, v := range p.Vertices {
		skinMass := density * math.Pi * p.Radius * p.Radius / float64(len(p.Vertices))
		mass += skinMass
		i += skinMass * math2d.DistanceSqr(v, center)
	}

	return MassData{Mass: mass, Center: center, I: i}
}
