// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package shape

import "github.com/gazed/rigid2d/math2d"

// ChainShape is an open (or closed, via explicit repetition of the first
// vertex) polyline. Each consecutive pair of vertices is a child edge; the
// chain additionally tracks the vertices immediately before the first and
// after the last so those child edges can be built with ghost-vertex
// adjacency, the same as if they had come from a longer chain.
type ChainShape struct {
	Vertices               []math2d.Vec2
	PrevVertex, NextVertex math2d.Vec2
	HasPrevVertex          bool
	HasNextVertex          bool
}

// NewChain returns a chain over vertices, which must have at least two
// entries.
func NewChain(vertices []math2d.Vec2) (*ChainShape, error) {
	if len(vertices) < 2 {
		return nil, ErrDegenerateGeometry
	}
	vs := make([]math2d.Vec2, len(vertices))
	copy(vs, vertices)
	return &ChainShape{Vertices: vs}, nil
}

// SetPrevVertex records the ghost vertex preceding the chain's first
// vertex, typically the second-to-last vertex of a neighboring chain.
func (c *ChainShape) SetPrevVertex(v math2d.Vec2) {
	c.PrevVertex = v
	c.HasPrevVertex = true
}

// SetNextVertex records the ghost vertex following the chain's last
// vertex.
func (c *ChainShape) SetNextVertex(v math2d.Vec2) {
	c.NextVertex = v
	c.HasNextVertex = true
}

func (c *ChainShape) ShapeType() Type    { return Chain }
func (c *ChainShape) ChildCount() int    { return len(c.Vertices) - 1 }
func (c *ChainShape) GetRadius() float64 { return 0 }

// ChildEdge materializes child i as a standalone EdgeShape, for callers
// (narrow-phase dispatch) that need to collide a chain one edge at a time.
func (c *ChainShape) ChildEdge(i int) EdgeShape {
	return c.edgeAt(i)
}

// edgeAt materializes child i as a standalone EdgeShape with its ghost
// vertices filled in from the chain's interior, or from PrevVertex/
// NextVertex at the two ends.
func (c *ChainShape) edgeAt(i int) EdgeShape {
	n := len(c.Vertices)
	e := EdgeShape{V1: c.Vertices[i], V2: c.Vertices[i+1]}
	if i > 0 {
		e.V0 = c.Vertices[i-1]
		e.HasVertex0 = true
	} else if c.HasPrevVertex {
		e.V0 = c.PrevVertex
		e.HasVertex0 = true
	}
	if i+2 < n {
		e.V3 = c.Vertices[i+2]
		e.HasVertex3 = true
	} else if c.HasNextVertex {
		e.V3 = c.NextVertex
		e.HasVertex3 = true
	}
	return e
}

func (c *ChainShape) DistanceProxy(child int) DistanceProxy {
	e := c.edgeAt(child)
	return DistanceProxy{Vertices: []math2d.Vec2{e.V1, e.V2}, Radius: 0}
}

func (c *ChainShape) ComputeAABB(xf math2d.Transform, child int) AABB {
	e := c.edgeAt(child)
	v1 := math2d.MulT2(xf, e.V1)
	v2 := math2d.MulT2(xf, e.V2)
	return AABB{LowerBound: math2d.Min(v1, v2), UpperBound: math2d.Max(v1, v2)}
}

// ComputeMass returns zero mass data: per spec.md §4.2 a chain is a static
// boundary primitive and never contributes mass to a body.
func (c *ChainShape) ComputeMass(density float64) MassData {
	return MassData{}
}
