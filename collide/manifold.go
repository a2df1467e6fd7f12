// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package collide generates contact manifolds for the narrow phase: for
// each supported shape-type pair it finds the touching features (a pair
// of points for circles, clipped polygon edges, ...) and reports them in
// a shape-local, radius-aware form that the solver can warm-start across
// steps by ContactFeature identity.
package collide

import "github.com/gazed/rigid2d/math2d"

// MaxManifoldPoints bounds a manifold to at most two contact points,
// matching Box2D: a third point on a 2D convex-convex overlap is always
// redundant with the first two.
const MaxManifoldPoints = 2

// FeatureType distinguishes a vertex feature from a face (edge) feature
// within a ContactFeature, letting the solver tell whether a manifold
// point traces back to a shape's corner or one of its edges.
type FeatureType uint8

const (
	VertexFeature FeatureType = iota
	FaceFeature
)

// ContactFeature uniquely identifies which vertex/edge pair on shape A
// and shape B produced a manifold point. Two manifolds computed a step
// apart that report the same ContactFeature for a point are describing
// the same physical contact, which is what lets the solver carry its
// accumulated impulse forward (warm starting).
type ContactFeature struct {
	TypeA  FeatureType
	IndexA int
	TypeB  FeatureType
	IndexB int
}

// ManifoldType says how LocalNormal/LocalPoint should be interpreted.
type ManifoldType int

const (
	Unset ManifoldType = iota
	Circles
	FaceA
	FaceB
)

// ManifoldPoint is one point of contact, carried in the reference shape's
// local frame so it stays valid while body poses only change by rigid
// transform (i.e. across the solver's sub-steps).
type ManifoldPoint struct {
	LocalPoint     math2d.Vec2
	Feature        ContactFeature
	NormalImpulse  float64
	TangentImpulse float64
}

// Manifold is zero, one or two points of contact between two convex
// shapes, along with enough context (Type/LocalNormal/LocalPoint) to
// reconstruct world-space contact geometry via WorldManifold.
type Manifold struct {
	Type        ManifoldType
	LocalNormal math2d.Vec2
	LocalPoint  math2d.Vec2
	Points      [MaxManifoldPoints]ManifoldPoint
	PointCount  int
}

// clipVertex is one vertex produced by clipSegmentToLine, tagged with the
// feature that will own it if it survives clipping.
type clipVertex struct {
	v       math2d.Vec2
	feature ContactFeature
}

// clipSegmentToLine clips segment [vIn[0], vIn[1]] to the half-plane
// normal.Dot(x) <= offset, replacing any vertex outside the plane with
// the edge/plane intersection point tagged with clipEdge so the solver
// can still identify it as belonging to that reference edge.
func clipSegmentToLine(vIn [2]clipVertex, normal math2d.Vec2, offset float64, clipEdge int) ([2]clipVertex, int) {
	var vOut [2]clipVertex
	numOut := 0

	dist0 := math2d.Dot(normal, vIn[0].v) - offset
	dist1 := math2d.Dot(normal, vIn[1].v) - offset

	if dist0 <= 0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if dist1 <= 0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	if dist0*dist1 < 0 {
		interp := dist0 / (dist0 - dist1)
		v := math2d.Plus(vIn[0].v, math2d.Mul(math2d.Minus(vIn[1].v, vIn[0].v), interp))
		vOut[numOut] = clipVertex{
			v: v,
			feature: ContactFeature{
				TypeA: FaceFeature, IndexA: clipEdge,
				TypeB: VertexFeature, IndexB: vIn[0].feature.IndexB,
			},
		}
		numOut++
	}

	return vOut, numOut
}
