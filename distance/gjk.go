// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package distance implements the GJK closest-point query used by the
// contact package's sensor touching test and the continuous collision
// solver's conservative advancement.
package distance

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

const maxIterations = 20

// simplexVertex is one support-point pair (wA, wB) plus the barycentric
// weight assigned to it by the most recent Solve.
type simplexVertex struct {
	wA, wB         math2d.Vec2
	w              math2d.Vec2 // wB - wA
	indexA, indexB int
	a              float64
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

// Cache carries the simplex indices and metric from one Distance call to
// the next so that successive queries between the same pair of proxies
// (typical across simulation steps) converge in very few iterations.
type Cache struct {
	metric       float64
	indexA       [3]int
	indexB       [3]int
	count        int
}

func (s *simplex) readCache(cache *Cache, proxyA shape.DistanceProxy, xfA math2d.Transform, proxyB shape.DistanceProxy, xfB math2d.Transform) {
	count := cache.count
	if count > 3 {
		count = 0
	}
	for i := 0; i < count; i++ {
		ia, ib := cache.indexA[i], cache.indexB[i]
		wA := math2d.MulT2(xfA, proxyA.Vertices[ia])
		wB := math2d.MulT2(xfB, proxyB.Vertices[ib])
		s.v[i] = simplexVertex{wA: wA, wB: wB, w: math2d.Minus(wB, wA), indexA: ia, indexB: ib}
	}
	s.count = count

	if s.count > 1 {
		metric1 := cache.metric
		metric2 := s.metric()
		if metric2 < metric1/2 || metric2 > metric1*2 || metric2 < math2d.Epsilon {
			s.count = 0
		}
	}

	if s.count == 0 {
		wA := math2d.MulT2(xfA, proxyA.Vertices[0])
		wB := math2d.MulT2(xfB, proxyB.Vertices[0])
		s.v[0] = simplexVertex{wA: wA, wB: wB, w: math2d.Minus(wB, wA), a: 1}
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *Cache) {
	cache.metric = s.metric()
	cache.count = s.count
	for i := 0; i < s.count; i++ {
		cache.indexA[i] = s.v[i].indexA
		cache.indexB[i] = s.v[i].indexB
	}
}

func (s *simplex) searchDirection() math2d.Vec2 {
	switch s.count {
	case 1:
		return math2d.Mul(s.v[0].w, -1)
	case 2:
		e12 := math2d.Minus(s.v[1].w, s.v[0].w)
		sgn := math2d.Cross(e12, math2d.Mul(s.v[0].w, -1))
		if sgn > 0 {
			return math2d.CrossSV(1, e12)
		}
		return math2d.CrossVS(e12, 1)
	default:
		return math2d.Zero2
	}
}

func (s *simplex) closestPoint() math2d.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return math2d.Plus(math2d.Mul(s.v[0].w, s.v[0].a), math2d.Mul(s.v[1].w, s.v[1].a))
	default:
		return math2d.Zero2
	}
}

func (s *simplex) witnessPoints() (pA, pB math2d.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = math2d.Plus(math2d.Mul(s.v[0].wA, s.v[0].a), math2d.Mul(s.v[1].wA, s.v[1].a))
		pB = math2d.Plus(math2d.Mul(s.v[0].wB, s.v[0].a), math2d.Mul(s.v[1].wB, s.v[1].a))
		return pA, pB
	case 3:
		pA = math2d.Plus(math2d.Plus(math2d.Mul(s.v[0].wA, s.v[0].a), math2d.Mul(s.v[1].wA, s.v[1].a)), math2d.Mul(s.v[2].wA, s.v[2].a))
		return pA, pA
	default:
		return math2d.Zero2, math2d.Zero2
	}
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 1:
		return 0
	case 2:
		return math2d.Distance(s.v[0].w, s.v[1].w)
	case 3:
		return math2d.Cross(math2d.Minus(s.v[1].w, s.v[0].w), math2d.Minus(s.v[2].w, s.v[0].w))
	default:
		return 0
	}
}

// solve2 solves a 1-simplex (segment) in barycentric coordinates per
// Ericson's closest-point-on-segment-to-origin derivation.
func (s *simplex) solve2() {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := math2d.Minus(w2, w1)

	d12_2 := -math2d.Dot(w1, e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	d12_1 := math2d.Dot(w2, e12)
	if d12_1 <= 0 {
		s.v[1].a = 1
		s.v[0] = s.v[1]
		s.count = 1
		return
	}

	inv := 1 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 solves a 2-simplex (triangle) against the origin, classifying
// into one of the seven Voronoi regions (three vertices, three edges,
// interior).
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := math2d.Minus(w2, w1)
	w1e12 := math2d.Dot(w1, e12)
	w2e12 := math2d.Dot(w2, e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := math2d.Minus(w3, w1)
	w1e13 := math2d.Dot(w1, e13)
	w3e13 := math2d.Dot(w3, e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := math2d.Minus(w3, w2)
	w2e23 := math2d.Dot(w2, e23)
	w3e23 := math2d.Dot(w3, e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := math2d.Cross(e12, e13)
	d123_1 := n123 * math2d.Cross(w2, w3)
	d123_2 := n123 * math2d.Cross(w3, w1)
	d123_3 := n123 * math2d.Cross(w1, w2)

	if d12_2 <= 0 && d13_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	if d12_1 > 0 && d12_2 > 0 && d123_3 <= 0 {
		inv := 1 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
		return
	}

	if d13_1 > 0 && d13_2 > 0 && d123_2 <= 0 {
		inv := 1 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[2].a = d13_2 * inv
		s.count = 2
		s.v[1] = s.v[2]
		return
	}

	if d12_1 <= 0 && d23_2 <= 0 {
		s.v[1].a = 1
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	if d13_1 <= 0 && d23_1 <= 0 {
		s.v[2].a = 1
		s.count = 1
		s.v[0] = s.v[2]
		return
	}

	if d23_1 > 0 && d23_2 > 0 && d123_1 <= 0 {
		inv := 1 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.count = 2
		s.v[0] = s.v[2]
		return
	}

	inv := 1 / (d123_1 + d123_2 + d123_3)
	s.v[0].a = d123_1 * inv
	s.v[1].a = d123_2 * inv
	s.v[2].a = d123_3 * inv
	s.count = 3
}

// Input bundles the two proxies and their world transforms for a
// Distance query.
type Input struct {
	ProxyA, ProxyB shape.DistanceProxy
	TransformA, TransformB math2d.Transform
	UseRadii       bool
}

// Output is the result of a Distance query.
type Output struct {
	PointA, PointB math2d.Vec2
	Distance       float64
	Iterations     int
}

// Distance runs GJK between input.ProxyA and input.ProxyB, reading and
// updating cache to warm-start (and be warm-started by) subsequent calls
// for the same pair. When input.UseRadii is set the witness points and
// distance are adjusted outward by each proxy's skin radius, collapsing
// to a single point with zero distance if the padded shapes overlap.
func Distance(cache *Cache, input Input) Output {
	proxyA, proxyB := input.ProxyA, input.ProxyB
	xfA, xfB := input.TransformA, input.TransformB

	var simp simplex
	simp.readCache(cache, proxyA, xfA, proxyB, xfB)

	var saveA, saveB [3]int
	iter := 0
	for iter < maxIterations {
		saveCount := simp.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = simp.v[i].indexA
			saveB[i] = simp.v[i].indexB
		}

		switch simp.count {
		case 2:
			simp.solve2()
		case 3:
			simp.solve3()
		}

		if simp.count == 3 {
			break
		}

		d := simp.searchDirection()
		if d.LenSqr() < math2d.Epsilon*math2d.Epsilon {
			break
		}

		localDirA := math2d.InvRotateVec(xfA.Q, math2d.Mul(d, -1))
		localDirB := math2d.InvRotateVec(xfB.Q, d)
		indexA := proxyA.SupportIndex(localDirA)
		indexB := proxyB.SupportIndex(localDirB)

		iter++

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if indexA == saveA[i] && indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		wA := math2d.MulT2(xfA, proxyA.Vertices[indexA])
		wB := math2d.MulT2(xfB, proxyB.Vertices[indexB])
		simp.v[simp.count] = simplexVertex{wA: wA, wB: wB, w: math2d.Minus(wB, wA), indexA: indexA, indexB: indexB}
		simp.count++
	}

	pA, pB := simp.witnessPoints()
	out := Output{PointA: pA, PointB: pB, Distance: math2d.Distance(pA, pB), Iterations: iter}
	simp.writeCache(cache)

	if input.UseRadii {
		rA, rB := proxyA.Radius, proxyB.Radius
		total := rA + rB
		if out.Distance > total && out.Distance > math2d.Epsilon {
			out.Distance -= total
			normal, _ := math2d.Minus(out.PointB, out.PointA).Unit()
			out.PointA = math2d.Plus(out.PointA, math2d.Mul(normal, rA))
			out.PointB = math2d.Minus(out.PointB, math2d.Mul(normal, rB))
		} else {
			mid := math2d.Mul(math2d.Plus(out.PointA, out.PointB), 0.5)
			out.PointA, out.PointB = mid, mid
			out.Distance = 0
		}
	}

	return out
}
