// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package toi implements spec.md §4.11's continuous-collision pipeline: a
// conservative-advancement root finder that computes the time of impact
// between two swept shapes, and the sub-island build/solve that resolves
// the earliest impact found across a world's fast-moving bodies.
//
// No `b2TimeOfImpact.cpp` was retrieved in original_source/, so the root
// finder below follows spec.md §4.11 directly — bisecting on the GJK
// separation distance between the two sweeps rather than Box2D's analytic
// separating-axis function — while borrowing the bounded, counter-driven
// iteration style of `reference/physics_teacher/epa.go`'s polytope
// expansion loop (a fixed iteration cap, never an unbounded loop, with the
// best result kept on non-convergence rather than a panic).
package toi

import (
	"math"

	"github.com/gazed/rigid2d/distance"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// State describes how a TimeOfImpact call concluded.
type State int

const (
	Unknown State = iota
	Failed
	Overlapped
	Touching
	Separated
)

func (s State) String() string {
	switch s {
	case Failed:
		return "failed"
	case Overlapped:
		return "overlapped"
	case Touching:
		return "touching"
	case Separated:
		return "separated"
	default:
		return "unknown"
	}
}

// Config bundles the tunables spec.md §4.11/§6 names for the TOI root
// finder.
type Config struct {
	LinearSlop   float64
	MaxRootIters int // maxToiRootIters
}

// DefaultConfig matches Box2D's b2_linearSlop and a root-iteration budget
// of 30, per spec.md §6.
func DefaultConfig() Config {
	return Config{LinearSlop: 0.005, MaxRootIters: 30}
}

// Input bundles the two proxies, their sweeps, and the fraction of the
// step remaining to search over.
type Input struct {
	ProxyA, ProxyB shape.DistanceProxy
	SweepA, SweepB math2d.Sweep
	TMax           float64
}

// Output is the result of a TimeOfImpact call: the time (in [0, TMax]) at
// which the two sweeps first reach target separation, and how the search
// concluded. RootIters and MaxDistanceIters report the iteration counts
// actually spent, for StepStats' maxToiRootIters/maxDistanceIters metrics.
type Output struct {
	State            State
	T                float64
	RootIters        int
	MaxDistanceIters int
}

// TimeOfImpact computes the earliest time in [0, input.TMax] at which the
// two swept proxies come within target separation of each other, per
// spec.md §4.11 step 1: bisect on the GJK distance between the sweeps at
// candidate times, bounded by cfg.MaxRootIters, reusing one distance.Cache
// across every candidate evaluated in this call so the simplex warm-starts
// iteration to iteration.
func TimeOfImpact(cfg Config, input Input) Output {
	sweepA, sweepB := input.SweepA, input.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	totalRadius := input.ProxyA.Radius + input.ProxyB.Radius
	target := math.Max(cfg.LinearSlop, totalRadius-3*cfg.LinearSlop)
	tolerance := 0.25 * cfg.LinearSlop

	var cache distance.Cache
	maxDistanceIters := 0
	separationAt := func(t float64) float64 {
		xfA := sweepA.Transform(t)
		xfB := sweepB.Transform(t)
		out := distance.Distance(&cache, distance.Input{
			ProxyA: input.ProxyA, TransformA: xfA,
			ProxyB: input.ProxyB, TransformB: xfB,
		})
		if out.Iterations > maxDistanceIters {
			maxDistanceIters = out.Iterations
		}
		return out.Distance
	}

	d0 := separationAt(0)
	if d0 <= 0 {
		return Output{State: Overlapped, T: 0, MaxDistanceIters: maxDistanceIters}
	}
	if d0 < target+tolerance {
		return Output{State: Touching, T: 0, MaxDistanceIters: maxDistanceIters}
	}

	tMax := input.TMax
	dMax := separationAt(tMax)
	if dMax >= target+tolerance {
		return Output{State: Separated, T: tMax, MaxDistanceIters: maxDistanceIters}
	}
	if dMax <= 0 {
		dMax = 0
	}

	// Bisect for the time the separation first drops to target, keeping
	// [lo, hi] bracketing a still-separated time and a closer-than-target
	// time. d is not guaranteed strictly monotonic for rotating bodies, so
	// this is a conservative approximation: a degenerate bracket at the
	// iteration cap still returns the last known-safe time, never a time
	// that overshoots into overlap.
	lo, hi := 0.0, tMax
	dLo := d0
	t := lo
	state := Failed
	rootIters := 0

	for i := 0; i < cfg.MaxRootIters; i++ {
		rootIters = i + 1
		mid := 0.5 * (lo + hi)
		dm := separationAt(mid)

		if math.Abs(dm-target) < tolerance {
			t, state = mid, Touching
			break
		}
		if dm < 0 {
			hi = mid
			continue
		}
		if dm > target {
			lo, dLo = mid, dm
		} else {
			hi = mid
		}
		t = lo
	}

	if state != Touching {
		if dLo < target+tolerance {
			state = Touching
		} else {
			state = Failed
		}
	}
	return Output{State: state, T: t, RootIters: rootIters, MaxDistanceIters: maxDistanceIters}
}
