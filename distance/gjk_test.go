// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package distance

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func TestDistanceSeparatedDisks(t *testing.T) {
	a := shape.DistanceProxy{Vertices: []math2d.Vec2{{X: 0, Y: 0}}, Radius: 1}
	b := shape.DistanceProxy{Vertices: []math2d.Vec2{{X: 0, Y: 0}}, Radius: 1}

	xfA := math2d.IdentityTransform
	xfB := math2d.NewTransform(math2d.Vec2{X: 5, Y: 0}, 0)

	var cache Cache
	out := Distance(&cache, Input{ProxyA: a, ProxyB: b, TransformA: xfA, TransformB: xfB, UseRadii: true})

	if diff := out.Distance - 3; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("distance = %v, want 3", out.Distance)
	}
}

func TestDistanceOverlappingDisks(t *testing.T) {
	a := shape.DistanceProxy{Vertices: []math2d.Vec2{{X: 0, Y: 0}}, Radius: 1}
	b := shape.DistanceProxy{Vertices: []math2d.Vec2{{X: 0, Y: 0}}, Radius: 1}

	xfA := math2d.IdentityTransform
	xfB := math2d.NewTransform(math2d.Vec2{X: 0.5, Y: 0}, 0)

	var cache Cache
	out := Distance(&cache, Input{ProxyA: a, ProxyB: b, TransformA: xfA, TransformB: xfB, UseRadii: true})

	if out.Distance != 0 {
		t.Errorf("expected zero distance for overlapping disks, got %v", out.Distance)
	}
}

func TestDistanceCacheWarmStart(t *testing.T) {
	a := shape.DistanceProxy{Vertices: []math2d.Vec2{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
	}}
	b := shape.DistanceProxy{Vertices: []math2d.Vec2{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
	}}

	xfA := math2d.IdentityTransform
	xfB := math2d.NewTransform(math2d.Vec2{X: 4, Y: 0}, 0)

	var cache Cache
	out1 := Distance(&cache, Input{ProxyA: a, ProxyB: b, TransformA: xfA, TransformB: xfB})
	out2 := Distance(&cache, Input{ProxyA: a, ProxyB: b, TransformA: xfA, TransformB: xfB})

	if diff := out1.Distance - out2.Distance; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("warm-started distance %v differs from first call %v", out2.Distance, out1.Distance)
	}
	if diff := out1.Distance - 2; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("box-box distance = %v, want 2", out1.Distance)
	}
}
