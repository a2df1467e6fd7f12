// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package toi

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

func diskSweep(center math2d.Vec2) math2d.Sweep {
	return math2d.Sweep{C0: center, C1: center, Alpha0: 0}
}

func TestTimeOfImpactSeparatedStaysSeparated(t *testing.T) {
	disk := shape.NewDisk(0.5)
	proxy := disk.DistanceProxy(0)

	out := TimeOfImpact(DefaultConfig(), Input{
		ProxyA: proxy, ProxyB: proxy,
		SweepA: diskSweep(math2d.Vec2{X: 0, Y: 0}),
		SweepB: diskSweep(math2d.Vec2{X: 10, Y: 0}),
		TMax:   1,
	})
	if out.State != Separated {
		t.Fatalf("expected two disks 10 units apart moving nowhere to stay Separated, got %v", out.State)
	}
}

func TestTimeOfImpactOverlappedAtStart(t *testing.T) {
	disk := shape.NewDisk(0.5)
	proxy := disk.DistanceProxy(0)

	out := TimeOfImpact(DefaultConfig(), Input{
		ProxyA: proxy, ProxyB: proxy,
		SweepA: diskSweep(math2d.Vec2{X: 0, Y: 0}),
		SweepB: diskSweep(math2d.Vec2{X: 0.1, Y: 0}),
		TMax:   1,
	})
	if out.State != Overlapped {
		t.Fatalf("expected two overlapping unit-radius disks to report Overlapped at t=0, got %v", out.State)
	}
	if out.T != 0 {
		t.Fatalf("expected Overlapped's T to be 0, got %v", out.T)
	}
}

func TestTimeOfImpactFindsApproachingDisks(t *testing.T) {
	disk := shape.NewDisk(0.5)
	proxy := disk.DistanceProxy(0)

	sweepB := math2d.Sweep{C0: math2d.Vec2{X: 5, Y: 0}, C1: math2d.Vec2{X: -5, Y: 0}, Alpha0: 0}

	out := TimeOfImpact(DefaultConfig(), Input{
		ProxyA: proxy, ProxyB: proxy,
		SweepA: diskSweep(math2d.Vec2{X: 0, Y: 0}),
		SweepB: sweepB,
		TMax:   1,
	})
	if out.State != Touching {
		t.Fatalf("expected a disk sweeping through another to report Touching before TMax, got %v", out.State)
	}
	if out.T <= 0 || out.T >= 1 {
		t.Fatalf("expected the impact time to fall strictly inside (0,1), got %v", out.T)
	}
	if out.RootIters == 0 {
		t.Fatalf("expected the bisection to report a nonzero RootIters count")
	}
}
