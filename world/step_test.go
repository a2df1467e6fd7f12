// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"testing"

	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
	"github.com/stretchr/testify/require"
)

// TestDroppedSquareSettlesOnGroundAndSleeps is spec.md §8 scenario 5: a
// unit square dropped from (0,5) under gravity (0,-10) onto a static
// horizontal edge at y=0 comes to rest with its center near y=0.5 and
// eventually sleeps.
func TestDroppedSquareSettlesOnGroundAndSleeps(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.AllowSleeping = true
	w := New(math2d.Vec2{X: 0, Y: -10}, WithConfig(cfg))

	groundID, err := w.CreateBody(BodyDef{Type: body.Static, Position: math2d.Zero2})
	require.NoError(t, err)
	edge, err := shape.NewEdge(math2d.Vec2{X: -10, Y: 0}, math2d.Vec2{X: 10, Y: 0}, 0)
	require.NoError(t, err)
	_, err = w.CreateFixture(groundID, FixtureDef{Shape: edge})
	require.NoError(t, err)

	squareID, err := w.CreateBody(BodyDef{Type: body.Dynamic, Position: math2d.Vec2{X: 0, Y: 5}})
	require.NoError(t, err)
	_, err = w.CreateFixture(squareID, FixtureDef{Shape: shape.NewBox(0.5, 0.5, 0), Density: 1})
	require.NoError(t, err)

	const dt = 1.0 / 60
	asleepAt := -1
	for i := 0; i < 300; i++ {
		w.Step(dt, 8, 3)
		if !w.Body(squareID).IsAwake() {
			asleepAt = i
			break
		}
	}

	square := w.Body(squareID)
	require.InDelta(t, 0.5, square.WorldCenter().Y, 0.05, "square should settle with its center near y=0.5")
	require.LessOrEqual(t, square.LinearVelocity.Len(), cfg.LinearSleepTolerance+1e-6,
		"a settled, sleeping square should have near-zero linear velocity")
	require.GreaterOrEqual(t, asleepAt, 0, "expected the square to fall asleep within the simulated window")
}

// TestNewtonsCradlePropagatesImpulse is spec.md §8 scenario 6: five
// touching unit disks along the x-axis, the leftmost struck at v=(10,0).
// After stepping with warm-starting and continuous physics on, the
// impulse should propagate toward the rightmost disk while the leftmost
// sheds most of its velocity.
func TestNewtonsCradlePropagatesImpulse(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.WarmStarting = true
	cfg.ContinuousPhysics = true
	w := New(math2d.Zero2, WithConfig(cfg))

	const n = 5
	ids := make([]BodyID, n)
	for i := 0; i < n; i++ {
		id, err := w.CreateBody(BodyDef{Type: body.Dynamic, Position: math2d.Vec2{X: float64(i) * 0.999, Y: 0}})
		require.NoError(t, err)
		_, err = w.CreateFixture(id, FixtureDef{Shape: shape.NewDisk(0.5), Density: 1, Restitution: 1})
		require.NoError(t, err)
		ids[i] = id
	}
	w.Body(ids[0]).LinearVelocity = math2d.Vec2{X: 10, Y: 0}

	for i := 0; i < 4; i++ {
		w.Step(1.0/60, 8, 3)
	}

	leftmost := w.Body(ids[0])
	rightmost := w.Body(ids[n-1])
	require.Less(t, leftmost.LinearVelocity.X, 5.0, "expected the struck disk to shed most of its velocity")
	require.Greater(t, rightmost.LinearVelocity.X, 0.1, "expected the impulse to propagate to the rightmost disk")
}
