// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import "log/slog"

// Config groups every tunable constant spec.md §6 names into one struct
// with documented defaults, constructed through NewDefaultConfig in the
// teacher's style (`physics.NewPhysicsWorld()` in the Gekko3D reference
// returns a populated struct of tunables rather than package-level vars).
// World.New takes Config through a functional ConfigOption instead of a
// global mutable singleton — spec.md §9 explicitly forbids a shared
// gravity/config singleton.
type Config struct {
	LinearSlop           float64
	AngularSlop          float64
	PolygonRadius        float64
	MaxLinearCorrection  float64
	MaxAngularCorrection float64
	MaxTranslation       float64
	MaxRotation          float64
	VelocityThreshold    float64
	AABBExtension        float64
	AABBMultiplier       float64

	MaxManifoldPoints  int
	MaxPolygonVertices int
	MaxSimplexVertices int

	MaxDistanceIters int
	MaxToiIters      int
	MaxToiRootIters  int
	MaxSubSteps      int

	MinStillTimeToSleep   float64
	LinearSleepTolerance  float64
	AngularSleepTolerance float64

	// MaxBodies/MaxFixtures/MaxJoints/MaxContacts bound World capacity;
	// exceeding one fails the creating call with ErrCapacityExceeded. Zero
	// means unbounded.
	MaxBodies    int
	MaxFixtures  int
	MaxJoints    int
	MaxContacts  int

	// MaxTOISubIslandBodies bounds how many bodies a single TOI event can
	// pull in while walking the contact graph (spec.md §4.11 step 3).
	MaxTOISubIslandBodies int

	AllowSleeping     bool
	WarmStarting      bool
	ContinuousPhysics bool
	SubStepping       bool
	AutoClearForces   bool
}

// NewDefaultConfig returns spec.md §6's documented defaults: Box2D's usual
// b2_linearSlop/b2_angularSlop/b2_polygonRadius/... constants, 8 velocity
// and 3 position iterations worth of correction clamps, and every feature
// flag enabled except sub-stepping (single-pass solving is the common
// case; sub-stepping is opt-in for higher-fidelity sims).
func NewDefaultConfig() Config {
	const pi = 3.14159265358979323846
	linearSlop := 0.005
	return Config{
		LinearSlop:           linearSlop,
		AngularSlop:          2.0 / 180.0 * pi,
		PolygonRadius:        2 * linearSlop,
		MaxLinearCorrection:  0.2,
		MaxAngularCorrection: 8.0 / 180.0 * pi,
		MaxTranslation:       2.0,
		MaxRotation:          0.5 * pi,
		VelocityThreshold:    1.0,
		AABBExtension:        0.1,
		AABBMultiplier:       2.0,

		MaxManifoldPoints:  2,
		MaxPolygonVertices: 254,
		MaxSimplexVertices: 3,

		MaxDistanceIters: 20,
		MaxToiIters:      20,
		MaxToiRootIters:  30,
		MaxSubSteps:      48,

		MinStillTimeToSleep:   0.5,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * pi,

		MaxTOISubIslandBodies: 64,

		AllowSleeping:     true,
		WarmStarting:      true,
		ContinuousPhysics: true,
		SubStepping:       false,
		AutoClearForces:   true,
	}
}

// ConfigOption configures a World at construction time.
type ConfigOption func(*World)

// WithConfig overrides the World's tunables; omit to get NewDefaultConfig.
func WithConfig(cfg Config) ConfigOption {
	return func(w *World) { w.cfg = cfg }
}

// WithLogger redirects the World's diagnostics (non-convergence warnings,
// capacity-exceeded notices, degenerate-geometry rejections) to logger
// instead of slog.Default().
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(w *World) { w.logger = logger }
}
