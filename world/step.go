// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/contact"
	"github.com/gazed/rigid2d/island"
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
	"github.com/gazed/rigid2d/toi"
)

// Step advances the simulation by dt seconds, per spec.md §4/§6: the
// contact lifecycle, gravity application, per-island velocity+position
// solving, broad-phase resynchronization, and (if ContinuousPhysics is
// enabled) the TOI sub-stepping pass, in that fixed order, grounded on
// `original_source/Box2D/Box2D/Dynamics/World.h`'s Step. The World is
// locked for the duration of the call: every listener callback fired from
// within Step sees IsLocked() true and any Create*/Destroy* call it makes
// fails with ErrWorldLocked.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) StepStats {
	var stats StepStats
	w.arena.Reset()
	if dt <= 0 {
		return stats
	}

	dtRatio := 0.0
	if w.invDt0 > 0 {
		dtRatio = dt * w.invDt0
	}

	w.locked = true
	defer func() { w.locked = false }()

	stats.ProxiesCreated = w.proxiesCreatedSinceStep
	w.proxiesCreatedSinceStep = 0

	beforeFind := len(w.contacts.Contacts())
	w.contacts.FindNewContacts()
	afterFind := len(w.contacts.Contacts())
	stats.ContactsAdded = afterFind - beforeFind

	w.contacts.Purge(w.contactListener)
	afterPurge := len(w.contacts.Contacts())
	stats.ContactsDestroyed = afterFind - afterPurge

	w.contacts.Update(w.contactListener)
	stats.ContactsUpdated = afterPurge

	allContacts := w.contacts.Contacts()
	for _, c := range allContacts {
		c.ResetTOI()
	}

	w.applyGravity()

	bodies := w.bodiesBuf.Get(len(w.bodies))
	i := 0
	for _, b := range w.bodies {
		bodies[i] = b
		i++
	}
	islands := island.Build(bodies, allContacts)
	stats.IslandsFound = len(islands)
	stats.IslandsSolved = len(islands)
	stats.SumVelocityIters = velocityIterations * len(islands)
	stats.SumPositionIters = positionIterations * len(islands)

	cfg := w.islandConfig(velocityIterations, positionIterations)

	wasAwake := make(map[*body.Body]bool, len(bodies))
	for _, b := range bodies {
		wasAwake[b] = b.IsAwake()
	}

	for _, isl := range islands {
		isl.Solve(cfg, dt, dtRatio, w.cfg.WarmStarting)
		if w.contactListener != nil {
			for _, c := range isl.Contacts {
				if c.IsTouching() && !c.IsSensor() {
					w.contactListener.PostSolve(c, impulseOf(c))
				}
			}
		}
	}

	for _, b := range bodies {
		if wasAwake[b] && !b.IsAwake() {
			stats.BodiesSlept++
		}
	}

	for _, f := range w.fixtures {
		b := f.Body
		displacement := math2d.Minus(b.Sweep.C1, b.Sweep.C0)
		stats.ProxiesMoved += f.Synchronize(w.tree, w.pairs, b.Transform, displacement, w.cfg.AABBExtension)
	}

	if w.cfg.ContinuousPhysics {
		w.solveTOI(dt, &stats)
	}

	if w.cfg.AutoClearForces {
		for _, b := range bodies {
			if b.Type == body.Dynamic && (!b.IsAwake() || !b.IsEnabled()) {
				b.LinearAcceleration = math2d.Vec2{}
				b.AngularAcceleration = 0
			}
		}
	}

	w.invDt0 = 1 / dt
	return stats
}

// applyGravity folds constant gravity into every dynamic body's
// acceleration accumulator, Box2D's Island::Solve gravity term lifted up
// to World.Step since this engine's solver.Config has no gravity field of
// its own — bodies accumulate forces (spec.md's Body.apply_force) and
// gravity into the same LinearAcceleration slot, per
// `reference/physics_teacher/physics.go`'s Simulate (accumulate gravity as
// a force on every non-fixed body before the solve, every step).
func (w *World) applyGravity() {
	for _, b := range w.bodies {
		if b.Type != body.Dynamic {
			continue
		}
		b.LinearAcceleration = math2d.Plus(b.LinearAcceleration, w.gravity)
	}
}

// islandConfig builds an island.Config from the World's tunables, per-call
// iteration counts, and island.DefaultConfig's Baumgarte/erp default (not
// one of the tunables world.Config exposes).
func (w *World) islandConfig(velocityIterations, positionIterations int) island.Config {
	cfg := island.DefaultConfig()
	cfg.Solver.VelocityThreshold = w.cfg.VelocityThreshold
	cfg.Solver.LinearSlop = w.cfg.LinearSlop
	cfg.Solver.MaxLinearCorrection = w.cfg.MaxLinearCorrection
	cfg.Solver.VelocityIterations = velocityIterations
	cfg.Solver.PositionIterations = positionIterations
	cfg.Joint.LinearSlop = w.cfg.LinearSlop
	cfg.Joint.AngularSlop = w.cfg.AngularSlop
	cfg.Joint.MaxLinearCorrection = w.cfg.MaxLinearCorrection
	cfg.Joint.MaxAngularCorrection = w.cfg.MaxAngularCorrection
	cfg.MaxTranslation = w.cfg.MaxTranslation
	cfg.MaxRotation = w.cfg.MaxRotation
	cfg.AllowSleep = w.cfg.AllowSleeping
	cfg.MinStillTimeToSleep = w.cfg.MinStillTimeToSleep
	cfg.LinearSleepTolerance = w.cfg.LinearSleepTolerance
	cfg.AngularSleepTolerance = w.cfg.AngularSleepTolerance
	return cfg
}

func (w *World) toiConfig() toi.Config {
	return toi.Config{LinearSlop: w.cfg.LinearSlop, MaxRootIters: w.cfg.MaxToiRootIters}
}

func (w *World) toiSolveConfig() toi.SolveConfig {
	cfg := toi.DefaultSolveConfig()
	cfg.Solver.LinearSlop = w.cfg.LinearSlop
	cfg.Solver.VelocityThreshold = w.cfg.VelocityThreshold
	cfg.Solver.MaxLinearCorrection = w.cfg.MaxLinearCorrection
	return cfg
}

func bulletPair(a, b *body.Body) bool { return a.IsBullet() || b.IsBullet() }

// distanceProxy mirrors contact package's unexported proxy/childShapeOf
// helpers (contact/contact.go): a Chain shape's children are edges
// extracted on demand, every other shape has exactly one child and is its
// own proxy source.
func distanceProxy(s shape.Shape, child int) shape.DistanceProxy {
	return childShapeOf(s, child).DistanceProxy(0)
}

func childShapeOf(s shape.Shape, child int) shape.Shape {
	if c, ok := s.(*shape.ChainShape); ok {
		e := c.ChildEdge(child)
		return &e
	}
	return s
}

// solveTOI is spec.md §4.11's continuous-collision pass: repeatedly find
// the contact with the earliest time of impact among bullet pairs (or
// pairs involving a bullet), advance its two bodies' sweeps to that time,
// resolve a sub-island seeded from it, and repeat until no contact has a
// TOI before the end of the step, the configured MaxSubSteps budget is
// spent, or (with SubStepping enabled) one event has been resolved.
func (w *World) solveTOI(dt float64, stats *StepStats) {
	tCfg := w.toiConfig()
	sCfg := w.toiSolveConfig()

	for iter := 0; iter < w.cfg.MaxSubSteps; iter++ {
		var minContact *contact.Contact
		minAlpha := 1.0

		for _, c := range w.contacts.Contacts() {
			if c.ToiCount >= w.cfg.MaxSubSteps {
				stats.TOIContactsAtMaxSubSteps++
				continue
			}
			if !c.IsEnabled() || c.IsSensor() {
				continue
			}
			fa, fb := c.FixtureA.Body, c.FixtureB.Body
			if !bulletPair(fa, fb) {
				continue
			}
			if !fa.IsAwake() && !fb.IsAwake() {
				continue
			}
			if !fa.IsAccelerable() && !fb.IsAccelerable() {
				continue
			}

			var alpha float64
			if c.HasValidTOI() {
				alpha = c.TOI
			} else {
				out := toi.TimeOfImpact(tCfg, toi.Input{
					ProxyA: distanceProxy(c.FixtureA.Shape, c.ChildA),
					ProxyB: distanceProxy(c.FixtureB.Shape, c.ChildB),
					SweepA: fa.Sweep,
					SweepB: fb.Sweep,
					TMax:   1,
				})
				if out.RootIters > stats.MaxToiRootIters {
					stats.MaxToiRootIters = out.RootIters
				}
				if out.MaxDistanceIters > stats.MaxDistanceIters {
					stats.MaxDistanceIters = out.MaxDistanceIters
				}
				if out.State == toi.Touching {
					alpha = out.T
				} else {
					alpha = 1
				}
				c.SetTOI(alpha)
			}

			if alpha < minAlpha {
				minAlpha = alpha
				minContact = c
			}
		}

		if minContact == nil || minAlpha >= 1 {
			return
		}

		a, b := minContact.FixtureA.Body, minContact.FixtureB.Body
		backupA, backupB := a.Sweep, b.Sweep
		a.Sweep.Advance(minAlpha)
		b.Sweep.Advance(minAlpha)
		a.SynchronizeTransform()
		b.SynchronizeTransform()

		minContact.Update(w.contactListener)
		if !minContact.IsTouching() || !minContact.IsEnabled() {
			a.Sweep = backupA
			b.Sweep = backupB
			a.SynchronizeTransform()
			b.SynchronizeTransform()
			minContact.Flags &^= contact.FlagTOI
			minContact.ToiCount++
			continue
		}

		stats.TOIContactsFound++
		sub := toi.BuildSubIsland(minContact, minAlpha, w.cfg.MaxTOISubIslandBodies)
		remaining := (1 - minAlpha) * dt
		sub.Solve(sCfg, remaining)

		for _, c := range sub.Contacts {
			c.ToiCount++
			c.Flags &^= contact.FlagTOI
		}
		for _, bd := range sub.Bodies {
			displacement := math2d.Minus(bd.Sweep.C1, bd.Sweep.C0)
			for _, f := range bd.Fixtures {
				stats.ProxiesMoved += f.Synchronize(w.tree, w.pairs, bd.Transform, displacement, w.cfg.AABBExtension)
			}
		}

		stats.MaxTOIIters++
		if w.cfg.SubStepping {
			return
		}
	}
}
