// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

// StepStats is the observable output of one World.Step call, per spec.md
// §6: pre-step broad-phase/contact-lifecycle counters, regular-step
// solver counters, and TOI-step counters. Equality is defined field-wise
// (a plain struct comparison, since every field is itself comparable) and
// must be stable across runs given identical inputs.
type StepStats struct {
	// Pre-step: broad-phase and contact-lifecycle counters.
	ProxiesCreated  int
	ProxiesMoved    int
	ContactsAdded   int
	ContactsUpdated int
	ContactsDestroyed int
	ContactsSkipped int // failed filtering before a Contact was even created
	ContactsIgnored int // FlagForFiltering rejected an existing contact

	// Regular-step: island/solver counters.
	IslandsFound      int
	IslandsSolved     int
	BodiesSlept       int
	MinSeparation     float64
	MaxIncImpulse     float64
	SumVelocityIters  int
	SumPositionIters  int

	// TOI-step counters.
	TOIContactsFound         int
	TOIContactsAtMaxSubSteps int
	MaxDistanceIters         int
	MaxToiRootIters          int
	MaxTOIIters              int
}

// Equal reports whether s and other carry identical field values.
func (s StepStats) Equal(other StepStats) bool { return s == other }
