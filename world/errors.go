// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import "errors"

// Sentinel errors for the four surfaced error kinds of spec.md §7.
// Mutators return these directly (wrap with fmt.Errorf("%w: ...", Err...)
// only where extra context is worth the allocation) so callers can test
// with errors.Is, matching the teacher's plain stdlib-error style.
var (
	// ErrWorldLocked is returned by the Create*/Destroy* mutators when
	// called during a Step callback (begin/end-contact, pre-solve,
	// post-solve). SetBodyTransform, SetBodyAwake and SetBodyEnabled do
	// not check the lock.
	ErrWorldLocked = errors.New("rigid2d: world is locked")

	// ErrCapacityExceeded is returned when creating a body, fixture or
	// joint would exceed the World's configured capacity.
	ErrCapacityExceeded = errors.New("rigid2d: capacity exceeded")

	// ErrInvalidArgument is returned for NaN/infinite input, a negative
	// density or friction, or an unknown ID passed to a mutator.
	ErrInvalidArgument = errors.New("rigid2d: invalid argument")

	// ErrDegenerateGeometry names the degenerate-geometry error kind at the
	// world level. CreateFixture does not return it: it receives an
	// already-built shape, and the shape constructors report degenerate
	// input with shape.ErrDegenerateGeometry.
	ErrDegenerateGeometry = errors.New("rigid2d: degenerate geometry")
)
