// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package world

import (
	"github.com/gazed/rigid2d/body"
	"github.com/gazed/rigid2d/joint"
)

// CreateJoint registers an already-constructed joint (joint.NewRevolute,
// joint.NewDistance, ...) with the World, linking it into both endpoint
// bodies' joint edges. The joint package has no single discriminated-union
// config type spanning all eleven variants, unlike body/fixture — each
// variant keeps its own NewXxx constructor — so CreateJoint takes the
// already-built joint.Joint directly rather than inventing one, per
// DESIGN.md's Open Questions.
func (w *World) CreateJoint(j joint.Joint) (JointID, error) {
	if w.locked {
		return JointID{}, ErrWorldLocked
	}
	if j == nil {
		return JointID{}, ErrInvalidArgument
	}
	if w.cfg.MaxJoints > 0 && len(w.joints) >= w.cfg.MaxJoints {
		return JointID{}, ErrCapacityExceeded
	}
	a, b := j.BodyA(), j.BodyB()
	if _, ok := w.bodyIDs[a]; !ok {
		return JointID{}, ErrInvalidArgument
	}
	if _, ok := w.bodyIDs[b]; !ok {
		return JointID{}, ErrInvalidArgument
	}

	a.SetAwake(true)
	b.SetAwake(true)

	edgeAB := &body.JointEdge{Other: b, Joint: j}
	edgeBA := &body.JointEdge{Other: a, Joint: j}
	a.JointEdges = append(a.JointEdges, edgeAB)
	b.JointEdges = append(b.JointEdges, edgeBA)

	if !j.CollideConnected() {
		flagContactsBetween(a, b)
	}

	id := newJointID()
	w.joints[id] = j
	w.jointIDs[j] = id
	return id, nil
}

// flagContactsBetween marks every existing contact between a and b for
// re-filtering, Box2D's b2World::CreateJoint behavior when the new joint
// disables collision between its two bodies.
func flagContactsBetween(a, b *body.Body) {
	for _, ce := range a.ContactEdges {
		if ce.Other != b {
			continue
		}
		if c, ok := ce.Contact.(interface{ FlagForFiltering() }); ok {
			c.FlagForFiltering()
		}
	}
}

// DestroyJoint removes a joint, unlinking it from both endpoint bodies.
// Fails with ErrWorldLocked mid-Step or ErrInvalidArgument for an unknown
// id.
func (w *World) DestroyJoint(id JointID) error {
	if w.locked {
		return ErrWorldLocked
	}
	if _, ok := w.joints[id]; !ok {
		return ErrInvalidArgument
	}
	return w.destroyJoint(id, false)
}

func (w *World) destroyJoint(id JointID, cascade bool) error {
	j := w.joints[id]
	a, b := j.BodyA(), j.BodyB()
	a.SetAwake(true)
	b.SetAwake(true)

	removeJointEdge(a, j)
	removeJointEdge(b, j)

	delete(w.joints, id)
	delete(w.jointIDs, j)

	if cascade && w.destructionListener != nil {
		w.destructionListener.SayGoodbyeJoint(j)
	}
	return nil
}

// removeJointEdge swap-removes b's edge for j. je.Joint (a body.Joint) and
// j (a joint.Joint) are both interface-typed, so they compare directly
// with == — joint.Joint's method set is a superset of body.Joint's, so a
// joint.Joint value is assignable to a body.Joint-typed operand and the
// comparison is valid without a type assertion.
func removeJointEdge(b *body.Body, j joint.Joint) {
	for i, e := range b.JointEdges {
		if e.Joint == j {
			b.JointEdges[i] = b.JointEdges[len(b.JointEdges)-1]
			b.JointEdges = b.JointEdges[:len(b.JointEdges)-1]
			return
		}
	}
}

// Joint returns the live joint.Joint for id, or nil if id is stale.
func (w *World) Joint(id JointID) joint.Joint { return w.joints[id] }
