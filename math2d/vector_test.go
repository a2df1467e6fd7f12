// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package math2d

import "testing"

func TestVecAdd(t *testing.T) {
	var v Vec2
	v.Add(Vec2{1, 2}, Vec2{3, 4})
	if !v.Eq(Vec2{4, 6}) {
		t.Errorf("expected {4 6}, got %+v", v)
	}
}

func TestVecUnit(t *testing.T) {
	unit, length := Vec2{3, 4}.Unit()
	if length != 5 {
		t.Errorf("expected length 5, got %v", length)
	}
	if !unit.Aeq(Vec2{0.6, 0.8}) {
		t.Errorf("expected {0.6 0.8}, got %+v", unit)
	}
}

func TestVecUnitZero(t *testing.T) {
	unit, length := Vec2{}.Unit()
	if length != 0 || !unit.Eq(Vec2{}) {
		t.Errorf("expected zero vector and zero length, got %+v %v", unit, length)
	}
}

func TestCrossAndPerp(t *testing.T) {
	if got := Cross(Vec2{1, 0}, Vec2{0, 1}); got != 1 {
		t.Errorf("expected cross({1 0},{0 1}) == 1, got %v", got)
	}
	if got := Perp(Vec2{1, 0}); !got.Eq(Vec2{0, 1}) {
		t.Errorf("expected perp({1 0}) == {0 1}, got %+v", got)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	q := NewRot(0.7)
	v := Vec2{2, -3}
	rotated := RotateVec(q, v)
	back := InvRotateVec(q, rotated)
	if !back.Aeq(v) {
		t.Errorf("round trip rotation mismatch: got %+v want %+v", back, v)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := NewTransform(Vec2{1, 2}, 0.3)
	local := Vec2{5, -1}
	world := MulT2(tr, local)
	back := MulTT2(tr, world)
	if !back.Aeq(local) {
		t.Errorf("transform round trip mismatch: got %+v want %+v", back, local)
	}
}

func TestSolve22(t *testing.T) {
	m := Mat22{Col1: Vec2{2, 0}, Col2: Vec2{0, 4}}
	x := Solve22(m, Vec2{4, 8})
	if !x.Aeq(Vec2{2, 2}) {
		t.Errorf("expected {2 2}, got %+v", x)
	}
}

func TestSolve22Singular(t *testing.T) {
	m := Mat22{Col1: Vec2{1, 1}, Col2: Vec2{1, 1}}
	x := Solve22(m, Vec2{1, 1})
	if x.X != 0 || x.Y != 0 {
		t.Errorf("expected zero fallback for singular matrix, got %+v", x)
	}
}
