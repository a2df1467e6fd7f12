// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package math2d

// Mat22 is a 2x2 matrix stored by column, matching the convention used by
// the rest of this package (Col1, Col2 are the transformed basis vectors).
type Mat22 struct {
	Col1, Col2 Vec2
}

// NewMat22FromAngle builds a rotation matrix from an angle.
func NewMat22FromAngle(angle float64) Mat22 {
	r := NewRot(angle)
	return Mat22{Col1: Vec2{r.C, r.S}, Col2: Vec2{-r.S, r.C}}
}

// MulMat22 applies m to vector v.
func MulMat22(m Mat22, v Vec2) Vec2 {
	return Vec2{m.Col1.X*v.X + m.Col2.X*v.Y, m.Col1.Y*v.X + m.Col2.Y*v.Y}
}

// Transpose returns the transpose of m.
func (m Mat22) Transpose() Mat22 {
	return Mat22{
		Col1: Vec2{m.Col1.X, m.Col2.X},
		Col2: Vec2{m.Col1.Y, m.Col2.Y},
	}
}

// Inverse returns the inverse of m, or the zero matrix if m is singular.
func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Col1.X, m.Col2.X, m.Col1.Y, m.Col2.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{
		Col1: Vec2{det * d, -det * c},
		Col2: Vec2{-det * b, det * a},
	}
}

// Solve22 solves the 2x2 linear system m*x = b for x, guarding against a
// singular m by falling back to the zero vector rather than dividing by
// zero (spec requires critical solves to skip rather than propagate NaN).
func Solve22(m Mat22, b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Col1.X, m.Col2.X, m.Col1.Y, m.Col2.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{
		X: det * (a22*b.X - a12*b.Y),
		Y: det * (a11*b.Y - a21*b.X),
	}
}

// Mat33 is a symmetric-inverse-capable 3x3 matrix used by a few joints
// (prismatic, revolute, and the weld joint's 3x3 effective mass).
type Mat33 struct {
	Col1, Col2, Col3 Vec3
}

// Vec3 is a bare 3 element vector used only for Mat33 operations; physics
// primitives elsewhere in math2d stay strictly 2D.
type Vec3 struct {
	X, Y, Z float64
}

// MulMat33 applies m to vector v.
func MulMat33(m Mat33, v Vec3) Vec3 {
	return Vec3{
		X: v.X*m.Col1.X + v.Y*m.Col2.X + v.Z*m.Col3.X,
		Y: v.X*m.Col1.Y + v.Y*m.Col2.Y + v.Z*m.Col3.Y,
		Z: v.X*m.Col1.Z + v.Y*m.Col2.Z + v.Z*m.Col3.Z,
	}
}

// Solve33 solves the 3x3 linear system m*x = b using Cramer's rule via the
// scalar triple product, as Box2D's b2Mat33::Solve33 does, returning the
// zero vector when the determinant is exactly zero.
func Solve33(m Mat33, b Vec3) Vec3 {
	det := dot3(m.Col1, cross3(m.Col2, m.Col3))
	if det != 0 {
		det = 1.0 / det
	}
	return Vec3{
		X: det * dot3(b, cross3(m.Col2, m.Col3)),
		Y: det * dot3(m.Col1, cross3(b, m.Col3)),
		Z: det * dot3(m.Col1, cross3(m.Col2, b)),
	}
}

// Solve22Of33 solves the top-left 2x2 block of m*x=b (ignoring row/col 3),
// used by the weld joint when its angular constraint is inactive.
func Solve22Of33(m Mat33, b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Col1.X, m.Col2.X, m.Col1.Y, m.Col2.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{X: det * (a22*b.X - a12*b.Y), Y: det * (a11*b.Y - a21*b.X)}
}

// GetInverse22 returns the inverse of the top-left 2x2 block of m as a
// Mat33 whose third row/column are zero, mirroring b2Mat33::GetInverse22.
func (m Mat33) GetInverse22() Mat33 {
	a, b, c, d := m.Col1.X, m.Col2.X, m.Col1.Y, m.Col2.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	return Mat33{
		Col1: Vec3{det * d, -det * c, 0},
		Col2: Vec3{-det * b, det * a, 0},
		Col3: Vec3{0, 0, 0},
	}
}

// GetSymInverse33 returns the inverse of m assuming it is symmetric, used
// by the weld joint's 3x3 effective mass matrix.
func (m Mat33) GetSymInverse33() Mat33 {
	det := dot3(m.Col1, cross3(m.Col2, m.Col3))
	if det != 0 {
		det = 1.0 / det
	}
	a11, a12, a13 := m.Col1.X, m.Col2.X, m.Col3.X
	a22, a23 := m.Col2.Y, m.Col3.Y
	a33 := m.Col3.Z

	var out Mat33
	out.Col1.X = det * (a22*a33 - a23*a23)
	out.Col1.Y = det * (a13*a23 - a12*a33)
	out.Col1.Z = det * (a12*a23 - a13*a22)

	out.Col2.X = out.Col1.Y
	out.Col2.Y = det * (a11*a33 - a13*a13)
	out.Col2.Z = det * (a13*a12 - a11*a23)

	out.Col3.X = out.Col1.Z
	out.Col3.Y = out.Col2.Z
	out.Col3.Z = det * (a11*a22 - a12*a12)
	return out
}

func dot3(a, b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func cross3(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
