package math3d

import "math"

// Mat4 is a column-major 4x4 matrix: element (row, col) lives at
// index row+col*4, points transform as M * v and a product a.Mul(b)
// applies b first.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a matrix that moves points by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns a matrix that scales each axis by the matching component
// of v.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// ScaleUniform scales all three axes by s.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX rotates counter-clockwise about +X when looking down the axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotateY rotates counter-clockwise about +Y when looking down the axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// Perspective returns a right-handed OpenGL style projection: the view
// looks down -Z and the near and far planes map to z = -w and z = w. fovy
// is the vertical field of view in radians.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	depth := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * depth
	m[11] = -1
	m[14] = 2 * far * near * depth
	return m
}

// Mul returns a * b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			m[row+col*4] = a[row]*b[col*4] + a[row+4]*b[col*4+1] + a[row+8]*b[col*4+2] + a[row+12]*b[col*4+3]
		}
	}
	return m
}

// MulVec3 transforms v as a point and divides by the resulting w unless it
// is zero.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	r := m.MulVec4(V4FromV3(v, 1))
	if r.W == 0 {
		return r.Vec3()
	}
	return r.Vec3().Scale(1 / r.W)
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// subFactors returns the twelve 2x2 minors the determinant and inverse are
// built from: six from the top two rows and six from the bottom two.
func (m Mat4) subFactors() (top, bottom [6]float64) {
	e := func(row, col int) float64 { return m[row+col*4] }
	pairs := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	for i, p := range pairs {
		top[i] = e(0, p[0])*e(1, p[1]) - e(0, p[1])*e(1, p[0])
		bottom[i] = e(2, p[0])*e(3, p[1]) - e(2, p[1])*e(3, p[0])
	}
	return top, bottom
}

// Determinant returns det(m).
func (m Mat4) Determinant() float64 {
	s, c := m.subFactors()
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	s, c := m.subFactors()
	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if det == 0 {
		return Identity()
	}
	e := func(row, col int) float64 { return m[row+col*4] }
	inv := 1 / det

	var r Mat4
	set := func(row, col int, v float64) { r[row+col*4] = v * inv }

	set(0, 0, e(1, 1)*c[5]-e(1, 2)*c[4]+e(1, 3)*c[3])
	set(0, 1, -e(0, 1)*c[5]+e(0, 2)*c[4]-e(0, 3)*c[3])
	set(0, 2, e(3, 1)*s[5]-e(3, 2)*s[4]+e(3, 3)*s[3])
	set(0, 3, -e(2, 1)*s[5]+e(2, 2)*s[4]-e(2, 3)*s[3])

	set(1, 0, -e(1, 0)*c[5]+e(1, 2)*c[2]-e(1, 3)*c[1])
	set(1, 1, e(0, 0)*c[5]-e(0, 2)*c[2]+e(0, 3)*c[1])
	set(1, 2, -e(3, 0)*s[5]+e(3, 2)*s[2]-e(3, 3)*s[1])
	set(1, 3, e(2, 0)*s[5]-e(2, 2)*s[2]+e(2, 3)*s[1])

	set(2, 0, e(1, 0)*c[4]-e(1, 1)*c[2]+e(1, 3)*c[0])
	set(2, 1, -e(0, 0)*c[4]+e(0, 1)*c[2]-e(0, 3)*c[0])
	set(2, 2, e(3, 0)*s[4]-e(3, 1)*s[2]+e(3, 3)*s[0])
	set(2, 3, -e(2, 0)*s[4]+e(2, 1)*s[2]-e(2, 3)*s[0])

	set(3, 0, -e(1, 0)*c[3]+e(1, 1)*c[1]-e(1, 2)*c[0])
	set(3, 1, e(0, 0)*c[3]-e(0, 1)*c[1]+e(0, 2)*c[0])
	set(3, 2, -e(3, 0)*s[3]+e(3, 1)*s[1]-e(3, 2)*s[0])
	set(3, 3, e(2, 0)*s[3]-e(2, 1)*s[1]+e(2, 2)*s[0])
	return r
}

// Column returns column i as a Vec4.
func (m Mat4) Column(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Row returns row i as a Vec4. Frustum planes are sums and differences of
// rows.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
}
