package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

// BenchmarkModelMatrix composes translation * rotation * scale the way a
// per-mesh transform is flattened each frame.
func BenchmarkModelMatrix(b *testing.B) {
	t := Translate(V3(1, 2, 3))
	r := RotateY(0.5)
	s := Scale(V3(1, 0.4, 1))

	for b.Loop() {
		_ = t.Mul(r.Mul(s))
	}
}

func BenchmarkViewProjection(b *testing.B) {
	view := RotateX(-0.1).Mul(RotateY(-0.3)).Mul(Translate(V3(0, -1.6, -2.5)))
	proj := Perspective(math.Pi/3, 1.6, 0.1, 50)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}
