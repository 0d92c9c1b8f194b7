package math3d

// UnrollTypical is the lane count of the unrolled batch kernels.
const UnrollTypical = 4

// UnrollAdjustedCount returns the exclusive upper bound for an unrolled loop
// stepping by unroll over n elements. Elements from the last multiple of
// unroll up to n are left for a scalar tail loop.
func UnrollAdjustedCount(n, unroll int) int {
	return n - (unroll - 1)
}

// Vec4Batch stores vectors in struct-of-arrays form. All four slices have
// the same length.
type Vec4Batch struct {
	X, Y, Z, W []float64
}

// NewVec4Batch allocates a batch of n zero vectors.
func NewVec4Batch(n int) Vec4Batch {
	backing := make([]float64, n*4)
	return Vec4Batch{
		X: backing[0:n:n],
		Y: backing[n : 2*n : 2*n],
		Z: backing[2*n : 3*n : 3*n],
		W: backing[3*n : 4*n : 4*n],
	}
}

// Len returns the number of vectors in the batch.
func (b Vec4Batch) Len() int {
	return len(b.X)
}

// Slice returns the sub-batch [lo, hi) sharing the same storage.
func (b Vec4Batch) Slice(lo, hi int) Vec4Batch {
	return Vec4Batch{b.X[lo:hi], b.Y[lo:hi], b.Z[lo:hi], b.W[lo:hi]}
}

// Get returns vector i.
func (b Vec4Batch) Get(i int) Vec4 {
	return Vec4{b.X[i], b.Y[i], b.Z[i], b.W[i]}
}

// Set stores v at i.
func (b Vec4Batch) Set(i int, v Vec4) {
	b.X[i] = v.X
	b.Y[i] = v.Y
	b.Z[i] = v.Z
	b.W[i] = v.W
}

// MulVec4Batch writes m * in[i] to out[i] for every vector in in. out must
// be at least as long as in; in and out may alias.
func MulVec4Batch(m Mat4, in, out Vec4Batch) {
	n := in.Len()
	i := 0
	for ; i < UnrollAdjustedCount(n, UnrollTypical); i += UnrollTypical {
		mulVec4Lane(&m, in, out, i)
		mulVec4Lane(&m, in, out, i+1)
		mulVec4Lane(&m, in, out, i+2)
		mulVec4Lane(&m, in, out, i+3)
	}
	for ; i < n; i++ {
		mulVec4Lane(&m, in, out, i)
	}
}

func mulVec4Lane(m *Mat4, in, out Vec4Batch, i int) {
	x, y, z, w := in.X[i], in.Y[i], in.Z[i], in.W[i]
	out.X[i] = m[0]*x + m[4]*y + m[8]*z + m[12]*w
	out.Y[i] = m[1]*x + m[5]*y + m[9]*z + m[13]*w
	out.Z[i] = m[2]*x + m[6]*y + m[10]*z + m[14]*w
	out.W[i] = m[3]*x + m[7]*y + m[11]*z + m[15]*w
}

// AddVec3Batch adds v to the xyz components of every vector in b.
func AddVec3Batch(b Vec4Batch, v Vec3) {
	n := b.Len()
	for i := range n {
		b.X[i] += v.X
		b.Y[i] += v.Y
		b.Z[i] += v.Z
	}
}

// MulMat4Batch writes a[i] * b[i] to out[i]. b and out must be at least as
// long as a.
func MulMat4Batch(a, b, out []Mat4) {
	for i := range a {
		out[i] = a[i].Mul(b[i])
	}
}
