package render

import (
	"encoding/binary"
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
)

// Resource handles. Each is an index into its pool; InvalidID means none.
type (
	VertexBufferID    int32
	AttributeBufferID int32
	IndexBufferID     int32
	UniformBufferID   int32
	ObjectTextureID   int32
	LightID           int32
)

// VertexBuffer holds vertex positions as a flat run of components.
type VertexBuffer struct {
	Vertices            []float64
	VertexCount         int
	ComponentsPerVertex int
}

// AttributeBuffer holds per-vertex attributes such as texture coordinates.
type AttributeBuffer struct {
	Attributes             []float64
	AttributeCount         int
	ComponentsPerAttribute int
}

// IndexBuffer holds triangle list indices.
type IndexBuffer struct {
	Indices       []int32
	TriangleCount int
}

// UniformBuffer is a byte array of fixed-size elements. Each element starts
// on a multiple of Stride, which is ElementSize rounded up to Alignment.
type UniformBuffer struct {
	Bytes        []byte
	ElementCount int
	ElementSize  int
	Alignment    int
	Stride       int
}

// RenderTransform is the per-object transform stored in uniform buffers.
type RenderTransform struct {
	Translation math3d.Mat4
	Rotation    math3d.Mat4
	Scale       math3d.Mat4
}

// IdentityTransform returns a transform that leaves model space untouched.
func IdentityTransform() RenderTransform {
	return RenderTransform{
		Translation: math3d.Identity(),
		Rotation:    math3d.Identity(),
		Scale:       math3d.Identity(),
	}
}

// Model returns Translation * Rotation * Scale.
func (t RenderTransform) Model() math3d.Mat4 {
	return t.Translation.Mul(t.Rotation.Mul(t.Scale))
}

const (
	mat4Size = 16 * 8
	vec3Size = 3 * 8

	// RenderTransformSize is the uniform element size of a RenderTransform.
	RenderTransformSize = 3 * mat4Size

	// Vec3Size is the uniform element size of a math3d.Vec3.
	Vec3Size = vec3Size
)

// EncodeRenderTransform returns the uniform buffer encoding of t.
func EncodeRenderTransform(t RenderTransform) []byte {
	b := make([]byte, RenderTransformSize)
	putMat4(b[0:], t.Translation)
	putMat4(b[mat4Size:], t.Rotation)
	putMat4(b[2*mat4Size:], t.Scale)
	return b
}

// EncodeVec3 returns the uniform buffer encoding of v.
func EncodeVec3(v math3d.Vec3) []byte {
	b := make([]byte, vec3Size)
	putFloat(b[0:], v.X)
	putFloat(b[8:], v.Y)
	putFloat(b[16:], v.Z)
	return b
}

// element returns the bytes of element index, or nil if out of range.
func (u *UniformBuffer) element(index int) []byte {
	if index < 0 || index >= u.ElementCount {
		return nil
	}
	start := index * u.Stride
	return u.Bytes[start : start+u.ElementSize]
}

// RenderTransform decodes element index as a RenderTransform. Elements too
// small to hold one decode as the identity transform.
func (u *UniformBuffer) RenderTransform(index int) RenderTransform {
	b := u.element(index)
	if len(b) < RenderTransformSize {
		return IdentityTransform()
	}
	return RenderTransform{
		Translation: getMat4(b[0:]),
		Rotation:    getMat4(b[mat4Size:]),
		Scale:       getMat4(b[2*mat4Size:]),
	}
}

// Vec3 decodes element index as a Vec3.
func (u *UniformBuffer) Vec3(index int) math3d.Vec3 {
	b := u.element(index)
	if len(b) < vec3Size {
		return math3d.Vec3{}
	}
	return math3d.V3(getFloat(b[0:]), getFloat(b[8:]), getFloat(b[16:]))
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

func putFloat(b []byte, f float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
}

func getFloat(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func putMat4(b []byte, m math3d.Mat4) {
	for i, f := range m {
		putFloat(b[i*8:], f)
	}
}

func getMat4(b []byte) math3d.Mat4 {
	var m math3d.Mat4
	for i := range m {
		m[i] = getFloat(b[i*8:])
	}
	return m
}
