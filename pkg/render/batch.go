package render

import (
	"fmt"

	"github.com/taigrr/palrast/pkg/math3d"
)

// Capacity limits of the per-batch scratch storage.
const (
	MaxDrawCallMeshTriangles       = 1024
	MaxMeshProcessCaches           = 8
	MaxVertexShadingCacheTriangles = MaxDrawCallMeshTriangles * 2
	MaxClippedMeshTriangles        = 4096
	MaxClippedTriangleTriangles    = 64
)

// clipTriangle is a clip-space triangle with texture coordinates.
type clipTriangle struct {
	V  [3]math3d.Vec4
	UV [3]math3d.Vec2
}

// meshProcessCache stages one draw call of a batch: its resolved resources,
// transforms and shading parameters, and its clipped triangles.
type meshProcessCache struct {
	transform           RenderTransform
	preScaleTranslation math3d.Vec3
	model               math3d.Mat4
	modelViewProjection math3d.Mat4

	vertexBuffer   *VertexBuffer
	texCoordBuffer *AttributeBuffer
	indexBuffer    *IndexBuffer

	textures      [MaxTextures]*ObjectTexture
	samplingTypes [MaxTextures]TextureSamplingType

	lightingType LightingType
	lightPercent float64
	lights       [MaxLights]*Light
	lightCount   int

	pixelShaderType   PixelShaderType
	pixelShaderParam0 float64
	enableDepthRead   bool
	enableDepthWrite  bool

	// Range of this mesh's triangles in the vertex shading cache.
	shadingStart, shadingEnd int

	clipped []clipTriangle
}

// vertexShadingCache flattens every triangle of a batch into one run so the
// vertex shader loops stay long. V0, V1 and V2 hold model-space positions
// until shading, then clip-space positions.
type vertexShadingCache struct {
	V0, V1, V2    math3d.Vec4Batch
	UV0, UV1, UV2 []math3d.Vec2
	meshIndex     []int
	triangleCount int
}

func newVertexShadingCache() vertexShadingCache {
	return vertexShadingCache{
		V0:        math3d.NewVec4Batch(MaxVertexShadingCacheTriangles),
		V1:        math3d.NewVec4Batch(MaxVertexShadingCacheTriangles),
		V2:        math3d.NewVec4Batch(MaxVertexShadingCacheTriangles),
		UV0:       make([]math3d.Vec2, MaxVertexShadingCacheTriangles),
		UV1:       make([]math3d.Vec2, MaxVertexShadingCacheTriangles),
		UV2:       make([]math3d.Vec2, MaxVertexShadingCacheTriangles),
		meshIndex: make([]int, MaxVertexShadingCacheTriangles),
	}
}

// BatchContext holds the scratch state for a run of up to
// MaxMeshProcessCaches draw calls sharing a vertex shader. It is reset at the
// start of every batch and never read across frames.
type BatchContext struct {
	vertexShaderType VertexShaderType
	meshes           [MaxMeshProcessCaches]meshProcessCache
	meshCount        int
	shading          vertexShadingCache

	// Front-consuming clip queue for a single source triangle.
	clipList      []clipTriangle
	clipListSize  int
	clipListFront int
}

// NewBatchContext allocates the fixed-capacity batch scratch storage.
func NewBatchContext() *BatchContext {
	b := &BatchContext{
		shading:  newVertexShadingCache(),
		clipList: make([]clipTriangle, clipQueueCapacity),
	}
	for i := range b.meshes {
		b.meshes[i].clipped = make([]clipTriangle, 0, MaxClippedMeshTriangles)
	}
	return b
}

func (b *BatchContext) reset(shaderType VertexShaderType) {
	b.vertexShaderType = shaderType
	for i := range b.meshCount {
		m := &b.meshes[i]
		clipped := m.clipped[:0]
		*m = meshProcessCache{clipped: clipped}
	}
	b.meshCount = 0
	b.shading.triangleCount = 0
}

// lookupMeshBuffers copies every indexed triangle of the batch into the vertex
// shading cache as homogeneous model-space positions.
func (b *BatchContext) lookupMeshBuffers() {
	sc := &b.shading
	sc.triangleCount = 0
	for mi := range b.meshCount {
		m := &b.meshes[mi]
		triangleCount := m.indexBuffer.TriangleCount
		if triangleCount > MaxDrawCallMeshTriangles {
			panic(fmt.Sprintf("too many triangles in draw call mesh: %d > %d", triangleCount, MaxDrawCallMeshTriangles))
		}
		if sc.triangleCount+triangleCount > MaxVertexShadingCacheTriangles {
			panic(fmt.Sprintf("vertex shading cache overflow: %d > %d", sc.triangleCount+triangleCount, MaxVertexShadingCacheTriangles))
		}

		vb := m.vertexBuffer
		tb := m.texCoordBuffer
		indices := m.indexBuffer.Indices
		m.shadingStart = sc.triangleCount
		for t := range triangleCount {
			dst := sc.triangleCount
			i0, i1, i2 := int(indices[t*3]), int(indices[t*3+1]), int(indices[t*3+2])
			sc.V0.Set(dst, vertexPosition(vb, i0))
			sc.V1.Set(dst, vertexPosition(vb, i1))
			sc.V2.Set(dst, vertexPosition(vb, i2))
			sc.UV0[dst] = vertexTexCoord(tb, i0)
			sc.UV1[dst] = vertexTexCoord(tb, i1)
			sc.UV2[dst] = vertexTexCoord(tb, i2)
			sc.meshIndex[dst] = mi
			sc.triangleCount++
		}
		m.shadingEnd = sc.triangleCount
	}
}

func vertexPosition(vb *VertexBuffer, index int) math3d.Vec4 {
	c := vb.ComponentsPerVertex
	v := vb.Vertices[index*c:]
	if c == 2 {
		return math3d.V4(v[0], v[1], 0, 1)
	}
	return math3d.V4(v[0], v[1], v[2], 1)
}

func vertexTexCoord(tb *AttributeBuffer, index int) math3d.Vec2 {
	c := tb.ComponentsPerAttribute
	a := tb.Attributes[index*c:]
	return math3d.V2(a[0], a[1])
}
