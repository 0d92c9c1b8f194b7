package render

import (
	"github.com/taigrr/palrast/pkg/math3d"
)

// TryCreateVertexBuffer allocates a vertex buffer of vertexCount vertices
// with componentsPerVertex components each.
func (sr *SoftwareRenderer) TryCreateVertexBuffer(vertexCount, componentsPerVertex int) (VertexBufferID, bool) {
	if vertexCount <= 0 || componentsPerVertex < 2 {
		Logger().Error("invalid vertex buffer shape", "vertexCount", vertexCount, "components", componentsPerVertex)
		return InvalidID, false
	}
	id, ok := sr.vertexBuffers.alloc()
	if !ok {
		Logger().Error("vertex buffer pool exhausted", "capacity", sr.vertexBuffers.capacity())
		return InvalidID, false
	}
	vb := sr.vertexBuffers.get(id)
	vb.Vertices = make([]float64, vertexCount*componentsPerVertex)
	vb.VertexCount = vertexCount
	vb.ComponentsPerVertex = componentsPerVertex
	return VertexBufferID(id), true
}

// TryCreateAttributeBuffer allocates an attribute buffer of count entries
// with componentsPerAttribute components each.
func (sr *SoftwareRenderer) TryCreateAttributeBuffer(count, componentsPerAttribute int) (AttributeBufferID, bool) {
	if count <= 0 || componentsPerAttribute < 2 {
		Logger().Error("invalid attribute buffer shape", "count", count, "components", componentsPerAttribute)
		return InvalidID, false
	}
	id, ok := sr.attributeBuffers.alloc()
	if !ok {
		Logger().Error("attribute buffer pool exhausted", "capacity", sr.attributeBuffers.capacity())
		return InvalidID, false
	}
	ab := sr.attributeBuffers.get(id)
	ab.Attributes = make([]float64, count*componentsPerAttribute)
	ab.AttributeCount = count
	ab.ComponentsPerAttribute = componentsPerAttribute
	return AttributeBufferID(id), true
}

// TryCreateIndexBuffer allocates an index buffer. indexCount must be a
// positive multiple of 3.
func (sr *SoftwareRenderer) TryCreateIndexBuffer(indexCount int) (IndexBufferID, bool) {
	if indexCount <= 0 || indexCount%3 != 0 {
		Logger().Error("invalid index count", "indexCount", indexCount)
		return InvalidID, false
	}
	id, ok := sr.indexBuffers.alloc()
	if !ok {
		Logger().Error("index buffer pool exhausted", "capacity", sr.indexBuffers.capacity())
		return InvalidID, false
	}
	ib := sr.indexBuffers.get(id)
	ib.Indices = make([]int32, indexCount)
	ib.TriangleCount = indexCount / 3
	return IndexBufferID(id), true
}

// PopulateVertexBuffer copies vertices into the buffer. The length must
// match the buffer exactly.
func (sr *SoftwareRenderer) PopulateVertexBuffer(id VertexBufferID, vertices []float64) {
	vb := sr.vertexBuffers.get(int32(id))
	if vb == nil {
		Logger().Warn("populate of invalid vertex buffer", "id", id)
		return
	}
	if len(vertices) != len(vb.Vertices) {
		Logger().Error("mismatched vertex buffer sizes", "id", id, "src", len(vertices), "dst", len(vb.Vertices))
		return
	}
	copy(vb.Vertices, vertices)
}

// PopulateAttributeBuffer copies attributes into the buffer. The length must
// match the buffer exactly.
func (sr *SoftwareRenderer) PopulateAttributeBuffer(id AttributeBufferID, attributes []float64) {
	ab := sr.attributeBuffers.get(int32(id))
	if ab == nil {
		Logger().Warn("populate of invalid attribute buffer", "id", id)
		return
	}
	if len(attributes) != len(ab.Attributes) {
		Logger().Error("mismatched attribute buffer sizes", "id", id, "src", len(attributes), "dst", len(ab.Attributes))
		return
	}
	copy(ab.Attributes, attributes)
}

// PopulateIndexBuffer copies indices into the buffer. The length must match
// the buffer exactly.
func (sr *SoftwareRenderer) PopulateIndexBuffer(id IndexBufferID, indices []int32) {
	ib := sr.indexBuffers.get(int32(id))
	if ib == nil {
		Logger().Warn("populate of invalid index buffer", "id", id)
		return
	}
	if len(indices) != len(ib.Indices) {
		Logger().Error("mismatched index buffer sizes", "id", id, "src", len(indices), "dst", len(ib.Indices))
		return
	}
	copy(ib.Indices, indices)
}

// FreeVertexBuffer releases id for reuse.
func (sr *SoftwareRenderer) FreeVertexBuffer(id VertexBufferID) {
	if !sr.vertexBuffers.release(int32(id)) {
		Logger().Warn("free of invalid vertex buffer", "id", id)
	}
}

// FreeAttributeBuffer releases id for reuse.
func (sr *SoftwareRenderer) FreeAttributeBuffer(id AttributeBufferID) {
	if !sr.attributeBuffers.release(int32(id)) {
		Logger().Warn("free of invalid attribute buffer", "id", id)
	}
}

// FreeIndexBuffer releases id for reuse.
func (sr *SoftwareRenderer) FreeIndexBuffer(id IndexBufferID) {
	if !sr.indexBuffers.release(int32(id)) {
		Logger().Warn("free of invalid index buffer", "id", id)
	}
}

// TryCreateUniformBuffer allocates elementCount elements of elementSize
// bytes, each aligned to alignment bytes.
func (sr *SoftwareRenderer) TryCreateUniformBuffer(elementCount, elementSize, alignment int) (UniformBufferID, bool) {
	if elementCount <= 0 || elementSize <= 0 || alignment < 0 {
		Logger().Error("invalid uniform buffer shape", "count", elementCount, "size", elementSize, "alignment", alignment)
		return InvalidID, false
	}
	id, ok := sr.uniformBuffers.alloc()
	if !ok {
		Logger().Error("uniform buffer pool exhausted", "capacity", sr.uniformBuffers.capacity())
		return InvalidID, false
	}
	ub := sr.uniformBuffers.get(id)
	ub.ElementCount = elementCount
	ub.ElementSize = elementSize
	ub.Alignment = alignment
	ub.Stride = alignUp(elementSize, alignment)
	ub.Bytes = make([]byte, elementCount*ub.Stride)
	return UniformBufferID(id), true
}

// PopulateUniformBuffer copies tightly packed elements into the buffer.
// data must hold exactly ElementCount*ElementSize bytes.
func (sr *SoftwareRenderer) PopulateUniformBuffer(id UniformBufferID, data []byte) {
	ub := sr.uniformBuffers.get(int32(id))
	if ub == nil {
		Logger().Warn("populate of invalid uniform buffer", "id", id)
		return
	}
	want := ub.ElementCount * ub.ElementSize
	if len(data) != want {
		Logger().Error("mismatched uniform buffer sizes", "id", id, "src", len(data), "dst", want)
		return
	}
	for i := range ub.ElementCount {
		copy(ub.element(i), data[i*ub.ElementSize:(i+1)*ub.ElementSize])
	}
}

// PopulateUniformAtIndex copies one element into the buffer. data must hold
// exactly ElementSize bytes.
func (sr *SoftwareRenderer) PopulateUniformAtIndex(id UniformBufferID, index int, data []byte) {
	ub := sr.uniformBuffers.get(int32(id))
	if ub == nil {
		Logger().Warn("populate of invalid uniform buffer", "id", id)
		return
	}
	if len(data) != ub.ElementSize {
		Logger().Error("mismatched uniform element sizes", "id", id, "src", len(data), "dst", ub.ElementSize)
		return
	}
	dst := ub.element(index)
	if dst == nil {
		Logger().Error("uniform index out of range", "id", id, "index", index, "count", ub.ElementCount)
		return
	}
	copy(dst, data)
}

// FreeUniformBuffer releases id for reuse.
func (sr *SoftwareRenderer) FreeUniformBuffer(id UniformBufferID) {
	if !sr.uniformBuffers.release(int32(id)) {
		Logger().Warn("free of invalid uniform buffer", "id", id)
	}
}

// TryCreateObjectTexture allocates a width x height texture. bytesPerTexel
// must be 1 or 4; any other value panics.
func (sr *SoftwareRenderer) TryCreateObjectTexture(width, height, bytesPerTexel int) (ObjectTextureID, bool) {
	if width <= 0 || height <= 0 {
		Logger().Error("invalid object texture dimensions", "width", width, "height", height)
		return InvalidID, false
	}
	id, ok := sr.objectTextures.alloc()
	if !ok {
		Logger().Error("object texture pool exhausted", "capacity", sr.objectTextures.capacity())
		return InvalidID, false
	}
	sr.objectTextures.get(id).init(width, height, bytesPerTexel)
	return ObjectTextureID(id), true
}

// LockObjectTexture returns writable access to a texture's texels.
func (sr *SoftwareRenderer) LockObjectTexture(id ObjectTextureID) (LockedTexture, bool) {
	tex := sr.objectTextures.get(int32(id))
	if tex == nil {
		Logger().Warn("lock of invalid object texture", "id", id)
		return LockedTexture{}, false
	}
	return LockedTexture{
		Texels:        tex.Texels,
		Width:         tex.Width,
		Height:        tex.Height,
		BytesPerTexel: tex.BytesPerTexel,
	}, true
}

// UnlockObjectTexture ends a LockObjectTexture. Textures live in main memory
// so there is nothing to upload.
func (sr *SoftwareRenderer) UnlockObjectTexture(id ObjectTextureID) {
	if sr.objectTextures.get(int32(id)) == nil {
		Logger().Warn("unlock of invalid object texture", "id", id)
	}
}

// TryGetObjectTextureDims returns a texture's dimensions.
func (sr *SoftwareRenderer) TryGetObjectTextureDims(id ObjectTextureID) (width, height int, ok bool) {
	tex := sr.objectTextures.get(int32(id))
	if tex == nil {
		return 0, 0, false
	}
	return tex.Width, tex.Height, true
}

// FreeObjectTexture releases id for reuse.
func (sr *SoftwareRenderer) FreeObjectTexture(id ObjectTextureID) {
	if !sr.objectTextures.release(int32(id)) {
		Logger().Warn("free of invalid object texture", "id", id)
	}
}

// TryCreateLight allocates a light at the origin with zero radii.
func (sr *SoftwareRenderer) TryCreateLight() (LightID, bool) {
	id, ok := sr.lights.alloc()
	if !ok {
		Logger().Error("light pool exhausted", "capacity", sr.lights.capacity())
		return InvalidID, false
	}
	sr.lights.get(id).init(math3d.Vec3{}, 0, 0)
	return LightID(id), true
}

// SetLightPosition moves a light.
func (sr *SoftwareRenderer) SetLightPosition(id LightID, point math3d.Vec3) {
	l := sr.lights.get(int32(id))
	if l == nil {
		Logger().Warn("set position of invalid light", "id", id)
		return
	}
	l.Point = point
}

// SetLightRadius sets a light's falloff band. startRadius must be
// non-negative and endRadius at least startRadius.
func (sr *SoftwareRenderer) SetLightRadius(id LightID, startRadius, endRadius float64) {
	l := sr.lights.get(int32(id))
	if l == nil {
		Logger().Warn("set radius of invalid light", "id", id)
		return
	}
	if startRadius < 0 || endRadius < startRadius {
		Logger().Error("invalid light radius", "id", id, "start", startRadius, "end", endRadius)
		return
	}
	l.setRadius(startRadius, endRadius)
}

// FreeLight releases id for reuse.
func (sr *SoftwareRenderer) FreeLight(id LightID) {
	if !sr.lights.release(int32(id)) {
		Logger().Warn("free of invalid light", "id", id)
	}
}
