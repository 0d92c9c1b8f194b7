package models

import (
	"errors"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/palrast/pkg/palette"
	"github.com/taigrr/palrast/pkg/render"
)

// ErrBufferAlloc is returned when the renderer runs out of buffer slots
// during an upload.
var ErrBufferAlloc = errors.New("models: renderer buffer allocation failed")

// MaterialTextureSize is the edge length material textures are quantized to.
const MaterialTextureSize = 64

// Chunk is the part of a mesh drawn by one draw call: up to
// render.MaxDrawCallMeshTriangles triangles sharing a material.
type Chunk struct {
	VertexBufferID   render.VertexBufferID
	TexCoordBufferID render.AttributeBufferID
	IndexBufferID    render.IndexBufferID
	TextureID        render.ObjectTextureID
	TriangleCount    int
	Bounds           render.AABB
}

// Uploaded is a mesh resident in renderer buffers.
type Uploaded struct {
	Chunks   []Chunk
	Textures []render.ObjectTextureID
	Bounds   render.AABB
}

// Upload copies m into renderer buffers, one texture per material and as
// many chunks as the per-draw-call triangle limit requires. On error
// everything allocated so far is freed.
func Upload(sr *render.SoftwareRenderer, m *Mesh, matcher *palette.Matcher) (*Uploaded, error) {
	if len(m.Faces) == 0 {
		return nil, ErrNoMeshes
	}

	u := &Uploaded{Bounds: m.Bounds()}
	groups, order := groupFacesByMaterial(m)

	textures := make(map[int]render.ObjectTextureID, len(order))
	for _, mat := range order {
		id, err := materialTexture(m.MaterialAt(mat), matcher).Upload(sr)
		if err != nil {
			u.Free(sr)
			return nil, fmt.Errorf("material %d texture: %w", mat, err)
		}
		textures[mat] = id
		u.Textures = append(u.Textures, id)
	}

	for _, mat := range order {
		if err := u.uploadFaces(sr, m, groups[mat], textures[mat]); err != nil {
			u.Free(sr)
			return nil, err
		}
	}

	render.Logger().Debug("mesh uploaded",
		"name", m.Name, "triangles", len(m.Faces),
		"chunks", len(u.Chunks), "textures", len(u.Textures))
	return u, nil
}

// UploadGeometry copies m into renderer buffers and draws every chunk with
// texture, ignoring the mesh's materials. The texture stays owned by the
// caller and is not released by Free.
func UploadGeometry(sr *render.SoftwareRenderer, m *Mesh, texture render.ObjectTextureID) (*Uploaded, error) {
	if len(m.Faces) == 0 {
		return nil, ErrNoMeshes
	}
	faces := make([]int, len(m.Faces))
	for i := range faces {
		faces[i] = i
	}
	u := &Uploaded{Bounds: m.Bounds()}
	if err := u.uploadFaces(sr, m, faces, texture); err != nil {
		u.Free(sr)
		return nil, err
	}
	render.Logger().Debug("mesh geometry uploaded",
		"name", m.Name, "triangles", len(m.Faces), "chunks", len(u.Chunks))
	return u, nil
}

// uploadFaces appends chunks of at most render.MaxDrawCallMeshTriangles
// faces, all drawn with texture.
func (u *Uploaded) uploadFaces(sr *render.SoftwareRenderer, m *Mesh, faces []int, texture render.ObjectTextureID) error {
	for start := 0; start < len(faces); start += render.MaxDrawCallMeshTriangles {
		end := min(start+render.MaxDrawCallMeshTriangles, len(faces))
		chunk, err := uploadChunk(sr, m, faces[start:end])
		if err != nil {
			return err
		}
		chunk.TextureID = texture
		u.Chunks = append(u.Chunks, chunk)
	}
	return nil
}

// groupFacesByMaterial returns face indices per material and the materials
// in order of first use.
func groupFacesByMaterial(m *Mesh) (map[int][]int, []int) {
	groups := make(map[int][]int)
	var order []int
	for i, f := range m.Faces {
		mat := f.Material
		if m.MaterialAt(mat) == nil {
			mat = -1
		}
		if _, ok := groups[mat]; !ok {
			order = append(order, mat)
		}
		groups[mat] = append(groups[mat], i)
	}
	return groups, order
}

// materialTexture quantizes the material's base map, or fills a texel with
// its base color.
func materialTexture(mat *Material, matcher *palette.Matcher) *palette.Image {
	if mat == nil {
		return palette.Solid(1, 1, matcher.Match(colorful.Color{R: 1, G: 1, B: 1}))
	}
	if mat.HasTexture() {
		return palette.Quantize(mat.BaseMap, matcher, MaterialTextureSize, MaterialTextureSize)
	}
	c := colorful.Color{R: mat.BaseColor[0], G: mat.BaseColor[1], B: mat.BaseColor[2]}
	return palette.Solid(1, 1, matcher.Match(c))
}

// uploadChunk builds compact vertex, tex coord and index buffers for faces.
func uploadChunk(sr *render.SoftwareRenderer, m *Mesh, faces []int) (Chunk, error) {
	remap := make(map[int]int32)
	var positions, texCoords []float64
	indices := make([]int32, 0, len(faces)*3)

	first := m.Vertices[m.Faces[faces[0]].V[0]].Position
	bounds := render.NewAABB(first, first)
	for _, fi := range faces {
		for _, vi := range m.Faces[fi].V {
			local, ok := remap[vi]
			if !ok {
				v := m.Vertices[vi]
				local = int32(len(remap))
				remap[vi] = local
				positions = append(positions, v.Position.X, v.Position.Y, v.Position.Z)
				texCoords = append(texCoords, v.UV.X, v.UV.Y)
				bounds = bounds.Extend(v.Position)
			}
			indices = append(indices, local)
		}
	}

	chunk := Chunk{
		VertexBufferID:   render.InvalidID,
		TexCoordBufferID: render.InvalidID,
		IndexBufferID:    render.InvalidID,
		TriangleCount:    len(faces),
		Bounds:           bounds,
	}
	var ok bool
	if chunk.VertexBufferID, ok = sr.TryCreateVertexBuffer(len(remap), 3); !ok {
		return chunk, fmt.Errorf("vertex buffer: %w", ErrBufferAlloc)
	}
	sr.PopulateVertexBuffer(chunk.VertexBufferID, positions)

	if chunk.TexCoordBufferID, ok = sr.TryCreateAttributeBuffer(len(remap), 2); !ok {
		sr.FreeVertexBuffer(chunk.VertexBufferID)
		return chunk, fmt.Errorf("tex coord buffer: %w", ErrBufferAlloc)
	}
	sr.PopulateAttributeBuffer(chunk.TexCoordBufferID, texCoords)

	if chunk.IndexBufferID, ok = sr.TryCreateIndexBuffer(len(indices)); !ok {
		sr.FreeVertexBuffer(chunk.VertexBufferID)
		sr.FreeAttributeBuffer(chunk.TexCoordBufferID)
		return chunk, fmt.Errorf("index buffer: %w", ErrBufferAlloc)
	}
	sr.PopulateIndexBuffer(chunk.IndexBufferID, indices)
	return chunk, nil
}

// DrawCalls returns one draw call per chunk, each a copy of base with the
// chunk's buffers, texture and bounds filled in.
func (u *Uploaded) DrawCalls(base render.DrawCall) []render.DrawCall {
	drawCalls := make([]render.DrawCall, len(u.Chunks))
	for i := range u.Chunks {
		c := &u.Chunks[i]
		dc := base
		dc.VertexBufferID = c.VertexBufferID
		dc.TexCoordBufferID = c.TexCoordBufferID
		dc.IndexBufferID = c.IndexBufferID
		dc.TextureIDs[0] = c.TextureID
		dc.Bounds = &c.Bounds
		drawCalls[i] = dc
	}
	return drawCalls
}

// TriangleCount returns the total triangles across chunks.
func (u *Uploaded) TriangleCount() int {
	n := 0
	for _, c := range u.Chunks {
		n += c.TriangleCount
	}
	return n
}

// Free releases every buffer and texture of the upload.
func (u *Uploaded) Free(sr *render.SoftwareRenderer) {
	for _, c := range u.Chunks {
		sr.FreeVertexBuffer(c.VertexBufferID)
		sr.FreeAttributeBuffer(c.TexCoordBufferID)
		sr.FreeIndexBuffer(c.IndexBufferID)
	}
	for _, id := range u.Textures {
		sr.FreeObjectTexture(id)
	}
	u.Chunks = nil
	u.Textures = nil
}
