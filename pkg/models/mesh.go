// Package models loads triangle meshes and uploads them into renderer
// buffers as palette-textured draw calls.
package models

import (
	"image"

	"github.com/taigrr/palrast/pkg/math3d"
	"github.com/taigrr/palrast/pkg/render"
)

// Mesh is indexed triangle geometry in model space, before upload.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Axis-aligned bounds, kept current by CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds the attributes the renderer consumes.
type MeshVertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2 // v runs down the texture
}

// Face is a counter-clockwise triangle. Material indexes Mesh.Materials,
// or is -1 for untextured faces.
type Face struct {
	V        [3]int
	Material int
}

// Material is the part of a glTF material that survives palette rendering:
// a base color and an optional base color texture.
type Material struct {
	Name      string
	BaseColor [4]float64 // linear RGBA
	BaseMap   image.Image
}

// HasTexture reports whether the material carries a base color texture.
func (m *Material) HasTexture() bool {
	return m.BaseMap != nil
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds recomputes BoundsMin and BoundsMax from the vertices.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices {
		lo, hi = lo.Min(v.Position), hi.Max(v.Position)
	}
	m.BoundsMin, m.BoundsMax = lo, hi
}

// Bounds returns the bounding box in the form draw calls are culled with.
func (m *Mesh) Bounds() render.AABB {
	return render.NewAABB(m.BoundsMin, m.BoundsMax)
}

func (m *Mesh) Center() math3d.Vec3 { return m.Bounds().Center() }
func (m *Mesh) Size() math3d.Vec3   { return m.BoundsMax.Sub(m.BoundsMin) }

func (m *Mesh) TriangleCount() int { return len(m.Faces) }
func (m *Mesh) VertexCount() int   { return len(m.Vertices) }

// Transform moves every vertex by mat and refreshes the bounds.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
	}
	m.CalculateBounds()
}

// Fit stands the mesh on the origin, centered in X and Z, and scales it
// so its largest extent equals size.
func (m *Mesh) Fit(size float64) {
	extent := m.Size()
	largest := max(extent.X, extent.Y, extent.Z)
	if largest == 0 {
		return
	}
	center := m.Center()
	base := math3d.V3(center.X, m.BoundsMin.Y, center.Z)
	m.Transform(math3d.ScaleUniform(size / largest).Mul(math3d.Translate(base.Negate())))
}

// MaterialAt returns material i, or nil when i is -1 or out of range.
func (m *Mesh) MaterialAt(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// FaceMaterial returns the material of face i, or nil if it has none.
func (m *Mesh) FaceMaterial(i int) *Material {
	return m.MaterialAt(m.Faces[i].Material)
}

// Merge appends the geometry of others to m. Faces of the merged meshes
// lose their materials.
func (m *Mesh) Merge(others ...*Mesh) {
	for _, o := range others {
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices, o.Vertices...)
		for _, f := range o.Faces {
			m.Faces = append(m.Faces, Face{
				V:        [3]int{f.V[0] + base, f.V[1] + base, f.V[2] + base},
				Material: -1,
			})
		}
	}
	m.CalculateBounds()
}
