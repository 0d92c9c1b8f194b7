package models

import "github.com/taigrr/palrast/pkg/math3d"

// AddQuad appends a two-triangle quad. The corners are bottom-left,
// bottom-right, top-right and top-left as seen from the front, which is the
// side the quad is visible from. The texture spans the quad once.
func (m *Mesh) AddQuad(p0, p1, p2, p3 math3d.Vec3, material int) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices,
		MeshVertex{Position: p0, UV: math3d.V2(0, 1)},
		MeshVertex{Position: p1, UV: math3d.V2(1, 1)},
		MeshVertex{Position: p2, UV: math3d.V2(1, 0)},
		MeshVertex{Position: p3, UV: math3d.V2(0, 0)},
	)
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 1, base + 2}, Material: material},
		Face{V: [3]int{base, base + 2, base + 3}, Material: material},
	)
}

// NewGrid creates a horizontal grid centered on the origin at height y,
// facing up, with one texture tile per cell.
func NewGrid(name string, width, depth float64, cellsX, cellsZ int, y float64) *Mesh {
	return newGrid(name, width, depth, cellsX, cellsZ, y, false)
}

// NewCeiling is a grid facing down.
func NewCeiling(name string, width, depth float64, cellsX, cellsZ int, y float64) *Mesh {
	return newGrid(name, width, depth, cellsX, cellsZ, y, true)
}

func newGrid(name string, width, depth float64, cellsX, cellsZ int, y float64, down bool) *Mesh {
	m := NewMesh(name)
	cw, cd := width/float64(cellsX), depth/float64(cellsZ)
	x0, z0 := -width/2, -depth/2
	for cz := range cellsZ {
		for cx := range cellsX {
			xa, xb := x0+float64(cx)*cw, x0+float64(cx+1)*cw
			za, zb := z0+float64(cz)*cd, z0+float64(cz+1)*cd
			if down {
				m.AddQuad(math3d.V3(xa, y, za), math3d.V3(xb, y, za), math3d.V3(xb, y, zb), math3d.V3(xa, y, zb), -1)
			} else {
				m.AddQuad(math3d.V3(xa, y, zb), math3d.V3(xb, y, zb), math3d.V3(xb, y, za), math3d.V3(xa, y, za), -1)
			}
		}
	}
	m.CalculateBounds()
	return m
}

// NewWall creates a vertical wall from a to b (bottom corners) of the given
// height, visible from the side where a is on the left. The wall is split
// into cells of at most one unit wide so textures keep their scale.
func NewWall(name string, a, b math3d.Vec3, height float64) *Mesh {
	m := NewMesh(name)
	span := b.Sub(a)
	cells := max(1, int(span.Len()+0.5))
	up := math3d.V3(0, height, 0)
	for i := range cells {
		p0 := a.Add(span.Scale(float64(i) / float64(cells)))
		p1 := a.Add(span.Scale(float64(i+1) / float64(cells)))
		m.AddQuad(p0, p1, p1.Add(up), p0.Add(up), -1)
	}
	m.CalculateBounds()
	return m
}

// NewBillboard creates a quad in the XY plane facing +Z with its bottom
// center on the origin.
func NewBillboard(name string, width, height float64) *Mesh {
	m := NewMesh(name)
	hw := width / 2
	m.AddQuad(math3d.V3(-hw, 0, 0), math3d.V3(hw, 0, 0), math3d.V3(hw, height, 0), math3d.V3(-hw, height, 0), -1)
	m.CalculateBounds()
	return m
}

// NewBox creates an axis-aligned box with outward faces.
func NewBox(name string, minP, maxP math3d.Vec3) *Mesh {
	m := NewMesh(name)
	x0, y0, z0 := minP.X, minP.Y, minP.Z
	x1, y1, z1 := maxP.X, maxP.Y, maxP.Z
	v := math3d.V3
	m.AddQuad(v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1), -1) // +Z
	m.AddQuad(v(x1, y0, z0), v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), -1) // -Z
	m.AddQuad(v(x1, y0, z1), v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), -1) // +X
	m.AddQuad(v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0), -1) // -X
	m.AddQuad(v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0), v(x0, y1, z0), -1) // +Y
	m.AddQuad(v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1), -1) // -Y
	m.CalculateBounds()
	return m
}
