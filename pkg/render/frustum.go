package render

import (
	"github.com/taigrr/palrast/pkg/math3d"
)

// Plane is the plane Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

func planeFromRow(r math3d.Vec4) Plane {
	p := Plane{Normal: r.Vec3(), D: r.W}
	if l := p.Normal.Len(); l != 0 {
		p.Normal = p.Normal.Scale(1 / l)
		p.D /= l
	}
	return p
}

// DistanceToPoint returns the signed distance from the plane to point,
// positive on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six planes of a view volume with inward normals, in the
// same order the clipper uses: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [clipPlaneCount]Plane
}

// NewFrustumFromMatrix extracts the frustum of a model-view-projection
// matrix. The planes are in the matrix's source space, so passing
// ViewProjection * Model yields model-space planes.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row3 := m.Row(3)
	var f Frustum
	for axis := range 3 {
		row := m.Row(axis)
		f.Planes[axis*2] = planeFromRow(row3.Add(row))
		f.Planes[axis*2+1] = planeFromRow(row3.Sub(row))
	}
	return f
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It is conservative: boxes near frustum corners can pass while outside.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		// The corner furthest along the normal.
		p := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extend returns the smallest box containing b and p.
func (b AABB) Extend(p math3d.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}
