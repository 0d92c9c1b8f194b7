package render

import (
	"math"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

func clipTri(v0, v1, v2 math3d.Vec4) clipTriangle {
	return clipTriangle{
		V:  [3]math3d.Vec4{v0, v1, v2},
		UV: [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)},
	}
}

func clipped(b *BatchContext) []clipTriangle {
	return b.clipList[b.clipListFront:b.clipListSize]
}

// ndcArea returns the signed area of a triangle's projection onto the NDC
// XY plane.
func ndcArea(tri clipTriangle) float64 {
	var p [3]math3d.Vec2
	for k := range 3 {
		ndc := tri.V[k].PerspectiveDivide()
		p[k] = math3d.V2(ndc.X, ndc.Y)
	}
	return 0.5 * p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
}

func insideVolume(v math3d.Vec4) bool {
	const eps = 1e-9
	for plane := range clipPlaneCount {
		if clipPlaneDistance(v, plane) < -eps {
			return false
		}
	}
	return true
}

func TestClipTriangleInsideIsUnchanged(t *testing.T) {
	b := NewBatchContext()
	tri := clipTri(
		math3d.V4(-0.5, -0.5, 0, 1),
		math3d.V4(0.5, -0.5, 0.2, 1),
		math3d.V4(0, 0.5, -0.3, 2),
	)

	b.clipTriangleToVolume(tri)

	out := clipped(b)
	if len(out) != 1 {
		t.Fatalf("got %d triangles, want 1", len(out))
	}
	if out[0] != tri {
		t.Errorf("triangle changed: got %+v, want %+v", out[0], tri)
	}
}

func TestClipTriangleCases(t *testing.T) {
	tests := []struct {
		name string
		tri  clipTriangle
		want int
		area float64
	}{
		{
			name: "one vertex outside +X",
			tri:  clipTri(math3d.V4(0, 0, 0, 1), math3d.V4(1.5, 0, 0, 1), math3d.V4(0, 1, 0, 1)),
			want: 2,
			area: 0.75 - 1.0/12,
		},
		{
			name: "two vertices outside -Y",
			tri:  clipTri(math3d.V4(0, 0, 0, 1), math3d.V4(-0.5, -2, 0, 1), math3d.V4(0.5, -2, 0, 1)),
			want: 1,
			area: 0.25,
		},
		{
			name: "all outside +Z",
			tri:  clipTri(math3d.V4(0, 0, 2, 1), math3d.V4(1, 0, 3, 1), math3d.V4(0, 1, 2, 1)),
			want: 0,
		},
		{
			name: "all outside on different sides",
			tri:  clipTri(math3d.V4(2, 2, 0, 1), math3d.V4(3, 2, 0, 1), math3d.V4(2, 3, 0, 1)),
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBatchContext()
			b.clipTriangleToVolume(tc.tri)

			out := clipped(b)
			if len(out) != tc.want {
				t.Fatalf("got %d triangles, want %d", len(out), tc.want)
			}

			var area float64
			for _, tri := range out {
				for k, v := range tri.V {
					if !insideVolume(v) {
						t.Errorf("vertex %d %+v outside view volume", k, v)
					}
				}
				area += ndcArea(tri)
			}
			if math.Abs(area-tc.area) > 1e-9 {
				t.Errorf("clipped area = %v, want %v", area, tc.area)
			}
		})
	}
}

func TestClipPreservesWinding(t *testing.T) {
	base := []clipTriangle{
		clipTri(math3d.V4(-2, -0.5, 0, 1), math3d.V4(0.5, -0.5, 0, 1), math3d.V4(0, 0.5, 0, 1)),
		clipTri(math3d.V4(0, -0.5, 0, 1), math3d.V4(3, 0, 0, 1), math3d.V4(0, 3, 0, 1)),
		clipTri(math3d.V4(-3, -3, 0, 1), math3d.V4(3, -3, 0, 1), math3d.V4(0, 3, 0, 1)),
		clipTri(math3d.V4(0, 0, 0, 1), math3d.V4(0.5, 2, 0, 1), math3d.V4(-2, 0.5, 0, 1)),
	}

	for i, tri := range base {
		for _, flip := range []bool{false, true} {
			src := tri
			if flip {
				src.V[1], src.V[2] = src.V[2], src.V[1]
				src.UV[1], src.UV[2] = src.UV[2], src.UV[1]
			}
			parent := math.Signbit(ndcArea(src))

			b := NewBatchContext()
			b.clipTriangleToVolume(src)
			for _, out := range clipped(b) {
				area := ndcArea(out)
				if area == 0 {
					continue
				}
				if math.Signbit(area) != parent {
					t.Errorf("triangle %d flip=%v: child area %v has opposite winding", i, flip, area)
				}
			}
		}
	}
}

func TestClipInterpolatesTexCoords(t *testing.T) {
	b := NewBatchContext()
	// Vertex 1 lies at x=3; the +X plane cuts edge 0-1 a third of the way.
	tri := clipTri(math3d.V4(0, 0, 0, 1), math3d.V4(3, 0, 0, 1), math3d.V4(0, 0.5, 0, 1))
	b.clipTriangleToVolume(tri)

	found := false
	for _, out := range clipped(b) {
		for k, v := range out.V {
			if math.Abs(v.X-1) < 1e-12 && math.Abs(v.Y) < 1e-12 {
				found = true
				if uv := out.UV[k]; math.Abs(uv.X-1.0/3) > 1e-12 || uv.Y != 0 {
					t.Errorf("uv at cut = %+v, want {0.333 0}", uv)
				}
			}
		}
	}
	if !found {
		t.Error("no vertex generated at the +X cut on edge 0-1")
	}
}

func TestClipNearPlaneInHomogeneousSpace(t *testing.T) {
	b := NewBatchContext()
	// Vertex 2 is behind the near plane (z < -w).
	tri := clipTri(math3d.V4(0, 0, 0, 1), math3d.V4(0.5, 0, 0, 1), math3d.V4(0, 0, -3, 1))
	b.clipTriangleToVolume(tri)

	out := clipped(b)
	if len(out) != 2 {
		t.Fatalf("got %d triangles, want 2", len(out))
	}
	for _, tri := range out {
		for _, v := range tri.V {
			if v.Z < -v.W-1e-12 {
				t.Errorf("vertex %+v still behind near plane", v)
			}
		}
	}
}

func TestClipCaseTableOutputCounts(t *testing.T) {
	for mask, c := range clipCases {
		if mask == 0 || mask == 7 {
			continue
		}
		n := 0
		for _, tri := range c.triangles {
			if tri != [3]int{} {
				n++
			}
		}
		if n != clipCaseOutputCounts[mask] {
			t.Errorf("mask %d: %d triangles in table, count says %d", mask, n, clipCaseOutputCounts[mask])
		}
	}
}
