package render

import (
	"fmt"

	"github.com/taigrr/palrast/pkg/math3d"
)

// clipPlaneCount is the number of homogeneous clip planes: -X, +X, -Y, +Y,
// -Z, +Z in that order.
const clipPlaneCount = 6

// clipQueueCapacity bounds the clip queue for one source triangle. Each plane
// may append two triangles per pending one before the consumed front is
// compacted away.
const clipQueueCapacity = MaxClippedTriangleTriangles * 3

// clipCaseOutputCounts is the number of triangles produced for each outside
// mask, where bit 0 is vertex 2, bit 1 is vertex 1 and bit 2 is vertex 0.
var clipCaseOutputCounts = [8]int{1, 2, 2, 1, 2, 1, 1, 0}

// clipCase describes how a partially outside triangle is rebuilt. The two
// edge intersections become vertices 3 and 4.
type clipCase struct {
	edges     [2][2]int
	triangles [2][3]int
}

var clipCases = [8]clipCase{
	1: {edges: [2][2]int{{1, 2}, {2, 0}}, triangles: [2][3]int{{0, 1, 3}, {3, 4, 0}}},
	2: {edges: [2][2]int{{0, 1}, {1, 2}}, triangles: [2][3]int{{0, 3, 4}, {4, 2, 0}}},
	3: {edges: [2][2]int{{0, 1}, {2, 0}}, triangles: [2][3]int{{0, 3, 4}}},
	4: {edges: [2][2]int{{0, 1}, {2, 0}}, triangles: [2][3]int{{3, 1, 2}, {2, 4, 3}}},
	5: {edges: [2][2]int{{0, 1}, {1, 2}}, triangles: [2][3]int{{3, 1, 4}}},
	6: {edges: [2][2]int{{1, 2}, {2, 0}}, triangles: [2][3]int{{3, 2, 4}}},
}

// clipPlaneDistance returns the signed distance of v from plane, positive
// inside the view volume.
func clipPlaneDistance(v math3d.Vec4, plane int) float64 {
	comp := v.Component(plane / 2)
	if plane%2 == 0 {
		return comp + v.W
	}
	return v.W - comp
}

// processClipping clips every shaded triangle against the view volume and
// appends the survivors to their mesh's clipped list.
func (b *BatchContext) processClipping() {
	sc := &b.shading
	for i := range sc.triangleCount {
		m := &b.meshes[sc.meshIndex[i]]
		tri := clipTriangle{
			V:  [3]math3d.Vec4{sc.V0.Get(i), sc.V1.Get(i), sc.V2.Get(i)},
			UV: [3]math3d.Vec2{sc.UV0[i], sc.UV1[i], sc.UV2[i]},
		}

		b.clipTriangleToVolume(tri)

		live := b.clipList[b.clipListFront:b.clipListSize]
		if len(m.clipped)+len(live) > MaxClippedMeshTriangles {
			panic(fmt.Sprintf("clipped mesh triangle overflow: %d > %d", len(m.clipped)+len(live), MaxClippedMeshTriangles))
		}
		m.clipped = append(m.clipped, live...)
	}
}

// clipTriangleToVolume runs the clip queue for one triangle. On return the
// surviving triangles are clipList[clipListFront:clipListSize].
func (b *BatchContext) clipTriangleToVolume(tri clipTriangle) {
	b.clipList[0] = tri
	b.clipListSize = 1
	b.clipListFront = 0

	for plane := range clipPlaneCount {
		b.compactClipList()
		pending := b.clipListSize - b.clipListFront
		for range pending {
			b.clipAgainstPlane(b.clipList[b.clipListFront], plane)
			b.clipListFront++
		}
	}

	if live := b.clipListSize - b.clipListFront; live > MaxClippedTriangleTriangles {
		panic(fmt.Sprintf("clipped triangle overflow: %d > %d", live, MaxClippedTriangleTriangles))
	}
}

func (b *BatchContext) compactClipList() {
	if b.clipListFront == 0 {
		return
	}
	n := copy(b.clipList, b.clipList[b.clipListFront:b.clipListSize])
	b.clipListFront = 0
	b.clipListSize = n
}

// clipAgainstPlane appends the part of tri inside plane to the clip queue.
func (b *BatchContext) clipAgainstPlane(tri clipTriangle, plane int) {
	var dist [3]float64
	mask := 0
	for k := range 3 {
		dist[k] = clipPlaneDistance(tri.V[k], plane)
		if dist[k] < 0 {
			mask |= 1 << (2 - k)
		}
	}

	count := clipCaseOutputCounts[mask]
	if b.clipListSize+count > len(b.clipList) {
		panic(fmt.Sprintf("clip queue overflow: %d > %d", b.clipListSize+count, len(b.clipList)))
	}

	switch mask {
	case 0:
		b.clipList[b.clipListSize] = tri
		b.clipListSize++
		return
	case 7:
		return
	}

	c := &clipCases[mask]
	var verts [5]math3d.Vec4
	var uvs [5]math3d.Vec2
	copy(verts[:3], tri.V[:])
	copy(uvs[:3], tri.UV[:])
	for e, edge := range c.edges {
		i0, i1 := edge[0], edge[1]
		t := dist[i0] / (dist[i0] - dist[i1])
		verts[3+e] = tri.V[i0].Lerp(tri.V[i1], t)
		uvs[3+e] = tri.UV[i0].Lerp(tri.UV[i1], t)
	}

	for _, idx := range c.triangles[:count] {
		b.clipList[b.clipListSize] = clipTriangle{
			V:  [3]math3d.Vec4{verts[idx[0]], verts[idx[1]], verts[idx[2]]},
			UV: [3]math3d.Vec2{uvs[idx[0]], uvs[idx[1]], uvs[idx[2]]},
		}
		b.clipListSize++
	}
}
