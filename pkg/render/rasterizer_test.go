package render

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

const weightEpsilon = 1e-6

// prepareTriangles runs triangle setup on tris, given in NDC with the
// matching clip w, and returns the front-facing survivors.
func prepareTriangles(r *Rasterizer, tris [][3]math3d.Vec3, w [][3]float64) []rasterTriangle {
	m := &meshProcessCache{}
	for i, tri := range tris {
		var ct clipTriangle
		for k := range 3 {
			ct.V[k] = math3d.V4FromV3(tri[k].Scale(w[i][k]), w[i][k])
		}
		m.clipped = append(m.clipped, ct)
	}
	r.processFrontFacing(m)
	return r.triangles
}

func checkWeights(t *testing.T, rt *rasterTriangle, p math3d.Vec2) bool {
	t.Helper()
	u, v, w := rt.barycentric(p)
	if math.Abs(u+v+w-1) > weightEpsilon {
		t.Errorf("p=%+v: u+v+w = %v, want 1", p, u+v+w)
		return false
	}
	if u < -weightEpsilon || v < -weightEpsilon || w < -weightEpsilon {
		t.Errorf("p=%+v: weights (%v, %v, %v) have a negative", p, u, v, w)
		return false
	}
	return true
}

func TestBarycentricAtVertices(t *testing.T) {
	r := newShaderRasterizer(16, 16)
	tris := prepareTriangles(r,
		[][3]math3d.Vec3{{math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(-1, 1, 0)}},
		[][3]float64{{1, 1, 1}})
	if len(tris) != 1 {
		t.Fatalf("prepared %d triangles, want 1", len(tris))
	}
	rt := &tris[0]

	for k := range 3 {
		u, v, w := rt.barycentric(rt.screen[k])
		got := [3]float64{u, v, w}
		for j := range 3 {
			want := 0.0
			if j == k {
				want = 1
			}
			if math.Abs(got[j]-want) > 1e-12 {
				t.Errorf("vertex %d: weights = %v, want unit weight at %d", k, got, k)
				break
			}
		}
	}
}

func TestBarycentricPartitionOfUnity(t *testing.T) {
	r := newShaderRasterizer(64, 48)
	rng := rand.New(rand.NewPCG(7, 11))
	coord := func() float64 { return rng.Float64()*2.4 - 1.2 }

	var tris [][3]math3d.Vec3
	var ws [][3]float64
	for range 500 {
		var tri [3]math3d.Vec3
		var w [3]float64
		for k := range 3 {
			tri[k] = math3d.V3(coord(), coord(), rng.Float64()*2-1)
			w[k] = 0.5 + rng.Float64()*2.5
		}
		tris = append(tris, tri)
		ws = append(ws, w)
	}

	covered := 0
	for _, rt := range prepareTriangles(r, tris, ws) {
		s := rt.screen
		// Slivers under a pixel of area make the weight solve ill-conditioned.
		if area := s[1].Sub(s[0]).Cross(s[2].Sub(s[0])); math.Abs(area) < 1 {
			continue
		}
		for y := rt.yStart; y < rt.yEnd; y++ {
			for x := rt.xStart; x < rt.xEnd; x++ {
				p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
				if !rt.contains(p) {
					continue
				}
				covered++
				if !checkWeights(t, &rt, p) {
					return
				}
			}
		}
	}
	if covered == 0 {
		t.Fatal("no pixels covered")
	}
}
