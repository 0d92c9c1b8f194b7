package render

import (
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
)

// rasterTriangle is a front-facing triangle prepared for the pixel loop.
type rasterTriangle struct {
	clip       [3]math3d.Vec4
	clipWRecip [3]float64
	ndc        [3]math3d.Vec3
	screen     [3]math3d.Vec2

	edge01, edge12, edge20 math3d.Vec2
	perp01, perp12, perp20 math3d.Vec2

	uv     [3]math3d.Vec2
	uvPerW [3]math3d.Vec2

	// Barycentric terms that depend only on the triangle.
	d00, d01, d11, denomRecip float64

	xStart, xEnd, yStart, yEnd int
}

// frameStats counts work done during one SubmitFrame.
type frameStats struct {
	presentedTriangles int
	depthTests         int
	colorWrites        int
}

// Rasterizer owns the frame buffers and turns clip-space triangles into
// palette indices and resolved colors.
type Rasterizer struct {
	width, height         int
	widthReal, heightReal float64

	indexBuffer []uint8
	depthBuffer []float64
	colorBuffer []uint32
	dither      ditherBuffer

	// Per-frame inputs.
	camera               *RenderCamera
	ambientPercent       float64
	palette              []uint32
	lightTable           []uint8
	lightLevelCount      int
	lightLevelTexelCount int
	skyBgTexel           uint8
	horizonScreen        math3d.Vec2

	triangles []rasterTriangle
	stats     frameStats
}

func newRasterizer() *Rasterizer {
	return &Rasterizer{
		triangles: make([]rasterTriangle, 0, MaxClippedMeshTriangles),
	}
}

// resize reallocates the frame buffers and rebuilds the dither masks.
func (r *Rasterizer) resize(width, height int, mode DitheringMode) {
	r.width, r.height = width, height
	r.widthReal, r.heightReal = float64(width), float64(height)
	n := width * height
	r.indexBuffer = make([]uint8, n)
	r.depthBuffer = make([]float64, n)
	fill(r.depthBuffer, math.Inf(1))
	r.dither.build(width, height, mode)
}

// clear resets the frame buffers for a new frame.
func (r *Rasterizer) clear(clearColor uint32) {
	fill(r.indexBuffer, 0)
	fill(r.depthBuffer, math.Inf(1))
	fill(r.colorBuffer, clearColor)
	r.stats = frameStats{}
}

// ndcToScreen maps normalized device coordinates to pixel space with y down.
func (r *Rasterizer) ndcToScreen(x, y float64) math3d.Vec2 {
	return math3d.V2((0.5+x*0.5)*r.widthReal, (0.5-y*0.5)*r.heightReal)
}

// processFrontFacing prepares the mesh's clipped triangles for rasterization,
// dropping back faces and triangles without any pixel coverage.
func (r *Rasterizer) processFrontFacing(m *meshProcessCache) {
	r.triangles = r.triangles[:0]
	for i := range m.clipped {
		ct := &m.clipped[i]
		var rt rasterTriangle
		for k := range 3 {
			rt.clip[k] = ct.V[k]
			rt.clipWRecip[k] = 1.0 / ct.V[k].W
			rt.ndc[k] = ct.V[k].Vec3().Scale(rt.clipWRecip[k])
			rt.screen[k] = r.ndcToScreen(rt.ndc[k].X, rt.ndc[k].Y)
			rt.uv[k] = ct.UV[k]
			rt.uvPerW[k] = ct.UV[k].Scale(rt.clipWRecip[k])
		}

		s0, s1, s2 := rt.screen[0], rt.screen[1], rt.screen[2]
		rt.edge01 = s1.Sub(s0)
		rt.edge12 = s2.Sub(s1)
		rt.edge20 = s0.Sub(s2)

		area := rt.edge12.Cross(rt.edge01) + rt.edge20.Cross(rt.edge12) + rt.edge01.Cross(rt.edge20)
		if !(area > 0) {
			continue
		}

		xMin, xMax := min3(s0.X, s1.X, s2.X), max3(s0.X, s1.X, s2.X)
		yMin, yMax := min3(s0.Y, s1.Y, s2.Y), max3(s0.Y, s1.Y, s2.Y)
		rt.xStart = clampInt(int(math.Ceil(xMin-0.5)), 0, r.width)
		rt.xEnd = clampInt(int(math.Floor(xMax+0.5)), 0, r.width)
		rt.yStart = clampInt(int(math.Ceil(yMin-0.5)), 0, r.height)
		rt.yEnd = clampInt(int(math.Floor(yMax+0.5)), 0, r.height)
		if rt.xEnd <= rt.xStart || rt.yEnd <= rt.yStart {
			continue
		}

		rt.perp01 = rt.edge01.RightPerp()
		rt.perp12 = rt.edge12.RightPerp()
		rt.perp20 = rt.edge20.RightPerp()

		ss1 := s2.Sub(s0)
		rt.d00 = rt.edge01.Dot(rt.edge01)
		rt.d01 = rt.edge01.Dot(ss1)
		rt.d11 = ss1.Dot(ss1)
		rt.denomRecip = 1.0 / (rt.d00*rt.d11 - rt.d01*rt.d01)

		r.triangles = append(r.triangles, rt)
		r.stats.presentedTriangles++
	}
}

// barycentric returns the weights of s0, s1 and s2 for point p.
func (rt *rasterTriangle) barycentric(p math3d.Vec2) (u, v, w float64) {
	ss1 := rt.screen[2].Sub(rt.screen[0])
	ss2 := p.Sub(rt.screen[0])
	d20 := ss2.Dot(rt.edge01)
	d21 := ss2.Dot(ss1)
	v = (rt.d11*d20 - rt.d01*d21) * rt.denomRecip
	w = (rt.d00*d21 - rt.d01*d20) * rt.denomRecip
	u = 1 - v - w
	return u, v, w
}

// contains reports whether p is on the inner side of all three edges.
func (rt *rasterTriangle) contains(p math3d.Vec2) bool {
	return p.Sub(rt.screen[0]).Dot(rt.perp01) >= 0 &&
		p.Sub(rt.screen[1]).Dot(rt.perp12) >= 0 &&
		p.Sub(rt.screen[2]).Dot(rt.perp20) >= 0
}

// rasterizeMesh shades every covered pixel of the mesh's prepared triangles.
func (r *Rasterizer) rasterizeMesh(m *meshProcessCache) {
	var in pixelShaderInput
	for ti := range r.triangles {
		rt := &r.triangles[ti]
		for y := rt.yStart; y < rt.yEnd; y++ {
			in.yPercent = (float64(y) + 0.5) / r.heightReal
			for x := rt.xStart; x < rt.xEnd; x++ {
				p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
				if !rt.contains(p) {
					continue
				}

				u, v, w := rt.barycentric(p)
				pixelIndex := x + y*r.width
				depth := rt.ndc[0].Z*u + rt.ndc[1].Z*v + rt.ndc[2].Z*w
				if m.enableDepthRead {
					r.stats.depthTests++
					if !(depth < r.depthBuffer[pixelIndex]) {
						continue
					}
				}

				wRecip := rt.clipWRecip[0]*u + rt.clipWRecip[1]*v + rt.clipWRecip[2]*w
				clipW := 1.0 / wRecip
				in.pixelIndex = pixelIndex
				in.pixelCenter = p
				in.xPercent = p.X / r.widthReal
				in.depth = depth
				in.texCoord = math3d.V2(
					(rt.uvPerW[0].X*u+rt.uvPerW[1].X*v+rt.uvPerW[2].X*w)*clipW,
					(rt.uvPerW[0].Y*u+rt.uvPerW[1].Y*v+rt.uvPerW[2].Y*w)*clipW,
				)
				in.lightLevel = r.lightLevel(m, rt, u, v, w, clipW, pixelIndex)

				if r.runPixelShader(m, &in) {
					r.colorBuffer[pixelIndex] = r.palette[r.indexBuffer[pixelIndex]]
					r.stats.colorWrites++
				}
			}
		}
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fill sets every element of s to v by copy-doubling.
func fill[T any](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}
