package render

import (
	"fmt"
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
)

// worldPoint reconstructs the world-space position of a pixel from its
// interpolated NDC position and clip-space W.
func (r *Rasterizer) worldPoint(rt *rasterTriangle, u, v, w, clipW float64) math3d.Vec3 {
	ndc := rt.ndc[0].Scale(u).Add(rt.ndc[1].Scale(v)).Add(rt.ndc[2].Scale(w))
	homogeneous := math3d.V4(ndc.X*clipW, ndc.Y*clipW, ndc.Z*clipW, clipW)
	cameraPoint := r.camera.InverseProjection.MulVec4(homogeneous)
	return r.camera.InverseView.MulVec4(cameraPoint).Vec3()
}

// lightIntensity sums ambient light and each mesh light's contribution at
// point, saturating at 1. Ambient above 1 saturates on its own.
func lightIntensity(ambient float64, lights []*Light, point math3d.Vec3) float64 {
	sum := min(ambient, 1)
	for _, l := range lights {
		sum += l.Contribution(point.Distance(l.Point))
		if sum >= 1 {
			return 1
		}
	}
	return sum
}

// lightLevel returns the light table row for a pixel. Row 0 is the
// brightest.
func (r *Rasterizer) lightLevel(m *meshProcessCache, rt *rasterTriangle, u, v, w, clipW float64, pixelIndex int) int {
	var sum float64
	switch m.lightingType {
	case LightingPerMesh:
		sum = m.lightPercent
	case LightingPerPixel:
		point := r.worldPoint(rt, u, v, w, clipW)
		sum = lightIntensity(r.ambientPercent, m.lights[:m.lightCount], point)
	default:
		panic(fmt.Sprintf("unhandled lighting type: %d", m.lightingType))
	}

	last := r.lightLevelCount - 1
	levelReal := sum * float64(r.lightLevelCount)
	level := last - clampInt(int(levelReal), 0, last)

	if m.lightingType == LightingPerPixel && r.shouldDither(sum, levelReal, pixelIndex) {
		level = min(level+1, last)
	}
	return level
}

func (r *Rasterizer) shouldDither(sum, levelReal float64, pixelIndex int) bool {
	switch r.dither.mode {
	case DitheringClassic:
		return r.dither.masks[pixelIndex]
	case DitheringModern:
		if sum >= 1 {
			return false
		}
		_, frac := math.Modf(levelReal)
		mask := clampInt(int(float64(DitheringModernMaskCount)*frac), 0, DitheringModernMaskCount-1)
		return r.dither.masks[pixelIndex+mask*r.width*r.height]
	}
	return false
}
