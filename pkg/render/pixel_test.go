package render

import (
	"math"
	"strings"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

// newShaderRasterizer returns a rasterizer with the gray palette and the
// i+L light table, ready for direct pixel shader calls.
func newShaderRasterizer(width, height int) *Rasterizer {
	r := newRasterizer()
	r.resize(width, height, DitheringNone)
	r.colorBuffer = make([]uint32, width*height)
	r.palette = make([]uint32, 256)
	for i := range r.palette {
		r.palette[i] = testColor(uint8(i))
	}
	r.lightLevelCount = testLightLevels
	r.lightLevelTexelCount = 256
	r.lightTable = make([]uint8, 256*testLightLevels)
	for level := range testLightLevels {
		for i := range 256 {
			r.lightTable[i+level*256] = uint8(i + level)
		}
	}
	return r
}

func newTexture(width, height int, texels ...uint8) *ObjectTexture {
	tex := &ObjectTexture{}
	tex.init(width, height, 1)
	if len(texels) == 1 {
		LockedTexture{Texels: tex.Texels}.Fill8(texels[0])
	} else {
		copy(tex.Texels, texels)
	}
	return tex
}

func shaderMesh(shader PixelShaderType, textures ...*ObjectTexture) *meshProcessCache {
	m := &meshProcessCache{
		pixelShaderType:  shader,
		enableDepthRead:  true,
		enableDepthWrite: true,
	}
	copy(m.textures[:], textures)
	return m
}

func shaderInput(r *Rasterizer, x, y int, u, v float64) *pixelShaderInput {
	center := math3d.V2(float64(x)+0.5, float64(y)+0.5)
	return &pixelShaderInput{
		pixelIndex:  x + y*r.width,
		pixelCenter: center,
		xPercent:    center.X / r.widthReal,
		yPercent:    center.Y / r.heightReal,
		texCoord:    math3d.V2(u, v),
		depth:       0.5,
	}
}

func TestPixelShaderOpaqueAppliesLightLevel(t *testing.T) {
	r := newShaderRasterizer(4, 4)
	m := shaderMesh(PixelShaderOpaque, newTexture(1, 1, 40))
	in := shaderInput(r, 1, 2, 0.5, 0.5)
	in.lightLevel = 3

	if !r.runPixelShader(m, in) {
		t.Fatal("opaque shader did not write")
	}
	if got := r.indexBuffer[in.pixelIndex]; got != 43 {
		t.Errorf("index = %d, want 43", got)
	}
	if got := r.depthBuffer[in.pixelIndex]; got != 0.5 {
		t.Errorf("depth = %v, want 0.5", got)
	}
}

func TestPixelShaderDepthWriteDisabled(t *testing.T) {
	r := newShaderRasterizer(2, 2)
	m := shaderMesh(PixelShaderOpaque, newTexture(1, 1, 40))
	m.enableDepthWrite = false
	in := shaderInput(r, 0, 0, 0, 0)

	r.runPixelShader(m, in)

	if got := r.depthBuffer[0]; !math.IsInf(got, 1) {
		t.Errorf("depth = %v, want untouched +Inf", got)
	}
}

func TestPixelShaderAlphaTestedDiscardsTransparent(t *testing.T) {
	lookup := newTexture(256, 1, 200)
	tests := []struct {
		name   string
		shader PixelShaderType
	}{
		{"alpha tested", PixelShaderAlphaTested},
		{"u min", PixelShaderAlphaTestedWithVariableTexCoordUMin},
		{"v min", PixelShaderAlphaTestedWithVariableTexCoordVMin},
		{"palette index lookup", PixelShaderAlphaTestedWithPaletteIndexLookup},
		{"light level color", PixelShaderAlphaTestedWithLightLevelColor},
		{"light level opacity", PixelShaderAlphaTestedWithLightLevelOpacity},
		{"previous brightness limit", PixelShaderAlphaTestedWithPreviousBrightnessLimit},
		{"horizon mirror", PixelShaderAlphaTestedWithHorizonMirror},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newShaderRasterizer(2, 2)
			// Dark gray, below the brightness limit.
			const prev = 5
			fill(r.indexBuffer, prev)
			fill(r.depthBuffer, 0.75)
			m := shaderMesh(tc.shader, newTexture(2, 2, PaletteTransparent), lookup)
			m.pixelShaderParam0 = 0.5

			for y := range 2 {
				for x := range 2 {
					in := shaderInput(r, x, y, (float64(x)+0.5)/2, (float64(y)+0.5)/2)
					if r.runPixelShader(m, in) {
						t.Errorf("pixel (%d, %d): transparent texel was written", x, y)
					}
					if got := r.indexBuffer[in.pixelIndex]; got != prev {
						t.Errorf("pixel (%d, %d): index = %d, want %d", x, y, got, prev)
					}
					if got := r.depthBuffer[in.pixelIndex]; got != 0.75 {
						t.Errorf("pixel (%d, %d): depth = %v, want 0.75", x, y, got)
					}
				}
			}
		})
	}
}

func TestPixelShaderAlphaTestedWritesOpaque(t *testing.T) {
	r := newShaderRasterizer(2, 1)
	r.indexBuffer[0] = 77
	// Left texel transparent, right texel 9.
	m := shaderMesh(PixelShaderAlphaTested, newTexture(2, 1, PaletteTransparent, 9))

	if r.runPixelShader(m, shaderInput(r, 0, 0, 0.25, 0.5)) {
		t.Error("transparent texel was written")
	}
	if !r.runPixelShader(m, shaderInput(r, 0, 0, 0.75, 0.5)) {
		t.Error("opaque texel was discarded")
	}
	if r.indexBuffer[0] != 9 {
		t.Errorf("index = %d, want 9", r.indexBuffer[0])
	}
	if r.depthBuffer[0] != 0.5 {
		t.Errorf("depth = %v, want 0.5", r.depthBuffer[0])
	}
}

func TestPixelShaderVariableTexCoordMin(t *testing.T) {
	// Four columns/rows of texels 1..4.
	tests := []struct {
		name   string
		shader PixelShaderType
		tex    *ObjectTexture
		min    float64
		u, v   float64
		want   uint8
	}{
		{"u min 0 keeps coord", PixelShaderAlphaTestedWithVariableTexCoordUMin, newTexture(4, 1, 1, 2, 3, 4), 0, 0.1, 0, 1},
		{"u min half shifts coord", PixelShaderAlphaTestedWithVariableTexCoordUMin, newTexture(4, 1, 1, 2, 3, 4), 0.5, 0.1, 0, 3},
		{"u min half at end", PixelShaderAlphaTestedWithVariableTexCoordUMin, newTexture(4, 1, 1, 2, 3, 4), 0.5, 0.99, 0, 4},
		{"v min 0.75", PixelShaderAlphaTestedWithVariableTexCoordVMin, newTexture(1, 4, 1, 2, 3, 4), 0.75, 0, 0, 4},
		{"v min quarter", PixelShaderAlphaTestedWithVariableTexCoordVMin, newTexture(1, 4, 1, 2, 3, 4), 0.25, 0, 0.5, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newShaderRasterizer(1, 1)
			m := shaderMesh(tc.shader, tc.tex)
			m.pixelShaderParam0 = tc.min

			r.runPixelShader(m, shaderInput(r, 0, 0, tc.u, tc.v))

			if got := r.indexBuffer[0]; got != tc.want {
				t.Errorf("index = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPixelShaderPaletteIndexLookup(t *testing.T) {
	r := newShaderRasterizer(1, 1)
	lookup := newTexture(256, 1)
	lookup.Texels[12] = 200
	m := shaderMesh(PixelShaderAlphaTestedWithPaletteIndexLookup, newTexture(1, 1, 12), lookup)

	in := shaderInput(r, 0, 0, 0, 0)
	in.lightLevel = 2
	r.runPixelShader(m, in)

	if got := r.indexBuffer[0]; got != 202 {
		t.Errorf("index = %d, want 202", got)
	}
}

func TestPixelShaderLightLevelOpacity(t *testing.T) {
	tests := []struct {
		name       string
		texel      uint8
		prev       uint8
		lightLevel int
		want       uint8
		wrote      bool
	}{
		{"lowest level darkens by nothing", LightLevelLowest, 10, 0, 10, true},
		{"level 2 darkens previous by one row", 2, 10, 0, 11, true},
		{"highest level", LightLevelHighest, 10, 5, 22, true},
		{"src1 maps to dst1", LightLevelSrc1, 10, 0, LightLevelDst1, true},
		{"src2 maps to dst2 in light row", LightLevelSrc2, 10, 1, LightLevelDst2 + 1, true},
		{"plain texel shaded", 50, 10, 3, 53, true},
		{"transparent", PaletteTransparent, 10, 0, 10, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newShaderRasterizer(1, 1)
			r.indexBuffer[0] = tc.prev
			m := shaderMesh(PixelShaderAlphaTestedWithLightLevelOpacity, newTexture(1, 1, tc.texel))
			in := shaderInput(r, 0, 0, 0, 0)
			in.lightLevel = tc.lightLevel

			wrote := r.runPixelShader(m, in)

			if wrote != tc.wrote {
				t.Errorf("wrote = %v, want %v", wrote, tc.wrote)
			}
			if got := r.indexBuffer[0]; got != tc.want {
				t.Errorf("index = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPixelShaderLightLevelOpacityOutOfTable(t *testing.T) {
	r := newShaderRasterizer(1, 1)
	r.lightLevelCount = 4
	r.lightTable = r.lightTable[:4*256]
	r.indexBuffer[0] = 10
	m := shaderMesh(PixelShaderAlphaTestedWithLightLevelOpacity, newTexture(1, 1, LightLevelHighest))

	if r.runPixelShader(m, shaderInput(r, 0, 0, 0, 0)) {
		t.Error("wrote past the end of the light table")
	}
	if r.indexBuffer[0] != 10 {
		t.Errorf("index = %d, want 10", r.indexBuffer[0])
	}
}

func TestPixelShaderPreviousBrightnessLimit(t *testing.T) {
	tests := []struct {
		name  string
		prev  uint8
		wrote bool
	}{
		{"dark previous", 63, true},
		{"black previous", 0, true},
		{"bright previous", 64, false},
		{"white previous", 255, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newShaderRasterizer(1, 1)
			r.indexBuffer[0] = tc.prev
			m := shaderMesh(PixelShaderAlphaTestedWithPreviousBrightnessLimit, newTexture(1, 1, 90))
			in := shaderInput(r, 0, 0, 0, 0)
			in.lightLevel = 4

			wrote := r.runPixelShader(m, in)

			if wrote != tc.wrote {
				t.Fatalf("wrote = %v, want %v", wrote, tc.wrote)
			}
			want := tc.prev
			if tc.wrote {
				want = 90
			}
			if got := r.indexBuffer[0]; got != want {
				t.Errorf("index = %d, want %d", got, want)
			}
		})
	}
}

func TestPixelShaderHorizonMirror(t *testing.T) {
	r := newShaderRasterizer(4, 8)
	r.horizonScreen = math3d.V2(2, 4)
	r.skyBgTexel = 99
	for x := range 4 {
		for y := range 4 {
			r.indexBuffer[x+y*4] = uint8(50 + y)
		}
	}
	m := shaderMesh(PixelShaderAlphaTestedWithHorizonMirror, newTexture(1, 1, PuddleEvenRow))

	// Pixel row 5 (center 5.5) mirrors to 2*4-5.5 = 2.5, row 2.
	r.runPixelShader(m, shaderInput(r, 1, 5, 0, 0))
	if got := r.indexBuffer[1+5*4]; got != 52 {
		t.Errorf("reflected index = %d, want 52", got)
	}

	// Pixel row 4 mirrors to 3.5, row 3.
	r.runPixelShader(m, shaderInput(r, 2, 4, 0, 0))
	if got := r.indexBuffer[2+4*4]; got != 53 {
		t.Errorf("reflected index = %d, want 53", got)
	}

	// Far below the horizon the reflection leaves the screen.
	r.horizonScreen = math3d.V2(2, 1)
	r.runPixelShader(m, shaderInput(r, 3, 7, 0, 0))
	if got := r.indexBuffer[3+7*4]; got != 99 {
		t.Errorf("off-screen reflection = %d, want sky 99", got)
	}
	// A reflection landing in (-1, 0) is above row 0 and also takes the sky.
	r.horizonScreen = math3d.V2(2, 2.6)
	r.indexBuffer[0+5*4] = 0
	r.runPixelShader(m, shaderInput(r, 0, 5, 0, 0))
	if got := r.indexBuffer[0+5*4]; got != 99 {
		t.Errorf("reflection just above the frame = %d, want sky 99", got)
	}
}

func TestPixelShaderHorizonMirrorNonPuddleTexel(t *testing.T) {
	r := newShaderRasterizer(1, 1)
	m := shaderMesh(PixelShaderAlphaTestedWithHorizonMirror, newTexture(1, 1, 31))
	in := shaderInput(r, 0, 0, 0, 0)
	in.lightLevel = 1

	r.runPixelShader(m, in)

	if got := r.indexBuffer[0]; got != 32 {
		t.Errorf("index = %d, want shaded 32", got)
	}
}

func TestPixelShaderOpaqueWithAlphaTestLayer(t *testing.T) {
	r := newShaderRasterizer(4, 4)
	// Layer is transparent on the left half and 70 on the right.
	layer := newTexture(2, 1, PaletteTransparent, 70)
	// Base texture repeats twice down the screen: rows 0-1 and 2-3 map to
	// texel rows 0 and 1.
	base := newTexture(1, 2, 20, 21)
	m := shaderMesh(PixelShaderOpaqueWithAlphaTestLayer, base, layer)

	tests := []struct {
		name string
		x, y int
		u    float64
		want uint8
	}{
		{"layer texel", 0, 0, 0.75, 70},
		{"base top of first repeat", 0, 0, 0.25, 20},
		{"base bottom of first repeat", 0, 1, 0.25, 21},
		{"base top of second repeat", 0, 2, 0.25, 20},
		{"base bottom of second repeat", 0, 3, 0.25, 21},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := shaderInput(r, tc.x, tc.y, tc.u, 0.5)
			if !r.runPixelShader(m, in) {
				t.Fatal("opaque shader did not write")
			}
			if got := r.indexBuffer[in.pixelIndex]; got != tc.want {
				t.Errorf("index = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPixelShaderScreenSpaceRepeatY(t *testing.T) {
	r := newShaderRasterizer(2, 4)
	m := shaderMesh(PixelShaderOpaque, newTexture(2, 2, 1, 2, 3, 4))
	m.samplingTypes[0] = TextureSamplingScreenSpaceRepeatY

	want := [][]uint8{
		{1, 2},
		{3, 4},
		{1, 2},
		{3, 4},
	}
	for y, row := range want {
		for x, w := range row {
			// Texture coordinates are ignored in screen space.
			in := shaderInput(r, x, y, 0.9, 0.9)
			r.runPixelShader(m, in)
			if got := r.indexBuffer[in.pixelIndex]; got != w {
				t.Errorf("pixel (%d, %d) = %d, want %d", x, y, got, w)
			}
		}
	}
}

func TestPixelShaderUnknownPanics(t *testing.T) {
	r := newShaderRasterizer(1, 1)
	m := shaderMesh(PixelShaderType(99), newTexture(1, 1, 1))

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic")
		}
		if msg, _ := rec.(string); !strings.Contains(msg, "99") {
			t.Errorf("panic message %q does not name the type", msg)
		}
	}()
	r.runPixelShader(m, shaderInput(r, 0, 0, 0, 0))
}

func TestSubmitFrameAlphaTestedLeavesClearColor(t *testing.T) {
	h := newTestHarness(t, 4, 4)
	h.settings.ClearColor = 0xFF123456
	dc := h.fullscreen(-2, h.texture(1, 1, PaletteTransparent))
	dc.PixelShaderType = PixelShaderAlphaTested

	h.render(dc)

	for i, got := range h.out {
		if got != 0xFF123456 {
			t.Fatalf("pixel %d = %#08x, want clear color", i, got)
		}
	}
	for i, d := range h.sr.DepthBuffer() {
		if !math.IsInf(d, 1) {
			t.Fatalf("depth %d = %v, want +Inf", i, d)
		}
	}
	// Every pixel passes the depth test but none is written.
	data := h.sr.ProfilerData()
	if data.TotalDepthTests != 16 {
		t.Errorf("TotalDepthTests = %d, want 16", data.TotalDepthTests)
	}
	if data.TotalColorWrites != 0 {
		t.Errorf("TotalColorWrites = %d, want 0", data.TotalColorWrites)
	}
}

func TestSubmitFramePerPixelLighting(t *testing.T) {
	h := newTestHarness(t, 4, 4)
	h.settings.AmbientPercent = 0
	dc := h.fullscreen(-2, h.texture(1, 1, 100))
	dc.LightingType = LightingPerPixel

	h.render(dc)

	// No lights and no ambient selects the darkest row.
	for i, got := range h.sr.IndexBuffer() {
		if got != 100+testLightLevels-1 {
			t.Fatalf("index %d = %d, want %d", i, got, 100+testLightLevels-1)
		}
	}
}

func TestSubmitFramePerPixelLightNearSurface(t *testing.T) {
	h := newTestHarness(t, 4, 4)
	h.settings.AmbientPercent = 0
	light, ok := h.sr.TryCreateLight()
	if !ok {
		t.Fatal("TryCreateLight failed")
	}
	h.sr.SetLightPosition(light, math3d.V3(0, 0, -2))
	h.sr.SetLightRadius(light, 10, 20)

	dc := h.fullscreen(-2, h.texture(1, 1, 100))
	dc.LightingType = LightingPerPixel
	dc.LightIDs[0] = light
	dc.LightIDCount = 1

	h.render(dc)

	for i, got := range h.sr.IndexBuffer() {
		if got != 100 {
			t.Fatalf("index %d = %d, want fully lit 100", i, got)
		}
	}
}

func TestSubmitFrameClassicDither(t *testing.T) {
	h := newTestHarness(t, 4, 4)
	h.settings.AmbientPercent = 0.5
	h.settings.DitheringMode = DitheringClassic
	dc := h.fullscreen(-2, h.texture(1, 1, 100))
	dc.LightingType = LightingPerPixel

	h.render(dc)

	// 0.5 * 16 = 8, row 15-8 = 7; dithered pixels move to row 8.
	for y := range 4 {
		for x := range 4 {
			want := uint8(107)
			if (x+y)%2 == 0 {
				want = 108
			}
			if got := h.index(x, y); got != want {
				t.Errorf("pixel (%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestSubmitFramePerMeshLightingIgnoresDither(t *testing.T) {
	h := newTestHarness(t, 4, 4)
	h.settings.DitheringMode = DitheringClassic
	dc := h.fullscreen(-2, h.texture(1, 1, 100))
	dc.LightPercent = 0.5

	h.render(dc)

	for i, got := range h.sr.IndexBuffer() {
		if got != 107 {
			t.Fatalf("index %d = %d, want 107", i, got)
		}
	}
}
