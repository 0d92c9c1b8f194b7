package render

import (
	"fmt"
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
)

// Palette index conventions shared by textures and the light table.
const (
	PaletteTransparent = 0

	// Texels in [LightLevelLowest, LightLevelHighest] encode a light level
	// applied to whatever is already on screen.
	LightLevelLowest  = 1
	LightLevelHighest = 13

	// Blend sources and the palette entries they resolve to.
	LightLevelSrc1 = 14
	LightLevelSrc2 = 15
	LightLevelDst1 = 158
	LightLevelDst2 = 159

	// PuddleEvenRow marks reflective texels for the horizon mirror shader.
	PuddleEvenRow = 30
)

// brightnessLimitMask selects the high two bits of each color channel. A
// pixel whose resolved color has any of them set is too bright to draw over.
const brightnessLimitMask = 0x00C0C0C0

func isLightLevelTexel(texel uint8) bool {
	return texel >= LightLevelLowest && texel <= LightLevelHighest
}

// pixelShaderInput carries the interpolated values of one covered pixel.
type pixelShaderInput struct {
	pixelIndex  int
	pixelCenter math3d.Vec2
	xPercent    float64
	yPercent    float64
	texCoord    math3d.Vec2
	depth       float64
	lightLevel  int
}

// sampleTexel returns the nearest texel of an 8-bit texture for u and v in
// [0, 1].
func sampleTexel(tex *ObjectTexture, u, v float64) uint8 {
	x := clampInt(int(u*float64(tex.Width)), 0, tex.Width-1)
	y := clampInt(int(v*float64(tex.Height)), 0, tex.Height-1)
	return tex.Texels[x+y*tex.Width]
}

// screenSpaceRepeatY maps the pixel's screen position to texture space,
// tiling the texture twice vertically.
func screenSpaceRepeatY(in *pixelShaderInput) (u, v float64) {
	v = in.yPercent * 2
	if v >= 1 {
		v--
	}
	return in.xPercent, v
}

func (m *meshProcessCache) sample(slot int, in *pixelShaderInput) uint8 {
	tex := m.textures[slot]
	u, v := in.texCoord.X, in.texCoord.Y
	if m.samplingTypes[slot] == TextureSamplingScreenSpaceRepeatY {
		u, v = screenSpaceRepeatY(in)
	}
	return sampleTexel(tex, u, v)
}

// shade looks texel up in the light table row for level.
func (r *Rasterizer) shade(texel uint8, level int) uint8 {
	return r.lightTable[int(texel)+level*r.lightLevelTexelCount]
}

// write stores a palette index and optionally its depth.
func (r *Rasterizer) write(m *meshProcessCache, in *pixelShaderInput, index uint8) bool {
	r.indexBuffer[in.pixelIndex] = index
	if m.enableDepthWrite {
		r.depthBuffer[in.pixelIndex] = in.depth
	}
	return true
}

// runPixelShader derives and writes the palette index for one pixel that
// passed the depth test. It reports whether anything was written.
func (r *Rasterizer) runPixelShader(m *meshProcessCache, in *pixelShaderInput) bool {
	switch m.pixelShaderType {
	case PixelShaderOpaque:
		return r.write(m, in, r.shade(m.sample(0, in), in.lightLevel))

	case PixelShaderOpaqueWithAlphaTestLayer:
		texel := sampleTexel(m.textures[1], in.texCoord.X, in.texCoord.Y)
		if texel == PaletteTransparent {
			u, v := screenSpaceRepeatY(in)
			texel = sampleTexel(m.textures[0], u, v)
		}
		return r.write(m, in, r.shade(texel, in.lightLevel))

	case PixelShaderAlphaTested, PixelShaderAlphaTestedWithLightLevelColor:
		texel := m.sample(0, in)
		if texel == PaletteTransparent {
			return false
		}
		return r.write(m, in, r.shade(texel, in.lightLevel))

	case PixelShaderAlphaTestedWithVariableTexCoordUMin:
		uMin := m.pixelShaderParam0
		u := clampFloat(uMin+(1-uMin)*in.texCoord.X, uMin, 1)
		texel := sampleTexel(m.textures[0], u, in.texCoord.Y)
		if texel == PaletteTransparent {
			return false
		}
		return r.write(m, in, r.shade(texel, in.lightLevel))

	case PixelShaderAlphaTestedWithVariableTexCoordVMin:
		vMin := m.pixelShaderParam0
		v := clampFloat(vMin+(1-vMin)*in.texCoord.Y, vMin, 1)
		texel := sampleTexel(m.textures[0], in.texCoord.X, v)
		if texel == PaletteTransparent {
			return false
		}
		return r.write(m, in, r.shade(texel, in.lightLevel))

	case PixelShaderAlphaTestedWithPaletteIndexLookup:
		texel := m.sample(0, in)
		if texel == PaletteTransparent {
			return false
		}
		replacement := m.textures[1].Texels[texel]
		return r.write(m, in, r.shade(replacement, in.lightLevel))

	case PixelShaderAlphaTestedWithLightLevelOpacity:
		texel := m.sample(0, in)
		if texel == PaletteTransparent {
			return false
		}
		var index int
		if isLightLevelTexel(texel) {
			prev := int(r.indexBuffer[in.pixelIndex])
			index = prev + int(texel-LightLevelLowest)*r.lightLevelTexelCount
		} else {
			offset := in.lightLevel * r.lightLevelTexelCount
			switch texel {
			case LightLevelSrc1:
				index = offset + LightLevelDst1
			case LightLevelSrc2:
				index = offset + LightLevelDst2
			default:
				index = offset + int(texel)
			}
		}
		if index >= len(r.lightTable) {
			return false
		}
		return r.write(m, in, r.lightTable[index])

	case PixelShaderAlphaTestedWithPreviousBrightnessLimit:
		prev := r.palette[r.indexBuffer[in.pixelIndex]]
		if prev&brightnessLimitMask != 0 {
			return false
		}
		texel := m.sample(0, in)
		if texel == PaletteTransparent {
			return false
		}
		return r.write(m, in, texel)

	case PixelShaderAlphaTestedWithHorizonMirror:
		texel := m.sample(0, in)
		if texel == PaletteTransparent {
			return false
		}
		if texel != PuddleEvenRow {
			return r.write(m, in, r.shade(texel, in.lightLevel))
		}
		return r.write(m, in, r.reflectedIndex(in))

	default:
		panic(fmt.Sprintf("unhandled pixel shader type: %d", m.pixelShaderType))
	}
}

// reflectedIndex returns the palette index mirrored across the horizon line,
// or the sky color when the mirrored pixel is off screen. The mirrored
// coordinates are floored rather than truncated, so a reflection in (-1, 0)
// is off screen and takes the sky instead of reading row 0.
func (r *Rasterizer) reflectedIndex(in *pixelShaderInput) uint8 {
	hy := r.horizonScreen.Y
	reflectedY := int(math.Floor(hy + (hy - in.pixelCenter.Y)))
	reflectedX := int(math.Floor(in.pixelCenter.X))
	if reflectedX < 0 || reflectedX >= r.width || reflectedY < 0 || reflectedY >= r.height {
		return r.skyBgTexel
	}
	return r.indexBuffer[reflectedX+reflectedY*r.width]
}

func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
