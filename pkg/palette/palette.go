// Package palette builds the 256 color palette, light table and indexed
// textures consumed by the software renderer.
package palette

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/palrast/pkg/render"
)

// Size is the number of palette entries.
const Size = 256

// Layout of the generated palette. Indices below FirstColor are reserved
// for the renderer's transparency and light level markers.
const (
	FirstColor  = 16
	RampLength  = 16
	RampCount   = (Size - FirstColor) / RampLength
	GrayRamp    = 0
	rampMinTone = 0.08
)

// Palette holds ARGB colors in 0xAARRGGBB layout.
type Palette [Size]uint32

// Default generates a palette of RampCount ramps, each running from dark to
// bright. Ramp 0 is gray and the rest step around the hue wheel. Index 0 is
// transparent black and the light level markers are dark grays.
func Default() *Palette {
	var p Palette
	for i := 1; i < FirstColor; i++ {
		v := uint8(i * 4)
		p[i] = render.ARGB(255, v, v, v)
	}
	for ramp := range RampCount {
		for shade := range RampLength {
			p[FirstColor+ramp*RampLength+shade] = toARGB(rampColor(ramp, shade))
		}
	}
	return &p
}

// Index returns the palette index of the given ramp and shade.
func Index(ramp, shade int) uint8 {
	return uint8(FirstColor + ramp*RampLength + shade)
}

func rampColor(ramp, shade int) colorful.Color {
	tone := rampMinTone + (1-rampMinTone)*float64(shade)/float64(RampLength-1)
	if ramp == GrayRamp {
		return colorful.Color{R: tone, G: tone, B: tone}
	}
	hue := 360 * float64(ramp-1) / float64(RampCount-1)
	return colorful.Hsv(hue, 0.65, tone).Clamped()
}

func toARGB(c colorful.Color) uint32 {
	r, g, b := c.RGB255()
	return render.ARGB(255, r, g, b)
}

func fromARGB(argb uint32) colorful.Color {
	c := render.ARGBToRGBA(argb)
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Color returns entry i as an RGBA color.
func (p *Palette) Color(i uint8) color.RGBA {
	return render.ARGBToRGBA(p[i])
}

// Upload creates the renderer's 256x1 32-bit palette texture.
func (p *Palette) Upload(sr *render.SoftwareRenderer) (render.ObjectTextureID, error) {
	id, ok := sr.TryCreateObjectTexture(Size, 1, 4)
	if !ok {
		return render.InvalidID, ErrAllocFailed
	}
	locked, _ := sr.LockObjectTexture(id)
	copy(locked.Texels32(), p[:])
	sr.UnlockObjectTexture(id)
	return id, nil
}
