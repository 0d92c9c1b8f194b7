package scene

import (
	"github.com/taigrr/palrast/pkg/palette"
	"github.com/taigrr/palrast/pkg/render"
)

// Ramps used by the demo textures.
const (
	rampRed    = 1
	rampOrange = 2
	rampGreen  = 5
	rampSky    = 8
	rampPurple = 11
)

const (
	textureSize = 32
	signFrames  = 4
)

// SkyIndex is the palette index drawn where reflections leave the screen
// and behind everything else.
var SkyIndex = palette.Index(rampSky, 11)

func floorTexture() *palette.Image {
	return palette.Checker(textureSize, textureSize, textureSize/2, palette.Index(palette.GrayRamp, 9), palette.Index(palette.GrayRamp, 5))
}

func ceilingTexture() *palette.Image {
	return palette.Checker(textureSize, textureSize, textureSize/4, palette.Index(palette.GrayRamp, 7), palette.Index(palette.GrayRamp, 6))
}

func wallTexture() *palette.Image {
	return palette.Bricks(textureSize, textureSize, 16, 8, palette.Index(rampRed, 8), palette.Index(palette.GrayRamp, 10))
}

// doorTexture is a stack of horizontal planks.
func doorTexture() *palette.Image {
	return palette.Bricks(textureSize, 2*textureSize, 2*textureSize, 6, palette.Index(rampOrange, 7), palette.Index(rampOrange, 3))
}

func crateTexture() *palette.Image {
	img := palette.Solid(textureSize, textureSize, palette.Index(rampOrange, 9))
	edge := palette.Index(rampOrange, 4)
	for i := range textureSize {
		for _, b := range []int{0, 1, textureSize - 2, textureSize - 1} {
			img.Set(i, b, edge)
			img.Set(b, i, edge)
		}
		img.Set(i, i, edge)
	}
	return img
}

// puddleTexture is an ellipse whose even rows mirror the scene and whose odd
// rows hold dark water. Texels outside the ellipse are transparent.
func puddleTexture() *palette.Image {
	w, h := textureSize, textureSize/2
	img := palette.NewImage(w, h)
	water := palette.Index(rampSky, 3)
	for y := range h {
		for x := range w {
			dx := (float64(x)+0.5)/float64(w)*2 - 1
			dy := (float64(y)+0.5)/float64(h)*2 - 1
			if dx*dx+dy*dy > 1 {
				continue
			}
			if y%2 == 0 {
				img.Set(x, y, render.PuddleEvenRow)
			} else {
				img.Set(x, y, water)
			}
		}
	}
	return img
}

// windowFrame is a window frame with four transparent panes.
func windowFrame() *palette.Image {
	img := palette.NewImage(16, 16)
	frame := palette.Index(palette.GrayRamp, 3)
	for i := range 16 {
		for _, b := range []int{0, 7, 8, 15} {
			img.Set(i, b, frame)
			img.Set(b, i, frame)
		}
	}
	return img
}

func skyGradient() *palette.Image {
	return palette.Ramp(4, palette.RampLength, rampSky)
}

// signFrame returns frame i of the animated sign. Frames cycle through
// ramps and shift a diagonal stripe.
func signFrame(i int) *palette.Image {
	ramps := [signFrames]int{rampGreen, rampSky, rampPurple, rampRed}
	img := palette.NewImage(textureSize, textureSize/2)
	for y := range img.Height {
		for x := range img.Width {
			if x == 0 || y == 0 || x == img.Width-1 || y == img.Height-1 {
				img.Set(x, y, palette.Index(palette.GrayRamp, 2))
				continue
			}
			shade := 8
			if (x+y+i*4)%16 < 8 {
				shade = 14
			}
			img.Set(x, y, palette.Index(ramps[i%signFrames], shade))
		}
	}
	return img
}
