// Package render implements a CPU rasterizer that draws palette-indexed,
// light-table shaded meshes into an ARGB color buffer, plus helpers for
// presenting that buffer as an image or in a terminal.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ARGB packs a color as 0xAARRGGBB, the layout of palettes and output
// buffers.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ARGBToRGBA unpacks an 0xAARRGGBB color.
func ARGBToRGBA(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

// Framebuffer is a presentable RGBA copy of a rendered frame.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize reallocates the pixels if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int) {
	if fb.Width == width && fb.Height == height {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]color.RGBA, width*height)
}

// LoadARGB copies an ARGB buffer of Width*Height pixels. Alpha is forced to
// opaque since the renderer leaves it unused.
func (fb *Framebuffer) LoadARGB(buf []uint32) {
	n := min(len(buf), len(fb.Pixels))
	for i := range n {
		c := ARGBToRGBA(buf[i])
		c.A = 255
		fb.Pixels[i] = c
	}
}

// GetPixel returns the color at (x, y), or transparent black if out of
// bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage converts the framebuffer to an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// ScaledImage returns the frame enlarged by an integer factor with nearest
// neighbour sampling so pixels stay sharp.
func (fb *Framebuffer) ScaledImage(scale int) *image.RGBA {
	src := fb.ToImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width*scale, fb.Height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SavePNG writes the framebuffer, scaled by scale, as a PNG file.
func (fb *Framebuffer) SavePNG(path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ScaledImage(scale)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
