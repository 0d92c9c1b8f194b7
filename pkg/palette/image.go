package palette

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"github.com/taigrr/palrast/pkg/render"
)

// ErrAllocFailed is returned when the renderer has no free texture slot.
var ErrAllocFailed = errors.New("palette: renderer texture allocation failed")

// alphaThreshold is the 8-bit alpha below which a pixel quantizes to
// transparent.
const alphaThreshold = 128

// Image is a palette-indexed texture.
type Image struct {
	Width  int
	Height int
	Texels []uint8 // row-major palette indices
}

// NewImage creates an image filled with index 0.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Texels: make([]uint8, width*height),
	}
}

// Set writes index at (x, y), ignoring out of range coordinates.
func (img *Image) Set(x, y int, index uint8) {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return
	}
	img.Texels[x+y*img.Width] = index
}

// At returns the index at (x, y), or 0 if out of range.
func (img *Image) At(x, y int) uint8 {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return render.PaletteTransparent
	}
	return img.Texels[x+y*img.Width]
}

// Upload creates an 8-bit renderer texture holding the image.
func (img *Image) Upload(sr *render.SoftwareRenderer) (render.ObjectTextureID, error) {
	id, ok := sr.TryCreateObjectTexture(img.Width, img.Height, 1)
	if !ok {
		return render.InvalidID, ErrAllocFailed
	}
	locked, _ := sr.LockObjectTexture(id)
	copy(locked.Texels, img.Texels)
	sr.UnlockObjectTexture(id)
	return id, nil
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Quantize resamples src to width x height and maps every pixel to its
// nearest palette color. Mostly transparent pixels become index 0.
func Quantize(src image.Image, m *Matcher, width, height int) *Image {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := NewImage(width, height)
	for y := range height {
		for x := range width {
			c := scaled.RGBAAt(x, y)
			if c.A < alphaThreshold {
				continue
			}
			// Undo premultiplication before matching.
			a := float64(c.A) / 255
			out.Texels[x+y*width] = m.Match(colorful.Color{
				R: float64(c.R) / 255 / a,
				G: float64(c.G) / 255 / a,
				B: float64(c.B) / 255 / a,
			})
		}
	}
	return out
}

// LoadQuantized loads an image file and quantizes it to width x height.
func LoadQuantized(path string, m *Matcher, width, height int) (*Image, error) {
	src, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return Quantize(src, m, width, height), nil
}
