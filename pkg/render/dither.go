package render

import "fmt"

// DitheringModernMaskCount is the number of masks in the modern dither
// pattern, one per quarter of a light level.
const DitheringModernMaskCount = 4

// ditherBuffer holds one or more full-screen boolean masks laid out one after
// another. A set entry moves the pixel one light level darker.
type ditherBuffer struct {
	mode  DitheringMode
	masks []bool
	depth int
}

func (d *ditherBuffer) build(width, height int, mode DitheringMode) {
	d.mode = mode
	pixelCount := width * height
	switch mode {
	case DitheringNone:
		d.depth = 0
		d.masks = d.masks[:0]
	case DitheringClassic:
		d.depth = 1
		d.masks = resizeBools(d.masks, pixelCount)
		for y := range height {
			for x := range width {
				d.masks[x+y*width] = ((x + y) & 1) == 0
			}
		}
	case DitheringModern:
		d.depth = DitheringModernMaskCount
		d.masks = resizeBools(d.masks, pixelCount*DitheringModernMaskCount)
		for y := range height {
			for x := range width {
				i := x + y*width
				checker := ((x + y) & 1) == 0
				d.masks[i] = checker || (x%2 == 1 && y%2 == 0)
				d.masks[i+pixelCount] = checker
				d.masks[i+2*pixelCount] = x%2 == 0 && y%2 == 0
				d.masks[i+3*pixelCount] = false
			}
		}
	default:
		panic(fmt.Sprintf("unhandled dithering mode: %d", mode))
	}
}

func (d *ditherBuffer) clear() {
	d.mode = DitheringNone
	d.depth = 0
	d.masks = nil
}

func resizeBools(s []bool, n int) []bool {
	if cap(s) < n {
		return make([]bool, n)
	}
	return s[:n]
}
