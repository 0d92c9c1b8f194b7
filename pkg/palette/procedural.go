package palette

// Solid creates an image filled with index.
func Solid(width, height int, index uint8) *Image {
	img := NewImage(width, height)
	for i := range img.Texels {
		img.Texels[i] = index
	}
	return img
}

// Checker creates a checkerboard of two indices with square cells of size
// texels.
func Checker(width, height, size int, a, b uint8) *Image {
	img := NewImage(width, height)
	for y := range height {
		for x := range width {
			if (x/size+y/size)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

// Bricks creates a running bond brick pattern. Mortar lines are one texel
// wide and alternate rows are offset by half a brick.
func Bricks(width, height, brickW, brickH int, brick, mortar uint8) *Image {
	img := NewImage(width, height)
	for y := range height {
		row := y / brickH
		offset := 0
		if row%2 == 1 {
			offset = brickW / 2
		}
		for x := range width {
			if y%brickH == 0 || (x+offset)%brickW == 0 {
				img.Set(x, y, mortar)
			} else {
				img.Set(x, y, brick)
			}
		}
	}
	return img
}

// Ramp creates a vertical gradient through one palette ramp, brightest at
// the top.
func Ramp(width, height, ramp int) *Image {
	img := NewImage(width, height)
	for y := range height {
		shade := RampLength - 1 - y*RampLength/height
		for x := range width {
			img.Set(x, y, Index(ramp, shade))
		}
	}
	return img
}
