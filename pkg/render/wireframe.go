package render

// drawWireframe outlines the triangles prepared by processFrontFacing in the
// color buffer. Only colors are written, so later shaders that read the
// index buffer are unaffected.
func (r *Rasterizer) drawWireframe(color uint32) {
	for i := range r.triangles {
		rt := &r.triangles[i]
		for k := range 3 {
			a, b := rt.screen[k], rt.screen[(k+1)%3]
			r.drawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), color)
		}
	}
}

// drawLine draws a line from (x0, y0) to (x1, y1) with Bresenham's
// algorithm, skipping pixels outside the frame.
func (r *Rasterizer) drawLine(x0, y0, x1, y1 int, color uint32) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < r.width && y0 >= 0 && y0 < r.height {
			r.colorBuffer[x0+y0*r.width] = color
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
