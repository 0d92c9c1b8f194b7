package palette

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Matcher finds the perceptually nearest palette entry for a color,
// comparing in CIE L*a*b*. Results are cached by 24-bit RGB.
type Matcher struct {
	first int
	lab   [Size][3]float64
	cache map[uint32]uint8
}

// NewMatcher prepares a matcher over the color entries of p, skipping the
// reserved indices.
func NewMatcher(p *Palette) *Matcher {
	m := &Matcher{first: FirstColor, cache: make(map[uint32]uint8)}
	for i := m.first; i < Size; i++ {
		l, a, b := fromARGB(p[i]).Lab()
		m.lab[i] = [3]float64{l, a, b}
	}
	return m
}

// Match returns the index of the entry closest to c.
func (m *Matcher) Match(c colorful.Color) uint8 {
	r, g, b := c.Clamped().RGB255()
	key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if idx, ok := m.cache[key]; ok {
		return idx
	}

	l, a, bb := c.Lab()
	best, bestDist := m.first, -1.0
	for i := m.first; i < Size; i++ {
		e := &m.lab[i]
		dl, da, db := l-e[0], a-e[1], bb-e[2]
		d := dl*dl + da*da + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	m.cache[key] = uint8(best)
	return uint8(best)
}
