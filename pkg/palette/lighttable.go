package palette

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/palrast/pkg/render"
)

// LightLevels is the number of rows in a generated light table. Row 0 is
// full brightness and the last row is the darkest.
const LightLevels = render.LightLevelHighest

// minBrightness is the fraction of a color kept in the darkest row.
const minBrightness = 0.1

// LightTable maps (level, index) to the index that represents the color at
// that light level. Texels are stored row-major, Size per row.
type LightTable struct {
	Levels int
	Texels []uint8
}

// BuildLightTable darkens every palette color toward black over levels rows
// and matches each result back into the palette. Reserved indices map to
// themselves in every row.
func BuildLightTable(p *Palette, levels int) *LightTable {
	m := NewMatcher(p)
	lt := &LightTable{Levels: levels, Texels: make([]uint8, levels*Size)}
	black := colorful.Color{}
	for level := range levels {
		row := lt.Texels[level*Size : (level+1)*Size]
		darkness := 0.0
		if levels > 1 {
			darkness = (1 - minBrightness) * float64(level) / float64(levels-1)
		}
		for i := range Size {
			if i < FirstColor || level == 0 {
				row[i] = uint8(i)
				continue
			}
			c := fromARGB(p[i]).BlendRgb(black, darkness)
			row[i] = m.Match(c)
		}
	}
	return lt
}

// Lookup returns the shaded index for index at level.
func (lt *LightTable) Lookup(level int, index uint8) uint8 {
	return lt.Texels[level*Size+int(index)]
}

// Upload creates the renderer's 8-bit light table texture, one row per
// level.
func (lt *LightTable) Upload(sr *render.SoftwareRenderer) (render.ObjectTextureID, error) {
	id, ok := sr.TryCreateObjectTexture(Size, lt.Levels, 1)
	if !ok {
		return render.InvalidID, ErrAllocFailed
	}
	locked, _ := sr.LockObjectTexture(id)
	copy(locked.Texels, lt.Texels)
	sr.UnlockObjectTexture(id)
	return id, nil
}
