package render

import (
	"fmt"
	"unsafe"
)

// ObjectTexture is a texture owned by the renderer. Texels holds
// Width*Height*BytesPerTexel bytes; 1-byte texels are palette indices and
// 4-byte texels are ARGB colors, used for palettes.
type ObjectTexture struct {
	Texels        []byte
	Width         int
	Height        int
	BytesPerTexel int
}

func (t *ObjectTexture) init(width, height, bytesPerTexel int) {
	switch bytesPerTexel {
	case 1, 4:
	default:
		panic(fmt.Sprintf("unhandled object texture bytes per texel: %d", bytesPerTexel))
	}
	t.Width = width
	t.Height = height
	t.BytesPerTexel = bytesPerTexel
	t.Texels = make([]byte, width*height*bytesPerTexel)
}

// TexelCount returns Width*Height.
func (t *ObjectTexture) TexelCount() int {
	return t.Width * t.Height
}

// Texels8 returns the texels as palette indices.
func (t *ObjectTexture) Texels8() []uint8 {
	return t.Texels
}

// Texels32 returns the texels as 32-bit colors over the same storage. It
// returns nil for 8-bit textures.
func (t *ObjectTexture) Texels32() []uint32 {
	if t.BytesPerTexel != 4 || len(t.Texels) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&t.Texels[0])), t.TexelCount())
}

// LockedTexture is a writable view of an object texture's storage.
type LockedTexture struct {
	Texels        []byte
	Width         int
	Height        int
	BytesPerTexel int
}

// Texels32 views the locked storage as 32-bit texels.
func (l LockedTexture) Texels32() []uint32 {
	if l.BytesPerTexel != 4 || len(l.Texels) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&l.Texels[0])), l.Width*l.Height)
}

// Fill8 sets every texel of an 8-bit locked texture to index.
func (l LockedTexture) Fill8(index uint8) {
	for i := range l.Texels {
		l.Texels[i] = index
	}
}

// Fill32 sets every texel of a 32-bit locked texture to argb.
func (l LockedTexture) Fill32(argb uint32) {
	texels := l.Texels32()
	for i := range texels {
		texels[i] = argb
	}
}
