package render

import (
	"math"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

func newTestRenderer(t *testing.T, capacity int) *SoftwareRenderer {
	t.Helper()
	sr := NewSoftwareRenderer()
	if err := sr.Init(InitSettings{Width: 4, Height: 4, PoolCapacity: capacity}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return sr
}

func TestPoolAllocReleaseReuse(t *testing.T) {
	p := newPool[int](3)

	var ids []int32
	for range 3 {
		id, ok := p.alloc()
		if !ok {
			t.Fatal("alloc failed before capacity")
		}
		ids = append(ids, id)
	}
	if ids[0] != 0 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("ids = %v, want [0 1 2]", ids)
	}
	if id, ok := p.alloc(); ok || id != InvalidID {
		t.Errorf("alloc on full pool = (%d, %v), want (%d, false)", id, ok, InvalidID)
	}

	*p.get(1) = 42
	if !p.release(1) {
		t.Fatal("release of allocated id failed")
	}
	if p.release(1) {
		t.Error("double release succeeded")
	}
	if p.get(1) != nil {
		t.Error("get of released id returned a value")
	}
	if got := p.usedCount(); got != 2 {
		t.Errorf("usedCount = %d, want 2", got)
	}

	id, ok := p.alloc()
	if !ok || id != 1 {
		t.Fatalf("alloc after release = (%d, %v), want (1, true)", id, ok)
	}
	if got := *p.get(id); got != 0 {
		t.Errorf("reused slot = %d, want zeroed", got)
	}
}

func TestPoolRejectsOutOfRange(t *testing.T) {
	p := newPool[int](2)
	for _, id := range []int32{InvalidID, 2, 100} {
		if p.get(id) != nil {
			t.Errorf("get(%d) returned a value", id)
		}
		if p.release(id) {
			t.Errorf("release(%d) succeeded", id)
		}
	}
}

func TestPoolEachAndClear(t *testing.T) {
	p := newPool[int](4)
	a, _ := p.alloc()
	b, _ := p.alloc()
	c, _ := p.alloc()
	p.release(b)

	var seen []int32
	p.each(func(id int32, _ *int) { seen = append(seen, id) })
	if len(seen) != 2 || seen[0] != a || seen[1] != c {
		t.Errorf("each visited %v, want [%d %d]", seen, a, c)
	}

	p.clear()
	if got := p.usedCount(); got != 0 {
		t.Errorf("usedCount after clear = %d, want 0", got)
	}
	if got := p.capacity(); got != 4 {
		t.Errorf("capacity after clear = %d, want 4", got)
	}
}

func TestResourcePoolExhaustion(t *testing.T) {
	sr := newTestRenderer(t, 2)
	for range 2 {
		if _, ok := sr.TryCreateVertexBuffer(3, 3); !ok {
			t.Fatal("TryCreateVertexBuffer failed before capacity")
		}
	}
	if id, ok := sr.TryCreateVertexBuffer(3, 3); ok || id != InvalidID {
		t.Errorf("TryCreateVertexBuffer on full pool = (%d, %v)", id, ok)
	}
	sr.FreeVertexBuffer(0)
	if id, ok := sr.TryCreateVertexBuffer(3, 3); !ok || id != 0 {
		t.Errorf("TryCreateVertexBuffer after free = (%d, %v), want (0, true)", id, ok)
	}
}

func TestPopulateMismatchedSizeIsIgnored(t *testing.T) {
	sr := newTestRenderer(t, 4)

	vb, _ := sr.TryCreateVertexBuffer(2, 3)
	sr.PopulateVertexBuffer(vb, []float64{1, 2, 3, 4, 5, 6})
	sr.PopulateVertexBuffer(vb, []float64{9, 9, 9})
	if got := sr.vertexBuffers.get(int32(vb)).Vertices; got[0] != 1 || got[5] != 6 {
		t.Errorf("vertices = %v, want unchanged", got)
	}

	ab, _ := sr.TryCreateAttributeBuffer(2, 2)
	sr.PopulateAttributeBuffer(ab, []float64{1, 2, 3})
	if got := sr.attributeBuffers.get(int32(ab)).Attributes; got[0] != 0 {
		t.Errorf("attributes = %v, want zeroed", got)
	}

	ib, _ := sr.TryCreateIndexBuffer(3)
	sr.PopulateIndexBuffer(ib, []int32{0, 1, 2, 3, 4, 5})
	if got := sr.indexBuffers.get(int32(ib)).Indices; got[2] != 0 {
		t.Errorf("indices = %v, want zeroed", got)
	}
}

func TestTryCreateIndexBufferCount(t *testing.T) {
	sr := newTestRenderer(t, 4)
	tests := []struct {
		count int
		ok    bool
	}{
		{3, true},
		{6, true},
		{0, false},
		{4, false},
		{-3, false},
	}
	for _, tc := range tests {
		id, ok := sr.TryCreateIndexBuffer(tc.count)
		if ok != tc.ok {
			t.Errorf("TryCreateIndexBuffer(%d) ok = %v, want %v", tc.count, ok, tc.ok)
		}
		if ok {
			if got := sr.indexBuffers.get(int32(id)).TriangleCount; got != tc.count/3 {
				t.Errorf("TriangleCount = %d, want %d", got, tc.count/3)
			}
			sr.FreeIndexBuffer(id)
		}
	}
}

func TestUniformBufferRoundTrip(t *testing.T) {
	sr := newTestRenderer(t, 4)
	id, ok := sr.TryCreateUniformBuffer(3, Vec3Size, 32)
	if !ok {
		t.Fatal("TryCreateUniformBuffer failed")
	}
	ub := sr.uniformBuffers.get(int32(id))
	if ub.Stride != 32 {
		t.Errorf("Stride = %d, want 32", ub.Stride)
	}
	if len(ub.Bytes) != 3*32 {
		t.Errorf("len(Bytes) = %d, want %d", len(ub.Bytes), 3*32)
	}

	var packed []byte
	for i := range 3 {
		packed = append(packed, EncodeVec3(math3d.V3(float64(i), -1, 0.5))...)
	}
	sr.PopulateUniformBuffer(id, packed)
	sr.PopulateUniformAtIndex(id, 2, EncodeVec3(math3d.V3(7, 8, 9)))

	want := []math3d.Vec3{{X: 0, Y: -1, Z: 0.5}, {X: 1, Y: -1, Z: 0.5}, {X: 7, Y: 8, Z: 9}}
	for i, w := range want {
		if got := ub.Vec3(i); got != w {
			t.Errorf("Vec3(%d) = %+v, want %+v", i, got, w)
		}
	}

	sr.PopulateUniformAtIndex(id, 3, EncodeVec3(math3d.V3(1, 1, 1)))
	sr.PopulateUniformAtIndex(id, 0, []byte{1, 2, 3})
	if got := ub.Vec3(0); got != want[0] {
		t.Errorf("Vec3(0) after bad writes = %+v, want %+v", got, want[0])
	}
}

func TestUniformRenderTransformRoundTrip(t *testing.T) {
	sr := newTestRenderer(t, 4)
	id, _ := sr.TryCreateUniformBuffer(2, RenderTransformSize, 0)
	rt := RenderTransform{
		Translation: math3d.Translate(math3d.V3(1, 2, 3)),
		Rotation:    math3d.RotateY(math.Pi / 3),
		Scale:       math3d.Scale(math3d.V3(2, 1, 0.5)),
	}
	sr.PopulateUniformAtIndex(id, 1, EncodeRenderTransform(rt))

	got := sr.uniformBuffers.get(int32(id)).RenderTransform(1)
	if got != rt {
		t.Errorf("RenderTransform(1) = %+v, want %+v", got, rt)
	}
	p := got.Model().MulVec3(math3d.V3(1, 0, 0))
	want := math3d.V3(1+2*math.Cos(math.Pi/3), 2, 3-2*math.Sin(math.Pi/3))
	if p.Distance(want) > 1e-9 {
		t.Errorf("Model() applied = %+v, want %+v", p, want)
	}
}

func TestObjectTextureBytesPerTexel(t *testing.T) {
	sr := newTestRenderer(t, 4)

	id, ok := sr.TryCreateObjectTexture(3, 2, 4)
	if !ok {
		t.Fatal("TryCreateObjectTexture failed")
	}
	locked, _ := sr.LockObjectTexture(id)
	if len(locked.Texels) != 3*2*4 {
		t.Errorf("len(Texels) = %d, want 24", len(locked.Texels))
	}
	locked.Fill32(0xFF102030)
	sr.UnlockObjectTexture(id)

	tex := sr.objectTextures.get(int32(id))
	texels := tex.Texels32()
	if len(texels) != 6 || texels[5] != 0xFF102030 {
		t.Errorf("Texels32 = %#x, want six of 0xFF102030", texels)
	}
	if w, h, ok := sr.TryGetObjectTextureDims(id); !ok || w != 3 || h != 2 {
		t.Errorf("dims = (%d, %d, %v), want (3, 2, true)", w, h, ok)
	}

	defer func() {
		if recover() == nil {
			t.Error("3 bytes per texel did not panic")
		}
	}()
	sr.TryCreateObjectTexture(2, 2, 3)
}

func TestLockInvalidObjectTexture(t *testing.T) {
	sr := newTestRenderer(t, 4)
	if _, ok := sr.LockObjectTexture(3); ok {
		t.Error("LockObjectTexture of unallocated id succeeded")
	}
	if _, _, ok := sr.TryGetObjectTextureDims(InvalidID); ok {
		t.Error("TryGetObjectTextureDims of InvalidID succeeded")
	}
}

func TestSetLightRadiusValidation(t *testing.T) {
	sr := newTestRenderer(t, 4)
	id, _ := sr.TryCreateLight()
	sr.SetLightRadius(id, 1, 4)
	sr.SetLightRadius(id, 5, 2)
	sr.SetLightRadius(id, -1, 2)

	l := sr.lights.get(int32(id))
	if l.StartRadius != 1 || l.EndRadius != 4 {
		t.Errorf("radius = (%v, %v), want (1, 4)", l.StartRadius, l.EndRadius)
	}

	sr.FreeLight(id)
	if sr.lights.get(int32(id)) != nil {
		t.Error("light still allocated after FreeLight")
	}
}
