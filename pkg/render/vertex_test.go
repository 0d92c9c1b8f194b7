package render

import (
	"math"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

func TestCalculateVertexShaderTransforms(t *testing.T) {
	cam := NewCamera()
	cam.Position = math3d.V3(0, 1, 4)
	rc := cam.RenderCamera()

	b := NewBatchContext()
	transforms := []RenderTransform{
		{Translation: math3d.Translate(math3d.V3(1, 2, 3)), Rotation: math3d.RotateY(0.5), Scale: math3d.Identity()},
		{Translation: math3d.Identity(), Rotation: math3d.Identity(), Scale: math3d.Scale(math3d.V3(1, 0.25, 1))},
		{Translation: math3d.Translate(math3d.V3(-2, 0, 0)), Rotation: math3d.RotateX(-0.3), Scale: math3d.ScaleUniform(3)},
	}
	for i, tr := range transforms {
		b.meshes[i].transform = tr
	}
	b.meshCount = len(transforms)

	b.calculateVertexShaderTransforms(&rc)

	for i, tr := range transforms {
		m := &b.meshes[i]
		if m.model != tr.Model() {
			t.Errorf("mesh %d model = %v, want %v", i, m.model, tr.Model())
		}
		want := rc.ViewProjection.Mul(tr.Model())
		for k := range want {
			if math.Abs(m.modelViewProjection[k]-want[k]) > 1e-12 {
				t.Fatalf("mesh %d mvp[%d] = %v, want %v", i, k, m.modelViewProjection[k], want[k])
			}
		}
	}
}
