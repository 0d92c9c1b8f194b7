package render

import (
	"fmt"

	"github.com/taigrr/palrast/pkg/math3d"
)

// calculateVertexShaderTransforms builds each mesh's model and
// model-view-projection matrices.
func (b *BatchContext) calculateVertexShaderTransforms(cam *RenderCamera) {
	var viewProjections, models, mvps [MaxMeshProcessCaches]math3d.Mat4
	n := b.meshCount
	for i := range n {
		m := &b.meshes[i]
		m.model = m.transform.Model()
		models[i] = m.model
		viewProjections[i] = cam.ViewProjection
	}
	math3d.MulMat4Batch(viewProjections[:n], models[:n], mvps[:n])
	for i := range n {
		b.meshes[i].modelViewProjection = mvps[i]
	}
}

// processVertexShaders moves every cached triangle from model space to clip
// space with the batch's vertex shader.
func (b *BatchContext) processVertexShaders(cam *RenderCamera) {
	switch b.vertexShaderType {
	case VertexShaderBasic, VertexShaderEntity:
		b.shadeModelViewProjection()
	case VertexShaderRaisingDoor:
		b.shadeRaisingDoor(cam)
	default:
		panic(fmt.Sprintf("unhandled vertex shader type: %d", b.vertexShaderType))
	}
}

func (b *BatchContext) shadeModelViewProjection() {
	sc := &b.shading
	for i := range b.meshCount {
		m := &b.meshes[i]
		lo, hi := m.shadingStart, m.shadingEnd
		math3d.MulVec4Batch(m.modelViewProjection, sc.V0.Slice(lo, hi), sc.V0.Slice(lo, hi))
		math3d.MulVec4Batch(m.modelViewProjection, sc.V1.Slice(lo, hi), sc.V1.Slice(lo, hi))
		math3d.MulVec4Batch(m.modelViewProjection, sc.V2.Slice(lo, hi), sc.V2.Slice(lo, hi))
	}
}

// shadeRaisingDoor shrinks a door toward its top edge. The pre-scale
// translation moves the door so its top sits at y=0 before scaling, and is
// undone afterward.
func (b *BatchContext) shadeRaisingDoor(cam *RenderCamera) {
	sc := &b.shading
	for i := range b.meshCount {
		m := &b.meshes[i]
		lo, hi := m.shadingStart, m.shadingEnd
		pre := m.preScaleTranslation
		for _, v := range [3]math3d.Vec4Batch{sc.V0.Slice(lo, hi), sc.V1.Slice(lo, hi), sc.V2.Slice(lo, hi)} {
			math3d.AddVec3Batch(v, pre)
			math3d.MulVec4Batch(m.transform.Scale, v, v)
			math3d.AddVec3Batch(v, pre.Negate())
			math3d.MulVec4Batch(m.transform.Rotation, v, v)
			math3d.MulVec4Batch(m.transform.Translation, v, v)
			math3d.MulVec4Batch(cam.ViewProjection, v, v)
		}
	}
}
