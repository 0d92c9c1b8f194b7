package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.LoadTextures {
		t.Error("LoadTextures should default to true")
	}
}

// writeQuadGLB saves a one-quad document with a single named material.
func writeQuadGLB(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, 0, 0}, {1, 0, 0}, {1, 2, 0}, {-1, 2, 0},
	})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{
		{0, 1}, {1, 1}, {1, 0}, {0, 0},
	})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})
	doc.Materials = []*gltf.Material{{Name: "stone"}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}

	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLBQuad(t *testing.T) {
	mesh, err := LoadGLB(writeQuadGLB(t))
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}

	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Fatalf("got %d vertices and %d triangles, want 4 and 2", mesh.VertexCount(), mesh.TriangleCount())
	}
	if mesh.Faces[1].V != [3]int{0, 2, 3} {
		t.Errorf("face 1 = %v, want [0 2 3] (winding preserved)", mesh.Faces[1].V)
	}
	if uv := mesh.Vertices[2].UV; uv.X != 1 || uv.Y != 0 {
		t.Errorf("vertex 2 uv = %+v, want {1 0}", uv)
	}
	if mesh.BoundsMin.Y != 0 || mesh.BoundsMax.Y != 2 {
		t.Errorf("bounds y = [%v, %v], want [0, 2]", mesh.BoundsMin.Y, mesh.BoundsMax.Y)
	}

	mat := mesh.FaceMaterial(0)
	if mat == nil || mat.Name != "stone" {
		t.Fatalf("face material = %+v, want stone", mat)
	}
	if mat.BaseColor != [4]float64{1, 1, 1, 1} {
		t.Errorf("BaseColor = %v, want white default", mat.BaseColor)
	}
	if mat.HasTexture() {
		t.Error("material without texture reports one")
	}
}

func TestLoadGLBWithoutTriangles(t *testing.T) {
	doc := gltf.NewDocument()
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	_, err := LoadGLB(path)
	if !errors.Is(err, ErrNoMeshes) {
		t.Errorf("err = %v, want ErrNoMeshes", err)
	}
}
