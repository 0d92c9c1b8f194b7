package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/palrast/pkg/math3d"
)

// ErrNoMeshes is returned when a document holds no triangle geometry.
var ErrNoMeshes = errors.New("models: no triangle meshes")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// LoadTextures decodes base color textures into Material.BaseMap.
	LoadTextures bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{LoadTextures: true}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoMeshes)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{
				Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])),
			}
			if i < len(uvs) {
				// glTF puts v=0 at the top of the image, as the rasterizer does.
				v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			face := Face{Material: material}
			for k := range 3 {
				idx := int(indices[i+k])
				if idx >= len(positions) {
					return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
				}
				face.V[k] = baseVertex + idx
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}

	return nil
}

// readMaterials converts the document materials. Textures that fail to
// decode are left nil so the base color is used instead.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mat := Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		pbr := m.PBRMetallicRoughness
		if pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				for c := range 4 {
					mat.BaseColor[c] = float64(f[c])
				}
			}
			if l.LoadTextures && pbr.BaseColorTexture != nil {
				mat.BaseMap = readTextureImage(doc, pbr.BaseColorTexture.Index, dir)
			}
		}
		materials[i] = mat
	}
	return materials
}

// readTextureImage decodes the image behind a texture index, embedded or
// external.
func readTextureImage(doc *gltf.Document, textureIdx int, dir string) image.Image {
	if textureIdx < 0 || textureIdx >= len(doc.Textures) {
		return nil
	}
	src := doc.Textures[textureIdx].Source
	if src == nil || *src >= len(doc.Images) {
		return nil
	}
	data := imageData(doc, doc.Images[*src], dir)
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

func imageData(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil
		}
		start := bv.ByteOffset
		return buf.Data[start : start+bv.ByteLength]
	}
	if img.URI == "" || img.IsEmbeddedResource() {
		if data, err := img.MarshalData(); err == nil {
			return data
		}
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil
	}
	return data
}
