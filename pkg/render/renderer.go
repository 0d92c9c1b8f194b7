package render

import (
	"fmt"
)

// InitSettings configures a SoftwareRenderer.
type InitSettings struct {
	Width, Height int
	DitheringMode DitheringMode

	// PoolCapacity is the slot count of each resource pool. Zero means
	// DefaultPoolCapacity.
	PoolCapacity int
}

// FrameSettings carries the per-frame inputs of SubmitFrame.
type FrameSettings struct {
	AmbientPercent float64

	// PaletteTextureID is a 256x1 32-bit texture of ARGB colors.
	PaletteTextureID ObjectTextureID
	// LightTableTextureID is an 8-bit texture with one row per light level,
	// brightest first, mapping a palette index to its shaded index.
	LightTableTextureID ObjectTextureID
	// SkyBgTextureID is an optional 8-bit texture whose first texel is used
	// where reflections leave the screen.
	SkyBgTextureID ObjectTextureID

	DitheringMode DitheringMode

	// ClearColor fills the output before any draw call is rendered.
	ClearColor uint32

	// Wireframe outlines every rasterized triangle in WireframeColor.
	Wireframe      bool
	WireframeColor uint32
}

// SoftwareRenderer rasterizes draw calls on the CPU into palette indices
// and resolved ARGB colors. It must be used from a single goroutine.
type SoftwareRenderer struct {
	vertexBuffers    *pool[VertexBuffer]
	attributeBuffers *pool[AttributeBuffer]
	indexBuffers     *pool[IndexBuffer]
	uniformBuffers   *pool[UniformBuffer]
	objectTextures   *pool[ObjectTexture]
	lights           *pool[Light]

	raster *Rasterizer
	batch  *BatchContext

	drawCallCount   int
	culledDrawCalls int
}

// NewSoftwareRenderer returns a renderer that must be initialized with Init
// before use.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

// Init allocates the resource pools, frame buffers and dither masks.
func (sr *SoftwareRenderer) Init(settings InitSettings) error {
	if settings.Width <= 0 || settings.Height <= 0 {
		return fmt.Errorf("invalid render dimensions %dx%d", settings.Width, settings.Height)
	}
	capacity := settings.PoolCapacity
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}

	sr.vertexBuffers = newPool[VertexBuffer](capacity)
	sr.attributeBuffers = newPool[AttributeBuffer](capacity)
	sr.indexBuffers = newPool[IndexBuffer](capacity)
	sr.uniformBuffers = newPool[UniformBuffer](capacity)
	sr.objectTextures = newPool[ObjectTexture](capacity)
	sr.lights = newPool[Light](capacity)

	sr.raster = newRasterizer()
	sr.raster.resize(settings.Width, settings.Height, settings.DitheringMode)
	sr.batch = NewBatchContext()

	Logger().Debug("software renderer initialized",
		"width", settings.Width, "height", settings.Height,
		"dithering", settings.DitheringMode.String(), "poolCapacity", capacity)
	return nil
}

// IsInited reports whether Init has succeeded and Shutdown has not been
// called since.
func (sr *SoftwareRenderer) IsInited() bool {
	return sr.raster != nil
}

// Resize reallocates the frame buffers, keeping the dithering mode.
func (sr *SoftwareRenderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		Logger().Error("invalid resize dimensions", "width", width, "height", height)
		return
	}
	sr.raster.resize(width, height, sr.raster.dither.mode)
	Logger().Debug("software renderer resized", "width", width, "height", height)
}

// Shutdown releases every pooled resource and the frame buffers.
func (sr *SoftwareRenderer) Shutdown() {
	if !sr.IsInited() {
		return
	}
	sr.vertexBuffers.clear()
	sr.attributeBuffers.clear()
	sr.indexBuffers.clear()
	sr.uniformBuffers.clear()
	sr.objectTextures.clear()
	sr.lights.clear()
	sr.raster.dither.clear()
	sr.raster = nil
	sr.batch = nil
}

// Width returns the frame buffer width.
func (sr *SoftwareRenderer) Width() int { return sr.raster.width }

// Height returns the frame buffer height.
func (sr *SoftwareRenderer) Height() int { return sr.raster.height }

// IndexBuffer returns the palette index of each pixel from the last frame.
func (sr *SoftwareRenderer) IndexBuffer() []uint8 { return sr.raster.indexBuffer }

// DepthBuffer returns the NDC depth of each pixel from the last frame.
func (sr *SoftwareRenderer) DepthBuffer() []float64 { return sr.raster.depthBuffer }

// ColorBuffer returns the ARGB output of the last frame. It aliases the
// slice passed to SubmitFrame.
func (sr *SoftwareRenderer) ColorBuffer() []uint32 { return sr.raster.colorBuffer }

// SubmitFrame renders drawCalls and writes Width*Height ARGB pixels to out.
// Consecutive draw calls with the same vertex shader are processed together
// in batches of up to MaxMeshProcessCaches.
func (sr *SoftwareRenderer) SubmitFrame(camera *RenderCamera, drawCalls []DrawCall, settings FrameSettings, out []uint32) {
	r := sr.raster
	pixelCount := r.width * r.height
	if len(out) < pixelCount {
		Logger().Error("output buffer too small", "len", len(out), "want", pixelCount)
		return
	}

	if settings.DitheringMode != r.dither.mode {
		r.dither.build(r.width, r.height, settings.DitheringMode)
		Logger().Debug("dither buffer rebuilt", "mode", settings.DitheringMode.String())
	}

	r.colorBuffer = out[:pixelCount]
	r.clear(settings.ClearColor)
	sr.drawCallCount = len(drawCalls)
	sr.culledDrawCalls = 0

	if !sr.beginFrame(camera, settings) {
		return
	}

	b := sr.batch
	i := 0
	for i < len(drawCalls) {
		shaderType := drawCalls[i].VertexShaderType
		b.reset(shaderType)
		triangleCount := 0
		for i < len(drawCalls) && b.meshCount < MaxMeshProcessCaches && drawCalls[i].VertexShaderType == shaderType {
			m := &b.meshes[b.meshCount]
			if !sr.populateMeshProcessCache(m, &drawCalls[i], camera) {
				i++
				continue
			}
			meshTriangles := m.indexBuffer.TriangleCount
			if b.meshCount > 0 && triangleCount+meshTriangles > MaxVertexShadingCacheTriangles {
				break
			}
			triangleCount += meshTriangles
			b.meshCount++
			i++
		}
		if b.meshCount == 0 {
			continue
		}

		b.lookupMeshBuffers()
		b.calculateVertexShaderTransforms(camera)
		b.processVertexShaders(camera)
		b.processClipping()
		for mi := range b.meshCount {
			m := &b.meshes[mi]
			r.processFrontFacing(m)
			r.rasterizeMesh(m)
			if settings.Wireframe {
				r.drawWireframe(settings.WireframeColor)
			}
		}
	}
}

// beginFrame resolves the frame's palette, light table and camera globals.
func (sr *SoftwareRenderer) beginFrame(camera *RenderCamera, settings FrameSettings) bool {
	r := sr.raster
	palette := sr.objectTextures.get(int32(settings.PaletteTextureID))
	if palette == nil || palette.BytesPerTexel != 4 {
		Logger().Error("invalid palette texture", "id", settings.PaletteTextureID)
		return false
	}
	lightTable := sr.objectTextures.get(int32(settings.LightTableTextureID))
	if lightTable == nil || lightTable.BytesPerTexel != 1 {
		Logger().Error("invalid light table texture", "id", settings.LightTableTextureID)
		return false
	}

	r.camera = camera
	r.ambientPercent = settings.AmbientPercent
	r.palette = palette.Texels32()
	r.lightTable = lightTable.Texels8()
	r.lightLevelCount = lightTable.Height
	r.lightLevelTexelCount = lightTable.Width
	r.skyBgTexel = PaletteTransparent
	if sky := sr.objectTextures.get(int32(settings.SkyBgTextureID)); sky != nil && len(sky.Texels) > 0 {
		r.skyBgTexel = sky.Texels8()[0]
	}
	r.horizonScreen = r.ndcToScreen(camera.HorizonNDCPoint.X, camera.HorizonNDCPoint.Y)
	return true
}

// populateMeshProcessCache resolves a draw call's resources into m. It
// reports false when the draw call is skipped, either because it references
// a missing resource or because its bounds are outside the view.
func (sr *SoftwareRenderer) populateMeshProcessCache(m *meshProcessCache, dc *DrawCall, camera *RenderCamera) bool {
	*m = meshProcessCache{clipped: m.clipped[:0]}

	transformBuffer := sr.uniformBuffers.get(int32(dc.TransformBufferID))
	if transformBuffer == nil {
		Logger().Error("invalid transform buffer", "id", dc.TransformBufferID)
		return false
	}
	m.transform = transformBuffer.RenderTransform(dc.TransformIndex)

	if dc.PreScaleTranslationBufferID >= 0 {
		preScale := sr.uniformBuffers.get(int32(dc.PreScaleTranslationBufferID))
		if preScale == nil {
			Logger().Error("invalid pre-scale translation buffer", "id", dc.PreScaleTranslationBufferID)
			return false
		}
		m.preScaleTranslation = preScale.Vec3(0)
	}

	m.vertexBuffer = sr.vertexBuffers.get(int32(dc.VertexBufferID))
	if m.vertexBuffer == nil {
		Logger().Error("invalid vertex buffer", "id", dc.VertexBufferID)
		return false
	}
	m.texCoordBuffer = sr.attributeBuffers.get(int32(dc.TexCoordBufferID))
	if m.texCoordBuffer == nil {
		Logger().Error("invalid tex coord buffer", "id", dc.TexCoordBufferID)
		return false
	}
	m.indexBuffer = sr.indexBuffers.get(int32(dc.IndexBufferID))
	if m.indexBuffer == nil {
		Logger().Error("invalid index buffer", "id", dc.IndexBufferID)
		return false
	}

	textureCount := 1
	if dc.PixelShaderType.RequiresTwoTextures() {
		textureCount = 2
	}
	for t := range textureCount {
		id := dc.TextureID(t)
		tex := sr.objectTextures.get(int32(id))
		if tex == nil || tex.BytesPerTexel != 1 {
			Logger().Error("invalid object texture", "id", id, "slot", t)
			return false
		}
		m.textures[t] = tex
		m.samplingTypes[t] = dc.TextureSamplingTypes[t]
	}

	m.lightingType = dc.LightingType
	m.lightPercent = dc.LightPercent
	for _, id := range dc.LightIDs[:min(dc.LightIDCount, MaxLights)] {
		l := sr.lights.get(int32(id))
		if l == nil {
			Logger().Warn("skipping invalid light", "id", id)
			continue
		}
		m.lights[m.lightCount] = l
		m.lightCount++
	}

	m.pixelShaderType = dc.PixelShaderType
	m.pixelShaderParam0 = dc.PixelShaderParam0
	m.enableDepthRead = dc.EnableDepthRead
	m.enableDepthWrite = dc.EnableDepthWrite

	if dc.Bounds != nil && !sr.boundsVisible(m, dc, camera) {
		sr.culledDrawCalls++
		return false
	}
	return true
}

// boundsVisible tests the draw call's model-space bounds against the view
// frustum. Raising doors only ever shrink, so their scale is ignored.
func (sr *SoftwareRenderer) boundsVisible(m *meshProcessCache, dc *DrawCall, camera *RenderCamera) bool {
	model := m.transform.Model()
	if dc.VertexShaderType == VertexShaderRaisingDoor {
		model = m.transform.Translation.Mul(m.transform.Rotation)
	}
	frustum := NewFrustumFromMatrix(camera.ViewProjection.Mul(model))
	return frustum.IntersectAABB(*dc.Bounds)
}
