package render

// VertexShaderType selects the vertex transform applied to a draw call.
type VertexShaderType int

const (
	VertexShaderBasic VertexShaderType = iota
	VertexShaderRaisingDoor
	VertexShaderEntity
)

func (t VertexShaderType) String() string {
	switch t {
	case VertexShaderBasic:
		return "Basic"
	case VertexShaderRaisingDoor:
		return "RaisingDoor"
	case VertexShaderEntity:
		return "Entity"
	}
	return "Unknown"
}

// PixelShaderType selects how a covered pixel's palette index is derived.
type PixelShaderType int

const (
	PixelShaderOpaque PixelShaderType = iota
	PixelShaderOpaqueWithAlphaTestLayer
	PixelShaderAlphaTested
	PixelShaderAlphaTestedWithVariableTexCoordUMin
	PixelShaderAlphaTestedWithVariableTexCoordVMin
	PixelShaderAlphaTestedWithPaletteIndexLookup
	PixelShaderAlphaTestedWithLightLevelColor
	PixelShaderAlphaTestedWithLightLevelOpacity
	PixelShaderAlphaTestedWithPreviousBrightnessLimit
	PixelShaderAlphaTestedWithHorizonMirror
)

// RequiresTwoTextures reports whether the shader reads TextureIDs[1].
func (t PixelShaderType) RequiresTwoTextures() bool {
	return t == PixelShaderOpaqueWithAlphaTestLayer || t == PixelShaderAlphaTestedWithPaletteIndexLookup
}

// TextureSamplingType selects how texture coordinates are derived.
type TextureSamplingType int

const (
	// TextureSamplingDefault uses the interpolated texture coordinates.
	TextureSamplingDefault TextureSamplingType = iota
	// TextureSamplingScreenSpaceRepeatY maps the screen to the texture,
	// repeating it twice vertically. Used for chasm walls.
	TextureSamplingScreenSpaceRepeatY
)

// LightingType selects how a draw call's light intensity is computed.
type LightingType int

const (
	// LightingPerMesh uses DrawCall.LightPercent for every pixel.
	LightingPerMesh LightingType = iota
	// LightingPerPixel sums ambient light and each referenced light at the
	// pixel's world position.
	LightingPerPixel
)

// DitheringMode selects the pattern used to smooth light level banding.
type DitheringMode int

const (
	DitheringNone DitheringMode = iota
	DitheringClassic
	DitheringModern
)

func (m DitheringMode) String() string {
	switch m {
	case DitheringNone:
		return "none"
	case DitheringClassic:
		return "classic"
	case DitheringModern:
		return "modern"
	}
	return "unknown"
}

// Per-draw-call limits.
const (
	MaxTextures = 2
	MaxLights   = 8
)

// DrawCall describes one mesh to render. Buffer and texture IDs must refer
// to live pool entries.
type DrawCall struct {
	TransformBufferID UniformBufferID
	TransformIndex    int

	// PreScaleTranslationBufferID is InvalidID unless the vertex shader is
	// RaisingDoor, in which case element 0 holds the pre-scale translation.
	PreScaleTranslationBufferID UniformBufferID

	VertexBufferID   VertexBufferID
	TexCoordBufferID AttributeBufferID
	IndexBufferID    IndexBufferID

	TextureIDs [MaxTextures]ObjectTextureID
	// VaryingTextures override TextureIDs when non-nil, for textures that
	// change every frame without rebuilding the draw call.
	VaryingTextures      [MaxTextures]*ObjectTextureID
	TextureSamplingTypes [MaxTextures]TextureSamplingType

	LightingType LightingType
	LightPercent float64
	LightIDs     [MaxLights]LightID
	LightIDCount int

	VertexShaderType  VertexShaderType
	PixelShaderType   PixelShaderType
	PixelShaderParam0 float64

	EnableDepthRead  bool
	EnableDepthWrite bool

	// Bounds, when set, is the model-space bounding box. Draw calls whose
	// bounds fall entirely outside the view frustum are skipped.
	Bounds *AABB
}

// NewDrawCall returns a draw call with every ID invalid and depth testing
// enabled.
func NewDrawCall() DrawCall {
	dc := DrawCall{
		TransformBufferID:           InvalidID,
		PreScaleTranslationBufferID: InvalidID,
		VertexBufferID:              InvalidID,
		TexCoordBufferID:            InvalidID,
		IndexBufferID:               InvalidID,
		EnableDepthRead:             true,
		EnableDepthWrite:            true,
	}
	for i := range dc.TextureIDs {
		dc.TextureIDs[i] = InvalidID
	}
	for i := range dc.LightIDs {
		dc.LightIDs[i] = InvalidID
	}
	return dc
}

// TextureID returns texture slot i, honoring a varying override.
func (dc *DrawCall) TextureID(i int) ObjectTextureID {
	if v := dc.VaryingTextures[i]; v != nil {
		return *v
	}
	return dc.TextureIDs[i]
}
