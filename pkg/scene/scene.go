// Package scene builds the demo room rendered by palrast: a lit room with a
// raising door, a reflective puddle, a window, an animated sign and a
// spinning entity that is either a crate or a loaded glTF model.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
	"github.com/taigrr/palrast/pkg/models"
	"github.com/taigrr/palrast/pkg/palette"
	"github.com/taigrr/palrast/pkg/render"
)

// ErrAllocFailed is returned when the renderer runs out of uniform buffer
// or light slots.
var ErrAllocFailed = errors.New("scene: renderer resource allocation failed")

// Room dimensions in world units. The room is centered on the origin with
// the floor at y=0 and the door in the -Z wall.
const (
	RoomSize   = 8.0
	RoomHeight = 3.0

	doorWidth    = 1.6
	doorHeight   = 2.4
	corridorLen  = 2.0
	entitySize   = 1.2
	entitySpin   = 0.6 // radians per second
	orbitRadius  = 2.5
	orbitSpeed   = 0.8 // radians per second
	signSeconds  = 0.5
	wallInset    = 0.02
	puddleHeight = 0.01
)

// Uniform transform slots.
const (
	transformIdentity = iota
	transformEntity
	transformDoor
	transformSign
	transformCount
)

// Options configures a Scene.
type Options struct {
	// FPS is the rate Update is called at.
	FPS int
	// Ambient is the light percent every per-pixel lit surface receives.
	Ambient float64
	// Model, when set, is a glTF/GLB file used as the entity.
	Model string
	// WallTexture, when set, is an image quantized onto the walls.
	WallTexture string
	// AutoDoor raises and lowers the door on its own.
	AutoDoor bool
}

// Scene owns every renderer resource of the demo room.
type Scene struct {
	sr      *render.SoftwareRenderer
	palette *palette.Palette
	matcher *palette.Matcher
	opts    Options

	paletteID    render.ObjectTextureID
	lightTableID render.ObjectTextureID
	skyID        render.ObjectTextureID

	textures []render.ObjectTextureID
	uploads  []*models.Uploaded
	lights   []render.LightID

	transforms render.UniformBufferID
	doorPivot  render.UniformBufferID

	door       *Door
	orbitLight render.LightID

	signTextures [signFrames]render.ObjectTextureID
	signFrame    render.ObjectTextureID

	frame       int
	entityAngle float64
	orbitAngle  float64

	drawCalls []render.DrawCall
	triangles int
}

// New uploads the palette, light table, textures and meshes of the demo
// room into sr. On error every resource created so far is released.
func New(sr *render.SoftwareRenderer, opts Options) (*Scene, error) {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	p := palette.Default()
	s := &Scene{
		sr:           sr,
		palette:      p,
		matcher:      palette.NewMatcher(p),
		opts:         opts,
		paletteID:    render.InvalidID,
		lightTableID: render.InvalidID,
		skyID:        render.InvalidID,
		transforms:   render.InvalidID,
		doorPivot:    render.InvalidID,
		orbitLight:   render.InvalidID,
		door:         NewDoor(opts.FPS, opts.AutoDoor),
	}
	if err := s.build(); err != nil {
		s.Close()
		return nil, err
	}
	render.Logger().Info("scene ready",
		"drawCalls", len(s.drawCalls), "triangles", s.triangles,
		"textures", len(s.textures), "lights", len(s.lights))
	return s, nil
}

func (s *Scene) build() error {
	var err error
	if s.paletteID, err = s.palette.Upload(s.sr); err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	s.textures = append(s.textures, s.paletteID)

	lightTable := palette.BuildLightTable(s.palette, palette.LightLevels)
	if s.lightTableID, err = lightTable.Upload(s.sr); err != nil {
		return fmt.Errorf("light table: %w", err)
	}
	s.textures = append(s.textures, s.lightTableID)

	if s.skyID, err = s.uploadTexture(palette.Solid(1, 1, SkyIndex)); err != nil {
		return fmt.Errorf("sky: %w", err)
	}

	if err := s.createUniforms(); err != nil {
		return err
	}
	if err := s.createLights(); err != nil {
		return err
	}

	// Draw order matters: the puddle mirrors whatever is already on screen,
	// so it goes last.
	if err := s.buildRoom(); err != nil {
		return err
	}
	if err := s.buildEntity(); err != nil {
		return err
	}
	if err := s.buildDoor(); err != nil {
		return err
	}
	return s.buildPuddle()
}

func (s *Scene) uploadTexture(img *palette.Image) (render.ObjectTextureID, error) {
	id, err := img.Upload(s.sr)
	if err != nil {
		return render.InvalidID, err
	}
	s.textures = append(s.textures, id)
	return id, nil
}

func (s *Scene) createUniforms() error {
	var ok bool
	if s.transforms, ok = s.sr.TryCreateUniformBuffer(transformCount, render.RenderTransformSize, 16); !ok {
		return fmt.Errorf("transform buffer: %w", ErrAllocFailed)
	}
	sign := render.IdentityTransform()
	sign.Translation = math3d.Translate(math3d.V3(-2.5, 1.2, -RoomSize/2+wallInset))
	s.sr.PopulateUniformAtIndex(s.transforms, transformIdentity, render.EncodeRenderTransform(render.IdentityTransform()))
	s.sr.PopulateUniformAtIndex(s.transforms, transformSign, render.EncodeRenderTransform(sign))
	s.updateTransforms()

	if s.doorPivot, ok = s.sr.TryCreateUniformBuffer(1, render.Vec3Size, 8); !ok {
		return fmt.Errorf("door pivot buffer: %w", ErrAllocFailed)
	}
	s.sr.PopulateUniformBuffer(s.doorPivot, render.EncodeVec3(math3d.V3(0, -doorHeight, 0)))
	return nil
}

func (s *Scene) createLights() error {
	lights := []struct {
		point      math3d.Vec3
		start, end float64
	}{
		{math3d.V3(0, RoomHeight-0.2, 0), 1, 6},
		{math3d.V3(0, 1.2, -RoomSize/2-corridorLen/2), 0.3, 2.5},
		{math3d.V3(orbitRadius, 1, 0), 0.5, 3.5},
	}
	for _, l := range lights {
		id, ok := s.sr.TryCreateLight()
		if !ok {
			return fmt.Errorf("light: %w", ErrAllocFailed)
		}
		s.sr.SetLightPosition(id, l.point)
		s.sr.SetLightRadius(id, l.start, l.end)
		s.lights = append(s.lights, id)
	}
	s.orbitLight = s.lights[len(s.lights)-1]
	return nil
}

// litDrawCall returns a draw call lit per pixel by every scene light.
func (s *Scene) litDrawCall(transform int) render.DrawCall {
	dc := render.NewDrawCall()
	dc.TransformBufferID = s.transforms
	dc.TransformIndex = transform
	dc.LightingType = render.LightingPerPixel
	dc.LightIDCount = copy(dc.LightIDs[:], s.lights)
	return dc
}

func (s *Scene) add(u *models.Uploaded, base render.DrawCall) {
	s.uploads = append(s.uploads, u)
	s.drawCalls = append(s.drawCalls, u.DrawCalls(base)...)
	s.triangles += u.TriangleCount()
}

// addGeometry uploads m with a single texture and appends its draw calls.
func (s *Scene) addGeometry(m *models.Mesh, texture render.ObjectTextureID, base render.DrawCall) error {
	u, err := models.UploadGeometry(s.sr, m, texture)
	if err != nil {
		return fmt.Errorf("%s: %w", m.Name, err)
	}
	s.add(u, base)
	return nil
}

func (s *Scene) buildRoom() error {
	half := RoomSize / 2
	cells := int(RoomSize)
	v := math3d.V3

	floor := models.NewGrid("floor", RoomSize, RoomSize, cells, cells, 0)
	corridorFloor := models.NewGrid("corridor floor", doorWidth, corridorLen, 1, 2, 0)
	corridorFloor.Transform(math3d.Translate(v(0, 0, -half-corridorLen/2)))
	floor.Merge(corridorFloor)

	ceiling := models.NewCeiling("ceiling", RoomSize, RoomSize, cells, cells, RoomHeight)
	corridorCeiling := models.NewCeiling("corridor ceiling", doorWidth, corridorLen, 1, 2, doorHeight)
	corridorCeiling.Transform(math3d.Translate(v(0, 0, -half-corridorLen/2)))

	hd := doorWidth / 2
	walls := models.NewWall("walls", v(-half, 0, -half), v(-hd, 0, -half), RoomHeight)
	walls.Merge(
		models.NewWall("", v(hd, 0, -half), v(half, 0, -half), RoomHeight),
		models.NewWall("", v(-hd, doorHeight, -half), v(hd, doorHeight, -half), RoomHeight-doorHeight),
		models.NewWall("", v(half, 0, -half), v(half, 0, half), RoomHeight),
		models.NewWall("", v(half, 0, half), v(-half, 0, half), RoomHeight),
		models.NewWall("", v(-half, 0, half), v(-half, 0, -half), RoomHeight),
		// Corridor behind the door.
		models.NewWall("", v(-hd, 0, -half), v(-hd, 0, -half-corridorLen), doorHeight),
		models.NewWall("", v(hd, 0, -half-corridorLen), v(hd, 0, -half), doorHeight),
		models.NewWall("", v(-hd, 0, -half-corridorLen), v(hd, 0, -half-corridorLen), doorHeight),
		corridorCeiling,
	)

	floorTex, err := s.uploadTexture(floorTexture())
	if err != nil {
		return fmt.Errorf("floor texture: %w", err)
	}
	ceilingTex, err := s.uploadTexture(ceilingTexture())
	if err != nil {
		return fmt.Errorf("ceiling texture: %w", err)
	}
	wallTex, err := s.uploadTexture(s.wallImage())
	if err != nil {
		return fmt.Errorf("wall texture: %w", err)
	}

	base := s.litDrawCall(transformIdentity)
	for _, part := range []struct {
		mesh *models.Mesh
		tex  render.ObjectTextureID
	}{{floor, floorTex}, {ceiling, ceilingTex}, {walls, wallTex}} {
		if err := s.addGeometry(part.mesh, part.tex, base); err != nil {
			return err
		}
	}

	if err := s.buildWindow(); err != nil {
		return err
	}
	return s.buildSign()
}

// wallImage quantizes the configured wall texture, falling back to bricks.
func (s *Scene) wallImage() *palette.Image {
	if s.opts.WallTexture == "" {
		return wallTexture()
	}
	img, err := palette.LoadQuantized(s.opts.WallTexture, s.matcher, 2*textureSize, 2*textureSize)
	if err != nil {
		render.Logger().Warn("using default wall texture", "path", s.opts.WallTexture, "err", err)
		return wallTexture()
	}
	return img
}

// buildWindow places a framed window on the +X wall. The panes show the sky
// gradient in screen space.
func (s *Scene) buildWindow() error {
	x := RoomSize/2 - wallInset
	window := models.NewWall("window", math3d.V3(x, 0.9, -1), math3d.V3(x, 0.9, 1), 1.2)

	sky, err := s.uploadTexture(skyGradient())
	if err != nil {
		return fmt.Errorf("sky gradient: %w", err)
	}
	frame, err := s.uploadTexture(windowFrame())
	if err != nil {
		return fmt.Errorf("window frame: %w", err)
	}

	u, err := models.UploadGeometry(s.sr, window, sky)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	dc := s.litDrawCall(transformIdentity)
	dc.PixelShaderType = render.PixelShaderOpaqueWithAlphaTestLayer
	dc.TextureIDs[1] = frame
	dc.TextureSamplingTypes[0] = render.TextureSamplingScreenSpaceRepeatY
	s.add(u, dc)
	return nil
}

// buildSign places an animated sign on the -Z wall. Its texture slot points
// at signFrame, which Update advances.
func (s *Scene) buildSign() error {
	for i := range s.signTextures {
		id, err := s.uploadTexture(signFrame(i))
		if err != nil {
			return fmt.Errorf("sign frame %d: %w", i, err)
		}
		s.signTextures[i] = id
	}
	s.signFrame = s.signTextures[0]

	sign := models.NewBillboard("sign", 1.2, 0.6)
	u, err := models.UploadGeometry(s.sr, sign, s.signFrame)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	dc := render.NewDrawCall()
	dc.TransformBufferID = s.transforms
	dc.TransformIndex = transformSign
	dc.PixelShaderType = render.PixelShaderAlphaTested
	dc.LightingType = render.LightingPerMesh
	dc.LightPercent = 1
	dc.VaryingTextures[0] = &s.signFrame
	s.add(u, dc)
	return nil
}

func (s *Scene) buildEntity() error {
	dc := s.litDrawCall(transformEntity)
	dc.VertexShaderType = render.VertexShaderEntity
	dc.PixelShaderType = render.PixelShaderAlphaTested

	if s.opts.Model != "" {
		mesh, err := models.LoadGLB(s.opts.Model)
		if err != nil {
			return fmt.Errorf("entity model: %w", err)
		}
		mesh.Fit(entitySize)
		u, err := models.Upload(s.sr, mesh, s.matcher)
		if err != nil {
			return fmt.Errorf("entity model %s: %w", mesh.Name, err)
		}
		s.add(u, dc)
		return nil
	}

	crate, err := s.uploadTexture(crateTexture())
	if err != nil {
		return fmt.Errorf("crate texture: %w", err)
	}
	h := entitySize / 2
	box := models.NewBox("crate", math3d.V3(-h, 0, -h), math3d.V3(h, entitySize, h))
	return s.addGeometry(box, crate, dc)
}

func (s *Scene) buildDoor() error {
	tex, err := s.uploadTexture(doorTexture())
	if err != nil {
		return fmt.Errorf("door texture: %w", err)
	}
	dc := s.litDrawCall(transformDoor)
	dc.VertexShaderType = render.VertexShaderRaisingDoor
	dc.PreScaleTranslationBufferID = s.doorPivot
	return s.addGeometry(models.NewBillboard("door", doorWidth, doorHeight), tex, dc)
}

func (s *Scene) buildPuddle() error {
	tex, err := s.uploadTexture(puddleTexture())
	if err != nil {
		return fmt.Errorf("puddle texture: %w", err)
	}
	puddle := models.NewGrid("puddle", 2, 1.2, 1, 1, puddleHeight)
	puddle.Transform(math3d.Translate(math3d.V3(-1.5, 0, 0.5)))

	dc := s.litDrawCall(transformIdentity)
	dc.PixelShaderType = render.PixelShaderAlphaTestedWithHorizonMirror
	return s.addGeometry(puddle, tex, dc)
}

// Update advances the door, entity, orbiting light and sign by one frame.
func (s *Scene) Update() {
	dt := 1 / float64(s.opts.FPS)
	s.frame++
	s.door.Update()
	s.entityAngle = math.Mod(s.entityAngle+entitySpin*dt, 2*math.Pi)
	s.orbitAngle = math.Mod(s.orbitAngle+orbitSpeed*dt, 2*math.Pi)
	s.sr.SetLightPosition(s.orbitLight, math3d.V3(
		orbitRadius*math.Cos(s.orbitAngle), 1, orbitRadius*math.Sin(s.orbitAngle)))

	framesPerSign := max(1, int(signSeconds*float64(s.opts.FPS)))
	s.signFrame = s.signTextures[(s.frame/framesPerSign)%signFrames]
	s.updateTransforms()
}

func (s *Scene) updateTransforms() {
	entity := render.IdentityTransform()
	entity.Translation = math3d.Translate(math3d.V3(1.8, 0, -1.5))
	entity.Rotation = math3d.RotateY(s.entityAngle)
	s.sr.PopulateUniformAtIndex(s.transforms, transformEntity, render.EncodeRenderTransform(entity))
	door := s.door.Transform(math3d.V3(0, 0, -RoomSize/2+wallInset))
	s.sr.PopulateUniformAtIndex(s.transforms, transformDoor, render.EncodeRenderTransform(door))
}

// Door returns the scene's raising door.
func (s *Scene) Door() *Door { return s.door }

// DrawCalls returns the scene's draw calls in submission order. The slice
// is owned by the scene.
func (s *Scene) DrawCalls() []render.DrawCall { return s.drawCalls }

// TriangleCount returns the number of uploaded triangles.
func (s *Scene) TriangleCount() int { return s.triangles }

// Palette returns the palette the scene's textures index into.
func (s *Scene) Palette() *palette.Palette { return s.palette }

// FrameSettings returns the per-frame settings for the scene's palette,
// light table and sky.
func (s *Scene) FrameSettings(mode render.DitheringMode, wireframe bool) render.FrameSettings {
	return render.FrameSettings{
		AmbientPercent:      s.opts.Ambient,
		PaletteTextureID:    s.paletteID,
		LightTableTextureID: s.lightTableID,
		SkyBgTextureID:      s.skyID,
		DitheringMode:       mode,
		ClearColor:          s.palette[SkyIndex],
		Wireframe:           wireframe,
		WireframeColor:      s.palette[palette.Index(rampGreen, 15)],
	}
}

// Camera returns a camera standing inside the room looking at the door.
func (s *Scene) Camera(aspect float64) *render.Camera {
	cam := render.NewCamera()
	cam.AspectRatio = aspect
	cam.Far = 50
	cam.Position = math3d.V3(0, 1.6, RoomSize/2-1.5)
	cam.LookAt(math3d.V3(0, 1.2, -RoomSize/2))
	return cam
}

// Close releases every renderer resource the scene created.
func (s *Scene) Close() {
	for _, u := range s.uploads {
		u.Free(s.sr)
	}
	for _, id := range s.textures {
		s.sr.FreeObjectTexture(id)
	}
	for _, id := range s.lights {
		s.sr.FreeLight(id)
	}
	if s.transforms != render.InvalidID {
		s.sr.FreeUniformBuffer(s.transforms)
	}
	if s.doorPivot != render.InvalidID {
		s.sr.FreeUniformBuffer(s.doorPivot)
	}
	s.uploads, s.textures, s.lights, s.drawCalls = nil, nil, nil, nil
	s.transforms, s.doorPivot = render.InvalidID, render.InvalidID
}
