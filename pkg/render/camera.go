package render

import (
	"math"

	"github.com/taigrr/palrast/pkg/math3d"
)

// Camera is a first-person camera positioned by pitch and yaw. It is the
// mutable, host-side description; RenderCamera snapshots it for a frame.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // radians, positive looks up
	Yaw   float64 // radians, zero looks down -Z

	FOV         float64 // vertical field of view in radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the unit right direction, always level with the ground.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the unit up direction.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the world to camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	rot := math3d.RotateX(-c.Pitch).Mul(math3d.RotateY(-c.Yaw))
	return rot.Mul(math3d.Translate(c.Position.Negate()))
}

// ProjectionMatrix returns the camera to clip transform.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// MoveForward moves along the level forward direction.
func (c *Camera) MoveForward(distance float64) {
	f := c.Forward()
	flat := math3d.V3(f.X, 0, f.Z).Normalize()
	c.Position = c.Position.Add(flat.Scale(distance))
}

// MoveRight strafes along the right direction.
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Add(c.Right().Scale(distance))
}

// Rotate adds to pitch and yaw. Pitch stays short of straight up or down.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Pitch += deltaPitch
	c.Yaw += deltaYaw

	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch))
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
}

// RenderCamera is the per-frame camera state consumed by SubmitFrame. It is
// not modified while a frame renders.
type RenderCamera struct {
	WorldPoint math3d.Vec3
	Forward    math3d.Vec3
	Right      math3d.Vec3
	Up         math3d.Vec3

	View              math3d.Mat4
	Projection        math3d.Mat4
	ViewProjection    math3d.Mat4
	InverseView       math3d.Mat4
	InverseProjection math3d.Mat4

	FovY        float64 // radians
	AspectRatio float64

	// HorizonNDCPoint is a point on the horizon line in normalized device
	// coordinates, used for reflections.
	HorizonNDCPoint math3d.Vec3
}

// RenderCamera snapshots the camera for one frame.
func (c *Camera) RenderCamera() RenderCamera {
	rc := RenderCamera{
		WorldPoint:  c.Position,
		Forward:     c.Forward(),
		Right:       c.Right(),
		Up:          c.Up(),
		View:        c.ViewMatrix(),
		Projection:  c.ProjectionMatrix(),
		FovY:        c.FOV,
		AspectRatio: c.AspectRatio,
	}
	rc.ViewProjection = rc.Projection.Mul(rc.View)
	rc.InverseView = rc.View.Inverse()
	rc.InverseProjection = rc.Projection.Inverse()

	forwardXZ := math3d.V3(rc.Forward.X, 0, rc.Forward.Z).Normalize()
	if forwardXZ.LenSq() == 0 {
		forwardXZ = math3d.V3(0, 0, -1)
	}
	horizonWorld := rc.WorldPoint.Add(forwardXZ)
	horizonClip := rc.ViewProjection.MulVec4(math3d.V4FromV3(horizonWorld, 1))
	rc.HorizonNDCPoint = horizonClip.PerspectiveDivide()
	return rc
}
