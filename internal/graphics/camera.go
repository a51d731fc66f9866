// Package graphics holds viewer-side helpers that sit above the pipeline.
package graphics

import (
	"math"

	"darkest/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits Target at a fixed height, always looking at it.
type Camera struct {
	AspectRatio float32
	FOV         float32 // degrees
	NearPlane   float32
	FarPlane    float32

	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians around +Y
	Pitch    float32 // radians above the XZ plane
}

const maxPitch = math.Pi/2 - 0.01

// NewCamera returns a camera for a width x height viewport.
func NewCamera(width, height int, c config.Camera) *Camera {
	cam := &Camera{
		FOV:       c.FOV,
		NearPlane: c.Near,
		FarPlane:  c.Far,
		Distance:  c.Distance,
		Pitch:     0.4,
	}
	cam.SetViewport(width, height)
	return cam
}

// SetViewport updates the aspect ratio. A zero height (minimized
// window) keeps the previous ratio.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		if c.AspectRatio == 0 {
			c.AspectRatio = 1
		}
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Orbit turns the camera around the target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Zoom scales the distance to the target, never closer than the near
// plane.
func (c *Camera) Zoom(factor float32) {
	c.Distance = max(c.Distance*factor, c.NearPlane)
}

// Position is the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	offset := mgl32.Vec3{float32(cp * sy), float32(sp), float32(cp * cy)}
	return c.Target.Add(offset.Mul(c.Distance))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
