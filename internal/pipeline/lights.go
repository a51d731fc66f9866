package pipeline

import "github.com/go-gl/mathgl/mgl32"

// DirLight is a directional light such as the sun.
type DirLight struct {
	Intensity float32
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
}

// PointLight is a positional light.
type PointLight struct {
	Position mgl32.Vec3
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

func gray(v float32) mgl32.Vec3 { return mgl32.Vec3{v, v, v} }

// DefaultSun is a half-intensity white light shining down and away
// from the viewer.
func DefaultSun() DirLight {
	return DirLight{
		Intensity: 0.5,
		Direction: mgl32.Vec3{0, -1, 1},
		Ambient:   gray(0.5),
		Diffuse:   gray(0.5),
		Specular:  gray(0.5),
	}
}

// DefaultLamp is a dim white lamp at (1, 1, 1).
func DefaultLamp() PointLight {
	return PointLight{
		Position: mgl32.Vec3{1, 1, 1},
		Ambient:  gray(0.5),
		Diffuse:  gray(0.5),
		Specular: gray(0.5),
	}
}
