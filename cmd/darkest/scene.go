package main

import (
	"fmt"
	"log/slog"

	"darkest/internal/assets"
	"darkest/internal/config"
	"darkest/internal/geometry"
	"darkest/internal/pipeline"
	"darkest/internal/resource"
	"darkest/internal/s3tc"

	"github.com/go-gl/mathgl/mgl32"
)

// placeholderSize is the edge length of the textures used when a light
// map cannot be loaded.
const placeholderSize = 64

// scene is what the viewer prepared: one plane and, when a normal map
// is configured, one cube.
type scene struct {
	plane   resource.Handle
	cube    resource.Handle
	hasCube bool

	// spin is the cube's rotation in radians.
	spin float32
}

func placeholder(r, g, b uint8) *s3tc.Image {
	img, err := s3tc.Solid(s3tc.DXT1, placeholderSize, placeholderSize, s3tc.DXT1Color(r, g, b))
	if err != nil {
		panic(err) // DXT1Color always yields a DXT1-sized block
	}
	return img
}

// flatNormal encodes the tangent-space normal (0, 0, 1).
func flatNormal() *s3tc.Image { return placeholder(128, 128, 255) }

func loadBasicMaps(loader *assets.Loader, m config.Material) resource.BasicLightMaps {
	lm, err := loader.LoadBasicLightMaps(m.Diffuse, m.Specular)
	if err != nil {
		slog.Warn("using placeholder light maps", "err", err)
		return resource.BasicLightMaps{
			Diffuse:  placeholder(180, 180, 180),
			Specular: placeholder(64, 64, 64),
		}
	}
	return lm
}

func loadNormalMappedMaps(loader *assets.Loader, m config.Material) resource.NormalMappedLightMaps {
	lm, err := loader.LoadNormalMappedLightMaps(m.Diffuse, m.Specular, m.Normal)
	if err != nil {
		slog.Warn("using placeholder light maps", "err", err)
		return resource.NormalMappedLightMaps{
			Diffuse:  placeholder(200, 120, 60),
			Specular: placeholder(128, 128, 128),
			Normal:   flatNormal(),
		}
	}
	return lm
}

// loadScene uploads the plane into the basic store and the cube into
// the normal-mapped store.
func loadScene(p *pipeline.Pipeline, loader *assets.Loader, cfg config.Config) (*scene, error) {
	sc := &scene{}

	handles, err := p.PrepareBasic([]pipeline.BasicInput{{
		Mesh:      geometry.Plane(),
		LightMaps: loadBasicMaps(loader, cfg.Plane),
	}})
	if err != nil {
		return nil, err
	}
	sc.plane = handles[0]
	// Lay the plane flat below the origin.
	floor := mgl32.Translate3D(0, -1, 0).
		Mul4(mgl32.HomogRotate3DX(-mgl32.DegToRad(90))).
		Mul4(mgl32.Scale3D(3, 3, 1))
	if err := p.UpdateModelMatrix(sc.plane, floor); err != nil {
		return nil, err
	}

	if cfg.Cube.Normal == "" {
		return sc, nil
	}
	handles, err = p.PrepareNormalMapped([]pipeline.NormalMappedInput{{
		Mesh:      geometry.Cube(0.5),
		LightMaps: loadNormalMappedMaps(loader, cfg.Cube),
	}})
	if err != nil {
		return nil, fmt.Errorf("cube: %w", err)
	}
	sc.cube, sc.hasCube = handles[0], true
	return sc, nil
}

// update advances the cube and refreshes every normal matrix for view.
func (sc *scene) update(p *pipeline.Pipeline, view mgl32.Mat4, dt float32) error {
	floor, err := p.ModelMatrix(sc.plane)
	if err != nil {
		return err
	}
	if err := p.UpdateNormalMatrix(sc.plane, pipeline.NormalMatrix(view, floor)); err != nil {
		return err
	}
	if !sc.hasCube {
		return nil
	}
	sc.spin += dt
	model := mgl32.HomogRotate3D(sc.spin, mgl32.Vec3{1, 1, 0}.Normalize())
	if err := p.UpdateModelMatrix(sc.cube, model); err != nil {
		return err
	}
	return p.UpdateNormalMatrix(sc.cube, pipeline.NormalMatrix(view, model))
}
