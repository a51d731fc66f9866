package pipeline

import (
	"errors"
	"log/slog"

	"darkest/internal/shader"
)

// Uniform names the pipeline binds.
const (
	UniformModel        = "model_mat"
	UniformView         = "view_mat"
	UniformModelView    = "modelview_mat"
	UniformProjection   = "proj_mat"
	UniformMVP          = "mvp_mat"
	UniformNormal       = "normal_mat"
	UniformUseNormalMap = "use_normalmap"
	UniformViewPos      = "view_pos"

	UniformSunIntensity = "sun.intensity"
	UniformSunDirection = "sun.direction"
	UniformSunAmbient   = "sun.ambient"
	UniformSunDiffuse   = "sun.diffuse"
	UniformSunSpecular  = "sun.specular"

	UniformLampPosition = "lamp.position"
	UniformLampAmbient  = "lamp.ambient"
	UniformLampDiffuse  = "lamp.diffuse"
	UniformLampSpecular = "lamp.specular"

	UniformDiffuseMap  = "diffuse_map"
	UniformSpecularMap = "specular_map"
	UniformNormalMap   = "normal_map"
)

// uniforms holds a typed handle for every name the pipeline writes.
type uniforms struct {
	model, view, modelView, proj, mvp, normal shader.Mat4

	useNormalMap shader.Bool
	viewPos      shader.Vec3

	sunIntensity                                      shader.Float
	sunDirection, sunAmbient, sunDiffuse, sunSpecular shader.Vec3

	lampPosition, lampAmbient, lampDiffuse, lampSpecular shader.Vec3

	diffuseMap, specularMap, normalMap shader.Sampler2D
}

// binder collects lookup failures so that one error lists every
// mismatched uniform.
type binder struct {
	prog *shader.Program
	errs []error
}

func bind[T shader.Handle](b *binder, dst *T, name string) {
	h, err := shader.LookupOptional[T](b.prog, name)
	if err != nil {
		b.errs = append(b.errs, err)
		return
	}
	if !shader.Definition(h).Active() {
		slog.Debug("uniform not active in program", "name", name)
	}
	*dst = h
}

// bindUniforms looks up every pipeline uniform in prog. A uniform the
// program does not use is accepted; one declared with a different type
// is an error.
func bindUniforms(prog *shader.Program) (uniforms, error) {
	var u uniforms
	b := &binder{prog: prog}

	bind(b, &u.model, UniformModel)
	bind(b, &u.view, UniformView)
	bind(b, &u.modelView, UniformModelView)
	bind(b, &u.proj, UniformProjection)
	bind(b, &u.mvp, UniformMVP)
	bind(b, &u.normal, UniformNormal)
	bind(b, &u.useNormalMap, UniformUseNormalMap)
	bind(b, &u.viewPos, UniformViewPos)

	bind(b, &u.sunIntensity, UniformSunIntensity)
	bind(b, &u.sunDirection, UniformSunDirection)
	bind(b, &u.sunAmbient, UniformSunAmbient)
	bind(b, &u.sunDiffuse, UniformSunDiffuse)
	bind(b, &u.sunSpecular, UniformSunSpecular)

	bind(b, &u.lampPosition, UniformLampPosition)
	bind(b, &u.lampAmbient, UniformLampAmbient)
	bind(b, &u.lampDiffuse, UniformLampDiffuse)
	bind(b, &u.lampSpecular, UniformLampSpecular)

	bind(b, &u.diffuseMap, UniformDiffuseMap)
	bind(b, &u.specularMap, UniformSpecularMap)
	bind(b, &u.normalMap, UniformNormalMap)

	if len(b.errs) > 0 {
		return uniforms{}, errors.Join(b.errs...)
	}
	return u, nil
}
