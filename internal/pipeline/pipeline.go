// Package pipeline owns the uploaded meshes and textures of a scene and
// submits them for drawing with a single shader program.
//
// Resources live in one store per variant. Callers refer to them by the
// resource.Handle that Prepare* returned; handles carry the store
// generation, so repopulating a store makes its old handles fail with
// ErrStale instead of silently addressing new data.
//
// A Pipeline must be used from the goroutine that owns the GL context.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"darkest/internal/geometry"
	"darkest/internal/gpu"
	"darkest/internal/profiling"
	"darkest/internal/resource"
	"darkest/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
)

// BasicInput is a mesh and its diffuse/specular maps.
type BasicInput struct {
	Mesh      *geometry.IndexedMesh
	LightMaps resource.BasicLightMaps
}

// NormalMappedInput is a mesh and its diffuse/specular/normal maps.
type NormalMappedInput struct {
	Mesh      *geometry.IndexedMesh
	LightMaps resource.NormalMappedLightMaps
}

var errNilMesh = errors.New("nil mesh")

// Options configure a Pipeline.
type Options struct {
	Sampling resource.Sampling
	Sun      DirLight
	Lamp     PointLight

	// DepthTest and CullFace are enabled on the device by New.
	DepthTest bool
	CullFace  bool
}

// DefaultOptions enables depth testing and uses the default lights and
// texture sampling.
func DefaultOptions() Options {
	return Options{
		Sampling:  resource.DefaultSampling,
		Sun:       DefaultSun(),
		Lamp:      DefaultLamp(),
		DepthTest: true,
	}
}

// SceneState is the per-frame state shared by every draw.
type SceneState struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	ViewPos    mgl32.Vec3
	Sun        DirLight
	Lamp       PointLight
}

// VariantStats describes one store.
type VariantStats struct {
	Instances  int
	Generation uint32
}

// Stats describes both stores.
type Stats struct {
	Basic        VariantStats
	NormalMapped VariantStats
}

type (
	basicStore        = store[*resource.BasicMesh, *resource.BasicTextures]
	normalMappedStore = store[*resource.TangentMesh, *resource.NormalMappedTextures]
)

// Pipeline draws every prepared resource with one program.
type Pipeline struct {
	dev      gpu.Device
	prog     *shader.Program
	uniforms uniforms
	sampling resource.Sampling
	scene    SceneState

	basic        basicStore
	normalMapped normalMappedStore
}

// New binds the pipeline's uniforms in prog and takes ownership of it.
// A uniform declared with a type other than the one the pipeline writes
// fails construction; the program is then still owned by the caller.
func New(dev gpu.Device, prog *shader.Program, opts Options) (*Pipeline, error) {
	u, err := bindUniforms(prog)
	if err != nil {
		return nil, fmt.Errorf("bind pipeline uniforms: %w", err)
	}
	if opts.DepthTest {
		dev.Enable(gpu.DepthTest)
	}
	if opts.CullFace {
		dev.Enable(gpu.CullFace)
	}
	return &Pipeline{
		dev:      dev,
		prog:     prog,
		uniforms: u,
		sampling: opts.Sampling,
		scene: SceneState{
			View:       mgl32.Ident4(),
			Projection: mgl32.Ident4(),
			Sun:        opts.Sun,
			Lamp:       opts.Lamp,
		},
		basic:        basicStore{tag: resource.TypeBasic},
		normalMapped: normalMappedStore{tag: resource.TypeNormalMapped},
	}, nil
}

// PrepareBasic replaces the contents of the basic store with data and
// returns one handle per input, in order. Handles from earlier calls
// become stale. If any upload fails, everything this call uploaded is
// released and the store is left empty.
func (p *Pipeline) PrepareBasic(data []BasicInput) ([]resource.Handle, error) {
	defer profiling.Track("pipeline.PrepareBasic")()
	p.basic.reset()
	handles := make([]resource.Handle, 0, len(data))
	for i, in := range data {
		h, err := p.addBasic(in)
		if err != nil {
			p.basic.clear()
			return nil, fmt.Errorf("prepare basic resource %d: %w", i, err)
		}
		handles = append(handles, h)
	}
	slog.Info("prepared resources", "type", resource.TypeBasic, "count", len(handles), "generation", p.basic.generation)
	return handles, nil
}

func (p *Pipeline) addBasic(in BasicInput) (resource.Handle, error) {
	if in.Mesh == nil {
		return resource.Handle{}, errNilMesh
	}
	mesh, err := resource.NewBasicMesh(p.dev, in.Mesh)
	if err != nil {
		return resource.Handle{}, err
	}
	tex, err := resource.NewBasicTexturesWith(p.dev, in.LightMaps, p.sampling)
	if err != nil {
		mesh.Release()
		return resource.Handle{}, err
	}
	h, err := p.basic.add(mesh, tex)
	if err != nil {
		mesh.Release()
		tex.Release()
	}
	return h, err
}

// PrepareNormalMapped replaces the contents of the normal-mapped store.
// It behaves like PrepareBasic and never touches the basic store.
func (p *Pipeline) PrepareNormalMapped(data []NormalMappedInput) ([]resource.Handle, error) {
	defer profiling.Track("pipeline.PrepareNormalMapped")()
	p.normalMapped.reset()
	handles := make([]resource.Handle, 0, len(data))
	for i, in := range data {
		h, err := p.addNormalMapped(in)
		if err != nil {
			p.normalMapped.clear()
			return nil, fmt.Errorf("prepare normal-mapped resource %d: %w", i, err)
		}
		handles = append(handles, h)
	}
	slog.Info("prepared resources", "type", resource.TypeNormalMapped, "count", len(handles), "generation", p.normalMapped.generation)
	return handles, nil
}

func (p *Pipeline) addNormalMapped(in NormalMappedInput) (resource.Handle, error) {
	if in.Mesh == nil {
		return resource.Handle{}, errNilMesh
	}
	mesh, err := resource.NewTangentMesh(p.dev, in.Mesh)
	if err != nil {
		return resource.Handle{}, err
	}
	tex, err := resource.NewNormalMappedTexturesWith(p.dev, in.LightMaps, p.sampling)
	if err != nil {
		mesh.Release()
		return resource.Handle{}, err
	}
	h, err := p.normalMapped.add(mesh, tex)
	if err != nil {
		mesh.Release()
		tex.Release()
	}
	return h, err
}

// matrices returns the per-instance matrices h refers to.
func (p *Pipeline) matrices(h resource.Handle) (*mgl32.Mat4, *mgl32.Mat4, error) {
	switch h.ID.Type() {
	case resource.TypeBasic:
		in, err := p.basic.get(h)
		if err != nil {
			return nil, nil, err
		}
		return &in.model, &in.normal, nil
	case resource.TypeNormalMapped:
		in, err := p.normalMapped.get(h)
		if err != nil {
			return nil, nil, err
		}
		return &in.model, &in.normal, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownType, h)
}

// UpdateModelMatrix sets the model matrix of the resource h refers to.
func (p *Pipeline) UpdateModelMatrix(h resource.Handle, m mgl32.Mat4) error {
	model, _, err := p.matrices(h)
	if err != nil {
		return err
	}
	*model = m
	return nil
}

// ModelMatrix returns the model matrix of the resource h refers to.
func (p *Pipeline) ModelMatrix(h resource.Handle) (mgl32.Mat4, error) {
	model, _, err := p.matrices(h)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	return *model, nil
}

// UpdateNormalMatrix sets the normal matrix of the resource h refers
// to. See NormalMatrix.
func (p *Pipeline) UpdateNormalMatrix(h resource.Handle, m mgl32.Mat4) error {
	_, normal, err := p.matrices(h)
	if err != nil {
		return err
	}
	*normal = m
	return nil
}

// NormalMatrix is the inverse transpose of view*model, which keeps
// normals perpendicular to surfaces under non-uniform scaling.
func NormalMatrix(view, model mgl32.Mat4) mgl32.Mat4 {
	return view.Mul4(model).Inv().Transpose()
}

func (p *Pipeline) SetView(m mgl32.Mat4)       { p.scene.View = m }
func (p *Pipeline) SetProjection(m mgl32.Mat4) { p.scene.Projection = m }
func (p *Pipeline) SetViewPos(v mgl32.Vec3)    { p.scene.ViewPos = v }
func (p *Pipeline) SetSun(l DirLight)          { p.scene.Sun = l }
func (p *Pipeline) SetLamp(l PointLight)       { p.scene.Lamp = l }

// Scene returns the current per-frame state.
func (p *Pipeline) Scene() SceneState { return p.scene }

// SetViewport sets the device viewport.
func (p *Pipeline) SetViewport(width, height int) {
	p.dev.Viewport(0, 0, int32(width), int32(height))
}

// DrawAll draws every prepared resource: the basic group first with
// normal mapping off, then the normal-mapped group with it on.
func (p *Pipeline) DrawAll() {
	defer profiling.Track("pipeline.DrawAll")()
	u := &p.uniforms
	s := &p.scene

	p.prog.Use()
	u.viewPos.Set(s.ViewPos)
	u.sunIntensity.Set(s.Sun.Intensity)
	u.sunDirection.Set(s.Sun.Direction)
	u.sunAmbient.Set(s.Sun.Ambient)
	u.sunDiffuse.Set(s.Sun.Diffuse)
	u.sunSpecular.Set(s.Sun.Specular)
	u.lampPosition.Set(s.Lamp.Position)
	u.lampAmbient.Set(s.Lamp.Ambient)
	u.lampDiffuse.Set(s.Lamp.Diffuse)
	u.lampSpecular.Set(s.Lamp.Specular)
	u.view.Set(s.View)
	u.proj.Set(s.Projection)
	u.diffuseMap.Set(resource.UnitDiffuse)
	u.specularMap.Set(resource.UnitSpecular)
	u.normalMap.Set(resource.UnitNormal)

	u.useNormalMap.Set(false)
	drawGroup(p, &p.basic)
	u.useNormalMap.Set(true)
	drawGroup(p, &p.normalMapped)
}

func drawGroup[M gpuMesh, T gpuTextures](p *Pipeline, s *store[M, T]) {
	u := &p.uniforms
	view, proj := p.scene.View, p.scene.Projection
	for i := range s.instances {
		in := &s.instances[i]
		mv := view.Mul4(in.model)
		u.model.Set(in.model)
		u.modelView.Set(mv)
		u.mvp.Set(proj.Mul4(mv))
		u.normal.Set(in.normal)
		in.textures.Bind()
		in.mesh.Draw()
	}
}

// Reload switches to prog, which must declare the pipeline's uniforms
// with the expected types. On success the previous program is released
// and prog is owned by the pipeline; on failure nothing changes.
func (p *Pipeline) Reload(prog *shader.Program) error {
	u, err := bindUniforms(prog)
	if err != nil {
		return fmt.Errorf("reload program: %w", err)
	}
	p.prog.Release()
	p.prog, p.uniforms = prog, u
	slog.Info("reloaded program", "program", prog.ID())
	return nil
}

// Release frees every prepared resource and the program.
func (p *Pipeline) Release() {
	p.basic.clear()
	p.normalMapped.clear()
	p.prog.Release()
}

// Stats reports instance counts and generations.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Basic:        VariantStats{Instances: len(p.basic.instances), Generation: p.basic.generation},
		NormalMapped: VariantStats{Instances: len(p.normalMapped.instances), Generation: p.normalMapped.generation},
	}
}
