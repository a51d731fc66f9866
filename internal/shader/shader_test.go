package shader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"darkest/internal/assets"
	"darkest/internal/gpu"
	"darkest/internal/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sceneUniforms = []gputest.ActiveUniform{
	{Name: "model_mat", Size: 1, Type: gpu.FloatMat4},
	{Name: "normal_mat", Size: 1, Type: gpu.FloatMat3},
	{Name: "use_normalmap", Size: 1, Type: gpu.Int},
	{Name: "sun.direction", Size: 1, Type: gpu.FloatVec3},
	{Name: "weights[0]", Size: 4, Type: gpu.Float},
	{Name: "diffuse_map", Size: 1, Type: gpu.Sampler2D},
}

func compileBoth(t *testing.T, dev *gputest.Device) []*Shader {
	t.Helper()
	vs, err := Compile(dev, "void main() {}", Vertex)
	require.NoError(t, err)
	fs, err := Compile(dev, "void main() {}", Fragment)
	require.NoError(t, err)
	return []*Shader{vs, fs}
}

func TestCompileFailureReturnsLog(t *testing.T) {
	dev := gputest.New()
	dev.CompileFunc = func(stage uint32, source string) (bool, string) {
		return false, "0:1(1): error: syntax error, unexpected end of file\n"
	}
	s, err := Compile(dev, "void main(", Fragment)
	assert.Nil(t, s)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, Fragment, ce.Stage)
	assert.Equal(t, "0:1(1): error: syntax error, unexpected end of file", ce.Log)
	assert.Contains(t, err.Error(), "fragment")
	for _, sh := range dev.Shaders {
		assert.True(t, sh.Deleted, "failed stage must be deleted")
	}
}

func TestLinkTransfersShaders(t *testing.T) {
	dev := gputest.New(sceneUniforms...)
	shaders := compileBoth(t, dev)
	vsID, fsID := shaders[0].ID(), shaders[1].ID()

	p, err := Link(dev, shaders...)
	require.NoError(t, err)
	assert.NotZero(t, p.ID())
	assert.True(t, dev.Shaders[vsID].Deleted)
	assert.True(t, dev.Shaders[fsID].Deleted)
	assert.Empty(t, dev.Programs[p.ID()].Attached, "shaders must be detached")
	assert.Zero(t, shaders[0].ID())

	// Releasing the transferred units again is harmless.
	shaders[0].Release()
	assert.Zero(t, dev.DoubleDeletes)
}

func TestLinkFailure(t *testing.T) {
	dev := gputest.New(sceneUniforms...)
	dev.LinkFunc = func([]*gputest.Shader) (bool, string) {
		return false, "error: vertex output 'uv' not read by fragment shader"
	}
	shaders := compileBoth(t, dev)

	p, err := Link(dev, shaders...)
	assert.Nil(t, p)
	var le *LinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Log, "not read by fragment shader")

	_, _, _, programs := dev.Live()
	assert.Zero(t, programs)
	assert.NotZero(t, shaders[0].ID(), "caller keeps the shaders on failure")
}

func TestReflection(t *testing.T) {
	dev := gputest.New(sceneUniforms...)
	p, err := Link(dev, compileBoth(t, dev)...)
	require.NoError(t, err)

	var names []string
	for _, u := range p.Uniforms() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"diffuse_map", "model_mat", "normal_mat", "sun.direction", "use_normalmap", "weights"}, names)

	u, ok := p.Uniform("weights[0]")
	require.True(t, ok)
	assert.Equal(t, KindFloat, u.Kind)
	assert.Equal(t, int32(4), u.Size)

	// Locations come from the program, not from the uniform index.
	m, ok := p.Uniform("model_mat")
	require.True(t, ok)
	assert.Equal(t, dev.GetUniformLocation(p.ID(), "model_mat"), m.Location)
	assert.NotEqual(t, int32(0), m.Location)
}

func TestReflectionUnsupportedType(t *testing.T) {
	dev := gputest.New(gputest.ActiveUniform{Name: "volume", Size: 1, Type: gpu.Sampler3D})
	_, err := Link(dev, compileBoth(t, dev)...)

	var ue *UnsupportedUniformError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "volume", ue.Name)
	assert.Equal(t, uint32(gpu.Sampler3D), ue.Type)
	_, _, _, programs := dev.Live()
	assert.Zero(t, programs)
}

func TestReflectionTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", 600)
	dev := gputest.New(gputest.ActiveUniform{Name: long, Size: 1, Type: gpu.Float})
	p, err := Link(dev, compileBoth(t, dev)...)
	require.NoError(t, err)
	// The truncated name is unknown to the program, so there is no
	// location to record.
	assert.Empty(t, p.Uniforms())
}

func TestLookupTyped(t *testing.T) {
	dev := gputest.New(sceneUniforms...)
	p, err := Link(dev, compileBoth(t, dev)...)
	require.NoError(t, err)

	model, err := Lookup[Mat4](p, "model_mat")
	require.NoError(t, err)
	assert.Equal(t, "model_mat", model.Name)

	_, err = Lookup[Mat3](p, "model_mat")
	var me *TypeMismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindMat3, me.Want)
	assert.Equal(t, KindMat4, me.Have)

	_, err = Lookup[Float](p, "lamp.position")
	assert.ErrorIs(t, err, ErrNoUniform)

	p.Use()
	model.Set(mgl32.Translate3D(1, 2, 3))
	normal, err := Lookup[Mat3](p, "normal_mat")
	require.NoError(t, err)
	normal.Set(mgl32.Ident3())
	toggle, err := Lookup[Int](p, "use_normalmap")
	require.NoError(t, err)
	toggle.Set(1)
	sun, err := Lookup[Vec3](p, "sun.direction")
	require.NoError(t, err)
	sun.Set(mgl32.Vec3{0, -1, 1})
	sampler, err := Lookup[Sampler2D](p, "diffuse_map")
	require.NoError(t, err)
	sampler.Set(2)

	values := dev.Programs[p.ID()].Values
	want := mgl32.Translate3D(1, 2, 3)
	assert.Equal(t, want[:], values[model.Location])
	ident := mgl32.Ident3()
	assert.Equal(t, ident[:], values[normal.Location])
	assert.Equal(t, int32(1), values[toggle.Location])
	assert.Equal(t, [3]float32{0, -1, 1}, values[sun.Location])
	assert.Equal(t, int32(2), values[sampler.Location])
}

func TestLookupOptional(t *testing.T) {
	dev := gputest.New(sceneUniforms...)
	p, err := Link(dev, compileBoth(t, dev)...)
	require.NoError(t, err)

	pos, err := LookupOptional[Vec3](p, "lamp.position")
	require.NoError(t, err)
	assert.False(t, Definition(pos).Active())
	assert.Equal(t, int32(-1), pos.Location)
	assert.Equal(t, "lamp.position", pos.Name)

	p.Use()
	pos.Set(mgl32.Vec3{1, 1, 1})
	assert.Empty(t, dev.Programs[p.ID()].Values, "writes to an absent uniform are dropped")

	model, err := LookupOptional[Mat4](p, "model_mat")
	require.NoError(t, err)
	assert.True(t, Definition(model).Active())

	_, err = LookupOptional[Float](p, "model_mat")
	var me *TypeMismatchError
	assert.ErrorAs(t, err, &me, "a present uniform of the wrong type still fails")
}

func TestProgramReleaseOnce(t *testing.T) {
	dev := gputest.New()
	p, err := Link(dev, compileBoth(t, dev)...)
	require.NoError(t, err)
	id := p.ID()

	p.Release()
	p.Release()
	assert.True(t, dev.Programs[id].Deleted)
	assert.Zero(t, dev.DoubleDeletes)
	assert.Equal(t, 1, dev.CallCount("DeleteProgram"))
}

func TestLoadProgram(t *testing.T) {
	loader := assets.NewLoader(fstest.MapFS{
		"shaders/vert.glsl": {Data: []byte("vertex source")},
		"shaders/frag.glsl": {Data: []byte("fragment source")},
	})
	dev := gputest.New(sceneUniforms...)
	p, err := LoadProgram(dev, loader,
		Source{Vertex, "shaders/vert.glsl"},
		Source{Fragment, "shaders/frag.glsl"})
	require.NoError(t, err)
	assert.Len(t, p.Uniforms(), len(sceneUniforms))

	var sources []string
	for _, s := range dev.Shaders {
		sources = append(sources, s.Source)
	}
	assert.ElementsMatch(t, []string{"vertex source", "fragment source"}, sources)
}

func TestLoadProgramReleasesOnError(t *testing.T) {
	loader := assets.NewLoader(fstest.MapFS{
		"shaders/vert.glsl": {Data: []byte("vertex source")},
	})
	dev := gputest.New()
	_, err := LoadProgram(dev, loader,
		Source{Vertex, "shaders/vert.glsl"},
		Source{Fragment, "shaders/missing.glsl"})
	assert.ErrorIs(t, err, assets.ErrNotFound)
	for _, s := range dev.Shaders {
		assert.True(t, s.Deleted)
	}

	dev.CompileFunc = func(stage uint32, _ string) (bool, string) {
		return stage == gpu.VertexShader, "bad fragment"
	}
	loader = assets.NewLoader(fstest.MapFS{
		"a.glsl": {Data: []byte("a")},
		"b.glsl": {Data: []byte("b")},
	})
	_, err = LoadProgram(dev, loader, Source{Vertex, "a.glsl"}, Source{Fragment, "b.glsl"})
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "b.glsl")
	for _, s := range dev.Shaders {
		assert.True(t, s.Deleted)
	}
}
