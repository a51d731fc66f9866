package assets

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"darkest/internal/s3tc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dds(t *testing.T, w, h int) []byte {
	t.Helper()
	img, err := s3tc.Solid(s3tc.DXT1, w, h, s3tc.DXT1Color(200, 100, 50))
	require.NoError(t, err)
	return s3tc.Encode(img)
}

func testLoader(t *testing.T) *Loader {
	return NewLoader(fstest.MapFS{
		"shaders/basic_vert.glsl": {Data: []byte("#version 410 core\nvoid main() {}\n")},
		"shaders/bad.glsl":        {Data: []byte("void\x00main")},
		"textures/diffuse.dds":    {Data: dds(t, 16, 16)},
		"textures/specular.dds":   {Data: dds(t, 16, 16)},
		"textures/normal.dds":     {Data: dds(t, 8, 8)},
		"textures/broken.dds":     {Data: []byte("not a texture")},
	})
}

func TestLoadString(t *testing.T) {
	l := testLoader(t)
	s, err := l.LoadString("shaders/basic_vert.glsl")
	require.NoError(t, err)
	assert.Contains(t, s, "#version 410 core")

	s, err = l.LoadString("shaders/../shaders/basic_vert.glsl")
	require.NoError(t, err)
	assert.NotEmpty(t, s)

	_, err = l.LoadString("shaders/bad.glsl")
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "shaders/bad.glsl", pe.Path)
}

func TestLoadMissing(t *testing.T) {
	l := testLoader(t)
	_, err := l.LoadBytes("textures/missing.dds")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "textures/missing.dds", pe.Path)
}

func TestLoadRejectsAbsoluteAndEscapingPaths(t *testing.T) {
	l := testLoader(t)
	_, err := l.LoadBytes("/etc/passwd")
	assert.ErrorIs(t, err, ErrAbsolutePath)

	_, err = l.LoadBytes("../outside.txt")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestLoadImageCaches(t *testing.T) {
	l := testLoader(t)
	a, err := l.LoadImage("textures/diffuse.dds")
	require.NoError(t, err)
	assert.Equal(t, 16, a.Width)
	assert.Equal(t, 5, a.Levels())

	b, err := l.LoadImage("./textures/diffuse.dds")
	require.NoError(t, err)
	assert.Same(t, a, b)

	l.Forget("textures/diffuse.dds")
	c, err := l.LoadImage("textures/diffuse.dds")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestLoadImageDecodeError(t *testing.T) {
	l := testLoader(t)
	_, err := l.LoadImage("textures/broken.dds")
	assert.ErrorIs(t, err, s3tc.ErrInvalidData)

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decode", pe.Op)
}

func TestLoadLightMaps(t *testing.T) {
	l := testLoader(t)
	basic, err := l.LoadBasicLightMaps("textures/diffuse.dds", "textures/specular.dds")
	require.NoError(t, err)
	assert.NotNil(t, basic.Diffuse)
	assert.NotNil(t, basic.Specular)

	nm, err := l.LoadNormalMappedLightMaps("textures/diffuse.dds", "textures/specular.dds", "textures/normal.dds")
	require.NoError(t, err)
	assert.Same(t, basic.Diffuse, nm.Diffuse)
	assert.Equal(t, 8, nm.Normal.Width)

	_, err = l.LoadNormalMappedLightMaps("textures/diffuse.dds", "textures/specular.dds", "textures/none.dds")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewDirLoader(t *testing.T) {
	_, err := NewDirLoader(t.TempDir() + "/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	l, err := NewDirLoader(t.TempDir())
	require.NoError(t, err)
	_, err = l.LoadBytes("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}
