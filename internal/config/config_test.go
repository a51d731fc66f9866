package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
asset_root: /srv/assets
window:
  width: 640
camera:
  fov: 75
sun:
  direction: [1, -1, 0]
cube:
  normal: ""
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/assets", cfg.AssetRoot)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, float32(75), cfg.Camera.FOV)
	assert.Equal(t, [3]float32{1, -1, 0}, cfg.Sun.Direction)
	assert.Equal(t, float32(0.5), cfg.Sun.Intensity)
	assert.Empty(t, cfg.Cube.Normal)
	assert.Equal(t, Default().Shaders, cfg.Shaders)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":  "windw:\n  width: 10\n",
		"short vector": "lamp:\n  position: [1, 2]\n",
		"wrong type":   "window:\n  width: wide\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestClamp(t *testing.T) {
	cfg, err := Parse([]byte(`
window: {width: 1, height: 100000}
camera: {fov: 500, near: -1, far: 0, distance: 0, clear_color: [2, -1, 0.5, 1]}
sun: {intensity: -3}
`))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Window.Width)
	assert.Equal(t, 8192, cfg.Window.Height)
	assert.Equal(t, float32(120), cfg.Camera.FOV)
	assert.Equal(t, float32(0.01), cfg.Camera.Near)
	assert.Greater(t, cfg.Camera.Far, cfg.Camera.Near)
	assert.Equal(t, cfg.Camera.Near, cfg.Camera.Distance)
	assert.Equal(t, [4]float32{1, 0, 0.5, 1}, cfg.Camera.ClearColor)
	assert.Zero(t, cfg.Sun.Intensity)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "darkest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLevelFallsBackToInfo(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "darkest.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
