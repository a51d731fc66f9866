// Package config holds the viewer configuration, read from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Window configures the GL window.
type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// Shaders names the program stages, relative to the asset root.
type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
	// Watch relinks the program when a stage file changes on disk.
	Watch bool `yaml:"watch"`
}

// Material names the DDS light maps of one resource. Normal is empty
// for basic materials.
type Material struct {
	Diffuse  string `yaml:"diffuse"`
	Specular string `yaml:"specular"`
	Normal   string `yaml:"normal,omitempty"`
}

// Camera configures the orbiting viewer camera.
type Camera struct {
	FOV        float32    `yaml:"fov"` // degrees
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Distance   float32    `yaml:"distance"`
	OrbitSpeed float32    `yaml:"orbit_speed"` // radians per second
	ClearColor [4]float32 `yaml:"clear_color"`
	CullFace   bool       `yaml:"cull_face"`
}

// Sun configures the directional light.
type Sun struct {
	Intensity float32    `yaml:"intensity"`
	Direction [3]float32 `yaml:"direction"`
	Ambient   [3]float32 `yaml:"ambient"`
	Diffuse   [3]float32 `yaml:"diffuse"`
	Specular  [3]float32 `yaml:"specular"`
}

// Lamp configures the point light.
type Lamp struct {
	Position [3]float32 `yaml:"position"`
	Ambient  [3]float32 `yaml:"ambient"`
	Diffuse  [3]float32 `yaml:"diffuse"`
	Specular [3]float32 `yaml:"specular"`
}

// Config is the whole viewer configuration.
type Config struct {
	AssetRoot string   `yaml:"asset_root"`
	LogLevel  string   `yaml:"log_level"`
	Window    Window   `yaml:"window"`
	Shaders   Shaders  `yaml:"shaders"`
	Camera    Camera   `yaml:"camera"`
	Sun       Sun      `yaml:"sun"`
	Lamp      Lamp     `yaml:"lamp"`
	Plane     Material `yaml:"plane"`
	Cube      Material `yaml:"cube"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	half := [3]float32{0.5, 0.5, 0.5}
	return Config{
		AssetRoot: "assets",
		LogLevel:  "info",
		Window: Window{
			Width:  1024,
			Height: 768,
			Title:  "darkest",
			VSync:  true,
		},
		Shaders: Shaders{
			Vertex:   "shaders/basic_vert.glsl",
			Fragment: "shaders/basic_frag.glsl",
			Watch:    true,
		},
		Camera: Camera{
			FOV:        60,
			Near:       0.1,
			Far:        100,
			Distance:   4,
			OrbitSpeed: 0.5,
			ClearColor: [4]float32{0.05, 0.05, 0.08, 1},
		},
		Sun: Sun{
			Intensity: 0.5,
			Direction: [3]float32{0, -1, 1},
			Ambient:   half,
			Diffuse:   half,
			Specular:  half,
		},
		Lamp: Lamp{
			Position: [3]float32{1, 1, 1},
			Ambient:  half,
			Diffuse:  half,
			Specular: half,
		},
		Plane: Material{
			Diffuse:  "textures/plane_diffuse.dds",
			Specular: "textures/plane_specular.dds",
		},
		Cube: Material{
			Diffuse:  "textures/cube_diffuse.dds",
			Specular: "textures/cube_specular.dds",
			Normal:   "textures/cube_normal.dds",
		},
	}
}

// Parse decodes YAML over the defaults and clamps the result. Unknown
// keys are an error; an empty document yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

// Load reads the configuration at path. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		cfg.clamp()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("loaded config", "path", path)
	return cfg, nil
}

// clamp keeps values in ranges the renderer can use.
func (c *Config) clamp() {
	c.Window.Width = clampInt(c.Window.Width, 64, 8192)
	c.Window.Height = clampInt(c.Window.Height, 64, 8192)
	c.Camera.FOV = clampFloat(c.Camera.FOV, 10, 120)
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.01
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = c.Camera.Near * 1000
	}
	if c.Camera.Distance < c.Camera.Near {
		c.Camera.Distance = c.Camera.Near
	}
	for i := range c.Camera.ClearColor {
		c.Camera.ClearColor[i] = clampFloat(c.Camera.ClearColor[i], 0, 1)
	}
	c.Sun.Intensity = clampFloat(c.Sun.Intensity, 0, 10)
}

func clampInt(v, lo, hi int) int { return min(max(v, lo), hi) }

func clampFloat(v, lo, hi float32) float32 { return min(max(v, lo), hi) }

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
