// Command darkest is a small viewer for the rendering pipeline: a lit,
// textured floor with a normal-mapped cube spinning above it.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"darkest/internal/assets"
	"darkest/internal/config"
	"darkest/internal/gpu"
	"darkest/internal/gpu/gl41"
	"darkest/internal/graphics"
	"darkest/internal/input"
	"darkest/internal/pipeline"
	"darkest/internal/profiling"
	"darkest/internal/shader"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	// GL calls must come from the thread that made the context current.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("darkest", "err", err)
		os.Exit(1)
	}
}

func pipelineOptions(cfg config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.CullFace = cfg.Camera.CullFace
	opts.Sun = pipeline.DirLight{
		Intensity: cfg.Sun.Intensity,
		Direction: cfg.Sun.Direction,
		Ambient:   cfg.Sun.Ambient,
		Diffuse:   cfg.Sun.Diffuse,
		Specular:  cfg.Sun.Specular,
	}
	opts.Lamp = pipeline.PointLight{
		Position: cfg.Lamp.Position,
		Ambient:  cfg.Lamp.Ambient,
		Diffuse:  cfg.Lamp.Diffuse,
		Specular: cfg.Lamp.Specular,
	}
	return opts
}

func shaderSources(cfg config.Shaders) []shader.Source {
	return []shader.Source{
		{Stage: shader.Vertex, Path: cfg.Vertex},
		{Stage: shader.Fragment, Path: cfg.Fragment},
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := gl41.Init()
	if err != nil {
		return err
	}

	loader, err := assets.NewDirLoader(cfg.AssetRoot)
	if err != nil {
		return err
	}
	prog, err := shader.LoadProgram(dev, loader, shaderSources(cfg.Shaders)...)
	if err != nil {
		return err
	}
	p, err := pipeline.New(dev, prog, pipelineOptions(cfg))
	if err != nil {
		prog.Release()
		return err
	}
	defer p.Release()

	sc, err := loadScene(p, loader, cfg)
	if err != nil {
		return err
	}

	fbWidth, fbHeight := window.GetFramebufferSize()
	cam := graphics.NewCamera(fbWidth, fbHeight, cfg.Camera)
	p.SetViewport(fbWidth, fbHeight)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		p.SetViewport(width, height)
		cam.SetViewport(width, height)
	})

	keys := input.NewManager()
	keys.Attach(window)

	var watcher *shaderWatcher
	if cfg.Shaders.Watch {
		watcher, err = watchShaders(
			filepath.Join(cfg.AssetRoot, cfg.Shaders.Vertex),
			filepath.Join(cfg.AssetRoot, cfg.Shaders.Fragment),
		)
		if err != nil {
			slog.Warn("shader hot reload disabled", "err", err)
		} else {
			defer watcher.Close()
		}
	}

	var (
		orbiting   = true
		profile    bool
		lastReport time.Time
		last       = time.Now()
		clearColor = cfg.Camera.ClearColor
	)
	for !window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if keys.JustPressed(input.ActionQuit) {
			window.SetShouldClose(true)
		}
		if keys.JustPressed(input.ActionPauseOrbit) {
			orbiting = !orbiting
		}
		if keys.JustPressed(input.ActionToggleProfiling) {
			profile = !profile
		}
		reload := keys.JustPressed(input.ActionReloadShaders)
		if watcher != nil && watcher.Changed() {
			reload = true
		}
		if reload {
			reloadProgram(dev, loader, p, cfg.Shaders)
		}

		speed := cfg.Camera.OrbitSpeed * dt
		switch {
		case keys.IsActive(input.ActionOrbitLeft):
			cam.Orbit(-2*speed, 0)
		case keys.IsActive(input.ActionOrbitRight):
			cam.Orbit(2*speed, 0)
		case orbiting:
			cam.Orbit(speed, 0)
		}
		if keys.IsActive(input.ActionZoomIn) {
			cam.Zoom(1 - dt)
		}
		if keys.IsActive(input.ActionZoomOut) {
			cam.Zoom(1 + dt)
		}

		view := cam.ViewMatrix()
		p.SetView(view)
		p.SetProjection(cam.ProjectionMatrix())
		p.SetViewPos(cam.Position())
		if err := sc.update(p, view, dt); err != nil {
			return err
		}

		dev.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
		dev.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
		p.DrawAll()
		if code := dev.GetError(); code != gpu.NoError {
			slog.Debug("gl error", "err", gpu.ErrorString(code))
		}

		if profile && now.Sub(lastReport) >= time.Second {
			lastReport = now
			slog.Info("frame", "dt", mgl32.Round(dt*1000, 2), "top", profiling.TopN(3))
		}

		keys.PostUpdate()
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// reloadProgram relinks the configured stages and hands the result to
// the pipeline. Failures are logged and the running program is kept.
func reloadProgram(dev gpu.Device, loader *assets.Loader, p *pipeline.Pipeline, cfg config.Shaders) {
	prog, err := shader.LoadProgram(dev, loader, shaderSources(cfg)...)
	if err != nil {
		slog.Warn("shader reload failed", "err", err)
		return
	}
	if err := p.Reload(prog); err != nil {
		prog.Release()
		slog.Warn("shader reload failed", "err", err)
	}
}
