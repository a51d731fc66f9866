// Package shader compiles and links GLSL programs and reflects their
// active uniforms into typed handles.
package shader

import (
	"fmt"
	"strings"

	"darkest/internal/gpu"
)

// Stage is a programmable pipeline stage.
type Stage uint32

const (
	Vertex   Stage = gpu.VertexShader
	Fragment Stage = gpu.FragmentShader
	Geometry Stage = gpu.GeometryShader
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Geometry:
		return "geometry"
	}
	return fmt.Sprintf("Stage(0x%x)", uint32(s))
}

// CompileError carries the info log of a stage that failed to compile.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s shader: %s", e.Stage, e.Log)
}

// Shader is a compiled stage. It is owned by the caller until a
// successful Link takes it over.
type Shader struct {
	dev   gpu.Device
	id    uint32
	Stage Stage
}

// Compile compiles source for stage. On failure the stage object is
// deleted and the error is a *CompileError.
func Compile(dev gpu.Device, source string, stage Stage) (*Shader, error) {
	id := dev.CreateShader(uint32(stage))
	dev.ShaderSource(id, source)
	dev.CompileShader(id)
	if dev.GetShaderiv(id, gpu.CompileStatus) == gpu.False {
		log := infoLog(dev.GetShaderiv(id, gpu.InfoLogLength), func(n int32) string {
			return dev.GetShaderInfoLog(id, n)
		})
		dev.DeleteShader(id)
		return nil, &CompileError{Stage: stage, Log: log}
	}
	return &Shader{dev: dev, id: id, Stage: stage}, nil
}

// ID returns the GL shader name, or 0 once released.
func (s *Shader) ID() uint32 { return s.id }

// Release deletes the stage object. Further calls do nothing.
func (s *Shader) Release() {
	if s.id == 0 {
		return
	}
	s.dev.DeleteShader(s.id)
	s.id = 0
}

// infoLog reads a log of the reported length, which counts the
// terminating NUL.
func infoLog(length int32, read func(int32) string) string {
	if length <= 0 {
		return "(no info log)"
	}
	return strings.TrimRight(read(length), "\x00\n ")
}
