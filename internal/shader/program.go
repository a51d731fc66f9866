package shader

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"darkest/internal/gpu"
)

// maxNameLength caps reflected uniform names, NUL included.
const maxNameLength = 512

// LinkError carries the info log of a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string { return "link program: " + e.Log }

// Program is a linked program and its reflected uniforms.
type Program struct {
	dev      gpu.Device
	id       uint32
	uniforms map[string]Uniform
}

// Link links shaders into a program and reflects its active uniforms.
//
// On success the program owns the shaders: they are detached and
// deleted before Link returns. On failure the shaders stay with the
// caller and the program object is deleted.
func Link(dev gpu.Device, shaders ...*Shader) (*Program, error) {
	if len(shaders) == 0 {
		return nil, &LinkError{Log: "no shaders"}
	}
	for _, s := range shaders {
		if s == nil || s.id == 0 {
			return nil, &LinkError{Log: "released shader"}
		}
	}

	id := dev.CreateProgram()
	for _, s := range shaders {
		dev.AttachShader(id, s.id)
	}
	dev.LinkProgram(id)
	for _, s := range shaders {
		dev.DetachShader(id, s.id)
	}

	if dev.GetProgramiv(id, gpu.LinkStatus) == gpu.False {
		log := infoLog(dev.GetProgramiv(id, gpu.InfoLogLength), func(n int32) string {
			return dev.GetProgramInfoLog(id, n)
		})
		dev.DeleteProgram(id)
		return nil, &LinkError{Log: log}
	}

	uniforms, err := reflectUniforms(dev, id)
	if err != nil {
		dev.DeleteProgram(id)
		return nil, err
	}
	for _, s := range shaders {
		s.Release()
	}
	slog.Debug("linked program", "program", id, "uniforms", len(uniforms))
	return &Program{dev: dev, id: id, uniforms: uniforms}, nil
}

// reflectUniforms enumerates the active uniforms of a linked program.
func reflectUniforms(dev gpu.Device, program uint32) (map[string]Uniform, error) {
	count := dev.GetProgramiv(program, gpu.ActiveUniforms)
	uniforms := make(map[string]Uniform, count)
	for i := range uint32(max(count, 0)) {
		name, size, xtype := dev.GetActiveUniform(program, i, maxNameLength)
		kind, ok := kindOf(xtype)
		if !ok {
			return nil, &UnsupportedUniformError{Name: name, Type: xtype}
		}
		// Arrays are reported by their first element.
		name = strings.TrimSuffix(name, "[0]")
		loc := dev.GetUniformLocation(program, name)
		if loc < 0 {
			// Members of uniform blocks have no location.
			slog.Debug("skipping uniform without location", "name", name)
			continue
		}
		uniforms[name] = Uniform{
			Definition: Definition{Location: loc, Name: name, Size: size, dev: dev},
			Kind:       kind,
		}
		slog.Debug("uniform", "name", name, "kind", kind, "size", size, "location", loc)
	}
	return uniforms, nil
}

// ID returns the GL program name, or 0 once released.
func (p *Program) ID() uint32 { return p.id }

// Use makes p the current program. Uniform writes and draws target it
// until another program is used.
func (p *Program) Use() { p.dev.UseProgram(p.id) }

// Uniform returns the reflected uniform called name. A trailing "[0]"
// is accepted for arrays.
func (p *Program) Uniform(name string) (Uniform, bool) {
	u, ok := p.uniforms[strings.TrimSuffix(name, "[0]")]
	return u, ok
}

// Uniforms lists the reflected uniforms sorted by name.
func (p *Program) Uniforms() []Uniform {
	names := slices.Sorted(maps.Keys(p.uniforms))
	out := make([]Uniform, len(names))
	for i, n := range names {
		out[i] = p.uniforms[n]
	}
	return out
}

// Release deletes the program. Further calls do nothing.
func (p *Program) Release() {
	if p.id == 0 {
		return
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
	p.uniforms = nil
}

// StringLoader supplies shader sources by path.
type StringLoader interface {
	LoadString(path string) (string, error)
}

// Source names the file holding one stage.
type Source struct {
	Stage Stage
	Path  string
}

// LoadProgram reads, compiles and links the given stages. Stages that
// compiled are released if a later step fails.
func LoadProgram(dev gpu.Device, loader StringLoader, sources ...Source) (*Program, error) {
	var shaders []*Shader
	release := func() {
		for _, s := range shaders {
			s.Release()
		}
	}
	for _, src := range sources {
		text, err := loader.LoadString(src.Path)
		if err != nil {
			release()
			return nil, fmt.Errorf("load %s shader: %w", src.Stage, err)
		}
		s, err := Compile(dev, text, src.Stage)
		if err != nil {
			release()
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		shaders = append(shaders, s)
	}
	p, err := Link(dev, shaders...)
	if err != nil {
		release()
		return nil, err
	}
	return p, nil
}
