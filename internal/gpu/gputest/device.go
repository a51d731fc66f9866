// Package gputest provides an in-memory gpu.Device that records the
// calls made against it, for tests that cannot create a GL context.
package gputest

import (
	"fmt"
	"slices"
	"strings"
	"unsafe"

	"darkest/internal/gpu"
)

// ActiveUniform describes one uniform a linked program reports.
type ActiveUniform struct {
	Name string
	Size int32
	Type uint32
}

type Shader struct {
	Stage    uint32
	Source   string
	Compiled bool
	Log      string
	Deleted  bool
}

type Program struct {
	Attached []uint32
	Linked   bool
	Log      string
	Uniforms []ActiveUniform
	Deleted  bool

	// Values holds the last value written to each location.
	Values map[int32]any
}

type Buffer struct {
	Target  uint32
	Data    []byte
	Usage   uint32
	Deleted bool
}

type Attrib struct {
	Buffer     uint32
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Enabled    bool
}

type VertexArray struct {
	Attribs       map[uint32]*Attrib
	ElementBuffer uint32
	Deleted       bool
}

type Level struct {
	Format uint32
	Width  int32
	Height int32
	Data   []byte
}

type Texture struct {
	// Unit is the texture unit active when the texture was first bound.
	Unit    uint32
	Levels  map[int32]Level
	Params  map[uint32]int32
	Deleted bool
}

// Draw is a snapshot of the state an indexed draw call saw.
type Draw struct {
	Program       uint32
	VertexArray   uint32
	ElementBuffer uint32
	Count         int32
	Type          uint32
	// Textures maps texture unit (gpu.Texture0+n) to bound texture.
	Textures      map[uint32]uint32
	// Uniforms maps uniform name to the value set at draw time.
	Uniforms      map[string]any
}

// Device implements gpu.Device in memory.
type Device struct {
	// CompileFunc decides whether a shader compiles. nil accepts all.
	CompileFunc func(stage uint32, source string) (ok bool, log string)
	// LinkFunc decides whether a program links. nil accepts all.
	LinkFunc    func(shaders []*Shader) (ok bool, log string)
	// Uniforms is what every successfully linked program reports.
	Uniforms    []ActiveUniform

	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Buffers      map[uint32]*Buffer
	VertexArrays map[uint32]*VertexArray
	Textures     map[uint32]*Texture
	Draws        []Draw

	// Calls is the ordered list of entry points invoked.
	Calls []string

	// DoubleDeletes counts deletions of objects already deleted.
	DoubleDeletes int

	// errors holds the flags GetError will report, oldest first.
	errors []uint32
	// raise and starve are one-shot failures armed by InjectError and
	// FailAllocation, keyed by entry point.
	raise  map[string]uint32
	starve map[string]bool

	next          uint32
	program       uint32
	arrayBuffer   uint32
	vertexArray   uint32
	activeUnit    uint32
	unitTextures  map[uint32]uint32
	capabilities  map[uint32]bool
	elementBuffer uint32
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty Device whose linked programs report uniforms.
func New(uniforms ...ActiveUniform) *Device {
	return &Device{
		Uniforms:     uniforms,
		Shaders:      make(map[uint32]*Shader),
		Programs:     make(map[uint32]*Program),
		Buffers:      make(map[uint32]*Buffer),
		VertexArrays: make(map[uint32]*VertexArray),
		Textures:     make(map[uint32]*Texture),
		activeUnit:   gpu.Texture0,
		unitTextures: make(map[uint32]uint32),
		capabilities: make(map[uint32]bool),
		raise:        make(map[string]uint32),
		starve:       make(map[string]bool),
	}
}

func (d *Device) call(name string) {
	d.Calls = append(d.Calls, name)
	if code, ok := d.raise[name]; ok {
		delete(d.raise, name)
		d.errors = append(d.errors, code)
	}
}

// InjectError makes the next call to the named entry point raise code,
// reported by a later GetError.
func (d *Device) InjectError(call string, code uint32) { d.raise[call] = code }

// FailAllocation makes the next call to the named Gen* entry point leave
// every name zero, as a driver out of object names would.
func (d *Device) FailAllocation(call string) { d.starve[call] = true }

// allocate fills names with fresh ids unless call was starved.
func (d *Device) allocate(call string, names []uint32) bool {
	d.call(call)
	if d.starve[call] {
		delete(d.starve, call)
		clear(names)
		return false
	}
	for i := range names {
		names[i] = d.id()
	}
	return true
}

func (d *Device) GetError() uint32 {
	d.call("GetError")
	if len(d.errors) == 0 {
		return gpu.NoError
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// CallCount returns how many times the named entry point was invoked.
func (d *Device) CallCount(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// Enabled reports whether Enable was called with capability.
func (d *Device) Enabled(capability uint32) bool { return d.capabilities[capability] }

// CurrentProgram returns the program bound by the last UseProgram.
func (d *Device) CurrentProgram() uint32 { return d.program }

// Live reports how many objects of every kind are still allocated.
func (d *Device) Live() (buffers, arrays, textures, programs int) {
	for _, b := range d.Buffers {
		if !b.Deleted {
			buffers++
		}
	}
	for _, a := range d.VertexArrays {
		if !a.Deleted {
			arrays++
		}
	}
	for _, t := range d.Textures {
		if !t.Deleted {
			textures++
		}
	}
	for _, p := range d.Programs {
		if !p.Deleted {
			programs++
		}
	}
	return
}

// Location returns the location the fake assigns to a uniform name,
// or -1. Locations are deliberately not equal to uniform indices.
func (d *Device) location(p *Program, name string) int32 {
	for i, u := range p.Uniforms {
		if u.Name == name || strings.TrimSuffix(u.Name, "[0]") == name {
			return int32(i) + 16
		}
	}
	return -1
}

func (d *Device) CreateShader(stage uint32) uint32 {
	d.call("CreateShader")
	id := d.id()
	d.Shaders[id] = &Shader{Stage: stage}
	return id
}

func (d *Device) ShaderSource(shader uint32, source string) {
	d.call("ShaderSource")
	if s, ok := d.Shaders[shader]; ok {
		s.Source = source
	}
}

func (d *Device) CompileShader(shader uint32) {
	d.call("CompileShader")
	s, ok := d.Shaders[shader]
	if !ok {
		return
	}
	s.Compiled, s.Log = true, ""
	if d.CompileFunc != nil {
		s.Compiled, s.Log = d.CompileFunc(s.Stage, s.Source)
	}
}

func (d *Device) GetShaderiv(shader uint32, pname uint32) int32 {
	d.call("GetShaderiv")
	s, ok := d.Shaders[shader]
	if !ok {
		return 0
	}
	switch pname {
	case gpu.CompileStatus:
		if s.Compiled {
			return gpu.True
		}
		return gpu.False
	case gpu.InfoLogLength:
		if s.Log == "" {
			return 0
		}
		return int32(len(s.Log) + 1)
	}
	return 0
}

func (d *Device) GetShaderInfoLog(shader uint32, length int32) string {
	d.call("GetShaderInfoLog")
	s, ok := d.Shaders[shader]
	if !ok {
		return ""
	}
	return truncate(s.Log, int(length)-1)
}

func truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

func (d *Device) DeleteShader(shader uint32) {
	d.call("DeleteShader")
	if s, ok := d.Shaders[shader]; ok {
		if s.Deleted {
			d.DoubleDeletes++
		}
		s.Deleted = true
	}
}

func (d *Device) CreateProgram() uint32 {
	d.call("CreateProgram")
	id := d.id()
	d.Programs[id] = &Program{Values: make(map[int32]any)}
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	d.call("AttachShader")
	if p, ok := d.Programs[program]; ok {
		p.Attached = append(p.Attached, shader)
	}
}

func (d *Device) DetachShader(program, shader uint32) {
	d.call("DetachShader")
	if p, ok := d.Programs[program]; ok {
		if i := slices.Index(p.Attached, shader); i >= 0 {
			p.Attached = slices.Delete(p.Attached, i, i+1)
		}
	}
}

func (d *Device) LinkProgram(program uint32) {
	d.call("LinkProgram")
	p, ok := d.Programs[program]
	if !ok {
		return
	}
	shaders := make([]*Shader, 0, len(p.Attached))
	for _, id := range p.Attached {
		shaders = append(shaders, d.Shaders[id])
	}
	p.Linked, p.Log = true, ""
	for _, s := range shaders {
		if s == nil || !s.Compiled {
			p.Linked, p.Log = false, "error: attached shader is not compiled"
		}
	}
	if p.Linked && d.LinkFunc != nil {
		p.Linked, p.Log = d.LinkFunc(shaders)
	}
	if p.Linked {
		p.Uniforms = slices.Clone(d.Uniforms)
	}
}

func (d *Device) GetProgramiv(program uint32, pname uint32) int32 {
	d.call("GetProgramiv")
	p, ok := d.Programs[program]
	if !ok {
		return 0
	}
	switch pname {
	case gpu.LinkStatus:
		if p.Linked {
			return gpu.True
		}
		return gpu.False
	case gpu.InfoLogLength:
		if p.Log == "" {
			return 0
		}
		return int32(len(p.Log) + 1)
	case gpu.ActiveUniforms:
		return int32(len(p.Uniforms))
	}
	return 0
}

func (d *Device) GetProgramInfoLog(program uint32, length int32) string {
	d.call("GetProgramInfoLog")
	p, ok := d.Programs[program]
	if !ok {
		return ""
	}
	return truncate(p.Log, int(length)-1)
}

func (d *Device) GetActiveUniform(program, index uint32, bufSize int32) (string, int32, uint32) {
	d.call("GetActiveUniform")
	p, ok := d.Programs[program]
	if !ok || int(index) >= len(p.Uniforms) {
		return "", 0, 0
	}
	u := p.Uniforms[index]
	return truncate(u.Name, int(bufSize)-1), u.Size, u.Type
}

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	d.call("GetUniformLocation")
	p, ok := d.Programs[program]
	if !ok {
		return -1
	}
	return d.location(p, name)
}

func (d *Device) UseProgram(program uint32) {
	d.call("UseProgram")
	d.program = program
}

func (d *Device) DeleteProgram(program uint32) {
	d.call("DeleteProgram")
	if p, ok := d.Programs[program]; ok {
		if p.Deleted {
			d.DoubleDeletes++
		}
		p.Deleted = true
	}
	if d.program == program {
		d.program = 0
	}
}

func (d *Device) set(name string, location int32, v any) {
	d.call(name)
	if location < 0 {
		return
	}
	p, ok := d.Programs[d.program]
	if !ok {
		panic(fmt.Sprintf("gputest: %s(%d) with no program in use", name, location))
	}
	p.Values[location] = v
}

func (d *Device) Uniform1i(location int32, v int32)   { d.set("Uniform1i", location, v) }
func (d *Device) Uniform1ui(location int32, v uint32) { d.set("Uniform1ui", location, v) }
func (d *Device) Uniform1f(location int32, v float32) { d.set("Uniform1f", location, v) }
func (d *Device) Uniform1d(location int32, v float64) { d.set("Uniform1d", location, v) }

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.set("Uniform2f", location, [2]float32{x, y})
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.set("Uniform3f", location, [3]float32{x, y, z})
}

func (d *Device) Uniform4f(location int32, x, y, z, w float32) {
	d.set("Uniform4f", location, [4]float32{x, y, z, w})
}

func (d *Device) Uniform2i(location int32, x, y int32) {
	d.set("Uniform2i", location, [2]int32{x, y})
}

func (d *Device) Uniform3i(location int32, x, y, z int32) {
	d.set("Uniform3i", location, [3]int32{x, y, z})
}

func (d *Device) Uniform4i(location int32, x, y, z, w int32) {
	d.set("Uniform4i", location, [4]int32{x, y, z, w})
}

func matrix(n int, count int32, value *float32) []float32 {
	return slices.Clone(unsafe.Slice(value, n*n*int(count)))
}

func (d *Device) UniformMatrix2fv(location int32, count int32, transpose bool, value *float32) {
	d.set("UniformMatrix2fv", location, matrix(2, count, value))
}

func (d *Device) UniformMatrix3fv(location int32, count int32, transpose bool, value *float32) {
	d.set("UniformMatrix3fv", location, matrix(3, count, value))
}

func (d *Device) UniformMatrix4fv(location int32, count int32, transpose bool, value *float32) {
	d.set("UniformMatrix4fv", location, matrix(4, count, value))
}

func (d *Device) GenBuffers(buffers []uint32) {
	if !d.allocate("GenBuffers", buffers) {
		return
	}
	for _, id := range buffers {
		d.Buffers[id] = &Buffer{}
	}
}

func (d *Device) BindBuffer(target, buffer uint32) {
	d.call("BindBuffer")
	switch target {
	case gpu.ArrayBuffer:
		d.arrayBuffer = buffer
	case gpu.ElementArrayBuffer:
		d.elementBuffer = buffer
		if va, ok := d.VertexArrays[d.vertexArray]; ok {
			va.ElementBuffer = buffer
		}
	}
}

func (d *Device) BufferData(target uint32, data []byte, usage uint32) {
	d.call("BufferData")
	var id uint32
	switch target {
	case gpu.ArrayBuffer:
		id = d.arrayBuffer
	case gpu.ElementArrayBuffer:
		id = d.elementBuffer
	}
	b, ok := d.Buffers[id]
	if !ok {
		panic(fmt.Sprintf("gputest: BufferData on unbound target 0x%x", target))
	}
	b.Target, b.Data, b.Usage = target, slices.Clone(data), usage
}

func (d *Device) DeleteBuffers(buffers []uint32) {
	d.call("DeleteBuffers")
	for _, id := range buffers {
		if b, ok := d.Buffers[id]; ok {
			if b.Deleted {
				d.DoubleDeletes++
			}
			b.Deleted = true
		}
	}
}

func (d *Device) GenVertexArrays(arrays []uint32) {
	if !d.allocate("GenVertexArrays", arrays) {
		return
	}
	for _, id := range arrays {
		d.VertexArrays[id] = &VertexArray{Attribs: make(map[uint32]*Attrib)}
	}
}

func (d *Device) BindVertexArray(array uint32) {
	d.call("BindVertexArray")
	d.vertexArray = array
	d.elementBuffer = 0
	if va, ok := d.VertexArrays[array]; ok {
		d.elementBuffer = va.ElementBuffer
	}
}

func (d *Device) attrib(index uint32) *Attrib {
	va, ok := d.VertexArrays[d.vertexArray]
	if !ok {
		panic("gputest: vertex attribute call with no vertex array bound")
	}
	a, ok := va.Attribs[index]
	if !ok {
		a = &Attrib{}
		va.Attribs[index] = a
	}
	return a
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.call("EnableVertexAttribArray")
	d.attrib(index).Enabled = true
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	d.call("VertexAttribPointer")
	a := d.attrib(index)
	a.Buffer = d.arrayBuffer
	a.Size, a.Type, a.Normalized, a.Stride, a.Offset = size, xtype, normalized, stride, offset
}

func (d *Device) DeleteVertexArrays(arrays []uint32) {
	d.call("DeleteVertexArrays")
	for _, id := range arrays {
		if va, ok := d.VertexArrays[id]; ok {
			if va.Deleted {
				d.DoubleDeletes++
			}
			va.Deleted = true
		}
	}
}

func (d *Device) GenTextures(textures []uint32) {
	if !d.allocate("GenTextures", textures) {
		return
	}
	for _, id := range textures {
		d.Textures[id] = &Texture{
			Levels: make(map[int32]Level),
			Params: make(map[uint32]int32),
		}
	}
}

func (d *Device) ActiveTexture(unit uint32) {
	d.call("ActiveTexture")
	d.activeUnit = unit
}

func (d *Device) BindTexture(target, texture uint32) {
	d.call("BindTexture")
	d.unitTextures[d.activeUnit] = texture
	if t, ok := d.Textures[texture]; ok && t.Unit == 0 {
		t.Unit = d.activeUnit
	}
}

func (d *Device) bound() *Texture {
	t, ok := d.Textures[d.unitTextures[d.activeUnit]]
	if !ok {
		panic("gputest: texture call with no texture bound")
	}
	return t
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	d.call("TexParameteri")
	d.bound().Params[pname] = param
}

func (d *Device) CompressedTexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, data []byte) {
	d.call("CompressedTexImage2D")
	d.bound().Levels[level] = Level{
		Format: internalFormat,
		Width:  width,
		Height: height,
		Data:   slices.Clone(data),
	}
}

func (d *Device) DeleteTextures(textures []uint32) {
	d.call("DeleteTextures")
	for _, id := range textures {
		if t, ok := d.Textures[id]; ok {
			if t.Deleted {
				d.DoubleDeletes++
			}
			t.Deleted = true
		}
	}
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	d.call("DrawElements")
	draw := Draw{
		Program:       d.program,
		VertexArray:   d.vertexArray,
		ElementBuffer: d.elementBuffer,
		Count:         count,
		Type:          xtype,
		Textures:      make(map[uint32]uint32, len(d.unitTextures)),
		Uniforms:      make(map[string]any),
	}
	for unit, tex := range d.unitTextures {
		draw.Textures[unit] = tex
	}
	if p, ok := d.Programs[d.program]; ok {
		for _, u := range p.Uniforms {
			name := strings.TrimSuffix(u.Name, "[0]")
			if v, ok := p.Values[d.location(p, name)]; ok {
				draw.Uniforms[name] = v
			}
		}
	}
	d.Draws = append(d.Draws, draw)
}

func (d *Device) Enable(capability uint32) {
	d.call("Enable")
	d.capabilities[capability] = true
}

func (d *Device) Viewport(x, y, width, height int32) { d.call("Viewport") }

func (d *Device) ClearColor(r, g, b, a float32) { d.call("ClearColor") }

func (d *Device) Clear(mask uint32) { d.call("Clear") }
