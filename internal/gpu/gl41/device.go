// Package gl41 implements gpu.Device on top of the go-gl OpenGL 4.1 core
// bindings.
package gl41

import (
	"log/slog"
	"strings"
	"unsafe"

	"darkest/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Device forwards every call to the current GL context.
type Device struct{}

var _ gpu.Device = (*Device)(nil)

// Init loads the GL function pointers for the current context and
// returns a Device bound to it.
func Init() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	slog.Info("OpenGL initialized",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	return &Device{}, nil
}

func (d *Device) GetError() uint32 { return gl.GetError() }

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

// readLog reads a NUL-terminated info log of the given length.
func readLog(length int32, read func(bufSize int32, buf *uint8)) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length+1)
	read(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *Device) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }

func (d *Device) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (d *Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (d *Device) GetShaderiv(shader uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (d *Device) GetShaderInfoLog(shader uint32, length int32) string {
	return readLog(length, func(n int32, buf *uint8) { gl.GetShaderInfoLog(shader, n, nil, buf) })
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (d *Device) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (d *Device) GetProgramInfoLog(program uint32, length int32) string {
	return readLog(length, func(n int32, buf *uint8) { gl.GetProgramInfoLog(program, n, nil, buf) })
}

func (d *Device) GetActiveUniform(program, index uint32, bufSize int32) (string, int32, uint32) {
	var (
		length int32
		size   int32
		xtype  uint32
	)
	buf := make([]byte, bufSize)
	gl.GetActiveUniform(program, index, bufSize, &length, &size, &xtype, &buf[0])
	return string(buf[:length]), size, xtype
}

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *Device) Uniform1ui(location int32, v uint32) { gl.Uniform1ui(location, v) }

func (d *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *Device) Uniform1d(location int32, v float64) { gl.Uniform1d(location, v) }

func (d *Device) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (d *Device) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (d *Device) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (d *Device) Uniform2i(location int32, x, y int32) { gl.Uniform2i(location, x, y) }

func (d *Device) Uniform3i(location int32, x, y, z int32) { gl.Uniform3i(location, x, y, z) }

func (d *Device) Uniform4i(location int32, x, y, z, w int32) { gl.Uniform4i(location, x, y, z, w) }

func (d *Device) UniformMatrix2fv(location int32, count int32, transpose bool, value *float32) {
	gl.UniformMatrix2fv(location, count, transpose, value)
}

func (d *Device) UniformMatrix3fv(location int32, count int32, transpose bool, value *float32) {
	gl.UniformMatrix3fv(location, count, transpose, value)
}

func (d *Device) UniformMatrix4fv(location int32, count int32, transpose bool, value *float32) {
	gl.UniformMatrix4fv(location, count, transpose, value)
}

func (d *Device) GenBuffers(buffers []uint32) {
	if len(buffers) == 0 {
		return
	}
	gl.GenBuffers(int32(len(buffers)), &buffers[0])
}

func (d *Device) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (d *Device) BufferData(target uint32, data []byte, usage uint32) {
	gl.BufferData(target, len(data), ptr(data), usage)
}

func (d *Device) DeleteBuffers(buffers []uint32) {
	if len(buffers) == 0 {
		return
	}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
}

func (d *Device) GenVertexArrays(arrays []uint32) {
	if len(arrays) == 0 {
		return
	}
	gl.GenVertexArrays(int32(len(arrays)), &arrays[0])
}

func (d *Device) BindVertexArray(array uint32) { gl.BindVertexArray(array) }

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (d *Device) DeleteVertexArrays(arrays []uint32) {
	if len(arrays) == 0 {
		return
	}
	gl.DeleteVertexArrays(int32(len(arrays)), &arrays[0])
}

func (d *Device) GenTextures(textures []uint32) {
	if len(textures) == 0 {
		return
	}
	gl.GenTextures(int32(len(textures)), &textures[0])
}

func (d *Device) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (d *Device) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (d *Device) CompressedTexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, data []byte) {
	gl.CompressedTexImage2D(target, level, internalFormat, width, height, 0, int32(len(data)), ptr(data))
}

func (d *Device) DeleteTextures(textures []uint32) {
	if len(textures) == 0 {
		return
	}
	gl.DeleteTextures(int32(len(textures)), &textures[0])
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(int(offset)))
}

func (d *Device) Enable(capability uint32) { gl.Enable(capability) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(mask uint32) { gl.Clear(mask) }
