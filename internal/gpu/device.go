// Package gpu defines the subset of the OpenGL API that the renderer
// core talks to.
//
// Resource code never calls the GL bindings directly: it goes through a
// Device so that upload, reflection and draw sequencing can be exercised
// without a live context. Enum values are the ones from the OpenGL
// registry, so a Device implementation passes them through unchanged.
package gpu

import "fmt"

// Device is the graphics-API boundary.
//
// All methods must be called from the goroutine that owns the GL
// context. Names and argument order follow the GL entry points.
type Device interface {
	// Shaders
	CreateShader(stage uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32) int32
	// GetShaderInfoLog reads at most length bytes of the info log.
	GetShaderInfoLog(shader uint32, length int32) string
	DeleteShader(shader uint32)

	// Programs
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetProgramInfoLog(program uint32, length int32) string
	// GetActiveUniform returns the name (truncated to bufSize-1 bytes),
	// array size and type code of the uniform at index.
	GetActiveUniform(program, index uint32, bufSize int32) (name string, size int32, xtype uint32)
	GetUniformLocation(program uint32, name string) int32
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// Uniform writes target the program bound by UseProgram.
	Uniform1i(location int32, v int32)
	Uniform1ui(location int32, v uint32)
	Uniform1f(location int32, v float32)
	Uniform1d(location int32, v float64)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	Uniform2i(location int32, x, y int32)
	Uniform3i(location int32, x, y, z int32)
	Uniform4i(location int32, x, y, z, w int32)
	UniformMatrix2fv(location int32, count int32, transpose bool, value *float32)
	UniformMatrix3fv(location int32, count int32, transpose bool, value *float32)
	UniformMatrix4fv(location int32, count int32, transpose bool, value *float32)

	// Buffers and vertex arrays
	GenBuffers(buffers []uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []byte, usage uint32)
	DeleteBuffers(buffers []uint32)
	GenVertexArrays(arrays []uint32)
	BindVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	DeleteVertexArrays(arrays []uint32)

	// Textures
	GenTextures(textures []uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	CompressedTexImage2D(target uint32, level int32, internalFormat uint32, width, height int32, data []byte)
	DeleteTextures(textures []uint32)

	// GetError returns and clears one pending error flag, or NoError.
	GetError() uint32

	// Drawing and state
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
	Enable(capability uint32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
}

// Error flags returned by GetError.
const (
	NoError          = 0
	InvalidEnum      = 0x0500
	InvalidValue     = 0x0501
	InvalidOperation = 0x0502
	OutOfMemory      = 0x0505
)

// ErrorString names an error flag.
func ErrorString(code uint32) string {
	switch code {
	case NoError:
		return "GL_NO_ERROR"
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	}
	return fmt.Sprintf("GL error 0x%04x", code)
}

// Boolean results of Get*iv queries.
const (
	False = 0
	True  = 1
)

// Shader stages.
const (
	FragmentShader = 0x8B30
	VertexShader   = 0x8B31
	GeometryShader = 0x8DD9
)

// Shader and program queries.
const (
	CompileStatus  = 0x8B81
	LinkStatus     = 0x8B82
	InfoLogLength  = 0x8B84
	ActiveUniforms = 0x8B86
)

// Component and uniform type codes.
const (
	Int         = 0x1404
	UnsignedInt = 0x1405
	Float       = 0x1406
	Double      = 0x140A

	FloatVec2 = 0x8B50
	FloatVec3 = 0x8B51
	FloatVec4 = 0x8B52
	IntVec2   = 0x8B53
	IntVec3   = 0x8B54
	IntVec4   = 0x8B55
	Bool      = 0x8B56
	FloatMat2 = 0x8B5A
	FloatMat3 = 0x8B5B
	FloatMat4 = 0x8B5C

	Sampler2D   = 0x8B5E
	Sampler3D   = 0x8B5F
	SamplerCube = 0x8B60
)

// Buffer targets and usage.
const (
	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	StaticDraw         = 0x88E4
)

// Textures.
const (
	Texture2D        = 0x0DE1
	Texture0         = 0x84C0
	TextureMagFilter = 0x2800
	TextureMinFilter = 0x2801
	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	TextureBaseLevel = 0x813C
	TextureMaxLevel  = 0x813D

	Linear             = 0x2601
	LinearMipmapLinear = 0x2703
	MirroredRepeat     = 0x8370
	CompressedRGBDXT1  = 0x83F0
	CompressedRGBADXT3 = 0x83F2
	CompressedRGBADXT5 = 0x83F3
)

// Drawing and state.
const (
	Triangles      = 0x0004
	DepthTest      = 0x0B71
	CullFace       = 0x0B44
	DepthBufferBit = 0x00000100
	ColorBufferBit = 0x00004000
)
