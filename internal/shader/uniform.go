package shader

import (
	"errors"
	"fmt"

	"darkest/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the closed set of uniform types a Program reflects.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindUInt
	KindBool
	KindFloat
	KindDouble
	KindVec2
	KindVec3
	KindVec4
	KindIVec2
	KindIVec3
	KindIVec4
	KindMat2
	KindMat3
	KindMat4
	KindSampler2D
	KindSamplerCube
)

var kindNames = [...]string{
	KindInt:         "int",
	KindUInt:        "uint",
	KindBool:        "bool",
	KindFloat:       "float",
	KindDouble:      "double",
	KindVec2:        "vec2",
	KindVec3:        "vec3",
	KindVec4:        "vec4",
	KindIVec2:       "ivec2",
	KindIVec3:       "ivec3",
	KindIVec4:       "ivec4",
	KindMat2:        "mat2",
	KindMat3:        "mat3",
	KindMat4:        "mat4",
	KindSampler2D:   "sampler2D",
	KindSamplerCube: "samplerCube",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// kindOf maps a GL uniform type code to a Kind.
func kindOf(xtype uint32) (Kind, bool) {
	switch xtype {
	case gpu.Int:
		return KindInt, true
	case gpu.UnsignedInt:
		return KindUInt, true
	case gpu.Bool:
		return KindBool, true
	case gpu.Float:
		return KindFloat, true
	case gpu.Double:
		return KindDouble, true
	case gpu.FloatVec2:
		return KindVec2, true
	case gpu.FloatVec3:
		return KindVec3, true
	case gpu.FloatVec4:
		return KindVec4, true
	case gpu.IntVec2:
		return KindIVec2, true
	case gpu.IntVec3:
		return KindIVec3, true
	case gpu.IntVec4:
		return KindIVec4, true
	case gpu.FloatMat2:
		return KindMat2, true
	case gpu.FloatMat3:
		return KindMat3, true
	case gpu.FloatMat4:
		return KindMat4, true
	case gpu.Sampler2D:
		return KindSampler2D, true
	case gpu.SamplerCube:
		return KindSamplerCube, true
	}
	return 0, false
}

// Definition is what reflection learns about one active uniform.
type Definition struct {
	Location int32
	Name     string
	Size     int32

	dev gpu.Device
}

// Uniform is a reflected uniform and its kind.
type Uniform struct {
	Definition
	Kind Kind
}

var (
	// ErrNoUniform is returned by Lookup for names the program does not
	// use. Drivers drop uniforms that do not affect the output.
	ErrNoUniform = errors.New("shader: no active uniform")
)

// UnsupportedUniformError is returned by Link when a program declares a
// uniform whose type has no Kind.
type UnsupportedUniformError struct {
	Name string
	Type uint32
}

func (e *UnsupportedUniformError) Error() string {
	return fmt.Sprintf("shader: uniform %q has unsupported type 0x%x", e.Name, e.Type)
}

// TypeMismatchError is returned by Lookup when the requested handle type
// does not match the reflected kind.
type TypeMismatchError struct {
	Name string
	Want Kind
	Have Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("shader: uniform %q is %s, requested as %s", e.Name, e.Have, e.Want)
}

// Handle is the set of typed uniform handles.
type Handle interface {
	~struct {
		Location int32
		Name     string
		Size     int32

		dev gpu.Device
	}
	Kind() Kind
}

// Lookup returns the uniform called name as a handle of type T.
func Lookup[T Handle](p *Program, name string) (T, error) {
	var h T
	u, ok := p.Uniform(name)
	if !ok {
		return h, fmt.Errorf("%w %q", ErrNoUniform, name)
	}
	if u.Kind != h.Kind() {
		return h, &TypeMismatchError{Name: name, Want: h.Kind(), Have: u.Kind}
	}
	return T(u.Definition), nil
}

// LookupOptional is Lookup for uniforms a driver may have dropped
// because they do not affect the output. An absent name yields a
// handle with location -1, whose writes are ignored.
func LookupOptional[T Handle](p *Program, name string) (T, error) {
	h, err := Lookup[T](p, name)
	if errors.Is(err, ErrNoUniform) {
		return T(Definition{Location: -1, Name: name, dev: p.dev}), nil
	}
	return h, err
}

// Active reports whether writes through d reach the program.
func (d Definition) Active() bool { return d.Location >= 0 }

// Typed handles. Writes go to the program currently in use.
type (
	Int         Definition
	UInt        Definition
	Bool        Definition
	Float       Definition
	Double      Definition
	Vec2        Definition
	Vec3        Definition
	Vec4        Definition
	IVec2       Definition
	IVec3       Definition
	IVec4       Definition
	Mat2        Definition
	Mat3        Definition
	Mat4        Definition
	Sampler2D   Definition
	SamplerCube Definition
)

func (Int) Kind() Kind         { return KindInt }
func (UInt) Kind() Kind        { return KindUInt }
func (Bool) Kind() Kind        { return KindBool }
func (Float) Kind() Kind       { return KindFloat }
func (Double) Kind() Kind      { return KindDouble }
func (Vec2) Kind() Kind        { return KindVec2 }
func (Vec3) Kind() Kind        { return KindVec3 }
func (Vec4) Kind() Kind        { return KindVec4 }
func (IVec2) Kind() Kind       { return KindIVec2 }
func (IVec3) Kind() Kind       { return KindIVec3 }
func (IVec4) Kind() Kind       { return KindIVec4 }
func (Mat2) Kind() Kind        { return KindMat2 }
func (Mat3) Kind() Kind        { return KindMat3 }
func (Mat4) Kind() Kind        { return KindMat4 }
func (Sampler2D) Kind() Kind   { return KindSampler2D }
func (SamplerCube) Kind() Kind { return KindSamplerCube }

func (u Int) Set(v int32)      { u.dev.Uniform1i(u.Location, v) }
func (u UInt) Set(v uint32)    { u.dev.Uniform1ui(u.Location, v) }
func (u Float) Set(v float32)  { u.dev.Uniform1f(u.Location, v) }
func (u Double) Set(v float64) { u.dev.Uniform1d(u.Location, v) }

func (u Bool) Set(v bool) {
	var i int32
	if v {
		i = 1
	}
	u.dev.Uniform1i(u.Location, i)
}

func (u Vec2) Set(v mgl32.Vec2) { u.dev.Uniform2f(u.Location, v[0], v[1]) }
func (u Vec3) Set(v mgl32.Vec3) { u.dev.Uniform3f(u.Location, v[0], v[1], v[2]) }
func (u Vec4) Set(v mgl32.Vec4) { u.dev.Uniform4f(u.Location, v[0], v[1], v[2], v[3]) }

func (u IVec2) Set(x, y int32)       { u.dev.Uniform2i(u.Location, x, y) }
func (u IVec3) Set(x, y, z int32)    { u.dev.Uniform3i(u.Location, x, y, z) }
func (u IVec4) Set(x, y, z, w int32) { u.dev.Uniform4i(u.Location, x, y, z, w) }

func (u Mat2) Set(m mgl32.Mat2) { u.dev.UniformMatrix2fv(u.Location, 1, false, &m[0]) }
func (u Mat3) Set(m mgl32.Mat3) { u.dev.UniformMatrix3fv(u.Location, 1, false, &m[0]) }
func (u Mat4) Set(m mgl32.Mat4) { u.dev.UniformMatrix4fv(u.Location, 1, false, &m[0]) }

// Set points the sampler at a texture unit index (not a GL_TEXTUREi enum).
func (u Sampler2D) Set(unit int32) { u.dev.Uniform1i(u.Location, unit) }

// Set points the sampler at a texture unit index.
func (u SamplerCube) Set(unit int32) { u.dev.Uniform1i(u.Location, unit) }
