package resource

import (
	"unsafe"

	"darkest/internal/gpu"
)

// Vertex attribute locations shared with the shaders.
const (
	LocationPosition  = 0
	LocationNormal    = 1
	LocationUV        = 2
	LocationTangent   = 3
	LocationBitangent = 4
)

// Texture units each light-map channel is bound to.
const (
	UnitDiffuse  = 0
	UnitSpecular = 1
	UnitNormal   = 2
)

// Sampling holds the texture parameters applied at upload.
type Sampling struct {
	WrapS     int32
	WrapT     int32
	MinFilter int32
	MagFilter int32
}

// DefaultSampling mirrors at the edges and filters trilinearly across
// the uploaded mipmap levels.
var DefaultSampling = Sampling{
	WrapS:     gpu.MirroredRepeat,
	WrapT:     gpu.MirroredRepeat,
	MinFilter: gpu.LinearMipmapLinear,
	MagFilter: gpu.Linear,
}

// attribute is one non-interleaved float stream bound to a location.
type attribute struct {
	location   uint32
	components int32
	data       []float32
}

// bytesOf reinterprets s as its raw bytes without copying.
func bytesOf[T float32 | uint32](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}
