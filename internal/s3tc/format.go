package s3tc

import (
	"fmt"

	"darkest/internal/gpu"
)

// Format is an S3TC block compression format.
type Format uint8

const (
	DXT1 Format = iota + 1
	DXT3
	DXT5
)

// ParseFormat maps a container FourCC to a Format. Unknown codes are an
// error: the caller asked for data this renderer cannot sample.
func ParseFormat(fourCC string) (Format, error) {
	switch fourCC {
	case "DXT1":
		return DXT1, nil
	case "DXT3":
		return DXT3, nil
	case "DXT5":
		return DXT5, nil
	}
	return 0, &DecodeError{Err: ErrUnsupportedFormat, Reason: fmt.Sprintf("fourCC %q", fourCC)}
}

// BlockSize is the number of bytes per 4×4 texel block.
func (f Format) BlockSize() int {
	if f == DXT1 {
		return 8
	}
	return 16
}

// InternalFormat is the GL compressed internal format for f.
func (f Format) InternalFormat() uint32 {
	switch f {
	case DXT1:
		return gpu.CompressedRGBDXT1
	case DXT3:
		return gpu.CompressedRGBADXT3
	case DXT5:
		return gpu.CompressedRGBADXT5
	}
	panic(fmt.Sprintf("s3tc: invalid format %d", f))
}

func (f Format) String() string {
	switch f {
	case DXT1:
		return "DXT1"
	case DXT3:
		return "DXT3"
	case DXT5:
		return "DXT5"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}
