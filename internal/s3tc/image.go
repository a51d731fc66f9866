// Package s3tc decodes DDS containers holding S3TC (DXT) block-compressed
// images together with their mipmap chain.
//
// Decoding never decompresses texels: the payload is kept as-is so that
// each level can be handed to the GPU directly.
package s3tc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// Container layout. All fields are little-endian u32 unless noted.
const (
	HeaderSize = 128

	magic             = "DDS "
	offsetWidth       = 12
	offsetHeight      = 16
	offsetLinearSize  = 20
	offsetMipmapCount = 28
	offsetFourCC      = 84 // 4 ASCII bytes

	// MaxDimension bounds width and height. It is well above what any
	// GL implementation samples and keeps level sizes far from int
	// overflow.
	MaxDimension = 1 << 16
)

var (
	// ErrInvalidData is returned for buffers that are not a well-formed
	// container: wrong magic, short header, or a payload too small for
	// the mipmap chain the header describes.
	ErrInvalidData = errors.New("s3tc: invalid data")

	// ErrUnsupportedFormat is returned when the compression code is not
	// one of DXT1, DXT3 or DXT5.
	ErrUnsupportedFormat = errors.New("s3tc: unsupported compression format")
)

// DecodeError carries the reason a container was rejected.
type DecodeError struct {
	Err    error
	Reason string
}

func (e *DecodeError) Error() string { return e.Err.Error() + ": " + e.Reason }

func (e *DecodeError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return &DecodeError{Err: ErrInvalidData, Reason: fmt.Sprintf(format, args...)}
}

// MipmapDesc locates one mipmap level inside Image.Data.
type MipmapDesc struct {
	Offset int
	Size   int
	Width  int
	Height int
}

// MipmapView is one level of an image, sliced out of its payload.
// Data aliases the image buffer and must not be modified.
type MipmapView struct {
	Level  int
	Width  int
	Height int
	Data   []byte
}

// Image is a decoded container. It is immutable after Decode.
type Image struct {
	Width      int
	Height     int
	LinearSize int
	Format     Format
	BlockSize  int

	// Data is the compressed payload following the header.
	Data    []byte
	Mipmaps []MipmapDesc
}

// Decode parses a DDS container. The returned image references b's
// payload; b must not be modified afterwards.
func Decode(b []byte) (*Image, error) {
	if len(b) < HeaderSize {
		return nil, invalid("buffer holds %d bytes, header needs %d", len(b), HeaderSize)
	}
	if string(b[:4]) != magic {
		return nil, invalid("magic tag %q, want %q", b[:4], magic)
	}

	u32 := func(off int) int { return int(binary.LittleEndian.Uint32(b[off:])) }
	width := u32(offsetWidth)
	height := u32(offsetHeight)
	linearSize := u32(offsetLinearSize)
	mipmapCount := u32(offsetMipmapCount)
	fourCC := string(b[offsetFourCC : offsetFourCC+4])

	if width == 0 || height == 0 {
		return nil, invalid("zero-sized image %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, invalid("image %dx%d exceeds %d texels per side", width, height, MaxDimension)
	}
	format, err := ParseFormat(fourCC)
	if err != nil {
		return nil, err
	}
	// The header flags make the count optional; an absent count means
	// the base level only.
	if mipmapCount == 0 {
		mipmapCount = 1
	}
	if limit := maxLevels(width, height); mipmapCount > limit {
		return nil, invalid("%d mipmap levels for a %dx%d image (at most %d)", mipmapCount, width, height, limit)
	}

	payload := b[HeaderSize:]
	mipmaps := ComputeMipmaps(width, height, mipmapCount, format.BlockSize())
	last := mipmaps[len(mipmaps)-1]
	if end := last.Offset + last.Size; end > len(payload) {
		return nil, invalid("mipmap chain needs %d payload bytes, have %d", end, len(payload))
	}

	return &Image{
		Width:      width,
		Height:     height,
		LinearSize: linearSize,
		Format:     format,
		BlockSize:  format.BlockSize(),
		Data:       payload,
		Mipmaps:    mipmaps,
	}, nil
}

// LevelSize is the byte size of a w×h level stored in 4×4 blocks.
func LevelSize(w, h, blockSize int) int {
	return ((w + 3) / 4) * ((h + 3) / 4) * blockSize
}

// ComputeMipmaps derives the descriptor of each level. The container
// stores no per-level sizes, so they follow from the block layout:
// levels are packed back to back, largest first, and each halves the
// previous dimensions (floor, minimum 1).
func ComputeMipmaps(width, height, count, blockSize int) []MipmapDesc {
	mipmaps := make([]MipmapDesc, 0, count)
	w, h, offset := width, height, 0
	for range count {
		size := LevelSize(w, h, blockSize)
		mipmaps = append(mipmaps, MipmapDesc{Offset: offset, Size: size, Width: w, Height: h})
		offset += size
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return mipmaps
}

// maxLevels is the length of a full chain down to 1×1.
func maxLevels(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		n++
	}
	return n
}

// MipmapViews returns the levels of img in order, largest first. The
// sequence can be ranged over any number of times.
func (img *Image) MipmapViews() iter.Seq[MipmapView] {
	return func(yield func(MipmapView) bool) {
		for i, m := range img.Mipmaps {
			v := MipmapView{
				Level:  i,
				Width:  m.Width,
				Height: m.Height,
				Data:   img.Data[m.Offset : m.Offset+m.Size : m.Offset+m.Size],
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Levels returns the number of mipmap levels.
func (img *Image) Levels() int { return len(img.Mipmaps) }

// String returns a short description such as "DXT5 256x256 (9 levels)".
func (img *Image) String() string {
	return fmt.Sprintf("%s %dx%d (%d levels)", img.Format, img.Width, img.Height, len(img.Mipmaps))
}
