package s3tc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"darkest/internal/gpu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// container builds a DDS buffer with a payload sized exactly for the
// derived mipmap chain; each payload byte holds its level index.
func container(t *testing.T, fourCC string, w, h, levels, blockSize int) []byte {
	t.Helper()
	var payload []byte
	for i, m := range ComputeMipmaps(w, h, max(levels, 1), blockSize) {
		payload = append(payload, bytes.Repeat([]byte{byte(i)}, m.Size)...)
	}
	b := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(b, "DDS ")
	binary.LittleEndian.PutUint32(b[12:], uint32(w))
	binary.LittleEndian.PutUint32(b[16:], uint32(h))
	binary.LittleEndian.PutUint32(b[20:], uint32(LevelSize(w, h, blockSize)))
	binary.LittleEndian.PutUint32(b[28:], uint32(levels))
	copy(b[84:], fourCC)
	return append(b, payload...)
}

func TestDecodeSingleLevel(t *testing.T) {
	for _, tc := range []struct {
		fourCC    string
		format    Format
		blockSize int
	}{
		{"DXT1", DXT1, 8},
		{"DXT3", DXT3, 16},
		{"DXT5", DXT5, 16},
	} {
		t.Run(tc.fourCC, func(t *testing.T) {
			img, err := Decode(container(t, tc.fourCC, 64, 64, 1, tc.blockSize))
			require.NoError(t, err)

			assert.Equal(t, tc.format, img.Format)
			assert.Equal(t, tc.blockSize, img.BlockSize)
			assert.Equal(t, 64, img.Width)
			assert.Equal(t, 64, img.Height)
			assert.Equal(t, []MipmapDesc{{Offset: 0, Size: 16 * 16 * tc.blockSize, Width: 64, Height: 64}}, img.Mipmaps)
		})
	}
}

func TestDecodeMipmapChain(t *testing.T) {
	for _, tc := range []struct {
		name   string
		w, h   int
		levels int
	}{
		{"square", 256, 256, 9},
		{"wide", 128, 32, 8},
		{"tall", 16, 64, 7},
		{"partial", 64, 64, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := container(t, "DXT5", tc.w, tc.h, tc.levels, 16)
			img, err := Decode(b)
			require.NoError(t, err)
			require.Len(t, img.Mipmaps, tc.levels)

			w, h, offset := tc.w, tc.h, 0
			for i, m := range img.Mipmaps {
				assert.Equal(t, w, m.Width, "level %d width", i)
				assert.Equal(t, h, m.Height, "level %d height", i)
				assert.Equal(t, offset, m.Offset, "level %d offset", i)
				assert.Equal(t, ((w+3)/4)*((h+3)/4)*16, m.Size, "level %d size", i)
				offset += m.Size
				w, h = max(w/2, 1), max(h/2, 1)
			}
			assert.Equal(t, len(b)-HeaderSize, offset, "chain must cover the payload")
		})
	}
}

func TestDecodeZeroMipmapCount(t *testing.T) {
	img, err := Decode(container(t, "DXT1", 32, 32, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Levels())
}

func TestDecodeBadMagic(t *testing.T) {
	b := container(t, "DXT1", 64, 64, 1, 8)
	copy(b, "XDS ")
	orig := bytes.Clone(b)

	img, err := Decode(b)
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Equal(t, orig, b, "input must not be modified")

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Reason, "magic")
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := Decode([]byte("DDS "))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	b := container(t, "DXT5", 64, 64, 7, 16)
	_, err := Decode(b[:len(b)-1])
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDecodeTooManyLevels(t *testing.T) {
	b := container(t, "DXT1", 4, 4, 3, 8)
	binary.LittleEndian.PutUint32(b[28:], 4)
	_, err := Decode(b)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	header := func(fourCC string, w, h uint32) []byte {
		b := make([]byte, HeaderSize+64)
		copy(b, "DDS ")
		binary.LittleEndian.PutUint32(b[12:], w)
		binary.LittleEndian.PutUint32(b[16:], h)
		binary.LittleEndian.PutUint32(b[28:], 1)
		copy(b[84:], fourCC)
		return b
	}
	for _, fourCC := range []string{"DXT1", "DXT3", "DXT5"} {
		for _, size := range [][2]uint32{
			{0xFFFFFFFF, 0xFFFFFFFF},
			{0xFFFFFFFF, 4},
			{4, MaxDimension + 1},
			{MaxDimension, MaxDimension},
		} {
			img, err := Decode(header(fourCC, size[0], size[1]))
			assert.ErrorIs(t, err, ErrInvalidData, "%s %dx%d", fourCC, size[0], size[1])
			assert.Nil(t, img)
		}
	}
}

func TestSolidRejectsBadSize(t *testing.T) {
	for _, size := range [][2]int{{0, 4}, {4, -1}, {MaxDimension + 1, 4}} {
		_, err := Solid(DXT1, size[0], size[1], DXT1Color(0, 0, 0))
		assert.Error(t, err, "%dx%d", size[0], size[1])
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	for _, code := range []string{"DXT2", "DXT4", "ATI2", "\x00\x00\x00\x00"} {
		_, err := Decode(container(t, code, 16, 16, 1, 16))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "fourCC %q", code)
	}
}

func TestMipmapViews(t *testing.T) {
	img, err := Decode(container(t, "DXT1", 16, 8, 5, 8))
	require.NoError(t, err)

	collect := func() []MipmapView {
		var views []MipmapView
		for v := range img.MipmapViews() {
			views = append(views, v)
		}
		return views
	}
	first := collect()
	require.Len(t, first, 5)
	for i, v := range first {
		assert.Equal(t, i, v.Level)
		assert.Equal(t, img.Mipmaps[i].Width, v.Width)
		assert.Equal(t, img.Mipmaps[i].Height, v.Height)
		assert.Len(t, v.Data, img.Mipmaps[i].Size)
		assert.Equal(t, bytes.Repeat([]byte{byte(i)}, img.Mipmaps[i].Size), v.Data)
	}
	assert.Equal(t, first, collect(), "sequence must be restartable")

	n := 0
	for range img.MipmapViews() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestLevelSizeRoundsUpToBlocks(t *testing.T) {
	assert.Equal(t, 8, LevelSize(1, 1, 8))
	assert.Equal(t, 16, LevelSize(2, 1, 16))
	assert.Equal(t, 2*2*8, LevelSize(5, 8, 8))
}

func TestEncodeRoundTrip(t *testing.T) {
	img, err := Solid(DXT1, 32, 16, DXT1Color(255, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Levels())

	back, err := Decode(Encode(img))
	require.NoError(t, err)
	assert.Equal(t, img.Mipmaps, back.Mipmaps)
	assert.Equal(t, img.Data, back.Data)
	assert.Equal(t, DXT1, back.Format)
}

func TestSolidRejectsWrongBlock(t *testing.T) {
	_, err := Solid(DXT5, 4, 4, make([]byte, 8))
	assert.Error(t, err)
}

func TestFormatInternalFormat(t *testing.T) {
	assert.Equal(t, uint32(gpu.CompressedRGBDXT1), DXT1.InternalFormat())
	assert.Equal(t, uint32(gpu.CompressedRGBADXT3), DXT3.InternalFormat())
	assert.Equal(t, uint32(gpu.CompressedRGBADXT5), DXT5.InternalFormat())
	assert.Equal(t, "DXT3", DXT3.String())
}
