package s3tc

import (
	"encoding/binary"
	"fmt"
)

// Encode writes img back into a container that Decode accepts. Only the
// fields Decode reads are filled in; the rest of the header is zero.
func Encode(img *Image) []byte {
	b := make([]byte, HeaderSize+len(img.Data))
	copy(b, magic)
	binary.LittleEndian.PutUint32(b[4:], HeaderSize-4)
	binary.LittleEndian.PutUint32(b[offsetWidth:], uint32(img.Width))
	binary.LittleEndian.PutUint32(b[offsetHeight:], uint32(img.Height))
	binary.LittleEndian.PutUint32(b[offsetLinearSize:], uint32(img.LinearSize))
	binary.LittleEndian.PutUint32(b[offsetMipmapCount:], uint32(len(img.Mipmaps)))
	copy(b[offsetFourCC:], img.Format.String())
	copy(b[HeaderSize:], img.Data)
	return b
}

// Solid builds an image with a full mipmap chain in which every block
// of every level is block. It is used for placeholder textures.
func Solid(format Format, width, height int, block []byte) (*Image, error) {
	if len(block) != format.BlockSize() {
		return nil, fmt.Errorf("s3tc: %s block is %d bytes, got %d", format, format.BlockSize(), len(block))
	}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("s3tc: image size %dx%d out of range", width, height)
	}
	mipmaps := ComputeMipmaps(width, height, maxLevels(width, height), format.BlockSize())
	last := mipmaps[len(mipmaps)-1]
	data := make([]byte, last.Offset+last.Size)
	for off := 0; off < len(data); off += len(block) {
		copy(data[off:], block)
	}
	return &Image{
		Width:      width,
		Height:     height,
		LinearSize: mipmaps[0].Size,
		Format:     format,
		BlockSize:  format.BlockSize(),
		Data:       data,
		Mipmaps:    mipmaps,
	}, nil
}

// DXT1Color returns a DXT1 block that decodes to a single RGB565 color.
func DXT1Color(r, g, b uint8) []byte {
	c := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	block := make([]byte, 8)
	binary.LittleEndian.PutUint16(block[0:], c)
	binary.LittleEndian.PutUint16(block[2:], c)
	// All indices 0 select color0.
	return block
}
