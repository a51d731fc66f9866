package resource

import (
	"errors"
	"fmt"

	"darkest/internal/gpu"
	"darkest/internal/s3tc"
)

// BasicLightMaps are the decoded images of a basic material.
type BasicLightMaps struct {
	Diffuse  *s3tc.Image
	Specular *s3tc.Image
}

// NormalMappedLightMaps add a tangent-space normal map.
type NormalMappedLightMaps struct {
	Diffuse  *s3tc.Image
	Specular *s3tc.Image
	Normal   *s3tc.Image
}

// ErrMissingImage is returned when a light-map channel has no image.
var ErrMissingImage = errors.New("resource: light map channel has no image")

// channel pairs an image with the texture unit it samples from.
type channel struct {
	name  string
	unit  uint32
	image *s3tc.Image
}

// uploadTextures creates one 2D texture per channel with every mipmap
// level of its image. Nothing is allocated when a channel is missing,
// and nothing is left allocated when the device fails.
func uploadTextures(dev gpu.Device, sampling Sampling, channels []channel) ([]uint32, error) {
	for _, c := range channels {
		if c.image == nil {
			return nil, fmt.Errorf("upload %s texture: %w", c.name, ErrMissingImage)
		}
	}
	takeError(dev)

	ids := make([]uint32, len(channels))
	dev.GenTextures(ids)
	if err := checkNames("texture", ids); err != nil {
		if names := nonZero(ids); len(names) > 0 {
			dev.DeleteTextures(names)
		}
		return nil, fmt.Errorf("upload textures: %w", err)
	}
	for i, c := range channels {
		dev.ActiveTexture(gpu.Texture0 + c.unit)
		dev.BindTexture(gpu.Texture2D, ids[i])
		format := c.image.Format.InternalFormat()
		for v := range c.image.MipmapViews() {
			dev.CompressedTexImage2D(gpu.Texture2D, int32(v.Level), format, int32(v.Width), int32(v.Height), v.Data)
		}
		// Only the levels present in the file exist; capping the range
		// keeps a partial chain complete.
		dev.TexParameteri(gpu.Texture2D, gpu.TextureBaseLevel, 0)
		dev.TexParameteri(gpu.Texture2D, gpu.TextureMaxLevel, int32(c.image.Levels()-1))
		dev.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, sampling.WrapS)
		dev.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, sampling.WrapT)
		dev.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, sampling.MinFilter)
		dev.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, sampling.MagFilter)

		if code := takeError(dev); code != gpu.NoError {
			dev.DeleteTextures(ids)
			return nil, fmt.Errorf("upload %s texture: %w", c.name, &GLError{Op: "compressed tex image", Code: code})
		}
	}
	return ids, nil
}

func bindTexture(dev gpu.Device, unit, id uint32) {
	dev.ActiveTexture(gpu.Texture0 + unit)
	dev.BindTexture(gpu.Texture2D, id)
}

// BasicTextures holds the uploaded diffuse and specular maps.
type BasicTextures struct {
	dev gpu.Device

	Diffuse  uint32
	Specular uint32
}

// NewBasicTextures uploads lm with DefaultSampling.
func NewBasicTextures(dev gpu.Device, lm BasicLightMaps) (*BasicTextures, error) {
	return NewBasicTexturesWith(dev, lm, DefaultSampling)
}

// NewBasicTexturesWith uploads lm with the given sampling parameters.
func NewBasicTexturesWith(dev gpu.Device, lm BasicLightMaps, sampling Sampling) (*BasicTextures, error) {
	ids, err := uploadTextures(dev, sampling, []channel{
		{"diffuse", UnitDiffuse, lm.Diffuse},
		{"specular", UnitSpecular, lm.Specular},
	})
	if err != nil {
		return nil, err
	}
	return &BasicTextures{dev: dev, Diffuse: ids[0], Specular: ids[1]}, nil
}

// Bind binds each map to its texture unit.
func (t *BasicTextures) Bind() {
	bindTexture(t.dev, UnitDiffuse, t.Diffuse)
	bindTexture(t.dev, UnitSpecular, t.Specular)
}

// Release deletes the textures. Further calls do nothing.
func (t *BasicTextures) Release() {
	if t.Diffuse == 0 {
		return
	}
	t.dev.DeleteTextures([]uint32{t.Diffuse, t.Specular})
	t.Diffuse, t.Specular = 0, 0
}

// NormalMappedTextures holds the uploaded diffuse, specular and normal
// maps.
type NormalMappedTextures struct {
	dev gpu.Device

	Diffuse  uint32
	Specular uint32
	Normal   uint32
}

// NewNormalMappedTextures uploads lm with DefaultSampling.
func NewNormalMappedTextures(dev gpu.Device, lm NormalMappedLightMaps) (*NormalMappedTextures, error) {
	return NewNormalMappedTexturesWith(dev, lm, DefaultSampling)
}

// NewNormalMappedTexturesWith uploads lm with the given sampling
// parameters.
func NewNormalMappedTexturesWith(dev gpu.Device, lm NormalMappedLightMaps, sampling Sampling) (*NormalMappedTextures, error) {
	ids, err := uploadTextures(dev, sampling, []channel{
		{"diffuse", UnitDiffuse, lm.Diffuse},
		{"specular", UnitSpecular, lm.Specular},
		{"normal", UnitNormal, lm.Normal},
	})
	if err != nil {
		return nil, err
	}
	return &NormalMappedTextures{dev: dev, Diffuse: ids[0], Specular: ids[1], Normal: ids[2]}, nil
}

// Bind binds each map to its texture unit.
func (t *NormalMappedTextures) Bind() {
	bindTexture(t.dev, UnitDiffuse, t.Diffuse)
	bindTexture(t.dev, UnitSpecular, t.Specular)
	bindTexture(t.dev, UnitNormal, t.Normal)
}

// Release deletes the textures. Further calls do nothing.
func (t *NormalMappedTextures) Release() {
	if t.Diffuse == 0 {
		return
	}
	t.dev.DeleteTextures([]uint32{t.Diffuse, t.Specular, t.Normal})
	t.Diffuse, t.Specular, t.Normal = 0, 0, 0
}
