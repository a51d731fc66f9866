package resource

import (
	"fmt"
	"math"

	"darkest/internal/geometry"
	"darkest/internal/gpu"
)

// BasicMesh is an uploaded mesh with position, normal and UV streams.
type BasicMesh struct {
	dev gpu.Device

	VertexArray  uint32
	IndexBuffer  uint32
	Positions    uint32
	Normals      uint32
	UVs          uint32
	ElementCount int32
}

// TangentMesh is an uploaded mesh that also carries a tangent basis.
type TangentMesh struct {
	dev gpu.Device

	VertexArray  uint32
	IndexBuffer  uint32
	Positions    uint32
	Normals      uint32
	UVs          uint32
	Tangents     uint32
	Bitangents   uint32
	ElementCount int32
}

func checkUpload(m *geometry.IndexedMesh) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("upload mesh: %w", err)
	}
	if len(m.Indices) > math.MaxInt32 {
		return fmt.Errorf("upload mesh: %d indices exceed a single draw", len(m.Indices))
	}
	return nil
}

// upload creates a vertex array with one STATIC_DRAW buffer per
// attribute plus the index buffer. The vertex array is left unbound.
// On failure every object it created is deleted again.
func upload(dev gpu.Device, indices []uint32, attrs []attribute) (vao, ebo uint32, vbos []uint32, err error) {
	// Flags raised before this upload are not ours to report.
	takeError(dev)

	var arrays [1]uint32
	dev.GenVertexArrays(arrays[:])
	buffers := make([]uint32, len(attrs)+1)
	dev.GenBuffers(buffers)
	fail := func(err error) (uint32, uint32, []uint32, error) {
		dev.BindVertexArray(0)
		dev.BindBuffer(gpu.ArrayBuffer, 0)
		if names := nonZero(buffers); len(names) > 0 {
			dev.DeleteBuffers(names)
		}
		if arrays[0] != 0 {
			dev.DeleteVertexArrays(arrays[:])
		}
		return 0, 0, nil, fmt.Errorf("upload mesh: %w", err)
	}
	if err := checkNames("vertex array", arrays[:]); err != nil {
		return fail(err)
	}
	if err := checkNames("buffer", buffers); err != nil {
		return fail(err)
	}
	vao, ebo, vbos = arrays[0], buffers[0], buffers[1:]

	dev.BindVertexArray(vao)
	for i, a := range attrs {
		dev.BindBuffer(gpu.ArrayBuffer, vbos[i])
		dev.BufferData(gpu.ArrayBuffer, bytesOf(a.data), gpu.StaticDraw)
		dev.EnableVertexAttribArray(a.location)
		dev.VertexAttribPointer(a.location, a.components, gpu.Float, false, 0, 0)
	}
	// The element buffer binding is vertex array state.
	dev.BindBuffer(gpu.ElementArrayBuffer, ebo)
	dev.BufferData(gpu.ElementArrayBuffer, bytesOf(indices), gpu.StaticDraw)

	dev.BindVertexArray(0)
	dev.BindBuffer(gpu.ArrayBuffer, 0)
	if code := takeError(dev); code != gpu.NoError {
		return fail(&GLError{Op: "buffer data", Code: code})
	}
	return vao, ebo, vbos, nil
}

func baseAttributes(a *geometry.VertexAttributes) []attribute {
	return []attribute{
		{LocationPosition, geometry.PositionComponents, a.Positions},
		{LocationNormal, geometry.NormalComponents, a.Normals},
		{LocationUV, geometry.UVComponents, a.UVs},
	}
}

// NewBasicMesh uploads m. Tangent streams, if any, are ignored.
func NewBasicMesh(dev gpu.Device, m *geometry.IndexedMesh) (*BasicMesh, error) {
	if err := checkUpload(m); err != nil {
		return nil, err
	}
	vao, ebo, vbos, err := upload(dev, m.Indices, baseAttributes(&m.Attributes))
	if err != nil {
		return nil, err
	}
	return &BasicMesh{
		dev:          dev,
		VertexArray:  vao,
		IndexBuffer:  ebo,
		Positions:    vbos[0],
		Normals:      vbos[1],
		UVs:          vbos[2],
		ElementCount: int32(len(m.Indices)),
	}, nil
}

// NewTangentMesh uploads m with its tangent basis. When m has no tangent
// streams they are generated on a copy; m itself is not modified.
func NewTangentMesh(dev gpu.Device, m *geometry.IndexedMesh) (*TangentMesh, error) {
	if !m.HasTangents() {
		c := *m
		if _, err := geometry.GenerateTangents(&c); err != nil {
			return nil, fmt.Errorf("upload mesh: %w", err)
		}
		m = &c
	}
	if err := checkUpload(m); err != nil {
		return nil, err
	}
	attrs := append(baseAttributes(&m.Attributes),
		attribute{LocationTangent, geometry.TangentComponents, m.Attributes.Tangents},
		attribute{LocationBitangent, geometry.TangentComponents, m.Attributes.Bitangents},
	)
	vao, ebo, vbos, err := upload(dev, m.Indices, attrs)
	if err != nil {
		return nil, err
	}
	return &TangentMesh{
		dev:          dev,
		VertexArray:  vao,
		IndexBuffer:  ebo,
		Positions:    vbos[0],
		Normals:      vbos[1],
		UVs:          vbos[2],
		Tangents:     vbos[3],
		Bitangents:   vbos[4],
		ElementCount: int32(len(m.Indices)),
	}, nil
}

// Draw issues the indexed draw for the whole mesh.
func (m *BasicMesh) Draw() {
	draw(m.dev, m.VertexArray, m.ElementCount)
}

// Draw issues the indexed draw for the whole mesh.
func (m *TangentMesh) Draw() {
	draw(m.dev, m.VertexArray, m.ElementCount)
}

func draw(dev gpu.Device, vao uint32, count int32) {
	dev.BindVertexArray(vao)
	dev.DrawElements(gpu.Triangles, count, gpu.UnsignedInt, 0)
}

// Release deletes the GPU objects. Further calls do nothing.
func (m *BasicMesh) Release() {
	if m.VertexArray == 0 {
		return
	}
	m.dev.DeleteBuffers([]uint32{m.IndexBuffer, m.Positions, m.Normals, m.UVs})
	m.dev.DeleteVertexArrays([]uint32{m.VertexArray})
	*m = BasicMesh{dev: m.dev}
}

// Release deletes the GPU objects. Further calls do nothing.
func (m *TangentMesh) Release() {
	if m.VertexArray == 0 {
		return
	}
	m.dev.DeleteBuffers([]uint32{m.IndexBuffer, m.Positions, m.Normals, m.UVs, m.Tangents, m.Bitangents})
	m.dev.DeleteVertexArrays([]uint32{m.VertexArray})
	*m = TangentMesh{dev: m.dev}
}
