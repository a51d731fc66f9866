// Package geometry holds CPU-side indexed triangle meshes.
package geometry

import (
	"errors"
	"fmt"
)

// Components per vertex of each attribute stream.
const (
	PositionComponents = 3
	NormalComponents   = 3
	UVComponents       = 2
	TangentComponents  = 3
)

// ErrInvalidMesh is wrapped by every Validate failure.
var ErrInvalidMesh = errors.New("invalid mesh")

// VertexAttributes are tightly packed, non-interleaved float streams.
type VertexAttributes struct {
	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex
	UVs       []float32 // 2 per vertex

	// Optional tangent basis, 3 per vertex each. Either both are set or
	// neither is.
	Tangents   []float32
	Bitangents []float32
}

// IndexedMesh is a triangle list.
type IndexedMesh struct {
	Indices    []uint32
	Attributes VertexAttributes
}

// VertexCount is the number of vertices in the position stream.
func (m *IndexedMesh) VertexCount() int {
	return len(m.Attributes.Positions) / PositionComponents
}

// TriangleCount is the number of index triples.
func (m *IndexedMesh) TriangleCount() int { return len(m.Indices) / 3 }

// HasTangents reports whether the tangent basis streams are present.
func (m *IndexedMesh) HasTangents() bool {
	return len(m.Attributes.Tangents) > 0 || len(m.Attributes.Bitangents) > 0
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMesh, fmt.Sprintf(format, args...))
}

// Validate checks stream lengths and index ranges.
func (m *IndexedMesh) Validate() error {
	a := &m.Attributes
	if len(m.Indices) == 0 {
		return invalid("no indices")
	}
	if len(m.Indices)%3 != 0 {
		return invalid("%d indices is not a whole number of triangles", len(m.Indices))
	}
	if len(a.Positions) == 0 || len(a.Positions)%PositionComponents != 0 {
		return invalid("position stream has %d floats", len(a.Positions))
	}
	n := m.VertexCount()
	check := func(name string, stream []float32, comps int) error {
		if len(stream) != n*comps {
			return invalid("%s stream has %d floats, want %d for %d vertices", name, len(stream), n*comps, n)
		}
		return nil
	}
	if err := check("normal", a.Normals, NormalComponents); err != nil {
		return err
	}
	if err := check("uv", a.UVs, UVComponents); err != nil {
		return err
	}
	if m.HasTangents() {
		if err := check("tangent", a.Tangents, TangentComponents); err != nil {
			return err
		}
		if err := check("bitangent", a.Bitangents, TangentComponents); err != nil {
			return err
		}
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return invalid("index %d at %d out of range for %d vertices", idx, i, n)
		}
	}
	return nil
}
