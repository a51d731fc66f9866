package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *IndexedMesh)
	}{
		{"no indices", func(m *IndexedMesh) { m.Indices = nil }},
		{"partial triangle", func(m *IndexedMesh) { m.Indices = m.Indices[:4] }},
		{"index out of range", func(m *IndexedMesh) { m.Indices[5] = 4 }},
		{"short normals", func(m *IndexedMesh) { m.Attributes.Normals = m.Attributes.Normals[:9] }},
		{"short uvs", func(m *IndexedMesh) { m.Attributes.UVs = m.Attributes.UVs[:7] }},
		{"ragged positions", func(m *IndexedMesh) { m.Attributes.Positions = m.Attributes.Positions[:11] }},
		{"tangents without bitangents", func(m *IndexedMesh) { m.Attributes.Tangents = make([]float32, 12) }},
	}
	require.NoError(t, Plane().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Plane()
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
		})
	}
}

func TestPlaneTangentBasis(t *testing.T) {
	m := Plane()
	degenerate, err := GenerateTangents(m)
	require.NoError(t, err)
	assert.Zero(t, degenerate)
	require.NoError(t, m.Validate())
	require.Len(t, m.Attributes.Tangents, 12)
	require.Len(t, m.Attributes.Bitangents, 12)

	for i := range uint32(m.VertexCount()) {
		n := vec3At(m.Attributes.Normals, i)
		tan := vec3At(m.Attributes.Tangents, i)
		bit := vec3At(m.Attributes.Bitangents, i)
		assert.InDelta(t, 0, tan.Dot(n), 1e-6, "tangent %d must be orthogonal to the normal", i)
		assert.InDelta(t, 0, bit.Dot(n), 1e-6, "bitangent %d must be orthogonal to the normal", i)
		assert.True(t, tan.ApproxEqual(mgl32.Vec3{1, 0, 0}), "tangent %d = %v", i, tan)
		assert.True(t, bit.ApproxEqual(mgl32.Vec3{0, 1, 0}), "bitangent %d = %v", i, bit)
	}
}

func TestCubeTangentsFollowFaces(t *testing.T) {
	m := Cube(0.5)
	require.NoError(t, m.Validate())
	assert.Equal(t, 24, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())

	degenerate, err := GenerateTangents(m)
	require.NoError(t, err)
	assert.Zero(t, degenerate)
	for i := range uint32(m.VertexCount()) {
		n := vec3At(m.Attributes.Normals, i)
		tan := vec3At(m.Attributes.Tangents, i)
		bit := vec3At(m.Attributes.Bitangents, i)
		assert.InDelta(t, 0, tan.Dot(n), 1e-5, "vertex %d", i)
		assert.InDelta(t, 1, tan.Len(), 1e-5, "vertex %d", i)
		assert.True(t, n.Cross(tan).ApproxEqualThreshold(bit, 1e-5), "vertex %d basis must be right-handed", i)
	}
}

func TestDegenerateUVsFallBack(t *testing.T) {
	m := Plane()
	for i := range m.Attributes.UVs {
		m.Attributes.UVs[i] = 0.5
	}
	degenerate, err := GenerateTangents(m)
	require.NoError(t, err)
	assert.Equal(t, 2, degenerate)

	for i := range uint32(m.VertexCount()) {
		tan := vec3At(m.Attributes.Tangents, i)
		bit := vec3At(m.Attributes.Bitangents, i)
		assert.InDelta(t, 1, tan.Len(), 1e-6)
		assert.InDelta(t, 0, tan.Dot(bit), 1e-6)
		assert.InDelta(t, 0, tan.Dot(mgl32.Vec3{0, 0, 1}), 1e-6)
	}
}

func TestCollapsedTriangleFallsBack(t *testing.T) {
	m := &IndexedMesh{
		Indices: []uint32{0, 1, 2},
		Attributes: VertexAttributes{
			Positions: []float32{1, 2, 3, 1, 2, 3, 1, 2, 3},
			Normals:   []float32{0, 1, 0, 0, 1, 0, 0, 1, 0},
			UVs:       []float32{0, 0, 1, 0, 0, 1},
		},
	}
	degenerate, err := GenerateTangents(m)
	require.NoError(t, err)
	assert.Equal(t, 1, degenerate)

	for i := range uint32(3) {
		tan := vec3At(m.Attributes.Tangents, i)
		bit := vec3At(m.Attributes.Bitangents, i)
		for _, c := range append(tan[:], bit[:]...) {
			assert.False(t, math.IsNaN(float64(c)))
		}
		assert.InDelta(t, 1, tan.Len(), 1e-6)
		assert.InDelta(t, 1, bit.Len(), 1e-6)
		assert.InDelta(t, 0, tan.Dot(bit), 1e-6)
		assert.InDelta(t, 0, tan.Dot(mgl32.Vec3{0, 1, 0}), 1e-6, "tangent lies in the vertex normal's plane")
	}
}

func TestGenerateTangentsRejectsInvalidMesh(t *testing.T) {
	m := Plane()
	m.Indices = append(m.Indices, 9, 9, 9)
	_, err := GenerateTangents(m)
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestGenerateTangentsReplacesExistingStreams(t *testing.T) {
	m := Plane()
	m.Attributes.Tangents = []float32{1}
	m.Attributes.Bitangents = []float32{1}
	_, err := GenerateTangents(m)
	require.NoError(t, err)
	assert.Len(t, m.Attributes.Tangents, 12)
}
