package geometry

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// uvEpsilon is the smallest |det| of a triangle's UV edge matrix that
// still yields a usable tangent basis.
const uvEpsilon = 1e-8

// minBasisLength is the shortest solved tangent or bitangent that is
// normalized rather than replaced by the fallback basis.
const minBasisLength = 1e-12

func vec3At(s []float32, i uint32) mgl32.Vec3 {
	return mgl32.Vec3{s[3*i], s[3*i+1], s[3*i+2]}
}

func vec2At(s []float32, i uint32) mgl32.Vec2 {
	return mgl32.Vec2{s[2*i], s[2*i+1]}
}

func putVec3(s []float32, i uint32, v mgl32.Vec3) {
	s[3*i], s[3*i+1], s[3*i+2] = v[0], v[1], v[2]
}

// GenerateTangents fills the tangent and bitangent streams of m with a
// flat per-triangle basis derived from positions and UVs. A vertex
// shared by several triangles takes the basis of the last one that
// references it.
//
// Triangles whose UVs are degenerate, or whose positions collapse so
// the solved basis has no length, get an orthonormal basis built from
// the face normal and their first edge instead; the number of such
// triangles is returned.
func GenerateTangents(m *IndexedMesh) (degenerate int, err error) {
	m.Attributes.Tangents = nil
	m.Attributes.Bitangents = nil
	if err := m.Validate(); err != nil {
		return 0, err
	}

	a := &m.Attributes
	n := m.VertexCount()
	a.Tangents = make([]float32, n*TangentComponents)
	a.Bitangents = make([]float32, n*TangentComponents)

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0, p1, p2 := vec3At(a.Positions, i0), vec3At(a.Positions, i1), vec3At(a.Positions, i2)
		uv0, uv1, uv2 := vec2At(a.UVs, i0), vec2At(a.UVs, i1), vec2At(a.UVs, i2)

		e1, e2 := p1.Sub(p0), p2.Sub(p0)
		d1, d2 := uv1.Sub(uv0), uv2.Sub(uv0)

		tangent, bitangent, ok := solveBasis(e1, e2, d1, d2)
		if !ok {
			degenerate++
			tangent, bitangent = fallbackBasis(e1, e2, vec3At(a.Normals, i0))
		}

		for _, i := range [3]uint32{i0, i1, i2} {
			putVec3(a.Tangents, i, tangent)
			putVec3(a.Bitangents, i, bitangent)
		}
	}
	if degenerate > 0 {
		slog.Warn("degenerate tangent triangles", "count", degenerate, "triangles", m.TriangleCount())
	}
	return degenerate, nil
}

// solveBasis solves the UV edge system for a unit tangent and
// bitangent. It fails when the UVs are singular or when the solution has
// no length, as for a triangle collapsed to a point or a line.
func solveBasis(e1, e2 mgl32.Vec3, d1, d2 mgl32.Vec2) (mgl32.Vec3, mgl32.Vec3, bool) {
	det := d1[0]*d2[1] - d2[0]*d1[1]
	if det <= uvEpsilon && det >= -uvEpsilon {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	r := 1 / det
	tangent := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
	bitangent := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
	if tangent.Len() < minBasisLength || bitangent.Len() < minBasisLength {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return tangent.Normalize(), bitangent.Normalize(), true
}

// fallbackBasis returns a tangent along the first edge and a bitangent
// completing a right-handed frame with the face normal.
func fallbackBasis(e1, e2, vertexNormal mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	normal := e1.Cross(e2)
	if normal.Len() < 1e-12 {
		normal = vertexNormal
	}
	if normal.Len() < 1e-12 {
		normal = mgl32.Vec3{0, 0, 1}
	}
	normal = normal.Normalize()

	tangent := e1.Sub(normal.Mul(normal.Dot(e1)))
	if tangent.Len() < 1e-12 {
		// Any direction perpendicular to the normal will do.
		axis := mgl32.Vec3{1, 0, 0}
		if mgl32.Abs(normal[0]) > 0.9 {
			axis = mgl32.Vec3{0, 1, 0}
		}
		tangent = axis.Sub(normal.Mul(normal.Dot(axis)))
	}
	tangent = tangent.Normalize()
	return tangent, normal.Cross(tangent)
}
