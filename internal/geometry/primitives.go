package geometry

import "github.com/go-gl/mathgl/mgl32"

// Plane returns a unit quad in the XY plane facing +Z, spanning
// [-1, 1] on both axes, with UVs covering [0, 1].
func Plane() *IndexedMesh {
	return &IndexedMesh{
		Indices: []uint32{0, 1, 2, 2, 3, 0},
		Attributes: VertexAttributes{
			Positions: []float32{
				-1, -1, 0,
				1, -1, 0,
				1, 1, 0,
				-1, 1, 0,
			},
			Normals: []float32{
				0, 0, 1,
				0, 0, 1,
				0, 0, 1,
				0, 0, 1,
			},
			UVs: []float32{
				0, 0,
				1, 0,
				1, 1,
				0, 1,
			},
		},
	}
}

// cubeFaces lists each face as its outward normal and the two in-plane
// axes that map to U and V.
var cubeFaces = [6][3]mgl32.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
}

// Cube returns a cube spanning [-half, half] with four vertices per face
// so that normals and UVs stay flat across each face.
func Cube(half float32) *IndexedMesh {
	m := &IndexedMesh{}
	a := &m.Attributes
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for f, face := range cubeFaces {
		normal, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := normal.Add(u.Mul(c[0])).Add(v.Mul(c[1])).Mul(half)
			a.Positions = append(a.Positions, p[0], p[1], p[2])
			a.Normals = append(a.Normals, normal[0], normal[1], normal[2])
			a.UVs = append(a.UVs, (c[0]+1)/2, (c[1]+1)/2)
		}
		base := uint32(f * 4)
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}
