// Package mesh converts between polygon files and a plain triangle or polygon
// mesh: vertex positions plus faces indexing them.
package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ssargent/plyfile/pkg/ply"
)

// Mesh is a polygon mesh. Every face lists indices into Positions.
type Mesh struct {
	Positions [][3]float32
	Faces     [][]uint32
}

var faceIndexNames = []string{"vertex_indices", "vertex_index"}

// ToFile builds a file with a vertex element (float x, y, z) and a face
// element (list uchar int vertex_indices)
func ToFile(m *Mesh, format ply.Format) (*ply.File, error) {
	f := ply.New()
	f.Format = format
	if err := f.Validate(); err != nil {
		return nil, err
	}

	vertex, err := f.CreateElement("vertex", len(m.Positions))
	if err != nil {
		return nil, err
	}
	for axis, name := range []string{"x", "y", "z"} {
		p, err := vertex.CreateValue(name, ply.Float, ply.Float)
		if err != nil {
			return nil, err
		}
		vals := make([]float32, len(m.Positions))
		for i, pos := range m.Positions {
			vals[i] = pos[axis]
		}
		if err := ply.SetValues(p, vals); err != nil {
			return nil, err
		}
	}

	face, err := f.CreateElement("face", len(m.Faces))
	if err != nil {
		return nil, err
	}
	idx, err := face.CreateList(faceIndexNames[0], ply.UChar, ply.Int, ply.UInt)
	if err != nil {
		return nil, err
	}
	if err := ply.SetLists(idx, m.Faces); err != nil {
		return nil, err
	}
	return f, nil
}

// FromFile reads the vertex positions and faces of f. Coordinates and indices
// are converted to float32 and uint32 whatever their memory type.
func FromFile(f *ply.File) (*Mesh, error) {
	vertex := f.Element("vertex")
	if vertex == nil {
		return nil, fmt.Errorf("file has no vertex element")
	}
	m := &Mesh{Positions: make([][3]float32, vertex.Len())}
	for axis, name := range []string{"x", "y", "z"} {
		p := vertex.Property(name)
		if p == nil {
			if name == "z" {
				continue
			}
			return nil, fmt.Errorf("vertex element has no %s property", name)
		}
		if p.Kind() != ply.Value {
			return nil, fmt.Errorf("vertex property %s is a list", name)
		}
		p.SetMemType(ply.Float)
		vals, ok := ply.Values[float32](p)
		if !ok {
			return nil, fmt.Errorf("vertex property %s is not loaded", name)
		}
		for i, v := range vals {
			m.Positions[i][axis] = v
		}
	}

	face := f.Element("face")
	if face == nil {
		return m, nil
	}
	var idx *ply.Property
	for _, name := range faceIndexNames {
		if idx = face.Property(name); idx != nil {
			break
		}
	}
	if idx == nil || idx.Kind() != ply.List {
		return nil, fmt.Errorf("face element has no vertex index list")
	}
	idx.SetMemType(ply.UInt)
	faces, ok := ply.Lists[uint32](idx)
	if !ok {
		return nil, fmt.Errorf("face indices are not loaded")
	}
	m.Faces = faces
	return m, nil
}

// Validate checks every face index against the vertex count
func (m *Mesh) Validate() error {
	n := uint32(len(m.Positions))
	for i, face := range m.Faces {
		for _, v := range face {
			if v >= n {
				return fmt.Errorf("face %d references vertex %d of %d", i, v, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis aligned bounding box of the positions. An empty
// mesh has zero bounds.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Positions) == 0 {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = math32.Min(lo[axis], p[axis])
			hi[axis] = math32.Max(hi[axis], p[axis])
		}
	}
	return lo, hi
}

// SurfaceArea sums the area of every face, fan triangulated from its first
// vertex. Faces with out of range indices are skipped.
func (m *Mesh) SurfaceArea() float32 {
	var total float32
	n := uint32(len(m.Positions))
	for _, face := range m.Faces {
		if len(face) < 3 {
			continue
		}
		if !inRange(face, n) {
			continue
		}
		a := m.Positions[face[0]]
		for i := 1; i+1 < len(face); i++ {
			total += triangleArea(a, m.Positions[face[i]], m.Positions[face[i+1]])
		}
	}
	return total
}

func inRange(face []uint32, n uint32) bool {
	for _, v := range face {
		if v >= n {
			return false
		}
	}
	return true
}

func triangleArea(a, b, c [3]float32) float32 {
	u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	cx := u[1]*v[2] - u[2]*v[1]
	cy := u[2]*v[0] - u[0]*v[2]
	cz := u[0]*v[1] - u[1]*v[0]
	return math32.Sqrt(cx*cx+cy*cy+cz*cz) / 2
}
