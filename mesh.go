package uvmesh

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/uvmesh/internal/delaunay"
)

// vertexChunk is the minimum number of vertices per parallel work item.
const vertexChunk = 256

// Mesh is an extracted triangulation. Triangles index the vertex arrays,
// which hold every vertex created during the session, including vertices
// no triangle refers to.
type Mesh struct {
	Triangles [][3]uint32
	UV        []r2.Vec
	XYZ       []r3.Vec
	Normals   []r3.Vec

	// Constrained lists the vertex pairs of constrained edges, smaller
	// index first, in ascending order.
	Constrained [][2]uint32

	// Injected lists the vertices created where constraints crossed.
	Injected []uint32
}

// Extract returns the current triangulation. Surface points and normals
// are evaluated again at the final parameters of every vertex. A mesh
// without triangles is a valid result.
func (m *Mesher) Extract() (*Mesh, error) {
	if err := m.require(StateInitialized, StateExtracted); err != nil {
		return nil, err
	}

	var tris [][3]uint32
	for f := range m.core.NFaces() {
		fc := m.core.Face(uint32(f))
		if !fc.Valid() || m.touchesAux(fc) {
			continue
		}
		tris = append(tris, fc.Vertices())
	}

	n := m.vx.Len()
	mesh := &Mesh{
		Triangles: tris,
		UV:        slices.Clone(m.vx.UV),
		XYZ:       make([]r3.Vec, n),
		Normals:   make([]r3.Vec, n),
		Injected:  slices.Clone(m.core.Injected()),
	}
	m.pool.For(n, vertexChunk, func(i int) {
		mesh.XYZ[i], mesh.Normals[i] = m.evaluate(mesh.UV[i])
	})

	m.core.EachEdge(func(e delaunay.Edge) bool {
		if e.Check(Constrained) && e.NFaces() > 0 {
			mesh.Constrained = append(mesh.Constrained, [2]uint32{e.Source(), e.Target()})
		}
		return true
	})
	slices.SortFunc(mesh.Constrained, func(a, b [2]uint32) int {
		if a[0] != b[0] {
			return int(a[0]) - int(b[0])
		}
		return int(a[1]) - int(b[1])
	})

	m.advance(StateExtracted)
	Logger().Info("uvmesh: mesh extracted",
		"triangles", len(tris), "vertices", n, "constrained", len(mesh.Constrained), "injected", len(mesh.Injected))
	return mesh, nil
}

// Stats summarizes the shape of a mesh. Lengths and areas are measured in
// 3D, angles in degrees.
type Stats struct {
	Triangles int
	Vertices  int
	MinEdge   float64
	MaxEdge   float64
	MinAngle  float64
	MaxAngle  float64
	Area      float64
}

// Stats computes shape statistics over the triangles. It returns ErrNoFaces
// for a mesh without triangles.
func (m *Mesh) Stats() (Stats, error) {
	if len(m.Triangles) == 0 {
		return Stats{}, ErrNoFaces
	}
	s := Stats{
		Triangles: len(m.Triangles),
		MinEdge:   math.Inf(1),
		MinAngle:  math.Inf(1),
	}
	used := make([]bool, len(m.XYZ))
	for _, tr := range m.Triangles {
		t := tri{}
		for k, v := range tr {
			t.xyz[k] = m.XYZ[v]
			if !used[v] {
				used[v] = true
				s.Vertices++
			}
		}
		l := t.edgeLengths()
		s.MinEdge = min(s.MinEdge, minOf(l))
		s.MaxEdge = max(s.MaxEdge, maxOf(l))
		a := t.apexAngles()
		s.MinAngle = min(s.MinAngle, minOf(a)*180/math.Pi)
		s.MaxAngle = max(s.MaxAngle, maxOf(a)*180/math.Pi)
		s.Area += 0.5 * r3.Norm(r3.Cross(r3.Sub(t.xyz[1], t.xyz[0]), r3.Sub(t.xyz[2], t.xyz[0])))
	}
	return s, nil
}

// Edges returns the unique undirected edges of the triangles, smaller index
// first, in ascending order.
func (m *Mesh) Edges() [][2]uint32 {
	seen := make(map[[2]uint32]struct{}, 3*len(m.Triangles)/2)
	var out [][2]uint32
	for _, tr := range m.Triangles {
		for k := range 3 {
			a, b := tr[k], tr[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := [2]uint32{a, b}
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, func(a, b [2]uint32) int {
		if a[0] != b[0] {
			return int(a[0]) - int(b[0])
		}
		return int(a[1]) - int(b[1])
	})
	return out
}
