package delaunay

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpatialGeometry locates points and checks orientation in the working
// plane like PlaneGeometry, but decides the Delaunay criterion in 3D using
// the surface positions of the vertices.
type SpatialGeometry struct {
	planar
	xyz func(v uint32) r3.Vec
}

// NewSpatialGeometry creates a spatial geometry. xyz returns the surface
// point of a vertex; it must be valid for every vertex added.
func NewSpatialGeometry(lo, hi r2.Vec, mergeTol float64, xyz func(v uint32) r3.Vec) *SpatialGeometry {
	return &SpatialGeometry{planar: newPlanar(lo, hi, mergeTol), xyz: xyz}
}

// Encroaches implements Geometry.
//
// NOTE: this is not an exact in-sphere predicate. The triangle does not
// define a unique sphere, so a fourth point is constructed on its smallest
// circumsphere (circumcenter plus radius along the normal) and the
// floating-point in-sphere determinant of the five points is evaluated.
// Mesh quality baselines depend on this exact behavior; keep it.
func (g *SpatialGeometry) Encroaches(tri [3]uint32, v uint32) bool {
	a, b, c := g.xyz(tri[0]), g.xyz(tri[1]), g.xyz(tri[2])
	d, ok := circumspherePoint(a, b, c)
	if !ok {
		return false
	}
	e := g.xyz(v)
	return inSphere(a, b, c, d, e)*orient3D(a, b, c, d) > 0
}

// FlipImproves reports whether replacing the diagonal (s,t) by (o1,o2)
// raises the smallest surface angle of the two faces. Every accepted flip
// increases the sorted angle vector of the mesh, so legalization ends.
func (g *SpatialGeometry) FlipImproves(s, t, o1, o2 uint32) bool {
	ps, pt, p1, p2 := g.xyz(s), g.xyz(t), g.xyz(o1), g.xyz(o2)
	before := min(minAngle(ps, pt, p1), minAngle(pt, ps, p2))
	after := min(minAngle(ps, p2, p1), minAngle(p2, pt, p1))
	return after > before
}

// minAngle returns the smallest interior angle of triangle abc.
func minAngle(a, b, c r3.Vec) float64 {
	return min(angle(a, b, c), angle(b, c, a), angle(c, a, b))
}

// angle returns the angle at a between ab and ac.
func angle(a, b, c r3.Vec) float64 {
	u, v := r3.Sub(b, a), r3.Sub(c, a)
	d := r3.Norm(u) * r3.Norm(v)
	if d == 0 {
		return 0
	}
	return math.Acos(max(-1, min(1, r3.Dot(u, v)/d)))
}

// circumspherePoint returns a point on the smallest sphere through a, b, c,
// displaced from the circumcenter along the triangle normal.
func circumspherePoint(a, b, c r3.Vec) (r3.Vec, bool) {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	n := r3.Cross(ab, ac)
	n2 := r3.Norm2(n)
	if n2 == 0 {
		return r3.Vec{}, false
	}
	num := r3.Add(r3.Scale(r3.Norm2(ac), r3.Cross(n, ab)), r3.Scale(r3.Norm2(ab), r3.Cross(ac, n)))
	off := r3.Scale(0.5/n2, num)
	center := r3.Add(a, off)
	r := r3.Norm(off)
	return r3.Add(center, r3.Scale(r, r3.Unit(n))), true
}

// orient3D is the determinant of [a-d; b-d; c-d].
func orient3D(a, b, c, d r3.Vec) float64 {
	m := mat.NewDense(3, 3, nil)
	for i, p := range [3]r3.Vec{a, b, c} {
		q := r3.Sub(p, d)
		m.SetRow(i, []float64{q.X, q.Y, q.Z})
	}
	return mat.Det(m)
}

// inSphere is the lifted 4x4 determinant; together with orient3D its sign
// tells whether e lies inside the sphere through a, b, c, d.
func inSphere(a, b, c, d, e r3.Vec) float64 {
	m := mat.NewDense(4, 4, nil)
	for i, p := range [4]r3.Vec{a, b, c, d} {
		q := r3.Sub(p, e)
		m.SetRow(i, []float64{q.X, q.Y, q.Z, r3.Norm2(q)})
	}
	return mat.Det(m)
}
