package uvmesh

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a parametric surface over the unit square. The mesher only
// consumes it through this contract. Implementations must be safe for
// concurrent reads, since evaluation is parallelized during the mapping
// fit and mesh extraction.
type Surface interface {
	// Eval returns the point at (u,v).
	Eval(u, v float64) r3.Vec

	// Derive returns the partial derivative of order ku in u and kv in v.
	Derive(u, v float64, ku, kv int) r3.Vec

	// Plane returns the point and both first derivatives in one call.
	Plane(u, v float64) (s, su, sv r3.Vec)

	// Project finds the parameters of the surface point closest to p,
	// starting from and updating *uv. It reports whether the iteration
	// converged within tol.
	Project(p r3.Vec, uv *r2.Vec, tol float64) bool

	// InitGridPattern returns parameter values suggesting the sampling
	// density in u and v. Either slice may be empty.
	InitGridPattern() (up, vp []float64)

	// IsSymmetric reports mirror symmetry about u = 0.5 and v = 0.5.
	IsSymmetric() (u, v bool)
}

// Curve is a curve in the parameter plane, used for boundaries and
// interior constraints.
type Curve interface {
	// Eval returns the parameter point at t in [0,1].
	Eval(t float64) r2.Vec

	// Derive returns d(u,v)/dt.
	Derive(t float64) r2.Vec
}

// Vertices holds the parallel per-vertex arrays of a meshing session. All
// slices have the same length and are indexed by vertex.
type Vertices struct {
	UV     []r2.Vec
	ST     []r2.Vec
	XYZ    []r3.Vec
	Normal []r3.Vec
}

// Len returns the number of vertices.
func (v *Vertices) Len() int { return len(v.UV) }

func (v *Vertices) push(uv, st r2.Vec, p, n r3.Vec) uint32 {
	v.UV = append(v.UV, uv)
	v.ST = append(v.ST, st)
	v.XYZ = append(v.XYZ, p)
	v.Normal = append(v.Normal, n)
	return uint32(len(v.UV) - 1)
}

func (v *Vertices) set(i uint32, uv, st r2.Vec, p, n r3.Vec) {
	v.UV[i], v.ST[i], v.XYZ[i], v.Normal[i] = uv, st, p, n
}

// normal returns the unit surface normal from the first derivatives, or
// the zero vector where they are parallel.
func normal(su, sv r3.Vec) r3.Vec {
	n := r3.Cross(su, sv)
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{}
}
