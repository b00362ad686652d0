package uvmesh

import "github.com/gogpu/uvmesh/internal/mapping"

// GeometryKind selects the Delaunay criterion of a meshing session.
type GeometryKind uint8

const (
	// PlaneGeometry evaluates the 2D in-circle test in the working plane.
	PlaneGeometry GeometryKind = iota

	// SpatialGeometry evaluates an in-sphere test on the surface points,
	// matching the legacy 3D Delaunay criterion.
	SpatialGeometry
)

// String implements fmt.Stringer.
func (k GeometryKind) String() string {
	if k == SpatialGeometry {
		return "spatial"
	}
	return "plane"
}

// Option configures a Mesher during creation.
//
// Example:
//
//	m, err := uvmesh.New(ctx, surf,
//	    uvmesh.WithGeometry(uvmesh.SpatialGeometry),
//	    uvmesh.WithWorkers(8))
type Option func(*options)

type options struct {
	geometry    GeometryKind
	mergeTol    float64
	extension   bool
	protect     bool
	mapping     mapping.Config
	workers     int
	smoothEvery int
	seed        uint64
	projTol     float64
}

func defaultOptions() options {
	return options{
		geometry:    PlaneGeometry,
		mergeTol:    1e-20,
		mapping:     mapping.DefaultConfig(),
		smoothEvery: 0,
		seed:        1,
		projTol:     1e-10,
	}
}

// WithGeometry selects the plane or spatial Delaunay criterion.
func WithGeometry(k GeometryKind) Option {
	return func(o *options) {
		o.geometry = k
	}
}

// WithMergeTolerance sets the squared working-plane distance below which a
// new vertex is merged with an existing one or snapped onto an edge.
func WithMergeTolerance(d2 float64) Option {
	return func(o *options) {
		o.mergeTol = d2
	}
}

// WithExtension allows constraint vertices outside the current mesh to
// extend it outward instead of failing first and being retried.
func WithExtension(on bool) Option {
	return func(o *options) {
		o.extension = on
	}
}

// WithConstraintProtection makes refinement refuse vertices that encroach
// upon constrained edges and split those edges instead.
func WithConstraintProtection(on bool) Option {
	return func(o *options) {
		o.protect = on
	}
}

// WithMappingGrid sets the size of the sample grid for the parameter map
// fit. The surface's own grid pattern, if any, takes precedence.
func WithMappingGrid(nu, nv int) Option {
	return func(o *options) {
		o.mapping.NU, o.mapping.NV = nu, nv
	}
}

// WithMappingControl sets the number of spline control points per
// direction of the parameter map.
func WithMappingControl(n int) Option {
	return func(o *options) {
		o.mapping.Control = n
	}
}

// WithMappingTolerance sets the convergence tolerance of the inverse
// parameter map.
func WithMappingTolerance(tol float64) Option {
	return func(o *options) {
		o.mapping.Tol = tol
	}
}

// WithWorkers sets the number of goroutines used for read-only parallel
// work. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
		if n > 0 {
			o.mapping.Workers = n
		}
	}
}

// WithSmoothingInterval runs a partial smoothing pass after every n
// refinement insertions. Zero disables it.
func WithSmoothingInterval(n int) Option {
	return func(o *options) {
		o.smoothEvery = n
	}
}

// WithSeed seeds the vertex order shuffling of smoothing passes.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithProjectionTolerance sets the tolerance passed to Surface.Project.
func WithProjectionTolerance(tol float64) Option {
	return func(o *options) {
		o.projTol = tol
	}
}
