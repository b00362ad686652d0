package uvmesh

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/uvmesh/internal/delaunay"
	"github.com/gogpu/uvmesh/internal/mapping"
	"github.com/gogpu/uvmesh/internal/parallel"
	"github.com/gogpu/uvmesh/internal/robust"
)

// State is the lifecycle stage of a Mesher.
type State uint8

const (
	StateEmpty State = iota
	StateInitialized
	StateConstrained
	StateRefined
	StateSmoothed
	StateExtracted
)

var stateNames = [...]string{
	StateEmpty:       "empty",
	StateInitialized: "initialized",
	StateConstrained: "constrained",
	StateRefined:     "refined",
	StateSmoothed:    "smoothed",
	StateExtracted:   "extracted",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Mesher triangulates one parametric surface. Triangulation happens in the
// working plane (s,t) = (u, t(u,v)), where t is a fitted map that makes
// plane Delaunay triangles well shaped on the surface.
//
// A Mesher is not safe for concurrent use. Internally it runs read-only
// per-face and per-vertex work on a worker pool.
type Mesher struct {
	surf  Surface
	opts  options
	mp    *mapping.Map
	vx    Vertices
	geo   delaunay.Geometry
	core  *delaunay.Core
	pool  *parallel.WorkerPool
	rng   *rand.Rand
	state State

	// aux is the number of leading vertices that belong to an enclosing
	// seed and are not part of the surface.
	aux uint32
}

// New fits the parameter map of s and returns an empty mesher. It fails
// with ErrDegenerateSurface if no map can be fitted.
func New(ctx context.Context, s Surface, opts ...Option) (*Mesher, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.mapping
	up, vp := s.InitGridPattern()
	if len(up) > 1 {
		cfg.UPattern = up
	}
	if len(vp) > 1 {
		cfg.VPattern = vp
	}
	cfg.MirrorU, cfg.MirrorV = s.IsSymmetric()

	mp, err := mapping.Build(ctx, s, cfg)
	if err != nil {
		if errors.Is(err, mapping.ErrDegenerate) {
			return nil, fmt.Errorf("%w: %w", ErrDegenerateSurface, err)
		}
		return nil, err
	}

	m := &Mesher{
		surf: s,
		opts: o,
		mp:   mp,
		pool: parallel.NewWorkerPool(o.workers),
		rng:  rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)),
	}

	lo, hi := mp.TRange()
	pad := 0.25 * max(1, hi-lo)
	blo := r2.Vec{X: -0.25, Y: lo - pad}
	bhi := r2.Vec{X: 1.25, Y: hi + pad}
	switch o.geometry {
	case SpatialGeometry:
		m.geo = delaunay.NewSpatialGeometry(blo, bhi, o.mergeTol, func(v uint32) r3.Vec { return m.vx.XYZ[v] })
	default:
		m.geo = delaunay.NewPlaneGeometry(blo, bhi, o.mergeTol)
	}
	m.core = delaunay.NewCore(m.geo)
	m.core.SetExtension(o.extension)
	m.core.SetProtection(o.protect)
	m.core.SetInjector(m.addVertexST)
	return m, nil
}

// State returns the lifecycle stage.
func (m *Mesher) State() State { return m.state }

// Geometry returns the Delaunay criterion in use.
func (m *Mesher) Geometry() GeometryKind { return m.opts.geometry }

// MappingFallback reports whether the parameter map is the single-patch
// fallback fitted against the tangent length ratio only.
func (m *Mesher) MappingFallback() bool { return m.mp.Fallback() }

// ST maps a parameter point into the working plane.
func (m *Mesher) ST(uv r2.Vec) r2.Vec { return m.mp.ST(uv) }

// UV maps a working plane point back to parameters.
func (m *Mesher) UV(st r2.Vec) r2.Vec { return m.mp.Invert(st) }

// Vertices returns the vertex arrays of the session. The arrays grow as
// vertices are inserted and must not be modified by the caller.
func (m *Mesher) Vertices() *Vertices { return &m.vx }

// NFaces returns the number of live faces.
func (m *Mesher) NFaces() int { return m.core.NValidFaces() }

// Check verifies the topological consistency of the triangulation.
func (m *Mesher) Check() error { return m.core.Check() }

// Close releases the worker pool. The mesher must not be used afterwards.
func (m *Mesher) Close() {
	m.pool.Close()
}

func (m *Mesher) require(lo, hi State) error {
	if m.state < lo || m.state > hi {
		return fmt.Errorf("%w: %v", ErrInvalidState, m.state)
	}
	return nil
}

func (m *Mesher) advance(s State) {
	if m.state < s {
		m.state = s
	}
}

// clampUV restricts uv to the unit square, where the surface is defined.
func clampUV(uv r2.Vec) r2.Vec {
	return r2.Vec{X: min(max(uv.X, 0), 1), Y: min(max(uv.Y, 0), 1)}
}

// evaluate returns the surface point and normal at uv.
func (m *Mesher) evaluate(uv r2.Vec) (r3.Vec, r3.Vec) {
	c := clampUV(uv)
	s, su, sv := m.surf.Plane(c.X, c.Y)
	return s, normal(su, sv)
}

// addVertex creates a vertex at uv in every coordinate space.
func (m *Mesher) addVertex(uv r2.Vec) uint32 {
	return m.addVertexAt(uv, m.mp.ST(uv))
}

// addVertexST creates a vertex at working plane point st. The working plane
// position is kept exactly so that points constructed on an edge stay on it.
func (m *Mesher) addVertexST(st r2.Vec) uint32 {
	return m.addVertexAt(m.mp.Invert(st), st)
}

func (m *Mesher) addVertexAt(uv, st r2.Vec) uint32 {
	p, n := m.evaluate(uv)
	i := m.geo.AddVertex(st)
	if j := m.vx.push(uv, st, p, n); j != i {
		panic(fmt.Sprintf("uvmesh: vertex arrays out of sync (%d != %d)", i, j))
	}
	return i
}

// moveVertex relocates vertex v in every coordinate space.
func (m *Mesher) moveVertex(v uint32, uv, st r2.Vec) {
	p, n := m.evaluate(uv)
	m.geo.MoveVertex(v, st)
	m.vx.set(v, uv, st, p, n)
}

// InitSquare seeds the triangulation with two faces spanning the unit
// square.
func (m *Mesher) InitSquare() error {
	if err := m.require(StateEmpty, StateEmpty); err != nil {
		return err
	}
	for _, uv := range []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}} {
		m.addVertex(uv)
	}
	return m.seed()
}

// InitEnclosing seeds the triangulation with a quad enclosing the image of
// the unit square in the working plane, widened by margin. Use it when
// constraints may extend beyond the parameter domain. Faces touching the
// quad corners are never extracted.
func (m *Mesher) InitEnclosing(margin float64) error {
	if err := m.require(StateEmpty, StateEmpty); err != nil {
		return err
	}
	margin = max(margin, 0.01)
	lo, hi := m.mp.TRange()
	dt := margin * max(1, hi-lo)
	for _, st := range []r2.Vec{
		{X: -margin, Y: lo - dt},
		{X: 1 + margin, Y: lo - dt},
		{X: 1 + margin, Y: hi + dt},
		{X: -margin, Y: hi + dt},
	} {
		m.addVertexST(st)
	}
	m.aux = 4
	return m.seed()
}

func (m *Mesher) seed() error {
	if m.core.AddFace(0, 1, 2) == delaunay.NotFound || m.core.AddFace(0, 2, 3) == delaunay.NotFound {
		return fmt.Errorf("%w: degenerate seed quad", ErrDegenerateSurface)
	}
	if !m.core.Fixate() {
		return fmt.Errorf("uvmesh: seed triangulation: %w", m.core.Status())
	}
	m.advance(StateInitialized)
	Logger().Debug("uvmesh: seeded", "enclosing", m.aux > 0, "fallback", m.mp.Fallback())
	return nil
}

func (m *Mesher) isAux(v uint32) bool { return v < m.aux }

// findFace returns the live face containing st, or NotFound.
func (m *Mesher) findFace(st r2.Vec) uint32 {
	for f := range m.core.NFaces() {
		fc := m.core.Face(uint32(f))
		if !fc.Valid() {
			continue
		}
		inside := true
		for k := range 3 {
			a, b := fc.Edge(k)
			if robust.Orient2D(m.geo.Point(a), m.geo.Point(b), st) < 0 {
				inside = false
				break
			}
		}
		if inside {
			return uint32(f)
		}
	}
	return delaunay.NotFound
}

// PunchHole removes the region around uv that is enclosed by constrained
// edges and returns the number of faces removed.
func (m *Mesher) PunchHole(uv r2.Vec) (int, error) {
	if err := m.require(StateInitialized, StateSmoothed); err != nil {
		return 0, err
	}
	f := m.findFace(m.mp.ST(uv))
	if f == delaunay.NotFound {
		return 0, fmt.Errorf("%w: (%g, %g)", ErrPointNotFound, uv.X, uv.Y)
	}
	return m.core.EatHole(f), nil
}

// PunchOutside removes every face reachable from the corners of an
// enclosing seed without crossing a constrained edge. It returns the number
// of faces removed.
func (m *Mesher) PunchOutside() int {
	n := 0
	for v := range m.aux {
		for _, f := range m.core.FacesAround(v) {
			n += m.core.EatHole(f)
		}
	}
	return n
}
