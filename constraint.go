package uvmesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// closeTol2 is the squared parameter distance at which the last point
	// of a chain closes it onto the first.
	closeTol2 = 1e-24

	// maxCurveDepth bounds the bisection depth of DiscretizeCurve.
	maxCurveDepth = 16
)

// InsertConstraint inserts the polyline through the parameter points uv as
// constrained edges. A chain whose last point equals its first is closed.
// Constrained is always added to flags.
//
// Points outside the current mesh are first rejected and then retried with
// outward extension enabled. The error wraps ErrConstraintFailed and the
// triangulation Status when the chain cannot be inserted completely.
func (m *Mesher) InsertConstraint(uv []r2.Vec, flags EdgeFlag) error {
	if err := m.require(StateInitialized, StateSmoothed); err != nil {
		return err
	}
	if len(uv) < 2 {
		return fmt.Errorf("%w: chain of %d points", ErrConstraintFailed, len(uv))
	}

	chain := make([]uint32, len(uv))
	last := len(uv) - 1
	for i, p := range uv {
		if i == last && r2.Norm2(r2.Sub(p, uv[0])) <= closeTol2 {
			chain[i] = chain[0]
			continue
		}
		chain[i] = m.addVertex(p)
	}
	flags |= Constrained

	n := m.core.InsertConstraint(chain, flags, true)
	if n < len(chain) && m.core.Status() == InsertPointOutOfDomain && !m.core.Extension() {
		Logger().Warn("uvmesh: constraint outside mesh, retrying with extension",
			"inserted", n, "want", len(chain))
		m.core.SetExtension(true)
		n = m.core.InsertConstraint(chain, flags, true)
		m.core.SetExtension(m.opts.extension)
	}
	if n < len(chain) {
		if strict {
			panic(fmt.Sprintf("uvmesh: constraint inserted %d of %d vertices: %v", n, len(chain), m.core.Status()))
		}
		return fmt.Errorf("%w: inserted %d of %d vertices: %w", ErrConstraintFailed, n, len(chain), m.core.Status())
	}
	m.advance(StateConstrained)
	return nil
}

// sampleCurve evaluates c at t on the surface.
func (m *Mesher) sampleCurve(c Curve, t float64) CurveSample {
	uv := c.Eval(t)
	d := c.Derive(t)
	cl := clampUV(uv)
	p, su, sv := m.surf.Plane(cl.X, cl.Y)
	return CurveSample{
		T:       t,
		UV:      uv,
		XYZ:     p,
		Tangent: r3.Add(r3.Scale(d.X, su), r3.Scale(d.Y, sv)),
	}
}

// DiscretizeCurve subdivides the parameter curve c until crit accepts
// every piece and returns the resulting points, including both ends.
func (m *Mesher) DiscretizeCurve(c Curve, crit Criterion) []r2.Vec {
	crit.Bind(&m.vx, m.surf)

	// Closed curves start with three pieces so the chain encloses an area.
	pieces := 1
	if r2.Norm2(r2.Sub(c.Eval(0), c.Eval(1))) <= closeTol2 {
		pieces = 3
	}

	out := []r2.Vec{c.Eval(0)}
	var split func(a, b CurveSample, depth int)
	split = func(a, b CurveSample, depth int) {
		mid := m.sampleCurve(c, 0.5*(a.T+b.T))
		if depth < maxCurveDepth && crit.SplitCurve(a, mid, b) {
			split(a, mid, depth+1)
			split(mid, b, depth+1)
			return
		}
		out = append(out, b.UV)
	}
	a := m.sampleCurve(c, 0)
	for i := 1; i <= pieces; i++ {
		b := m.sampleCurve(c, float64(i)/float64(pieces))
		split(a, b, 0)
		a = b
	}
	if pieces > 1 {
		out[len(out)-1] = out[0]
	}
	return out
}

// InsertCurve discretizes c with crit and inserts it as a constraint.
func (m *Mesher) InsertCurve(c Curve, crit Criterion, flags EdgeFlag) error {
	return m.InsertConstraint(m.DiscretizeCurve(c, crit), flags)
}

// InsertBoundary discretizes the four sides of the unit square with crit
// and inserts them as one closed constraint loop. After an enclosing seed,
// the faces outside the loop are removed.
func (m *Mesher) InsertBoundary(crit Criterion) error {
	corners := [5]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	var loop []r2.Vec
	for i := range 4 {
		pts := m.DiscretizeCurve(segment{a: corners[i], b: corners[i+1]}, crit)
		if i > 0 {
			pts = pts[1:]
		}
		loop = append(loop, pts...)
	}
	loop[len(loop)-1] = loop[0]
	if err := m.InsertConstraint(loop, 0); err != nil {
		return err
	}
	if m.aux > 0 {
		n := m.PunchOutside()
		Logger().Debug("uvmesh: removed faces outside boundary", "faces", n)
	}
	return nil
}

// segment is the straight parameter curve from a to b.
type segment struct{ a, b r2.Vec }

func (s segment) Eval(t float64) r2.Vec {
	return r2.Add(s.a, r2.Scale(t, r2.Sub(s.b, s.a)))
}

func (s segment) Derive(float64) r2.Vec { return r2.Sub(s.b, s.a) }
