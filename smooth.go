package uvmesh

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gogpu/uvmesh/internal/delaunay"
	"github.com/gogpu/uvmesh/internal/robust"
)

// minOmega is the smallest relaxation factor tried before a move is
// abandoned.
const minOmega = 1.0 / 64

// Smooth relaxes every free vertex iterations times towards the area
// weighted centroid of its incident faces, moving it by the fraction omega.
// Vertices on the boundary or on constrained edges stay fixed. A move that
// would invert an incident face is retried with half the factor. Vertex
// order is shuffled on every pass.
func (m *Mesher) Smooth(iterations int, omega float64) error {
	if err := m.require(StateInitialized, StateSmoothed); err != nil {
		return err
	}
	omega = min(max(omega, 0), 1)
	moved := 0
	for range iterations {
		moved += m.smoothPass(omega, true)
	}
	Logger().Debug("uvmesh: smoothed", "iterations", iterations, "moves", moved)
	m.advance(StateSmoothed)
	return nil
}

// smoothPass runs one relaxation pass and restores the Delaunay property
// afterwards. It returns the number of vertices moved.
func (m *Mesher) smoothPass(omega float64, shuffle bool) int {
	fixed := m.fixedVertices()
	n := m.vx.Len()
	order := make([]uint32, 0, n)
	for v := range uint32(n) {
		if !fixed[v] && m.core.IsPresent(v) {
			order = append(order, v)
		}
	}
	if shuffle {
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	moved := 0
	for _, v := range order {
		if m.relax(v, omega) {
			moved++
		}
	}
	if moved > 0 {
		m.geo.RebuildIndex(m.core)
		if flips := m.core.LegalizeAll(); m.core.Status() != StatusOk {
			Logger().Warn("uvmesh: legalization after smoothing did not converge", "flips", flips)
		}
	}
	return moved
}

// fixedVertices marks the vertices that smoothing must not move: auxiliary
// seed corners and the ends of boundary and constrained edges.
func (m *Mesher) fixedVertices() []bool {
	fixed := make([]bool, m.vx.Len())
	for v := range m.aux {
		fixed[v] = true
	}
	m.core.EachEdge(func(e delaunay.Edge) bool {
		if e.NFaces() < 2 || e.Check(Constrained|Feature|NeverSplit) {
			fixed[e.Source()] = true
			fixed[e.Target()] = true
		}
		return true
	})
	return fixed
}

// relax moves v towards the area weighted centroid of its fan and reports
// whether it moved.
func (m *Mesher) relax(v uint32, omega float64) bool {
	fan := m.core.FacesAround(v)
	if len(fan) < 3 {
		return false
	}
	var target r3.Vec
	wsum := 0.0
	for _, f := range fan {
		t := m.vx.tri(m.core.Face(f).V(0), m.core.Face(f).V(1), m.core.Face(f).V(2))
		e1 := r3.Sub(t.xyz[1], t.xyz[0])
		e2 := r3.Sub(t.xyz[2], t.xyz[0])
		area := 0.5 * r3.Norm(r3.Cross(e1, e2))
		target = r3.Add(target, r3.Scale(area, t.centroid()))
		wsum += area
	}
	if !(wsum > 0) {
		return false
	}
	target = r3.Scale(1/wsum, target)

	p := m.vx.XYZ[v]
	for w := omega; w >= minOmega; w *= 0.5 {
		q := r3.Add(p, r3.Scale(w, r3.Sub(target, p)))
		uv := m.vx.UV[v]
		if !m.surf.Project(q, &uv, m.opts.projTol) || !inUnitSquare(uv) {
			continue
		}
		st := m.mp.ST(uv)
		if m.legalMove(v, st, fan) {
			m.moveVertex(v, uv, st)
			return true
		}
	}
	return false
}

// legalMove reports whether every face of fan stays counter-clockwise with
// v placed at st.
func (m *Mesher) legalMove(v uint32, st r2.Vec, fan []uint32) bool {
	for _, f := range fan {
		var p [3]r2.Vec
		for k, w := range m.core.Face(f).Vertices() {
			if w == v {
				p[k] = st
			} else {
				p[k] = m.geo.Point(w)
			}
		}
		if robust.Orient2D(p[0], p[1], p[2]) <= 0 {
			return false
		}
	}
	return true
}
