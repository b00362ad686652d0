package uvmesh

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/gogpu/uvmesh/internal/delaunay"
)

const (
	defaultMaxNodes  = 1 << 20
	defaultMaxPasses = 64

	// faceChunk is the minimum number of faces per parallel work item.
	faceChunk = 64
)

// Refine inserts vertices until crit accepts every face, the node budget
// is reached or no pass makes progress. Each pass evaluates crit on all
// faces in parallel and then applies the directives sequentially, skipping
// faces changed earlier in the same pass.
func (m *Mesher) Refine(crit Criterion) error {
	if err := m.require(StateInitialized, StateSmoothed); err != nil {
		return err
	}
	crit.Bind(&m.vx, m.surf)
	maxNodes, maxPasses := crit.Budget()
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}

	// Refinement vertices must land inside the mesh.
	m.core.SetExtension(false)
	defer m.core.SetExtension(m.opts.extension)

	live := m.liveVertices()
	inserted := 0
	for pass := range maxPasses {
		nf := m.core.NFaces()
		faces := make([][3]uint32, nf)
		flags := make([]SplitFlag, nf)
		for f := range nf {
			if fc := m.core.Face(uint32(f)); fc.Valid() && !m.touchesAux(fc) {
				faces[f] = fc.Vertices()
			} else {
				faces[f][0] = delaunay.NotFound
			}
		}
		m.pool.For(nf, faceChunk, func(i int) {
			if v := faces[i]; v[0] != delaunay.NotFound {
				flags[i] = crit.SplitFace(v[0], v[1], v[2])
			}
		})

		n, failed := 0, 0
		for f := range nf {
			if !flags[f].Split() {
				continue
			}
			if live >= maxNodes {
				break
			}
			if m.core.Face(uint32(f)).Vertices() != faces[f] {
				continue
			}
			if !m.splitFace(uint32(f), flags[f]) {
				failed++
				continue
			}
			n++
			live++
			inserted++
			if m.opts.smoothEvery > 0 && inserted%m.opts.smoothEvery == 0 {
				m.smoothPass(0.5, false)
			}
		}
		Logger().Debug("uvmesh: refinement pass",
			"pass", pass, "inserted", n, "failed", failed, "faces", m.core.NValidFaces())
		if n == 0 || live >= maxNodes {
			break
		}
	}
	if live >= maxNodes {
		Logger().Debug("uvmesh: node budget reached", "nodes", live)
	}
	if flips := m.core.LegalizeAll(); m.core.Status() != StatusOk {
		Logger().Warn("uvmesh: legalization did not converge", "flips", flips, "status", m.core.Status())
	}
	if Logger().Enabled(context.Background(), slog.LevelDebug) {
		if err := m.core.Check(); err != nil {
			Logger().Error("uvmesh: inconsistent topology after refinement", "err", err)
		}
	}
	m.advance(StateRefined)
	return nil
}

// liveVertices counts the surface vertices present in the mesh. Vertices
// created for a split that was then refused stay in the arrays but do not
// count.
func (m *Mesher) liveVertices() int {
	n := 0
	for v := m.aux; v < uint32(m.vx.Len()); v++ {
		if m.core.IsPresent(v) {
			n++
		}
	}
	return n
}

func (m *Mesher) touchesAux(f delaunay.Face) bool {
	v := f.Vertices()
	return m.isAux(v[0]) || m.isAux(v[1]) || m.isAux(v[2])
}

// splitFace applies directive fl to face f and reports whether a vertex
// was inserted.
func (m *Mesher) splitFace(f uint32, fl SplitFlag) bool {
	fc := m.core.Face(f)
	v := fc.Vertices()
	switch {
	case fl&InsertTriCenter != 0:
		a, b, c := m.geo.Point(v[0]), m.geo.Point(v[1]), m.geo.Point(v[2])
		x := m.addSplitVertex(r2.Scale(1.0/3, r2.Add(r2.Add(a, b), c)), v[:]...)
		return m.core.SplitFace(f, x, true)

	case fl&InsertCircumCenter != 0:
		if m.insertCircumCenter(fc) {
			return true
		}
		k := fl.Edge()
		if k < 0 {
			k = m.longestEdge(fc)
		}
		return m.splitEdge(fc.Edge(k))

	case fl.Edge() >= 0:
		return m.splitEdge(fc.Edge(fl.Edge()))
	}
	return false
}

// insertCircumCenter inserts the working plane circumcenter of fc. When the
// point would encroach upon a protected constrained edge, that edge is
// split instead.
func (m *Mesher) insertCircumCenter(fc delaunay.Face) bool {
	v := fc.Vertices()
	cc, ok := circumcenter(m.geo.Point(v[0]), m.geo.Point(v[1]), m.geo.Point(v[2]))
	if !ok {
		return false
	}
	uv := m.mp.Invert(cc)
	if !inUnitSquare(uv) {
		return false
	}
	x := m.addVertexAt(uv, cc)
	res, _ := m.core.InsertVertex(x, true)
	switch {
	case res == delaunay.FaceSplit || res == delaunay.EdgeSplit:
		return true
	case m.core.Status() == ProtectedConstraintEncroached:
		a, b := m.core.Encroached()
		if a == delaunay.NotFound {
			return false
		}
		return m.splitEdge(a, b)
	}
	return false
}

// splitEdge inserts the midpoint of edge (a,b). An edge along a side of
// the parameter domain is split at its parameter midpoint, which stays on
// that side; the side is curved in the working plane. Other edges are split
// at their working plane midpoint.
func (m *Mesher) splitEdge(a, b uint32) bool {
	e, ok := m.core.FindEdge(a, b)
	if !ok || e.Check(NeverSplit) {
		return false
	}
	var x uint32
	if ua, ub := m.vx.UV[a], m.vx.UV[b]; !m.isAux(a) && !m.isAux(b) && sameSide(ua, ub) {
		x = m.addVertex(r2.Scale(0.5, r2.Add(ua, ub)))
	} else {
		x = m.addSplitVertex(r2.Scale(0.5, r2.Add(m.geo.Point(a), m.geo.Point(b))), a, b)
	}
	return m.core.SplitEdge(a, b, x, true)
}

// addSplitVertex creates a vertex at working plane point st between the
// vertices from. If those all lie in the parameter domain but st maps
// outside it, the vertex is moved onto the nearest side.
func (m *Mesher) addSplitVertex(st r2.Vec, from ...uint32) uint32 {
	uv := m.mp.Invert(st)
	if c := clampUV(uv); c != uv && m.inDomain(from...) {
		return m.addVertex(c)
	}
	return m.addVertexAt(uv, st)
}

func (m *Mesher) inDomain(vs ...uint32) bool {
	for _, v := range vs {
		if m.isAux(v) || !inUnitSquare(m.vx.UV[v]) {
			return false
		}
	}
	return true
}

// sameSide reports whether a and b lie on one side of the unit square.
func sameSide(a, b r2.Vec) bool {
	return (a.X == 0 && b.X == 0) || (a.X == 1 && b.X == 1) ||
		(a.Y == 0 && b.Y == 0) || (a.Y == 1 && b.Y == 1)
}

func (m *Mesher) longestEdge(fc delaunay.Face) int {
	var l [3]float64
	for k := range 3 {
		a, b := fc.Edge(k)
		l[k] = r2.Norm2(r2.Sub(m.geo.Point(b), m.geo.Point(a)))
	}
	return longest(l)
}

func inUnitSquare(uv r2.Vec) bool {
	return uv.X >= 0 && uv.X <= 1 && uv.Y >= 0 && uv.Y <= 1
}

// circumcenter returns the center of the circle through a, b, c.
func circumcenter(a, b, c r2.Vec) (r2.Vec, bool) {
	ba, ca := r2.Sub(b, a), r2.Sub(c, a)
	d := 2 * r2.Cross(ba, ca)
	if d == 0 || math.IsNaN(d) {
		return r2.Vec{}, false
	}
	lb, lc := r2.Norm2(ba), r2.Norm2(ca)
	return r2.Vec{
		X: a.X + (ca.Y*lb-ba.Y*lc)/d,
		Y: a.Y + (ba.X*lc-ca.X*lb)/d,
	}, true
}

// String implements fmt.Stringer for debugging output.
func (m *Mesher) String() string {
	return fmt.Sprintf("Mesher{state: %v, vertices: %d, faces: %d}", m.state, m.vx.Len(), m.core.NValidFaces())
}
