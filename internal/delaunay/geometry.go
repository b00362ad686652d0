package delaunay

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/gogpu/uvmesh/internal/robust"
)

// Geometry answers every geometric question the core asks. The core itself
// only manipulates indices; all coordinates live behind this interface.
//
// Implementations own the working-plane coordinates of the vertices. The
// vertex array only grows during a session and is reset by Clear.
type Geometry interface {
	// Orientation of the vertices a, b, c in the working plane.
	Orientation(a, b, c uint32) Orientation

	// Locate finds the face containing vertex v, or the boundary face
	// beyond whose edge v lies.
	Locate(c *Core, v uint32) (uint32, PointLoc)

	// Encroaches reports whether v lies strictly inside the circumcircle
	// (or circumsphere) of the counter-clockwise triangle tri.
	Encroaches(tri [3]uint32, v uint32) bool

	// EncroachesEdge reports whether v lies inside the diametral circle of
	// the edge (src, trg).
	EncroachesEdge(src, trg, v uint32) bool

	// EdgesIntersect classifies the segments (as,at) and (bs,bt).
	EdgesIntersect(as, at, bs, bt uint32) Intersection

	// IntersectionPoint returns the crossing point of the two segments.
	IntersectionPoint(as, at, bs, bt uint32) r2.Vec

	// InsertFace and EraseFace keep the spatial face index in sync with the
	// live face set.
	InsertFace(c *Core, f uint32)
	EraseFace(c *Core, f uint32)

	// RebuildIndex discards and rebuilds the face index, for instance after
	// a batch of vertex moves.
	RebuildIndex(c *Core)

	AddVertex(p r2.Vec) uint32
	MoveVertex(v uint32, p r2.Vec)
	Point(v uint32) r2.Vec
	NVertices() int
	Clear()
}

// planar implements everything except Encroaches, which is where the plane
// and spatial variants differ.
type planar struct {
	pts      []r2.Vec
	index    *faceIndex
	mergeTol float64
}

func newPlanar(lo, hi r2.Vec, mergeTol float64) planar {
	return planar{index: newFaceIndex(lo, hi), mergeTol: mergeTol}
}

func (g *planar) AddVertex(p r2.Vec) uint32 {
	g.pts = append(g.pts, p)
	return uint32(len(g.pts) - 1)
}

func (g *planar) MoveVertex(v uint32, p r2.Vec) { g.pts[v] = p }

func (g *planar) Point(v uint32) r2.Vec { return g.pts[v] }

func (g *planar) NVertices() int { return len(g.pts) }

// MergeTolerance returns the squared distance below which a point is
// considered to coincide with a vertex or lie on an edge.
func (g *planar) MergeTolerance() float64 { return g.mergeTol }

func (g *planar) Clear() {
	g.pts = g.pts[:0]
	g.index.clear()
}

func (g *planar) Orientation(a, b, c uint32) Orientation {
	return Orientation(robust.Orient2D(g.pts[a], g.pts[b], g.pts[c]))
}

func (g *planar) EncroachesEdge(src, trg, v uint32) bool {
	p := g.pts[v]
	return r2.Dot(r2.Sub(g.pts[src], p), r2.Sub(g.pts[trg], p)) < 0
}

func (g *planar) EdgesIntersect(as, at, bs, bt uint32) Intersection {
	o1 := g.Orientation(as, at, bs)
	o2 := g.Orientation(as, at, bt)
	if o1 == Colinear && o2 == Colinear {
		if g.colinearOverlap(as, at, bs, bt) {
			return ColinearIntersection
		}
		return NoIntersection
	}
	o3 := g.Orientation(bs, bt, as)
	o4 := g.Orientation(bs, bt, at)
	if o1*o2 > 0 || o3*o4 > 0 {
		return NoIntersection
	}
	if o1 != Colinear && o2 != Colinear && o3 != Colinear && o4 != Colinear {
		return Intersect
	}
	return Touch
}

// colinearOverlap checks whether two segments on a common line share more
// than an endpoint.
func (g *planar) colinearOverlap(as, at, bs, bt uint32) bool {
	a0, a1 := g.pts[as], g.pts[at]
	d := r2.Sub(a1, a0)
	l := r2.Dot(d, d)
	if l == 0 {
		return false
	}
	t0 := r2.Dot(r2.Sub(g.pts[bs], a0), d) / l
	t1 := r2.Dot(r2.Sub(g.pts[bt], a0), d) / l
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t1 > 0 && t0 < 1
}

func (g *planar) IntersectionPoint(as, at, bs, bt uint32) r2.Vec {
	a0, a1 := g.pts[as], g.pts[at]
	b0, b1 := g.pts[bs], g.pts[bt]
	da := robust.Orient2DValue(b0, b1, a0)
	db := robust.Orient2DValue(b0, b1, a1)
	if da == db {
		return r2.Scale(0.5, r2.Add(a0, a1))
	}
	t := math.Max(0, math.Min(1, da/(da-db)))
	return r2.Add(a0, r2.Scale(t, r2.Sub(a1, a0)))
}

func (g *planar) centroid(f Face) r2.Vec {
	p := r2.Add(r2.Add(g.pts[f.v[0]], g.pts[f.v[1]]), g.pts[f.v[2]])
	return r2.Scale(1.0/3.0, p)
}

func (g *planar) InsertFace(c *Core, f uint32) {
	g.index.insert(f, g.centroid(c.faces[f]))
}

func (g *planar) EraseFace(_ *Core, f uint32) { g.index.erase(f) }

func (g *planar) RebuildIndex(c *Core) {
	g.index.clear()
	for f, fc := range c.faces {
		if fc.Valid() {
			g.index.insert(uint32(f), g.centroid(fc))
		}
	}
}

// classify locates point p (vertex v) relative to face f. For points
// outside the face it returns the BeyondEdge variant of the first edge
// that separates p from the face, skipping the edge shared with face
// from, so that walks do not bounce back and forth.
func (g *planar) classify(c *Core, fi uint32, v uint32, from uint32) PointLoc {
	f := c.faces[fi]
	p := g.pts[v]
	for k := range 3 {
		if w := f.v[k]; w == v || dist2(g.pts[w], p) <= g.mergeTol {
			return OnVertex + PointLoc(k)
		}
	}

	var o [3]Orientation
	beyond := -1
	for k := range 3 {
		a, b := f.Edge(k)
		o[k] = g.Orientation(a, b, v)
		if o[k] == Clockwise && beyond < 0 {
			if from == NotFound || c.NeighborFace(fi, k) != from {
				beyond = k
			}
		}
	}
	if beyond < 0 {
		for k := range 3 {
			if o[k] == Clockwise {
				beyond = k
				break
			}
		}
	}
	if beyond >= 0 {
		// Slightly outside a boundary edge counts as on the edge.
		a, b := f.Edge(beyond)
		if c.NeighborFace(fi, beyond) == NotFound && g.nearSegment(a, b, p) {
			return OnEdge + PointLoc(beyond)
		}
		return BeyondEdge + PointLoc(beyond)
	}
	for k := range 3 {
		if o[k] == Colinear {
			return OnEdge + PointLoc(k)
		}
	}
	for k := range 3 {
		a, b := f.Edge(k)
		if g.nearSegment(a, b, p) {
			return OnEdge + PointLoc(k)
		}
	}
	return Inside
}

// nearSegment reports whether p projects onto the interior of segment ab
// within the merge distance.
func (g *planar) nearSegment(a, b uint32, p r2.Vec) bool {
	if g.mergeTol <= 0 {
		return false
	}
	pa, pb := g.pts[a], g.pts[b]
	d := r2.Sub(pb, pa)
	l := r2.Dot(d, d)
	if l == 0 {
		return false
	}
	t := r2.Dot(r2.Sub(p, pa), d) / l
	if t <= 0 || t >= 1 {
		return false
	}
	return dist2(r2.Add(pa, r2.Scale(t, d)), p) <= g.mergeTol
}

// Locate walks from the face nearest in Z-order towards vertex v. When the
// walk hits the mesh boundary or does not terminate, it falls back to a
// linear scan, which also handles non-convex domains.
func (g *planar) Locate(c *Core, v uint32) (uint32, PointLoc) {
	f := g.index.nearest(g.pts[v])
	if f == NotFound || !c.faces[f].Valid() {
		f = c.firstValidFace()
		if f == NotFound {
			return NotFound, Outside
		}
	}

	from := uint32(NotFound)
	limit := c.NFaces() + 8
	for range limit {
		loc := g.classify(c, f, v, from)
		if !loc.IsBeyondEdge() {
			return f, loc
		}
		nb := c.NeighborFace(f, loc.Index())
		if nb == NotFound {
			return g.scan(c, v)
		}
		from, f = f, nb
	}
	slogger().Debug("delaunay: locate walk did not terminate", "vertex", v)
	return g.scan(c, v)
}

// scan tests every face. If none contains v, the nearest boundary edge
// that sees v is reported as BeyondEdge.
func (g *planar) scan(c *Core, v uint32) (uint32, PointLoc) {
	best, bestLoc := uint32(NotFound), Outside
	bestDist := math.Inf(1)
	p := g.pts[v]
	for i, f := range c.faces {
		if !f.Valid() {
			continue
		}
		fi := uint32(i)
		loc := g.classify(c, fi, v, NotFound)
		if !loc.IsBeyondEdge() {
			return fi, loc
		}
		for k := range 3 {
			if c.NeighborFace(fi, k) != NotFound {
				continue
			}
			a, b := f.Edge(k)
			if g.Orientation(a, b, v) != Clockwise {
				continue
			}
			if d := segmentDist2(g.pts[a], g.pts[b], p); d < bestDist {
				best, bestLoc, bestDist = fi, BeyondEdge+PointLoc(k), d
			}
		}
	}
	return best, bestLoc
}

func dist2(a, b r2.Vec) float64 {
	d := r2.Sub(a, b)
	return r2.Dot(d, d)
}

func segmentDist2(a, b, p r2.Vec) float64 {
	d := r2.Sub(b, a)
	l := r2.Dot(d, d)
	if l == 0 {
		return dist2(a, p)
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), d)/l))
	return dist2(r2.Add(a, r2.Scale(t, d)), p)
}

// PlaneGeometry evaluates the Delaunay criterion with the 2D in-circle test
// in the working plane.
type PlaneGeometry struct {
	planar
}

// NewPlaneGeometry creates a plane geometry whose face index covers the box
// [lo, hi]. mergeTol is the squared merge distance.
func NewPlaneGeometry(lo, hi r2.Vec, mergeTol float64) *PlaneGeometry {
	return &PlaneGeometry{planar: newPlanar(lo, hi, mergeTol)}
}

// Encroaches implements Geometry.
func (g *PlaneGeometry) Encroaches(tri [3]uint32, v uint32) bool {
	a, b, c := g.pts[tri[0]], g.pts[tri[1]], g.pts[tri[2]]
	s := robust.InCircle(a, b, c, g.pts[v])
	if robust.Orient2D(a, b, c) < 0 {
		s = -s
	}
	return s > 0
}
