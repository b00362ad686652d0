// Package delaunay implements a constrained Delaunay triangulation engine
// that works purely on vertex indices. Coordinates and predicates are
// supplied by a Geometry, so the same topology code runs in the working
// plane (PlaneGeometry) or with a 3D Delaunay criterion (SpatialGeometry).
//
// Faces live in an array with a free list of invalidated slots. Edges live
// in an arena keyed by their canonical (min,max) vertex pair. All mutation
// goes through the core; it is not safe for concurrent use.
package delaunay

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Core owns faces and edges of one triangulation session.
type Core struct {
	geo     Geometry
	faces   []Face
	invalid []uint32
	edges   edgeTable

	// vhint maps a vertex to some face that contained it when last created;
	// NotFound means the vertex was never part of the mesh.
	vhint []uint32

	status     Status
	encroached [2]uint32
	extension  bool
	protect    bool

	inject   func(p r2.Vec) uint32
	injected []uint32
}

// NewCore creates an empty triangulation on top of g.
func NewCore(g Geometry) *Core {
	return &Core{
		geo:        g,
		edges:      newEdgeTable(),
		encroached: [2]uint32{NotFound, NotFound},
	}
}

// Geometry returns the geometry the core was created with.
func (c *Core) Geometry() Geometry { return c.geo }

// Status returns the status of the last fallible operation.
func (c *Core) Status() Status { return c.status }

// ClearStatus resets the status to StatusOk.
func (c *Core) ClearStatus() { c.status = StatusOk }

// SetExtension enables appending faces outward when a vertex lies beyond
// the boundary.
func (c *Core) SetExtension(on bool) { c.extension = on }

// Extension reports whether outward extension is enabled.
func (c *Core) Extension() bool { return c.extension }

// SetProtection makes splits that encroach upon constrained edges fail
// with ProtectedConstraintEncroached.
func (c *Core) SetProtection(on bool) { c.protect = on }

// SetInjector installs the callback that creates a vertex at a working
// plane position. It is used when a constraint crosses a constrained edge
// that may be split; without it such crossings fail.
func (c *Core) SetInjector(fn func(p r2.Vec) uint32) { c.inject = fn }

// Injected returns the vertices created through the injector.
func (c *Core) Injected() []uint32 { return c.injected }

// Encroached returns the constrained edge that blocked the last split.
func (c *Core) Encroached() (uint32, uint32) { return c.encroached[0], c.encroached[1] }

// Clear removes all faces and edges. The geometry is cleared as well.
func (c *Core) Clear() {
	c.faces = c.faces[:0]
	c.invalid = c.invalid[:0]
	c.edges.clear()
	c.vhint = c.vhint[:0]
	c.injected = c.injected[:0]
	c.status = StatusOk
	c.geo.Clear()
}

// NFaces returns the number of face slots, including invalid ones.
func (c *Core) NFaces() int { return len(c.faces) }

// NValidFaces counts the valid faces.
func (c *Core) NValidFaces() int { return len(c.faces) - len(c.invalid) }

// NEdges returns the number of edges.
func (c *Core) NEdges() int { return c.edges.len() }

// Face returns face f.
func (c *Core) Face(f uint32) Face { return c.faces[f] }

// FindEdge returns a copy of edge (a,b).
func (c *Core) FindEdge(a, b uint32) (Edge, bool) {
	h, ok := c.edges.find(a, b)
	if !ok {
		return Edge{}, false
	}
	return *c.edges.at(h), true
}

// SetEdgeFlags sets flags on an existing edge.
func (c *Core) SetEdgeFlags(a, b uint32, f EdgeFlag) bool {
	h, ok := c.edges.find(a, b)
	if ok {
		c.edges.at(h).set(f)
	}
	return ok
}

// ClearEdgeFlags removes flags from an existing edge.
func (c *Core) ClearEdgeFlags(a, b uint32, f EdgeFlag) bool {
	h, ok := c.edges.find(a, b)
	if ok {
		c.edges.at(h).unset(f)
	}
	return ok
}

// EachEdge calls fn with a copy of each edge until fn returns false. fn must
// not modify the triangulation.
func (c *Core) EachEdge(fn func(e Edge) bool) {
	c.edges.each(func(_ uint32, e *Edge) bool { return fn(*e) })
}

// IsPresent reports whether vertex v has been inserted into the mesh.
func (c *Core) IsPresent(v uint32) bool {
	return int(v) < len(c.vhint) && c.vhint[v] != NotFound
}

// AddFace appends the triangle (a,b,c) without creating edges, ordering its
// vertices counter-clockwise. It returns NotFound for colinear vertices.
// Call Fixate once all initial faces are added.
func (c *Core) AddFace(a, b, v uint32) uint32 {
	switch c.geo.Orientation(a, b, v) {
	case Colinear:
		return NotFound
	case Clockwise:
		b, v = v, b
	}
	f := c.allocFace(NewFace(a, b, v))
	c.geo.InsertFace(c, f)
	return f
}

// Fixate derives the edge set from the current faces. It must be called
// only once, on a core without edges; otherwise it logs an error and
// returns false, because rebuilding would drop edge flags.
func (c *Core) Fixate() bool {
	if c.edges.len() > 0 {
		slogger().Error("delaunay: fixate called on core with existing edges", "edges", c.edges.len())
		return false
	}
	for i, f := range c.faces {
		if !f.Valid() {
			continue
		}
		for k := range 3 {
			a, b := f.Edge(k)
			if !c.edges.at(c.edges.insert(a, b)).appendFace(uint32(i)) {
				c.fail(InconsistentTopology, "non-manifold edge in initial mesh", a, b)
			}
		}
	}
	return c.status == StatusOk
}

// EraseDetachedEdges removes edges without neighbor faces and returns how
// many were removed.
func (c *Core) EraseDetachedEdges() int {
	var dead []uint32
	c.edges.each(func(h uint32, e *Edge) bool {
		if e.NFaces() == 0 {
			dead = append(dead, h)
		}
		return true
	})
	for _, h := range dead {
		c.edges.erase(h)
	}
	return len(dead)
}

// NeighborFace returns the face across edge k of face f, or NotFound.
func (c *Core) NeighborFace(f uint32, k int) uint32 {
	a, b := c.faces[f].Edge(k)
	h, ok := c.edges.find(a, b)
	if !ok {
		return NotFound
	}
	return c.edges.at(h).OtherFace(f)
}

// FacesAround returns the faces incident to vertex v, in rotational order.
func (c *Core) FacesAround(v uint32) []uint32 {
	start := c.startFace(v)
	if start == NotFound {
		return nil
	}
	out := []uint32{start}
	limit := c.NFaces()

	f := start
	for len(out) <= limit {
		k := c.faces[f].Find(v)
		nb := c.NeighborFace(f, k)
		if nb == NotFound {
			break
		}
		if nb == start {
			return out
		}
		out = append(out, nb)
		f = nb
	}

	// Open fan: walk the other way from the start face.
	f = start
	for len(out) <= limit {
		k := c.faces[f].Find(v)
		nb := c.NeighborFace(f, (k+2)%3)
		if nb == NotFound || nb == start {
			break
		}
		out = append(out, nb)
		f = nb
	}
	return out
}

// startFace returns a valid face containing v using the hint, falling back
// to a scan when the hint is stale.
func (c *Core) startFace(v uint32) uint32 {
	if int(v) < len(c.vhint) {
		if f := c.vhint[v]; f != NotFound && int(f) < len(c.faces) && c.faces[f].Find(v) >= 0 {
			return f
		}
	}
	for i, f := range c.faces {
		if f.Valid() && f.Find(v) >= 0 {
			c.hint(v, uint32(i))
			return uint32(i)
		}
	}
	return NotFound
}

func (c *Core) hint(v, f uint32) {
	for int(v) >= len(c.vhint) {
		c.vhint = append(c.vhint, NotFound)
	}
	c.vhint[v] = f
}

func (c *Core) firstValidFace() uint32 {
	for i, f := range c.faces {
		if f.Valid() {
			return uint32(i)
		}
	}
	return NotFound
}

func (c *Core) allocFace(f Face) uint32 {
	var i uint32
	if n := len(c.invalid); n > 0 {
		i = c.invalid[n-1]
		c.invalid = c.invalid[:n-1]
		c.faces[i] = f
	} else {
		i = uint32(len(c.faces))
		c.faces = append(c.faces, f)
	}
	for _, v := range f.v {
		c.hint(v, i)
	}
	return i
}

// makeFace creates the counter-clockwise face (a,b,v) and attaches it to
// its edges, creating edges as needed.
func (c *Core) makeFace(a, b, v uint32) uint32 {
	f := c.allocFace(NewFace(a, b, v))
	for k := range 3 {
		s, t := c.faces[f].Edge(k)
		if !c.edges.at(c.edges.insert(s, t)).appendFace(f) {
			c.fail(InconsistentTopology, "edge already has two faces", s, t)
		}
	}
	c.geo.InsertFace(c, f)
	return f
}

// killFace detaches f from its edges and invalidates the slot. Edges left
// without faces are not erased; callers decide, so that flags survive.
func (c *Core) killFace(f uint32) {
	fc := c.faces[f]
	if !fc.Valid() {
		return
	}
	c.geo.EraseFace(c, f)
	for k := range 3 {
		a, b := fc.Edge(k)
		if h, ok := c.edges.find(a, b); ok {
			c.edges.at(h).detachFace(f)
		}
	}
	c.faces[f] = invalidFace
	c.invalid = append(c.invalid, f)
}

// eraseIfDetached erases edge (a,b) if it has no faces left.
func (c *Core) eraseIfDetached(a, b uint32) {
	if h, ok := c.edges.find(a, b); ok && c.edges.at(h).NFaces() == 0 {
		c.edges.erase(h)
	}
}

func (c *Core) fail(s Status, msg string, a, b uint32) {
	c.status = s
	if s == InconsistentTopology {
		slogger().Error("delaunay: "+msg, "a", a, "b", b)
	} else {
		slogger().Debug("delaunay: "+msg, "status", s.String(), "a", a, "b", b)
	}
}

// Check verifies the topological invariants: every face is counter-
// clockwise and listed by its three edges, every edge has at most two
// faces, and every listed face contains the edge.
func (c *Core) Check() error {
	for i, f := range c.faces {
		if !f.Valid() {
			continue
		}
		fi := uint32(i)
		if o := c.geo.Orientation(f.v[0], f.v[1], f.v[2]); o != CounterClockwise {
			return fmt.Errorf("delaunay: face %d %v has orientation %d: %w", fi, f, o, InconsistentTopology)
		}
		for k := range 3 {
			a, b := f.Edge(k)
			h, ok := c.edges.find(a, b)
			if !ok {
				return fmt.Errorf("delaunay: edge (%d,%d) of face %d missing: %w", a, b, fi, InconsistentTopology)
			}
			e := c.edges.at(h)
			if e.nbf[0] != fi && e.nbf[1] != fi {
				return fmt.Errorf("delaunay: edge %v does not list face %d: %w", *e, fi, InconsistentTopology)
			}
		}
	}
	var err error
	c.edges.each(func(_ uint32, e *Edge) bool {
		if e.nbf[0] == NotFound && e.nbf[1] != NotFound {
			err = fmt.Errorf("delaunay: edge %v has a gap in its face slots: %w", *e, InconsistentTopology)
			return false
		}
		for _, f := range e.nbf {
			if f == NotFound {
				continue
			}
			if int(f) >= len(c.faces) || c.faces[f].EdgeIndex(e.src, e.trg) < 0 {
				err = fmt.Errorf("delaunay: edge %v lists face %d which does not contain it: %w", *e, f, InconsistentTopology)
				return false
			}
		}
		return true
	})
	return err
}
