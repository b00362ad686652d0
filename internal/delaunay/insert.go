package delaunay

// InsertVertex inserts vertex v, which must already exist in the geometry.
// For VertexPresent the second return value is the vertex that v coincides
// with; otherwise it is v. On NotInserted the status tells why.
func (c *Core) InsertVertex(v uint32, legalize bool) (InsertResult, uint32) {
	c.status = StatusOk
	f, loc := c.geo.Locate(c, v)
	switch {
	case loc == Inside:
		if c.splitFace(f, v, legalize) {
			return FaceSplit, v
		}
	case loc.IsOnEdge():
		a, b := c.faces[f].Edge(loc.Index())
		if c.splitEdge(a, b, v, legalize, c.protect) {
			return EdgeSplit, v
		}
	case loc.IsOnVertex():
		return VertexPresent, c.faces[f].V(loc.Index())
	case loc.IsBeyondEdge():
		if !c.extension {
			c.fail(InsertPointOutOfDomain, "vertex beyond boundary", v, NotFound)
			break
		}
		if c.extendOutward(f, loc.Index(), v, legalize) {
			return ExtendedOutward, v
		}
	case loc == Outside:
		c.fail(InsertPointOutOfDomain, "vertex outside mesh", v, NotFound)
	default:
		c.fail(InsertTriangleNotFound, "no triangle found", v, NotFound)
	}
	return NotInserted, v
}

// SplitFace replaces face f by three faces sharing vertex x, which must lie
// inside f.
func (c *Core) SplitFace(f, x uint32, legalize bool) bool {
	c.status = StatusOk
	return c.splitFace(f, x, legalize)
}

// SplitEdge replaces the faces adjacent to edge (a,b) by faces sharing
// vertex x, which must lie on the edge.
func (c *Core) SplitEdge(a, b, x uint32, legalize bool) bool {
	c.status = StatusOk
	return c.splitEdge(a, b, x, legalize, c.protect)
}

func (c *Core) splitFace(f, x uint32, legalize bool) bool {
	fc := c.faces[f]
	if !fc.Valid() {
		c.fail(InconsistentTopology, "split of invalid face", f, x)
		return false
	}
	if c.protect {
		for k := range 3 {
			if c.encroachesConstraint(fc, k, x) {
				return false
			}
		}
	}
	a, b, v := fc.v[0], fc.v[1], fc.v[2]
	on := -1
	for k := range 3 {
		s, t := fc.Edge(k)
		switch c.geo.Orientation(s, t, x) {
		case Clockwise:
			c.fail(InsertTriangleNotFound, "vertex outside split face", f, x)
			return false
		case Colinear:
			on = k
		}
	}
	if on >= 0 {
		s, t := fc.Edge(on)
		return c.splitEdge(s, t, x, legalize, c.protect)
	}
	c.killFace(f)
	c.makeFace(a, b, x)
	c.makeFace(b, v, x)
	c.makeFace(v, a, x)
	if legalize {
		c.legalize(x, [][2]uint32{{a, b}, {b, v}, {v, a}})
	}
	return true
}

// encroachesConstraint checks edge k of face f against protection and
// records the offending edge.
func (c *Core) encroachesConstraint(f Face, k int, x uint32) bool {
	s, t := f.Edge(k)
	h, ok := c.edges.find(s, t)
	if !ok || !c.edges.at(h).Check(Constrained) {
		return false
	}
	if !c.geo.EncroachesEdge(s, t, x) {
		return false
	}
	c.encroached = [2]uint32{s, t}
	c.fail(ProtectedConstraintEncroached, "split encroaches constraint", s, t)
	return true
}

func (c *Core) splitEdge(a, b, x uint32, legalize, protect bool) bool {
	h, ok := c.edges.find(a, b)
	if !ok {
		c.fail(InconsistentTopology, "split of missing edge", a, b)
		return false
	}
	e := *c.edges.at(h)
	if e.Check(NeverSplit) {
		c.fail(InsertCannotSplitEdge, "edge may not be split", a, b)
		return false
	}

	type piece struct{ p0, p1, o uint32 }
	var pieces [2]piece
	n := e.NFaces()
	for i := range n {
		fc := c.faces[e.nbf[i]]
		k := fc.EdgeIndex(a, b)
		pieces[i] = piece{fc.V(k), fc.V(k + 1), fc.V(k + 2)}
		p := pieces[i]
		if c.geo.Orientation(p.p0, x, p.o) != CounterClockwise || c.geo.Orientation(x, p.p1, p.o) != CounterClockwise {
			c.fail(InsertCannotSplitEdge, "split would create a degenerate face", a, b)
			return false
		}
		if protect {
			for j := 1; j < 3; j++ {
				if c.encroachesConstraint(fc, k+j, x) {
					return false
				}
			}
		}
	}

	for i := range n {
		c.killFace(e.nbf[i])
	}
	c.edges.erase(h)

	outer := make([][2]uint32, 0, 4)
	for _, p := range pieces[:n] {
		c.makeFace(p.p0, x, p.o)
		c.makeFace(x, p.p1, p.o)
		outer = append(outer, [2]uint32{p.o, p.p0}, [2]uint32{p.p1, p.o})
	}
	if e.flags != 0 {
		c.SetEdgeFlags(e.src, x, e.flags)
		c.SetEdgeFlags(x, e.trg, e.flags)
	}
	if legalize {
		c.legalize(x, outer)
	}
	return true
}

// extendOutward attaches vertex x beyond boundary edge k of face f, then
// keeps adding faces along the boundary while x sees the neighboring
// boundary edges, so that the mesh stays convex around x.
func (c *Core) extendOutward(f uint32, k int, x uint32, legalize bool) bool {
	a, b := c.faces[f].Edge(k)
	if c.geo.Orientation(b, a, x) != CounterClockwise {
		c.fail(InsertPointOutOfDomain, "degenerate extension", a, x)
		return false
	}
	c.makeFace(b, a, x)
	check := [][2]uint32{{b, a}}

	limit := c.NFaces()
	for n := b; limit > 0; limit-- {
		m := c.boundaryNext(n, x)
		if m == NotFound || m == x || c.geo.Orientation(m, n, x) != CounterClockwise {
			break
		}
		c.makeFace(m, n, x)
		check = append(check, [2]uint32{m, n})
		n = m
	}
	for p := a; limit > 0; limit-- {
		q := c.boundaryPrev(p, x)
		if q == NotFound || q == x || c.geo.Orientation(p, q, x) != CounterClockwise {
			break
		}
		c.makeFace(p, q, x)
		check = append(check, [2]uint32{p, q})
		p = q
	}
	if legalize {
		c.legalize(x, check)
	}
	return true
}

// boundaryNext returns w such that v->w is a boundary edge with the mesh on
// its left, skipping edges incident to x.
func (c *Core) boundaryNext(v, x uint32) uint32 {
	for _, f := range c.FacesAround(v) {
		fc := c.faces[f]
		k := fc.Find(v)
		if w := fc.V(k + 1); w != x && c.NeighborFace(f, k) == NotFound {
			return w
		}
	}
	return NotFound
}

// boundaryPrev returns w such that w->v is a boundary edge with the mesh on
// its left, skipping edges incident to x.
func (c *Core) boundaryPrev(v, x uint32) uint32 {
	for _, f := range c.FacesAround(v) {
		fc := c.faces[f]
		k := fc.Find(v)
		if w := fc.V(k + 2); w != x && c.NeighborFace(f, (k+2)%3) == NotFound {
			return w
		}
	}
	return NotFound
}

// FlipEdge replaces edge (a,b) by the other diagonal of its diamond. It
// fails for boundary edges, edges whose flags forbid flipping, and
// non-convex or degenerate diamonds.
func (c *Core) FlipEdge(a, b uint32) bool {
	h, ok := c.edges.find(a, b)
	return ok && c.flip(h)
}

// diamond returns the endpoints s, t of edge h with s->t counter-clockwise
// in face f1, together with the opposite vertices: o1 left of s->t (in f1)
// and o2 right of it (in f2).
func (c *Core) diamond(h uint32) (s, t, o1, o2, f1, f2 uint32, ok bool) {
	e := c.edges.at(h)
	if e.NFaces() != 2 {
		return
	}
	s, t = e.src, e.trg
	f1, f2 = e.nbf[0], e.nbf[1]
	fa := c.faces[f1]
	if k := fa.EdgeIndex(s, t); fa.V(k) != s {
		f1, f2 = f2, f1
		fa = c.faces[f1]
	}
	o1 = fa.Opposite(s, t)
	o2 = c.faces[f2].Opposite(s, t)
	ok = o1 != NotFound && o2 != NotFound
	return
}

func (c *Core) flip(h uint32) bool {
	if !c.edges.at(h).CanFlip() {
		return false
	}
	s, t, o1, o2, f1, f2, ok := c.diamond(h)
	if !ok {
		return false
	}
	// The new faces (s,o2,o1) and (o2,t,o1) must both be proper
	// counter-clockwise triangles, i.e. the diamond is strictly convex.
	if c.geo.Orientation(s, o2, o1) != CounterClockwise || c.geo.Orientation(o2, t, o1) != CounterClockwise {
		return false
	}
	if _, exists := c.edges.find(o1, o2); exists {
		return false
	}
	c.killFace(f1)
	c.killFace(f2)
	c.edges.erase(h)
	c.makeFace(s, o2, o1)
	c.makeFace(o2, t, o1)
	return true
}

// legalize restores the Delaunay property after vertex x was inserted. The
// stack holds edges opposite x; each illegal edge is flipped and the two
// edges that become opposite x are pushed.
func (c *Core) legalize(x uint32, stack [][2]uint32) {
	budget := 8*c.NFaces() + 64
	for len(stack) > 0 && budget > 0 {
		p, q := stack[len(stack)-1][0], stack[len(stack)-1][1]
		stack = stack[:len(stack)-1]

		h, ok := c.edges.find(p, q)
		if !ok || !c.illegal(h) {
			continue
		}
		s, t, o1, o2, _, _, _ := c.diamond(h)
		o := o1
		if o == x {
			o = o2
		}
		budget--
		if c.flip(h) {
			stack = append(stack, [2]uint32{p, o}, [2]uint32{o, q})
			if o1 != x && o2 != x {
				// x is not part of the diamond; recheck the whole rim.
				stack = append(stack, [2]uint32{s, o2}, [2]uint32{o2, t}, [2]uint32{t, o1}, [2]uint32{o1, s})
			}
		}
	}
	if budget <= 0 {
		c.fail(InconsistentTopology, "legalization budget exhausted", x, NotFound)
	}
}

// illegal reports whether edge h should be flipped: its diamond is
// flippable, the opposite vertex o2 encroaches upon face (s,t,o1) and t
// does not encroach upon the face the flip would create. For geometries
// implementing flipGuard the flip must also improve the diamond.
func (c *Core) illegal(h uint32) bool {
	e := c.edges.at(h)
	if e.src == NotFound || e.NFaces() != 2 || !e.CanFlip() {
		return false
	}
	s, t, o1, o2, _, _, ok := c.diamond(h)
	if !ok {
		return false
	}
	if c.geo.Orientation(s, o2, o1) != CounterClockwise || c.geo.Orientation(o2, t, o1) != CounterClockwise {
		return false
	}
	if _, exists := c.edges.find(o1, o2); exists {
		return false
	}
	if !c.geo.Encroaches([3]uint32{s, t, o1}, o2) {
		return false
	}
	// Both diagonals encroached: keep the current one, otherwise the pair
	// flips back and forth.
	if c.geo.Encroaches([3]uint32{s, o2, o1}, t) {
		return false
	}
	if g, ok := c.geo.(flipGuard); ok && !g.FlipImproves(s, t, o1, o2) {
		return false
	}
	return true
}

// flipGuard is implemented by geometries whose Delaunay test is not an
// exact in-circle predicate. FlipImproves reports whether replacing the
// diagonal (s,t) of the diamond by (o1,o2) strictly increases the smallest
// angle of its two faces, which bounds the number of flips.
type flipGuard interface {
	FlipImproves(s, t, o1, o2 uint32) bool
}

// IllegalEdges returns the flippable edges that fail the Delaunay test. It
// is empty after LegalizeAll has converged.
func (c *Core) IllegalEdges() [][2]uint32 {
	var out [][2]uint32
	c.edges.each(func(h uint32, e *Edge) bool {
		if c.illegal(h) {
			out = append(out, [2]uint32{e.src, e.trg})
		}
		return true
	})
	return out
}

// LegalizeAll flips every illegal edge until none is left and returns the
// number of flips. If the flip budget runs out first the status is set to
// InconsistentTopology.
func (c *Core) LegalizeAll() int {
	c.status = StatusOk
	var stack []uint32
	c.edges.each(func(h uint32, e *Edge) bool {
		if e.NFaces() == 2 && e.CanFlip() {
			stack = append(stack, h)
		}
		return true
	})
	flips := 0
	budget := 32*c.NFaces() + 64
	for len(stack) > 0 && budget > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !c.illegal(h) {
			continue
		}
		s, t, o1, o2, _, _, _ := c.diamond(h)
		budget--
		if !c.flip(h) {
			continue
		}
		flips++
		for _, pq := range [5][2]uint32{{s, o2}, {o2, t}, {t, o1}, {o1, s}, {o1, o2}} {
			if g, ok := c.edges.find(pq[0], pq[1]); ok {
				stack = append(stack, g)
			}
		}
	}
	if budget <= 0 {
		c.fail(InconsistentTopology, "legalization budget exhausted", NotFound, NotFound)
	}
	return flips
}
