package delaunay

import "gonum.org/v1/gonum/spatial/r2"

// maxEnforceDepth bounds the recursion when a constraint is enforced piece
// by piece through overlapping vertices or split crossings.
const maxEnforceDepth = 256

// InsertConstraint inserts the vertices of chain that are not yet part of
// the mesh and then enforces an edge between each consecutive pair. Chain
// entries that coincide with existing vertices are replaced in place.
//
// The return value is the number of chain vertices inserted or found. A
// value below len(chain) identifies the first vertex that failed. A return
// of zero after all vertices were inserted means an edge could not be
// enforced; Status tells why.
func (c *Core) InsertConstraint(chain []uint32, flags EdgeFlag, legalize bool) int {
	c.status = StatusOk
	n := 0
	for i, v := range chain {
		if c.IsPresent(v) {
			n++
			continue
		}
		r, w := c.InsertVertex(v, legalize)
		if r == NotInserted {
			return n
		}
		chain[i] = w
		n++
	}

	for i := 1; i < len(chain); i++ {
		a, b := chain[i-1], chain[i]
		if a == b {
			continue
		}
		if !c.enforceEdge(a, b, flags, 0) {
			if c.status == StatusOk {
				c.status = CannotEnforceEdge
			}
			return 0
		}
	}
	return n
}

// enforceEdge makes sure edge (a,b) exists and carries flags.
func (c *Core) enforceEdge(a, b uint32, flags EdgeFlag, depth int) bool {
	if depth > maxEnforceDepth {
		c.fail(CannotEnforceEdge, "constraint recursion too deep", a, b)
		return false
	}
	if c.SetEdgeFlags(a, b, flags) {
		return true
	}

	fan := c.FacesAround(a)
	if len(fan) == 0 {
		c.fail(InconsistentTopology, "constraint vertex has no faces", a, b)
		return false
	}

	// A single flip of an edge opposite a may produce (a,b).
	for _, f := range fan {
		fc := c.faces[f]
		k := fc.Find(a)
		p, q := fc.V(k+1), fc.V(k+2)
		nb := c.NeighborFace(f, (k+1)%3)
		if nb == NotFound || c.faces[nb].Opposite(p, q) != b {
			continue
		}
		if h, ok := c.edges.find(p, q); ok && c.flip(h) {
			c.SetEdgeFlags(a, b, flags)
			return true
		}
	}

	// The segment may run exactly along an edge from a to a neighbor w.
	for _, f := range fan {
		fc := c.faces[f]
		k := fc.Find(a)
		for _, w := range [2]uint32{fc.V(k + 1), fc.V(k + 2)} {
			if c.geo.Orientation(a, b, w) == Colinear && c.between(a, b, w) {
				c.SetEdgeFlags(a, w, flags)
				return c.enforceEdge(w, b, flags, depth+1)
			}
		}
	}

	// Otherwise the segment leaves a through the edge opposite a in exactly
	// one face of the fan.
	for _, f := range fan {
		fc := c.faces[f]
		k := fc.Find(a)
		p, q := fc.V(k+1), fc.V(k+2)
		if c.geo.EdgesIntersect(a, b, p, q) == Intersect {
			return c.imprint(a, b, f, flags, depth)
		}
	}
	c.fail(CannotEnforceEdge, "no face crossed by constraint", a, b)
	return false
}

// between reports whether w lies strictly between a and b, assuming the
// three are colinear.
func (c *Core) between(a, b, w uint32) bool {
	pa, pb, pw := c.geo.Point(a), c.geo.Point(b), c.geo.Point(w)
	d := r2.Sub(pb, pa)
	t := r2.Dot(r2.Sub(pw, pa), d)
	return t > 0 && t < r2.Dot(d, d)
}

// imprint forces edge (a,b) by walking the faces crossed by the segment,
// starting in face f0 (which contains a), deleting them and
// retriangulating the polygons on both sides of the segment.
func (c *Core) imprint(a, b, f0 uint32, flags EdgeFlag, depth int) bool {
	fc := c.faces[f0]
	k := fc.Find(a)
	// In the counter-clockwise face (a,r,l), r lies right and l left of a->b.
	r, l := fc.V(k+1), fc.V(k+2)

	crossed := []uint32{f0}
	upper := []uint32{l}
	lower := []uint32{r}
	cur := f0

	for range c.NFaces() + 1 {
		h, ok := c.edges.find(l, r)
		if !ok {
			c.fail(InconsistentTopology, "crossed edge missing", l, r)
			return false
		}
		e := *c.edges.at(h)
		if e.Check(Constrained | NeverSplit) {
			return c.crossConstraint(a, b, e, flags, depth)
		}
		nb := e.OtherFace(cur)
		if nb == NotFound {
			c.fail(CannotEnforceEdge, "constraint leaves the mesh", a, b)
			return false
		}
		o := c.faces[nb].Opposite(l, r)
		crossed = append(crossed, nb)
		if o == b {
			return c.retriangulate(crossed, upper, lower, a, b, flags)
		}
		switch c.geo.Orientation(a, b, o) {
		case CounterClockwise:
			upper = append(upper, o)
			l = o
		case Clockwise:
			lower = append(lower, o)
			r = o
		default:
			// The segment passes exactly through o: imprint up to o and
			// continue from there.
			if !c.between(a, b, o) {
				c.fail(UnhandledMixedConstraint, "colinear vertex outside segment", a, o)
				return false
			}
			if !c.retriangulate(crossed, upper, lower, a, o, flags) {
				return false
			}
			return c.enforceEdge(o, b, flags, depth+1)
		}
		cur = nb
	}
	c.fail(InconsistentTopology, "constraint walk did not terminate", a, b)
	return false
}

// crossConstraint handles a segment (a,b) crossing the constrained edge e.
// NeverSplit edges, or any constrained edge when no injector is installed,
// make the constraint fail. Otherwise a vertex is injected at the crossing
// point, e is split there and both halves of (a,b) are enforced.
func (c *Core) crossConstraint(a, b uint32, e Edge, flags EdgeFlag, depth int) bool {
	if e.Check(NeverSplit) || c.inject == nil {
		c.fail(ConstraintIntersection, "constraint crosses protected edge", e.src, e.trg)
		return false
	}
	p := c.geo.IntersectionPoint(a, b, e.src, e.trg)
	x := c.inject(p)
	if !c.splitEdge(e.src, e.trg, x, false, false) {
		return false
	}
	c.injected = append(c.injected, x)
	slogger().Debug("delaunay: injected vertex at constraint crossing", "vertex", x, "edge", e.String())
	return c.enforceEdge(a, x, flags, depth+1) && c.enforceEdge(x, b, flags, depth+1)
}

// retriangulate deletes the crossed faces and fills the polygons left
// (upper) and right (lower) of a->b. Both chains are in walk order.
func (c *Core) retriangulate(crossed, upper, lower []uint32, a, b uint32, flags EdgeFlag) bool {
	var interior [][2]uint32
	for _, f := range crossed {
		fc := c.faces[f]
		for k := range 3 {
			s, t := fc.Edge(k)
			interior = append(interior, [2]uint32{s, t})
		}
	}
	for _, f := range crossed {
		c.killFace(f)
	}
	for _, st := range interior {
		c.eraseIfDetached(st[0], st[1])
	}

	c.fillPseudoPolygon(upper, a, b)
	rev := make([]uint32, len(lower))
	for i, v := range lower {
		rev[len(lower)-1-i] = v
	}
	c.fillPseudoPolygon(rev, b, a)

	if !c.SetEdgeFlags(a, b, flags) {
		c.fail(CannotEnforceEdge, "edge missing after retriangulation", a, b)
		return false
	}
	return c.status == StatusOk
}

// fillPseudoPolygon triangulates the polygon a, poly..., b where all of
// poly lies left of a->b. The apex is the polygon vertex whose circle with
// a and b contains no other polygon vertex; the two sub-polygons on either
// side of it are filled recursively.
func (c *Core) fillPseudoPolygon(poly []uint32, a, b uint32) {
	if len(poly) == 0 {
		return
	}
	ci := 0
	for i := 1; i < len(poly); i++ {
		if c.geo.Encroaches([3]uint32{a, b, poly[ci]}, poly[i]) {
			ci = i
		}
	}
	apex := poly[ci]
	c.fillPseudoPolygon(poly[:ci], a, apex)
	c.fillPseudoPolygon(poly[ci+1:], apex, b)
	c.makeFace(a, b, apex)
}
