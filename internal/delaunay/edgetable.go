package delaunay

// edgeKey is the canonical (min,max) vertex pair.
type edgeKey struct{ a, b uint32 }

func keyOf(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// edgeTable is an arena of edge records addressed by stable handles, plus a
// hash index from the canonical vertex pair to the handle. Erased records
// go to a free list and their handles are reused.
type edgeTable struct {
	edges []Edge
	free  []uint32
	index map[edgeKey]uint32
}

func newEdgeTable() edgeTable {
	return edgeTable{index: make(map[edgeKey]uint32)}
}

func (t *edgeTable) len() int { return len(t.index) }

func (t *edgeTable) find(a, b uint32) (uint32, bool) {
	h, ok := t.index[keyOf(a, b)]
	return h, ok
}

// at returns the record for handle h. The pointer is invalidated by the
// next insert.
func (t *edgeTable) at(h uint32) *Edge { return &t.edges[h] }

// insert returns the handle of edge (a,b), creating the record if needed.
func (t *edgeTable) insert(a, b uint32) uint32 {
	k := keyOf(a, b)
	if h, ok := t.index[k]; ok {
		return h
	}
	var h uint32
	if n := len(t.free); n > 0 {
		h = t.free[n-1]
		t.free = t.free[:n-1]
		t.edges[h] = newEdge(a, b)
	} else {
		h = uint32(len(t.edges))
		t.edges = append(t.edges, newEdge(a, b))
	}
	t.index[k] = h
	return h
}

func (t *edgeTable) erase(h uint32) {
	e := &t.edges[h]
	delete(t.index, edgeKey{e.src, e.trg})
	*e = Edge{src: NotFound, trg: NotFound, nbf: [2]uint32{NotFound, NotFound}}
	t.free = append(t.free, h)
}

// each calls fn for every live edge until fn returns false.
func (t *edgeTable) each(fn func(h uint32, e *Edge) bool) {
	for h := range t.edges {
		e := &t.edges[h]
		if e.src == NotFound {
			continue
		}
		if !fn(uint32(h), e) {
			return
		}
	}
}

func (t *edgeTable) clear() {
	t.edges = t.edges[:0]
	t.free = t.free[:0]
	clear(t.index)
}
