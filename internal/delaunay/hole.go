package delaunay

// EatHole removes face f and every face reachable from it without crossing
// a constrained edge, then erases the edges left without faces. It returns
// the number of faces removed.
func (c *Core) EatHole(f uint32) int {
	if int(f) >= len(c.faces) || !c.faces[f].Valid() {
		return 0
	}
	seen := map[uint32]struct{}{f: {}}
	queue := []uint32{f}
	var region []uint32
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		region = append(region, g)
		for k := range 3 {
			a, b := c.faces[g].Edge(k)
			h, ok := c.edges.find(a, b)
			if !ok || c.edges.at(h).Check(Constrained) {
				continue
			}
			nb := c.edges.at(h).OtherFace(g)
			if nb == NotFound {
				continue
			}
			if _, ok := seen[nb]; !ok {
				seen[nb] = struct{}{}
				queue = append(queue, nb)
			}
		}
	}

	var rim [][2]uint32
	for _, g := range region {
		fc := c.faces[g]
		for k := range 3 {
			a, b := fc.Edge(k)
			rim = append(rim, [2]uint32{a, b})
		}
	}
	for _, g := range region {
		c.killFace(g)
	}
	for _, ab := range rim {
		c.eraseIfDetached(ab[0], ab[1])
	}
	slogger().Debug("delaunay: removed faces inside hole", "start", f, "faces", len(region))
	return len(region)
}

// DropFaces removes the listed faces and erases edges left without faces.
func (c *Core) DropFaces(faces []uint32) {
	var rim [][2]uint32
	for _, f := range faces {
		fc := c.faces[f]
		if !fc.Valid() {
			continue
		}
		for k := range 3 {
			a, b := fc.Edge(k)
			rim = append(rim, [2]uint32{a, b})
		}
		c.killFace(f)
	}
	for _, ab := range rim {
		c.eraseIfDetached(ab[0], ab[1])
	}
}
