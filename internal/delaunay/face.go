package delaunay

import "fmt"

// Face is a triangle given by three vertex indices. The vertices are kept
// in a canonical rotation with the smallest index first, so two faces with
// the same cyclic vertex order compare equal.
type Face struct {
	v [3]uint32
}

var invalidFace = Face{v: [3]uint32{NotFound, NotFound, NotFound}}

// NewFace returns the face (a,b,c) rotated so that the smallest index comes
// first. The cyclic order, and hence the orientation, is preserved.
func NewFace(a, b, c uint32) Face {
	switch {
	case a < b && a < c:
		return Face{v: [3]uint32{a, b, c}}
	case b < a && b < c:
		return Face{v: [3]uint32{b, c, a}}
	}
	return Face{v: [3]uint32{c, a, b}}
}

// Valid reports whether the face refers to vertices.
func (f Face) Valid() bool { return f.v[0] != NotFound }

// Vertices returns the three vertex indices in stored order.
func (f Face) Vertices() [3]uint32 { return f.v }

// V returns vertex k, taken modulo 3.
func (f Face) V(k int) uint32 { return f.v[k%3] }

// Find returns the position of vertex v, or -1.
func (f Face) Find(v uint32) int {
	for k, w := range f.v {
		if w == v {
			return k
		}
	}
	return -1
}

// Edge returns the directed edge k, running from vertex k to vertex k+1.
func (f Face) Edge(k int) (uint32, uint32) {
	return f.v[k%3], f.v[(k+1)%3]
}

// EdgeIndex returns k such that edge k joins a and b in either direction,
// or -1 if the face does not contain that edge.
func (f Face) EdgeIndex(a, b uint32) int {
	for k := range 3 {
		s, t := f.Edge(k)
		if (s == a && t == b) || (s == b && t == a) {
			return k
		}
	}
	return -1
}

// Opposite returns the vertex that is neither a nor b, or NotFound if the
// face does not contain both.
func (f Face) Opposite(a, b uint32) uint32 {
	k := f.EdgeIndex(a, b)
	if k < 0 {
		return NotFound
	}
	return f.v[(k+2)%3]
}

// String implements fmt.Stringer.
func (f Face) String() string {
	if !f.Valid() {
		return "[invalid]"
	}
	return fmt.Sprintf("[%d %d %d]", f.v[0], f.v[1], f.v[2])
}
