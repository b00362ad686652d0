package delaunay

import (
	"fmt"
	"math"
)

// NotFound marks an absent vertex, face or edge slot.
const NotFound = math.MaxUint32

// EdgeFlag is a bitmap of properties attached to an edge.
type EdgeFlag uint8

const (
	// Constrained edges must remain in the triangulation.
	Constrained EdgeFlag = 1 << iota

	// Feature edges are never flipped.
	Feature

	// NeverSplit edges may not receive a vertex. A constraint that crosses
	// a NeverSplit edge cannot be enforced.
	NeverSplit

	// SurfaceIntersection marks edges on the intersection line of two
	// surfaces.
	SurfaceIntersection
)

// String implements fmt.Stringer.
func (f EdgeFlag) String() string {
	if f == 0 {
		return "none"
	}
	names := [...]string{"constrained", "feature", "neversplit", "intersection"}
	var s string
	for i, n := range names {
		if f&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += n
		}
	}
	return s
}

// noFlip collects the flags that prevent an edge flip.
const noFlip = Constrained | Feature | SurfaceIntersection

// Edge connects two vertices and references up to two neighbor faces.
// Edges are identified by their vertex pair only; the source index is
// always smaller than the target index.
type Edge struct {
	src, trg uint32
	nbf      [2]uint32
	flags    EdgeFlag
}

func newEdge(a, b uint32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{src: a, trg: b, nbf: [2]uint32{NotFound, NotFound}}
}

// Source returns the smaller vertex index.
func (e Edge) Source() uint32 { return e.src }

// Target returns the larger vertex index.
func (e Edge) Target() uint32 { return e.trg }

// Flags returns the flag bitmap.
func (e Edge) Flags() EdgeFlag { return e.flags }

// Check reports whether any of the flags in f is set.
func (e Edge) Check(f EdgeFlag) bool { return e.flags&f != 0 }

// CanFlip reports whether no flag prohibits flipping this edge.
func (e Edge) CanFlip() bool { return e.flags&noFlip == 0 }

// NFaces returns the number of attached faces (0, 1 or 2).
func (e Edge) NFaces() int {
	switch {
	case e.nbf[0] == NotFound:
		return 0
	case e.nbf[1] == NotFound:
		return 1
	}
	return 2
}

// Face returns neighbor face i, or NotFound.
func (e Edge) Face(i int) uint32 { return e.nbf[i] }

// OtherFace returns the neighbor that is not f, or NotFound.
func (e Edge) OtherFace(f uint32) uint32 {
	switch f {
	case e.nbf[0]:
		return e.nbf[1]
	case e.nbf[1]:
		return e.nbf[0]
	}
	return NotFound
}

// Opposite returns the other end of the edge when v is one end.
func (e Edge) Opposite(v uint32) uint32 {
	switch v {
	case e.src:
		return e.trg
	case e.trg:
		return e.src
	}
	return NotFound
}

// String implements fmt.Stringer.
func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d | %s)", e.src, e.trg, e.flags)
}

// appendFace attaches f in the first free slot. It fails when both slots
// are taken, which means the caller is about to create a non-manifold edge.
func (e *Edge) appendFace(f uint32) bool {
	switch {
	case e.nbf[0] == f || e.nbf[1] == f:
		return true
	case e.nbf[0] == NotFound:
		e.nbf[0] = f
		return true
	case e.nbf[1] == NotFound:
		e.nbf[1] = f
		return true
	}
	return false
}

// detachFace removes f and keeps the occupied slot first.
func (e *Edge) detachFace(f uint32) bool {
	switch f {
	case e.nbf[0]:
		e.nbf[0], e.nbf[1] = e.nbf[1], NotFound
		return true
	case e.nbf[1]:
		e.nbf[1] = NotFound
		return true
	}
	return false
}

func (e *Edge) set(f EdgeFlag)   { e.flags |= f }
func (e *Edge) unset(f EdgeFlag) { e.flags &^= f }
