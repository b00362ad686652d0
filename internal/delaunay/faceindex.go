package delaunay

import (
	"github.com/google/btree"
	"gonum.org/v1/gonum/spatial/r2"
)

// faceIndex maps a Morton (Z-order) key of each face centroid to the face,
// ordered by key. Point location starts from the face whose key is closest
// to the key of the query point, which on average is a few hops away.
type faceIndex struct {
	lo, hi r2.Vec
	tree   *btree.BTreeG[faceKey]
	keys   []uint64
}

type faceKey struct {
	code uint64
	face uint32
}

const noKey = ^uint64(0)

func lessFaceKey(a, b faceKey) bool {
	if a.code != b.code {
		return a.code < b.code
	}
	return a.face < b.face
}

func newFaceIndex(lo, hi r2.Vec) *faceIndex {
	return &faceIndex{
		lo:   lo,
		hi:   hi,
		tree: btree.NewG[faceKey](16, lessFaceKey),
	}
}

// code returns the Morton code of p, quantized to 32 bits per axis inside
// the index bounds. Points outside the bounds are clamped.
func (x *faceIndex) code(p r2.Vec) uint64 {
	q := func(v, lo, hi float64) uint64 {
		if hi <= lo {
			return 0
		}
		t := (v - lo) / (hi - lo)
		switch {
		case !(t > 0):
			return 0
		case t >= 1:
			return 0xffffffff
		}
		return uint64(t * 0xffffffff)
	}
	return interleave(q(p.X, x.lo.X, x.hi.X)) | interleave(q(p.Y, x.lo.Y, x.hi.Y))<<1
}

// interleave spreads the low 32 bits of v to the even bit positions.
func interleave(v uint64) uint64 {
	v &= 0xffffffff
	v = (v | v<<16) & 0x0000ffff0000ffff
	v = (v | v<<8) & 0x00ff00ff00ff00ff
	v = (v | v<<4) & 0x0f0f0f0f0f0f0f0f
	v = (v | v<<2) & 0x3333333333333333
	v = (v | v<<1) & 0x5555555555555555
	return v
}

func (x *faceIndex) insert(f uint32, centroid r2.Vec) {
	for int(f) >= len(x.keys) {
		x.keys = append(x.keys, noKey)
	}
	if x.keys[f] != noKey {
		x.tree.Delete(faceKey{x.keys[f], f})
	}
	k := x.code(centroid)
	x.keys[f] = k
	x.tree.ReplaceOrInsert(faceKey{k, f})
}

func (x *faceIndex) erase(f uint32) {
	if int(f) >= len(x.keys) || x.keys[f] == noKey {
		return
	}
	x.tree.Delete(faceKey{x.keys[f], f})
	x.keys[f] = noKey
}

// nearest returns the face whose key is closest to the key of p, or
// NotFound if the index is empty.
func (x *faceIndex) nearest(p r2.Vec) uint32 {
	k := x.code(p)
	var above, below faceKey
	var hasAbove, hasBelow bool
	x.tree.AscendGreaterOrEqual(faceKey{k, 0}, func(it faceKey) bool {
		above, hasAbove = it, true
		return false
	})
	x.tree.DescendLessOrEqual(faceKey{k, NotFound}, func(it faceKey) bool {
		below, hasBelow = it, true
		return false
	})
	switch {
	case hasAbove && hasBelow:
		if above.code-k < k-below.code {
			return above.face
		}
		return below.face
	case hasAbove:
		return above.face
	case hasBelow:
		return below.face
	}
	return NotFound
}

func (x *faceIndex) len() int { return x.tree.Len() }

func (x *faceIndex) clear() {
	x.tree.Clear(false)
	x.keys = x.keys[:0]
}
