package uvmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Criterion decides where a mesh needs more vertices. Implementations are
// bound to the vertex arrays of a session before refinement starts and
// must be safe for concurrent calls to SplitFace, which the mesher
// evaluates in parallel over read-only vertex data.
type Criterion interface {
	// Bind attaches the vertex arrays and the surface of a session.
	Bind(v *Vertices, s Surface)

	// SplitSegment reports whether the 3D segment from ps to pt with
	// surface tangents tgs and tgt must be split. bias scales the allowed
	// length and lies in (0,1].
	SplitSegment(ps, pt, tgs, tgt r3.Vec, bias float64) bool

	// SplitCurve reports whether the curve piece from a to b, with
	// midpoint m, must be subdivided.
	SplitCurve(a, m, b CurveSample) bool

	// SplitFace returns the refinement directive for the triangle (a,b,c).
	SplitFace(a, b, c uint32) SplitFlag

	// Budget returns the node and pass limits of a refinement run. Zero
	// means the mesher default.
	Budget() (maxNodes, maxPasses int)
}

// CurveSample is a point of a parameter curve evaluated on the surface.
type CurveSample struct {
	T       float64
	UV      r2.Vec
	XYZ     r3.Vec
	Tangent r3.Vec
}

// SplitFlag is a refinement directive for one face. The low two bits name
// an edge (1 for the edge from vertex 0 to 1, and so on); the remaining
// bits select the operation.
type SplitFlag uint8

const (
	NoSplit    SplitFlag = 0
	SplitEdge1 SplitFlag = 1
	SplitEdge2 SplitFlag = 2
	SplitEdge3 SplitFlag = 3

	// InsertCircumCenter inserts the circumcenter of the face. The edge
	// bits name the edge to split if the circumcenter cannot be placed.
	InsertCircumCenter SplitFlag = 4

	// InsertTriCenter inserts the centroid of the face.
	InsertTriCenter SplitFlag = 8

	// TooSmall marks a face below the minimum size. It overrides every
	// other directive of a composite criterion.
	TooSmall SplitFlag = 16

	edgeMask SplitFlag = 3
)

// splitEdgeFlag returns the flag splitting local edge k.
func splitEdgeFlag(k int) SplitFlag { return SplitFlag(k+1) & edgeMask }

// Edge returns the local edge index named by f, or -1.
func (f SplitFlag) Edge() int { return int(f&edgeMask) - 1 }

// Split reports whether f asks for any insertion.
func (f SplitFlag) Split() bool {
	return f&TooSmall == 0 && f&(edgeMask|InsertCircumCenter|InsertTriCenter) != 0
}

// String implements fmt.Stringer.
func (f SplitFlag) String() string {
	switch {
	case f&TooSmall != 0:
		return "too small"
	case f&InsertTriCenter != 0:
		return "insert tricenter"
	case f&InsertCircumCenter != 0:
		return "insert circumcenter"
	case f.Edge() >= 0:
		return "split edge"
	}
	return "no split"
}

// tri gathers the per-vertex data of a face.
type tri struct {
	uv  [3]r2.Vec
	xyz [3]r3.Vec
	nrm [3]r3.Vec
}

func (v *Vertices) tri(a, b, c uint32) tri {
	var t tri
	for i, k := range [3]uint32{a, b, c} {
		t.uv[i], t.xyz[i], t.nrm[i] = v.UV[k], v.XYZ[k], v.Normal[k]
	}
	return t
}

// edgeLengths returns the 3D lengths of edges 0..2, edge k running from
// vertex k to vertex k+1.
func (t *tri) edgeLengths() [3]float64 {
	var l [3]float64
	for k := range 3 {
		l[k] = r3.Norm(r3.Sub(t.xyz[(k+1)%3], t.xyz[k]))
	}
	return l
}

func (t *tri) uvLengths() [3]float64 {
	var l [3]float64
	for k := range 3 {
		l[k] = r2.Norm(r2.Sub(t.uv[(k+1)%3], t.uv[k]))
	}
	return l
}

func (t *tri) centroidUV() r2.Vec {
	return r2.Scale(1.0/3, r2.Add(r2.Add(t.uv[0], t.uv[1]), t.uv[2]))
}

func (t *tri) centroid() r3.Vec {
	return r3.Scale(1.0/3, r3.Add(r3.Add(t.xyz[0], t.xyz[1]), t.xyz[2]))
}

func (t *tri) normal() r3.Vec {
	return normal(r3.Sub(t.xyz[1], t.xyz[0]), r3.Sub(t.xyz[2], t.xyz[0]))
}

// apexAngles returns the interior angles at vertices 0..2 in radians.
func (t *tri) apexAngles() [3]float64 {
	var a [3]float64
	for k := range 3 {
		e1 := r3.Sub(t.xyz[(k+1)%3], t.xyz[k])
		e2 := r3.Sub(t.xyz[(k+2)%3], t.xyz[k])
		a[k] = angle(e1, e2)
	}
	return a
}

// angle returns the angle between a and b, or zero if either vanishes.
func angle(a, b r3.Vec) float64 {
	la, lb := r3.Norm(a), r3.Norm(b)
	if la == 0 || lb == 0 {
		return 0
	}
	c := r3.Dot(a, b) / (la * lb)
	return math.Acos(max(-1, min(1, c)))
}

func longest(l [3]float64) int {
	k := 0
	for i := 1; i < 3; i++ {
		if l[i] > l[k] {
			k = i
		}
	}
	return k
}

func maxOf(l [3]float64) float64 { return max(l[0], l[1], l[2]) }
func minOf(l [3]float64) float64 { return min(l[0], l[1], l[2]) }

// distToSegment returns the distance from p to the segment (a,b).
func distToSegment(p, a, b r3.Vec) float64 {
	d := r3.Sub(b, a)
	l := r3.Dot(d, d)
	if l == 0 {
		return r3.Norm(r3.Sub(p, a))
	}
	t := max(0, min(1, r3.Dot(r3.Sub(p, a), d)/l))
	return r3.Norm(r3.Sub(p, r3.Add(a, r3.Scale(t, d))))
}
