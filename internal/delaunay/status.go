package delaunay

// Status records why the last fallible core operation failed. It stays set
// until cleared or overwritten by the next operation.
type Status uint8

const (
	StatusOk Status = iota

	// ConstraintIntersection: a constraint segment crosses an edge that
	// cannot be split.
	ConstraintIntersection

	// UnhandledMixedConstraint: a segment partly overlaps and partly crosses
	// existing edges in a way the imprinting walk does not support.
	UnhandledMixedConstraint

	// CannotEnforceEdge: the edge could not be created.
	CannotEnforceEdge

	// InconsistentTopology: an internal invariant was violated.
	InconsistentTopology

	// InsertPointOutOfDomain: the vertex lies outside the triangulated
	// region and extension is disabled.
	InsertPointOutOfDomain

	// InsertCannotSplitEdge: the vertex landed on a NeverSplit edge.
	InsertCannotSplitEdge

	// InsertTriangleNotFound: point location failed.
	InsertTriangleNotFound

	// ProtectedConstraintEncroached: the vertex would encroach upon a
	// protected constrained edge.
	ProtectedConstraintEncroached
)

var statusNames = [...]string{
	StatusOk:                      "ok",
	ConstraintIntersection:        "constraint intersection",
	UnhandledMixedConstraint:      "unhandled mixed constraint",
	CannotEnforceEdge:             "cannot enforce edge",
	InconsistentTopology:          "inconsistent topology",
	InsertPointOutOfDomain:        "insert point out of domain",
	InsertCannotSplitEdge:         "insert cannot split edge",
	InsertTriangleNotFound:        "insert triangle not found",
	ProtectedConstraintEncroached: "protected constraint encroached",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown status"
}

// Error implements error so that a Status can be wrapped and matched with
// errors.Is.
func (s Status) Error() string { return "delaunay: " + s.String() }

// Err returns nil for StatusOk and s otherwise.
func (s Status) Err() error {
	if s == StatusOk {
		return nil
	}
	return s
}

// InsertResult classifies the outcome of InsertVertex.
type InsertResult uint8

const (
	NotInserted InsertResult = iota
	FaceSplit
	EdgeSplit
	VertexPresent
	ExtendedOutward
)

// String implements fmt.Stringer.
func (r InsertResult) String() string {
	switch r {
	case FaceSplit:
		return "face split"
	case EdgeSplit:
		return "edge split"
	case VertexPresent:
		return "vertex present"
	case ExtendedOutward:
		return "extended outward"
	}
	return "not inserted"
}

// Orientation of three points in the working plane.
type Orientation int8

const (
	Clockwise        Orientation = -1
	Colinear         Orientation = 0
	CounterClockwise Orientation = 1
)

// PointLoc classifies a point relative to a face. The edge and vertex
// variants carry the local index: OnEdge+k refers to edge k (vertex k to
// vertex k+1), OnVertex+k to vertex k, BeyondEdge+k to edge k.
type PointLoc uint8

const (
	Outside PointLoc = iota
	Inside
	OnEdge
	onEdge2
	onEdge3
	OnVertex
	onVertex2
	onVertex3
	BeyondEdge
	beyondEdge2
	beyondEdge3
)

// IsOnEdge reports whether l is one of the OnEdge variants.
func (l PointLoc) IsOnEdge() bool { return l >= OnEdge && l <= onEdge3 }

// IsOnVertex reports whether l is one of the OnVertex variants.
func (l PointLoc) IsOnVertex() bool { return l >= OnVertex && l <= onVertex3 }

// IsBeyondEdge reports whether l is one of the BeyondEdge variants.
func (l PointLoc) IsBeyondEdge() bool { return l >= BeyondEdge && l <= beyondEdge3 }

// Index returns the local edge or vertex index carried by l, or -1.
func (l PointLoc) Index() int {
	switch {
	case l.IsOnEdge():
		return int(l - OnEdge)
	case l.IsOnVertex():
		return int(l - OnVertex)
	case l.IsBeyondEdge():
		return int(l - BeyondEdge)
	}
	return -1
}

// Intersection classifies two segments.
type Intersection uint8

const (
	NoIntersection Intersection = iota
	Intersect
	Touch

	// ColinearIntersection: both segments lie on one line and share more
	// than an endpoint. The plain name Colinear is taken by Orientation.
	ColinearIntersection
)

// String implements fmt.Stringer.
func (i Intersection) String() string {
	switch i {
	case Intersect:
		return "intersect"
	case Touch:
		return "touch"
	case ColinearIntersection:
		return "colinear"
	}
	return "no intersection"
}
