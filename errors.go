package uvmesh

import (
	"errors"

	"github.com/gogpu/uvmesh/internal/delaunay"
)

var (
	// ErrDegenerateSurface is returned when the parameter map cannot be
	// fitted, e.g. because the surface tangents are parallel everywhere.
	ErrDegenerateSurface = errors.New("uvmesh: degenerate surface")

	// ErrInvalidState is returned when an operation is called in the wrong
	// lifecycle state, e.g. Refine before a seed triangulation exists.
	ErrInvalidState = errors.New("uvmesh: invalid mesher state")

	// ErrConstraintFailed is returned when a constraint chain could not be
	// inserted completely. The error also wraps the core Status.
	ErrConstraintFailed = errors.New("uvmesh: constraint insertion failed")

	// ErrPointNotFound is returned when a point lies outside every face.
	ErrPointNotFound = errors.New("uvmesh: point not in mesh")

	// ErrNoFaces is returned by Mesh.Stats for a mesh without triangles.
	ErrNoFaces = errors.New("uvmesh: mesh has no faces")
)

// Status is the failure code left by the last triangulation operation.
// It implements error and can be matched with errors.Is.
type Status = delaunay.Status

// Status codes.
const (
	StatusOk                      = delaunay.StatusOk
	ConstraintIntersection        = delaunay.ConstraintIntersection
	UnhandledMixedConstraint      = delaunay.UnhandledMixedConstraint
	CannotEnforceEdge             = delaunay.CannotEnforceEdge
	InconsistentTopology          = delaunay.InconsistentTopology
	InsertPointOutOfDomain        = delaunay.InsertPointOutOfDomain
	InsertCannotSplitEdge         = delaunay.InsertCannotSplitEdge
	InsertTriangleNotFound        = delaunay.InsertTriangleNotFound
	ProtectedConstraintEncroached = delaunay.ProtectedConstraintEncroached
)

// EdgeFlag marks properties of constraint edges.
type EdgeFlag = delaunay.EdgeFlag

// Edge flags.
const (
	Constrained         = delaunay.Constrained
	Feature             = delaunay.Feature
	NeverSplit          = delaunay.NeverSplit
	SurfaceIntersection = delaunay.SurfaceIntersection
)
