// Package uvmesh generates triangle meshes on parametric surfaces.
//
// # Overview
//
// uvmesh triangulates the parameter domain [0,1]² of a surface S(u,v) with
// a constrained Delaunay triangulation. Triangulation happens in a working
// plane (s,t) fitted to the surface, so that triangles which are well shaped
// in (s,t) are also well shaped on the surface. Refinement is driven by
// pluggable criteria measured in 3D.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/uvmesh"
//		"github.com/gogpu/uvmesh/surface"
//	)
//
//	m, err := uvmesh.New(ctx, surface.NewWing())
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	_ = m.InitEnclosing(0.25)
//	_ = m.InsertBoundary(uvmesh.DefaultLengthCriterion(0.5))
//	_ = m.Refine(uvmesh.DefaultLengthCriterion(0.5))
//	_ = m.Smooth(3, 0.5)
//
//	mesh, err := m.Extract()
//
// # Lifecycle
//
// A Mesher moves through the states Empty, Initialized, Constrained,
// Refined, Smoothed and Extracted. Operations called out of order fail with
// ErrInvalidState. Constraints and holes may be added until the mesh is
// extracted.
//
// # Geometry
//
// PlaneGeometry measures distances in the working plane. SpatialGeometry
// uses the working plane for orientation tests and surface points for edge
// lengths and the Delaunay criterion, which follows the surface more closely
// on strongly curved or anisotropic patches.
//
// # Criteria
//
// LengthCriterion, DeviationCriterion and SourceCriterion decide which
// segments and faces to split. Combine merges several criteria into one.
// Custom criteria implement the Criterion interface.
//
// # Concurrency
//
// A Mesher is not safe for concurrent use. Internally, surface sampling,
// criterion evaluation and mesh extraction run on a worker pool, so Surface
// implementations must be safe for concurrent reads.
//
// # Logging
//
// uvmesh is silent by default. Use SetLogger to receive structured
// diagnostics through log/slog.
package uvmesh
