// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides analytic parametric surfaces and parameter-plane
// curves for the uvmesh mesher.
//
// Every surface is defined over the unit square (u,v) ∈ [0,1]² and
// implements the uvmesh.Surface contract: point and derivative evaluation,
// closest point projection and sampling hints.
//
// # Surface Types
//
//   - Plane: an axis-aligned rectangle
//   - Bilinear: the ruled patch through four corners
//   - Cylinder: a circular cylinder segment
//   - Bump: a plane with a sinusoidal bump, mirror symmetric in u
//   - Wing: a swept, tapered wing skin with large stretch and skew
//   - Strip: a degenerate surface whose tangents are parallel everywhere
//
// # Registry
//
// Surfaces can be created by name with parameters, which is how the
// uvmesh command reads them from job files:
//
//	s, err := surface.New("cylinder", surface.Params{"radius": 2, "height": 5})
//
// Third-party surfaces register themselves with Register.
package surface
