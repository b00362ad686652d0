// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is the rectangle [0,W]×[0,H] in the z=0 plane.
type Plane struct {
	W, H float64
}

// NewPlane returns a w by h rectangle.
func NewPlane(w, h float64) *Plane { return &Plane{W: w, H: h} }

func (s *Plane) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	return r3.Vec{X: s.W * u, Y: s.H * v}, r3.Vec{X: s.W}, r3.Vec{Y: s.H}
}

func (s *Plane) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Plane) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Plane) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Plane) InitGridPattern() ([]float64, []float64)         { return nil, nil }
func (s *Plane) IsSymmetric() (bool, bool)                       { return true, true }

// Bilinear is the ruled patch through four corner points.
type Bilinear struct {
	P00, P10, P01, P11 r3.Vec
}

// NewBilinear returns the patch with S(0,0)=p00, S(1,0)=p10, S(0,1)=p01
// and S(1,1)=p11.
func NewBilinear(p00, p10, p01, p11 r3.Vec) *Bilinear {
	return &Bilinear{P00: p00, P10: p10, P01: p01, P11: p11}
}

func (s *Bilinear) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	lerp := func(a, b r3.Vec, t float64) r3.Vec { return r3.Add(a, r3.Scale(t, r3.Sub(b, a))) }
	bot, top := lerp(s.P00, s.P10, u), lerp(s.P01, s.P11, u)
	left, right := lerp(s.P00, s.P01, v), lerp(s.P10, s.P11, v)
	return lerp(bot, top, v), r3.Sub(right, left), r3.Sub(top, bot)
}

func (s *Bilinear) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Bilinear) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Bilinear) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Bilinear) InitGridPattern() ([]float64, []float64)         { return nil, nil }
func (s *Bilinear) IsSymmetric() (bool, bool)                       { return false, false }

// Cylinder is a segment of a circular cylinder around the z axis. u runs
// around the axis over Angle radians, v along it over Height.
type Cylinder struct {
	Radius, Height, Angle float64
}

// NewCylinder returns a cylinder segment.
func NewCylinder(radius, height, angle float64) *Cylinder {
	return &Cylinder{Radius: radius, Height: height, Angle: angle}
}

func (s *Cylinder) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	sin, cos := math.Sincos(s.Angle * u)
	r := s.Radius
	return r3.Vec{X: r * cos, Y: r * sin, Z: s.Height * v},
		r3.Vec{X: -r * s.Angle * sin, Y: r * s.Angle * cos},
		r3.Vec{Z: s.Height}
}

func (s *Cylinder) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Cylinder) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Cylinder) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Cylinder) IsSymmetric() (bool, bool)                       { return true, true }

// InitGridPattern samples at least every 15 degrees around the axis.
func (s *Cylinder) InitGridPattern() ([]float64, []float64) {
	n := max(8, int(math.Ceil(math.Abs(s.Angle)/(math.Pi/12))))
	return uniform(n), nil
}

// Bump is the rectangle [0,W]×[0,H] lifted by A·sin(πu). It is mirror
// symmetric about u = 0.5.
type Bump struct {
	W, H, A float64
}

// NewBump returns a bump surface.
func NewBump(w, h, a float64) *Bump { return &Bump{W: w, H: h, A: a} }

func (s *Bump) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	sin, cos := math.Sincos(math.Pi * u)
	return r3.Vec{X: s.W * u, Y: s.H * v, Z: s.A * sin},
		r3.Vec{X: s.W, Z: s.A * math.Pi * cos},
		r3.Vec{Y: s.H}
}

func (s *Bump) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Bump) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Bump) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Bump) InitGridPattern() ([]float64, []float64)         { return nil, nil }
func (s *Bump) IsSymmetric() (bool, bool)                       { return true, false }

// Wing is the upper skin of a swept, tapered wing. u runs along the chord
// from the leading edge, v along the span. The chord tapers linearly from
// RootChord to TipChord and the leading edge moves aft by Sweep per unit
// span. Thickness is relative to the local chord.
type Wing struct {
	Span      float64
	RootChord float64
	TipChord  float64
	Sweep     float64
	Thickness float64
}

// NewWing returns a wing with a 10:2 span to root chord ratio and 30
// degrees of sweep.
func NewWing() *Wing {
	return &Wing{Span: 10, RootChord: 2, TipChord: 0.8, Sweep: math.Tan(math.Pi / 6), Thickness: 0.12}
}

func (s *Wing) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	dc := s.TipChord - s.RootChord
	c := s.RootChord + dc*v
	h := 4 * u * (1 - u)
	p := r3.Vec{X: s.Sweep*s.Span*v + c*u, Y: s.Span * v, Z: s.Thickness * c * h}
	su := r3.Vec{X: c, Z: s.Thickness * c * 4 * (1 - 2*u)}
	sv := r3.Vec{X: s.Sweep*s.Span + dc*u, Y: s.Span, Z: s.Thickness * dc * h}
	return p, su, sv
}

func (s *Wing) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Wing) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Wing) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Wing) IsSymmetric() (bool, bool)                       { return false, false }

// InitGridPattern clusters chordwise samples towards both edges.
func (s *Wing) InitGridPattern() ([]float64, []float64) {
	const n = 16
	up := make([]float64, n+1)
	for i := range up {
		up[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/n))
	}
	return up, nil
}

// Strip maps the unit square onto a segment of the x axis. Its tangents
// are parallel everywhere, so no parameter map can be fitted.
type Strip struct {
	Length float64
}

// NewStrip returns a strip of the given length.
func NewStrip(length float64) *Strip { return &Strip{Length: length} }

func (s *Strip) Plane(u, v float64) (r3.Vec, r3.Vec, r3.Vec) {
	return r3.Vec{X: s.Length * (u + v) / 2}, r3.Vec{X: s.Length / 2}, r3.Vec{X: s.Length / 2}
}

func (s *Strip) Eval(u, v float64) r3.Vec                        { return Derive(s, u, v, 0, 0) }
func (s *Strip) Derive(u, v float64, ku, kv int) r3.Vec          { return Derive(s, u, v, ku, kv) }
func (s *Strip) Project(p r3.Vec, uv *r2.Vec, tol float64) bool { return Project(s, p, uv, tol) }
func (s *Strip) InitGridPattern() ([]float64, []float64)         { return nil, nil }
func (s *Strip) IsSymmetric() (bool, bool)                       { return false, false }
