// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Line is the straight parameter curve from A to B.
type Line struct {
	A, B r2.Vec
}

// NewLine returns the line from a to b.
func NewLine(a, b r2.Vec) Line { return Line{A: a, B: b} }

// Eval evaluates the line at t in [0,1].
func (l Line) Eval(t float64) r2.Vec {
	return r2.Add(l.A, r2.Scale(t, r2.Sub(l.B, l.A)))
}

// Derive returns the constant tangent B-A.
func (l Line) Derive(float64) r2.Vec { return r2.Sub(l.B, l.A) }

// Circle is a closed counter-clockwise circle in the parameter plane,
// starting at angle Phase.
type Circle struct {
	Center r2.Vec
	Radius float64
	Phase  float64
}

// NewCircle returns the circle around c with radius r.
func NewCircle(c r2.Vec, r float64) Circle { return Circle{Center: c, Radius: r} }

// Eval evaluates the circle at t in [0,1]. Eval(0) equals Eval(1).
func (c Circle) Eval(t float64) r2.Vec {
	if t == 1 {
		t = 0
	}
	sin, cos := math.Sincos(2*math.Pi*t + c.Phase)
	return r2.Vec{X: c.Center.X + c.Radius*cos, Y: c.Center.Y + c.Radius*sin}
}

// Derive returns d(u,v)/dt.
func (c Circle) Derive(t float64) r2.Vec {
	sin, cos := math.Sincos(2*math.Pi*t + c.Phase)
	w := 2 * math.Pi * c.Radius
	return r2.Vec{X: -w * sin, Y: w * cos}
}

// CubicBez is a cubic Bézier curve in the parameter plane.
type CubicBez struct {
	P0, P1, P2, P3 r2.Vec
}

// NewCubicBez returns a cubic Bézier curve.
func NewCubicBez(p0, p1, p2, p3 r2.Vec) CubicBez {
	return CubicBez{P0: p0, P1: p1, P2: p2, P3: p3}
}

// Eval evaluates the curve at t using the Bernstein form.
func (c CubicBez) Eval(t float64) r2.Vec {
	mt := 1 - t
	mt2, t2 := mt*mt, t*t
	p := r2.Scale(mt2*mt, c.P0)
	p = r2.Add(p, r2.Scale(3*mt2*t, c.P1))
	p = r2.Add(p, r2.Scale(3*mt*t2, c.P2))
	return r2.Add(p, r2.Scale(t2*t, c.P3))
}

// Derive returns the tangent, which is the derivative quadratic curve.
func (c CubicBez) Derive(t float64) r2.Vec {
	mt := 1 - t
	d0, d1, d2 := r2.Sub(c.P1, c.P0), r2.Sub(c.P2, c.P1), r2.Sub(c.P3, c.P2)
	p := r2.Scale(3*mt*mt, d0)
	p = r2.Add(p, r2.Scale(6*mt*t, d1))
	return r2.Add(p, r2.Scale(3*t*t, d2))
}
