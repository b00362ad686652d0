// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a parametric surface over the unit square. It has the same
// method set as uvmesh.Surface.
type Surface interface {
	Eval(u, v float64) r3.Vec
	Derive(u, v float64, ku, kv int) r3.Vec
	Plane(u, v float64) (s, su, sv r3.Vec)
	Project(p r3.Vec, uv *r2.Vec, tol float64) bool
	InitGridPattern() (up, vp []float64)
	IsSymmetric() (u, v bool)
}

// Planer evaluates a point and its first derivatives. It is all Derive and
// Project need from a surface.
type Planer interface {
	Plane(u, v float64) (s, su, sv r3.Vec)
}

const (
	// maxProjectIter bounds the Gauss-Newton iterations of Project.
	maxProjectIter = 32

	// fdStep is the finite difference step for higher derivatives.
	fdStep = 1e-4
)

// Derive returns the partial derivative of order ku in u and kv in v.
// First derivatives come from Plane; higher orders are central finite
// differences of the next lower order.
func Derive(s Planer, u, v float64, ku, kv int) r3.Vec {
	switch {
	case ku < 0 || kv < 0:
		return r3.Vec{}
	case ku == 0 && kv == 0:
		p, _, _ := s.Plane(u, v)
		return p
	case ku+kv == 1:
		_, su, sv := s.Plane(u, v)
		if ku == 1 {
			return su
		}
		return sv
	}

	settings := &fd.Settings{Formula: fd.Central, Step: fdStep}
	var f func(x float64) r3.Vec
	x := u
	if ku > 0 {
		f = func(x float64) r3.Vec { return Derive(s, x, v, ku-1, kv) }
	} else {
		x = v
		f = func(x float64) r3.Vec { return Derive(s, u, x, ku, kv-1) }
	}
	return r3.Vec{
		X: fd.Derivative(func(x float64) float64 { return f(x).X }, x, settings),
		Y: fd.Derivative(func(x float64) float64 { return f(x).Y }, x, settings),
		Z: fd.Derivative(func(x float64) float64 { return f(x).Z }, x, settings),
	}
}

// Project moves *uv to the parameters of the point of s closest to p,
// using Gauss-Newton steps on the squared distance. The parameters are
// clamped to the unit square. It reports whether the step size fell below
// tol.
func Project(s Planer, p r3.Vec, uv *r2.Vec, tol float64) bool {
	u, v := clamp(uv.X), clamp(uv.Y)
	for range maxProjectIter {
		q, su, sv := s.Plane(u, v)
		d := r3.Sub(p, q)
		a11, a12, a22 := r3.Dot(su, su), r3.Dot(su, sv), r3.Dot(sv, sv)
		b1, b2 := r3.Dot(su, d), r3.Dot(sv, d)
		det := a11*a22 - a12*a12
		if !(math.Abs(det) > 1e-300) {
			break
		}
		du := (a22*b1 - a12*b2) / det
		dv := (a11*b2 - a12*b1) / det
		nu, nv := clamp(u+du), clamp(v+dv)
		step := math.Hypot(nu-u, nv-v)
		u, v = nu, nv
		if step <= tol {
			*uv = r2.Vec{X: u, Y: v}
			return true
		}
	}
	*uv = r2.Vec{X: u, Y: v}
	return false
}

func clamp(x float64) float64 { return min(max(x, 0), 1) }

// uniform returns n+1 evenly spaced values in [0,1].
func uniform(n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = float64(i) / float64(n)
	}
	return out
}
