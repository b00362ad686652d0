// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func surfaces() map[string]Surface {
	return map[string]Surface{
		"plane":    NewPlane(2, 1),
		"bilinear": NewBilinear(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 1, Z: 0.5}),
		"cylinder": NewCylinder(2, 3, math.Pi),
		"bump":     NewBump(1, 1, 0.25),
		"wing":     NewWing(),
	}
}

// TestDerivativesMatchFiniteDifferences checks Plane against differences
// of Eval.
func TestDerivativesMatchFiniteDifferences(t *testing.T) {
	const h = 1e-6
	for name, s := range surfaces() {
		for _, uv := range []r2.Vec{{X: 0.2, Y: 0.3}, {X: 0.5, Y: 0.5}, {X: 0.8, Y: 0.9}} {
			_, su, sv := s.Plane(uv.X, uv.Y)
			fu := r3.Scale(1/(2*h), r3.Sub(s.Eval(uv.X+h, uv.Y), s.Eval(uv.X-h, uv.Y)))
			fv := r3.Scale(1/(2*h), r3.Sub(s.Eval(uv.X, uv.Y+h), s.Eval(uv.X, uv.Y-h)))
			if !near(su, fu, 1e-5) {
				t.Errorf("%s: Su(%v) = %v, finite difference %v", name, uv, su, fu)
			}
			if !near(sv, fv, 1e-5) {
				t.Errorf("%s: Sv(%v) = %v, finite difference %v", name, uv, sv, fv)
			}
		}
	}
}

func TestDeriveHigherOrder(t *testing.T) {
	c := NewCylinder(2, 3, math.Pi)
	u, v := 0.3, 0.4

	// S_uu = -(R·Angle²)(cos, sin, 0)
	sin, cos := math.Sincos(math.Pi * u)
	want := r3.Vec{X: -2 * math.Pi * math.Pi * cos, Y: -2 * math.Pi * math.Pi * sin}
	if got := c.Derive(u, v, 2, 0); !near(got, want, 1e-4) {
		t.Errorf("Derive(2,0) = %v, want %v", got, want)
	}
	if got := c.Derive(u, v, 0, 2); !near(got, r3.Vec{}, 1e-6) {
		t.Errorf("Derive(0,2) = %v, want 0", got)
	}
	if got := c.Derive(u, v, 1, 1); !near(got, r3.Vec{}, 1e-6) {
		t.Errorf("Derive(1,1) = %v, want 0", got)
	}
	if got := c.Derive(u, v, -1, 0); got != (r3.Vec{}) {
		t.Errorf("Derive(-1,0) = %v, want 0", got)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	for name, s := range surfaces() {
		for _, uv := range []r2.Vec{{X: 0.1, Y: 0.1}, {X: 0.45, Y: 0.7}, {X: 0.9, Y: 0.35}} {
			p := s.Eval(uv.X, uv.Y)
			got := r2.Vec{X: 0.5, Y: 0.5}
			if !s.Project(p, &got, 1e-12) {
				t.Errorf("%s: Project(%v) did not converge", name, uv)
				continue
			}
			if d := r2.Norm(r2.Sub(got, uv)); d > 1e-8 {
				t.Errorf("%s: Project(S(%v)) = %v, off by %g", name, uv, got, d)
			}
		}
	}
}

func TestProjectOffSurface(t *testing.T) {
	s := NewPlane(2, 1)
	uv := r2.Vec{X: 0.5, Y: 0.5}
	if !s.Project(r3.Vec{X: 1, Y: 0.25, Z: 3}, &uv, 1e-12) {
		t.Fatal("Project did not converge")
	}
	if math.Abs(uv.X-0.5) > 1e-12 || math.Abs(uv.Y-0.25) > 1e-12 {
		t.Errorf("Project = %v, want (0.5, 0.25)", uv)
	}

	// Points beyond the edge clamp to it.
	uv = r2.Vec{X: 0.5, Y: 0.5}
	s.Project(r3.Vec{X: 5, Y: 0.5}, &uv, 1e-12)
	if uv.X != 1 {
		t.Errorf("Project beyond edge: u = %g, want 1", uv.X)
	}
}

func TestStripIsDegenerate(t *testing.T) {
	_, su, sv := NewStrip(2).Plane(0.3, 0.7)
	if n := r3.Norm(r3.Cross(su, sv)); n != 0 {
		t.Errorf("|Su x Sv| = %g, want 0", n)
	}
}

func TestSymmetry(t *testing.T) {
	b := NewBump(1, 1, 0.25)
	if u, v := b.IsSymmetric(); !u || v {
		t.Errorf("Bump.IsSymmetric() = %v, %v, want true, false", u, v)
	}
	for _, u := range []float64{0.1, 0.3, 0.45} {
		if d := math.Abs(b.Eval(u, 0.5).Z - b.Eval(1-u, 0.5).Z); d > 1e-15 {
			t.Errorf("Bump height not symmetric at u=%g: diff %g", u, d)
		}
	}
}

func TestGridPatterns(t *testing.T) {
	up, _ := NewCylinder(1, 1, 2*math.Pi).InitGridPattern()
	if len(up) != 25 {
		t.Errorf("cylinder pattern has %d values, want 25", len(up))
	}
	up, vp := NewWing().InitGridPattern()
	if len(up) != 17 || vp != nil {
		t.Fatalf("wing pattern sizes = %d, %d", len(up), len(vp))
	}
	if up[0] != 0 || math.Abs(up[16]-1) > 1e-15 || up[1] > 1.0/16 {
		t.Errorf("wing pattern not clustered at the edges: %v", up)
	}
}

func TestCurves(t *testing.T) {
	const h = 1e-6
	curves := map[string]interface {
		Eval(float64) r2.Vec
		Derive(float64) r2.Vec
	}{
		"line":   NewLine(r2.Vec{X: 0.1, Y: 0.2}, r2.Vec{X: 0.9, Y: 0.4}),
		"circle": NewCircle(r2.Vec{X: 0.5, Y: 0.5}, 0.25),
		"cubic":  NewCubicBez(r2.Vec{}, r2.Vec{X: 0.3, Y: 0.8}, r2.Vec{X: 0.7, Y: -0.2}, r2.Vec{X: 1, Y: 1}),
	}
	for name, c := range curves {
		for _, tt := range []float64{0.2, 0.5, 0.7} {
			fd := r2.Scale(1/(2*h), r2.Sub(c.Eval(tt+h), c.Eval(tt-h)))
			if d := r2.Norm(r2.Sub(fd, c.Derive(tt))); d > 1e-5 {
				t.Errorf("%s: Derive(%g) = %v, finite difference %v", name, tt, c.Derive(tt), fd)
			}
		}
	}

	circ := NewCircle(r2.Vec{X: 0.5, Y: 0.5}, 0.25)
	if circ.Eval(0) != circ.Eval(1) {
		t.Errorf("circle not closed: %v != %v", circ.Eval(0), circ.Eval(1))
	}
	cb := curves["cubic"]
	if cb.Eval(0) != (r2.Vec{}) || cb.Eval(1) != (r2.Vec{X: 1, Y: 1}) {
		t.Errorf("cubic end points = %v, %v", cb.Eval(0), cb.Eval(1))
	}
}
