package delaunay

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestEdgesIntersect(t *testing.T) {
	g := NewPlaneGeometry(r2.Vec{}, r2.Vec{X: 4, Y: 4}, 0)
	pts := []r2.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 2}, // 0,1
		{X: 0, Y: 2}, {X: 2, Y: 0}, // 2,3
		{X: 1, Y: 1}, {X: 3, Y: 3}, // 4,5
		{X: 3, Y: 0}, {X: 4, Y: 1}, // 6,7
		{X: 2, Y: 4}, // 8
	}
	for _, p := range pts {
		g.AddVertex(p)
	}
	tests := []struct {
		name           string
		as, at, bs, bt uint32
		want           Intersection
	}{
		{"cross", 0, 1, 2, 3, Intersect},
		{"colinear", 0, 1, 4, 5, ColinearIntersection},
		{"colinear disjoint", 0, 4, 1, 5, NoIntersection},
		{"disjoint", 0, 1, 6, 7, NoIntersection},
		{"touch at endpoint", 0, 1, 1, 8, Touch},
		{"t junction", 2, 3, 0, 4, Touch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.EdgesIntersect(tt.as, tt.at, tt.bs, tt.bt); got != tt.want {
				t.Errorf("EdgesIntersect = %v, want %v", got, tt.want)
			}
		})
	}

	p := g.IntersectionPoint(0, 1, 2, 3)
	if math.Abs(p.X-1) > 1e-15 || math.Abs(p.Y-1) > 1e-15 {
		t.Errorf("IntersectionPoint = %v, want (1,1)", p)
	}
}

func TestEncroachesEdge(t *testing.T) {
	g := NewPlaneGeometry(r2.Vec{}, r2.Vec{X: 1, Y: 1}, 0)
	g.AddVertex(r2.Vec{X: 0, Y: 0})
	g.AddVertex(r2.Vec{X: 1, Y: 0})
	in := g.AddVertex(r2.Vec{X: 0.5, Y: 0.4})
	out := g.AddVertex(r2.Vec{X: 0.5, Y: 0.6})
	if !g.EncroachesEdge(0, 1, in) {
		t.Error("point inside diametral circle not reported")
	}
	if g.EncroachesEdge(0, 1, out) {
		t.Error("point outside diametral circle reported")
	}
}

func TestLocate(t *testing.T) {
	c, g := newSquare(t)
	tests := []struct {
		name string
		p    r2.Vec
		ok   func(PointLoc) bool
	}{
		{"inside", r2.Vec{X: 0.2, Y: 0.7}, func(l PointLoc) bool { return l == Inside }},
		{"on edge", r2.Vec{X: 0.5, Y: 0}, PointLoc.IsOnEdge},
		{"on vertex", r2.Vec{X: 0, Y: 1}, PointLoc.IsOnVertex},
		{"beyond", r2.Vec{X: -0.5, Y: 0.5}, PointLoc.IsBeyondEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.AddVertex(tt.p)
			f, loc := g.Locate(c, v)
			if f == NotFound || !tt.ok(loc) {
				t.Errorf("Locate = %d, %d", f, loc)
			}
		})
	}
}

func TestLocateMergeTolerance(t *testing.T) {
	g := NewPlaneGeometry(r2.Vec{}, r2.Vec{X: 1, Y: 1}, 1e-8)
	for _, p := range []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}} {
		g.AddVertex(p)
	}
	c := NewCore(g)
	c.AddFace(0, 1, 2)
	c.Fixate()

	near := g.AddVertex(r2.Vec{X: 1 - 1e-5, Y: 1e-5})
	if _, loc := g.Locate(c, near); !loc.IsOnVertex() {
		t.Errorf("point within merge distance located as %d", loc)
	}
	onEdge := g.AddVertex(r2.Vec{X: 0.5, Y: -1e-5})
	if _, loc := g.Locate(c, onEdge); !loc.IsOnEdge() {
		t.Errorf("point just outside boundary edge located as %d", loc)
	}
}

func TestSpatialMatchesPlaneOnFlatSurface(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 2))
	var pts []r2.Vec
	for range 40 {
		pts = append(pts, r2.Vec{X: rng.Float64(), Y: rng.Float64()})
	}
	plane := NewPlaneGeometry(r2.Vec{}, r2.Vec{X: 1, Y: 1}, 0)
	spatial := NewSpatialGeometry(r2.Vec{}, r2.Vec{X: 1, Y: 1}, 0, func(v uint32) r3.Vec {
		return r3.Vec{X: pts[v].X, Y: pts[v].Y}
	})
	for _, p := range pts {
		plane.AddVertex(p)
		spatial.AddVertex(p)
	}
	for i := 0; i+3 < len(pts); i += 4 {
		a, b, c, d := uint32(i), uint32(i+1), uint32(i+2), uint32(i+3)
		if plane.Orientation(a, b, c) == Clockwise {
			b, c = c, b
		}
		want := plane.Encroaches([3]uint32{a, b, c}, d)
		if got := spatial.Encroaches([3]uint32{a, b, c}, d); got != want {
			t.Errorf("triangle (%d,%d,%d) vertex %d: spatial %v, plane %v", a, b, c, d, got, want)
		}
	}
}

func TestSpatialEncroachesOnCylinder(t *testing.T) {
	// Unroll a unit cylinder: u is the angle, v the height.
	xyz := func(p r2.Vec) r3.Vec { return r3.Vec{X: math.Cos(p.X), Y: math.Sin(p.X), Z: p.Y} }
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 0.2, Y: 0}, {X: 0.1, Y: 0.2}, {X: 0.1, Y: 0.05}, {X: 1.5, Y: 1.5}}
	g := NewSpatialGeometry(r2.Vec{}, r2.Vec{X: 2, Y: 2}, 0, func(v uint32) r3.Vec { return xyz(pts[v]) })
	for _, p := range pts {
		g.AddVertex(p)
	}
	if !g.Encroaches([3]uint32{0, 1, 2}, 3) {
		t.Error("nearby point not inside circumsphere")
	}
	if g.Encroaches([3]uint32{0, 1, 2}, 4) {
		t.Error("distant point inside circumsphere")
	}
}

func TestFaceIndexNearest(t *testing.T) {
	x := newFaceIndex(r2.Vec{}, r2.Vec{X: 1, Y: 1})
	if x.nearest(r2.Vec{X: 0.5, Y: 0.5}) != NotFound {
		t.Error("empty index returned a face")
	}
	x.insert(0, r2.Vec{X: 0.1, Y: 0.1})
	x.insert(1, r2.Vec{X: 0.9, Y: 0.9})
	if got := x.nearest(r2.Vec{X: 0.12, Y: 0.1}); got != 0 {
		t.Errorf("nearest = %d, want 0", got)
	}
	if got := x.nearest(r2.Vec{X: 0.88, Y: 0.91}); got != 1 {
		t.Errorf("nearest = %d, want 1", got)
	}
	// Reinserting moves the key.
	x.insert(0, r2.Vec{X: 0.9, Y: 0.1})
	if x.len() != 2 {
		t.Errorf("len = %d after reinsert, want 2", x.len())
	}
	x.erase(1)
	if got := x.nearest(r2.Vec{X: 0.9, Y: 0.9}); got != 0 {
		t.Errorf("nearest after erase = %d, want 0", got)
	}
	x.clear()
	if x.len() != 0 {
		t.Error("clear left keys behind")
	}
}

func TestInterleave(t *testing.T) {
	if got := interleave(0xffffffff); got != 0x5555555555555555 {
		t.Errorf("interleave = %#x", got)
	}
	if got := interleave(0b101); got != 0b10001 {
		t.Errorf("interleave(5) = %#b", got)
	}
}
