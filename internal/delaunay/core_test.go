package delaunay

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// newSquare returns a core triangulating the unit square with two faces.
// Vertices 0..3 are the corners in counter-clockwise order from the origin.
func newSquare(t *testing.T) (*Core, *PlaneGeometry) {
	t.Helper()
	g := NewPlaneGeometry(r2.Vec{X: -1, Y: -1}, r2.Vec{X: 2, Y: 2}, 1e-20)
	for _, p := range []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}} {
		g.AddVertex(p)
	}
	c := NewCore(g)
	if c.AddFace(0, 1, 2) == NotFound || c.AddFace(0, 3, 2) == NotFound {
		t.Fatal("AddFace failed on unit square")
	}
	if !c.Fixate() {
		t.Fatalf("Fixate failed: %v", c.Status())
	}
	return c, g
}

// checkDelaunay reports every flippable interior edge whose opposite vertex
// lies inside the circumcircle of its neighbor.
func checkDelaunay(t *testing.T, c *Core) {
	t.Helper()
	c.EachEdge(func(e Edge) bool {
		if e.NFaces() != 2 || !e.CanFlip() {
			return true
		}
		f := c.Face(e.Face(0))
		o := c.Face(e.Face(1)).Opposite(e.Source(), e.Target())
		if c.Geometry().Encroaches(f.Vertices(), o) {
			t.Errorf("edge %v is not Delaunay: vertex %d inside circle of %v", e, o, f)
		}
		return true
	})
	if bad := c.IllegalEdges(); len(bad) > 0 {
		t.Errorf("%d illegal edges, first %v", len(bad), bad[0])
	}
}

func TestNewFaceCanonicalRotation(t *testing.T) {
	tests := []struct {
		a, b, c uint32
		want    [3]uint32
	}{
		{1, 2, 3, [3]uint32{1, 2, 3}},
		{2, 3, 1, [3]uint32{1, 2, 3}},
		{3, 1, 2, [3]uint32{1, 2, 3}},
		{1, 3, 2, [3]uint32{1, 3, 2}},
		{9, 4, 7, [3]uint32{4, 7, 9}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, NewFace(tt.a, tt.b, tt.c).Vertices()); diff != "" {
			t.Errorf("NewFace(%d,%d,%d) mismatch (-want +got):\n%s", tt.a, tt.b, tt.c, diff)
		}
	}
}

func TestFaceEdgeQueries(t *testing.T) {
	f := NewFace(5, 2, 8)
	if k := f.EdgeIndex(8, 5); k < 0 {
		t.Fatalf("EdgeIndex(8,5) = %d, want >= 0", k)
	}
	if got := f.Opposite(2, 8); got != 5 {
		t.Errorf("Opposite(2,8) = %d, want 5", got)
	}
	if got := f.Opposite(2, 9); got != NotFound {
		t.Errorf("Opposite(2,9) = %d, want NotFound", got)
	}
	if got := f.V(4); got != 8 {
		t.Errorf("V(4) = %d, want 8", got)
	}
	if invalidFace.Valid() {
		t.Error("invalidFace reports valid")
	}
}

func TestEdgeTableReuse(t *testing.T) {
	tab := newEdgeTable()
	h1 := tab.insert(3, 1)
	if h2 := tab.insert(1, 3); h2 != h1 {
		t.Fatalf("insert(1,3) = %d, want existing handle %d", h2, h1)
	}
	e := tab.at(h1)
	if e.Source() != 1 || e.Target() != 3 {
		t.Errorf("edge = %v, want canonical (1,3)", *e)
	}
	tab.erase(h1)
	if _, ok := tab.find(1, 3); ok {
		t.Error("erased edge still found")
	}
	if h3 := tab.insert(4, 5); h3 != h1 {
		t.Errorf("insert after erase got handle %d, want reused %d", h3, h1)
	}
	if tab.len() != 1 {
		t.Errorf("len = %d, want 1", tab.len())
	}
}

func TestEdgeFaceSlots(t *testing.T) {
	e := newEdge(7, 2)
	if !e.appendFace(10) || !e.appendFace(11) {
		t.Fatal("appendFace failed on free slots")
	}
	if e.appendFace(12) {
		t.Error("appendFace succeeded on full edge")
	}
	e.detachFace(10)
	if e.Face(0) != 11 || e.Face(1) != NotFound {
		t.Errorf("after detach nbf = %v, want [11 NotFound]", e.nbf)
	}
	if e.OtherFace(11) != NotFound {
		t.Error("OtherFace of single-face edge should be NotFound")
	}
	e.set(Constrained)
	if e.CanFlip() {
		t.Error("constrained edge reports flippable")
	}
	if got := (Constrained | NeverSplit).String(); got != "constrained|neversplit" {
		t.Errorf("flag string = %q", got)
	}
}

func TestFixate(t *testing.T) {
	c, _ := newSquare(t)
	if c.NEdges() != 5 {
		t.Errorf("NEdges = %d, want 5", c.NEdges())
	}
	e, ok := c.FindEdge(2, 0)
	if !ok || e.NFaces() != 2 {
		t.Errorf("diagonal = %v, %v; want interior edge", e, ok)
	}
	if c.Fixate() {
		t.Error("second Fixate succeeded")
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestAddFaceOrientation(t *testing.T) {
	g := NewPlaneGeometry(r2.Vec{}, r2.Vec{X: 1, Y: 1}, 0)
	g.AddVertex(r2.Vec{X: 0, Y: 0})
	g.AddVertex(r2.Vec{X: 1, Y: 0})
	g.AddVertex(r2.Vec{X: 0, Y: 1})
	g.AddVertex(r2.Vec{X: 2, Y: 0})
	c := NewCore(g)

	f := c.AddFace(0, 2, 1)
	if f == NotFound {
		t.Fatal("AddFace rejected clockwise input")
	}
	v := c.Face(f).Vertices()
	if g.Orientation(v[0], v[1], v[2]) != CounterClockwise {
		t.Errorf("face %v not counter-clockwise", c.Face(f))
	}
	if c.AddFace(0, 1, 3) != NotFound {
		t.Error("AddFace accepted colinear vertices")
	}
}

func TestEraseDetachedEdges(t *testing.T) {
	c, _ := newSquare(t)
	c.killFace(0)
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
	if n := c.EraseDetachedEdges(); n != 2 {
		t.Errorf("EraseDetachedEdges = %d, want 2", n)
	}
	if c.NEdges() != 3 || c.NValidFaces() != 1 {
		t.Errorf("edges=%d faces=%d, want 3 and 1", c.NEdges(), c.NValidFaces())
	}
}

func TestInsertVertexCases(t *testing.T) {
	tests := []struct {
		name      string
		p         r2.Vec
		extension bool
		want      InsertResult
		faces     int
		status    Status
	}{
		{"interior", r2.Vec{X: 0.7, Y: 0.2}, false, FaceSplit, 4, StatusOk},
		{"diagonal", r2.Vec{X: 0.5, Y: 0.5}, false, EdgeSplit, 4, StatusOk},
		{"boundary", r2.Vec{X: 1, Y: 0.5}, false, EdgeSplit, 3, StatusOk},
		{"corner", r2.Vec{X: 1, Y: 1}, false, VertexPresent, 2, StatusOk},
		{"outside", r2.Vec{X: 2, Y: 0.5}, false, NotInserted, 2, InsertPointOutOfDomain},
		{"extension", r2.Vec{X: 2, Y: 0.5}, true, ExtendedOutward, 3, StatusOk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, g := newSquare(t)
			c.SetExtension(tt.extension)
			v := g.AddVertex(tt.p)
			got, w := c.InsertVertex(v, true)
			if got != tt.want {
				t.Errorf("InsertVertex = %v, want %v", got, tt.want)
			}
			if c.Status() != tt.status {
				t.Errorf("status = %v, want %v", c.Status(), tt.status)
			}
			if c.NValidFaces() != tt.faces {
				t.Errorf("faces = %d, want %d", c.NValidFaces(), tt.faces)
			}
			if got == VertexPresent && w != 2 {
				t.Errorf("present vertex = %d, want 2", w)
			}
			if err := c.Check(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestExtendOutwardKeepsConvexHull(t *testing.T) {
	c, g := newSquare(t)
	c.SetExtension(true)
	// Beyond the corner (1,1): sees both the right and the top edge.
	v := g.AddVertex(r2.Vec{X: 2, Y: 2})
	if r, _ := c.InsertVertex(v, true); r != ExtendedOutward {
		t.Fatalf("InsertVertex = %v, want ExtendedOutward", r)
	}
	if c.NValidFaces() != 4 {
		t.Errorf("faces = %d, want 4", c.NValidFaces())
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
	checkDelaunay(t, c)
}

func TestRandomInsertionIsDelaunay(t *testing.T) {
	c, g := newSquare(t)
	rng := rand.New(rand.NewPCG(1, 2))
	const n = 300
	for range n {
		v := g.AddVertex(r2.Vec{X: rng.Float64(), Y: rng.Float64()})
		if r, _ := c.InsertVertex(v, true); r == NotInserted {
			t.Fatalf("vertex %d not inserted: %v", v, c.Status())
		}
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
	// Euler: 2n - h - 2 faces with the 4 hull corners.
	if want := 2*(n+4) - 4 - 2; c.NValidFaces() != want {
		t.Errorf("faces = %d, want %d", c.NValidFaces(), want)
	}
	checkDelaunay(t, c)
	if flips := c.LegalizeAll(); flips != 0 {
		t.Errorf("LegalizeAll flipped %d edges on a Delaunay mesh", flips)
	}
}

func TestLegalizeAllRepairs(t *testing.T) {
	c, g := newSquare(t)
	rng := rand.New(rand.NewPCG(7, 7))
	for range 100 {
		v := g.AddVertex(r2.Vec{X: rng.Float64(), Y: rng.Float64()})
		c.InsertVertex(v, false)
	}
	total := 0
	for range 16 {
		n := c.LegalizeAll()
		if n == 0 {
			break
		}
		total += n
	}
	if total == 0 {
		t.Error("expected flips on a mesh built without legalization")
	}
	checkDelaunay(t, c)
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestSplitEdgeRefusesDegenerateFace(t *testing.T) {
	c, g := newSquare(t)
	// On the line from corner 0 through corner 2, so (0,x,2) is colinear.
	x := g.AddVertex(r2.Vec{X: 0.25, Y: 0.25})
	if c.SplitEdge(0, 1, x, true) {
		t.Fatal("SplitEdge created a face through three colinear vertices")
	}
	if c.Status() != InsertCannotSplitEdge {
		t.Errorf("status = %v, want %v", c.Status(), InsertCannotSplitEdge)
	}
	if c.NValidFaces() != 2 {
		t.Errorf("faces = %d, want the seed 2", c.NValidFaces())
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestSplitFaceRoutesEdgePoints(t *testing.T) {
	c, g := newSquare(t)
	f, _ := g.Locate(c, g.AddVertex(r2.Vec{X: 0.9, Y: 0.1}))
	if f == NotFound {
		t.Fatal("seed face not found")
	}

	onDiagonal := g.AddVertex(r2.Vec{X: 0.5, Y: 0.5})
	if !c.SplitFace(f, onDiagonal, true) {
		t.Fatalf("SplitFace with a point on an edge failed: %v", c.Status())
	}
	if c.NValidFaces() != 4 {
		t.Errorf("faces = %d, want 4 after an edge split", c.NValidFaces())
	}

	f, _ = g.Locate(c, g.AddVertex(r2.Vec{X: 0.9, Y: 0.2}))
	outside := g.AddVertex(r2.Vec{X: 0.1, Y: 0.9})
	if c.SplitFace(f, outside, true) {
		t.Error("SplitFace accepted a vertex outside the face")
	}
	if c.Status() != InsertTriangleNotFound {
		t.Errorf("status = %v, want %v", c.Status(), InsertTriangleNotFound)
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
	checkDelaunay(t, c)
}

func TestSpatialLegalizationConverges(t *testing.T) {
	var pts []r2.Vec
	// A corrugated sheet, strongly curved across u.
	xyz := func(v uint32) r3.Vec {
		p := pts[v]
		return r3.Vec{X: p.X, Y: p.Y, Z: 0.3 * math.Sin(9*p.X) * math.Cos(4*p.Y)}
	}
	g := NewSpatialGeometry(r2.Vec{X: -1, Y: -1}, r2.Vec{X: 2, Y: 2}, 1e-20, xyz)
	add := func(p r2.Vec) uint32 {
		pts = append(pts, p)
		return g.AddVertex(p)
	}
	for _, p := range []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}} {
		add(p)
	}
	c := NewCore(g)
	if c.AddFace(0, 1, 2) == NotFound || c.AddFace(0, 2, 3) == NotFound || !c.Fixate() {
		t.Fatal("seed failed")
	}

	rng := rand.New(rand.NewPCG(3, 9))
	for range 400 {
		v := add(r2.Vec{X: rng.Float64(), Y: rng.Float64()})
		if r, _ := c.InsertVertex(v, true); r == NotInserted {
			t.Fatalf("vertex %d not inserted: %v", v, c.Status())
		}
	}
	c.LegalizeAll()
	if c.Status() != StatusOk {
		t.Errorf("LegalizeAll status = %v", c.Status())
	}
	if bad := c.IllegalEdges(); len(bad) > 0 {
		t.Errorf("%d illegal edges after LegalizeAll, first %v", len(bad), bad[0])
	}
	if flips := c.LegalizeAll(); flips != 0 {
		t.Errorf("second LegalizeAll flipped %d edges", flips)
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestFlipEdge(t *testing.T) {
	c, _ := newSquare(t)
	if !c.FlipEdge(0, 2) {
		t.Fatal("FlipEdge(0,2) failed")
	}
	if _, ok := c.FindEdge(1, 3); !ok {
		t.Error("flipped diagonal (1,3) missing")
	}
	if _, ok := c.FindEdge(0, 2); ok {
		t.Error("old diagonal still present")
	}
	if c.FlipEdge(0, 1) {
		t.Error("boundary edge flipped")
	}
	c.SetEdgeFlags(1, 3, Feature)
	if c.FlipEdge(1, 3) {
		t.Error("feature edge flipped")
	}
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestSplitFlagsTransfer(t *testing.T) {
	c, g := newSquare(t)
	c.SetEdgeFlags(0, 2, Constrained)
	v := g.AddVertex(r2.Vec{X: 0.5, Y: 0.5})
	if r, _ := c.InsertVertex(v, true); r != EdgeSplit {
		t.Fatalf("InsertVertex = %v, want EdgeSplit", r)
	}
	for _, ab := range [][2]uint32{{0, v}, {v, 2}} {
		e, ok := c.FindEdge(ab[0], ab[1])
		if !ok || !e.Check(Constrained) {
			t.Errorf("half edge %v: %v, %v; want constrained", ab, e, ok)
		}
	}
}

func TestNeverSplit(t *testing.T) {
	c, g := newSquare(t)
	c.SetEdgeFlags(0, 2, NeverSplit)
	v := g.AddVertex(r2.Vec{X: 0.5, Y: 0.5})
	if r, _ := c.InsertVertex(v, true); r != NotInserted {
		t.Fatalf("InsertVertex = %v, want NotInserted", r)
	}
	if c.Status() != InsertCannotSplitEdge {
		t.Errorf("status = %v, want %v", c.Status(), InsertCannotSplitEdge)
	}
}

func TestProtection(t *testing.T) {
	c, g := newSquare(t)
	c.SetEdgeFlags(0, 1, Constrained)
	c.SetProtection(true)
	v := g.AddVertex(r2.Vec{X: 0.5, Y: 0.1})
	if r, _ := c.InsertVertex(v, true); r != NotInserted {
		t.Fatalf("InsertVertex = %v, want NotInserted", r)
	}
	if c.Status() != ProtectedConstraintEncroached {
		t.Errorf("status = %v", c.Status())
	}
	if a, b := c.Encroached(); keyOf(a, b) != keyOf(0, 1) {
		t.Errorf("encroached = (%d,%d), want (0,1)", a, b)
	}
	c.SetProtection(false)
	if r, _ := c.InsertVertex(v, true); r != FaceSplit {
		t.Errorf("unprotected InsertVertex = %v, want FaceSplit", r)
	}
}

func TestFacesAround(t *testing.T) {
	c, g := newSquare(t)
	v := g.AddVertex(r2.Vec{X: 0.5, Y: 0.5})
	c.InsertVertex(v, true)
	if n := len(c.FacesAround(v)); n != 4 {
		t.Errorf("FacesAround(center) = %d faces, want 4", n)
	}
	if n := len(c.FacesAround(0)); n != 2 {
		t.Errorf("FacesAround(corner) = %d faces, want 2", n)
	}
	for _, f := range c.FacesAround(1) {
		if c.Face(f).Find(1) < 0 {
			t.Errorf("face %v does not contain vertex 1", c.Face(f))
		}
	}
}

func TestClear(t *testing.T) {
	c, g := newSquare(t)
	c.Clear()
	if c.NFaces() != 0 || c.NEdges() != 0 || g.NVertices() != 0 {
		t.Errorf("after Clear faces=%d edges=%d vertices=%d", c.NFaces(), c.NEdges(), g.NVertices())
	}
	if c.IsPresent(0) {
		t.Error("vertex 0 still present after Clear")
	}
}
