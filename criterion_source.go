package uvmesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// PointSource raises the mesh density around a point.
type PointSource struct {
	Center   r3.Vec  `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// LineSource raises the mesh density around a segment.
type LineSource struct {
	A        r3.Vec  `yaml:"a"`
	B        r3.Vec  `yaml:"b"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// SourceCriterion limits the 3D edge length to MaxLength divided by a
// density multiplier. Each source adds strength/(1+(d/r)²) to the
// multiplier, where d is the distance to the source.
type SourceCriterion struct {
	MaxLength float64       `yaml:"max_length"`
	MinLength float64       `yaml:"min_length"`
	Points    []PointSource `yaml:"points"`
	Lines     []LineSource  `yaml:"lines"`
	MaxNodes  int           `yaml:"max_nodes"`
	MaxPasses int           `yaml:"max_passes"`

	vx *Vertices
}

// Bind implements Criterion.
func (c *SourceCriterion) Bind(v *Vertices, _ Surface) { c.vx = v }

// Budget implements Criterion.
func (c *SourceCriterion) Budget() (int, int) { return c.MaxNodes, c.MaxPasses }

// Multiplier returns the density multiplier at p, at least 1.
func (c *SourceCriterion) Multiplier(p r3.Vec) float64 {
	m := 1.0
	for _, s := range c.Points {
		m += falloff(r3.Norm(r3.Sub(p, s.Center)), s.Radius, s.Strength)
	}
	for _, s := range c.Lines {
		m += falloff(distToSegment(p, s.A, s.B), s.Radius, s.Strength)
	}
	return m
}

func falloff(d, r, strength float64) float64 {
	if r <= 0 {
		return 0
	}
	q := d / r
	return strength / (1 + q*q)
}

func (c *SourceCriterion) allowed(p r3.Vec) float64 {
	return c.MaxLength / c.Multiplier(p)
}

// SplitSegment implements Criterion.
func (c *SourceCriterion) SplitSegment(ps, pt, _, _ r3.Vec, bias float64) bool {
	l := r3.Norm(r3.Sub(pt, ps))
	if c.MinLength > 0 && l < 2*c.MinLength {
		return false
	}
	mid := r3.Scale(0.5, r3.Add(ps, pt))
	return l > c.allowed(mid)*bias
}

// SplitCurve implements Criterion.
func (c *SourceCriterion) SplitCurve(a, _, b CurveSample) bool {
	return c.SplitSegment(a.XYZ, b.XYZ, a.Tangent, b.Tangent, 1)
}

// SplitFace implements Criterion.
func (c *SourceCriterion) SplitFace(a, b, v uint32) SplitFlag {
	t := c.vx.tri(a, b, v)
	l := t.edgeLengths()
	k := longest(l)
	if c.MinLength > 0 && l[k] < c.MinLength {
		return TooSmall
	}
	if l[k] <= c.allowed(t.centroid()) {
		return NoSplit
	}
	if l[k] > 4*minOf(l) {
		return splitEdgeFlag(k)
	}
	return InsertCircumCenter | splitEdgeFlag(k)
}
