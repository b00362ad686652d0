package uvmesh

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DeviationCriterion refines where the linear mesh deviates from the true
// surface by more than MaxDeviation.
type DeviationCriterion struct {
	MaxDeviation float64 `yaml:"max_deviation"`
	MinLength    float64 `yaml:"min_length"`
	MaxNodes     int     `yaml:"max_nodes"`
	MaxPasses    int     `yaml:"max_passes"`

	vx   *Vertices
	surf Surface
}

// Bind implements Criterion.
func (c *DeviationCriterion) Bind(v *Vertices, s Surface) { c.vx, c.surf = v, s }

// Budget implements Criterion.
func (c *DeviationCriterion) Budget() (int, int) { return c.MaxNodes, c.MaxPasses }

// SplitSegment implements Criterion. The deviation of a circular arc with
// chord l and tangent turn θ is estimated as l·θ/8.
func (c *DeviationCriterion) SplitSegment(ps, pt, tgs, tgt r3.Vec, _ float64) bool {
	l := r3.Norm(r3.Sub(pt, ps))
	if c.MinLength > 0 && l < 2*c.MinLength {
		return false
	}
	return l*angle(tgs, tgt)/8 > c.MaxDeviation
}

// SplitCurve implements Criterion.
func (c *DeviationCriterion) SplitCurve(a, m, b CurveSample) bool {
	if c.MinLength > 0 && r3.Norm(r3.Sub(b.XYZ, a.XYZ)) < 2*c.MinLength {
		return false
	}
	if distToSegment(m.XYZ, a.XYZ, b.XYZ) > c.MaxDeviation {
		return true
	}
	return c.SplitSegment(a.XYZ, b.XYZ, a.Tangent, b.Tangent, 1)
}

// SplitFace implements Criterion.
func (c *DeviationCriterion) SplitFace(a, b, v uint32) SplitFlag {
	t := c.vx.tri(a, b, v)
	l := t.edgeLengths()
	if c.MinLength > 0 && maxOf(l) < c.MinLength {
		return TooSmall
	}

	uv := t.centroidUV()
	if r3.Norm(r3.Sub(c.surf.Eval(uv.X, uv.Y), t.centroid())) > c.MaxDeviation {
		return InsertTriCenter
	}

	worst, k := c.MaxDeviation, -1
	for i := range 3 {
		j := (i + 1) % 3
		if c.MinLength > 0 && l[i] < 2*c.MinLength {
			continue
		}
		mid := r2.Scale(0.5, r2.Add(t.uv[i], t.uv[j]))
		lin := r3.Scale(0.5, r3.Add(t.xyz[i], t.xyz[j]))
		if d := r3.Norm(r3.Sub(c.surf.Eval(mid.X, mid.Y), lin)); d > worst {
			worst, k = d, i
		}
	}
	if k >= 0 {
		return splitEdgeFlag(k)
	}
	return NoSplit
}
