package uvmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// biasCenters are the parameter positions of the three bias regions.
var biasCenters = [3]float64{0, 0.5, 1}

// minBias bounds the length reduction of overlapping bias regions.
const minBias = 0.05

// LengthCriterion refines by edge length in 3D and in the parameter plane,
// by the deviation between face and vertex normals and by apex angles.
// Zero thresholds are disabled. Angles are in radians.
type LengthCriterion struct {
	MaxLength   float64 `yaml:"max_length"`
	MinLength   float64 `yaml:"min_length"`
	MaxUVLength float64 `yaml:"max_uv_length"`
	MinUVLength float64 `yaml:"min_uv_length"`

	MaxNormalAngle float64 `yaml:"max_normal_angle"`
	MinApexAngle   float64 `yaml:"min_apex_angle"`
	MaxApexAngle   float64 `yaml:"max_apex_angle"`

	// BiasU and BiasV reduce the allowed length near u (v) = 0, 0.5 and 1
	// by the given fraction, decaying over BiasWidth.
	BiasU     [3]float64 `yaml:"bias_u"`
	BiasV     [3]float64 `yaml:"bias_v"`
	BiasWidth float64    `yaml:"bias_width"`

	MaxNodes  int `yaml:"max_nodes"`
	MaxPasses int `yaml:"max_passes"`

	vx *Vertices
}

// DefaultLengthCriterion returns a criterion limited by 3D edge length only.
func DefaultLengthCriterion(maxLength float64) *LengthCriterion {
	return &LengthCriterion{
		MaxLength:    maxLength,
		MinLength:    maxLength / 64,
		MinApexAngle: 20 * math.Pi / 180,
		MaxApexAngle: 120 * math.Pi / 180,
		BiasWidth:    0.1,
	}
}

// Bind implements Criterion.
func (c *LengthCriterion) Bind(v *Vertices, _ Surface) { c.vx = v }

// Budget implements Criterion.
func (c *LengthCriterion) Budget() (int, int) { return c.MaxNodes, c.MaxPasses }

// Bias returns the length factor at uv, in [minBias, 1].
func (c *LengthCriterion) Bias(uv r2.Vec) float64 {
	w := c.BiasWidth
	if w <= 0 {
		return 1
	}
	f := 1.0
	for i, x := range biasCenters {
		if r := c.BiasU[i]; r != 0 {
			d := (uv.X - x) / w
			f *= 1 - r*math.Exp(-d*d)
		}
		if r := c.BiasV[i]; r != 0 {
			d := (uv.Y - x) / w
			f *= 1 - r*math.Exp(-d*d)
		}
	}
	return max(minBias, min(1, f))
}

// SplitSegment implements Criterion.
func (c *LengthCriterion) SplitSegment(ps, pt, tgs, tgt r3.Vec, bias float64) bool {
	l := r3.Norm(r3.Sub(pt, ps))
	if c.MinLength > 0 && l < 2*c.MinLength {
		return false
	}
	if c.MaxLength > 0 && l > c.MaxLength*bias {
		return true
	}
	return c.MaxNormalAngle > 0 && angle(tgs, tgt) > c.MaxNormalAngle
}

// SplitCurve implements Criterion.
func (c *LengthCriterion) SplitCurve(a, m, b CurveSample) bool {
	if c.MaxUVLength > 0 && r2.Norm(r2.Sub(b.UV, a.UV)) > c.MaxUVLength {
		return true
	}
	return c.SplitSegment(a.XYZ, b.XYZ, a.Tangent, b.Tangent, c.Bias(m.UV))
}

// SplitFace implements Criterion.
func (c *LengthCriterion) SplitFace(a, b, v uint32) SplitFlag {
	t := c.vx.tri(a, b, v)
	l := t.edgeLengths()
	luv := t.uvLengths()
	k := longest(l)
	lmax := l[k]

	if c.MinLength > 0 && lmax < c.MinLength {
		return TooSmall
	}
	if c.MinUVLength > 0 && maxOf(luv) < c.MinUVLength {
		return TooSmall
	}

	bias := c.Bias(t.centroidUV())
	need := c.MaxLength > 0 && lmax > c.MaxLength*bias
	if !need && c.MaxUVLength > 0 && maxOf(luv) > c.MaxUVLength*bias {
		need = true
		k = longest(luv)
	}
	if !need && c.MaxNormalAngle > 0 {
		fn := t.normal()
		for i := range 3 {
			if r3.Norm(t.nrm[i]) > 0 && angle(fn, t.nrm[i]) > c.MaxNormalAngle {
				need = true
				break
			}
		}
	}

	ang := t.apexAngles()
	obtuse := c.MaxApexAngle > 0 && maxOf(ang) > c.MaxApexAngle
	sharp := c.MinApexAngle > 0 && minOf(ang) < c.MinApexAngle

	switch {
	case need && (obtuse || lmax > 4*minOf(l)):
		return splitEdgeFlag(k)
	case need:
		return InsertCircumCenter | splitEdgeFlag(k)
	case sharp && c.MinLength > 0 && lmax > 2*c.MinLength:
		return InsertCircumCenter | splitEdgeFlag(k)
	}
	return NoSplit
}
