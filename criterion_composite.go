package uvmesh

import "gonum.org/v1/gonum/spatial/r3"

// CompositeCriterion combines several criteria. A face is split with the
// directive of the first item that asks for a split, unless some item
// reports it as TooSmall.
type CompositeCriterion struct {
	Items []Criterion

	// MaxNodes and MaxPasses override the largest budget of the items
	// when set.
	MaxNodes  int
	MaxPasses int
}

// Combine returns a composite of the given criteria.
func Combine(items ...Criterion) *CompositeCriterion {
	return &CompositeCriterion{Items: items}
}

// Bind implements Criterion.
func (c *CompositeCriterion) Bind(v *Vertices, s Surface) {
	for _, it := range c.Items {
		it.Bind(v, s)
	}
}

// Budget implements Criterion.
func (c *CompositeCriterion) Budget() (int, int) {
	nodes, passes := c.MaxNodes, c.MaxPasses
	for _, it := range c.Items {
		n, p := it.Budget()
		if c.MaxNodes == 0 {
			nodes = max(nodes, n)
		}
		if c.MaxPasses == 0 {
			passes = max(passes, p)
		}
	}
	return nodes, passes
}

// SplitSegment implements Criterion.
func (c *CompositeCriterion) SplitSegment(ps, pt, tgs, tgt r3.Vec, bias float64) bool {
	for _, it := range c.Items {
		if it.SplitSegment(ps, pt, tgs, tgt, bias) {
			return true
		}
	}
	return false
}

// SplitCurve implements Criterion.
func (c *CompositeCriterion) SplitCurve(a, m, b CurveSample) bool {
	for _, it := range c.Items {
		if it.SplitCurve(a, m, b) {
			return true
		}
	}
	return false
}

// SplitFace implements Criterion.
func (c *CompositeCriterion) SplitFace(a, b, v uint32) SplitFlag {
	out := NoSplit
	for _, it := range c.Items {
		f := it.SplitFace(a, b, v)
		if f&TooSmall != 0 {
			return TooSmall
		}
		if out == NoSplit && f.Split() {
			out = f
		}
	}
	return out
}
