package mapping

// degree of the spline in both directions.
const degree = 3

// bspline is a clamped uniform cubic B-spline basis on [0,1] with n
// control points.
type bspline struct {
	n     int
	knots []float64
}

func newBSpline(n int) bspline {
	if n < degree+1 {
		n = degree + 1
	}
	spans := n - degree
	knots := make([]float64, 0, n+degree+1)
	for range degree {
		knots = append(knots, 0)
	}
	for i := 0; i <= spans; i++ {
		knots = append(knots, float64(i)/float64(spans))
	}
	for range degree {
		knots = append(knots, 1)
	}
	return bspline{n: n, knots: knots}
}

// span returns the knot span index j with knots[j] <= x < knots[j+1]; the
// nonzero basis functions at x are j-3 ... j. x is clamped to [0,1].
func (b bspline) span(x float64) int {
	if x >= 1 {
		return b.n - 1
	}
	if x <= 0 {
		return degree
	}
	lo, hi := degree, b.n
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x < b.knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// funs evaluates the p+1 nonzero basis functions of degree p in span j.
func (b bspline) funs(j int, x float64, p int) [degree + 1]float64 {
	var n [degree + 1]float64
	var left, right [degree + 1]float64
	n[0] = 1
	for k := 1; k <= p; k++ {
		left[k] = x - b.knots[j+1-k]
		right[k] = b.knots[j+k] - x
		saved := 0.0
		for r := range k {
			tmp := n[r] / (right[r+1] + left[k-r])
			n[r] = saved + right[r+1]*tmp
			saved = left[k-r] * tmp
		}
		n[k] = saved
	}
	return n
}

// eval returns the span and the values and first derivatives of the four
// nonzero cubic basis functions at x, clamped to [0,1].
func (b bspline) eval(x float64) (j int, val, der [degree + 1]float64) {
	x = min(max(x, 0), 1)
	j = b.span(x)
	val = b.funs(j, x, degree)
	low := b.funs(j, x, degree-1)
	// N'_{i,3} = 3 (N_{i,2}/(u_{i+3}-u_i) - N_{i+1,2}/(u_{i+4}-u_{i+1}))
	for r := 0; r <= degree; r++ {
		i := j - degree + r
		var d float64
		if r > 0 {
			if den := b.knots[i+degree] - b.knots[i]; den > 0 {
				d += low[r-1] / den
			}
		}
		if r < degree {
			if den := b.knots[i+degree+1] - b.knots[i+1]; den > 0 {
				d -= low[r] / den
			}
		}
		der[r] = degree * d
	}
	return j, val, der
}
