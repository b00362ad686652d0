// Package robust provides orientation and in-circle predicates for points in
// the plane that return the correct sign for all finite inputs.
//
// Each predicate first evaluates the determinant in float64 and compares it
// against a conservative forward error bound. Only when the sign cannot be
// certified does it fall back to exact arithmetic with math/big, which is
// slow but rarely needed: near-degenerate configurations are exactly the
// ones that show up when constraint vertices land on existing edges.
package robust

import (
	"math"
	"math/big"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// dblEpsilon is half an ulp of 1.0, the unit roundoff of float64.
	dblEpsilon = 1.1102230246251565e-16

	// orientErrBound bounds the relative error of the float64 orientation
	// determinant (Shewchuk's ccwerrboundA).
	orientErrBound = (3.0 + 16.0*dblEpsilon) * dblEpsilon

	// inCircleErrBound bounds the relative error of the float64 in-circle
	// determinant (Shewchuk's iccerrboundA).
	inCircleErrBound = (10.0 + 96.0*dblEpsilon) * dblEpsilon
)

// newBigFloat constructs a big.Float that never rounds the sums and
// products of float64 values used here.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

func bigOf(x float64) *big.Float { return newBigFloat().SetFloat64(x) }

// Orient2D returns +1 if a, b, c are in counter-clockwise order, -1 if they
// are clockwise and 0 if they are exactly colinear.
//
// Orient2D(a,b,c) == Orient2D(b,c,a) == -Orient2D(b,a,c) holds for all
// finite inputs.
func Orient2D(a, b, c r2.Vec) int {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight

	var detSum float64
	switch {
	case detLeft > 0:
		if detRight <= 0 {
			return sign(det)
		}
		detSum = detLeft + detRight
	case detLeft < 0:
		if detRight >= 0 {
			return sign(det)
		}
		detSum = -detLeft - detRight
	default:
		return sign(det)
	}

	if bound := orientErrBound * detSum; det >= bound || -det >= bound {
		return sign(det)
	}
	return exactOrient2D(a, b, c)
}

// Orient2DValue returns the float64 orientation determinant (twice the
// signed area of abc) without any robustness guarantee. Useful for areas.
func Orient2DValue(a, b, c r2.Vec) float64 {
	return (a.X-c.X)*(b.Y-c.Y) - (a.Y-c.Y)*(b.X-c.X)
}

func exactOrient2D(a, b, c r2.Vec) int {
	acx := newBigFloat().Sub(bigOf(a.X), bigOf(c.X))
	acy := newBigFloat().Sub(bigOf(a.Y), bigOf(c.Y))
	bcx := newBigFloat().Sub(bigOf(b.X), bigOf(c.X))
	bcy := newBigFloat().Sub(bigOf(b.Y), bigOf(c.Y))

	left := newBigFloat().Mul(acx, bcy)
	right := newBigFloat().Mul(acy, bcx)
	return left.Sub(left, right).Sign()
}

// InCircle returns +1 if d lies strictly inside the circle through a, b, c,
// -1 if it lies strictly outside and 0 if the four points are cocircular.
// The triangle abc must be counter-clockwise; for a clockwise triangle the
// sign is reversed.
func InCircle(a, b, c, d r2.Vec) int {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	alift := adx*adx + ady*ady

	cdxady, adxcdy := cdx*ady, adx*cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy, bdxady := adx*bdy, bdx*ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)

	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift
	if bound := inCircleErrBound * permanent; det > bound || -det > bound {
		return sign(det)
	}
	return exactInCircle(a, b, c, d)
}

func exactInCircle(a, b, c, d r2.Vec) int {
	sub := func(p, q float64) *big.Float { return newBigFloat().Sub(bigOf(p), bigOf(q)) }
	mul := func(p, q *big.Float) *big.Float { return newBigFloat().Mul(p, q) }
	lift := func(x, y *big.Float) *big.Float {
		s := mul(x, x)
		return s.Add(s, mul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Float) *big.Float {
		s := mul(x1, y2)
		return s.Sub(s, mul(y1, x2))
	}

	adx, ady := sub(a.X, d.X), sub(a.Y, d.Y)
	bdx, bdy := sub(b.X, d.X), sub(b.Y, d.Y)
	cdx, cdy := sub(c.X, d.X), sub(c.Y, d.Y)

	det := mul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, mul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, mul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
