// Package mapping fits the distortion-correcting map from surface
// parameters (u,v) to the working plane (s,t) = (u, t(u,v)).
//
// The scalar t(u,v) is a bicubic B-spline whose gradient reproduces, at a
// grid of sample points, the length ratio and skew of the surface tangents
// Su and Sv. A Delaunay triangulation in (s,t) then approximates one built
// from 3D distances.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned when neither the spline fit nor the fallback
// patch can be built, e.g. because the tangents are parallel everywhere.
var ErrDegenerate = errors.New("mapping: degenerate surface")

// Surface supplies the tangent vectors used as fit targets. Plane must be
// safe for concurrent use.
type Surface interface {
	Plane(u, v float64) (s, su, sv r3.Vec)
}

// Config controls sampling and fitting.
type Config struct {
	// NU and NV give the size of the uniform sample grid used when no
	// pattern is supplied.
	NU, NV int

	// UPattern and VPattern override the uniform sample positions.
	UPattern, VPattern []float64

	// Control is the number of spline control points per direction.
	Control int

	// Tol is the convergence tolerance of the Newton inversion in v.
	Tol float64

	// Workers bounds the number of goroutines sampling the surface.
	Workers int

	// MirrorU and MirrorV symmetrize the samples about u = 0.5 and v = 0.5.
	MirrorU, MirrorV bool
}

// DefaultConfig returns the sampling and fit settings used by the mesher.
func DefaultConfig() Config {
	return Config{NU: 16, NV: 16, Control: 8, Tol: 1e-10, Workers: 4}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NU < 2 {
		c.NU = d.NU
	}
	if c.NV < 2 {
		c.NV = d.NV
	}
	if c.Control < degree+1 {
		c.Control = d.Control
	}
	if c.Tol <= 0 {
		c.Tol = d.Tol
	}
	if c.Workers < 1 {
		c.Workers = d.Workers
	}
	return c
}

const (
	// minSin is the smallest sine of the tangent angle with a defined skew.
	minSin = 1e-6

	// tiny is the smallest tangent length with a defined ratio.
	tiny = 1e-14

	tableU = 33
	tableV = 65

	maxNewton = 32
)

// Map is an immutable fitted parameter map. It is safe for concurrent use.
type Map struct {
	basis    bspline
	ctrl     []float64
	fallback bool
	residual float64
	tol      float64

	table  [tableU][tableV]float64
	lo, hi float64
}

type sample struct {
	u, v   float64
	tu, tv float64
	rho    float64
	skewOK bool
	rhoOK  bool
}

// Build samples s and fits the map. If the full fit fails, a single cubic
// patch is fitted against the tangent length ratio alone; if that fails
// too, the error wraps ErrDegenerate.
func Build(ctx context.Context, s Surface, cfg Config) (*Map, error) {
	cfg = cfg.withDefaults()
	us := pattern(cfg.UPattern, cfg.NU, cfg.MirrorU)
	vs := pattern(cfg.VPattern, cfg.NV, cfg.MirrorV)

	grid, err := measureGrid(ctx, s, us, vs, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if cfg.MirrorU {
		mirror(grid, true)
	}
	if cfg.MirrorV {
		mirror(grid, false)
	}

	samples := slices.Concat(grid...)
	m, err := fit(samples, cfg.Control, false)
	if err != nil {
		slogger().Warn("mapping: spline fit failed, fitting fallback patch", "err", err)
		m, err = fit(samples, degree+1, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
	}
	m.tol = cfg.Tol
	m.buildTable()
	slogger().Info("mapping: fitted",
		"control", m.basis.n, "samples", len(samples), "fallback", m.fallback,
		"residual", m.residual, "tmin", m.lo, "tmax", m.hi)
	return m, nil
}

// pattern returns sorted, deduplicated sample positions in [0,1]. When
// mirror is set the set is closed under x -> 1-x.
func pattern(p []float64, n int, mirror bool) []float64 {
	var xs []float64
	if len(p) >= 2 {
		for _, x := range p {
			xs = append(xs, min(max(x, 0), 1))
		}
	} else {
		for i := range n {
			xs = append(xs, float64(i)/float64(n-1))
		}
	}
	if mirror {
		for _, x := range slices.Clone(xs) {
			xs = append(xs, 1-x)
		}
	}
	slices.Sort(xs)
	return slices.CompactFunc(xs, func(a, b float64) bool { return math.Abs(a-b) < 1e-12 })
}

func measureGrid(ctx context.Context, s Surface, us, vs []float64, workers int) ([][]sample, error) {
	grid := make([][]sample, len(us))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range us {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := make([]sample, len(vs))
			for j, v := range vs {
				row[j] = measure(s, u, v)
			}
			grid[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

// measure computes the target gradient of t at (u,v). With s = u, the
// images (1, t_u) and (0, t_v) of the parameter directions reproduce the
// angle and length ratio of Su and Sv when t_u = cot(theta) and
// t_v = rho / sin(theta).
func measure(s Surface, u, v float64) sample {
	sm := sample{u: u, v: v}
	_, su, sv := s.Plane(u, v)
	lu, lv := r3.Norm(su), r3.Norm(sv)
	if !(lu > tiny) || !(lv > tiny) || math.IsInf(lu, 0) || math.IsInf(lv, 0) {
		return sm
	}
	cos := r3.Dot(su, sv) / (lu * lv)
	sin := r3.Norm(r3.Cross(su, sv)) / (lu * lv)
	if !(sin > tiny) {
		// Parallel tangents: the patch has no width to scale.
		return sm
	}
	sm.rho, sm.rhoOK = lv/lu, true
	if !(sin >= minSin) {
		return sm
	}
	sm.tu = cos / sin
	sm.tv = sm.rho / sin
	sm.skewOK = true
	return sm
}

// mirror averages targets of samples mirrored about the center, in u when
// inU is set and in v otherwise. Under either symmetry t_u is odd and t_v
// is even.
func mirror(grid [][]sample, inU bool) {
	nu, nv := len(grid), len(grid[0])
	for i := range nu {
		for j := range nv {
			mi, mj := i, nv-1-j
			if inU {
				mi, mj = nu-1-i, j
			}
			self, other := i*nv+j, mi*nv+mj
			if other < self {
				continue
			}
			a, b := &grid[i][j], &grid[mi][mj]
			if other == self {
				a.tu = 0
				continue
			}
			if !a.skewOK || !b.skewOK {
				continue
			}
			tu := 0.5 * (a.tu - b.tu)
			tv := 0.5 * (a.tv + b.tv)
			a.tu, b.tu = tu, -tu
			a.tv, b.tv = tv, tv
		}
	}
}

// fit solves the least-squares problem for the control grid. Each sample
// contributes two rows (t_u and t_v targets); one extra row pins
// t(0,0) = 0 to remove the constant null mode.
func fit(samples []sample, n int, fallback bool) (*Map, error) {
	var use []sample
	for _, sm := range samples {
		switch {
		case !fallback && !sm.skewOK:
			return nil, fmt.Errorf("tangents parallel or undefined at (%g,%g)", sm.u, sm.v)
		case fallback && sm.rhoOK:
			use = append(use, sm)
		case !fallback:
			use = append(use, sm)
		}
	}
	if fallback && 2*len(use) < len(samples) {
		return nil, fmt.Errorf("only %d of %d samples usable for fallback", len(use), len(samples))
	}
	if len(use) == 0 {
		return nil, errors.New("no samples")
	}

	b := newBSpline(n)
	rows := 2*len(use) + 1
	a := mat.NewDense(rows, n*n, nil)
	rhs := mat.NewVecDense(rows, nil)
	for k, sm := range use {
		tu, tv := sm.tu, sm.tv
		if fallback {
			tu, tv = 0, sm.rho
		}
		ju, bu, du := b.eval(sm.u)
		jv, bv, dv := b.eval(sm.v)
		for r := 0; r <= degree; r++ {
			for q := 0; q <= degree; q++ {
				col := (ju-degree+r)*n + jv - degree + q
				a.Set(2*k, col, du[r]*bv[q])
				a.Set(2*k+1, col, bu[r]*dv[q])
			}
		}
		rhs.SetVec(2*k, tu)
		rhs.SetVec(2*k+1, tv)
	}
	a.Set(rows-1, 0, 1)

	var x mat.VecDense
	if err := x.SolveVec(a, rhs); err != nil {
		return nil, fmt.Errorf("least squares: %w", err)
	}

	m := &Map{basis: b, ctrl: slices.Clone(x.RawVector().Data), fallback: fallback}
	var res mat.VecDense
	res.MulVec(a, &x)
	res.SubVec(&res, rhs)
	m.residual = mat.Norm(&res, 2) / math.Sqrt(float64(rows))

	for _, sm := range use {
		if _, _, tv := m.eval(sm.u, sm.v); !(tv > 0) {
			return nil, fmt.Errorf("fitted map not monotone in v at (%g,%g)", sm.u, sm.v)
		}
	}
	return m, nil
}

// eval returns t and its gradient for (u,v) inside the unit square.
func (m *Map) eval(u, v float64) (t, tu, tv float64) {
	n := m.basis.n
	ju, bu, du := m.basis.eval(u)
	jv, bv, dv := m.basis.eval(v)
	for r := 0; r <= degree; r++ {
		row := (ju - degree + r) * n
		for q := 0; q <= degree; q++ {
			c := m.ctrl[row+jv-degree+q]
			t += c * bu[r] * bv[q]
			tu += c * du[r] * bv[q]
			tv += c * bu[r] * dv[q]
		}
	}
	return t, tu, tv
}

// Eval returns t(u,v). Outside the unit square the map is extended linearly
// from the nearest point on its boundary.
func (m *Map) Eval(u, v float64) float64 {
	uc, vc := min(max(u, 0), 1), min(max(v, 0), 1)
	t, tu, tv := m.eval(uc, vc)
	return t + tu*(u-uc) + tv*(v-vc)
}

// Gradient returns (dt/du, dt/dv) at (u,v), clamped to the unit square.
func (m *Map) Gradient(u, v float64) (float64, float64) {
	_, tu, tv := m.eval(min(max(u, 0), 1), min(max(v, 0), 1))
	return tu, tv
}

// ST maps a parameter point to the working plane.
func (m *Map) ST(uv r2.Vec) r2.Vec {
	return r2.Vec{X: uv.X, Y: m.Eval(uv.X, uv.Y)}
}

// Invert maps a working plane point back to (u,v). It runs Newton's method
// on t starting from the lookup table estimate and returns that estimate
// if the iteration diverges.
func (m *Map) Invert(st r2.Vec) r2.Vec {
	u := st.X
	v0 := m.guess(u, st.Y)
	v := v0
	for range maxNewton {
		_, tv := m.Gradient(u, v)
		if !(tv > 0) {
			break
		}
		dv := (m.Eval(u, v) - st.Y) / tv
		v -= dv
		if math.IsNaN(v) || math.Abs(v) > 1e6 {
			break
		}
		if math.Abs(dv) <= m.tol {
			return r2.Vec{X: u, Y: v}
		}
	}
	slogger().Debug("mapping: newton inversion diverged, using table estimate", "s", st.X, "t", st.Y)
	return r2.Vec{X: u, Y: v0}
}

// UVStep converts a step in the working plane at uv into a parameter step
// to first order.
func (m *Map) UVStep(uv, dst r2.Vec) r2.Vec {
	tu, tv := m.Gradient(uv.X, uv.Y)
	return r2.Vec{X: dst.X, Y: (dst.Y - tu*dst.X) / tv}
}

// TRange returns the range of t over the unit square.
func (m *Map) TRange() (lo, hi float64) { return m.lo, m.hi }

// Fallback reports whether the map is the single-patch fallback.
func (m *Map) Fallback() bool { return m.fallback }

// Residual returns the RMS residual of the least-squares fit.
func (m *Map) Residual() float64 { return m.residual }

func (m *Map) buildTable() {
	m.lo, m.hi = math.Inf(1), math.Inf(-1)
	for i := range tableU {
		u := float64(i) / (tableU - 1)
		for j := range tableV {
			t, _, _ := m.eval(u, float64(j)/(tableV-1))
			m.table[i][j] = t
			m.lo = min(m.lo, t)
			m.hi = max(m.hi, t)
		}
	}
}

// guess estimates v with t(u,v) = t from the lookup table, interpolating
// between table columns in u and rows in v, and extrapolating linearly
// beyond the table.
func (m *Map) guess(u, t float64) float64 {
	x := min(max(u, 0), 1) * (tableU - 1)
	i := min(int(x), tableU-2)
	w := x - float64(i)
	col := func(j int) float64 {
		return (1-w)*m.table[i][j] + w*m.table[i+1][j]
	}
	const dv = 1.0 / (tableV - 1)

	k := sort.Search(tableV, func(j int) bool { return col(j) > t })
	var j0 int
	switch {
	case k == 0:
		j0 = 0
	case k == tableV:
		j0 = tableV - 2
	default:
		j0 = k - 1
	}
	t0, t1 := col(j0), col(j0+1)
	if t1 == t0 {
		return float64(j0) * dv
	}
	return (float64(j0) + (t-t0)/(t1-t0)) * dv
}
