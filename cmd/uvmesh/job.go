package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/uvmesh"
	"github.com/gogpu/uvmesh/surface"
)

// Job describes one meshing run.
type Job struct {
	Surface  SurfaceSpec `yaml:"surface"`
	Geometry string      `yaml:"geometry"`
	Workers  int         `yaml:"workers"`
	Seed     uint64      `yaml:"seed"`

	// Enclosing selects the enclosing seed with the given margin and
	// inserts the discretized boundary. Zero seeds the plain unit square.
	Enclosing float64 `yaml:"enclosing"`

	Constraints []ConstraintSpec `yaml:"constraints"`
	Holes       []Point          `yaml:"holes"`

	Length    *uvmesh.LengthCriterion    `yaml:"length"`
	Deviation *uvmesh.DeviationCriterion `yaml:"deviation"`
	Sources   *uvmesh.SourceCriterion    `yaml:"sources"`

	Smooth SmoothSpec `yaml:"smooth"`
	Plot   PlotSpec   `yaml:"plot"`
}

// SurfaceSpec names a registered surface type.
type SurfaceSpec struct {
	Type   string         `yaml:"type"`
	Params surface.Params `yaml:"params"`
}

// Point is a (u,v) pair written as a two element sequence.
type Point [2]float64

func (p Point) vec() r2.Vec { return r2.Vec{X: p[0], Y: p[1]} }

// ConstraintSpec is a polyline or a circle in the parameter plane.
type ConstraintSpec struct {
	Points []Point     `yaml:"points"`
	Closed bool        `yaml:"closed"`
	Circle *CircleSpec `yaml:"circle"`
	Flags  []string    `yaml:"flags"`
}

// CircleSpec is a closed circle discretized with the job criterion.
type CircleSpec struct {
	Center Point   `yaml:"center"`
	Radius float64 `yaml:"radius"`
}

// SmoothSpec configures the final smoothing.
type SmoothSpec struct {
	Iterations int     `yaml:"iterations"`
	Omega      float64 `yaml:"omega"`
}

// PlotSpec configures the PNG output.
type PlotSpec struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Space   string `yaml:"space"`
	Caption string `yaml:"caption"`
}

var (
	errNoSurface   = errors.New("job: no surface type")
	errNoCriterion = errors.New("job: no refinement criterion")
)

// LoadJob reads a YAML job file.
func LoadJob(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJob(f)
}

// ReadJob decodes and validates a job. Unknown keys are rejected.
func ReadJob(r io.Reader) (*Job, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var j Job
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

func (j *Job) validate() error {
	if j.Surface.Type == "" {
		return errNoSurface
	}
	if _, err := j.geometry(); err != nil {
		return err
	}
	if j.criterion() == nil {
		return errNoCriterion
	}
	for i, c := range j.Constraints {
		if (len(c.Points) < 2) == (c.Circle == nil) {
			return fmt.Errorf("job: constraint %d: need either two or more points or a circle", i)
		}
		if _, err := parseFlags(c.Flags); err != nil {
			return fmt.Errorf("job: constraint %d: %w", i, err)
		}
	}
	switch j.Plot.Space {
	case "", "uv", "st":
	default:
		return fmt.Errorf("job: unknown plot space %q", j.Plot.Space)
	}
	return nil
}

func (j *Job) geometry() (uvmesh.GeometryKind, error) {
	switch j.Geometry {
	case "", "plane":
		return uvmesh.PlaneGeometry, nil
	case "spatial":
		return uvmesh.SpatialGeometry, nil
	}
	return 0, fmt.Errorf("job: unknown geometry %q", j.Geometry)
}

// criterion combines every configured criterion.
func (j *Job) criterion() uvmesh.Criterion {
	var items []uvmesh.Criterion
	if j.Length != nil {
		items = append(items, j.Length)
	}
	if j.Deviation != nil {
		items = append(items, j.Deviation)
	}
	if j.Sources != nil {
		items = append(items, j.Sources)
	}
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	return uvmesh.Combine(items...)
}

var flagNames = map[string]uvmesh.EdgeFlag{
	"feature":              uvmesh.Feature,
	"never_split":          uvmesh.NeverSplit,
	"surface_intersection": uvmesh.SurfaceIntersection,
}

func parseFlags(names []string) (uvmesh.EdgeFlag, error) {
	fl := uvmesh.Constrained
	for _, n := range names {
		f, ok := flagNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("unknown edge flag %q", n)
		}
		fl |= f
	}
	return fl, nil
}

// Result is the outcome of a run.
type Result struct {
	Mesh    *uvmesh.Mesh
	Stats   uvmesh.Stats
	Punched int
	Mesher  *uvmesh.Mesher
}

// Run executes the job. The caller closes Result.Mesher.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	s, err := surface.New(j.Surface.Type, j.Surface.Params)
	if err != nil {
		return nil, err
	}
	geo, _ := j.geometry()
	opts := []uvmesh.Option{uvmesh.WithGeometry(geo), uvmesh.WithWorkers(j.Workers)}
	if j.Seed != 0 {
		opts = append(opts, uvmesh.WithSeed(j.Seed))
	}
	m, err := uvmesh.New(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	res, err := j.mesh(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return res, nil
}

func (j *Job) mesh(m *uvmesh.Mesher) (*Result, error) {
	crit := j.criterion()
	if j.Enclosing > 0 {
		if err := m.InitEnclosing(j.Enclosing); err != nil {
			return nil, err
		}
		if err := m.InsertBoundary(crit); err != nil {
			return nil, err
		}
	} else if err := m.InitSquare(); err != nil {
		return nil, err
	}

	for i, c := range j.Constraints {
		fl, _ := parseFlags(c.Flags)
		var err error
		if c.Circle != nil {
			err = m.InsertCurve(surface.NewCircle(c.Circle.Center.vec(), c.Circle.Radius), crit, fl)
		} else {
			pts := make([]r2.Vec, 0, len(c.Points)+1)
			for _, p := range c.Points {
				pts = append(pts, p.vec())
			}
			if c.Closed {
				pts = append(pts, pts[0])
			}
			err = m.InsertConstraint(pts, fl)
		}
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
	}

	var punched int
	for _, h := range j.Holes {
		n, err := m.PunchHole(h.vec())
		if err != nil {
			return nil, fmt.Errorf("hole %v: %w", h, err)
		}
		punched += n
	}

	if err := m.Refine(crit); err != nil {
		return nil, err
	}
	if j.Smooth.Iterations > 0 {
		omega := j.Smooth.Omega
		if omega <= 0 {
			omega = 0.5
		}
		if err := m.Smooth(j.Smooth.Iterations, omega); err != nil {
			return nil, err
		}
	}

	mesh, err := m.Extract()
	if err != nil {
		return nil, err
	}
	res := &Result{Mesh: mesh, Punched: punched, Mesher: m}
	if st, err := mesh.Stats(); err == nil {
		res.Stats = st
	} else if !errors.Is(err, uvmesh.ErrNoFaces) {
		return nil, err
	}
	return res, nil
}
