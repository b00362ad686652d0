// Command uvmesh meshes a parametric surface described by a YAML job file
// and writes the parameter plane triangulation as PNG.
//
// Usage:
//
//	uvmesh -job wing.yaml -output wing.png
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/uvmesh"
	"github.com/gogpu/uvmesh/plot"
)

func main() {
	var (
		jobFile = flag.String("job", "", "YAML job file")
		output  = flag.String("output", "mesh.png", "output PNG file, empty to skip")
		verbose = flag.Bool("v", false, "debug logging")
		lang    = flag.String("lang", "en", "language tag for the summary")
	)
	flag.Parse()
	if *jobFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	uvmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	job, err := LoadJob(*jobFile)
	if err != nil {
		log.Fatalf("Failed to load job: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := job.Run(ctx)
	if err != nil {
		log.Fatalf("Meshing failed: %v", err)
	}
	defer res.Mesher.Close()

	if *output != "" {
		if err := writePlot(*output, job, res); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
	}
	printSummary(os.Stdout, language.Make(*lang), job, res)
}

func writePlot(path string, job *Job, res *Result) error {
	o := plot.DefaultOptions()
	if job.Plot.Width > 0 && job.Plot.Height > 0 {
		o.Width, o.Height = job.Plot.Width, job.Plot.Height
	}
	if job.Plot.Space == "st" {
		o.Transform = res.Mesher.ST
	}
	o.Caption = job.Plot.Caption
	if o.Caption == "" {
		o.Caption = fmt.Sprintf("%s: %d triangles", job.Surface.Type, len(res.Mesh.Triangles))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plot.WritePNG(f, plot.Render(res.Mesh, o)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes the mesh statistics with numbers formatted for tag.
func printSummary(w io.Writer, tag language.Tag, job *Job, res *Result) {
	p := message.NewPrinter(tag)
	s := res.Stats
	p.Fprintf(w, "surface:     %s (%s)\n", job.Surface.Type, res.Mesher.Geometry())
	p.Fprintf(w, "triangles:   %d\n", s.Triangles)
	p.Fprintf(w, "vertices:    %d\n", s.Vertices)
	p.Fprintf(w, "constrained: %d edges, %d injected\n", len(res.Mesh.Constrained), len(res.Mesh.Injected))
	if res.Punched > 0 {
		p.Fprintf(w, "punched:     %d faces\n", res.Punched)
	}
	if s.Triangles > 0 {
		p.Fprintf(w, "edges:       %.4f .. %.4f\n", s.MinEdge, s.MaxEdge)
		p.Fprintf(w, "angles:      %.1f° .. %.1f°\n", s.MinAngle, s.MaxAngle)
		p.Fprintf(w, "area:        %.4f\n", s.Area)
	}
	if res.Mesher.MappingFallback() {
		p.Fprintf(w, "mapping:     single-patch fallback\n")
	}
}
