// Package plot rasterizes an extracted uvmesh.Mesh in the parameter plane
// or the working plane, for visual inspection of triangulations.
package plot

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/gogpu/uvmesh"
	"github.com/gogpu/uvmesh/internal/cache"
)

// Options controls the rendering.
type Options struct {
	Width, Height int

	// Margin is the empty border in pixels.
	Margin int

	// Transform maps vertex parameters to plot coordinates, for instance
	// Mesher.ST for the working plane. Nil plots (u,v).
	Transform func(uv r2.Vec) r2.Vec

	Background color.Color
	Fill       color.Color
	Edge       color.Color
	Constraint color.Color

	// LineWidth is the edge width in pixels.
	LineWidth float64

	// Caption is drawn in the top left corner when not empty.
	Caption  string
	FontSize float64
}

// DefaultOptions returns a 800×600 plot with white background, light blue
// faces, dark edges and red constraints.
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		Margin:     24,
		Background: color.White,
		Fill:       color.RGBA{R: 0xd8, G: 0xe8, B: 0xf8, A: 0xff},
		Edge:       color.RGBA{R: 0x30, G: 0x30, B: 0x40, A: 0xff},
		Constraint: color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff},
		LineWidth:  1,
		FontSize:   14,
	}
}

// viewport maps plot coordinates to pixels with y pointing up.
type viewport struct {
	scale  float64
	ox, oy float64
	height float64
}

func newViewport(pts []r2.Vec, o Options) viewport {
	lo := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range pts {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	if len(pts) == 0 {
		lo, hi = r2.Vec{}, r2.Vec{X: 1, Y: 1}
	}
	w := float64(o.Width - 2*o.Margin)
	h := float64(o.Height - 2*o.Margin)
	dx, dy := max(hi.X-lo.X, 1e-12), max(hi.Y-lo.Y, 1e-12)
	s := min(w/dx, h/dy)
	return viewport{
		scale:  s,
		ox:     float64(o.Margin) + 0.5*(w-s*dx) - s*lo.X,
		oy:     float64(o.Margin) + 0.5*(h-s*dy) - s*lo.Y,
		height: float64(o.Height),
	}
}

func (v viewport) pixel(p r2.Vec) (float32, float32) {
	return float32(v.ox + v.scale*p.X), float32(v.height - (v.oy + v.scale*p.Y))
}

// Render draws the triangles of m with their edges, constrained edges on
// top.
func Render(m *uvmesh.Mesh, o Options) *image.RGBA {
	d := DefaultOptions()
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = d.Width, d.Height
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	o.Background = orDefault(o.Background, d.Background)
	o.Fill = orDefault(o.Fill, d.Fill)
	o.Edge = orDefault(o.Edge, d.Edge)
	o.Constraint = orDefault(o.Constraint, d.Constraint)

	pts := make([]r2.Vec, len(m.UV))
	used := make([]r2.Vec, 0, len(m.UV))
	seen := make([]bool, len(m.UV))
	for i, uv := range m.UV {
		pts[i] = uv
		if o.Transform != nil {
			pts[i] = o.Transform(uv)
		}
	}
	for _, t := range m.Triangles {
		for _, v := range t {
			if !seen[v] {
				seen[v] = true
				used = append(used, pts[v])
			}
		}
	}
	vp := newViewport(used, o)

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(o.Background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(o.Width, o.Height)
	for _, t := range m.Triangles {
		x0, y0 := vp.pixel(pts[t[0]])
		x1, y1 := vp.pixel(pts[t[1]])
		x2, y2 := vp.pixel(pts[t[2]])
		r.MoveTo(x0, y0)
		r.LineTo(x1, y1)
		r.LineTo(x2, y2)
		r.ClosePath()
	}
	r.Draw(img, img.Bounds(), image.NewUniform(o.Fill), image.Point{})

	strokeEdges(img, vp, pts, m.Edges(), o.LineWidth, o.Edge)
	strokeEdges(img, vp, pts, m.Constrained, 2*o.LineWidth, o.Constraint)

	if o.Caption != "" {
		drawCaption(img, o.Caption, o.FontSize, o.Edge)
	}
	return img
}

func orDefault(c, d color.Color) color.Color {
	if c == nil {
		return d
	}
	return c
}

// strokeEdges draws every edge as a quad of width lw.
func strokeEdges(img *image.RGBA, vp viewport, pts []r2.Vec, edges [][2]uint32, lw float64, c color.Color) {
	if len(edges) == 0 {
		return
	}
	b := img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	hw := float32(lw / 2)
	for _, e := range edges {
		x0, y0 := vp.pixel(pts[e[0]])
		x1, y1 := vp.pixel(pts[e[1]])
		dx, dy := x1-x0, y1-y0
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
	}
	r.Draw(img, b, image.NewUniform(c), image.Point{})
}

var regular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faces holds caption faces by size. Faces are not safe for concurrent
// use, so drawing holds captionMu.
var (
	captionMu sync.Mutex
	faces     = cache.New[float64, font.Face](8, func(_ float64, f font.Face) {
		_ = f.Close()
	})
)

// loadFace creates caption faces; tests replace it.
var loadFace = newFace

func newFace(size float64) (font.Face, error) {
	f, err := regular()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawCaption draws text with the Go regular font. A font that fails to
// load is logged and leaves the image without caption.
func drawCaption(img *image.RGBA, text string, size float64, c color.Color) {
	captionMu.Lock()
	defer captionMu.Unlock()

	face, err := faces.GetOrCreate(size, loadFace)
	if err != nil {
		slogger().Warn("plot: caption font unavailable", "size", size, "err", err)
		return
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
	}
	ascent := face.Metrics().Ascent
	drawer.Dot = fixed.Point26_6{X: fixed.I(4), Y: ascent + fixed.I(4)}
	drawer.DrawString(text)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
