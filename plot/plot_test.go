package plot

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/gogpu/uvmesh"
)

// square is two triangles over the unit square with the diagonal
// constrained.
func square() *uvmesh.Mesh {
	return &uvmesh.Mesh{
		Triangles:   [][3]uint32{{0, 1, 2}, {0, 2, 3}},
		UV:          []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Constrained: [][2]uint32{{0, 2}},
	}
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// closeTo reports whether every channel of a and b differs by at most 2.
func closeTo(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return max(x, y)-min(x, y) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestRenderFillsTriangles(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height = 200, 200
	img := Render(square(), o)

	if got := img.Bounds(); got != image.Rect(0, 0, 200, 200) {
		t.Fatalf("bounds = %v", got)
	}
	// Inside a triangle, away from every edge.
	if got, want := img.RGBAAt(130, 130), rgba(o.Fill); !closeTo(got, want) {
		t.Errorf("interior pixel = %v, want fill %v", got, want)
	}
	// Inside the margin.
	if got, want := img.RGBAAt(5, 5), rgba(o.Background); got != want {
		t.Errorf("margin pixel = %v, want background %v", got, want)
	}
	// The constrained diagonal runs through the image center.
	if got := img.RGBAAt(99, 100); got.R < 0x80 || got.G > 0x60 {
		t.Errorf("center pixel = %v, want constraint color", got)
	}
}

func TestRenderTransform(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height = 200, 200
	// Mirrored in u, the diagonal still crosses the center but the
	// picture must stay inside the viewport.
	o.Transform = func(uv r2.Vec) r2.Vec { return r2.Vec{X: 3 - uv.X, Y: uv.Y} }
	img := Render(square(), o)
	if got, want := img.RGBAAt(70, 130), rgba(o.Fill); !closeTo(got, want) {
		t.Errorf("interior pixel = %v, want fill %v", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	img := Render(&uvmesh.Mesh{}, Options{})
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("bounds = %v, want default size", b)
	}
	if got := img.RGBAAt(400, 300); got != rgba(color.White) {
		t.Errorf("empty plot pixel = %v, want white", got)
	}
}

func TestRenderCaption(t *testing.T) {
	o := DefaultOptions()
	o.Width, o.Height = 200, 100
	o.Margin = 40
	plain := Render(&uvmesh.Mesh{}, o)
	o.Caption = "uvmesh"
	captioned := Render(&uvmesh.Mesh{}, o)

	if bytes.Equal(plain.Pix, captioned.Pix) {
		t.Error("caption did not change the image")
	}
	// The caption stays in the top left corner.
	for y := 50; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if plain.RGBAAt(x, y) != captioned.RGBAAt(x, y) {
				t.Fatalf("caption touched pixel (%d, %d)", x, y)
			}
		}
	}
}

func TestRenderCaptionFontError(t *testing.T) {
	var logs bytes.Buffer
	uvmesh.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	loadFace = func(float64) (font.Face, error) { return nil, errors.New("no font") }
	t.Cleanup(func() {
		uvmesh.SetLogger(nil)
		loadFace = newFace
	})

	o := DefaultOptions()
	o.Width, o.Height = 100, 50
	plain := Render(&uvmesh.Mesh{}, o)
	o.Caption = "uvmesh"
	// A size no other test uses, so the face is not cached.
	o.FontSize = 13.25
	captioned := Render(&uvmesh.Mesh{}, o)

	if !bytes.Equal(plain.Pix, captioned.Pix) {
		t.Error("caption drawn without a font")
	}
	if !strings.Contains(logs.String(), "caption font unavailable") || !strings.Contains(logs.String(), "no font") {
		t.Errorf("font error not logged:\n%s", logs.String())
	}
}

func TestWritePNG(t *testing.T) {
	img := Render(square(), Options{Width: 64, Height: 48})
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	dec, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", dec.Bounds(), img.Bounds())
	}
}
