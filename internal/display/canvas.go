package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	periphdisplay "periph.io/x/conn/v3/display"
)

// DefaultFontSize is the text height in points at 72 DPI.
const DefaultFontSize = 16

// Canvas is a Surface backed by an in-memory RGBA image. Flush copies the
// region touched since the previous flush to the destination drawer.
// Not safe for concurrent use; the UI owns it.
type Canvas struct {
	img   *image.RGBA
	dc    *gg.Context
	face  font.Face
	dst   periphdisplay.Drawer
	dirty image.Rectangle
}

// NewCanvas creates a canvas matching dst's bounds using the Go Regular face
// at size points.
func NewCanvas(dst periphdisplay.Drawer, size float64) (*Canvas, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("display: parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})

	b := dst.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(face)
	dc.SetLineWidth(1)

	return &Canvas{img: img, dc: dc, face: face, dst: dst}, nil
}

// Bounds implements Surface.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Clear implements Surface.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
	c.markDirty(c.img.Bounds())
}

// FillRect implements Surface.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	c.dc.Fill()
	c.markDirty(r)
}

// StrokeRect implements Surface.
func (c *Canvas) StrokeRect(r image.Rectangle, col color.Color) {
	if r.Empty() {
		return
	}
	c.dc.SetColor(col)
	// Half-pixel inset keeps the 1px line on pixel centres inside r.
	c.dc.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5, float64(r.Dx()-1), float64(r.Dy()-1))
	c.dc.Stroke()
	c.markDirty(r)
}

// Text implements Surface.
func (c *Canvas) Text(p image.Point, s string, col color.Color) {
	if s == "" {
		return
	}
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, float64(p.X), float64(p.Y), 0, 1)
	size := c.TextSize(s)
	c.markDirty(image.Rectangle{Min: p, Max: p.Add(size)}.Inset(-2))
}

// TextSize implements Surface.
func (c *Canvas) TextSize(s string) image.Point {
	w, h := c.dc.MeasureString(s)
	return image.Pt(int(w+0.5), int(h+0.5))
}

// Flush implements Surface.
func (c *Canvas) Flush() error {
	r := c.dirty.Intersect(c.img.Bounds())
	if r.Empty() {
		return nil
	}
	c.dirty = image.Rectangle{}
	if err := c.dst.Draw(r, c.img, r.Min); err != nil {
		return fmt.Errorf("display: draw: %w", err)
	}
	return nil
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) markDirty(r image.Rectangle) {
	c.dirty = c.dirty.Union(r)
}
