// Package display provides the drawing surface the UI issues layout commands
// to. Canvas renders into an RGBA buffer and flushes changed regions to a
// periph display.Drawer; Recorder captures commands for tests.
package display

import (
	"image"
	"image/color"
)

// Panel dimensions in landscape orientation.
const (
	Width  = 320
	Height = 240
)

// Palette used by the UI.
var (
	Black  = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	White  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Red    = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	Green  = color.RGBA{0x00, 0xC0, 0x00, 0xFF}
	Blue   = color.RGBA{0x00, 0x40, 0xC0, 0xFF}
	Gray   = color.RGBA{0x60, 0x60, 0x60, 0xFF}
	Yellow = color.RGBA{0xFF, 0xD0, 0x00, 0xFF}
)

// Surface is a drawing target. Coordinates are pixels with the origin at the
// top-left corner.
type Surface interface {
	// Bounds returns the drawable area.
	Bounds() image.Rectangle

	// Clear fills the whole surface with c.
	Clear(c color.Color)

	// FillRect fills r with c.
	FillRect(r image.Rectangle, c color.Color)

	// StrokeRect draws a one pixel outline just inside r.
	StrokeRect(r image.Rectangle, c color.Color)

	// Text draws s with its top-left corner at p.
	Text(p image.Point, s string, c color.Color)

	// TextSize returns the width and height s would occupy.
	TextSize(s string) image.Point

	// Flush pushes pending changes to the panel.
	Flush() error
}
