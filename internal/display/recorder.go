package display

import (
	"image"
	"image/color"
	"strings"
)

// OpKind identifies a recorded drawing command.
type OpKind string

const (
	OpClear  OpKind = "clear"
	OpFill   OpKind = "fill"
	OpStroke OpKind = "stroke"
	OpText   OpKind = "text"
)

// Op is one recorded drawing command.
type Op struct {
	Kind  OpKind
	Rect  image.Rectangle
	Point image.Point
	Text  string
	Color color.Color
}

// Recorder is a Surface that records commands for test assertions.
// Text is measured as a fixed 8x16 cell per rune.
type Recorder struct {
	// Ops contains every command since the last Reset.
	Ops []Op

	// Flushes counts Flush calls.
	Flushes int

	// FlushError, if set, will be returned by Flush.
	FlushError error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Bounds implements Surface.
func (r *Recorder) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Clear implements Surface.
func (r *Recorder) Clear(c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Rect: r.Bounds(), Color: c})
}

// FillRect implements Surface.
func (r *Recorder) FillRect(rect image.Rectangle, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Color: c})
}

// StrokeRect implements Surface.
func (r *Recorder) StrokeRect(rect image.Rectangle, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Rect: rect, Color: c})
}

// Text implements Surface.
func (r *Recorder) Text(p image.Point, s string, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Point: p, Text: s, Color: c})
}

// TextSize implements Surface.
func (r *Recorder) TextSize(s string) image.Point {
	return image.Pt(8*len([]rune(s)), 16)
}

// Flush implements Surface.
func (r *Recorder) Flush() error {
	r.Flushes++
	return r.FlushError
}

// Texts returns every string drawn, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// HasText reports whether any drawn string contains sub.
func (r *Recorder) HasText(sub string) bool {
	for _, s := range r.Texts() {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Count returns the number of recorded ops of kind k.
func (r *Recorder) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Reset clears recorded commands.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.Flushes = 0
}
