// Package touch polls the touch controller and turns raw contact state into
// press-edge events.
package touch

import "image"

// Reader polls the touch controller.
type Reader interface {
	// Poll returns the first contact point and whether the panel is pressed.
	Poll() (image.Point, bool, error)
}

// Event is one touch sample.
type Event struct {
	Point image.Point
	Down  bool // panel currently pressed
	Edge  bool // pressed now, not pressed on the previous sample
}

// EdgeDetector tracks contact state across samples so a sustained hold
// produces a single press-edge.
type EdgeDetector struct {
	held bool
}

// Update records a sample and returns the resulting event.
func (d *EdgeDetector) Update(p image.Point, down bool) Event {
	ev := Event{Point: p, Down: down, Edge: down && !d.held}
	d.held = down
	return ev
}
