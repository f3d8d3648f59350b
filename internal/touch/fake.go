package touch

import "image"

// Sample is a scripted touch reading.
type Sample struct {
	Point image.Point
	Down  bool
}

// FakeReader returns scripted samples. Once exhausted it reports the panel
// as released.
type FakeReader struct {
	Samples   []Sample
	PollError error
	index     int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Poll returns the next scripted sample.
func (f *FakeReader) Poll() (image.Point, bool, error) {
	if f.PollError != nil {
		return image.Point{}, false, f.PollError
	}
	if f.index >= len(f.Samples) {
		return image.Point{}, false, nil
	}
	s := f.Samples[f.index]
	f.index++
	return s.Point, s.Down, nil
}

// Push appends samples to the script.
func (f *FakeReader) Push(samples ...Sample) {
	f.Samples = append(f.Samples, samples...)
}

// Tap scripts a press at p followed by a release.
func (f *FakeReader) Tap(p image.Point) {
	f.Push(Sample{Point: p, Down: true}, Sample{})
}
