package sensor

import "errors"

// FakeReader is a test double that returns scripted snapshots.
type FakeReader struct {
	// Samples contains scripted snapshots to return.
	// Each call to Read() consumes the next sample.
	Samples []Snapshot

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Reads counts calls to Read.
	Reads int

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...Snapshot) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted snapshot.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Snapshot, error) {
	f.Reads++
	if f.ReadError != nil {
		return Snapshot{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return Snapshot{}, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// FakeMotion is a test double that returns scripted acceleration samples.
type FakeMotion struct {
	Samples   []Acceleration
	ReadError error
	Reads     int
	index     int
}

// NewFakeMotion creates a FakeMotion with the given samples.
func NewFakeMotion(samples ...Acceleration) *FakeMotion {
	return &FakeMotion{Samples: samples}
}

// Acceleration returns the next scripted sample, repeating the last one.
func (f *FakeMotion) Acceleration() (Acceleration, error) {
	f.Reads++
	if f.ReadError != nil {
		return Acceleration{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return Acceleration{}, errors.New("no samples configured")
	}
	a := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return a, nil
}

// Set replaces the script with a single repeating sample.
func (f *FakeMotion) Set(a Acceleration) {
	f.Samples = []Acceleration{a}
	f.index = 0
}
