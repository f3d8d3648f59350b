package clock

import "time"

// Fake is a manually advanced Clock for tests. Formatting is in UTC.
type Fake struct {
	T time.Time
}

// NewFake creates a Fake clock at t.
func NewFake(t time.Time) *Fake {
	return &Fake{T: t}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	return f.T
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}

// Format renders t as HH:MM:SS in UTC.
func (f *Fake) Format(t time.Time) string {
	return t.UTC().Format(DisplayLayout)
}
