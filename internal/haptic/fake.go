package haptic

import "time"

// FakeVibrator records vibration requests.
type FakeVibrator struct {
	// Pulses contains the duration of every Vibrate call.
	Pulses []time.Duration

	// VibrateError, if set, will be returned by Vibrate.
	VibrateError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeVibrator creates a FakeVibrator for testing.
func NewFakeVibrator() *FakeVibrator {
	return &FakeVibrator{}
}

// Vibrate records the pulse without sleeping.
func (f *FakeVibrator) Vibrate(d time.Duration) error {
	if f.VibrateError != nil {
		return f.VibrateError
	}
	f.Pulses = append(f.Pulses, d)
	return nil
}

// Close marks the vibrator as closed.
func (f *FakeVibrator) Close() error {
	f.Closed = true
	return nil
}
