//go:build !linux

package haptic

import (
	"errors"
	"time"
)

// RealVibrator is not available on non-Linux platforms.
type RealVibrator struct{}

// NewRealVibrator returns an error on non-Linux platforms.
func NewRealVibrator(chip string, line int) (*RealVibrator, error) {
	return nil, errors.New("haptic: not supported on this platform (requires Linux)")
}

// Vibrate is not implemented on non-Linux platforms.
func (r *RealVibrator) Vibrate(d time.Duration) error {
	return errors.New("haptic: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealVibrator) Close() error {
	return nil
}
