// Package haptic drives the vibration motor with hardware abstraction.
// The real implementation switches a Linux GPIO character device line.
// The fake implementation allows testing without hardware.
package haptic

import "time"

// Vibrator produces haptic feedback.
type Vibrator interface {
	// Vibrate runs the motor for d and returns once it has stopped.
	Vibrate(d time.Duration) error

	// Close releases motor resources.
	Close() error
}

// Defaults for the motor line (BCM numbering) on gpiochip0.
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 13
)
