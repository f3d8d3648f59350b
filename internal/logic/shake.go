package logic

import (
	"time"

	"github.com/sweeney/plant-station/internal/sensor"
)

// Shake defaults.
const (
	DefaultShakeThreshold = 2.5 // g
	DefaultShakeCooldown  = 2 * time.Second
)

// ShakeDetector fires once per cooldown window while the acceleration
// magnitude stays above the threshold.
type ShakeDetector struct {
	threshold float64
	cooldown  time.Duration
	lastShake time.Time
	shaken    bool
}

// NewShakeDetector creates a detector. Non-positive arguments select the
// defaults.
func NewShakeDetector(threshold float64, cooldown time.Duration) *ShakeDetector {
	if threshold <= 0 {
		threshold = DefaultShakeThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultShakeCooldown
	}
	return &ShakeDetector{threshold: threshold, cooldown: cooldown}
}

// Check evaluates one sample and reports whether a shake fires. A shake is
// suppressed while a popup is showing. Firing records now as the last shake.
func (d *ShakeDetector) Check(a sensor.Acceleration, now time.Time, popupActive bool) bool {
	if a.Magnitude() <= d.threshold {
		return false
	}
	if d.shaken && now.Sub(d.lastShake) <= d.cooldown {
		return false
	}
	if popupActive {
		return false
	}
	d.lastShake = now
	d.shaken = true
	return true
}

// LastShake returns the time of the last fired shake and whether one has
// fired.
func (d *ShakeDetector) LastShake() (time.Time, bool) {
	return d.lastShake, d.shaken
}
