// Package sensor provides environmental and motion readings with hardware abstraction.
// The real implementation talks to the sensors over I²C using periph.
// The fake implementation allows testing without hardware.
package sensor

import (
	"fmt"
	"math"
)

// Snapshot holds the most recent environmental readings.
type Snapshot struct {
	Proximity    uint16  // raw proximity count
	AmbientLight uint16  // lux
	WhiteLight   uint16  // raw white channel count
	Temperature  float64 // °C
	Humidity     float64 // %RH
}

// String formats the snapshot for logs and the -print-state flag.
func (s Snapshot) String() string {
	return fmt.Sprintf("prox=%d al=%dlux wl=%d temp=%.1fC rh=%.1f%%",
		s.Proximity, s.AmbientLight, s.WhiteLight, s.Temperature, s.Humidity)
}

// Acceleration is a three-axis sample in g.
type Acceleration struct {
	X, Y, Z float64
}

// Magnitude returns the Euclidean norm of the vector.
func (a Acceleration) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Reader reads environmental sensors.
type Reader interface {
	// Read returns a fresh snapshot of all environmental readings.
	Read() (Snapshot, error)
}

// MotionReader reads the accelerometer.
type MotionReader interface {
	// Acceleration returns the current acceleration vector.
	Acceleration() (Acceleration, error)
}

// InitError reports which sensor failed to initialize.
type InitError struct {
	Sensor string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Sensor, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
