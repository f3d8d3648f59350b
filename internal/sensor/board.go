package sensor

import (
	"periph.io/x/conn/v3/i2c"
)

// Board groups the sensors that share the internal I²C bus.
type Board struct {
	light   *VCNL4040
	climate *SHT4x
	motion  *MPU6886
}

// OpenBoard initializes every sensor on bus. A failure is reported as an
// *InitError naming the sensor.
func OpenBoard(bus i2c.Bus) (*Board, error) {
	light, err := NewVCNL4040(bus)
	if err != nil {
		return nil, &InitError{Sensor: "VCNL4040", Err: err}
	}
	climate, err := NewSHT4x(bus)
	if err != nil {
		return nil, &InitError{Sensor: "SHT4x", Err: err}
	}
	motion, err := NewMPU6886(bus)
	if err != nil {
		return nil, &InitError{Sensor: "MPU6886", Err: err}
	}
	return &Board{light: light, climate: climate, motion: motion}, nil
}

// Read returns a fresh snapshot from the light and climate sensors.
func (b *Board) Read() (Snapshot, error) {
	var s Snapshot
	if err := b.light.Sense(&s); err != nil {
		return Snapshot{}, err
	}
	if err := b.climate.Sense(&s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Acceleration reads the accelerometer.
func (b *Board) Acceleration() (Acceleration, error) {
	return b.motion.Acceleration()
}
