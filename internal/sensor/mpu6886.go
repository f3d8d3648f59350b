package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// MPU6886Addr is the I²C address of the MPU6886 IMU.
const MPU6886Addr uint16 = 0x68

const (
	mpuRegAccelConfig byte = 0x1C
	mpuRegAccelXOutH  byte = 0x3B
	mpuRegPwrMgmt1    byte = 0x6B
	mpuRegWhoAmI      byte = 0x75

	mpuWhoAmI byte = 0x19

	// ±8g full scale
	mpuAccelFS8G    byte = 0x10
	mpuCountsPerG8G      = 4096.0
)

// MPU6886 reads the accelerometer of the MPU6886.
type MPU6886 struct {
	d *i2c.Dev
}

// NewMPU6886 verifies WHO_AM_I, wakes the device and selects the ±8g range.
func NewMPU6886(bus i2c.Bus) (*MPU6886, error) {
	m := &MPU6886{d: &i2c.Dev{Bus: bus, Addr: MPU6886Addr}}

	r := make([]byte, 1)
	if err := m.d.Tx([]byte{mpuRegWhoAmI}, r); err != nil {
		return nil, fmt.Errorf("mpu6886: read WHO_AM_I: %w", err)
	}
	if r[0] != mpuWhoAmI {
		return nil, fmt.Errorf("mpu6886: unexpected WHO_AM_I 0x%02x", r[0])
	}
	if err := m.d.Tx([]byte{mpuRegPwrMgmt1, 0x00}, nil); err != nil {
		return nil, fmt.Errorf("mpu6886: wake: %w", err)
	}
	if err := m.d.Tx([]byte{mpuRegAccelConfig, mpuAccelFS8G}, nil); err != nil {
		return nil, fmt.Errorf("mpu6886: set range: %w", err)
	}
	return m, nil
}

// Acceleration returns the current acceleration in g.
func (m *MPU6886) Acceleration() (Acceleration, error) {
	r := make([]byte, 6)
	if err := m.d.Tx([]byte{mpuRegAccelXOutH}, r); err != nil {
		return Acceleration{}, fmt.Errorf("mpu6886: read accel: %w", err)
	}
	return Acceleration{
		X: float64(int16(uint16(r[0])<<8|uint16(r[1]))) / mpuCountsPerG8G,
		Y: float64(int16(uint16(r[2])<<8|uint16(r[3]))) / mpuCountsPerG8G,
		Z: float64(int16(uint16(r[4])<<8|uint16(r[5]))) / mpuCountsPerG8G,
	}, nil
}

// String returns the device name.
func (m *MPU6886) String() string {
	return "mpu6886"
}
