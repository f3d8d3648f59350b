package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/sht4x"
)

// SHT4xAddr is the default I²C address of the SHT40/41/45.
const SHT4xAddr = uint16(sht4x.DefaultAddress)

// SHT4x reads temperature and relative humidity at high precision with the
// heater off.
type SHT4x struct {
	dev *sht4x.Dev
}

// NewSHT4x soft-resets the sensor and reads its serial number to confirm it
// is present.
func NewSHT4x(bus i2c.Bus) (*SHT4x, error) {
	dev, err := sht4x.New(bus, sht4x.DefaultAddress)
	if err != nil {
		return nil, err
	}
	if err := dev.Reset(); err != nil {
		return nil, err
	}
	if _, err := dev.SerialNumber(); err != nil {
		return nil, fmt.Errorf("sht4x: read serial: %w", err)
	}
	return &SHT4x{dev: dev}, nil
}

// Sense fills the temperature and humidity fields of snap.
func (s *SHT4x) Sense(snap *Snapshot) error {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return err
	}
	snap.Temperature, snap.Humidity = climate(env)
	return nil
}

// String returns the device name.
func (s *SHT4x) String() string {
	return s.dev.String()
}

// climate converts a periph reading to °C and %RH.
func climate(env physic.Env) (float64, float64) {
	c := float64(env.Temperature-physic.ZeroCelsius) / float64(physic.Kelvin)
	rh := float64(env.Humidity) / float64(physic.PercentRH)
	return c, rh
}
