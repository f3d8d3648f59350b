package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// VCNL4040Addr is the fixed I²C address of the VCNL4040.
const VCNL4040Addr uint16 = 0x60

const (
	vcnlRegALSConf   byte = 0x00
	vcnlRegPSConf12  byte = 0x03
	vcnlRegPSConf3MS byte = 0x04
	vcnlRegPSData    byte = 0x08
	vcnlRegALSData   byte = 0x09
	vcnlRegWhiteData byte = 0x0A
	vcnlRegID        byte = 0x0C

	vcnlDeviceID uint16 = 0x0186

	// Lux per count at the default 80ms ALS integration time.
	vcnlLuxPerCount = 0.1
)

// VCNL4040 reads proximity, ambient light and white light.
type VCNL4040 struct {
	d *i2c.Dev
}

// NewVCNL4040 checks the device id and enables all three channels.
func NewVCNL4040(bus i2c.Bus) (*VCNL4040, error) {
	v := &VCNL4040{d: &i2c.Dev{Bus: bus, Addr: VCNL4040Addr}}

	id, err := v.read(vcnlRegID)
	if err != nil {
		return nil, err
	}
	if id != vcnlDeviceID {
		return nil, fmt.Errorf("vcnl4040: unexpected device id 0x%04x", id)
	}

	// ALS on, 80ms integration
	if err := v.write(vcnlRegALSConf, 0x0000); err != nil {
		return nil, err
	}
	// PS on, 16-bit output (PS_HD)
	if err := v.write(vcnlRegPSConf12, 0x0800); err != nil {
		return nil, err
	}
	// White channel on
	if err := v.write(vcnlRegPSConf3MS, 0x0000); err != nil {
		return nil, err
	}
	return v, nil
}

// Sense fills the light and proximity fields of s.
func (v *VCNL4040) Sense(s *Snapshot) error {
	prox, err := v.read(vcnlRegPSData)
	if err != nil {
		return err
	}
	als, err := v.read(vcnlRegALSData)
	if err != nil {
		return err
	}
	white, err := v.read(vcnlRegWhiteData)
	if err != nil {
		return err
	}
	s.Proximity = prox
	s.AmbientLight = uint16(float64(als) * vcnlLuxPerCount)
	s.WhiteLight = white
	return nil
}

// String returns the device name.
func (v *VCNL4040) String() string {
	return "vcnl4040"
}

// Registers are 16 bits wide, little-endian.
func (v *VCNL4040) read(reg byte) (uint16, error) {
	r := make([]byte, 2)
	if err := v.d.Tx([]byte{reg}, r); err != nil {
		return 0, fmt.Errorf("vcnl4040: read register 0x%02x: %w", reg, err)
	}
	return uint16(r[0]) | uint16(r[1])<<8, nil
}

func (v *VCNL4040) write(reg byte, val uint16) error {
	if err := v.d.Tx([]byte{reg, byte(val), byte(val >> 8)}, nil); err != nil {
		return fmt.Errorf("vcnl4040: write register 0x%02x: %w", reg, err)
	}
	return nil
}
