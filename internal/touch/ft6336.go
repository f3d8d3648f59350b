package touch

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
)

// FT6336Addr is the I²C address of the FT6336U capacitive touch controller.
const FT6336Addr uint16 = 0x38

const (
	ftRegTDStatus byte = 0x02
	ftMaxPoints        = 2
)

// FT6336 reads the first touch point from an FT6336U.
type FT6336 struct {
	d *i2c.Dev
}

// NewFT6336 returns a reader for the controller on bus.
func NewFT6336(bus i2c.Bus) *FT6336 {
	return &FT6336{d: &i2c.Dev{Bus: bus, Addr: FT6336Addr}}
}

// Poll reads TD_STATUS and the first point registers in one transaction.
func (f *FT6336) Poll() (image.Point, bool, error) {
	r := make([]byte, 5)
	if err := f.d.Tx([]byte{ftRegTDStatus}, r); err != nil {
		return image.Point{}, false, fmt.Errorf("ft6336: read: %w", err)
	}
	count := int(r[0] & 0x0F)
	if count == 0 || count > ftMaxPoints {
		return image.Point{}, false, nil
	}
	x := int(r[1]&0x0F)<<8 | int(r[2])
	y := int(r[3]&0x0F)<<8 | int(r[4])
	return image.Pt(x, y), true, nil
}

// String returns the device name.
func (f *FT6336) String() string {
	return "ft6336"
}
