package sensor

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// SHT4x commands, as sent by the periph driver.
const (
	shtCmdSoftReset   byte = 0x94
	shtCmdReadSerial  byte = 0x89
	shtCmdMeasureHigh byte = 0xFD
)

var vcnlInitOps = []i2ctest.IO{
	{Addr: VCNL4040Addr, W: []byte{vcnlRegID}, R: []byte{0x86, 0x01}},
	{Addr: VCNL4040Addr, W: []byte{vcnlRegALSConf, 0x00, 0x00}},
	{Addr: VCNL4040Addr, W: []byte{vcnlRegPSConf12, 0x00, 0x08}},
	{Addr: VCNL4040Addr, W: []byte{vcnlRegPSConf3MS, 0x00, 0x00}},
}

var vcnlSenseOps = []i2ctest.IO{
	{Addr: VCNL4040Addr, W: []byte{vcnlRegPSData}, R: []byte{0x2A, 0x00}},
	{Addr: VCNL4040Addr, W: []byte{vcnlRegALSData}, R: []byte{0xE8, 0x03}},
	{Addr: VCNL4040Addr, W: []byte{vcnlRegWhiteData}, R: []byte{0x0A, 0x00}},
}

var shtInitOps = []i2ctest.IO{
	{Addr: SHT4xAddr, W: []byte{shtCmdSoftReset}},
	{Addr: SHT4xAddr, W: []byte{shtCmdReadSerial}},
	{Addr: SHT4xAddr, R: []byte{0x12, 0x34, 0x37, 0x56, 0x78, 0x7D}},
}

var shtSenseOps = []i2ctest.IO{
	{Addr: SHT4xAddr, W: []byte{shtCmdMeasureHigh}},
	{Addr: SHT4xAddr, R: []byte{0x66, 0x66, 0x93, 0x73, 0x33, 0x01}},
}

var mpuInitOps = []i2ctest.IO{
	{Addr: MPU6886Addr, W: []byte{mpuRegWhoAmI}, R: []byte{mpuWhoAmI}},
	{Addr: MPU6886Addr, W: []byte{mpuRegPwrMgmt1, 0x00}},
	{Addr: MPU6886Addr, W: []byte{mpuRegAccelConfig, mpuAccelFS8G}},
}

func concat(parts ...[]i2ctest.IO) []i2ctest.IO {
	var out []i2ctest.IO
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestVCNL4040Sense(t *testing.T) {
	bus := &i2ctest.Playback{Ops: concat(vcnlInitOps, vcnlSenseOps), DontPanic: true}
	v, err := NewVCNL4040(bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var s Snapshot
	if err := v.Sense(&s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Proximity != 42 {
		t.Errorf("expected proximity 42, got %d", s.Proximity)
	}
	if s.AmbientLight != 100 {
		t.Errorf("expected 100 lux, got %d", s.AmbientLight)
	}
	if s.WhiteLight != 10 {
		t.Errorf("expected white 10, got %d", s.WhiteLight)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback not fully consumed: %v", err)
	}
}

func TestVCNL4040WrongID(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: VCNL4040Addr, W: []byte{vcnlRegID}, R: []byte{0x00, 0x00}}},
		DontPanic: true,
	}
	if _, err := NewVCNL4040(bus); err == nil {
		t.Fatal("expected error for wrong device id")
	}
}

func TestSHT4xSense(t *testing.T) {
	bus := &i2ctest.Playback{Ops: concat(shtInitOps, shtSenseOps), DontPanic: true}
	s, err := NewSHT4x(bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap Snapshot
	if err := s.Sense(&snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(snap.Temperature-25.0) > 0.01 {
		t.Errorf("expected 25.0C, got %f", snap.Temperature)
	}
	if math.Abs(snap.Humidity-50.25) > 0.01 {
		t.Errorf("expected 50.25%%, got %f", snap.Humidity)
	}
}

func TestSHT4xCRCMismatch(t *testing.T) {
	bad := []i2ctest.IO{
		{Addr: SHT4xAddr, W: []byte{shtCmdMeasureHigh}},
		{Addr: SHT4xAddr, R: []byte{0x66, 0x66, 0x00, 0x73, 0x33, 0x01}},
	}
	bus := &i2ctest.Playback{Ops: concat(shtInitOps, bad), DontPanic: true}
	s, err := NewSHT4x(bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var snap Snapshot
	if err := s.Sense(&snap); err == nil {
		t.Error("expected crc error")
	}
}

func TestSHT4xMissing(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: SHT4xAddr, W: []byte{shtCmdSoftReset}},
		{Addr: SHT4xAddr, W: []byte{shtCmdReadSerial}},
		{Addr: SHT4xAddr, R: []byte{0xFF, 0xFF, 0x00, 0xFF, 0xFF, 0x00}},
	}, DontPanic: true}
	if _, err := NewSHT4x(bus); err == nil {
		t.Error("expected error for a sensor that fails its serial read")
	}
}

func TestClimateConversion(t *testing.T) {
	env := physic.Env{
		Temperature: 21*physic.Kelvin + physic.ZeroCelsius,
		Humidity:    40 * physic.PercentRH,
	}
	c, rh := climate(env)
	if math.Abs(c-21) > 1e-6 {
		t.Errorf("expected 21C, got %f", c)
	}
	if math.Abs(rh-40) > 1e-6 {
		t.Errorf("expected 40%%RH, got %f", rh)
	}
}

func TestMPU6886Acceleration(t *testing.T) {
	ops := concat(mpuInitOps, []i2ctest.IO{
		// X=-1g, Y=0, Z=+1g
		{Addr: MPU6886Addr, W: []byte{mpuRegAccelXOutH}, R: []byte{0xF0, 0x00, 0x00, 0x00, 0x10, 0x00}},
	})
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	m, err := NewMPU6886(bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := m.Acceleration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.X != -1 || a.Y != 0 || a.Z != 1 {
		t.Errorf("unexpected acceleration: %+v", a)
	}
	if math.Abs(a.Magnitude()-math.Sqrt2) > 1e-9 {
		t.Errorf("unexpected magnitude: %f", a.Magnitude())
	}
}

func TestOpenBoard(t *testing.T) {
	ops := concat(vcnlInitOps, shtInitOps, mpuInitOps, vcnlSenseOps, shtSenseOps)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	b, err := OpenBoard(bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := b.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Proximity != 42 || s.AmbientLight != 100 || s.WhiteLight != 10 {
		t.Errorf("unexpected light readings: %+v", s)
	}
	if math.Abs(s.Temperature-25.0) > 0.01 {
		t.Errorf("unexpected temperature: %f", s.Temperature)
	}
}

func TestOpenBoardReportsFailingSensor(t *testing.T) {
	ops := concat(vcnlInitOps, shtInitOps, []i2ctest.IO{
		{Addr: MPU6886Addr, W: []byte{mpuRegWhoAmI}, R: []byte{0x00}},
	})
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	_, err := OpenBoard(bus)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected *InitError, got %v", err)
	}
	if initErr.Sensor != "MPU6886" {
		t.Errorf("expected MPU6886, got %s", initErr.Sensor)
	}
}

func TestFakeReader(t *testing.T) {
	f := NewFakeReader(Snapshot{Proximity: 1}, Snapshot{Proximity: 2})
	for i, want := range []uint16{1, 2, 2} {
		s, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if s.Proximity != want {
			t.Errorf("read %d: expected %d, got %d", i, want, s.Proximity)
		}
	}

	f.ReadError = errors.New("bus fault")
	if _, err := f.Read(); err == nil {
		t.Error("expected error")
	}
	if f.Reads != 4 {
		t.Errorf("expected 4 reads, got %d", f.Reads)
	}
}
