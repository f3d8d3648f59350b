//go:build linux

package haptic

import (
	"errors"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealVibrator drives a motor driver input from a GPIO output line.
type RealVibrator struct {
	chip  *gpiocdev.Chip
	motor *gpiocdev.Line
	sleep func(time.Duration)
}

// NewRealVibrator requests line on chip as an output, initially off.
func NewRealVibrator(chip string, line int) (*RealVibrator, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	l, err := c.RequestLine(line, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("plant-station-haptic"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request motor line %d: %w", line, err)
	}

	return &RealVibrator{chip: c, motor: l, sleep: time.Sleep}, nil
}

// Vibrate drives the line high for d.
func (r *RealVibrator) Vibrate(d time.Duration) error {
	if err := r.motor.SetValue(1); err != nil {
		return fmt.Errorf("motor on: %w", err)
	}
	r.sleep(d)
	if err := r.motor.SetValue(0); err != nil {
		return fmt.Errorf("motor off: %w", err)
	}
	return nil
}

// Close switches the motor off and releases GPIO resources.
// The line is returned to an input so it does not hold the driver on across
// a restart.
func (r *RealVibrator) Close() error {
	var errs []error
	if r.motor != nil {
		if err := r.motor.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure motor line: %w", err))
		}
		if err := r.motor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close motor line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
