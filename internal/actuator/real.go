//go:build linux

package actuator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives gate actuators through Linux GPIO character device
// output lines, one line per gate. Line value 1 is the open position,
// 0 is closed.
type RealDriver struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealDriver opens the GPIO chip and requests one output line per gate,
// pins[i] driving gate i+1. Every line starts in the closed position, so the
// hardware matches the registry's boot state before the loop runs.
func NewRealDriver(chipName string, pins []int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines := make([]*gpiocdev.Line, 0, len(pins))
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			for _, l := range lines {
				l.Close()
			}
			chip.Close()
			return nil, fmt.Errorf("request gate %d pin %d: %w", i+1, pin, err)
		}
		lines = append(lines, line)
	}

	return &RealDriver{chip: chip, lines: lines}, nil
}

// SetPosition drives the actuator for the given gate to pos.
func (d *RealDriver) SetPosition(gateID int, pos Position) error {
	if gateID < 1 || gateID > len(d.lines) {
		return fmt.Errorf("no actuator line for gate %d", gateID)
	}
	value := 0
	if pos == PositionOpen {
		value = 1
	}
	if err := d.lines[gateID-1].SetValue(value); err != nil {
		return fmt.Errorf("set gate %d pin: %w", gateID, err)
	}
	return nil
}

// Close drives every line back to the closed position before releasing it,
// so a daemon restart never inherits a gate held open by a floating pin.
func (d *RealDriver) Close() error {
	var errs []error

	for i, line := range d.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("close gate %d pin: %w", i+1, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release gate %d pin: %w", i+1, err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
