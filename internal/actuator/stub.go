//go:build !linux

package actuator

import "errors"

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(chipName string, pins []int) (*RealDriver, error) {
	return nil, errors.New("actuator: not supported on this platform (requires Linux)")
}

// SetPosition is not implemented on non-Linux platforms.
func (d *RealDriver) SetPosition(gateID int, pos Position) error {
	return errors.New("actuator: not supported")
}

// Close is not implemented on non-Linux platforms.
func (d *RealDriver) Close() error {
	return nil
}
