// Package actuator drives gate actuators with hardware abstraction.
// The real implementation uses Linux GPIO character device output lines.
// The fake implementation allows testing without hardware.
package actuator

// Position is the actuation target for a gate. It is write-only: gate state
// is tracked by the caller, never read back from the hardware.
type Position string

const (
	PositionOpen   Position = "OPEN"
	PositionClosed Position = "CLOSED"
)

// Driver sets gate actuator positions.
type Driver interface {
	// SetPosition drives the actuator for the given gate to pos.
	// Gate IDs are 1-based, matching the gate registry.
	SetPosition(gateID int, pos Position) error

	// Close drives all gates closed and releases hardware resources.
	Close() error
}

// DefaultChip is the GPIO character device on Raspberry Pi class hardware.
const DefaultChip = "gpiochip0"

// DefaultPin is the output line for a single-gate setup (BCM numbering).
const DefaultPin = 13
