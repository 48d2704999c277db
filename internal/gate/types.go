// Package gate contains pure control logic for gate actuator state tracking.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable, as Millis values or time.Time parameters.
package gate

import "time"

// Millis is a monotonic millisecond counter in the uint32 domain, mirroring
// an embedded millisecond clock. It wraps after roughly 49.7 days; elapsed
// time must always be computed with Since, never by comparing raw values.
type Millis uint32

// Since returns the elapsed milliseconds from then to now. The subtraction
// wraps in uint32, so the result stays correct across the counter rollover.
func Since(now, then Millis) Millis {
	return now - then
}

// MillisSince converts the elapsed time from start to now into the Millis
// domain. The conversion truncates to uint32, which is the wrap.
func MillisSince(start, now time.Time) Millis {
	return Millis(now.Sub(start).Milliseconds())
}

// State represents the logical state of a gate.
type State string

const (
	StateIdle State = "IDLE"
	StateOpen State = "OPEN"
)

// Status is the externally published rendering of a transition.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// ActionOpen is the only recognized command action. There is no close
// action: closing is exclusively scheduler-driven.
const ActionOpen = "OPEN"

// Command is a decoded inbound command.
type Command struct {
	GateID int
	Action string
	// Timestamp is informational sender time, logged only.
	Timestamp string
}

// Event represents a state transition to be actuated and published.
type Event struct {
	GateID int
	Status Status
}

// Drop names why a command was discarded. Dropped commands have no effect:
// no state change, no actuation, no reply to the sender.
type Drop string

const (
	DropNone          Drop = ""
	DropInvalidGate   Drop = "invalid_gate"
	DropUnknownAction Drop = "unknown_action"
	DropBusy          Drop = "busy"
)

// Gate is one gate record. OpenedAt is meaningful only while State is
// StateOpen and is cleared on close, so a stale open time can never be
// observed alongside an idle gate.
type Gate struct {
	ID       int
	State    State
	OpenedAt Millis
}
