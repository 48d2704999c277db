package channel

import "github.com/portones-fc/gate-gateway/internal/gate"

// StatusRecord is one recorded PublishStatus call.
type StatusRecord struct {
	GateID int
	Status gate.Status
}

// FakeConn records published statuses and lets tests feed inbound commands.
type FakeConn struct {
	// commands carries test-scripted inbound commands to the run loop.
	commands chan gate.Command

	// Statuses contains all gate transitions that were published.
	Statuses []StatusRecord

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system reports that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system reports.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishStatus.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeConn creates a FakeConn for testing.
func NewFakeConn() *FakeConn {
	return &FakeConn{commands: make(chan gate.Command, commandBuffer)}
}

// NewSyncFakeConn creates a FakeConn whose Send blocks until the command is
// received, so run-loop tests can interleave commands and ticks
// deterministically.
func NewSyncFakeConn() *FakeConn {
	return &FakeConn{commands: make(chan gate.Command)}
}

// Send feeds an inbound command to whatever is reading Commands.
func (f *FakeConn) Send(cmd gate.Command) {
	f.commands <- cmd
}

// Commands returns the stream of test-scripted commands.
func (f *FakeConn) Commands() <-chan gate.Command {
	return f.commands
}

// PublishStatus records the gate transition.
func (f *FakeConn) PublishStatus(gateID int, status gate.Status) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Statuses = append(f.Statuses, StatusRecord{GateID: gateID, Status: status})

	payload, err := FormatStatusPayload(gateID, status)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system report.
func (f *FakeConn) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the connection as closed.
func (f *FakeConn) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake connection is "connected".
func (f *FakeConn) IsConnected() bool {
	return f.Connected
}

// ForGate returns the statuses recorded for one gate, in order.
func (f *FakeConn) ForGate(gateID int) []StatusRecord {
	var out []StatusRecord
	for _, s := range f.Statuses {
		if s.GateID == gateID {
			out = append(out, s)
		}
	}
	return out
}

// Reset clears recorded publications.
func (f *FakeConn) Reset() {
	f.Statuses = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
