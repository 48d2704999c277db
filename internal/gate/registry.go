package gate

import (
	"errors"
	"fmt"
)

// ErrInvalidGate is returned for gate IDs outside [1, N].
var ErrInvalidGate = errors.New("invalid gate id")

// Registry owns the per-gate records. Records are created at startup, one
// per ID in [1, N], and never destroyed. Not safe for concurrent use: the
// run loop is the only writer, and concurrent readers go through the status
// tracker instead.
type Registry struct {
	gates []Gate
}

// NewRegistry creates n gate records with IDs 1..n, all idle.
func NewRegistry(n int) *Registry {
	gates := make([]Gate, n)
	for i := range gates {
		gates[i] = Gate{ID: i + 1, State: StateIdle}
	}
	return &Registry{gates: gates}
}

// Len returns the number of gates.
func (r *Registry) Len() int {
	return len(r.gates)
}

// Snapshot returns a copy of every gate record in ascending ID order.
func (r *Registry) Snapshot() []Gate {
	return append([]Gate(nil), r.gates...)
}

// Get returns a copy of the record for id, or ErrInvalidGate.
func (r *Registry) Get(id int) (Gate, error) {
	if id < 1 || id > len(r.gates) {
		return Gate{}, fmt.Errorf("%w: %d", ErrInvalidGate, id)
	}
	return r.gates[id-1], nil
}

// TrySetOpen transitions id from idle to open, recording when. Returns false
// without touching the record if the gate is already open or id is invalid.
func (r *Registry) TrySetOpen(id int, now Millis) bool {
	if id < 1 || id > len(r.gates) {
		return false
	}
	g := &r.gates[id-1]
	if g.State == StateOpen {
		return false
	}
	g.State = StateOpen
	g.OpenedAt = now
	return true
}

// TrySetClosed transitions id from open to idle, clearing OpenedAt. Returns
// false without touching the record if the gate is already idle or id is
// invalid.
func (r *Registry) TrySetClosed(id int) bool {
	if id < 1 || id > len(r.gates) {
		return false
	}
	g := &r.gates[id-1]
	if g.State != StateOpen {
		return false
	}
	g.State = StateIdle
	g.OpenedAt = 0
	return true
}
