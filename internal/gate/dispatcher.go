package gate

// Dispatcher validates inbound commands and applies them to the registry.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Handle applies a single command. On success the returned event carries the
// transition for the caller to actuate and then publish, in that order. A
// non-empty Drop names why the command was discarded; the command then has
// no effect on any gate.
func (d *Dispatcher) Handle(cmd Command, now Millis) (Event, Drop) {
	if cmd.GateID < 1 || cmd.GateID > d.reg.Len() {
		return Event{}, DropInvalidGate
	}
	if cmd.Action != ActionOpen {
		return Event{}, DropUnknownAction
	}
	if !d.reg.TrySetOpen(cmd.GateID, now) {
		// Already open: the pending close deadline is left untouched.
		return Event{}, DropBusy
	}
	return Event{GateID: cmd.GateID, Status: StatusOpen}, DropNone
}
