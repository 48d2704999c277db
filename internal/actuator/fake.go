package actuator

// Actuation is one recorded SetPosition call.
type Actuation struct {
	GateID   int
	Position Position
}

// FakeDriver records actuations for test assertions.
type FakeDriver struct {
	// Actuations contains every SetPosition call in order.
	Actuations []Actuation

	// SetError, if set, will be returned by SetPosition.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// SetPosition records the actuation.
func (f *FakeDriver) SetPosition(gateID int, pos Position) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Actuations = append(f.Actuations, Actuation{GateID: gateID, Position: pos})
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// ForGate returns the actuations recorded for one gate, in order.
func (f *FakeDriver) ForGate(gateID int) []Actuation {
	var out []Actuation
	for _, a := range f.Actuations {
		if a.GateID == gateID {
			out = append(out, a)
		}
	}
	return out
}

// Reset clears recorded actuations.
func (f *FakeDriver) Reset() {
	f.Actuations = nil
	f.SetError = nil
	f.Closed = false
}
