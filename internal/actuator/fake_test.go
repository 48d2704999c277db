package actuator

import (
	"errors"
	"testing"
)

var (
	_ Driver = (*FakeDriver)(nil)
	_ Driver = (*RealDriver)(nil)
)

func TestFakeDriverRecordsActuations(t *testing.T) {
	f := NewFakeDriver()

	if err := f.SetPosition(1, PositionOpen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.SetPosition(2, PositionOpen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.SetPosition(1, PositionClosed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Actuation{
		{GateID: 1, Position: PositionOpen},
		{GateID: 2, Position: PositionOpen},
		{GateID: 1, Position: PositionClosed},
	}
	if len(f.Actuations) != len(want) {
		t.Fatalf("expected %d actuations, got %d", len(want), len(f.Actuations))
	}
	for i, w := range want {
		if f.Actuations[i] != w {
			t.Errorf("actuation %d: expected %+v, got %+v", i, w, f.Actuations[i])
		}
	}
}

func TestFakeDriverForGate(t *testing.T) {
	f := NewFakeDriver()
	f.SetPosition(1, PositionOpen)
	f.SetPosition(2, PositionOpen)
	f.SetPosition(1, PositionClosed)

	got := f.ForGate(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 actuations for gate 1, got %d", len(got))
	}
	if got[0].Position != PositionOpen || got[1].Position != PositionClosed {
		t.Errorf("gate 1 actuations: expected OPEN then CLOSED, got %+v", got)
	}

	if got := f.ForGate(3); len(got) != 0 {
		t.Errorf("expected no actuations for gate 3, got %d", len(got))
	}
}

func TestFakeDriverSetError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("actuator fault")

	if err := f.SetPosition(1, PositionOpen); err == nil {
		t.Error("expected error when SetError is set")
	}
	if len(f.Actuations) != 0 {
		t.Errorf("expected no recorded actuation on error, got %d", len(f.Actuations))
	}
}

func TestFakeDriverClose(t *testing.T) {
	f := NewFakeDriver()
	if f.Closed {
		t.Error("expected Closed to be false initially")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed to be true after Close")
	}
}

func TestFakeDriverReset(t *testing.T) {
	f := NewFakeDriver()
	f.SetPosition(1, PositionOpen)
	f.Close()

	f.Reset()
	if len(f.Actuations) != 0 || f.Closed || f.SetError != nil {
		t.Error("expected Reset to clear all recorded state")
	}
}
