package gate

import (
	"testing"
	"time"
)

// openGate opens a gate directly through the registry and fails the test if
// the transition is refused.
func openGate(t *testing.T, r *Registry, id int, at Millis) {
	t.Helper()
	if !r.TrySetOpen(id, at) {
		t.Fatalf("failed to open gate %d at %d", id, at)
	}
}

func TestTickBeforeDeadline(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)

	for _, now := range []Millis{1000, 1010, 3000, 5999} {
		events := s.Tick(now)
		if len(events) != 0 {
			t.Errorf("tick at %d: expected no events before deadline, got %d", now, len(events))
		}
	}

	g, _ := r.Get(1)
	if g.State != StateOpen {
		t.Errorf("expected gate still OPEN, got %s", g.State)
	}
}

func TestTickClosesAtDeadline(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)

	// Deadline is inclusive: elapsed >= openDuration closes.
	events := s.Tick(6000)
	if len(events) != 1 {
		t.Fatalf("expected 1 event at deadline, got %d", len(events))
	}
	if events[0].GateID != 1 {
		t.Errorf("expected event for gate 1, got %d", events[0].GateID)
	}
	if events[0].Status != StatusClosed {
		t.Errorf("expected CLOSED event, got %s", events[0].Status)
	}

	g, _ := r.Get(1)
	if g.State != StateIdle {
		t.Errorf("expected IDLE after close, got %s", g.State)
	}
	if g.OpenedAt != 0 {
		t.Errorf("expected OpenedAt cleared, got %d", g.OpenedAt)
	}
}

func TestTickClosesOnFirstTickPastDeadline(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)

	// Ticks arrive on a coarse cadence: the close lands on the first tick at
	// or after the deadline, here 3ms late.
	if events := s.Tick(5995); len(events) != 0 {
		t.Fatalf("expected no close at 5995, got %d events", len(events))
	}
	events := s.Tick(6003)
	if len(events) != 1 {
		t.Fatalf("expected close at 6003, got %d events", len(events))
	}
	if events[0].Status != StatusClosed {
		t.Errorf("expected CLOSED, got %s", events[0].Status)
	}
}

func TestTickIdempotentAfterClose(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)

	if events := s.Tick(6000); len(events) != 1 {
		t.Fatalf("expected 1 close event, got %d", len(events))
	}

	// Exactly one CLOSED per open cycle, however many ticks follow.
	for _, now := range []Millis{6010, 6020, 7000, 60000} {
		if events := s.Tick(now); len(events) != 0 {
			t.Errorf("tick at %d: expected no events after close, got %d", now, len(events))
		}
	}
}

func TestTickIndependentDeadlines(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)
	openGate(t, r, 3, 3000)

	// Gate 1 closes at 6000, gate 3 not before 8000.
	events := s.Tick(6000)
	if len(events) != 1 || events[0].GateID != 1 {
		t.Fatalf("expected only gate 1 to close at 6000, got %v", events)
	}

	g3, _ := r.Get(3)
	if g3.State != StateOpen {
		t.Errorf("expected gate 3 still OPEN, got %s", g3.State)
	}
	g2, _ := r.Get(2)
	if g2.State != StateIdle {
		t.Errorf("expected gate 2 untouched, got %s", g2.State)
	}

	events = s.Tick(8000)
	if len(events) != 1 || events[0].GateID != 3 {
		t.Fatalf("expected only gate 3 to close at 8000, got %v", events)
	}
}

func TestTickClosesMultipleGatesInIDOrder(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 4, 1000)
	openGate(t, r, 2, 1200)

	events := s.Tick(10000)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].GateID != 2 || events[1].GateID != 4 {
		t.Errorf("expected gates in ascending ID order [2 4], got [%d %d]",
			events[0].GateID, events[1].GateID)
	}
}

func TestTickWraparound(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)

	// Opened 100ms before the uint32 counter wraps. The deadline lands at
	// 4900 on the far side of the wrap.
	openedAt := Millis(4294967196)
	openGate(t, r, 1, openedAt)

	// Immediately after the wrap: elapsed is small, not huge.
	if events := s.Tick(50); len(events) != 0 {
		t.Fatalf("expected no close just after wrap, got %d events", len(events))
	}
	if events := s.Tick(4899); len(events) != 0 {
		t.Fatalf("expected no close at 4999ms elapsed, got %d events", len(events))
	}

	events := s.Tick(4900)
	if len(events) != 1 {
		t.Fatalf("expected close at 5000ms elapsed across wrap, got %d events", len(events))
	}
	if events[0].Status != StatusClosed {
		t.Errorf("expected CLOSED, got %s", events[0].Status)
	}
}

func TestTickNoOpenGates(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)

	if events := s.Tick(100000); events != nil {
		t.Errorf("expected nil events with no open gates, got %v", events)
	}
}

func TestCloseAll(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)
	openGate(t, r, 1, 1000)
	openGate(t, r, 3, 1500)

	events := s.CloseAll()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].GateID != 1 || events[1].GateID != 3 {
		t.Errorf("expected gates [1 3], got [%d %d]", events[0].GateID, events[1].GateID)
	}
	for _, e := range events {
		if e.Status != StatusClosed {
			t.Errorf("gate %d: expected CLOSED, got %s", e.GateID, e.Status)
		}
	}

	for id := 1; id <= 4; id++ {
		g, _ := r.Get(id)
		if g.State != StateIdle {
			t.Errorf("gate %d: expected IDLE after CloseAll, got %s", id, g.State)
		}
	}
}

func TestCloseAllIdle(t *testing.T) {
	r := NewRegistry(4)
	s := NewScheduler(r, 5*time.Second)

	if events := s.CloseAll(); events != nil {
		t.Errorf("expected nil events when all idle, got %v", events)
	}
	// And again: CloseAll never double-closes.
	if events := s.CloseAll(); events != nil {
		t.Errorf("expected nil events on repeat, got %v", events)
	}
}

func TestSinceWraparound(t *testing.T) {
	tests := []struct {
		now  Millis
		then Millis
		want Millis
	}{
		{1000, 1000, 0},
		{6000, 1000, 5000},
		{4900, 4294967196, 5000}, // across the wrap
		{0, 4294967295, 1},
		{100, 4294967196, 200},
	}

	for _, tt := range tests {
		if got := Since(tt.now, tt.then); got != tt.want {
			t.Errorf("Since(%d, %d) = %d, want %d", tt.now, tt.then, got, tt.want)
		}
	}
}

func TestMillisSince(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := MillisSince(start, start); got != 0 {
		t.Errorf("expected 0 at start, got %d", got)
	}
	if got := MillisSince(start, start.Add(5*time.Second)); got != 5000 {
		t.Errorf("expected 5000, got %d", got)
	}
	// Past the uint32 range the counter wraps, like the embedded clock.
	if got := MillisSince(start, start.Add(4294967296*time.Millisecond+7*time.Millisecond)); got != 7 {
		t.Errorf("expected wrap to 7, got %d", got)
	}
}
