package gate

import "time"

// Scheduler closes open gates once their open duration has elapsed. It holds
// no timers of its own: the run loop polls Tick on every tick interval, so a
// gate actually closes at its deadline plus at most one tick.
type Scheduler struct {
	reg          *Registry
	openDuration Millis
}

// NewScheduler creates a scheduler that closes gates openDuration after they
// opened. The duration is process-wide: every gate shares it.
func NewScheduler(reg *Registry, openDuration time.Duration) *Scheduler {
	return &Scheduler{
		reg:          reg,
		openDuration: Millis(openDuration.Milliseconds()),
	}
}

// Tick scans every gate and closes those whose deadline has passed, returning
// one CLOSED event per gate in ascending ID order. Elapsed time is computed
// with Since, so a gate opened just before the millisecond counter wraps
// still closes on time rather than immediately or never.
func (s *Scheduler) Tick(now Millis) []Event {
	var events []Event
	for i := range s.reg.gates {
		g := s.reg.gates[i]
		if g.State != StateOpen {
			continue
		}
		if Since(now, g.OpenedAt) < s.openDuration {
			continue
		}
		if s.reg.TrySetClosed(g.ID) {
			events = append(events, Event{GateID: g.ID, Status: StatusClosed})
		}
	}
	return events
}

// CloseAll unconditionally closes every open gate, returning the CLOSED
// events in ascending ID order. Used at shutdown so the process never exits
// with a gate open and its deadline gone. Not reachable from any command.
func (s *Scheduler) CloseAll() []Event {
	var events []Event
	for i := range s.reg.gates {
		g := s.reg.gates[i]
		if g.State != StateOpen {
			continue
		}
		if s.reg.TrySetClosed(g.ID) {
			events = append(events, Event{GateID: g.ID, Status: StatusClosed})
		}
	}
	return events
}
