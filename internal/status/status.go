// Package status provides a thread-safe status tracker for the gate-gateway
// daemon. It is the only concurrently accessed state: the run loop writes,
// HTTP handlers read.
package status

import (
	"sync"
	"time"

	"github.com/portones-fc/gate-gateway/internal/gate"
)

// recentCapacity bounds the recent-transition history kept for the
// status page.
const recentCapacity = 32

// Config contains daemon configuration for display.
type Config struct {
	Gates       int
	TickMs      int64
	OpenMs      int64
	HeartbeatMs int64
	Transport   string
	Broker      string
	HTTPAddr    string
}

// Counts summarizes gateway activity since startup.
type Counts struct {
	Opened  int
	Closed  int
	Dropped int
}

// DropCounts breaks dropped commands down by reason.
type DropCounts struct {
	InvalidGate   int
	UnknownAction int
	Busy          int
}

// Transition is one recorded gate state change.
type Transition struct {
	GateID int
	Status gate.Status
	At     time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Gates            []gate.Gate
	Counts           Counts
	Drops            DropCounts
	Recent           []Transition
	StartTime        time.Time
	Now              time.Time
	ChannelConnected bool
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	gates  []gate.Gate
	counts Counts
	drops  DropCounts
	recent *ring
	start  time.Time
	conn   bool
	config Config
}

// NewTracker creates a Tracker with the given start time and config. Gate
// records are all idle until the first UpdateGates.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	gates := make([]gate.Gate, cfg.Gates)
	for i := range gates {
		gates[i] = gate.Gate{ID: i + 1, State: gate.StateIdle}
	}
	return &Tracker{
		gates:  gates,
		recent: newRing(recentCapacity),
		start:  startTime,
		config: cfg,
	}
}

// UpdateGates stores a copy of the current gate records.
// Called from the run loop on every tick.
func (t *Tracker) UpdateGates(gates []gate.Gate) {
	t.mu.Lock()
	t.gates = append(t.gates[:0], gates...)
	t.mu.Unlock()
}

// RecordTransition notes a published OPEN or CLOSED transition, updating
// counts and the recent history.
func (t *Tracker) RecordTransition(gateID int, s gate.Status, at time.Time) {
	t.mu.Lock()
	switch s {
	case gate.StatusOpen:
		t.counts.Opened++
	case gate.StatusClosed:
		t.counts.Closed++
	}
	t.recent.push(Transition{GateID: gateID, Status: s, At: at})
	t.mu.Unlock()
}

// RecordDrop counts a dropped command by reason.
func (t *Tracker) RecordDrop(reason gate.Drop) {
	t.mu.Lock()
	t.counts.Dropped++
	switch reason {
	case gate.DropInvalidGate:
		t.drops.InvalidGate++
	case gate.DropUnknownAction:
		t.drops.UnknownAction++
	case gate.DropBusy:
		t.drops.Busy++
	}
	t.mu.Unlock()
}

// SetChannelConnected sets the channel connection status.
func (t *Tracker) SetChannelConnected(connected bool) {
	t.mu.Lock()
	t.conn = connected
	t.mu.Unlock()
}

// Counts returns the current activity counters.
func (t *Tracker) Counts() Counts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := Snapshot{
		Gates:            append([]gate.Gate(nil), t.gates...),
		Counts:           t.counts,
		Drops:            t.drops,
		Recent:           t.recent.newestFirst(),
		StartTime:        t.start,
		ChannelConnected: t.conn,
		Config:           t.config,
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
