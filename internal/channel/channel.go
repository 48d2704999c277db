// Package channel provides the pub/sub command channel with abstraction for
// testing. Backends decode inbound command payloads and forward them to the
// run loop over a Go channel; they never touch gate state themselves.
package channel

import (
	"time"

	"github.com/google/uuid"

	"github.com/portones-fc/gate-gateway/internal/gate"
)

// commandBuffer is the capacity of the decoded command channel. When the run
// loop falls behind, further commands are dropped rather than blocking the
// transport's delivery goroutine.
const commandBuffer = 64

// Conn is a connection to the command channel.
type Conn interface {
	// Commands returns the stream of decoded inbound commands.
	Commands() <-chan gate.Command

	// PublishStatus sends a gate transition to the status topic.
	// Returns error if publishing fails (should not crash the process).
	PublishStatus(gateID int, status gate.Status) error

	// PublishSystem sends a system report to the system topic.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the channel connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Options configures a channel connection. The same set drives both the MQTT
// and the NATS backend; Broker carries the backend-specific URL.
type Options struct {
	Broker       string
	ClientID     string
	Username     string
	Password     string
	CommandTopic string
	StatusTopic  string
	SystemTopic  string
}

// clientID returns the configured client ID, or a generated one so several
// gateways can share a broker without stealing each other's session.
func (o Options) clientID() string {
	if o.ClientID != "" {
		return o.ClientID
	}
	return "gate-gateway-" + uuid.New().String()[:8]
}

// SystemEvent is a periodic system report for fleet monitoring, published on
// the system topic. It never appears on the status topic.
type SystemEvent struct {
	Timestamp time.Time
	Uptime    time.Duration
	Gates     int
	Counts    Counts
}

// Counts summarizes gateway activity since startup.
type Counts struct {
	Opened  int
	Closed  int
	Dropped int
}
