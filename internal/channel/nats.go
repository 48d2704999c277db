package channel

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/portones-fc/gate-gateway/internal/gate"
)

// NATSConn is a channel connection backed by a NATS server. Topics map to
// NATS subjects verbatim.
type NATSConn struct {
	conn        *nats.Conn
	sub         *nats.Subscription
	commands    chan gate.Command
	statusTopic string
	systemTopic string
}

// NewNATSConn connects to the given server, subscribes to the command
// subject, and announces the gateway as online. Reconnection is unlimited;
// the online announcement is repeated from the reconnect handler.
func NewNATSConn(opts Options) (*NATSConn, error) {
	c := &NATSConn{
		commands:    make(chan gate.Command, commandBuffer),
		statusTopic: opts.StatusTopic,
		systemTopic: opts.SystemTopic,
	}

	natsOpts := []nats.Option{
		nats.Name(opts.clientID()),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("channel connection lost: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("channel reconnected to %s", nc.ConnectedUrl())
			c.publishOnline()
		}),
	}
	if opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.Username, opts.Password))
	}

	nc, err := nats.Connect(opts.Broker, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}
	c.conn = nc

	sub, err := nc.Subscribe(opts.CommandTopic, c.onCommand)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", opts.CommandTopic, err)
	}
	c.sub = sub

	// Flush ensures the subscription is registered on the server before
	// returning, so commands published right after startup are routed.
	if err := nc.Flush(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("flush subscription: %w", err)
	}

	c.publishOnline()
	return c, nil
}

// onCommand decodes an inbound payload and forwards it to the run loop.
// Malformed payloads are dropped here; commands are dropped too when the run
// loop has fallen behind, rather than blocking the NATS delivery goroutine.
func (c *NATSConn) onCommand(msg *nats.Msg) {
	cmd, err := DecodeCommand(msg.Data)
	if err != nil {
		log.Printf("drop malformed command on %s: %v", msg.Subject, err)
		return
	}
	select {
	case c.commands <- cmd:
	default:
		log.Printf("drop command for gate %d: command queue full", cmd.GateID)
	}
}

func (c *NATSConn) publishOnline() {
	payload, err := FormatOnlinePayload()
	if err != nil {
		log.Printf("format online payload: %v", err)
		return
	}
	if err := c.conn.Publish(c.statusTopic, payload); err != nil {
		log.Printf("publish online error: %v", err)
	}
}

// Commands returns the stream of decoded inbound commands.
func (c *NATSConn) Commands() <-chan gate.Command {
	return c.commands
}

// PublishStatus sends a gate transition to the status topic.
func (c *NATSConn) PublishStatus(gateID int, status gate.Status) error {
	payload, err := FormatStatusPayload(gateID, status)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	if err := c.conn.Publish(c.statusTopic, payload); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system report to the system topic.
func (c *NATSConn) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	if err := c.conn.Publish(c.systemTopic, payload); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the server connection is currently up.
func (c *NATSConn) IsConnected() bool {
	return c.conn.IsConnected()
}

// Close unsubscribes and disconnects from the server.
func (c *NATSConn) Close() error {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}
