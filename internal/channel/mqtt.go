package channel

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/portones-fc/gate-gateway/internal/gate"
)

// MQTTConn is a channel connection backed by an MQTT broker.
type MQTTConn struct {
	client       paho.Client
	commands     chan gate.Command
	commandTopic string
	statusTopic  string
	systemTopic  string
}

// NewMQTTConn connects to the given broker and subscribes to the command
// topic. Subscription and the online announcement happen in the OnConnect
// handler, so they are repeated after every reconnect.
func NewMQTTConn(opts Options) (*MQTTConn, error) {
	c := &MQTTConn{
		commands:     make(chan gate.Command, commandBuffer),
		commandTopic: opts.CommandTopic,
		statusTopic:  opts.StatusTopic,
		systemTopic:  opts.SystemTopic,
	}

	pahoOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.clientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("channel connection lost: %v", err)
		})
	if opts.Username != "" {
		pahoOpts.SetUsername(opts.Username)
		pahoOpts.SetPassword(opts.Password)
	}

	c.client = paho.NewClient(pahoOpts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on every successful (re)connection: it re-subscribes to the
// command topic and announces the gateway as online.
func (c *MQTTConn) onConnect(client paho.Client) {
	token := client.Subscribe(c.commandTopic, 0, c.onCommand)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("subscribe %s timeout", c.commandTopic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("subscribe %s error: %v", c.commandTopic, err)
		return
	}

	payload, err := FormatOnlinePayload()
	if err != nil {
		log.Printf("format online payload: %v", err)
		return
	}
	token = client.Publish(c.statusTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("publish online timeout")
	} else if err := token.Error(); err != nil {
		log.Printf("publish online error: %v", err)
	}
}

// onCommand decodes an inbound payload and forwards it to the run loop.
// Malformed payloads are dropped here; commands are dropped too when the run
// loop has fallen behind, rather than blocking paho's delivery goroutine.
func (c *MQTTConn) onCommand(_ paho.Client, msg paho.Message) {
	cmd, err := DecodeCommand(msg.Payload())
	if err != nil {
		log.Printf("drop malformed command on %s: %v", msg.Topic(), err)
		return
	}
	select {
	case c.commands <- cmd:
	default:
		log.Printf("drop command for gate %d: command queue full", cmd.GateID)
	}
}

// Commands returns the stream of decoded inbound commands.
func (c *MQTTConn) Commands() <-chan gate.Command {
	return c.commands
}

// PublishStatus sends a gate transition to the status topic.
func (c *MQTTConn) PublishStatus(gateID int, status gate.Status) error {
	payload, err := FormatStatusPayload(gateID, status)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(c.statusTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishSystem sends a system report to the system topic.
func (c *MQTTConn) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for system reports
	token := c.client.Publish(c.systemTopic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// IsConnected reports whether the broker connection is currently up.
func (c *MQTTConn) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *MQTTConn) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
