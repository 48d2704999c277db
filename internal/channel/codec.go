package channel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/portones-fc/gate-gateway/internal/gate"
)

// StatusOnline is the gateway-level announcement published on the status
// topic after every successful (re)connection. It carries no gateId.
const StatusOnline = "online"

// commandMessage is the wire form of an inbound command. Timestamp is kept
// raw: senders put either a string or an epoch number there, and it is only
// ever logged.
type commandMessage struct {
	GateID    int             `json:"gateId"`
	Action    string          `json:"action"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// DecodeCommand parses an inbound command payload. A missing or zero gateId
// means gate 1, for compatibility with single-gate senders that omit the
// field. Malformed JSON or a missing action is an error: such payloads are
// dropped at the channel boundary and never reach the dispatcher, with no
// reply to the sender.
func DecodeCommand(payload []byte) (gate.Command, error) {
	var msg commandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return gate.Command{}, fmt.Errorf("parse command: %w", err)
	}
	if msg.Action == "" {
		return gate.Command{}, fmt.Errorf("parse command: missing action")
	}
	if msg.GateID == 0 {
		msg.GateID = 1
	}
	return gate.Command{
		GateID:    msg.GateID,
		Action:    msg.Action,
		Timestamp: strings.Trim(string(msg.Timestamp), `"`),
	}, nil
}

// StatusPayload is the wire form of a status publication.
type StatusPayload struct {
	GateID int    `json:"gateId,omitempty"`
	Status string `json:"status"`
}

// FormatStatusPayload creates the JSON payload for a gate transition.
func FormatStatusPayload(gateID int, status gate.Status) ([]byte, error) {
	return json.Marshal(StatusPayload{GateID: gateID, Status: string(status)})
}

// FormatOnlinePayload creates the JSON payload for the online announcement.
func FormatOnlinePayload() ([]byte, error) {
	return json.Marshal(StatusPayload{Status: StatusOnline})
}

// SystemPayload represents the message payload for system reports.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system report details.
type SystemPayloadInner struct {
	Timestamp     string       `json:"timestamp"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Gates         int          `json:"gates"`
	Counts        SystemCounts `json:"counts"`
}

// SystemCounts contains the activity counters of a system report.
type SystemCounts struct {
	Opened  int `json:"opened"`
	Closed  int `json:"closed"`
	Dropped int `json:"dropped"`
}

// FormatSystemPayload creates the JSON payload for a system report.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp:     event.Timestamp.UTC().Format(time.RFC3339),
			UptimeSeconds: int64(event.Uptime.Seconds()),
			Gates:         event.Gates,
			Counts: SystemCounts{
				Opened:  event.Counts.Opened,
				Closed:  event.Counts.Closed,
				Dropped: event.Counts.Dropped,
			},
		},
	}
	return json.Marshal(payload)
}
