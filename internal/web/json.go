package web

import (
	"encoding/json"
	"time"

	"github.com/portones-fc/gate-gateway/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Gates         []GateJSON       `json:"gates"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Channel       ChannelStatus    `json:"channel"`
	Counts        CountsJSON       `json:"counts"`
	Drops         DropsJSON        `json:"drops"`
	Recent        []TransitionJSON `json:"recent,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// GateJSON is the JSON representation of one gate record.
type GateJSON struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

// ChannelStatus reports command channel connection state.
type ChannelStatus struct {
	Connected bool   `json:"connected"`
	Transport string `json:"transport"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	Opened  int `json:"opened"`
	Closed  int `json:"closed"`
	Dropped int `json:"dropped"`
}

// DropsJSON breaks dropped commands down by reason.
type DropsJSON struct {
	InvalidGate   int `json:"invalid_gate"`
	UnknownAction int `json:"unknown_action"`
	Busy          int `json:"busy"`
}

// TransitionJSON is the JSON representation of one recent transition.
type TransitionJSON struct {
	GateID int    `json:"gateId"`
	Status string `json:"status"`
	At     string `json:"at"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Gates       int    `json:"gates"`
	TickMs      int64  `json:"tick_ms"`
	OpenMs      int64  `json:"open_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Transport   string `json:"transport"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func formatJSON(snap status.Snapshot) []byte {
	gates := make([]GateJSON, len(snap.Gates))
	for i, g := range snap.Gates {
		gates[i] = GateJSON{ID: g.ID, State: string(g.State)}
	}

	recent := make([]TransitionJSON, len(snap.Recent))
	for i, tr := range snap.Recent {
		recent[i] = TransitionJSON{
			GateID: tr.GateID,
			Status: string(tr.Status),
			At:     tr.At.UTC().Format(time.RFC3339),
		}
	}

	sj := StatusJSON{
		Status: StatusInner{
			Gates:         gates,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			Channel: ChannelStatus{
				Connected: snap.ChannelConnected,
				Transport: snap.Config.Transport,
				Broker:    snap.Config.Broker,
			},
			Counts: CountsJSON{
				Opened:  snap.Counts.Opened,
				Closed:  snap.Counts.Closed,
				Dropped: snap.Counts.Dropped,
			},
			Drops: DropsJSON{
				InvalidGate:   snap.Drops.InvalidGate,
				UnknownAction: snap.Drops.UnknownAction,
				Busy:          snap.Drops.Busy,
			},
			Recent: recent,
			Config: ConfigJSON{
				Gates:       snap.Config.Gates,
				TickMs:      snap.Config.TickMs,
				OpenMs:      snap.Config.OpenMs,
				HeartbeatMs: snap.Config.HeartbeatMs,
				Transport:   snap.Config.Transport,
				Broker:      snap.Config.Broker,
				HTTPAddr:    snap.Config.HTTPAddr,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
