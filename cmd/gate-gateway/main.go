// Command gate-gateway drives remote-controlled gate actuators from pub/sub
// open commands, auto-closing each gate after a fixed open duration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/portones-fc/gate-gateway/internal/actuator"
	"github.com/portones-fc/gate-gateway/internal/channel"
	"github.com/portones-fc/gate-gateway/internal/config"
	"github.com/portones-fc/gate-gateway/internal/discovery"
	"github.com/portones-fc/gate-gateway/internal/gate"
	"github.com/portones-fc/gate-gateway/internal/status"
	"github.com/portones-fc/gate-gateway/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	tick := flag.Duration("tick", 0, "scheduler polling interval (0 = from config)")
	open := flag.Duration("open", 0, "gate open duration (0 = from config)")
	heartbeat := flag.Duration("heartbeat", -1, "system heartbeat interval (0 disables, -1 = from config)")
	transport := flag.String("transport", "", "channel transport, mqtt or nats (empty = from config)")
	broker := flag.String("broker", "", "broker URL (empty = from config)")
	httpAddr := flag.String("http", "=config", `HTTP status address ("" disables, "=config" = from config)`)
	printConfig := flag.Bool("print-config", false, "print effective configuration and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *tick > 0 {
		cfg.Tick = config.Duration(*tick)
	}
	if *open > 0 {
		cfg.OpenDuration = config.Duration(*open)
	}
	if *heartbeat >= 0 {
		cfg.Heartbeat = config.Duration(*heartbeat)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	if *httpAddr != "=config" {
		cfg.HTTPAddr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: invalid configuration: %v", err)
	}

	if *printConfig {
		out, err := cfg.Dump()
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		fmt.Print(out)
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	driver, err := actuator.NewRealDriver(cfg.Chip, cfg.Pins)
	if err != nil {
		return fmt.Errorf("init actuator: %w", err)
	}
	defer driver.Close()

	// Every gate boots closed before any command can arrive.
	for id := 1; id <= cfg.Gates; id++ {
		if err := driver.SetPosition(id, actuator.PositionClosed); err != nil {
			return fmt.Errorf("drive gate %d closed: %w", id, err)
		}
	}

	conn, err := newConn(cfg)
	if err != nil {
		return fmt.Errorf("connect channel: %w", err)
	}
	defer conn.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Gates:       cfg.Gates,
		TickMs:      time.Duration(cfg.Tick).Milliseconds(),
		OpenMs:      time.Duration(cfg.OpenDuration).Milliseconds(),
		HeartbeatMs: time.Duration(cfg.Heartbeat).Milliseconds(),
		Transport:   cfg.Transport,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	if cfg.Discovery && cfg.HTTPAddr != "" {
		if port, err := httpPort(cfg.HTTPAddr); err != nil {
			log.Printf("mdns: cannot derive port from %q: %v", cfg.HTTPAddr, err)
		} else if adv, err := discovery.Advertise(cfg.Instance, port, cfg.Gates); err != nil {
			log.Printf("mdns advertise error: %v", err)
		} else {
			defer adv.Shutdown()
			log.Printf("mdns: advertising %s on port %d", cfg.Instance, port)
		}
	}

	log.Printf("started: gates=%d tick=%v open=%v transport=%s broker=%s",
		cfg.Gates, time.Duration(cfg.Tick), time.Duration(cfg.OpenDuration), cfg.Transport, cfg.Broker)

	reg := gate.NewRegistry(cfg.Gates)
	disp := gate.NewDispatcher(reg)
	sched := gate.NewScheduler(reg, time.Duration(cfg.OpenDuration))

	ticker := time.NewTicker(time.Duration(cfg.Tick))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var connStatus channel.ConnectionStatus
	if cs, ok := conn.(channel.ConnectionStatus); ok {
		connStatus = cs
	}

	return runLoop(conn, connStatus, driver, reg, disp, sched, tracker,
		time.Duration(cfg.Heartbeat), time.Now, ticker.C, sigCh)
}

// newConn opens the configured channel backend.
func newConn(cfg config.Config) (channel.Conn, error) {
	opts := channel.Options{
		Broker:       cfg.Broker,
		ClientID:     cfg.ClientID,
		Username:     cfg.Username,
		Password:     cfg.Password,
		CommandTopic: cfg.CommandTopic,
		StatusTopic:  cfg.StatusTopic,
		SystemTopic:  cfg.SystemTopic,
	}
	switch cfg.Transport {
	case "nats":
		return channel.NewNATSConn(opts)
	default:
		return channel.NewMQTTConn(opts)
	}
}

// runLoop is the single thread of control: it services inbound commands and
// the scheduler tick from one select, so gate state never needs locking.
// A command or tick runs to completion before the next is taken.
func runLoop(conn channel.Conn, connStatus channel.ConnectionStatus, driver actuator.Driver, reg *gate.Registry, disp *gate.Dispatcher, sched *gate.Scheduler, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	start := now()
	lastHeartbeat := start

	// apply actuates a transition and then publishes it, in that order.
	// Both are best-effort: the registry already holds the authoritative
	// state and a failed actuation or publish is never rolled back.
	apply := func(ev gate.Event, at time.Time) {
		pos := actuator.PositionClosed
		if ev.Status == gate.StatusOpen {
			pos = actuator.PositionOpen
		}
		if err := driver.SetPosition(ev.GateID, pos); err != nil {
			log.Printf("actuate gate %d %s: %v", ev.GateID, ev.Status, err)
		}
		if err := conn.PublishStatus(ev.GateID, ev.Status); err != nil {
			log.Printf("publish status error: %v", err)
		}
		tracker.RecordTransition(ev.GateID, ev.Status, at)
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			t := now()
			for _, ev := range sched.CloseAll() {
				log.Printf("closing gate %d on shutdown", ev.GateID)
				apply(ev, t)
			}
			tracker.UpdateGates(reg.Snapshot())
			return nil

		case cmd, ok := <-conn.Commands():
			if !ok {
				return fmt.Errorf("command channel closed")
			}
			t := now()
			if cmd.Timestamp != "" {
				log.Printf("command for gate %d sent at %s", cmd.GateID, cmd.Timestamp)
			}
			ev, drop := disp.Handle(cmd, gate.MillisSince(start, t))
			if drop != gate.DropNone {
				log.Printf("drop command for gate %d: %s", cmd.GateID, drop)
				tracker.RecordDrop(drop)
				continue
			}
			log.Printf("gate %d OPEN", ev.GateID)
			apply(ev, t)
			tracker.UpdateGates(reg.Snapshot())

		case <-tick:
			t := now()
			for _, ev := range sched.Tick(gate.MillisSince(start, t)) {
				log.Printf("gate %d CLOSED after open duration", ev.GateID)
				apply(ev, t)
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				counts := tracker.Counts()
				hb := channel.SystemEvent{
					Timestamp: t,
					Uptime:    t.Sub(start),
					Gates:     reg.Len(),
					Counts: channel.Counts{
						Opened:  counts.Opened,
						Closed:  counts.Closed,
						Dropped: counts.Dropped,
					},
				}
				if err := conn.PublishSystem(hb); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			tracker.UpdateGates(reg.Snapshot())
			if connStatus != nil {
				tracker.SetChannelConnected(connStatus.IsConnected())
			}
		}
	}
}

// httpPort extracts the port number from a listen address like ":8080".
func httpPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	return port, nil
}
