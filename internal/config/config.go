// Package config loads gateway configuration from an optional YAML file
// layered over built-in defaults: broker credentials, topics, GPIO pins,
// and timing constants.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the full gateway configuration.
type Config struct {
	// Gates is the number of gate actuators, IDs 1..Gates.
	Gates int `yaml:"gates"`

	// OpenDuration is how long a gate stays open before the scheduler
	// closes it. Shared by all gates.
	OpenDuration Duration `yaml:"open_duration"`

	// Tick is the scheduler polling interval.
	Tick Duration `yaml:"tick"`

	// Heartbeat is the system report interval (0 disables).
	Heartbeat Duration `yaml:"heartbeat"`

	// Transport selects the channel backend: "mqtt" or "nats".
	Transport string `yaml:"transport"`

	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	CommandTopic string `yaml:"command_topic"`
	StatusTopic  string `yaml:"status_topic"`
	SystemTopic  string `yaml:"system_topic"`

	// Chip is the GPIO character device name.
	Chip string `yaml:"chip"`

	// Pins holds one GPIO output line per gate (BCM numbering),
	// Pins[i] driving gate i+1.
	Pins []int `yaml:"pins"`

	// HTTPAddr is the status page listen address (empty disables).
	HTTPAddr string `yaml:"http"`

	// Discovery enables mDNS advertisement of the status endpoint.
	Discovery bool `yaml:"discovery"`

	// Instance is the mDNS instance name.
	Instance string `yaml:"instance"`
}

// Default returns the built-in configuration: a single gate, 5 second open
// duration, 10ms scheduler tick.
func Default() Config {
	return Config{
		Gates:        1,
		OpenDuration: Duration(5000 * time.Millisecond),
		Tick:         Duration(10 * time.Millisecond),
		Heartbeat:    Duration(15 * time.Minute),
		Transport:    "mqtt",
		Broker:       "tcp://localhost:1883",
		CommandTopic: "portones/gate/command",
		StatusTopic:  "portones/gate/status",
		SystemTopic:  "portones/gate/system",
		Chip:         "gpiochip0",
		Pins:         []int{13},
		HTTPAddr:     ":8080",
		Instance:     "gate-gateway",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the gateway cannot run with.
func (c Config) Validate() error {
	if c.Gates < 1 {
		return fmt.Errorf("gates must be at least 1, got %d", c.Gates)
	}
	if c.OpenDuration <= 0 {
		return fmt.Errorf("open_duration must be positive, got %v", time.Duration(c.OpenDuration))
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", time.Duration(c.Tick))
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", time.Duration(c.Heartbeat))
	}
	if c.Transport != "mqtt" && c.Transport != "nats" {
		return fmt.Errorf("transport must be mqtt or nats, got %q", c.Transport)
	}
	if c.Broker == "" {
		return fmt.Errorf("broker must be set")
	}
	if c.CommandTopic == "" || c.StatusTopic == "" {
		return fmt.Errorf("command_topic and status_topic must be set")
	}
	if len(c.Pins) != c.Gates {
		return fmt.Errorf("pins must list one line per gate: %d pins for %d gates", len(c.Pins), c.Gates)
	}
	return nil
}

// Dump renders the effective configuration as YAML.
func (c Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}
