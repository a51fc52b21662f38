// ABOUTME: Run configuration, YAML loading, and startup validation
// ABOUTME: Bounds client/sample counts and checks the endpoint before any session starts
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/echolat/echolat-go/internal/protocol"
	"gopkg.in/yaml.v3"
)

// Hard bounds enforced at validation time. The client bound exists to
// avoid overwhelming a remote responder with concurrent sessions.
const (
	MaxClients = 64
	MaxSamples = 1000
)

// Defaults applied when a field is unset.
const (
	DefaultClients        = 1
	DefaultSamples        = 10
	DefaultSampleInterval = 100 * time.Millisecond
)

// Config holds one run's configuration. Immutable for the duration of
// the run; validated once at startup.
type Config struct {
	Clients        int           `yaml:"clients"`
	Samples        int           `yaml:"samples"`
	Endpoint       string        `yaml:"endpoint"`
	Region         string        `yaml:"region"`
	Processing     bool          `yaml:"processing"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	ExportPath     string        `yaml:"export_path"`
	Logging        LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls log level, destination, and file rotation.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxAge    int    `yaml:"max_age"`
	Compress  bool   `yaml:"compress"`
}

// Error describes an invalid configuration field. The run never starts
// when validation fails.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Clients:        DefaultClients,
		Samples:        DefaultSamples,
		SampleInterval: DefaultSampleInterval,
		Logging: LoggingConfig{
			Level:     "info",
			File:      "echolat.log",
			MaxSizeMB: 10,
			MaxAge:    7,
		},
	}
}

// Load reads a YAML config file and applies defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Clients == 0 {
		c.Clients = DefaultClients
	}
	if c.Samples == 0 {
		c.Samples = DefaultSamples
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = DefaultSampleInterval
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 7
	}
}

// Validate checks all fields. It returns a *Error naming the first
// offending field.
func (c *Config) Validate() error {
	if c.Clients < 1 {
		return &Error{Field: "clients", Reason: "must be at least 1"}
	}
	if c.Clients > MaxClients {
		return &Error{Field: "clients", Reason: fmt.Sprintf("must be at most %d", MaxClients)}
	}
	if c.Samples < 1 {
		return &Error{Field: "samples", Reason: "must be at least 1"}
	}
	if c.Samples > MaxSamples {
		return &Error{Field: "samples", Reason: fmt.Sprintf("must be at most %d", MaxSamples)}
	}
	if c.Endpoint == "" {
		return &Error{Field: "endpoint", Reason: "must not be empty"}
	}
	if err := validateEndpoint(c.Endpoint); err != nil {
		return &Error{Field: "endpoint", Reason: err.Error()}
	}
	if c.SampleInterval < 0 {
		return &Error{Field: "sample_interval", Reason: "must not be negative"}
	}
	if strings.ContainsAny(c.Region, " /?&=") {
		return &Error{Field: "region", Reason: "must be a bare region identifier"}
	}
	return nil
}

// validateEndpoint accepts host:port or a ws:// / wss:// URL.
func validateEndpoint(endpoint string) error {
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("not a valid URL: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("scheme must be ws or wss, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("missing host")
		}
		return nil
	}
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// EndpointURL builds the full connection URL including the mode and
// region query parameters. The core forwards both as opaque strings.
func (c *Config) EndpointURL() (string, error) {
	raw := c.Endpoint
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw + "/echo"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Path == "" {
		u.Path = "/echo"
	}

	q := u.Query()
	mode := protocol.ModeBaseline
	if c.Processing {
		mode = protocol.ModeProcessing
	}
	q.Set(protocol.ParamMode, mode)
	if c.Region != "" {
		q.Set(protocol.ParamRegion, c.Region)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
