// Package config loads hidscan configuration files.
//
// A configuration file is YAML:
//
//	source:
//	  kind: evdev
//	  device: /dev/input/by-id/usb-Scanner-event-kbd
//	  grab: true
//	capture:
//	  path: /var/log/hidscan/scanner.klog
//	  console: false
//	log_level: info
//	output: json
//
// The debounce window and the terminator key are fixed by the decoder and
// have no configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	// SourceEvdev reads a Linux input device.
	SourceEvdev = "evdev"

	// SourceConsole reads simulated bursts from the interactive console.
	SourceConsole = "console"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Validation errors.
var (
	ErrUnknownSource   = errors.New("unknown source kind")
	ErrDeviceRequired  = errors.New("evdev source requires a device path")
	ErrUnknownLogLevel = errors.New("unknown log level")
	ErrUnknownOutput   = errors.New("unknown output format")
)

// Config is the hidscan configuration.
type Config struct {
	Source   Source  `yaml:"source"`
	Capture  Capture `yaml:"capture"`
	LogLevel string  `yaml:"log_level"`
	Output   string  `yaml:"output"`
}

// Source selects where key presses come from.
type Source struct {
	// Kind is "evdev" or "console".
	Kind string `yaml:"kind"`

	// Device is the input device path for evdev.
	Device string `yaml:"device"`

	// Grab requests exclusive access to the device.
	Grab bool `yaml:"grab"`
}

// Capture configures diagnostic capture.
type Capture struct {
	// Path of the capture file. Empty disables file capture.
	Path string `yaml:"path"`

	// Console logs capture events through slog.
	Console bool `yaml:"console"`
}

// Enabled reports whether any capture output is configured.
func (c Capture) Enabled() bool {
	return c.Path != "" || c.Console
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Source:   Source{Kind: SourceConsole},
		LogLevel: "info",
		Output:   OutputText,
	}
}

// Parse parses YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceConsole:
	case SourceEvdev:
		if c.Source.Device == "" {
			return ErrDeviceRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source.Kind)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel)
	}

	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, c.Output)
	}
	return nil
}

// LoadError describes a configuration that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
