package config

import (
	"fmt"
	"strconv"
	"time"
)

// Registry represents the entire user configuration file.
// It stores how the client locates and launches the service plus
// print defaults applied when a request leaves them blank.
type Registry struct {
	Version  int            `yaml:"version"`
	Service  *ServicePrefs  `yaml:"service,omitempty"`
	Defaults *PrintDefaults `yaml:"defaults,omitempty"`
}

// ServicePrefs controls service location and launch behavior.
type ServicePrefs struct {
	BinaryPath     string `yaml:"binary_path"`     // service executable; bare names resolve via PATH
	Host           string `yaml:"host"`            // bind address for fixed-port mode
	Port           int    `yaml:"port"`            // listen port for fixed-port mode
	StartupTimeout int    `yaml:"startup_timeout"` // seconds to wait for the port announcement
	RequestTimeout int    `yaml:"request_timeout"` // seconds per API request
	LogLevel       string `yaml:"log_level,omitempty"`
	MDNS           bool   `yaml:"mdns"` // advertise the service over mDNS
}

// PrintDefaults are filled into print requests that omit them.
type PrintDefaults struct {
	Printer   string `yaml:"printer,omitempty"`
	PaperSize string `yaml:"paper_size,omitempty"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Service: &ServicePrefs{
			BinaryPath:     "printbridge-server",
			Host:           "127.0.0.1",
			Port:           6789,
			StartupTimeout: 10,
			RequestTimeout: 5,
		},
		Defaults: &PrintDefaults{},
	}
}

// StartupTimeout returns the configured startup wait as a duration.
func (r *Registry) StartupTimeout() time.Duration {
	if r.Service == nil || r.Service.StartupTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(r.Service.StartupTimeout) * time.Second
}

// RequestTimeout returns the configured per-request budget as a duration.
func (r *Registry) RequestTimeout() time.Duration {
	if r.Service == nil || r.Service.RequestTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.Service.RequestTimeout) * time.Second
}

// ServiceBinary returns the configured service executable path.
func (r *Registry) ServiceBinary() string {
	if r.Service == nil || r.Service.BinaryPath == "" {
		return "printbridge-server"
	}
	return r.Service.BinaryPath
}

// SettableKeys lists the dotted keys accepted by Set, in display order.
var SettableKeys = []string{
	"service.binary_path",
	"service.host",
	"service.port",
	"service.startup_timeout",
	"service.request_timeout",
	"service.log_level",
	"service.mdns",
	"defaults.printer",
	"defaults.paper_size",
}

// Get returns the current value of a dotted key as a display string.
func (r *Registry) Get(key string) (string, error) {
	service := r.Service
	if service == nil {
		service = NewRegistry().Service
	}
	defaults := r.Defaults
	if defaults == nil {
		defaults = &PrintDefaults{}
	}

	switch key {
	case "service.binary_path":
		return service.BinaryPath, nil
	case "service.host":
		return service.Host, nil
	case "service.port":
		return strconv.Itoa(service.Port), nil
	case "service.startup_timeout":
		return strconv.Itoa(service.StartupTimeout), nil
	case "service.request_timeout":
		return strconv.Itoa(service.RequestTimeout), nil
	case "service.log_level":
		return service.LogLevel, nil
	case "service.mdns":
		return strconv.FormatBool(service.MDNS), nil
	case "defaults.printer":
		return defaults.Printer, nil
	case "defaults.paper_size":
		return defaults.PaperSize, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set updates a single configuration value addressed by its dotted key.
// Values arrive as strings from the CLI and are converted per field.
func (r *Registry) Set(key, value string) error {
	if r.Service == nil {
		r.Service = NewRegistry().Service
	}
	if r.Defaults == nil {
		r.Defaults = &PrintDefaults{}
	}

	switch key {
	case "service.binary_path":
		r.Service.BinaryPath = value
	case "service.host":
		r.Service.Host = value
	case "service.port":
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q: must be 1-65535", value)
		}
		r.Service.Port = port
	case "service.startup_timeout":
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 1 {
			return fmt.Errorf("invalid startup_timeout %q: must be a positive number of seconds", value)
		}
		r.Service.StartupTimeout = secs
	case "service.request_timeout":
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 1 {
			return fmt.Errorf("invalid request_timeout %q: must be a positive number of seconds", value)
		}
		r.Service.RequestTimeout = secs
	case "service.log_level":
		switch value {
		case "", "debug", "info", "warn", "error":
			r.Service.LogLevel = value
		default:
			return fmt.Errorf("invalid log_level %q: use debug, info, warn or error", value)
		}
	case "service.mdns":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid mdns %q: use true or false", value)
		}
		r.Service.MDNS = enabled
	case "defaults.printer":
		r.Defaults.Printer = value
	case "defaults.paper_size":
		r.Defaults.PaperSize = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
