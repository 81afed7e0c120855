package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "printbridge"
	if !strings.Contains(configDir, "printbridge") {
		t.Errorf("GetConfigDir() = %v, should contain 'printbridge'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Logf("Config path: %s", configPath)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Service == nil {
		t.Fatal("NewRegistry().Service should not be nil")
	}

	if reg.Service.BinaryPath != "printbridge-server" {
		t.Errorf("BinaryPath = %v, want 'printbridge-server'", reg.Service.BinaryPath)
	}

	if reg.Service.Host != "127.0.0.1" {
		t.Errorf("Host = %v, want '127.0.0.1'", reg.Service.Host)
	}

	if reg.Service.Port != 6789 {
		t.Errorf("Port = %v, want 6789", reg.Service.Port)
	}

	if reg.Service.StartupTimeout != 10 {
		t.Errorf("StartupTimeout = %v, want 10", reg.Service.StartupTimeout)
	}

	if reg.Defaults == nil {
		t.Error("NewRegistry().Defaults should not be nil")
	}
}

func TestRegistryDurations(t *testing.T) {
	reg := NewRegistry()

	if got := reg.StartupTimeout(); got != 10*time.Second {
		t.Errorf("StartupTimeout() = %v, want 10s", got)
	}

	if got := reg.RequestTimeout(); got != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want 5s", got)
	}

	// Zeroed sections fall back to safe defaults
	empty := &Registry{Version: 1}
	if got := empty.StartupTimeout(); got != 10*time.Second {
		t.Errorf("StartupTimeout() on empty registry = %v, want 10s", got)
	}
	if got := empty.ServiceBinary(); got != "printbridge-server" {
		t.Errorf("ServiceBinary() on empty registry = %v, want 'printbridge-server'", got)
	}
}

func TestRegistrySet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*Registry) bool
	}{
		{
			name:  "binary path",
			key:   "service.binary_path",
			value: "/opt/printbridge/printbridge-server",
			check: func(r *Registry) bool {
				return r.Service.BinaryPath == "/opt/printbridge/printbridge-server"
			},
		},
		{
			name:  "port",
			key:   "service.port",
			value: "9100",
			check: func(r *Registry) bool { return r.Service.Port == 9100 },
		},
		{
			name:    "port out of range",
			key:     "service.port",
			value:   "70000",
			wantErr: true,
		},
		{
			name:    "port not a number",
			key:     "service.port",
			value:   "auto",
			wantErr: true,
		},
		{
			name:  "startup timeout",
			key:   "service.startup_timeout",
			value: "30",
			check: func(r *Registry) bool { return r.Service.StartupTimeout == 30 },
		},
		{
			name:    "negative timeout",
			key:     "service.startup_timeout",
			value:   "-1",
			wantErr: true,
		},
		{
			name:  "log level",
			key:   "service.log_level",
			value: "debug",
			check: func(r *Registry) bool { return r.Service.LogLevel == "debug" },
		},
		{
			name:    "bad log level",
			key:     "service.log_level",
			value:   "loud",
			wantErr: true,
		},
		{
			name:  "mdns toggle",
			key:   "service.mdns",
			value: "true",
			check: func(r *Registry) bool { return r.Service.MDNS },
		},
		{
			name:  "default printer",
			key:   "defaults.printer",
			value: "Office_Laser",
			check: func(r *Registry) bool { return r.Defaults.Printer == "Office_Laser" },
		},
		{
			name:    "unknown key",
			key:     "service.color",
			value:   "always",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Set(tt.key, tt.value)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(reg) {
				t.Errorf("Set(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestSettableKeysCovered(t *testing.T) {
	reg := NewRegistry()
	values := map[string]string{
		"service.binary_path":     "bin",
		"service.host":            "0.0.0.0",
		"service.port":            "9100",
		"service.startup_timeout": "15",
		"service.request_timeout": "8",
		"service.log_level":       "info",
		"service.mdns":            "false",
		"defaults.printer":        "Receipt",
		"defaults.paper_size":     "80mm",
	}

	for _, key := range SettableKeys {
		value, ok := values[key]
		if !ok {
			t.Fatalf("no test value for settable key %s", key)
		}
		if err := reg.Set(key, value); err != nil {
			t.Errorf("Set(%q, %q) error = %v", key, value, err)
		}
		got, err := reg.Get(key)
		if err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
		if got != value {
			t.Errorf("Get(%q) = %q after Set(%q)", key, got, value)
		}
	}

	if _, err := reg.Get("service.nope"); err == nil {
		t.Error("Get with an unknown key should fail")
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Set("service.port", "9100"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := reg.Set("defaults.paper_size", "A4"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if loaded.Version != 1 {
		t.Errorf("loaded version = %v, want 1", loaded.Version)
	}
	if loaded.Service == nil || loaded.Service.Port != 9100 {
		t.Errorf("loaded port = %+v, want 9100", loaded.Service)
	}
	if loaded.Defaults == nil || loaded.Defaults.PaperSize != "A4" {
		t.Errorf("loaded paper size = %+v, want A4", loaded.Defaults)
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkRegistrySet(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Set("defaults.printer", "Office_Laser")
	}
}
