// Package config provides user configuration management for PrintBridge.
//
// This package manages a YAML-based configuration file that stores service
// launch settings (binary path, host, port, timeouts) and print defaults
// (printer, paper size) for the printbridge CLI and client library. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/printbridge/config.yaml or $HOME/.config/printbridge/config.yaml
//   - macOS: $HOME/.config/printbridge/config.yaml
//   - Windows: %LOCALAPPDATA%\printbridge\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Update a value by its dotted key (as the CLI does)
//	if err := registry.Set("defaults.printer", "Office_Laser"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file yields the built-in defaults, so first run needs no setup.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
