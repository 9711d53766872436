// Package config provides user configuration management for the paygo tools.
//
// This package manages a YAML-based configuration file that stores metadata
// for managed devices: aliases, keypad family, per-device message identifier
// bookkeeping, and application preferences. The keycode core is stateless;
// the identifier counter a device expects next lives here, on the issuing
// side, and advances every time a credit message is generated.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/paygo/config.yaml or $HOME/.config/paygo/config.yaml
//   - macOS: $HOME/.config/paygo/config.yaml
//   - Windows: %LOCALAPPDATA%\paygo\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores device secret keys. The registry
// holds at most a path to a key file; key bytes are read when a keycode is
// generated and discarded afterwards.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	device := registry.EnsureDevice("PG-000123")
//	device.Alias = "Kiosk lamp 3"
//	device.KeyFile = "/secure/keys/PG-000123.key"
//
//	// After issuing a message with identifier id:
//	registry.RecordIssued("PG-000123", id)
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package config
