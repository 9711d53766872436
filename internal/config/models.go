package config

import (
	"math"
	"time"
)

// DefaultCollisionRetries is the retry bound applied when the preferences
// don't set one.
const DefaultCollisionRetries = 3

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device serial number
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents issuing-side state for a single PAYG device.
// This is keyed by the device's serial number in the Registry.
type Device struct {
	Alias string `yaml:"alias,omitempty"` // User-friendly name
	// Family is the device keypad family: "full" or "small".
	Family string `yaml:"family,omitempty"`
	// NextID is the next unissued message identifier for this device.
	// Credit messages are one-shot per identifier, so this must advance
	// past every identifier actually used.
	NextID uint32 `yaml:"next_id"`
	// KeyFile is the path to the device's 16-byte secret key file.
	// Key bytes are NEVER stored in this file.
	KeyFile    string    `yaml:"key_file,omitempty"`
	LastIssued time.Time `yaml:"last_issued,omitempty"` // Time of the last issued keycode
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	// CollisionRetries bounds how many replacement identifiers are tried
	// when one is rejected as ambiguous. Zero means the default.
	CollisionRetries int `yaml:"collision_retries,omitempty"`
	// DefaultFamily preselects the keypad family in the wizard.
	DefaultFamily string `yaml:"default_family,omitempty"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			CollisionRetries: DefaultCollisionRetries,
			DefaultFamily:    "full",
		},
	}
}

// GetDevice retrieves device state by serial number.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(serial string) *Device {
	return r.Devices[serial]
}

// EnsureDevice ensures a device entry exists in the registry.
// If the device doesn't exist, creates a new entry with default values.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(serial string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[serial]; exists {
		return device
	}

	device := &Device{Family: "full"}
	r.Devices[serial] = device
	return device
}

// RecordIssued marks usedID as consumed for a device: the next identifier
// becomes usedID+1 and the issue time is updated. Identifiers never move
// backwards, so replayed saves cannot resurrect a spent identifier. At the
// top of the 32-bit space the counter saturates instead of wrapping to 0.
func (r *Registry) RecordIssued(serial string, usedID uint32) {
	device := r.EnsureDevice(serial)
	if usedID == math.MaxUint32 {
		device.NextID = math.MaxUint32
	} else if usedID+1 > device.NextID {
		device.NextID = usedID + 1
	}
	device.LastIssued = time.Now()
}

// SetDeviceAlias sets a user-friendly alias for a device.
func (r *Registry) SetDeviceAlias(serial, alias string) {
	r.EnsureDevice(serial).Alias = alias
}

// SetDeviceKeyFile records where a device's secret key file lives.
func (r *Registry) SetDeviceKeyFile(serial, path string) {
	r.EnsureDevice(serial).KeyFile = path
}

// CollisionRetries returns the configured retry bound, falling back to the
// default when preferences are absent or zero.
func (r *Registry) CollisionRetries() int {
	if r.Preferences == nil || r.Preferences.CollisionRetries <= 0 {
		return DefaultCollisionRetries
	}
	return r.Preferences.CollisionRetries
}
