package config

import (
	"bytes"
	"math"
	"os"
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

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "paygo") {
		t.Errorf("GetConfigDir() = %v, should contain 'paygo'", configDir)
	}

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
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.CollisionRetries != DefaultCollisionRetries {
		t.Errorf("CollisionRetries = %v, want %v", reg.Preferences.CollisionRetries, DefaultCollisionRetries)
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("PG-000123")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}
	if device1.Family != "full" {
		t.Errorf("new device family = %q, want full", device1.Family)
	}
	if device1.NextID != 0 {
		t.Errorf("new device NextID = %d, want 0", device1.NextID)
	}

	device2 := reg.EnsureDevice("PG-000123")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same serial")
	}

	device3 := reg.EnsureDevice("PG-000789")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different serial")
	}
}

func TestRegistryRecordIssued(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RecordIssued("PG-000123", 5)
	after := time.Now()

	device := reg.GetDevice("PG-000123")
	if device == nil {
		t.Fatal("device should exist after RecordIssued()")
	}
	if device.NextID != 6 {
		t.Errorf("NextID = %d, want 6", device.NextID)
	}
	if device.LastIssued.Before(before) || device.LastIssued.After(after) {
		t.Errorf("LastIssued = %v, should be between %v and %v", device.LastIssued, before, after)
	}

	// A replayed lower identifier must not move the counter backwards.
	reg.RecordIssued("PG-000123", 2)
	if device.NextID != 6 {
		t.Errorf("NextID = %d after replay, want 6", device.NextID)
	}

	// Retried identifiers can skip ahead.
	reg.RecordIssued("PG-000123", 63)
	if device.NextID != 64 {
		t.Errorf("NextID = %d, want 64", device.NextID)
	}

	// At the identifier ceiling the counter saturates rather than wrapping
	// back to 0, which would silently re-open spent identifiers.
	reg.RecordIssued("PG-000123", math.MaxUint32)
	if device.NextID != math.MaxUint32 {
		t.Errorf("NextID = %d at ceiling, want %d", device.NextID, uint32(math.MaxUint32))
	}
	reg.RecordIssued("PG-000123", math.MaxUint32)
	if device.NextID != math.MaxUint32 {
		t.Errorf("NextID = %d after repeat at ceiling, want %d", device.NextID, uint32(math.MaxUint32))
	}
}

func TestCollisionRetriesFallback(t *testing.T) {
	reg := &Registry{Version: 1}
	if got := reg.CollisionRetries(); got != DefaultCollisionRetries {
		t.Errorf("CollisionRetries() = %d, want default %d", got, DefaultCollisionRetries)
	}
	reg.Preferences = &Preferences{CollisionRetries: 7}
	if got := reg.CollisionRetries(); got != 7 {
		t.Errorf("CollisionRetries() = %d, want 7", got)
	}
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.EnsureDevice("PG-000123").Alias = "Kiosk lamp 3"
	reg.SetDeviceKeyFile("PG-000123", "/secure/keys/PG-000123.key")
	reg.RecordIssued("PG-000123", 17)

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("marshalled config mentions secrets:\n%s", data)
	}

	var back Registry
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	device := back.GetDevice("PG-000123")
	if device == nil {
		t.Fatal("device lost in round trip")
	}
	if device.NextID != 18 {
		t.Errorf("NextID = %d, want 18", device.NextID)
	}
	if device.KeyFile != "/secure/keys/PG-000123.key" {
		t.Errorf("KeyFile = %q", device.KeyFile)
	}
}

func TestReadKeyFile(t *testing.T) {
	dir := t.TempDir()

	raw := filepath.Join(dir, "raw.key")
	want := bytes.Repeat([]byte{0xAB}, KeyLen)
	if err := os.WriteFile(raw, want, 0600); err != nil {
		t.Fatal(err)
	}
	got, err := ReadKeyFile(raw)
	if err != nil {
		t.Fatalf("raw key: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("raw key bytes mangled")
	}

	hexFile := filepath.Join(dir, "hex.key")
	if err := os.WriteFile(hexFile, []byte("abababababababababababababababab\n"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err = ReadKeyFile(hexFile)
	if err != nil {
		t.Fatalf("hex key: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("hex key decoded incorrectly")
	}

	bad := filepath.Join(dir, "bad.key")
	if err := os.WriteFile(bad, []byte("too short"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKeyFile(bad); err == nil {
		t.Error("short key file accepted")
	}
	if _, err := ReadKeyFile(filepath.Join(dir, "missing.key")); err == nil {
		t.Error("missing key file accepted")
	}
}
