package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MAX_WORKERS", "PORTRAIT_DIR", "SNAPSHOT_DIR", "MATCH_POLICY", "ENCODING_DIM", "NX_TIMEOUT", "USE_NX_WITNESS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Workers.Size != 5 {
		t.Errorf("expected 5 workers, got %d", cfg.Workers.Size)
	}
	if cfg.Storage.PortraitDir != "uploads/portraits" {
		t.Errorf("expected default portrait dir, got '%s'", cfg.Storage.PortraitDir)
	}
	if cfg.Storage.SnapshotDir != "uploads/face_capture" {
		t.Errorf("expected default snapshot dir, got '%s'", cfg.Storage.SnapshotDir)
	}
	if cfg.Match.Policy != "first" {
		t.Errorf("expected first match policy, got '%s'", cfg.Match.Policy)
	}
	if cfg.Encoder.Dim != 128 {
		t.Errorf("expected encoding dim 128, got %d", cfg.Encoder.Dim)
	}
	if cfg.NX.Timeout != 10*time.Second {
		t.Errorf("expected 10s NX timeout, got %v", cfg.NX.Timeout)
	}
	if cfg.NX.Enabled {
		t.Error("expected NX Witness to be disabled by default")
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", 7},
		{"valid", "12", 12},
		{"invalid", "abc", 7},
		{"zero", "0", 7},
		{"negative", "-3", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 7); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestEnvNonNegInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", 7},
		{"zero", "0", 0},
		{"valid", "12", 12},
		{"negative", "-3", 7},
		{"invalid", "abc", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_NON_NEG_INT", tt.value)
			if got := envNonNegInt("TEST_ENV_NON_NEG_INT", 7); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestLoad_ZeroWorkerQueue(t *testing.T) {
	t.Setenv("WORKER_QUEUE_SIZE", "0")
	cfg := Load()
	if cfg.Workers.QueueSize != 0 {
		t.Errorf("expected queue size 0, got %d", cfg.Workers.QueueSize)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"on", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tt.value)
			if got := envBool("TEST_ENV_BOOL"); got != tt.expected {
				t.Errorf("envBool(%q) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_ENV_DURATION", "15")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != 15*time.Second {
		t.Errorf("expected 15s for plain seconds, got %v", got)
	}

	t.Setenv("TEST_ENV_DURATION", "250ms")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}

	t.Setenv("TEST_ENV_DURATION", "soon")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != time.Second {
		t.Errorf("expected default for invalid value, got %v", got)
	}
}

func TestParseCameraDevices(t *testing.T) {
	devices := parseCameraDevices(" 1=dev-a, 2 = dev-b ,broken,=x,3=")

	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d: %v", len(devices), devices)
	}
	if devices["1"] != "dev-a" {
		t.Errorf("expected dev-a for camera 1, got '%s'", devices["1"])
	}
	if devices["2"] != "dev-b" {
		t.Errorf("expected dev-b for camera 2, got '%s'", devices["2"])
	}
}

func TestNXWitnessConfig_BookmarkURL(t *testing.T) {
	cfg := NXWitnessConfig{ServerIP: "10.0.0.5", ServerPort: "7001"}

	expected := "http://10.0.0.5:7001/rest/v2/devices/dev-1/bookmarks"
	if got := cfg.BookmarkURL("dev-1"); got != expected {
		t.Errorf("expected '%s', got '%s'", expected, got)
	}

	cfg.URLTemplate = "https://nx.example.com/rest/v2/devices/{deviceId}/bookmarks"
	expected = "https://nx.example.com/rest/v2/devices/dev-2/bookmarks"
	if got := cfg.BookmarkURL("dev-2"); got != expected {
		t.Errorf("expected '%s', got '%s'", expected, got)
	}
}

func TestNXWitnessConfig_DeviceFor(t *testing.T) {
	cfg := NXWitnessConfig{
		DeviceID:      "default-device",
		CameraDevices: map[string]string{"3": "camera-three"},
	}

	if got := cfg.DeviceFor("3"); got != "camera-three" {
		t.Errorf("expected mapped device, got '%s'", got)
	}
	if got := cfg.DeviceFor("9"); got != "default-device" {
		t.Errorf("expected fallback device for unmapped camera, got '%s'", got)
	}
	if got := cfg.DeviceFor(""); got != "default-device" {
		t.Errorf("expected fallback device without camera, got '%s'", got)
	}
}

func TestNXWitnessConfig_Configured(t *testing.T) {
	if (&NXWitnessConfig{}).Configured() {
		t.Error("expected empty config to be unconfigured")
	}
	if (&NXWitnessConfig{ServerIP: "10.0.0.5"}).Configured() {
		t.Error("expected config without devices to be unconfigured")
	}
	if !(&NXWitnessConfig{ServerIP: "10.0.0.5", DeviceID: "d"}).Configured() {
		t.Error("expected config with server and device to be configured")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
		Admin:    AdminConfig{Username: "admin", Password: "secret"},
		Match:    MatchConfig{Policy: "first"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.Database.URL = ""
	cfg.Match.Policy = "closest"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") || !strings.Contains(err.Error(), "MATCH_POLICY") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}
