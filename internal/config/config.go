package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/face-engine/internal/constants"
)

type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Workers  WorkersConfig
	Admin    AdminConfig
	Encoder  EncoderConfig
	Match    MatchConfig
	NX       NXWitnessConfig
	Log      LogConfig
	Metrics  MetricsConfig
	Web      WebConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type StorageConfig struct {
	PortraitDir string // defaults to uploads/portraits
	SnapshotDir string // defaults to uploads/face_capture
}

type WorkersConfig struct {
	Size      int // concurrent jobs (default 5)
	QueueSize int // jobs allowed to wait for a slot (default 64)
}

type AdminConfig struct {
	Username string
	Password string // plain text or a bcrypt hash
}

type EncoderConfig struct {
	URL          string        // face embedding server, defaults to http://localhost:8000
	Dim          int           // expected encoding length (default 128)
	Timeout      time.Duration // per request (default 30s)
	MaxImageSize int           // frames larger than this are downsized (default 1920)
}

type MatchConfig struct {
	Policy string // first or best
}

type NXWitnessConfig struct {
	Enabled       bool
	ServerIP      string
	ServerPort    string
	URLTemplate   string // optional, overrides the URL built from ServerIP and ServerPort
	User          string
	Password      string
	DeviceID      string // fallback device for uploads without a camera mapping
	ServerID      string
	CameraDevices map[string]string // camera id -> device id
	Timeout       time.Duration
	Retries       int
	QueueSize     int
	InsecureTLS   bool
}

// Configured reports whether bookmarks can be sent at all.
func (c *NXWitnessConfig) Configured() bool {
	if c.URLTemplate == "" && c.ServerIP == "" {
		return false
	}
	return c.DeviceID != "" || len(c.CameraDevices) > 0
}

// BookmarkURL returns the bookmark endpoint for the given device.
func (c *NXWitnessConfig) BookmarkURL(deviceID string) string {
	if c.URLTemplate != "" {
		return strings.ReplaceAll(c.URLTemplate, "{deviceId}", deviceID)
	}
	host := c.ServerIP
	if c.ServerPort != "" {
		host += ":" + c.ServerPort
	}
	return fmt.Sprintf("http://%s/rest/v2/devices/%s/bookmarks", host, deviceID)
}

// DeviceFor returns the NX device assigned to a camera, falling back to DeviceID.
func (c *NXWitnessConfig) DeviceFor(cameraID string) string {
	if cameraID != "" {
		if d, ok := c.CameraDevices[cameraID]; ok {
			return d
		}
	}
	return c.DeviceID
}

type LogConfig struct {
	Level string // debug, info, warn, error
	Env   string // production switches to JSON output
}

type MetricsConfig struct {
	Prefix string
}

type WebConfig struct {
	AllowedOrigins string // comma separated, "*" allows any origin
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envNonNegInt is envInt that also accepts zero.
func envNonNegInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envBool accepts true/1/yes (case-insensitive) as true.
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// envDuration parses a Go duration or a plain number of seconds.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// parseCameraDevices parses "1=device-a,2=device-b" into a map.
func parseCameraDevices(s string) map[string]string {
	devices := make(map[string]string)
	for pair := range strings.SplitSeq(s, ",") {
		camera, device, ok := strings.Cut(strings.TrimSpace(pair), "=")
		camera = strings.TrimSpace(camera)
		device = strings.TrimSpace(device)
		if !ok || camera == "" || device == "" {
			continue
		}
		devices[camera] = device
	}
	return devices
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Storage: StorageConfig{
			PortraitDir: envString("PORTRAIT_DIR", constants.DefaultPortraitDir),
			SnapshotDir: envString("SNAPSHOT_DIR", constants.DefaultSnapshotDir),
		},
		Workers: WorkersConfig{
			Size:      envInt("MAX_WORKERS", constants.DefaultMaxWorkers),
			QueueSize: envNonNegInt("WORKER_QUEUE_SIZE", constants.DefaultWorkerQueueSize),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Encoder: EncoderConfig{
			URL:          os.Getenv("ENCODER_URL"),
			Dim:          envInt("ENCODING_DIM", constants.DefaultEncodingDim),
			Timeout:      envDuration("ENCODER_TIMEOUT", 30*time.Second),
			MaxImageSize: envInt("ENCODER_MAX_IMAGE_SIZE", constants.MaxImageSize),
		},
		Match: MatchConfig{
			Policy: strings.ToLower(envString("MATCH_POLICY", constants.MatchPolicyFirst)),
		},
		NX: NXWitnessConfig{
			Enabled:       envBool("USE_NX_WITNESS"),
			ServerIP:      os.Getenv("NX_SERVER_IP"),
			ServerPort:    os.Getenv("NX_SERVER_PORT"),
			URLTemplate:   os.Getenv("NX_BOOKMARK_URL"),
			User:          os.Getenv("NX_AUTH_USER"),
			Password:      os.Getenv("NX_AUTH_PASS"),
			DeviceID:      os.Getenv("NX_DEVICE_ID"),
			ServerID:      os.Getenv("NX_SERVER_ID"),
			CameraDevices: parseCameraDevices(os.Getenv("NX_CAMERA_DEVICES")),
			Timeout:       envDuration("NX_TIMEOUT", 10*time.Second),
			Retries:       envInt("NX_RETRIES", constants.DefaultNotifyRetries),
			QueueSize:     envInt("NX_QUEUE_SIZE", constants.DefaultNotifyQueueSize),
			InsecureTLS:   envBool("NX_INSECURE_TLS"),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
			Env:   envString("APP_ENV", "development"),
		},
		Metrics: MetricsConfig{
			Prefix: envString("METRICS_PREFIX", "face_engine"),
		},
		Web: WebConfig{
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
	}
}

// Validate reports configuration that the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable is required"))
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD environment variables are required"))
	}
	if c.Match.Policy != constants.MatchPolicyFirst && c.Match.Policy != constants.MatchPolicyBest {
		errs = append(errs, fmt.Errorf("MATCH_POLICY must be %q or %q, got %q",
			constants.MatchPolicyFirst, constants.MatchPolicyBest, c.Match.Policy))
	}
	return errors.Join(errs...)
}
