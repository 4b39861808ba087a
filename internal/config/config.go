// Package config resolves the monitor configuration from the process
// environment. A .env file in the working directory is honored if
// present; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the environment-backed part of the configuration: backend
// credentials, detector selection, and the loop tunables. Paths and
// listen addresses come from flags on the individual binaries.
type Config struct {
	SupabaseURL  string
	SupabaseKey  string
	UserEmail    string
	UserPassword string

	ModelPath  string // detector weights
	ConfigPath string // detector network description

	ConfidenceFloor   float64
	VehicleClasses    []int
	IoUThreshold      float64
	FrameSkip         int
	FlushInterval     time.Duration
	HeartbeatInterval time.Duration
}

// Defaults mirrored from the deployed configuration.
const (
	defaultModel             = "yolov3-tiny.weights"
	defaultModelConfig       = "yolov3-tiny.cfg"
	defaultConfidenceFloor   = 0.3
	defaultVehicleClasses    = "2,5,7" // COCO: car, bus, truck
	defaultIoUThreshold      = 0.3
	defaultFrameSkip         = 3
	defaultFlushInterval     = 3 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
)

// Load reads the configuration from the environment, applying defaults
// for the tunables. Missing backend credentials are an error; the
// monitor must not start without them.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseKey:       os.Getenv("SUPABASE_KEY"),
		UserEmail:         os.Getenv("USER_EMAIL"),
		UserPassword:      os.Getenv("USER_PASSWORD"),
		ModelPath:         envString("YOLO_MODEL", defaultModel),
		ConfigPath:        envString("YOLO_CONFIG", defaultModelConfig),
		ConfidenceFloor:   defaultConfidenceFloor,
		IoUThreshold:      defaultIoUThreshold,
		FrameSkip:         defaultFrameSkip,
		FlushInterval:     defaultFlushInterval,
		HeartbeatInterval: defaultHeartbeatInterval,
	}

	var missing []string
	for _, v := range []struct {
		name, value string
	}{
		{"SUPABASE_URL", cfg.SupabaseURL},
		{"SUPABASE_KEY", cfg.SupabaseKey},
		{"USER_EMAIL", cfg.UserEmail},
		{"USER_PASSWORD", cfg.UserPassword},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.ConfidenceFloor, err = envFloat("DETECTION_CONFIDENCE_THRESHOLD", cfg.ConfidenceFloor); err != nil {
		return Config{}, err
	}
	if cfg.IoUThreshold, err = envFloat("IOU_THRESHOLD", cfg.IoUThreshold); err != nil {
		return Config{}, err
	}
	if cfg.FrameSkip, err = envInt("FRAME_SKIP_COUNT", cfg.FrameSkip); err != nil {
		return Config{}, err
	}
	if cfg.FrameSkip < 1 {
		return Config{}, fmt.Errorf("FRAME_SKIP_COUNT must be >= 1, got %d", cfg.FrameSkip)
	}
	if cfg.FlushInterval, err = envSeconds("UPDATE_INTERVAL", cfg.FlushInterval); err != nil {
		return Config{}, err
	}
	if cfg.HeartbeatInterval, err = envSeconds("HEARTBEAT_INTERVAL", cfg.HeartbeatInterval); err != nil {
		return Config{}, err
	}
	if cfg.VehicleClasses, err = envIntList("VEHICLE_CLASSES", defaultVehicleClasses); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envFloat(name string, fallback float64) (float64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return f, nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

// envSeconds parses an interval given as a whole number of seconds.
func envSeconds(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", name, n)
	}
	return time.Duration(n) * time.Second, nil
}

func envIntList(name, fallback string) ([]int, error) {
	v := os.Getenv(name)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", name, p, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("invalid %s: no class identifiers", name)
	}
	return out, nil
}
