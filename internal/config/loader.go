package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the console daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr          string `json:"addr" yaml:"addr" toml:"addr"`
	GatewayURL    string `json:"gateway_url" yaml:"gateway_url" toml:"gateway_url"`
	GatewayAPIKey string `json:"gateway_api_key" yaml:"gateway_api_key" toml:"gateway_api_key"`
	GPUMetricsURL string `json:"gpu_metrics_url" yaml:"gpu_metrics_url" toml:"gpu_metrics_url"`
	PrefsDBPath   string `json:"prefs_db_path" yaml:"prefs_db_path" toml:"prefs_db_path"`

	// Demo policy knobs (seconds). Zero means "use default".
	IdleTimeoutSec      int `json:"idle_timeout_sec" yaml:"idle_timeout_sec" toml:"idle_timeout_sec"`
	KioskIdleTimeoutSec int `json:"kiosk_idle_timeout_sec" yaml:"kiosk_idle_timeout_sec" toml:"kiosk_idle_timeout_sec"`
	SessionLimitSec     int `json:"session_limit_sec" yaml:"session_limit_sec" toml:"session_limit_sec"`
	PullPollSec         int `json:"pull_poll_sec" yaml:"pull_poll_sec" toml:"pull_poll_sec"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults applied by Normalize when fields are unset.
const (
	DefaultAddr             = ":8090"
	DefaultGatewayURL       = "http://127.0.0.1:8080"
	DefaultIdleTimeout      = 2 * time.Minute
	DefaultKioskIdleTimeout = 10 * time.Minute
	DefaultPullPoll         = 2 * time.Second
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv fills unset fields from CONSOLED_* environment variables.
func (c *Config) FromEnv() {
	setIfEmpty(&c.Addr, os.Getenv("CONSOLED_ADDR"))
	setIfEmpty(&c.GatewayURL, os.Getenv("CONSOLED_GATEWAY_URL"))
	setIfEmpty(&c.GatewayAPIKey, os.Getenv("CONSOLED_GATEWAY_API_KEY"))
	setIfEmpty(&c.GPUMetricsURL, os.Getenv("CONSOLED_GPU_METRICS_URL"))
	setIfEmpty(&c.PrefsDBPath, os.Getenv("CONSOLED_PREFS_DB"))
}

// Normalize replaces remaining zero values with package defaults.
func (c *Config) Normalize() {
	setIfEmpty(&c.Addr, DefaultAddr)
	setIfEmpty(&c.GatewayURL, DefaultGatewayURL)
	if c.IdleTimeoutSec <= 0 {
		c.IdleTimeoutSec = int(DefaultIdleTimeout / time.Second)
	}
	if c.KioskIdleTimeoutSec <= 0 {
		c.KioskIdleTimeoutSec = int(DefaultKioskIdleTimeout / time.Second)
	}
	if c.PullPollSec <= 0 {
		c.PullPollSec = int(DefaultPullPoll / time.Second)
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
