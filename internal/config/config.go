// Package config loads runtime configuration once at startup. Values are
// immutable afterwards. Precedence, highest wins: CLI flags, then the config
// file, then environment variables, then defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tailscale/hujson"
)

const (
	defaultTimeout = 10 * time.Second
	defaultAmount  = 5000 // minor currency units for the Pro upgrade
)

var errAPIURLMissing = errors.New("api url is not set (flag --api-url, config api_url, or TASKMAN_API_URL)")

// Config holds everything the client needs to talk to the task API and the
// payment channel.
type Config struct {
	APIURL      string        `json:"api_url"`
	PaystackKey string        `json:"paystack_key,omitempty"`
	Amount      int64         `json:"amount,omitempty"`
	Timeout     time.Duration `json:"-"`
	DataDir     string        `json:"data_dir,omitempty"`

	// TimeoutText is the config-file form of Timeout ("10s", "1m").
	TimeoutText string `json:"timeout,omitempty"`
}

// Overrides carries values set explicitly on the command line. Empty fields
// mean "not set".
type Overrides struct {
	APIURL  string
	DataDir string
}

// DefaultPath returns the default config file location
// ($XDG_CONFIG_HOME/taskman/config.json or ~/.config/taskman/config.json).
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskman", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskman", "config.json")
}

// Load assembles the configuration. configPath, when non-empty, names an
// explicit config file that must exist; otherwise the default location is
// used if present.
func Load(configPath string, ov Overrides) (Config, error) {
	cfg := Config{
		APIURL:      os.Getenv("TASKMAN_API_URL"),
		PaystackKey: os.Getenv("TASKMAN_PAYSTACK_KEY"),
		Amount:      getEnvInt64("TASKMAN_AMOUNT", defaultAmount),
		Timeout:     getEnvDuration("TASKMAN_TIMEOUT", defaultTimeout),
		DataDir:     os.Getenv("TASKMAN_DATA_DIR"),
	}

	fileCfg, loaded, err := loadFile(configPath)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, fileCfg)
	}

	if ov.APIURL != "" {
		cfg.APIURL = ov.APIURL
	}
	if ov.DataDir != "" {
		cfg.DataDir = ov.DataDir
	}

	if cfg.APIURL == "" {
		return Config{}, errAPIURLMissing
	}
	if cfg.Amount <= 0 {
		return Config{}, fmt.Errorf("amount must be positive, got %d", cfg.Amount)
	}
	return cfg, nil
}

// loadFile reads a HuJSON config file (JSON with comments and trailing
// commas allowed). A missing file at the default location is fine; a missing
// file named explicitly is an error.
func loadFile(path string) (Config, bool, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Config{}, false, nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}
	std, err := hujson.Standardize(b)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid config %s: %w", path, err)
	}
	var fc Config
	if err := json.Unmarshal(std, &fc); err != nil {
		return Config{}, false, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if fc.TimeoutText != "" {
		d, err := time.ParseDuration(fc.TimeoutText)
		if err != nil {
			return Config{}, false, fmt.Errorf("invalid timeout in %s: %w", path, err)
		}
		fc.Timeout = d
	}
	return fc, true, nil
}

func merge(base, file Config) Config {
	if file.APIURL != "" {
		base.APIURL = file.APIURL
	}
	if file.PaystackKey != "" {
		base.PaystackKey = file.PaystackKey
	}
	if file.Amount != 0 {
		base.Amount = file.Amount
	}
	if file.Timeout != 0 {
		base.Timeout = file.Timeout
	}
	if file.DataDir != "" {
		base.DataDir = file.DataDir
	}
	return base
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
