// Package config loads client configuration from a TOML project manifest
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/scriptsync/scriptsync/pkg/models"
)

// DefaultManifest is the manifest file looked up in the working directory.
const DefaultManifest = "scriptsync.toml"

// ScriptEntry is one script declared in the manifest. Batch operations
// process scripts in manifest order.
type ScriptEntry struct {
	Name         string `toml:"name"`
	Category     string `toml:"category"`
	ConflictMode *bool  `toml:"conflict_mode"`
	Encrypted    bool   `toml:"encrypted"`
}

// Config holds the full client configuration.
type Config struct {
	Server         string `toml:"server"`
	Port           int    `toml:"port"`
	Username       string `toml:"username"`
	Principal      string `toml:"principal"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	ScriptRoot   string `toml:"script_root"`
	CategoryRoot string `toml:"category_root"`

	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	MetricsAddr string `toml:"metrics_addr"`

	Scripts []ScriptEntry `toml:"script"`
}

// Load reads the manifest at path (falling back to defaults when the file
// is absent) and applies SCRIPTSYNC_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:           11000,
		TimeoutSeconds: 60,
		ScriptRoot:     ".",
		LogLevel:       "info",
		LogFormat:      "console",
	}

	if path == "" {
		path = DefaultManifest
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.Server = envOr("SCRIPTSYNC_SERVER", cfg.Server)
	cfg.Port = envInt("SCRIPTSYNC_PORT", cfg.Port)
	cfg.Username = envOr("SCRIPTSYNC_USERNAME", cfg.Username)
	cfg.Principal = envOr("SCRIPTSYNC_PRINCIPAL", cfg.Principal)
	cfg.TimeoutSeconds = envInt("SCRIPTSYNC_TIMEOUT", cfg.TimeoutSeconds)
	cfg.ScriptRoot = envOr("SCRIPTSYNC_ROOT", cfg.ScriptRoot)
	cfg.CategoryRoot = envOr("SCRIPTSYNC_CATEGORY_ROOT", cfg.CategoryRoot)
	cfg.LogLevel = envOr("SCRIPTSYNC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("SCRIPTSYNC_LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsAddr = envOr("SCRIPTSYNC_METRICS_ADDR", cfg.MetricsAddr)

	if cfg.CategoryRoot == "" {
		cfg.CategoryRoot = cfg.ScriptRoot
	}

	if cfg.Server == "" {
		return nil, fmt.Errorf("server is required (manifest or SCRIPTSYNC_SERVER)")
	}
	if cfg.Principal == "" {
		return nil, fmt.Errorf("principal is required (manifest or SCRIPTSYNC_PRINCIPAL)")
	}

	return cfg, nil
}

// LoginData builds the session login parameters. The password is filled in
// by the credentials layer.
func (c *Config) LoginData() *models.LoginData {
	return &models.LoginData{
		Server:    c.Server,
		Port:      c.Port,
		Username:  c.Username,
		Principal: c.Principal,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// Entry returns the manifest entry for a script name, if declared.
func (c *Config) Entry(name string) (ScriptEntry, bool) {
	for _, e := range c.Scripts {
		if e.Name == name {
			return e, true
		}
	}
	return ScriptEntry{}, false
}

// Script builds a sync record for a script name, applying any manifest
// overrides for that name.
func (c *Config) Script(name string) *models.Script {
	s := models.NewScript(name)
	s.CategoryRoot = c.CategoryRoot
	if e, ok := c.Entry(name); ok {
		if e.ConflictMode != nil {
			s.ConflictMode = *e.ConflictMode
		}
		if e.Encrypted {
			s.EncryptionState = models.EncryptionDecrypted
		}
		s.Category = e.Category
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
